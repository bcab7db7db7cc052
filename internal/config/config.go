package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Recruit  RecruitConfig
	Scoring  ScoringConfig
	Storage  StorageConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// RecruitConfig points at the upstream recruitment API.
type RecruitConfig struct {
	BaseURL string
	Timeout time.Duration
}

type ScoringConfig struct {
	// TablePath is optional; the built-in table is used when empty.
	TablePath string
}

type StorageConfig struct {
	ExportPath string
}

type WorkerConfig struct {
	Concurrency    int
	QueueSize      int
	ReconcileDelay time.Duration
	PollInterval   time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "applicant_review"),
		},
		Recruit: RecruitConfig{
			BaseURL: getEnv("RECRUIT_API_URL", "http://localhost:8080/api"),
			Timeout: getEnvAsDuration("RECRUIT_API_TIMEOUT", "10s"),
		},
		Scoring: ScoringConfig{
			TablePath: getEnv("SCORE_TABLE_PATH", ""),
		},
		Storage: StorageConfig{
			ExportPath: getEnv("EXPORT_PATH", "./exports"),
		},
		Worker: WorkerConfig{
			Concurrency:    getEnvAsInt("WORKER_CONCURRENCY", 2),
			QueueSize:      getEnvAsInt("WORKER_QUEUE_SIZE", 100),
			ReconcileDelay: getEnvAsDuration("RECONCILE_DELAY", "1s"),
			PollInterval:   getEnvAsDuration("EVALUATION_POLL_INTERVAL", "10s"),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
