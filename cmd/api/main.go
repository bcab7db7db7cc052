package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"alfredoptarigan/applicant-review/internal/config"
	"alfredoptarigan/applicant-review/internal/handlers"
	"alfredoptarigan/applicant-review/internal/repositories"
	"alfredoptarigan/applicant-review/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	scoreTable, err := config.LoadScoreTable(cfg.Scoring.TablePath)
	if err != nil {
		log.Fatalf("❌ Failed to load score table: %v", err)
	}
	log.Printf("✅ Score table loaded (%d applicants)\n", len(scoreTable.Totals))

	// Initializes repositories
	sessionRepo := repositories.NewSessionRepository(db)
	reportRepo := repositories.NewReportRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.ExportPath)
	if err := storageService.EnsureExportDir(); err != nil {
		log.Fatalf("❌ Failed to create export directory: %v", err)
	}

	scoreResolver := services.NewScoreResolver(scoreTable)
	viewBuilder := services.NewViewBuilder(scoreResolver)
	recruitClient := services.NewRecruitClient(cfg.Recruit.BaseURL, cfg.Recruit.Timeout)

	sessionService := services.NewSessionService(
		sessionRepo,
		recruitClient,
		scoreResolver,
		viewBuilder,
		cfg.Worker.ReconcileDelay,
	)
	exportService := services.NewExportService(
		sessionService,
		scoreResolver,
		storageService,
		reportRepo,
	)
	log.Println("✅ Services initialized successfully")

	// Initialize worker
	worker := services.NewWorker(
		sessionService,
		cfg.Worker.Concurrency,
		cfg.Worker.QueueSize,
		cfg.Worker.PollInterval,
	)
	sessionService.AttachQueue(worker)
	log.Println("✅ Worker initialized successfully")

	// Start worker
	ctx := context.Background()
	worker.Start(ctx)
	log.Println("✅ Worker started successfully")

	// Initialize Handlers
	sessionHandler := handlers.NewSessionHandler(sessionService, scoreResolver)
	reviewHandler := handlers.NewReviewHandler(sessionService)
	reportHandler := handlers.NewReportHandler(sessionService, exportService, scoreResolver)
	highlightHandler := handlers.NewHighlightHandler()
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Applicant Review Console API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	sessions := api.Group("/sessions")
	sessions.Post("/", sessionHandler.HandleCreate)
	sessions.Get("/:id", sessionHandler.HandleGet)
	sessions.Delete("/:id", sessionHandler.HandleDelete)
	sessions.Post("/:id/refresh", sessionHandler.HandleRefresh)
	sessions.Get("/:id/applicants", sessionHandler.HandleApplicants)
	sessions.Put("/:id/selection", sessionHandler.HandleSelect)
	sessions.Get("/:id/view", sessionHandler.HandleView)
	sessions.Post("/:id/questions/next", sessionHandler.HandleNextQuestion)
	sessions.Post("/:id/questions/prev", sessionHandler.HandlePrevQuestion)
	sessions.Put("/:id/panel", sessionHandler.HandleSetTab)
	sessions.Post("/:id/panel/score-details", sessionHandler.HandleToggleScoreDetails)

	sessions.Put("/:id/applications/:applicationId/status", reviewHandler.HandleChangeStatus)
	sessions.Put("/:id/applications/:applicationId/memo", reviewHandler.HandleSetMemo)
	sessions.Post("/:id/applications/:applicationId/evaluation", reviewHandler.HandleSaveEvaluation)
	sessions.Post("/:id/complete", reviewHandler.HandleComplete)

	sessions.Get("/:id/statistics", reportHandler.HandleStatistics)
	sessions.Post("/:id/exports", reportHandler.HandleExport)
	sessions.Get("/:id/exports", reportHandler.HandleListExports)
	api.Get("/exports/:id", reportHandler.HandleDownload)

	api.Post("/highlights", highlightHandler.HandleHighlight)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Applicant Review Console API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/sessions",
				"GET /api/v1/sessions/:id/applicants",
				"PUT /api/v1/sessions/:id/selection",
				"GET /api/v1/sessions/:id/view",
				"PUT /api/v1/sessions/:id/applications/:applicationId/status",
				"POST /api/v1/sessions/:id/complete",
				"GET /api/v1/sessions/:id/statistics",
				"POST /api/v1/sessions/:id/exports",
				"POST /api/v1/highlights",
				"GET /metrics",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("🔗 Recruitment API: %s\n", cfg.Recruit.BaseURL)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
