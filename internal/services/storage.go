package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type StorageService interface {
	EnsureExportDir() error
	NewFile(prefix, ext string) (filename, path string)
	GetFilePath(filename string) string
	DeleteFile(filename string) error
}

type storageService struct {
	exportPath string
}

func NewStorageService(exportPath string) StorageService {
	return &storageService{
		exportPath: exportPath,
	}
}

func (s *storageService) EnsureExportDir() error {
	if err := os.MkdirAll(s.exportPath, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	return nil
}

// NewFile reserves a unique name like report_<uuid>.xlsx. Nothing is created on disk.
func (s *storageService) NewFile(prefix, ext string) (string, string) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	filename := fmt.Sprintf("%s_%s%s", prefix, uuid.New().String(), strings.ToLower(ext))
	return filename, filepath.Join(s.exportPath, filename)
}

func (s *storageService) GetFilePath(filename string) string {
	return filepath.Join(s.exportPath, filepath.Base(filename))
}

func (s *storageService) DeleteFile(filename string) error {
	filePath := s.GetFilePath(filename)
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
