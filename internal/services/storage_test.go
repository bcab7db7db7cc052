package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStorageService(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	storage := NewStorageService(dir)

	if err := storage.EnsureExportDir(); err != nil {
		t.Fatalf("EnsureExportDir() error = %v", err)
	}

	name, path := storage.NewFile("report", "XLSX")
	if !strings.HasPrefix(name, "report_") || !strings.HasSuffix(name, ".xlsx") {
		t.Errorf("filename = %q", name)
	}
	if path != filepath.Join(dir, name) {
		t.Errorf("path = %q", path)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("NewFile should not create %s", path)
	}

	other, _ := storage.NewFile("report", ".xlsx")
	if other == name {
		t.Error("NewFile returned the same name twice")
	}

	// path components in the name are ignored
	if got := storage.GetFilePath("../../etc/passwd"); got != filepath.Join(dir, "passwd") {
		t.Errorf("GetFilePath() = %q", got)
	}

	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := storage.DeleteFile(name); err != nil {
		t.Fatalf("DeleteFile() error = %v", err)
	}
	if err := storage.DeleteFile(name); err == nil {
		t.Error("deleting a missing file should fail")
	}
}
