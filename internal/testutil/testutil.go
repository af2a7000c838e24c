// Package testutil provides shared test helpers for setting up vaults and
// note collections.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/lumen/internal/models"
	"github.com/starford/lumen/internal/repository"
	"github.com/starford/lumen/internal/storage"
)

// TestVault creates a temporary vault directory holding files (relative
// path to content) and returns it with its storage provider.
func TestVault(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	vaultDir := t.TempDir()
	for rel, content := range files {
		WriteNote(t, vaultDir, rel, content)
	}
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// WriteNote writes content to rel under dir, creating parent folders.
func WriteNote(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// SeededRepository returns a repository already holding notes.
func SeededRepository(t *testing.T, notes ...models.Note) *repository.Repository {
	t.Helper()
	repo := repository.New()
	repo.Replace(notes)
	return repo
}

// QuietLogger discards all log output.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
