package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"fxchain/internal/catalog"
	"fxchain/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MakeBundle creates a plugin bundle directory under dir and returns its path.
func MakeBundle(t testing.TB, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir bundle %s: %v", path, err)
	}
	return path
}

// WriteAudioFile writes a small placeholder audio file for pipeline tests.
func WriteAudioFile(t testing.TB, path string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
