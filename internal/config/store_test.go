package config

import (
	"os"
	"path/filepath"
	"testing"

	"voice-clone-studio/internal/domain"
)

// TestDefaultSettings verifies baseline defaults are present.
func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.RecordingsDir != "recordings" {
		t.Fatalf("recordings dir = %q, want recordings", cfg.RecordingsDir)
	}
	if cfg.OutputDir != "output" {
		t.Fatalf("output dir = %q, want output", cfg.OutputDir)
	}
	if cfg.ModelDir != "" {
		t.Fatalf("model dir = %q, want empty for auto-discovery", cfg.ModelDir)
	}
}

// TestJSONStoreLoadMissingReturnsDefaults checks first-run behavior.
func TestJSONStoreLoadMissingReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "settings.json")
	store := NewJSONStore(path)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.RecordingsDir != "recordings" {
		t.Fatalf("recordings dir = %q, want recordings", got.RecordingsDir)
	}
}

// TestJSONStoreSaveAndLoadRoundTrip checks persisted settings fidelity.
func TestJSONStoreSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	store := NewJSONStore(path)
	want := domain.Settings{
		ModelDir:        "/models/indextts",
		RecordingsDir:   "/takes",
		OutputDir:       "/out",
		PlaybackCommand: "mpv",
	}

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}
}

// TestJSONStoreEnvOverride checks environment variables beat the file.
func TestJSONStoreEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	store := NewJSONStore(path)
	if err := store.Save(domain.Settings{OutputDir: "/from-file"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	t.Setenv("VOICECLONE_OUTPUT_DIR", "/from-env")
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.OutputDir != "/from-env" {
		t.Fatalf("output dir = %q, want the env override", got.OutputDir)
	}
}

// TestJSONStoreLoadInvalidJSON checks parse error handling.
func TestJSONStoreLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not-json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewJSONStore(path)
	if _, err := store.Load(); err == nil {
		t.Fatal("expected json parse error")
	}
}
