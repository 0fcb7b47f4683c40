package config

import (
	"os"
	"path/filepath"

	"voice-clone-studio/internal/domain"
)

// DefaultSettings returns baseline local configuration for first launch.
// Recordings and generated audio stay relative to the working directory, and
// an empty ModelDir means the standard locations are searched.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		ModelDir:        "",
		RecordingsDir:   "recordings",
		OutputDir:       "output",
		PlaybackCommand: "",
	}
}

// DefaultPath returns the standard settings file location.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".voice-clone-studio", "settings.json")
}
