// Package diagnostics runs startup checks over external tools, the model
// checkpoint, and the directories the app writes into.
package diagnostics

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"voice-clone-studio/internal/domain"
	"voice-clone-studio/internal/model"
)

// Checker validates external tools and required filesystem paths.
type Checker struct {
	lookPath   func(string) (string, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkTool(domain.CheckToolFFmpeg, "ffmpeg",
			"Install ffmpeg; it handles recording, conversion, and duration probing."),
		c.checkTool(domain.CheckToolFFprobe, "ffprobe",
			"ffprobe ships with ffmpeg; install ffmpeg to get it."),
		c.checkTool(domain.CheckToolIndexTTS, "indextts",
			"Install the index-tts package so speech can be generated."),
		c.checkModelLocation(settings.ModelDir),
		c.checkWritableDir(domain.CheckRecordingsDir, "Recordings directory", settings.RecordingsDir),
		c.checkWritableDir(domain.CheckOutputDir, "Output directory", settings.OutputDir),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.CheckStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkTool verifies a required CLI executable is on PATH.
func (c *Checker) checkTool(id, name, hint string) domain.DiagnosticItem {
	path, err := c.lookPath(name)
	if err != nil {
		return domain.DiagnosticItem{
			ID:      id,
			Name:    name,
			Status:  domain.CheckStatusFail,
			Message: fmt.Sprintf("Tool not found in PATH: %s", name),
			Hint:    hint,
		}
	}

	return domain.DiagnosticItem{
		ID:      id,
		Name:    name,
		Status:  domain.CheckStatusPass,
		Message: fmt.Sprintf("Found at %s", path),
	}
}

// checkModelLocation verifies a model checkpoint can be discovered.
func (c *Checker) checkModelLocation(override string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   domain.CheckModelLocation,
		Name: "Model files",
	}

	dir, err := model.NewLocator(override).Locate()
	if err != nil {
		item.Status = domain.CheckStatusFail
		item.Message = err.Error()
		item.Hint = "Download the IndexTTS-2 checkpoint or point the model directory setting at it."
		return item
	}

	item.Status = domain.CheckStatusPass
	item.Message = fmt.Sprintf("Model checkpoint found: %s", dir)
	return item
}

// checkWritableDir validates directory existence and write access.
func (c *Checker) checkWritableDir(id, name, dir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   id,
		Name: name,
	}

	if strings.TrimSpace(dir) == "" {
		item.Status = domain.CheckStatusFail
		item.Message = fmt.Sprintf("%s is not configured.", name)
		item.Hint = "Set a directory in settings."
		return item
	}

	if err := c.mkdirAll(dir, 0o755); err != nil {
		item.Status = domain.CheckStatusFail
		item.Message = fmt.Sprintf("Cannot create directory: %s", dir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(dir, ".write-check-*")
	if err != nil {
		item.Status = domain.CheckStatusFail
		item.Message = fmt.Sprintf("Directory is not writable: %s", dir)
		item.Hint = "Choose a writable directory."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.CheckStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", dir)
	return item
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		lookPath:   lookPath,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}
