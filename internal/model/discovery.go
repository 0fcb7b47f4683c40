// Package model locates the voice-cloning checkpoint on disk and drives the
// indextts CLI for speech synthesis.
package model

import (
	"fmt"
	"os"
	"path/filepath"

	"voice-clone-studio/internal/domain"
)

const configFileName = "config.yaml"

// hfCachePath is the checkpoint location the huggingface downloader uses,
// relative to the home directory.
var hfCachePath = filepath.Join(".cache", "huggingface", "IndexTeam", "IndexTTS-2")

// localCheckpointPath is the fallback for source checkouts, relative to the
// working directory.
var localCheckpointPath = filepath.Join("index-tts", "checkpoints")

// Locator finds a usable model directory. A directory counts only when it
// holds a config.yaml.
type Locator struct {
	override string
	homeDir  func() (string, error)
	getwd    func() (string, error)
	stat     func(string) (os.FileInfo, error)
}

// NewLocator constructs a locator. A non-empty override skips discovery and
// is required to hold the config file like any other candidate.
func NewLocator(override string) *Locator {
	return &Locator{
		override: override,
		homeDir:  os.UserHomeDir,
		getwd:    os.Getwd,
		stat:     os.Stat,
	}
}

// Locate returns the first candidate directory containing a config.yaml.
func (l *Locator) Locate() (string, error) {
	candidates, err := l.candidates()
	if err != nil {
		return "", err
	}
	for _, dir := range candidates {
		if l.hasConfig(dir) {
			return dir, nil
		}
	}
	return "", domain.E(domain.ErrResourceNotFound,
		fmt.Sprintf("model files not found; checked %s", joinPaths(candidates)))
}

func (l *Locator) candidates() ([]string, error) {
	if l.override != "" {
		return []string{l.override}, nil
	}

	var dirs []string
	if home, err := l.homeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, hfCachePath))
	}
	if wd, err := l.getwd(); err == nil {
		dirs = append(dirs, filepath.Join(wd, localCheckpointPath))
	}
	if len(dirs) == 0 {
		return nil, domain.E(domain.ErrResourceNotFound,
			"cannot resolve home or working directory to search for model files")
	}
	return dirs, nil
}

func (l *Locator) hasConfig(dir string) bool {
	info, err := l.stat(filepath.Join(dir, configFileName))
	return err == nil && !info.IsDir()
}

func joinPaths(paths []string) string {
	out := ""
	for i, p := range paths {
		if i > 0 {
			out += " and "
		}
		out += p
	}
	return out
}

// NewLocatorForTests constructs a locator with injectable path resolution.
func NewLocatorForTests(
	override string,
	homeDir func() (string, error),
	getwd func() (string, error),
) *Locator {
	return &Locator{
		override: override,
		homeDir:  homeDir,
		getwd:    getwd,
		stat:     os.Stat,
	}
}
