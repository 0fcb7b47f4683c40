package model

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"voice-clone-studio/internal/domain"
	"voice-clone-studio/internal/execx"
)

// Config holds the fields of the checkpoint's config.yaml we surface.
type Config struct {
	Version    string `yaml:"version"`
	SampleRate int    `yaml:"sample_rate"`
}

// Handle is a loaded, ready-to-use model.
type Handle struct {
	Dir        string
	ConfigPath string
	BinaryPath string
	Config     Config
}

// InferRequest describes one synthesis run.
type InferRequest struct {
	SamplePath string
	Text       string
	OutputPath string
	Params     domain.GenerationParams
}

// Service loads the model and runs synthesis through the indextts CLI.
type Service struct {
	binaryName string
	locator    *Locator
	runner     execx.Runner
	lookPath   func(string) (string, error)
	readFile   func(string) ([]byte, error)
	stat       func(string) (os.FileInfo, error)
}

// NewService constructs the production service.
func NewService(locator *Locator) *Service {
	return &Service{
		binaryName: "indextts",
		locator:    locator,
		runner:     &execx.OSRunner{},
		lookPath:   exec.LookPath,
		readFile:   os.ReadFile,
		stat:       os.Stat,
	}
}

// Load discovers the checkpoint, parses its config, and verifies the CLI is
// installed. It does not spawn any process; synthesis loads lazily.
func (s *Service) Load(ctx context.Context) (Handle, error) {
	dir, err := s.locator.Locate()
	if err != nil {
		return Handle{}, err
	}

	configPath := filepath.Join(dir, configFileName)
	raw, err := s.readFile(configPath)
	if err != nil {
		return Handle{}, domain.Wrap(domain.ErrResourceNotFound,
			"cannot read model config: "+configPath, err)
	}
	var config Config
	if err := yaml.Unmarshal(raw, &config); err != nil {
		return Handle{}, domain.Wrap(domain.ErrUnknown,
			"model config is not valid yaml: "+configPath, err)
	}

	binaryPath, err := s.lookPath(s.binaryName)
	if err != nil {
		return Handle{}, domain.Wrap(domain.ErrExternalToolMissing,
			"indextts command not found; install the index-tts package", err)
	}

	return Handle{
		Dir:        dir,
		ConfigPath: configPath,
		BinaryPath: binaryPath,
		Config:     config,
	}, nil
}

// Infer synthesizes speech for the request and verifies the output landed.
func (s *Service) Infer(ctx context.Context, handle Handle, req InferRequest) error {
	args := buildInferArgs(handle, req)
	result, err := s.runner.Run(ctx, handle.BinaryPath, args...)
	if err != nil {
		return domain.Wrap(domain.ErrUnknown,
			"speech generation failed: "+tailOf(result.Stderr), err)
	}
	if _, err := s.stat(req.OutputPath); err != nil {
		return domain.Wrap(domain.ErrUnknown,
			"generation finished but produced no output file", err)
	}
	return nil
}

// buildInferArgs assembles the CLI invocation. Emotion text takes precedence
// over an emotion vector when both are present.
func buildInferArgs(handle Handle, req InferRequest) []string {
	args := []string{
		"--config", handle.ConfigPath,
		"--model-dir", handle.Dir,
		"--voice", req.SamplePath,
		"--text", req.Text,
		"--output", req.OutputPath,
	}

	params := req.Params
	switch {
	case strings.TrimSpace(params.EmotionText) != "":
		args = append(args, "--emo-text", strings.TrimSpace(params.EmotionText))
	case params.EmotionVector != nil:
		args = append(args, "--emo-vector", formatVector(*params.EmotionVector))
	}

	if params.FixedLength {
		args = append(args,
			"--max-tokens", strconv.Itoa(params.MaxTokens),
			"--length-penalty", strconv.FormatFloat(params.LengthPenalty, 'f', -1, 64),
		)
	}
	return args
}

func formatVector(v [domain.EmotionDims]float64) string {
	parts := make([]string, len(v))
	for i, w := range v {
		parts[i] = strconv.FormatFloat(w, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// tailOf returns the last non-empty line of tool output.
func tailOf(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "no tool output"
}

// NewServiceForTests constructs a service with injectable dependencies.
func NewServiceForTests(
	locator *Locator,
	runner execx.Runner,
	lookPath func(string) (string, error),
	stat func(string) (os.FileInfo, error),
) *Service {
	return &Service{
		binaryName: "indextts",
		locator:    locator,
		runner:     runner,
		lookPath:   lookPath,
		readFile:   os.ReadFile,
		stat:       stat,
	}
}
