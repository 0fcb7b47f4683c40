package model

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"voice-clone-studio/internal/domain"
	"voice-clone-studio/internal/execx"
)

func testLocator(t *testing.T) (*Locator, string) {
	t.Helper()
	dir := t.TempDir()
	writeConfig(t, dir)
	return NewLocatorForTests(dir,
		func() (string, error) { return "", os.ErrNotExist },
		func() (string, error) { return "", os.ErrNotExist },
	), dir
}

func foundLookPath(name string) (string, error) { return "/usr/bin/" + name, nil }

func TestLoadParsesConfig(t *testing.T) {
	locator, dir := testLocator(t)
	svc := NewServiceForTests(locator, nil, foundLookPath, os.Stat)

	handle, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if handle.Dir != dir {
		t.Fatalf("dir = %q, want %q", handle.Dir, dir)
	}
	if handle.Config.SampleRate != 24000 {
		t.Fatalf("sample rate = %d, want 24000", handle.Config.SampleRate)
	}
	if handle.BinaryPath != "/usr/bin/indextts" {
		t.Fatalf("binary = %q", handle.BinaryPath)
	}
}

func TestLoadMissingCLI(t *testing.T) {
	locator, _ := testLocator(t)
	svc := NewServiceForTests(locator, nil,
		func(string) (string, error) { return "", errors.New("not found") },
		os.Stat,
	)
	_, err := svc.Load(context.Background())
	if domain.KindOf(err) != domain.ErrExternalToolMissing {
		t.Fatalf("error kind = %q, want external_tool_missing", domain.KindOf(err))
	}
}

func TestLoadMissingModel(t *testing.T) {
	locator := NewLocatorForTests(t.TempDir(),
		func() (string, error) { return "", os.ErrNotExist },
		func() (string, error) { return "", os.ErrNotExist },
	)
	svc := NewServiceForTests(locator, nil, foundLookPath, os.Stat)
	_, err := svc.Load(context.Background())
	if domain.KindOf(err) != domain.ErrResourceNotFound {
		t.Fatalf("error kind = %q, want resource_not_found", domain.KindOf(err))
	}
}

func sampleHandle() Handle {
	return Handle{
		Dir:        "/models",
		ConfigPath: "/models/config.yaml",
		BinaryPath: "/usr/bin/indextts",
	}
}

func TestBuildInferArgsBase(t *testing.T) {
	args := buildInferArgs(sampleHandle(), InferRequest{
		SamplePath: "voice.wav",
		Text:       "hello there",
		OutputPath: "out.wav",
	})
	assertFlag(t, args, "--config", "/models/config.yaml")
	assertFlag(t, args, "--voice", "voice.wav")
	assertFlag(t, args, "--text", "hello there")
	assertFlag(t, args, "--output", "out.wav")
	for _, flag := range []string{"--emo-text", "--emo-vector", "--max-tokens"} {
		if indexOf(args, flag) >= 0 {
			t.Fatalf("args %v should not include %s", args, flag)
		}
	}
}

func TestBuildInferArgsEmotionTextWins(t *testing.T) {
	vec := [domain.EmotionDims]float64{1, 0, 0, 0, 0, 0, 0, 0}
	args := buildInferArgs(sampleHandle(), InferRequest{
		SamplePath: "voice.wav",
		Text:       "hi",
		OutputPath: "out.wav",
		Params: domain.GenerationParams{
			EmotionText:   "  excited  ",
			EmotionVector: &vec,
		},
	})
	assertFlag(t, args, "--emo-text", "excited")
	if indexOf(args, "--emo-vector") >= 0 {
		t.Fatalf("args %v should drop the vector when text is set", args)
	}
}

func TestBuildInferArgsEmotionVector(t *testing.T) {
	vec := [domain.EmotionDims]float64{0.5, 0, 0, 0, 0, 0, 0, 0.25}
	args := buildInferArgs(sampleHandle(), InferRequest{
		SamplePath: "voice.wav",
		Text:       "hi",
		OutputPath: "out.wav",
		Params:     domain.GenerationParams{EmotionVector: &vec},
	})
	assertFlag(t, args, "--emo-vector", "0.5,0,0,0,0,0,0,0.25")
}

func TestBuildInferArgsFixedLength(t *testing.T) {
	args := buildInferArgs(sampleHandle(), InferRequest{
		SamplePath: "voice.wav",
		Text:       "hi",
		OutputPath: "out.wav",
		Params: domain.GenerationParams{
			FixedLength:   true,
			MaxTokens:     800,
			LengthPenalty: -0.5,
		},
	})
	assertFlag(t, args, "--max-tokens", "800")
	assertFlag(t, args, "--length-penalty", "-0.5")
}

func TestInferVerifiesOutput(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.wav")

	runner := execx.RunnerFunc(func(ctx context.Context, name string, args ...string) (execx.Result, error) {
		return execx.Result{}, nil
	})
	svc := NewServiceForTests(nil, runner, foundLookPath, os.Stat)

	err := svc.Infer(context.Background(), sampleHandle(), InferRequest{
		SamplePath: "voice.wav",
		Text:       "hi",
		OutputPath: outPath,
	})
	if err == nil {
		t.Fatal("expected an error when no output file appears")
	}

	if writeErr := os.WriteFile(outPath, []byte("wav"), 0o644); writeErr != nil {
		t.Fatalf("write output: %v", writeErr)
	}
	if err := svc.Infer(context.Background(), sampleHandle(), InferRequest{
		SamplePath: "voice.wav",
		Text:       "hi",
		OutputPath: outPath,
	}); err != nil {
		t.Fatalf("Infer: %v", err)
	}
}

func TestInferSurfacesToolFailure(t *testing.T) {
	runner := execx.RunnerFunc(func(ctx context.Context, name string, args ...string) (execx.Result, error) {
		return execx.Result{Stderr: "CUDA out of memory\n", ExitCode: 1}, errors.New("exit status 1")
	})
	svc := NewServiceForTests(nil, runner, foundLookPath, os.Stat)

	err := svc.Infer(context.Background(), sampleHandle(), InferRequest{
		SamplePath: "voice.wav",
		Text:       "hi",
		OutputPath: "out.wav",
	})
	if err == nil {
		t.Fatal("expected the tool failure to surface")
	}
}

func assertFlag(t *testing.T, args []string, flag, want string) {
	t.Helper()
	i := indexOf(args, flag)
	if i < 0 || i+1 >= len(args) {
		t.Fatalf("args %v missing %s", args, flag)
	}
	if args[i+1] != want {
		t.Fatalf("%s = %q, want %q", flag, args[i+1], want)
	}
}

func indexOf(args []string, want string) int {
	for i, a := range args {
		if a == want {
			return i
		}
	}
	return -1
}
