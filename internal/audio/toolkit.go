// Package audio wraps the external audio tooling: duration probing, sample
// normalization, microphone capture, and playback. The voice-cloning model
// only ever sees 24 kHz mono WAV files produced here.
package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-audio/wav"

	"voice-clone-studio/internal/domain"
	"voice-clone-studio/internal/execx"
)

const (
	// SampleRate is the rate the model expects for voice samples.
	SampleRate = 24000

	// MaxSampleDuration caps accepted voice samples, in seconds.
	MaxSampleDuration = 10.0
)

// acceptedExtensions lists the audio formats the drop zone accepts.
var acceptedExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".aiff": true,
	".flac": true,
}

// NormalizedSample is a validated voice sample ready for the model.
type NormalizedSample struct {
	Path     string
	Duration float64
}

// Toolkit probes and normalizes audio files through ffmpeg/ffprobe.
type Toolkit struct {
	ffmpegPath  string
	ffprobePath string
	runner      execx.Runner
	lookPath    func(string) (string, error)
	stat        func(string) (os.FileInfo, error)
	tempDir     func() string
	now         func() time.Time
}

// NewToolkit constructs the production toolkit with OS dependencies.
func NewToolkit() *Toolkit {
	return &Toolkit{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		runner:      &execx.OSRunner{},
		lookPath:    exec.LookPath,
		stat:        os.Stat,
		tempDir:     os.TempDir,
		now:         time.Now,
	}
}

// Probe returns the duration of an audio file in seconds. WAV files are read
// directly; anything else goes through ffprobe, which is also the fallback
// for WAV files with headers the decoder cannot digest.
func (t *Toolkit) Probe(path string) (float64, error) {
	if _, err := t.stat(path); err != nil {
		return 0, domain.Wrap(domain.ErrResourceNotFound,
			fmt.Sprintf("cannot access audio file: %s", path), err)
	}

	if strings.EqualFold(filepath.Ext(path), ".wav") {
		if duration, err := wavDuration(path); err == nil {
			return duration, nil
		}
	}
	return t.ffprobeDuration(path)
}

// ValidateAndNormalize checks duration and converts non-WAV input into a
// 24 kHz mono WAV the model accepts. The source file is never modified; a
// conversion lands in a fresh timestamped temp file.
func (t *Toolkit) ValidateAndNormalize(path string, maxDuration float64) (NormalizedSample, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !acceptedExtensions[ext] {
		return NormalizedSample{}, domain.E(domain.ErrValidationFailed,
			fmt.Sprintf("unsupported audio format %q; accepted: WAV, MP3, M4A, AIFF, FLAC", ext))
	}

	duration, err := t.Probe(path)
	if err != nil {
		return NormalizedSample{}, err
	}
	if duration > maxDuration {
		return NormalizedSample{}, domain.E(domain.ErrValidationFailed,
			fmt.Sprintf("audio file is too long (%.1f seconds); maximum allowed: %.1f seconds", duration, maxDuration))
	}

	if ext == ".wav" {
		return NormalizedSample{Path: path, Duration: duration}, nil
	}

	outPath, err := t.convertToWAV(path)
	if err != nil {
		return NormalizedSample{}, err
	}

	normalized, err := t.Probe(outPath)
	if err != nil {
		return NormalizedSample{}, err
	}
	return NormalizedSample{Path: outPath, Duration: normalized}, nil
}

// convertToWAV shells out to ffmpeg for format and rate conversion.
func (t *Toolkit) convertToWAV(path string) (string, error) {
	if _, err := t.lookPath(t.ffmpegPath); err != nil {
		return "", domain.Wrap(domain.ErrExternalToolMissing,
			"ffmpeg not found; install it to load non-WAV samples", err)
	}

	outPath := filepath.Join(t.tempDir(), fmt.Sprintf("voice_sample_%d.wav", t.now().Unix()))
	args := buildConvertArgs(path, outPath)

	result, err := t.runner.Run(context.Background(), t.ffmpegPath, args...)
	if err != nil {
		return "", domain.Wrap(domain.ErrUnknown,
			"ffmpeg audio conversion failed: "+lastLine(result.Stderr), err)
	}
	if _, err := t.stat(outPath); err != nil {
		return "", domain.Wrap(domain.ErrUnknown,
			"ffmpeg completed but the converted file is missing", err)
	}
	return outPath, nil
}

// ffprobeDuration reads a duration via the ffprobe CLI.
func (t *Toolkit) ffprobeDuration(path string) (float64, error) {
	if _, err := t.lookPath(t.ffprobePath); err != nil {
		return 0, domain.Wrap(domain.ErrExternalToolMissing,
			"ffprobe not found; install ffmpeg to probe audio durations", err)
	}

	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	result, err := t.runner.Run(context.Background(), t.ffprobePath, args...)
	if err != nil {
		return 0, domain.Wrap(domain.ErrUnknown,
			"could not determine audio duration: "+lastLine(result.Stderr), err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(result.Stdout), 64)
	if err != nil {
		return 0, domain.Wrap(domain.ErrUnknown, "ffprobe returned an unreadable duration", err)
	}
	return duration, nil
}

// wavDuration reads the duration straight from the WAV header.
func wavDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	duration, err := wav.NewDecoder(f).Duration()
	if err != nil {
		return 0, err
	}
	return duration.Seconds(), nil
}

// buildConvertArgs builds ffmpeg CLI args for 24 kHz mono WAV output.
func buildConvertArgs(inputPath, outPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-ar", strconv.Itoa(SampleRate),
		"-ac", "1",
		outPath,
	}
}

// lastLine returns the final non-empty line of tool output for messages.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "no tool output"
}

// NewToolkitForTests constructs a toolkit with injectable dependencies.
func NewToolkitForTests(
	ffmpegPath string,
	ffprobePath string,
	runner execx.Runner,
	lookPath func(string) (string, error),
	tempDir func() string,
) *Toolkit {
	return &Toolkit{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		runner:      runner,
		lookPath:    lookPath,
		stat:        os.Stat,
		tempDir:     tempDir,
		now:         time.Now,
	}
}
