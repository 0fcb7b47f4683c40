package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"voice-clone-studio/internal/domain"
	"voice-clone-studio/internal/execx"
)

const (
	// RecordSeconds is the fixed microphone capture length.
	RecordSeconds = 5

	// SilenceThreshold is the peak amplitude below which a capture is
	// treated as silence and discarded.
	SilenceThreshold = 0.001
)

// Recording is a completed microphone capture on disk.
type Recording struct {
	Path string
	Peak float64
}

// Recorder captures fixed-length microphone audio via ffmpeg. Captures land
// in a hidden temp file inside the recordings directory so the final rename
// never crosses filesystems, and silent takes leave nothing behind.
type Recorder struct {
	ffmpegPath string
	dir        string
	goos       string
	runner     execx.Runner
	lookPath   func(string) (string, error)
	mkdirAll   func(string, os.FileMode) error
	remove     func(string) error
	rename     func(string, string) error
	peak       func(string) (float64, error)
	now        func() time.Time
}

// NewRecorder constructs a recorder that saves captures under dir.
func NewRecorder(dir string) *Recorder {
	return &Recorder{
		ffmpegPath: "ffmpeg",
		dir:        dir,
		goos:       runtime.GOOS,
		runner:     &execx.OSRunner{},
		lookPath:   exec.LookPath,
		mkdirAll:   os.MkdirAll,
		remove:     os.Remove,
		rename:     os.Rename,
		peak:       PeakAmplitude,
		now:        time.Now,
	}
}

// Record captures RecordSeconds of microphone audio and returns the saved
// file. Silent captures are removed and reported as a device error.
func (r *Recorder) Record(ctx context.Context) (Recording, error) {
	if _, err := r.lookPath(r.ffmpegPath); err != nil {
		return Recording{}, domain.Wrap(domain.ErrExternalToolMissing,
			"ffmpeg not found; install it to record from the microphone", err)
	}
	if err := r.mkdirAll(r.dir, 0o755); err != nil {
		return Recording{}, domain.Wrap(domain.ErrUnknown,
			"cannot create recordings directory", err)
	}

	stamp := r.now().Unix()
	tmpPath := filepath.Join(r.dir, fmt.Sprintf(".capture_%d.wav", stamp))

	result, err := r.runner.Run(ctx, r.ffmpegPath, captureArgs(r.goos, tmpPath)...)
	if err != nil {
		_ = r.remove(tmpPath)
		return Recording{}, domain.Wrap(domain.ErrDeviceError,
			"microphone capture failed: "+lastLine(result.Stderr), err)
	}

	peak, err := r.peak(tmpPath)
	if err != nil {
		_ = r.remove(tmpPath)
		return Recording{}, err
	}
	if peak < SilenceThreshold {
		_ = r.remove(tmpPath)
		return Recording{}, domain.E(domain.ErrDeviceError,
			"recording appears to be silent; check that the microphone is not muted and input permission is granted")
	}

	finalPath := filepath.Join(r.dir, fmt.Sprintf("recorded_%d.wav", stamp))
	if err := r.rename(tmpPath, finalPath); err != nil {
		_ = r.remove(tmpPath)
		return Recording{}, domain.Wrap(domain.ErrUnknown, "cannot save recording", err)
	}
	return Recording{Path: finalPath, Peak: peak}, nil
}

// captureArgs builds the ffmpeg capture command for the host platform.
func captureArgs(goos, outPath string) []string {
	args := []string{"-hide_banner", "-nostdin", "-y"}
	switch goos {
	case "darwin":
		args = append(args, "-f", "avfoundation", "-i", ":0")
	case "windows":
		args = append(args, "-f", "dshow", "-i", "audio=default")
	default:
		args = append(args, "-f", "alsa", "-i", "default")
	}
	return append(args,
		"-t", strconv.Itoa(RecordSeconds),
		"-ar", strconv.Itoa(SampleRate),
		"-ac", "1",
		"-c:a", "pcm_f32le",
		outPath,
	)
}

// NewRecorderForTests constructs a recorder with an injectable runner and
// tool lookup. Filesystem operations stay real; tests point dir at t.TempDir.
func NewRecorderForTests(
	dir string,
	goos string,
	runner execx.Runner,
	lookPath func(string) (string, error),
	now func() time.Time,
) *Recorder {
	return &Recorder{
		ffmpegPath: "ffmpeg",
		dir:        dir,
		goos:       goos,
		runner:     runner,
		lookPath:   lookPath,
		mkdirAll:   os.MkdirAll,
		remove:     os.Remove,
		rename:     os.Rename,
		peak:       PeakAmplitude,
		now:        now,
	}
}
