package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"voice-clone-studio/internal/domain"
	"voice-clone-studio/internal/execx"
)

// writePCM16WAV writes a mono 16-bit PCM file with a constant amplitude tone.
func writePCM16WAV(t *testing.T, path string, seconds float64, sampleRate int, amplitude float64) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	n := int(seconds * float64(sampleRate))
	data := make([]int, n)
	value := int(amplitude * 32767)
	for i := range data {
		if i%2 == 0 {
			data[i] = value
		} else {
			data[i] = -value
		}
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write fixture samples: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close fixture encoder: %v", err)
	}
}

// writeFloat32WAV writes a mono IEEE-float file by hand, matching the layout
// ffmpeg produces with pcm_f32le.
func writeFloat32WAV(t *testing.T, path string, samples []float32, sampleRate int) {
	t.Helper()

	var data bytes.Buffer
	for _, s := range samples {
		var raw [4]byte
		binary.LittleEndian.PutUint32(raw[:], math.Float32bits(s))
		data.Write(raw[:])
	}

	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(36+data.Len()))
	out.WriteString("WAVE")
	out.WriteString("fmt ")
	binary.Write(&out, binary.LittleEndian, uint32(16))
	binary.Write(&out, binary.LittleEndian, uint16(wavFormatFloat))
	binary.Write(&out, binary.LittleEndian, uint16(1))
	binary.Write(&out, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&out, binary.LittleEndian, uint32(sampleRate*4))
	binary.Write(&out, binary.LittleEndian, uint16(4))
	binary.Write(&out, binary.LittleEndian, uint16(32))
	out.WriteString("data")
	binary.Write(&out, binary.LittleEndian, uint32(data.Len()))
	out.Write(data.Bytes())

	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		t.Fatalf("write float fixture: %v", err)
	}
}

func constantFloats(n int, value float32) []float32 {
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = value
	}
	return samples
}

// captureRunner fakes an ffmpeg capture by writing samples to the output
// path, which is always the final argument.
func captureRunner(t *testing.T, samples []float32) execx.Runner {
	t.Helper()
	return execx.RunnerFunc(func(ctx context.Context, name string, args ...string) (execx.Result, error) {
		writeFloat32WAV(t, args[len(args)-1], samples, SampleRate)
		return execx.Result{}, nil
	})
}

func failingRunner(stderr string) execx.Runner {
	return execx.RunnerFunc(func(ctx context.Context, name string, args ...string) (execx.Result, error) {
		return execx.Result{Stderr: stderr + "\n", ExitCode: 1}, errors.New("exit status 1")
	})
}

func kindOf(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	return string(domain.KindOf(err))
}

// assertNoStrays fails if dir holds any file other than the allowed ones.
func assertNoStrays(t *testing.T, dir string, allowed ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		ok := false
		for _, a := range allowed {
			if full == a {
				ok = true
			}
		}
		if !ok {
			t.Fatalf("stray file left behind: %s", entry.Name())
		}
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
