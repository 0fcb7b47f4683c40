package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"voice-clone-studio/internal/domain"
)

// wavFormat mirrors the fields of a RIFF fmt chunk we care about.
type wavFormat struct {
	audioFormat   uint16
	channels      uint16
	bitsPerSample uint16
}

const (
	wavFormatPCM   = 1
	wavFormatFloat = 3
)

// PeakAmplitude scans a WAV file and returns the largest absolute sample
// value normalized to [0, 1]. It walks the RIFF chunks directly because the
// silence check has to handle the float32 captures ffmpeg writes, which the
// integer-oriented decoder does not.
func PeakAmplitude(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, domain.Wrap(domain.ErrUnknown, "cannot open recording for analysis", err)
	}
	defer f.Close()

	peak, err := scanPeak(f)
	if err != nil {
		return 0, domain.Wrap(domain.ErrUnknown, "cannot analyze recording", err)
	}
	return peak, nil
}

func scanPeak(r io.Reader) (float64, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, fmt.Errorf("read riff header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return 0, errors.New("not a wav file")
	}

	var format wavFormat
	haveFormat := false
	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return 0, errors.New("wav file has no data chunk")
			}
			return 0, fmt.Errorf("read chunk header: %w", err)
		}
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])

		switch id {
		case "fmt ":
			if size < 16 {
				return 0, errors.New("fmt chunk too short")
			}
			var raw [16]byte
			if _, err := io.ReadFull(r, raw[:]); err != nil {
				return 0, fmt.Errorf("read fmt chunk: %w", err)
			}
			format.audioFormat = binary.LittleEndian.Uint16(raw[0:2])
			format.channels = binary.LittleEndian.Uint16(raw[2:4])
			format.bitsPerSample = binary.LittleEndian.Uint16(raw[14:16])
			haveFormat = true
			if err := skipBytes(r, paddedSize(size)-16); err != nil {
				return 0, err
			}
		case "data":
			if !haveFormat {
				return 0, errors.New("data chunk before fmt chunk")
			}
			return peakOfData(io.LimitReader(r, int64(size)), format)
		default:
			if err := skipBytes(r, paddedSize(size)); err != nil {
				return 0, err
			}
		}
	}
}

func peakOfData(r io.Reader, format wavFormat) (float64, error) {
	peak := 0.0
	buf := make([]byte, 32*1024)
	carry := 0

	sampleBytes, scale, err := sampleLayout(format)
	if err != nil {
		return 0, err
	}

	for {
		n, err := r.Read(buf[carry:])
		n += carry
		whole := n - n%sampleBytes

		for i := 0; i < whole; i += sampleBytes {
			v := decodeSample(buf[i:i+sampleBytes], format)
			if a := math.Abs(v / scale); a > peak {
				peak = a
			}
		}

		carry = copy(buf, buf[whole:n])
		if err == io.EOF {
			return peak, nil
		}
		if err != nil {
			return 0, fmt.Errorf("read samples: %w", err)
		}
	}
}

// sampleLayout maps a fmt chunk to sample width and full-scale value.
func sampleLayout(format wavFormat) (int, float64, error) {
	switch {
	case format.audioFormat == wavFormatFloat && format.bitsPerSample == 32:
		return 4, 1.0, nil
	case format.audioFormat == wavFormatPCM && format.bitsPerSample == 16:
		return 2, 32768.0, nil
	case format.audioFormat == wavFormatPCM && format.bitsPerSample == 32:
		return 4, float64(math.MaxInt32) + 1, nil
	default:
		return 0, 0, fmt.Errorf("unsupported wav encoding: format %d, %d bits",
			format.audioFormat, format.bitsPerSample)
	}
}

func decodeSample(b []byte, format wavFormat) float64 {
	if format.audioFormat == wavFormatFloat {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
	if format.bitsPerSample == 16 {
		return float64(int16(binary.LittleEndian.Uint16(b)))
	}
	return float64(int32(binary.LittleEndian.Uint32(b)))
}

// paddedSize rounds a chunk size up to the even byte RIFF requires.
func paddedSize(size uint32) int64 {
	if size%2 == 1 {
		return int64(size) + 1
	}
	return int64(size)
}

func skipBytes(r io.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	if _, err := io.CopyN(io.Discard, r, n); err != nil {
		return fmt.Errorf("skip chunk: %w", err)
	}
	return nil
}
