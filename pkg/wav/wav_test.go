// ABOUTME: Tests for WAV export validation and container round trips
// ABOUTME: Pins the validation order and the trimmed frame accounting
package wav

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/clipkit/clipkit-go/pkg/pcm"
)

func testFormat() pcm.Format {
	return pcm.Format{SampleRate: 48000, BitDepth: 16, Channels: 1, Signed: true}
}

func TestExportValidationOrder(t *testing.T) {
	valid := testFormat()

	// Empty path wins over every other defect
	if err := Export("", nil, pcm.Format{}); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("Expected ErrEmptyPath, got %v", err)
	}
	if err := Export("   ", nil, pcm.Format{}); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("Expected ErrEmptyPath for blank path, got %v", err)
	}

	// Extension is checked before format and data
	if err := Export("clip.mp3", nil, pcm.Format{}); !errors.Is(err, ErrUnsupportedExtension) {
		t.Errorf("Expected ErrUnsupportedExtension, got %v", err)
	}

	// Format before data
	if err := Export("clip.wav", nil, pcm.Format{}); !errors.Is(err, pcm.ErrInvalidFormat) {
		t.Errorf("Expected ErrInvalidFormat, got %v", err)
	}

	if err := Export("clip.wav", nil, valid); !errors.Is(err, ErrEmptyData) {
		t.Errorf("Expected ErrEmptyData, got %v", err)
	}
	if err := Export("clip.wav", []byte{}, valid); !errors.Is(err, ErrEmptyData) {
		t.Errorf("Expected ErrEmptyData for zero-length data, got %v", err)
	}
}

func TestExportRejectsDegenerateCapture(t *testing.T) {
	f := testFormat()
	short := make([]byte, pcm.CrackleOffset(f))

	path := filepath.Join(t.TempDir(), "short.wav")
	if err := Export(path, short, f); !errors.Is(err, pcm.ErrOffsetOutOfRange) {
		t.Errorf("Expected ErrOffsetOutOfRange, got %v", err)
	}
}

func TestExportSilenceFrameAccounting(t *testing.T) {
	f := testFormat()
	// One second of silence at 48kHz/16-bit/mono
	data := make([]byte, 96000)

	path := filepath.Join(t.TempDir(), "silence.wav")
	if err := Export(path, data, f); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	container, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read exported file: %v", err)
	}

	raw, decoded, err := Decode(container)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	offset := pcm.CrackleOffset(f)
	wantFrames := (len(data) - offset) / f.FrameSize()
	if got := len(raw) / decoded.FrameSize(); got != wantFrames {
		t.Errorf("Frame count = %d, want %d", got, wantFrames)
	}
	if decoded.SampleRate != 48000 || decoded.BitDepth != 16 || decoded.Channels != 1 {
		t.Errorf("Decoded format mismatch: %+v", decoded)
	}
	if !decoded.Signed || decoded.BigEndian {
		t.Errorf("Expected signed little-endian, got %+v", decoded)
	}
}

func TestExportDecodePayloadRoundTrip(t *testing.T) {
	f := testFormat()
	data := make([]byte, 8192)
	for i := range data {
		data[i] = byte(i * 31)
	}

	path := filepath.Join(t.TempDir(), "pattern.wav")
	if err := Export(path, data, f); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	container, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read exported file: %v", err)
	}

	raw, _, err := Decode(container)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	offset := pcm.CrackleOffset(f)
	if !bytes.Equal(raw, data[offset:]) {
		t.Error("Decoded payload does not match trimmed input")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, _, err := Decode([]byte("definitely not a RIFF container")); !errors.Is(err, ErrNotWav) {
		t.Errorf("Expected ErrNotWav, got %v", err)
	}
	if _, _, err := Decode(nil); !errors.Is(err, ErrNotWav) {
		t.Errorf("Expected ErrNotWav for empty input, got %v", err)
	}
}

func TestExportStereoHighRate(t *testing.T) {
	f := pcm.Format{SampleRate: 192000, BitDepth: 16, Channels: 2, Signed: true}
	data := make([]byte, 192000) // 250ms of stereo silence

	path := filepath.Join(t.TempDir(), "hires.wav")
	if err := Export(path, data, f); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	container, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read exported file: %v", err)
	}
	raw, decoded, err := Decode(container)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if decoded.Channels != 2 || decoded.SampleRate != 192000 {
		t.Errorf("Decoded format mismatch: %+v", decoded)
	}
	if len(raw)%decoded.FrameSize() != 0 {
		t.Errorf("Payload length %d not frame-aligned", len(raw))
	}
}
