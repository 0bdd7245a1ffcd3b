// ABOUTME: Tests for the format probe
// ABOUTME: Verifies which PCM formats map onto the miniaudio backend
package device

import (
	"errors"
	"testing"

	"github.com/clipkit/clipkit-go/pkg/pcm"
)

func TestProbeAcceptsSupportedFormats(t *testing.T) {
	supported := []pcm.Format{
		pcm.DefaultFormat(),
		{SampleRate: 192000, BitDepth: 16, Channels: 2, Signed: true},
		{SampleRate: 96000, BitDepth: 24, Channels: 2, Signed: true},
		{SampleRate: 8000, BitDepth: 8, Channels: 1, Signed: false},
	}

	for _, f := range supported {
		if err := Probe(f); err != nil {
			t.Errorf("Expected %+v to be supported, got %v", f, err)
		}
	}
}

func TestProbeRejectsUnsupportedFormats(t *testing.T) {
	unsupported := []pcm.Format{
		{SampleRate: 48000, BitDepth: 16, Channels: 1, Signed: true, BigEndian: true},
		{SampleRate: 48000, BitDepth: 16, Channels: 1, Signed: false},
		{SampleRate: 48000, BitDepth: 8, Channels: 1, Signed: true},
	}

	for _, f := range unsupported {
		if err := Probe(f); !errors.Is(err, ErrFormatUnsupported) {
			t.Errorf("Expected ErrFormatUnsupported for %+v, got %v", f, err)
		}
	}
}

func TestProbeRejectsInvalidFormat(t *testing.T) {
	if err := Probe(pcm.Format{}); !errors.Is(err, pcm.ErrInvalidFormat) {
		t.Errorf("Expected ErrInvalidFormat, got %v", err)
	}
}
