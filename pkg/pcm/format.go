// ABOUTME: PCM stream format description and frame math
// ABOUTME: Shared by every component that touches raw audio bytes
package pcm

import "errors"

// ErrInvalidFormat indicates a format whose fields cannot describe a
// playable PCM stream.
var ErrInvalidFormat = errors.New("invalid PCM format")

// Format describes a raw PCM stream: sample rate, sample size, channel
// count, signedness, and byte order. The zero value is not valid.
type Format struct {
	SampleRate float64
	BitDepth   int
	Channels   int
	Signed     bool
	BigEndian  bool
}

// DefaultFormat returns the capture default: 48kHz, 16-bit, mono,
// signed, little-endian.
func DefaultFormat() Format {
	return Format{
		SampleRate: 48000,
		BitDepth:   16,
		Channels:   1,
		Signed:     true,
		BigEndian:  false,
	}
}

// FrameSize returns the size of one frame (one sample per channel) in bytes.
func (f Format) FrameSize() int {
	return f.Channels * f.BitDepth / 8
}

// FrameRate returns the number of frames per second.
func (f Format) FrameRate() float64 {
	return f.SampleRate
}

// Validate checks that the format describes a stream this library can
// process. Byte buffers carrying audio in a valid format must have a
// length divisible by FrameSize, except capture buffers mid-fill.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return ErrInvalidFormat
	}
	if f.Channels < 1 {
		return ErrInvalidFormat
	}
	switch f.BitDepth {
	case 8, 16, 24, 32:
	default:
		return ErrInvalidFormat
	}
	if f.FrameSize() < 1 {
		return ErrInvalidFormat
	}
	return nil
}

// IsZero reports whether f is the zero Format, the Go stand-in for an
// absent format.
func (f Format) IsZero() bool {
	return f == Format{}
}
