// ABOUTME: Device line interfaces for audio playback and capture
// ABOUTME: Common contract implemented by the miniaudio backend
package device

import (
	"errors"

	"github.com/clipkit/clipkit-go/pkg/pcm"
)

// ErrFormatUnsupported indicates the device cannot open a line with the
// requested PCM format. This is fatal for the component that asked.
var ErrFormatUnsupported = errors.New("audio format not supported by device")

// ErrLineClosed is returned by operations on a line that has been closed.
var ErrLineClosed = errors.New("device line is closed")

// OutputLine is an open playback line. Write queues PCM bytes for the
// device; Drain blocks until every queued byte has been handed to the
// hardware. Stop halts consumption without releasing the line, so a
// later Start resumes where playback left off.
type OutputLine interface {
	Start() error
	Stop() error
	Write(p []byte) (int, error)
	Drain() error
	Close() error

	// PositionMicros reports elapsed playback in microseconds, derived
	// from the frames delivered to the hardware.
	PositionMicros() int64
}

// InputLine is an open capture line. Read blocks until captured bytes
// are available and returns io.EOF once the line is closed and drained.
type InputLine interface {
	Start() error
	Stop() error
	Read(p []byte) (int, error)
	Close() error
}

// Probe reports whether a line could be opened with the given format,
// without touching the hardware. It is the construction-time check used
// by components that must fail fast on unsupported formats.
func Probe(f pcm.Format) error {
	if err := f.Validate(); err != nil {
		return err
	}
	_, err := malgoFormat(f)
	return err
}
