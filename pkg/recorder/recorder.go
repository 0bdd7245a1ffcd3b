// ABOUTME: Background capture of PCM audio from a hardware input line
// ABOUTME: Accumulates chunks off the device and materializes a normalized clip
package recorder

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/clipkit/clipkit-go/pkg/clip"
	"github.com/clipkit/clipkit-go/pkg/device"
	"github.com/clipkit/clipkit-go/pkg/pcm"
	"github.com/clipkit/clipkit-go/pkg/wav"
)

// ErrNoCapture is returned by Clip when no capture session ever ran.
var ErrNoCapture = errors.New("no audio captured")

// captureChunkSize is the fixed read size off the device line.
const captureChunkSize = 4096

// LineOpener opens a capture line for a format.
type LineOpener func(pcm.Format) (device.InputLine, error)

// Option configures a Recorder at construction.
type Option func(*Recorder)

// WithLineOpener replaces the default device backend.
func WithLineOpener(open LineOpener) Option {
	return func(r *Recorder) { r.open = open }
}

// Recorder drives a hardware input line on a background goroutine and
// accumulates the captured bytes. One capture session may be in flight
// at a time.
type Recorder struct {
	format pcm.Format
	open   LineOpener

	recording atomic.Bool

	mu       sync.Mutex
	line     device.InputLine
	buf      bytes.Buffer
	captured bool
	done     chan struct{}
}

// New creates a recorder for the given format. The device is probed up
// front: an unsupported format fails here with
// device.ErrFormatUnsupported and the recorder is unusable.
func New(f pcm.Format, opts ...Option) (*Recorder, error) {
	if err := device.Probe(f); err != nil {
		return nil, err
	}
	r := &Recorder{format: f, open: device.OpenInput}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// NewDefault creates a recorder at 48kHz, 16-bit, mono.
func NewDefault(opts ...Option) (*Recorder, error) {
	return New(pcm.DefaultFormat(), opts...)
}

// Start begins capturing on a background goroutine and returns
// immediately. A second Start while recording is a no-op. Device
// failures inside the session are logged, not returned; poll
// IsRecording to observe them.
func (r *Recorder) Start() {
	if !r.recording.CompareAndSwap(false, true) {
		return
	}

	done := make(chan struct{})
	r.mu.Lock()
	r.buf.Reset()
	r.done = done
	r.mu.Unlock()

	go r.capture(done)
}

func (r *Recorder) capture(done chan struct{}) {
	defer close(done)

	line, err := r.open(r.format)
	if err != nil {
		log.Printf("recorder: open capture line: %v", err)
		r.recording.Store(false)
		return
	}

	r.mu.Lock()
	r.line = line
	r.captured = true
	r.mu.Unlock()

	// Release the line ourselves unless Stop already took it.
	defer func() {
		r.mu.Lock()
		owned := r.line == line
		if owned {
			r.line = nil
		}
		r.mu.Unlock()
		if owned {
			line.Stop()
			line.Close()
		}
	}()

	if err := line.Start(); err != nil {
		log.Printf("recorder: start capture line: %v", err)
		r.recording.Store(false)
		return
	}

	chunk := make([]byte, captureChunkSize)
	for r.recording.Load() {
		n, err := line.Read(chunk)
		if n > 0 {
			r.mu.Lock()
			r.buf.Write(chunk[:n])
			r.mu.Unlock()
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("recorder: read capture line: %v", err)
			}
			break
		}
	}
	r.recording.Store(false)
}

// Stop ends the capture session: it clears the recording flag, closes
// the line to unblock the pending device read, and joins the capture
// goroutine. Safe to call repeatedly or when not recording.
func (r *Recorder) Stop() {
	r.recording.Store(false)

	r.mu.Lock()
	line := r.line
	r.line = nil
	done := r.done
	r.mu.Unlock()

	if line != nil {
		line.Stop()
		line.Close()
	}
	if done != nil {
		<-done
	}
}

// Clip stops any capture in flight and materializes the captured bytes
// as a fresh clip. The bytes are round-tripped through the export
// pipeline to a digest-named temporary WAV file and reloaded, so the
// returned clip carries the same normalized header metadata as any
// freshly loaded file. Returns ErrNoCapture when no session ever ran.
func (r *Recorder) Clip() (*clip.Clip, error) {
	r.Stop()

	r.mu.Lock()
	captured := r.captured
	data := append([]byte(nil), r.buf.Bytes()...)
	r.mu.Unlock()

	if !captured {
		return nil, ErrNoCapture
	}

	digest := sha256.Sum256(data)
	path := filepath.Join(os.TempDir(), hex.EncodeToString(digest[:])+".wav")

	if err := wav.Export(path, data, r.format); err != nil {
		return nil, fmt.Errorf("export capture: %w", err)
	}
	container, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reload capture: %w", err)
	}
	if err := os.Remove(path); err != nil {
		log.Printf("recorder: remove temp file %s: %v", path, err)
	}

	c, err := clip.New(container)
	if err != nil {
		return nil, fmt.Errorf("decode capture: %w", err)
	}
	return c, nil
}

// IsRecording reports whether a capture session is in flight.
func (r *Recorder) IsRecording() bool {
	return r.recording.Load()
}

// Format returns the fixed capture format.
func (r *Recorder) Format() pcm.Format {
	return r.format
}
