// ABOUTME: In-memory playable and exportable PCM audio clip
// ABOUTME: Fire-and-forget playback over a lazily bound device line
package clip

import (
	"log"
	"math"
	"sync"
	"sync/atomic"

	"github.com/clipkit/clipkit-go/pkg/device"
	"github.com/clipkit/clipkit-go/pkg/pcm"
	"github.com/clipkit/clipkit-go/pkg/wav"
)

// State is the playback lifecycle of a Clip.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// LineOpener opens a playback line for a format. Clips bind their line
// through it on first Play, which keeps the device backend swappable.
type LineOpener func(pcm.Format) (device.OutputLine, error)

// Option configures a Clip at construction.
type Option func(*Clip)

// WithLineOpener replaces the default device backend.
func WithLineOpener(open LineOpener) Option {
	return func(c *Clip) { c.open = open }
}

// Clip is an in-memory unit of PCM audio. The byte buffer is owned by
// the clip and never mutated after construction; Copy produces a new
// clip over the same bytes with its own device binding, so one buffer
// can play many times concurrently.
type Clip struct {
	data   []byte
	format pcm.Format

	mu      sync.Mutex
	line    device.OutputLine
	state   State
	open    LineOpener
	playing atomic.Bool
}

// New builds a clip from self-describing container bytes, sniffing the
// format from the WAV header.
func New(container []byte, opts ...Option) (*Clip, error) {
	raw, f, err := wav.Decode(container)
	if err != nil {
		return nil, err
	}
	return NewWithFormat(raw, f, opts...)
}

// NewWithFormat builds a clip from raw PCM bytes and an explicit format.
func NewWithFormat(data []byte, f pcm.Format, opts ...Option) (*Clip, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	c := &Clip{
		data:   data,
		format: f,
		state:  StateIdle,
		open:   device.OpenOutput,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Play starts playback in a background goroutine and returns
// immediately. It is a no-op while the clip is already playing, and a
// logged no-op once the clip is closed; it never reallocates a released
// line. Completion is observable through IsPlaying.
func (c *Clip) Play() {
	c.mu.Lock()
	switch c.state {
	case StateClosed:
		c.mu.Unlock()
		log.Printf("clip: play on closed clip ignored")
		return
	case StatePlaying:
		c.mu.Unlock()
		return
	}

	if c.line == nil {
		line, err := c.open(c.format)
		if err != nil {
			c.mu.Unlock()
			log.Printf("clip: open playback line: %v", err)
			return
		}
		c.line = line
	}
	line := c.line
	c.state = StatePlaying
	c.playing.Store(true)
	c.mu.Unlock()

	go func() {
		defer c.playing.Store(false)
		if err := line.Start(); err != nil {
			log.Printf("clip: start playback: %v", err)
			c.settle()
			return
		}
		if _, err := line.Write(c.data); err != nil {
			log.Printf("clip: write payload: %v", err)
			c.settle()
			return
		}
		if err := line.Drain(); err != nil {
			log.Printf("clip: drain: %v", err)
		}
		if err := line.Stop(); err != nil && err != device.ErrLineClosed {
			log.Printf("clip: stop playback: %v", err)
		}
		c.settle()
	}()
}

// settle returns a finished playback to idle unless a transport call
// moved the clip elsewhere in the meantime.
func (c *Clip) settle() {
	c.mu.Lock()
	if c.state == StatePlaying {
		c.state = StateIdle
	}
	c.mu.Unlock()
}

// Pause stops the bound line without releasing it. No effect when the
// clip is not playing.
func (c *Clip) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.line == nil || c.state != StatePlaying {
		return
	}
	if err := c.line.Stop(); err != nil {
		log.Printf("clip: pause: %v", err)
		return
	}
	c.state = StatePaused
}

// Resume restarts a paused line. No effect when the clip is not paused.
func (c *Clip) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.line == nil || c.state != StatePaused {
		return
	}
	if err := c.line.Start(); err != nil {
		log.Printf("clip: resume: %v", err)
		return
	}
	c.state = StatePlaying
}

// Close releases the device line. Closed is terminal: later transport
// calls are no-ops.
func (c *Clip) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return
	}
	if c.line != nil {
		if err := c.line.Close(); err != nil {
			log.Printf("clip: close line: %v", err)
		}
		c.line = nil
	}
	c.state = StateClosed
}

// IsPlaying reports whether a playback goroutine is still in flight.
// Pausing does not finish a playback, so a paused clip still reports
// true.
func (c *Clip) IsPlaying() bool {
	return c.playing.Load()
}

// State returns the current lifecycle state.
func (c *Clip) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Bytes returns the clip's raw PCM payload. Callers must not modify it.
func (c *Clip) Bytes() []byte {
	return c.data
}

// Format returns the clip's PCM format.
func (c *Clip) Format() pcm.Format {
	return c.format
}

// Size returns the payload length in bytes.
func (c *Clip) Size() int {
	return len(c.data)
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	return float64(len(c.data)) / float64(c.format.FrameSize()) / c.format.FrameRate()
}

// Position returns elapsed playback in seconds, 0 while no line is
// bound.
func (c *Clip) Position() float64 {
	c.mu.Lock()
	line := c.line
	c.mu.Unlock()
	if line == nil {
		return 0
	}
	return float64(line.PositionMicros()) / 1e6
}

// Progress returns Position divided by Duration. For an empty clip the
// duration is zero and Progress returns NaN.
func (c *Clip) Progress() float64 {
	d := c.Duration()
	if d == 0 {
		return math.NaN()
	}
	return c.Position() / d
}

// Export writes the clip to a WAV file through the export pipeline,
// crackle correction included.
func (c *Clip) Export(path string) error {
	return wav.Export(path, c.data, c.format)
}

// Copy returns a new idle clip over the same underlying bytes with an
// independent device binding and state.
func (c *Clip) Copy() *Clip {
	return &Clip{
		data:   c.data,
		format: c.format,
		state:  StateIdle,
		open:   c.open,
	}
}
