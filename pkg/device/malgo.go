// ABOUTME: Device line implementations backed by miniaudio via malgo
// ABOUTME: Playback drains a ring buffer in the data callback, capture fills one
package device

import (
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"

	"github.com/clipkit/clipkit-go/pkg/pcm"
)

// ringBufferMs is the line buffer capacity in milliseconds of audio.
const ringBufferMs = 500

// malgoFormat maps a PCM format onto a miniaudio sample format. Formats
// miniaudio cannot express fail with ErrFormatUnsupported.
func malgoFormat(f pcm.Format) (malgo.FormatType, error) {
	if f.BigEndian {
		return malgo.FormatUnknown, fmt.Errorf("%w: big-endian samples", ErrFormatUnsupported)
	}
	switch {
	case f.BitDepth == 8 && !f.Signed:
		return malgo.FormatU8, nil
	case f.BitDepth == 16 && f.Signed:
		return malgo.FormatS16, nil
	case f.BitDepth == 24 && f.Signed:
		return malgo.FormatS24, nil
	case f.BitDepth == 32 && f.Signed:
		return malgo.FormatS32, nil
	}
	return malgo.FormatUnknown, fmt.Errorf("%w: %d-bit signed=%v", ErrFormatUnsupported, f.BitDepth, f.Signed)
}

func ringCapacity(f pcm.Format) int {
	return int(f.SampleRate) * f.FrameSize() * ringBufferMs / 1000
}

// malgoOutput is an OutputLine over a miniaudio playback device.
type malgoOutput struct {
	mu        sync.Mutex
	ctx       *malgo.AllocatedContext
	device    *malgo.Device
	ring      *ringBuffer
	format    pcm.Format
	frameSize int
	closed    bool

	playedBytes atomic.Int64
}

// OpenOutput opens a playback line for the given format. The line is
// stopped; call Start to begin consuming queued audio.
func OpenOutput(f pcm.Format) (OutputLine, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	sampleFormat, err := malgoFormat(f)
	if err != nil {
		return nil, err
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}

	o := &malgoOutput{
		ctx:       ctx,
		ring:      newRingBuffer(ringCapacity(f)),
		format:    f,
		frameSize: f.FrameSize(),
	}

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = sampleFormat
	config.Playback.Channels = uint32(f.Channels)
	config.SampleRate = uint32(f.SampleRate)
	config.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, pInput []byte, frameCount uint32) {
			n := o.ring.tryRead(pOutput)
			o.playedBytes.Add(int64(n))
		},
	}

	device, err := malgo.InitDevice(ctx.Context, config, callbacks)
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("%w: %v", ErrFormatUnsupported, err)
	}
	o.device = device

	return o, nil
}

func (o *malgoOutput) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrLineClosed
	}
	if o.device.IsStarted() {
		return nil
	}
	if err := o.device.Start(); err != nil {
		return fmt.Errorf("start playback device: %w", err)
	}
	return nil
}

func (o *malgoOutput) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrLineClosed
	}
	if !o.device.IsStarted() {
		return nil
	}
	if err := o.device.Stop(); err != nil {
		return fmt.Errorf("stop playback device: %w", err)
	}
	return nil
}

// Write queues p for playback, blocking while the ring buffer is full. A
// stopped line does not drain the buffer, so writers stay blocked until
// the line is restarted or closed.
func (o *malgoOutput) Write(p []byte) (int, error) {
	n, ok := o.ring.writeBlocking(p)
	if !ok {
		return n, ErrLineClosed
	}
	return n, nil
}

func (o *malgoOutput) Drain() error {
	o.ring.waitEmpty()
	return nil
}

func (o *malgoOutput) PositionMicros() int64 {
	frames := o.playedBytes.Load() / int64(o.frameSize)
	return int64(float64(frames) / o.format.SampleRate * 1e6)
}

func (o *malgoOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	o.ring.close()
	if err := o.device.Stop(); err != nil {
		log.Printf("device: stop on close: %v", err)
	}
	o.device.Uninit()
	if err := o.ctx.Uninit(); err != nil {
		log.Printf("device: context uninit: %v", err)
	}
	o.ctx.Free()
	return nil
}

// malgoInput is an InputLine over a miniaudio capture device.
type malgoInput struct {
	mu     sync.Mutex
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	ring   *ringBuffer
	closed bool

	droppedBytes atomic.Int64
}

// OpenInput opens a capture line for the given format. The line is
// stopped; call Start to begin capturing.
func OpenInput(f pcm.Format) (InputLine, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	sampleFormat, err := malgoFormat(f)
	if err != nil {
		return nil, err
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}

	in := &malgoInput{
		ctx:  ctx,
		ring: newRingBuffer(ringCapacity(f)),
	}

	config := malgo.DefaultDeviceConfig(malgo.Capture)
	config.Capture.Format = sampleFormat
	config.Capture.Channels = uint32(f.Channels)
	config.SampleRate = uint32(f.SampleRate)
	config.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, pInput []byte, frameCount uint32) {
			n := in.ring.tryWrite(pInput)
			if n < len(pInput) {
				// Reader fell behind the device. Count the overrun so a
				// slow consumer is visible.
				in.droppedBytes.Add(int64(len(pInput) - n))
			}
		},
	}

	device, err := malgo.InitDevice(ctx.Context, config, callbacks)
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("%w: %v", ErrFormatUnsupported, err)
	}
	in.device = device

	return in, nil
}

func (in *malgoInput) Start() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return ErrLineClosed
	}
	if in.device.IsStarted() {
		return nil
	}
	if err := in.device.Start(); err != nil {
		return fmt.Errorf("start capture device: %w", err)
	}
	return nil
}

func (in *malgoInput) Stop() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return ErrLineClosed
	}
	if !in.device.IsStarted() {
		return nil
	}
	if err := in.device.Stop(); err != nil {
		return fmt.Errorf("stop capture device: %w", err)
	}
	return nil
}

// Read blocks until captured bytes are available. It returns io.EOF once
// the line is closed and its buffer drained.
func (in *malgoInput) Read(p []byte) (int, error) {
	n, ok := in.ring.readBlocking(p)
	if !ok {
		return n, io.EOF
	}
	return n, nil
}

func (in *malgoInput) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return nil
	}
	in.closed = true
	if err := in.device.Stop(); err != nil {
		log.Printf("device: stop on close: %v", err)
	}
	in.device.Uninit()
	in.ring.close()
	if dropped := in.droppedBytes.Load(); dropped > 0 {
		log.Printf("device: capture overrun, dropped %d bytes", dropped)
	}
	if err := in.ctx.Uninit(); err != nil {
		log.Printf("device: context uninit: %v", err)
	}
	in.ctx.Free()
	return nil
}
