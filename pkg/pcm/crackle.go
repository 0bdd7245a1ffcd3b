// ABOUTME: Frame-aligned removal of the device warm-up transient
// ABOUTME: Trims a fixed leading offset from captured PCM byte buffers
package pcm

import (
	"errors"
	"fmt"
	"math"
)

// ErrOffsetOutOfRange indicates the crackle offset is degenerate for the
// given buffer: the capture is too short to survive the trim.
var ErrOffsetOutOfRange = errors.New("crackle offset out of range")

// CrackleOffset returns the number of leading bytes attributable to the
// device warm-up transient for the given format. The offset is the
// ceiling of (1e9 / sampleRate) / bitDepth / 2, rounded up to the next
// frame boundary. The ceiling is taken before frame alignment; swapping
// the order shifts the cut by up to one frame.
func CrackleOffset(f Format) int {
	offset := int(math.Ceil(1e9 / f.SampleRate / float64(f.BitDepth) / 2))
	frameSize := f.FrameSize()
	for offset%frameSize != 0 {
		offset++
	}
	return offset
}

// FixCrackle returns a copy of data with the leading warm-up transient
// removed. The input buffer is never modified. The result length is
// always a multiple of the frame size when the input length is.
func FixCrackle(data []byte, f Format) ([]byte, error) {
	offset := CrackleOffset(f)
	if offset <= 0 || offset >= len(data) {
		return nil, fmt.Errorf("%w: offset %d, buffer %d bytes", ErrOffsetOutOfRange, offset, len(data))
	}
	trimmed := make([]byte, len(data)-offset)
	copy(trimmed, data[offset:])
	return trimmed, nil
}
