// ABOUTME: WAV container export and decoding for raw PCM buffers
// ABOUTME: Validates, applies crackle correction, and delegates muxing to go-audio
package wav

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/clipkit/clipkit-go/pkg/pcm"
)

var (
	ErrEmptyPath            = errors.New("file path is empty")
	ErrUnsupportedExtension = errors.New("file extension is not supported")
	ErrEmptyData            = errors.New("audio data is empty")
	ErrNotWav               = errors.New("not a WAV container")
)

// Export writes data as an uncompressed WAV file at path, after removing
// the capture transient with pcm.FixCrackle. The container header
// declares exactly len(trimmed)/frameSize frames.
//
// Validation order: path, extension, format, data. The first failing
// check wins.
func Export(path string, data []byte, f pcm.Format) error {
	if strings.TrimSpace(path) == "" {
		return ErrEmptyPath
	}
	if !strings.HasSuffix(path, ".wav") {
		return fmt.Errorf("%w: %s", ErrUnsupportedExtension, path)
	}
	if err := f.Validate(); err != nil {
		return err
	}
	if len(data) == 0 {
		return ErrEmptyData
	}

	trimmed, err := pcm.FixCrackle(data, f)
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	enc := wav.NewEncoder(out, int(f.SampleRate), f.BitDepth, f.Channels, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: f.Channels,
			SampleRate:  int(f.SampleRate),
		},
		Data:           pcm.BytesToInts(trimmed, f),
		SourceBitDepth: f.BitDepth,
	}

	if err := enc.Write(buf); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		out.Close()
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// Decode parses WAV container bytes and returns the raw little-endian
// PCM payload together with the format the header declares.
func Decode(data []byte) ([]byte, pcm.Format, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, pcm.Format{}, ErrNotWav
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, pcm.Format{}, fmt.Errorf("decode WAV payload: %w", err)
	}

	f := pcm.Format{
		SampleRate: float64(dec.SampleRate),
		BitDepth:   int(dec.BitDepth),
		Channels:   int(dec.NumChans),
		Signed:     dec.BitDepth > 8, // WAV PCM: 8-bit unsigned, wider signed
		BigEndian:  false,
	}
	if err := f.Validate(); err != nil {
		return nil, pcm.Format{}, fmt.Errorf("%w: header declares unusable format", ErrNotWav)
	}

	return pcm.IntsToBytes(buf.Data, f), f, nil
}
