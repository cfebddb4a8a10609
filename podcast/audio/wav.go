// Package audio provides the WAV plumbing shared by the synthesis engines
// and the episode assembler: in-memory encoding, chunk decoding, silence
// generation, and duration math.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeSeekBuffer adapts a byte slice to io.WriteSeeker so the wav encoder
// can patch header sizes after the fact.
type writeSeekBuffer struct {
	data []byte
	pos  int
}

func (b *writeSeekBuffer) Write(p []byte) (int, error) {
	if need := b.pos + len(p); need > len(b.data) {
		grown := make([]byte, need)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:], p)
	b.pos += len(p)
	return len(p), nil
}

func (b *writeSeekBuffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(b.pos) + offset
	case io.SeekEnd:
		pos = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("negative seek position %d", pos)
	}
	b.pos = int(pos)
	return pos, nil
}

// EncodeBuffer serializes a PCM buffer to WAV bytes.
func EncodeBuffer(buf *gaudio.IntBuffer) ([]byte, error) {
	if buf == nil || buf.Format == nil {
		return nil, fmt.Errorf("nil audio buffer")
	}
	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}

	ws := &writeSeekBuffer{}
	enc := wav.NewEncoder(ws, buf.Format.SampleRate, bitDepth, buf.Format.NumChannels, 1)
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("unable to encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("unable to finalize wav: %w", err)
	}
	return ws.data, nil
}

// FromPCM16 wraps raw little-endian 16-bit PCM, as produced by piper's
// --output-raw mode, into a WAV clip.
func FromPCM16(data []byte, sampleRate, channels int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("no audio data")
	}
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("odd pcm16 payload length %d", len(data))
	}

	samples := make([]int, len(data)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(data[i*2:])))
	}

	return EncodeBuffer(&gaudio.IntBuffer{
		Format:         &gaudio.Format{SampleRate: sampleRate, NumChannels: channels},
		Data:           samples,
		SourceBitDepth: 16,
	})
}

// DecodeFile reads a WAV file into a PCM buffer.
func DecodeFile(path string) (*gaudio.IntBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open wav file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid wav file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("unable to decode wav file: %w", err)
	}
	if buf.SourceBitDepth == 0 {
		buf.SourceBitDepth = int(dec.BitDepth)
	}
	return buf, nil
}

// Silence produces a buffer of d worth of silence in the given format.
func Silence(format *gaudio.Format, bitDepth int, d time.Duration) *gaudio.IntBuffer {
	frames := int(float64(format.SampleRate) * d.Seconds())
	return &gaudio.IntBuffer{
		Format:         &gaudio.Format{SampleRate: format.SampleRate, NumChannels: format.NumChannels},
		Data:           make([]int, frames*format.NumChannels),
		SourceBitDepth: bitDepth,
	}
}

// Duration computes the play time of a PCM buffer from its frame count.
func Duration(buf *gaudio.IntBuffer) time.Duration {
	if buf == nil || buf.Format == nil || buf.Format.SampleRate == 0 || buf.Format.NumChannels == 0 {
		return 0
	}
	frames := len(buf.Data) / buf.Format.NumChannels
	return time.Duration(float64(frames) / float64(buf.Format.SampleRate) * float64(time.Second))
}
