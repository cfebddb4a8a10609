package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Player plays finished episodes through the system audio device. One oto
// context serves the whole process; contexts cannot be recreated once opened.
type Player struct {
	ctx        *oto.Context
	sampleRate int
	channels   int
}

// NewPlayer opens the audio device with the given output format.
func NewPlayer(sampleRate, channels int) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("unable to open audio device: %w", err)
	}
	<-ready

	return &Player{
		ctx:        ctx,
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}

// PlayFile decodes a WAV file and plays it to completion, or until ctx is
// canceled.
func (p *Player) PlayFile(ctx context.Context, path string) error {
	buf, err := DecodeFile(path)
	if err != nil {
		return err
	}
	if buf.Format.SampleRate != p.sampleRate || buf.Format.NumChannels != p.channels {
		return fmt.Errorf("file format %dHz/%dch does not match device format %dHz/%dch",
			buf.Format.SampleRate, buf.Format.NumChannels, p.sampleRate, p.channels)
	}

	pcm := make([]byte, len(buf.Data)*2)
	for i, sample := range buf.Data {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(sample)))
	}

	player := p.ctx.NewPlayer(bytes.NewReader(pcm))
	defer player.Close() //nolint:errcheck
	player.Play()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
