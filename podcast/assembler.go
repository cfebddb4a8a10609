package podcast

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/dgnsrekt/educast/podcast/audio"
)

// Assembler concatenates chunk files into one episode WAV, inserting a fixed
// pause between consecutive chunks. Chunk files are consumed: they are
// deleted whether assembly succeeds or fails, and on failure the output path
// is left absent.
type Assembler struct {
	pause  time.Duration
	logger *log.Logger
}

// NewAssembler creates an assembler with the given inter-chunk pause.
func NewAssembler(pause time.Duration, logger *log.Logger) *Assembler {
	return &Assembler{
		pause:  pause,
		logger: logger,
	}
}

// Assemble writes the ordered concatenation of the chunks to outputPath and
// returns the episode duration. The first chunk fixes the sample rate and
// channel count; there is no resampling. N chunks get N-1 pauses, never a
// leading or trailing one.
func (a *Assembler) Assemble(chunks []AudioChunk, outputPath string) (time.Duration, error) {
	defer removeChunks(chunks)

	if len(chunks) == 0 {
		return 0, NewPipelineError(ErrEmptyInput, "assembler", nil)
	}

	ordered := make([]AudioChunk, len(chunks))
	copy(ordered, chunks)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Ordinal < ordered[j].Ordinal })

	d, err := a.assemble(ordered, outputPath)
	if err != nil {
		// A failed export must not leave a partial episode behind.
		_ = os.Remove(outputPath)
		return 0, err
	}
	return d, nil
}

func (a *Assembler) assemble(chunks []AudioChunk, outputPath string) (time.Duration, error) {
	first, err := audio.DecodeFile(chunks[0].Path)
	if err != nil {
		return 0, NewPipelineError(ErrAssembly, "assembler", err)
	}
	format := first.Format
	bitDepth := first.SourceBitDepth

	out, err := os.Create(outputPath)
	if err != nil {
		return 0, NewPipelineError(ErrAssembly, "assembler", err)
	}
	defer out.Close() //nolint:errcheck

	enc := wav.NewEncoder(out, format.SampleRate, bitDepth, format.NumChannels, 1)

	var silence *gaudio.IntBuffer
	if a.pause > 0 {
		silence = audio.Silence(format, bitDepth, a.pause)
	}

	var total time.Duration
	for i, chunk := range chunks {
		buf := first
		if i > 0 {
			buf, err = audio.DecodeFile(chunk.Path)
			if err != nil {
				return 0, NewPipelineError(ErrAssembly, "assembler", err)
			}
			if buf.Format.SampleRate != format.SampleRate || buf.Format.NumChannels != format.NumChannels {
				return 0, NewPipelineError(ErrAssembly, "assembler",
					fmt.Errorf("chunk %d format %dHz/%dch does not match episode format %dHz/%dch",
						chunk.Ordinal, buf.Format.SampleRate, buf.Format.NumChannels,
						format.SampleRate, format.NumChannels))
			}
			if silence != nil {
				if err := enc.Write(silence); err != nil {
					return 0, NewPipelineError(ErrAssembly, "assembler", err)
				}
				total += a.pause
			}
		}
		if err := enc.Write(buf); err != nil {
			return 0, NewPipelineError(ErrAssembly, "assembler", err)
		}
		total += audio.Duration(buf)
	}

	if err := enc.Close(); err != nil {
		return 0, NewPipelineError(ErrAssembly, "assembler", err)
	}
	if err := out.Close(); err != nil {
		return 0, NewPipelineError(ErrAssembly, "assembler", err)
	}

	a.logger.Debug("episode assembled",
		"chunks", len(chunks),
		"duration", total,
		"output", outputPath,
	)
	return total, nil
}
