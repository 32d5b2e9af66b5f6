package devices

import (
	"fmt"
	"io"

	"github.com/git-moss/ProjectConverter-sub001/pkg/rpp"
)

// clapStateChunk names the nested chunk holding a CLAP plugin's state text.
const clapStateChunk = "STATE"

// Clap moves CLAP state: a single text-encoded block under a STATE child
// chunk on one side, the raw state bytes on the other.
type Clap struct{}

// Kind implements Handler.
func (c *Clap) Kind() Kind {
	return KindClap
}

// ChunkToFile implements Handler.
func (c *Clap) ChunkToFile(chunk *rpp.Chunk, out io.Writer) error {
	state := chunk.ChildChunk(clapStateChunk)
	if state == nil {
		return fmt.Errorf("clap chunk %s has no %s block: %w", chunk.Param(0, "?"), clapStateChunk, ErrNoState)
	}
	data, err := decodeLines(state.Lines())
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

// FileToChunk implements Handler.
func (c *Clap) FileToChunk(in io.Reader, chunk *rpp.Chunk) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read clap state: %w", err)
	}
	encodeLines(chunk.AddChunk(clapStateChunk), data)
	return nil
}
