package devices

import (
	"fmt"
	"io"

	"github.com/git-moss/ProjectConverter-sub001/pkg/rpp"
)

// Vst2 moves VST 2.x state. The preset side is the plugin's flat opaque
// state blob; the chunk side wraps it in the VST frame.
type Vst2 struct {
	// PluginID seeds the frame when writing into a chunk. Zero is accepted;
	// hosts identify the plugin from the chunk declaration.
	PluginID uint32
}

// Kind implements Handler.
func (v *Vst2) Kind() Kind {
	return KindVst2
}

// ChunkToFile implements Handler.
func (v *Vst2) ChunkToFile(chunk *rpp.Chunk, out io.Writer) error {
	raw, err := decodeLines(chunk.Lines())
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return fmt.Errorf("vst2 chunk %s: %w", chunk.Param(0, "?"), ErrNoState)
	}
	frame, err := parseFrame(raw)
	if err != nil {
		return err
	}
	_, err = out.Write(frame.Data)
	return err
}

// FileToChunk implements Handler.
func (v *Vst2) FileToChunk(in io.Reader, chunk *rpp.Chunk) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read vst2 state: %w", err)
	}
	encodeLines(chunk, encodeFrame(&vstFrame{PluginID: v.PluginID, Data: data}))
	return nil
}
