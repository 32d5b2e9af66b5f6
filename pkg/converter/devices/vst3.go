package devices

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/git-moss/ProjectConverter-sub001/pkg/rpp"
	"github.com/git-moss/ProjectConverter-sub001/pkg/vst3preset"
)

// Vst3 moves VST 3 state. The preset side is a self-describing .vstpreset
// container with component and controller chunks; the chunk side stores
// both regions inside the VST frame as a length-prefixed pair.
type Vst3 struct {
	// ClassID is the 32-character ASCII plugin identifier used when a
	// preset container is written. When empty it is derived from the
	// frame's plugin id.
	ClassID  string
	PluginID uint32
}

// Kind implements Handler.
func (v *Vst3) Kind() Kind {
	return KindVst3
}

// ChunkToFile implements Handler.
func (v *Vst3) ChunkToFile(chunk *rpp.Chunk, out io.Writer) error {
	raw, err := decodeLines(chunk.Lines())
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return fmt.Errorf("vst3 chunk %s: %w", chunk.Param(0, "?"), ErrNoState)
	}
	frame, err := parseFrame(raw)
	if err != nil {
		return err
	}

	component, controller, err := splitStatePair(frame.Data)
	if err != nil {
		return err
	}

	classID := v.ClassID
	if classID == "" {
		classID = deriveClassID(frame.PluginID)
	}
	return vst3preset.Write(out, classID, [][]byte{component, controller})
}

// FileToChunk implements Handler.
func (v *Vst3) FileToChunk(in io.Reader, chunk *rpp.Chunk) error {
	preset, err := vst3preset.Read(in)
	if err != nil {
		return err
	}
	component := preset.ChunkData(vst3preset.ChunkIDComponent)
	controller := preset.ChunkData(vst3preset.ChunkIDController)
	if component == nil {
		return fmt.Errorf("preset %s carries no component state: %w", preset.ClassID, ErrNoState)
	}

	data := joinStatePair(component, controller)
	encodeLines(chunk, encodeFrame(&vstFrame{PluginID: v.PluginID, Data: data}))
	return nil
}

// splitStatePair undoes joinStatePair: a little-endian component length,
// the component bytes, then the controller bytes.
func splitStatePair(data []byte) (component, controller []byte, err error) {
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("vst3 state pair too short: %d bytes", len(data))
	}
	n := binary.LittleEndian.Uint32(data)
	if int(n) > len(data)-4 {
		return nil, nil, fmt.Errorf("vst3 state pair declares %d component bytes of %d", n, len(data)-4)
	}
	return data[4 : 4+n], data[4+n:], nil
}

func joinStatePair(component, controller []byte) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(component)))
	buf.Write(component)
	buf.Write(controller)
	return buf.Bytes()
}

// deriveClassID expands a 32-bit plugin id to the fixed-width ASCII form.
func deriveClassID(pluginID uint32) string {
	return fmt.Sprintf("%08X000000000000000000000000", pluginID)
}
