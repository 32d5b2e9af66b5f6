package devices

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// The decoded body of a VST device chunk: plugin id, two magic numbers, the
// channel routing masks, the state payload, and a program footer.
const (
	frameMagic1 = 0xDEADBEEF
	frameMagic2 = 0xDEADF00D

	routingMaskSize = 8
)

type vstFrame struct {
	PluginID    uint32
	Data        []byte
	Program     byte
	ProgramName string
}

// parseFrame decodes the VST state frame from the raw chunk body bytes.
func parseFrame(raw []byte) (*vstFrame, error) {
	r := bytes.NewReader(raw)

	var pluginID, magic uint32
	if err := binary.Read(r, binary.LittleEndian, &pluginID); err != nil {
		return nil, fmt.Errorf("truncated vst frame: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("truncated vst frame: %w", err)
	}
	if magic != frameMagic1 {
		return nil, fmt.Errorf("bad vst frame magic 0x%08X", magic)
	}

	for _, section := range []string{"input", "output"} {
		var count uint32
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, fmt.Errorf("truncated vst frame %s section: %w", section, err)
		}
		if count > uint32(r.Len())/routingMaskSize {
			return nil, fmt.Errorf("vst frame declares %d %s masks beyond the payload", count, section)
		}
		if _, err := r.Seek(int64(count)*routingMaskSize, 1); err != nil {
			return nil, fmt.Errorf("truncated vst frame %s masks: %w", section, err)
		}
	}

	var dataSize uint32
	if err := binary.Read(r, binary.LittleEndian, &dataSize); err != nil {
		return nil, fmt.Errorf("truncated vst frame: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("truncated vst frame: %w", err)
	}
	if magic != frameMagic2 {
		return nil, fmt.Errorf("bad vst frame data magic 0x%08X", magic)
	}
	if int(dataSize) > r.Len() {
		return nil, fmt.Errorf("vst frame declares %d state bytes, only %d remain", dataSize, r.Len())
	}

	frame := &vstFrame{PluginID: pluginID, Data: make([]byte, dataSize)}
	if _, err := r.Read(frame.Data); err != nil && dataSize > 0 {
		return nil, fmt.Errorf("truncated vst frame state: %w", err)
	}

	// Optional footer: program index and NUL-terminated program name.
	if b, err := r.ReadByte(); err == nil {
		frame.Program = b
		var name []byte
		for {
			c, err := r.ReadByte()
			if err != nil || c == 0 {
				break
			}
			name = append(name, c)
		}
		frame.ProgramName = string(name)
	}
	return frame, nil
}

// encodeFrame lays the frame out with default stereo routing.
func encodeFrame(f *vstFrame) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian

	_ = binary.Write(&buf, le, f.PluginID)
	_ = binary.Write(&buf, le, uint32(frameMagic1))

	for range 2 { // inputs, then outputs
		_ = binary.Write(&buf, le, uint32(2))
		_ = binary.Write(&buf, le, uint64(1))
		_ = binary.Write(&buf, le, uint64(2))
	}

	_ = binary.Write(&buf, le, uint32(len(f.Data)))
	_ = binary.Write(&buf, le, uint32(frameMagic2))
	buf.Write(f.Data)

	buf.WriteByte(f.Program)
	buf.WriteString(f.ProgramName)
	buf.WriteByte(0)
	return buf.Bytes()
}
