// Package vst3preset reads and writes the fixed-layout .vstpreset container.
package vst3preset

import (
	"fmt"
	"io"
	"math"
)

const (
	headerMagic = "VST3"
	listMagic   = "List"

	// HeaderSize is the fixed byte length of the container header:
	// magic, version, 32-byte class id, chunk-list offset.
	HeaderSize = 4 + 4 + 32 + 8

	// ClassIDLength is the fixed length of the ASCII class identifier.
	ClassIDLength = 32

	formatVersion = 1
)

// chunkIDs is the fixed vocabulary assigned to chunks in write order.
var chunkIDs = []string{"Comp", "Cont", "Prog", "Info"}

// ChunkIDComponent and ChunkIDController name the two well-known regions.
const (
	ChunkIDComponent  = "Comp"
	ChunkIDController = "Cont"
)

// FormatError reports a malformed preset container.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string {
	return "vst3preset: " + e.Msg
}

// ChunkInfo describes one sub-region of a preset's data section.
type ChunkInfo struct {
	ID     string // 4-character tag
	Offset int64  // absolute offset within the container
	Size   int64
}

// Preset is a decoded .vstpreset container. Chunk regions index into Data
// relative to the container (the first region starts at HeaderSize).
type Preset struct {
	Version int32
	ClassID string
	Data    []byte
	Chunks  []ChunkInfo
}

// ChunkData returns the bytes of the chunk with the given id, or nil when
// the preset carries no such chunk.
func (p *Preset) ChunkData(id string) []byte {
	for _, c := range p.Chunks {
		start := c.Offset - HeaderSize
		if c.ID == id && start >= 0 && start+c.Size <= int64(len(p.Data)) {
			return p.Data[start : start+c.Size]
		}
	}
	return nil
}

// Read decodes a preset container from r.
func Read(r io.Reader) (*Preset, error) {
	in := &reader{r: r}

	magic, err := in.tag()
	if err != nil {
		return nil, err
	}
	if magic != headerMagic {
		return nil, &FormatError{Msg: fmt.Sprintf("bad header magic %q", magic)}
	}

	version, err := in.uint32()
	if err != nil {
		return nil, err
	}
	classID, err := in.ascii(ClassIDLength)
	if err != nil {
		return nil, err
	}
	listOffset, err := in.uint64()
	if err != nil {
		return nil, err
	}
	if listOffset < HeaderSize {
		return nil, &FormatError{Msg: fmt.Sprintf("chunk list offset %d inside header", listOffset)}
	}

	data, err := in.bytes(int(listOffset - HeaderSize))
	if err != nil {
		return nil, err
	}

	magic, err = in.tag()
	if err != nil {
		return nil, err
	}
	if magic != listMagic {
		return nil, &FormatError{Msg: fmt.Sprintf("bad chunk list magic %q", magic)}
	}

	count, err := in.uint32()
	if err != nil {
		return nil, err
	}

	preset := &Preset{
		Version: int32(version),
		ClassID: classID,
		Data:    data,
		Chunks:  make([]ChunkInfo, 0, count),
	}
	for i := uint32(0); i < count; i++ {
		id, err := in.tag()
		if err != nil {
			return nil, err
		}
		offset, err := in.uint64()
		if err != nil {
			return nil, err
		}
		size, err := in.uint64()
		if err != nil {
			return nil, err
		}
		preset.Chunks = append(preset.Chunks, ChunkInfo{
			ID:     id,
			Offset: int64(offset),
			Size:   int64(size),
		})
	}
	return preset, nil
}

// Write lays the given chunks out contiguously after the header, in input
// order, tagging them from the fixed vocabulary (component state first, then
// controller state), and appends the chunk list. Chunks larger than 2^32-1
// bytes are rejected.
func Write(w io.Writer, classID string, chunks [][]byte) error {
	if len(classID) != ClassIDLength {
		return &FormatError{Msg: fmt.Sprintf("class id must be %d characters, got %d", ClassIDLength, len(classID))}
	}
	if len(chunks) > len(chunkIDs) {
		return &FormatError{Msg: fmt.Sprintf("at most %d chunks supported, got %d", len(chunkIDs), len(chunks))}
	}

	total := int64(0)
	for i, c := range chunks {
		if int64(len(c)) > math.MaxUint32 {
			return &FormatError{Msg: fmt.Sprintf("chunk %d exceeds the 32-bit size ceiling", i)}
		}
		total += int64(len(c))
	}

	out := &writer{w: w}
	if err := out.tag(headerMagic); err != nil {
		return err
	}
	if err := out.uint32(formatVersion); err != nil {
		return err
	}
	if err := out.tag(classID); err != nil {
		return err
	}
	if err := out.uint64(uint64(HeaderSize + total)); err != nil {
		return err
	}

	for _, c := range chunks {
		if err := out.bytes(c); err != nil {
			return err
		}
	}

	if err := out.tag(listMagic); err != nil {
		return err
	}
	if err := out.uint32(uint32(len(chunks))); err != nil {
		return err
	}
	offset := int64(HeaderSize)
	for i, c := range chunks {
		if err := out.tag(chunkIDs[i]); err != nil {
			return err
		}
		if err := out.uint64(uint64(offset)); err != nil {
			return err
		}
		if err := out.uint64(uint64(len(c))); err != nil {
			return err
		}
		offset += int64(len(c))
	}
	return nil
}
