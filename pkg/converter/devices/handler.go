// Package devices provides per-plugin-kind state handlers moving binary
// plugin state between the project chunk tree and preset files.
package devices

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/git-moss/ProjectConverter-sub001/pkg/rpp"
)

// Kind identifies a plugin format.
type Kind string

const (
	KindVst2 Kind = "vst2"
	KindVst3 Kind = "vst3"
	KindClap Kind = "clap"
)

// ErrNoState reports a device chunk without the expected state block.
var ErrNoState = errors.New("device chunk carries no state")

// Handler moves a device's binary state between its chunk-tree text
// representation and a preset byte stream. Handlers never touch chunk-tree
// state outside the device chunk they are handed.
type Handler interface {
	Kind() Kind
	// ChunkToFile decodes the device chunk's embedded state and writes the
	// preset bytes to out.
	ChunkToFile(chunk *rpp.Chunk, out io.Writer) error
	// FileToChunk reads preset bytes from in and embeds them into chunk.
	FileToChunk(in io.Reader, chunk *rpp.Chunk) error
}

// ForKind returns the handler for a plugin kind. The lookup is static; an
// unknown kind yields ok == false.
func ForKind(k Kind) (Handler, bool) {
	switch k {
	case KindVst2:
		return &Vst2{}, true
	case KindVst3:
		return &Vst3{}, true
	case KindClap:
		return &Clap{}, true
	default:
		return nil, false
	}
}

// stateLineWidth is the column at which embedded base64 text wraps. It is a
// multiple of four so every line decodes independently.
const stateLineWidth = 128

// decodeLines decodes and concatenates the base64 text of the given lines.
func decodeLines(lines []*rpp.Line) ([]byte, error) {
	var out []byte
	for _, l := range lines {
		text := strings.TrimSpace(l.Tag())
		if text == "" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("malformed state text %q: %w", truncate(text, 24), err)
		}
		out = append(out, decoded...)
	}
	return out, nil
}

// encodeLines encodes data as wrapped base64 lines appended to chunk.
func encodeLines(chunk *rpp.Chunk, data []byte) {
	text := base64.StdEncoding.EncodeToString(data)
	for len(text) > stateLineWidth {
		chunk.AddLine(text[:stateLineWidth])
		text = text[stateLineWidth:]
	}
	chunk.AddLine(text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
