package devices

import (
	"bytes"
	"errors"
	"testing"

	"github.com/git-moss/ProjectConverter-sub001/pkg/rpp"
	"github.com/git-moss/ProjectConverter-sub001/pkg/vst3preset"
)

func TestForKind(t *testing.T) {
	for _, kind := range []Kind{KindVst2, KindVst3, KindClap} {
		h, ok := ForKind(kind)
		if !ok {
			t.Fatalf("ForKind(%q) not found", kind)
		}
		if h.Kind() != kind {
			t.Errorf("handler kind = %q, want %q", h.Kind(), kind)
		}
	}

	if _, ok := ForKind("au"); ok {
		t.Error("ForKind should not know 'au'")
	}
}

// arbitraryState is deliberately not 7-bit clean and longer than one
// wrapped text line.
func arbitraryState() []byte {
	state := make([]byte, 300)
	for i := range state {
		state[i] = byte(i * 7)
	}
	return state
}

func TestVst2RoundTrip(t *testing.T) {
	state := arbitraryState()
	h := &Vst2{PluginID: 0x41424344}

	chunk := &rpp.Chunk{Name: "VST"}
	if err := h.FileToChunk(bytes.NewReader(state), chunk); err != nil {
		t.Fatalf("FileToChunk: %v", err)
	}

	// The chunk must survive text serialization.
	reparsed, err := rpp.Parse(rpp.FormatLines(chunk))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}

	var out bytes.Buffer
	if err := h.ChunkToFile(reparsed, &out); err != nil {
		t.Fatalf("ChunkToFile: %v", err)
	}
	if !bytes.Equal(out.Bytes(), state) {
		t.Errorf("state mismatch: got %d bytes, want %d", out.Len(), len(state))
	}
}

func TestVst3RoundTrip(t *testing.T) {
	classID := "ABCDEF01234567890000000000000000"
	component := arbitraryState()
	controller := []byte{9, 8, 7}

	// Start from a preset container, embed it, and extract it again.
	var preset bytes.Buffer
	if err := vst3preset.Write(&preset, classID, [][]byte{component, controller}); err != nil {
		t.Fatalf("preset write: %v", err)
	}

	h := &Vst3{ClassID: classID}
	chunk := &rpp.Chunk{Name: "VST"}
	if err := h.FileToChunk(bytes.NewReader(preset.Bytes()), chunk); err != nil {
		t.Fatalf("FileToChunk: %v", err)
	}

	var out bytes.Buffer
	if err := h.ChunkToFile(chunk, &out); err != nil {
		t.Fatalf("ChunkToFile: %v", err)
	}

	got, err := vst3preset.Read(&out)
	if err != nil {
		t.Fatalf("preset read: %v", err)
	}
	if got.ClassID != classID {
		t.Errorf("class id = %q, want %q", got.ClassID, classID)
	}
	if !bytes.Equal(got.ChunkData(vst3preset.ChunkIDComponent), component) {
		t.Error("component state mismatch")
	}
	if !bytes.Equal(got.ChunkData(vst3preset.ChunkIDController), controller) {
		t.Error("controller state mismatch")
	}
}

func TestClapRoundTrip(t *testing.T) {
	state := arbitraryState()
	h := &Clap{}

	chunk := &rpp.Chunk{Name: "CLAP"}
	if err := h.FileToChunk(bytes.NewReader(state), chunk); err != nil {
		t.Fatalf("FileToChunk: %v", err)
	}
	if chunk.ChildChunk("STATE") == nil {
		t.Fatal("FileToChunk did not create a STATE block")
	}

	var out bytes.Buffer
	if err := h.ChunkToFile(chunk, &out); err != nil {
		t.Fatalf("ChunkToFile: %v", err)
	}
	if !bytes.Equal(out.Bytes(), state) {
		t.Error("state mismatch after round trip")
	}
}

func TestClapMissingState(t *testing.T) {
	h := &Clap{}
	var out bytes.Buffer
	err := h.ChunkToFile(&rpp.Chunk{Name: "CLAP"}, &out)
	if !errors.Is(err, ErrNoState) {
		t.Errorf("err = %v, want ErrNoState", err)
	}
}

func TestVstFrameBadMagic(t *testing.T) {
	raw := encodeFrame(&vstFrame{PluginID: 1, Data: []byte{1, 2}})
	raw[4] ^= 0xFF

	if _, err := parseFrame(raw); err == nil {
		t.Error("parseFrame accepted a corrupt magic")
	}
}

func TestVstFrameFooter(t *testing.T) {
	raw := encodeFrame(&vstFrame{PluginID: 1, Data: []byte{5}, Program: 3, ProgramName: "Lead"})
	frame, err := parseFrame(raw)
	if err != nil {
		t.Fatalf("parseFrame: %v", err)
	}
	if frame.Program != 3 || frame.ProgramName != "Lead" {
		t.Errorf("footer = (%d, %q), want (3, %q)", frame.Program, frame.ProgramName, "Lead")
	}
}
