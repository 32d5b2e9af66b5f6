package converter

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/git-moss/ProjectConverter-sub001/pkg/dawproject"
	"github.com/git-moss/ProjectConverter-sub001/pkg/rpp"
	"github.com/git-moss/ProjectConverter-sub001/pkg/tempo"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"song.rpp", FormatReaper},
		{"song.RPP", FormatReaper},
		{"/tmp/projects/song.rpp", FormatReaper},
		{"song.dawproject", FormatDawProject},
		{"song.DawProject", FormatDawProject},
		{"song.wav", FormatUnknown},
		{"song", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := DetectFormat(tt.filename); got != tt.want {
				t.Errorf("DetectFormat(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestDetectFormatFromContent(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"zip archive", []byte("PK\x03\x04rest"), FormatDawProject},
		{"project chunk", []byte("<REAPER_PROJECT 0.1\n>"), FormatReaper},
		{"leading whitespace", []byte("\n  <REAPER_PROJECT 0.1\n>"), FormatReaper},
		{"garbage", []byte("RIFF....WAVE"), FormatUnknown},
		{"too short", []byte("PK"), FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormatFromContent(tt.data); got != tt.want {
				t.Errorf("DetectFormatFromContent = %v, want %v", got, tt.want)
			}
		})
	}
}

// trackChunk builds a TRACK chunk with the given name and folder line.
func trackChunk(name string, folderType, delta int) *rpp.Chunk {
	c := &rpp.Chunk{Name: "TRACK"}
	c.AddLine("NAME", name)
	c.AddLine("ISBUS", strconv.Itoa(folderType), strconv.Itoa(delta))
	return c
}

func TestFolderTreeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		flat  []*rpp.Chunk
		tree  string // nesting rendered as name(children)
		infos []folderInfo
	}{
		{
			name: "flat sequence",
			flat: []*rpp.Chunk{
				trackChunk("A", 0, 0),
				trackChunk("B", 0, 0),
			},
			tree:  "A B",
			infos: []folderInfo{{}, {}},
		},
		{
			name: "folder with trailing sibling",
			flat: []*rpp.Chunk{
				trackChunk("A", 0, 0),
				trackChunk("B", 1, 1),
				trackChunk("C", 2, -1),
				trackChunk("D", 0, 0),
			},
			tree: "A B(C) D",
			infos: []folderInfo{
				{}, {Type: folderStart, Delta: 1}, {Type: folderEnd, Delta: -1}, {},
			},
		},
		{
			name: "nested folders closed at once",
			flat: []*rpp.Chunk{
				trackChunk("A", 1, 1),
				trackChunk("B", 1, 1),
				trackChunk("C", 2, -2),
				trackChunk("D", 0, 0),
			},
			tree: "A(B(C)) D",
			infos: []folderInfo{
				{Type: folderStart, Delta: 1},
				{Type: folderStart, Delta: 1},
				{Type: folderEnd, Delta: -2},
				{},
			},
		},
		{
			name: "folder at end of project",
			flat: []*rpp.Chunk{
				trackChunk("A", 1, 1),
				trackChunk("B", 2, -1),
			},
			tree: "A(B)",
			infos: []folderInfo{
				{Type: folderStart, Delta: 1},
				{Type: folderEnd, Delta: -1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roots := buildTrackTree(tt.flat, func(c *rpp.Chunk) *dawproject.Track {
				return &dawproject.Track{Name: c.ChildLine("NAME").String(0, "")}
			})

			if got := renderTree(roots); got != tt.tree {
				t.Fatalf("buildTrackTree = %q, want %q", got, tt.tree)
			}

			var names []string
			var infos []folderInfo
			flattenTrackTree(roots, func(track *dawproject.Track, info folderInfo) {
				names = append(names, track.Name)
				infos = append(infos, info)
			})

			if len(infos) != len(tt.infos) {
				t.Fatalf("flattenTrackTree emitted %d tracks, want %d", len(infos), len(tt.infos))
			}
			for i, want := range tt.infos {
				if infos[i] != want {
					t.Errorf("track %s: folder info = %+v, want %+v", names[i], infos[i], want)
				}
			}
		})
	}
}

func renderTree(tracks []*dawproject.Track) string {
	parts := make([]string, 0, len(tracks))
	for _, tr := range tracks {
		s := tr.Name
		if len(tr.Tracks) > 0 {
			s += "(" + renderTree(tr.Tracks) + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

const roundTripProject = `<REAPER_PROJECT 0.1 "7.22"
  TEMPO 120 4 4
  MARKER 1 2 Verse 0 0
  <TRACK
    NAME Lead
    ISBUS 0 0
    VOLPAN 0.5 0
    MUTESOLO 0 0
    <ITEM
      POSITION 2
      LENGTH 2
      NAME Riff
      <SOURCE MIDI
        HASDATA 1 960 QN
        E 0 90 3c 60
        E 960 80 3c 00
      >
    >
    <ITEM
      POSITION 6
      <SOURCE MIDI
        HASDATA 1 960 QN
        E 0 90 40 40
        E 480 80 40 00
      >
    >
  >
>`

func TestConversionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	rppPath := filepath.Join(dir, "song.rpp")
	dawPath := filepath.Join(dir, "song.dawproject")
	backPath := filepath.Join(dir, "back.rpp")

	if err := writeFileAtomic(rppPath, []byte(roundTripProject)); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := ReaperToDawProject(ctx, rppPath, dawPath, NopNotifier{}); err != nil {
		t.Fatalf("ReaperToDawProject: %v", err)
	}

	project, err := dawproject.Load(dawPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Master plus one regular track.
	if len(project.Structure.Tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(project.Structure.Tracks))
	}
	track := project.Structure.Tracks[1]
	if track.Name != "Lead" {
		t.Errorf("track name = %q, want Lead", track.Name)
	}
	if got := *track.Channel.Volume.Value; got != 0.5 {
		t.Errorf("volume = %v, want 0.5", got)
	}

	if project.Arrangement.Markers == nil || len(project.Arrangement.Markers.Markers) != 1 {
		t.Fatal("marker missing")
	}
	// 2 seconds at 120 BPM.
	if got := project.Arrangement.Markers.Markers[0].Time; !near(got, 4) {
		t.Errorf("marker time = %v beats, want 4", got)
	}

	if project.Arrangement.Lanes == nil || len(project.Arrangement.Lanes.Lanes) != 1 {
		t.Fatal("track lanes missing")
	}
	lanes := project.Arrangement.Lanes.Lanes[0]
	if len(lanes.Clips) != 1 || len(lanes.Clips[0].Clips) != 2 {
		t.Fatalf("got %d clip containers, want 1 with 2 clips", len(lanes.Clips))
	}

	clip := lanes.Clips[0].Clips[0]
	if !near(clip.Time, 4) {
		t.Errorf("clip time = %v beats, want 4", clip.Time)
	}
	if clip.Duration == nil || !near(*clip.Duration, 4) {
		t.Errorf("clip duration = %v, want 4 beats", clip.Duration)
	}
	if clip.Notes == nil || len(clip.Notes.Notes) != 1 {
		t.Fatal("clip notes missing")
	}
	note := clip.Notes.Notes[0]
	if note.Key != 0x3c || !near(note.Time, 0) || !near(note.Duration, 1) {
		t.Errorf("note = %+v, want key 60 at 0 for 1 beat", note)
	}

	// An item without a length keeps its duration unset.
	if open := lanes.Clips[0].Clips[1]; open.Duration != nil {
		t.Errorf("clip duration = %v, want unset", *open.Duration)
	}

	if err := DawProjectToReaper(ctx, dawPath, backPath, NopNotifier{}); err != nil {
		t.Fatalf("DawProjectToReaper: %v", err)
	}

	back, err := readProject(backPath)
	if err != nil {
		t.Fatal(err)
	}
	tracks := back.ChildChunks("TRACK")
	if len(tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(tracks))
	}
	items := tracks[0].ChildChunks("ITEM")
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	if got := items[0].ChildLine("POSITION").Float(0, -1); !near(got, 2) {
		t.Errorf("position = %v, want 2", got)
	}
	if got := items[0].ChildLine("LENGTH").Float(0, -1); !near(got, 2) {
		t.Errorf("length = %v, want 2", got)
	}
	if items[1].ChildLine("LENGTH") != nil {
		t.Error("unset duration must not produce a LENGTH line")
	}

	source := items[0].ChildChunk("SOURCE")
	if source == nil || source.Param(0, "") != "MIDI" {
		t.Fatal("first item lost its MIDI source")
	}
	events := source.ChildLines("E")
	if len(events) < 2 {
		t.Fatalf("got %d events, want at least note on/off", len(events))
	}
	if events[0].String(1, "") != "90" || events[0].String(2, "") != "3c" {
		t.Errorf("first event = %v, want note on for key 60", events[0].Params)
	}
	if got := events[1].Int(0, 0); got != 960 {
		t.Errorf("note off delta = %d ticks, want 960", got)
	}
}

func TestFadeSpanBeats(t *testing.T) {
	// 60 BPM for the first minute, 120 BPM after. A beat-valued fade on a
	// clip past the change must use the tempo at the clip, not at zero.
	w := &reaperWriter{tempo: tempo.Map{{Time: 0, BPM: 60}, {Time: 60, BPM: 120}}}

	if got := w.fadeSpan(100, 2, dawproject.TimeUnitBeats, false); !near(got, 1) {
		t.Errorf("fade-in span = %v s, want 1", got)
	}
	if got := w.fadeSpan(100, 2, dawproject.TimeUnitBeats, true); !near(got, 1) {
		t.Errorf("fade-out span = %v s, want 1", got)
	}
	if got := w.fadeSpan(100, 2.5, dawproject.TimeUnitSeconds, false); !near(got, 2.5) {
		t.Errorf("seconds fade = %v s, want 2.5", got)
	}
}

const muteEnvelopeProject = `<REAPER_PROJECT 0.1 "7.22"
  TEMPO 120 4 4
  <TRACK
    NAME Drums
    ISBUS 0 0
    VOLPAN 1 0
    <MUTEENV
      ACT 1 -1
      VIS 1 1 1
      PT 0 1 1
      PT 2 0 1
    >
  >
>`

func TestMuteEnvelopeWithoutMuteLine(t *testing.T) {
	dir := t.TempDir()
	rppPath := filepath.Join(dir, "song.rpp")
	dawPath := filepath.Join(dir, "song.dawproject")
	backPath := filepath.Join(dir, "back.rpp")

	if err := writeFileAtomic(rppPath, []byte(muteEnvelopeProject)); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := ReaperToDawProject(ctx, rppPath, dawPath, NopNotifier{}); err != nil {
		t.Fatalf("ReaperToDawProject: %v", err)
	}
	project, err := dawproject.Load(dawPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// The envelope implies the parameter even without a MUTESOLO line.
	channel := project.Structure.Tracks[1].Channel
	if channel.Mute == nil || channel.Mute.ID == "" {
		t.Fatal("mute parameter missing")
	}

	lanes := project.Arrangement.Lanes.Lanes[0]
	if len(lanes.Points) != 1 {
		t.Fatalf("got %d automation lanes, want 1", len(lanes.Points))
	}
	points := lanes.Points[0]
	if points.Target.Parameter != channel.Mute.ID {
		t.Errorf("automation targets %q, want %q", points.Target.Parameter, channel.Mute.ID)
	}
	if len(points.BoolPoints) != 2 {
		t.Fatalf("got %d points, want 2", len(points.BoolPoints))
	}
	// The envelope carries the play state; the parameter carries the mute state.
	if points.BoolPoints[0].Value {
		t.Error("first point must be unmuted")
	}
	if !points.BoolPoints[1].Value {
		t.Error("second point must be muted")
	}

	if err := DawProjectToReaper(ctx, dawPath, backPath, NopNotifier{}); err != nil {
		t.Fatalf("DawProjectToReaper: %v", err)
	}
	back, err := readProject(backPath)
	if err != nil {
		t.Fatal(err)
	}
	env := back.ChildChunks("TRACK")[0].ChildChunk("MUTEENV")
	if env == nil {
		t.Fatal("mute envelope lost on the way back")
	}
	pts := env.ChildLines("PT")
	if len(pts) != 2 {
		t.Fatalf("got %d envelope points, want 2", len(pts))
	}
	if got := pts[0].Float(1, -1); !near(got, 1) {
		t.Errorf("first point value = %v, want 1", got)
	}
	if got := pts[1].Float(1, -1); !near(got, 0) {
		t.Errorf("second point value = %v, want 0", got)
	}
}

func TestTrackStagesHonorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root, err := rpp.ParseString(roundTripProject)
	if err != nil {
		t.Fatal(err)
	}
	r := &reaperReader{root: root, notifier: NopNotifier{}}
	if err := r.readTracks(ctx); err == nil {
		t.Fatal("expected a cancellation error from the track pass")
	}

	w := &reaperWriter{project: &dawproject.Project{}, notifier: NopNotifier{}}
	w.project.Structure.Tracks = []*dawproject.Track{{ID: "track-1", Name: "A"}}
	out := &rpp.Chunk{Name: reaperRootChunk}
	if err := w.writeTracks(ctx, out); err == nil {
		t.Fatal("expected a cancellation error from the track pass")
	}
	if len(out.Children) != 0 {
		t.Error("a cancelled track pass must not emit track chunks")
	}
}

func TestConvertFileUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "noise.bin")
	if err := writeFileAtomic(path, []byte("RIFF....WAVE")); err != nil {
		t.Fatal(err)
	}
	if err := ConvertFile(context.Background(), path, "", NopNotifier{}); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestConvertFileCancelled(t *testing.T) {
	dir := t.TempDir()
	rppPath := filepath.Join(dir, "song.rpp")
	if err := writeFileAtomic(rppPath, []byte(roundTripProject)); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outPath := filepath.Join(dir, "out.dawproject")
	if err := ConvertFile(ctx, rppPath, outPath, NopNotifier{}); err == nil {
		t.Fatal("expected a cancellation error")
	}
	if _, err := readProject(outPath); err == nil {
		t.Fatal("a cancelled conversion must not leave an output file")
	}
}

func readProject(path string) (*rpp.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return rpp.ParseString(string(data))
}

func near(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}
