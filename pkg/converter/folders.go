package converter

import (
	"strconv"

	"github.com/git-moss/ProjectConverter-sub001/pkg/dawproject"
	"github.com/git-moss/ProjectConverter-sub001/pkg/rpp"
)

// Folder annotations carried on a track's ISBUS line. The source format
// stores tracks as a flat sequence; nesting is encoded per track.
const (
	folderFlat  = 0 // sibling at the current depth
	folderStart = 1 // this track opens a folder
	folderEnd   = 2 // last track of a folder; the delta closes -delta levels
)

type folderInfo struct {
	Type  int
	Delta int
}

func folderInfoOf(track *rpp.Chunk) folderInfo {
	line := track.ChildLine("ISBUS")
	if line == nil {
		return folderInfo{}
	}
	return folderInfo{Type: line.Int(0, 0), Delta: line.Int(1, 0)}
}

// buildTrackTree reconstructs folder nesting from the flat depth-annotated
// sequence. build is called once per source track and returns the
// corresponding tree node.
func buildTrackTree(flat []*rpp.Chunk, build func(*rpp.Chunk) *dawproject.Track) []*dawproject.Track {
	var roots []*dawproject.Track
	// stack of open folders; appending goes to the innermost one.
	var stack []*dawproject.Track

	appendTrack := func(t *dawproject.Track) {
		if len(stack) == 0 {
			roots = append(roots, t)
			return
		}
		parent := stack[len(stack)-1]
		parent.Tracks = append(parent.Tracks, t)
	}

	for _, chunk := range flat {
		track := build(chunk)
		appendTrack(track)

		switch info := folderInfoOf(chunk); info.Type {
		case folderStart:
			stack = append(stack, track)
		case folderEnd:
			levels := -info.Delta
			if levels <= 0 {
				levels = 1
			}
			if levels > len(stack) {
				levels = len(stack)
			}
			stack = stack[:len(stack)-levels]
		}
	}
	return roots
}

// flattenTrackTree walks a track tree depth first, calling emit with each
// track and its folder annotation. The annotations reproduce the nesting
// when fed back through buildTrackTree.
func flattenTrackTree(tracks []*dawproject.Track, emit func(*dawproject.Track, folderInfo)) {
	var walk func(list []*dawproject.Track, closing int)
	walk = func(list []*dawproject.Track, closing int) {
		for i, t := range list {
			last := i == len(list)-1
			switch {
			case len(t.Tracks) > 0:
				emit(t, folderInfo{Type: folderStart, Delta: 1})
				inner := 0
				if last {
					inner = closing
				}
				walk(t.Tracks, inner+1)
			case last && closing > 0:
				emit(t, folderInfo{Type: folderEnd, Delta: -closing})
			default:
				emit(t, folderInfo{})
			}
		}
	}
	walk(tracks, 0)
}

func folderLineParams(info folderInfo) []string {
	return []string{"ISBUS", strconv.Itoa(info.Type), strconv.Itoa(info.Delta)}
}
