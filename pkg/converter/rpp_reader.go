package converter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/git-moss/ProjectConverter-sub001/pkg/converter/devices"
	"github.com/git-moss/ProjectConverter-sub001/pkg/dawproject"
	"github.com/git-moss/ProjectConverter-sub001/pkg/rpp"
	"github.com/git-moss/ProjectConverter-sub001/pkg/tempo"
)

// reaperRootChunk is the mandatory name of an RPP file's root chunk.
const reaperRootChunk = "REAPER_PROJECT"

// Parameter ids shared between transport parameters and their automation.
const (
	tempoParamID   = "transport-tempo"
	timeSigParamID = "transport-timesignature"
	masterChanID   = "master-channel"
)

// ReaperToDawProject converts the RPP project at inputPath into a
// dawproject container at outputPath.
func ReaperToDawProject(ctx context.Context, inputPath, outputPath string, notifier Notifier) error {
	notifier.Log("Parsing %s ...", inputPath)

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputPath, err)
	}
	root, err := rpp.ParseString(string(data))
	if err != nil {
		return err
	}
	if root.Name != reaperRootChunk {
		return &rpp.FormatError{Msg: fmt.Sprintf("unexpected root chunk %s", root.Name)}
	}

	media, err := dawproject.NewFolderMedia(filepath.Dir(inputPath), "")
	if err != nil {
		return err
	}
	container := &Container{
		Name:  strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)),
		Media: media,
	}
	defer func() { _ = container.Close() }()

	r := &reaperReader{
		root:       root,
		container:  container,
		notifier:   notifier,
		projectDir: filepath.Dir(inputPath),
	}
	if err := r.run(ctx); err != nil {
		return err
	}

	if err := dawproject.Validate(container.Project); err != nil {
		notifier.LogError(err, "Validation failed")
	} else {
		notifier.Log("Validation OK")
	}

	if err := checkStage(ctx); err != nil {
		return err
	}
	notifier.Log("Writing %s ...", outputPath)
	if err := dawproject.Save(container.Project, container.Metadata, container.Embedded, outputPath); err != nil {
		notifier.LogError(err, "Write failed")
		return err
	}
	notifier.Log("Finished %s", outputPath)
	return nil
}

// reaperReader walks a parsed RPP tree and populates the container.
type reaperReader struct {
	root       *rpp.Chunk
	container  *Container
	notifier   Notifier
	projectDir string

	tempo       tempo.Map
	arrangement *dawproject.Arrangement

	trackCount  int
	deviceCount int
}

func (r *reaperReader) run(ctx context.Context) error {
	project := &dawproject.Project{
		Version:     dawproject.FormatVersion,
		Application: dawproject.Application{Name: "REAPER", Version: r.root.Param(1, "")},
	}
	r.arrangement = &dawproject.Arrangement{
		Lanes: &dawproject.Lanes{TimeUnit: dawproject.TimeUnitBeats},
	}
	project.Arrangement = r.arrangement
	r.container.Project = project

	stages := []func() error{
		r.readMetadata,
		r.readTransport,
		r.readMarkers,
		r.readMaster,
		func() error { return r.readTracks(ctx) },
	}
	for _, stage := range stages {
		if err := checkStage(ctx); err != nil {
			return err
		}
		if err := stage(); err != nil {
			return err
		}
	}
	return nil
}

func (r *reaperReader) beats(seconds float64) float64 {
	return r.tempo.SecondsToBeats(seconds)
}

// readMetadata maps the title/author lines and the project notes block.
func (r *reaperReader) readMetadata() error {
	meta := &dawproject.MetaData{Title: r.container.Name}
	if l := r.root.ChildLine("TITLE"); l != nil {
		meta.Title = l.String(0, meta.Title)
	}
	if l := r.root.ChildLine("AUTHOR"); l != nil {
		meta.Artist = l.String(0, "")
	}
	if notes := r.root.ChildChunk("NOTES"); notes != nil {
		var lines []string
		for _, l := range notes.Lines() {
			text := strings.Join(l.Params, " ")
			if strings.HasPrefix(text, "|") {
				lines = append(lines, text[1:])
			}
		}
		meta.Comment = strings.Join(lines, "\n")
	}
	r.container.Metadata = meta
	return nil
}

// readTransport builds the tempo map and the transport parameters. The map
// is consumed by every later position conversion.
func (r *reaperReader) readTransport() error {
	bpm := 120.0
	numerator, denominator := 4, 4
	if l := r.root.ChildLine("TEMPO"); l != nil {
		bpm = l.Float(0, bpm)
		numerator = l.Int(1, numerator)
		denominator = l.Int(2, denominator)
	}

	r.container.Project.Transport = &dawproject.Transport{
		Tempo: &dawproject.RealParameter{
			ID: tempoParamID, Unit: "bpm", Value: dawproject.Ptr(bpm),
			Min: dawproject.Ptr(1.0), Max: dawproject.Ptr(960.0),
		},
		TimeSignature: &dawproject.TimeSignatureParameter{
			ID: timeSigParamID, Numerator: numerator, Denominator: denominator,
		},
	}

	r.tempo = tempo.Constant(bpm)

	env := r.root.ChildChunk("TEMPOENVEX")
	if env == nil {
		return nil
	}

	var changes tempo.Map
	tempoPoints := &dawproject.Points{
		TimeUnit: dawproject.TimeUnitSeconds,
		Unit:     "bpm",
		Target:   dawproject.Target{Parameter: tempoParamID},
	}
	var sigPoints []*dawproject.TimeSignaturePoint

	for _, pt := range env.ChildLines("PT") {
		at := pt.Float(0, 0)
		pointBPM := pt.Float(1, bpm)
		linear := pt.Int(2, 0) == 0

		changes = append(changes, tempo.Change{Time: at, BPM: pointBPM, Linear: linear})

		interpolation := dawproject.InterpolationHold
		if linear {
			interpolation = dawproject.InterpolationLinear
		}
		tempoPoints.RealPoints = append(tempoPoints.RealPoints, &dawproject.RealPoint{
			Time: at, Value: pointBPM, Interpolation: interpolation,
		})

		if sig := pt.Int(3, 0); sig > 0 {
			sigPoints = append(sigPoints, &dawproject.TimeSignaturePoint{
				Time:        at,
				Numerator:   sig & 0xFFFF,
				Denominator: sig >> 16,
			})
		}
	}

	if len(changes) == 0 {
		return nil
	}
	if changes[0].Time > 0 {
		changes = append(tempo.Map{{Time: 0, BPM: bpm}}, changes...)
	}
	r.tempo = changes
	r.arrangement.TempoAutomation = tempoPoints
	if len(sigPoints) > 0 {
		r.arrangement.TimeSignatureAutomation = &dawproject.Points{
			TimeUnit:      dawproject.TimeUnitSeconds,
			Target:        dawproject.Target{Parameter: timeSigParamID},
			TimeSigPoints: sigPoints,
		}
	}
	return nil
}

// readMarkers converts cue markers. Range markers are not representable on
// the other side and are dropped.
func (r *reaperReader) readMarkers() error {
	lines := r.root.ChildLines("MARKER")
	if len(lines) == 0 {
		return nil
	}
	markers := &dawproject.Markers{TimeUnit: dawproject.TimeUnitBeats}
	for _, l := range lines {
		if l.Int(3, 0) != 0 {
			r.notifier.Log("Dropping range marker %q (not supported)", l.String(2, ""))
			continue
		}
		markers.Markers = append(markers.Markers, &dawproject.Marker{
			Time:  r.beats(l.Float(1, 0)),
			Name:  l.String(2, ""),
			Color: colorOf(l.Int(4, 0)),
		})
	}
	if len(markers.Markers) > 0 {
		r.arrangement.Markers = markers
	}
	return nil
}

// readMaster creates the master track from the project-level mixer lines.
func (r *reaperReader) readMaster() error {
	channel := &dawproject.Channel{
		ID:            masterChanID,
		Role:          dawproject.RoleMaster,
		AudioChannels: 2,
		Volume:        &dawproject.RealParameter{Unit: "linear", Value: dawproject.Ptr(1.0)},
		Pan:           &dawproject.RealParameter{Unit: "normalized", Value: dawproject.Ptr(0.5)},
	}
	if l := r.root.ChildLine("MASTER_NCH"); l != nil {
		channel.AudioChannels = l.Int(0, 2)
	}
	if l := r.root.ChildLine("MASTER_VOLUME"); l != nil {
		channel.Volume.Value = dawproject.Ptr(l.Float(0, 1))
		channel.Pan.Value = dawproject.Ptr(panToNormalized(l.Float(1, 0)))
	}
	if l := r.root.ChildLine("MASTERMUTESOLO"); l != nil {
		channel.Mute = &dawproject.BoolParameter{Value: dawproject.Ptr(l.Int(0, 0) != 0)}
		channel.Solo = dawproject.Ptr(l.Int(1, 0) != 0)
	}

	master := &dawproject.Track{ID: "master-track", Name: "Master", Channel: channel}
	if l := r.root.ChildLine("MASTERPEAKCOL"); l != nil {
		master.Color = colorOf(l.Int(0, 0))
	}
	r.container.Project.Structure.Tracks = append(r.container.Project.Structure.Tracks, master)
	return nil
}

// readTracks converts the flat track sequence: folder reconstruction,
// channel strip, devices, items, and per-track automation.
func (r *reaperReader) readTracks(ctx context.Context) error {
	chunks := r.root.ChildChunks("TRACK")
	if len(chunks) == 0 {
		return nil
	}

	// channels (and returned tracks) indexed by flat track order, for
	// resolving receive references afterwards.
	flat := make([]*dawproject.Track, 0, len(chunks))

	var stageErr error
	roots := buildTrackTree(chunks, func(chunk *rpp.Chunk) *dawproject.Track {
		if stageErr == nil {
			stageErr = checkStage(ctx)
		}
		if stageErr != nil {
			return &dawproject.Track{}
		}
		track := r.readTrack(chunk)
		flat = append(flat, track)
		return track
	})
	if stageErr != nil {
		return stageErr
	}
	r.container.Project.Structure.Tracks = append(r.container.Project.Structure.Tracks, roots...)

	// Receives: an AUXRECV on a destination track adds a send on the
	// source track's channel, and marks the destination as auxiliary.
	for destIdx, chunk := range chunks {
		for _, recv := range chunk.ChildLines("AUXRECV") {
			srcIdx := recv.Int(0, -1)
			if srcIdx < 0 || srcIdx >= len(flat) {
				r.notifier.Log("Skipping receive with unknown source track %d", srcIdx)
				continue
			}
			dest := flat[destIdx]
			dest.Channel.Role = dawproject.RoleEffect

			src := flat[srcIdx].Channel
			sendType := "post"
			if recv.Int(1, 0) != 0 {
				sendType = "pre"
			}
			if src.Sends == nil {
				src.Sends = &dawproject.Sends{}
			}
			src.Sends.Send = append(src.Sends.Send, &dawproject.Send{
				Destination: dest.Channel.ID,
				Type:        sendType,
				Volume:      &dawproject.RealParameter{Unit: "linear", Value: dawproject.Ptr(recv.Float(2, 1))},
				Pan:         &dawproject.RealParameter{Unit: "normalized", Value: dawproject.Ptr(panToNormalized(recv.Float(3, 0)))},
			})
		}
	}
	return nil
}

func (r *reaperReader) readTrack(chunk *rpp.Chunk) *dawproject.Track {
	r.trackCount++
	n := r.trackCount

	track := &dawproject.Track{ID: fmt.Sprintf("track-%d", n)}
	if l := chunk.ChildLine("NAME"); l != nil {
		track.Name = l.String(0, "")
	}
	if l := chunk.ChildLine("PEAKCOL"); l != nil {
		track.Color = colorOf(l.Int(0, 0))
	}

	channel := &dawproject.Channel{
		ID:            fmt.Sprintf("channel-%d", n),
		Role:          dawproject.RoleRegular,
		AudioChannels: 2,
		Destination:   masterChanID,
		Volume: &dawproject.RealParameter{
			ID: fmt.Sprintf("volume-%d", n), Unit: "linear", Value: dawproject.Ptr(1.0),
		},
		Pan: &dawproject.RealParameter{
			ID: fmt.Sprintf("pan-%d", n), Unit: "normalized", Value: dawproject.Ptr(0.5),
		},
	}
	if l := chunk.ChildLine("VOLPAN"); l != nil {
		channel.Volume.Value = dawproject.Ptr(l.Float(0, 1))
		channel.Pan.Value = dawproject.Ptr(panToNormalized(l.Float(1, 0)))
	}
	if l := chunk.ChildLine("MUTESOLO"); l != nil {
		channel.Mute = &dawproject.BoolParameter{
			ID:    fmt.Sprintf("mute-%d", n),
			Value: dawproject.Ptr(l.Int(0, 0) != 0),
		}
		channel.Solo = dawproject.Ptr(l.Int(1, 0) != 0)
	}
	track.Channel = channel

	r.readDevices(chunk, channel)

	lanes := &dawproject.Lanes{Track: track.ID}
	r.readItems(chunk, track, lanes)
	r.readTrackAutomation(chunk, channel, lanes)
	if len(lanes.Clips) > 0 || len(lanes.Points) > 0 {
		r.arrangement.Lanes.Lanes = append(r.arrangement.Lanes.Lanes, lanes)
	}
	return track
}

// readDevices walks the FX chain, pairing each device chunk with the bypass
// line preceding it. Device state is extracted through the kind's handler;
// a device whose state cannot be decoded is skipped, not fatal.
func (r *reaperReader) readDevices(track *rpp.Chunk, channel *dawproject.Channel) {
	chain := track.ChildChunk("FXCHAIN")
	if chain == nil {
		return
	}

	devicesNode := &dawproject.Devices{}
	bypass, offline := false, false

	for _, node := range chain.Children {
		switch v := node.(type) {
		case *rpp.Line:
			if v.Tag() == "BYPASS" {
				bypass = v.Int(0, 0) != 0
				offline = v.Int(1, 0) != 0
			}
		case *rpp.Chunk:
			switch v.Name {
			case "VST":
				r.readVstDevice(v, devicesNode, bypass, offline)
			case "CLAP":
				r.readClapDevice(v, devicesNode, bypass, offline)
			}
			bypass, offline = false, false
		}
	}

	if len(devicesNode.Vst2Plugins)+len(devicesNode.Vst3Plugins)+len(devicesNode.ClapPlugins) > 0 {
		channel.Devices = devicesNode
	}
}

func (r *reaperReader) readVstDevice(chunk *rpp.Chunk, out *dawproject.Devices, bypass, offline bool) {
	desc := chunk.Param(0, "")
	uid := chunk.Param(4, "")
	isVst3 := strings.HasPrefix(desc, "VST3")

	var handler devices.Handler
	var ext string
	if isVst3 {
		handler = &devices.Vst3{ClassID: normalizeClassID(uid)}
		ext = "vstpreset"
	} else {
		handler = &devices.Vst2{}
		ext = "fxp"
	}

	var state bytes.Buffer
	if err := handler.ChunkToFile(chunk, &state); err != nil {
		r.notifier.LogError(err, "Skipping state of device %q", desc)
		return
	}

	r.deviceCount++
	id := r.container.AddEmbedded(
		fmt.Sprintf("plugins/device-%d.%s", r.deviceCount, ext), state.Bytes())

	device := dawproject.Device{
		ID:         fmt.Sprintf("device-%d", r.deviceCount),
		DeviceName: pluginNameOf(desc),
		DeviceID:   uid,
		DeviceRole: "audioFX",
		Loaded:     dawproject.Ptr(!offline),
		Enabled:    &dawproject.BoolParameter{Value: dawproject.Ptr(!bypass)},
		State:      &dawproject.FileReference{Path: id},
	}
	if isVst3 {
		out.Vst3Plugins = append(out.Vst3Plugins, &dawproject.Vst3Plugin{Device: device})
	} else {
		out.Vst2Plugins = append(out.Vst2Plugins, &dawproject.Vst2Plugin{Device: device})
	}
}

func (r *reaperReader) readClapDevice(chunk *rpp.Chunk, out *dawproject.Devices, bypass, offline bool) {
	desc := chunk.Param(0, "")

	var state bytes.Buffer
	handler := &devices.Clap{}
	if err := handler.ChunkToFile(chunk, &state); err != nil {
		r.notifier.LogError(err, "Skipping state of device %q", desc)
		return
	}

	r.deviceCount++
	id := r.container.AddEmbedded(
		fmt.Sprintf("plugins/device-%d.clap-preset", r.deviceCount), state.Bytes())

	out.ClapPlugins = append(out.ClapPlugins, &dawproject.ClapPlugin{Device: dawproject.Device{
		ID:         fmt.Sprintf("device-%d", r.deviceCount),
		DeviceName: pluginNameOf(desc),
		DeviceID:   chunk.Param(1, ""),
		DeviceRole: "audioFX",
		Loaded:     dawproject.Ptr(!offline),
		Enabled:    &dawproject.BoolParameter{Value: dawproject.Ptr(!bypass)},
		State:      &dawproject.FileReference{Path: id},
	}})
}

// readItems converts the track's media items into clips, inferring the
// track content type from the item sources.
func (r *reaperReader) readItems(chunk *rpp.Chunk, track *dawproject.Track, lanes *dawproject.Lanes) {
	items := chunk.ChildChunks("ITEM")
	if len(items) == 0 {
		return
	}

	clips := &dawproject.Clips{}
	for _, item := range items {
		clip := r.readItem(item, track)
		if clip != nil {
			clips.Clips = append(clips.Clips, clip)
		}
	}
	if len(clips.Clips) > 0 {
		lanes.Clips = append(lanes.Clips, clips)
	}
}

func (r *reaperReader) readItem(item *rpp.Chunk, track *dawproject.Track) *dawproject.Clip {
	position := 0.0
	if l := item.ChildLine("POSITION"); l != nil {
		position = l.Float(0, 0)
	}
	length := dawproject.UnsetDuration
	if l := item.ChildLine("LENGTH"); l != nil {
		length = l.Float(0, dawproject.UnsetDuration)
	}

	clip := &dawproject.Clip{Time: r.beats(position)}
	if l := item.ChildLine("NAME"); l != nil {
		clip.Name = l.String(0, "")
	}
	if length >= 0 {
		clip.Duration = dawproject.Ptr(r.beats(position+length) - clip.Time)
	}
	if l := item.ChildLine("FADEIN"); l != nil {
		if v := l.Float(1, 0); v > 0 {
			clip.FadeTimeUnit = dawproject.TimeUnitSeconds
			clip.FadeInTime = dawproject.Ptr(v)
		}
	}
	if l := item.ChildLine("FADEOUT"); l != nil {
		if v := l.Float(1, 0); v > 0 {
			clip.FadeTimeUnit = dawproject.TimeUnitSeconds
			clip.FadeOutTime = dawproject.Ptr(v)
		}
	}

	source := item.ChildChunk("SOURCE")
	if source == nil {
		return clip
	}

	switch source.Param(0, "") {
	case "MIDI":
		midiContent, err := parseMidiSource(source)
		if err != nil {
			r.notifier.LogError(err, "Skipping MIDI item %q", clip.Name)
			return nil
		}
		clip.ContentTimeUnit = dawproject.TimeUnitBeats
		clip.Notes = midiContent.Notes
		clip.Points = midiContent.Points
		if track.ContentType == "" {
			track.ContentType = dawproject.ContentNotes
		}

	case "WAVE", "FLAC", "MP3", "OGG":
		fileLine := source.ChildLine("FILE")
		if fileLine == nil {
			r.notifier.Log("Skipping audio item %q without a file reference", clip.Name)
			return nil
		}
		file := fileLine.String(0, "")
		id := "audio/" + filepath.Base(filepath.FromSlash(file))
		r.container.Media.Add(id, file)
		r.container.Embedded = append(r.container.Embedded, dawproject.EmbeddedFile{
			ID:        id,
			LocalPath: r.resolveMediaPath(file),
		})

		clip.ContentTimeUnit = dawproject.TimeUnitSeconds
		clip.Audio = &dawproject.Audio{
			TimeUnit: dawproject.TimeUnitSeconds,
			Channels: 2,
			File:     dawproject.FileReference{Path: id},
		}
		if l := item.ChildLine("SOFFS"); l != nil {
			if v := l.Float(0, 0); v > 0 {
				clip.PlayStart = dawproject.Ptr(v)
			}
		}
		if track.ContentType == "" {
			track.ContentType = dawproject.ContentAudio
		}

	default:
		r.notifier.Log("Skipping item %q with unsupported source %q", clip.Name, source.Param(0, ""))
		return nil
	}
	return clip
}

func (r *reaperReader) resolveMediaPath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(r.projectDir, file)
}

// readTrackAutomation converts the volume, pan and mute envelopes.
func (r *reaperReader) readTrackAutomation(chunk *rpp.Chunk, channel *dawproject.Channel, lanes *dawproject.Lanes) {
	if env := chunk.ChildChunk("VOLENV2"); env != nil {
		points := &dawproject.Points{
			Unit:   "linear",
			Target: dawproject.Target{Parameter: channel.Volume.ID},
		}
		for _, pt := range env.ChildLines("PT") {
			points.RealPoints = append(points.RealPoints, &dawproject.RealPoint{
				Time:          r.beats(pt.Float(0, 0)),
				Value:         pt.Float(1, 1),
				Interpolation: interpolationOf(pt.Int(2, 0)),
			})
		}
		lanes.Points = append(lanes.Points, points)
	}
	if env := chunk.ChildChunk("PANENV2"); env != nil {
		points := &dawproject.Points{
			Unit:   "normalized",
			Target: dawproject.Target{Parameter: channel.Pan.ID},
		}
		for _, pt := range env.ChildLines("PT") {
			points.RealPoints = append(points.RealPoints, &dawproject.RealPoint{
				Time:          r.beats(pt.Float(0, 0)),
				Value:         panToNormalized(pt.Float(1, 0)),
				Interpolation: interpolationOf(pt.Int(2, 0)),
			})
		}
		lanes.Points = append(lanes.Points, points)
	}
	if env := chunk.ChildChunk("MUTEENV"); env != nil {
		if channel.Mute == nil {
			// The envelope implies the parameter even without a mute line.
			channel.Mute = &dawproject.BoolParameter{
				ID:    "mute-" + strings.TrimPrefix(channel.ID, "channel-"),
				Value: dawproject.Ptr(false),
			}
		}
		points := &dawproject.Points{Target: dawproject.Target{Parameter: channel.Mute.ID}}
		for _, pt := range env.ChildLines("PT") {
			// The envelope carries the play state; the parameter carries
			// the mute state.
			points.BoolPoints = append(points.BoolPoints, &dawproject.BoolPoint{
				Time:  r.beats(pt.Float(0, 0)),
				Value: pt.Float(1, 1) < 0.5,
			})
		}
		lanes.Points = append(lanes.Points, points)
	}
}

func interpolationOf(shape int) string {
	if shape == 0 {
		return dawproject.InterpolationLinear
	}
	return dawproject.InterpolationHold
}

// panToNormalized maps the source's -1..1 pan range to 0..1.
func panToNormalized(pan float64) float64 {
	return (pan + 1) / 2
}

// normalizedToPan maps 0..1 back to -1..1.
func normalizedToPan(v float64) float64 {
	return v*2 - 1
}

// colorOf renders a native color value as #RRGGBB. The high flag bit marks
// a custom color; without it the track uses the theme default.
func colorOf(v int) string {
	if v&0x1000000 == 0 {
		return ""
	}
	return fmt.Sprintf("#%02X%02X%02X", v&0xFF, (v>>8)&0xFF, (v>>16)&0xFF)
}

// colorValue parses #RRGGBB back to the native form, or 0.
func colorValue(color string) int {
	var r, g, b int
	if _, err := fmt.Sscanf(color, "#%02X%02X%02X", &r, &g, &b); err != nil {
		return 0
	}
	return 0x1000000 | r | g<<8 | b<<16
}

// pluginNameOf strips the kind prefix and vendor suffix from a device
// description like `VST3: Pro-Q 3 (FabFilter)`.
func pluginNameOf(desc string) string {
	name := desc
	if i := strings.Index(name, ": "); i >= 0 {
		name = name[i+2:]
	}
	if i := strings.LastIndex(name, " ("); i > 0 && strings.HasSuffix(name, ")") {
		name = name[:i]
	}
	return name
}

// normalizeClassID widens a declared VST3 uid to the preset container's
// fixed 32-character form.
func normalizeClassID(uid string) string {
	uid = strings.ToUpper(strings.Trim(uid, "{}"))
	if len(uid) > 32 {
		return uid[:32]
	}
	return uid + strings.Repeat("0", 32-len(uid))
}
