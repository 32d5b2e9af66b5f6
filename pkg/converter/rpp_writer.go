package converter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/git-moss/ProjectConverter-sub001/pkg/converter/devices"
	"github.com/git-moss/ProjectConverter-sub001/pkg/dawproject"
	"github.com/git-moss/ProjectConverter-sub001/pkg/rpp"
	"github.com/git-moss/ProjectConverter-sub001/pkg/tempo"
)

// DawProjectToReaper converts the dawproject container at inputPath into an
// RPP project at outputPath. Audio media referenced by the project is
// extracted next to the output file.
func DawProjectToReaper(ctx context.Context, inputPath, outputPath string, notifier Notifier) error {
	notifier.Log("Reading %s ...", inputPath)

	project, err := dawproject.Load(inputPath)
	if err != nil {
		return err
	}
	if err := dawproject.Validate(project); err != nil {
		notifier.LogError(err, "Validation failed")
	} else {
		notifier.Log("Validation OK")
	}
	meta, err := dawproject.LoadMetadata(inputPath)
	if err != nil {
		notifier.LogError(err, "Skipping metadata of %s", inputPath)
		meta = nil
	}

	media, err := dawproject.NewArchiveMedia(inputPath)
	if err != nil {
		return err
	}
	defer func() { _ = media.Close() }()

	w := &reaperWriter{
		project:   project,
		meta:      meta,
		media:     media,
		notifier:  notifier,
		outputDir: filepath.Dir(outputPath),
	}
	root, err := w.run(ctx)
	if err != nil {
		return err
	}

	if err := checkStage(ctx); err != nil {
		return err
	}
	notifier.Log("Writing %s ...", outputPath)
	if err := writeFileAtomic(outputPath, []byte(rpp.FormatString(root))); err != nil {
		notifier.LogError(err, "Write failed")
		return err
	}
	w.extractMedia()
	notifier.Log("Finished %s", outputPath)
	return nil
}

// reaperWriter renders the project graph into an RPP chunk tree.
type reaperWriter struct {
	project   *dawproject.Project
	meta      *dawproject.MetaData
	media     dawproject.MediaAccess
	notifier  Notifier
	outputDir string

	tempo    tempo.Map
	laneUnit dawproject.TimeUnit
	lanesOf  map[string]*dawproject.Lanes

	// flat track order, for resolving send destinations to track indices.
	channelIndex map[string]int
	trackChunks  []*rpp.Chunk
	channels     []*dawproject.Channel

	extract map[string]string // media id -> destination path
}

func (w *reaperWriter) run(ctx context.Context) (*rpp.Chunk, error) {
	root := &rpp.Chunk{
		Name:   reaperRootChunk,
		Params: []string{"0.1", w.project.Application.Version},
	}
	w.lanesOf = map[string]*dawproject.Lanes{}
	w.channelIndex = map[string]int{}
	w.extract = map[string]string{}
	w.laneUnit = dawproject.TimeUnitBeats
	if arr := w.project.Arrangement; arr != nil && arr.Lanes != nil {
		w.laneUnit = arr.Lanes.TimeUnit.Resolve(dawproject.TimeUnitBeats)
		w.indexLanes(arr.Lanes)
	}

	stages := []func(*rpp.Chunk) error{
		w.writeMetadata,
		w.writeTransport,
		w.writeMarkers,
		w.writeMaster,
		func(root *rpp.Chunk) error { return w.writeTracks(ctx, root) },
	}
	for _, stage := range stages {
		if err := checkStage(ctx); err != nil {
			return nil, err
		}
		if err := stage(root); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// indexLanes maps track idrefs to their timeline lanes.
func (w *reaperWriter) indexLanes(lanes *dawproject.Lanes) {
	for _, l := range lanes.Lanes {
		if l.Track != "" {
			w.lanesOf[l.Track] = l
		}
		w.indexLanes(l)
	}
}

// seconds resolves a timeline position in the given unit to seconds.
func (w *reaperWriter) seconds(t float64, unit dawproject.TimeUnit) float64 {
	if unit == dawproject.TimeUnitSeconds {
		return t
	}
	return w.tempo.BeatsToSeconds(t)
}

func (w *reaperWriter) writeMetadata(root *rpp.Chunk) error {
	if w.meta == nil {
		return nil
	}
	if w.meta.Title != "" {
		root.AddLine("TITLE", w.meta.Title)
	}
	if w.meta.Artist != "" {
		root.AddLine("AUTHOR", w.meta.Artist)
	}
	if w.meta.Comment != "" {
		notes := root.AddChunk("NOTES", "0", "2")
		for _, line := range strings.Split(w.meta.Comment, "\n") {
			notes.AddLine("|" + line)
		}
	}
	return nil
}

// writeTransport emits the tempo line and, when tempo automation is
// present, the tempo envelope. The map built here positions everything
// that follows.
func (w *reaperWriter) writeTransport(root *rpp.Chunk) error {
	bpm := 120.0
	numerator, denominator := 4, 4
	if t := w.project.Transport; t != nil {
		if t.Tempo != nil && t.Tempo.Value != nil {
			bpm = *t.Tempo.Value
		}
		if t.TimeSignature != nil {
			numerator = t.TimeSignature.Numerator
			denominator = t.TimeSignature.Denominator
		}
	}
	root.AddLine("TEMPO", formatFloat(bpm), strconv.Itoa(numerator), strconv.Itoa(denominator))

	w.tempo = tempo.Constant(bpm)

	arr := w.project.Arrangement
	if arr == nil || arr.TempoAutomation == nil || len(arr.TempoAutomation.RealPoints) == 0 {
		return nil
	}
	if arr.TempoAutomation.TimeUnit.Resolve(dawproject.TimeUnitSeconds) != dawproject.TimeUnitSeconds {
		// Beat-positioned tempo points would need the map they define.
		w.notifier.Log("Skipping tempo automation with beat positions")
		return nil
	}

	var changes tempo.Map
	for _, p := range arr.TempoAutomation.RealPoints {
		changes = append(changes, tempo.Change{
			Time:   p.Time,
			BPM:    p.Value,
			Linear: p.Interpolation == dawproject.InterpolationLinear,
		})
	}
	if changes[0].Time > 0 {
		changes = append(tempo.Map{{Time: 0, BPM: bpm}}, changes...)
	}
	w.tempo = changes

	type sigValue struct{ num, den int }
	sigAt := map[float64]sigValue{}
	if arr.TimeSignatureAutomation != nil {
		for _, p := range arr.TimeSignatureAutomation.TimeSigPoints {
			sigAt[p.Time] = sigValue{p.Numerator, p.Denominator}
		}
	}

	env := root.AddChunk("TEMPOENVEX")
	env.AddLine("ACT", "1", "-1")
	env.AddLine("VIS", "1", "0", "1")
	for _, p := range arr.TempoAutomation.RealPoints {
		shape := "1"
		if p.Interpolation == dawproject.InterpolationLinear {
			shape = "0"
		}
		params := []string{"PT", formatFloat(p.Time), formatFloat(p.Value), shape}
		if sig, ok := sigAt[p.Time]; ok {
			params = append(params, strconv.Itoa(sig.num|sig.den<<16))
			delete(sigAt, p.Time)
		}
		env.AddLine(params...)
	}
	// Signature changes without a tempo point get one at the current tempo.
	rest := make([]float64, 0, len(sigAt))
	for at := range sigAt {
		rest = append(rest, at)
	}
	sort.Float64s(rest)
	for _, at := range rest {
		sig := sigAt[at]
		env.AddLine("PT", formatFloat(at), formatFloat(w.tempo.BPMAt(at)), "1",
			strconv.Itoa(sig.num|sig.den<<16))
	}
	return nil
}

func (w *reaperWriter) writeMarkers(root *rpp.Chunk) error {
	arr := w.project.Arrangement
	if arr == nil || arr.Markers == nil {
		return nil
	}
	unit := arr.Markers.TimeUnit.Resolve(dawproject.TimeUnitBeats)
	for i, m := range arr.Markers.Markers {
		root.AddLine("MARKER",
			strconv.Itoa(i+1),
			formatFloat(w.seconds(m.Time, unit)),
			m.Name,
			"0",
			strconv.Itoa(colorValue(m.Color)))
	}
	return nil
}

func (w *reaperWriter) writeMaster(root *rpp.Chunk) error {
	master := w.masterTrack()
	if master == nil || master.Channel == nil {
		return nil
	}
	channel := master.Channel
	if channel.AudioChannels > 0 {
		root.AddLine("MASTER_NCH", strconv.Itoa(channel.AudioChannels))
	}
	root.AddLine("MASTER_VOLUME",
		formatFloat(paramValue(channel.Volume, 1)),
		formatFloat(normalizedToPan(paramValue(channel.Pan, 0.5))))
	root.AddLine("MASTERMUTESOLO", strconv.Itoa(boolFlag(channel.Mute)), strconv.Itoa(boolValue(channel.Solo)))
	if master.Color != "" {
		root.AddLine("MASTERPEAKCOL", strconv.Itoa(colorValue(master.Color)))
	}
	return nil
}

func (w *reaperWriter) masterTrack() *dawproject.Track {
	for _, t := range w.project.Structure.Tracks {
		if t.Channel != nil && t.Channel.Role == dawproject.RoleMaster {
			return t
		}
	}
	return nil
}

// writeTracks flattens the track tree into the chunk sequence, then adds
// the receive lines once every destination has a flat index.
func (w *reaperWriter) writeTracks(ctx context.Context, root *rpp.Chunk) error {
	var tracks []*dawproject.Track
	for _, t := range w.project.Structure.Tracks {
		if t.Channel != nil && t.Channel.Role == dawproject.RoleMaster {
			continue
		}
		tracks = append(tracks, t)
	}

	var stageErr error
	flattenTrackTree(tracks, func(t *dawproject.Track, info folderInfo) {
		if stageErr == nil {
			stageErr = checkStage(ctx)
		}
		if stageErr != nil {
			return
		}
		chunk := w.writeTrack(root, t, info)
		if t.Channel != nil && t.Channel.ID != "" {
			w.channelIndex[t.Channel.ID] = len(w.trackChunks)
		}
		w.trackChunks = append(w.trackChunks, chunk)
		w.channels = append(w.channels, t.Channel)
	})
	if stageErr != nil {
		return stageErr
	}

	for srcIdx, channel := range w.channels {
		if channel == nil || channel.Sends == nil {
			continue
		}
		for _, send := range channel.Sends.Send {
			destIdx, ok := w.channelIndex[send.Destination]
			if !ok {
				w.notifier.Log("Skipping send to unknown channel %q", send.Destination)
				continue
			}
			mode := "0"
			if send.Type == "pre" {
				mode = "1"
			}
			w.trackChunks[destIdx].AddLine("AUXRECV",
				strconv.Itoa(srcIdx),
				mode,
				formatFloat(paramValue(send.Volume, 1)),
				formatFloat(normalizedToPan(paramValue(send.Pan, 0.5))))
		}
	}
	return nil
}

func (w *reaperWriter) writeTrack(root *rpp.Chunk, track *dawproject.Track, info folderInfo) *rpp.Chunk {
	chunk := root.AddChunk("TRACK")
	chunk.AddLine("NAME", track.Name)
	if track.Color != "" {
		chunk.AddLine("PEAKCOL", strconv.Itoa(colorValue(track.Color)))
	}
	chunk.AddLine(folderLineParams(info)...)

	channel := track.Channel
	if channel != nil {
		chunk.AddLine("VOLPAN",
			formatFloat(paramValue(channel.Volume, 1)),
			formatFloat(normalizedToPan(paramValue(channel.Pan, 0.5))))
		chunk.AddLine("MUTESOLO", strconv.Itoa(boolFlag(channel.Mute)), strconv.Itoa(boolValue(channel.Solo)))
		w.writeDevices(chunk, channel)
	}

	lanes := w.lanesOf[track.ID]
	if lanes != nil {
		unit := lanes.TimeUnit.Resolve(w.laneUnit)
		for _, clips := range lanes.Clips {
			clipUnit := clips.TimeUnit.Resolve(unit)
			for _, clip := range clips.Clips {
				w.writeItem(chunk, clip, clipUnit)
			}
		}
		if channel != nil {
			w.writeTrackAutomation(chunk, channel, lanes, unit)
		}
	}
	return chunk
}

// writeDevices renders the channel's plugin chain. A device whose state
// cannot be resolved from the container is skipped, not fatal.
func (w *reaperWriter) writeDevices(chunk *rpp.Chunk, channel *dawproject.Channel) {
	if channel.Devices == nil {
		return
	}
	chain := chunk.AddChunk("FXCHAIN")

	for _, p := range channel.Devices.Vst2Plugins {
		pluginID, _ := strconv.ParseUint(p.DeviceID, 10, 32)
		w.writeDevice(chain, &p.Device, "VST", "VST: "+p.DeviceName,
			&devices.Vst2{PluginID: uint32(pluginID)})
	}
	for _, p := range channel.Devices.Vst3Plugins {
		w.writeDevice(chain, &p.Device, "VST", "VST3: "+p.DeviceName,
			&devices.Vst3{ClassID: normalizeClassID(p.DeviceID)})
	}
	for _, p := range channel.Devices.ClapPlugins {
		w.writeDevice(chain, &p.Device, "CLAP", "CLAP: "+p.DeviceName, &devices.Clap{})
	}

	if len(chain.Children) == 0 {
		chunk.Children = chunk.Children[:len(chunk.Children)-1]
	}
}

func (w *reaperWriter) writeDevice(chain *rpp.Chunk, device *dawproject.Device, chunkName, desc string, handler devices.Handler) {
	if device.State == nil {
		w.notifier.Log("Skipping device %q without state", device.DeviceName)
		return
	}
	state, err := w.media.Stream(device.State.Path)
	if err != nil {
		w.notifier.LogError(err, "Skipping device %q", device.DeviceName)
		return
	}
	defer func() { _ = state.Close() }()

	bypass := device.Enabled != nil && device.Enabled.Value != nil && !*device.Enabled.Value
	offline := device.Loaded != nil && !*device.Loaded
	chain.AddLine("BYPASS", boolParam(bypass), boolParam(offline), "0")

	var params []string
	if chunkName == "CLAP" {
		params = []string{desc, device.DeviceID, ""}
	} else {
		params = []string{desc, "", "0", "", device.DeviceID}
	}
	dev := chain.AddChunk(chunkName, params...)
	if err := handler.FileToChunk(state, dev); err != nil {
		w.notifier.LogError(err, "Skipping state of device %q", device.DeviceName)
		chain.Children = chain.Children[:len(chain.Children)-2]
	}
}

func (w *reaperWriter) writeItem(chunk *rpp.Chunk, clip *dawproject.Clip, unit dawproject.TimeUnit) {
	item := chunk.AddChunk("ITEM")
	position := w.seconds(clip.Time, unit)
	item.AddLine("POSITION", formatFloat(position))

	duration := clip.EffectiveDuration()
	var length float64
	if duration >= 0 {
		length = w.seconds(clip.Time+duration, unit) - position
		item.AddLine("LENGTH", formatFloat(length))
	}
	if clip.Name != "" {
		item.AddLine("NAME", clip.Name)
	}
	fadeUnit := clip.FadeTimeUnit.Resolve(dawproject.TimeUnitSeconds)
	if clip.FadeInTime != nil {
		item.AddLine("FADEIN", "1", formatFloat(w.fadeSpan(position, *clip.FadeInTime, fadeUnit, false)), "0")
	}
	if clip.FadeOutTime != nil {
		item.AddLine("FADEOUT", "1", formatFloat(w.fadeSpan(position+length, *clip.FadeOutTime, fadeUnit, true)), "0")
	}

	switch {
	case clip.Notes != nil:
		source := item.AddChunk("SOURCE", "MIDI")
		lengthBeats := w.tempo.SecondsToBeats(position+length) - w.tempo.SecondsToBeats(position)
		writeMidiSource(source, &midiClip{Notes: clip.Notes, Points: clip.Points}, lengthBeats)

	case clip.Audio != nil:
		if clip.PlayStart != nil {
			item.AddLine("SOFFS", formatFloat(*clip.PlayStart))
		}
		source := item.AddChunk("SOURCE", "WAVE")
		source.AddLine("FILE", filepath.FromSlash(clip.Audio.File.Path))
		w.extract[clip.Audio.File.Path] = filepath.Join(w.outputDir, filepath.FromSlash(clip.Audio.File.Path))
	}
}

// fadeSpan converts a fade duration to seconds. A beat-valued fade is a
// span measured from the clip edge it attaches to, so it converts against
// the tempo in effect there rather than from the project start.
func (w *reaperWriter) fadeSpan(edge, fade float64, unit dawproject.TimeUnit, leadOut bool) float64 {
	if unit == dawproject.TimeUnitSeconds {
		return fade
	}
	beats := w.tempo.SecondsToBeats(edge)
	if leadOut {
		return edge - w.tempo.BeatsToSeconds(beats-fade)
	}
	return w.tempo.BeatsToSeconds(beats+fade) - edge
}

func (w *reaperWriter) writeTrackAutomation(chunk *rpp.Chunk, channel *dawproject.Channel, lanes *dawproject.Lanes, unit dawproject.TimeUnit) {
	for _, points := range lanes.Points {
		pointUnit := points.TimeUnit.Resolve(unit)
		switch {
		case channel.Volume != nil && channel.Volume.ID != "" && points.Target.Parameter == channel.Volume.ID:
			env := addEnvelope(chunk, "VOLENV2")
			for _, p := range points.RealPoints {
				env.AddLine("PT", formatFloat(w.seconds(p.Time, pointUnit)),
					formatFloat(p.Value), shapeOf(p.Interpolation))
			}

		case channel.Pan != nil && channel.Pan.ID != "" && points.Target.Parameter == channel.Pan.ID:
			env := addEnvelope(chunk, "PANENV2")
			for _, p := range points.RealPoints {
				env.AddLine("PT", formatFloat(w.seconds(p.Time, pointUnit)),
					formatFloat(normalizedToPan(p.Value)), shapeOf(p.Interpolation))
			}

		case channel.Mute != nil && channel.Mute.ID != "" && points.Target.Parameter == channel.Mute.ID:
			env := addEnvelope(chunk, "MUTEENV")
			for _, p := range points.BoolPoints {
				// The envelope carries the play state.
				env.AddLine("PT", formatFloat(w.seconds(p.Time, pointUnit)),
					boolParam(!p.Value), "1")
			}

		default:
			w.notifier.Log("Skipping automation of unknown parameter %q", points.Target.Parameter)
		}
	}
}

// extractMedia copies the referenced audio entries next to the output file.
// Failures are reported per entry; the project itself is already written.
func (w *reaperWriter) extractMedia() {
	for id, dest := range w.extract {
		if err := w.extractOne(id, dest); err != nil {
			w.notifier.LogError(err, "Skipping media %q", id)
			continue
		}
		w.notifier.Log("Extracted %s", id)
	}
}

func (w *reaperWriter) extractOne(id, dest string) error {
	src, err := w.media.Stream(id)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create media folder: %w", err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create media file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to extract %s: %w", id, err)
	}
	return out.Close()
}

func addEnvelope(chunk *rpp.Chunk, name string) *rpp.Chunk {
	env := chunk.AddChunk(name)
	env.AddLine("ACT", "1", "-1")
	env.AddLine("VIS", "1", "1", "1")
	return env
}

func shapeOf(interpolation string) string {
	if interpolation == dawproject.InterpolationLinear {
		return "0"
	}
	return "1"
}

func paramValue(p *dawproject.RealParameter, def float64) float64 {
	if p == nil || p.Value == nil {
		return def
	}
	return *p.Value
}

func boolFlag(p *dawproject.BoolParameter) int {
	if p != nil && p.Value != nil && *p.Value {
		return 1
	}
	return 0
}

func boolValue(v *bool) int {
	if v != nil && *v {
		return 1
	}
	return 0
}

func boolParam(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// formatFloat renders a float the way the text format does: a plain
// decimal with no exponent and no trailing zero noise.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}