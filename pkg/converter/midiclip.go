package converter

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"gitlab.com/gomidi/midi/v2"

	"github.com/git-moss/ProjectConverter-sub001/pkg/dawproject"
	"github.com/git-moss/ProjectConverter-sub001/pkg/rpp"
)

// defaultTicksPerQuarter is used when a MIDI source declares no resolution.
const defaultTicksPerQuarter = 960

// midiClip is the decoded content of a MIDI item source: a note timeline
// plus one expression timeline per automated controller.
type midiClip struct {
	Notes  *dawproject.Notes
	Points []*dawproject.Points
}

// expressionKey groups expression events into one timeline each.
type expressionKey struct {
	expression string
	channel    int
	controller int
	key        int
}

// parseMidiSource decodes a SOURCE MIDI chunk. Event lines carry a delta
// tick count and the raw channel-message bytes in hex; positions convert to
// beats through the declared ticks-per-quarter resolution.
func parseMidiSource(src *rpp.Chunk) (*midiClip, error) {
	tpq := defaultTicksPerQuarter
	if hasData := src.ChildLine("HASDATA"); hasData != nil {
		tpq = hasData.Int(1, defaultTicksPerQuarter)
		if tpq <= 0 {
			tpq = defaultTicksPerQuarter
		}
	}

	clip := &midiClip{Notes: &dawproject.Notes{TimeUnit: dawproject.TimeUnitBeats}}
	lanes := map[expressionKey]*dawproject.Points{}

	type activeNote struct {
		start    float64
		velocity uint8
	}
	active := map[[2]uint8]*activeNote{}

	tick := 0
	for _, line := range src.ChildLines("E") {
		tick += line.Int(0, 0)
		beat := float64(tick) / float64(tpq)

		msg, err := eventBytes(line)
		if err != nil {
			return nil, err
		}

		var channel, key, velocity, controller, value, program, pressure uint8
		var bendAbs uint16
		var bendRel int16

		switch {
		case msg.GetNoteStart(&channel, &key, &velocity):
			active[[2]uint8{channel, key}] = &activeNote{start: beat, velocity: velocity}

		case msg.GetNoteEnd(&channel, &key):
			id := [2]uint8{channel, key}
			if note := active[id]; note != nil {
				clip.Notes.Notes = append(clip.Notes.Notes, &dawproject.Note{
					Time:     note.start,
					Duration: beat - note.start,
					Channel:  int(channel),
					Key:      int(key),
					Velocity: float64(note.velocity) / 127,
				})
				delete(active, id)
			}

		case msg.GetControlChange(&channel, &controller, &value):
			lane := expressionLane(lanes, clip, expressionKey{
				expression: dawproject.ExpressionChannelController,
				channel:    int(channel),
				controller: int(controller),
				key:        -1,
			})
			lane.RealPoints = append(lane.RealPoints, &dawproject.RealPoint{
				Time: beat, Value: float64(value) / 127, Interpolation: dawproject.InterpolationHold,
			})

		case msg.GetPitchBend(&channel, &bendRel, &bendAbs):
			lane := expressionLane(lanes, clip, expressionKey{
				expression: dawproject.ExpressionPitchBend,
				channel:    int(channel),
				controller: -1,
				key:        -1,
			})
			lane.RealPoints = append(lane.RealPoints, &dawproject.RealPoint{
				Time: beat, Value: float64(bendAbs) / 16383, Interpolation: dawproject.InterpolationHold,
			})

		case msg.GetAfterTouch(&channel, &pressure):
			lane := expressionLane(lanes, clip, expressionKey{
				expression: dawproject.ExpressionChannelPressure,
				channel:    int(channel),
				controller: -1,
				key:        -1,
			})
			lane.RealPoints = append(lane.RealPoints, &dawproject.RealPoint{
				Time: beat, Value: float64(pressure) / 127, Interpolation: dawproject.InterpolationHold,
			})

		case msg.GetPolyAfterTouch(&channel, &key, &pressure):
			lane := expressionLane(lanes, clip, expressionKey{
				expression: dawproject.ExpressionPolyPressure,
				channel:    int(channel),
				controller: -1,
				key:        int(key),
			})
			lane.RealPoints = append(lane.RealPoints, &dawproject.RealPoint{
				Time: beat, Value: float64(pressure) / 127, Interpolation: dawproject.InterpolationHold,
			})

		case msg.GetProgramChange(&channel, &program):
			lane := expressionLane(lanes, clip, expressionKey{
				expression: dawproject.ExpressionProgramChange,
				channel:    int(channel),
				controller: -1,
				key:        -1,
			})
			lane.EnumPoints = append(lane.EnumPoints, &dawproject.EnumPoint{
				Time: beat, Value: int(program),
			})
		}
	}
	return clip, nil
}

func eventBytes(line *rpp.Line) (midi.Message, error) {
	var data []byte
	for i := 1; ; i++ {
		token := line.String(i, "")
		if token == "" {
			break
		}
		b, err := strconv.ParseUint(token, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("malformed event byte %q: %w", token, err)
		}
		data = append(data, byte(b))
	}
	return midi.Message(data), nil
}

func expressionLane(lanes map[expressionKey]*dawproject.Points, clip *midiClip, k expressionKey) *dawproject.Points {
	if lane, ok := lanes[k]; ok {
		return lane
	}
	lane := &dawproject.Points{
		TimeUnit: dawproject.TimeUnitBeats,
		Unit:     "normalized",
		Target:   expressionTarget(k),
	}
	lanes[k] = lane
	clip.Points = append(clip.Points, lane)
	return lane
}

// expressionTarget expands an expression key to an automation target.
func expressionTarget(k expressionKey) dawproject.Target {
	t := dawproject.Target{Expression: k.expression, Channel: dawproject.Ptr(k.channel)}
	if k.controller >= 0 {
		t.Controller = dawproject.Ptr(k.controller)
	}
	if k.key >= 0 {
		t.Key = dawproject.Ptr(k.key)
	}
	return t
}

// midiEvent is one raw channel message placed at an absolute tick.
type midiEvent struct {
	tick int
	msg  midi.Message
}

// writeMidiSource encodes a note timeline and its expression lanes back
// into a SOURCE MIDI chunk.
func writeMidiSource(src *rpp.Chunk, clip *midiClip, lengthBeats float64) {
	tpq := defaultTicksPerQuarter
	src.AddLine("HASDATA", "1", strconv.Itoa(tpq), "QN")

	toTick := func(beat float64) int {
		return int(math.Round(beat * float64(tpq)))
	}

	var events []midiEvent
	if clip.Notes != nil {
		for _, n := range clip.Notes.Notes {
			velocity := velocityByte(n.Velocity)
			events = append(events,
				midiEvent{toTick(n.Time), midi.NoteOn(uint8(n.Channel), uint8(n.Key), velocity)},
				midiEvent{toTick(n.Time + n.Duration), midi.NoteOff(uint8(n.Channel), uint8(n.Key))},
			)
		}
	}

	for _, lane := range clip.Points {
		channel := uint8(0)
		if lane.Target.Channel != nil {
			channel = uint8(*lane.Target.Channel)
		}
		switch lane.Target.Expression {
		case dawproject.ExpressionChannelController:
			controller := uint8(0)
			if lane.Target.Controller != nil {
				controller = uint8(*lane.Target.Controller)
			}
			for _, p := range lane.RealPoints {
				events = append(events, midiEvent{toTick(p.Time), midi.ControlChange(channel, controller, controlByte(p.Value))})
			}
		case dawproject.ExpressionPitchBend:
			for _, p := range lane.RealPoints {
				bend := int16(math.Round(p.Value*16383)) - 8192
				events = append(events, midiEvent{toTick(p.Time), midi.Pitchbend(channel, bend)})
			}
		case dawproject.ExpressionChannelPressure:
			for _, p := range lane.RealPoints {
				events = append(events, midiEvent{toTick(p.Time), midi.AfterTouch(channel, controlByte(p.Value))})
			}
		case dawproject.ExpressionPolyPressure:
			key := uint8(0)
			if lane.Target.Key != nil {
				key = uint8(*lane.Target.Key)
			}
			for _, p := range lane.RealPoints {
				events = append(events, midiEvent{toTick(p.Time), midi.PolyAfterTouch(channel, key, controlByte(p.Value))})
			}
		case dawproject.ExpressionProgramChange:
			for _, p := range lane.EnumPoints {
				events = append(events, midiEvent{toTick(p.Time), midi.ProgramChange(channel, uint8(p.Value))})
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].tick < events[j].tick })

	tick := 0
	for _, ev := range events {
		params := []string{"E", strconv.Itoa(ev.tick - tick)}
		for _, b := range ev.msg {
			params = append(params, fmt.Sprintf("%02x", b))
		}
		src.AddLine(params...)
		tick = ev.tick
	}

	// Terminal no-op keeps the declared item length intact.
	end := toTick(lengthBeats)
	if end > tick {
		src.AddLine("E", strconv.Itoa(end-tick), "b0", "7b", "00")
	}
}

func velocityByte(v float64) uint8 {
	b := int(math.Round(v * 127))
	if b < 1 {
		b = 1
	}
	if b > 127 {
		b = 127
	}
	return uint8(b)
}

func controlByte(v float64) uint8 {
	b := int(math.Round(v * 127))
	if b < 0 {
		b = 0
	}
	if b > 127 {
		b = 127
	}
	return uint8(b)
}
