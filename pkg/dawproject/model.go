// Package dawproject implements the vendor-neutral interchange container:
// the project object graph, its XML form, and the ZIP packaging.
package dawproject

import "encoding/xml"

// FormatVersion is the schema version written into project.xml.
const FormatVersion = "1.0"

// TimeUnit selects the time base of a timeline. An empty value inherits the
// parent timeline's unit.
type TimeUnit string

const (
	TimeUnitBeats   TimeUnit = "beats"
	TimeUnitSeconds TimeUnit = "seconds"
)

// Resolve returns u, or the parent unit when u is unset.
func (u TimeUnit) Resolve(parent TimeUnit) TimeUnit {
	if u == "" {
		return parent
	}
	return u
}

// Project is the root of the object graph.
type Project struct {
	XMLName     xml.Name     `xml:"Project"`
	Version     string       `xml:"version,attr"`
	Application Application  `xml:"Application"`
	Transport   *Transport   `xml:"Transport"`
	Structure   Structure    `xml:"Structure"`
	Arrangement *Arrangement `xml:"Arrangement"`
}

// Application identifies the producing program.
type Application struct {
	Name    string `xml:"name,attr"`
	Version string `xml:"version,attr,omitempty"`
}

// Transport carries the project-wide tempo and time signature.
type Transport struct {
	Tempo         *RealParameter          `xml:"Tempo"`
	TimeSignature *TimeSignatureParameter `xml:"TimeSignature"`
}

// Structure is the ordered list of top-level tracks.
type Structure struct {
	Tracks []*Track `xml:"Track"`
}

// TrackContent classifies what a track holds.
type TrackContent string

const (
	ContentAudio TrackContent = "audio"
	ContentNotes TrackContent = "notes"
)

// MixerRole classifies a channel within the mixer.
type MixerRole string

const (
	RoleRegular MixerRole = "regular"
	RoleMaster  MixerRole = "master"
	RoleEffect  MixerRole = "effect"
)

// Track is a lane holder; folder nesting is expressed by child tracks.
type Track struct {
	ID          string       `xml:"id,attr,omitempty"`
	Name        string       `xml:"name,attr,omitempty"`
	Color       string       `xml:"color,attr,omitempty"`
	ContentType TrackContent `xml:"contentType,attr,omitempty"`
	Channel     *Channel     `xml:"Channel"`
	Tracks      []*Track     `xml:"Track"`
}

// Channel is a mixer strip.
type Channel struct {
	ID            string         `xml:"id,attr,omitempty"`
	Role          MixerRole      `xml:"role,attr,omitempty"`
	AudioChannels int            `xml:"audioChannels,attr,omitempty"`
	Solo          *bool          `xml:"solo,attr,omitempty"`
	Destination   string         `xml:"destination,attr,omitempty"`
	Devices       *Devices       `xml:"Devices"`
	Volume        *RealParameter `xml:"Volume"`
	Pan           *RealParameter `xml:"Pan"`
	Mute          *BoolParameter `xml:"Mute"`
	Sends         *Sends         `xml:"Sends"`
}

// Sends wraps a channel's outgoing sends.
type Sends struct {
	Send []*Send `xml:"Send"`
}

// Send routes a channel into another channel.
type Send struct {
	ID          string         `xml:"id,attr,omitempty"`
	Destination string         `xml:"destination,attr"`
	Type        string         `xml:"type,attr,omitempty"` // "pre" or "post"
	Volume      *RealParameter `xml:"Volume"`
	Pan         *RealParameter `xml:"Pan"`
}

// Devices wraps a channel's device chain, keyed by plugin kind.
type Devices struct {
	Vst2Plugins []*Vst2Plugin `xml:"Vst2Plugin"`
	Vst3Plugins []*Vst3Plugin `xml:"Vst3Plugin"`
	ClapPlugins []*ClapPlugin `xml:"ClapPlugin"`
}

// Device is the state shared by every plugin kind.
type Device struct {
	ID         string         `xml:"id,attr,omitempty"`
	DeviceName string         `xml:"deviceName,attr,omitempty"`
	DeviceID   string         `xml:"deviceID,attr,omitempty"`
	DeviceRole string         `xml:"deviceRole,attr,omitempty"`
	Loaded     *bool          `xml:"loaded,attr,omitempty"`
	Enabled    *BoolParameter `xml:"Enabled"`
	State      *FileReference `xml:"State"`
}

// Vst2Plugin is a VST 2.x plugin instance.
type Vst2Plugin struct {
	Device
}

// Vst3Plugin is a VST 3 plugin instance.
type Vst3Plugin struct {
	Device
}

// ClapPlugin is a CLAP plugin instance.
type ClapPlugin struct {
	Device
}

// FileReference points at a container entry or an external file.
type FileReference struct {
	Path     string `xml:"path,attr"`
	External *bool  `xml:"external,attr,omitempty"`
}

// RealParameter is a floating-point parameter with an optional range.
type RealParameter struct {
	ID    string   `xml:"id,attr,omitempty"`
	Name  string   `xml:"name,attr,omitempty"`
	Unit  string   `xml:"unit,attr,omitempty"` // "linear", "normalized", "bpm", ...
	Value *float64 `xml:"value,attr,omitempty"`
	Min   *float64 `xml:"min,attr,omitempty"`
	Max   *float64 `xml:"max,attr,omitempty"`
}

// BoolParameter is an on/off parameter.
type BoolParameter struct {
	ID    string `xml:"id,attr,omitempty"`
	Name  string `xml:"name,attr,omitempty"`
	Value *bool  `xml:"value,attr,omitempty"`
}

// TimeSignatureParameter carries a musical meter.
type TimeSignatureParameter struct {
	ID          string `xml:"id,attr,omitempty"`
	Numerator   int    `xml:"numerator,attr"`
	Denominator int    `xml:"denominator,attr"`
}

// Arrangement is the top-level timeline.
type Arrangement struct {
	ID                      string   `xml:"id,attr,omitempty"`
	TimeSignatureAutomation *Points  `xml:"TimeSignatureAutomation"`
	TempoAutomation         *Points  `xml:"TempoAutomation"`
	Markers                 *Markers `xml:"Markers"`
	Lanes                   *Lanes   `xml:"Lanes"`
}

// Markers is an ordered marker list.
type Markers struct {
	ID       string    `xml:"id,attr,omitempty"`
	TimeUnit TimeUnit  `xml:"timeUnit,attr,omitempty"`
	Markers  []*Marker `xml:"Marker"`
}

// Marker is a named cue point.
type Marker struct {
	Time  float64 `xml:"time,attr"`
	Name  string  `xml:"name,attr,omitempty"`
	Color string  `xml:"color,attr,omitempty"`
}

// Lanes groups timelines, optionally scoped to a track.
type Lanes struct {
	ID       string    `xml:"id,attr,omitempty"`
	TimeUnit TimeUnit  `xml:"timeUnit,attr,omitempty"`
	Track    string    `xml:"track,attr,omitempty"` // idref
	Lanes    []*Lanes  `xml:"Lanes"`
	Clips    []*Clips  `xml:"Clips"`
	Points   []*Points `xml:"Points"`
}

// Clips is a clip container timeline.
type Clips struct {
	ID       string   `xml:"id,attr,omitempty"`
	TimeUnit TimeUnit `xml:"timeUnit,attr,omitempty"`
	Track    string   `xml:"track,attr,omitempty"`
	Clips    []*Clip  `xml:"Clip"`
}

// UnsetDuration marks a clip without an explicit duration; the effective
// length then derives from the play range when one is present.
const UnsetDuration = -1.0

// Clip is a placed region of content.
type Clip struct {
	Name            string    `xml:"name,attr,omitempty"`
	Time            float64   `xml:"time,attr"`
	Duration        *float64  `xml:"duration,attr,omitempty"`
	ContentTimeUnit TimeUnit  `xml:"contentTimeUnit,attr,omitempty"`
	PlayStart       *float64  `xml:"playStart,attr,omitempty"`
	PlayStop        *float64  `xml:"playStop,attr,omitempty"`
	FadeTimeUnit    TimeUnit  `xml:"fadeTimeUnit,attr,omitempty"`
	FadeInTime      *float64  `xml:"fadeInTime,attr,omitempty"`
	FadeOutTime     *float64  `xml:"fadeOutTime,attr,omitempty"`
	Notes           *Notes    `xml:"Notes"`
	Audio           *Audio    `xml:"Audio"`
	Points          []*Points `xml:"Points"`
}

// EffectiveDuration resolves the clip length: the explicit duration when
// set, else the play-range span, else the unset sentinel.
func (c *Clip) EffectiveDuration() float64 {
	if c.Duration != nil {
		return *c.Duration
	}
	if c.PlayStart != nil && c.PlayStop != nil {
		return *c.PlayStop - *c.PlayStart
	}
	return UnsetDuration
}

// Notes is a note timeline.
type Notes struct {
	ID       string   `xml:"id,attr,omitempty"`
	TimeUnit TimeUnit `xml:"timeUnit,attr,omitempty"`
	Notes    []*Note  `xml:"Note"`
}

// Note is a single key event.
type Note struct {
	Time     float64  `xml:"time,attr"`
	Duration float64  `xml:"duration,attr"`
	Channel  int      `xml:"channel,attr"`
	Key      int      `xml:"key,attr"`
	Velocity float64  `xml:"vel,attr"`          // 0..1
	Release  *float64 `xml:"rel,attr,omitempty"` // 0..1
}

// Audio references sampled content.
type Audio struct {
	ID         string        `xml:"id,attr,omitempty"`
	TimeUnit   TimeUnit      `xml:"timeUnit,attr,omitempty"`
	SampleRate int           `xml:"sampleRate,attr,omitempty"`
	Channels   int           `xml:"channels,attr,omitempty"`
	Duration   *float64      `xml:"duration,attr,omitempty"`
	File       FileReference `xml:"File"`
}

// Expression names for automation targets.
const (
	ExpressionGain              = "gain"
	ExpressionPan               = "pan"
	ExpressionChannelController = "channelController"
	ExpressionChannelPressure   = "channelPressure"
	ExpressionPolyPressure      = "polyPressure"
	ExpressionPitchBend         = "pitchBend"
	ExpressionProgramChange     = "programChange"
)

// Target identifies what a Points timeline automates: a parameter by id, or
// a MIDI expression.
type Target struct {
	Parameter  string `xml:"parameter,attr,omitempty"`
	Expression string `xml:"expression,attr,omitempty"`
	Channel    *int   `xml:"channel,attr,omitempty"`
	Controller *int   `xml:"controller,attr,omitempty"`
	Key        *int   `xml:"key,attr,omitempty"`
}

// Interpolation of a real automation point up to the next point.
const (
	InterpolationHold   = "hold"
	InterpolationLinear = "linear"
)

// Points is an automation timeline.
type Points struct {
	ID            string                `xml:"id,attr,omitempty"`
	TimeUnit      TimeUnit              `xml:"timeUnit,attr,omitempty"`
	Unit          string                `xml:"unit,attr,omitempty"`
	Target        Target                `xml:"Target"`
	RealPoints    []*RealPoint          `xml:"RealPoint"`
	BoolPoints    []*BoolPoint          `xml:"BoolPoint"`
	EnumPoints    []*EnumPoint          `xml:"EnumPoint"`
	TimeSigPoints []*TimeSignaturePoint `xml:"TimeSignaturePoint"`
}

// RealPoint is a continuous control point.
type RealPoint struct {
	Time          float64 `xml:"time,attr"`
	Value         float64 `xml:"value,attr"`
	Interpolation string  `xml:"interpolation,attr,omitempty"`
}

// BoolPoint is a discrete on/off point.
type BoolPoint struct {
	Time  float64 `xml:"time,attr"`
	Value bool    `xml:"value,attr"`
}

// EnumPoint is a discrete integer point (program changes).
type EnumPoint struct {
	Time  float64 `xml:"time,attr"`
	Value int     `xml:"value,attr"`
}

// TimeSignaturePoint is a discrete meter change.
type TimeSignaturePoint struct {
	Time        float64 `xml:"time,attr"`
	Numerator   int     `xml:"numerator,attr"`
	Denominator int     `xml:"denominator,attr"`
}

// Ptr returns a pointer to v; a convenience for the optional attributes.
func Ptr[T any](v T) *T {
	return &v
}
