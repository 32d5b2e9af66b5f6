package dawproject

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProject() *Project {
	volume := 1.0
	return &Project{
		Version:     FormatVersion,
		Application: Application{Name: "ProjectConverter", Version: "1.0"},
		Transport: &Transport{
			Tempo:         &RealParameter{Unit: "bpm", Value: Ptr(128.0)},
			TimeSignature: &TimeSignatureParameter{Numerator: 3, Denominator: 4},
		},
		Structure: Structure{
			Tracks: []*Track{
				{
					ID:          "track-1",
					Name:        "Lead",
					ContentType: ContentNotes,
					Channel: &Channel{
						ID:     "channel-1",
						Role:   RoleRegular,
						Volume: &RealParameter{Unit: "linear", Value: &volume},
					},
				},
			},
		},
		Arrangement: &Arrangement{
			Markers: &Markers{
				TimeUnit: TimeUnitBeats,
				Markers:  []*Marker{{Time: 8, Name: "Drop"}},
			},
			Lanes: &Lanes{
				TimeUnit: TimeUnitBeats,
				Lanes: []*Lanes{
					{
						Track: "track-1",
						Clips: []*Clips{
							{Clips: []*Clip{{Time: 0, Duration: Ptr(4.0)}}},
						},
					},
				},
			},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.dawproject")

	meta := &MetaData{Title: "Song", Artist: "Someone", Comment: "demo"}
	files := []EmbeddedFile{{ID: "audio/kick.wav", Data: []byte("RIFFfake")}}

	require.NoError(t, Save(sampleProject(), meta, files, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, loaded.Version)
	require.NotNil(t, loaded.Transport)
	assert.Equal(t, 128.0, *loaded.Transport.Tempo.Value)
	require.Len(t, loaded.Structure.Tracks, 1)
	assert.Equal(t, "Lead", loaded.Structure.Tracks[0].Name)
	assert.Equal(t, ContentNotes, loaded.Structure.Tracks[0].ContentType)
	require.NotNil(t, loaded.Arrangement.Markers)
	assert.Equal(t, "Drop", loaded.Arrangement.Markers.Markers[0].Name)

	gotMeta, err := LoadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, meta.Title, gotMeta.Title)
	assert.Equal(t, meta.Comment, gotMeta.Comment)

	r, err := StreamEmbedded(path, "audio/kick.wav")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, []byte("RIFFfake"), data)

	_, err = StreamEmbedded(path, "audio/missing.wav")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveFailureLeavesNoArtifact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.dawproject")

	files := []EmbeddedFile{{ID: "audio/a.wav", LocalPath: filepath.Join(dir, "nope.wav")}}
	err := Save(sampleProject(), &MetaData{}, files, path)
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))

	leftovers, _ := filepath.Glob(filepath.Join(dir, ".dawproject-*"))
	assert.Empty(t, leftovers)
}

func TestValidate(t *testing.T) {
	p := sampleProject()
	assert.NoError(t, Validate(p))

	p.Arrangement.Lanes.Lanes[0].Track = "no-such-track"
	err := Validate(p)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	p2 := sampleProject()
	p2.Version = ""
	assert.Error(t, Validate(p2))
}

func TestClipEffectiveDuration(t *testing.T) {
	withDuration := &Clip{Duration: Ptr(2.0)}
	assert.Equal(t, 2.0, withDuration.EffectiveDuration())

	withRange := &Clip{PlayStart: Ptr(1.0), PlayStop: Ptr(3.5)}
	assert.Equal(t, 2.5, withRange.EffectiveDuration())

	bare := &Clip{}
	assert.Equal(t, UnsetDuration, bare.EffectiveDuration())
}

func TestFolderMedia(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kick.wav"), []byte("abc"), 0o644))

	m, err := NewFolderMedia(dir, "")
	require.NoError(t, err)
	defer func() { _ = m.Close() }()

	r, err := m.Stream("kick.wav")
	require.NoError(t, err)
	data, _ := io.ReadAll(r)
	require.NoError(t, r.Close())
	assert.Equal(t, "abc", string(data))

	_, err = m.Stream("missing.wav")
	assert.ErrorIs(t, err, ErrNotFound)

	m.Add("audio/snare.wav", filepath.Join(dir, "kick.wav"))
	m.Add("audio/snare.wav", filepath.Join(dir, "kick.wav"))
	assert.Equal(t, []string{"audio/snare.wav"}, m.All())

	// Close twice must be harmless.
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
}

func TestArchiveMedia(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.dawproject")
	files := []EmbeddedFile{
		{ID: "audio/kick.wav", Data: []byte("abc")},
		{ID: "plugins/state.bin", Data: []byte{1, 2, 3}},
	}
	require.NoError(t, Save(sampleProject(), &MetaData{}, files, path))

	m, err := NewArchiveMedia(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"audio/kick.wav", "plugins/state.bin"}, m.All())

	r, err := m.Stream("plugins/state.bin")
	require.NoError(t, err)
	data, _ := io.ReadAll(r)
	require.NoError(t, r.Close())
	assert.Equal(t, []byte{1, 2, 3}, data)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, err = m.Stream("audio/kick.wav")
	assert.ErrorIs(t, err, ErrNotFound)
}
