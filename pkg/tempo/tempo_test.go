package tempo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantTempo(t *testing.T) {
	m := Constant(120)
	assert.Equal(t, 4.0, m.SecondsToBeats(2.0))
	assert.Equal(t, 2.0, m.BeatsToSeconds(4.0))
	assert.Equal(t, 0.0, m.SecondsToBeats(0))
}

func TestLinearRamp(t *testing.T) {
	m := Map{
		{Time: 0, BPM: 60, Linear: true},
		{Time: 10, BPM: 120},
	}
	// Trapezoid over the whole ramp: (60+120)/2/60 * 10.
	assert.InDelta(t, 15.0, m.SecondsToBeats(10), 1e-12)

	// Midway the instantaneous tempo is 90 BPM, average so far 75.
	assert.InDelta(t, 6.25, m.SecondsToBeats(5), 1e-12)

	// Past the ramp the tempo holds at 120.
	assert.InDelta(t, 17.0, m.SecondsToBeats(11), 1e-12)
}

func TestConstantSegments(t *testing.T) {
	m := Map{
		{Time: 0, BPM: 120},
		{Time: 10, BPM: 60},
	}
	assert.InDelta(t, 20.0, m.SecondsToBeats(10), 1e-12)
	assert.InDelta(t, 25.0, m.SecondsToBeats(15), 1e-12)
	assert.InDelta(t, 15.0, m.BeatsToSeconds(25), 1e-12)
}

func TestInverseLaw(t *testing.T) {
	maps := map[string]Map{
		"constant": Constant(97.3),
		"two segments": {
			{Time: 0, BPM: 120},
			{Time: 4.25, BPM: 140},
		},
		"ramp up": {
			{Time: 0, BPM: 60, Linear: true},
			{Time: 10, BPM: 120},
		},
		"ramp down then hold": {
			{Time: 0, BPM: 180, Linear: true},
			{Time: 3, BPM: 90},
			{Time: 8, BPM: 100},
		},
		"chained ramps": {
			{Time: 0, BPM: 100, Linear: true},
			{Time: 2, BPM: 130, Linear: true},
			{Time: 6, BPM: 80},
		},
	}

	seconds := []float64{0, 0.1, 1, 2.5, 3, 5, 7.99, 8, 12, 100}

	for name, m := range maps {
		t.Run(name, func(t *testing.T) {
			for _, s := range seconds {
				beats := m.SecondsToBeats(s)
				back := m.BeatsToSeconds(beats)
				require.InDelta(t, s, back, 1e-9*(1+s), "seconds=%v beats=%v", s, beats)
			}
		})
	}
}
