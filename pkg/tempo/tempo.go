// Package tempo converts positions between wall-clock seconds and musical
// beats over a piecewise tempo map.
package tempo

import "math"

// Change is a single tempo event. When Linear is set the tempo ramps
// linearly from BPM to the next change's BPM over the interval; otherwise it
// holds constant until the next change.
type Change struct {
	Time   float64 // seconds, first change at 0
	BPM    float64 // beats per minute, > 0
	Linear bool
}

// Map is an ordered, non-empty sequence of changes sorted strictly by time.
// Malformed maps are a programming error, not a runtime condition.
type Map []Change

// Constant returns a single-entry map holding the given tempo throughout.
func Constant(bpm float64) Map {
	return Map{{Time: 0, BPM: bpm}}
}

// BPMAt returns the tempo in effect at a position in seconds.
func (m Map) BPMAt(seconds float64) float64 {
	for i := 0; i < len(m); i++ {
		cur := m[i]
		if i == len(m)-1 || seconds < m[i+1].Time {
			if cur.Linear && i < len(m)-1 {
				next := m[i+1]
				return cur.BPM + (next.BPM-cur.BPM)*(seconds-cur.Time)/(next.Time-cur.Time)
			}
			return cur.BPM
		}
	}
	return m[len(m)-1].BPM
}

// SecondsToBeats converts a position in seconds to beats.
func (m Map) SecondsToBeats(seconds float64) float64 {
	beats := 0.0
	for i := 0; i < len(m); i++ {
		cur := m[i]

		// Past the last change the tempo holds constant.
		if i == len(m)-1 {
			return beats + (seconds-cur.Time)*cur.BPM/60
		}

		next := m[i+1]
		if seconds < next.Time {
			dt := seconds - cur.Time
			if cur.Linear {
				pos := cur.BPM + (next.BPM-cur.BPM)*dt/(next.Time-cur.Time)
				return beats + (cur.BPM+pos)/2/60*dt
			}
			return beats + dt*cur.BPM/60
		}

		span := next.Time - cur.Time
		if cur.Linear {
			beats += (cur.BPM + next.BPM) / 2 / 60 * span
		} else {
			beats += span * cur.BPM / 60
		}
	}
	return beats
}

// BeatsToSeconds converts a position in beats to seconds. It is the
// approximate inverse of SecondsToBeats.
func (m Map) BeatsToSeconds(beats float64) float64 {
	elapsed := 0.0
	for i := 0; i < len(m); i++ {
		cur := m[i]

		if i == len(m)-1 {
			return cur.Time + (beats-elapsed)*60/cur.BPM
		}

		next := m[i+1]
		span := next.Time - cur.Time

		var segBeats float64
		if cur.Linear {
			segBeats = (cur.BPM + next.BPM) / 2 / 60 * span
		} else {
			segBeats = span * cur.BPM / 60
		}

		if beats <= elapsed+segBeats {
			remaining := beats - elapsed
			if cur.Linear {
				return cur.Time + solveRamp(cur.BPM, next.BPM, span, remaining)
			}
			return cur.Time + remaining*60/cur.BPM
		}
		elapsed += segBeats
	}
	return 0
}

// solveRamp returns the elapsed time within a linear ramp from b0 to b1 over
// span seconds at which the integrated beat count equals beats. Integrating
// the linear tempo curve gives (k/120)t² + (b0/60)t - beats = 0 with
// k = (b1-b0)/span; the positive-discriminant root is the physical one.
func solveRamp(b0, b1, span, beats float64) float64 {
	k := (b1 - b0) / span
	if k == 0 {
		return beats * 60 / b0
	}
	a := k / 120
	b := b0 / 60
	disc := b*b + 4*a*beats
	return (-b + math.Sqrt(disc)) / (2 * a)
}
