// Package tracking implements the per-camera frame-to-frame object
// association engine and the line-crossing counter that consumes its
// confirmed tracks.
package tracking

import (
	"crossline-worker-go/internal/geometry"
	"crossline-worker-go/internal/models"
)

// State is the track lifecycle state.
type State string

const (
	// StateTentative is a freshly created track that has not yet seen
	// enough consecutive matches to be trusted for counting.
	StateTentative State = "tentative"
	// StateConfirmed is a track with hits >= the confirm threshold.
	StateConfirmed State = "confirmed"
	// StateLost is a previously confirmed track that has gone unmatched
	// past the miss threshold but is still inside the removal grace
	// window and may recover its identity.
	StateLost State = "lost"
	// StateRemoved is terminal; the tracker drops removed tracks.
	StateRemoved State = "removed"
)

// Side is the signed side of the counting line a centroid was last seen on.
type Side int

const (
	// SideUnknown means the side has not been evaluated yet, or the
	// centroid sat within the epsilon band around the line.
	SideUnknown Side = 0
	// SideA is the positive-cross-product side of the line.
	SideA Side = 1
	// SideB is the negative-cross-product side of the line.
	SideB Side = -1
)

// Track follows one physical object across a single camera's frames.
// Identity (ID) is monotonically increasing per camera and never reused,
// including across the Lost/recovered occlusion window.
type Track struct {
	ID       int64
	State    State
	Box      geometry.Rect
	Centroid geometry.Point
	Velocity geometry.Point
	Hits     int
	Misses   int

	// CountedTotal is the number of crossing events this track has
	// emitted over its lifetime. Diagnostics only.
	CountedTotal int

	lastSide Side
	lostFor  int
}

func newTrack(id int64, det models.Detection) *Track {
	return &Track{
		ID:       id,
		State:    StateTentative,
		Box:      det.Box,
		Centroid: det.Box.Center(),
		Hits:     1,
	}
}

// Predicted returns the box expected for the next frame under the
// constant-velocity model. Used for matching only, never for display.
func (t *Track) Predicted() geometry.Rect {
	return t.Box.Translate(t.Velocity)
}

// applyMatch folds a matched detection into the track: exponential box
// smoothing, velocity from the smoothed centroid delta, hit bookkeeping
// and state promotion. Reports whether the track newly reached confirmed
// state from tentative (a recovered Lost track does not count again).
func (t *Track) applyMatch(det models.Detection, alpha float64, confirmThreshold int) bool {
	prev := t.Centroid

	t.Box = geometry.Rect{
		X: alpha*det.Box.X + (1-alpha)*t.Box.X,
		Y: alpha*det.Box.Y + (1-alpha)*t.Box.Y,
		W: alpha*det.Box.W + (1-alpha)*t.Box.W,
		H: alpha*det.Box.H + (1-alpha)*t.Box.H,
	}
	t.Centroid = t.Box.Center()
	t.Velocity = t.Centroid.Sub(prev)

	t.Hits++
	t.Misses = 0

	switch t.State {
	case StateTentative:
		if t.Hits >= confirmThreshold {
			t.State = StateConfirmed
			return true
		}
	case StateLost:
		// Occlusion recovery: same identity, no new confirmation.
		t.State = StateConfirmed
		t.lostFor = 0
	}
	return false
}

// applyMiss ages an unmatched track one frame. Tentative tracks are
// discarded immediately; confirmed tracks decay to lost past the miss
// threshold; lost tracks are removed after the grace window expires.
func (t *Track) applyMiss(missThreshold, removalGrace int) {
	t.Hits = 0
	t.Misses++

	switch t.State {
	case StateTentative:
		t.State = StateRemoved
	case StateConfirmed:
		if t.Misses >= missThreshold {
			t.State = StateLost
			t.lostFor = 0
		}
	case StateLost:
		t.lostFor++
		if t.lostFor >= removalGrace {
			t.State = StateRemoved
		}
	}
}
