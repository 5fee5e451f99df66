package tracking

import (
	"sort"

	"crossline-worker-go/internal/geometry"
	"crossline-worker-go/internal/models"
)

// Config holds the association tunables. All of them are surfaced as
// environment configuration; the defaults follow DefaultConfig.
type Config struct {
	// MinIoU is the minimum intersection-over-union between a predicted
	// track box and a detection box for the pair to be matchable.
	MinIoU float64
	// SmoothingAlpha is the exponential smoothing factor applied to the
	// box of a matched track (1 = take the detection verbatim).
	SmoothingAlpha float64
	// ConfirmThreshold is the number of consecutive hits that promotes a
	// tentative track to confirmed.
	ConfirmThreshold int
	// MissThreshold is the number of consecutive misses that demotes a
	// confirmed track to lost.
	MissThreshold int
	// RemovalGrace is how many frames a lost track survives before it is
	// removed for good.
	RemovalGrace int
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		MinIoU:           0.3,
		SmoothingAlpha:   0.5,
		ConfirmThreshold: 3,
		MissThreshold:    10,
		RemovalGrace:     30,
	}
}

// Tracker owns the track set for a single camera and performs the
// per-frame association between predicted track positions and fresh
// detections. It is not safe for concurrent use; each camera worker owns
// exactly one instance and drives it from a single goroutine.
type Tracker struct {
	cfg    Config
	tracks []*Track
	nextID int64

	newlyConfirmed int
}

// NewTracker creates a tracker with the given tunables.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{cfg: cfg, nextID: 1}
}

type candidate struct {
	trackIdx int
	detIdx   int
	cost     float64
}

// Update associates the detections of one frame with the existing track
// set and advances every track's lifecycle. Deterministic for identical
// inputs: candidates are resolved greedily by lowest cost, ties broken by
// lower track id, then lower detection index.
func (t *Tracker) Update(detections []models.Detection) {
	feasible := make([]candidate, 0, len(t.tracks)*len(detections))
	for ti, track := range t.tracks {
		predicted := track.Predicted()
		for di, det := range detections {
			iou := geometry.IoU(predicted, det.Box)
			if iou < t.cfg.MinIoU {
				continue
			}
			feasible = append(feasible, candidate{trackIdx: ti, detIdx: di, cost: 1 - iou})
		}
	}

	sort.Slice(feasible, func(i, j int) bool {
		a, b := feasible[i], feasible[j]
		if a.cost != b.cost {
			return a.cost < b.cost
		}
		if t.tracks[a.trackIdx].ID != t.tracks[b.trackIdx].ID {
			return t.tracks[a.trackIdx].ID < t.tracks[b.trackIdx].ID
		}
		return a.detIdx < b.detIdx
	})

	trackMatched := make([]bool, len(t.tracks))
	detMatched := make([]bool, len(detections))

	for _, c := range feasible {
		if trackMatched[c.trackIdx] || detMatched[c.detIdx] {
			continue
		}
		trackMatched[c.trackIdx] = true
		detMatched[c.detIdx] = true

		if t.tracks[c.trackIdx].applyMatch(detections[c.detIdx], t.cfg.SmoothingAlpha, t.cfg.ConfirmThreshold) {
			t.newlyConfirmed++
		}
	}

	for ti, track := range t.tracks {
		if !trackMatched[ti] {
			track.applyMiss(t.cfg.MissThreshold, t.cfg.RemovalGrace)
		}
	}

	for di, det := range detections {
		if !detMatched[di] {
			t.tracks = append(t.tracks, newTrack(t.nextID, det))
			t.nextID++
		}
	}

	// Compact away removed tracks, keeping creation order.
	kept := t.tracks[:0]
	for _, track := range t.tracks {
		if track.State != StateRemoved {
			kept = append(kept, track)
		}
	}
	t.tracks = kept
}

// Tracks returns the live track set in creation order. Callers must not
// retain the slice across Update calls.
func (t *Tracker) Tracks() []*Track {
	return t.tracks
}

// Confirmed returns the currently confirmed tracks in creation order.
func (t *Tracker) Confirmed() []*Track {
	confirmed := make([]*Track, 0, len(t.tracks))
	for _, track := range t.tracks {
		if track.State == StateConfirmed {
			confirmed = append(confirmed, track)
		}
	}
	return confirmed
}

// TakeNewlyConfirmed returns how many tracks reached confirmed state since
// the previous call, and resets the counter. Feeds the total_tracked
// statistic.
func (t *Tracker) TakeNewlyConfirmed() int {
	n := t.newlyConfirmed
	t.newlyConfirmed = 0
	return n
}

// ResetSides clears the remembered line side of every track. Called when
// the camera's counting line is reconfigured, since sides computed against
// the old line are meaningless for the new one.
func (t *Tracker) ResetSides() {
	for _, track := range t.tracks {
		track.lastSide = SideUnknown
	}
}
