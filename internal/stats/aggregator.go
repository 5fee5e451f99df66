// Package stats holds the thread-safe per-camera tracking counters that
// camera workers mutate and the API layer reads.
package stats

import (
	"sort"
	"sync"
	"time"

	"crossline-worker-go/internal/models"
)

// Aggregator accumulates crossing events and live-count snapshots per
// camera. Each camera's counters are only ever mutated by that camera's
// worker goroutine; readers get value copies taken under the entry lock,
// so a snapshot is always internally consistent.
type Aggregator struct {
	mu      sync.RWMutex
	cameras map[string]*entry
}

type entry struct {
	mu    sync.Mutex
	stats models.TrackingStats
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{cameras: make(map[string]*entry)}
}

// Register ensures a camera has a stats entry, creating a zeroed one when
// missing. Cumulative counters of an existing entry are preserved, so a
// re-enabled camera keeps its history; only the display name is refreshed.
func (a *Aggregator) Register(cameraID, cameraName string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.cameras[cameraID]
	if !ok {
		a.cameras[cameraID] = &entry{stats: models.TrackingStats{
			CameraID:   cameraID,
			CameraName: cameraName,
		}}
		return
	}

	e.mu.Lock()
	e.stats.CameraName = cameraName
	e.mu.Unlock()
}

// ApplyCrossing records one crossing event for the camera, incrementing
// exactly one of the two directional counters.
func (a *Aggregator) ApplyCrossing(cameraID string, direction models.Direction, at time.Time) {
	e := a.lookup(cameraID)
	if e == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch direction {
	case models.DirectionIn:
		e.stats.PeopleIn++
	case models.DirectionOut:
		e.stats.PeopleOut++
	}
	e.stats.LastUpdated = at
}

// ApplyLiveCounts sets the camera's current confirmed-track count and adds
// the tracks newly confirmed this cycle to the lifetime total.
func (a *Aggregator) ApplyLiveCounts(cameraID string, currentCount, newlyConfirmed int, at time.Time) {
	e := a.lookup(cameraID)
	if e == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.CurrentCount = currentCount
	e.stats.TotalTracked += int64(newlyConfirmed)
	e.stats.LastUpdated = at
}

// Snapshot returns a consistent copy of one camera's stats.
func (a *Aggregator) Snapshot(cameraID string) (models.TrackingStats, bool) {
	e := a.lookup(cameraID)
	if e == nil {
		return models.TrackingStats{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats, true
}

// SnapshotAll returns consistent copies for every known camera, ordered by
// camera id. Each camera's copy is consistent with itself; no cross-camera
// ordering is implied.
func (a *Aggregator) SnapshotAll() []models.TrackingStats {
	a.mu.RLock()
	entries := make([]*entry, 0, len(a.cameras))
	for _, e := range a.cameras {
		entries = append(entries, e)
	}
	a.mu.RUnlock()

	all := make([]models.TrackingStats, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		all = append(all, e.stats)
		e.mu.Unlock()
	}

	sort.Slice(all, func(i, j int) bool { return all[i].CameraID < all[j].CameraID })
	return all
}

// Drop removes a camera's stats entirely. Called when the camera is
// deleted from the registry, not when its worker merely stops.
func (a *Aggregator) Drop(cameraID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.cameras, cameraID)
}

func (a *Aggregator) lookup(cameraID string) *entry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cameras[cameraID]
}
