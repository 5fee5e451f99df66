package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossline-worker-go/internal/models"
)

func TestAggregatorCrossingsAndLiveCounts(t *testing.T) {
	a := NewAggregator()
	a.Register("cam-1", "entrance")
	now := time.Now()

	a.ApplyCrossing("cam-1", models.DirectionIn, now)
	a.ApplyCrossing("cam-1", models.DirectionIn, now)
	a.ApplyCrossing("cam-1", models.DirectionOut, now)
	a.ApplyLiveCounts("cam-1", 2, 3, now)

	s, ok := a.Snapshot("cam-1")
	require.True(t, ok)
	assert.Equal(t, int64(2), s.PeopleIn)
	assert.Equal(t, int64(1), s.PeopleOut)
	assert.Equal(t, 2, s.CurrentCount)
	assert.Equal(t, int64(3), s.TotalTracked)
	assert.Equal(t, now, s.LastUpdated)

	// Every crossing increments exactly one of the two counters.
	assert.Equal(t, int64(3), s.PeopleIn+s.PeopleOut)
}

func TestAggregatorSnapshotIsIdempotent(t *testing.T) {
	a := NewAggregator()
	a.Register("cam-1", "entrance")
	a.ApplyCrossing("cam-1", models.DirectionIn, time.Now())

	first, ok := a.Snapshot("cam-1")
	require.True(t, ok)
	second, ok := a.Snapshot("cam-1")
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestAggregatorUnknownCamera(t *testing.T) {
	a := NewAggregator()

	_, ok := a.Snapshot("nope")
	assert.False(t, ok)

	// Events for unknown cameras are dropped, not panicking.
	a.ApplyCrossing("nope", models.DirectionIn, time.Now())
	a.ApplyLiveCounts("nope", 1, 1, time.Now())
	assert.Empty(t, a.SnapshotAll())
}

func TestAggregatorPerCameraIndependence(t *testing.T) {
	a := NewAggregator()
	a.Register("cam-b", "back")
	a.Register("cam-a", "front")
	now := time.Now()

	a.ApplyCrossing("cam-a", models.DirectionIn, now)
	a.ApplyCrossing("cam-b", models.DirectionOut, now)

	all := a.SnapshotAll()
	require.Len(t, all, 2)
	assert.Equal(t, "cam-a", all[0].CameraID, "sorted by camera id")
	assert.Equal(t, int64(1), all[0].PeopleIn)
	assert.Zero(t, all[0].PeopleOut)
	assert.Equal(t, int64(1), all[1].PeopleOut)
	assert.Zero(t, all[1].PeopleIn)
}

func TestAggregatorReRegisterKeepsCounters(t *testing.T) {
	a := NewAggregator()
	a.Register("cam-1", "old name")
	a.ApplyCrossing("cam-1", models.DirectionIn, time.Now())

	a.Register("cam-1", "new name")

	s, ok := a.Snapshot("cam-1")
	require.True(t, ok)
	assert.Equal(t, "new name", s.CameraName)
	assert.Equal(t, int64(1), s.PeopleIn, "cumulative counters survive re-enable")
}

func TestAggregatorConcurrentReadersAndWriters(t *testing.T) {
	a := NewAggregator()
	a.Register("cam-1", "entrance")
	a.Register("cam-2", "exit")

	var wg sync.WaitGroup
	for _, id := range []string{"cam-1", "cam-2"} {
		wg.Add(1)
		go func(cameraID string) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				a.ApplyCrossing(cameraID, models.DirectionIn, time.Now())
				a.ApplyLiveCounts(cameraID, i, 1, time.Now())
			}
		}(id)
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				a.SnapshotAll()
				a.Snapshot("cam-1")
			}
		}()
	}
	wg.Wait()

	s, ok := a.Snapshot("cam-1")
	require.True(t, ok)
	assert.Equal(t, int64(500), s.PeopleIn)
	assert.Equal(t, int64(500), s.TotalTracked)
}
