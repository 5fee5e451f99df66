package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossline-worker-go/internal/models"
)

func TestTrackerStableIdentityForSmoothMotion(t *testing.T) {
	tk := NewTracker(DefaultConfig())

	// One object drifting right 5px per frame.
	for i := 0; i < 20; i++ {
		tk.Update([]models.Detection{det(float64(i*5), 100, 40, 40)})
		require.Len(t, tk.Tracks(), 1, "frame %d", i)
		assert.Equal(t, int64(1), tk.Tracks()[0].ID)
	}

	confirmed := tk.Confirmed()
	require.Len(t, confirmed, 1)
	assert.Equal(t, int64(1), confirmed[0].ID)
	assert.Equal(t, 1, tk.TakeNewlyConfirmed())
	assert.Zero(t, tk.TakeNewlyConfirmed(), "delta is consumed on read")
}

func TestTrackerEmptyInputs(t *testing.T) {
	t.Run("empty track set turns detections into tentative tracks", func(t *testing.T) {
		tk := NewTracker(DefaultConfig())
		tk.Update([]models.Detection{det(0, 0, 10, 10), det(100, 100, 10, 10)})

		require.Len(t, tk.Tracks(), 2)
		for _, track := range tk.Tracks() {
			assert.Equal(t, StateTentative, track.State)
		}
		assert.Empty(t, tk.Confirmed())
	})

	t.Run("empty detection list ages every track", func(t *testing.T) {
		tk := NewTracker(DefaultConfig())
		tk.Update([]models.Detection{det(0, 0, 10, 10)})
		tk.Update(nil)
		assert.Empty(t, tk.Tracks(), "unmatched tentative tracks are discarded")
	})
}

func TestTrackerLostAndRemovedTimeline(t *testing.T) {
	cfg := DefaultConfig() // confirm 3, miss 10, grace 30
	tk := NewTracker(cfg)

	for i := 0; i < 3; i++ {
		tk.Update([]models.Detection{det(200, 200, 50, 80)})
	}
	require.Len(t, tk.Confirmed(), 1)
	id := tk.Confirmed()[0].ID

	// Detector goes dark for 40 frames.
	for frame := 1; frame <= 40; frame++ {
		tk.Update(nil)

		switch {
		case frame < 10:
			require.Len(t, tk.Confirmed(), 1, "frame %d", frame)
		case frame < 40:
			assert.Empty(t, tk.Confirmed(), "frame %d", frame)
			require.Len(t, tk.Tracks(), 1, "frame %d: lost track still held", frame)
			assert.Equal(t, StateLost, tk.Tracks()[0].State)
		default:
			assert.Empty(t, tk.Tracks(), "frame %d: grace expired", frame)
		}
	}

	_ = id
}

func TestTrackerOcclusionRecoveryKeepsIdentity(t *testing.T) {
	tk := NewTracker(DefaultConfig())

	for i := 0; i < 3; i++ {
		tk.Update([]models.Detection{det(200, 200, 50, 80)})
	}
	require.Len(t, tk.Confirmed(), 1)
	id := tk.Confirmed()[0].ID
	assert.Equal(t, 1, tk.TakeNewlyConfirmed())

	// Occluded past the miss threshold but inside the removal grace.
	for i := 0; i < 15; i++ {
		tk.Update(nil)
	}
	require.Len(t, tk.Tracks(), 1)
	assert.Equal(t, StateLost, tk.Tracks()[0].State)

	tk.Update([]models.Detection{det(200, 200, 50, 80)})

	confirmed := tk.Confirmed()
	require.Len(t, confirmed, 1)
	assert.Equal(t, id, confirmed[0].ID, "identity survives the occlusion window")
	assert.Zero(t, tk.TakeNewlyConfirmed(), "recovery is not a new confirmation")
}

func TestTrackerNoIdentitySwapOnReorderedDetections(t *testing.T) {
	tk := NewTracker(DefaultConfig())

	left := det(0, 100, 60, 120)
	right := det(500, 100, 60, 120)

	for i := 0; i < 3; i++ {
		tk.Update([]models.Detection{left, right})
	}
	require.Len(t, tk.Confirmed(), 2)
	leftID := tk.Tracks()[0].ID
	rightID := tk.Tracks()[1].ID

	// Same objects, nudged, but reported in swapped order.
	tk.Update([]models.Detection{det(505, 102, 60, 120), det(5, 98, 60, 120)})

	byID := map[int64]*Track{}
	for _, track := range tk.Tracks() {
		byID[track.ID] = track
	}
	require.Len(t, byID, 2)
	assert.Less(t, byID[leftID].Centroid.X, 200.0, "left identity stayed left")
	assert.Greater(t, byID[rightID].Centroid.X, 300.0, "right identity stayed right")
}

func TestTrackerGreedyTieBreakPrefersLowerID(t *testing.T) {
	tk := NewTracker(DefaultConfig())

	// Two overlapping stationary tracks, both confirmed...
	for i := 0; i < 3; i++ {
		tk.Update([]models.Detection{det(0, 0, 40, 40), det(20, 0, 40, 40)})
	}
	require.Len(t, tk.Confirmed(), 2)

	// ...then a single detection exactly between them: equal cost both
	// ways, so the lower track id must win the match.
	tk.Update([]models.Detection{det(10, 0, 40, 40)})

	require.Len(t, tk.Tracks(), 2)
	first, second := tk.Tracks()[0], tk.Tracks()[1]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, 4, first.Hits)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, 1, second.Misses)
}

func TestTrackerNeverReusesIDs(t *testing.T) {
	tk := NewTracker(DefaultConfig())

	tk.Update([]models.Detection{det(0, 0, 10, 10)})
	tk.Update(nil) // tentative discarded
	tk.Update([]models.Detection{det(0, 0, 10, 10)})

	require.Len(t, tk.Tracks(), 1)
	assert.Equal(t, int64(2), tk.Tracks()[0].ID)
}
