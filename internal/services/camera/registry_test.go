package camera

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossline-worker-go/internal/config"
	"crossline-worker-go/internal/geometry"
	"crossline-worker-go/internal/models"
	"crossline-worker-go/internal/stats"
	"crossline-worker-go/internal/store"
)

func blockingOpener(string, Source) (FrameSource, error) {
	return blockingSource{}, nil
}

func newTestRegistry(t *testing.T, cfg *config.Config, opener SourceOpener) (*Registry, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "cameras.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	r := NewRegistry(cfg, st, &scriptedDetector{}, stats.NewAggregator(), nil, opener)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		r.Shutdown(ctx)
	})
	return r, st
}

func createReq(id, name string, enabled bool) models.CameraCreateRequest {
	return models.CameraCreateRequest{
		CameraID: id,
		Name:     name,
		Source:   "rtsp://example/" + id,
		Enabled:  &enabled,
	}
}

func TestRegistryAddAndGet(t *testing.T) {
	r, st := newTestRegistry(t, testConfig(), blockingOpener)

	cam, err := r.Add(createReq("cam-1", "entrance", true))
	require.NoError(t, err)
	assert.Equal(t, models.CameraStatusRunning, cam.Status)

	got, err := r.Get("cam-1")
	require.NoError(t, err)
	assert.Equal(t, "entrance", got.Name)

	persisted, err := st.Cameras().GetByID("cam-1")
	require.NoError(t, err)
	assert.Equal(t, "entrance", persisted.Name)
}

func TestRegistryGeneratesCameraID(t *testing.T) {
	r, _ := newTestRegistry(t, testConfig(), blockingOpener)

	cam, err := r.Add(models.CameraCreateRequest{Name: "dock", Source: "0"})
	require.NoError(t, err)
	assert.NotEmpty(t, cam.ID)
}

func TestRegistryDuplicateCamera(t *testing.T) {
	r, _ := newTestRegistry(t, testConfig(), blockingOpener)

	_, err := r.Add(createReq("cam-1", "entrance", false))
	require.NoError(t, err)

	_, err = r.Add(createReq("cam-1", "other", false))
	assert.ErrorIs(t, err, ErrDuplicateCamera)
}

func TestRegistryNotFound(t *testing.T) {
	r, _ := newTestRegistry(t, testConfig(), blockingOpener)

	_, err := r.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Update("nope", models.CameraUpdateRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.Remove("nope"), ErrNotFound)
	_, err = r.LatestFrame("nope", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryWorkerCeiling(t *testing.T) {
	cfg := testConfig()
	cfg.MaxCameras = 1
	r, _ := newTestRegistry(t, cfg, blockingOpener)

	_, err := r.Add(createReq("cam-1", "one", true))
	require.NoError(t, err)

	_, err = r.Add(createReq("cam-2", "two", true))
	assert.ErrorIs(t, err, ErrResourceExhausted)

	// A disabled camera is always accepted; only activation is bounded.
	_, err = r.Add(createReq("cam-3", "three", false))
	require.NoError(t, err)
	_, err = r.Enable("cam-3")
	assert.ErrorIs(t, err, ErrResourceExhausted)

	// Freeing the slot permits the activation.
	_, err = r.Disable("cam-1")
	require.NoError(t, err)
	_, err = r.Enable("cam-3")
	require.NoError(t, err)
}

func TestRegistryDisableStopsWorker(t *testing.T) {
	r, st := newTestRegistry(t, testConfig(), blockingOpener)

	_, err := r.Add(createReq("cam-1", "entrance", true))
	require.NoError(t, err)
	assert.Equal(t, 1, r.RunningWorkers())

	cam, err := r.Disable("cam-1")
	require.NoError(t, err)
	assert.Equal(t, models.CameraStatusIdle, cam.Status)
	assert.False(t, cam.Enabled)
	assert.Zero(t, r.RunningWorkers())

	persisted, err := st.Cameras().GetByID("cam-1")
	require.NoError(t, err)
	assert.False(t, persisted.Enabled)
}

func TestRegistryEnableSpawnsFreshWorker(t *testing.T) {
	r, _ := newTestRegistry(t, testConfig(), blockingOpener)

	_, err := r.Add(createReq("cam-1", "entrance", false))
	require.NoError(t, err)
	assert.Zero(t, r.RunningWorkers())

	cam, err := r.Enable("cam-1")
	require.NoError(t, err)
	assert.Equal(t, models.CameraStatusRunning, cam.Status)
	assert.Equal(t, 1, r.RunningWorkers())
}

func TestRegistrySetLineValidation(t *testing.T) {
	r, _ := newTestRegistry(t, testConfig(), blockingOpener)
	_, err := r.Add(createReq("cam-1", "entrance", false))
	require.NoError(t, err)

	_, err = r.SetLine("cam-1", &models.Line{
		A: geometry.Point{X: -0.1, Y: 0},
		B: geometry.Point{X: 0.5, Y: 1},
	})
	assert.ErrorIs(t, err, ErrInvalidLine)

	_, err = r.SetLine("cam-1", &models.Line{
		A: geometry.Point{X: 0.5, Y: 0.5},
		B: geometry.Point{X: 0.5, Y: 0.5},
	})
	assert.ErrorIs(t, err, ErrInvalidLine)

	line := &models.Line{A: geometry.Point{X: 0.5, Y: 0}, B: geometry.Point{X: 0.5, Y: 1}}
	cam, err := r.SetLine("cam-1", line)
	require.NoError(t, err)
	require.NotNil(t, cam.Line)
	assert.Equal(t, *line, *cam.Line)
}

func TestRegistryRemoveDropsStats(t *testing.T) {
	r, _ := newTestRegistry(t, testConfig(), blockingOpener)

	_, err := r.Add(createReq("cam-1", "entrance", true))
	require.NoError(t, err)
	_, ok := r.stats.Snapshot("cam-1")
	require.True(t, ok)

	require.NoError(t, r.Remove("cam-1"))
	_, ok = r.stats.Snapshot("cam-1")
	assert.False(t, ok)
	assert.Zero(t, r.RunningWorkers())
}

func TestRegistryWorkerErrorSetsStatus(t *testing.T) {
	cfg := testConfig()
	cfg.SourceMaxRetries = 0
	r, _ := newTestRegistry(t, cfg, func(string, Source) (FrameSource, error) {
		return nil, assert.AnError
	})

	_, err := r.Add(createReq("cam-1", "entrance", true))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		cam, err := r.Get("cam-1")
		return err == nil && cam.Status == models.CameraStatusError
	}, 5*time.Second, 5*time.Millisecond, "exhausted retries surface as status error")
	assert.Zero(t, r.RunningWorkers())

	// Explicit re-enable restarts the loop.
	r2opener := blockingOpener
	r.opener = r2opener
	cam, err := r.Enable("cam-1")
	require.NoError(t, err)
	assert.Equal(t, models.CameraStatusRunning, cam.Status)
}

// trackedSource blocks like a live stream and reports its close so tests
// can observe whether two workers ever held a source concurrently.
type trackedSource struct {
	onClose   func()
	closeOnce sync.Once
}

func (s *trackedSource) Next(ctx context.Context) (*models.Frame, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s *trackedSource) Close() error {
	s.closeOnce.Do(s.onClose)
	return nil
}

func TestRegistryConcurrentDisableEnableSerializes(t *testing.T) {
	var mu sync.Mutex
	open := 0
	overlapped := false
	opener := func(string, Source) (FrameSource, error) {
		mu.Lock()
		if open > 0 {
			overlapped = true
		}
		open++
		mu.Unlock()
		return &trackedSource{onClose: func() {
			mu.Lock()
			open--
			mu.Unlock()
		}}, nil
	}

	r, _ := newTestRegistry(t, testConfig(), opener)
	_, err := r.Add(createReq("cam-1", "entrance", true))
	require.NoError(t, err)

	// Hammer disable/enable pairs; whichever order they land in, a new
	// worker must never open the source before the draining one closed it.
	for i := 0; i < 25; i++ {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = r.Disable("cam-1")
		}()
		go func() {
			defer wg.Done()
			_, _ = r.Enable("cam-1")
		}()
		wg.Wait()
	}

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, overlapped, "two workers held the same source concurrently")
	assert.LessOrEqual(t, r.RunningWorkers(), 1)
}

func TestRegistryLoadPersisted(t *testing.T) {
	cfg := testConfig()
	dbPath := filepath.Join(t.TempDir(), "cameras.db")

	st, err := store.New(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Cameras().Create(&models.Camera{
		ID: "cam-1", Name: "entrance", Source: "rtsp://example/1", Enabled: true,
		Line: &models.Line{A: geometry.Point{X: 0.5, Y: 0}, B: geometry.Point{X: 0.5, Y: 1}},
	}))
	require.NoError(t, st.Cameras().Create(&models.Camera{
		ID: "cam-2", Name: "dock", Source: "0", Enabled: false,
	}))
	require.NoError(t, st.Close())

	st, err = store.New(dbPath)
	require.NoError(t, err)
	defer st.Close()

	r := NewRegistry(cfg, st, &scriptedDetector{}, stats.NewAggregator(), nil, blockingOpener)
	require.NoError(t, r.LoadPersisted())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		r.Shutdown(ctx)
	}()

	cameras := r.List()
	require.Len(t, cameras, 2)
	assert.Equal(t, 1, r.RunningWorkers(), "only the enabled camera gets a worker")

	cam, err := r.Get("cam-1")
	require.NoError(t, err)
	assert.Equal(t, models.CameraStatusRunning, cam.Status)
	require.NotNil(t, cam.Line)
}

func TestRegistryLatestFrameWithoutWorker(t *testing.T) {
	r, _ := newTestRegistry(t, testConfig(), blockingOpener)
	_, err := r.Add(createReq("cam-1", "entrance", false))
	require.NoError(t, err)

	_, err = r.LatestFrame("cam-1", false)
	assert.ErrorIs(t, err, ErrNoFrame)
}

func TestRegistryShutdownStopsEverything(t *testing.T) {
	r, _ := newTestRegistry(t, testConfig(), blockingOpener)
	for _, id := range []string{"cam-1", "cam-2", "cam-3"} {
		_, err := r.Add(createReq(id, id, true))
		require.NoError(t, err)
	}
	require.Equal(t, 3, r.RunningWorkers())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Shutdown(ctx))
	assert.Zero(t, r.RunningWorkers())
}
