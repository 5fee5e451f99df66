package camera

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"crossline-worker-go/internal/config"
	"crossline-worker-go/internal/models"
	"crossline-worker-go/internal/services/detection"
	"crossline-worker-go/internal/services/messaging"
	"crossline-worker-go/internal/stats"
	"crossline-worker-go/internal/store"
)

var (
	// ErrDuplicateCamera is returned when adding a camera whose id exists.
	ErrDuplicateCamera = errors.New("camera already exists")
	// ErrNotFound is returned for operations on unknown camera ids.
	ErrNotFound = errors.New("camera not found")
	// ErrResourceExhausted is returned when activating a camera would exceed
	// the configured worker ceiling.
	ErrResourceExhausted = errors.New("maximum concurrent cameras reached")
	// ErrInvalidLine is returned for counting lines outside normalized
	// [0,1] coordinates or with coincident endpoints.
	ErrInvalidLine = errors.New("invalid counting line")
	// ErrNoFrame is returned when a camera has not produced a frame yet.
	ErrNoFrame = errors.New("no frame available")
)

// Registry owns the camera table and enforces the invariant of exactly one
// live worker per enabled, non-errored camera. All CRUD is serialized
// against worker spawn/stop for the same camera id.
type Registry struct {
	cfg       *config.Config
	opener    SourceOpener
	detector  detection.Detector
	stats     *stats.Aggregator
	messaging *messaging.Service
	cameras   *store.CameraRepository
	eventLog  *store.EventRepository

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	camera *models.Camera
	worker *Worker

	// op serializes stop-wait-respawn sequences for this camera id.
	// Without it a concurrent enable could spawn a second worker while a
	// disable is still draining the first one off the same source.
	op sync.Mutex
}

// NewRegistry wires the registry against its collaborators. The opener is
// injectable so tests can substitute a fake frame source.
func NewRegistry(
	cfg *config.Config,
	st *store.Store,
	detector detection.Detector,
	aggregator *stats.Aggregator,
	msg *messaging.Service,
	opener SourceOpener,
) *Registry {
	return &Registry{
		cfg:       cfg,
		opener:    opener,
		detector:  detector,
		stats:     aggregator,
		messaging: msg,
		cameras:   st.Cameras(),
		eventLog:  st.Events(),
		entries:   make(map[string]*entry),
	}
}

// LoadPersisted restores the camera table from storage and spawns workers
// for enabled cameras. Cameras beyond the worker ceiling stay idle.
func (r *Registry) LoadPersisted() error {
	persisted, err := r.cameras.List()
	if err != nil {
		return fmt.Errorf("failed to load cameras: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cam := range persisted {
		cam.Status = models.CameraStatusIdle
		e := &entry{camera: cam}
		r.entries[cam.ID] = e
		r.stats.Register(cam.ID, cam.Name)

		if !cam.Enabled {
			continue
		}
		if err := r.startWorkerLocked(e); err != nil {
			log.Warn().Err(err).Str("camera_id", cam.ID).
				Msg("Could not start worker for persisted camera")
		}
	}

	log.Info().Int("cameras", len(persisted)).Msg("Camera table restored from storage")
	return nil
}

// Add creates a camera, persists it and, when enabled, spawns its worker.
func (r *Registry) Add(req models.CameraCreateRequest) (*models.Camera, error) {
	if req.Line != nil {
		if err := validateLine(req.Line); err != nil {
			return nil, err
		}
	}

	cam := &models.Camera{
		ID:        req.CameraID,
		Name:      req.Name,
		Source:    req.Source,
		Enabled:   req.Enabled == nil || *req.Enabled,
		Line:      req.Line,
		Status:    models.CameraStatusIdle,
		CreatedAt: time.Now(),
	}
	if cam.ID == "" {
		cam.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[cam.ID]; exists {
		return nil, ErrDuplicateCamera
	}
	if cam.Enabled && r.runningWorkersLocked() >= r.cfg.MaxCameras {
		return nil, ErrResourceExhausted
	}

	if err := r.cameras.Create(cam); err != nil {
		return nil, fmt.Errorf("failed to persist camera: %w", err)
	}

	e := &entry{camera: cam}
	r.entries[cam.ID] = e
	r.stats.Register(cam.ID, cam.Name)

	if cam.Enabled {
		if err := r.startWorkerLocked(e); err != nil {
			return nil, err
		}
	}

	log.Info().Str("camera_id", cam.ID).Str("name", cam.Name).Bool("enabled", cam.Enabled).
		Msg("Camera added")
	return snapshotOf(cam), nil
}

// Get returns a copy of one camera.
func (r *Registry) Get(id string) (*models.Camera, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshotOf(e.camera), nil
}

// List returns copies of all cameras ordered by creation time.
func (r *Registry) List() []*models.Camera {
	r.mu.Lock()
	defer r.mu.Unlock()

	cameras := make([]*models.Camera, 0, len(r.entries))
	for _, e := range r.entries {
		cameras = append(cameras, snapshotOf(e.camera))
	}
	sort.Slice(cameras, func(i, j int) bool {
		if !cameras[i].CreatedAt.Equal(cameras[j].CreatedAt) {
			return cameras[i].CreatedAt.Before(cameras[j].CreatedAt)
		}
		return cameras[i].ID < cameras[j].ID
	})
	return cameras
}

// Update applies a partial update. Name and line changes reach a running
// worker on its next cycle; a source change restarts the worker; an
// enabled change starts or stops it.
func (r *Registry) Update(id string, req models.CameraUpdateRequest) (*models.Camera, error) {
	if req.Line != nil {
		if err := validateLine(req.Line); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}

	// Hold the entry's operation lock across detach, drain and respawn so
	// two concurrent updates can never overlap workers on one source. The
	// lock order is always op before mu; the worker's exit callback only
	// takes mu, so waiting on Done below cannot deadlock.
	e.op.Lock()
	defer e.op.Unlock()

	r.mu.Lock()
	if r.entries[id] != e {
		r.mu.Unlock()
		return nil, ErrNotFound
	}

	cam := e.camera
	sourceChanged := req.Source != nil && *req.Source != cam.Source
	if req.Name != nil {
		cam.Name = *req.Name
	}
	if req.Source != nil {
		cam.Source = *req.Source
	}
	if req.Line != nil {
		cam.Line = req.Line
	}
	if req.Enabled != nil {
		cam.Enabled = *req.Enabled
	}

	if err := r.cameras.Update(cam); err != nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("failed to persist camera: %w", err)
	}
	r.stats.Register(cam.ID, cam.Name)

	wantWorker := cam.Enabled
	restart := sourceChanged && e.worker != nil
	old := e.worker
	if (!wantWorker || restart) && old != nil {
		r.detachWorkerLocked(e, models.CameraStatusIdle)
	}
	if e.worker != nil {
		e.worker.UpdateCamera(snapshotOf(cam))
	}
	result := snapshotOf(cam)
	r.mu.Unlock()

	if (!wantWorker || restart) && old != nil {
		old.Stop()
		<-old.Done()
	}

	if wantWorker {
		r.mu.Lock()
		if e.worker == nil {
			if err := r.startWorkerLocked(e); err != nil {
				// Activation rejected: roll the enabled flag back so the
				// table never claims a worker that was never spawned.
				e.camera.Enabled = false
				if perr := r.cameras.SetEnabled(id, false); perr != nil {
					log.Warn().Err(perr).Str("camera_id", id).Msg("Failed to persist camera state")
				}
				r.mu.Unlock()
				return nil, err
			}
			result = snapshotOf(e.camera)
		}
		r.mu.Unlock()
	}

	return result, nil
}

// Remove stops the camera's worker, deletes it from storage and drops its
// stats.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	e.op.Lock()
	defer e.op.Unlock()

	r.mu.Lock()
	if r.entries[id] != e {
		r.mu.Unlock()
		return ErrNotFound
	}

	if err := r.cameras.Delete(id); err != nil && !errors.Is(err, store.ErrNotFound) {
		r.mu.Unlock()
		return fmt.Errorf("failed to delete camera: %w", err)
	}

	worker := e.worker
	e.worker = nil
	delete(r.entries, id)
	r.stats.Drop(id)
	r.mu.Unlock()

	if worker != nil {
		worker.Stop()
		<-worker.Done()
	}

	log.Info().Str("camera_id", id).Msg("Camera removed")
	return nil
}

// Enable spawns a fresh worker for an idle camera. The worker starts with
// a clean track set; cumulative stats are preserved.
func (r *Registry) Enable(id string) (*models.Camera, error) {
	enabled := true
	return r.Update(id, models.CameraUpdateRequest{Enabled: &enabled})
}

// Disable signals the camera's worker to stop after its in-flight cycle.
func (r *Registry) Disable(id string) (*models.Camera, error) {
	enabled := false
	return r.Update(id, models.CameraUpdateRequest{Enabled: &enabled})
}

// SetLine replaces the camera's counting line. A running worker picks it
// up on its next cycle and resets the tracks' side memory.
func (r *Registry) SetLine(id string, line *models.Line) (*models.Camera, error) {
	return r.Update(id, models.CameraUpdateRequest{Line: line})
}

// LatestFrame returns the camera's most recent completed frame as JPEG,
// optionally annotated with track boxes, the counting line and counters.
func (r *Registry) LatestFrame(id string, annotated bool) ([]byte, error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return nil, ErrNotFound
	}
	worker := e.worker
	r.mu.Unlock()

	if worker == nil {
		return nil, ErrNoFrame
	}
	snap := worker.Latest()
	if snap == nil {
		return nil, ErrNoFrame
	}

	if annotated {
		return AnnotateJPEG(snap, r.cfg.JPEGQuality)
	}
	return EncodeJPEG(snap.frame, r.cfg.JPEGQuality)
}

// WorkerState reports the lifecycle state of a camera's worker, or
// WorkerStopped when none is live.
func (r *Registry) WorkerState(id string) (WorkerState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return "", ErrNotFound
	}
	if e.worker == nil {
		return WorkerStopped, nil
	}
	return e.worker.State(), nil
}

// RunningWorkers returns the number of live workers.
func (r *Registry) RunningWorkers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runningWorkersLocked()
}

// Shutdown stops every worker and waits for them up to the context
// deadline.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	workers := make([]*Worker, 0, len(r.entries))
	for _, e := range r.entries {
		if e.worker != nil {
			workers = append(workers, e.worker)
			r.detachWorkerLocked(e, models.CameraStatusIdle)
		}
	}
	r.mu.Unlock()

	for _, w := range workers {
		w.Stop()
	}
	for _, w := range workers {
		select {
		case <-w.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	log.Info().Int("workers", len(workers)).Msg("All camera workers stopped")
	return nil
}

func (r *Registry) startWorkerLocked(e *entry) error {
	if e.worker != nil {
		return nil
	}
	if r.runningWorkersLocked() >= r.cfg.MaxCameras {
		return ErrResourceExhausted
	}

	e.camera.Status = models.CameraStatusRunning
	w := newWorker(
		r.cfg,
		snapshotOf(e.camera),
		r.opener,
		r.detector,
		r.stats,
		r.handleCrossing,
		r.handleWorkerExit,
	)
	e.worker = w
	w.Start()
	return nil
}

// detachWorkerLocked disassociates the worker from its entry so a late
// exit callback cannot clobber status set by a newer operation.
func (r *Registry) detachWorkerLocked(e *entry, status models.CameraStatus) {
	e.worker = nil
	e.camera.Status = status
}

func (r *Registry) runningWorkersLocked() int {
	n := 0
	for _, e := range r.entries {
		if e.worker != nil {
			n++
		}
	}
	return n
}

// handleCrossing fans a counted crossing out to the event log and NATS.
// Both are best-effort; failures never reach the worker loop.
func (r *Registry) handleCrossing(ev models.CrossingEvent) {
	if err := r.eventLog.Append(ev); err != nil {
		log.Warn().Err(err).Str("camera_id", ev.CameraID).Msg("Failed to persist crossing event")
	}
	if err := r.messaging.PublishCrossing(ev); err != nil {
		log.Warn().Err(err).Str("camera_id", ev.CameraID).Msg("Failed to publish crossing event")
	}
}

// handleWorkerExit runs on the worker goroutine after the loop has fully
// stopped. A nil error is a clean stop (disable, end of stream); a non-nil
// error means the retry ceiling was exhausted.
func (r *Registry) handleWorkerExit(cameraID string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[cameraID]
	if !ok || e.worker == nil || e.worker.State() != WorkerStopped {
		return
	}

	e.worker = nil
	if err != nil {
		e.camera.Status = models.CameraStatusError
		log.Error().Err(err).Str("camera_id", cameraID).
			Msg("Camera worker failed, re-enable to restart")
		return
	}
	e.camera.Status = models.CameraStatusIdle
	e.camera.Enabled = false
	if perr := r.cameras.SetEnabled(cameraID, false); perr != nil {
		log.Warn().Err(perr).Str("camera_id", cameraID).Msg("Failed to persist camera state")
	}
}

func validateLine(line *models.Line) error {
	for _, p := range []struct{ x, y float64 }{{line.A.X, line.A.Y}, {line.B.X, line.B.Y}} {
		if p.x < 0 || p.x > 1 || p.y < 0 || p.y > 1 {
			return fmt.Errorf("%w: coordinates must be normalized to [0,1]", ErrInvalidLine)
		}
	}
	if line.A == line.B {
		return fmt.Errorf("%w: endpoints must be distinct", ErrInvalidLine)
	}
	return nil
}

func snapshotOf(cam *models.Camera) *models.Camera {
	c := *cam
	return &c
}
