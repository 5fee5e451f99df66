package camera

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"crossline-worker-go/internal/config"
	"crossline-worker-go/internal/geometry"
	"crossline-worker-go/internal/logging"
	"crossline-worker-go/internal/models"
	"crossline-worker-go/internal/services/detection"
	"crossline-worker-go/internal/stats"
	"crossline-worker-go/internal/tracking"
)

// WorkerState is the lifecycle state of one camera's processing loop.
type WorkerState string

const (
	WorkerStarting WorkerState = "starting"
	WorkerRunning  WorkerState = "running"
	WorkerRetrying WorkerState = "retrying"
	WorkerStopping WorkerState = "stopping"
	WorkerStopped  WorkerState = "stopped"
)

// trackOverlay is the per-track data the annotation layer needs, copied out
// of the tracker so rendering never touches worker-owned state.
type trackOverlay struct {
	ID  int64
	Box geometry.Rect
}

// frameSnapshot is the worker's published output: the latest completed
// frame plus everything needed to annotate it. Published atomically; a new
// snapshot simply replaces the previous one, consumers never queue.
type frameSnapshot struct {
	frame     *models.Frame
	tracks    []trackOverlay
	line      *models.Line
	peopleIn  int64
	peopleOut int64
}

// Worker drives one camera end to end: frame acquisition, detection,
// tracking, line counting and stats. It owns its tracker and line counter
// exclusively; the only shared surfaces are the atomic camera snapshot
// (written by the registry) and the atomic latest-frame snapshot (read by
// the API layer).
type Worker struct {
	cfg      *config.Config
	opener   SourceOpener
	detector detection.Detector
	stats    *stats.Aggregator
	log      zerolog.Logger

	onCrossing func(models.CrossingEvent)
	onExit     func(cameraID string, err error)

	camera atomic.Pointer[models.Camera]
	state  atomic.Value // WorkerState
	latest atomic.Pointer[frameSnapshot]

	tracker *tracking.Tracker
	counter *tracking.LineCounter

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func newWorker(
	cfg *config.Config,
	cam *models.Camera,
	opener SourceOpener,
	detector detection.Detector,
	aggregator *stats.Aggregator,
	onCrossing func(models.CrossingEvent),
	onExit func(cameraID string, err error),
) *Worker {
	w := &Worker{
		cfg:        cfg,
		opener:     opener,
		detector:   detector,
		stats:      aggregator,
		log:        logging.WithCamera(logging.NewServiceLogger(cfg, "camera-worker"), cam.ID),
		onCrossing: onCrossing,
		onExit:     onExit,
		tracker: tracking.NewTracker(tracking.Config{
			MinIoU:           cfg.TrackerMinIoU,
			SmoothingAlpha:   cfg.TrackerSmoothingAlpha,
			ConfirmThreshold: cfg.TrackerConfirmThreshold,
			MissThreshold:    cfg.TrackerMissThreshold,
			RemovalGrace:     cfg.TrackerRemovalGrace,
		}),
		counter: tracking.NewLineCounter(cam.ID, cam.Line, cfg.LineEpsilon),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	w.camera.Store(cam)
	w.state.Store(WorkerStarting)
	return w
}

// Start launches the worker goroutine.
func (w *Worker) Start() {
	go w.run()
}

// Stop signals the worker to finish its in-flight cycle and exit. It does
// not wait; use Done to observe completion.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.state.Store(WorkerStopping)
		close(w.stop)
	})
}

// Done is closed once the worker goroutine has fully exited and released
// its source.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// State returns the worker's current lifecycle state.
func (w *Worker) State() WorkerState {
	return w.state.Load().(WorkerState)
}

// UpdateCamera swaps the camera snapshot the worker reads at the start of
// each cycle. Line and name changes take effect on the next frame.
func (w *Worker) UpdateCamera(cam *models.Camera) {
	w.camera.Store(cam)
}

// Latest returns the most recent completed frame snapshot, or nil if no
// frame has been processed yet.
func (w *Worker) Latest() *frameSnapshot {
	return w.latest.Load()
}

func (w *Worker) run() {
	cam := w.camera.Load()
	cameraID := cam.ID

	var exitErr error
	defer func() {
		w.state.Store(WorkerStopped)
		// Confirmed-track count is live state and drops to zero with the
		// worker; cumulative counters are left untouched.
		w.stats.ApplyLiveCounts(cameraID, 0, 0, time.Now())
		close(w.done)
		if w.onExit != nil {
			w.onExit(cameraID, exitErr)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-w.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	src, err := w.openWithRetry(ctx, cam)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			exitErr = err
		}
		return
	}
	// src is rebound on reconnect and left nil when a reopen fails, so the
	// close must go through the variable, not a captured receiver.
	defer func() {
		if src != nil {
			src.Close()
		}
	}()

	w.state.Store(WorkerRunning)
	w.log.Info().Str("source", cam.Source).Msg("Camera worker running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frame, err := src.Next(ctx)
		if err != nil {
			switch {
			case errors.Is(err, context.Canceled):
				return
			case errors.Is(err, ErrEndOfStream):
				w.log.Info().Msg("Source reached end of stream")
				return
			default:
				w.log.Warn().Err(err).Msg("Frame acquisition failed, reconnecting")
				src.Close()
				src, err = w.openWithRetry(ctx, w.camera.Load())
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						exitErr = err
					}
					return
				}
				w.state.Store(WorkerRunning)
				continue
			}
		}

		w.processFrame(ctx, frame)
	}
}

// processFrame runs one full cycle: detect, track, count, publish. Never
// aborts the loop; detector failures degrade to an empty detection list.
func (w *Worker) processFrame(ctx context.Context, frame *models.Frame) {
	cam := w.camera.Load()

	// Pick up line reconfiguration. Side memory computed against the old
	// line is meaningless, so it is cleared in the same cycle.
	if !linesEqual(w.counter.Line(), cam.Line) {
		w.counter.SetLine(cam.Line)
		w.tracker.ResetSides()
		w.log.Info().Msg("Counting line reconfigured, track sides reset")
	}

	detections, err := w.detector.Detect(ctx, frame)
	if err != nil {
		w.log.Warn().Err(err).Int64("frame_id", frame.FrameID).
			Msg("Detector failed, treating frame as empty")
		detections = nil
	}

	w.tracker.Update(detections)
	confirmed := w.tracker.Confirmed()

	for _, ev := range w.counter.Evaluate(confirmed, frame.Width, frame.Height, frame.Timestamp) {
		w.stats.ApplyCrossing(ev.CameraID, ev.Direction, ev.Timestamp)
		w.log.Info().
			Int64("track_id", ev.TrackID).
			Str("direction", string(ev.Direction)).
			Msg("Line crossing counted")
		if w.onCrossing != nil {
			w.onCrossing(ev)
		}
	}

	w.stats.ApplyLiveCounts(cam.ID, len(confirmed), w.tracker.TakeNewlyConfirmed(), frame.Timestamp)

	w.publishSnapshot(frame, cam, confirmed)
}

func (w *Worker) publishSnapshot(frame *models.Frame, cam *models.Camera, confirmed []*tracking.Track) {
	overlays := make([]trackOverlay, 0, len(confirmed))
	for _, track := range confirmed {
		overlays = append(overlays, trackOverlay{ID: track.ID, Box: track.Box})
	}

	snap := &frameSnapshot{
		frame:  frame,
		tracks: overlays,
		line:   cam.Line,
	}
	if s, ok := w.stats.Snapshot(cam.ID); ok {
		snap.peopleIn = s.PeopleIn
		snap.peopleOut = s.PeopleOut
	}
	w.latest.Store(snap)
}

func (w *Worker) openWithRetry(ctx context.Context, cam *models.Camera) (FrameSource, error) {
	src := ResolveSource(cam.Source)

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fs, err := w.opener(cam.ID, src)
		if err == nil {
			return fs, nil
		}

		if attempt >= w.cfg.SourceMaxRetries {
			w.log.Error().Err(err).Int("attempts", attempt+1).
				Msg("Source retry ceiling reached")
			return nil, err
		}

		delay := w.backoffDelay(attempt)
		w.state.Store(WorkerRetrying)
		w.log.Warn().Err(err).Int("attempt", attempt+1).
			Dur("retry_in", delay).Msg("Failed to open source, backing off")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// backoffDelay returns the jittered exponential backoff for the given
// attempt, clamped to the configured min/max.
func (w *Worker) backoffDelay(attempt int) time.Duration {
	delay := time.Duration(math.Pow(2, float64(attempt))) * w.cfg.SourceBackoffMin
	if delay < w.cfg.SourceBackoffMin || delay <= 0 {
		delay = w.cfg.SourceBackoffMin
	}
	if delay > w.cfg.SourceBackoffMax {
		delay = w.cfg.SourceBackoffMax
	}

	jitter := time.Duration(float64(delay) * 0.2 * (rand.Float64()*2 - 1))
	return delay + jitter
}

func linesEqual(a, b *models.Line) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
