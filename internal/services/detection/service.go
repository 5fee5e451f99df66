// Package detection runs the person detector that feeds the per-camera
// trackers. The production implementation wraps an OpenCV DNN; a noop
// variant stands in when no model is configured.
package detection

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"crossline-worker-go/internal/config"
	"crossline-worker-go/internal/geometry"
	"crossline-worker-go/internal/models"
)

// ErrBadFrame is returned for frames whose buffer does not match the
// declared dimensions.
var ErrBadFrame = errors.New("frame buffer does not match dimensions")

// Detector produces person detections for a frame. Implementations must be
// safe for concurrent use by multiple camera workers.
type Detector interface {
	Detect(ctx context.Context, frame *models.Frame) ([]models.Detection, error)
	Close() error
}

// NewFromConfig builds the configured detector. With detection disabled it
// returns a noop detector so camera workers keep running (tracking simply
// sees zero detections).
func NewFromConfig(cfg *config.Config) (Detector, error) {
	if !cfg.DetectorEnabled {
		log.Warn().Msg("Person detection disabled, workers will see no detections")
		return &noopDetector{}, nil
	}
	return newDNNDetector(cfg)
}

// dnnDetector wraps an SSD-style OpenCV network. gocv.Net is not
// goroutine-safe, so the forward pass is serialized across cameras.
type dnnDetector struct {
	mu         sync.Mutex
	net        gocv.Net
	confidence float64
	classID    int
	inputSize  int
}

func newDNNDetector(cfg *config.Config) (*dnnDetector, error) {
	for _, path := range []string{cfg.DetectorModelPath, cfg.DetectorConfigPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("detector model file missing: %w", err)
		}
	}

	net := gocv.ReadNet(cfg.DetectorModelPath, cfg.DetectorConfigPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load detector model from %s", cfg.DetectorModelPath)
	}

	log.Info().
		Str("model", cfg.DetectorModelPath).
		Float64("confidence", cfg.DetectorConfidence).
		Int("input_size", cfg.DetectorInputSize).
		Msg("Person detector initialized")

	return &dnnDetector{
		net:        net,
		confidence: cfg.DetectorConfidence,
		classID:    cfg.PersonClassID,
		inputSize:  cfg.DetectorInputSize,
	}, nil
}

func (d *dnnDetector) Detect(ctx context.Context, frame *models.Frame) ([]models.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(frame.Data) != frame.Width*frame.Height*3 {
		return nil, ErrBadFrame
	}

	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap frame buffer: %w", err)
	}
	defer mat.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	blob := gocv.BlobFromImage(
		mat,
		1.0/127.5,
		image.Pt(d.inputSize, d.inputSize),
		gocv.NewScalar(127.5, 127.5, 127.5, 0),
		true,  // swap BGR to RGB
		false, // no crop
	)
	defer blob.Close()

	d.net.SetInput(blob, "")
	prob := d.net.Forward("")
	defer prob.Close()

	// SSD output rows: [image_id, class_id, confidence, left, top, right, bottom]
	// with box coordinates normalized to [0,1].
	out := prob.Reshape(1, prob.Total()/7)
	defer out.Close()

	var detections []models.Detection
	for i := 0; i < out.Rows(); i++ {
		if int(out.GetFloatAt(i, 1)) != d.classID {
			continue
		}
		conf := float64(out.GetFloatAt(i, 2))
		if conf < d.confidence {
			continue
		}

		x1 := clamp(float64(out.GetFloatAt(i, 3)), 0, 1) * float64(frame.Width)
		y1 := clamp(float64(out.GetFloatAt(i, 4)), 0, 1) * float64(frame.Height)
		x2 := clamp(float64(out.GetFloatAt(i, 5)), 0, 1) * float64(frame.Width)
		y2 := clamp(float64(out.GetFloatAt(i, 6)), 0, 1) * float64(frame.Height)
		if x2 <= x1 || y2 <= y1 {
			continue
		}

		detections = append(detections, models.Detection{
			Box:        geometry.Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1},
			Confidence: conf,
		})
	}
	return detections, nil
}

func (d *dnnDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}

type noopDetector struct{}

func (noopDetector) Detect(context.Context, *models.Frame) ([]models.Detection, error) {
	return nil, nil
}

func (noopDetector) Close() error { return nil }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
