package services

import (
	"context"

	"crossline-worker-go/internal/config"
	"crossline-worker-go/internal/logging"
	"crossline-worker-go/internal/services/camera"
	"crossline-worker-go/internal/services/detection"
	"crossline-worker-go/internal/services/messaging"
	"crossline-worker-go/internal/stats"
	"crossline-worker-go/internal/store"
)

// ServiceContainer holds all services
type ServiceContainer struct {
	Config    *config.Config
	Store     *store.Store
	Detector  detection.Detector
	Stats     *stats.Aggregator
	Messaging *messaging.Service
	Registry  *camera.Registry
}

// NewServiceContainer wires the full service graph: storage, detector,
// stats, messaging and the camera registry, then restores persisted
// cameras.
func NewServiceContainer(cfg *config.Config) (*ServiceContainer, error) {
	logger := logging.NewServiceLogger(cfg, "container")

	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("path", cfg.DatabasePath).Msg("Camera store opened")

	detector, err := detection.NewFromConfig(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	msg, err := messaging.NewService(cfg)
	if err != nil {
		detector.Close()
		st.Close()
		return nil, err
	}

	aggregator := stats.NewAggregator()
	registry := camera.NewRegistry(cfg, st, detector, aggregator, msg, camera.OpenCapture)

	if err := registry.LoadPersisted(); err != nil {
		msg.Shutdown(context.Background())
		detector.Close()
		st.Close()
		return nil, err
	}

	return &ServiceContainer{
		Config:    cfg,
		Store:     st,
		Detector:  detector,
		Stats:     aggregator,
		Messaging: msg,
		Registry:  registry,
	}, nil
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	var firstErr error

	if sc.Registry != nil {
		if err := sc.Registry.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if sc.Messaging != nil {
		if err := sc.Messaging.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if sc.Detector != nil {
		if err := sc.Detector.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if sc.Store != nil {
		if err := sc.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
