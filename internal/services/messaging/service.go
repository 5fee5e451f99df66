// Package messaging fans crossing events out over NATS so downstream
// consumers (dashboards, alerting) see counts without polling the API.
package messaging

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"crossline-worker-go/internal/config"
	"crossline-worker-go/internal/models"
)

type Service struct {
	conn *nats.Conn
	cfg  *config.Config
}

// NewService connects to NATS. When NATS is disabled it returns a nil
// service, which all methods tolerate, so callers never branch on it.
func NewService(cfg *config.Config) (*Service, error) {
	if !cfg.NatsEnabled {
		log.Info().Msg("NATS disabled, crossing events will not be published")
		return nil, nil
	}

	opts := []nats.Option{
		nats.Name("crossline-worker"),
		nats.Timeout(cfg.NatsConnectTimeout),
		nats.ReconnectWait(cfg.NatsReconnectWait),
		nats.MaxReconnects(cfg.NatsMaxReconnects),
	}

	conn, err := nats.Connect(cfg.NatsURL, opts...)
	if err != nil {
		return nil, err
	}

	log.Info().Str("url", cfg.NatsURL).Msg("NATS connection established")

	return &Service{
		conn: conn,
		cfg:  cfg,
	}, nil
}

// PublishCrossing sends one crossing event on the configured subject,
// suffixed with the camera id so consumers can subscribe per camera.
func (s *Service) PublishCrossing(ev models.CrossingEvent) error {
	if s == nil {
		return nil
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return s.conn.Publish(s.cfg.EventsSubject+"."+ev.CameraID, payload)
}

func (s *Service) IsConnected() bool {
	return s != nil && s.conn != nil && s.conn.IsConnected()
}

func (s *Service) Shutdown(ctx context.Context) error {
	if s == nil || s.conn == nil {
		return nil
	}
	// Try graceful drain, fallback to immediate close
	if err := s.conn.Drain(); err != nil {
		log.Warn().Err(err).Msg("Failed to drain NATS connection gracefully, closing immediately")
		s.conn.Close()
	}
	return nil
}
