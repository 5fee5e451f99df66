package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"crossline-worker-go/internal/api/handlers"
	"crossline-worker-go/internal/config"
	"crossline-worker-go/internal/services"
)

type Server struct {
	config *config.Config
	router *gin.Engine
	server *http.Server

	healthHandler *handlers.HealthHandler
	cameraHandler *handlers.CameraHandler
	statsHandler  *handlers.StatsHandler
}

func NewServer(cfg *config.Config, container *services.ServiceContainer) *Server {
	gin.SetMode(gin.ReleaseMode)

	return &Server{
		config: cfg,
		router: gin.New(),
		healthHandler: handlers.NewHealthHandler(
			cfg.WorkerID, cfg.Version, container.Registry, container.Messaging),
		cameraHandler: handlers.NewCameraHandler(container.Registry),
		statsHandler: handlers.NewStatsHandler(
			container.Registry, container.Stats, container.Store.Events()),
	}
}

func (s *Server) Setup() error {
	s.setupMiddleware()
	s.setupRoutes()
	s.setupSwagger()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
	}

	return nil
}

func (s *Server) Start() error {
	log.Info().Int("port", s.config.Port).Msg("Starting API server")
	return s.server.ListenAndServe()
}

func (s *Server) Stop() error {
	log.Info().Msg("Stopping API server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}
