package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crossline-worker-go/internal/services/camera"
	"crossline-worker-go/internal/services/messaging"
)

type HealthHandler struct {
	WorkerID  string
	Version   string
	registry  *camera.Registry
	messaging *messaging.Service
}

func NewHealthHandler(workerID, version string, registry *camera.Registry, msg *messaging.Service) *HealthHandler {
	return &HealthHandler{WorkerID: workerID, Version: version, registry: registry, messaging: msg}
}

type HealthResponse struct {
	Status         string `json:"status" example:"healthy"`
	WorkerID       string `json:"worker_id" example:"worker-1"`
	RunningWorkers int    `json:"running_workers" example:"2"`
	NatsConnected  bool   `json:"nats_connected" example:"false"`
}

type WorkerInfoResponse struct {
	WorkerID     string   `json:"worker_id" example:"worker-1"`
	Status       string   `json:"status" example:"running"`
	Version      string   `json:"version" example:"1.0.0"`
	Capabilities []string `json:"capabilities"`
}

// @Summary Health check
// @Description Check if the worker is healthy and responsive
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:         "healthy",
		WorkerID:       h.WorkerID,
		RunningWorkers: h.registry.RunningWorkers(),
		NatsConnected:  h.messaging.IsConnected(),
	})
}

// @Summary Worker information
// @Description Get basic worker information and capabilities
// @Tags health
// @Produce json
// @Success 200 {object} WorkerInfoResponse
// @Router / [get]
func (h *HealthHandler) WorkerInfo(c *gin.Context) {
	c.JSON(http.StatusOK, WorkerInfoResponse{
		WorkerID: h.WorkerID,
		Status:   "running",
		Version:  h.Version,
		Capabilities: []string{
			"person_tracking",
			"line_crossing_counting",
			"frame_annotation",
		},
	})
}
