package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"crossline-worker-go/internal/services/camera"
	"crossline-worker-go/internal/stats"
	"crossline-worker-go/internal/store"
)

const defaultEventLimit = 100

type StatsHandler struct {
	registry   *camera.Registry
	aggregator *stats.Aggregator
	events     *store.EventRepository
}

func NewStatsHandler(registry *camera.Registry, aggregator *stats.Aggregator, events *store.EventRepository) *StatsHandler {
	return &StatsHandler{registry: registry, aggregator: aggregator, events: events}
}

// GetAllStats returns counters for every camera
// @Summary Get stats for all cameras
// @Description People-in/out counters, live count and lifetime tracked total per camera
// @Tags stats
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /stats [get]
func (h *StatsHandler) GetAllStats(c *gin.Context) {
	all := h.aggregator.SnapshotAll()
	c.JSON(http.StatusOK, gin.H{
		"stats": all,
		"count": len(all),
	})
}

// GetStats returns one camera's counters
// @Summary Get stats for one camera
// @Tags stats
// @Produce json
// @Param camera_id path string true "Camera ID"
// @Success 200 {object} models.TrackingStats
// @Failure 404 {object} ErrorResponse
// @Router /cameras/{camera_id}/stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	s, ok := h.aggregator.Snapshot(c.Param("camera_id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: camera.ErrNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, s)
}

// GetEvents returns the camera's recent crossing events
// @Summary Get recent crossing events
// @Description Most recent counted crossings, newest first
// @Tags stats
// @Produce json
// @Param camera_id path string true "Camera ID"
// @Param limit query int false "Maximum events to return" default(100)
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /cameras/{camera_id}/events [get]
func (h *StatsHandler) GetEvents(c *gin.Context) {
	cameraID := c.Param("camera_id")
	if _, err := h.registry.Get(cameraID); err != nil {
		c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultEventLimit)))
	if err != nil || limit <= 0 {
		limit = defaultEventLimit
	}

	events, err := h.events.ListByCamera(cameraID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"camera_id": cameraID,
		"events":    events,
		"count":     len(events),
	})
}
