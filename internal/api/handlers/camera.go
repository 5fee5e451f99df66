package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"crossline-worker-go/internal/logging"
	"crossline-worker-go/internal/models"
	"crossline-worker-go/internal/services/camera"
)

type CameraHandler struct {
	registry *camera.Registry
}

func NewCameraHandler(registry *camera.Registry) *CameraHandler {
	return &CameraHandler{registry: registry}
}

// AddCamera creates a camera
// @Summary Add a camera
// @Description Register a camera and, when enabled, start its counting worker
// @Tags cameras
// @Accept json
// @Produce json
// @Param request body models.CameraCreateRequest true "Camera configuration"
// @Success 201 {object} models.Camera
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /cameras [post]
func (h *CameraHandler) AddCamera(c *gin.Context) {
	var req models.CameraCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logging.Warn(c).Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	cam, err := h.registry.Add(req)
	if err != nil {
		log.Error().Err(err).Str("camera_id", req.CameraID).Msg("Failed to add camera")
		c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, cam)
}

// ListCameras lists all cameras
// @Summary List all cameras
// @Description Get all cameras with their configuration and status
// @Tags cameras
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /cameras [get]
func (h *CameraHandler) ListCameras(c *gin.Context) {
	cameras := h.registry.List()
	c.JSON(http.StatusOK, gin.H{
		"cameras": cameras,
		"count":   len(cameras),
	})
}

// GetCamera gets one camera
// @Summary Get camera details
// @Tags cameras
// @Produce json
// @Param camera_id path string true "Camera ID"
// @Success 200 {object} models.Camera
// @Failure 404 {object} ErrorResponse
// @Router /cameras/{camera_id} [get]
func (h *CameraHandler) GetCamera(c *gin.Context) {
	cam, err := h.registry.Get(c.Param("camera_id"))
	if err != nil {
		c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, cam)
}

// UpdateCamera applies a partial update
// @Summary Update a camera
// @Description Update name, source, line or enabled flag; omitted fields are unchanged
// @Tags cameras
// @Accept json
// @Produce json
// @Param camera_id path string true "Camera ID"
// @Param request body models.CameraUpdateRequest true "Fields to update"
// @Success 200 {object} models.Camera
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /cameras/{camera_id} [put]
func (h *CameraHandler) UpdateCamera(c *gin.Context) {
	var req models.CameraUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	cam, err := h.registry.Update(c.Param("camera_id"), req)
	if err != nil {
		log.Error().Err(err).Str("camera_id", c.Param("camera_id")).Msg("Failed to update camera")
		c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, cam)
}

// RemoveCamera deletes a camera
// @Summary Remove a camera
// @Description Stop the camera's worker and delete it with its stats
// @Tags cameras
// @Produce json
// @Param camera_id path string true "Camera ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /cameras/{camera_id} [delete]
func (h *CameraHandler) RemoveCamera(c *gin.Context) {
	cameraID := c.Param("camera_id")
	if err := h.registry.Remove(cameraID); err != nil {
		c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Camera removed"})
}

// EnableCamera starts the camera's worker
// @Summary Enable a camera
// @Description Spawn a fresh counting worker; cumulative stats are preserved
// @Tags cameras
// @Produce json
// @Param camera_id path string true "Camera ID"
// @Success 200 {object} models.Camera
// @Failure 404 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /cameras/{camera_id}/enable [post]
func (h *CameraHandler) EnableCamera(c *gin.Context) {
	cam, err := h.registry.Enable(c.Param("camera_id"))
	if err != nil {
		c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, cam)
}

// DisableCamera stops the camera's worker
// @Summary Disable a camera
// @Description Stop the worker after its in-flight cycle; stats survive
// @Tags cameras
// @Produce json
// @Param camera_id path string true "Camera ID"
// @Success 200 {object} models.Camera
// @Failure 404 {object} ErrorResponse
// @Router /cameras/{camera_id}/disable [post]
func (h *CameraHandler) DisableCamera(c *gin.Context) {
	cam, err := h.registry.Disable(c.Param("camera_id"))
	if err != nil {
		c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, cam)
}

// SetLine replaces the counting line
// @Summary Set the counting line
// @Description Set the line as two points in normalized [0,1] coordinates; a running worker picks it up next cycle
// @Tags cameras
// @Accept json
// @Produce json
// @Param camera_id path string true "Camera ID"
// @Param request body models.SetLineRequest true "Line endpoints"
// @Success 200 {object} models.Camera
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /cameras/{camera_id}/line [put]
func (h *CameraHandler) SetLine(c *gin.Context) {
	var req models.SetLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	cam, err := h.registry.SetLine(c.Param("camera_id"), &models.Line{A: req.A, B: req.B})
	if err != nil {
		c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, cam)
}

// GetLatestFrame serves the most recent frame as JPEG
// @Summary Get the latest frame
// @Description Most recent completed frame; pass annotated=true for track boxes, line and counters
// @Tags cameras
// @Produce jpeg
// @Param camera_id path string true "Camera ID"
// @Param annotated query bool false "Overlay tracking annotations"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /cameras/{camera_id}/frame [get]
func (h *CameraHandler) GetLatestFrame(c *gin.Context) {
	annotated, _ := strconv.ParseBool(c.DefaultQuery("annotated", "false"))

	jpeg, err := h.registry.LatestFrame(c.Param("camera_id"), annotated)
	if err != nil {
		c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", jpeg)
}

// GetCameraStatus reports the worker lifecycle state
// @Summary Get camera worker status
// @Tags cameras
// @Produce json
// @Param camera_id path string true "Camera ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /cameras/{camera_id}/status [get]
func (h *CameraHandler) GetCameraStatus(c *gin.Context) {
	cameraID := c.Param("camera_id")
	cam, err := h.registry.Get(cameraID)
	if err != nil {
		c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
		return
	}
	state, err := h.registry.WorkerState(cameraID)
	if err != nil {
		c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"camera_id":    cam.ID,
		"status":       cam.Status,
		"enabled":      cam.Enabled,
		"worker_state": state,
	})
}
