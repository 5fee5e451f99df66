package handlers

import (
	"errors"
	"net/http"

	"crossline-worker-go/internal/services/camera"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error" example:"camera not found"`
}

// SuccessResponse is the JSON body of operations with no payload.
type SuccessResponse struct {
	Message string `json:"message" example:"ok"`
}

// statusForError maps registry errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, camera.ErrNotFound), errors.Is(err, camera.ErrNoFrame):
		return http.StatusNotFound
	case errors.Is(err, camera.ErrDuplicateCamera):
		return http.StatusConflict
	case errors.Is(err, camera.ErrResourceExhausted):
		return http.StatusTooManyRequests
	case errors.Is(err, camera.ErrInvalidLine):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
