package models

import (
	"time"

	"crossline-worker-go/internal/geometry"
)

// CameraStatus represents the camera operational status.
type CameraStatus string

const (
	CameraStatusIdle    CameraStatus = "idle"
	CameraStatusRunning CameraStatus = "running"
	CameraStatusError   CameraStatus = "error"
)

// String returns the string representation of CameraStatus.
func (cs CameraStatus) String() string {
	return string(cs)
}

// IsValid checks if the camera status is valid.
func (cs CameraStatus) IsValid() bool {
	switch cs {
	case CameraStatusIdle, CameraStatusRunning, CameraStatusError:
		return true
	default:
		return false
	}
}

// Line is a counting segment defined by two points in normalized [0,1]
// frame coordinates. Crossing it from side A to side B counts as "out",
// the other way as "in"; the sides are fixed by the point order.
type Line struct {
	A geometry.Point `json:"a"`
	B geometry.Point `json:"b"`
}

// Camera is the registry-owned camera entity. Workers only ever see
// read-only snapshots of it, taken once per processing cycle.
type Camera struct {
	ID        string       `json:"camera_id"`
	Name      string       `json:"name"`
	Source    string       `json:"source"`
	Enabled   bool         `json:"enabled"`
	Line      *Line        `json:"line,omitempty"`
	Status    CameraStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

// CameraCreateRequest is the POST /cameras body. CameraID is optional;
// a UUID is generated when omitted.
type CameraCreateRequest struct {
	CameraID string `json:"camera_id"`
	Name     string `json:"name" binding:"required"`
	Source   string `json:"source" binding:"required"`
	Enabled  *bool  `json:"enabled,omitempty"`
	Line     *Line  `json:"line,omitempty"`
}

// CameraUpdateRequest is the PUT /cameras/:id body. Nil fields are left
// unchanged. Line and Enabled changes take effect on the worker's next
// cycle, not synchronously.
type CameraUpdateRequest struct {
	Name    *string `json:"name,omitempty"`
	Source  *string `json:"source,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
	Line    *Line   `json:"line,omitempty"`
}

// SetLineRequest is the PUT /cameras/:id/line body.
type SetLineRequest struct {
	A geometry.Point `json:"a"`
	B geometry.Point `json:"b"`
}
