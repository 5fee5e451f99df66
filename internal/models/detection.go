package models

import (
	"time"

	"crossline-worker-go/internal/geometry"
)

// Detection is a single detector output for one frame: a bounding box in
// pixel coordinates plus a confidence score. Detections are ephemeral and
// never retained past the frame cycle that produced them.
type Detection struct {
	Box        geometry.Rect `json:"box"`
	Confidence float64       `json:"confidence"`
}

// Frame is a raw image captured from a camera source.
type Frame struct {
	CameraID  string
	Data      []byte // BGR24 pixel data, Width*Height*3 bytes
	Width     int
	Height    int
	FrameID   int64
	Timestamp time.Time
}

// Direction tags which way a track crossed the counting line.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// CrossingEvent is emitted when a confirmed track crosses a camera's
// counting line. Position is the track centroid in normalized coordinates
// at the frame the crossing was detected.
type CrossingEvent struct {
	CameraID  string         `json:"camera_id"`
	TrackID   int64          `json:"track_id"`
	Direction Direction      `json:"direction"`
	Position  geometry.Point `json:"position"`
	Timestamp time.Time      `json:"timestamp"`
}

// TrackingStats are the per-camera counters exposed to the API layer.
// PeopleIn and PeopleOut are cumulative and monotonic; CurrentCount is the
// number of currently confirmed tracks; TotalTracked counts distinct track
// ids that ever reached confirmed state.
type TrackingStats struct {
	CameraID     string    `json:"camera_id"`
	CameraName   string    `json:"camera_name"`
	PeopleIn     int64     `json:"people_in"`
	PeopleOut    int64     `json:"people_out"`
	CurrentCount int       `json:"current_count"`
	TotalTracked int64     `json:"total_tracked"`
	LastUpdated  time.Time `json:"last_updated"`
}
