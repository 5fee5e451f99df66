package tracking

import (
	"time"

	"crossline-worker-go/internal/geometry"
	"crossline-worker-go/internal/models"
)

// LineCounter detects directional crossings of a camera's counting line by
// confirmed tracks. The line is defined in normalized [0,1] frame
// coordinates; track centroids are normalized against the frame extent
// before evaluation. Crossing from the positive (A) side to the negative
// (B) side counts as "out", the reverse as "in".
type LineCounter struct {
	cameraID string
	line     *models.Line
	epsilon  float64
}

// NewLineCounter creates a counter for one camera. A nil line disables
// evaluation entirely; tracking still proceeds, no events are emitted.
func NewLineCounter(cameraID string, line *models.Line, epsilon float64) *LineCounter {
	return &LineCounter{cameraID: cameraID, line: line, epsilon: epsilon}
}

// Line returns the currently configured counting line, or nil.
func (lc *LineCounter) Line() *models.Line {
	return lc.line
}

// SetLine swaps the counting line. Callers must reset the tracks' side
// memory (Tracker.ResetSides) in the same cycle, since remembered sides
// refer to the previous line.
func (lc *LineCounter) SetLine(line *models.Line) {
	lc.line = line
}

// Evaluate inspects the confirmed tracks of one frame and returns the
// crossing events they produced, at most one per side transition per
// track. Tracks whose centroid sits within the epsilon band around the
// line are skipped this frame and keep their remembered side.
func (lc *LineCounter) Evaluate(tracks []*Track, frameWidth, frameHeight int, at time.Time) []models.CrossingEvent {
	if lc.line == nil || frameWidth <= 0 || frameHeight <= 0 {
		return nil
	}

	var events []models.CrossingEvent
	for _, track := range tracks {
		if track.State != StateConfirmed {
			continue
		}

		centroid := geometry.Point{
			X: track.Centroid.X / float64(frameWidth),
			Y: track.Centroid.Y / float64(frameHeight),
		}

		cross := geometry.SideOfLine(lc.line.A, lc.line.B, centroid)
		if cross > -lc.epsilon && cross < lc.epsilon {
			// On the line within tolerance: no evaluation this frame.
			continue
		}

		side := SideA
		if cross < 0 {
			side = SideB
		}

		if track.lastSide == SideUnknown {
			// First evaluated frame only records the side; a crossing is
			// never inferred from absent history.
			track.lastSide = side
			continue
		}
		if track.lastSide == side {
			continue
		}

		// Side changed. Only count it if the centroid projects onto the
		// segment itself, endpoints included, not just the infinite line.
		t := geometry.ProjectionParam(lc.line.A, lc.line.B, centroid)
		if t < 0 || t > 1 {
			continue
		}

		direction := models.DirectionOut // A -> B
		if side == SideA {
			direction = models.DirectionIn // B -> A
		}

		events = append(events, models.CrossingEvent{
			CameraID:  lc.cameraID,
			TrackID:   track.ID,
			Direction: direction,
			Position:  centroid,
			Timestamp: at,
		})
		track.lastSide = side
		track.CountedTotal++
	}
	return events
}
