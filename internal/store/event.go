package store

import (
	"database/sql"
	"time"

	"crossline-worker-go/internal/models"
)

// EventRepository appends counted crossings to the audit log.
type EventRepository struct {
	db *sql.DB
}

// Events returns the crossing-event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Append records one crossing event.
func (r *EventRepository) Append(ev models.CrossingEvent) error {
	_, err := r.db.Exec(
		`INSERT INTO crossing_events (camera_id, track_id, direction, position_x, position_y, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.CameraID, ev.TrackID, string(ev.Direction), ev.Position.X, ev.Position.Y, ev.Timestamp,
	)
	return err
}

// ListByCamera returns up to limit most recent events for a camera,
// newest first.
func (r *EventRepository) ListByCamera(cameraID string, limit int) ([]models.CrossingEvent, error) {
	rows, err := r.db.Query(
		`SELECT camera_id, track_id, direction, position_x, position_y, occurred_at
		 FROM crossing_events WHERE camera_id = ?
		 ORDER BY occurred_at DESC, id DESC LIMIT ?`,
		cameraID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.CrossingEvent
	for rows.Next() {
		var ev models.CrossingEvent
		var direction string
		var at time.Time
		if err := rows.Scan(&ev.CameraID, &ev.TrackID, &direction, &ev.Position.X, &ev.Position.Y, &at); err != nil {
			return nil, err
		}
		ev.Direction = models.Direction(direction)
		ev.Timestamp = at
		events = append(events, ev)
	}
	return events, rows.Err()
}
