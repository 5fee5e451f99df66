package store

import (
	"database/sql"
	"errors"
	"time"

	"crossline-worker-go/internal/geometry"
	"crossline-worker-go/internal/models"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// CameraRepository provides CRUD operations for persisted cameras.
type CameraRepository struct {
	db *sql.DB
}

// Cameras returns the camera repository for this store.
func (s *Store) Cameras() *CameraRepository {
	return &CameraRepository{db: s.db}
}

// Create inserts a new camera into the database.
func (r *CameraRepository) Create(c *models.Camera) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	ax, ay, bx, by := lineColumns(c.Line)
	_, err := r.db.Exec(
		`INSERT INTO cameras (camera_id, name, source, enabled, line_ax, line_ay, line_bx, line_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Source, boolToInt(c.Enabled), ax, ay, bx, by, c.CreatedAt,
	)
	return err
}

// GetByID retrieves a camera by its id.
func (r *CameraRepository) GetByID(id string) (*models.Camera, error) {
	row := r.db.QueryRow(
		`SELECT camera_id, name, source, enabled, line_ax, line_ay, line_bx, line_by, created_at
		 FROM cameras WHERE camera_id = ?`,
		id,
	)

	c, err := scanCamera(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns all persisted cameras ordered by creation time.
func (r *CameraRepository) List() ([]*models.Camera, error) {
	rows, err := r.db.Query(
		`SELECT camera_id, name, source, enabled, line_ax, line_ay, line_bx, line_by, created_at
		 FROM cameras ORDER BY created_at, camera_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cameras []*models.Camera
	for rows.Next() {
		c, err := scanCamera(rows)
		if err != nil {
			return nil, err
		}
		cameras = append(cameras, c)
	}
	return cameras, rows.Err()
}

// Update rewrites a camera's full configuration.
func (r *CameraRepository) Update(c *models.Camera) error {
	ax, ay, bx, by := lineColumns(c.Line)
	res, err := r.db.Exec(
		`UPDATE cameras SET name = ?, source = ?, enabled = ?, line_ax = ?, line_ay = ?, line_bx = ?, line_by = ?
		 WHERE camera_id = ?`,
		c.Name, c.Source, boolToInt(c.Enabled), ax, ay, bx, by, c.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// SetEnabled flips only the enabled flag.
func (r *CameraRepository) SetEnabled(id string, enabled bool) error {
	res, err := r.db.Exec(
		`UPDATE cameras SET enabled = ? WHERE camera_id = ?`,
		boolToInt(enabled), id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// SetLine replaces the camera's counting line.
func (r *CameraRepository) SetLine(id string, line *models.Line) error {
	ax, ay, bx, by := lineColumns(line)
	res, err := r.db.Exec(
		`UPDATE cameras SET line_ax = ?, line_ay = ?, line_bx = ?, line_by = ? WHERE camera_id = ?`,
		ax, ay, bx, by, id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Delete removes a camera.
func (r *CameraRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM cameras WHERE camera_id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCamera(row rowScanner) (*models.Camera, error) {
	c := &models.Camera{}
	var enabled int
	var ax, ay, bx, by sql.NullFloat64

	err := row.Scan(&c.ID, &c.Name, &c.Source, &enabled, &ax, &ay, &bx, &by, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	c.Enabled = enabled != 0
	c.Status = models.CameraStatusIdle
	if ax.Valid && ay.Valid && bx.Valid && by.Valid {
		c.Line = &models.Line{
			A: geometry.Point{X: ax.Float64, Y: ay.Float64},
			B: geometry.Point{X: bx.Float64, Y: by.Float64},
		}
	}
	return c, nil
}

func lineColumns(line *models.Line) (ax, ay, bx, by any) {
	if line == nil {
		return nil, nil, nil, nil
	}
	return line.A.X, line.A.Y, line.B.X, line.B.Y
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
