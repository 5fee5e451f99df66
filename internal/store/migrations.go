package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Cameras table - the persisted camera configuration. The counting
		// line is stored denormalized as four nullable coordinates; all four
		// are set or all four are NULL.
		`CREATE TABLE IF NOT EXISTS cameras (
			camera_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			source TEXT NOT NULL,
			enabled INTEGER NOT NULL DEFAULT 1,
			line_ax REAL,
			line_ay REAL,
			line_bx REAL,
			line_by REAL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Crossing events table - an append-only audit log of counted
		// crossings, kept for offline reporting.
		`CREATE TABLE IF NOT EXISTS crossing_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			camera_id TEXT NOT NULL,
			track_id INTEGER NOT NULL,
			direction TEXT NOT NULL CHECK(direction IN ('in', 'out')),
			position_x REAL NOT NULL,
			position_y REAL NOT NULL,
			occurred_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_crossing_events_camera_id ON crossing_events(camera_id)`,
		`CREATE INDEX IF NOT EXISTS idx_crossing_events_occurred_at ON crossing_events(occurred_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
