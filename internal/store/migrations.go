package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Settings table - interaction tunables as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Recordings table - one row per captured landmark session
		`CREATE TABLE IF NOT EXISTS recordings (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			frames INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Recording frames table - landmark frames in capture order
		`CREATE TABLE IF NOT EXISTS recording_frames (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recording_id TEXT NOT NULL REFERENCES recordings(id) ON DELETE CASCADE,
			sequence INTEGER NOT NULL,
			offset_ms INTEGER NOT NULL,
			data TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_recording_frames_recording_id ON recording_frames(recording_id, sequence)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
