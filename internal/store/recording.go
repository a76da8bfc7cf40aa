package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Recording is a captured landmark session.
type Recording struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Frames     int       `json:"frames"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecordedFrame is one landmark frame of a recording. Data holds the frame
// as JSON; OffsetMs is the time since the recording started.
type RecordedFrame struct {
	Sequence int             `json:"sequence"`
	OffsetMs int64           `json:"offset_ms"`
	Data     json.RawMessage `json:"data"`
}

// RecordingRepository provides CRUD operations for recordings.
type RecordingRepository struct {
	db *sql.DB
}

// Recordings returns the recording repository for this store.
func (s *Store) Recordings() *RecordingRepository {
	return &RecordingRepository{db: s.db}
}

// Create inserts a recording and its frames in a single transaction.
// Frames, DurationMs and CreatedAt are filled in from the frames.
func (r *RecordingRepository) Create(rec *Recording, frames []RecordedFrame) error {
	rec.Frames = len(frames)
	rec.DurationMs = 0
	if len(frames) > 0 {
		rec.DurationMs = frames[len(frames)-1].OffsetMs
	}
	rec.CreatedAt = time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO recordings (id, name, frames, duration_ms, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Frames, rec.DurationMs, rec.CreatedAt,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO recording_frames (recording_id, sequence, offset_ms, data) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, f := range frames {
		if _, err := stmt.Exec(rec.ID, i, f.OffsetMs, string(f.Data)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a recording by its ID.
func (r *RecordingRepository) GetByID(id string) (*Recording, error) {
	rec := &Recording{}
	err := r.db.QueryRow(
		`SELECT id, name, frames, duration_ms, created_at FROM recordings WHERE id = ?`,
		id,
	).Scan(&rec.ID, &rec.Name, &rec.Frames, &rec.DurationMs, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List retrieves all recordings, newest first.
func (r *RecordingRepository) List() ([]*Recording, error) {
	rows, err := r.db.Query(
		`SELECT id, name, frames, duration_ms, created_at FROM recordings ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*Recording
	for rows.Next() {
		rec := &Recording{}
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Frames, &rec.DurationMs, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recs, nil
}

// Frames returns the frames of a recording in capture order.
func (r *RecordingRepository) Frames(id string) ([]RecordedFrame, error) {
	if _, err := r.GetByID(id); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		`SELECT sequence, offset_ms, data FROM recording_frames
		 WHERE recording_id = ?
		 ORDER BY sequence`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []RecordedFrame
	for rows.Next() {
		var f RecordedFrame
		var data string
		if err := rows.Scan(&f.Sequence, &f.OffsetMs, &data); err != nil {
			return nil, err
		}
		f.Data = json.RawMessage(data)
		frames = append(frames, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return frames, nil
}

// Delete removes a recording and its frames.
func (r *RecordingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
