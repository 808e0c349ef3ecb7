package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/model"
)

// ReadingRepository handles the append-only per-user time series of sensor
// readings.
type ReadingRepository struct {
	db *sql.DB
}

// NewReadingRepository creates a new ReadingRepository.
func NewReadingRepository(db *sql.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

const readingColumns = `id, user_id, iop, blue_light, screen_time, blink_rate, device_id, recorded_at, recorded_epoch`

// Insert appends a reading to the user's partition. The id and both
// timestamp forms are assigned here from the server clock (UTC) and set on
// the passed struct.
func (r *ReadingRepository) Insert(ctx context.Context, reading *model.Reading) error {
	now := time.Now().UTC()
	reading.ID = uuid.NewString()
	reading.RecordedAt = now
	reading.RecordedEpoch = now.Unix()

	query := `INSERT INTO readings (` + readingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		reading.ID, reading.UserID,
		reading.IOP, reading.BlueLight, reading.ScreenTime, reading.BlinkRate,
		reading.DeviceID, reading.RecordedAt, reading.RecordedEpoch,
	)
	return err
}

// Latest returns up to limit most-recent readings for the user, ordered
// ascending by recorded time (oldest of the window first, newest last).
func (r *ReadingRepository) Latest(ctx context.Context, userID string, limit int) ([]model.Reading, error) {
	query := `SELECT ` + readingColumns + ` FROM readings
		WHERE user_id = ? ORDER BY recorded_epoch DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings, err := scanReadings(rows)
	if err != nil {
		return nil, err
	}

	// The window is selected newest-first; callers get it oldest-first.
	for i, j := 0, len(readings)-1; i < j; i, j = i+1, j-1 {
		readings[i], readings[j] = readings[j], readings[i]
	}

	return readings, nil
}

// Range returns all readings for the user with recorded time in
// [startEpoch, endEpoch] inclusive, ordered descending (newest first).
func (r *ReadingRepository) Range(ctx context.Context, userID string, startEpoch, endEpoch int64) ([]model.Reading, error) {
	query := `SELECT ` + readingColumns + ` FROM readings
		WHERE user_id = ? AND recorded_epoch BETWEEN ? AND ? ORDER BY recorded_epoch DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, startEpoch, endEpoch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReadings(rows)
}

func scanReadings(rows *sql.Rows) ([]model.Reading, error) {
	var readings []model.Reading
	for rows.Next() {
		var reading model.Reading
		var iop, blue, screen, blink sql.NullFloat64
		if err := rows.Scan(
			&reading.ID, &reading.UserID,
			&iop, &blue, &screen, &blink,
			&reading.DeviceID, &reading.RecordedAt, &reading.RecordedEpoch,
		); err != nil {
			return nil, err
		}
		reading.IOP = nullableFloat(iop)
		reading.BlueLight = nullableFloat(blue)
		reading.ScreenTime = nullableFloat(screen)
		reading.BlinkRate = nullableFloat(blink)
		readings = append(readings, reading)
	}

	return readings, rows.Err()
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
