package sensor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// List limits. Callers asking for more than maxListLimit are clamped, not
// rejected.
const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Repository defines the interface for reading persistence.
type Repository interface {
	Record(ctx context.Context, reading *Reading) error
	RecordBatch(ctx context.Context, readings []Reading) error
	// ListByDevice returns readings newest-first. limit <= 0 selects the
	// default page size.
	ListByDevice(ctx context.Context, deviceID string, limit int) ([]Reading, error)
	Latest(ctx context.Context, deviceID, metric string) (*Reading, error)
	Count(ctx context.Context) (int, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed readings repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const readingColumns = "id, device_id, metric, value, unit, recorded_at"

// Record inserts a single reading. RecordedAt defaults to now when zero;
// the generated row ID is written back to the reading.
func (r *SQLiteRepository) Record(ctx context.Context, reading *Reading) error {
	if err := reading.Validate(); err != nil {
		return err
	}
	if reading.RecordedAt.IsZero() {
		reading.RecordedAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO sensor_readings (device_id, metric, value, unit, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		reading.DeviceID, reading.Metric, reading.Value, reading.Unit,
		reading.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting reading: %w", err)
	}

	reading.ID, _ = result.LastInsertId() //nolint:errcheck // always succeeds on SQLite
	return nil
}

// RecordBatch inserts readings in a single transaction. All or nothing.
func (r *SQLiteRepository) RecordBatch(ctx context.Context, readings []Reading) error {
	if len(readings) == 0 {
		return nil
	}

	for i := range readings {
		if err := readings[i].Validate(); err != nil {
			return err
		}
		if readings[i].RecordedAt.IsZero() {
			readings[i].RecordedAt = time.Now().UTC()
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sensor_readings (device_id, metric, value, unit, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range readings {
		rd := &readings[i]
		if _, err := stmt.ExecContext(ctx,
			rd.DeviceID, rd.Metric, rd.Value, rd.Unit,
			rd.RecordedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("inserting reading: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing readings: %w", err)
	}
	return nil
}

// ListByDevice returns readings for a device, newest first.
func (r *SQLiteRepository) ListByDevice(ctx context.Context, deviceID string, limit int) ([]Reading, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+readingColumns+` FROM sensor_readings
		 WHERE device_id = ?
		 ORDER BY recorded_at DESC, id DESC
		 LIMIT ?`,
		deviceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	readings := []Reading{}
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		readings = append(readings, *reading)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating readings: %w", err)
	}

	return readings, nil
}

// Latest returns the most recent reading of a metric for a device, or nil
// when none exists.
func (r *SQLiteRepository) Latest(ctx context.Context, deviceID, metric string) (*Reading, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+readingColumns+` FROM sensor_readings
		 WHERE device_id = ? AND metric = ?
		 ORDER BY recorded_at DESC, id DESC
		 LIMIT 1`,
		deviceID, metric,
	)

	reading, err := scanReading(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying latest reading: %w", err)
	}
	return reading, nil
}

// Count returns the total number of stored readings.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sensor_readings").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting readings: %w", err)
	}
	return count, nil
}

// rowScanner is satisfied by both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanReading scans a single row into a Reading.
func scanReading(scanner rowScanner) (*Reading, error) {
	var rd Reading
	var recordedAt string

	err := scanner.Scan(&rd.ID, &rd.DeviceID, &rd.Metric, &rd.Value, &rd.Unit, &recordedAt)
	if err != nil {
		return nil, err
	}

	rd.RecordedAt, _ = time.Parse(time.RFC3339Nano, recordedAt) //nolint:errcheck // format is controlled

	return &rd, nil
}
