package sensor

import (
	"context"
	"time"

	"github.com/avollmer/sentra/internal/infrastructure/logging"
)

// Mirror receives a copy of every accepted reading. Implemented by the
// influxdb client; writes are fire-and-forget.
type Mirror interface {
	WriteReading(deviceID, metric, unit string, value float64, at time.Time)
}

// Recorder persists readings and mirrors them to the time-series store.
//
// SQLite is authoritative: a reading that fails to persist is not
// mirrored, and mirror failures never fail the recording.
type Recorder struct {
	readings Repository
	mirror   Mirror
	logger   *logging.Logger
}

// NewRecorder creates a Recorder. mirror may be nil when the InfluxDB
// mirror is disabled.
func NewRecorder(readings Repository, mirror Mirror, logger *logging.Logger) *Recorder {
	return &Recorder{
		readings: readings,
		mirror:   mirror,
		logger:   logger.With("component", "sensor"),
	}
}

// Record validates and persists a single reading, then mirrors it.
func (r *Recorder) Record(ctx context.Context, reading *Reading) error {
	if err := r.readings.Record(ctx, reading); err != nil {
		return err
	}

	if r.mirror != nil {
		r.mirror.WriteReading(reading.DeviceID, reading.Metric, reading.Unit, reading.Value, reading.RecordedAt)
	}

	return nil
}

// RecordBatch persists readings in one transaction, then mirrors them.
func (r *Recorder) RecordBatch(ctx context.Context, readings []Reading) error {
	if err := r.readings.RecordBatch(ctx, readings); err != nil {
		return err
	}

	if r.mirror != nil {
		for i := range readings {
			rd := &readings[i]
			r.mirror.WriteReading(rd.DeviceID, rd.Metric, rd.Unit, rd.Value, rd.RecordedAt)
		}
	}

	return nil
}
