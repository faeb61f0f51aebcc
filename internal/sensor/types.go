package sensor

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Reading is a single measurement reported by a device.
type Reading struct {
	ID       int64  `json:"id"`
	DeviceID string `json:"device_id"`

	// Metric names what was measured, e.g. "temperature" or "power".
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`

	// Unit is the measurement unit, e.g. "celsius". Optional.
	Unit string `json:"unit,omitempty"`

	RecordedAt time.Time `json:"recorded_at"`
}

// ErrInvalidReading indicates a reading failed validation.
var ErrInvalidReading = errors.New("invalid reading")

const maxMetricLength = 64

// Validate checks a reading before persistence. The device reference is
// checked by the caller, not here.
func (r *Reading) Validate() error {
	if r.Metric == "" {
		return fmt.Errorf("%w: metric must not be empty", ErrInvalidReading)
	}
	if len(r.Metric) > maxMetricLength {
		return fmt.Errorf("%w: metric must be at most %d characters", ErrInvalidReading, maxMetricLength)
	}
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		return fmt.Errorf("%w: value must be a finite number", ErrInvalidReading)
	}
	return nil
}
