package sensor

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/avollmer/sentra/internal/device"
)

// metricRange bounds the plausible values for a generated metric.
type metricRange struct {
	min, max float64
}

// ranges for each device kind's default metric.
var kindRanges = map[device.Kind]metricRange{
	device.KindThermostat: {16.0, 26.0},
	device.KindHumidity:   {30.0, 70.0},
	device.KindPowerMeter: {0.0, 3500.0},
	device.KindAirQuality: {400.0, 1400.0},
	device.KindGeneric:    {0.0, 1.0},
}

// Generator produces demo readings for devices that have no live feed.
// Values follow a random walk inside each kind's plausible range.
//
// One Generator serves all seed requests; rand.Rand is not safe for
// concurrent use, so the walk runs under a mutex.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a Generator. A seed of 0 selects a time-based seed.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // demo data, not crypto
}

// Readings generates count readings for a device, one per interval,
// ending at until. Readings are returned oldest first.
func (g *Generator) Readings(deviceID string, kind device.Kind, count int, until time.Time, interval time.Duration) []Reading {
	if count <= 0 {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	metric, unit := kind.DefaultMetric()
	bounds, ok := kindRanges[kind]
	if !ok {
		bounds = kindRanges[device.KindGeneric]
	}

	span := bounds.max - bounds.min
	value := bounds.min + g.rng.Float64()*span

	readings := make([]Reading, 0, count)
	start := until.Add(-time.Duration(count-1) * interval)

	for n := 0; n < count; n++ {
		// Random walk: drift by up to 5% of the range per step, clamped.
		value += (g.rng.Float64() - 0.5) * span * 0.1
		if value < bounds.min {
			value = bounds.min
		}
		if value > bounds.max {
			value = bounds.max
		}

		readings = append(readings, Reading{
			DeviceID:   deviceID,
			Metric:     metric,
			Value:      value,
			Unit:       unit,
			RecordedAt: start.Add(time.Duration(n) * interval).UTC(),
		})
	}

	return readings
}

// Seed generates and records count readings for a device, spaced one
// minute apart and ending now.
func (g *Generator) Seed(ctx context.Context, recorder *Recorder, deviceID string, kind device.Kind, count int) ([]Reading, error) {
	readings := g.Readings(deviceID, kind, count, time.Now().UTC(), time.Minute)
	if err := recorder.RecordBatch(ctx, readings); err != nil {
		return nil, err
	}
	return readings, nil
}
