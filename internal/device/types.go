package device

import "time"

// Device represents a registered telemetry device.
type Device struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Kind    Kind   `json:"kind"`

	// Location is a free-form label such as "living-room" or "garage".
	Location string `json:"location,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Kind classifies what a device measures.
type Kind string

// Kind constants.
const (
	KindThermostat Kind = "thermostat"
	KindHumidity   Kind = "humidity"
	KindPowerMeter Kind = "power-meter"
	KindAirQuality Kind = "air-quality"
	KindGeneric    Kind = "generic"
)

// AllKinds returns all valid kind values.
func AllKinds() []Kind {
	return []Kind{
		KindThermostat, KindHumidity, KindPowerMeter, KindAirQuality, KindGeneric,
	}
}

// DefaultMetric returns the reading metric a kind typically reports.
// Used by the demo generator; ingest accepts any metric.
func (k Kind) DefaultMetric() (metric, unit string) {
	switch k {
	case KindThermostat:
		return "temperature", "celsius"
	case KindHumidity:
		return "humidity", "percent"
	case KindPowerMeter:
		return "power", "watts"
	case KindAirQuality:
		return "co2", "ppm"
	default:
		return "value", ""
	}
}
