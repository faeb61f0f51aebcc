package device

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		device  Device
		wantErr error
	}{
		{"valid", Device{Name: "Thermostat", Kind: KindThermostat}, nil},
		{"valid with location", Device{Name: "Meter", Kind: KindPowerMeter, Location: "garage"}, nil},
		{"empty name", Device{Name: "", Kind: KindGeneric}, ErrInvalidName},
		{"whitespace name", Device{Name: "   ", Kind: KindGeneric}, ErrInvalidName},
		{"name too long", Device{Name: strings.Repeat("x", maxNameLength+1), Kind: KindGeneric}, ErrInvalidName},
		{"unknown kind", Device{Name: "d", Kind: "toaster"}, ErrInvalidKind},
		{"empty kind", Device{Name: "d", Kind: ""}, ErrInvalidKind},
		{"location too long", Device{Name: "d", Kind: KindGeneric, Location: strings.Repeat("x", maxLocationLength+1)}, ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.device.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestKind_DefaultMetric(t *testing.T) {
	tests := []struct {
		kind       Kind
		wantMetric string
		wantUnit   string
	}{
		{KindThermostat, "temperature", "celsius"},
		{KindHumidity, "humidity", "percent"},
		{KindPowerMeter, "power", "watts"},
		{KindAirQuality, "co2", "ppm"},
		{KindGeneric, "value", ""},
	}

	for _, tt := range tests {
		metric, unit := tt.kind.DefaultMetric()
		if metric != tt.wantMetric || unit != tt.wantUnit {
			t.Errorf("%s.DefaultMetric() = %q, %q, want %q, %q",
				tt.kind, metric, unit, tt.wantMetric, tt.wantUnit)
		}
	}
}
