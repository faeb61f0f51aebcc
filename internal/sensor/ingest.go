package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avollmer/sentra/internal/infrastructure/logging"
	"github.com/avollmer/sentra/internal/infrastructure/mqtt"
)

// DeviceResolver reports whether a device is registered. Satisfied by the
// device repository.
type DeviceResolver interface {
	OwnerOf(ctx context.Context, deviceID string) (ownerID string, ok bool, err error)
}

// readingPayload is the JSON shape devices publish to
// sentra/devices/{device_id}/readings.
type readingPayload struct {
	Metric     string  `json:"metric"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit,omitempty"`
	RecordedAt string  `json:"recorded_at,omitempty"`
}

// Ingestor consumes readings published by devices over MQTT.
//
// The broker authenticates devices; the ingestor's own check is that the
// device is registered. Readings for unknown devices are dropped and
// logged, never stored.
type Ingestor struct {
	recorder *Recorder
	devices  DeviceResolver
	qos      byte
	logger   *logging.Logger
}

// NewIngestor creates an Ingestor over the recorder and device registry.
func NewIngestor(recorder *Recorder, devices DeviceResolver, qos byte, logger *logging.Logger) *Ingestor {
	return &Ingestor{
		recorder: recorder,
		devices:  devices,
		qos:      qos,
		logger:   logger.With("component", "ingest"),
	}
}

// Start subscribes to the device readings topic on the given client.
// Subscriptions survive reconnects; Start is called once at boot.
func (i *Ingestor) Start(client *mqtt.Client) error {
	topic := mqtt.Topics{}.AllDeviceReadings()
	if err := client.Subscribe(topic, i.qos, i.handleMessage); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}

	i.logger.Info("reading ingest started", "topic", topic)
	return nil
}

// handleMessage processes one published reading. Returned errors are
// logged by the MQTT client wrapper.
func (i *Ingestor) handleMessage(topic string, payload []byte) error {
	deviceID, ok := mqtt.ParseDeviceReadings(topic)
	if !ok {
		return fmt.Errorf("unexpected topic %q", topic)
	}

	var p readingPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decoding reading payload: %w", err)
	}

	ctx := context.Background()

	_, registered, err := i.devices.OwnerOf(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("resolving device %s: %w", deviceID, err)
	}
	if !registered {
		i.logger.Warn("dropping reading for unregistered device", "device_id", deviceID)
		return nil
	}

	reading := Reading{
		DeviceID: deviceID,
		Metric:   p.Metric,
		Value:    p.Value,
		Unit:     p.Unit,
	}
	if p.RecordedAt != "" {
		at, err := time.Parse(time.RFC3339, p.RecordedAt)
		if err != nil {
			return fmt.Errorf("parsing recorded_at: %w", err)
		}
		reading.RecordedAt = at
	}

	if err := i.recorder.Record(ctx, &reading); err != nil {
		return fmt.Errorf("recording reading from %s: %w", deviceID, err)
	}

	i.logger.Debug("reading ingested",
		"device_id", deviceID,
		"metric", reading.Metric,
		"value", reading.Value,
	)
	return nil
}
