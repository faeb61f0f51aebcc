package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteReading mirrors a single sensor reading to InfluxDB.
//
// The write is non-blocking; points are batched and sent asynchronously.
// Tags are low-cardinality (device, metric, unit); the value is the only
// field.
//
// Example:
//
//	client.WriteReading("dev-a1b2c3d4", "temperature", "celsius", 21.5, reading.RecordedAt)
func (c *Client) WriteReading(deviceID, metric, unit string, value float64, at time.Time) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{
		"device_id": deviceID,
		"metric":    metric,
	}
	if unit != "" {
		tags["unit"] = unit
	}

	point := write.NewPoint(
		"sensor_readings",
		tags,
		map[string]interface{}{"value": value},
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
// Used for operational metrics that don't fit the reading shape.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}
