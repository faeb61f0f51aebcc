// Package influxdb provides the time-series mirror for sensor readings.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched non-blocking writes, and health checks. SQLite
// remains the source of truth for readings; the Influx mirror exists for
// dashboarding and long-range queries and is best-effort.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    // ErrDisabled when influxdb.enabled is false
//	}
//	defer client.Close()
//
//	client.WriteReading("dev-a1b2c3d4", "temperature", "celsius", 21.5, time.Now())
//
// # Thread Safety
//
// All methods are safe for concurrent use. Writes are batched and sent
// asynchronously; failures surface through the SetOnError callback.
package influxdb
