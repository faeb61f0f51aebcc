// Package mqtt provides MQTT connectivity for sensor-reading ingest.
//
// It wraps paho.mqtt.golang with connection management, tracked
// subscriptions that survive reconnects, and panic-safe message handlers.
// Devices publish readings to sentra/devices/{device_id}/readings; the
// ingest consumer subscribes with a single-level wildcard and routes
// payloads to the sensor layer.
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// Subscriptions are automatically restored on reconnection.
package mqtt
