// Package sensor stores and ingests device sensor readings.
//
// SQLite is the source of truth; every accepted reading is persisted
// there first and optionally mirrored to InfluxDB for dashboarding. Two
// paths feed the store: the HTTP API (authenticated, ownership-checked
// upstream) and the MQTT ingestor, which trusts the broker's device
// credentials and drops readings for unregistered devices.
package sensor
