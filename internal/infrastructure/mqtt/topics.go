package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for Sentra MQTT traffic.
//
// Device topics use the scheme: sentra/devices/{device_id}/{channel}
const (
	// TopicPrefix is the base for all Sentra topics.
	TopicPrefix = "sentra"

	// TopicPrefixDevices is the base for per-device topics.
	TopicPrefixDevices = "sentra/devices"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "sentra/system"
)

// Topics provides builders for Sentra MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// DeviceReadings returns the topic a device publishes its readings to.
//
// Example: sentra/devices/dev-a1b2c3d4/readings
func (Topics) DeviceReadings(deviceID string) string {
	return fmt.Sprintf("%s/%s/readings", TopicPrefixDevices, deviceID)
}

// AllDeviceReadings returns a pattern matching every device's readings.
//
// Pattern: sentra/devices/+/readings
func (Topics) AllDeviceReadings() string {
	return fmt.Sprintf("%s/+/readings", TopicPrefixDevices)
}

// SystemStatus returns the system status topic used for LWT and
// online/offline announcements.
//
// Example: sentra/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// ParseDeviceReadings extracts the device ID from a readings topic.
// ok is false when the topic is not of the form
// sentra/devices/{device_id}/readings.
func ParseDeviceReadings(topic string) (deviceID string, ok bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != TopicPrefix || parts[1] != "devices" || parts[3] != "readings" {
		return "", false
	}
	if parts[2] == "" || parts[2] == "+" || parts[2] == "#" {
		return "", false
	}
	return parts[2], true
}
