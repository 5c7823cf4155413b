// Package device models attached devices and parses bridge discovery output.
package device

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPlatform is returned when a platform name is not recognized.
var ErrUnknownPlatform = errors.New("unknown device platform")

// Platform identifies the toolchain family a device is driven through.
type Platform string

// Supported platforms.
const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

// ParsePlatform converts a user-supplied name to a Platform.
func ParsePlatform(name string) (Platform, error) {
	switch strings.ToLower(name) {
	case "android":
		return PlatformAndroid, nil
	case "ios":
		return PlatformIOS, nil
	default:
		return "", fmt.Errorf("%w: %s (valid: android, ios)", ErrUnknownPlatform, name)
	}
}

// Device is one attached physical or virtual device.
type Device struct {
	Identifier string   // Opaque serial/UDID
	Platform   Platform // Toolchain family
	State      string   // Bridge-reported state (e.g., "device", "offline"); empty if unknown
}

// Online reports whether the bridge considers the device usable.
func (d Device) Online() bool {
	return d.State == "" || d.State == "device"
}

// ParseADBDevices turns the lines returned by `adb devices` (header and
// blank lines already removed) into Devices. Lines without a state column
// are kept with an empty state.
func ParseADBDevices(lines []string) []Device {
	devices := make([]Device, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		d := Device{Identifier: fields[0], Platform: PlatformAndroid}
		if len(fields) > 1 {
			d.State = fields[1]
		}
		devices = append(devices, d)
	}
	return devices
}
