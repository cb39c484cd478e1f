// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package device negotiates instance features, ranks physical devices,
// resolves queue families and brings up a logical device through a Driver.
package device

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Opaque handles owned by the Driver that produced them.
type (
	Instance      interface{}
	Surface       interface{}
	Device        interface{}
	DebugCallback interface{}
)

// LayerRecord describes one available instance layer.
type LayerRecord struct {
	Name                  string
	Description           string
	SpecVersion           uint32
	ImplementationVersion uint32
}

// ExtensionRecord describes one available extension.
type ExtensionRecord struct {
	Name        string
	SpecVersion uint32
}

// Category classifies a physical device.
type Category int

// Physical device categories
const (
	CategoryOther Category = iota
	CategoryIntegrated
	CategoryDiscrete
	CategoryVirtual
	CategoryCPU
)

var categoryNames = [...]string{
	CategoryOther:      "other",
	CategoryIntegrated: "integrated",
	CategoryDiscrete:   "discrete",
	CategoryVirtual:    "virtual",
	CategoryCPU:        "cpu",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "category(" + strconv.Itoa(int(c)) + ")"
	}
	return categoryNames[c]
}

// MarshalText implements encoding.TextMarshaler
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Category) UnmarshalText(text []byte) error {
	for i, name := range categoryNames {
		if strings.EqualFold(name, string(text)) {
			*c = Category(i)
			return nil
		}
	}
	return errors.Newf("unknown device category %q", text)
}

// Version is an API version triple.
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

// MakeVersion packs v the way the Vulkan API does.
func MakeVersion(v Version) uint32 {
	return v.Major<<22 | v.Minor<<12 | v.Patch
}

// DecodeVersion unpacks a Vulkan packed version number.
func DecodeVersion(packed uint32) Version {
	return Version{
		Major: packed >> 22,
		Minor: (packed >> 12) & 0x3ff,
		Patch: packed & 0xfff,
	}
}

// ParseVersion parses "major.minor" or "major.minor.patch".
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, errors.Newf("malformed version %q", s)
	}
	var nums [3]uint32
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return Version{}, errors.Wrapf(err, "malformed version %q", s)
		}
		nums[i] = uint32(n)
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Less reports whether v is older than o by major, then minor.
// Patch levels are not considered.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// MarshalText implements encoding.TextMarshaler
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// DeviceDescriptor describes a physical device as enumerated by a Driver.
// Handle stays owned by the driver.
type DeviceDescriptor struct {
	Handle        interface{} `json:"-"`
	Name          string
	Category      Category
	APIVersion    Version
	DriverVersion uint32
	VendorID      uint32
	DeviceID      uint32
	Memory        uint64
}

// QueueFamilyDescriptor describes one queue family of a physical device.
type QueueFamilyDescriptor struct {
	Index      int
	Graphics   bool
	Present    bool
	QueueCount uint32
}

// SurfaceFormat is a format and color space pair supported by a surface.
type SurfaceFormat struct {
	Format     uint32
	ColorSpace uint32
}

// Surface formats the bring-up cares about.
const (
	FormatUndefined         uint32 = 0
	FormatB8G8R8A8Unorm     uint32 = 44
	ColorSpaceSRGBNonlinear uint32 = 0
)

// PowerState is the state of the system power source.
type PowerState int

// Power states, from no battery to charging.
const (
	PowerNone PowerState = iota
	PowerDischargingHigh
	PowerDischargingMid
	PowerDischargingLow
	PowerDischargingCritical
	PowerCharging
)

var powerNames = [...]string{
	PowerNone:                "none",
	PowerDischargingHigh:     "discharging-high",
	PowerDischargingMid:      "discharging-mid",
	PowerDischargingLow:      "discharging-low",
	PowerDischargingCritical: "discharging-critical",
	PowerCharging:            "charging",
}

func (p PowerState) String() string {
	if p < 0 || int(p) >= len(powerNames) {
		return "power(" + strconv.Itoa(int(p)) + ")"
	}
	return powerNames[p]
}

// Discharging reports whether the system runs on battery. Any state
// other than none or charging counts.
func (p PowerState) Discharging() bool {
	return p != PowerNone && p != PowerCharging
}

// ParsePowerState parses the names produced by PowerState.String.
func ParsePowerState(s string) (PowerState, error) {
	for i, name := range powerNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return PowerState(i), nil
		}
	}
	return PowerNone, errors.Newf("unknown power state %q", s)
}

// LogLevel is the verbosity the logging collaborator runs at.
type LogLevel int

// Log levels, each including the ones before it.
const (
	LogDisabled LogLevel = iota
	LogErrorOnly
	LogWarnError
	LogInfoWarnError
	LogAll
)
