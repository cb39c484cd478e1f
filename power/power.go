// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package power reads the state of the system power source.
package power

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/gravity/device"
)

// ErrUnavailable is returned when the platform offers no way to learn
// about the power source.
var ErrUnavailable = errors.New("power state unavailable")

// Query returns the current power state. Failures read as PowerNone.
func Query() device.PowerState {
	state, err := query()
	if err != nil {
		log.WithError(err).Debug("Could not read power state")
		return device.PowerNone
	}
	return state
}

// FromPercent maps a discharging battery level to a power state.
func FromPercent(percent int) device.PowerState {
	switch {
	case percent > 66:
		return device.PowerDischargingHigh
	case percent > 33:
		return device.PowerDischargingMid
	case percent > 5:
		return device.PowerDischargingLow
	}
	return device.PowerDischargingCritical
}

// FromBatteryFlag maps the BatteryFlag of a Win32 SYSTEM_POWER_STATUS.
// Combined or unknown flags read as PowerNone.
func FromBatteryFlag(flag uint8) device.PowerState {
	switch flag {
	case 0:
		return device.PowerDischargingMid
	case 1:
		return device.PowerDischargingHigh
	case 2:
		return device.PowerDischargingLow
	case 4:
		return device.PowerDischargingCritical
	case 8:
		return device.PowerCharging
	}
	return device.PowerNone
}

var acpiPercent = regexp.MustCompile(`([0-9]+)%`)

// ParseACPI reads the first battery line of `acpi -b` output:
//
//	Battery 0: Discharging, 95%, 10:32:44 remaining
func ParseACPI(output string) device.PowerState {
	line := output
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	fields := strings.SplitN(line, ":", 2)
	if len(fields) < 2 {
		return device.PowerNone
	}

	status := strings.TrimSpace(strings.SplitN(fields[1], ",", 2)[0])
	switch status {
	case "Charging":
		return device.PowerCharging
	case "Discharging":
		m := acpiPercent.FindStringSubmatch(fields[1])
		if m == nil {
			return device.PowerNone
		}
		percent, _ := strconv.Atoi(m[1])
		return FromPercent(percent)
	}
	return device.PowerNone
}

// ReadPowerSupply reads the first battery found under a sysfs
// power_supply directory such as /sys/class/power_supply.
func ReadPowerSupply(root string) (device.PowerState, error) {
	supplies, err := os.ReadDir(root)
	if err != nil {
		return device.PowerNone, errors.Mark(errors.Wrap(err, "read power supplies"), ErrUnavailable)
	}

	for _, supply := range supplies {
		dir := filepath.Join(root, supply.Name())
		if readAttribute(dir, "type") != "Battery" {
			continue
		}

		switch readAttribute(dir, "status") {
		case "Charging":
			return device.PowerCharging, nil
		case "Discharging":
			percent, err := strconv.Atoi(readAttribute(dir, "capacity"))
			if err != nil {
				return device.PowerNone, errors.Wrapf(err, "capacity of %s", supply.Name())
			}
			return FromPercent(percent), nil
		}
		return device.PowerNone, nil
	}
	return device.PowerNone, nil
}

func readAttribute(dir, name string) string {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	if s.Scan() {
		return strings.TrimSpace(s.Text())
	}
	return ""
}
