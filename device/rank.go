// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"github.com/cockroachdb/errors"
)

// CompareGpus returns 0 when a is preferred and 1 when b is.
// Discrete beats integrated beats anything else, then the newer
// API version wins. Ties go to b.
func CompareGpus(a, b DeviceDescriptor) int {
	if a.Category != b.Category {
		switch {
		case a.Category == CategoryDiscrete:
			return 0
		case b.Category == CategoryDiscrete:
			return 1
		case a.Category == CategoryIntegrated:
			return 0
		case b.Category == CategoryIntegrated:
			return 1
		}
	}

	if b.APIVersion.Less(a.APIVersion) {
		return 0
	}
	return 1
}

// Ranking holds the best candidate of every selectable category.
type Ranking struct {
	Discrete   *DeviceDescriptor
	Integrated *DeviceDescriptor
	Virtual    *DeviceDescriptor

	// Ignored are CPU and other devices, never selected
	Ignored []DeviceDescriptor
}

// RankDevices classifies devices and keeps the best of each category.
func RankDevices(devices []DeviceDescriptor) Ranking {
	var r Ranking
	for i := range devices {
		dev := &devices[i]
		switch dev.Category {
		case CategoryIntegrated:
			r.Integrated = better(r.Integrated, dev)
		case CategoryDiscrete:
			r.Discrete = better(r.Discrete, dev)
		case CategoryVirtual:
			r.Virtual = better(r.Virtual, dev)
		default:
			r.Ignored = append(r.Ignored, *dev)
		}
	}
	return r
}

func better(best, candidate *DeviceDescriptor) *DeviceDescriptor {
	if best == nil || CompareGpus(*best, *candidate) == 1 {
		return candidate
	}
	return best
}

// NeedsPowerState reports whether the power source decides the outcome
// of Select.
func (r Ranking) NeedsPowerState() bool {
	return r.Discrete != nil && r.Integrated != nil
}

// Select picks the device to use. With both a discrete and an integrated
// device available, running on battery selects the integrated one.
func (r Ranking) Select(power PowerState) (DeviceDescriptor, error) {
	switch {
	case r.Discrete != nil && r.Integrated != nil:
		if power.Discharging() {
			return *r.Integrated, nil
		}
		return *r.Discrete, nil
	case r.Discrete != nil:
		return *r.Discrete, nil
	case r.Integrated != nil:
		return *r.Integrated, nil
	case r.Virtual != nil:
		return *r.Virtual, nil
	}
	return DeviceDescriptor{}, errors.Wrapf(ErrNoSuitableDevice,
		"%d devices, none integrated, discrete or virtual", len(r.Ignored))
}

// SelectDevice picks the best of devices for the given power state.
func SelectDevice(devices []DeviceDescriptor, power PowerState) (DeviceDescriptor, error) {
	return RankDevices(devices).Select(power)
}
