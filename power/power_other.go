// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

//go:build !windows && (!linux || android)
// +build !windows
// +build !linux android

package power

import (
	"github.com/devblok/gravity/device"
)

func query() (device.PowerState, error) {
	return device.PowerNone, ErrUnavailable
}
