// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

//go:build linux && !android
// +build linux,!android

package power

import (
	"context"
	"os/exec"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/devblok/gravity/device"
)

const (
	powerSupplyRoot = "/sys/class/power_supply"
	acpiTimeout     = 2 * time.Second
)

func query() (device.PowerState, error) {
	if path, err := exec.LookPath("acpi"); err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), acpiTimeout)
		defer cancel()

		out, err := exec.CommandContext(ctx, path, "-b").Output()
		if err == nil {
			return ParseACPI(string(out)), nil
		}
		if ctx.Err() != nil {
			return device.PowerNone, errors.Wrap(ctx.Err(), "acpi -b")
		}
	}
	return ReadPowerSupply(powerSupplyRoot)
}
