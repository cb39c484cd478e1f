// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package power

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/windows"

	"github.com/devblok/gravity/device"
)

type systemPowerStatus struct {
	ACLineStatus        uint8
	BatteryFlag         uint8
	BatteryLifePercent  uint8
	SystemStatusFlag    uint8
	BatteryLifeTime     uint32
	BatteryFullLifeTime uint32
}

var getSystemPowerStatus = windows.NewLazySystemDLL("kernel32.dll").NewProc("GetSystemPowerStatus")

func query() (device.PowerState, error) {
	if err := getSystemPowerStatus.Find(); err != nil {
		return device.PowerNone, errors.Mark(err, ErrUnavailable)
	}

	var status systemPowerStatus
	if r, _, err := getSystemPowerStatus.Call(uintptr(unsafe.Pointer(&status))); r == 0 {
		return device.PowerNone, errors.Wrap(err, "GetSystemPowerStatus")
	}
	return FromBatteryFlag(status.BatteryFlag), nil
}
