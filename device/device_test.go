// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device_test

import (
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"

	"github.com/devblok/gravity/device"
	"github.com/devblok/gravity/profile"
)

func TestVersion(t *testing.T) {
	c := qt.New(t)

	v := device.Version{Major: 1, Minor: 1, Patch: 102}
	c.Assert(device.MakeVersion(v), qt.Equals, uint32(1<<22|1<<12|102))
	c.Assert(device.DecodeVersion(device.MakeVersion(v)), qt.Equals, v)
	c.Assert(v.String(), qt.Equals, "1.1.102")

	parsed, err := device.ParseVersion("1.2")
	c.Assert(err, qt.IsNil)
	c.Assert(parsed, qt.Equals, device.Version{Major: 1, Minor: 2})

	for _, bad := range []string{"", "1", "1.x", "1.2.3.4"} {
		_, err := device.ParseVersion(bad)
		c.Check(err, qt.ErrorMatches, `malformed version ".*"`+".*", qt.Commentf("%q", bad))
	}

	c.Assert(device.Version{Major: 1, Minor: 0}.Less(device.Version{Major: 1, Minor: 1}), qt.IsTrue)
	c.Assert(device.Version{Major: 2}.Less(device.Version{Major: 1, Minor: 9}), qt.IsFalse)
	c.Assert(device.Version{Major: 1, Patch: 1}.Less(device.Version{Major: 1, Patch: 9}), qt.IsFalse)
}

func TestCategoryText(t *testing.T) {
	c := qt.New(t)

	data, err := json.Marshal([]device.Category{device.CategoryDiscrete, device.CategoryCPU})
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, `["discrete","cpu"]`)

	var cat device.Category
	c.Assert(cat.UnmarshalText([]byte("Virtual")), qt.IsNil)
	c.Assert(cat, qt.Equals, device.CategoryVirtual)
	c.Assert(cat.UnmarshalText([]byte("fpga")), qt.ErrorMatches, `unknown device category "fpga"`)
	c.Assert(device.Category(42).String(), qt.Equals, "category(42)")
}

func TestPowerState(t *testing.T) {
	c := qt.New(t)

	for _, p := range []device.PowerState{
		device.PowerDischargingHigh,
		device.PowerDischargingMid,
		device.PowerDischargingLow,
		device.PowerDischargingCritical,
	} {
		c.Check(p.Discharging(), qt.IsTrue, qt.Commentf("%s", p))
		parsed, err := device.ParsePowerState(p.String())
		c.Check(err, qt.IsNil)
		c.Check(parsed, qt.Equals, p)
	}
	c.Assert(device.PowerNone.Discharging(), qt.IsFalse)
	c.Assert(device.PowerCharging.Discharging(), qt.IsFalse)
	c.Assert(device.PowerState(42).Discharging(), qt.IsTrue)

	_, err := device.ParsePowerState("nuclear")
	c.Assert(err, qt.ErrorMatches, `unknown power state "nuclear"`)
}

func TestCatalogEmptyIsError(t *testing.T) {
	c := qt.New(t)

	d := profile.NewDriver(profile.Profile{
		Name: "bare",
		Devices: []profile.DeviceProfile{{
			Name:     "bare gpu",
			Category: device.CategoryDiscrete,
		}},
	})
	dev := d.Profile().Descriptors()[0]

	_, err := device.ListLayers(d)
	c.Assert(errors.Is(err, device.ErrEnumeration), qt.IsTrue)

	_, err = device.ListInstanceExtensions(d)
	c.Assert(errors.Is(err, device.ErrEnumeration), qt.IsTrue)

	_, err = device.ListDeviceExtensions(d, dev)
	c.Assert(errors.Is(err, device.ErrEnumeration), qt.IsTrue)
	c.Assert(err, qt.ErrorMatches, `device extensions of "bare gpu": .*`)

	_, err = device.ListQueueFamilies(d, dev)
	c.Assert(errors.Is(err, device.ErrEnumeration), qt.IsTrue)

	_, err = device.ListSurfaceFormats(d, dev, nil)
	c.Assert(errors.Is(err, device.ErrEnumeration), qt.IsTrue)

	devices, err := device.ListPhysicalDevices(d, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(devices, qt.HasLen, 1)
}

func TestCatalogDriverErrors(t *testing.T) {
	c := qt.New(t)

	p, err := profile.Builtin("desktop")
	c.Assert(err, qt.IsNil)
	d := profile.NewDriver(p)
	boom := errors.New("boom")

	d.FailOn(profile.OpPhysicalDevices, boom)
	_, err = device.ListPhysicalDevices(d, nil)
	c.Assert(errors.Is(err, device.ErrEnumeration), qt.IsTrue)
	c.Assert(errors.Is(err, boom), qt.IsTrue)
	c.Assert(err, qt.ErrorMatches, "physical devices: boom")

	layers, err := device.ListLayers(d)
	c.Assert(err, qt.IsNil)
	c.Assert(layers, qt.HasLen, 1)

	exts, err := device.ListInstanceExtensions(d)
	c.Assert(err, qt.IsNil)
	c.Assert(exts, qt.HasLen, len(p.InstanceExtensions))
}
