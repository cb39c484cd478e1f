// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package profile_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"

	"github.com/devblok/gravity/device"
	"github.com/devblok/gravity/profile"
)

func testProfile() profile.Profile {
	return profile.Profile{
		Name:               "test",
		Layers:             []string{device.KhronosValidationLayerName},
		InstanceExtensions: []string{device.SurfaceExtensionName, device.PlatformXCB.SurfaceExtension},
		Devices: []profile.DeviceProfile{{
			Name:       "gpu",
			Category:   device.CategoryDiscrete,
			APIVersion: device.Version{Major: 1, Minor: 1},
			Extensions: []string{device.SwapchainExtensionName},
			QueueFamilies: []profile.QueueFamilyProfile{
				{Graphics: true, Count: 1},
				{Present: true, Count: 1},
			},
			SurfaceFormats: []device.SurfaceFormat{{Format: device.FormatB8G8R8A8Unorm}},
		}},
	}
}

func TestDriverReplays(t *testing.T) {
	c := qt.New(t)
	d := profile.NewDriver(testProfile())

	layers, err := d.InstanceLayers()
	c.Assert(err, qt.IsNil)
	c.Assert(layers, qt.HasLen, 1)
	c.Assert(layers[0].Name, qt.Equals, device.KhronosValidationLayerName)

	inst, err := d.CreateInstance(device.InstanceInfo{
		Extensions: []string{device.SurfaceExtensionName},
	})
	c.Assert(err, qt.IsNil)

	devices, err := d.PhysicalDevices(inst)
	c.Assert(err, qt.IsNil)
	c.Assert(devices, qt.HasLen, 1)
	c.Assert(devices[0].Name, qt.Equals, "gpu")
	c.Assert(devices[0].Category, qt.Equals, device.CategoryDiscrete)

	families, err := d.QueueFamilies(devices[0])
	c.Assert(err, qt.IsNil)
	c.Assert(families, qt.DeepEquals, []device.QueueFamilyDescriptor{
		{Index: 0, Graphics: true, QueueCount: 1},
		{Index: 1, QueueCount: 1},
	})

	present, err := d.SurfaceSupport(devices[0], 1, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(present, qt.IsTrue)

	_, err = d.SurfaceSupport(devices[0], 2, nil)
	c.Assert(err, qt.ErrorMatches, "queue family 2 out of range")

	c.Assert(d.Journal(), qt.DeepEquals, []profile.Op{
		profile.OpInstanceLayers,
		profile.OpCreateInstance,
		profile.OpPhysicalDevices,
		profile.OpQueueFamilies,
		profile.OpSurfaceSupport,
		profile.OpSurfaceSupport,
	})
}

func TestDriverRejectsUnknownNames(t *testing.T) {
	c := qt.New(t)
	d := profile.NewDriver(testProfile())

	_, err := d.CreateInstance(device.InstanceInfo{
		Extensions: []string{"VK_KHR_win32_surface"},
	})
	c.Assert(err, qt.ErrorMatches, "instance extension VK_KHR_win32_surface not present")

	_, err = d.CreateInstance(device.InstanceInfo{
		Layers: []string{device.StandardValidationLayerName},
	})
	c.Assert(err, qt.ErrorMatches, "layer VK_LAYER_LUNARG_standard_validation not present")

	dev := d.Profile().Descriptors()[0]
	_, err = d.CreateDevice(dev, device.DeviceInfo{
		Queues:     []device.QueueInfo{{FamilyIndex: 0, Priorities: []float32{0}}},
		Extensions: []string{"VK_KHR_maintenance1"},
	})
	c.Assert(err, qt.ErrorMatches, `device extension VK_KHR_maintenance1 not present on "gpu"`)

	_, err = d.CreateDevice(dev, device.DeviceInfo{
		Queues: []device.QueueInfo{{FamilyIndex: 5, Priorities: []float32{0}}},
	})
	c.Assert(err, qt.ErrorMatches, "queue family 5 out of range")

	c.Assert(d.Live(), qt.Equals, 0)
}

func TestDriverFailOn(t *testing.T) {
	c := qt.New(t)
	d := profile.NewDriver(testProfile())
	boom := errors.New("boom")

	d.FailOn(profile.OpInstanceExtensions, boom)
	_, err := d.InstanceExtensions()
	c.Assert(errors.Is(err, boom), qt.IsTrue)

	d.FailOn(profile.OpInstanceExtensions, nil)
	exts, err := d.InstanceExtensions()
	c.Assert(err, qt.IsNil)
	c.Assert(exts, qt.HasLen, 2)
}

func TestDriverTracksLiveObjects(t *testing.T) {
	c := qt.New(t)
	d := profile.NewDriver(testProfile())
	w := profile.NewWindow(d)

	inst, err := d.CreateInstance(device.InstanceInfo{})
	c.Assert(err, qt.IsNil)
	surface, err := w.CreateSurface(inst)
	c.Assert(err, qt.IsNil)
	c.Assert(w.Surface(), qt.Equals, surface)

	dev, err := d.CreateDevice(d.Profile().Descriptors()[0], device.DeviceInfo{
		Queues: []device.QueueInfo{{FamilyIndex: 0, Priorities: []float32{0}}},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(d.Live(), qt.Equals, 3)

	d.DestroyDevice(dev)
	d.DestroySurface(inst, surface)
	d.DestroyInstance(inst)
	c.Assert(d.Live(), qt.Equals, 0)
	c.Assert(d.Releases(), qt.DeepEquals, []profile.Op{
		profile.OpDestroyDevice,
		profile.OpDestroySurface,
		profile.OpDestroyInstance,
	})
}

func TestDriverEmitsToDebugCallbacks(t *testing.T) {
	c := qt.New(t)
	d := profile.NewDriver(testProfile())

	inst, err := d.CreateInstance(device.InstanceInfo{})
	c.Assert(err, qt.IsNil)

	var got []string
	cb, err := d.CreateDebugCallback(inst, device.DebugReportError, func(msg device.DebugMessage) {
		got = append(got, msg.Message)
	})
	c.Assert(err, qt.IsNil)

	d.Emit(device.DebugMessage{Flags: device.DebugReportInformation, Message: "info"})
	d.Emit(device.DebugMessage{Flags: device.DebugReportError, Message: "error"})
	d.DestroyDebugCallback(inst, cb)
	d.Emit(device.DebugMessage{Flags: device.DebugReportError, Message: "late"})

	c.Assert(got, qt.DeepEquals, []string{"error"})
}

func TestWindowFailSurface(t *testing.T) {
	c := qt.New(t)
	d := profile.NewDriver(testProfile())
	w := profile.NewWindow(d)

	inst, err := d.CreateInstance(device.InstanceInfo{})
	c.Assert(err, qt.IsNil)

	w.FailSurface(errors.New("no display"))
	_, err = w.CreateSurface(inst)
	c.Assert(err, qt.ErrorMatches, "no display")
	c.Assert(w.Surface(), qt.IsNil)
	c.Assert(d.Live(), qt.Equals, 1)
}
