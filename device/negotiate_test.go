// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/gravity/device"
)

func extensions(names ...string) []device.ExtensionRecord {
	records := make([]device.ExtensionRecord, 0, len(names))
	for _, name := range names {
		records = append(records, device.ExtensionRecord{Name: name, SpecVersion: 1})
	}
	return records
}

func layers(names ...string) []device.LayerRecord {
	records := make([]device.LayerRecord, 0, len(names))
	for _, name := range names {
		records = append(records, device.LayerRecord{Name: name})
	}
	return records
}

var xcbExtensions = extensions(
	"VK_KHR_surface",
	"VK_KHR_xcb_surface",
	"VK_EXT_debug_report",
	"VK_KHR_get_physical_device_properties2",
)

func TestNegotiateValidation(t *testing.T) {
	c := qt.New(t)

	fs, err := device.NegotiateInstanceFeatures(
		layers("VK_LAYER_LUNARG_api_dump", device.KhronosValidationLayerName),
		xcbExtensions, true, device.LogDisabled, device.PlatformXCB)
	c.Assert(err, qt.IsNil)
	c.Assert(fs.Validation, qt.IsTrue)
	c.Assert(fs.Layers, qt.DeepEquals, []string{device.KhronosValidationLayerName})

	fs, err = device.NegotiateInstanceFeatures(
		layers(device.StandardValidationLayerName),
		xcbExtensions, true, device.LogDisabled, device.PlatformXCB)
	c.Assert(err, qt.IsNil)
	c.Assert(fs.Layers, qt.DeepEquals, []string{device.StandardValidationLayerName})

	fs, err = device.NegotiateInstanceFeatures(
		layers("VK_LAYER_LUNARG_api_dump"),
		xcbExtensions, true, device.LogDisabled, device.PlatformXCB)
	c.Assert(err, qt.IsNil)
	c.Assert(fs.Validation, qt.IsFalse)
	c.Assert(fs.Layers, qt.HasLen, 0)

	fs, err = device.NegotiateInstanceFeatures(
		layers(device.KhronosValidationLayerName),
		xcbExtensions, false, device.LogAll, device.PlatformXCB)
	c.Assert(err, qt.IsNil)
	c.Assert(fs.Validation, qt.IsFalse)
	c.Assert(fs.Layers, qt.HasLen, 0)
}

func TestNegotiateDebugReport(t *testing.T) {
	c := qt.New(t)

	fs, err := device.NegotiateInstanceFeatures(nil, xcbExtensions, false, device.LogWarnError, device.PlatformXCB)
	c.Assert(err, qt.IsNil)
	c.Assert(fs.DebugReport, qt.IsTrue)
	c.Assert(fs.Extensions, qt.DeepEquals, []string{"VK_KHR_surface", "VK_KHR_xcb_surface", "VK_EXT_debug_report"})
	c.Assert(fs.DebugFlags, qt.Equals, device.DebugReportWarning|device.DebugReportPerformanceWarning|device.DebugReportError)

	fs, err = device.NegotiateInstanceFeatures(nil, xcbExtensions, false, device.LogDisabled, device.PlatformXCB)
	c.Assert(err, qt.IsNil)
	c.Assert(fs.DebugReport, qt.IsFalse)
	c.Assert(fs.Extensions, qt.DeepEquals, []string{"VK_KHR_surface", "VK_KHR_xcb_surface"})

	fs, err = device.NegotiateInstanceFeatures(nil, extensions("VK_KHR_xcb_surface", "VK_KHR_surface"), false, device.LogAll, device.PlatformXCB)
	c.Assert(err, qt.IsNil)
	c.Assert(fs.DebugReport, qt.IsFalse)
	c.Assert(fs.Extensions, qt.DeepEquals, []string{"VK_KHR_surface", "VK_KHR_xcb_surface"})
}

func TestNegotiatedIsSubsetOfAvailable(t *testing.T) {
	c := qt.New(t)

	available := layers(device.KhronosValidationLayerName, device.StandardValidationLayerName)
	for _, level := range []device.LogLevel{device.LogDisabled, device.LogErrorOnly, device.LogWarnError, device.LogInfoWarnError, device.LogAll} {
		for _, validation := range []bool{false, true} {
			fs, err := device.NegotiateInstanceFeatures(available, xcbExtensions, validation, level, device.PlatformXCB)
			c.Assert(err, qt.IsNil)
			for _, name := range fs.Extensions {
				c.Check(hasRecord(xcbExtensions, name), qt.IsTrue, qt.Commentf("extension %s", name))
			}
			for _, name := range fs.Layers {
				c.Check(name == device.KhronosValidationLayerName || name == device.StandardValidationLayerName, qt.IsTrue)
			}
			c.Check(len(fs.Layers) <= 1, qt.IsTrue)
		}
	}
}

func hasRecord(records []device.ExtensionRecord, name string) bool {
	for _, r := range records {
		if r.Name == name {
			return true
		}
	}
	return false
}

func TestNegotiateFailsWithoutWindowSystem(t *testing.T) {
	c := qt.New(t)

	_, err := device.NegotiateInstanceFeatures(nil, xcbExtensions, true, device.LogAll, device.PlatformWin32)
	c.Assert(err, qt.ErrorIs, device.ErrInsufficientPlatformSupport)
}

func TestDebugReportFlagsFor(t *testing.T) {
	c := qt.New(t)

	c.Assert(device.DebugReportFlagsFor(device.LogDisabled), qt.Equals, device.DebugReportFlags(0))
	c.Assert(device.DebugReportFlagsFor(device.LogErrorOnly), qt.Equals, device.DebugReportError)
	c.Assert(device.DebugReportFlagsFor(device.LogInfoWarnError), qt.Equals,
		device.DebugReportInformation|device.DebugReportWarning|device.DebugReportPerformanceWarning|device.DebugReportError)
	c.Assert(device.DebugReportFlagsFor(device.LogAll), qt.Equals,
		device.DebugReportInformation|device.DebugReportWarning|device.DebugReportPerformanceWarning|device.DebugReportError|device.DebugReportDebug)
}

func TestResolveWindowSystemExtensions(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		about    string
		exts     []device.ExtensionRecord
		platform device.Platform
		want     []string
	}{{
		about:    "base listed after platform still comes first",
		exts:     extensions("VK_KHR_win32_surface", "VK_EXT_debug_report", "VK_KHR_surface"),
		platform: device.PlatformWin32,
		want:     []string{"VK_KHR_surface", "VK_KHR_win32_surface"},
	}, {
		about:    "other platforms are ignored",
		exts:     extensions("VK_KHR_surface", "VK_KHR_xlib_surface", "VK_KHR_wayland_surface"),
		platform: device.PlatformWayland,
		want:     []string{"VK_KHR_surface", "VK_KHR_wayland_surface"},
	}}
	for _, test := range tests {
		c.Run(test.about, func(c *qt.C) {
			got, err := device.ResolveWindowSystemExtensions(test.exts, test.platform)
			c.Assert(err, qt.IsNil)
			c.Assert(got, qt.DeepEquals, test.want)
		})
	}
}

func TestResolveWindowSystemExtensionsInsufficient(t *testing.T) {
	c := qt.New(t)

	for about, exts := range map[string][]device.ExtensionRecord{
		"base only":     extensions("VK_KHR_surface", "VK_KHR_xcb_surface"),
		"platform only": extensions("VK_KHR_win32_surface"),
		"nothing":       nil,
	} {
		_, err := device.ResolveWindowSystemExtensions(exts, device.PlatformWin32)
		c.Check(err, qt.ErrorIs, device.ErrInsufficientPlatformSupport, qt.Commentf("%s", about))
	}

	_, err := device.ResolveWindowSystemExtensions(extensions("VK_KHR_surface"), device.Platform{Name: "none"})
	c.Assert(err, qt.ErrorIs, device.ErrInsufficientPlatformSupport)
}

func TestPlatforms(t *testing.T) {
	c := qt.New(t)

	p, err := device.PlatformByName("wayland")
	c.Assert(err, qt.IsNil)
	c.Assert(p, qt.Equals, device.PlatformWayland)

	p, err = device.PlatformByName("")
	c.Assert(err, qt.IsNil)
	c.Assert(p, qt.Equals, device.DefaultPlatform())

	_, err = device.PlatformByName("amiga")
	c.Assert(err, qt.Not(qt.IsNil))

	p, ok := device.PlatformForExtensions([]string{"VK_KHR_surface", "VK_KHR_xlib_surface"})
	c.Assert(ok, qt.IsTrue)
	c.Assert(p, qt.Equals, device.PlatformXlib)

	_, ok = device.PlatformForExtensions([]string{"VK_KHR_surface"})
	c.Assert(ok, qt.IsFalse)
}
