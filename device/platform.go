// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// SurfaceExtensionName is the base surface extension every window
// system needs next to its own.
const SurfaceExtensionName = "VK_KHR_surface"

// Platform is a window system the instance presents through.
type Platform struct {
	Name             string
	SurfaceExtension string
}

// Window systems with a known surface extension
var (
	PlatformWin32   = Platform{Name: "win32", SurfaceExtension: "VK_KHR_win32_surface"}
	PlatformXlib    = Platform{Name: "xlib", SurfaceExtension: "VK_KHR_xlib_surface"}
	PlatformXCB     = Platform{Name: "xcb", SurfaceExtension: "VK_KHR_xcb_surface"}
	PlatformWayland = Platform{Name: "wayland", SurfaceExtension: "VK_KHR_wayland_surface"}
	PlatformAndroid = Platform{Name: "android", SurfaceExtension: "VK_KHR_android_surface"}
	PlatformMacOS   = Platform{Name: "macos", SurfaceExtension: "VK_MVK_macos_surface"}
	PlatformIOS     = Platform{Name: "ios", SurfaceExtension: "VK_MVK_ios_surface"}
	PlatformMetal   = Platform{Name: "metal", SurfaceExtension: "VK_EXT_metal_surface"}
	PlatformDisplay = Platform{Name: "display", SurfaceExtension: "VK_KHR_display"}
)

// Platforms lists every known window system.
var Platforms = []Platform{
	PlatformWin32,
	PlatformXlib,
	PlatformXCB,
	PlatformWayland,
	PlatformAndroid,
	PlatformMacOS,
	PlatformIOS,
	PlatformMetal,
	PlatformDisplay,
}

// DefaultPlatform returns the window system of the build target.
func DefaultPlatform() Platform {
	return defaultPlatform
}

// PlatformByName looks up a known window system, empty name
// returns DefaultPlatform.
func PlatformByName(name string) (Platform, error) {
	if name == "" {
		return DefaultPlatform(), nil
	}
	for _, p := range Platforms {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Platform{}, errors.Newf("unknown window system %q", name)
}

// PlatformForExtensions picks the window system whose surface extension
// appears in exts, as reported by a windowing library.
func PlatformForExtensions(exts []string) (Platform, bool) {
	for _, ext := range exts {
		for _, p := range Platforms {
			if p.SurfaceExtension == ext {
				return p, true
			}
		}
	}
	return Platform{}, false
}
