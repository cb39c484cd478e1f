// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package window provides the SDL window surfaces are presented to.
package window

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/devblok/vulkan"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/gravity/device"
)

// Configuration of the window
type Configuration struct {
	Title  string
	Width  uint32
	Height uint32
}

// Init starts SDL video and loads the Vulkan library. The returned
// function undoes both.
func Init() (func(), error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, errors.Wrap(err, "sdl.Init()")
	}
	if err := sdl.VulkanLoadLibrary(""); err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "sdl.VulkanLoadLibrary()")
	}
	return func() {
		sdl.VulkanUnloadLibrary()
		sdl.Quit()
	}, nil
}

// ProcAddr returns vkGetInstanceProcAddr of the library loaded by Init.
func ProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

// SDLWindow is a Vulkan capable SDL window.
type SDLWindow struct {
	window  *sdl.Window
	surface device.Surface
}

var _ device.Window = (*SDLWindow)(nil)

// New opens a window. Init must have been called.
func New(cfg Configuration) (*SDLWindow, error) {
	w, err := sdl.CreateWindow(cfg.Title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Width),
		int32(cfg.Height),
		sdl.WINDOW_VULKAN)
	if err != nil {
		return nil, errors.Wrap(err, "sdl.CreateWindow()")
	}
	return &SDLWindow{window: w}, nil
}

// Extensions returns the instance extensions SDL needs for surfaces.
func (w *SDLWindow) Extensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

// Platform returns the window system SDL presents through.
func (w *SDLWindow) Platform() (device.Platform, error) {
	p, ok := device.PlatformForExtensions(w.Extensions())
	if !ok {
		return device.Platform{}, errors.Wrapf(device.ErrInsufficientPlatformSupport,
			"SDL reports %v", w.Extensions())
	}
	return p, nil
}

// CreateSurface implements interface
func (w *SDLWindow) CreateSurface(inst device.Instance) (device.Surface, error) {
	ptr, err := w.window.VulkanCreateSurface(inst.(vk.Instance))
	if err != nil {
		return nil, errors.Wrap(err, "VulkanCreateSurface()")
	}
	w.surface = vk.SurfaceFromPointer(uintptr(ptr))
	return w.surface, nil
}

// Surface implements interface
func (w *SDLWindow) Surface() device.Surface {
	return w.surface
}

// DrawableSize returns the size of the window in pixels.
func (w *SDLWindow) DrawableSize() (uint32, uint32) {
	width, height := w.window.VulkanGetDrawableSize()
	return uint32(width), uint32(height)
}

// PollQuit drains pending events and reports whether the window
// was closed or escape was pressed.
func (w *SDLWindow) PollQuit() bool {
	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch et := event.(type) {
		case *sdl.KeyboardEvent:
			if et.Keysym.Sym == sdl.K_ESCAPE {
				quit = true
			}
		case *sdl.QuitEvent:
			quit = true
		}
	}
	return quit
}

// Destroy closes the window. The surface must be destroyed first.
func (w *SDLWindow) Destroy() {
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	w.surface = nil
}
