// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"github.com/cockroachdb/errors"
)

// ListLayers lists available instance layers. An empty list is an error.
func ListLayers(d Driver) ([]LayerRecord, error) {
	layers, err := d.InstanceLayers()
	if err != nil {
		return nil, enumerationError(err, "instance layers")
	}
	if len(layers) == 0 {
		return nil, errors.Wrap(ErrEnumeration, "instance layers")
	}
	return layers, nil
}

// ListInstanceExtensions lists available instance extensions.
// An empty list is an error.
func ListInstanceExtensions(d Driver) ([]ExtensionRecord, error) {
	exts, err := d.InstanceExtensions()
	if err != nil {
		return nil, enumerationError(err, "instance extensions")
	}
	if len(exts) == 0 {
		return nil, errors.Wrap(ErrEnumeration, "instance extensions")
	}
	return exts, nil
}

// ListDeviceExtensions lists extensions of dev. An empty list is an error.
func ListDeviceExtensions(d Driver, dev DeviceDescriptor) ([]ExtensionRecord, error) {
	exts, err := d.DeviceExtensions(dev)
	if err != nil {
		return nil, enumerationError(err, "device extensions of %q", dev.Name)
	}
	if len(exts) == 0 {
		return nil, errors.Wrapf(ErrEnumeration, "device extensions of %q", dev.Name)
	}
	return exts, nil
}

// ListPhysicalDevices enumerates physical devices. An empty list is an error.
func ListPhysicalDevices(d Driver, inst Instance) ([]DeviceDescriptor, error) {
	devices, err := d.PhysicalDevices(inst)
	if err != nil {
		return nil, enumerationError(err, "physical devices")
	}
	if len(devices) == 0 {
		return nil, errors.Wrap(ErrEnumeration, "physical devices")
	}
	return devices, nil
}

// ListQueueFamilies lists queue families of dev. An empty list is an error.
func ListQueueFamilies(d Driver, dev DeviceDescriptor) ([]QueueFamilyDescriptor, error) {
	families, err := d.QueueFamilies(dev)
	if err != nil {
		return nil, enumerationError(err, "queue families of %q", dev.Name)
	}
	if len(families) == 0 {
		return nil, errors.Wrapf(ErrEnumeration, "queue families of %q", dev.Name)
	}
	return families, nil
}

// ListSurfaceFormats lists formats dev supports for surface.
// An empty list is an error.
func ListSurfaceFormats(d Driver, dev DeviceDescriptor, surface Surface) ([]SurfaceFormat, error) {
	formats, err := d.SurfaceFormats(dev, surface)
	if err != nil {
		return nil, enumerationError(err, "surface formats of %q", dev.Name)
	}
	if len(formats) == 0 {
		return nil, errors.Wrapf(ErrEnumeration, "surface formats of %q", dev.Name)
	}
	return formats, nil
}

func enumerationError(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrEnumeration)
}

func hasExtension(exts []ExtensionRecord, name string) bool {
	for _, ext := range exts {
		if ext.Name == name {
			return true
		}
	}
	return false
}

func hasLayer(layers []LayerRecord, name string) bool {
	for _, layer := range layers {
		if layer.Name == name {
			return true
		}
	}
	return false
}
