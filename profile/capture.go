// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package profile

import (
	"github.com/cockroachdb/errors"

	"github.com/devblok/gravity/device"
)

// Capture records what d reports into a profile called name. It creates
// an instance and a surface on w to learn which queue families present,
// both are destroyed before returning.
func Capture(d device.Driver, w device.Window, platform device.Platform, name string) (Profile, error) {
	p := Profile{Name: name}

	layers, err := d.InstanceLayers()
	if err == nil {
		for _, l := range layers {
			p.Layers = append(p.Layers, l.Name)
		}
	}

	exts, err := device.ListInstanceExtensions(d)
	if err != nil {
		return Profile{}, err
	}
	p.InstanceExtensions = extensionNames(exts)

	wsi, err := device.ResolveWindowSystemExtensions(exts, platform)
	if err != nil {
		return Profile{}, err
	}

	inst, err := d.CreateInstance(device.InstanceInfo{
		AppName:       "gravity capture",
		EngineName:    device.EngineName,
		EngineVersion: device.EngineVersion,
		APIVersion:    device.APIVersion,
		Extensions:    wsi,
	})
	if err != nil {
		return Profile{}, errors.Mark(err, device.ErrInstanceCreation)
	}
	defer d.DestroyInstance(inst)

	surface, err := w.CreateSurface(inst)
	if err != nil {
		return Profile{}, errors.Mark(err, device.ErrSurfaceCreation)
	}
	defer d.DestroySurface(inst, surface)

	devices, err := device.ListPhysicalDevices(d, inst)
	if err != nil {
		return Profile{}, err
	}
	for _, dev := range devices {
		dp, err := captureDevice(d, dev, surface)
		if err != nil {
			return Profile{}, errors.Wrapf(err, "capture %q", dev.Name)
		}
		p.Devices = append(p.Devices, dp)
	}
	return p, nil
}

func captureDevice(d device.Driver, dev device.DeviceDescriptor, surface device.Surface) (DeviceProfile, error) {
	dp := DeviceProfile{
		Name:          dev.Name,
		Category:      dev.Category,
		APIVersion:    dev.APIVersion,
		VendorID:      dev.VendorID,
		DeviceID:      dev.DeviceID,
		DriverVersion: dev.DriverVersion,
		Memory:        dev.Memory,
	}

	// devices without extensions are still worth recording
	if exts, err := d.DeviceExtensions(dev); err == nil {
		dp.Extensions = extensionNames(exts)
	}

	families, err := device.ListQueueFamilies(d, dev)
	if err != nil {
		return DeviceProfile{}, err
	}
	for i, f := range families {
		present, err := d.SurfaceSupport(dev, i, surface)
		if err != nil {
			present = false
		}
		dp.QueueFamilies = append(dp.QueueFamilies, QueueFamilyProfile{
			Graphics: f.Graphics,
			Present:  present,
			Count:    f.QueueCount,
		})
	}

	if formats, err := d.SurfaceFormats(dev, surface); err == nil {
		dp.SurfaceFormats = formats
	}
	return dp, nil
}
