// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package profile records what a graphics driver reports about a machine
// and replays it, so bring-up can be exercised without a GPU.
package profile

import (
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/devblok/gravity/device"
)

// Profile is a recorded machine.
type Profile struct {
	Name               string          `json:"name"`
	Layers             []string        `json:"layers,omitempty"`
	InstanceExtensions []string        `json:"instanceExtensions"`
	Devices            []DeviceProfile `json:"devices"`
}

// DeviceProfile is a recorded physical device.
type DeviceProfile struct {
	Name           string                 `json:"name"`
	Category       device.Category        `json:"category"`
	APIVersion     device.Version         `json:"apiVersion"`
	VendorID       uint32                 `json:"vendorID,omitempty"`
	DeviceID       uint32                 `json:"deviceID,omitempty"`
	DriverVersion  uint32                 `json:"driverVersion,omitempty"`
	Memory         uint64                 `json:"memory,omitempty"`
	Extensions     []string               `json:"extensions"`
	QueueFamilies  []QueueFamilyProfile   `json:"queueFamilies"`
	SurfaceFormats []device.SurfaceFormat `json:"surfaceFormats,omitempty"`
}

// QueueFamilyProfile is a recorded queue family. Present means the
// family can present to the surface the profile was captured with.
type QueueFamilyProfile struct {
	Graphics bool   `json:"graphics"`
	Present  bool   `json:"present"`
	Count    uint32 `json:"count"`
}

// Decode reads a JSON encoded profile from r.
func Decode(r io.Reader) (Profile, error) {
	var p Profile
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Profile{}, errors.Wrap(err, "decode profile")
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Encode writes p to w as indented JSON.
func (p Profile) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrapf(enc.Encode(p), "encode profile %q", p.Name)
}

// Validate checks the profile is self consistent.
func (p Profile) Validate() error {
	if p.Name == "" {
		return errors.New("profile has no name")
	}
	for i, dev := range p.Devices {
		if dev.Name == "" {
			return errors.Newf("profile %q: device %d has no name", p.Name, i)
		}
	}
	return nil
}

// Descriptors returns the devices as a driver would enumerate them.
// Handles are device positions in the profile.
func (p Profile) Descriptors() []device.DeviceDescriptor {
	descs := make([]device.DeviceDescriptor, 0, len(p.Devices))
	for i, dev := range p.Devices {
		descs = append(descs, device.DeviceDescriptor{
			Handle:        i,
			Name:          dev.Name,
			Category:      dev.Category,
			APIVersion:    dev.APIVersion,
			DriverVersion: dev.DriverVersion,
			VendorID:      dev.VendorID,
			DeviceID:      dev.DeviceID,
			Memory:        dev.Memory,
		})
	}
	return descs
}

func extensionRecords(names []string) []device.ExtensionRecord {
	records := make([]device.ExtensionRecord, 0, len(names))
	for _, name := range names {
		records = append(records, device.ExtensionRecord{Name: name, SpecVersion: 1})
	}
	return records
}

func extensionNames(records []device.ExtensionRecord) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	return names
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
