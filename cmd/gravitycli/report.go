// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"github.com/cockroachdb/errors"

	"github.com/devblok/gravity/device"
	"github.com/devblok/gravity/profile"
)

type report struct {
	Profile string `json:"profile"`

	Device           *device.DeviceDescriptor     `json:"device,omitempty"`
	Power            string                       `json:"power,omitempty"`
	Features         *device.NegotiatedFeatureSet `json:"features,omitempty"`
	DeviceExtensions []string                     `json:"deviceExtensions,omitempty"`
	Queues           *device.QueueSelection       `json:"queues,omitempty"`
	SurfaceFormat    *device.SurfaceFormat        `json:"surfaceFormat,omitempty"`

	Stage string `json:"stage,omitempty"`
	Error string `json:"error,omitempty"`

	Releases []profile.Op `json:"releases"`
}

func newReport(p profile.Profile, ctx *device.GraphicsContext, err error) report {
	rep := report{Profile: p.Name}
	if err != nil {
		rep.Error = err.Error()
		var bue *device.BringUpError
		if errors.As(err, &bue) {
			rep.Stage = string(bue.Stage)
		}
		return rep
	}

	dev := ctx.PhysicalDevice
	features := ctx.Features
	queues := ctx.Queues
	format := ctx.SurfaceFormat
	rep.Device = &dev
	rep.Power = ctx.Power.String()
	rep.Features = &features
	rep.DeviceExtensions = ctx.DeviceExtensions
	rep.Queues = &queues
	rep.SurfaceFormat = &format
	return rep
}
