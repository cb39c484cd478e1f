// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/gravity/core"
	"github.com/devblok/gravity/device"
	"github.com/devblok/gravity/device/vkdriver"
	"github.com/devblok/gravity/power"
	"github.com/devblok/gravity/window"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		log.WithError(err).Error("Gravity exited")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := core.LoadConfiguration(".env")
	if err != nil {
		return errors.Wrap(err, "configuration")
	}

	logger, level, err := core.NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	quit, err := window.Init()
	if err != nil {
		return err
	}
	defer quit()

	driver, err := vkdriver.New(window.ProcAddr())
	if err != nil {
		return err
	}

	win, err := window.New(window.Configuration(cfg.Window))
	if err != nil {
		return err
	}
	defer win.Destroy()

	platform, err := windowSystem(cfg, win)
	if err != nil {
		return err
	}

	opts := cfg.Options(level)
	opts.Platform = platform
	opts.PowerState = cfg.PowerProbe(power.Query)
	opts.Logger = logger

	ctx, err := device.BringUp(driver, win, opts)
	if err != nil && opts.Validation && device.ValidationSensitive(err) {
		logger.WithError(err).Warn("Bring-up failed, retrying without validation")
		opts.Validation = false
		ctx, err = device.BringUp(driver, win, opts)
	}
	if err != nil {
		return err
	}
	defer ctx.Destroy()

	logger.WithFields(log.Fields{
		"device":   ctx.PhysicalDevice.Name,
		"category": ctx.PhysicalDevice.Category,
		"api":      ctx.PhysicalDevice.APIVersion,
		"power":    ctx.Power,
		"graphics": ctx.Queues.Graphics,
		"present":  ctx.Queues.Present,
		"format":   ctx.SurfaceFormat.Format,
	}).Info("Device ready")

	time := core.NewTime(cfg.Time)
	defer time.Stop()
	for range time.EventTicker().C {
		if win.PollQuit() {
			logger.Info("Event loop exited")
			return nil
		}
	}
	return nil
}

func windowSystem(cfg core.Configuration, win *window.SDLWindow) (device.Platform, error) {
	if cfg.Device.WindowSystem != "" {
		return device.PlatformByName(cfg.Device.WindowSystem)
	}
	if p, err := win.Platform(); err == nil {
		return p, nil
	}
	return device.DefaultPlatform(), nil
}
