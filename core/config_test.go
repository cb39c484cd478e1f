// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/gravity/core"
	"github.com/devblok/gravity/device"
)

var gravityEnv = []string{
	core.EnvAppName,
	core.EnvAppVersion,
	core.EnvValidation,
	core.EnvLogLevel,
	core.EnvLogFormat,
	core.EnvWindowSystem,
	core.EnvPower,
	core.EnvDeviceExtensions,
	core.EnvWindowTitle,
	core.EnvWindowWidth,
	core.EnvWindowHeight,
	core.EnvEventPollDelay,
}

// clearEnv unsets every variable for the duration of the test.
func clearEnv(c *qt.C) {
	for _, key := range gravityEnv {
		if value, ok := os.LookupEnv(key); ok {
			c.Assert(os.Unsetenv(key), qt.IsNil)
			key, value := key, value
			c.Cleanup(func() { os.Setenv(key, value) })
		}
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	c := qt.New(t)
	clearEnv(c)

	cfg, err := core.LoadConfiguration()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg, qt.DeepEquals, core.DefaultConfiguration)
}

func TestLoadConfigurationFromEnvironment(t *testing.T) {
	c := qt.New(t)
	clearEnv(c)

	c.Setenv(core.EnvAppName, "demo")
	c.Setenv(core.EnvAppVersion, "3")
	c.Setenv(core.EnvValidation, "false")
	c.Setenv(core.EnvLogLevel, "INFO")
	c.Setenv(core.EnvLogFormat, "json")
	c.Setenv(core.EnvWindowSystem, "wayland")
	c.Setenv(core.EnvPower, "discharging-low")
	c.Setenv(core.EnvDeviceExtensions, "VK_KHR_maintenance1, VK_KHR_multiview,")
	c.Setenv(core.EnvWindowWidth, "1280")
	c.Setenv(core.EnvWindowHeight, "720")

	cfg, err := core.LoadConfiguration()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.App, qt.DeepEquals, core.AppConfiguration{Name: "demo", Version: 3})
	c.Assert(cfg.Device, qt.DeepEquals, core.DeviceConfiguration{
		Validation:   false,
		WindowSystem: "wayland",
		Power:        "discharging-low",
		Extensions:   []string{"VK_KHR_maintenance1", "VK_KHR_multiview"},
	})
	c.Assert(cfg.Log, qt.DeepEquals, core.LogConfiguration{Level: "info", Format: "json"})
	c.Assert(cfg.Window.Width, qt.Equals, uint32(1280))
	c.Assert(cfg.Window.Height, qt.Equals, uint32(720))

	opts := cfg.Options(device.LogInfoWarnError)
	c.Assert(opts.AppName, qt.Equals, "demo")
	c.Assert(opts.Validation, qt.IsFalse)
	c.Assert(opts.DeviceExtensions, qt.DeepEquals, cfg.Device.Extensions)

	probed := false
	probe := cfg.PowerProbe(func() device.PowerState {
		probed = true
		return device.PowerCharging
	})
	c.Assert(probe(), qt.Equals, device.PowerDischargingLow)
	c.Assert(probed, qt.IsFalse)
}

func TestLoadConfigurationFromFile(t *testing.T) {
	c := qt.New(t)
	clearEnv(c)

	env := filepath.Join(c.TempDir(), ".env")
	c.Assert(os.WriteFile(env, []byte("GRAVITY_APP_NAME=from-file\nGRAVITY_WINDOW_TITLE=File\n"), 0644), qt.IsNil)
	c.Setenv(core.EnvWindowTitle, "Environment")

	cfg, err := core.LoadConfiguration(filepath.Join(c.TempDir(), "missing.env"), env)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.App.Name, qt.Equals, "from-file")
	c.Assert(cfg.Window.Title, qt.Equals, "Environment")
}

func TestLoadConfigurationRejects(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		key, value, err string
	}{
		{core.EnvValidation, "maybe", `GRAVITY_VALIDATION: .*invalid syntax`},
		{core.EnvWindowWidth, "-1", `GRAVITY_WINDOW_WIDTH: .*invalid syntax`},
		{core.EnvWindowSystem, "amiga", `GRAVITY_WSI: unknown window system "amiga"`},
		{core.EnvPower, "nuclear", `GRAVITY_POWER: unknown power state "nuclear"`},
		{core.EnvLogLevel, "loud", `GRAVITY_LOG_LEVEL: unknown log level "loud"`},
		{core.EnvLogFormat, "xml", `GRAVITY_LOG_FORMAT: unknown log format "xml"`},
	}
	for _, test := range tests {
		c.Run(test.key, func(c *qt.C) {
			clearEnv(c)
			c.Setenv(test.key, test.value)
			_, err := core.LoadConfiguration()
			c.Assert(err, qt.ErrorMatches, test.err)
		})
	}
}

func TestPowerProbeDefault(t *testing.T) {
	c := qt.New(t)

	probe := core.DefaultConfiguration.PowerProbe(func() device.PowerState {
		return device.PowerCharging
	})
	c.Assert(probe(), qt.Equals, device.PowerCharging)
}
