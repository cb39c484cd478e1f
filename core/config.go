// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core holds the engine wide configuration and logging setup.
package core

import (
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"

	"github.com/devblok/gravity/device"
)

// Configuration defines a global engine configuration setting
type Configuration struct {
	App    AppConfiguration
	Device DeviceConfiguration
	Log    LogConfiguration
	Window WindowConfiguration
	Time   TimeConfiguration
}

// AppConfiguration identifies the application to the driver
type AppConfiguration struct {
	Name    string
	Version uint32
}

// DeviceConfiguration is used to configure the device bring-up
type DeviceConfiguration struct {
	Validation bool

	// WindowSystem names the platform, empty picks the build target's
	WindowSystem string

	// Power overrides the power state probe when set
	Power string

	// Extensions are required next to the swapchain
	Extensions []string
}

// LogConfiguration is used to configure logging
type LogConfiguration struct {
	// Level is one of disabled, error, warn, info, all
	Level string

	// Format is text or json
	Format string
}

// WindowConfiguration is used to configure the window
type WindowConfiguration struct {
	Title  string
	Width  uint32
	Height uint32
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// EventPollDelay is the delay between event polls in milliseconds
	EventPollDelay int
}

// Environment variables read by LoadConfiguration
const (
	EnvAppName          = "GRAVITY_APP_NAME"
	EnvAppVersion       = "GRAVITY_APP_VERSION"
	EnvValidation       = "GRAVITY_VALIDATION"
	EnvLogLevel         = "GRAVITY_LOG_LEVEL"
	EnvLogFormat        = "GRAVITY_LOG_FORMAT"
	EnvWindowSystem     = "GRAVITY_WSI"
	EnvPower            = "GRAVITY_POWER"
	EnvDeviceExtensions = "GRAVITY_DEVICE_EXTENSIONS"
	EnvWindowTitle      = "GRAVITY_WINDOW_TITLE"
	EnvWindowWidth      = "GRAVITY_WINDOW_WIDTH"
	EnvWindowHeight     = "GRAVITY_WINDOW_HEIGHT"
	EnvEventPollDelay   = "GRAVITY_EVENT_POLL_DELAY"
)

// DefaultConfiguration is used for everything the environment leaves unset.
var DefaultConfiguration = Configuration{
	App: AppConfiguration{
		Name:    "gravity",
		Version: 1,
	},
	Device: DeviceConfiguration{
		Validation: true,
	},
	Log: LogConfiguration{
		Level:  "warn",
		Format: "text",
	},
	Window: WindowConfiguration{
		Title:  "Lunar Gravity",
		Width:  800,
		Height: 600,
	},
	Time: TimeConfiguration{
		EventPollDelay: 16,
	},
}

// LoadConfiguration reads configuration from the environment. Files are
// .env files filling in variables the environment does not set, missing
// files are skipped.
func LoadConfiguration(files ...string) (Configuration, error) {
	envy.Reload()
	for _, file := range files {
		vars, err := godotenv.Read(file)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return Configuration{}, errors.Wrapf(err, "read %s", file)
		}
		for k, v := range vars {
			if _, set := os.LookupEnv(k); !set {
				envy.Set(k, v)
			}
		}
	}

	cfg := DefaultConfiguration
	cfg.App.Name = envy.Get(EnvAppName, cfg.App.Name)
	cfg.Device.WindowSystem = envy.Get(EnvWindowSystem, cfg.Device.WindowSystem)
	cfg.Device.Power = envy.Get(EnvPower, cfg.Device.Power)
	cfg.Log.Level = strings.ToLower(envy.Get(EnvLogLevel, cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(envy.Get(EnvLogFormat, cfg.Log.Format))
	cfg.Window.Title = envy.Get(EnvWindowTitle, cfg.Window.Title)

	if exts := envy.Get(EnvDeviceExtensions, ""); exts != "" {
		for _, ext := range strings.Split(exts, ",") {
			if ext = strings.TrimSpace(ext); ext != "" {
				cfg.Device.Extensions = append(cfg.Device.Extensions, ext)
			}
		}
	}

	var err error
	if cfg.Device.Validation, err = envBool(EnvValidation, cfg.Device.Validation); err != nil {
		return Configuration{}, err
	}
	if cfg.App.Version, err = envUint32(EnvAppVersion, cfg.App.Version); err != nil {
		return Configuration{}, err
	}
	if cfg.Window.Width, err = envUint32(EnvWindowWidth, cfg.Window.Width); err != nil {
		return Configuration{}, err
	}
	if cfg.Window.Height, err = envUint32(EnvWindowHeight, cfg.Window.Height); err != nil {
		return Configuration{}, err
	}
	delay, err := envUint32(EnvEventPollDelay, uint32(cfg.Time.EventPollDelay))
	if err != nil {
		return Configuration{}, err
	}
	cfg.Time.EventPollDelay = int(delay)

	return cfg, cfg.Validate()
}

// Validate checks the values that are only parsed later.
func (cfg Configuration) Validate() error {
	if _, err := device.PlatformByName(cfg.Device.WindowSystem); err != nil {
		return errors.Wrap(err, EnvWindowSystem)
	}
	if cfg.Device.Power != "" {
		if _, err := device.ParsePowerState(cfg.Device.Power); err != nil {
			return errors.Wrap(err, EnvPower)
		}
	}
	if _, err := ParseLogLevel(cfg.Log.Level); err != nil {
		return errors.Wrap(err, EnvLogLevel)
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return errors.Newf("%s: unknown log format %q", EnvLogFormat, cfg.Log.Format)
	}
	return nil
}

// Options builds bring-up options from the configuration. The logger,
// the platform and the power probe are left to the caller.
func (cfg Configuration) Options(level device.LogLevel) device.Options {
	return device.Options{
		AppName:          cfg.App.Name,
		AppVersion:       cfg.App.Version,
		Validation:       cfg.Device.Validation,
		LogLevel:         level,
		DeviceExtensions: cfg.Device.Extensions,
	}
}

// PowerProbe returns the configured power override, or probe when unset.
func (cfg Configuration) PowerProbe(probe func() device.PowerState) func() device.PowerState {
	if cfg.Device.Power == "" {
		return probe
	}
	state, err := device.ParsePowerState(cfg.Device.Power)
	if err != nil {
		return probe
	}
	return func() device.PowerState { return state }
}

func envBool(key string, value bool) (bool, error) {
	s := envy.Get(key, "")
	if s == "" {
		return value, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.Wrapf(err, "%s", key)
	}
	return b, nil
}

func envUint32(key string, value uint32) (uint32, error) {
	s := envy.Get(key, "")
	if s == "" {
		return value, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "%s", key)
	}
	return uint32(n), nil
}
