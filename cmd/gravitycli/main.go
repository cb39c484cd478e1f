// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command gravitycli replays recorded device profiles through the
// bring-up and prints what would be selected. It can also capture
// the profile of the machine it runs on.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/gravity/core"
	"github.com/devblok/gravity/device"
	"github.com/devblok/gravity/device/vkdriver"
	"github.com/devblok/gravity/power"
	"github.com/devblok/gravity/profile"
	"github.com/devblok/gravity/window"
)

func init() {
	runtime.LockOSThread()
}

type options struct {
	profile    string
	builtin    string
	name       string
	power      string
	wsi        string
	validation bool
	list       bool
	capture    string
}

func main() {
	var opts options
	flag.StringVar(&opts.profile, "profile", "", "profile archive or JSON file to replay")
	flag.StringVar(&opts.builtin, "builtin", "", "built-in profile to replay")
	flag.StringVar(&opts.name, "name", "", "profile to load from the archive, defaults to the first")
	flag.StringVar(&opts.power, "power", "", "power state to select under, defaults to the system's")
	flag.StringVar(&opts.wsi, "wsi", "", "window system to negotiate, defaults to the build target's")
	flag.BoolVar(&opts.validation, "validation", true, "ask for a validation layer")
	flag.BoolVar(&opts.list, "list", false, "list available profiles")
	flag.StringVar(&opts.capture, "capture", "", "capture this machine into an archive or JSON file")
	flag.Parse()

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts options, out io.Writer) error {
	cfg, err := core.LoadConfiguration(".env")
	if err != nil {
		return err
	}
	logger, level, err := core.NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	switch {
	case opts.list:
		return list(opts, out)
	case opts.capture != "":
		return capture(opts, logger, out)
	}

	p, err := load(opts)
	if err != nil {
		return err
	}
	platform, err := device.PlatformByName(opts.wsi)
	if err != nil {
		return err
	}

	bopts := cfg.Options(level)
	bopts.Validation = opts.validation
	bopts.Platform = platform
	bopts.Logger = logger
	bopts.PowerState = cfg.PowerProbe(power.Query)
	if opts.power != "" {
		state, err := device.ParsePowerState(opts.power)
		if err != nil {
			return err
		}
		bopts.PowerState = func() device.PowerState { return state }
	}

	driver := profile.NewDriver(p)
	ctx, err := device.BringUp(driver, profile.NewWindow(driver), bopts)
	rep := newReport(p, ctx, err)
	if ctx != nil {
		ctx.Destroy()
	}
	rep.Releases = driver.Releases()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func list(opts options, out io.Writer) error {
	if opts.profile == "" {
		for _, name := range profile.BuiltinNames() {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	ar, err := profile.OpenArchiveFile(opts.profile)
	if err != nil {
		return err
	}
	defer ar.Close()
	for _, name := range ar.Names() {
		fmt.Fprintln(out, name)
	}
	return nil
}

func load(opts options) (profile.Profile, error) {
	switch {
	case opts.profile != "" && opts.builtin != "":
		return profile.Profile{}, errors.New("-profile and -builtin are exclusive")
	case opts.profile == "":
		name := opts.builtin
		if name == "" {
			name = "hybrid-laptop"
		}
		return profile.Builtin(name)
	case strings.EqualFold(filepath.Ext(opts.profile), ".json"):
		f, err := os.Open(opts.profile)
		if err != nil {
			return profile.Profile{}, err
		}
		defer f.Close()
		return profile.Decode(f)
	}

	ar, err := profile.OpenArchiveFile(opts.profile)
	if err != nil {
		return profile.Profile{}, err
	}
	defer ar.Close()

	name := opts.name
	if name == "" {
		names := ar.Names()
		if len(names) == 0 {
			return profile.Profile{}, errors.Newf("%s holds no profiles", opts.profile)
		}
		name = names[0]
	}
	return ar.Load(name)
}

func capture(opts options, logger log.FieldLogger, out io.Writer) error {
	quit, err := window.Init()
	if err != nil {
		return err
	}
	defer quit()

	driver, err := vkdriver.New(window.ProcAddr())
	if err != nil {
		return err
	}
	win, err := window.New(window.Configuration{Title: "gravity capture", Width: 64, Height: 64})
	if err != nil {
		return err
	}
	defer win.Destroy()

	platform, err := win.Platform()
	if opts.wsi != "" {
		platform, err = device.PlatformByName(opts.wsi)
	}
	if err != nil {
		return err
	}

	name := opts.name
	if name == "" {
		name, _ = os.Hostname()
	}
	p, err := profile.Capture(driver, win, platform, name)
	if err != nil {
		return err
	}
	logger.WithField("devices", len(p.Devices)).Info("Captured profile")

	f, err := os.Create(opts.capture)
	if err != nil {
		return err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(opts.capture), ".json") {
		err = p.Encode(f)
	} else {
		err = profile.WriteArchive(f, profile.Header{
			Author:      name,
			DateCreated: time.Now().Unix(),
			Version:     1,
		}, p)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, opts.capture)
	return f.Sync()
}
