// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/gravity/device"
)

var logLevels = map[string]device.LogLevel{
	"disabled": device.LogDisabled,
	"error":    device.LogErrorOnly,
	"warn":     device.LogWarnError,
	"info":     device.LogInfoWarnError,
	"all":      device.LogAll,
}

// ParseLogLevel parses disabled, error, warn, info or all.
func ParseLogLevel(s string) (device.LogLevel, error) {
	level, ok := logLevels[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return device.LogDisabled, errors.Newf("unknown log level %q", s)
	}
	return level, nil
}

// NewLogger creates the logger for cfg writing to stderr, along with
// the level debug reporting is negotiated for.
func NewLogger(cfg LogConfiguration) (*log.Logger, device.LogLevel, error) {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg LogConfiguration, out io.Writer) (*log.Logger, device.LogLevel, error) {
	level, err := ParseLogLevel(cfg.Level)
	if err != nil {
		return nil, device.LogDisabled, err
	}

	logger := log.New()
	logger.SetOutput(out)
	switch level {
	case device.LogDisabled:
		logger.SetOutput(ioutil.Discard)
		logger.SetLevel(log.PanicLevel)
	case device.LogErrorOnly:
		logger.SetLevel(log.ErrorLevel)
	case device.LogWarnError:
		logger.SetLevel(log.WarnLevel)
	case device.LogInfoWarnError:
		logger.SetLevel(log.InfoLevel)
	case device.LogAll:
		logger.SetLevel(log.DebugLevel)
	}

	switch cfg.Format {
	case "", "text":
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		return nil, device.LogDisabled, errors.Newf("unknown log format %q", cfg.Format)
	}
	return logger, level, nil
}
