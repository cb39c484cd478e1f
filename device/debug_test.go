// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/devblok/gravity/device"
)

func TestDebugLogger(t *testing.T) {
	c := qt.New(t)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	report := device.DebugLogger(logger)

	for flags, level := range map[device.DebugReportFlags]logrus.Level{
		device.DebugReportError:                                 logrus.ErrorLevel,
		device.DebugReportError | device.DebugReportWarning:     logrus.ErrorLevel,
		device.DebugReportWarning:                               logrus.WarnLevel,
		device.DebugReportPerformanceWarning:                    logrus.WarnLevel,
		device.DebugReportDebug:                                 logrus.DebugLevel,
		device.DebugReportInformation:                           logrus.InfoLevel,
		device.DebugReportInformation | device.DebugReportDebug: logrus.DebugLevel,
	} {
		hook.Reset()
		report(device.DebugMessage{Flags: flags, LayerPrefix: "Loader", Code: 3, Message: "message"})
		entry := hook.LastEntry()
		c.Assert(entry, qt.Not(qt.IsNil))
		c.Check(entry.Level, qt.Equals, level, qt.Commentf("flags %b", flags))
		c.Check(entry.Data["layer"], qt.Equals, "Loader")
	}
}
