// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	log "github.com/sirupsen/logrus"
)

// DebugLogger routes debug report messages to logger by severity.
func DebugLogger(logger log.FieldLogger) DebugFunc {
	return func(msg DebugMessage) {
		entry := logger.WithFields(log.Fields{
			"layer": msg.LayerPrefix,
			"code":  msg.Code,
		})
		switch {
		case msg.Flags&DebugReportError != 0:
			entry.Error(msg.Message)
		case msg.Flags&(DebugReportWarning|DebugReportPerformanceWarning) != 0:
			entry.Warn(msg.Message)
		case msg.Flags&DebugReportDebug != 0:
			entry.Debug(msg.Message)
		default:
			entry.Info(msg.Message)
		}
	}
}
