// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"github.com/cockroachdb/errors"
)

// Well known layer and extension names
const (
	KhronosValidationLayerName  = "VK_LAYER_KHRONOS_validation"
	StandardValidationLayerName = "VK_LAYER_LUNARG_standard_validation"
	DebugReportExtensionName    = "VK_EXT_debug_report"
	SwapchainExtensionName      = "VK_KHR_swapchain"
)

// ValidationLayerNames are tried in order, the first available one is enabled.
var ValidationLayerNames = []string{
	KhronosValidationLayerName,
	StandardValidationLayerName,
}

// DebugReportFlags selects which debug report messages are delivered.
// Values match VkDebugReportFlagBitsEXT.
type DebugReportFlags uint32

// Debug report flag bits
const (
	DebugReportInformation DebugReportFlags = 1 << iota
	DebugReportWarning
	DebugReportPerformanceWarning
	DebugReportError
	DebugReportDebug
)

// DebugReportFlagsFor returns the messages worth reporting at level.
func DebugReportFlagsFor(level LogLevel) DebugReportFlags {
	var flags DebugReportFlags
	if level >= LogAll {
		flags |= DebugReportDebug
	}
	if level >= LogInfoWarnError {
		flags |= DebugReportInformation
	}
	if level >= LogWarnError {
		flags |= DebugReportWarning | DebugReportPerformanceWarning
	}
	if level >= LogErrorOnly {
		flags |= DebugReportError
	}
	return flags
}

// NegotiatedFeatureSet is what an instance is created with.
type NegotiatedFeatureSet struct {
	Layers      []string
	Extensions  []string
	Validation  bool
	DebugReport bool
	DebugFlags  DebugReportFlags
}

// NegotiateInstanceFeatures decides which layers and extensions to enable.
// Validation and debug reporting are optional and silently left out when
// unavailable, window system extensions are mandatory.
func NegotiateInstanceFeatures(layers []LayerRecord, exts []ExtensionRecord, wantsValidation bool, level LogLevel, platform Platform) (NegotiatedFeatureSet, error) {
	var fs NegotiatedFeatureSet

	if wantsValidation {
		for _, name := range ValidationLayerNames {
			if hasLayer(layers, name) {
				fs.Layers = append(fs.Layers, name)
				fs.Validation = true
				break
			}
		}
	}

	wsi, err := ResolveWindowSystemExtensions(exts, platform)
	if err != nil {
		return NegotiatedFeatureSet{}, err
	}
	fs.Extensions = append(fs.Extensions, wsi...)

	if level > LogDisabled && hasExtension(exts, DebugReportExtensionName) {
		fs.Extensions = append(fs.Extensions, DebugReportExtensionName)
		fs.DebugReport = true
		fs.DebugFlags = DebugReportFlagsFor(level)
	}

	return fs, nil
}

// ResolveWindowSystemExtensions finds the base surface extension and the
// surface extension of platform in exts. Both must be present, they are
// returned base first.
func ResolveWindowSystemExtensions(exts []ExtensionRecord, platform Platform) ([]string, error) {
	var surfaceFound, platformFound bool
	for _, ext := range exts {
		switch ext.Name {
		case SurfaceExtensionName:
			surfaceFound = true
		case platform.SurfaceExtension:
			platformFound = true
		}
	}

	var count int
	if surfaceFound {
		count++
	}
	if platformFound && platform.SurfaceExtension != "" {
		count++
	}
	if count < 2 {
		return nil, errors.Wrapf(ErrInsufficientPlatformSupport,
			"%s window system matched %d of 2 surface extensions", platform.Name, count)
	}

	return []string{SurfaceExtensionName, platform.SurfaceExtension}, nil
}
