// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"github.com/cockroachdb/errors"
)

// package errors
var (
	ErrEnumeration                 = errors.New("driver enumeration returned no results")
	ErrInsufficientPlatformSupport = errors.New("window system extensions not available")
	ErrNoSuitableDevice            = errors.New("no suitable physical device")
	ErrNoQueueFamily               = errors.New("no graphics or present queue family")
	ErrMissingRequiredExtension    = errors.New("required device extension missing")
	ErrInstanceCreation            = errors.New("instance creation failed")
	ErrDebugCallback               = errors.New("debug report callback creation failed")
	ErrDeviceCreation              = errors.New("logical device creation failed")
	ErrSurfaceCreation             = errors.New("surface creation failed")
)

// Stage names a step of the bring-up sequence.
type Stage string

// Bring-up stages, in execution order
const (
	StageNegotiate         Stage = "negotiate"
	StageCreateInstance    Stage = "create-instance"
	StageDebugCallback     Stage = "create-debug-callback"
	StageEnumerateDevices  Stage = "enumerate-physical-devices"
	StageSelectDevice      Stage = "select-device"
	StageDeviceExtensions  Stage = "enumerate-device-extensions"
	StageConfirmExtensions Stage = "confirm-device-extensions"
	StageQueueFamilies     Stage = "query-queue-families"
	StageCreateSurface     Stage = "create-surface"
	StageResolveQueues     Stage = "resolve-queues"
	StageCreateDevice      Stage = "create-logical-device"
	StageSurfaceFormats    Stage = "query-surface-formats"
)

// BringUpError is the single error type returned by BringUp.
// Kind is one of the package errors.
type BringUpError struct {
	Stage Stage
	Kind  error
	Err   error
}

func (e *BringUpError) Error() string {
	return "bring-up failed at " + string(e.Stage) + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause
func (e *BringUpError) Unwrap() error {
	return e.Err
}

// Is matches the error kind
func (e *BringUpError) Is(target error) bool {
	return e.Kind == target
}

// kindOf finds which package error err was marked with.
func kindOf(err error, fallback error) error {
	for _, kind := range []error{
		ErrEnumeration,
		ErrInsufficientPlatformSupport,
		ErrNoSuitableDevice,
		ErrNoQueueFamily,
		ErrMissingRequiredExtension,
		ErrInstanceCreation,
		ErrDebugCallback,
		ErrDeviceCreation,
		ErrSurfaceCreation,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return fallback
}

func stageError(stage Stage, fallback error, err error) *BringUpError {
	kind := kindOf(err, fallback)
	return &BringUpError{
		Stage: stage,
		Kind:  kind,
		Err:   errors.Mark(err, kind),
	}
}

// ValidationSensitive reports whether err failed a bring-up stage the
// validation layer takes part in. Only those can succeed on a retry
// without validation.
func ValidationSensitive(err error) bool {
	var bue *BringUpError
	if !errors.As(err, &bue) {
		return false
	}
	switch bue.Stage {
	case StageCreateInstance, StageDebugCallback, StageCreateDevice:
		return true
	}
	return false
}
