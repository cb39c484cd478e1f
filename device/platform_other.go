// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

//go:build !linux && !windows && !darwin && !android
// +build !linux,!windows,!darwin,!android

package device

var defaultPlatform = PlatformXCB
