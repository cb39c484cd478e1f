// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

//go:build linux && !android
// +build linux,!android

package device

var defaultPlatform = PlatformXCB
