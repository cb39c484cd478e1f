// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package profile

import (
	"sync"

	"github.com/devblok/gravity/device"
)

// Window is a headless window creating surfaces through a replay Driver.
type Window struct {
	driver *Driver

	mutex   sync.Mutex
	surface device.Surface
	fail    error
}

var _ device.Window = (*Window)(nil)

// NewWindow creates a headless window on d.
func NewWindow(d *Driver) *Window {
	return &Window{driver: d}
}

// FailSurface makes surface creation return err. A nil err clears it.
func (w *Window) FailSurface(err error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.fail = err
}

// CreateSurface implements interface
func (w *Window) CreateSurface(inst device.Instance) (device.Surface, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.fail != nil {
		return nil, w.fail
	}
	s, err := w.driver.createSurface(inst)
	if err != nil {
		return nil, err
	}
	w.surface = s
	return s, nil
}

// Surface implements interface
func (w *Window) Surface() device.Surface {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.surface
}
