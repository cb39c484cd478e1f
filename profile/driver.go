// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package profile

import (
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/devblok/gravity/device"
)

// Op names a driver call.
type Op string

// Driver calls recorded in the journal
const (
	OpInstanceLayers       Op = "InstanceLayers"
	OpInstanceExtensions   Op = "InstanceExtensions"
	OpCreateInstance       Op = "CreateInstance"
	OpCreateDebugCallback  Op = "CreateDebugCallback"
	OpPhysicalDevices      Op = "PhysicalDevices"
	OpDeviceExtensions     Op = "DeviceExtensions"
	OpQueueFamilies        Op = "QueueFamilies"
	OpSurfaceSupport       Op = "SurfaceSupport"
	OpSurfaceFormats       Op = "SurfaceFormats"
	OpCreateSurface        Op = "CreateSurface"
	OpCreateDevice         Op = "CreateDevice"
	OpDestroyDebugCallback Op = "DestroyDebugCallback"
	OpDestroyDevice        Op = "DestroyDevice"
	OpDestroySurface       Op = "DestroySurface"
	OpDestroyInstance      Op = "DestroyInstance"
)

type (
	instance struct {
		info device.InstanceInfo
	}
	surface struct {
		inst *instance
	}
	logical struct {
		dev  int
		info device.DeviceInfo
	}
	debugCallback struct {
		flags device.DebugReportFlags
		fn    device.DebugFunc
	}
)

// Driver replays a Profile. It records every call and can be told to
// fail any of them. Safe for concurrent use.
type Driver struct {
	profile Profile

	mutex     sync.Mutex
	journal   []Op
	failures  map[Op]error
	live      map[interface{}]Op
	callbacks []*debugCallback
}

var _ device.Driver = (*Driver)(nil)

// NewDriver creates a driver replaying p.
func NewDriver(p Profile) *Driver {
	return &Driver{
		profile:  p,
		failures: make(map[Op]error),
		live:     make(map[interface{}]Op),
	}
}

// Profile returns the profile being replayed.
func (d *Driver) Profile() Profile {
	return d.profile
}

// FailOn makes every following op call return err. A nil err clears it.
func (d *Driver) FailOn(op Op, err error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if err == nil {
		delete(d.failures, op)
		return
	}
	d.failures[op] = err
}

// Journal returns the calls made so far, in order.
func (d *Driver) Journal() []Op {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return append([]Op(nil), d.journal...)
}

// Releases returns the destroy calls made so far, in order.
func (d *Driver) Releases() []Op {
	var releases []Op
	for _, op := range d.Journal() {
		switch op {
		case OpDestroyDebugCallback, OpDestroyDevice, OpDestroySurface, OpDestroyInstance:
			releases = append(releases, op)
		}
	}
	return releases
}

// Live returns the number of objects created and not yet destroyed.
func (d *Driver) Live() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return len(d.live)
}

// Emit delivers msg to every debug callback registered for its flags.
func (d *Driver) Emit(msg device.DebugMessage) {
	d.mutex.Lock()
	callbacks := append([]*debugCallback(nil), d.callbacks...)
	d.mutex.Unlock()

	for _, cb := range callbacks {
		if cb.flags&msg.Flags != 0 {
			cb.fn(msg)
		}
	}
}

func (d *Driver) call(op Op) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.journal = append(d.journal, op)
	return d.failures[op]
}

func (d *Driver) track(handle interface{}, op Op) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.live[handle] = op
}

func (d *Driver) untrack(handle interface{}) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	delete(d.live, handle)
}

func (d *Driver) deviceProfile(dev device.DeviceDescriptor) (DeviceProfile, error) {
	i, ok := dev.Handle.(int)
	if !ok || i < 0 || i >= len(d.profile.Devices) {
		return DeviceProfile{}, errors.Newf("%q is not a device of profile %q", dev.Name, d.profile.Name)
	}
	return d.profile.Devices[i], nil
}

// InstanceLayers implements interface
func (d *Driver) InstanceLayers() ([]device.LayerRecord, error) {
	if err := d.call(OpInstanceLayers); err != nil {
		return nil, err
	}
	layers := make([]device.LayerRecord, 0, len(d.profile.Layers))
	for _, name := range d.profile.Layers {
		layers = append(layers, device.LayerRecord{
			Name:                  name,
			SpecVersion:           device.MakeVersion(device.APIVersion),
			ImplementationVersion: 1,
		})
	}
	return layers, nil
}

// InstanceExtensions implements interface
func (d *Driver) InstanceExtensions() ([]device.ExtensionRecord, error) {
	if err := d.call(OpInstanceExtensions); err != nil {
		return nil, err
	}
	return extensionRecords(d.profile.InstanceExtensions), nil
}

// CreateInstance implements interface. Unknown layers or extensions
// fail like a real loader would.
func (d *Driver) CreateInstance(info device.InstanceInfo) (device.Instance, error) {
	if err := d.call(OpCreateInstance); err != nil {
		return nil, err
	}
	for _, name := range info.Layers {
		if !contains(d.profile.Layers, name) {
			return nil, errors.Newf("layer %s not present", name)
		}
	}
	for _, name := range info.Extensions {
		if !contains(d.profile.InstanceExtensions, name) {
			return nil, errors.Newf("instance extension %s not present", name)
		}
	}
	inst := &instance{info: info}
	d.track(inst, OpCreateInstance)
	return inst, nil
}

// CreateDebugCallback implements interface
func (d *Driver) CreateDebugCallback(inst device.Instance, flags device.DebugReportFlags, fn device.DebugFunc) (device.DebugCallback, error) {
	if err := d.call(OpCreateDebugCallback); err != nil {
		return nil, err
	}
	if _, ok := inst.(*instance); !ok {
		return nil, errors.New("debug callback needs an instance")
	}
	cb := &debugCallback{flags: flags, fn: fn}
	d.track(cb, OpCreateDebugCallback)

	d.mutex.Lock()
	d.callbacks = append(d.callbacks, cb)
	d.mutex.Unlock()
	return cb, nil
}

// PhysicalDevices implements interface
func (d *Driver) PhysicalDevices(inst device.Instance) ([]device.DeviceDescriptor, error) {
	if err := d.call(OpPhysicalDevices); err != nil {
		return nil, err
	}
	return d.profile.Descriptors(), nil
}

// DeviceExtensions implements interface
func (d *Driver) DeviceExtensions(dev device.DeviceDescriptor) ([]device.ExtensionRecord, error) {
	if err := d.call(OpDeviceExtensions); err != nil {
		return nil, err
	}
	dp, err := d.deviceProfile(dev)
	if err != nil {
		return nil, err
	}
	return extensionRecords(dp.Extensions), nil
}

// QueueFamilies implements interface
func (d *Driver) QueueFamilies(dev device.DeviceDescriptor) ([]device.QueueFamilyDescriptor, error) {
	if err := d.call(OpQueueFamilies); err != nil {
		return nil, err
	}
	dp, err := d.deviceProfile(dev)
	if err != nil {
		return nil, err
	}
	families := make([]device.QueueFamilyDescriptor, 0, len(dp.QueueFamilies))
	for i, qf := range dp.QueueFamilies {
		families = append(families, device.QueueFamilyDescriptor{
			Index:      i,
			Graphics:   qf.Graphics,
			QueueCount: qf.Count,
		})
	}
	return families, nil
}

// SurfaceSupport implements interface
func (d *Driver) SurfaceSupport(dev device.DeviceDescriptor, family int, s device.Surface) (bool, error) {
	if err := d.call(OpSurfaceSupport); err != nil {
		return false, err
	}
	dp, err := d.deviceProfile(dev)
	if err != nil {
		return false, err
	}
	if family < 0 || family >= len(dp.QueueFamilies) {
		return false, errors.Newf("queue family %d out of range", family)
	}
	return dp.QueueFamilies[family].Present, nil
}

// SurfaceFormats implements interface
func (d *Driver) SurfaceFormats(dev device.DeviceDescriptor, s device.Surface) ([]device.SurfaceFormat, error) {
	if err := d.call(OpSurfaceFormats); err != nil {
		return nil, err
	}
	dp, err := d.deviceProfile(dev)
	if err != nil {
		return nil, err
	}
	return append([]device.SurfaceFormat(nil), dp.SurfaceFormats...), nil
}

func (d *Driver) createSurface(inst device.Instance) (device.Surface, error) {
	if err := d.call(OpCreateSurface); err != nil {
		return nil, err
	}
	i, ok := inst.(*instance)
	if !ok {
		return nil, errors.New("surface needs an instance")
	}
	s := &surface{inst: i}
	d.track(s, OpCreateSurface)
	return s, nil
}

// CreateDevice implements interface
func (d *Driver) CreateDevice(dev device.DeviceDescriptor, info device.DeviceInfo) (device.Device, error) {
	if err := d.call(OpCreateDevice); err != nil {
		return nil, err
	}
	dp, err := d.deviceProfile(dev)
	if err != nil {
		return nil, err
	}
	for _, name := range info.Extensions {
		if !contains(dp.Extensions, name) {
			return nil, errors.Newf("device extension %s not present on %q", name, dp.Name)
		}
	}
	for _, q := range info.Queues {
		if q.FamilyIndex < 0 || q.FamilyIndex >= len(dp.QueueFamilies) {
			return nil, errors.Newf("queue family %d out of range", q.FamilyIndex)
		}
		if len(q.Priorities) == 0 {
			return nil, errors.Newf("queue family %d requested without queues", q.FamilyIndex)
		}
	}
	l := &logical{dev: dev.Handle.(int), info: info}
	d.track(l, OpCreateDevice)
	return l, nil
}

// DestroyDebugCallback implements interface
func (d *Driver) DestroyDebugCallback(inst device.Instance, cb device.DebugCallback) {
	d.call(OpDestroyDebugCallback)
	d.untrack(cb)

	d.mutex.Lock()
	defer d.mutex.Unlock()
	for i, registered := range d.callbacks {
		if registered == cb {
			d.callbacks = append(d.callbacks[:i], d.callbacks[i+1:]...)
			break
		}
	}
}

// DestroyDevice implements interface
func (d *Driver) DestroyDevice(dev device.Device) {
	d.call(OpDestroyDevice)
	d.untrack(dev)
}

// DestroySurface implements interface
func (d *Driver) DestroySurface(inst device.Instance, s device.Surface) {
	d.call(OpDestroySurface)
	d.untrack(s)
}

// DestroyInstance implements interface
func (d *Driver) DestroyInstance(inst device.Instance) {
	d.call(OpDestroyInstance)
	d.untrack(inst)
}
