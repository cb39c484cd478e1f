// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

// InstanceInfo describes the instance a Driver should create.
type InstanceInfo struct {
	AppName       string
	AppVersion    uint32
	EngineName    string
	EngineVersion uint32
	APIVersion    Version
	Layers        []string
	Extensions    []string
}

// QueueInfo requests queues from one family.
type QueueInfo struct {
	FamilyIndex int
	Priorities  []float32
}

// DeviceInfo describes the logical device a Driver should create.
type DeviceInfo struct {
	Queues     []QueueInfo
	Extensions []string
}

// DebugMessage is one message delivered by the debug report callback.
type DebugMessage struct {
	Flags       DebugReportFlags
	LayerPrefix string
	Code        int32
	Message     string
}

// DebugFunc receives debug report messages.
type DebugFunc func(DebugMessage)

// Driver is the underlying graphics driver. Every call blocks
// until the driver answers. Handles returned are owned by the Driver.
type Driver interface {
	// InstanceLayers lists the layers the loader knows about
	InstanceLayers() ([]LayerRecord, error)

	// InstanceExtensions lists the instance extensions available
	InstanceExtensions() ([]ExtensionRecord, error)

	// CreateInstance creates the top-level instance
	CreateInstance(InstanceInfo) (Instance, error)

	// CreateDebugCallback registers fn for the given report flags
	CreateDebugCallback(Instance, DebugReportFlags, DebugFunc) (DebugCallback, error)

	// PhysicalDevices enumerates physical devices of the instance
	PhysicalDevices(Instance) ([]DeviceDescriptor, error)

	// DeviceExtensions lists the extensions of a physical device
	DeviceExtensions(DeviceDescriptor) ([]ExtensionRecord, error)

	// QueueFamilies lists queue families of a physical device,
	// Present is left unset
	QueueFamilies(DeviceDescriptor) ([]QueueFamilyDescriptor, error)

	// SurfaceSupport reports if a queue family can present to surface
	SurfaceSupport(dev DeviceDescriptor, family int, surface Surface) (bool, error)

	// SurfaceFormats lists formats the device supports for surface
	SurfaceFormats(DeviceDescriptor, Surface) ([]SurfaceFormat, error)

	// CreateDevice creates a logical device
	CreateDevice(DeviceDescriptor, DeviceInfo) (Device, error)

	DestroyDebugCallback(Instance, DebugCallback)
	DestroyDevice(Device)
	DestroySurface(Instance, Surface)
	DestroyInstance(Instance)
}

// Window is the windowing collaborator that binds a presentable
// surface to an instance.
type Window interface {
	// CreateSurface creates the window surface for inst
	CreateSurface(inst Instance) (Surface, error)

	// Surface returns the surface created last, or nil
	Surface() Surface
}
