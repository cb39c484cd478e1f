// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package vkdriver implements device.Driver on top of the Vulkan loader.
package vkdriver

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/devblok/vulkan"

	"github.com/devblok/gravity/device"
)

// New loads the Vulkan API. procAddr is a vkGetInstanceProcAddr obtained
// from a windowing library, nil loads the system default.
func New(procAddr unsafe.Pointer) (*Driver, error) {
	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, errors.Wrap(err, "vk.SetDefaultGetInstanceProcAddr()")
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "vk.Init()")
	}
	return &Driver{}, nil
}

// Driver is the live Vulkan driver.
type Driver struct{}

var _ device.Driver = (*Driver)(nil)

// InstanceLayers implements interface
func (Driver) InstanceLayers() ([]device.LayerRecord, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceLayerProperties()")
	}
	props := make([]vk.LayerProperties, count)
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, props)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceLayerProperties()")
	}

	layers := make([]device.LayerRecord, 0, count)
	for _, p := range props[:count] {
		p.Deref()
		layers = append(layers, device.LayerRecord{
			Name:                  vk.ToString(p.LayerName[:]),
			Description:           vk.ToString(p.Description[:]),
			SpecVersion:           p.SpecVersion,
			ImplementationVersion: p.ImplementationVersion,
		})
	}
	return layers, nil
}

// InstanceExtensions implements interface
func (Driver) InstanceExtensions() ([]device.ExtensionRecord, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceExtensionProperties()")
	}
	props := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, props)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceExtensionProperties()")
	}
	return extensionRecords(props[:count]), nil
}

// CreateInstance implements interface
func (Driver) CreateInstance(info device.InstanceInfo) (device.Instance, error) {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeString(info.AppName),
		ApplicationVersion: info.AppVersion,
		PEngineName:        safeString(info.EngineName),
		EngineVersion:      info.EngineVersion,
		ApiVersion:         device.MakeVersion(info.APIVersion),
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: safeStrings(info.Extensions),
		EnabledLayerCount:       uint32(len(info.Layers)),
		PpEnabledLayerNames:     safeStrings(info.Layers),
	}

	var instance vk.Instance
	switch ret := vk.CreateInstance(&instanceInfo, nil, &instance); ret {
	case vk.Success:
	case vk.ErrorIncompatibleDriver:
		return nil, errors.New("vk.CreateInstance(): could not find a compatible Vulkan ICD")
	case vk.ErrorExtensionNotPresent:
		return nil, errors.New("vk.CreateInstance(): could not find one or more extensions")
	default:
		return nil, errors.Wrap(vk.Error(ret), "vk.CreateInstance()")
	}

	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, errors.Wrap(err, "vk.InitInstance()")
	}
	return instance, nil
}

// debugReport adapts fn to the loader's callback signature. Messages
// never abort the call that raised them.
func debugReport(fn device.DebugFunc) vk.DebugReportCallbackFunc {
	return func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
		object uint, location uint, messageCode int32, pLayerPrefix string,
		pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
		fn(device.DebugMessage{
			Flags:       device.DebugReportFlags(flags),
			LayerPrefix: pLayerPrefix,
			Code:        messageCode,
			Message:     pMessage,
		})
		return vk.Bool32(vk.False)
	}
}

// CreateDebugCallback implements interface
func (Driver) CreateDebugCallback(inst device.Instance, flags device.DebugReportFlags, fn device.DebugFunc) (device.DebugCallback, error) {
	createInfo := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(flags),
		PfnCallback: debugReport(fn),
	}

	var callback vk.DebugReportCallback
	if err := vk.Error(vk.CreateDebugReportCallback(inst.(vk.Instance), &createInfo, nil, &callback)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateDebugReportCallback()")
	}
	return callback, nil
}

// PhysicalDevices implements interface
func (Driver) PhysicalDevices(inst device.Instance) ([]device.DeviceDescriptor, error) {
	instance := inst.(vk.Instance)

	var count uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumeratePhysicalDevices()")
	}
	handles := make([]vk.PhysicalDevice, count)
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &count, handles)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumeratePhysicalDevices()")
	}

	devices := make([]device.DeviceDescriptor, 0, count)
	for _, pd := range handles[:count] {
		devices = append(devices, describe(pd))
	}
	return devices, nil
}

func describe(pd vk.PhysicalDevice) device.DeviceDescriptor {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(pd, &props)
	props.Deref()

	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(pd, &memoryProperties)
	memoryProperties.Deref()

	var memory uint64
	for i := uint32(0); i < memoryProperties.MemoryHeapCount; i++ {
		memoryProperties.MemoryHeaps[i].Deref()
		memory += uint64(memoryProperties.MemoryHeaps[i].Size)
	}

	return device.DeviceDescriptor{
		Handle:        pd,
		Name:          vk.ToString(props.DeviceName[:]),
		Category:      category(props.DeviceType),
		APIVersion:    device.DecodeVersion(props.ApiVersion),
		DriverVersion: props.DriverVersion,
		VendorID:      props.VendorID,
		DeviceID:      props.DeviceID,
		Memory:        memory,
	}
}

func category(t vk.PhysicalDeviceType) device.Category {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return device.CategoryIntegrated
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return device.CategoryDiscrete
	case vk.PhysicalDeviceTypeVirtualGpu:
		return device.CategoryVirtual
	case vk.PhysicalDeviceTypeCpu:
		return device.CategoryCPU
	}
	return device.CategoryOther
}

// DeviceExtensions implements interface
func (Driver) DeviceExtensions(dev device.DeviceDescriptor) ([]device.ExtensionRecord, error) {
	pd := dev.Handle.(vk.PhysicalDevice)

	var count uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(pd, "", &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateDeviceExtensionProperties()")
	}
	props := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(pd, "", &count, props)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateDeviceExtensionProperties()")
	}
	return extensionRecords(props[:count]), nil
}

// QueueFamilies implements interface
func (Driver) QueueFamilies(dev device.DeviceDescriptor) ([]device.QueueFamilyDescriptor, error) {
	pd := dev.Handle.(vk.PhysicalDevice)

	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, props)

	families := make([]device.QueueFamilyDescriptor, 0, count)
	for i, p := range props[:count] {
		p.Deref()
		families = append(families, device.QueueFamilyDescriptor{
			Index:      i,
			Graphics:   p.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0,
			QueueCount: p.QueueCount,
		})
	}
	return families, nil
}

// SurfaceSupport implements interface
func (Driver) SurfaceSupport(dev device.DeviceDescriptor, family int, surface device.Surface) (bool, error) {
	var supported vk.Bool32
	ret := vk.GetPhysicalDeviceSurfaceSupport(dev.Handle.(vk.PhysicalDevice), uint32(family), surface.(vk.Surface), &supported)
	if err := vk.Error(ret); err != nil {
		return false, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceSupport()")
	}
	return supported.B(), nil
}

// SurfaceFormats implements interface
func (Driver) SurfaceFormats(dev device.DeviceDescriptor, surface device.Surface) ([]device.SurfaceFormat, error) {
	pd := dev.Handle.(vk.PhysicalDevice)
	s := surface.(vk.Surface)

	var count uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(pd, s, &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceFormats()")
	}
	props := make([]vk.SurfaceFormat, count)
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(pd, s, &count, props)); err != nil {
		return nil, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceFormats()")
	}

	formats := make([]device.SurfaceFormat, 0, count)
	for _, f := range props[:count] {
		f.Deref()
		formats = append(formats, device.SurfaceFormat{
			Format:     uint32(f.Format),
			ColorSpace: uint32(f.ColorSpace),
		})
	}
	return formats, nil
}

// CreateDevice implements interface
func (Driver) CreateDevice(dev device.DeviceDescriptor, info device.DeviceInfo) (device.Device, error) {
	queueInfos := make([]vk.DeviceQueueCreateInfo, 0, len(info.Queues))
	for _, q := range info.Queues {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(q.FamilyIndex),
			QueueCount:       uint32(len(q.Priorities)),
			PQueuePriorities: q.Priorities,
		})
	}

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: safeStrings(info.Extensions),
	}

	var logical vk.Device
	switch ret := vk.CreateDevice(dev.Handle.(vk.PhysicalDevice), &dci, nil, &logical); ret {
	case vk.Success:
	case vk.ErrorIncompatibleDriver:
		return nil, errors.New("vk.CreateDevice(): could not find a compatible Vulkan ICD")
	case vk.ErrorExtensionNotPresent:
		return nil, errors.New("vk.CreateDevice(): could not find one or more extensions")
	default:
		return nil, errors.Wrap(vk.Error(ret), "vk.CreateDevice()")
	}
	return logical, nil
}

// DestroyDebugCallback implements interface
func (Driver) DestroyDebugCallback(inst device.Instance, cb device.DebugCallback) {
	vk.DestroyDebugReportCallback(inst.(vk.Instance), cb.(vk.DebugReportCallback), nil)
}

// DestroyDevice implements interface
func (Driver) DestroyDevice(dev device.Device) {
	vk.DestroyDevice(dev.(vk.Device), nil)
}

// DestroySurface implements interface
func (Driver) DestroySurface(inst device.Instance, surface device.Surface) {
	vk.DestroySurface(inst.(vk.Instance), surface.(vk.Surface), nil)
}

// DestroyInstance implements interface
func (Driver) DestroyInstance(inst device.Instance) {
	vk.DestroyInstance(inst.(vk.Instance), nil)
}

func extensionRecords(props []vk.ExtensionProperties) []device.ExtensionRecord {
	exts := make([]device.ExtensionRecord, 0, len(props))
	for _, p := range props {
		p.Deref()
		exts = append(exts, device.ExtensionRecord{
			Name:        vk.ToString(p.ExtensionName[:]),
			SpecVersion: p.SpecVersion,
		})
	}
	return exts
}
