// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/loov/hrtime"
	log "github.com/sirupsen/logrus"
)

// Engine identity passed to the driver on instance creation
const (
	EngineName    = "Lunar Gravity Graphics Engine"
	EngineVersion = 1
)

// APIVersion is the API version instances are created for.
var APIVersion = Version{Major: 1, Minor: 0}

// Options configures a bring-up.
type Options struct {
	AppName    string
	AppVersion uint32

	// Validation asks for a validation layer, if one is available
	Validation bool

	// LogLevel decides if debug reporting is negotiated
	LogLevel LogLevel

	// Platform is the window system to negotiate surface extensions for,
	// zero value means DefaultPlatform
	Platform Platform

	// PowerState is queried only when both a discrete and an integrated
	// device are available, nil reads as PowerNone
	PowerState func() PowerState

	// DeviceExtensions are required next to the swapchain extension
	DeviceExtensions []string

	Logger log.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.Platform.SurfaceExtension == "" {
		o.Platform = DefaultPlatform()
	}
	if o.PowerState == nil {
		o.PowerState = func() PowerState { return PowerNone }
	}
	if o.Logger == nil {
		o.Logger = log.StandardLogger()
	}
	return o
}

// GraphicsContext is the result of a successful bring-up. It owns the
// instance, the surface and the logical device until Destroy is called.
type GraphicsContext struct {
	ID uuid.UUID

	Features         NegotiatedFeatureSet
	PhysicalDevice   DeviceDescriptor
	DeviceExtensions []string
	Queues           QueueSelection
	SurfaceFormats   []SurfaceFormat
	SurfaceFormat    SurfaceFormat

	// Power is the power state the device was selected under
	Power PowerState

	Instance      Instance
	DebugCallback DebugCallback
	Surface       Surface
	Device        Device

	driver  Driver
	log     log.FieldLogger
	created struct {
		instance, debugCallback, surface, device bool
	}
}

type bringUp struct {
	ctx    *GraphicsContext
	driver Driver
	window Window
	opts   Options

	devices  []DeviceDescriptor
	families []QueueFamilyDescriptor
}

type bringUpStep struct {
	stage Stage
	kind  error
	run   func() error
}

// BringUp negotiates features, selects a physical device and creates
// a logical device presenting to w. Stages run strictly in order and
// a failing stage releases everything created before it.
func BringUp(d Driver, w Window, opts Options) (*GraphicsContext, error) {
	opts = opts.withDefaults()
	ctx := &GraphicsContext{
		ID:     uuid.New(),
		driver: d,
	}
	ctx.log = opts.Logger.WithField("context", ctx.ID.String())

	b := &bringUp{
		ctx:    ctx,
		driver: d,
		window: w,
		opts:   opts,
	}

	steps := []bringUpStep{
		{StageNegotiate, ErrEnumeration, b.negotiate},
		{StageCreateInstance, ErrInstanceCreation, b.createInstance},
		{StageDebugCallback, ErrDebugCallback, b.createDebugCallback},
		{StageEnumerateDevices, ErrEnumeration, b.enumerateDevices},
		{StageSelectDevice, ErrNoSuitableDevice, b.selectDevice},
		{StageDeviceExtensions, ErrMissingRequiredExtension, b.confirmDeviceExtensions},
		{StageQueueFamilies, ErrEnumeration, b.queryQueueFamilies},
		{StageCreateSurface, ErrSurfaceCreation, b.createSurface},
		{StageResolveQueues, ErrNoQueueFamily, b.resolveQueues},
		{StageCreateDevice, ErrDeviceCreation, b.createDevice},
		{StageSurfaceFormats, ErrEnumeration, b.querySurfaceFormats},
	}

	for _, step := range steps {
		start := hrtime.Now()
		if err := step.run(); err != nil {
			ctx.release()
			stage := step.stage
			if stage == StageDeviceExtensions && errors.Is(err, ErrMissingRequiredExtension) {
				stage = StageConfirmExtensions
			}
			ctx.log.WithField("stage", stage).WithError(err).Error("Bring-up failed")
			return nil, stageError(stage, step.kind, err)
		}
		ctx.log.WithFields(log.Fields{
			"stage":   step.stage,
			"elapsed": hrtime.Since(start),
		}).Debug("Bring-up stage complete")
	}

	ctx.log.WithFields(log.Fields{
		"device":   ctx.PhysicalDevice.Name,
		"category": ctx.PhysicalDevice.Category,
		"graphics": ctx.Queues.Graphics,
		"present":  ctx.Queues.Present,
	}).Info("Logical device created")
	return ctx, nil
}

func (b *bringUp) negotiate() error {
	var layers []LayerRecord
	if b.opts.Validation {
		available, err := ListLayers(b.driver)
		if err != nil {
			b.ctx.log.WithError(err).Warn("Instance layers unavailable, continuing without validation")
		}
		layers = available
	}

	exts, err := ListInstanceExtensions(b.driver)
	if err != nil {
		return err
	}

	fs, err := NegotiateInstanceFeatures(layers, exts, b.opts.Validation, b.opts.LogLevel, b.opts.Platform)
	if err != nil {
		return err
	}

	switch {
	case fs.Validation:
		b.ctx.log.WithField("layer", fs.Layers[0]).Info("Found validation layer")
	case b.opts.Validation:
		b.ctx.log.Warn("No validation layer available, continuing without validation")
	}
	if fs.DebugReport {
		b.ctx.log.Info("Found debug report extension in instance extension list")
	}

	b.ctx.Features = fs
	return nil
}

func (b *bringUp) createInstance() error {
	inst, err := b.driver.CreateInstance(InstanceInfo{
		AppName:       b.opts.AppName,
		AppVersion:    b.opts.AppVersion,
		EngineName:    EngineName,
		EngineVersion: EngineVersion,
		APIVersion:    APIVersion,
		Layers:        b.ctx.Features.Layers,
		Extensions:    b.ctx.Features.Extensions,
	})
	if err != nil {
		return err
	}
	b.ctx.Instance = inst
	b.ctx.created.instance = true
	return nil
}

func (b *bringUp) createDebugCallback() error {
	if !b.ctx.Features.DebugReport {
		return nil
	}
	cb, err := b.driver.CreateDebugCallback(b.ctx.Instance, b.ctx.Features.DebugFlags, DebugLogger(b.ctx.log))
	if err != nil {
		return err
	}
	b.ctx.DebugCallback = cb
	b.ctx.created.debugCallback = true
	return nil
}

func (b *bringUp) enumerateDevices() error {
	devices, err := ListPhysicalDevices(b.driver, b.ctx.Instance)
	if err != nil {
		return err
	}
	for _, dev := range devices {
		b.ctx.log.WithFields(log.Fields{
			"device":   dev.Name,
			"category": dev.Category,
			"api":      dev.APIVersion,
		}).Info("Physical device found")
	}
	b.devices = devices
	return nil
}

func (b *bringUp) selectDevice() error {
	ranking := RankDevices(b.devices)
	for _, dev := range ranking.Ignored {
		b.ctx.log.WithField("device", dev.Name).Debugf("Ignoring %s device", dev.Category)
	}

	power := PowerNone
	if ranking.NeedsPowerState() {
		power = b.opts.PowerState()
		b.ctx.log.WithField("power", power).Info("Choosing between discrete and integrated device")
	}

	dev, err := ranking.Select(power)
	if err != nil {
		return err
	}
	b.ctx.PhysicalDevice = dev
	b.ctx.Power = power
	return nil
}

func (b *bringUp) confirmDeviceExtensions() error {
	exts, err := ListDeviceExtensions(b.driver, b.ctx.PhysicalDevice)
	if err != nil {
		return err
	}

	required := []string{SwapchainExtensionName}
	for _, name := range b.opts.DeviceExtensions {
		if !contains(required, name) {
			required = append(required, name)
		}
	}
	for _, name := range required {
		if !hasExtension(exts, name) {
			return errors.Wrapf(ErrMissingRequiredExtension, "%s on %q", name, b.ctx.PhysicalDevice.Name)
		}
	}
	b.ctx.DeviceExtensions = required
	return nil
}

func (b *bringUp) queryQueueFamilies() error {
	families, err := ListQueueFamilies(b.driver, b.ctx.PhysicalDevice)
	if err != nil {
		return err
	}
	b.families = families
	return nil
}

func (b *bringUp) createSurface() error {
	surface, err := b.window.CreateSurface(b.ctx.Instance)
	if err != nil {
		return errors.Mark(err, ErrSurfaceCreation)
	}
	if surface == nil {
		return errors.Wrap(ErrSurfaceCreation, "window returned no surface")
	}
	b.ctx.Surface = surface
	b.ctx.created.surface = true
	return nil
}

func (b *bringUp) resolveQueues() error {
	for i := range b.families {
		supported, err := b.driver.SurfaceSupport(b.ctx.PhysicalDevice, i, b.ctx.Surface)
		if err != nil {
			b.ctx.log.WithError(err).WithField("family", i).Warn("Surface support query failed")
			supported = false
		}
		b.families[i].Present = supported
	}

	sel, err := ResolveQueues(b.families)
	if err != nil {
		return err
	}
	b.ctx.Queues = sel
	return nil
}

func (b *bringUp) createDevice() error {
	dev, err := b.driver.CreateDevice(b.ctx.PhysicalDevice, DeviceInfo{
		Queues:     b.ctx.Queues.QueueInfos(),
		Extensions: b.ctx.DeviceExtensions,
	})
	if err != nil {
		return err
	}
	b.ctx.Device = dev
	b.ctx.created.device = true
	return nil
}

func (b *bringUp) querySurfaceFormats() error {
	formats, err := ListSurfaceFormats(b.driver, b.ctx.PhysicalDevice, b.ctx.Surface)
	if err != nil {
		return err
	}
	b.ctx.SurfaceFormats = formats
	b.ctx.SurfaceFormat = ChooseSurfaceFormat(formats)
	return nil
}

// ChooseSurfaceFormat picks the format to present with. A single undefined
// entry means the surface has no preference.
func ChooseSurfaceFormat(formats []SurfaceFormat) SurfaceFormat {
	if len(formats) == 0 || (len(formats) == 1 && formats[0].Format == FormatUndefined) {
		return SurfaceFormat{Format: FormatB8G8R8A8Unorm, ColorSpace: ColorSpaceSRGBNonlinear}
	}
	return formats[0]
}

// Destroy releases the debug callback, the device, the surface and the
// instance, skipping whatever was never created. Safe to call twice.
func (ctx *GraphicsContext) Destroy() {
	if ctx == nil {
		return
	}
	ctx.release()
	ctx.log.Info("Graphics context destroyed")
}

func (ctx *GraphicsContext) release() {
	if ctx.created.debugCallback {
		ctx.driver.DestroyDebugCallback(ctx.Instance, ctx.DebugCallback)
		ctx.created.debugCallback = false
		ctx.DebugCallback = nil
	}
	if ctx.created.device {
		ctx.driver.DestroyDevice(ctx.Device)
		ctx.created.device = false
		ctx.Device = nil
	}
	if ctx.created.surface {
		ctx.driver.DestroySurface(ctx.Instance, ctx.Surface)
		ctx.created.surface = false
		ctx.Surface = nil
	}
	if ctx.created.instance {
		ctx.driver.DestroyInstance(ctx.Instance)
		ctx.created.instance = false
		ctx.Instance = nil
	}
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
