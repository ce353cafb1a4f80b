// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package vulkan implements the core driver interfaces on top of the
// Vulkan API.
package vulkan

import (
	"unsafe"

	"github.com/devblok/korugpu/core"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// Names of the layer and extension enabled in debug mode
const (
	ValidationLayerName   = "VK_LAYER_KHRONOS_validation"
	DebugReportExtensions = "VK_EXT_debug_report"
)

// DefaultApplicationInfo describes the application to the driver
var DefaultApplicationInfo = &vk.ApplicationInfo{
	SType:              vk.StructureTypeApplicationInfo,
	ApiVersion:         vk.MakeVersion(1, 0, 0),
	ApplicationVersion: vk.MakeVersion(1, 0, 0),
	PApplicationName:   safeString("Koru3D"),
	PEngineName:        safeString("Koru3D"),
}

// MakeInstance loads the Vulkan loader and creates an instance.
// procAddr is the loader entry point handed out by the windowing
// library, when nil the system loader is used.
func MakeInstance(appInfo *vk.ApplicationInfo, procAddr unsafe.Pointer, cfg core.InstanceConfiguration) (*Instance, error) {
	log.WithField("op", "MakeInstance").Debug("creating instance")

	if cfg.DebugMode {
		cfg.Layers = append(cfg.Layers, ValidationLayerName)
		cfg.Extensions = append(cfg.Extensions, DebugReportExtensions)
	}

	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, errors.Wrap(err, "failed to load Vulkan library, make sure a Vulkan driver is installed")
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "vk.Init()")
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(cfg.Extensions)),
		PpEnabledExtensionNames: safeStrings(cfg.Extensions),
		EnabledLayerCount:       uint32(len(cfg.Layers)),
		PpEnabledLayerNames:     safeStrings(cfg.Layers),
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&instanceInfo, nil, &instance)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateInstance()")
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, errors.Wrap(err, "vk.InitInstance()")
	}

	availableDevices, err := enumerateDevices(instance)
	if err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, err
	}

	i := &Instance{
		configuration:    cfg,
		instance:         instance,
		availableDevices: availableDevices,
	}
	i.logAPIInformation(log.DebugLevel)
	return i, nil
}

// Instance is a Vulkan API instance
type Instance struct {
	configuration core.InstanceConfiguration

	availableDevices []vk.PhysicalDevice
	instance         vk.Instance
}

var _ core.Instance = (*Instance)(nil)

func enumerateDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var deviceCount uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumeratePhysicalDevices()")
	}
	availableDevices := make([]vk.PhysicalDevice, deviceCount)
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, availableDevices)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumeratePhysicalDevices()")
	}
	return availableDevices[:deviceCount], nil
}

// PhysicalDevices implements interface
func (v *Instance) PhysicalDevices() ([]core.PhysicalDevice, error) {
	devices := make([]core.PhysicalDevice, len(v.availableDevices))
	for idx, handle := range v.availableDevices {
		devices[idx] = newPhysicalDevice(handle)
	}
	return devices, nil
}

// PhysicalDevicesInfo returns a description of every device the
// instance exposes
func (v *Instance) PhysicalDevicesInfo() []PhysicalDeviceInfo {
	pdi := make([]PhysicalDeviceInfo, len(v.availableDevices))
	for idx, handle := range v.availableDevices {
		pdi[idx] = describePhysicalDevice(newPhysicalDevice(handle))
	}
	return pdi
}

// Extensions returns the enabled instance extensions
func (v *Instance) Extensions() []string {
	return v.configuration.Extensions
}

// Inner implements interface
func (v *Instance) Inner() interface{} {
	return v.instance
}

// Destroy implements interface
func (v *Instance) Destroy() {
	v.availableDevices = nil
	vk.DestroyInstance(v.instance, nil)
}

func (v *Instance) logAPIInformation(level log.Level) {
	for _, info := range v.PhysicalDevicesInfo() {
		log.WithFields(log.Fields{
			"device":     info.Name,
			"type":       info.Type,
			"apiVersion": info.APIVersion,
			"memory":     info.Memory,
			"extensions": len(info.Extensions),
		}).Log(level, "physical device")
	}
}
