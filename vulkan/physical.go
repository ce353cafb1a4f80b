// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vulkan

import (
	"github.com/devblok/korugpu/core"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// PhysicalDeviceInfo describes available physical properties of a rendering device
type PhysicalDeviceInfo struct {
	ID            int
	VendorID      int
	DriverVersion int
	APIVersion    string
	Name          string
	Type          string
	Rank          int
	Invalid       bool
	Extensions    []string
	Layers        []string
	Memory        uint
	QueueFamilies []core.QueueFamily
}

// PhysicalDevice is a Vulkan physical device
type PhysicalDevice struct {
	handle     vk.PhysicalDevice
	properties core.DeviceProperties
	families   []core.QueueFamily
}

var _ core.PhysicalDevice = (*PhysicalDevice)(nil)

func newPhysicalDevice(handle vk.PhysicalDevice) *PhysicalDevice {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(handle, &props)
	props.Deref()

	var familyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(handle, &familyCount, nil)
	rawFamilies := make([]vk.QueueFamilyProperties, familyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(handle, &familyCount, rawFamilies)

	families := make([]core.QueueFamily, familyCount)
	for idx := range rawFamilies[:familyCount] {
		rawFamilies[idx].Deref()
		families[idx] = core.QueueFamily{
			Flags:      rawFamilies[idx].QueueFlags,
			QueueCount: rawFamilies[idx].QueueCount,
		}
	}

	return &PhysicalDevice{
		handle: handle,
		properties: core.DeviceProperties{
			Name:          vk.ToString(props.DeviceName[:]),
			DeviceType:    props.DeviceType,
			APIVersion:    props.ApiVersion,
			DriverVersion: props.DriverVersion,
			VendorID:      props.VendorID,
			DeviceID:      props.DeviceID,
		},
		families: families,
	}
}

// Properties implements interface
func (p *PhysicalDevice) Properties() core.DeviceProperties {
	return p.properties
}

// QueueFamilies implements interface
func (p *PhysicalDevice) QueueFamilies() []core.QueueFamily {
	return p.families
}

// Extensions implements interface
func (p *PhysicalDevice) Extensions() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(p.handle, "", &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateDeviceExtensionProperties()")
	}
	properties := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(p.handle, "", &count, properties)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateDeviceExtensionProperties()")
	}

	names := make([]string, 0, count)
	for _, ext := range properties[:count] {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

// Layers returns the names of device layers
func (p *PhysicalDevice) Layers() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(p.handle, &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateDeviceLayerProperties()")
	}
	properties := make([]vk.LayerProperties, count)
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(p.handle, &count, properties)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateDeviceLayerProperties()")
	}

	names := make([]string, 0, count)
	for _, layer := range properties[:count] {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

// Memory returns the total size of all memory heaps
func (p *PhysicalDevice) Memory() uint {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(p.handle, &memoryProperties)
	memoryProperties.Deref()

	var total uint
	for iMem := uint32(0); iMem < memoryProperties.MemoryHeapCount; iMem++ {
		memoryProperties.MemoryHeaps[iMem].Deref()
		total += uint(memoryProperties.MemoryHeaps[iMem].Size)
	}
	return total
}

// SurfaceSupport implements interface
func (p *PhysicalDevice) SurfaceSupport(queueFamily uint32, s core.Surface) (bool, error) {
	surface, err := surfaceHandle(s)
	if err != nil {
		return false, err
	}

	var supported vk.Bool32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceSupport(p.handle, queueFamily, surface, &supported)); err != nil {
		return false, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceSupport()")
	}
	return supported.B(), nil
}

// SurfaceCapabilities implements interface
func (p *PhysicalDevice) SurfaceCapabilities(s core.Surface) (core.SurfaceCapabilities, error) {
	surface, err := surfaceHandle(s)
	if err != nil {
		return core.SurfaceCapabilities{}, err
	}

	var caps vk.SurfaceCapabilities
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(p.handle, surface, &caps)); err != nil {
		return core.SurfaceCapabilities{}, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceCapabilities()")
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	return core.SurfaceCapabilities{
		MinImageCount:           caps.MinImageCount,
		MaxImageCount:           caps.MaxImageCount,
		CurrentExtent:           extentFrom(caps.CurrentExtent),
		MinImageExtent:          extentFrom(caps.MinImageExtent),
		MaxImageExtent:          extentFrom(caps.MaxImageExtent),
		SupportedTransforms:     caps.SupportedTransforms,
		CurrentTransform:        caps.CurrentTransform,
		SupportedCompositeAlpha: caps.SupportedCompositeAlpha,
	}, nil
}

// SurfaceFormats implements interface
func (p *PhysicalDevice) SurfaceFormats(s core.Surface) ([]core.SurfaceFormat, error) {
	surface, err := surfaceHandle(s)
	if err != nil {
		return nil, err
	}

	var count uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(p.handle, surface, &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceFormats()")
	}
	rawFormats := make([]vk.SurfaceFormat, count)
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(p.handle, surface, &count, rawFormats)); err != nil {
		return nil, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceFormats()")
	}

	formats := make([]core.SurfaceFormat, count)
	for idx := range rawFormats[:count] {
		rawFormats[idx].Deref()
		formats[idx] = core.SurfaceFormat{
			Format:     rawFormats[idx].Format,
			ColorSpace: rawFormats[idx].ColorSpace,
		}
	}
	return formats, nil
}

// CreateDevice implements interface
func (p *PhysicalDevice) CreateDevice(queueFamily, queueCount uint32, extensions []string) (core.Device, []core.Queue, error) {
	priorities := make([]float32, queueCount)
	for idx := range priorities {
		priorities[idx] = 1.0
	}

	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: queueFamily,
		QueueCount:       queueCount,
		PQueuePriorities: priorities,
	}}

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
	}

	var handle vk.Device
	if err := vk.Error(vk.CreateDevice(p.handle, &dci, nil, &handle)); err != nil {
		return nil, nil, errors.Wrap(err, "vk.CreateDevice()")
	}

	queues := make([]core.Queue, queueCount)
	for idx := uint32(0); idx < queueCount; idx++ {
		var queue vk.Queue
		vk.GetDeviceQueue(handle, queueFamily, idx, &queue)
		queues[idx] = &Queue{queue: queue}
	}

	return &Device{device: handle, physicalDevice: p.handle}, queues, nil
}

// Inner implements interface
func (p *PhysicalDevice) Inner() interface{} {
	return p.handle
}

func describePhysicalDevice(p *PhysicalDevice) PhysicalDeviceInfo {
	props := p.Properties()
	info := PhysicalDeviceInfo{
		ID:            int(props.DeviceID),
		VendorID:      int(props.VendorID),
		DriverVersion: int(props.DriverVersion),
		APIVersion:    core.VersionString(props.APIVersion),
		Name:          props.Name,
		Type:          core.DeviceTypeName(props.DeviceType),
		Rank:          core.DeviceTypeRank(props.DeviceType),
		Memory:        p.Memory(),
		QueueFamilies: p.QueueFamilies(),
	}

	var err error
	if info.Extensions, err = p.Extensions(); err != nil {
		info.Invalid = true
	}
	if info.Layers, err = p.Layers(); err != nil {
		info.Invalid = true
	}
	return info
}

func extentFrom(e vk.Extent2D) core.Extent {
	return core.Extent{Width: e.Width, Height: e.Height}
}
