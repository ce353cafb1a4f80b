// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// LogicalDevice wraps the selected physical device together with the
// logical device opened on it and its queues. It does not change after
// creation.
type LogicalDevice struct {
	physicalDevice   PhysicalDevice
	device           Device
	queueFamilyIndex uint32
	queues           []Queue
	commandPool      CommandPool
}

// CreateLogicalDevice opens a logical device with a single queue in the given
// family and the required device extensions enabled.
func CreateLogicalDevice(physicalDevice PhysicalDevice, queueFamilyIndex uint32) (*LogicalDevice, error) {
	device, queues, err := physicalDevice.CreateDevice(queueFamilyIndex, 1, RequiredDeviceExtensions())
	if err != nil {
		return nil, &DeviceCreationError{Err: err}
	}
	if len(queues) == 0 {
		device.Destroy()
		return nil, &DeviceCreationError{Err: errors.New("device returned no queues")}
	}

	pool, err := device.CreateCommandPool(queueFamilyIndex)
	if err != nil {
		device.Destroy()
		return nil, &DeviceCreationError{Err: errors.Wrap(err, "creating command pool")}
	}

	return &LogicalDevice{
		physicalDevice:   physicalDevice,
		device:           device,
		queueFamilyIndex: queueFamilyIndex,
		queues:           queues,
		commandPool:      pool,
	}, nil
}

// PhysicalDevice returns the physical device the logical device runs on.
func (ld *LogicalDevice) PhysicalDevice() PhysicalDevice {
	return ld.physicalDevice
}

// Device returns the logical device handle.
func (ld *LogicalDevice) Device() Device {
	return ld.device
}

// QueueFamilyIndex returns the index of the family the queues belong to.
func (ld *LogicalDevice) QueueFamilyIndex() uint32 {
	return ld.queueFamilyIndex
}

// Queues returns every queue created with the device.
func (ld *LogicalDevice) Queues() []Queue {
	return ld.queues
}

// FirstQueue returns the queue work is submitted to.
func (ld *LogicalDevice) FirstQueue() Queue {
	return ld.queues[0]
}

// CommandPool returns the pool operations allocate command buffers from.
func (ld *LogicalDevice) CommandPool() CommandPool {
	return ld.commandPool
}

// LogInformation writes the device name, type, API version and queue setup
// to the logger at the given level.
func (ld *LogicalDevice) LogInformation(log logrus.FieldLogger, level logrus.Level) {
	props := ld.physicalDevice.Properties()
	entry := log.WithFields(logrus.Fields{
		"device":      props.Name,
		"type":        DeviceTypeName(props.DeviceType),
		"apiVersion":  VersionString(props.APIVersion),
		"queueFamily": ld.queueFamilyIndex,
		"queues":      len(ld.queues),
	})

	entry.Log(level, "logical device")
}

// Destroy releases the command pool and the logical device.
func (ld *LogicalDevice) Destroy() {
	if ld == nil {
		return
	}
	ld.commandPool.Destroy()
	ld.device.Destroy()
}

// DeviceTypeName returns a short name for the device type.
func DeviceTypeName(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete"
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	default:
		return "other"
	}
}

// VersionString formats a packed API version as major.minor.patch.
func VersionString(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>22, (v>>12)&0x3ff, v&0xfff)
}
