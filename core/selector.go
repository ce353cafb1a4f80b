// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// RequiredDeviceExtensions returns the device extensions the engine
// needs, which is exactly swapchain presentation support.
func RequiredDeviceExtensions() []string {
	return []string{vk.KhrSwapchainExtensionName}
}

// DeviceTypeRank orders device types by preference, lower is better.
func DeviceTypeRank(t vk.PhysicalDeviceType) int {
	switch t {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return 0
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return 1
	case vk.PhysicalDeviceTypeVirtualGpu:
		return 2
	case vk.PhysicalDeviceTypeCpu:
		return 3
	case vk.PhysicalDeviceTypeOther:
		return 4
	default:
		return 5
	}
}

type candidate struct {
	device      PhysicalDevice
	queueFamily uint32
}

// SelectPhysicalDevice picks the best physical device able to render and
// present to the surface, along with the queue family to use on it.
func SelectPhysicalDevice(instance Instance, surface Surface) (PhysicalDevice, uint32, error) {
	return selectPhysicalDevice(instance, surface, logrus.StandardLogger())
}

func selectPhysicalDevice(instance Instance, surface Surface, log logrus.FieldLogger) (PhysicalDevice, uint32, error) {
	log = log.WithField("op", "SelectPhysicalDevice")

	devices, err := instance.PhysicalDevices()
	if err != nil {
		return nil, 0, errors.Wrap(err, "enumerating physical devices")
	}

	var best *candidate
	for _, device := range devices {
		props := device.Properties()
		entry := log.WithField("device", props.Name)

		families := device.QueueFamilies()
		queueFamily, ok := findBestSuitedQueueFamily(families)
		if !ok {
			entry.Debug("skipped: no graphics queue family")
			continue
		}

		if !supportsExtensions(device, RequiredDeviceExtensions()) {
			entry.Debug("skipped: missing required device extensions")
			continue
		}

		if supported, err := device.SurfaceSupport(queueFamily, surface); err != nil || !supported {
			entry.WithError(err).Debug("skipped: queue family cannot present to surface")
			continue
		}

		entry.WithField("queueFamily", queueFamily).
			WithField("rank", DeviceTypeRank(props.DeviceType)).
			Debug("candidate")

		if best == nil || DeviceTypeRank(props.DeviceType) < DeviceTypeRank(best.device.Properties().DeviceType) {
			best = &candidate{device: device, queueFamily: queueFamily}
		}
	}

	if best == nil {
		return nil, 0, &NoSuitableDeviceError{Enumerated: len(devices)}
	}

	log.WithField("device", best.device.Properties().Name).
		WithField("queueFamily", best.queueFamily).
		Debug("selected")
	return best.device, best.queueFamily, nil
}

// findBestSuitedQueueFamily returns the first queue family that
// supports graphics.
func findBestSuitedQueueFamily(families []QueueFamily) (uint32, bool) {
	for idx, family := range families {
		if family.SupportsGraphics() {
			return uint32(idx), true
		}
	}
	return 0, false
}

func supportsExtensions(device PhysicalDevice, required []string) bool {
	available, err := device.Extensions()
	if err != nil {
		return false
	}

	set := make(map[string]struct{}, len(available))
	for _, ext := range available {
		set[ext] = struct{}{}
	}
	for _, ext := range required {
		if _, ok := set[ext]; !ok {
			return false
		}
	}
	return true
}
