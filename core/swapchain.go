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

// compositeAlphaOrder is the order supported composite alpha modes are tried in.
var compositeAlphaOrder = []vk.CompositeAlphaFlagBits{
	vk.CompositeAlphaOpaqueBit,
	vk.CompositeAlphaPreMultipliedBit,
	vk.CompositeAlphaPostMultipliedBit,
	vk.CompositeAlphaInheritBit,
}

// CreateSwapchain creates a swapchain for the window's surface on the
// logical device, sized to the window's current inner size.
func CreateSwapchain(ld *LogicalDevice, window Window) (Swapchain, []Image, error) {
	return createSwapchain(ld, window, logrus.StandardLogger())
}

func createSwapchain(ld *LogicalDevice, window Window, log logrus.FieldLogger) (Swapchain, []Image, error) {
	surface := window.Surface()
	physical := ld.PhysicalDevice()

	capabilities, err := physical.SurfaceCapabilities(surface)
	if err != nil {
		return nil, nil, &SwapchainCreationError{Err: errors.Wrap(err, "reading surface capabilities")}
	}

	formats, err := physical.SurfaceFormats(surface)
	if err != nil {
		return nil, nil, &SwapchainCreationError{Err: errors.Wrap(err, "reading surface formats")}
	}
	if len(formats) == 0 {
		return nil, nil, &SwapchainCreationError{Err: errors.New("surface reports no formats")}
	}

	compositeAlpha, ok := firstCompositeAlpha(capabilities.SupportedCompositeAlpha)
	if !ok {
		return nil, nil, &SwapchainCreationError{Err: errors.New("no composite alpha mode supported")}
	}

	extent := window.InnerSize()
	if !extentSupported(capabilities, extent) {
		return nil, nil, &SwapchainCreationError{Err: ErrImageExtentNotSupported}
	}

	info := SwapchainCreateInfo{
		Surface:        surface,
		MinImageCount:  imageCount(capabilities, log),
		ImageFormat:    formats[0].Format,
		ColorSpace:     formats[0].ColorSpace,
		ImageExtent:    extent,
		ImageUsage:     vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:   preTransform(capabilities),
		CompositeAlpha: compositeAlpha,
		PresentMode:    vk.PresentModeFifo,
	}

	swapchain, images, err := ld.Device().CreateSwapchain(info)
	if err != nil {
		return nil, nil, &SwapchainCreationError{Err: err}
	}

	log.WithFields(logrus.Fields{
		"op":     "CreateSwapchain",
		"width":  extent.Width,
		"height": extent.Height,
		"images": len(images),
		"format": info.ImageFormat,
	}).Debug("swapchain created")
	return swapchain, images, nil
}

// recreateSwapchain builds a replacement for old using its configuration
// with only the extent changed. The old swapchain is handed over but not
// destroyed.
func recreateSwapchain(ld *LogicalDevice, window Window, old Swapchain) (Swapchain, []Image, error) {
	capabilities, err := ld.PhysicalDevice().SurfaceCapabilities(window.Surface())
	if err != nil {
		return nil, nil, &SwapchainCreationError{Err: errors.Wrap(err, "reading surface capabilities")}
	}

	extent := window.InnerSize()
	if !extentSupported(capabilities, extent) {
		return nil, nil, ErrImageExtentNotSupported
	}

	info := old.CreateInfo()
	info.ImageExtent = extent
	info.OldSwapchain = old

	swapchain, images, err := ld.Device().CreateSwapchain(info)
	if err != nil {
		return nil, nil, &SwapchainCreationError{Err: err}
	}
	return swapchain, images, nil
}

// imageCount asks for one image more than the minimum. A non-zero maximum
// is a hard driver limit and clamps the result.
func imageCount(capabilities SurfaceCapabilities, log logrus.FieldLogger) uint32 {
	count := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount != 0 && count > capabilities.MaxImageCount {
		log.WithFields(logrus.Fields{
			"requested": count,
			"max":       capabilities.MaxImageCount,
		}).Warn("swapchain image count clamped to surface maximum")
		count = capabilities.MaxImageCount
	}
	return count
}

func firstCompositeAlpha(supported vk.CompositeAlphaFlags) (vk.CompositeAlphaFlagBits, bool) {
	for _, bit := range compositeAlphaOrder {
		if supported&vk.CompositeAlphaFlags(bit) != 0 {
			return bit, true
		}
	}
	return 0, false
}

func preTransform(capabilities SurfaceCapabilities) vk.SurfaceTransformFlagBits {
	if capabilities.SupportedTransforms&vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit) != 0 {
		return vk.SurfaceTransformIdentityBit
	}
	return capabilities.CurrentTransform
}

// extentSupported reports whether a swapchain can be created with the
// extent. Zero sizes are never supported.
func extentSupported(capabilities SurfaceCapabilities, extent Extent) bool {
	if extent.IsZero() {
		return false
	}
	min, max := capabilities.MinImageExtent, capabilities.MaxImageExtent
	if extent.Width < min.Width || extent.Height < min.Height {
		return false
	}
	if (max.Width != 0 && extent.Width > max.Width) || (max.Height != 0 && extent.Height > max.Height) {
		return false
	}
	return true
}
