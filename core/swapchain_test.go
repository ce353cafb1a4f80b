// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"

	"github.com/devblok/korugpu/core"
	qt "github.com/frankban/quicktest"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

func newLogicalDevice(c *qt.C, gpu *fakePhysicalDevice) *core.LogicalDevice {
	ld, err := core.CreateLogicalDevice(gpu, 0)
	c.Assert(err, qt.IsNil)
	return ld
}

func TestCreateSwapchain(t *testing.T) {
	c := qt.New(t)

	gpu := newFakeGPU("gpu", vk.PhysicalDeviceTypeDiscreteGpu)
	window := newFakeWindow(800, 600)
	ld := newLogicalDevice(c, gpu)

	swapchain, images, err := core.CreateSwapchain(ld, window)
	c.Assert(err, qt.IsNil)
	c.Assert(images, qt.HasLen, 3)

	info := swapchain.CreateInfo()
	c.Assert(info.Surface, qt.Equals, window.surface)
	c.Assert(info.MinImageCount, qt.Equals, uint32(3))
	c.Assert(info.ImageFormat, qt.Equals, testFormat)
	c.Assert(info.ColorSpace, qt.Equals, testColorSpace)
	c.Assert(info.ImageExtent, qt.Equals, core.Extent{Width: 800, Height: 600})
	c.Assert(info.ImageUsage, qt.Equals, vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit))
	c.Assert(info.PreTransform, qt.Equals, vk.SurfaceTransformIdentityBit)
	c.Assert(info.CompositeAlpha, qt.Equals, vk.CompositeAlphaOpaqueBit)
	c.Assert(info.PresentMode, qt.Equals, vk.PresentModeFifo)
	c.Assert(info.OldSwapchain, qt.IsNil)

	for _, image := range images {
		c.Assert(image.Format(), qt.Equals, testFormat)
	}
}

func TestCreateSwapchainImageCount(t *testing.T) {
	tests := []struct {
		name     string
		min, max uint32
		expected uint32
	}{
		{name: "unbounded", min: 2, max: 0, expected: 3},
		{name: "within bounds", min: 1, max: 3, expected: 2},
		{name: "clamped", min: 3, max: 3, expected: 3},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			c := qt.New(t)

			gpu := newFakeGPU("gpu", vk.PhysicalDeviceTypeDiscreteGpu)
			gpu.caps.MinImageCount = test.min
			gpu.caps.MaxImageCount = test.max

			_, images, err := core.CreateSwapchain(newLogicalDevice(c, gpu), newFakeWindow(800, 600))
			c.Assert(err, qt.IsNil)
			c.Assert(uint32(len(images)), qt.Equals, test.expected)
		})
	}
}

func TestCreateSwapchainCompositeAlpha(t *testing.T) {
	c := qt.New(t)

	gpu := newFakeGPU("gpu", vk.PhysicalDeviceTypeDiscreteGpu)
	gpu.caps.SupportedCompositeAlpha = vk.CompositeAlphaFlags(vk.CompositeAlphaInheritBit | vk.CompositeAlphaPreMultipliedBit)

	swapchain, _, err := core.CreateSwapchain(newLogicalDevice(c, gpu), newFakeWindow(800, 600))
	c.Assert(err, qt.IsNil)
	c.Assert(swapchain.CreateInfo().CompositeAlpha, qt.Equals, vk.CompositeAlphaPreMultipliedBit)
}

func TestCreateSwapchainPreTransform(t *testing.T) {
	c := qt.New(t)

	gpu := newFakeGPU("gpu", vk.PhysicalDeviceTypeDiscreteGpu)
	gpu.caps.SupportedTransforms = vk.SurfaceTransformFlags(vk.SurfaceTransformRotate90Bit)
	gpu.caps.CurrentTransform = vk.SurfaceTransformRotate90Bit

	swapchain, _, err := core.CreateSwapchain(newLogicalDevice(c, gpu), newFakeWindow(800, 600))
	c.Assert(err, qt.IsNil)
	c.Assert(swapchain.CreateInfo().PreTransform, qt.Equals, vk.SurfaceTransformRotate90Bit)
}

func TestCreateSwapchainErrors(t *testing.T) {
	tests := []struct {
		name         string
		width        uint32
		height       uint32
		modify       func(*fakePhysicalDevice, *fakeDevice)
		expectExtent bool
		message      string
	}{{
		name:   "no formats",
		width:  800,
		height: 600,
		modify: func(p *fakePhysicalDevice, d *fakeDevice) {
			p.formats = nil
		},
		message: "swapchain creation failed: surface reports no formats",
	}, {
		name:   "no composite alpha",
		width:  800,
		height: 600,
		modify: func(p *fakePhysicalDevice, d *fakeDevice) {
			p.caps.SupportedCompositeAlpha = 0
		},
		message: "swapchain creation failed: no composite alpha mode supported",
	}, {
		name:   "capabilities",
		width:  800,
		height: 600,
		modify: func(p *fakePhysicalDevice, d *fakeDevice) {
			p.capsErr = errors.New("surface lost")
		},
		message: "swapchain creation failed: reading surface capabilities: surface lost",
	}, {
		name:   "driver",
		width:  800,
		height: 600,
		modify: func(p *fakePhysicalDevice, d *fakeDevice) {
			d.swapchainErr = errors.New("native window in use")
		},
		message: "swapchain creation failed: native window in use",
	}, {
		name:         "zero extent",
		width:        0,
		height:       600,
		modify:       func(p *fakePhysicalDevice, d *fakeDevice) {},
		expectExtent: true,
		message:      "swapchain creation failed: image extent not supported by surface",
	}, {
		name:         "above maximum",
		width:        8192,
		height:       600,
		modify:       func(p *fakePhysicalDevice, d *fakeDevice) {},
		expectExtent: true,
		message:      "swapchain creation failed: image extent not supported by surface",
	}}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			c := qt.New(t)

			gpu := newFakeGPU("gpu", vk.PhysicalDeviceTypeDiscreteGpu)
			ld := newLogicalDevice(c, gpu)
			test.modify(gpu, gpu.device)

			swapchain, images, err := core.CreateSwapchain(ld, newFakeWindow(test.width, test.height))
			c.Assert(swapchain, qt.IsNil)
			c.Assert(images, qt.IsNil)

			var creationErr *core.SwapchainCreationError
			c.Assert(err, qt.ErrorAs, &creationErr)
			c.Assert(err, qt.ErrorMatches, test.message)
			c.Assert(errors.Is(err, core.ErrImageExtentNotSupported), qt.Equals, test.expectExtent)
		})
	}
}
