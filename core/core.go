// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core selects a GPU for a window surface, opens a logical device on
// it and manages the swapchain and framebuffer lifecycle across window
// resizes. It talks to the graphics API only through the interfaces in this
// file, the vulkan package provides the concrete implementation.
package core

import (
	vk "github.com/vulkan-go/vulkan"
)

// Destroyable is anything that holds driver resources that
// have to be released explicitly.
type Destroyable interface {
	// Destroy releases the resources held
	Destroy()
}

// Instance describes a graphics API instance.
// Once created it is ready to use.
type Instance interface {
	Destroyable

	// PhysicalDevices enumerates every physical device
	// exposed by the instance
	PhysicalDevices() ([]PhysicalDevice, error)

	// Inner returns the inner handle of the underlying API
	Inner() interface{}
}

// Surface is the presentation target bound to a native window.
// It is owned by the windowing layer, the engine only references it.
type Surface interface {
	// Inner returns the inner handle of the underlying API
	Inner() interface{}
}

// Window is the windowing collaborator the engine presents to.
type Window interface {
	// InnerSize returns the current drawable size in pixels
	InnerSize() Extent

	// Surface returns the surface bound to this window
	Surface() Surface
}

// Extent is a two dimensional size in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

// IsZero reports whether either dimension is zero.
func (e Extent) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

// DeviceProperties is the subset of physical device properties
// the engine cares about.
type DeviceProperties struct {
	Name          string
	DeviceType    vk.PhysicalDeviceType
	APIVersion    uint32
	DriverVersion uint32
	VendorID      uint32
	DeviceID      uint32
}

// QueueFamily describes a group of queues sharing capabilities.
type QueueFamily struct {
	Flags      vk.QueueFlags
	QueueCount uint32
}

// SupportsGraphics reports whether the family can run graphics work.
func (q QueueFamily) SupportsGraphics() bool {
	return q.Flags&vk.QueueFlags(vk.QueueGraphicsBit) != 0
}

// SurfaceCapabilities are the constraints a surface puts on swapchains
// created for it.
type SurfaceCapabilities struct {
	MinImageCount           uint32
	MaxImageCount           uint32
	CurrentExtent           Extent
	MinImageExtent          Extent
	MaxImageExtent          Extent
	SupportedTransforms     vk.SurfaceTransformFlags
	CurrentTransform        vk.SurfaceTransformFlagBits
	SupportedCompositeAlpha vk.CompositeAlphaFlags
}

// SurfaceFormat is a format and color space pair supported by a surface.
type SurfaceFormat struct {
	Format     vk.Format
	ColorSpace vk.ColorSpace
}

// PhysicalDevice is a GPU or accelerator exposed by the driver.
type PhysicalDevice interface {
	// Properties returns the general device properties
	Properties() DeviceProperties

	// QueueFamilies returns the queue families in index order
	QueueFamilies() []QueueFamily

	// Extensions returns the names of supported device extensions
	Extensions() ([]string, error)

	// SurfaceSupport reports whether the queue family can present to s
	SurfaceSupport(queueFamily uint32, s Surface) (bool, error)

	// SurfaceCapabilities reads the capabilities of s for this device
	SurfaceCapabilities(s Surface) (SurfaceCapabilities, error)

	// SurfaceFormats returns the formats of s in driver order
	SurfaceFormats(s Surface) ([]SurfaceFormat, error)

	// CreateDevice opens a logical device with queueCount queues
	// in queueFamily and the given extensions enabled
	CreateDevice(queueFamily, queueCount uint32, extensions []string) (Device, []Queue, error)

	// Inner returns the inner handle of the underlying API
	Inner() interface{}
}

// Device is an opened logical device.
type Device interface {
	Destroyable

	// CreateSwapchain creates a swapchain, info.OldSwapchain may be
	// set to hand over presentation from a previous one
	CreateSwapchain(info SwapchainCreateInfo) (Swapchain, []Image, error)

	// CreateImageView creates a default 2D color view of the image
	CreateImageView(image Image) (ImageView, error)

	// CreateRenderPass creates a render pass from the description
	CreateRenderPass(desc RenderPassDescription) (RenderPass, error)

	// CreateFramebuffer binds attachments to a render pass
	CreateFramebuffer(rp RenderPass, attachments []ImageView, extent Extent) (Framebuffer, error)

	// CreateCommandPool creates a pool for the queue family
	CreateCommandPool(queueFamily uint32) (CommandPool, error)

	// CreateFence creates an unsignaled fence
	CreateFence() (Fence, error)

	// WaitIdle blocks until all work on the device completes
	WaitIdle() error

	// Inner returns the inner handle of the underlying API
	Inner() interface{}
}

// Queue accepts command buffer submissions.
type Queue interface {
	// Submit submits the command buffer, fence is signaled on completion
	Submit(cb CommandBuffer, fence Fence) error

	// Inner returns the inner handle of the underlying API
	Inner() interface{}
}

// Fence is signaled by the GPU when submitted work completes.
type Fence interface {
	Destroyable

	// Wait blocks until the fence is signaled or timeout
	// nanoseconds pass, math.MaxUint64 waits forever
	Wait(timeout uint64) error
}

// CommandPool allocates command buffers for one queue family.
type CommandPool interface {
	Destroyable

	// Allocate returns a primary command buffer
	Allocate() (CommandBuffer, error)
}

// CommandBuffer is a recorded list of GPU commands.
type CommandBuffer interface {
	// Begin starts recording for a single submission
	Begin() error

	// End finishes recording
	End() error

	// Release returns the buffer to its pool
	Release()

	// Inner returns the inner handle of the underlying API
	Inner() interface{}
}

// Swapchain is the presentable image ring of a surface.
type Swapchain interface {
	Destroyable

	// CreateInfo returns the configuration the swapchain was created with
	CreateInfo() SwapchainCreateInfo

	// Inner returns the inner handle of the underlying API
	Inner() interface{}
}

// Image is an image owned by a swapchain.
type Image interface {
	// Format returns the pixel format of the image
	Format() vk.Format

	// Inner returns the inner handle of the underlying API
	Inner() interface{}
}

// ImageView is a view into an Image.
type ImageView interface {
	Destroyable

	// Format returns the format the view interprets the image with
	Format() vk.Format
}

// RenderPass describes attachments and subpasses of rendering.
type RenderPass interface {
	Destroyable

	// ColorFormat returns the format of the color attachment
	ColorFormat() vk.Format
}

// Framebuffer is a set of attachments bound to a render pass.
type Framebuffer interface {
	Destroyable

	// Attachments returns the views bound to the framebuffer
	Attachments() []ImageView
}

// SwapchainCreateInfo is the driver-neutral swapchain configuration.
type SwapchainCreateInfo struct {
	Surface        Surface
	MinImageCount  uint32
	ImageFormat    vk.Format
	ColorSpace     vk.ColorSpace
	ImageExtent    Extent
	ImageUsage     vk.ImageUsageFlags
	PreTransform   vk.SurfaceTransformFlagBits
	CompositeAlpha vk.CompositeAlphaFlagBits
	PresentMode    vk.PresentMode
	OldSwapchain   Swapchain
}

// RenderPassDescription describes a single subpass render pass
// with one color attachment.
type RenderPassDescription struct {
	ColorFormat vk.Format
	Samples     vk.SampleCountFlagBits
	LoadOp      vk.AttachmentLoadOp
	StoreOp     vk.AttachmentStoreOp
	FinalLayout vk.ImageLayout
}

// BaseEngine is implemented by engines able to run GPU work.
type BaseEngine interface {
	// Compute runs the operation and blocks until the GPU is done
	Compute(Operation) error

	// Instance returns the instance the engine was built on
	Instance() Instance

	// LogicalDevice returns the device the engine submits to
	LogicalDevice() *LogicalDevice
}
