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

// Swapchain is a Vulkan swapchain
type Swapchain struct {
	device     vk.Device
	swapchain  vk.Swapchain
	createInfo core.SwapchainCreateInfo
}

var (
	_ core.Swapchain     = (*Swapchain)(nil)
	_ core.Image         = (*Image)(nil)
	_ core.ImageView     = (*ImageView)(nil)
	_ core.RenderPass    = (*RenderPass)(nil)
	_ core.Framebuffer   = (*Framebuffer)(nil)
	_ core.CommandPool   = (*CommandPool)(nil)
	_ core.CommandBuffer = (*CommandBuffer)(nil)
)

// CreateInfo implements interface
func (s *Swapchain) CreateInfo() core.SwapchainCreateInfo {
	return s.createInfo
}

// Inner implements interface
func (s *Swapchain) Inner() interface{} {
	return s.swapchain
}

// Destroy destroys the swapchain, its images go with it
func (s *Swapchain) Destroy() {
	vk.DestroySwapchain(s.device, s.swapchain, nil)
}

// Image is an image owned by a swapchain
type Image struct {
	image  vk.Image
	format vk.Format
}

// Format implements interface
func (i *Image) Format() vk.Format {
	return i.format
}

// Inner implements interface
func (i *Image) Inner() interface{} {
	return i.image
}

// ImageView is a Vulkan image view
type ImageView struct {
	device vk.Device
	view   vk.ImageView
	format vk.Format
}

// Format implements interface
func (v *ImageView) Format() vk.Format {
	return v.format
}

// Destroy implements interface
func (v *ImageView) Destroy() {
	vk.DestroyImageView(v.device, v.view, nil)
}

// RenderPass is a Vulkan render pass
type RenderPass struct {
	device      vk.Device
	renderPass  vk.RenderPass
	colorFormat vk.Format
}

// ColorFormat implements interface
func (r *RenderPass) ColorFormat() vk.Format {
	return r.colorFormat
}

// Destroy implements interface
func (r *RenderPass) Destroy() {
	vk.DestroyRenderPass(r.device, r.renderPass, nil)
}

// Framebuffer is a Vulkan framebuffer
type Framebuffer struct {
	device      vk.Device
	framebuffer vk.Framebuffer
	attachments []core.ImageView
}

// Attachments implements interface
func (f *Framebuffer) Attachments() []core.ImageView {
	return f.attachments
}

// Destroy destroys the framebuffer, attachments are left alone
func (f *Framebuffer) Destroy() {
	vk.DestroyFramebuffer(f.device, f.framebuffer, nil)
}

// CommandPool is a Vulkan command pool
type CommandPool struct {
	device vk.Device
	pool   vk.CommandPool
}

// Allocate implements interface
func (p *CommandPool) Allocate() (core.CommandBuffer, error) {
	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        p.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}

	commandBuffers := make([]vk.CommandBuffer, 1)
	if err := vk.Error(vk.AllocateCommandBuffers(p.device, &cbai, commandBuffers)); err != nil {
		return nil, errors.Wrap(err, "vk.AllocateCommandBuffers()")
	}
	return &CommandBuffer{device: p.device, pool: p.pool, buffer: commandBuffers[0]}, nil
}

// Destroy implements interface
func (p *CommandPool) Destroy() {
	vk.DestroyCommandPool(p.device, p.pool, nil)
}

// CommandBuffer is a primary Vulkan command buffer
type CommandBuffer struct {
	device vk.Device
	pool   vk.CommandPool
	buffer vk.CommandBuffer
}

// Begin implements interface
func (c *CommandBuffer) Begin() error {
	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if err := vk.Error(vk.BeginCommandBuffer(c.buffer, &cbbi)); err != nil {
		return errors.Wrap(err, "vk.BeginCommandBuffer()")
	}
	return nil
}

// End implements interface
func (c *CommandBuffer) End() error {
	if err := vk.Error(vk.EndCommandBuffer(c.buffer)); err != nil {
		return errors.Wrap(err, "vk.EndCommandBuffer()")
	}
	return nil
}

// Release implements interface
func (c *CommandBuffer) Release() {
	vk.FreeCommandBuffers(c.device, c.pool, 1, []vk.CommandBuffer{c.buffer})
}

// Inner implements interface
func (c *CommandBuffer) Inner() interface{} {
	return c.buffer
}
