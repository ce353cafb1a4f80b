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

// Device is a Vulkan logical device
type Device struct {
	device         vk.Device
	physicalDevice vk.PhysicalDevice
}

var _ core.Device = (*Device)(nil)

// CreateSwapchain implements interface
func (d *Device) CreateSwapchain(info core.SwapchainCreateInfo) (core.Swapchain, []core.Image, error) {
	surface, err := surfaceHandle(info.Surface)
	if err != nil {
		return nil, nil, err
	}

	oldSwapchain := vk.NullSwapchain
	if info.OldSwapchain != nil {
		old, ok := info.OldSwapchain.Inner().(vk.Swapchain)
		if !ok {
			return nil, nil, errors.Errorf("old swapchain of type %T is not a Vulkan swapchain", info.OldSwapchain.Inner())
		}
		oldSwapchain = old
	}

	scci := vk.SwapchainCreateInfo{
		SType:           vk.StructureTypeSwapchainCreateInfo,
		Surface:         surface,
		MinImageCount:   info.MinImageCount,
		ImageFormat:     info.ImageFormat,
		ImageColorSpace: info.ColorSpace,
		ImageExtent: vk.Extent2D{
			Width:  info.ImageExtent.Width,
			Height: info.ImageExtent.Height,
		},
		ImageUsage:       info.ImageUsage,
		PreTransform:     info.PreTransform,
		CompositeAlpha:   info.CompositeAlpha,
		PresentMode:      info.PresentMode,
		Clipped:          vk.True,
		ImageArrayLayers: 1,
		ImageSharingMode: vk.SharingModeExclusive,
		OldSwapchain:     oldSwapchain,
	}

	var swapchain vk.Swapchain
	if err := vk.Error(vk.CreateSwapchain(d.device, &scci, nil, &swapchain)); err != nil {
		return nil, nil, errors.Wrap(err, "vk.CreateSwapchain()")
	}

	var numImages uint32
	if err := vk.Error(vk.GetSwapchainImages(d.device, swapchain, &numImages, nil)); err != nil {
		vk.DestroySwapchain(d.device, swapchain, nil)
		return nil, nil, errors.Wrap(err, "vk.GetSwapchainImages(num)")
	}

	rawImages := make([]vk.Image, numImages)
	if err := vk.Error(vk.GetSwapchainImages(d.device, swapchain, &numImages, rawImages)); err != nil {
		vk.DestroySwapchain(d.device, swapchain, nil)
		return nil, nil, errors.Wrap(err, "vk.GetSwapchainImages(images)")
	}

	images := make([]core.Image, numImages)
	for idx, image := range rawImages[:numImages] {
		images[idx] = &Image{image: image, format: info.ImageFormat}
	}

	info.OldSwapchain = nil
	return &Swapchain{
		device:     d.device,
		swapchain:  swapchain,
		createInfo: info,
	}, images, nil
}

// CreateImageView implements interface
func (d *Device) CreateImageView(image core.Image) (core.ImageView, error) {
	handle, ok := image.Inner().(vk.Image)
	if !ok {
		return nil, errors.Errorf("image of type %T is not a Vulkan image", image.Inner())
	}

	ivci := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    handle,
		ViewType: vk.ImageViewType2d,
		Format:   image.Format(),
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}

	var view vk.ImageView
	if err := vk.Error(vk.CreateImageView(d.device, &ivci, nil, &view)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateImageView()")
	}
	return &ImageView{device: d.device, view: view, format: image.Format()}, nil
}

// CreateRenderPass implements interface
func (d *Device) CreateRenderPass(desc core.RenderPassDescription) (core.RenderPass, error) {
	attachments := []vk.AttachmentDescription{{
		Format:         desc.ColorFormat,
		Samples:        desc.Samples,
		LoadOp:         desc.LoadOp,
		StoreOp:        desc.StoreOp,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    desc.FinalLayout,
	}}

	colorAttachmentRef := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorAttachmentRef)),
		PColorAttachments:    colorAttachmentRef,
	}

	subpassDependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
	}

	rpci := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{subpassDependency},
	}

	var renderPass vk.RenderPass
	if err := vk.Error(vk.CreateRenderPass(d.device, &rpci, nil, &renderPass)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateRenderPass()")
	}
	return &RenderPass{device: d.device, renderPass: renderPass, colorFormat: desc.ColorFormat}, nil
}

// CreateFramebuffer implements interface
func (d *Device) CreateFramebuffer(rp core.RenderPass, attachments []core.ImageView, extent core.Extent) (core.Framebuffer, error) {
	renderPass, ok := rp.(*RenderPass)
	if !ok {
		return nil, errors.Errorf("render pass of type %T is not a Vulkan render pass", rp)
	}

	views := make([]vk.ImageView, len(attachments))
	for idx, attachment := range attachments {
		view, ok := attachment.(*ImageView)
		if !ok {
			return nil, errors.Errorf("attachment %d of type %T is not a Vulkan image view", idx, attachment)
		}
		views[idx] = view.view
	}

	fci := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderPass.renderPass,
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}

	var framebuffer vk.Framebuffer
	if err := vk.Error(vk.CreateFramebuffer(d.device, &fci, nil, &framebuffer)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateFramebuffer()")
	}
	return &Framebuffer{device: d.device, framebuffer: framebuffer, attachments: attachments}, nil
}

// CreateCommandPool implements interface
func (d *Device) CreateCommandPool(queueFamily uint32) (core.CommandPool, error) {
	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: queueFamily,
	}

	var commandPool vk.CommandPool
	if err := vk.Error(vk.CreateCommandPool(d.device, &cpci, nil, &commandPool)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateCommandPool()")
	}
	return &CommandPool{device: d.device, pool: commandPool}, nil
}

// CreateFence implements interface
func (d *Device) CreateFence() (core.Fence, error) {
	fci := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}

	var fence vk.Fence
	if err := vk.Error(vk.CreateFence(d.device, &fci, nil, &fence)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateFence()")
	}
	return &Fence{device: d.device, fence: fence}, nil
}

// WaitIdle implements interface
func (d *Device) WaitIdle() error {
	if err := vk.Error(vk.DeviceWaitIdle(d.device)); err != nil {
		return errors.Wrap(err, "vk.DeviceWaitIdle()")
	}
	return nil
}

// Inner implements interface
func (d *Device) Inner() interface{} {
	return d.device
}

// Destroy implements interface
func (d *Device) Destroy() {
	vk.DestroyDevice(d.device, nil)
}

// Queue is a Vulkan device queue
type Queue struct {
	queue vk.Queue
}

var _ core.Queue = (*Queue)(nil)

// Submit implements interface
func (q *Queue) Submit(cb core.CommandBuffer, fence core.Fence) error {
	commandBuffer, ok := cb.Inner().(vk.CommandBuffer)
	if !ok {
		return errors.Errorf("command buffer of type %T is not a Vulkan command buffer", cb.Inner())
	}

	var signal vk.Fence
	if fence != nil {
		f, ok := fence.(*Fence)
		if !ok {
			return errors.Errorf("fence of type %T is not a Vulkan fence", fence)
		}
		signal = f.fence
	}

	submit := []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{commandBuffer},
	}}
	if err := vk.Error(vk.QueueSubmit(q.queue, 1, submit, signal)); err != nil {
		return errors.Wrap(err, "vk.QueueSubmit()")
	}
	return nil
}

// Inner implements interface
func (q *Queue) Inner() interface{} {
	return q.queue
}

// Fence is a Vulkan fence
type Fence struct {
	device vk.Device
	fence  vk.Fence
}

var _ core.Fence = (*Fence)(nil)

// Wait implements interface
func (f *Fence) Wait(timeout uint64) error {
	if err := vk.Error(vk.WaitForFences(f.device, 1, []vk.Fence{f.fence}, vk.True, timeout)); err != nil {
		return errors.Wrap(err, "vk.WaitForFences()")
	}
	return nil
}

// Destroy implements interface
func (f *Fence) Destroy() {
	vk.DestroyFence(f.device, f.fence, nil)
}
