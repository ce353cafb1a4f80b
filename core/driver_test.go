// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"fmt"

	"github.com/devblok/korugpu/core"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// In-memory drivers implementing the core interfaces. Calls that matter for
// ordering are appended to a shared journal.

type journal struct {
	events []string
}

func (j *journal) add(format string, args ...interface{}) {
	j.events = append(j.events, fmt.Sprintf(format, args...))
}

func (j *journal) indexOf(event string) int {
	for idx, e := range j.events {
		if e == event {
			return idx
		}
	}
	return -1
}

var (
	testFormat     = vk.FormatB8g8r8a8Unorm
	testColorSpace = vk.ColorSpaceSrgbNonlinear
)

type fakeInstance struct {
	devices   []core.PhysicalDevice
	err       error
	destroyed bool
}

func (i *fakeInstance) PhysicalDevices() ([]core.PhysicalDevice, error) {
	return i.devices, i.err
}

func (i *fakeInstance) Inner() interface{} { return i }

func (i *fakeInstance) Destroy() { i.destroyed = true }

type fakeSurface struct{}

func (s *fakeSurface) Inner() interface{} { return s }

type fakeWindow struct {
	size    core.Extent
	surface core.Surface
}

func newFakeWindow(width, height uint32) *fakeWindow {
	return &fakeWindow{
		size:    core.Extent{Width: width, Height: height},
		surface: &fakeSurface{},
	}
}

func (w *fakeWindow) InnerSize() core.Extent { return w.size }

func (w *fakeWindow) Surface() core.Surface { return w.surface }

type fakePhysicalDevice struct {
	journal *journal

	props      core.DeviceProperties
	families   []core.QueueFamily
	extensions []string
	extErr     error
	present    map[uint32]bool
	presentErr error
	caps       core.SurfaceCapabilities
	capsErr    error
	formats    []core.SurfaceFormat

	createErr error
	noQueues  bool

	createdFamily     uint32
	createdQueueCount uint32
	createdExtensions []string
	device            *fakeDevice
}

func graphicsFamily() core.QueueFamily {
	return core.QueueFamily{Flags: vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit), QueueCount: 4}
}

func computeFamily() core.QueueFamily {
	return core.QueueFamily{Flags: vk.QueueFlags(vk.QueueComputeBit), QueueCount: 2}
}

// newFakeGPU returns a device that passes selection and supports
// extents up to 4096x4096.
func newFakeGPU(name string, deviceType vk.PhysicalDeviceType) *fakePhysicalDevice {
	return &fakePhysicalDevice{
		journal: &journal{},
		props: core.DeviceProperties{
			Name:       name,
			DeviceType: deviceType,
			APIVersion: vk.MakeVersion(1, 1, 0),
		},
		families:   []core.QueueFamily{graphicsFamily()},
		extensions: []string{"VK_KHR_maintenance1", vk.KhrSwapchainExtensionName},
		present:    map[uint32]bool{0: true},
		caps: core.SurfaceCapabilities{
			MinImageCount:           2,
			MaxImageCount:           8,
			CurrentExtent:           core.Extent{Width: 800, Height: 600},
			MinImageExtent:          core.Extent{Width: 1, Height: 1},
			MaxImageExtent:          core.Extent{Width: 4096, Height: 4096},
			SupportedTransforms:     vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit),
			CurrentTransform:        vk.SurfaceTransformIdentityBit,
			SupportedCompositeAlpha: vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit),
		},
		formats: []core.SurfaceFormat{
			{Format: testFormat, ColorSpace: testColorSpace},
			{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: testColorSpace},
		},
	}
}

func (p *fakePhysicalDevice) Properties() core.DeviceProperties { return p.props }

func (p *fakePhysicalDevice) QueueFamilies() []core.QueueFamily { return p.families }

func (p *fakePhysicalDevice) Extensions() ([]string, error) { return p.extensions, p.extErr }

func (p *fakePhysicalDevice) SurfaceSupport(queueFamily uint32, s core.Surface) (bool, error) {
	return p.present[queueFamily], p.presentErr
}

func (p *fakePhysicalDevice) SurfaceCapabilities(s core.Surface) (core.SurfaceCapabilities, error) {
	return p.caps, p.capsErr
}

func (p *fakePhysicalDevice) SurfaceFormats(s core.Surface) ([]core.SurfaceFormat, error) {
	return p.formats, nil
}

func (p *fakePhysicalDevice) CreateDevice(queueFamily, queueCount uint32, extensions []string) (core.Device, []core.Queue, error) {
	p.createdFamily = queueFamily
	p.createdQueueCount = queueCount
	p.createdExtensions = extensions
	if p.createErr != nil {
		return nil, nil, p.createErr
	}

	p.device = &fakeDevice{journal: p.journal, framebufferErrAt: -1}
	var queues []core.Queue
	if !p.noQueues {
		for idx := uint32(0); idx < queueCount; idx++ {
			queues = append(queues, &fakeQueue{journal: p.journal})
		}
	}
	return p.device, queues, nil
}

func (p *fakePhysicalDevice) Inner() interface{} { return p }

type fakeDevice struct {
	journal *journal

	swapchainErr     error
	viewErr          error
	framebufferErrAt int
	poolErr          error
	fenceErr         error
	fenceWaitErr     error
	waitIdleErr      error

	swapchains   []*fakeSwapchain
	views        []*fakeImageView
	framebuffers []*fakeFramebuffer
	fences       []*fakeFence
	pool         *fakeCommandPool
	waitIdle     int
	destroyed    bool
}

func (d *fakeDevice) CreateSwapchain(info core.SwapchainCreateInfo) (core.Swapchain, []core.Image, error) {
	if d.swapchainErr != nil {
		return nil, nil, d.swapchainErr
	}
	sc := &fakeSwapchain{journal: d.journal, id: len(d.swapchains) + 1, info: info}
	d.swapchains = append(d.swapchains, sc)
	d.journal.add("swapchain %d created", sc.id)

	images := make([]core.Image, info.MinImageCount)
	for idx := range images {
		images[idx] = &fakeImage{format: info.ImageFormat}
	}
	sc.info.OldSwapchain = nil
	sc.oldSwapchain = info.OldSwapchain
	return sc, images, nil
}

func (d *fakeDevice) CreateImageView(image core.Image) (core.ImageView, error) {
	if d.viewErr != nil {
		return nil, d.viewErr
	}
	view := &fakeImageView{format: image.Format()}
	d.views = append(d.views, view)
	return view, nil
}

func (d *fakeDevice) CreateRenderPass(desc core.RenderPassDescription) (core.RenderPass, error) {
	return &fakeRenderPass{desc: desc}, nil
}

func (d *fakeDevice) CreateFramebuffer(rp core.RenderPass, attachments []core.ImageView, extent core.Extent) (core.Framebuffer, error) {
	if d.framebufferErrAt == len(d.framebuffers) {
		return nil, errors.New("out of device memory")
	}
	fb := &fakeFramebuffer{attachments: attachments, extent: extent}
	d.framebuffers = append(d.framebuffers, fb)
	return fb, nil
}

func (d *fakeDevice) CreateCommandPool(queueFamily uint32) (core.CommandPool, error) {
	if d.poolErr != nil {
		return nil, d.poolErr
	}
	d.pool = &fakeCommandPool{queueFamily: queueFamily}
	return d.pool, nil
}

func (d *fakeDevice) CreateFence() (core.Fence, error) {
	if d.fenceErr != nil {
		return nil, d.fenceErr
	}
	fence := &fakeFence{
		journal: d.journal,
		name:    fmt.Sprintf("fence %d", len(d.fences)+1),
		waitErr: d.fenceWaitErr,
	}
	d.fences = append(d.fences, fence)
	return fence, nil
}

func (d *fakeDevice) WaitIdle() error {
	d.waitIdle++
	return d.waitIdleErr
}

func (d *fakeDevice) Inner() interface{} { return d }

func (d *fakeDevice) Destroy() { d.destroyed = true }

type fakeQueue struct {
	journal   *journal
	submitErr error
	submitted []core.CommandBuffer
}

func (q *fakeQueue) Submit(cb core.CommandBuffer, fence core.Fence) error {
	if q.submitErr != nil {
		return q.submitErr
	}
	q.submitted = append(q.submitted, cb)
	q.journal.add("submit")
	if f, ok := fence.(*fakeFence); ok {
		f.signaled = true
	}
	return nil
}

func (q *fakeQueue) Inner() interface{} { return q }

type fakeFence struct {
	journal   *journal
	name      string
	signaled  bool
	waited    int
	timeout   uint64
	waitErr   error
	destroyed bool
}

func (f *fakeFence) Wait(timeout uint64) error {
	f.waited++
	f.timeout = timeout
	f.journal.add("%s waited", f.name)
	return f.waitErr
}

func (f *fakeFence) Destroy() { f.destroyed = true }

type fakeCommandPool struct {
	queueFamily uint32
	allocErr    error
	buffers     []*fakeCommandBuffer
	destroyed   bool
}

func (p *fakeCommandPool) Allocate() (core.CommandBuffer, error) {
	if p.allocErr != nil {
		return nil, p.allocErr
	}
	cb := &fakeCommandBuffer{}
	p.buffers = append(p.buffers, cb)
	return cb, nil
}

func (p *fakeCommandPool) Destroy() { p.destroyed = true }

type fakeCommandBuffer struct {
	begun    bool
	ended    bool
	released bool
}

func (c *fakeCommandBuffer) Begin() error {
	c.begun = true
	return nil
}

func (c *fakeCommandBuffer) End() error {
	c.ended = true
	return nil
}

func (c *fakeCommandBuffer) Release() { c.released = true }

func (c *fakeCommandBuffer) Inner() interface{} { return c }

type fakeSwapchain struct {
	journal      *journal
	id           int
	info         core.SwapchainCreateInfo
	oldSwapchain core.Swapchain
	destroyed    bool
}

func (s *fakeSwapchain) CreateInfo() core.SwapchainCreateInfo { return s.info }

func (s *fakeSwapchain) Inner() interface{} { return s }

func (s *fakeSwapchain) Destroy() {
	s.destroyed = true
	s.journal.add("swapchain %d destroyed", s.id)
}

type fakeImage struct {
	format vk.Format
}

func (i *fakeImage) Format() vk.Format { return i.format }

func (i *fakeImage) Inner() interface{} { return i }

type fakeImageView struct {
	format    vk.Format
	destroyed bool
}

func (v *fakeImageView) Format() vk.Format { return v.format }

func (v *fakeImageView) Destroy() { v.destroyed = true }

type fakeRenderPass struct {
	desc      core.RenderPassDescription
	destroyed bool
}

func (r *fakeRenderPass) ColorFormat() vk.Format { return r.desc.ColorFormat }

func (r *fakeRenderPass) Destroy() { r.destroyed = true }

type fakeFramebuffer struct {
	attachments []core.ImageView
	extent      core.Extent
	destroyed   bool
}

func (f *fakeFramebuffer) Attachments() []core.ImageView { return f.attachments }

func (f *fakeFramebuffer) Destroy() { f.destroyed = true }

func imagesOf(format vk.Format, n int) []core.Image {
	images := make([]core.Image, n)
	for idx := range images {
		images[idx] = &fakeImage{format: format}
	}
	return images
}
