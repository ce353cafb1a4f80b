// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// GraphicalEngine owns the logical device, the swapchain with its images
// and the framebuffers built from them. It is meant to be driven from a
// single goroutine.
type GraphicalEngine struct {
	configuration EngineConfiguration
	log           logrus.FieldLogger

	instance      Instance
	window        Window
	logicalDevice *LogicalDevice

	swapchain       Swapchain
	swapchainImages []Image
	framebuffers    []Framebuffer
}

var _ BaseEngine = (*GraphicalEngine)(nil)

// New selects a physical device for the window's surface, opens a logical
// device on it and creates the initial swapchain. Logging has to be set up
// by the caller beforehand.
func New(instance Instance, window Window, cfg EngineConfiguration) (*GraphicalEngine, error) {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithField("op", "New").Debug("starting engine")

	physicalDevice, queueFamily, err := selectPhysicalDevice(instance, window.Surface(), log)
	if err != nil {
		return nil, err
	}

	logicalDevice, err := CreateLogicalDevice(physicalDevice, queueFamily)
	if err != nil {
		return nil, err
	}
	logicalDevice.LogInformation(log, logrus.DebugLevel)

	swapchain, images, err := createSwapchain(logicalDevice, window, log)
	if err != nil {
		logicalDevice.Destroy()
		return nil, err
	}

	return &GraphicalEngine{
		configuration:   cfg,
		log:             log,
		instance:        instance,
		window:          window,
		logicalDevice:   logicalDevice,
		swapchain:       swapchain,
		swapchainImages: images,
	}, nil
}

// RecreateSwapChainAndImages replaces the swapchain with one matching the
// window's current size and rebuilds the framebuffers against renderPass.
//
// Every fence in inFlight is waited on first, so frames still reading the
// old images complete before anything is replaced.
//
// The old swapchain and framebuffers are only destroyed once the new set
// is fully built. On failure the engine keeps the previous state.
//
// A nil result with a nil error means the window size cannot back a
// swapchain right now (for example while minimized). The previous swapchain
// stays in place and the caller should skip the frame and try again later.
func (e *GraphicalEngine) RecreateSwapChainAndImages(renderPass RenderPass, inFlight ...Fence) ([]Framebuffer, error) {
	log := e.log.WithField("op", "RecreateSwapChainAndImages")

	for _, fence := range inFlight {
		if err := fence.Wait(math.MaxUint64); err != nil {
			return nil, errors.Wrap(err, "waiting for in-flight frame")
		}
	}

	swapchain, images, err := recreateSwapchain(e.logicalDevice, e.window, e.swapchain)
	if errors.Is(err, ErrImageExtentNotSupported) {
		log.WithField("size", e.window.InnerSize()).Debug("extent not supported, skipping")
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	extent := swapchain.CreateInfo().ImageExtent
	framebuffers, err := BuildFramebuffers(e.logicalDevice.Device(), images, renderPass, extent)
	if err != nil {
		swapchain.Destroy()
		return nil, errors.Wrap(err, "building framebuffers")
	}

	DestroyFramebuffers(e.framebuffers)
	e.swapchain.Destroy()

	e.swapchain = swapchain
	e.swapchainImages = images
	e.framebuffers = framebuffers

	log.WithFields(logrus.Fields{
		"width":  extent.Width,
		"height": extent.Height,
		"images": len(images),
	}).Debug("swapchain recreated")
	return framebuffers, nil
}

// CreateRenderPass creates a single subpass render pass with one color
// attachment in the swapchain's format, cleared on load and stored.
func (e *GraphicalEngine) CreateRenderPass() (RenderPass, error) {
	renderPass, err := e.logicalDevice.Device().CreateRenderPass(RenderPassDescription{
		ColorFormat: e.swapchain.CreateInfo().ImageFormat,
		Samples:     vk.SampleCount1Bit,
		LoadOp:      vk.AttachmentLoadOpClear,
		StoreOp:     vk.AttachmentStoreOpStore,
		FinalLayout: vk.ImageLayoutPresentSrc,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating render pass")
	}
	return renderPass, nil
}

// CreateFrameBuffers builds a framebuffer for each swapchain image against
// renderPass. The engine keeps the result and destroys the set it replaces.
func (e *GraphicalEngine) CreateFrameBuffers(renderPass RenderPass) ([]Framebuffer, error) {
	framebuffers, err := BuildFramebuffers(e.logicalDevice.Device(), e.swapchainImages,
		renderPass, e.swapchain.CreateInfo().ImageExtent)
	if err != nil {
		return nil, errors.Wrap(err, "building framebuffers")
	}

	DestroyFramebuffers(e.framebuffers)
	e.framebuffers = framebuffers
	return framebuffers, nil
}

// Window returns the window the engine presents to
func (e *GraphicalEngine) Window() Window {
	return e.window
}

// Swapchain returns the current swapchain
func (e *GraphicalEngine) Swapchain() Swapchain {
	return e.swapchain
}

// SwapchainImages returns the images of the current swapchain
func (e *GraphicalEngine) SwapchainImages() []Image {
	return e.swapchainImages
}

// Framebuffers returns the framebuffers last built by the engine
func (e *GraphicalEngine) Framebuffers() []Framebuffer {
	return e.framebuffers
}

// Instance implements interface
func (e *GraphicalEngine) Instance() Instance {
	return e.instance
}

// LogicalDevice implements interface
func (e *GraphicalEngine) LogicalDevice() *LogicalDevice {
	return e.logicalDevice
}

// Destroy waits for the device to go idle and releases everything the engine
// created. The instance and the window's surface are left alone.
func (e *GraphicalEngine) Destroy() {
	if err := e.logicalDevice.Device().WaitIdle(); err != nil {
		e.log.WithError(err).Warn("device did not go idle before destruction")
	}

	DestroyFramebuffers(e.framebuffers)
	e.framebuffers = nil

	e.swapchain.Destroy()
	e.swapchainImages = nil

	e.logicalDevice.Destroy()
}
