// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package window provides an SDL2 backed window the engine can present to.
package window

import (
	"unsafe"

	"github.com/devblok/korugpu/core"
	"github.com/devblok/korugpu/vulkan"
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

// Init initialises SDL video and events and loads the Vulkan library
// through SDL. Call Quit when done.
func Init() error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return errors.Wrap(err, "sdl.Init()")
	}
	if err := sdl.VulkanLoadLibrary(""); err != nil {
		sdl.Quit()
		return errors.Wrap(err, "sdl.VulkanLoadLibrary()")
	}
	return nil
}

// Quit unloads the Vulkan library and shuts SDL down
func Quit() {
	sdl.VulkanUnloadLibrary()
	sdl.Quit()
}

// ProcAddr returns the Vulkan loader entry point SDL loaded
func ProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

// New creates a resizable Vulkan capable window
func New(title string, width, height uint32) (*Window, error) {
	w, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(width),
		int32(height),
		sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, errors.Wrap(err, "sdl.CreateWindow()")
	}
	return &Window{window: w}, nil
}

// Window is an SDL window with a Vulkan surface
type Window struct {
	window  *sdl.Window
	surface *vulkan.Surface
}

var _ core.Window = (*Window)(nil)

// RequiredInstanceExtensions returns the instance extensions
// needed to present to this window
func (w *Window) RequiredInstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

// CreateSurface creates the window surface on the instance
func (w *Window) CreateSurface(instance *vulkan.Instance) error {
	pSurface, err := w.window.VulkanCreateSurface(instance.Inner())
	if err != nil {
		return errors.Wrap(err, "sdl.VulkanCreateSurface()")
	}
	w.surface = vulkan.SurfaceFromPointer(instance, pSurface)
	return nil
}

// InnerSize implements interface
func (w *Window) InnerSize() core.Extent {
	width, height := w.window.VulkanGetDrawableSize()
	if width < 0 || height < 0 {
		return core.Extent{}
	}
	return core.Extent{Width: uint32(width), Height: uint32(height)}
}

// Surface implements interface
func (w *Window) Surface() core.Surface {
	return w.surface
}

// ID returns the SDL window id, used to match window events
func (w *Window) ID() uint32 {
	id, err := w.window.GetID()
	if err != nil {
		return 0
	}
	return id
}

// DestroySurface destroys the window surface. It has to be called before
// the instance the surface was created on is destroyed.
func (w *Window) DestroySurface() {
	if w.surface == nil {
		return
	}
	w.surface.Destroy()
	w.surface = nil
}

// Destroy destroys the window. The surface is left to DestroySurface.
func (w *Window) Destroy() {
	w.window.Destroy()
}
