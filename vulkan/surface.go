// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vulkan

import (
	"unsafe"

	"github.com/devblok/korugpu/core"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Surface wraps a window surface handle created by the windowing library
type Surface struct {
	instance vk.Instance
	surface  vk.Surface
}

var _ core.Surface = (*Surface)(nil)

// SurfaceFromPointer wraps the surface pointer returned by the window
func SurfaceFromPointer(instance *Instance, pSurface unsafe.Pointer) *Surface {
	return &Surface{
		instance: instance.instance,
		surface:  vk.SurfaceFromPointer(uintptr(pSurface)),
	}
}

// Inner implements interface
func (s *Surface) Inner() interface{} {
	if s == nil || s.surface == vk.NullSurface {
		return vk.NullSurface
	}
	return s.surface
}

// Destroy destroys the surface, only the window owning it should call this.
// It must run before the instance the surface was created on is destroyed.
// Calling it again is a no-op.
func (s *Surface) Destroy() {
	if s == nil || s.surface == vk.NullSurface {
		return
	}
	vk.DestroySurface(s.instance, s.surface, nil)
	s.surface = vk.NullSurface
}

func surfaceHandle(s core.Surface) (vk.Surface, error) {
	if s == nil {
		return vk.NullSurface, errors.New("nil surface")
	}
	surface, ok := s.Inner().(vk.Surface)
	if !ok {
		return vk.NullSurface, errors.Errorf("surface of type %T is not a Vulkan surface", s.Inner())
	}
	return surface, nil
}
