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

func TestBuildFramebuffers(t *testing.T) {
	c := qt.New(t)

	device := &fakeDevice{journal: &journal{}, framebufferErrAt: -1}
	rp := &fakeRenderPass{desc: core.RenderPassDescription{ColorFormat: testFormat}}
	extent := core.Extent{Width: 320, Height: 200}

	framebuffers, err := core.BuildFramebuffers(device, imagesOf(testFormat, 3), rp, extent)
	c.Assert(err, qt.IsNil)
	c.Assert(framebuffers, qt.HasLen, 3)
	for _, fb := range framebuffers {
		c.Assert(fb.Attachments(), qt.HasLen, 1)
		c.Assert(fb.Attachments()[0].Format(), qt.Equals, testFormat)
		c.Assert(fb.(*fakeFramebuffer).extent, qt.Equals, extent)
	}

	core.DestroyFramebuffers(framebuffers)
	for _, view := range device.views {
		c.Assert(view.destroyed, qt.IsTrue)
	}
}

func TestBuildFramebuffersEmpty(t *testing.T) {
	c := qt.New(t)

	device := &fakeDevice{journal: &journal{}, framebufferErrAt: -1}
	rp := &fakeRenderPass{desc: core.RenderPassDescription{ColorFormat: testFormat}}

	framebuffers, err := core.BuildFramebuffers(device, nil, rp, core.Extent{Width: 1, Height: 1})
	c.Assert(err, qt.IsNil)
	c.Assert(framebuffers, qt.HasLen, 0)
}

func TestBuildFramebuffersFormatMismatch(t *testing.T) {
	c := qt.New(t)

	device := &fakeDevice{journal: &journal{}, framebufferErrAt: -1}
	rp := &fakeRenderPass{desc: core.RenderPassDescription{ColorFormat: vk.FormatR8g8b8a8Unorm}}

	framebuffers, err := core.BuildFramebuffers(device, imagesOf(testFormat, 2), rp, core.Extent{Width: 1, Height: 1})
	c.Assert(framebuffers, qt.IsNil)
	c.Assert(err, qt.ErrorMatches, "image view 0: format .* does not match render pass color format .*")
	c.Assert(device.framebuffers, qt.HasLen, 0)
	for _, view := range device.views {
		c.Assert(view.destroyed, qt.IsTrue)
	}
}

func TestBuildFramebuffersCleansUpOnFailure(t *testing.T) {
	c := qt.New(t)

	c.Run("framebuffer", func(c *qt.C) {
		device := &fakeDevice{journal: &journal{}, framebufferErrAt: 2}
		rp := &fakeRenderPass{desc: core.RenderPassDescription{ColorFormat: testFormat}}

		framebuffers, err := core.BuildFramebuffers(device, imagesOf(testFormat, 3), rp, core.Extent{Width: 1, Height: 1})
		c.Assert(framebuffers, qt.IsNil)
		c.Assert(err, qt.ErrorMatches, "framebuffer 2: out of device memory")
		c.Assert(device.framebuffers, qt.HasLen, 2)
		for _, fb := range device.framebuffers {
			c.Assert(fb.destroyed, qt.IsTrue)
		}
		c.Assert(device.views, qt.HasLen, 3)
		for _, view := range device.views {
			c.Assert(view.destroyed, qt.IsTrue)
		}
	})

	c.Run("view", func(c *qt.C) {
		device := &fakeDevice{journal: &journal{}, framebufferErrAt: -1, viewErr: errors.New("out of host memory")}
		rp := &fakeRenderPass{desc: core.RenderPassDescription{ColorFormat: testFormat}}

		_, err := core.BuildFramebuffers(device, imagesOf(testFormat, 3), rp, core.Extent{Width: 1, Height: 1})
		c.Assert(err, qt.ErrorMatches, "image view 0: out of host memory")
		c.Assert(device.framebuffers, qt.HasLen, 0)
	})
}
