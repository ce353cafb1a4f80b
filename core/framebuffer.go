// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/pkg/errors"
)

// BuildFramebuffers creates a default view and a framebuffer for every image,
// each framebuffer having the view as its single attachment. A view format
// that does not match the render pass color attachment is a caller error.
// Nothing created by a failed call is left alive.
func BuildFramebuffers(device Device, images []Image, renderPass RenderPass, extent Extent) ([]Framebuffer, error) {
	framebuffers := make([]Framebuffer, 0, len(images))
	fail := func(err error) ([]Framebuffer, error) {
		DestroyFramebuffers(framebuffers)
		return nil, err
	}

	for idx, image := range images {
		view, err := device.CreateImageView(image)
		if err != nil {
			return fail(errors.Wrapf(err, "image view %d", idx))
		}

		if view.Format() != renderPass.ColorFormat() {
			view.Destroy()
			return fail(errors.Errorf("image view %d: format %d does not match render pass color format %d",
				idx, view.Format(), renderPass.ColorFormat()))
		}

		framebuffer, err := device.CreateFramebuffer(renderPass, []ImageView{view}, extent)
		if err != nil {
			view.Destroy()
			return fail(errors.Wrapf(err, "framebuffer %d", idx))
		}
		framebuffers = append(framebuffers, framebuffer)
	}
	return framebuffers, nil
}

// DestroyFramebuffers destroys the framebuffers and the views attached to them.
func DestroyFramebuffers(framebuffers []Framebuffer) {
	for _, fb := range framebuffers {
		attachments := fb.Attachments()
		fb.Destroy()
		for _, view := range attachments {
			view.Destroy()
		}
	}
}
