// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package model holds the camera transforms shared with the GPU.
package model

import (
	"github.com/devblok/korugpu/core"
	glm "github.com/go-gl/mathgl/mgl32"
)

// Uniform defines a model-view-projection object
type Uniform struct {
	Model      glm.Mat4
	View       glm.Mat4
	Projection glm.Mat4
}

// Camera parameters used by NewUniform
const (
	FieldOfView = 45
	NearPlane   = 0.1
	FarPlane    = 10
)

// NewUniform builds a model-view-projection for a target of the given
// extent. The projection is flipped on Y to match Vulkan clip space.
// A zero extent yields an identity projection.
func NewUniform(extent core.Extent) Uniform {
	ubo := Uniform{
		Model:      glm.Ident4(),
		View:       glm.LookAt(2, 2, 2, 0, 0, 0, 0, 0, 1),
		Projection: glm.Ident4(),
	}
	if extent.IsZero() {
		return ubo
	}

	aspect := float32(extent.Width) / float32(extent.Height)
	ubo.Projection = glm.Perspective(glm.DegToRad(FieldOfView), aspect, NearPlane, FarPlane)
	ubo.Projection[5] *= -1
	return ubo
}
