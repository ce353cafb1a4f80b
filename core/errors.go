// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrImageExtentNotSupported is returned when the window size cannot back a
// swapchain, typically while minimized or in the middle of a resize. It is
// the only recoverable swapchain error, the frame should be skipped.
var ErrImageExtentNotSupported = errors.New("image extent not supported by surface")

// NoSuitableDeviceError is returned when no physical device passes selection.
type NoSuitableDeviceError struct {
	// Enumerated is the number of devices the instance reported
	Enumerated int
}

func (e *NoSuitableDeviceError) Error() string {
	return fmt.Sprintf("no suitable physical device found among %d enumerated", e.Enumerated)
}

// DeviceCreationError is returned when the driver rejects logical device creation.
type DeviceCreationError struct {
	Err error
}

func (e *DeviceCreationError) Error() string {
	return "logical device creation failed: " + e.Err.Error()
}

// Unwrap returns the driver error.
func (e *DeviceCreationError) Unwrap() error { return e.Err }

// Cause returns the driver error.
func (e *DeviceCreationError) Cause() error { return e.Err }

// SwapchainCreationError is returned when a swapchain cannot be produced
// for the surface and device.
type SwapchainCreationError struct {
	Err error
}

func (e *SwapchainCreationError) Error() string {
	return "swapchain creation failed: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *SwapchainCreationError) Unwrap() error { return e.Err }

// Cause returns the underlying error.
func (e *SwapchainCreationError) Cause() error { return e.Err }
