// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// Operation records GPU work against the engine's state.
type Operation interface {
	// Record returns a finished command buffer ready for submission
	Record(*GraphicalEngine) (CommandBuffer, error)
}

// OperationFunc adapts a function to the Operation interface.
type OperationFunc func(*GraphicalEngine) (CommandBuffer, error)

// Record implements interface
func (f OperationFunc) Record(e *GraphicalEngine) (CommandBuffer, error) {
	return f(e)
}

// Compute records the operation, submits it to the first queue and blocks
// until the GPU signals completion. The command buffer is released
// afterwards. There is no timeout.
//
// If the wait itself fails the submission may still be pending, so the
// command buffer and fence are left alive rather than freed under the GPU.
func (e *GraphicalEngine) Compute(op Operation) error {
	commandBuffer, err := op.Record(e)
	if err != nil {
		return errors.Wrap(err, "recording operation")
	}

	fence, err := e.logicalDevice.Device().CreateFence()
	if err != nil {
		commandBuffer.Release()
		return errors.Wrap(err, "creating fence")
	}

	var start time.Time
	if e.configuration.DebugMode {
		start = time.Now()
	}

	if err := e.logicalDevice.FirstQueue().Submit(commandBuffer, fence); err != nil {
		fence.Destroy()
		commandBuffer.Release()
		return errors.Wrap(err, "submitting command buffer")
	}

	if err := fence.Wait(math.MaxUint64); err != nil {
		return errors.Wrap(err, "waiting for fence")
	}

	if e.configuration.DebugMode {
		e.log.WithField("op", "Compute").
			WithField("ms", time.Since(start).Milliseconds()).
			Debug("compute operation finished")
	}

	fence.Destroy()
	commandBuffer.Release()
	return nil
}
