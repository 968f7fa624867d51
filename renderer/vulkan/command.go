package vulkan

import (
	"github.com/pkg/errors"

	"github.com/andewx/dieselrt/renderer/gpu"
)

type CommandBufferState int

const (
	CommandBufferNotAllocated CommandBufferState = iota
	CommandBufferReady
	CommandBufferRecording
	CommandBufferInRenderPass
	CommandBufferRecordingEnded
	CommandBufferSubmitted
)

func (s CommandBufferState) String() string {
	switch s {
	case CommandBufferNotAllocated:
		return "NotAllocated"
	case CommandBufferReady:
		return "Ready"
	case CommandBufferRecording:
		return "Recording"
	case CommandBufferInRenderPass:
		return "InRenderPass"
	case CommandBufferRecordingEnded:
		return "RecordingEnded"
	case CommandBufferSubmitted:
		return "Submitted"
	}
	return "Unknown"
}

// CommandBuffer pairs a driver command buffer with the state the backend
// believes it is in.
type CommandBuffer struct {
	Handle gpu.CommandBuffer
	State  CommandBufferState
}

func allocateCommandBuffers(drv gpu.Driver, dev *Device, count int) ([]*CommandBuffer, error) {
	handles, err := drv.AllocateCommandBuffers(dev.Logical, dev.GraphicsCommandPool, uint32(count))
	if err != nil {
		return nil, errors.Wrap(err, "allocate command buffers")
	}
	out := make([]*CommandBuffer, len(handles))
	for i, h := range handles {
		out[i] = &CommandBuffer{Handle: h, State: CommandBufferReady}
	}
	return out, nil
}

func freeCommandBuffers(drv gpu.Driver, dev *Device, buffers []*CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	handles := make([]gpu.CommandBuffer, 0, len(buffers))
	for _, cb := range buffers {
		if cb.Handle != 0 {
			handles = append(handles, cb.Handle)
		}
		cb.Handle = 0
		cb.State = CommandBufferNotAllocated
	}
	drv.FreeCommandBuffers(dev.Logical, dev.GraphicsCommandPool, handles)
}

func (cb *CommandBuffer) Begin(drv gpu.Driver) error {
	if cb.State != CommandBufferReady {
		return errors.Wrapf(ErrCommandBufferState, "begin in state %s", cb.State)
	}
	if err := drv.BeginCommandBuffer(cb.Handle); err != nil {
		return errors.Wrap(err, "begin command buffer")
	}
	cb.State = CommandBufferRecording
	return nil
}

func (cb *CommandBuffer) End(drv gpu.Driver) error {
	if cb.State != CommandBufferRecording {
		return errors.Wrapf(ErrCommandBufferState, "end in state %s", cb.State)
	}
	if err := drv.EndCommandBuffer(cb.Handle); err != nil {
		return errors.Wrap(err, "end command buffer")
	}
	cb.State = CommandBufferRecordingEnded
	return nil
}

func (cb *CommandBuffer) UpdateSubmitted() error {
	if cb.State != CommandBufferRecordingEnded {
		return errors.Wrapf(ErrCommandBufferState, "submit in state %s", cb.State)
	}
	cb.State = CommandBufferSubmitted
	return nil
}

// Reset returns the buffer to Ready from any allocated state.
func (cb *CommandBuffer) Reset(drv gpu.Driver) error {
	if cb.State == CommandBufferNotAllocated {
		return errors.Wrap(ErrCommandBufferState, "reset of unallocated command buffer")
	}
	if err := drv.ResetCommandBuffer(cb.Handle); err != nil {
		return errors.Wrap(err, "reset command buffer")
	}
	cb.State = CommandBufferReady
	return nil
}
