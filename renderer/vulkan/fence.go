package vulkan

import (
	"github.com/pkg/errors"

	"github.com/andewx/dieselrt/logging"
	"github.com/andewx/dieselrt/renderer/gpu"
)

// Fence caches whether the driver fence is known to be signaled so waits
// on completed work skip the driver.
type Fence struct {
	Handle   gpu.Fence
	signaled bool
}

func createFence(drv gpu.Driver, dev *Device, signaled bool) (*Fence, error) {
	h, err := drv.CreateFence(dev.Logical, signaled)
	if err != nil {
		return nil, errors.Wrap(err, "create fence")
	}
	return &Fence{Handle: h, signaled: signaled}, nil
}

func (f *Fence) Signaled() bool { return f.signaled }

// Wait blocks up to timeout nanoseconds. A timeout is returned as
// gpu.ErrTimeout so callers can treat it as recoverable.
func (f *Fence) Wait(drv gpu.Driver, dev *Device, timeout uint64) error {
	if f.signaled {
		return nil
	}
	err := drv.WaitForFence(dev.Logical, f.Handle, timeout)
	if err != nil {
		if errors.Cause(err) == gpu.ErrTimeout {
			logging.Logger().Warn("fence wait timed out", "fence", f.Handle)
		}
		return err
	}
	f.signaled = true
	return nil
}

func (f *Fence) Reset(drv gpu.Driver, dev *Device) error {
	if !f.signaled {
		return nil
	}
	if err := drv.ResetFence(dev.Logical, f.Handle); err != nil {
		return errors.Wrap(err, "reset fence")
	}
	f.signaled = false
	return nil
}

func (f *Fence) Destroy(drv gpu.Driver, dev *Device) {
	if f.Handle != 0 {
		drv.DestroyFence(dev.Logical, f.Handle)
	}
	f.Handle = 0
	f.signaled = false
}
