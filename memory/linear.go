// Package memory provides the scratch allocators used by the frame loop.
package memory

import (
	"github.com/pkg/errors"

	"github.com/andewx/dieselrt/logging"
)

var (
	ErrOutOfSpace     = errors.New("memory: linear allocator out of space")
	ErrZeroSize       = errors.New("memory: zero sized allocation")
	ErrNotInitialized = errors.New("memory: allocator not initialized")
)

// LinearAllocator hands out consecutive regions of one buffer. Regions are
// released all at once with FreeAll.
type LinearAllocator struct {
	memory     []byte
	allocated  uint64
	ownsMemory bool
}

// NewLinearAllocator creates an allocator over memory, or over a new
// buffer of totalSize bytes when memory is nil. A borrowed buffer shorter
// than totalSize limits the allocator to its length.
func NewLinearAllocator(totalSize uint64, memory []byte) *LinearAllocator {
	a := &LinearAllocator{}
	if memory == nil {
		a.memory = make([]byte, totalSize)
		a.ownsMemory = true
		Track(TagLinearAllocator, totalSize)
	} else {
		a.memory = memory[:min(totalSize, uint64(len(memory)))]
	}
	return a
}

// Allocate returns the next size bytes. The slice's capacity ends at its
// length so appends cannot spill into the following region.
func (a *LinearAllocator) Allocate(size uint64) ([]byte, error) {
	if a.memory == nil {
		return nil, ErrNotInitialized
	}
	if size == 0 {
		return nil, ErrZeroSize
	}
	if size > a.Remaining() {
		logging.Logger().Error("linear allocator: out of space",
			"requested", size, "remaining", a.Remaining())
		return nil, errors.Wrapf(ErrOutOfSpace, "requested %d bytes, %d remaining", size, a.Remaining())
	}
	start := a.allocated
	a.allocated += size
	return a.memory[start:a.allocated:a.allocated], nil
}

// FreeAll zeroes the used region and rewinds the cursor. The backing
// buffer is kept.
func (a *LinearAllocator) FreeAll() {
	if a.memory == nil {
		return
	}
	clear(a.memory[:a.allocated])
	a.allocated = 0
}

// Destroy drops the buffer. Further allocations fail.
func (a *LinearAllocator) Destroy() {
	if a.ownsMemory && a.memory != nil {
		Untrack(TagLinearAllocator, uint64(len(a.memory)))
	}
	a.memory = nil
	a.allocated = 0
	a.ownsMemory = false
}

func (a *LinearAllocator) TotalSize() uint64 { return uint64(len(a.memory)) }
func (a *LinearAllocator) Allocated() uint64 { return a.allocated }
func (a *LinearAllocator) Remaining() uint64 { return a.TotalSize() - a.allocated }
func (a *LinearAllocator) OwnsMemory() bool  { return a.ownsMemory }
