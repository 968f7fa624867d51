// Package event is an in-process publish/subscribe bus keyed by small
// integer codes.
package event

import (
	"reflect"
	"sync"

	"github.com/andewx/dieselrt/logging"
)

// Handler reacts to an event. Returning true marks the event handled and
// stops delivery to the remaining listeners.
type Handler func(code Code, sender, listener any, ctx Context) bool

type registration struct {
	listener any
	handler  Handler
	fn       uintptr
}

// Bus dispatches events to registered handlers. The zero value is not
// usable; create one with NewBus.
type Bus struct {
	mu         sync.RWMutex
	registered map[Code][]registration
}

func NewBus() *Bus {
	return &Bus{registered: make(map[Code][]registration)}
}

func funcID(h Handler) uintptr {
	return reflect.ValueOf(h).Pointer()
}

// Register adds handler for code on behalf of listener, which must be
// comparable (usually a pointer or nil). A listener may register a given
// handler for a code only once; duplicates return false.
func (b *Bus) Register(code Code, listener any, handler Handler) bool {
	if handler == nil {
		return false
	}
	fn := funcID(handler)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.registered == nil {
		logging.Logger().Warn("event: register on a shut down bus", "code", code)
		return false
	}
	for _, r := range b.registered[code] {
		if r.listener == listener && r.fn == fn {
			logging.Logger().Warn("event: duplicate registration", "code", code)
			return false
		}
	}
	b.registered[code] = append(b.registered[code], registration{listener: listener, handler: handler, fn: fn})
	return true
}

// Unregister removes a registration made with the same listener and
// handler. It reports whether one was found.
func (b *Bus) Unregister(code Code, listener any, handler Handler) bool {
	if handler == nil {
		return false
	}
	fn := funcID(handler)

	b.mu.Lock()
	defer b.mu.Unlock()
	regs := b.registered[code]
	for i, r := range regs {
		if r.listener == listener && r.fn == fn {
			b.registered[code] = append(regs[:i:i], regs[i+1:]...)
			return true
		}
	}
	return false
}

// Fire delivers ctx to the handlers of code in registration order and
// reports whether one of them handled it.
func (b *Bus) Fire(code Code, sender any, ctx Context) bool {
	b.mu.RLock()
	regs := b.registered[code]
	b.mu.RUnlock()

	// regs is never mutated in place, handlers may (un)register freely.
	for _, r := range regs {
		if r.handler(code, sender, r.listener, ctx) {
			return true
		}
	}
	return false
}

// Shutdown drops every registration. Later registrations fail.
func (b *Bus) Shutdown() {
	b.mu.Lock()
	b.registered = nil
	b.mu.Unlock()
}
