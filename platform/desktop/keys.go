package desktop

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/andewx/dieselrt/input"
	"github.com/andewx/dieselrt/logging"
)

var glfwToKey = map[glfw.Key]input.Key{
	glfw.KeyBackspace:    input.KeyBackspace,
	glfw.KeyEnter:        input.KeyEnter,
	glfw.KeyTab:          input.KeyTab,
	glfw.KeyPause:        input.KeyPause,
	glfw.KeyCapsLock:     input.KeyCapital,
	glfw.KeyEscape:       input.KeyEscape,
	glfw.KeySpace:        input.KeySpace,
	glfw.KeyPageUp:       input.KeyPrior,
	glfw.KeyPageDown:     input.KeyNext,
	glfw.KeyEnd:          input.KeyEnd,
	glfw.KeyHome:         input.KeyHome,
	glfw.KeyLeft:         input.KeyLeft,
	glfw.KeyUp:           input.KeyUp,
	glfw.KeyRight:        input.KeyRight,
	glfw.KeyDown:         input.KeyDown,
	glfw.KeyInsert:       input.KeyInsert,
	glfw.KeyDelete:       input.KeyDelete,
	glfw.KeyLeftShift:    input.KeyLShift,
	glfw.KeyRightShift:   input.KeyRShift,
	glfw.KeyLeftControl:  input.KeyLControl,
	glfw.KeyRightControl: input.KeyRControl,
	glfw.KeyLeftAlt:      input.KeyLAlt,
	glfw.KeyRightAlt:     input.KeyRAlt,
}

func keyOf(key glfw.Key) (input.Key, bool) {
	switch {
	case key >= glfw.KeyA && key <= glfw.KeyZ:
		return input.KeyA + input.Key(key-glfw.KeyA), true
	case key >= glfw.Key0 && key <= glfw.Key9:
		return input.Key0 + input.Key(key-glfw.Key0), true
	case key >= glfw.KeyF1 && key <= glfw.KeyF12:
		return input.KeyF1 + input.Key(key-glfw.KeyF1), true
	}
	k, ok := glfwToKey[key]
	if !ok {
		logging.Logger().Debug("unmapped key", "key", glfw.GetKeyName(key, 0))
	}
	return k, ok
}
