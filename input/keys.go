package input

import "fmt"

// Key is a keyboard key. Printable keys use their ASCII upper case code.
type Key uint16

const (
	KeyBackspace Key = 0x08
	KeyEnter     Key = 0x0D
	KeyTab       Key = 0x09
	KeyShift     Key = 0x10
	KeyControl   Key = 0x11
	KeyPause     Key = 0x13
	KeyCapital   Key = 0x14
	KeyEscape    Key = 0x1B
	KeySpace     Key = 0x20
	KeyPrior     Key = 0x21
	KeyNext      Key = 0x22
	KeyEnd       Key = 0x23
	KeyHome      Key = 0x24
	KeyLeft      Key = 0x25
	KeyUp        Key = 0x26
	KeyRight     Key = 0x27
	KeyDown      Key = 0x28
	KeyInsert    Key = 0x2D
	KeyDelete    Key = 0x2E

	Key0 Key = 0x30
	Key9 Key = 0x39

	KeyA Key = 0x41
	KeyD Key = 0x44
	KeyS Key = 0x53
	KeyW Key = 0x57
	KeyZ Key = 0x5A

	KeyF1  Key = 0x70
	KeyF12 Key = 0x7B

	KeyLShift   Key = 0xA0
	KeyRShift   Key = 0xA1
	KeyLControl Key = 0xA2
	KeyRControl Key = 0xA3
	KeyLAlt     Key = 0xA4
	KeyRAlt     Key = 0xA5

	MaxKeys = 0x100
)

var keyNames = map[Key]string{
	KeyBackspace: "Backspace",
	KeyEnter:     "Enter",
	KeyTab:       "Tab",
	KeyShift:     "Shift",
	KeyControl:   "Control",
	KeyPause:     "Pause",
	KeyCapital:   "CapsLock",
	KeyEscape:    "Escape",
	KeySpace:     "Space",
	KeyPrior:     "PageUp",
	KeyNext:      "PageDown",
	KeyEnd:       "End",
	KeyHome:      "Home",
	KeyLeft:      "Left",
	KeyUp:        "Up",
	KeyRight:     "Right",
	KeyDown:      "Down",
	KeyInsert:    "Insert",
	KeyDelete:    "Delete",
	KeyLShift:    "LeftShift",
	KeyRShift:    "RightShift",
	KeyLControl:  "LeftControl",
	KeyRControl:  "RightControl",
	KeyLAlt:      "LeftAlt",
	KeyRAlt:      "RightAlt",
}

func (k Key) String() string {
	switch {
	case k >= Key0 && k <= Key9, k >= KeyA && k <= KeyZ:
		return string(rune(k))
	case k >= KeyF1 && k <= KeyF12:
		return fmt.Sprintf("F%d", k-KeyF1+1)
	}
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%#x)", uint16(k))
}

// Button is a mouse button.
type Button uint16

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle

	MaxButtons
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "Left"
	case ButtonRight:
		return "Right"
	case ButtonMiddle:
		return "Middle"
	}
	return fmt.Sprintf("Button(%d)", uint16(b))
}
