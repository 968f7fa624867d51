package event

// Code identifies an event. Codes up to MaxCode are reserved for the
// runtime; applications pick codes above it.
type Code uint16

const (
	// ApplicationQuit asks the application to shut down on the next tick.
	ApplicationQuit Code = 0x01

	// Context: U16(0) = key code.
	KeyPressed  Code = 0x02
	KeyReleased Code = 0x03

	// Context: U16(0) = button.
	ButtonPressed  Code = 0x04
	ButtonReleased Code = 0x05

	// Context: I16(0) = x, I16(1) = y.
	MouseMoved Code = 0x06

	// Context: I8(0) = z delta.
	MouseWheel Code = 0x07

	// Context: U16(0) = width, U16(1) = height.
	Resized Code = 0x08

	MaxCode Code = 0xFF
)

var codeNames = map[Code]string{
	ApplicationQuit: "ApplicationQuit",
	KeyPressed:      "KeyPressed",
	KeyReleased:     "KeyReleased",
	ButtonPressed:   "ButtonPressed",
	ButtonReleased:  "ButtonReleased",
	MouseMoved:      "MouseMoved",
	MouseWheel:      "MouseWheel",
	Resized:         "Resized",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	if c > MaxCode {
		return "Application"
	}
	return "Reserved"
}
