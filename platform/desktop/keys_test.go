package desktop

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/andewx/dieselrt/input"
)

func TestKeyOf(t *testing.T) {
	cases := []struct {
		in   glfw.Key
		want input.Key
	}{
		{glfw.KeyEscape, input.KeyEscape},
		{glfw.KeyA, input.KeyA},
		{glfw.KeyZ, input.KeyZ},
		{glfw.Key9, input.Key9},
		{glfw.KeyF12, input.KeyF12},
		{glfw.KeyLeftShift, input.KeyLShift},
	}
	for _, c := range cases {
		have, ok := keyOf(c.in)
		if !ok || have != c.want {
			t.Errorf("keyOf(%d)\nhave %v, %v\nwant %v, true", c.in, have, ok, c.want)
		}
	}
}
