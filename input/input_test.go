package input

import (
	"testing"

	"github.com/andewx/dieselrt/event"
)

type recorder struct {
	codes []event.Code
	ctxs  []event.Context
}

func (r *recorder) on(code event.Code, _, _ any, ctx event.Context) bool {
	r.codes = append(r.codes, code)
	r.ctxs = append(r.ctxs, ctx)
	return false
}

func newRecorded(t *testing.T, codes ...event.Code) (*System, *recorder) {
	t.Helper()
	bus := event.NewBus()
	rec := &recorder{}
	for _, c := range codes {
		bus.Register(c, rec, rec.on)
	}
	return New(bus), rec
}

func TestProcessKeyFiresOnChange(t *testing.T) {
	s, rec := newRecorded(t, event.KeyPressed, event.KeyReleased)

	s.ProcessKey(KeyEscape, true)
	s.ProcessKey(KeyEscape, true)
	s.ProcessKey(KeyEscape, false)

	want := []event.Code{event.KeyPressed, event.KeyReleased}
	if len(rec.codes) != len(want) {
		t.Fatalf("events\nhave %v\nwant %v", rec.codes, want)
	}
	for i := range want {
		if rec.codes[i] != want[i] {
			t.Fatalf("event %d\nhave %v\nwant %v", i, rec.codes[i], want[i])
		}
		if Key(rec.ctxs[i].U16(0)) != KeyEscape {
			t.Fatalf("event %d key\nhave %v\nwant %v", i, Key(rec.ctxs[i].U16(0)), KeyEscape)
		}
	}
}

func TestUpdateRollsState(t *testing.T) {
	s, _ := newRecorded(t)

	s.ProcessKey(KeyW, true)
	if !s.IsKeyDown(KeyW) || s.WasKeyDown(KeyW) {
		t.Fatal("before Update: want down now, up before")
	}
	s.Update(0.016)
	if !s.WasKeyDown(KeyW) {
		t.Fatal("after Update: WasKeyDown = false")
	}
	s.ProcessKey(KeyW, false)
	if !s.IsKeyUp(KeyW) || !s.WasKeyDown(KeyW) {
		t.Fatal("release: want up now, down before")
	}
}

func TestMouse(t *testing.T) {
	s, rec := newRecorded(t, event.MouseMoved, event.ButtonPressed, event.MouseWheel)

	s.ProcessMouseMove(10, 20)
	s.ProcessMouseMove(10, 20)
	s.ProcessButton(ButtonRight, true)
	s.ProcessMouseWheel(-1)

	want := []event.Code{event.MouseMoved, event.ButtonPressed, event.MouseWheel}
	if len(rec.codes) != len(want) {
		t.Fatalf("events\nhave %v\nwant %v", rec.codes, want)
	}
	if x, y := s.MousePosition(); x != 10 || y != 20 {
		t.Fatalf("MousePosition\nhave %d,%d\nwant 10,20", x, y)
	}
	if !s.IsButtonDown(ButtonRight) || s.IsButtonDown(ButtonLeft) {
		t.Fatal("button state mismatch")
	}
	s.Update(0)
	if px, py := s.PreviousMousePosition(); px != 10 || py != 20 {
		t.Fatalf("PreviousMousePosition\nhave %d,%d\nwant 10,20", px, py)
	}
}

func TestKeyString(t *testing.T) {
	cases := map[Key]string{KeyA: "A", Key9: "9", KeyF12: "F12", KeyEscape: "Escape"}
	for k, want := range cases {
		if k.String() != want {
			t.Errorf("%#x.String()\nhave %q\nwant %q", uint16(k), k.String(), want)
		}
	}
}
