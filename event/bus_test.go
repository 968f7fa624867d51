package event

import "testing"

type listener struct {
	name  string
	seen  []Code
	eat   bool
	width uint16
}

func (l *listener) on(code Code, _, _ any, ctx Context) bool {
	l.seen = append(l.seen, code)
	if code == Resized {
		l.width = ctx.U16(0)
	}
	return l.eat
}

func TestRegisterFire(t *testing.T) {
	bus := NewBus()
	a := &listener{name: "a"}
	b := &listener{name: "b"}

	if !bus.Register(Resized, a, a.on) {
		t.Fatal("Register(a): have false, want true")
	}
	if !bus.Register(Resized, b, b.on) {
		t.Fatal("Register(b): have false, want true")
	}
	if bus.Fire(Resized, nil, ResizeContext(800, 600)) {
		t.Fatal("Fire: no listener handled the event, want false")
	}
	if a.width != 800 || b.width != 800 {
		t.Fatalf("Fire: widths\nhave %d, %d\nwant 800, 800", a.width, b.width)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	bus := NewBus()
	a := &listener{}
	if !bus.Register(KeyPressed, a, a.on) {
		t.Fatal("first Register failed")
	}
	if bus.Register(KeyPressed, a, a.on) {
		t.Fatal("duplicate Register: have true, want false")
	}
	// Same handler on another code is a new registration.
	if !bus.Register(KeyReleased, a, a.on) {
		t.Fatal("Register on another code failed")
	}
}

func TestFireHandledStopsDelivery(t *testing.T) {
	bus := NewBus()
	first := &listener{eat: true}
	second := &listener{}
	bus.Register(ApplicationQuit, first, first.on)
	bus.Register(ApplicationQuit, second, second.on)

	if !bus.Fire(ApplicationQuit, nil, Context{}) {
		t.Fatal("Fire: have false, want true")
	}
	if len(second.seen) != 0 {
		t.Fatalf("second listener saw %v after the event was handled", second.seen)
	}
}

func TestUnregister(t *testing.T) {
	bus := NewBus()
	a := &listener{}
	bus.Register(KeyPressed, a, a.on)

	if bus.Unregister(KeyPressed, &listener{}, a.on) {
		t.Fatal("Unregister with a foreign listener: have true, want false")
	}
	if !bus.Unregister(KeyPressed, a, a.on) {
		t.Fatal("Unregister: have false, want true")
	}
	bus.Fire(KeyPressed, nil, KeyContext(1))
	if len(a.seen) != 0 {
		t.Fatalf("unregistered listener saw %v", a.seen)
	}
	if bus.Unregister(KeyPressed, a, a.on) {
		t.Fatal("second Unregister: have true, want false")
	}
}

func TestUnregisterDuringFire(t *testing.T) {
	bus := NewBus()
	var calls int
	var h Handler
	h = func(code Code, sender, l any, ctx Context) bool {
		calls++
		bus.Unregister(code, l, h)
		return false
	}
	bus.Register(MouseWheel, nil, h)
	bus.Fire(MouseWheel, nil, WheelContext(-1))
	bus.Fire(MouseWheel, nil, WheelContext(-1))
	if calls != 1 {
		t.Fatalf("calls\nhave %d\nwant 1", calls)
	}
}

func TestShutdown(t *testing.T) {
	bus := NewBus()
	a := &listener{}
	bus.Register(KeyPressed, a, a.on)
	bus.Shutdown()
	if bus.Fire(KeyPressed, nil, Context{}) {
		t.Fatal("Fire after Shutdown: have true, want false")
	}
	if bus.Register(KeyPressed, a, a.on) {
		t.Fatal("Register after Shutdown: have true, want false")
	}
}

func TestContextViews(t *testing.T) {
	c := ResizeContext(1280, 720)
	if c.U16(0) != 1280 || c.U16(1) != 720 {
		t.Fatalf("ResizeContext\nhave %d x %d\nwant 1280 x 720", c.U16(0), c.U16(1))
	}
	if c.U32(0) != 720<<16|1280 {
		t.Fatalf("U32 view of resize payload: have %#x", c.U32(0))
	}

	m := MouseContext(-5, 7)
	if m.I16(0) != -5 || m.I16(1) != 7 {
		t.Fatalf("MouseContext\nhave %d,%d\nwant -5,7", m.I16(0), m.I16(1))
	}

	var f Context
	f.SetF32(3, 1.5)
	f.SetF64(0, -2.25)
	if f.F32(3) != 1.5 || f.F64(0) != -2.25 {
		t.Fatalf("float views: have %v %v", f.F32(3), f.F64(0))
	}
	if WheelContext(-3).I8(0) != -3 {
		t.Fatal("WheelContext lost the sign")
	}
}

func TestCodeString(t *testing.T) {
	if Resized.String() != "Resized" {
		t.Fatalf("have %q, want Resized", Resized.String())
	}
	if (MaxCode + 1).String() != "Application" {
		t.Fatalf("have %q, want Application", (MaxCode + 1).String())
	}
}
