package vulkan

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/andewx/dieselrt/renderer/gpu/gputest"
)

func TestCommandBufferStates(t *testing.T) {
	drv := gputest.New()
	cb := &CommandBuffer{Handle: 7, State: CommandBufferReady}
	pass := &RenderPass{Handle: 3}

	expectState := func(step string, err error, wantErr bool, want CommandBufferState) {
		t.Helper()
		if wantErr && errors.Cause(err) != ErrCommandBufferState {
			t.Fatalf("%s: error\nhave %v\nwant %v", step, err, ErrCommandBufferState)
		}
		if !wantErr && err != nil {
			t.Fatalf("%s: error\nhave %v\nwant nil", step, err)
		}
		if cb.State != want {
			t.Fatalf("%s: state\nhave %v\nwant %v", step, cb.State, want)
		}
	}

	expectState("end before begin", cb.End(drv), true, CommandBufferReady)
	expectState("render pass before begin", pass.Begin(drv, cb, 1), true, CommandBufferReady)
	expectState("begin", cb.Begin(drv), false, CommandBufferRecording)
	expectState("begin twice", cb.Begin(drv), true, CommandBufferRecording)
	expectState("begin render pass", pass.Begin(drv, cb, 1), false, CommandBufferInRenderPass)
	expectState("end inside render pass", cb.End(drv), true, CommandBufferInRenderPass)
	expectState("end render pass", pass.End(drv, cb), false, CommandBufferRecording)
	expectState("submit while recording", cb.UpdateSubmitted(), true, CommandBufferRecording)
	expectState("end", cb.End(drv), false, CommandBufferRecordingEnded)
	expectState("submit", cb.UpdateSubmitted(), false, CommandBufferSubmitted)
	expectState("reset", cb.Reset(drv), false, CommandBufferReady)

	cb.State = CommandBufferNotAllocated
	expectState("reset unallocated", cb.Reset(drv), true, CommandBufferNotAllocated)
}

func TestFenceCachesSignaledState(t *testing.T) {
	drv := gputest.New(gputest.GoodDevice("gpu"))
	dev := &Device{Logical: 1}

	f, err := createFence(drv, dev, true)
	if err != nil {
		t.Fatalf("createFence:\nhave %v\nwant nil", err)
	}
	if err := f.Wait(drv, dev, 0); err != nil {
		t.Fatalf("Wait:\nhave %v\nwant nil", err)
	}
	if n := drv.CountCalls("WaitForFence"); n != 0 {
		t.Fatalf("WaitForFence calls on a signaled fence\nhave %d\nwant 0", n)
	}
	if err := f.Reset(drv, dev); err != nil {
		t.Fatalf("Reset:\nhave %v\nwant nil", err)
	}
	if err := f.Reset(drv, dev); err != nil {
		t.Fatalf("second Reset:\nhave %v\nwant nil", err)
	}
	if n := drv.CountCalls("ResetFence"); n != 1 {
		t.Fatalf("ResetFence calls\nhave %d\nwant 1", n)
	}
	if f.Signaled() {
		t.Fatal("fence still signaled after Reset")
	}
	f.Destroy(drv, dev)
}
