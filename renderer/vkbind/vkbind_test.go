package vkbind

import (
	"testing"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/dieselrt/platform"
	"github.com/andewx/dieselrt/renderer"
	"github.com/andewx/dieselrt/renderer/gpu"
)

func TestTable(t *testing.T) {
	tab := newTable[string]()
	a := tab.put("a")
	b := tab.put("b")
	if a == 0 || b == 0 || a == b {
		t.Fatalf("put handles\nhave %d, %d\nwant distinct non-zero", a, b)
	}
	if have := tab.intern("a"); have != a {
		t.Fatalf("intern existing\nhave %d\nwant %d", have, a)
	}
	c := tab.intern("c")
	if c == a || c == b {
		t.Fatalf("intern new\nhave %d\nwant a fresh handle", c)
	}
	if v, ok := tab.take(b); !ok || v != "b" {
		t.Fatalf("take\nhave %q, %t\nwant %q, true", v, ok, "b")
	}
	if _, ok := tab.take(b); ok {
		t.Fatal("take twice succeeded")
	}
	if have := tab.get(0); have != "" {
		t.Fatalf("get(0)\nhave %q\nwant zero value", have)
	}
	if have := tab.len(); have != 2 {
		t.Fatalf("len\nhave %d\nwant 2", have)
	}
}

func TestCheck(t *testing.T) {
	for _, x := range [...]struct {
		ret  vk.Result
		want error
	}{
		{vk.ErrorOutOfDate, gpu.ErrOutOfDate},
		{vk.Suboptimal, gpu.ErrSuboptimal},
		{vk.Timeout, gpu.ErrTimeout},
	} {
		err := check(x.ret, "call")
		if errors.Cause(err) != x.want {
			t.Fatalf("check(%d)\nhave %v\nwant %v", x.ret, err, x.want)
		}
	}
	if err := check(vk.Success, "call"); err != nil {
		t.Fatalf("check(Success)\nhave %v\nwant nil", err)
	}
	err := check(vk.ErrorDeviceLost, "vkQueueSubmit")
	if err == nil || gpu.IsStale(err) {
		t.Fatalf("check(ErrorDeviceLost)\nhave %v\nwant a fatal error", err)
	}
}

func TestApplicationInfo(t *testing.T) {
	info := applicationInfo(gpu.InstanceInfo{
		AppName:       "app",
		AppVersion:    gpu.MakeVersion(1, 0, 0),
		EngineName:    "engine",
		EngineVersion: gpu.MakeVersion(0, 3, 1),
		APIVersion:    gpu.MakeVersion(1, 2, 0),
	})
	if have, want := info.EngineVersion, uint32(gpu.MakeVersion(0, 3, 1)); have != want {
		t.Fatalf("EngineVersion\nhave %d\nwant %d", have, want)
	}
	if have, want := info.ApplicationVersion, uint32(gpu.MakeVersion(1, 0, 0)); have != want {
		t.Fatalf("ApplicationVersion\nhave %d\nwant %d", have, want)
	}
	if info.PEngineName != "engine\x00" || info.PApplicationName != "app\x00" {
		t.Fatalf("names\nhave %q, %q\nwant %q, %q", info.PApplicationName, info.PEngineName, "app\x00", "engine\x00")
	}
}

func TestSafeStrings(t *testing.T) {
	have := safeStrings([]string{"VK_KHR_surface", "done\x00", ""})
	want := []string{"VK_KHR_surface\x00", "done\x00", "\x00"}
	for i := range want {
		if have[i] != want[i] {
			t.Fatalf("safeStrings[%d]\nhave %q\nwant %q", i, have[i], want[i])
		}
	}
}

func TestSeverityOf(t *testing.T) {
	for _, x := range [...]struct {
		flags vk.DebugReportFlagBits
		want  gpu.DebugSeverity
	}{
		{vk.DebugReportInformationBit, gpu.DebugInfo},
		{vk.DebugReportDebugBit, gpu.DebugInfo},
		{vk.DebugReportWarningBit, gpu.DebugWarning},
		{vk.DebugReportPerformanceWarningBit, gpu.DebugPerformance},
		{vk.DebugReportErrorBit | vk.DebugReportWarningBit, gpu.DebugError},
	} {
		if have := severityOf(vk.DebugReportFlags(x.flags)); have != x.want {
			t.Fatalf("severityOf(%#x)\nhave %v\nwant %v", x.flags, have, x.want)
		}
	}
}

func TestCompositeAlpha(t *testing.T) {
	for _, x := range [...]struct {
		supported vk.CompositeAlphaFlagBits
		want      vk.CompositeAlphaFlagBits
	}{
		{vk.CompositeAlphaOpaqueBit | vk.CompositeAlphaInheritBit, vk.CompositeAlphaOpaqueBit},
		{vk.CompositeAlphaInheritBit, vk.CompositeAlphaInheritBit},
		{vk.CompositeAlphaPostMultipliedBit | vk.CompositeAlphaPreMultipliedBit, vk.CompositeAlphaPreMultipliedBit},
		{0, vk.CompositeAlphaOpaqueBit},
	} {
		if have := compositeAlphaOf(vk.CompositeAlphaFlags(x.supported)); have != x.want {
			t.Fatalf("compositeAlphaOf(%#x)\nhave %#x\nwant %#x", x.supported, have, x.want)
		}
	}
}

func TestPreTransform(t *testing.T) {
	rotate := uint32(vk.SurfaceTransformRotate90Bit)
	if have := preTransformOf(vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit), rotate); have != vk.SurfaceTransformIdentityBit {
		t.Fatalf("identity supported\nhave %#x\nwant %#x", have, vk.SurfaceTransformIdentityBit)
	}
	if have := preTransformOf(vk.SurfaceTransformFlags(vk.SurfaceTransformRotate90Bit), rotate); have != vk.SurfaceTransformRotate90Bit {
		t.Fatalf("identity unsupported\nhave %#x\nwant %#x", have, vk.SurfaceTransformRotate90Bit)
	}
}

func TestAspectFlags(t *testing.T) {
	for _, x := range [...]struct {
		aspect gpu.ImageAspect
		format gpu.Format
		want   vk.ImageAspectFlagBits
	}{
		{gpu.AspectColor, gpu.FormatB8G8R8A8Unorm, vk.ImageAspectColorBit},
		{gpu.AspectDepth, gpu.FormatD32Sfloat, vk.ImageAspectDepthBit},
		{gpu.AspectDepth, gpu.FormatD24UnormS8Uint, vk.ImageAspectDepthBit | vk.ImageAspectStencilBit},
		{gpu.AspectDepth, gpu.FormatD32SfloatS8Uint, vk.ImageAspectDepthBit | vk.ImageAspectStencilBit},
	} {
		if have := aspectFlags(x.aspect, x.format); have != vk.ImageAspectFlags(x.want) {
			t.Fatalf("aspectFlags(%d, %d)\nhave %#x\nwant %#x", x.aspect, x.format, have, x.want)
		}
	}
}

func TestBackendOptions(t *testing.T) {
	opts := renderer.DefaultOptions()
	opts.Validation = true
	opts.DiscreteGPU = false
	opts.ClearColor = [4]float32{1, 0, 0, 1}

	vo := backendOptions(opts)
	if !vo.Validation || vo.Requirements.DiscreteGPU {
		t.Fatalf("flags\nhave validation=%t discrete=%t\nwant true, false", vo.Validation, vo.Requirements.DiscreteGPU)
	}
	if vo.Clear.Color != opts.ClearColor {
		t.Fatalf("clear colour\nhave %v\nwant %v", vo.Clear.Color, opts.ClearColor)
	}
	if !vo.Requirements.Graphics || !vo.Requirements.Present {
		t.Fatalf("requirements lost defaults\nhave %+v", vo.Requirements)
	}
}

func TestBackendNeedsSurfaceProvider(t *testing.T) {
	p := platform.NewHeadless(platform.WindowConfig{Width: 640, Height: 480})
	_, err := renderer.Create(renderer.BackendVulkan, p, renderer.DefaultOptions())
	if errors.Cause(err) != renderer.ErrBackendNotAvailable {
		t.Fatalf("Create on a headless platform\nhave %v\nwant %v", err, renderer.ErrBackendNotAvailable)
	}
}
