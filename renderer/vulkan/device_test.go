package vulkan

import (
	"slices"
	"testing"

	"github.com/pkg/errors"

	"github.com/andewx/dieselrt/renderer/gpu"
	"github.com/andewx/dieselrt/renderer/gpu/gputest"
)

func TestSelectFirstSuitableDevice(t *testing.T) {
	integrated := gputest.GoodDevice("integrated")
	integrated.Type = gpu.DeviceTypeIntegrated

	drv := gputest.New(integrated, gputest.GoodDevice("first"), gputest.GoodDevice("second"))
	dev, err := SelectPhysicalDevice(drv, 1, 1, DefaultRequirements())
	if err != nil {
		t.Fatalf("SelectPhysicalDevice:\nhave %v\nwant nil", err)
	}
	if dev.Properties.Name != "first" {
		t.Fatalf("SelectPhysicalDevice: selected device\nhave %q\nwant %q", dev.Properties.Name, "first")
	}
	if dev.Physical != 2 {
		t.Fatalf("SelectPhysicalDevice: handle\nhave %d\nwant 2", dev.Physical)
	}
}

func TestSelectRejectsDevices(t *testing.T) {
	noPresent := gputest.GoodDevice("no present")
	noPresent.Families[0].Present = false

	noTransfer := gputest.GoodDevice("no transfer")
	noTransfer.Families[0].Flags = gpu.QueueGraphics | gpu.QueueCompute

	noFormats := gputest.GoodDevice("no formats")
	noFormats.Support.Formats = nil

	noModes := gputest.GoodDevice("no present modes")
	noModes.Support.PresentModes = nil

	noExtension := gputest.GoodDevice("no swapchain extension")
	noExtension.Extensions = []string{"VK_KHR_SWAPCHAIN"}

	noAniso := gputest.GoodDevice("no anisotropy")
	noAniso.Anisotropy = false

	integrated := gputest.GoodDevice("integrated")
	integrated.Type = gpu.DeviceTypeIntegrated

	for _, ds := range []gputest.DeviceSpec{noPresent, noTransfer, noFormats, noModes, noExtension, noAniso, integrated} {
		drv := gputest.New(ds)
		_, err := SelectPhysicalDevice(drv, 1, 1, DefaultRequirements())
		if errors.Cause(err) != ErrNoSuitableDevice {
			t.Errorf("%s: SelectPhysicalDevice:\nhave %v\nwant %v", ds.Name, err, ErrNoSuitableDevice)
		}
	}
}

func TestSelectOptionalRequirements(t *testing.T) {
	integrated := gputest.GoodDevice("integrated")
	integrated.Type = gpu.DeviceTypeIntegrated
	integrated.Anisotropy = false

	req := DefaultRequirements()
	req.DiscreteGPU = false
	req.SamplerAnisotropy = false

	dev, err := SelectPhysicalDevice(gputest.New(integrated), 1, 1, req)
	if err != nil {
		t.Fatalf("SelectPhysicalDevice:\nhave %v\nwant nil", err)
	}
	if dev.Properties.Type != gpu.DeviceTypeIntegrated {
		t.Fatalf("SelectPhysicalDevice: type\nhave %v\nwant %v", dev.Properties.Type, gpu.DeviceTypeIntegrated)
	}
}

func TestSelectNoDevices(t *testing.T) {
	_, err := SelectPhysicalDevice(gputest.New(), 1, 1, DefaultRequirements())
	if err != ErrNoPhysicalDevices {
		t.Fatalf("SelectPhysicalDevice:\nhave %v\nwant %v", err, ErrNoPhysicalDevices)
	}
}

// Equal transfer scores keep the later family. This tie-break is kept on
// purpose; change the expectation here if the first family should win.
func TestTransferFamilyTieGoesToLastFamily(t *testing.T) {
	ds := gputest.GoodDevice("dedicated transfer")
	ds.Families = []gputest.FamilySpec{
		{Flags: gpu.QueueGraphics | gpu.QueueCompute | gpu.QueueTransfer, Count: 16, Present: true},
		{Flags: gpu.QueueTransfer, Count: 2},
		{Flags: gpu.QueueTransfer, Count: 2},
	}
	dev, err := SelectPhysicalDevice(gputest.New(ds), 1, 1, DefaultRequirements())
	if err != nil {
		t.Fatalf("SelectPhysicalDevice:\nhave %v\nwant nil", err)
	}
	want := QueueFamilyInfo{Graphics: 0, Present: 0, Compute: 0, Transfer: 2}
	if dev.Families != want {
		t.Fatalf("SelectPhysicalDevice: families\nhave %+v\nwant %+v", dev.Families, want)
	}
}

func TestGraphicsAndPresentTakeLastMatchingFamily(t *testing.T) {
	ds := gputest.GoodDevice("two graphics families")
	ds.Families = []gputest.FamilySpec{
		{Flags: gpu.QueueGraphics | gpu.QueueTransfer, Count: 4, Present: true},
		{Flags: gpu.QueueGraphics | gpu.QueueCompute | gpu.QueueTransfer, Count: 4, Present: true},
	}
	dev, err := SelectPhysicalDevice(gputest.New(ds), 1, 1, DefaultRequirements())
	if err != nil {
		t.Fatalf("SelectPhysicalDevice:\nhave %v\nwant nil", err)
	}
	want := QueueFamilyInfo{Graphics: 1, Present: 1, Compute: 1, Transfer: 0}
	if dev.Families != want {
		t.Fatalf("SelectPhysicalDevice: families\nhave %+v\nwant %+v", dev.Families, want)
	}
}

func TestQueueRequestsAreDeduplicated(t *testing.T) {
	cases := []struct {
		name     string
		families []gputest.FamilySpec
		want     []gpu.QueueRequest
	}{
		{
			name: "shared family",
			families: []gputest.FamilySpec{
				{Flags: gpu.QueueGraphics | gpu.QueueCompute | gpu.QueueTransfer, Count: 16, Present: true},
			},
			want: []gpu.QueueRequest{{Family: 0, Count: 2}},
		},
		{
			name: "separate present family",
			families: []gputest.FamilySpec{
				{Flags: gpu.QueueGraphics | gpu.QueueCompute | gpu.QueueTransfer, Count: 16},
				{Flags: gpu.QueueTransfer, Count: 1, Present: true},
			},
			want: []gpu.QueueRequest{{Family: 0, Count: 2}, {Family: 1, Count: 1}},
		},
		{
			name: "single graphics queue",
			families: []gputest.FamilySpec{
				{Flags: gpu.QueueGraphics | gpu.QueueCompute | gpu.QueueTransfer, Count: 1, Present: true},
			},
			want: []gpu.QueueRequest{{Family: 0, Count: 1}},
		},
	}
	for _, c := range cases {
		ds := gputest.GoodDevice(c.name)
		ds.Families = c.families
		drv := gputest.New(ds)

		dev, err := SelectPhysicalDevice(drv, 1, 1, DefaultRequirements())
		if err != nil {
			t.Fatalf("%s: SelectPhysicalDevice:\nhave %v\nwant nil", c.name, err)
		}
		if err := dev.CreateLogicalDevice(drv, DefaultRequirements()); err != nil {
			t.Fatalf("%s: CreateLogicalDevice:\nhave %v\nwant nil", c.name, err)
		}
		have := drv.DeviceInfo[0].Queues
		if !slices.Equal(have, c.want) {
			t.Errorf("%s: queue requests\nhave %+v\nwant %+v", c.name, have, c.want)
		}
		if !slices.Contains(drv.DeviceInfo[0].Extensions, gpu.ExtSwapchain) {
			t.Errorf("%s: device extensions\nhave %v\nwant %s", c.name, drv.DeviceInfo[0].Extensions, gpu.ExtSwapchain)
		}
		if !drv.DeviceInfo[0].Features.SamplerAnisotropy {
			t.Errorf("%s: sampler anisotropy not enabled", c.name)
		}
		if v := drv.Violations(); len(v) != 0 {
			t.Errorf("%s: violations: %v", c.name, v)
		}

		dev.Destroy(drv)
		if dev.GraphicsQueue != 0 || dev.PresentQueue != 0 || dev.TransferQueue != 0 {
			t.Errorf("%s: queues not cleared after Destroy", c.name)
		}
	}
}

func TestDetectDepthFormat(t *testing.T) {
	cases := []struct {
		supported []gpu.Format
		want      gpu.Format
		ok        bool
	}{
		{[]gpu.Format{gpu.FormatD24UnormS8Uint, gpu.FormatD32Sfloat}, gpu.FormatD32Sfloat, true},
		{[]gpu.Format{gpu.FormatD24UnormS8Uint, gpu.FormatD32SfloatS8Uint}, gpu.FormatD32SfloatS8Uint, true},
		{[]gpu.Format{gpu.FormatD24UnormS8Uint}, gpu.FormatD24UnormS8Uint, true},
		{nil, gpu.FormatUndefined, false},
	}
	for _, c := range cases {
		ds := gputest.GoodDevice("depth")
		ds.DepthFormats = c.supported
		format, ok := DetectDepthFormat(gputest.New(ds), 1)
		if format != c.want || ok != c.ok {
			t.Errorf("DetectDepthFormat(%v):\nhave %v, %t\nwant %v, %t", c.supported, format, ok, c.want, c.ok)
		}
	}
}
