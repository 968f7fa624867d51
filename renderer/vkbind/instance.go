package vkbind

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/dieselrt/renderer/gpu"
)

func (d *Driver) RequiredInstanceExtensions() []string {
	return d.sp.RequiredInstanceExtensions()
}

func (d *Driver) AvailableLayers() ([]string, error) {
	var count uint32
	if err := check(vk.EnumerateInstanceLayerProperties(&count, nil), "vkEnumerateInstanceLayerProperties"); err != nil {
		return nil, err
	}
	list := make([]vk.LayerProperties, count)
	if err := check(vk.EnumerateInstanceLayerProperties(&count, list), "vkEnumerateInstanceLayerProperties"); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, layer := range list[:count] {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

func applicationInfo(info gpu.InstanceInfo) *vk.ApplicationInfo {
	return &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(info.APIVersion),
		ApplicationVersion: uint32(info.AppVersion),
		PApplicationName:   safeString(info.AppName),
		EngineVersion:      uint32(info.EngineVersion),
		PEngineName:        safeString(info.EngineName),
	}
}

func (d *Driver) CreateInstance(info gpu.InstanceInfo) (gpu.Instance, error) {
	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        applicationInfo(info),
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: safeStrings(info.Extensions),
		EnabledLayerCount:       uint32(len(info.Layers)),
		PpEnabledLayerNames:     safeStrings(info.Layers),
	}, nil, &instance)
	if err := check(ret, "vkCreateInstance"); err != nil {
		return 0, err
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return 0, errors.Wrap(err, "vkbind: load instance functions")
	}
	return gpu.Instance(d.instances.put(instance)), nil
}

func (d *Driver) DestroyInstance(instance gpu.Instance) {
	if inst, ok := d.instances.take(uint64(instance)); ok {
		vk.DestroyInstance(inst, nil)
	}
}

// severityOf maps report flags to the most severe bit set.
func severityOf(flags vk.DebugReportFlags) gpu.DebugSeverity {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return gpu.DebugError
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		return gpu.DebugPerformance
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		return gpu.DebugWarning
	}
	return gpu.DebugInfo
}

func (d *Driver) CreateDebugMessenger(instance gpu.Instance, callback gpu.DebugCallback) (gpu.DebugMessenger, error) {
	report := func(flags vk.DebugReportFlags, _ vk.DebugReportObjectType, _ uint64, _ uint,
		_ int32, pLayerPrefix string, pMessage string, _ unsafe.Pointer) vk.Bool32 {
		callback(severityOf(flags), pLayerPrefix, pMessage)
		return vk.Bool32(vk.False)
	}

	var cb vk.DebugReportCallback
	ret := vk.CreateDebugReportCallback(d.instances.get(uint64(instance)), &vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
			vk.DebugReportPerformanceWarningBit),
		PfnCallback: report,
	}, nil, &cb)
	if err := check(ret, "vkCreateDebugReportCallbackEXT"); err != nil {
		return 0, err
	}
	return gpu.DebugMessenger(d.debug.put(cb)), nil
}

func (d *Driver) DestroyDebugMessenger(instance gpu.Instance, messenger gpu.DebugMessenger) {
	if cb, ok := d.debug.take(uint64(messenger)); ok {
		vk.DestroyDebugReportCallback(d.instances.get(uint64(instance)), cb, nil)
	}
}

func (d *Driver) CreateSurface(instance gpu.Instance) (gpu.Surface, error) {
	ptr, err := d.sp.CreateWindowSurface(d.instances.get(uint64(instance)), nil)
	if err != nil {
		return 0, errors.Wrap(err, "create window surface")
	}
	surface := vk.SurfaceFromPointer(ptr)
	if surface == vk.NullSurface {
		return 0, errors.New("vkbind: window returned a null surface")
	}
	return gpu.Surface(d.surfaces.put(surface)), nil
}

func (d *Driver) DestroySurface(instance gpu.Instance, surface gpu.Surface) {
	if s, ok := d.surfaces.take(uint64(surface)); ok {
		vk.DestroySurface(d.instances.get(uint64(instance)), s, nil)
	}
}
