package vulkan

import (
	"context"
	"log/slog"
	"slices"

	"github.com/pkg/errors"

	"github.com/andewx/dieselrt/logging"
	"github.com/andewx/dieselrt/renderer/gpu"
)

// instanceExtensions lists the surface extension, whatever the window
// system needs and, with validation on, the debug report extension.
func instanceExtensions(drv gpu.Driver, validation bool) []string {
	exts := []string{gpu.ExtSurface}
	exts = append(exts, drv.RequiredInstanceExtensions()...)
	if validation {
		exts = append(exts, gpu.ExtDebugReport)
	}
	slices.Sort(exts)
	return slices.Compact(exts)
}

// checkLayers fails when any wanted layer is not installed.
func checkLayers(drv gpu.Driver, wanted []string) error {
	available, err := drv.AvailableLayers()
	if err != nil {
		return errors.Wrap(err, "enumerate instance layers")
	}
	log := logging.Logger()
	for _, name := range wanted {
		log.Info("searching for layer", "name", name)
		if !slices.Contains(available, name) {
			log.Log(context.Background(), logging.LevelFatal, "required validation layer is missing", "name", name)
			return errors.Wrapf(ErrValidationLayerMissing, "%s", name)
		}
		log.Info("layer found", "name", name)
	}
	return nil
}

// EngineVersion is reported to the driver with the engine name.
var EngineVersion = gpu.MakeVersion(0, 1, 0)

func createInstance(drv gpu.Driver, appName, engineName string, validation bool) (gpu.Instance, error) {
	info := gpu.InstanceInfo{
		AppName:       appName,
		AppVersion:    gpu.MakeVersion(1, 0, 0),
		EngineName:    engineName,
		EngineVersion: EngineVersion,
		APIVersion:    gpu.MakeVersion(1, 2, 0),
		Extensions:    instanceExtensions(drv, validation),
	}
	if validation {
		info.Layers = []string{gpu.LayerValidation}
		if err := checkLayers(drv, info.Layers); err != nil {
			return 0, err
		}
	}
	logging.Logger().Debug("required instance extensions", "extensions", info.Extensions)

	instance, err := drv.CreateInstance(info)
	if err != nil {
		return 0, errors.Wrap(err, "create instance")
	}
	logging.Logger().Info("Vulkan instance created")
	return instance, nil
}

// debugCallback forwards validation messages to the runtime logger.
func debugCallback(severity gpu.DebugSeverity, layer, message string) {
	level := slog.LevelInfo
	switch severity {
	case gpu.DebugError:
		level = slog.LevelError
	case gpu.DebugWarning, gpu.DebugPerformance:
		level = slog.LevelWarn
	}
	logging.Logger().Log(context.Background(), level, message, "layer", layer)
}
