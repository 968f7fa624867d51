package vkbind

import (
	"github.com/pkg/errors"

	"github.com/andewx/dieselrt/platform"
	"github.com/andewx/dieselrt/renderer"
	"github.com/andewx/dieselrt/renderer/vulkan"
)

func init() {
	renderer.Register(renderer.BackendVulkan, newBackend)
}

// backendOptions maps the renderer options onto the Vulkan backend.
func backendOptions(opts renderer.Options) vulkan.Options {
	vo := vulkan.DefaultOptions()
	vo.Validation = opts.Validation
	vo.Requirements.DiscreteGPU = opts.DiscreteGPU
	vo.Clear.Color = opts.ClearColor
	return vo
}

func newBackend(p platform.Platform, opts renderer.Options) (renderer.Backend, error) {
	sp, ok := p.(SurfaceProvider)
	if !ok {
		return nil, errors.Wrapf(renderer.ErrBackendNotAvailable, "vulkan: platform %T cannot create surfaces", p)
	}
	drv, err := New(sp)
	if err != nil {
		return nil, err
	}
	return vulkan.New(drv, backendOptions(opts)), nil
}
