package vkbind

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/dieselrt/renderer/gpu"
)

// check turns a VkResult into an error naming the call that produced it.
// Swapchain and timeout results map to the gpu sentinels.
func check(ret vk.Result, call string) error {
	switch ret {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate:
		return errors.Wrap(gpu.ErrOutOfDate, call)
	case vk.Suboptimal:
		return errors.Wrap(gpu.ErrSuboptimal, call)
	case vk.Timeout:
		return errors.Wrap(gpu.ErrTimeout, call)
	}
	return errors.Wrapf(vk.Error(ret), "%s (%d)", call, ret)
}

// safeString null terminates s for the C side.
func safeString(s string) string {
	if len(s) == 0 || s[len(s)-1] != 0 {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = safeString(s)
	}
	return out
}
