package vkb

import (
	"errors"

	vk "github.com/vulkan-go/vulkan"
)

// ErrOutOfDate reports that the swapchain no longer matches the surface and
// must be recreated before the image can be used.
var ErrOutOfDate = errors.New("swapchain out of date")

// ErrSuboptimal reports that the swapchain still works but no longer matches
// the surface exactly. The acquired image remains presentable.
var ErrSuboptimal = errors.New("swapchain suboptimal")

// ErrNoSuitableGPU is returned when no enumerated physical device satisfies
// the minimum requirements for rendering to the surface.
var ErrNoSuitableGPU = errors.New("no suitable GPU could be found")

// swapchainResult maps the two retryable swapchain results onto their
// sentinel errors so callers can test them with errors.Is. Every other
// non-success result goes through vk.Error unchanged.
func swapchainResult(res vk.Result) error {
	switch res {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate:
		return ErrOutOfDate
	case vk.Suboptimal:
		return ErrSuboptimal
	}
	return vk.Error(res)
}
