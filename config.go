package vkb

import (
	"fmt"

	"github.com/docker/go-units"
	vk "github.com/vulkan-go/vulkan"
)

// MinFramesInFlight is the smallest frame count the orchestrator will run
// with. One frame in flight serializes the CPU against the GPU; two is the
// useful floor.
const MinFramesInFlight = 2

// DefaultStagingBudget bounds a single staged upload when the config leaves
// StagingBudget empty.
const DefaultStagingBudget = "256MiB"

// AppConfig carries the runtime knobs for a BaseApp. The zero value is
// usable: validation off, two frames in flight, SRGB surface preferred,
// FIFO presentation.
type AppConfig struct {
	// Name of the application, reported to the driver.
	Name string

	// Version of the application.
	Version Version

	// EnableValidation turns on the Khronos validation layer and the debug
	// report callback. Construction fails if the layer is requested but not
	// installed.
	EnableValidation bool

	// FramesInFlight is the number of frames the CPU may record ahead of
	// the GPU. Values below MinFramesInFlight are clamped up.
	FramesInFlight int

	// PreferredFormat is the surface format to use when the surface
	// supports it; otherwise the first reported format wins.
	PreferredFormat vk.SurfaceFormat

	// PreferredPresentMode is used when supported, FIFO otherwise.
	PreferredPresentMode vk.PresentMode

	// StagingBudget caps the size of a single staged upload, as a
	// human-readable size ("64MiB", "1g"). Empty means DefaultStagingBudget.
	StagingBudget string
}

func (c *AppConfig) framesInFlight() int {
	if c.FramesInFlight < MinFramesInFlight {
		return MinFramesInFlight
	}
	return c.FramesInFlight
}

func (c *AppConfig) preferredFormat() vk.SurfaceFormat {
	if c.PreferredFormat.Format == vk.FormatUndefined {
		return vk.SurfaceFormat{
			Format:     vk.FormatR8g8b8a8Srgb,
			ColorSpace: vk.ColorSpaceSrgbNonlinear,
		}
	}
	return c.PreferredFormat
}

func (c *AppConfig) stagingBudget() (int64, error) {
	budget := c.StagingBudget
	if budget == "" {
		budget = DefaultStagingBudget
	}
	n, err := units.RAMInBytes(budget)
	if err != nil {
		return 0, fmt.Errorf("parsing staging budget %q: %w", budget, err)
	}
	return n, nil
}
