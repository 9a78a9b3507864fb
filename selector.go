package vkb

import (
	vk "github.com/vulkan-go/vulkan"
)

// SwapchainExtension must be supported by any adapter we render with.
const SwapchainExtension = "VK_KHR_swapchain"

// AdapterInfo is the driver-independent capability summary an adapter is
// scored on. It is plain data so scoring stays testable without an ICD.
type AdapterInfo struct {
	Name                string
	DiscreteGPU         bool
	MaxImageDimension2D uint32
	GeometryShader      bool
	SwapchainExtension  bool
	SurfaceFormats      int
	PresentModes        int

	// GraphicsFamily and PresentFamily are queue family indices, -1 when
	// the adapter has no family with the capability. They may coincide.
	GraphicsFamily int
	PresentFamily  int
}

// ScoreAdapter rates an adapter for rendering to a surface. Zero means the
// adapter is unusable; otherwise discrete GPUs get a large head start and
// the maximum 2D image dimension breaks ties between similar adapters.
func ScoreAdapter(info AdapterInfo) int {
	if !info.SwapchainExtension {
		return 0
	}
	if !info.GeometryShader {
		return 0
	}
	if info.GraphicsFamily < 0 || info.PresentFamily < 0 {
		return 0
	}
	if info.SurfaceFormats == 0 || info.PresentModes == 0 {
		return 0
	}

	score := int(info.MaxImageDimension2D)
	if info.DiscreteGPU {
		score += 1000
	}
	return score
}

// BestAdapter returns the index of the highest scoring adapter, or
// ErrNoSuitableGPU when every adapter scores zero.
func BestAdapter(infos []AdapterInfo) (int, error) {
	best := -1
	bestScore := 0
	for i, info := range infos {
		if s := ScoreAdapter(info); s > bestScore {
			best = i
			bestScore = s
		}
	}
	if best < 0 {
		return 0, ErrNoSuitableGPU
	}
	return best, nil
}

// DescribeAdapter gathers the capability summary for one physical device
// against a surface.
func DescribeAdapter(p *PhysicalDevice, surface vk.Surface) (AdapterInfo, error) {
	info := AdapterInfo{
		Name:           p.DeviceName,
		GraphicsFamily: -1,
		PresentFamily:  -1,
	}

	props := p.VKPhysicalDeviceProperties
	info.DiscreteGPU = props.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu
	props.Limits.Deref()
	info.MaxImageDimension2D = props.Limits.MaxImageDimension2D

	features := p.VKPhysicalDeviceFeatures()
	features.Deref()
	info.GeometryShader = features.GeometryShader == vk.True

	extensions, err := p.SupportedExtensions()
	if err != nil {
		return info, err
	}
	for _, e := range extensions {
		if e == SwapchainExtension {
			info.SwapchainExtension = true
			break
		}
	}

	families, err := p.QueueFamilies()
	if err != nil {
		return info, err
	}
	if g := families.FilterGraphics(); len(g) > 0 {
		info.GraphicsFamily = g[0].Index
	}
	if pr := families.FilterPresent(surface); len(pr) > 0 {
		info.PresentFamily = pr[0].Index
	}

	formats, err := p.GetSurfaceFormats(surface)
	if err != nil {
		return info, err
	}
	info.SurfaceFormats = len(formats)

	modes, err := p.GetSurfacePresentModes(surface)
	if err != nil {
		return info, err
	}
	info.PresentModes = len(modes)

	return info, nil
}

// SelectPhysicalDevice picks the best adapter for the surface and returns it
// together with its graphics and present queue families.
func (i *Instance) SelectPhysicalDevice(surface vk.Surface) (*PhysicalDevice, *QueueFamily, *QueueFamily, error) {
	devices, err := i.PhysicalDevices()
	if err != nil {
		return nil, nil, nil, err
	}

	infos := make([]AdapterInfo, len(devices))
	for j, d := range devices {
		infos[j], err = DescribeAdapter(d, surface)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	best, err := BestAdapter(infos)
	if err != nil {
		return nil, nil, nil, err
	}

	chosen := devices[best]
	families, err := chosen.QueueFamilies()
	if err != nil {
		return nil, nil, nil, err
	}

	var graphics, present *QueueFamily
	for _, f := range families {
		if f.Index == infos[best].GraphicsFamily {
			graphics = f
		}
		if f.Index == infos[best].PresentFamily {
			present = f
		}
	}

	return chosen, graphics, present, nil
}
