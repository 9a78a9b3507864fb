package vkb

import (
	vk "github.com/vulkan-go/vulkan"
)

type Swapchain struct {
	Extent      vk.Extent2D
	Format      vk.Format
	Device      *Device
	VKSwapchain vk.Swapchain
}

func (s *Swapchain) Destroy() {
	vk.DestroySwapchain(s.Device.VKDevice, s.VKSwapchain, nil)
}

func (s *Swapchain) GetImages() ([]*Image, error) {
	var imageCount uint32
	err := vk.Error(vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &imageCount, nil))
	if err != nil {
		return nil, err
	}

	swapchainImages := make([]vk.Image, imageCount)
	err = vk.Error(vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &imageCount, swapchainImages))

	ret := make([]*Image, imageCount)
	for i := range swapchainImages {
		ret[i] = &Image{}
		ret[i].Device = s.Device
		ret[i].VKImage = swapchainImages[i]
		ret[i].VKFormat = s.Format
	}

	return ret, err
}

// ChooseSurfaceFormat returns the preferred format when the surface supports
// the exact (format, colorspace) pair, otherwise the first reported format.
// The formats must already be dereferenced. Deterministic: same inputs, same
// answer.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat, preferred vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == preferred.Format && f.ColorSpace == preferred.ColorSpace {
			return f
		}
	}
	return formats[0]
}

// ChoosePresentMode returns the preferred mode when the surface supports it,
// FIFO otherwise. FIFO is the only mode the standard guarantees.
func ChoosePresentMode(modes []vk.PresentMode, preferred vk.PresentMode) vk.PresentMode {
	for _, m := range modes {
		if m == preferred {
			return m
		}
	}
	return vk.PresentModeFifo
}

// ChooseExtent resolves the swapchain extent. When the surface reports a
// fixed current extent it is used verbatim; otherwise the window extent is
// clamped component-wise into [min, max]. The window size may change between
// the query and swapchain creation; the out-of-date handling in the frame
// loop absorbs that race.
func ChooseExtent(current, min, max, window vk.Extent2D) vk.Extent2D {
	if current.Width != vk.MaxUint32 {
		return current
	}

	ret := window
	if ret.Width < min.Width {
		ret.Width = min.Width
	}
	if ret.Width > max.Width {
		ret.Width = max.Width
	}
	if ret.Height < min.Height {
		ret.Height = min.Height
	}
	if ret.Height > max.Height {
		ret.Height = max.Height
	}
	return ret
}

// ChooseImageCount asks for one image more than the driver minimum, clamped
// to the maximum when the surface has one (zero means unbounded).
func ChooseImageCount(min, max uint32) uint32 {
	count := min + 1
	if max > 0 && count > max {
		count = max
	}
	return count
}

type CreateSwapchainOptions struct {
	OldSwapchain         *Swapchain
	WindowExtent         vk.Extent2D
	PreferredFormat      vk.SurfaceFormat
	PreferredPresentMode vk.PresentMode

	// GraphicsFamily and PresentFamily select the sharing mode: CONCURRENT
	// across both families when they differ, EXCLUSIVE otherwise.
	GraphicsFamily int
	PresentFamily  int
}

func (d *Device) CreateSwapchain(surface vk.Surface, options *CreateSwapchainOptions) (*Swapchain, error) {

	modes, err := d.PhysicalDevice.GetSurfacePresentModes(surface)
	if err != nil {
		return nil, err
	}
	presentMode := ChoosePresentMode(modes, options.PreferredPresentMode)

	formats, err := d.PhysicalDevice.GetSurfaceFormats(surface)
	if err != nil {
		return nil, err
	}
	format := ChooseSurfaceFormat(formats, options.PreferredFormat)

	caps, err := d.PhysicalDevice.GetSurfaceCapabilities(surface)
	if err != nil {
		return nil, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	extent := ChooseExtent(caps.CurrentExtent, caps.MinImageExtent, caps.MaxImageExtent, options.WindowExtent)
	imageCount := ChooseImageCount(caps.MinImageCount, caps.MaxImageCount)

	createInfo := &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    imageCount,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		PresentMode:      presentMode,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageArrayLayers: 1,
		Clipped:          vk.True,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		OldSwapchain:     vk.NullSwapchain,
	}

	if options.OldSwapchain != nil {
		createInfo.OldSwapchain = options.OldSwapchain.VKSwapchain
	}

	if options.GraphicsFamily != options.PresentFamily {
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{uint32(options.GraphicsFamily), uint32(options.PresentFamily)}
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
	} else {
		createInfo.QueueFamilyIndexCount = 0
		createInfo.PQueueFamilyIndices = nil
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var swapchain vk.Swapchain
	err = vk.Error(vk.CreateSwapchain(d.VKDevice, createInfo, nil, &swapchain))
	if err != nil {
		return nil, err
	}

	var ret Swapchain
	ret.VKSwapchain = swapchain
	ret.Device = d
	ret.Extent = extent
	ret.Format = format.Format

	return &ret, nil
}
