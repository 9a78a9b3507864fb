package vkb

import (
	vk "github.com/vulkan-go/vulkan"
)

// DepthFormat is the depth attachment format used throughout the package.
const DepthFormat = vk.FormatD32Sfloat

type Image struct {
	Device   *Device
	VKImage  vk.Image
	VKFormat vk.Format
}

func (i *Image) GetMemoryRequirements() vk.MemoryRequirements {
	var memRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(i.Device.VKDevice, i.VKImage, &memRequirements)
	return memRequirements
}

func (i *Image) Destroy() {
	vk.DestroyImage(i.Device.VKDevice, i.VKImage, nil)
}

func (d *Device) CreateImage(extent vk.Extent2D, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags) (*Image, error) {
	var imageInfo = vk.ImageCreateInfo{}
	imageInfo.SType = vk.StructureTypeImageCreateInfo
	imageInfo.ImageType = vk.ImageType2d
	imageInfo.Extent.Width = extent.Width
	imageInfo.Extent.Height = extent.Height
	imageInfo.Extent.Depth = 1
	imageInfo.MipLevels = 1
	imageInfo.ArrayLayers = 1
	imageInfo.Format = format
	imageInfo.Tiling = tiling
	imageInfo.InitialLayout = vk.ImageLayoutUndefined
	imageInfo.Usage = usage
	imageInfo.Samples = vk.SampleCount1Bit
	imageInfo.SharingMode = vk.SharingModeExclusive

	var image vk.Image

	err := vk.Error(vk.CreateImage(d.VKDevice, &imageInfo, nil, &image))
	if err != nil {
		return nil, err
	}

	var ret Image

	ret.Device = d
	ret.VKImage = image
	ret.VKFormat = format

	return &ret, nil
}

type ImageView struct {
	Device      *Device
	VKImageView vk.ImageView
}

func (i *ImageView) Destroy() {
	vk.DestroyImageView(i.Device.VKDevice, i.VKImageView, nil)
}

func (i *Image) CreateImageViewWithAspectMask(mask vk.ImageAspectFlags) (*ImageView, error) {
	createInfo := &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    i.VKImage,
		ViewType: vk.ImageViewType2d,
		Format:   i.VKFormat,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleR,
			G: vk.ComponentSwizzleG,
			B: vk.ComponentSwizzleB,
			A: vk.ComponentSwizzleA,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: mask,
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var view vk.ImageView

	err := vk.Error(vk.CreateImageView(i.Device.VKDevice, createInfo, nil, &view))
	if err != nil {
		return nil, err
	}
	var ret ImageView
	ret.Device = i.Device
	ret.VKImageView = view

	return &ret, nil
}

func (i *Image) CreateImageView() (*ImageView, error) {
	return i.CreateImageViewWithAspectMask(vk.ImageAspectFlags(vk.ImageAspectColorBit))
}

// ManagedImage is an image that owns its view and exactly one memory
// allocation. Destroy tears down view, then image, then memory.
type ManagedImage struct {
	Image
	View   *ImageView
	Memory *DeviceMemory
	Extent vk.Extent2D
}

func (m *ManagedImage) Destroy() {
	m.View.Destroy()
	m.Image.Destroy()
	m.Memory.Free()
}

// CreateManagedImage creates an image with a dedicated allocation bound at
// offset zero and a view over the given aspect.
func (d *Device) CreateManagedImage(extent vk.Extent2D, format vk.Format, usage vk.ImageUsageFlags, aspect vk.ImageAspectFlags) (*ManagedImage, error) {
	img, err := d.CreateImage(extent, format, vk.ImageTilingOptimal, usage)
	if err != nil {
		return nil, err
	}

	mr := img.GetMemoryRequirements()
	mr.Deref()

	mem, err := d.Allocate(int(mr.Size), mr.MemoryTypeBits, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		img.Destroy()
		return nil, err
	}

	if err := vk.Error(vk.BindImageMemory(d.VKDevice, img.VKImage, mem.VKDeviceMemory, 0)); err != nil {
		mem.Free()
		img.Destroy()
		return nil, err
	}

	view, err := img.CreateImageViewWithAspectMask(aspect)
	if err != nil {
		mem.Free()
		img.Destroy()
		return nil, err
	}

	ret := &ManagedImage{View: view, Memory: mem, Extent: extent}
	ret.Image = *img
	return ret, nil
}

// CreateDepthImage creates the D32 depth attachment for a swapchain extent.
func (d *Device) CreateDepthImage(extent vk.Extent2D) (*ManagedImage, error) {
	return d.CreateManagedImage(extent, DepthFormat,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.ImageAspectFlags(vk.ImageAspectDepthBit))
}
