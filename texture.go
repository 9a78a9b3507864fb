package vkb

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// TransitionImageLayout records a pipeline barrier moving img between
// layouts. Only the two transitions a staged texture upload needs are
// supported: UNDEFINED to TRANSFER_DST_OPTIMAL and TRANSFER_DST_OPTIMAL to
// SHADER_READ_ONLY_OPTIMAL. Requesting any other pair is a programming
// error and panics rather than recording a barrier with the wrong masks.
func (c *CommandBuffer) TransitionImageLayout(img *ManagedImage, oldLayout, newLayout vk.ImageLayout) {
	var barrier = vk.ImageMemoryBarrier{}
	barrier.SType = vk.StructureTypeImageMemoryBarrier
	barrier.OldLayout = oldLayout
	barrier.NewLayout = newLayout
	barrier.SrcQueueFamilyIndex = vk.QueueFamilyIgnored
	barrier.DstQueueFamilyIndex = vk.QueueFamilyIgnored
	barrier.Image = img.VKImage
	barrier.SubresourceRange.AspectMask = vk.ImageAspectFlags(vk.ImageAspectColorBit)
	barrier.SubresourceRange.BaseMipLevel = 0
	barrier.SubresourceRange.LevelCount = 1
	barrier.SubresourceRange.BaseArrayLayer = 0
	barrier.SubresourceRange.LayerCount = 1

	var sourceStage, destStage vk.PipelineStageFlags

	switch {
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutTransferDstOptimal:
		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)

		sourceStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		destStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)

	case oldLayout == vk.ImageLayoutTransferDstOptimal && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)

		sourceStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		destStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)

	default:
		panic(fmt.Sprintf("vkb: unsupported image layout transition %d -> %d", oldLayout, newLayout))
	}

	vk.CmdPipelineBarrier(c.VK(), sourceStage, destStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

// CopyBufferToImage records a full-extent copy from a staging buffer into an
// image that is in TRANSFER_DST_OPTIMAL layout.
func (c *CommandBuffer) CopyBufferToImage(src *ManagedBuffer, dst *ManagedImage) {
	vk.CmdCopyBufferToImage(c.VK(), src.VKBuffer, dst.VKImage, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{
		{
			BufferOffset:      0,
			BufferRowLength:   0,
			BufferImageHeight: 0,
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				MipLevel:       0,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			ImageOffset: vk.Offset3D{},
			ImageExtent: vk.Extent3D{
				Width: dst.Extent.Width, Height: dst.Extent.Height, Depth: 1,
			},
		},
	})
}

// Texture is a sampled image with its sampler.
type Texture struct {
	*ManagedImage
	VKSampler vk.Sampler
}

func (t *Texture) Destroy() {
	vk.DestroySampler(t.Device.VKDevice, t.VKSampler, nil)
	t.ManagedImage.Destroy()
}

// CreateTexture uploads raw RGBA8 samples into a device local sampled image
// and creates a sampler for it. Decoding image files is the caller's
// business; this takes pixels and dimensions. The upload stages through a
// host visible buffer, transitions to TRANSFER_DST_OPTIMAL, copies, then
// transitions to SHADER_READ_ONLY_OPTIMAL, all on one blocking one-time
// command buffer.
func (d *Device) CreateTexture(pool *CommandPool, queue *Queue, rgba []byte, width, height int) (*Texture, error) {
	if len(rgba) != width*height*4 {
		return nil, fmt.Errorf("texture data is %d bytes, want %d for %dx%d RGBA", len(rgba), width*height*4, width, height)
	}

	staging, err := d.CreateStagingBuffer(rgba)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	img, err := d.CreateManagedImage(
		vk.Extent2D{Width: uint32(width), Height: uint32(height)},
		vk.FormatR8g8b8a8Srgb,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}

	err = d.ImmediateCommands(pool, queue, func(cb *CommandBuffer) {
		cb.TransitionImageLayout(img, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
		cb.CopyBufferToImage(staging, img)
		cb.TransitionImageLayout(img, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	})
	if err != nil {
		img.Destroy()
		return nil, err
	}

	sampler, err := d.createSampler()
	if err != nil {
		img.Destroy()
		return nil, err
	}

	return &Texture{ManagedImage: img, VKSampler: sampler}, nil
}

func (d *Device) createSampler() (vk.Sampler, error) {
	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1.0,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
	}

	var sampler vk.Sampler
	err := vk.Error(vk.CreateSampler(d.VKDevice, &samplerInfo, nil, &sampler))
	if err != nil {
		return vk.NullSampler, err
	}
	return sampler, nil
}
