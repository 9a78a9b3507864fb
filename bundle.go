package vkb

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// SwapchainBundle is everything that becomes invalid together when the
// surface changes: the swapchain, its image views, the depth image, the
// render pass, the pipeline and the framebuffers. It is created and
// destroyed as a unit; recreation replaces the whole bundle.
type SwapchainBundle struct {
	Device *Device

	Swapchain  *Swapchain
	Format     vk.Format
	Extent     vk.Extent2D
	ImageViews []*ImageView
	Depth      *ManagedImage

	RenderPass          vk.RenderPass
	DescriptorSetLayout *DescriptorSetLayout
	PipelineLayout      *PipelineLayout
	Pipeline            vk.Pipeline

	Framebuffers []vk.Framebuffer
}

// ImageCount is the number of swapchain images. Command buffers are sized
// to this, not to the frames-in-flight count.
func (b *SwapchainBundle) ImageCount() int {
	return len(b.ImageViews)
}

// CreateSwapchainBundle builds the full bundle. Construction is
// all-or-nothing: any failure tears down everything already created and the
// bundle is never returned half-built.
func (d *Device) CreateSwapchainBundle(surface vk.Surface, cfg *PipelineConfig, options *CreateSwapchainOptions) (*SwapchainBundle, error) {
	b := &SwapchainBundle{Device: d}

	ok := false
	defer func() {
		if !ok {
			b.Destroy()
		}
	}()

	swapchain, err := d.CreateSwapchain(surface, options)
	if err != nil {
		return nil, fmt.Errorf("creating swapchain: %w", err)
	}
	b.Swapchain = swapchain
	b.Format = swapchain.Format
	b.Extent = swapchain.Extent

	images, err := swapchain.GetImages()
	if err != nil {
		return nil, fmt.Errorf("getting swapchain images: %w", err)
	}

	b.ImageViews = make([]*ImageView, 0, len(images))
	for _, img := range images {
		view, err := img.CreateImageView()
		if err != nil {
			return nil, fmt.Errorf("creating swapchain image view: %w", err)
		}
		b.ImageViews = append(b.ImageViews, view)
	}

	if cfg.EnableDepth {
		b.Depth, err = d.CreateDepthImage(b.Extent)
		if err != nil {
			return nil, fmt.Errorf("creating depth image: %w", err)
		}
	}

	b.RenderPass, err = d.CreateRenderPass(b.Format, cfg.EnableDepth)
	if err != nil {
		return nil, fmt.Errorf("creating render pass: %w", err)
	}

	var setLayouts []*DescriptorSetLayout
	if len(cfg.DescriptorBindings) > 0 {
		b.DescriptorSetLayout, err = d.CreateDescriptorSetLayout(cfg.DescriptorBindings)
		if err != nil {
			return nil, fmt.Errorf("creating descriptor set layout: %w", err)
		}
		setLayouts = []*DescriptorSetLayout{b.DescriptorSetLayout}
	}

	var pushConstants []vk.PushConstantRange
	if cfg.PushConstantSize > 0 {
		pushConstants = []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			Offset:     0,
			Size:       uint32(cfg.PushConstantSize),
		}}
	}

	b.PipelineLayout, err = d.CreatePipelineLayout(setLayouts, pushConstants)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline layout: %w", err)
	}

	b.Pipeline, err = d.buildGraphicsPipeline(cfg, b.Extent, b.RenderPass, b.PipelineLayout)
	if err != nil {
		return nil, fmt.Errorf("creating graphics pipeline: %w", err)
	}

	b.Framebuffers = make([]vk.Framebuffer, 0, len(b.ImageViews))
	for _, view := range b.ImageViews {
		attachments := []vk.ImageView{view.VKImageView}
		if b.Depth != nil {
			attachments = append(attachments, b.Depth.View.VKImageView)
		}

		createInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      b.RenderPass,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           b.Extent.Width,
			Height:          b.Extent.Height,
			Layers:          1,
		}

		var fb vk.Framebuffer
		if err := vk.Error(vk.CreateFramebuffer(d.VKDevice, &createInfo, nil, &fb)); err != nil {
			return nil, fmt.Errorf("creating framebuffer: %w", err)
		}
		b.Framebuffers = append(b.Framebuffers, fb)
	}

	if len(b.Framebuffers) != len(b.ImageViews) {
		return nil, fmt.Errorf("framebuffer count %d does not match image view count %d", len(b.Framebuffers), len(b.ImageViews))
	}

	ok = true
	return b, nil
}

// Destroy tears the bundle down in reverse creation order. Safe to call on
// a partially built bundle.
func (b *SwapchainBundle) Destroy() {
	dev := b.Device.VKDevice

	for _, fb := range b.Framebuffers {
		vk.DestroyFramebuffer(dev, fb, nil)
	}
	b.Framebuffers = nil

	if b.Pipeline != vk.NullPipeline {
		vk.DestroyPipeline(dev, b.Pipeline, nil)
		b.Pipeline = vk.NullPipeline
	}
	if b.PipelineLayout != nil {
		b.PipelineLayout.Destroy()
		b.PipelineLayout = nil
	}
	if b.DescriptorSetLayout != nil {
		b.DescriptorSetLayout.Destroy()
		b.DescriptorSetLayout = nil
	}
	if b.RenderPass != vk.NullRenderPass {
		vk.DestroyRenderPass(dev, b.RenderPass, nil)
		b.RenderPass = vk.NullRenderPass
	}
	if b.Depth != nil {
		b.Depth.Destroy()
		b.Depth = nil
	}
	for _, view := range b.ImageViews {
		view.Destroy()
	}
	b.ImageViews = nil
	if b.Swapchain != nil {
		b.Swapchain.Destroy()
		b.Swapchain = nil
	}
}
