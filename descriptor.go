package vkb

import (
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorSetLayout describes the layout of a descriptorset
type DescriptorSetLayout struct {
	Device                *Device
	VKDescriptorSetLayout vk.DescriptorSetLayout
	Bindings              []vk.DescriptorSetLayoutBinding
}

func (d *DescriptorSetLayout) Destroy() {
	vk.DestroyDescriptorSetLayout(d.Device.VKDevice, d.VKDescriptorSetLayout, nil)
}

// CreateDescriptorSetLayout creates a layout from the given bindings.
func (d *Device) CreateDescriptorSetLayout(bindings []vk.DescriptorSetLayoutBinding) (*DescriptorSetLayout, error) {
	var createInfo = &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	var layout vk.DescriptorSetLayout
	err := vk.Error(vk.CreateDescriptorSetLayout(d.VKDevice, createInfo, nil, &layout))
	if err != nil {
		return nil, err
	}

	return &DescriptorSetLayout{
		Device:                d,
		VKDescriptorSetLayout: layout,
		Bindings:              bindings,
	}, nil
}

// UniformBufferBinding is the conventional vertex-stage uniform binding.
func UniformBufferBinding(binding int) vk.DescriptorSetLayoutBinding {
	return vk.DescriptorSetLayoutBinding{
		Binding:         uint32(binding),
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
	}
}

// CombinedImageSamplerBinding is the conventional fragment-stage texture
// binding.
func CombinedImageSamplerBinding(binding int) vk.DescriptorSetLayoutBinding {
	return vk.DescriptorSetLayoutBinding{
		Binding:         uint32(binding),
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
	}
}

// DescriptorPool is a resource manager for descriptor sets.
type DescriptorPool struct {
	Device           *Device
	VKDescriptorPool vk.DescriptorPool
	poolSizes        []vk.DescriptorPoolSize
}

func (d *Device) NewDescriptorPool() *DescriptorPool {
	return &DescriptorPool{Device: d}
}

// AddPoolSize informs the descriptor pool how many of a certain descriptortype it will contain
func (d *DescriptorPool) AddPoolSize(dtype vk.DescriptorType, count int) {
	d.poolSizes = append(d.poolSizes, vk.DescriptorPoolSize{
		Type:            dtype,
		DescriptorCount: uint32(count),
	})
}

// Create creates the native pool sized for maxSets sets.
func (d *DescriptorPool) Create(maxSets int) error {
	var createInfo = vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       uint32(maxSets),
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		PoolSizeCount: uint32(len(d.poolSizes)),
		PPoolSizes:    d.poolSizes,
	}

	return vk.Error(vk.CreateDescriptorPool(d.Device.VKDevice, &createInfo, nil, &d.VKDescriptorPool))
}

func (d *DescriptorPool) Destroy() {
	vk.DestroyDescriptorPool(d.Device.VKDevice, d.VKDescriptorPool, nil)
}

// allocationPlan builds one single-set allocate info per layout. The driver
// writes DescriptorSetCount handles through the destination pointer, and the
// binding only takes a pointer to a single vk.DescriptorSet, so each set must
// come from its own call.
func (d *DescriptorPool) allocationPlan(layouts []*DescriptorSetLayout) []vk.DescriptorSetAllocateInfo {
	plan := make([]vk.DescriptorSetAllocateInfo, len(layouts))
	for i, l := range layouts {
		plan[i] = vk.DescriptorSetAllocateInfo{
			SType:              vk.StructureTypeDescriptorSetAllocateInfo,
			DescriptorPool:     d.VKDescriptorPool,
			DescriptorSetCount: 1,
			PSetLayouts:        []vk.DescriptorSetLayout{l.VKDescriptorSetLayout},
		}
	}
	return plan
}

// Allocate allocates one descriptor set per given layout.
func (d *DescriptorPool) Allocate(layouts ...*DescriptorSetLayout) ([]*DescriptorSet, error) {
	ret := make([]*DescriptorSet, 0, len(layouts))
	for _, info := range d.allocationPlan(layouts) {
		var set vk.DescriptorSet
		if err := vk.Error(vk.AllocateDescriptorSets(d.Device.VKDevice, &info, &set)); err != nil {
			return nil, err
		}
		ret = append(ret, &DescriptorSet{Device: d.Device, DescriptorPool: d, VKDescriptorSet: set})
	}
	return ret, nil
}

// DescriptorSet is a binding of resources to a descriptor, per a specific DescriptorSetLayout
type DescriptorSet struct {
	Device          *Device
	DescriptorPool  *DescriptorPool
	VKDescriptorSet vk.DescriptorSet

	writes []vk.WriteDescriptorSet
}

// AddBuffer adds a specific buffer to this descriptor set
func (du *DescriptorSet) AddBuffer(dstBinding int, dtype vk.DescriptorType, b *Buffer, offset int) {
	var bufferInfo = vk.DescriptorBufferInfo{}
	bufferInfo.Buffer = b.VKBuffer
	bufferInfo.Offset = vk.DeviceSize(offset)
	bufferInfo.Range = vk.DeviceSize(b.Size)

	var write = vk.WriteDescriptorSet{}
	write.SType = vk.StructureTypeWriteDescriptorSet
	write.DstBinding = uint32(dstBinding)
	write.DescriptorCount = 1
	write.DescriptorType = dtype
	write.PBufferInfo = []vk.DescriptorBufferInfo{bufferInfo}

	du.writes = append(du.writes, write)
}

// AddCombinedImageSampler adds an image layout, image view and sampler to support displaying a texture
func (du *DescriptorSet) AddCombinedImageSampler(dstBinding int, layout vk.ImageLayout, imageView vk.ImageView, sampler vk.Sampler) {
	var imageInfo = vk.DescriptorImageInfo{}
	imageInfo.ImageView = imageView
	imageInfo.ImageLayout = layout
	imageInfo.Sampler = sampler

	var write = vk.WriteDescriptorSet{}
	write.SType = vk.StructureTypeWriteDescriptorSet
	write.DstBinding = uint32(dstBinding)
	write.DescriptorCount = 1
	write.DescriptorType = vk.DescriptorTypeCombinedImageSampler
	write.PImageInfo = []vk.DescriptorImageInfo{imageInfo}

	du.writes = append(du.writes, write)
}

// Write modifies the descriptor set
func (du *DescriptorSet) Write() {
	for i := range du.writes {
		du.writes[i].DstSet = du.VKDescriptorSet
	}
	vk.UpdateDescriptorSets(du.Device.VKDevice, uint32(len(du.writes)), du.writes, 0, nil)
	du.writes = nil
}
