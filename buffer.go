package vkb

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Buffer wraps a raw vk.Buffer without memory attached.
type Buffer struct {
	Device   *Device
	VKBuffer vk.Buffer
	Size     uint64
}

func (d *Device) CreateBufferWithOptions(sizeInBytes uint64, usage vk.BufferUsageFlags, sharing vk.SharingMode) (*Buffer, error) {

	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(sizeInBytes),
		Usage:       usage,
		SharingMode: sharing,
	}

	var buffer vk.Buffer
	err := vk.Error(vk.CreateBuffer(d.VKDevice, &bufferCreateInfo, nil, &buffer))
	if err != nil {
		return nil, err
	}

	var ret Buffer
	ret.VKBuffer = buffer
	ret.Device = d
	ret.Size = sizeInBytes

	return &ret, nil
}

func (b *Buffer) VKMemoryRequirements() vk.MemoryRequirements {
	var memoryRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(b.Device.VKDevice, b.VKBuffer, &memoryRequirements)
	return memoryRequirements
}

func (b *Buffer) AllocationRequirements() *AllocationRequirements {
	memoryRequirements := b.VKMemoryRequirements()
	mr := &memoryRequirements
	mr.Deref()

	return &AllocationRequirements{
		Size:           int(mr.Size),
		MemoryTypeBits: mr.MemoryTypeBits,
	}
}

func (b *Buffer) Bind(memory *DeviceMemory, offset uint64) error {
	return vk.Error(vk.BindBufferMemory(b.Device.VKDevice, b.VKBuffer, memory.VKDeviceMemory, vk.DeviceSize(offset)))
}

func (b *Buffer) Destroy() {
	vk.DestroyBuffer(b.Device.VKDevice, b.VKBuffer, nil)
}

// ManagedBuffer is a buffer that owns exactly one memory allocation. Destroy
// unmaps (when mapped), frees the memory and then destroys the buffer.
type ManagedBuffer struct {
	Buffer
	Memory *DeviceMemory

	// Ptr is non-nil while the memory is persistently mapped.
	Ptr unsafe.Pointer
}

// Map maps the whole allocation and remembers the pointer. Mapping twice is
// a programming error and panics (in DeviceMemory).
func (b *ManagedBuffer) Map() (unsafe.Pointer, error) {
	p, err := b.Memory.Map()
	if err != nil {
		return nil, err
	}
	b.Ptr = p
	return p, nil
}

// Unmap releases the mapping. Unmapping a buffer that is not mapped is a
// programming error and panics (in DeviceMemory).
func (b *ManagedBuffer) Unmap() {
	b.Memory.Unmap()
	b.Ptr = nil
}

// Bytes returns the mapped allocation as a byte slice. The buffer must be
// mapped.
func (b *ManagedBuffer) Bytes() []byte {
	if b.Ptr == nil {
		panic("vkb: Bytes on unmapped buffer")
	}
	return ToBytes(b.Ptr, int(b.Size))
}

func (b *ManagedBuffer) Destroy() {
	if b.Memory.IsMapped() {
		b.Unmap()
	}
	b.Memory.Free()
	b.Buffer.Destroy()
}

// CreateManagedBuffer creates a buffer with a dedicated allocation bound at
// offset zero.
func (d *Device) CreateManagedBuffer(sizeInBytes uint64, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlagBits) (*ManagedBuffer, error) {
	buffer, err := d.CreateBufferWithOptions(sizeInBytes, usage, vk.SharingModeExclusive)
	if err != nil {
		return nil, err
	}

	memory, err := d.AllocateForBuffer(buffer, props)
	if err != nil {
		buffer.Destroy()
		return nil, err
	}

	if err := buffer.Bind(memory, 0); err != nil {
		memory.Free()
		buffer.Destroy()
		return nil, err
	}

	ret := &ManagedBuffer{Memory: memory}
	ret.Buffer = *buffer
	return ret, nil
}

// CreateStagingBuffer creates a host visible, host coherent transfer source
// with the data already copied in.
func (d *Device) CreateStagingBuffer(data []byte) (*ManagedBuffer, error) {
	b, err := d.CreateManagedBuffer(uint64(len(data)),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return nil, err
	}
	if err := b.Memory.MapCopyUnmap(data); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

// CreateDeviceLocalBuffer creates a device local buffer and fills it through
// a staging buffer: map and copy on the host, then a one-time command buffer
// copy on the queue, waited for synchronously. The staging buffer is
// destroyed before returning.
func (d *Device) CreateDeviceLocalBuffer(pool *CommandPool, queue *Queue, data []byte, usage vk.BufferUsageFlags) (*ManagedBuffer, error) {
	staging, err := d.CreateStagingBuffer(data)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	dst, err := d.CreateManagedBuffer(uint64(len(data)),
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return nil, err
	}

	err = d.ImmediateCommands(pool, queue, func(cb *CommandBuffer) {
		vk.CmdCopyBuffer(cb.VK(), staging.VKBuffer, dst.VKBuffer, 1, []vk.BufferCopy{{
			Size: vk.DeviceSize(len(data)),
		}})
	})
	if err != nil {
		dst.Destroy()
		return nil, err
	}

	return dst, nil
}

// CreateVertexBuffer uploads vertex data into device local memory.
func (d *Device) CreateVertexBuffer(pool *CommandPool, queue *Queue, data []byte) (*ManagedBuffer, error) {
	return d.CreateDeviceLocalBuffer(pool, queue, data, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
}

// CreateIndexBuffer uploads index data into device local memory.
func (d *Device) CreateIndexBuffer(pool *CommandPool, queue *Queue, data []byte) (*ManagedBuffer, error) {
	return d.CreateDeviceLocalBuffer(pool, queue, data, vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit))
}

// CreateUniformBuffers creates count host visible uniform buffers, one per
// frame slot, each persistently mapped for its whole lifetime.
func (d *Device) CreateUniformBuffers(sizeInBytes uint64, count int) ([]*ManagedBuffer, error) {
	ret := make([]*ManagedBuffer, 0, count)
	for i := 0; i < count; i++ {
		b, err := d.CreateManagedBuffer(sizeInBytes,
			vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
			vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
		if err != nil {
			for _, prev := range ret {
				prev.Destroy()
			}
			return nil, err
		}
		if _, err := b.Map(); err != nil {
			b.Destroy()
			for _, prev := range ret {
				prev.Destroy()
			}
			return nil, err
		}
		ret = append(ret, b)
	}
	return ret, nil
}
