package vkb

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// DeviceMemory maps to Vulkan DeviceMemory and can either be memory on the host or on the device
type DeviceMemory struct {
	Device         *Device
	VKDeviceMemory vk.DeviceMemory
	Size           uint64

	mapped bool
	ptr    unsafe.Pointer
}

// IsMapped returns true if the device memory is currently mapped
func (d *DeviceMemory) IsMapped() bool {
	return d.mapped
}

// Free releases this memory. Mapped memory is unmapped first.
func (d *DeviceMemory) Free() {
	if d.mapped {
		d.Unmap()
	}
	vk.FreeMemory(d.Device.VKDevice, d.VKDeviceMemory, nil)
}

// Map maps the entirety of this memory. Mapping memory that is already
// mapped is a programming error and panics.
func (d *DeviceMemory) Map() (unsafe.Pointer, error) {
	if d.mapped {
		panic("vkb: device memory mapped twice")
	}
	var res unsafe.Pointer
	err := vk.Error(vk.MapMemory(d.Device.VKDevice, d.VKDeviceMemory, 0, vk.DeviceSize(d.Size), 0, &res))
	if err != nil {
		return nil, err
	}
	d.mapped = true
	d.ptr = res
	return res, nil
}

// Unmap unmaps this memory. Unmapping memory that was never mapped is a
// programming error and panics.
func (d *DeviceMemory) Unmap() {
	if !d.mapped {
		panic("vkb: unmap of device memory that is not mapped")
	}
	vk.UnmapMemory(d.Device.VKDevice, d.VKDeviceMemory)
	d.mapped = false
	d.ptr = nil
}

// MapCopyUnmap will map this memory, copy the specified data to it and unmap
func (d *DeviceMemory) MapCopyUnmap(data []byte) error {
	pm, err := d.Map()
	if err != nil {
		return err
	}

	copy(ToBytes(pm, len(data)), data)

	d.Unmap()
	return nil
}
