package vkb

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

type IndexSliceUint16 []uint16

func (i IndexSliceUint16) Bytes() []byte {
	size := len(i) * int(unsafe.Sizeof(uint16(1)))
	return ToBytes(unsafe.Pointer(&i[0]), size)
}

func (i IndexSliceUint16) IndexType() vk.IndexType {
	return vk.IndexTypeUint16
}

type IndexSliceUint32 []uint32

func (i IndexSliceUint32) Bytes() []byte {
	size := len(i) * int(unsafe.Sizeof(uint32(1)))
	return ToBytes(unsafe.Pointer(&i[0]), size)
}

func (i IndexSliceUint32) IndexType() vk.IndexType {
	return vk.IndexTypeUint32
}

// VertexAttribute describes one attribute within a vertex.
type VertexAttribute struct {
	Location int
	Format   vk.Format
	Offset   int
}

// VertexLayout describes the in-memory layout of one vertex for a single
// interleaved binding. It replaces per-application vertex types: the
// pipeline builder only needs stride and attribute placement.
type VertexLayout struct {
	Stride     int
	Attributes []VertexAttribute
}

func (l VertexLayout) BindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(l.Stride),
		InputRate: vk.VertexInputRateVertex,
	}
}

func (l VertexLayout) AttributeDescriptions() []vk.VertexInputAttributeDescription {
	ret := make([]vk.VertexInputAttributeDescription, len(l.Attributes))
	for i, a := range l.Attributes {
		ret[i] = vk.VertexInputAttributeDescription{
			Binding:  0,
			Location: uint32(a.Location),
			Format:   a.Format,
			Offset:   uint32(a.Offset),
		}
	}
	return ret
}
