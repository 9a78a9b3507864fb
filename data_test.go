package vkb

import (
	"encoding/binary"
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestIndexSliceUint16Bytes(t *testing.T) {
	indices := IndexSliceUint16{0, 1, 2, 2, 3, 0}

	b := indices.Bytes()
	if len(b) != len(indices)*2 {
		t.Fatalf("byte length = %d, want %d", len(b), len(indices)*2)
	}

	for i, want := range indices {
		got := binary.LittleEndian.Uint16(b[i*2:])
		if got != want {
			t.Errorf("index %d: %d, want %d", i, got, want)
		}
	}

	if indices.IndexType() != vk.IndexTypeUint16 {
		t.Error("wrong index type")
	}
}

func TestIndexSliceUint32Bytes(t *testing.T) {
	indices := IndexSliceUint32{0, 70000, 2}

	b := indices.Bytes()
	if len(b) != len(indices)*4 {
		t.Fatalf("byte length = %d, want %d", len(b), len(indices)*4)
	}

	for i, want := range indices {
		got := binary.LittleEndian.Uint32(b[i*4:])
		if got != want {
			t.Errorf("index %d: %d, want %d", i, got, want)
		}
	}

	if indices.IndexType() != vk.IndexTypeUint32 {
		t.Error("wrong index type")
	}
}

func TestVertexLayoutDescriptions(t *testing.T) {
	layout := VertexLayout{
		Stride: 32,
		Attributes: []VertexAttribute{
			{Location: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
			{Location: 1, Format: vk.FormatR32g32b32Sfloat, Offset: 12},
			{Location: 2, Format: vk.FormatR32g32Sfloat, Offset: 24},
		},
	}

	binding := layout.BindingDescription()
	if binding.Binding != 0 || binding.Stride != 32 || binding.InputRate != vk.VertexInputRateVertex {
		t.Errorf("unexpected binding description %+v", binding)
	}

	attrs := layout.AttributeDescriptions()
	if len(attrs) != 3 {
		t.Fatalf("attribute count = %d, want 3", len(attrs))
	}
	for i, a := range layout.Attributes {
		if attrs[i].Location != uint32(a.Location) || attrs[i].Offset != uint32(a.Offset) || attrs[i].Format != a.Format {
			t.Errorf("attribute %d: got %+v, want %+v", i, attrs[i], a)
		}
		if attrs[i].Binding != 0 {
			t.Errorf("attribute %d: binding %d, want 0", i, attrs[i].Binding)
		}
	}
}
