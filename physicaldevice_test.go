package vkb

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func memTypes(flags ...vk.MemoryPropertyFlagBits) []vk.MemoryType {
	ret := make([]vk.MemoryType, len(flags))
	for i, f := range flags {
		ret[i].PropertyFlags = vk.MemoryPropertyFlags(f)
	}
	return ret
}

func TestFindMemoryTypeLowestIndex(t *testing.T) {
	hostVisible := vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit
	types := memTypes(
		vk.MemoryPropertyDeviceLocalBit,
		hostVisible,
		hostVisible,
	)

	idx, err := FindMemoryTypeIn(types, 0b111, hostVisible)
	if err != nil {
		t.Fatal(err)
	}
	if idx != 1 {
		t.Errorf("index = %d, want 1 (lowest matching)", idx)
	}
}

func TestFindMemoryTypeHonorsFilterBits(t *testing.T) {
	hostVisible := vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit
	types := memTypes(hostVisible, hostVisible)

	// Index 0 matches the properties but is masked out by the filter.
	idx, err := FindMemoryTypeIn(types, 0b10, hostVisible)
	if err != nil {
		t.Fatal(err)
	}
	if idx != 1 {
		t.Errorf("index = %d, want 1", idx)
	}
}

func TestFindMemoryTypeSupersetOnly(t *testing.T) {
	// Host visible alone is not enough when coherent is also required.
	types := memTypes(
		vk.MemoryPropertyHostVisibleBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit|vk.MemoryPropertyHostCachedBit,
	)

	idx, err := FindMemoryTypeIn(types, 0b11, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		t.Fatal(err)
	}
	if idx != 1 {
		t.Errorf("index = %d, want 1 (superset of requested flags)", idx)
	}
}

func TestFindMemoryTypeNoMatch(t *testing.T) {
	types := memTypes(vk.MemoryPropertyDeviceLocalBit)

	_, err := FindMemoryTypeIn(types, 0b1, vk.MemoryPropertyHostVisibleBit)
	if err == nil {
		t.Error("expected an error when no memory type matches")
	}
}
