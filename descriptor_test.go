package vkb

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

// Every requested layout gets its own driver call delivering exactly one
// handle: the destination the binding accepts holds a single set, so a
// larger count would overrun it.
func TestDescriptorAllocationOneSetPerCall(t *testing.T) {
	pool := &DescriptorPool{}
	layouts := []*DescriptorSetLayout{{}, {}, {}}

	plan := pool.allocationPlan(layouts)
	if len(plan) != len(layouts) {
		t.Fatalf("plan has %d calls, want %d", len(plan), len(layouts))
	}

	for i, info := range plan {
		if info.SType != vk.StructureTypeDescriptorSetAllocateInfo {
			t.Errorf("call %d: wrong SType", i)
		}
		if info.DescriptorSetCount != 1 {
			t.Errorf("call %d: DescriptorSetCount = %d, want 1", i, info.DescriptorSetCount)
		}
		if len(info.PSetLayouts) != 1 {
			t.Errorf("call %d: carries %d layouts, want 1", i, len(info.PSetLayouts))
		}
	}
}

// The pool is created with MaxSets equal to the number of frame slots and
// one set is requested per slot; the plan must consume exactly that many
// sets, not more.
func TestDescriptorAllocationStaysWithinMaxSets(t *testing.T) {
	frames := 2
	pool := &DescriptorPool{}
	layouts := make([]*DescriptorSetLayout, frames)
	for i := range layouts {
		layouts[i] = &DescriptorSetLayout{}
	}

	total := 0
	for _, info := range pool.allocationPlan(layouts) {
		total += int(info.DescriptorSetCount)
	}
	if total != frames {
		t.Errorf("plan allocates %d sets, want %d", total, frames)
	}
}
