package vkb

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestTransitionImageLayoutRejectsUnknownPairs(t *testing.T) {
	cb := &CommandBuffer{}
	img := &ManagedImage{}

	cases := []struct {
		old, new vk.ImageLayout
	}{
		{vk.ImageLayoutUndefined, vk.ImageLayoutShaderReadOnlyOptimal},
		{vk.ImageLayoutShaderReadOnlyOptimal, vk.ImageLayoutTransferDstOptimal},
		{vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutUndefined},
		{vk.ImageLayoutColorAttachmentOptimal, vk.ImageLayoutPresentSrc},
	}

	for _, c := range cases {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("transition %d -> %d: expected panic", c.old, c.new)
				}
			}()
			cb.TransitionImageLayout(img, c.old, c.new)
		}()
	}
}
