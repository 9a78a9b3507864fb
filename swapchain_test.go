package vkb

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestChooseSurfaceFormatPreferred(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	preferred := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	got := ChooseSurfaceFormat(formats, preferred)
	if got.Format != vk.FormatR8g8b8a8Srgb {
		t.Errorf("format = %v, want preferred %v", got.Format, vk.FormatR8g8b8a8Srgb)
	}
}

func TestChooseSurfaceFormatFallsBackToFirst(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	preferred := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	got := ChooseSurfaceFormat(formats, preferred)
	if got.Format != vk.FormatB8g8r8a8Unorm {
		t.Errorf("format = %v, want first entry %v", got.Format, vk.FormatB8g8r8a8Unorm)
	}
}

func TestChooseSurfaceFormatRequiresExactPair(t *testing.T) {
	// Matching format with the wrong colorspace must not count.
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: vk.ColorSpace(1)},
	}
	preferred := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	got := ChooseSurfaceFormat(formats, preferred)
	if got.Format != vk.FormatB8g8r8a8Unorm {
		t.Errorf("format = %v, want first entry when the exact pair is missing", got.Format)
	}
}

func TestChooseSurfaceFormatDeterministic(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	preferred := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	first := ChooseSurfaceFormat(formats, preferred)
	for i := 0; i < 10; i++ {
		if got := ChooseSurfaceFormat(formats, preferred); got != first {
			t.Fatalf("call %d returned %v, first call returned %v", i, got, first)
		}
	}
}

func TestChoosePresentMode(t *testing.T) {
	modes := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo, vk.PresentModeMailbox}

	if got := ChoosePresentMode(modes, vk.PresentModeMailbox); got != vk.PresentModeMailbox {
		t.Errorf("supported preference: got %v, want mailbox", got)
	}

	noMailbox := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo}
	if got := ChoosePresentMode(noMailbox, vk.PresentModeMailbox); got != vk.PresentModeFifo {
		t.Errorf("unsupported preference: got %v, want FIFO", got)
	}
}

func TestChooseExtentFixed(t *testing.T) {
	current := vk.Extent2D{Width: 800, Height: 600}
	min := vk.Extent2D{Width: 1, Height: 1}
	max := vk.Extent2D{Width: 4096, Height: 4096}
	window := vk.Extent2D{Width: 1920, Height: 1080}

	got := ChooseExtent(current, min, max, window)
	if got != current {
		t.Errorf("fixed extent: got %v, want %v verbatim", got, current)
	}
}

func TestChooseExtentClamped(t *testing.T) {
	current := vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32}
	min := vk.Extent2D{Width: 200, Height: 200}
	max := vk.Extent2D{Width: 1000, Height: 1000}

	cases := []struct {
		window vk.Extent2D
		want   vk.Extent2D
	}{
		{vk.Extent2D{Width: 500, Height: 500}, vk.Extent2D{Width: 500, Height: 500}},
		{vk.Extent2D{Width: 100, Height: 500}, vk.Extent2D{Width: 200, Height: 500}},
		{vk.Extent2D{Width: 5000, Height: 500}, vk.Extent2D{Width: 1000, Height: 500}},
		{vk.Extent2D{Width: 100, Height: 5000}, vk.Extent2D{Width: 200, Height: 1000}},
	}

	for _, c := range cases {
		if got := ChooseExtent(current, min, max, c.window); got != c.want {
			t.Errorf("window %v: got %v, want %v", c.window, got, c.want)
		}
	}
}

func TestChooseImageCount(t *testing.T) {
	cases := []struct {
		min, max, want uint32
	}{
		{2, 8, 3},
		{2, 3, 3},
		{3, 3, 3},
		{2, 0, 3}, // zero max means unbounded
	}

	for _, c := range cases {
		if got := ChooseImageCount(c.min, c.max); got != c.want {
			t.Errorf("min=%d max=%d: got %d, want %d", c.min, c.max, got, c.want)
		}
	}
}
