package vkb

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestFramesInFlightClamped(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, 2},
		{1, 2},
		{2, 2},
		{3, 3},
	}

	for _, c := range cases {
		cfg := AppConfig{FramesInFlight: c.in}
		if got := cfg.framesInFlight(); got != c.want {
			t.Errorf("FramesInFlight=%d: got %d, want %d", c.in, got, c.want)
		}
	}
}

func TestPreferredFormatDefault(t *testing.T) {
	var cfg AppConfig
	got := cfg.preferredFormat()
	if got.Format != vk.FormatR8g8b8a8Srgb || got.ColorSpace != vk.ColorSpaceSrgbNonlinear {
		t.Errorf("default preferred format = %+v", got)
	}

	cfg.PreferredFormat = vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	if got := cfg.preferredFormat(); got.Format != vk.FormatB8g8r8a8Unorm {
		t.Errorf("explicit preferred format ignored, got %+v", got)
	}
}

func TestStagingBudgetParsing(t *testing.T) {
	cfg := AppConfig{StagingBudget: "64MiB"}
	n, err := cfg.stagingBudget()
	if err != nil {
		t.Fatal(err)
	}
	if n != 64*1024*1024 {
		t.Errorf("64MiB = %d bytes", n)
	}

	cfg.StagingBudget = ""
	n, err = cfg.stagingBudget()
	if err != nil {
		t.Fatal(err)
	}
	if n != 256*1024*1024 {
		t.Errorf("default budget = %d bytes, want 256MiB", n)
	}

	cfg.StagingBudget = "lots"
	if _, err := cfg.stagingBudget(); err == nil {
		t.Error("expected an error for an unparseable budget")
	}
}
