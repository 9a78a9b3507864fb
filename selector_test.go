package vkb

import (
	"errors"
	"testing"
)

func usableAdapter() AdapterInfo {
	return AdapterInfo{
		Name:                "test adapter",
		DiscreteGPU:         false,
		MaxImageDimension2D: 4096,
		GeometryShader:      true,
		SwapchainExtension:  true,
		SurfaceFormats:      2,
		PresentModes:        2,
		GraphicsFamily:      0,
		PresentFamily:       0,
	}
}

func TestScoreAdapterDisqualifiers(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*AdapterInfo)
	}{
		{"no swapchain extension", func(a *AdapterInfo) { a.SwapchainExtension = false }},
		{"no geometry shader", func(a *AdapterInfo) { a.GeometryShader = false }},
		{"no graphics family", func(a *AdapterInfo) { a.GraphicsFamily = -1 }},
		{"no present family", func(a *AdapterInfo) { a.PresentFamily = -1 }},
		{"no surface formats", func(a *AdapterInfo) { a.SurfaceFormats = 0 }},
		{"no present modes", func(a *AdapterInfo) { a.PresentModes = 0 }},
	}

	for _, c := range cases {
		a := usableAdapter()
		c.mutate(&a)
		if got := ScoreAdapter(a); got != 0 {
			t.Errorf("%s: score %d, want 0", c.name, got)
		}
	}
}

func TestScoreAdapterPrefersDiscrete(t *testing.T) {
	integrated := usableAdapter()
	integrated.MaxImageDimension2D = 16384

	discrete := usableAdapter()
	discrete.DiscreteGPU = true
	discrete.MaxImageDimension2D = 16384

	if ScoreAdapter(discrete) <= ScoreAdapter(integrated) {
		t.Error("discrete adapter should outscore an otherwise identical integrated one")
	}
	if ScoreAdapter(discrete)-ScoreAdapter(integrated) != 1000 {
		t.Errorf("discrete bonus = %d, want 1000", ScoreAdapter(discrete)-ScoreAdapter(integrated))
	}
}

func TestBestAdapter(t *testing.T) {
	weak := usableAdapter()
	weak.MaxImageDimension2D = 2048

	strong := usableAdapter()
	strong.DiscreteGPU = true

	idx, err := BestAdapter([]AdapterInfo{weak, strong})
	if err != nil {
		t.Fatal(err)
	}
	if idx != 1 {
		t.Errorf("best adapter index = %d, want 1", idx)
	}
}

func TestBestAdapterNoneSuitable(t *testing.T) {
	unusable := usableAdapter()
	unusable.SwapchainExtension = false

	_, err := BestAdapter([]AdapterInfo{unusable})
	if !errors.Is(err, ErrNoSuitableGPU) {
		t.Errorf("err = %v, want ErrNoSuitableGPU", err)
	}

	_, err = BestAdapter(nil)
	if !errors.Is(err, ErrNoSuitableGPU) {
		t.Errorf("empty list: err = %v, want ErrNoSuitableGPU", err)
	}
}
