package vkb

import (
	"testing"
)

func TestTeardownReverseOrder(t *testing.T) {
	var tl teardownList
	var executed []string

	for _, name := range []string{"instance", "surface", "device", "pool", "sync"} {
		name := name
		tl.add(name, func() { executed = append(executed, name) })
	}

	order := tl.run()

	want := []string{"sync", "pool", "device", "surface", "instance"}
	for i, name := range want {
		if executed[i] != name {
			t.Fatalf("executed[%d] = %s, want %s (full order %v)", i, executed[i], name, executed)
		}
		if order[i] != name {
			t.Fatalf("reported order[%d] = %s, want %s", i, order[i], name)
		}
	}
}

func TestTeardownDeviceAfterDeviceOwnedObjects(t *testing.T) {
	// The facade adds the device before anything created from it, so the
	// reverse walk destroys the device strictly after all of them and the
	// instance last of all.
	var tl teardownList
	var executed []string
	note := func(name string) func() {
		return func() { executed = append(executed, name) }
	}

	tl.add("instance", note("instance"))
	tl.add("surface", note("surface"))
	tl.add("device", note("device"))
	tl.add("command pool", note("command pool"))
	tl.add("vertex buffer", note("vertex buffer"))
	tl.add("swapchain bundle", note("swapchain bundle"))
	tl.add("frame sync", note("frame sync"))

	tl.run()

	pos := make(map[string]int)
	for i, name := range executed {
		pos[name] = i
	}

	for _, owned := range []string{"command pool", "vertex buffer", "swapchain bundle", "frame sync"} {
		if pos[owned] > pos["device"] {
			t.Errorf("%s destroyed after the device", owned)
		}
	}
	if pos["device"] > pos["surface"] || pos["surface"] > pos["instance"] {
		t.Errorf("want device before surface before instance, got %v", executed)
	}
	if pos["instance"] != len(executed)-1 {
		t.Errorf("instance must be destroyed last, got %v", executed)
	}
}

func TestTeardownRunIsIdempotent(t *testing.T) {
	var tl teardownList
	count := 0
	tl.add("x", func() { count++ })

	tl.run()
	tl.run()

	if count != 1 {
		t.Errorf("destructor ran %d times, want 1", count)
	}
}
