package vkb

import (
	"testing"
)

// stubFrameOps is a driverless frame-loop backend that records the call
// sequence and can be scripted to fail acquire or present.
type stubFrameOps struct {
	calls []string

	imageCount uint32
	nextImage  uint32

	acquireErrs []error
	presentErrs []error
	acquires    int
	presents    int

	rebuilds int
}

func (s *stubFrameOps) note(call string) {
	s.calls = append(s.calls, call)
}

func (s *stubFrameOps) waitFrame(slot int) error {
	s.note("wait")
	return nil
}

func (s *stubFrameOps) acquireImage(slot int) (uint32, error) {
	s.note("acquire")
	var err error
	if s.acquires < len(s.acquireErrs) {
		err = s.acquireErrs[s.acquires]
	}
	s.acquires++
	if err != nil && err != ErrSuboptimal {
		return 0, err
	}
	idx := s.nextImage
	s.nextImage = (s.nextImage + 1) % s.imageCount
	return idx, err
}

func (s *stubFrameOps) resetFrameFence(slot int) error {
	s.note("reset")
	return nil
}

func (s *stubFrameOps) recordFrame(imageIndex uint32) error {
	s.note("record")
	return nil
}

func (s *stubFrameOps) submitFrame(slot int, imageIndex uint32) error {
	s.note("submit")
	return nil
}

func (s *stubFrameOps) presentImage(slot int, imageIndex uint32) error {
	s.note("present")
	var err error
	if s.presents < len(s.presentErrs) {
		err = s.presentErrs[s.presents]
	}
	s.presents++
	return err
}

func (s *stubFrameOps) rebuild() error {
	s.note("rebuild")
	s.rebuilds++
	return nil
}

func checkCalls(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("call sequence %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d = %s, want %s (full sequence %v)", i, got[i], want[i], got)
		}
	}
}

// A clean frame runs the whole cycle in order and advances the slot.
func TestStepFrameNormalCycle(t *testing.T) {
	ops := &stubFrameOps{imageCount: 3}
	slots := newFrameSlots(2)

	advance, err := stepFrame(ops, slots, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !advance {
		t.Error("completed frame should advance the slot")
	}

	checkCalls(t, ops.calls, []string{"wait", "acquire", "reset", "record", "submit", "present"})

	if !slots.outstanding(0) {
		t.Error("slot 0 should have an outstanding submission")
	}
}

// Several frames in a row cycle the slots through wait/reset/submit with no
// ledger violations.
func TestStepFrameMultipleFrames(t *testing.T) {
	ops := &stubFrameOps{imageCount: 3}
	slots := newFrameSlots(2)

	slot := 0
	for i := 0; i < 6; i++ {
		advance, err := stepFrame(ops, slots, slot)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if !advance {
			t.Fatalf("frame %d should have completed", i)
		}
		slot = (slot + 1) % 2
	}

	if ops.rebuilds != 0 {
		t.Errorf("no rebuilds expected, got %d", ops.rebuilds)
	}
}

// An out-of-date acquire aborts the iteration before the fence reset,
// rebuilds the swapchain and leaves the slot reusable.
func TestStepFrameOutOfDateAcquire(t *testing.T) {
	ops := &stubFrameOps{
		imageCount:  3,
		acquireErrs: []error{ErrOutOfDate},
	}
	slots := newFrameSlots(2)

	advance, err := stepFrame(ops, slots, 0)
	if err != nil {
		t.Fatal(err)
	}
	if advance {
		t.Error("aborted frame must not advance the slot")
	}

	checkCalls(t, ops.calls, []string{"wait", "acquire", "rebuild"})

	// The retry on the same slot must run cleanly: the fence was never
	// reset, so the next wait cannot deadlock.
	advance, err = stepFrame(ops, slots, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !advance {
		t.Error("retry after rebuild should complete")
	}

	checkCalls(t, ops.calls, []string{
		"wait", "acquire", "rebuild",
		"wait", "acquire", "reset", "record", "submit", "present",
	})
}

// A suboptimal acquire still draws the frame, then rebuilds after present.
func TestStepFrameSuboptimalAcquire(t *testing.T) {
	ops := &stubFrameOps{
		imageCount:  3,
		acquireErrs: []error{ErrSuboptimal},
	}
	slots := newFrameSlots(2)

	advance, err := stepFrame(ops, slots, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !advance {
		t.Error("suboptimal frame should still complete")
	}

	checkCalls(t, ops.calls, []string{"wait", "acquire", "reset", "record", "submit", "present", "rebuild"})
}

// Out-of-date or suboptimal at present is non-fatal: the frame completed,
// the swapchain is rebuilt for the next one.
func TestStepFrameOutOfDatePresent(t *testing.T) {
	ops := &stubFrameOps{
		imageCount:  3,
		presentErrs: []error{ErrOutOfDate},
	}
	slots := newFrameSlots(2)

	advance, err := stepFrame(ops, slots, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !advance {
		t.Error("frame that presented out-of-date should still advance")
	}
	if ops.rebuilds != 1 {
		t.Errorf("rebuilds = %d, want 1", ops.rebuilds)
	}

	// Next frame on the other slot proceeds normally.
	advance, err = stepFrame(ops, slots, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !advance {
		t.Error("following frame should complete")
	}
}

// Slot advance is independent of the acquired image index: two slots over
// three images drift apart without confusing the ledger.
func TestStepFrameSlotAndImageIndependent(t *testing.T) {
	ops := &stubFrameOps{imageCount: 3}
	slots := newFrameSlots(2)

	slot := 0
	for i := 0; i < 12; i++ {
		advance, err := stepFrame(ops, slots, slot)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if !advance {
			t.Fatalf("frame %d should have completed", i)
		}
		slot = (slot + 1) % 2
	}
}
