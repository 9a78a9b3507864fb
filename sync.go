package vkb

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// FrameSync holds the per-frame-slot synchronization primitives: an
// image-available semaphore, a render-finished semaphore and an in-flight
// fence per slot. Fences are created signaled so the first wait on every
// slot returns immediately. The slot count is the frames-in-flight count,
// independent of the swapchain image count.
type FrameSync struct {
	Device *Device

	ImageAvailable []vk.Semaphore
	RenderFinished []vk.Semaphore
	InFlight       []vk.Fence
}

func (d *Device) CreateFrameSync(frames int) (*FrameSync, error) {
	s := &FrameSync{Device: d}

	for i := 0; i < frames; i++ {
		imageAvailable, err := d.createSemaphore()
		if err != nil {
			s.Destroy()
			return nil, err
		}
		s.ImageAvailable = append(s.ImageAvailable, imageAvailable)

		renderFinished, err := d.createSemaphore()
		if err != nil {
			s.Destroy()
			return nil, err
		}
		s.RenderFinished = append(s.RenderFinished, renderFinished)

		fence, err := d.createFence(true)
		if err != nil {
			s.Destroy()
			return nil, err
		}
		s.InFlight = append(s.InFlight, fence)
	}

	return s, nil
}

func (s *FrameSync) Frames() int {
	return len(s.InFlight)
}

func (s *FrameSync) Destroy() {
	for _, sem := range s.ImageAvailable {
		vk.DestroySemaphore(s.Device.VKDevice, sem, nil)
	}
	for _, sem := range s.RenderFinished {
		vk.DestroySemaphore(s.Device.VKDevice, sem, nil)
	}
	for _, f := range s.InFlight {
		vk.DestroyFence(s.Device.VKDevice, f, nil)
	}
	s.ImageAvailable = nil
	s.RenderFinished = nil
	s.InFlight = nil
}

func (d *Device) createSemaphore() (vk.Semaphore, error) {
	createInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	var sema vk.Semaphore
	err := vk.Error(vk.CreateSemaphore(d.VKDevice, &createInfo, nil, &sema))
	return sema, err
}

func (d *Device) createFence(signaled bool) (vk.Fence, error) {
	var createInfo = vk.FenceCreateInfo{}
	createInfo.SType = vk.StructureTypeFenceCreateInfo
	if signaled {
		createInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var fence vk.Fence
	err := vk.Error(vk.CreateFence(d.VKDevice, &createInfo, nil, &fence))
	return fence, err
}

// slotState tracks where a frame slot is in the wait/reset/submit cycle.
type slotState int

const (
	// slotIdle: the fence is signaled and nothing is outstanding.
	slotIdle slotState = iota
	// slotWaited: the fence has been observed signaled this iteration.
	slotWaited
	// slotReset: the fence is unsignaled; a submit must follow or the next
	// wait on this slot blocks forever.
	slotReset
	// slotSubmitted: work is on the queue; the fence will signal.
	slotSubmitted
)

// frameSlots is the ledger that enforces fence discipline per frame slot:
// wait, then reset, then submit, in that order, at most one outstanding
// submission per slot. An acquire that fails with an out-of-date swapchain
// must Abort the slot instead of resetting it; resetting first and then not
// submitting would deadlock the next wait.
type frameSlots struct {
	states []slotState
}

func newFrameSlots(frames int) *frameSlots {
	return &frameSlots{states: make([]slotState, frames)}
}

func (f *frameSlots) check(slot int) {
	if slot < 0 || slot >= len(f.states) {
		panic(fmt.Sprintf("vkb: frame slot %d out of range [0,%d)", slot, len(f.states)))
	}
}

// Wait marks the slot fence as observed signaled. Legal from idle (fence
// created signaled) and from submitted (the queue signaled it). Waiting on
// a reset-but-never-submitted slot is the deadlock this ledger exists to
// catch.
func (f *frameSlots) wait(slot int) error {
	f.check(slot)
	switch f.states[slot] {
	case slotIdle, slotSubmitted:
		f.states[slot] = slotWaited
		return nil
	case slotReset:
		return fmt.Errorf("frame slot %d: wait would block forever, fence was reset without a submit", slot)
	}
	return fmt.Errorf("frame slot %d: wait out of order", slot)
}

// Abort returns a waited slot to idle without resetting the fence. Used
// when acquire reports an out-of-date swapchain before any work was
// submitted.
func (f *frameSlots) abort(slot int) error {
	f.check(slot)
	if f.states[slot] != slotWaited {
		return fmt.Errorf("frame slot %d: abort without a prior wait", slot)
	}
	f.states[slot] = slotIdle
	return nil
}

// Reset unsignals the slot fence. Only legal after the fence was observed
// signaled this iteration.
func (f *frameSlots) reset(slot int) error {
	f.check(slot)
	if f.states[slot] != slotWaited {
		return fmt.Errorf("frame slot %d: reset without a prior wait", slot)
	}
	f.states[slot] = slotReset
	return nil
}

// Submit records that work carrying the slot fence is on the queue. Only
// legal after a reset; two submits against one reset would let a second
// frame reuse primitives that are still in flight.
func (f *frameSlots) submit(slot int) error {
	f.check(slot)
	if f.states[slot] != slotReset {
		return fmt.Errorf("frame slot %d: submit without a prior fence reset", slot)
	}
	f.states[slot] = slotSubmitted
	return nil
}

// Outstanding reports whether the slot has a submission the fence has not
// been waited on yet.
func (f *frameSlots) outstanding(slot int) bool {
	f.check(slot)
	return f.states[slot] == slotSubmitted
}
