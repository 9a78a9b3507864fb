package vkb

import (
	"errors"
	"fmt"
	"log"

	vk "github.com/vulkan-go/vulkan"
)

// Windower supplies the pieces of the window system the facade needs. The
// package never creates windows or pumps events; the examples implement
// this with GLFW.
type Windower interface {
	// RequiredExtensions returns the instance extensions the window system
	// needs for surface creation.
	RequiredExtensions() []string

	// CreateSurface creates the presentation surface on the instance.
	CreateSurface(instance vk.Instance) (vk.Surface, error)

	// Extent returns the current drawable size in pixels. Consulted on
	// swapchain creation and recreation; the value may be stale by the time
	// the swapchain exists, which the out-of-date handling absorbs.
	Extent() vk.Extent2D
}

// RecordFunc records one frame worth of draw commands into cb. Begin and
// end are handled by the caller; the function only records the middle.
type RecordFunc func(cb *CommandBuffer, app *BaseApp, imageIndex uint32)

// BaseAppCreateInfo bundles everything NewBaseApp needs: configuration, the
// window collaborator, the pipeline description and the mesh to upload.
type BaseAppCreateInfo struct {
	Config   AppConfig
	Window   Windower
	Pipeline PipelineConfig

	// Vertices and Indices are raw bytes laid out per Pipeline.VertexLayout
	// and IndexType. Both are uploaded to device local memory through
	// staging buffers.
	Vertices   []byte
	Indices    []byte
	IndexType  vk.IndexType
	IndexCount int

	// UniformSize, when non-zero, creates one persistently mapped uniform
	// buffer per frame slot plus a descriptor set binding it at binding 0.
	UniformSize int

	// TextureRGBA, when non-nil, uploads an RGBA8 texture and binds it as a
	// combined image sampler at binding 1 of every frame's descriptor set.
	TextureRGBA   []byte
	TextureWidth  int
	TextureHeight int
}

// BaseApp owns the whole Vulkan object graph for a single-window
// application: instance, surface, device, swapchain bundle, mesh resources,
// command buffers and per-frame synchronization. Not safe for concurrent
// use; one goroutine drives the frame loop.
type BaseApp struct {
	Config         AppConfig
	Window         Windower
	PipelineConfig PipelineConfig

	Instance       *Instance
	Surface        vk.Surface
	PhysicalDevice *PhysicalDevice
	GraphicsFamily *QueueFamily
	PresentFamily  *QueueFamily
	Device         *Device
	GraphicsQueue  *Queue
	PresentQueue   *Queue
	Pool           *CommandPool
	Bundle         *SwapchainBundle

	VertexBuffer   *ManagedBuffer
	IndexBuffer    *ManagedBuffer
	IndexType      vk.IndexType
	IndexCount     int
	UniformBuffers []*ManagedBuffer
	Texture        *Texture
	DescriptorPool *DescriptorPool
	DescriptorSets []*DescriptorSet

	// CommandBuffers holds one primary buffer per swapchain image. Sized to
	// the image count, not the frame count.
	CommandBuffers []*CommandBuffer

	Sync *FrameSync

	stagingBudget int64
	slots         *frameSlots
	frame         int
	record        RecordFunc
	teardown      teardownList
}

// NewBaseApp builds the full application object graph. On any failure
// everything already created is destroyed before the error is returned.
func NewBaseApp(info *BaseAppCreateInfo) (*BaseApp, error) {
	app := &BaseApp{
		Config:         info.Config,
		Window:         info.Window,
		PipelineConfig: info.Pipeline,
		IndexType:      info.IndexType,
		IndexCount:     info.IndexCount,
	}

	ok := false
	defer func() {
		if !ok {
			app.teardown.run()
		}
	}()

	budget, err := info.Config.stagingBudget()
	if err != nil {
		return nil, err
	}
	app.stagingBudget = budget

	vkApp := &App{
		Name:              info.Config.Name,
		Version:           info.Config.Version,
		APIVersion:        Version{Major: 1},
		EnabledExtensions: info.Window.RequiredExtensions(),
	}

	if info.Config.EnableValidation {
		if err := vkApp.EnableValidation(); err != nil {
			return nil, fmt.Errorf("validation requested: %w", err)
		}
	}

	app.Instance, err = vkApp.CreateInstance()
	if err != nil {
		return nil, fmt.Errorf("creating instance: %w", err)
	}
	app.teardown.add("instance", app.Instance.Destroy)

	if info.Config.EnableValidation {
		if err := app.Instance.UseDefaultDebugCallback(); err != nil {
			return nil, fmt.Errorf("installing debug callback: %w", err)
		}
	}

	app.Surface, err = info.Window.CreateSurface(app.Instance.VKInstance)
	if err != nil {
		return nil, fmt.Errorf("creating surface: %w", err)
	}
	app.teardown.add("surface", func() {
		vk.DestroySurface(app.Instance.VKInstance, app.Surface, nil)
	})

	app.PhysicalDevice, app.GraphicsFamily, app.PresentFamily, err = app.Instance.SelectPhysicalDevice(app.Surface)
	if err != nil {
		return nil, err
	}
	log.Printf("selected adapter: %s", app.PhysicalDevice.DeviceName)

	app.Device, err = app.PhysicalDevice.CreateLogicalDeviceWithOptions(
		QueueFamilySlice{app.GraphicsFamily, app.PresentFamily},
		&CreateDeviceOptions{EnabledExtensions: []string{SwapchainExtension}})
	if err != nil {
		return nil, fmt.Errorf("creating device: %w", err)
	}
	app.teardown.add("device", app.Device.Destroy)

	app.GraphicsQueue = app.Device.GetQueue(app.GraphicsFamily)
	app.PresentQueue = app.Device.GetQueue(app.PresentFamily)

	app.Pool, err = app.Device.CreateCommandPool(app.GraphicsFamily)
	if err != nil {
		return nil, fmt.Errorf("creating command pool: %w", err)
	}
	app.teardown.add("command pool", app.Pool.Destroy)

	if err := app.createMeshResources(info); err != nil {
		return nil, err
	}

	app.Bundle, err = app.Device.CreateSwapchainBundle(app.Surface, &app.PipelineConfig, app.swapchainOptions(nil))
	if err != nil {
		return nil, err
	}
	app.teardown.add("swapchain bundle", func() { app.Bundle.Destroy() })

	if err := app.createDescriptorSets(info); err != nil {
		return nil, err
	}

	app.CommandBuffers, err = app.Pool.AllocateBuffers(app.Bundle.ImageCount())
	if err != nil {
		return nil, fmt.Errorf("allocating command buffers: %w", err)
	}
	app.teardown.add("command buffers", func() { app.Pool.FreeBuffers(app.CommandBuffers) })

	frames := info.Config.framesInFlight()
	app.Sync, err = app.Device.CreateFrameSync(frames)
	if err != nil {
		return nil, fmt.Errorf("creating frame sync: %w", err)
	}
	app.teardown.add("frame sync", app.Sync.Destroy)

	app.slots = newFrameSlots(frames)

	ok = true
	return app, nil
}

func (app *BaseApp) createMeshResources(info *BaseAppCreateInfo) error {
	var err error

	if len(info.Vertices) > 0 {
		if err := app.checkStagingBudget(len(info.Vertices)); err != nil {
			return err
		}
		app.VertexBuffer, err = app.Device.CreateVertexBuffer(app.Pool, app.GraphicsQueue, info.Vertices)
		if err != nil {
			return fmt.Errorf("creating vertex buffer: %w", err)
		}
		app.teardown.add("vertex buffer", app.VertexBuffer.Destroy)
	}

	if len(info.Indices) > 0 {
		if err := app.checkStagingBudget(len(info.Indices)); err != nil {
			return err
		}
		app.IndexBuffer, err = app.Device.CreateIndexBuffer(app.Pool, app.GraphicsQueue, info.Indices)
		if err != nil {
			return fmt.Errorf("creating index buffer: %w", err)
		}
		app.teardown.add("index buffer", app.IndexBuffer.Destroy)
	}

	if info.UniformSize > 0 {
		app.UniformBuffers, err = app.Device.CreateUniformBuffers(uint64(info.UniformSize), app.Config.framesInFlight())
		if err != nil {
			return fmt.Errorf("creating uniform buffers: %w", err)
		}
		app.teardown.add("uniform buffers", func() {
			for _, b := range app.UniformBuffers {
				b.Destroy()
			}
		})
	}

	if info.TextureRGBA != nil {
		if err := app.checkStagingBudget(len(info.TextureRGBA)); err != nil {
			return err
		}
		app.Texture, err = app.Device.CreateTexture(app.Pool, app.GraphicsQueue, info.TextureRGBA, info.TextureWidth, info.TextureHeight)
		if err != nil {
			return fmt.Errorf("creating texture: %w", err)
		}
		app.teardown.add("texture", app.Texture.Destroy)
	}

	return nil
}

func (app *BaseApp) checkStagingBudget(size int) error {
	if int64(size) > app.stagingBudget {
		return fmt.Errorf("upload of %d bytes exceeds staging budget of %d bytes", size, app.stagingBudget)
	}
	return nil
}

func (app *BaseApp) createDescriptorSets(info *BaseAppCreateInfo) error {
	if app.Bundle.DescriptorSetLayout == nil {
		return nil
	}

	frames := app.Config.framesInFlight()

	pool := app.Device.NewDescriptorPool()
	if len(app.UniformBuffers) > 0 {
		pool.AddPoolSize(vk.DescriptorTypeUniformBuffer, frames)
	}
	if app.Texture != nil {
		pool.AddPoolSize(vk.DescriptorTypeCombinedImageSampler, frames)
	}
	if err := pool.Create(frames); err != nil {
		return fmt.Errorf("creating descriptor pool: %w", err)
	}
	app.DescriptorPool = pool
	app.teardown.add("descriptor pool", pool.Destroy)

	layouts := make([]*DescriptorSetLayout, frames)
	for i := range layouts {
		layouts[i] = app.Bundle.DescriptorSetLayout
	}

	sets, err := pool.Allocate(layouts...)
	if err != nil {
		return fmt.Errorf("allocating descriptor sets: %w", err)
	}
	app.DescriptorSets = sets

	for i, set := range sets {
		if len(app.UniformBuffers) > 0 {
			set.AddBuffer(0, vk.DescriptorTypeUniformBuffer, &app.UniformBuffers[i].Buffer, 0)
		}
		if app.Texture != nil {
			set.AddCombinedImageSampler(1, vk.ImageLayoutShaderReadOnlyOptimal, app.Texture.View.VKImageView, app.Texture.VKSampler)
		}
		set.Write()
	}

	return nil
}

func (app *BaseApp) swapchainOptions(old *Swapchain) *CreateSwapchainOptions {
	return &CreateSwapchainOptions{
		OldSwapchain:         old,
		WindowExtent:         app.Window.Extent(),
		PreferredFormat:      app.Config.preferredFormat(),
		PreferredPresentMode: app.Config.PreferredPresentMode,
		GraphicsFamily:       app.GraphicsFamily.Index,
		PresentFamily:        app.PresentFamily.Index,
	}
}

// CurrentFrame returns the frame slot the next DrawFrame will use.
func (app *BaseApp) CurrentFrame() int {
	return app.frame
}

// WaitForFrame blocks until the current slot's in-flight fence signals.
// Waiting on a slot whose fence was reset without a subsequent submit is
// rejected instead of deadlocking.
func (app *BaseApp) WaitForFrame() error {
	if err := app.slots.wait(app.frame); err != nil {
		return err
	}
	return app.waitFrame(app.frame)
}

// AcquireNextImage acquires the next swapchain image, signaling the current
// slot's image-available semaphore. The returned error is ErrOutOfDate when
// the swapchain must be rebuilt before any work is submitted, ErrSuboptimal
// when the image is usable but the swapchain should be rebuilt after
// presenting.
func (app *BaseApp) AcquireNextImage() (uint32, error) {
	idx, err := app.acquireImage(app.frame)
	if errors.Is(err, ErrOutOfDate) {
		if aerr := app.slots.abort(app.frame); aerr != nil {
			return 0, aerr
		}
	}
	return idx, err
}

// ResetFrameFence unsignals the current slot's fence. Only legal once an
// image was successfully acquired; resetting earlier risks a deadlock if
// the iteration aborts.
func (app *BaseApp) ResetFrameFence() error {
	if err := app.slots.reset(app.frame); err != nil {
		return err
	}
	return app.resetFrameFence(app.frame)
}

// RecordCommandBuffer resets and records the command buffer owned by
// imageIndex. Begin and end run exactly once each, even when record panics.
func (app *BaseApp) RecordCommandBuffer(imageIndex uint32, record RecordFunc) (err error) {
	cb := app.CommandBuffers[imageIndex]
	if err := cb.Reset(); err != nil {
		return err
	}
	if err := cb.Begin(); err != nil {
		return err
	}
	defer func() {
		if eerr := cb.End(); eerr != nil && err == nil {
			err = eerr
		}
	}()
	record(cb, app, imageIndex)
	return nil
}

// Submit submits the command buffer for imageIndex on the graphics queue:
// waits on image-available at color attachment output, signals
// render-finished and the current slot's fence.
func (app *BaseApp) Submit(imageIndex uint32) error {
	if err := app.slots.submit(app.frame); err != nil {
		return err
	}
	return app.submitFrame(app.frame, imageIndex)
}

// PresentImage queues imageIndex for presentation after render-finished.
// ErrOutOfDate and ErrSuboptimal mean the swapchain should be rebuilt; the
// frame itself completed.
func (app *BaseApp) PresentImage(imageIndex uint32) error {
	return app.presentImage(app.frame, imageIndex)
}

// AdvanceFrame moves to the next frame slot, independent of which swapchain
// image was used.
func (app *BaseApp) AdvanceFrame() {
	app.frame = (app.frame + 1) % app.Sync.Frames()
}

// RecreateSwapchain rebuilds the swapchain bundle and the per-image command
// buffers after the surface changed. The device is idled first.
func (app *BaseApp) RecreateSwapchain() error {
	app.Device.WaitIdle()

	app.Pool.FreeBuffers(app.CommandBuffers)
	app.CommandBuffers = nil

	app.Bundle.Destroy()

	bundle, err := app.Device.CreateSwapchainBundle(app.Surface, &app.PipelineConfig, app.swapchainOptions(nil))
	if err != nil {
		return fmt.Errorf("recreating swapchain bundle: %w", err)
	}
	app.Bundle = bundle

	app.CommandBuffers, err = app.Pool.AllocateBuffers(bundle.ImageCount())
	if err != nil {
		return fmt.Errorf("reallocating command buffers: %w", err)
	}

	return nil
}

// DrawFrame runs one full frame: wait, acquire, reset, record, submit,
// present, advance. An out-of-date acquire rebuilds the swapchain and
// returns without drawing; the next call retries on the same slot.
func (app *BaseApp) DrawFrame(record RecordFunc) error {
	app.record = record
	advance, err := stepFrame(app, app.slots, app.frame)
	if err != nil {
		return err
	}
	if advance {
		app.AdvanceFrame()
	}
	return nil
}

// Destroy idles the device and walks the destructor list in reverse
// creation order. The device is destroyed strictly after everything created
// from it; the instance goes last.
func (app *BaseApp) Destroy() {
	if app.Device != nil {
		app.Device.WaitIdle()
	}
	app.teardown.run()
}

// frameOps is the seam between the frame orchestration and the driver. The
// BaseApp methods below are the real backend; tests drive stepFrame with a
// stub.
type frameOps interface {
	waitFrame(slot int) error
	acquireImage(slot int) (uint32, error)
	resetFrameFence(slot int) error
	recordFrame(imageIndex uint32) error
	submitFrame(slot int, imageIndex uint32) error
	presentImage(slot int, imageIndex uint32) error
	rebuild() error
}

// stepFrame is one iteration of the frame loop over an abstract backend.
// The ledger guarantees the fence is reset only after an image was actually
// acquired, so an out-of-date abort never leaves an unsignaled fence
// behind. Returns whether the frame completed and the slot should advance.
func stepFrame(ops frameOps, ledger *frameSlots, slot int) (bool, error) {
	if err := ledger.wait(slot); err != nil {
		return false, err
	}
	if err := ops.waitFrame(slot); err != nil {
		return false, err
	}

	imageIndex, err := ops.acquireImage(slot)
	if errors.Is(err, ErrOutOfDate) {
		if aerr := ledger.abort(slot); aerr != nil {
			return false, aerr
		}
		if rerr := ops.rebuild(); rerr != nil {
			return false, rerr
		}
		return false, nil
	}
	suboptimal := errors.Is(err, ErrSuboptimal)
	if err != nil && !suboptimal {
		return false, err
	}

	if err := ledger.reset(slot); err != nil {
		return false, err
	}
	if err := ops.resetFrameFence(slot); err != nil {
		return false, err
	}

	if err := ops.recordFrame(imageIndex); err != nil {
		return false, err
	}

	if err := ledger.submit(slot); err != nil {
		return false, err
	}
	if err := ops.submitFrame(slot, imageIndex); err != nil {
		return false, err
	}

	err = ops.presentImage(slot, imageIndex)
	switch {
	case errors.Is(err, ErrOutOfDate) || errors.Is(err, ErrSuboptimal):
		suboptimal = true
	case err != nil:
		return false, err
	}

	if suboptimal {
		if rerr := ops.rebuild(); rerr != nil {
			return false, rerr
		}
	}

	return true, nil
}

func (app *BaseApp) waitFrame(slot int) error {
	return vk.Error(vk.WaitForFences(app.Device.VKDevice, 1, []vk.Fence{app.Sync.InFlight[slot]}, vk.True, vk.MaxUint64))
}

func (app *BaseApp) acquireImage(slot int) (uint32, error) {
	var imageIndex uint32
	res := vk.AcquireNextImage(app.Device.VKDevice, app.Bundle.Swapchain.VKSwapchain, vk.MaxUint64,
		app.Sync.ImageAvailable[slot], vk.NullFence, &imageIndex)
	if err := swapchainResult(res); err != nil {
		if errors.Is(err, ErrSuboptimal) {
			return imageIndex, err
		}
		return 0, err
	}
	return imageIndex, nil
}

func (app *BaseApp) resetFrameFence(slot int) error {
	return vk.Error(vk.ResetFences(app.Device.VKDevice, 1, []vk.Fence{app.Sync.InFlight[slot]}))
}

func (app *BaseApp) recordFrame(imageIndex uint32) error {
	return app.RecordCommandBuffer(imageIndex, app.record)
}

func (app *BaseApp) submitFrame(slot int, imageIndex uint32) error {
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{app.Sync.ImageAvailable[slot]},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{app.CommandBuffers[imageIndex].VK()},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{app.Sync.RenderFinished[slot]},
	}
	return vk.Error(vk.QueueSubmit(app.GraphicsQueue.VKQueue, 1, []vk.SubmitInfo{submitInfo}, app.Sync.InFlight[slot]))
}

func (app *BaseApp) presentImage(slot int, imageIndex uint32) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{app.Sync.RenderFinished[slot]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{app.Bundle.Swapchain.VKSwapchain},
		PImageIndices:      []uint32{imageIndex},
	}
	return swapchainResult(vk.QueuePresent(app.PresentQueue.VKQueue, &presentInfo))
}

func (app *BaseApp) rebuild() error {
	return app.RecreateSwapchain()
}
