// Package vkb is a thin helper layer over Vulkan for building windowed
// applications: device selection, swapchain management, pipeline creation,
// buffer and image allocation, and a per-frame render loop skeleton.
//
// The package wraps github.com/vulkan-go/vulkan. It deliberately does not
// hide the native API; wrapper types expose their VK* handles so callers can
// drop down to raw vulkan calls whenever the helpers stop being helpful.
//
// Window creation and event handling are out of scope. The application
// facade consumes a Windower, which supplies a vk.Surface and the current
// drawable extent; the examples implement it with GLFW.
package vkb
