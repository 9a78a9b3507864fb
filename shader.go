package vkb

import (
	"fmt"
	"os"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Shader is a stage-tagged blob of SPIR-V words. Compilation is out of
// scope; shaders arrive precompiled.
type Shader struct {
	Stage vk.ShaderStageFlagBits
	Words []uint32
}

// LoadShaderFile reads a compiled .spv file and tags it with a stage. The
// file length must be a whole number of SPIR-V words.
func LoadShaderFile(path string, stage vk.ShaderStageFlagBits) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Shader{}, err
	}
	if len(data) == 0 || len(data)%4 != 0 {
		return Shader{}, fmt.Errorf("shader %s: %d bytes is not valid SPIR-V", path, len(data))
	}
	words := make([]uint32, len(data)/4)
	copy(words, sliceUint32(data))
	return Shader{Stage: stage, Words: words}, nil
}

type ShaderModule struct {
	Device         *Device
	VKShaderModule vk.ShaderModule
}

// CreateShaderModule builds a native module from a Shader. Modules are
// transient: the pipeline builder destroys them as soon as the pipeline
// exists.
func (d *Device) CreateShaderModule(s Shader) (*ShaderModule, error) {
	var module vk.ShaderModule
	err := vk.Error(vk.CreateShaderModule(d.VKDevice, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(s.Words) * 4),
		PCode:    s.Words,
	}, nil, &module))

	if err != nil {
		return nil, err
	}

	var ret ShaderModule
	ret.VKShaderModule = module
	ret.Device = d
	return &ret, nil
}

func (s *ShaderModule) VKPipelineShaderStageCreateInfo(stage vk.ShaderStageFlagBits, entryPoint string) vk.PipelineShaderStageCreateInfo {
	var shaderStageCreateInfo = vk.PipelineShaderStageCreateInfo{}
	shaderStageCreateInfo.SType = vk.StructureTypePipelineShaderStageCreateInfo
	shaderStageCreateInfo.Stage = stage
	shaderStageCreateInfo.Module = s.VKShaderModule
	shaderStageCreateInfo.PName = safeString(entryPoint)
	return shaderStageCreateInfo
}

func (s *ShaderModule) Destroy() {
	vk.DestroyShaderModule(s.Device.VKDevice, s.VKShaderModule, nil)
}

func sliceUint32(data []byte) []uint32 {
	const m = 0x7fffffff
	return (*[m / 4]uint32)(unsafe.Pointer((*sliceHeader)(unsafe.Pointer(&data)).Data))[:len(data)/4]
}

type sliceHeader struct {
	Data uintptr
	Len  int
	Cap  int
}
