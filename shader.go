package vkm

import (
	"encoding/binary"
	"fmt"
	"os"

	vk "github.com/vulkan-go/vulkan"
)

// spirvMagic is the first word of every valid SPIR-V module.
const spirvMagic = 0x07230203

// ShaderModule is an opaque pre-compiled kernel artifact. Kernel source
// is authored and compiled externally; this package only validates and
// wraps the resulting SPIR-V words.
type ShaderModule struct {
	Device         *Device
	Description    string
	VKShaderModule vk.ShaderModule
}

// validateSPIRV rejects artifacts that cannot be a SPIR-V module before
// they reach the driver.
func validateSPIRV(data []byte) error {
	if len(data) < 20 {
		return fmt.Errorf("%w: %d bytes is shorter than a SPIR-V header", ErrShaderLoad, len(data))
	}
	if len(data)%4 != 0 {
		return fmt.Errorf("%w: size %d is not a multiple of 4", ErrShaderLoad, len(data))
	}
	if binary.LittleEndian.Uint32(data[:4]) != spirvMagic {
		return fmt.Errorf("%w: bad magic number", ErrShaderLoad)
	}
	return nil
}

// NewShaderModule wraps a compiled SPIR-V artifact. Fails with
// ErrShaderLoad when the artifact is malformed.
func (d *Device) NewShaderModule(data []byte, description string) (*ShaderModule, error) {
	if err := validateSPIRV(data); err != nil {
		return nil, err
	}

	var module vk.ShaderModule
	err := vk.Error(vk.CreateShaderModule(d.VKDevice, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(data)),
		PCode:    sliceUint32(data),
	}, nil, &module))

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShaderLoad, err)
	}

	var ret ShaderModule
	ret.VKShaderModule = module
	ret.Device = d
	ret.Description = description

	Logger().Debug("shader module loaded", "description", description, "bytes", len(data))

	return &ret, nil
}

// LoadShaderModuleFromFile reads a compiled SPIR-V artifact from disk.
func (d *Device) LoadShaderModuleFromFile(file string) (*ShaderModule, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShaderLoad, err)
	}
	return d.NewShaderModule(data, file)
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
