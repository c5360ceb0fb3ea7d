package vkm

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// AccessMode declares how a kernel accesses a binding slot. It does not
// change the Vulkan descriptor type; it tells the submission engine which
// bound resources a dispatch writes, so host readback can be gated on the
// right completion tokens.
type AccessMode int

const (
	AccessRead AccessMode = iota
	AccessWrite
	AccessReadWrite
)

func (m AccessMode) writes() bool {
	return m == AccessWrite || m == AccessReadWrite
}

// BindingKind is the resource category a binding slot expects.
type BindingKind int

const (
	BindingStorageBuffer BindingKind = iota
	BindingStorageImage
)

// Binding describes one slot of a descriptor set layout.
type Binding struct {
	Kind   BindingKind
	Access AccessMode
}

// BindingLayout declares, per binding slot index, what a compute kernel
// expects to find there. A single descriptor set is used; the layout
// generalizes to N bindings per set.
type BindingLayout []Binding

func (l BindingLayout) vkDescriptorType(kind BindingKind) vk.DescriptorType {
	if kind == BindingStorageImage {
		return vk.DescriptorTypeStorageImage
	}
	return vk.DescriptorTypeStorageBuffer
}

func (l BindingLayout) vkBindings() []vk.DescriptorSetLayoutBinding {
	out := make([]vk.DescriptorSetLayoutBinding, len(l))
	for i, b := range l {
		out[i] = vk.DescriptorSetLayoutBinding{
			Binding:         uint32(i),
			DescriptorType:  l.vkDescriptorType(b.Kind),
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageComputeBit),
		}
	}
	return out
}

// ComputePipeline is an executable compute kernel plus its fixed binding
// layout. Immutable after construction.
type ComputePipeline struct {
	Device                *Device
	Layout                BindingLayout
	PushConstantBytes     int
	VKPipeline            vk.Pipeline
	VKPipelineLayout      vk.PipelineLayout
	VKDescriptorSetLayout vk.DescriptorSetLayout
	VKPipelineCache       vk.PipelineCache
}

// BuildComputePipeline compiles a kernel artifact plus a binding layout
// into an executable pipeline. pushConstantBytes declares the size of the
// kernel's push constant block; zero means none. Fails with
// ErrPipelineCreation when the layout is incompatible with driver limits.
func (d *Device) BuildComputePipeline(shader *ShaderModule, entryPoint string, layout BindingLayout, pushConstantBytes int) (*ComputePipeline, error) {
	if len(layout) == 0 {
		return nil, fmt.Errorf("%w: empty binding layout", ErrPipelineCreation)
	}

	var dsl vk.DescriptorSetLayout
	dslInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(layout)),
		PBindings:    layout.vkBindings(),
	}
	err := vk.Error(vk.CreateDescriptorSetLayout(d.VKDevice, &dslInfo, nil, &dsl))
	if err != nil {
		return nil, fmt.Errorf("%w: descriptor set layout: %v", ErrPipelineCreation, err)
	}

	plInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{dsl},
	}
	if pushConstantBytes > 0 {
		plInfo.PushConstantRangeCount = 1
		plInfo.PPushConstantRanges = []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageComputeBit),
			Offset:     0,
			Size:       uint32(pushConstantBytes),
		}}
	}

	var pipelineLayout vk.PipelineLayout
	err = vk.Error(vk.CreatePipelineLayout(d.VKDevice, &plInfo, nil, &pipelineLayout))
	if err != nil {
		vk.DestroyDescriptorSetLayout(d.VKDevice, dsl, nil)
		return nil, fmt.Errorf("%w: pipeline layout: %v", ErrPipelineCreation, err)
	}

	var cache vk.PipelineCache
	cacheInfo := vk.PipelineCacheCreateInfo{SType: vk.StructureTypePipelineCacheCreateInfo}
	err = vk.Error(vk.CreatePipelineCache(d.VKDevice, &cacheInfo, nil, &cache))
	if err != nil {
		vk.DestroyPipelineLayout(d.VKDevice, pipelineLayout, nil)
		vk.DestroyDescriptorSetLayout(d.VKDevice, dsl, nil)
		return nil, fmt.Errorf("%w: pipeline cache: %v", ErrPipelineCreation, err)
	}

	createInfo := vk.ComputePipelineCreateInfo{
		SType:  vk.StructureTypeComputePipelineCreateInfo,
		Stage:  shader.VKPipelineShaderStageCreateInfo(vk.ShaderStageComputeBit, entryPoint),
		Layout: pipelineLayout,
	}

	pipelines := make([]vk.Pipeline, 1)
	err = vk.Error(vk.CreateComputePipelines(d.VKDevice, cache, 1,
		[]vk.ComputePipelineCreateInfo{createInfo}, nil, pipelines))
	if err != nil {
		vk.DestroyPipelineCache(d.VKDevice, cache, nil)
		vk.DestroyPipelineLayout(d.VKDevice, pipelineLayout, nil)
		vk.DestroyDescriptorSetLayout(d.VKDevice, dsl, nil)
		return nil, fmt.Errorf("%w: %v", ErrPipelineCreation, err)
	}

	Logger().Debug("compute pipeline built", "shader", shader.Description, "bindings", len(layout), "pushBytes", pushConstantBytes)

	return &ComputePipeline{
		Device:                d,
		Layout:                layout,
		PushConstantBytes:     pushConstantBytes,
		VKPipeline:            pipelines[0],
		VKPipelineLayout:      pipelineLayout,
		VKDescriptorSetLayout: dsl,
		VKPipelineCache:       cache,
	}, nil
}

func (p *ComputePipeline) Destroy() {
	vk.DestroyPipeline(p.Device.VKDevice, p.VKPipeline, nil)
	vk.DestroyPipelineCache(p.Device.VKDevice, p.VKPipelineCache, nil)
	vk.DestroyPipelineLayout(p.Device.VKDevice, p.VKPipelineLayout, nil)
	vk.DestroyDescriptorSetLayout(p.Device.VKDevice, p.VKDescriptorSetLayout, nil)
}
