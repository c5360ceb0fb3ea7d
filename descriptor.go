package vkm

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Bindable is a GPU resource that can occupy a descriptor binding slot.
// Implemented by BufferResource and ImageResource.
type Bindable interface {
	bindingKind() BindingKind
	writeDescriptor(slot int, dtype vk.DescriptorType) (vk.WriteDescriptorSet, error)
	bindingState() *resourceState
}

func (r *BufferResource) bindingKind() BindingKind { return BindingStorageBuffer }

func (r *BufferResource) bindingState() *resourceState { return &r.state }

func (r *BufferResource) writeDescriptor(slot int, dtype vk.DescriptorType) (vk.WriteDescriptorSet, error) {
	info := vk.DescriptorBufferInfo{
		Buffer: r.VKBuffer,
		Offset: 0,
		Range:  vk.DeviceSize(r.Buffer.Size),
	}
	return vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstBinding:      uint32(slot),
		DescriptorCount: 1,
		DescriptorType:  dtype,
		PBufferInfo:     []vk.DescriptorBufferInfo{info},
	}, nil
}

func (r *ImageResource) bindingKind() BindingKind { return BindingStorageImage }

func (r *ImageResource) bindingState() *resourceState { return &r.state }

func (r *ImageResource) writeDescriptor(slot int, dtype vk.DescriptorType) (vk.WriteDescriptorSet, error) {
	view, err := r.View()
	if err != nil {
		return vk.WriteDescriptorSet{}, err
	}
	// Storage images are accessed in the general layout; the recorder
	// transitions the image before the dispatch executes.
	info := vk.DescriptorImageInfo{
		ImageView:   view.VKImageView,
		ImageLayout: vk.ImageLayoutGeneral,
	}
	return vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstBinding:      uint32(slot),
		DescriptorCount: 1,
		DescriptorType:  dtype,
		PImageInfo:      []vk.DescriptorImageInfo{info},
	}, nil
}

// BindingSet is an immutable mapping from binding slot index to GPU
// resource for one ComputePipeline. Created once per invocation pattern;
// its lifetime is tied to the submissions that use it.
type BindingSet struct {
	Pipeline         *ComputePipeline
	VKDescriptorPool vk.DescriptorPool
	VKDescriptorSet  vk.DescriptorSet

	resources []Bindable
}

// NewBindingSet binds concrete resources to each slot of the pipeline's
// layout, in slot order. Fails with ErrPipelineCreation when the count or
// a resource kind does not match the layout.
func NewBindingSet(p *ComputePipeline, resources ...Bindable) (*BindingSet, error) {
	if len(resources) != len(p.Layout) {
		return nil, fmt.Errorf("%w: layout has %d binding(s), got %d resource(s)", ErrPipelineCreation, len(p.Layout), len(resources))
	}

	var bufferCount, imageCount uint32
	for slot, res := range resources {
		want := p.Layout[slot].Kind
		if res.bindingKind() != want {
			return nil, fmt.Errorf("%w: binding %d expects kind %d, got %d", ErrPipelineCreation, slot, want, res.bindingKind())
		}
		if want == BindingStorageImage {
			imageCount++
		} else {
			bufferCount++
		}
	}

	poolSizes := make([]vk.DescriptorPoolSize, 0, 2)
	if bufferCount > 0 {
		poolSizes = append(poolSizes, vk.DescriptorPoolSize{
			Type:            vk.DescriptorTypeStorageBuffer,
			DescriptorCount: bufferCount,
		})
	}
	if imageCount > 0 {
		poolSizes = append(poolSizes, vk.DescriptorPoolSize{
			Type:            vk.DescriptorTypeStorageImage,
			DescriptorCount: imageCount,
		})
	}

	device := p.Device

	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       1,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}

	var pool vk.DescriptorPool
	err := vk.Error(vk.CreateDescriptorPool(device.VKDevice, &poolInfo, nil, &pool))
	if err != nil {
		return nil, fmt.Errorf("%w: descriptor pool: %v", ErrPipelineCreation, err)
	}

	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{p.VKDescriptorSetLayout},
	}

	var set vk.DescriptorSet
	err = vk.Error(vk.AllocateDescriptorSets(device.VKDevice, &allocInfo, &set))
	if err != nil {
		vk.DestroyDescriptorPool(device.VKDevice, pool, nil)
		return nil, fmt.Errorf("%w: descriptor set: %v", ErrPipelineCreation, err)
	}

	writes := make([]vk.WriteDescriptorSet, len(resources))
	for slot, res := range resources {
		w, err := res.writeDescriptor(slot, p.Layout.vkDescriptorType(p.Layout[slot].Kind))
		if err != nil {
			vk.DestroyDescriptorPool(device.VKDevice, pool, nil)
			return nil, fmt.Errorf("%w: binding %d: %v", ErrPipelineCreation, slot, err)
		}
		w.DstSet = set
		writes[slot] = w
	}

	vk.UpdateDescriptorSets(device.VKDevice, uint32(len(writes)), writes, 0, nil)

	return &BindingSet{
		Pipeline:         p,
		VKDescriptorPool: pool,
		VKDescriptorSet:  set,
		resources:        append([]Bindable(nil), resources...),
	}, nil
}

// boundImages returns the storage images in this set, which the recorder
// must transition to the general layout before a dispatch.
func (s *BindingSet) boundImages() []*ImageResource {
	var out []*ImageResource
	for _, r := range s.resources {
		if img, ok := r.(*ImageResource); ok {
			out = append(out, img)
		}
	}
	return out
}

// writtenStates returns state handles for resources the pipeline's
// layout declares as written by the kernel.
func (s *BindingSet) writtenStates() []*resourceState {
	var out []*resourceState
	for slot, r := range s.resources {
		if s.Pipeline.Layout[slot].Access.writes() {
			out = append(out, r.bindingState())
		}
	}
	return out
}

// allStates returns state handles for every bound resource.
func (s *BindingSet) allStates() []*resourceState {
	out := make([]*resourceState, len(s.resources))
	for i, r := range s.resources {
		out[i] = r.bindingState()
	}
	return out
}

func (s *BindingSet) Destroy() {
	device := s.Pipeline.Device
	set := s.VKDescriptorSet
	vk.FreeDescriptorSets(device.VKDevice, s.VKDescriptorPool, 1, &set)
	vk.DestroyDescriptorPool(device.VKDevice, s.VKDescriptorPool, nil)
}
