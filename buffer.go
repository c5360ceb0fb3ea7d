package vkm

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Buffer is a raw Vulkan buffer object, not yet backed by memory. Most
// callers want Allocator.AllocateBuffer, which produces a pool-backed
// BufferResource instead.
type Buffer struct {
	Device   *Device
	VKBuffer vk.Buffer
	Size     uint64
}

func (d *Device) CreateBuffer(sizeInBytes uint64, usage vk.BufferUsageFlags) (*Buffer, error) {

	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(sizeInBytes),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	var buffer vk.Buffer
	err := vk.Error(vk.CreateBuffer(d.VKDevice, &bufferCreateInfo, nil, &buffer))
	if err != nil {
		return nil, err
	}

	var ret Buffer
	ret.VKBuffer = buffer
	ret.Device = d
	ret.Size = sizeInBytes

	return &ret, nil

}

func (b *Buffer) VKMemoryRequirements() vk.MemoryRequirements {
	var memoryRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(b.Device.VKDevice, b.VKBuffer, &memoryRequirements)
	return memoryRequirements
}

func (b *Buffer) Bind(memory *DeviceMemory, offset uint64) error {
	return vk.Error(vk.BindBufferMemory(b.Device.VKDevice, b.VKBuffer, memory.VKDeviceMemory, vk.DeviceSize(offset)))
}

func (b *Buffer) String() string {
	return fmt.Sprintf("{ Buffer %d bytes }", b.Size)
}

func (b *Buffer) Destroy() {
	vk.DestroyBuffer(b.Device.VKDevice, b.VKBuffer, nil)
}
