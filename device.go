package vkm

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Device is a logical device created from a selected PhysicalDevice. It
// owns the queues, memory, and every object created through it, and must
// outlive them all.
type Device struct {
	PhysicalDevice *PhysicalDevice
	VKDevice       vk.Device
}

func (d *Device) Destroy() {
	vk.DestroyDevice(d.VKDevice, nil)
}

func (d *Device) String() string {
	return fmt.Sprintf("{ PhysicalDevice: %s }", d.PhysicalDevice)
}

func (d *Device) WaitIdle() error {
	return vkResult(vk.DeviceWaitIdle(d.VKDevice))
}

// GetQueue fetches the device queue for a family the logical device was
// created with.
func (d *Device) GetQueue(qf *QueueFamily) *Queue {

	var vkq vk.Queue

	vk.GetDeviceQueue(d.VKDevice, uint32(qf.Index), 0, &vkq)

	var queue Queue
	queue.QueueFamily = qf
	queue.Device = d
	queue.VKQueue = vkq

	return &queue
}

// Allocate allocates raw device memory of the given size from a memory
// type satisfying memoryTypeBits and the property flags.
func (d *Device) Allocate(sizeInBytes int, memoryTypeBits uint32, memoryProperties vk.MemoryPropertyFlagBits) (*DeviceMemory, error) {

	memoryTypeIndex, err := d.PhysicalDevice.FindMemoryType(memoryTypeBits, memoryProperties)
	if err != nil {
		return nil, err
	}

	var allocateInfo = vk.MemoryAllocateInfo{}
	allocateInfo.SType = vk.StructureTypeMemoryAllocateInfo
	allocateInfo.AllocationSize = vk.DeviceSize(sizeInBytes)
	allocateInfo.MemoryTypeIndex = memoryTypeIndex

	var memory vk.DeviceMemory
	err = vk.Error(vk.AllocateMemory(d.VKDevice, &allocateInfo, nil, &memory))
	if err != nil {
		return nil, fmt.Errorf("%w: %d bytes: %v", ErrAllocation, sizeInBytes, err)
	}

	var ret DeviceMemory
	ret.Device = d
	ret.VKDeviceMemory = memory
	ret.Size = uint64(sizeInBytes)

	return &ret, nil
}
