package vkm

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

type PhysicalDevice struct {
	DeviceName                 string
	VKPhysicalDevice           vk.PhysicalDevice
	VKPhysicalDeviceProperties vk.PhysicalDeviceProperties
}

func (p *PhysicalDevice) String() string {
	return p.DeviceName
}

// QueueFamilies enumerates the queue families of this device. The
// capability flags are cached on each QueueFamily so predicates can run
// without further driver calls.
func (p *PhysicalDevice) QueueFamilies() (QueueFamilySlice, error) {
	var queueFamilyCount uint32

	vk.GetPhysicalDeviceQueueFamilyProperties(p.VKPhysicalDevice, &queueFamilyCount, nil)

	if queueFamilyCount == 0 {
		return nil, nil
	}

	queues := make([]vk.QueueFamilyProperties, queueFamilyCount)

	vk.GetPhysicalDeviceQueueFamilyProperties(p.VKPhysicalDevice, &queueFamilyCount, queues)

	ret := make([]*QueueFamily, queueFamilyCount)
	for i, queue := range queues {

		ret[i] = &QueueFamily{Index: i, PhysicalDevice: p, VKQueueFamilyProperties: queue}

		ret[i].VKQueueFamilyProperties.Deref()

		flags := ret[i].VKQueueFamilyProperties.QueueFlags
		ret[i].Compute = flags&vk.QueueFlags(vk.QueueComputeBit) != 0
		ret[i].Graphics = flags&vk.QueueFlags(vk.QueueGraphicsBit) != 0
		ret[i].Transfer = flags&vk.QueueFlags(vk.QueueTransferBit) != 0
	}

	return ret, nil

}

type QueueFamilySlice []*QueueFamily

func (ql QueueFamilySlice) Filter(f func(q *QueueFamily) bool) QueueFamilySlice {
	ret := make([]*QueueFamily, 0)
	for _, q := range ql {
		if f(q) {
			ret = append(ret, q)
		}
	}
	return ret
}

// FilterCapability filters families advertising the given capability.
func (ql QueueFamilySlice) FilterCapability(c Capability) QueueFamilySlice {
	return ql.Filter(func(q *QueueFamily) bool {
		return q.Supports(c)
	})
}

type QueueFamily struct {
	Index                   int
	PhysicalDevice          *PhysicalDevice
	Compute                 bool
	Graphics                bool
	Transfer                bool
	VKQueueFamilyProperties vk.QueueFamilyProperties
}

// Supports reports whether this family advertises the capability. Per the
// Vulkan spec, graphics and compute capable families implicitly support
// transfer operations.
func (q *QueueFamily) Supports(c Capability) bool {
	switch c {
	case CapabilityGraphics:
		return q.Graphics
	case CapabilityCompute:
		return q.Compute
	case CapabilityTransfer:
		return q.Transfer || q.Graphics || q.Compute
	}
	return false
}

func (q *QueueFamily) String() string {
	return fmt.Sprintf("{ Index: %d Compute: %v Graphics: %v Transfer: %v }", q.Index, q.Compute, q.Graphics, q.Transfer)
}

// CreateLogicalDevice creates a logical device exposing one queue from
// each of the given families at the given relative priority.
func (p *PhysicalDevice) CreateLogicalDevice(qfs QueueFamilySlice, priority float32) (*Device, error) {

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(qfs))
	for j, q := range qfs {

		queueCreateInfo := vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(q.Index),
			QueueCount:       1,
			PQueuePriorities: []float32{priority},
		}

		queueCreateInfos[j] = queueCreateInfo

	}

	deviceFeatures := p.VKPhysicalDeviceFeatures()

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: uint32(len(qfs)),
		PQueueCreateInfos:    queueCreateInfos,
		PEnabledFeatures:     []vk.PhysicalDeviceFeatures{deviceFeatures},
	}

	var ldevice vk.Device

	err := vk.Error(vk.CreateDevice(p.VKPhysicalDevice, &deviceCreateInfo, nil, &ldevice))
	if err != nil {
		return nil, err
	}

	var device Device
	device.PhysicalDevice = p
	device.VKDevice = ldevice

	return &device, nil
}

func (p *PhysicalDevice) VKPhysicalDeviceFeatures() vk.PhysicalDeviceFeatures {
	var deviceFeatures vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(p.VKPhysicalDevice, &deviceFeatures)
	return deviceFeatures
}

func (p *PhysicalDevice) VKPhysicalDeviceMemoryProperties() vk.PhysicalDeviceMemoryProperties {
	var memoryProperties vk.PhysicalDeviceMemoryProperties

	vk.GetPhysicalDeviceMemoryProperties(p.VKPhysicalDevice, &memoryProperties)
	return memoryProperties
}

// FindMemoryType locates a memory type satisfying both the type bits of a
// resource's requirements and the requested property flags.
func (p *PhysicalDevice) FindMemoryType(memoryTypeBits uint32, properties vk.MemoryPropertyFlagBits) (uint32, error) {
	memoryProperties := p.VKPhysicalDeviceMemoryProperties()
	mp := &memoryProperties
	mp.Deref()

	var i uint32
	for i = 0; i < mp.MemoryTypeCount; i++ {
		mt := mp.MemoryTypes[i]

		mt.Deref()
		if memoryTypeBits&(1<<i) != 0 &&
			vk.MemoryPropertyFlagBits(mt.PropertyFlags)&properties == properties {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: no memory type matches bits 0x%x with properties 0x%x", ErrAllocation, memoryTypeBits, properties)
}
