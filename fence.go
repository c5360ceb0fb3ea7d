package vkm

import (
	"time"

	vk "github.com/vulkan-go/vulkan"
)

type Fence struct {
	Device  *Device
	VKFence vk.Fence
}

func (d *Device) CreateFence() (*Fence, error) {
	var fenceCreateInfo = vk.FenceCreateInfo{}
	fenceCreateInfo.SType = vk.StructureTypeFenceCreateInfo

	var fence vk.Fence
	err := vk.Error(vk.CreateFence(d.VKDevice, &fenceCreateInfo, nil, &fence))
	if err != nil {
		return nil, err
	}

	var ret Fence
	ret.VKFence = fence
	ret.Device = d
	return &ret, nil
}

// Wait blocks until the fence signals. A timeout of zero or less blocks
// indefinitely; otherwise expiry yields ErrTimeout and a lost device
// yields ErrDeviceLost.
func (f *Fence) Wait(timeout time.Duration) error {
	ns := noTimeout
	if timeout > 0 {
		ns = uint64(timeout.Nanoseconds())
	}

	r := vk.WaitForFences(f.Device.VKDevice, 1, []vk.Fence{f.VKFence}, vk.True, ns)
	return vkResult(r)
}

// Signaled polls the fence without blocking.
func (f *Fence) Signaled() bool {
	return vk.GetFenceStatus(f.Device.VKDevice, f.VKFence) == vk.Success
}

func (f *Fence) Destroy() {
	vk.DestroyFence(f.Device.VKDevice, f.VKFence, nil)
}
