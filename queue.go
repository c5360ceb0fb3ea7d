package vkm

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Queue is a command submission endpoint bound to one queue family of a
// Device. It is owned by the Device and never outlives it.
type Queue struct {
	Device      *Device
	QueueFamily *QueueFamily
	VKQueue     vk.Queue

	pool *CommandPool
}

func (q *Queue) WaitIdle() error {
	return vkResult(vk.QueueWaitIdle(q.VKQueue))
}

// submitWithFence enqueues command buffers for execution, signaling the
// fence on retirement.
func (q *Queue) submitWithFence(fence *Fence, buffers ...*CommandBuffer) error {
	var submitInfo = vk.SubmitInfo{}
	submitInfo.SType = vk.StructureTypeSubmitInfo
	submitInfo.CommandBufferCount = uint32(len(buffers))

	b := make([]vk.CommandBuffer, len(buffers))
	for i := range buffers {
		b[i] = buffers[i].VKCommandBuffer
	}

	submitInfo.PCommandBuffers = b

	r := vk.QueueSubmit(q.VKQueue, 1, []vk.SubmitInfo{submitInfo}, fence.VKFence)
	if err := vkResult(r); err != nil {
		return fmt.Errorf("queue submit: %w", err)
	}
	return nil
}

// commandPool lazily creates the transient command pool submissions
// allocate their command buffers from.
func (q *Queue) commandPool() (*CommandPool, error) {
	if q.pool != nil {
		return q.pool, nil
	}
	pool, err := q.Device.CreateCommandPool(q.QueueFamily)
	if err != nil {
		return nil, err
	}
	q.pool = pool
	return pool, nil
}

// Destroy releases the queue's command pool. The queue handle itself is
// owned by the device.
func (q *Queue) Destroy() {
	if q.pool != nil {
		q.pool.Destroy()
		q.pool = nil
	}
}

func (q *Queue) String() string {
	return fmt.Sprintf("{Device: %s QueueFamily: %s}", q.Device.String(), q.QueueFamily.String())
}
