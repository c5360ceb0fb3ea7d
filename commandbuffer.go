package vkm

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// CommandBuffer wraps a native Vulkan command buffer. The submission
// engine encodes sealed sequences into one; applications normally never
// touch it directly, but the native handle is exposed for commands this
// package does not wrap.
type CommandBuffer struct {
	VKCommandBuffer vk.CommandBuffer
}

// VK is a utility function for accessing the native vulkan command buffer
func (c *CommandBuffer) VK() vk.CommandBuffer {
	return c.VKCommandBuffer
}

// BeginOneTime begins capturing work for this command buffer, with the
// stipulation that it will be submitted exactly once.
func (c *CommandBuffer) BeginOneTime() error {
	var beginInfo = vk.CommandBufferBeginInfo{}
	beginInfo.SType = vk.StructureTypeCommandBufferBeginInfo
	beginInfo.Flags = vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	return vk.Error(vk.BeginCommandBuffer(c.VKCommandBuffer, &beginInfo))
}

// End describing work for this command buffer
func (c *CommandBuffer) End() error {
	return vk.Error(vk.EndCommandBuffer(c.VKCommandBuffer))
}

func (c *CommandBuffer) CmdBindComputePipeline(p *ComputePipeline) {
	vk.CmdBindPipeline(c.VKCommandBuffer, vk.PipelineBindPointCompute, p.VKPipeline)
}

func (c *CommandBuffer) CmdBindBindingSet(s *BindingSet) {
	vk.CmdBindDescriptorSets(c.VKCommandBuffer, vk.PipelineBindPointCompute,
		s.Pipeline.VKPipelineLayout, 0, 1, []vk.DescriptorSet{s.VKDescriptorSet}, 0, nil)
}

func (c *CommandBuffer) CmdPushConstants(p *ComputePipeline, data []byte) {
	if len(data) == 0 {
		return
	}
	vk.CmdPushConstants(c.VKCommandBuffer, p.VKPipelineLayout,
		vk.ShaderStageFlags(vk.ShaderStageComputeBit), 0, uint32(len(data)), unsafe.Pointer(&data[0]))
}

func (c *CommandBuffer) CmdDispatch(groups [3]uint32) {
	vk.CmdDispatch(c.VKCommandBuffer, groups[0], groups[1], groups[2])
}

// CmdCopyBuffer records a full byte-for-byte copy between two
// equal-sized buffers.
func (c *CommandBuffer) CmdCopyBuffer(src, dst *BufferResource) {
	vk.CmdCopyBuffer(c.VKCommandBuffer, src.VKBuffer, dst.VKBuffer, 1, []vk.BufferCopy{{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      vk.DeviceSize(src.Buffer.Size),
	}})
}

// CmdClearColorImage records a fill of every pixel with a constant
// color. The image must be in the transfer-dst layout.
func (c *CommandBuffer) CmdClearColorImage(img *ImageResource, color RGBA) {
	var clearValue vk.ClearColorValue
	floats := (*[4]float32)(unsafe.Pointer(&clearValue))
	*floats = color.Float32()

	vk.CmdClearColorImage(c.VKCommandBuffer, img.VKImage, vk.ImageLayoutTransferDstOptimal,
		&clearValue, 1, []vk.ImageSubresourceRange{fullColorRange()})
}

// CmdCopyImageToBuffer records a linearization of image contents into a
// buffer: row-major, tightly packed, no padding. The image must be in
// the transfer-src layout.
func (c *CommandBuffer) CmdCopyImageToBuffer(img *ImageResource, buf *BufferResource) {
	region := vk.BufferImageCopy{
		BufferOffset:      0,
		BufferRowLength:   0,
		BufferImageHeight: 0,
		ImageSubresource:  fullColorLayers(),
		ImageOffset:       vk.Offset3D{},
		ImageExtent: vk.Extent3D{
			Width: img.Extent.Width, Height: img.Extent.Height, Depth: 1,
		},
	}

	vk.CmdCopyImageToBuffer(c.VKCommandBuffer, img.VKImage, vk.ImageLayoutTransferSrcOptimal,
		buf.VKBuffer, 1, []vk.BufferImageCopy{region})
}

// layoutAccess gives the access mask and pipeline stage that prior or
// subsequent work in the given layout uses, for barrier construction.
func layoutAccess(l vk.ImageLayout) (vk.AccessFlags, vk.PipelineStageFlags) {
	switch l {
	case vk.ImageLayoutGeneral:
		return vk.AccessFlags(vk.AccessShaderReadBit | vk.AccessShaderWriteBit),
			vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit)
	case vk.ImageLayoutTransferDstOptimal:
		return vk.AccessFlags(vk.AccessTransferWriteBit),
			vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case vk.ImageLayoutTransferSrcOptimal:
		return vk.AccessFlags(vk.AccessTransferReadBit),
			vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	default: // undefined
		return 0, vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
	}
}

// CmdTransitionImageLayout records a layout transition from the image's
// tracked layout to newLayout and updates the tracking. A no-op when the
// image is already there.
func (c *CommandBuffer) CmdTransitionImageLayout(img *ImageResource, newLayout vk.ImageLayout) {
	oldLayout := img.Layout
	if oldLayout == newLayout {
		return
	}

	srcAccess, srcStage := layoutAccess(oldLayout)
	dstAccess, dstStage := layoutAccess(newLayout)

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img.VKImage,
		SubresourceRange:    fullColorRange(),
		SrcAccessMask:       srcAccess,
		DstAccessMask:       dstAccess,
	}

	vk.CmdPipelineBarrier(c.VKCommandBuffer, srcStage, dstStage, 0, 0, nil, 0, nil, 1,
		[]vk.ImageMemoryBarrier{barrier})

	img.Layout = newLayout
}

// CmdBarrierTransferToHost makes transfer writes into the buffer visible
// to host reads after the fence signals.
func (c *CommandBuffer) CmdBarrierTransferToHost(buf *BufferResource) {
	barrier := vk.BufferMemoryBarrier{
		SType:               vk.StructureTypeBufferMemoryBarrier,
		SrcAccessMask:       vk.AccessFlags(vk.AccessTransferWriteBit),
		DstAccessMask:       vk.AccessFlags(vk.AccessHostReadBit),
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Buffer:              buf.VKBuffer,
		Offset:              0,
		Size:                vk.DeviceSize(buf.Buffer.Size),
	}

	vk.CmdPipelineBarrier(c.VKCommandBuffer,
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		vk.PipelineStageFlags(vk.PipelineStageHostBit),
		0, 0, nil, 1, []vk.BufferMemoryBarrier{barrier}, 0, nil)
}

// CmdBarrierComputeToHost makes compute shader writes into the buffer
// visible to host reads after the fence signals.
func (c *CommandBuffer) CmdBarrierComputeToHost(buf *BufferResource) {
	barrier := vk.BufferMemoryBarrier{
		SType:               vk.StructureTypeBufferMemoryBarrier,
		SrcAccessMask:       vk.AccessFlags(vk.AccessShaderWriteBit),
		DstAccessMask:       vk.AccessFlags(vk.AccessHostReadBit),
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Buffer:              buf.VKBuffer,
		Offset:              0,
		Size:                vk.DeviceSize(buf.Buffer.Size),
	}

	vk.CmdPipelineBarrier(c.VKCommandBuffer,
		vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit),
		vk.PipelineStageFlags(vk.PipelineStageHostBit),
		0, 0, nil, 1, []vk.BufferMemoryBarrier{barrier}, 0, nil)
}
