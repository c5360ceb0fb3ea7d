package vkm

import (
	vk "github.com/vulkan-go/vulkan"
)

// Image is a raw 2D, single-layer Vulkan image, not yet backed by memory.
// Fractal rendering and clear/readback are the only image use cases here,
// so mip chains and array layers are intentionally not modeled.
type Image struct {
	Device   *Device
	VKImage  vk.Image
	VKFormat vk.Format
	Extent   vk.Extent2D
}

func (d *Device) CreateImage(extent vk.Extent2D, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags) (*Image, error) {
	var imageInfo = vk.ImageCreateInfo{}
	imageInfo.SType = vk.StructureTypeImageCreateInfo
	imageInfo.ImageType = vk.ImageType2d
	imageInfo.Extent.Width = extent.Width
	imageInfo.Extent.Height = extent.Height
	imageInfo.Extent.Depth = 1
	imageInfo.MipLevels = 1
	imageInfo.ArrayLayers = 1
	imageInfo.Format = format
	imageInfo.Tiling = tiling
	imageInfo.InitialLayout = vk.ImageLayoutUndefined
	imageInfo.Usage = usage
	imageInfo.Samples = vk.SampleCount1Bit
	imageInfo.SharingMode = vk.SharingModeExclusive

	var image vk.Image

	err := vk.Error(vk.CreateImage(d.VKDevice, &imageInfo, nil, &image))
	if err != nil {
		return nil, err
	}

	var ret Image

	ret.Device = d
	ret.VKImage = image
	ret.VKFormat = format
	ret.Extent = extent

	return &ret, nil
}

func (i *Image) VKMemoryRequirements() vk.MemoryRequirements {
	var memRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(i.Device.VKDevice, i.VKImage, &memRequirements)
	return memRequirements
}

func (i *Image) Bind(memory *DeviceMemory, offset uint64) error {
	return vk.Error(vk.BindImageMemory(i.Device.VKDevice, i.VKImage, memory.VKDeviceMemory, vk.DeviceSize(offset)))
}

func (i *Image) Destroy() {
	vk.DestroyImage(i.Device.VKDevice, i.VKImage, nil)
}

// fullColorRange covers the whole of a single-layer, single-mip color
// image, which is the only image shape this package creates.
func fullColorRange() vk.ImageSubresourceRange {
	return vk.ImageSubresourceRange{
		AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
		BaseMipLevel:   0,
		LevelCount:     1,
		BaseArrayLayer: 0,
		LayerCount:     1,
	}
}

func fullColorLayers() vk.ImageSubresourceLayers {
	return vk.ImageSubresourceLayers{
		AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
		MipLevel:       0,
		BaseArrayLayer: 0,
		LayerCount:     1,
	}
}

type ImageView struct {
	Device      *Device
	VKImageView vk.ImageView
}

func (i *Image) CreateImageView() (*ImageView, error) {
	createInfo := &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    i.VKImage,
		ViewType: vk.ImageViewType2d,
		Format:   i.VKFormat,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleR,
			G: vk.ComponentSwizzleG,
			B: vk.ComponentSwizzleB,
			A: vk.ComponentSwizzleA,
		},
		SubresourceRange: fullColorRange(),
	}

	var view vk.ImageView

	err := vk.Error(vk.CreateImageView(i.Device.VKDevice, createInfo, nil, &view))
	if err != nil {
		return nil, err
	}
	var ret ImageView
	ret.Device = i.Device
	ret.VKImageView = view

	return &ret, nil

}

func (i *ImageView) Destroy() {
	vk.DestroyImageView(i.Device.VKDevice, i.VKImageView, nil)
}
