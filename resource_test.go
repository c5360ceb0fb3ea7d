package vkm

import (
	"errors"
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestImageByteSize(t *testing.T) {
	img := testImage(1024, 1024)
	if img.ByteSize() != 1024*1024*4 {
		t.Errorf("got %d", img.ByteSize())
	}

	wide := &ImageResource{}
	wide.Image.Extent = vk.Extent2D{Width: 2, Height: 2}
	wide.Image.VKFormat = vk.FormatR32g32b32a32Sfloat
	if wide.ByteSize() != 2*2*16 {
		t.Errorf("got %d", wide.ByteSize())
	}
}

func TestDeviceMemoryIsMapped(t *testing.T) {
	m := &DeviceMemory{}
	if m.IsMapped() {
		t.Error("unmapped memory reported mapped")
	}
	m.MapCount = 1
	if !m.IsMapped() {
		t.Error("mapped memory reported unmapped")
	}
}

func TestSafeString(t *testing.T) {
	if safeString("VK_LAYER_KHRONOS_validation") != "VK_LAYER_KHRONOS_validation\x00" {
		t.Error("missing terminator not appended")
	}
	if safeString("already\x00") != "already\x00" {
		t.Error("terminator duplicated")
	}
	if safeString("") != "\x00" {
		t.Error("empty string not terminated")
	}
}

func TestVKResultMapping(t *testing.T) {
	if vkResult(vk.Success) != nil {
		t.Error("success should map to nil")
	}
	if !errors.Is(vkResult(vk.Timeout), ErrTimeout) {
		t.Error("timeout should map to ErrTimeout")
	}
	if !errors.Is(vkResult(vk.ErrorDeviceLost), ErrDeviceLost) {
		t.Error("device lost should map to ErrDeviceLost")
	}
	if vkResult(vk.ErrorOutOfDeviceMemory) == nil {
		t.Error("other failures should map to an error")
	}
}
