package vkm

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestAccessModeWrites(t *testing.T) {
	if AccessRead.writes() {
		t.Error("read access should not count as a write")
	}
	if !AccessWrite.writes() {
		t.Error("write access should count as a write")
	}
	if !AccessReadWrite.writes() {
		t.Error("read-write access should count as a write")
	}
}

func TestBindingLayoutVKBindings(t *testing.T) {
	layout := BindingLayout{
		{Kind: BindingStorageBuffer, Access: AccessRead},
		{Kind: BindingStorageImage, Access: AccessWrite},
		{Kind: BindingStorageBuffer, Access: AccessReadWrite},
	}

	bindings := layout.vkBindings()
	if len(bindings) != 3 {
		t.Fatalf("expected 3 bindings, got %d", len(bindings))
	}

	for i, b := range bindings {
		if b.Binding != uint32(i) {
			t.Errorf("binding %d numbered %d", i, b.Binding)
		}
		if b.DescriptorCount != 1 {
			t.Errorf("binding %d count %d", i, b.DescriptorCount)
		}
		if b.StageFlags != vk.ShaderStageFlags(vk.ShaderStageComputeBit) {
			t.Errorf("binding %d not compute-stage", i)
		}
	}

	if bindings[0].DescriptorType != vk.DescriptorTypeStorageBuffer {
		t.Error("slot 0 should be a storage buffer")
	}
	if bindings[1].DescriptorType != vk.DescriptorTypeStorageImage {
		t.Error("slot 1 should be a storage image")
	}
}

func TestNewBindingSetRejectsMismatch(t *testing.T) {
	pipeline := &ComputePipeline{
		Layout: BindingLayout{
			{Kind: BindingStorageBuffer, Access: AccessRead},
			{Kind: BindingStorageImage, Access: AccessWrite},
		},
	}

	// Wrong count.
	if _, err := NewBindingSet(pipeline, testBuffer(16)); err == nil {
		t.Error("short resource list accepted")
	}

	// Wrong kind in slot 1.
	if _, err := NewBindingSet(pipeline, testBuffer(16), testBuffer(16)); err == nil {
		t.Error("buffer accepted in an image slot")
	}
}
