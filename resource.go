package vkm

import (
	"fmt"
	"sync/atomic"

	vk "github.com/vulkan-go/vulkan"
)

// resourceState is the lifetime bookkeeping shared by buffer and image
// resources. A resource referenced by a submitted-but-unsignaled sequence
// is retained and may not be freed; a resource written by such a
// sequence may not be read on the host until the sequence's token
// signals.
type resourceState struct {
	inFlight  int32
	lastWrite atomic.Pointer[CompletionToken]
}

func (s *resourceState) retain()  { atomic.AddInt32(&s.inFlight, 1) }
func (s *resourceState) release() { atomic.AddInt32(&s.inFlight, -1) }

func (s *resourceState) retained() bool {
	return atomic.LoadInt32(&s.inFlight) > 0
}

func (s *resourceState) markWrite(t *CompletionToken) {
	s.lastWrite.Store(t)
}

// writePending reports whether the last writing sequence has not yet
// signaled.
func (s *resourceState) writePending() bool {
	t := s.lastWrite.Load()
	return t != nil && !t.Signaled()
}

// BufferResource is a buffer carved out of a MemoryPool.
type BufferResource struct {
	Buffer
	Pool         *MemoryPool
	Allocation   *Allocation
	ElementCount int
	ElementSize  int

	state resourceState
}

// HostVisible reports whether the backing pool is directly mappable.
func (r *BufferResource) HostVisible() bool {
	return r.Pool.HostVisible
}

// bytes is the raw mapped view, without readback gating. Nil when the
// resource is not host visible.
func (r *BufferResource) bytes() []byte {
	if !r.Pool.HostVisible || r.Pool.Memory.Ptr == nil {
		return nil
	}
	data := toBytes(r.Pool.Memory.Ptr, int(r.Pool.Memory.Size))
	return data[r.Allocation.Offset : r.Allocation.Offset+r.Buffer.Size]
}

// FillUint32 seeds a host-visible uint32 buffer from a caller-supplied
// generator, one call per element index. Which seed is used (ascending
// integers, zeros, anything else) is the caller's concern.
func (r *BufferResource) FillUint32(gen func(i int) uint32) error {
	data := r.bytes()
	if data == nil {
		return fmt.Errorf("%w: buffer is not host visible", ErrResourceNotMapped)
	}
	words := sliceUint32(data)
	for i := range words {
		words[i] = gen(i)
	}
	return nil
}

// Free releases the buffer and its pool allocation. Fails with
// ErrResourceInFlight while a submitted sequence still references it.
func (r *BufferResource) Free() error {
	if r.state.retained() {
		return fmt.Errorf("%w: buffer %s", ErrResourceInFlight, r.Buffer.String())
	}
	if r.Allocation != nil {
		r.Pool.alloc.Free(r.Allocation)
		r.Allocation = nil
	}
	if r.Buffer.VKBuffer != vk.NullBuffer {
		r.Buffer.Destroy()
		r.Buffer.VKBuffer = vk.NullBuffer
	}
	return nil
}

// ImageResource is a 2D image carved out of a MemoryPool. Layout tracks
// the image's current Vulkan layout across recorded transitions.
type ImageResource struct {
	Image
	Pool       *MemoryPool
	Allocation *Allocation
	Layout     vk.ImageLayout

	view  *ImageView
	state resourceState
}

// ByteSize is the tightly packed, row-major size of the image contents:
// width * height * texel size. This is the layout guaranteed for
// CopyImageToBuffer readbacks.
func (r *ImageResource) ByteSize() uint64 {
	return uint64(r.Extent.Width) * uint64(r.Extent.Height) * uint64(texelSize(r.VKFormat))
}

// View lazily creates the image view used for storage-image bindings.
func (r *ImageResource) View() (*ImageView, error) {
	if r.view != nil {
		return r.view, nil
	}
	v, err := r.Image.CreateImageView()
	if err != nil {
		return nil, err
	}
	r.view = v
	return v, nil
}

// Free releases the image, its view, and its pool allocation. Fails with
// ErrResourceInFlight while a submitted sequence still references it.
func (r *ImageResource) Free() error {
	if r.state.retained() {
		return fmt.Errorf("%w: image %dx%d", ErrResourceInFlight, r.Extent.Width, r.Extent.Height)
	}
	if r.view != nil {
		r.view.Destroy()
		r.view = nil
	}
	if r.Allocation != nil {
		r.Pool.alloc.Free(r.Allocation)
		r.Allocation = nil
	}
	if r.Image.VKImage != vk.NullImage {
		r.Image.Destroy()
		r.Image.VKImage = vk.NullImage
	}
	return nil
}

// texelSize returns the byte size of one texel for the formats this
// package allocates.
func texelSize(f vk.Format) int {
	switch f {
	case vk.FormatR8g8b8a8Unorm, vk.FormatR8g8b8a8Uint, vk.FormatB8g8r8a8Unorm:
		return 4
	case vk.FormatR32g32b32a32Sfloat:
		return 16
	case vk.FormatR32Sfloat, vk.FormatR32Uint:
		return 4
	}
	return 4
}
