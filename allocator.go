package vkm

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Allocation is a sub-range of a MemoryPool's device memory.
type Allocation struct {
	Offset uint64
	Size   uint64
}

func (a *Allocation) String() string {
	return fmt.Sprintf("[%d %d]", a.Offset, a.Size)
}

func alignUp(a uint64, align uint64) uint64 {
	m := a % align
	if m == 0 {
		return a
	}
	a = (a - m) + align
	return a
}

// poolAllocator hands out first-fit sub-allocations from a fixed-size
// range. Allocations are kept sorted by offset.
type poolAllocator struct {
	size   uint64
	allocs []*Allocation
}

func (p *poolAllocator) Free(fa *Allocation) {
	fi := -1
	for i, a := range p.allocs {
		if a == fa {
			fi = i
		}
	}
	if fi != -1 {
		p.allocs = append(p.allocs[:fi], p.allocs[fi+1:]...)
	}
}

func (p *poolAllocator) InUse() int {
	return len(p.allocs)
}

func (p *poolAllocator) Allocate(size uint64, align uint64) *Allocation {
	if align == 0 {
		align = 1
	}
	if size == 0 || size > p.size {
		return nil
	}

	if len(p.allocs) == 0 {
		na := &Allocation{Offset: 0, Size: size}
		p.allocs = append(p.allocs, na)
		return na
	}

	// Head gap.
	if p.allocs[0].Offset >= size {
		na := &Allocation{Offset: 0, Size: size}
		p.allocs = append([]*Allocation{na}, p.allocs...)
		return na
	}

	// Gaps between neighbors.
	for i := 0; i+1 < len(p.allocs); i++ {
		c := p.allocs[i]
		n := p.allocs[i+1]

		l := alignUp(c.Offset+c.Size, align)
		if l <= n.Offset && n.Offset-l >= size {
			na := &Allocation{Offset: l, Size: size}
			p.allocs = append(p.allocs[:i+1], append([]*Allocation{na}, p.allocs[i+1:]...)...)
			return na
		}
	}

	// Tail gap.
	last := p.allocs[len(p.allocs)-1]
	nl := alignUp(last.Offset+last.Size, align)
	if nl <= p.size && p.size-nl >= size {
		na := &Allocation{Offset: nl, Size: size}
		p.allocs = append(p.allocs, na)
		return na
	}

	return nil
}

func (p *poolAllocator) String() string {
	return fmt.Sprintf("%v", p.allocs)
}

// MemoryPool owns one block of device memory and sub-allocates resources
// out of it. Vulkan limits the number of memory allocations an
// application may make, so resources are carved from pools instead of
// allocated individually. Host-visible pools stay persistently mapped.
type MemoryPool struct {
	Device          *Device
	Name            string
	Size            uint64
	HostVisible     bool
	MemoryTypeIndex uint32
	Memory          *DeviceMemory
	alloc           *poolAllocator
}

// CreateMemoryPool allocates a pool of the given size from a memory type
// satisfying typeBits (from a resource's memory requirements) and the
// visibility the caller asked for.
func (d *Device) CreateMemoryPool(name string, size uint64, hostVisible bool, typeBits uint32) (*MemoryPool, error) {
	var props vk.MemoryPropertyFlagBits
	if hostVisible {
		props = vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit
	} else {
		props = vk.MemoryPropertyDeviceLocalBit
	}

	index, err := d.PhysicalDevice.FindMemoryType(typeBits, props)
	if err != nil {
		return nil, err
	}

	memory, err := d.Allocate(int(size), typeBits, props)
	if err != nil {
		return nil, err
	}

	p := &MemoryPool{
		Device:          d,
		Name:            name,
		Size:            size,
		HostVisible:     hostVisible,
		MemoryTypeIndex: index,
		Memory:          memory,
		alloc:           &poolAllocator{size: size},
	}

	if hostVisible {
		if _, err := memory.Map(); err != nil {
			memory.Destroy()
			return nil, fmt.Errorf("%w: mapping pool %q: %v", ErrAllocation, name, err)
		}
	}

	Logger().Debug("memory pool created", "pool", name, "bytes", size, "hostVisible", hostVisible)

	return p, nil
}

// compatible reports whether resources with the given memory type bits
// can live in this pool.
func (p *MemoryPool) compatible(typeBits uint32) bool {
	return typeBits&(1<<p.MemoryTypeIndex) != 0
}

func (p *MemoryPool) Destroy() {
	if p.Memory != nil {
		if p.Memory.IsMapped() {
			p.Memory.Unmap()
		}
		p.Memory.Destroy()
		p.Memory = nil
	}
	if p.alloc != nil && p.alloc.InUse() > 0 {
		Logger().Warn("memory pool destroyed with live allocations", "pool", p.Name, "count", p.alloc.InUse())
	}
	p.alloc = nil
}

// Allocator creates pool-backed buffers and images. Pools are created on
// demand and grown by adding pools, never by moving live resources.
type Allocator struct {
	Device *Device
	pools  []*MemoryPool
}

// minPoolSize keeps pool counts low for the many-small-buffers case
// while single oversized resources still get a pool of their own size.
const minPoolSize = 16 << 20

func (d *Device) NewAllocator() *Allocator {
	return &Allocator{Device: d}
}

// AllocateBuffer creates a buffer of elementCount*elementSize bytes with
// the given usage. Host-visible buffers are directly mappable for
// read/write from host code; otherwise the buffer is device-local only.
// Fails with ErrAllocation when no pool can back the request.
func (a *Allocator) AllocateBuffer(elementCount, elementSize int, usage vk.BufferUsageFlagBits, hostVisible bool) (*BufferResource, error) {
	size := uint64(elementCount) * uint64(elementSize)
	if size == 0 {
		return nil, fmt.Errorf("%w: zero-size buffer", ErrAllocation)
	}

	buffer, err := a.Device.CreateBuffer(size, vk.BufferUsageFlags(usage))
	if err != nil {
		return nil, fmt.Errorf("%w: creating buffer: %v", ErrAllocation, err)
	}

	mr := buffer.VKMemoryRequirements()
	mr.Deref()

	pool, allocation, err := a.place(uint64(mr.Size), uint64(mr.Alignment), mr.MemoryTypeBits, hostVisible)
	if err != nil {
		buffer.Destroy()
		return nil, err
	}

	if err := buffer.Bind(pool.Memory, allocation.Offset); err != nil {
		pool.alloc.Free(allocation)
		buffer.Destroy()
		return nil, fmt.Errorf("%w: binding buffer: %v", ErrAllocation, err)
	}

	res := &BufferResource{}
	res.Buffer = *buffer
	res.Pool = pool
	res.Allocation = allocation
	res.ElementCount = elementCount
	res.ElementSize = elementSize

	return res, nil
}

// AllocateImage creates a 2D single-layer image. Images are always
// device-local with optimal tiling; host access goes through
// CopyImageToBuffer into a host-visible buffer.
func (a *Allocator) AllocateImage(width, height uint32, format vk.Format, usage vk.ImageUsageFlagBits) (*ImageResource, error) {
	img, err := a.Device.CreateImage(
		vk.Extent2D{Width: width, Height: height},
		format, vk.ImageTilingOptimal, vk.ImageUsageFlags(usage))
	if err != nil {
		return nil, fmt.Errorf("%w: creating image: %v", ErrAllocation, err)
	}

	mr := img.VKMemoryRequirements()
	mr.Deref()

	pool, allocation, err := a.place(uint64(mr.Size), uint64(mr.Alignment), mr.MemoryTypeBits, false)
	if err != nil {
		img.Destroy()
		return nil, err
	}

	if err := img.Bind(pool.Memory, allocation.Offset); err != nil {
		pool.alloc.Free(allocation)
		img.Destroy()
		return nil, fmt.Errorf("%w: binding image: %v", ErrAllocation, err)
	}

	res := &ImageResource{}
	res.Image = *img
	res.Pool = pool
	res.Allocation = allocation
	res.Layout = vk.ImageLayoutUndefined

	return res, nil
}

// place finds or creates a pool for the request and sub-allocates from it.
func (a *Allocator) place(size, align uint64, typeBits uint32, hostVisible bool) (*MemoryPool, *Allocation, error) {
	for _, p := range a.pools {
		if p.HostVisible != hostVisible || !p.compatible(typeBits) {
			continue
		}
		if alloc := p.alloc.Allocate(size, align); alloc != nil {
			return p, alloc, nil
		}
	}

	poolSize := uint64(minPoolSize)
	if size > poolSize {
		poolSize = alignUp(size, 1<<20)
	}

	name := fmt.Sprintf("pool-%d", len(a.pools))
	p, err := a.Device.CreateMemoryPool(name, poolSize, hostVisible, typeBits)
	if err != nil {
		return nil, nil, err
	}
	a.pools = append(a.pools, p)

	alloc := p.alloc.Allocate(size, align)
	if alloc == nil {
		return nil, nil, fmt.Errorf("%w: %d bytes exceed fresh pool of %d", ErrAllocation, size, poolSize)
	}
	return p, alloc, nil
}

// Destroy releases every pool. Resources allocated from this Allocator
// must have been freed, or must never be touched again.
func (a *Allocator) Destroy() {
	for _, p := range a.pools {
		p.Destroy()
	}
	a.pools = nil
}
