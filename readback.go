package vkm

import (
	"fmt"
	"math"
)

// Read returns a read-only view of a host-visible buffer's contents.
// Valid only once the buffer's last writing sequence has signaled; until
// then, and for device-local buffers always, it fails with
// ErrResourceNotMapped. The view does not stay valid once the buffer is
// reused by a later sequence.
func (r *BufferResource) Read() ([]byte, error) {
	if !r.HostVisible() {
		return nil, fmt.Errorf("%w: buffer is device local", ErrResourceNotMapped)
	}
	if r.state.writePending() {
		return nil, fmt.Errorf("%w: last writing sequence has not signaled", ErrResourceNotMapped)
	}
	data := r.bytes()
	if data == nil {
		return nil, fmt.Errorf("%w: backing pool is not mapped", ErrResourceNotMapped)
	}
	return data, nil
}

// ReadUint32 returns the buffer contents viewed as little-endian uint32
// words, under the same gating as Read.
func (r *BufferResource) ReadUint32() ([]uint32, error) {
	data, err := r.Read()
	if err != nil {
		return nil, err
	}
	return sliceUint32(data), nil
}

// ReadFloat32 returns the buffer contents viewed as float32 values,
// under the same gating as Read.
func (r *BufferResource) ReadFloat32() ([]float32, error) {
	words, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(words))
	for i, w := range words {
		out[i] = math.Float32frombits(w)
	}
	return out, nil
}
