package vkm

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"unsafe"
)

// hostBuffer fakes a buffer carved from a mapped host-visible pool,
// backed by ordinary process memory.
func hostBuffer(t *testing.T, elementCount int) (*BufferResource, []byte) {
	t.Helper()

	size := elementCount * 4
	backing := make([]byte, size)

	pool := &MemoryPool{
		Name:        "test",
		Size:        uint64(size),
		HostVisible: true,
		Memory:      &DeviceMemory{Size: uint64(size), Ptr: unsafe.Pointer(&backing[0])},
		alloc:       &poolAllocator{size: uint64(size)},
	}

	buf := &BufferResource{
		Pool:         pool,
		Allocation:   &Allocation{Offset: 0, Size: uint64(size)},
		ElementCount: elementCount,
		ElementSize:  4,
	}
	buf.Buffer.Size = uint64(size)
	return buf, backing
}

func TestSubmitOncePerSequence(t *testing.T) {
	r := (&Device{}).NewRecorder()
	seq, err := r.Seal()
	if err != nil {
		t.Fatal(err)
	}

	seq.submitted = true

	_, err = (&Queue{}).Submit(seq)
	if !errors.Is(err, ErrSequenceAlreadySubmitted) {
		t.Errorf("expected ErrSequenceAlreadySubmitted, got %v", err)
	}
}

func TestReadGatedOnPendingWrite(t *testing.T) {
	buf, _ := hostBuffer(t, 16)

	token := &CompletionToken{}
	buf.state.markWrite(token)

	_, err := buf.Read()
	if !errors.Is(err, ErrResourceNotMapped) {
		t.Errorf("pending write: expected ErrResourceNotMapped, got %v", err)
	}

	token.signaled.Store(true)

	data, err := buf.Read()
	if err != nil {
		t.Fatalf("read after signal failed: %v", err)
	}
	if len(data) != 64 {
		t.Errorf("expected 64 bytes, got %d", len(data))
	}
}

func TestReadDeviceLocalFails(t *testing.T) {
	buf := &BufferResource{Pool: &MemoryPool{HostVisible: false}}
	buf.Buffer.Size = 16

	_, err := buf.Read()
	if !errors.Is(err, ErrResourceNotMapped) {
		t.Errorf("expected ErrResourceNotMapped, got %v", err)
	}
}

func TestFillAndReadUint32(t *testing.T) {
	buf, _ := hostBuffer(t, 16)

	if err := buf.FillUint32(func(i int) uint32 { return uint32(i * 3) }); err != nil {
		t.Fatal(err)
	}

	words, err := buf.ReadUint32()
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 16 {
		t.Fatalf("expected 16 words, got %d", len(words))
	}
	for i, w := range words {
		if w != uint32(i*3) {
			t.Errorf("word %d: expected %d, got %d", i, i*3, w)
		}
	}
}

func TestFreeBlockedWhileInFlight(t *testing.T) {
	buf, _ := hostBuffer(t, 4)

	buf.state.retain()

	err := buf.Free()
	if !errors.Is(err, ErrResourceInFlight) {
		t.Errorf("expected ErrResourceInFlight, got %v", err)
	}

	buf.state.release()

	if err := buf.Free(); err != nil {
		t.Errorf("free after release failed: %v", err)
	}
	if buf.Allocation != nil {
		t.Error("allocation not returned to pool")
	}
}

func TestSignalReleasesReferences(t *testing.T) {
	buf, _ := hostBuffer(t, 4)

	seq := &CommandSequence{refs: []*resourceState{&buf.state}, writes: []*resourceState{&buf.state}}

	token := &CompletionToken{queue: &Queue{}, seq: seq}
	buf.state.retain()
	buf.state.markWrite(token)

	if !buf.state.retained() {
		t.Fatal("buffer should be retained after submit")
	}
	if _, err := buf.Read(); !errors.Is(err, ErrResourceNotMapped) {
		t.Fatalf("expected gated read, got %v", err)
	}

	token.signal()

	if !token.Signaled() {
		t.Error("token did not signal")
	}
	if buf.state.retained() {
		t.Error("buffer still retained after signal")
	}
	if _, err := buf.Read(); err != nil {
		t.Errorf("read after signal failed: %v", err)
	}

	// Second signal must be a no-op, not a double release.
	token.signal()
	if n := atomic.LoadInt32(&buf.state.inFlight); n != 0 {
		t.Errorf("double signal corrupted the refcount: %d", n)
	}
}

func TestUnmarkWritesRestoresReadback(t *testing.T) {
	buf, _ := hostBuffer(t, 4)

	// An earlier, completed submission already wrote the buffer.
	old := &CompletionToken{}
	old.signaled.Store(true)
	buf.state.markWrite(old)

	seq := &CommandSequence{refs: []*resourceState{&buf.state}, writes: []*resourceState{&buf.state}}
	token := &CompletionToken{queue: &Queue{}, seq: seq}

	prev := seq.markWrites(token)
	if _, err := buf.Read(); !errors.Is(err, ErrResourceNotMapped) {
		t.Fatalf("expected gated read while marked, got %v", err)
	}

	// A submission that never reached the device rolls its marking back;
	// the buffer must not stay gated on a token that cannot signal.
	seq.unmarkWrites(prev)

	if _, err := buf.Read(); err != nil {
		t.Errorf("read after rollback failed: %v", err)
	}
	if buf.state.lastWrite.Load() != old {
		t.Error("rollback did not restore the previous write token")
	}
}

func TestSignaledPendingToken(t *testing.T) {
	token := &CompletionToken{}
	if token.Signaled() {
		t.Error("fresh token should be pending")
	}

	token.signaled.Store(true)
	if !token.Signaled() {
		t.Error("token should stay signaled")
	}
}

func TestReadFloat32(t *testing.T) {
	buf, _ := hostBuffer(t, 4)

	want := []float32{0, 1.5, -2.25, 12}
	if err := buf.FillUint32(func(i int) uint32 { return math.Float32bits(want[i]) }); err != nil {
		t.Fatal(err)
	}

	got, err := buf.ReadFloat32()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("value %d: got %g, expected %g", i, got[i], want[i])
		}
	}
}
