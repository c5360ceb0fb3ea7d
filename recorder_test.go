package vkm

import (
	"errors"
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func testBuffer(size uint64) *BufferResource {
	b := &BufferResource{}
	b.Buffer.Size = size
	return b
}

func testImage(w, h uint32) *ImageResource {
	img := &ImageResource{}
	img.Image.Extent = vk.Extent2D{Width: w, Height: h}
	img.Image.VKFormat = vk.FormatR8g8b8a8Unorm
	img.Layout = vk.ImageLayoutUndefined
	return img
}

func TestRecorderCopySizeMismatch(t *testing.T) {
	r := (&Device{}).NewRecorder()

	err := r.Copy(testBuffer(64), testBuffer(32))
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("expected ErrSizeMismatch, got %v", err)
	}

	if err := r.Copy(testBuffer(64), testBuffer(64)); err != nil {
		t.Errorf("equal-size copy rejected: %v", err)
	}
}

func TestRecorderSealFreezes(t *testing.T) {
	r := (&Device{}).NewRecorder()

	if err := r.Copy(testBuffer(16), testBuffer(16)); err != nil {
		t.Fatal(err)
	}
	if err := r.ClearImage(testImage(4, 4), RGBA{B: 1, A: 1}); err != nil {
		t.Fatal(err)
	}

	seq, err := r.Seal()
	if err != nil {
		t.Fatal(err)
	}
	if seq.Len() != 2 {
		t.Errorf("expected 2 ops, got %d", seq.Len())
	}

	err = r.Copy(testBuffer(16), testBuffer(16))
	if !errors.Is(err, ErrSequenceSealed) {
		t.Errorf("append after seal: expected ErrSequenceSealed, got %v", err)
	}

	err = r.ClearImage(testImage(4, 4), RGBA{})
	if !errors.Is(err, ErrSequenceSealed) {
		t.Errorf("clear after seal: expected ErrSequenceSealed, got %v", err)
	}

	_, err = r.Seal()
	if !errors.Is(err, ErrSequenceSealed) {
		t.Errorf("second seal: expected ErrSequenceSealed, got %v", err)
	}
}

func TestRecorderCopyImageToBuffer(t *testing.T) {
	r := (&Device{}).NewRecorder()
	img := testImage(4, 4) // 64 bytes at 4 bytes per texel

	err := r.CopyImageToBuffer(img, testBuffer(32))
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("undersized buffer: expected ErrSizeMismatch, got %v", err)
	}

	if err := r.CopyImageToBuffer(img, testBuffer(64)); err != nil {
		t.Errorf("exact-size buffer rejected: %v", err)
	}
	if err := r.CopyImageToBuffer(img, testBuffer(128)); err != nil {
		t.Errorf("oversized buffer rejected: %v", err)
	}
}

func TestRecorderDispatchValidation(t *testing.T) {
	pipeline := &ComputePipeline{
		Layout:            BindingLayout{{Kind: BindingStorageBuffer, Access: AccessReadWrite}},
		PushConstantBytes: 8,
	}
	other := &ComputePipeline{Layout: pipeline.Layout}

	bindings := &BindingSet{
		Pipeline:  pipeline,
		resources: []Bindable{testBuffer(16)},
	}

	r := (&Device{}).NewRecorder()

	err := r.Dispatch(other, bindings, [3]uint32{1, 1, 1}, make([]byte, 8))
	if !errors.Is(err, ErrPipelineCreation) {
		t.Errorf("foreign binding set: expected ErrPipelineCreation, got %v", err)
	}

	err = r.Dispatch(pipeline, bindings, [3]uint32{1, 1, 1}, make([]byte, 4))
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("short push constants: expected ErrSizeMismatch, got %v", err)
	}

	err = r.Dispatch(pipeline, bindings, [3]uint32{1, 1, 1}, make([]byte, 8))
	if err != nil {
		t.Errorf("valid dispatch rejected: %v", err)
	}
}

func TestRecorderDispatchCopiesPushConstants(t *testing.T) {
	pipeline := &ComputePipeline{
		Layout:            BindingLayout{{Kind: BindingStorageBuffer, Access: AccessWrite}},
		PushConstantBytes: 4,
	}
	bindings := &BindingSet{Pipeline: pipeline, resources: []Bindable{testBuffer(16)}}

	push := []byte{1, 2, 3, 4}
	r := (&Device{}).NewRecorder()
	if err := r.Dispatch(pipeline, bindings, [3]uint32{1, 1, 1}, push); err != nil {
		t.Fatal(err)
	}

	// Caller mutation after recording must not leak into the sequence.
	push[0] = 99
	if r.ops[0].push[0] != 1 {
		t.Error("recorded push constants alias the caller's slice")
	}
}

func TestSequenceCollectStates(t *testing.T) {
	src := testBuffer(16)
	dst := testBuffer(16)

	r := (&Device{}).NewRecorder()
	if err := r.Copy(src, dst); err != nil {
		t.Fatal(err)
	}
	// Recording the same pair twice must not duplicate state entries.
	if err := r.Copy(src, dst); err != nil {
		t.Fatal(err)
	}

	seq, err := r.Seal()
	if err != nil {
		t.Fatal(err)
	}

	if len(seq.refs) != 2 {
		t.Errorf("expected 2 referenced states, got %d", len(seq.refs))
	}
	if len(seq.writes) != 1 {
		t.Errorf("expected 1 written state, got %d", len(seq.writes))
	}
	if len(seq.writes) == 1 && seq.writes[0] != &dst.state {
		t.Error("written state is not the destination buffer")
	}
}

func TestSequenceCollectStatesDispatch(t *testing.T) {
	pipeline := &ComputePipeline{
		Layout: BindingLayout{
			{Kind: BindingStorageBuffer, Access: AccessRead},
			{Kind: BindingStorageBuffer, Access: AccessWrite},
		},
	}
	input := testBuffer(16)
	output := testBuffer(16)
	bindings := &BindingSet{Pipeline: pipeline, resources: []Bindable{input, output}}

	r := (&Device{}).NewRecorder()
	if err := r.Dispatch(pipeline, bindings, [3]uint32{1, 1, 1}, nil); err != nil {
		t.Fatal(err)
	}

	seq, err := r.Seal()
	if err != nil {
		t.Fatal(err)
	}

	if len(seq.refs) != 2 {
		t.Errorf("expected 2 referenced states, got %d", len(seq.refs))
	}
	if len(seq.writes) != 1 || seq.writes[0] != &output.state {
		t.Error("only the write-access binding should be in the written set")
	}
}
