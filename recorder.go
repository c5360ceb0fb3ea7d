package vkm

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

type opKind int

const (
	opCopy opKind = iota
	opClearImage
	opDispatch
	opCopyImageToBuffer
)

// op is one recorded operation. All operand validation happens at append
// time; encoding into a Vulkan command buffer happens at submit.
type op struct {
	kind opKind

	srcBuf *BufferResource
	dstBuf *BufferResource
	img    *ImageResource

	color RGBA

	pipeline *ComputePipeline
	bindings *BindingSet
	groups   [3]uint32
	push     []byte
}

// Recorder builds an ordered, append-only list of GPU operations.
// Seal produces an immutable CommandSequence; any append after Seal
// fails with ErrSequenceSealed.
type Recorder struct {
	device *Device
	ops    []op
	sealed bool
}

func (d *Device) NewRecorder() *Recorder {
	return &Recorder{device: d}
}

func (r *Recorder) append(o op) error {
	if r.sealed {
		return ErrSequenceSealed
	}
	r.ops = append(r.ops, o)
	return nil
}

// Copy records a byte-for-byte copy between two buffers of equal size.
// Fails with ErrSizeMismatch otherwise.
func (r *Recorder) Copy(src, dst *BufferResource) error {
	if src.Buffer.Size != dst.Buffer.Size {
		return fmt.Errorf("%w: copy src %d bytes, dst %d bytes", ErrSizeMismatch, src.Buffer.Size, dst.Buffer.Size)
	}
	return r.append(op{kind: opCopy, srcBuf: src, dstBuf: dst})
}

// ClearImage records a fill of every pixel with a constant color.
func (r *Recorder) ClearImage(img *ImageResource, color RGBA) error {
	return r.append(op{kind: opClearImage, img: img, color: color})
}

// Dispatch records an invocation of the compute kernel over the given
// workgroup grid. The caller must choose the grid so that
// groups * local size covers the resource extent; mismatches silently
// under- or over-cover the resource and are not validated here. push
// must match the pipeline's declared push constant size.
func (r *Recorder) Dispatch(pipeline *ComputePipeline, bindings *BindingSet, groups [3]uint32, push []byte) error {
	if bindings.Pipeline != pipeline {
		return fmt.Errorf("%w: binding set built for a different pipeline", ErrPipelineCreation)
	}
	if len(push) != pipeline.PushConstantBytes {
		return fmt.Errorf("%w: push constants %d bytes, pipeline declares %d", ErrSizeMismatch, len(push), pipeline.PushConstantBytes)
	}
	pushCopy := append([]byte(nil), push...)
	return r.append(op{kind: opDispatch, pipeline: pipeline, bindings: bindings, groups: groups, push: pushCopy})
}

// CopyImageToBuffer records a linearization of image contents into a
// buffer: row-major, tightly packed, 4 bytes per RGBA8 pixel. Fails with
// ErrSizeMismatch when the buffer cannot hold the image.
func (r *Recorder) CopyImageToBuffer(img *ImageResource, buf *BufferResource) error {
	if buf.Buffer.Size < img.ByteSize() {
		return fmt.Errorf("%w: image %d bytes into buffer of %d", ErrSizeMismatch, img.ByteSize(), buf.Buffer.Size)
	}
	return r.append(op{kind: opCopyImageToBuffer, img: img, dstBuf: buf})
}

// Seal freezes the recorded operations into an immutable
// CommandSequence. The recorder is spent afterwards; a second Seal
// fails with ErrSequenceSealed.
func (r *Recorder) Seal() (*CommandSequence, error) {
	if r.sealed {
		return nil, ErrSequenceSealed
	}
	r.sealed = true

	seq := &CommandSequence{device: r.device, ops: r.ops}
	r.ops = nil

	seq.collectStates()

	return seq, nil
}

// CommandSequence is a sealed, ordered list of operations. Exactly one
// submission is permitted per sequence.
type CommandSequence struct {
	device *Device
	ops    []op

	refs   []*resourceState
	writes []*resourceState

	submitted bool
}

// collectStates gathers the deduplicated set of referenced resource
// states, and the subset the sequence writes, for retain/release and
// readback gating.
func (s *CommandSequence) collectStates() {
	seen := make(map[*resourceState]bool)
	written := make(map[*resourceState]bool)

	ref := func(st *resourceState) {
		if !seen[st] {
			seen[st] = true
			s.refs = append(s.refs, st)
		}
	}
	write := func(st *resourceState) {
		ref(st)
		if !written[st] {
			written[st] = true
			s.writes = append(s.writes, st)
		}
	}

	for _, o := range s.ops {
		switch o.kind {
		case opCopy:
			ref(&o.srcBuf.state)
			write(&o.dstBuf.state)
		case opClearImage:
			write(&o.img.state)
		case opDispatch:
			for _, st := range o.bindings.allStates() {
				ref(st)
			}
			for _, st := range o.bindings.writtenStates() {
				write(st)
			}
		case opCopyImageToBuffer:
			ref(&o.img.state)
			write(&o.dstBuf.state)
		}
	}
}

// markWrites points every written resource's last-write tracking at the
// token, gating host reads on it, and returns the previous tokens in
// writes order so a failed submission can roll the marking back.
func (s *CommandSequence) markWrites(t *CompletionToken) []*CompletionToken {
	prev := make([]*CompletionToken, len(s.writes))
	for i, st := range s.writes {
		prev[i] = st.lastWrite.Load()
		st.markWrite(t)
	}
	return prev
}

// unmarkWrites restores the last-write tokens saved by markWrites.
func (s *CommandSequence) unmarkWrites(prev []*CompletionToken) {
	for i, st := range s.writes {
		st.lastWrite.Store(prev[i])
	}
}

// encode plays the operations into a command buffer, inserting the image
// layout transitions and host visibility barriers each op requires.
func (s *CommandSequence) encode(cb *CommandBuffer) {
	for _, o := range s.ops {
		switch o.kind {
		case opCopy:
			cb.CmdCopyBuffer(o.srcBuf, o.dstBuf)
			if o.dstBuf.HostVisible() {
				cb.CmdBarrierTransferToHost(o.dstBuf)
			}

		case opClearImage:
			cb.CmdTransitionImageLayout(o.img, vk.ImageLayoutTransferDstOptimal)
			cb.CmdClearColorImage(o.img, o.color)

		case opDispatch:
			for _, img := range o.bindings.boundImages() {
				cb.CmdTransitionImageLayout(img, vk.ImageLayoutGeneral)
			}
			cb.CmdBindComputePipeline(o.pipeline)
			cb.CmdBindBindingSet(o.bindings)
			cb.CmdPushConstants(o.pipeline, o.push)
			cb.CmdDispatch(o.groups)
			for slot, res := range o.bindings.resources {
				buf, ok := res.(*BufferResource)
				if ok && o.pipeline.Layout[slot].Access.writes() && buf.HostVisible() {
					cb.CmdBarrierComputeToHost(buf)
				}
			}

		case opCopyImageToBuffer:
			cb.CmdTransitionImageLayout(o.img, vk.ImageLayoutTransferSrcOptimal)
			cb.CmdCopyImageToBuffer(o.img, o.dstBuf)
			if o.dstBuf.HostVisible() {
				cb.CmdBarrierTransferToHost(o.dstBuf)
			}
		}
	}
}

// Len reports the number of recorded operations.
func (s *CommandSequence) Len() int {
	return len(s.ops)
}
