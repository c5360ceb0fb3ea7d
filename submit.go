package vkm

import (
	"fmt"
	"sync/atomic"
	"time"
)

// CompletionToken tracks one submitted sequence. It transitions from
// pending to signaled exactly once, when every command in the sequence
// has retired on the device, and is never reused.
type CompletionToken struct {
	queue *Queue
	fence *Fence
	cb    *CommandBuffer
	seq   *CommandSequence

	signaled atomic.Bool
}

// Submit encodes the sealed sequence into a one-time command buffer and
// enqueues it for execution. It returns immediately with a pending
// token; GPU execution proceeds asynchronously. Exactly one Submit per
// sequence: a second call fails with ErrSequenceAlreadySubmitted.
//
// Resources referenced by the sequence are retained until the token
// signals, and resources the sequence writes will refuse host reads
// until then.
func (q *Queue) Submit(seq *CommandSequence) (*CompletionToken, error) {
	if seq.submitted {
		return nil, ErrSequenceAlreadySubmitted
	}
	seq.submitted = true

	pool, err := q.commandPool()
	if err != nil {
		return nil, fmt.Errorf("submit: command pool: %w", err)
	}

	cb, err := pool.AllocateBuffer()
	if err != nil {
		return nil, fmt.Errorf("submit: command buffer: %w", err)
	}

	if err := cb.BeginOneTime(); err != nil {
		pool.FreeBuffer(cb)
		return nil, fmt.Errorf("submit: begin: %w", err)
	}

	seq.encode(cb)

	if err := cb.End(); err != nil {
		pool.FreeBuffer(cb)
		return nil, fmt.Errorf("submit: end: %w", err)
	}

	fence, err := q.Device.CreateFence()
	if err != nil {
		pool.FreeBuffer(cb)
		return nil, fmt.Errorf("submit: fence: %w", err)
	}

	token := &CompletionToken{queue: q, fence: fence, cb: cb, seq: seq}

	for _, st := range seq.refs {
		st.retain()
	}
	prevWrites := seq.markWrites(token)

	if err := q.submitWithFence(fence, cb); err != nil {
		for _, st := range seq.refs {
			st.release()
		}
		// The token can never signal, so written resources must not be
		// left gated on it.
		seq.unmarkWrites(prevWrites)
		fence.Destroy()
		pool.FreeBuffer(cb)
		return nil, err
	}

	Logger().Debug("sequence submitted", "ops", seq.Len(), "resources", len(seq.refs))

	return token, nil
}

// Signaled polls whether the sequence has completed on the device,
// without blocking. On the first poll that observes completion the token
// flips to its terminal state and the submission's resources are
// released, exactly as a successful Wait would.
func (t *CompletionToken) Signaled() bool {
	if t.signaled.Load() {
		return true
	}
	if t.fence != nil && t.fence.Signaled() {
		t.signal()
		return true
	}
	return false
}

// Wait blocks the calling thread until the device signals completion of
// the submitted sequence. A timeout of zero or less blocks indefinitely;
// expiry yields ErrTimeout and leaves the token pending, so Wait may be
// called again. Once signaled, resources referenced by the sequence are
// released and its written resources become safely host-readable.
func (t *CompletionToken) Wait(timeout time.Duration) error {
	if t.signaled.Load() {
		return nil
	}

	if err := t.fence.Wait(timeout); err != nil {
		return fmt.Errorf("waiting for sequence: %w", err)
	}

	t.signal()
	return nil
}

// signal flips the token to its terminal state and releases everything
// the submission held.
func (t *CompletionToken) signal() {
	if t.signaled.Swap(true) {
		return
	}

	for _, st := range t.seq.refs {
		st.release()
	}

	if t.fence != nil {
		t.fence.Destroy()
		t.fence = nil
	}
	if t.cb != nil && t.queue.pool != nil {
		t.queue.pool.FreeBuffer(t.cb)
		t.cb = nil
	}

	Logger().Debug("sequence signaled", "ops", t.seq.Len())
}
