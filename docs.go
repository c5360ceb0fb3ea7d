/*
Package vkm is a small headless-compute core for Vulkan. It covers the one
pattern its example programs all share: select a physical device, create a
logical device and queue, allocate GPU-resident and host-visible resources,
record a sequence of commands (buffer copies, image clears, compute
dispatches, image readbacks), submit it once, wait for the device to finish,
and read results back from host-visible memory.

The package is built on github.com/vulkan-go/vulkan and exposes the native
handles on every object (fields prefixed with VK) so applications are not
limited by what the wrappers provide.

A typical run looks like:

 1. Initialize Vulkan and create an Instance.
 2. Select a physical device with a predicate and pick a queue by
    capability, producing a logical Device and Queue.
 3. Create an Allocator and carve buffers and images out of its pools.
 4. For kernel dispatch, load a SPIR-V module and build a ComputePipeline
    from a BindingLayout, then bind concrete resources with NewBindingSet.
 5. Record operations with a Recorder and Seal it into a CommandSequence.
 6. Submit the sequence on the Queue; Wait on the returned CompletionToken.
 7. Read host-visible results with Read / ReadUint32 / ReadFloat32.

Sequences move through exactly one lifecycle: Recording, Sealed,
Submitted (pending), Submitted (signaled). A sealed sequence may be
submitted once; resources it references stay alive until its token
signals, and host reads of written resources are refused until then.

Cancellation is not supported. Once submitted a sequence runs to
completion, or the device-lost error path surfaces ErrDeviceLost, which is
unrecoverable for that device handle.
*/
package vkm
