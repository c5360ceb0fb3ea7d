package vkm

import "errors"

// Sentinel errors for the failure conditions callers are expected to
// distinguish. All errors returned from this package wrap one of these
// where a sentinel applies, so errors.Is works across wrapping.
var (
	// ErrNoMatchingDevice means device enumeration finished without any
	// device passing the selection predicate.
	ErrNoMatchingDevice = errors.New("vkm: no matching device")

	// ErrNoQueueFamily means the selected device has no queue family
	// advertising the requested capability.
	ErrNoQueueFamily = errors.New("vkm: no queue family with capability")

	// ErrAllocation covers buffer, image, and pool memory allocation
	// failures, including memory type mismatches.
	ErrAllocation = errors.New("vkm: allocation failed")

	// ErrShaderLoad means a kernel artifact could not be read or is not
	// a valid SPIR-V module.
	ErrShaderLoad = errors.New("vkm: shader load failed")

	// ErrPipelineCreation covers pipeline construction failures and
	// binding layout mismatches.
	ErrPipelineCreation = errors.New("vkm: pipeline creation failed")

	// ErrSizeMismatch means an operation's operands disagree on size:
	// copies between unequal buffers, undersized readback targets, or
	// push constants not matching the pipeline's declaration.
	ErrSizeMismatch = errors.New("vkm: size mismatch")

	// ErrSequenceSealed means a recorder was appended to, or sealed
	// again, after Seal.
	ErrSequenceSealed = errors.New("vkm: sequence sealed")

	// ErrSequenceAlreadySubmitted means a sealed sequence was submitted
	// a second time. Sequences are single-use.
	ErrSequenceAlreadySubmitted = errors.New("vkm: sequence already submitted")

	// ErrTimeout means a wait expired before the device signaled. The
	// wait may be retried.
	ErrTimeout = errors.New("vkm: timeout")

	// ErrResourceNotMapped means a host read was attempted on a
	// device-local resource, or before the last writing sequence
	// signaled.
	ErrResourceNotMapped = errors.New("vkm: resource not mapped")

	// ErrResourceInFlight means a free was attempted while a submitted
	// sequence still references the resource.
	ErrResourceInFlight = errors.New("vkm: resource in flight")

	// ErrDeviceLost surfaces VK_ERROR_DEVICE_LOST. The device and
	// everything created from it must be torn down.
	ErrDeviceLost = errors.New("vkm: device lost")
)
