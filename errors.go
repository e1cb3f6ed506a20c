package gfx

import "errors"

// Handle errors.
var (
	// ErrInvalidHandle is returned when a handle was never issued by the
	// device or is the zero handle.
	ErrInvalidHandle = errors.New("gfx: invalid handle")

	// ErrStaleHandle is returned when a handle refers to a resource that has
	// already been deleted.
	ErrStaleHandle = errors.New("gfx: stale handle")

	// ErrHandleSpaceExhausted is returned when a resource table has no free
	// slots left.
	ErrHandleSpaceExhausted = errors.New("gfx: handle space exhausted")
)

// Command buffer errors.
var (
	// ErrNotRecording is returned when a recording call is made outside
	// Begin/End.
	ErrNotRecording = errors.New("gfx: command buffer is not recording")

	// ErrNotFinalized is returned when an unfinished command buffer is
	// submitted.
	ErrNotFinalized = errors.New("gfx: command buffer is not finalized")

	// ErrCapacityExceeded is returned when a recording would overflow the
	// command stream.
	ErrCapacityExceeded = errors.New("gfx: command stream capacity exceeded")

	// ErrPushConstantSize is returned for push constant payloads that are
	// empty, larger than MaxPushConstantSize or not a multiple of
	// PushConstantStride.
	ErrPushConstantSize = errors.New("gfx: invalid push constant size")

	// ErrTruncatedStream is returned when a stream ends before an End
	// opcode or an operand list runs past the recorded length.
	ErrTruncatedStream = errors.New("gfx: truncated command stream")

	// ErrUnknownOpcode is returned when the decoder meets a word that is not
	// a known opcode.
	ErrUnknownOpcode = errors.New("gfx: unknown opcode")
)

// Device errors.
var (
	// ErrInvalidDescriptor is returned when a descriptor fails validation.
	ErrInvalidDescriptor = errors.New("gfx: invalid descriptor")

	// ErrInvalidUsage is returned when a resource is used in a way its usage
	// flags do not allow.
	ErrInvalidUsage = errors.New("gfx: invalid resource usage")

	// ErrAlreadyMapped is returned when mapping a buffer that is mapped.
	ErrAlreadyMapped = errors.New("gfx: buffer already mapped")

	// ErrNotMapped is returned when unmapping a buffer that is not mapped.
	ErrNotMapped = errors.New("gfx: buffer not mapped")

	// ErrMapRange is returned when a map range lies outside the buffer.
	ErrMapRange = errors.New("gfx: map range out of bounds")

	// ErrShaderCompile is returned when a shader stage fails to compile.
	ErrShaderCompile = errors.New("gfx: shader compile failed")

	// ErrShaderLink is returned when shader stages fail to link.
	ErrShaderLink = errors.New("gfx: shader link failed")

	// ErrIncompleteRenderPass is returned when a render pass attachment set
	// is rejected by the backend.
	ErrIncompleteRenderPass = errors.New("gfx: incomplete render pass")

	// ErrUnsupportedTexture is returned for texture dimensionality or
	// formats the backend cannot create.
	ErrUnsupportedTexture = errors.New("gfx: unsupported texture")

	// ErrNoAttachments is returned when presenting a render pass that has
	// no attachments.
	ErrNoAttachments = errors.New("gfx: render pass has no attachments")

	// ErrNoPipeline is returned when a draw is executed without a bound
	// pipeline.
	ErrNoPipeline = errors.New("gfx: no pipeline bound")

	// ErrNoIndexBuffer is returned when an indexed draw is executed without
	// a bound index buffer.
	ErrNoIndexBuffer = errors.New("gfx: no index buffer bound")

	// ErrNoDevice is returned when a backend cannot obtain a native device.
	ErrNoDevice = errors.New("gfx: no native device available")

	// ErrDeviceDestroyed is returned for calls on a destroyed device.
	ErrDeviceDestroyed = errors.New("gfx: device destroyed")

	// ErrUnknownBackend is returned by Open for unregistered backend names.
	ErrUnknownBackend = errors.New("gfx: unknown backend")
)
