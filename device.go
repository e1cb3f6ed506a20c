// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"fmt"
	"image"
)

// Device owns backend resources and executes command streams.
//
// Create methods validate their descriptor, allocate the backend object and
// return a handle only once the resource is usable. Delete methods release
// the backend object exactly once; deleting an unknown or stale handle
// returns ErrInvalidHandle or ErrStaleHandle and leaves the device
// unchanged.
//
// A Device is bound to the thread that owns its graphics context.
// Resource tables may be read concurrently, but ExecuteCmdBuffers,
// Present and ReadPixels must be called from the context thread.
type Device interface {
	CreateBuffer(desc BufferDesc) (BufferHandle, error)
	DeleteBuffer(h BufferHandle) error

	CreatePipeline(desc PipelineDesc) (PipelineHandle, error)
	DeletePipeline(h PipelineHandle) error

	CreateRenderPass(desc RenderPassDesc) (RenderPassHandle, error)
	DeleteRenderPass(h RenderPassHandle) error

	CreateRasterizerState(desc RasterizerStateDesc) (StateBlockHandle, error)
	CreateDepthStencilState(desc DepthStencilStateDesc) (StateBlockHandle, error)
	CreateBlendState(desc BlendStateDesc) (StateBlockHandle, error)
	DeleteStateBlock(h StateBlockHandle) error

	CreateSampler(desc SamplerDesc) (SamplerHandle, error)
	DeleteSampler(h SamplerHandle) error

	CreateTexture(desc TextureDesc) (TextureHandle, error)
	DeleteTexture(h TextureHandle) error

	// MapBuffer returns a writable region of size bytes starting at offset.
	// The region's contents are undefined; callers must only write to it.
	// Only dynamic buffers can be mapped, and a buffer can be mapped once
	// at a time. Distinct buffers may be mapped simultaneously.
	MapBuffer(h BufferHandle, offset, size int) ([]byte, error)

	// UnmapBuffer commits the mapped region to the buffer.
	UnmapBuffer(h BufferHandle) error

	// ExecuteCmdBuffers replays finalized command buffers in argument
	// order and marks each one submitted. It returns when every backend
	// call has been issued.
	ExecuteCmdBuffers(cbs ...*CmdBuffer) error

	// Present copies color attachment 0 of a render pass to the screen,
	// scaled to width×height.
	Present(rp RenderPassHandle, width, height int) error

	// ReadPixels reads back one color attachment of a render pass.
	// The image is top-down.
	ReadPixels(rp RenderPassHandle, attachment int) (*image.RGBA, error)

	Caps() Caps

	// Destroy releases every resource still owned by the device. The
	// device must not be used afterwards.
	Destroy()
}

// Caps describes backend limits and features.
type Caps struct {
	Backend string

	MaxColorAttachments int
	MaxVertexBuffers    int
	MaxTextureUnits     int
	MaxConstantBuffers  int

	// MultiBindVertexBuffers reports whether BindVertexBuffers maps to a
	// single backend call. When false it is split into per-slot binds.
	MultiBindVertexBuffers bool

	// NativePushConstants reports whether push constants reach the shader
	// without a backing uniform buffer.
	NativePushConstants bool

	// DefaultFramebuffer reports whether a render pass without attachments
	// targets the window surface.
	DefaultFramebuffer bool
}

// CheckMapRange validates a map request against a buffer of bufSize bytes.
func CheckMapRange(bufSize, offset, size int) error {
	if offset < 0 || size <= 0 || offset > bufSize || size > bufSize-offset {
		return fmt.Errorf("map [%d, %d) of %d-byte buffer: %w", offset, offset+size, bufSize, ErrMapRange)
	}
	return nil
}

// Streams returns the finalized streams of cbs, in order. It fails on the
// first nil or unfinalized buffer without returning any stream, so that a
// device never executes part of a batch.
func Streams(cbs []*CmdBuffer) ([]Stream, error) {
	streams := make([]Stream, len(cbs))
	for i, cb := range cbs {
		if cb == nil {
			return nil, fmt.Errorf("command buffer %d is nil: %w", i, ErrNotFinalized)
		}
		s, err := cb.Stream()
		if err != nil {
			return nil, fmt.Errorf("command buffer %d: %w", i, err)
		}
		streams[i] = s
	}
	return streams, nil
}
