// Package wgpu implements gfx.Device on the gogpu/wgpu HAL.
//
// The device either wraps a hal.Device and hal.Queue passed to NewDevice or
// borrows them from a host through gfx.WithDeviceProvider. Importing the
// package registers the backend as "wgpu".
//
// # Shaders
//
// Pipelines take WGSL. Each stage is parsed and lowered with naga before
// it reaches the HAL, so syntax and type errors surface as
// gfx.ErrShaderCompile and missing entry points as gfx.ErrShaderLink.
// Entry points default to "vs_main" and "fs_main".
//
// # Bindings
//
// All resources live in bind group 0:
//
//	constant buffer slot n   @binding(n)        n < 15
//	push constants           @binding(15)
//	texture slot n           @binding(16 + n)   n < 16
//	sampler slot n           @binding(32 + n)   n < 16
//
// Push constants are a uniform buffer of up to 128 bytes. Every
// BindPushConstants writes a fresh 256-byte slot of a per-submission
// buffer, so draws see the payload that was current when they were
// recorded.
//
// # Pipelines
//
// WebGPU bakes rasterizer, depth-stencil and blend state, attachment
// formats and vertex strides into the render pipeline. The executor builds
// a HAL pipeline on the first draw that needs a combination and caches it
// until the gfx pipeline is deleted.
//
// # Coordinates
//
// Viewport and scissor rectangles are given with a bottom-left origin as
// on the gl backend and are flipped to the HAL's top-left origin.
// ReadPixels returns the attachment top row first on both backends.
package wgpu
