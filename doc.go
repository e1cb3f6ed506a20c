// Package gfx is a backend-agnostic GPU device and command-buffer layer.
//
// # Overview
//
// Client code describes GPU resources with plain descriptor values, creates
// them on a Device and refers to them through typed opaque handles. Draw
// work is recorded into a CmdBuffer, a flat stream of uint32 opcodes with a
// side pool for push constants, and replayed by the device's executor.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/gfx"
//	    _ "github.com/gogpu/gfx/backend/gl/glcore" // registers "gl"
//	)
//
//	dev, err := gfx.Open("gl")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Destroy()
//
//	vb, _ := dev.CreateBuffer(gfx.BufferDesc{Type: gfx.BufferVertex, Size: 36, Data: verts})
//	pipe, _ := dev.CreatePipeline(pipelineDesc)
//	pass, _ := dev.CreateRenderPass(gfx.RenderPassDesc{})
//
//	cb := gfx.NewCmdBuffer()
//	cb.Begin()
//	cb.BindRenderPass(pass)
//	cb.BindPipeline(pipe)
//	cb.BindVertexBuffer(0, vb, 12, 0)
//	cb.DrawPrimitives(0, 3)
//	if err := cb.End(); err != nil {
//	    log.Fatal(err)
//	}
//	err = dev.ExecuteCmdBuffers(cb)
//
// # Handles
//
// Handles pack a 20-bit slot index and a 12-bit generation. Deleting a
// resource bumps the generation of its slot, so a stale handle is reported
// as ErrStaleHandle rather than silently aliasing a newer resource.
//
// # Command Streams
//
// Each instruction is an opcode word followed by a fixed number of operand
// words, or by a start index, a count and count entries for the bulk binds.
// End captures the stream length, and Decoder refuses to read past it.
// Errors during recording are sticky and reported by End.
//
// # Backends
//
// Backends register themselves by name, in the style of database/sql:
//   - backend/gl: OpenGL 3.3 core executor (functions in backend/gl/glcore)
//   - backend/wgpu: WebGPU HAL executor on a host-provided device
//
// # Logging
//
// gfx logs through log/slog and is silent by default. Use SetLogger or
// WithLogger to enable output.
package gfx
