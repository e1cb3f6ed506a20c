// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gl

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/internal/capture"
)

// PushConstantBinding is the uniform buffer binding point that receives
// push constants. Shaders declare them as
//
//	layout(std140) uniform PushConstants { ... };
//
// and pipelines attach that block to this binding at link time.
const PushConstantBinding = 15

// Compile-time interface check.
var _ gfx.Device = (*Device)(nil)

// Device is a gfx.Device executing command streams with OpenGL 3.3 core.
//
// All methods must be called on the thread that owns the GL context the
// Functions were loaded for.
type Device struct {
	f     Functions
	log   *slog.Logger
	debug bool
	caps  gfx.Caps

	buffers   *gfx.Table[gfx.BufferHandle, buffer]
	pipelines *gfx.Table[gfx.PipelineHandle, pipeline]
	states    *gfx.Table[gfx.StateBlockHandle, stateBlock]
	samplers  *gfx.Table[gfx.SamplerHandle, sampler]
	textures  *gfx.Table[gfx.TextureHandle, texture]
	passes    *gfx.Table[gfx.RenderPassHandle, renderPass]

	// pushConstants is the uniform buffer behind PushConstantBinding.
	pushConstants uint32

	exec        executor
	profiler    *Profiler
	lastGPUTime float32
	destroyed   bool
}

// NewDevice creates a device on the current GL context.
func NewDevice(f Functions, opts ...gfx.Option) (*Device, error) {
	if f == nil {
		return nil, fmt.Errorf("gl: %w", gfx.ErrNoDevice)
	}
	o := gfx.NewOptions(opts...)
	d := &Device{
		f:         f,
		log:       o.Logger,
		debug:     o.Debug,
		buffers:   gfx.NewTable[gfx.BufferHandle, buffer]("buffer"),
		pipelines: gfx.NewTable[gfx.PipelineHandle, pipeline]("pipeline"),
		states:    gfx.NewTable[gfx.StateBlockHandle, stateBlock]("state block"),
		samplers:  gfx.NewTable[gfx.SamplerHandle, sampler]("sampler"),
		textures:  gfx.NewTable[gfx.TextureHandle, texture]("texture"),
		passes:    gfx.NewTable[gfx.RenderPassHandle, renderPass]("render pass"),
	}
	d.exec.d = d
	d.caps = gfx.Caps{
		Backend:             "gl",
		MaxColorAttachments: min(int(f.GetInteger(MAX_COLOR_ATTACHMENTS)), gfx.MaxColorAttachments),
		MaxVertexBuffers:    int(f.GetInteger(MAX_VERTEX_ATTRIBS)),
		MaxTextureUnits:     int(f.GetInteger(MAX_TEXTURE_IMAGE_UNITS)),
		// The last binding is reserved for push constants.
		MaxConstantBuffers: min(int(f.GetInteger(MAX_UNIFORM_BUFFER_BINDINGS)), PushConstantBinding),
		DefaultFramebuffer: true,
	}

	d.pushConstants = f.GenBuffer()
	f.BindBuffer(UNIFORM_BUFFER, d.pushConstants)
	f.BufferData(UNIFORM_BUFFER, gfx.MaxPushConstantSize, nil, DYNAMIC_DRAW)
	f.BindBufferBase(UNIFORM_BUFFER, PushConstantBinding, d.pushConstants)
	f.BindBuffer(UNIFORM_BUFFER, 0)

	if o.Profiling {
		d.profiler = NewProfiler(f)
	}

	d.log.Info("gl: device created",
		"maxColorAttachments", d.caps.MaxColorAttachments,
		"maxVertexAttribs", d.caps.MaxVertexBuffers,
		"maxTextureUnits", d.caps.MaxTextureUnits,
		"profiling", o.Profiling)
	return d, nil
}

// Caps implements gfx.Device.
func (d *Device) Caps() gfx.Caps { return d.caps }

// LastGPUTime returns the GPU time in milliseconds of the most recent
// ExecuteCmdBuffers call whose timer result is available. It is 0 when
// profiling is disabled or before the query ring has filled.
func (d *Device) LastGPUTime() float32 { return d.lastGPUTime }

func (d *Device) alive() error {
	if d.destroyed {
		return fmt.Errorf("gl: %w", gfx.ErrDeviceDestroyed)
	}
	return nil
}

// ExecuteCmdBuffers implements gfx.Device. Every buffer is checked before
// any command runs, so a batch with an unfinalized buffer issues no GL
// calls.
func (d *Device) ExecuteCmdBuffers(cbs ...*gfx.CmdBuffer) error {
	if err := d.alive(); err != nil {
		return err
	}
	streams, err := gfx.Streams(cbs)
	if err != nil {
		return fmt.Errorf("gl: execute: %w", err)
	}

	if d.profiler != nil {
		d.profiler.Begin()
		defer func() {
			if ms := d.profiler.End(); ms > 0 {
				d.lastGPUTime = ms
			}
		}()
	}

	for i, s := range streams {
		d.log.Debug("gl: execute", "buffer", i, "words", len(s.Words), "pushConstants", len(s.PushConstants))
		d.exec.reset()
		if err := gfx.Walk(s, d.exec.execute); err != nil {
			return fmt.Errorf("gl: command buffer %d: %w", i, err)
		}
		cbs[i].MarkSubmitted()
	}
	return nil
}

// Present implements gfx.Device. It blits color attachment 0 of rp to the
// default framebuffer. Depth and stencil are copied too when the size is
// unchanged, since GL only blits them unscaled. The blit ignores any
// scissor left enabled by the last executed stream.
func (d *Device) Present(rp gfx.RenderPassHandle, width, height int) error {
	if err := d.alive(); err != nil {
		return err
	}
	pass, err := d.passes.Get(rp)
	if err != nil {
		return fmt.Errorf("gl: present: %w", err)
	}
	if pass.fbo == 0 {
		return fmt.Errorf("gl: present %v: %w", rp, gfx.ErrNoAttachments)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("gl: present %v: %w: size %dx%d", rp, gfx.ErrInvalidDescriptor, width, height)
	}

	var mask Enum
	if len(pass.colors) > 0 {
		mask = COLOR_BUFFER_BIT
	}
	sameSize := width == pass.width && height == pass.height
	if sameSize {
		if pass.depth != nil {
			mask |= DEPTH_BUFFER_BIT
		}
		if pass.stencil != nil {
			mask |= STENCIL_BUFFER_BIT
		}
	}
	if mask == 0 {
		return fmt.Errorf("gl: present %v: %w: no color attachment to scale", rp, gfx.ErrNoAttachments)
	}
	filter := NEAREST
	if mask == COLOR_BUFFER_BIT && !sameSize {
		filter = LINEAR
	}

	d.f.Disable(SCISSOR_TEST)
	d.f.BindFramebuffer(READ_FRAMEBUFFER, pass.fbo)
	d.f.BindFramebuffer(DRAW_FRAMEBUFFER, 0)
	//nolint:gosec // G115: framebuffer sizes fit in int32
	d.f.BlitFramebuffer(0, 0, int32(pass.width), int32(pass.height),
		0, 0, int32(width), int32(height), mask, filter)
	d.f.BindFramebuffer(FRAMEBUFFER, 0)
	return nil
}

// ReadPixels implements gfx.Device. The attachment is read as 8-bit RGBA
// and returned top row first.
func (d *Device) ReadPixels(rp gfx.RenderPassHandle, attachment int) (*image.RGBA, error) {
	if err := d.alive(); err != nil {
		return nil, err
	}
	pass, err := d.passes.Get(rp)
	if err != nil {
		return nil, fmt.Errorf("gl: read pixels: %w", err)
	}
	if pass.fbo == 0 {
		return nil, fmt.Errorf("gl: read pixels %v: %w", rp, gfx.ErrNoAttachments)
	}
	if attachment < 0 || attachment >= len(pass.colors) {
		return nil, fmt.Errorf("gl: read pixels %v: %w: color attachment %d of %d",
			rp, gfx.ErrInvalidDescriptor, attachment, len(pass.colors))
	}

	img := image.NewRGBA(image.Rect(0, 0, pass.width, pass.height))
	d.f.BindFramebuffer(READ_FRAMEBUFFER, pass.fbo)
	d.f.ReadBuffer(COLOR_ATTACHMENT0 + Enum(attachment))
	//nolint:gosec // G115: framebuffer sizes fit in int32
	d.f.ReadPixels(0, 0, int32(pass.width), int32(pass.height), RGBA, UNSIGNED_BYTE, img.Pix)
	d.f.ReadBuffer(COLOR_ATTACHMENT0)
	d.f.BindFramebuffer(READ_FRAMEBUFFER, 0)
	capture.FlipVertical(img)
	return img, nil
}

// Destroy implements gfx.Device. Every GL object still owned by the device
// is deleted once; calling Destroy again does nothing.
func (d *Device) Destroy() {
	if d.destroyed {
		return
	}
	d.destroyed = true

	for _, p := range d.passes.Drain() {
		p.release(d.f)
	}
	for _, p := range d.pipelines.Drain() {
		p.release(d.f)
	}
	for _, t := range d.textures.Drain() {
		d.f.DeleteTexture(t.id)
	}
	for _, s := range d.samplers.Drain() {
		d.f.DeleteSampler(s.id)
	}
	for _, b := range d.buffers.Drain() {
		d.f.DeleteBuffer(b.id)
	}
	d.states.Drain()

	d.f.DeleteBuffer(d.pushConstants)
	if d.profiler != nil {
		d.profiler.Destroy()
	}
	d.log.Info("gl: device destroyed")
}
