// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx"
)

// Binding numbers within bind group 0.
const (
	PushConstantBinding = 15
	textureBindingBase  = 16
	samplerBindingBase  = 32
)

const (
	maxVertexSlots   = 8
	maxConstantSlots = PushConstantBinding
	maxTextureSlots  = samplerBindingBase - textureBindingBase
	maxSamplerSlots  = 16

	// pushConstantStride is the uniform buffer offset alignment WebGPU
	// guarantees.
	pushConstantStride = 256
)

// Compile-time interface check.
var _ gfx.Device = (*Device)(nil)

func init() {
	gfx.Register("wgpu", Open)
}

// halProvider is implemented by device providers that expose the HAL
// objects behind their gpucontext.Device and gpucontext.Queue.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// Device is a gfx.Device recording command streams into HAL command
// buffers.
type Device struct {
	device hal.Device
	queue  hal.Queue
	log    *slog.Logger
	debug  bool
	caps   gfx.Caps

	// drawer presents frames when the device provider can draw textures.
	drawer     gpucontext.TextureDrawer
	presentTex gpucontext.Texture

	buffers   *gfx.Table[gfx.BufferHandle, buffer]
	pipelines *gfx.Table[gfx.PipelineHandle, pipeline]
	states    *gfx.Table[gfx.StateBlockHandle, stateBlock]
	samplers  *gfx.Table[gfx.SamplerHandle, sampler]
	textures  *gfx.Table[gfx.TextureHandle, texture]
	passes    *gfx.Table[gfx.RenderPassHandle, renderPass]

	variants  variantCache
	exec      executor
	destroyed bool
}

// Open creates a device on the HAL device of the provider set with
// gfx.WithDeviceProvider. It is the factory registered as "wgpu".
func Open(opts ...gfx.Option) (gfx.Device, error) {
	o := gfx.NewOptions(opts...)
	if o.Provider == nil {
		return nil, fmt.Errorf("wgpu: %w: no device provider", gfx.ErrNoDevice)
	}
	hp, ok := o.Provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("wgpu: %w: provider does not expose HalDevice/HalQueue", gfx.ErrNoDevice)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, fmt.Errorf("wgpu: %w: provider HalDevice is not hal.Device", gfx.ErrNoDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("wgpu: %w: provider HalQueue is not hal.Queue", gfx.ErrNoDevice)
	}
	return NewDevice(device, queue, opts...)
}

// NewDevice creates a device on an open HAL device. The caller keeps
// ownership of device and queue; Destroy releases only the resources the
// gfx device created.
func NewDevice(device hal.Device, queue hal.Queue, opts ...gfx.Option) (*Device, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("wgpu: %w", gfx.ErrNoDevice)
	}
	o := gfx.NewOptions(opts...)
	d := &Device{
		device:    device,
		queue:     queue,
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
	d.variants.init()

	limits := gputypes.DefaultLimits()
	d.caps = gfx.Caps{
		Backend:             "wgpu",
		MaxColorAttachments: min(int(limits.MaxColorAttachments), gfx.MaxColorAttachments),
		MaxVertexBuffers:    int(limits.MaxVertexAttributes),
		MaxTextureUnits:     min(int(limits.MaxSampledTexturesPerShaderStage), maxTextureSlots),
		MaxConstantBuffers:  min(int(limits.MaxUniformBuffersPerShaderStage), maxConstantSlots),
	}

	surface := gputypes.TextureFormatUndefined
	adapter := ""
	if o.Provider != nil {
		surface = o.Provider.SurfaceFormat()
		adapter = o.Provider.AdapterInfo().Name
		if td, ok := o.Provider.(gpucontext.TextureDrawer); ok {
			d.drawer = td
		}
	}
	if o.Profiling {
		d.log.Warn("wgpu: profiling is not supported, ignoring")
	}

	d.log.Info("wgpu: device created",
		"adapter", adapter,
		"surfaceFormat", surface,
		"maxColorAttachments", d.caps.MaxColorAttachments,
		"maxVertexAttributes", d.caps.MaxVertexBuffers,
		"present", d.drawer != nil)
	return d, nil
}

// Caps implements gfx.Device.
func (d *Device) Caps() gfx.Caps { return d.caps }

func (d *Device) alive() error {
	if d.destroyed {
		return fmt.Errorf("wgpu: %w", gfx.ErrDeviceDestroyed)
	}
	return nil
}

// ExecuteCmdBuffers implements gfx.Device. All streams are encoded into one
// HAL command buffer, which is submitted and waited for before returning.
// An error in any stream discards the whole batch.
func (d *Device) ExecuteCmdBuffers(cbs ...*gfx.CmdBuffer) error {
	if err := d.alive(); err != nil {
		return err
	}
	streams, err := gfx.Streams(cbs)
	if err != nil {
		return fmt.Errorf("wgpu: execute: %w", err)
	}

	pushes := 0
	for _, s := range streams {
		pushes += len(s.PushConstants)
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "gfx"})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	defer encoder.Destroy()
	if err := encoder.BeginEncoding("gfx"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	d.exec.begin(encoder, pushes)
	defer d.exec.release()

	for i, s := range streams {
		d.log.Debug("wgpu: execute", "buffer", i, "words", len(s.Words), "pushConstants", len(s.PushConstants))
		d.exec.reset()
		err := gfx.Walk(s, d.exec.execute)
		d.exec.endPass()
		if err != nil {
			encoder.DiscardEncoding()
			return fmt.Errorf("wgpu: command buffer %d: %w", i, err)
		}
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)
	if err := d.submit(cmdBuf); err != nil {
		return err
	}
	for _, cb := range cbs {
		cb.MarkSubmitted()
	}
	return nil
}

// submit runs cmdBuf and blocks until the GPU is done with it.
func (d *Device) submit(cmdBuf hal.CommandBuffer) error {
	if _, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	if err := d.device.WaitIdle(); err != nil {
		return fmt.Errorf("wgpu: wait for GPU: %w", err)
	}
	return nil
}

// Destroy implements gfx.Device. Every HAL object created by the device is
// destroyed once; calling Destroy again does nothing. The HAL device and
// queue are left open.
func (d *Device) Destroy() {
	if d.destroyed {
		return
	}
	d.destroyed = true
	if err := d.device.WaitIdle(); err != nil {
		d.log.Warn("wgpu: wait idle before destroy", "err", err)
	}

	d.variants.destroyAll(d.device)
	for _, p := range d.passes.Drain() {
		p.release(d.device)
	}
	for _, p := range d.pipelines.Drain() {
		p.release(d.device)
	}
	for _, t := range d.textures.Drain() {
		t.release(d.device)
	}
	for _, s := range d.samplers.Drain() {
		d.device.DestroySampler(s.sampler)
	}
	for _, b := range d.buffers.Drain() {
		d.device.DestroyBuffer(b.buf)
	}
	d.states.Drain()
	d.presentTex = nil
	d.log.Info("wgpu: device destroyed")
}
