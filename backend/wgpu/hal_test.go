package wgpu

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/gfx"
)

const testShader = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
};

@vertex
fn vs_main(@location(0) pos: vec3<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4<f32>(pos, 1.0);
    return out;
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

// call is one recorded encoder call.
type call struct {
	name string
	args []any
}

func (c call) String() string { return fmt.Sprintf("%s%v", c.name, c.args) }

type recorder struct {
	calls []call
}

func (r *recorder) add(name string, args ...any) {
	r.calls = append(r.calls, call{name, args})
}

func (r *recorder) reset() { r.calls = nil }

func (r *recorder) named(name string) []call {
	var out []call
	for _, c := range r.calls {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

func (r *recorder) names() []string {
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.name
	}
	return out
}

// recDevice wraps a noop HAL device, keeps the descriptors of pipelines and
// bind groups it creates and hands out recording encoders.
type recDevice struct {
	hal.Device
	rec *recorder

	pipelines  []*hal.RenderPipelineDescriptor
	layouts    []*hal.BindGroupLayoutDescriptor
	bindGroups []*hal.BindGroupDescriptor
	buffers    map[string]hal.Buffer
	destroyed  map[string]int

	// copySource holds tightly packed 4-byte texels that texture to
	// buffer copies write into the destination.
	copySource []byte
}

func (d *recDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	b, err := d.Device.CreateBuffer(desc)
	if err == nil {
		d.buffers[desc.Label] = b
	}
	return b, err
}

func (d *recDevice) DestroyBuffer(b hal.Buffer) {
	d.destroyed["buffer"]++
	d.Device.DestroyBuffer(b)
}

func (d *recDevice) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	d.pipelines = append(d.pipelines, desc)
	return d.Device.CreateRenderPipeline(desc)
}

func (d *recDevice) DestroyRenderPipeline(p hal.RenderPipeline) {
	d.destroyed["pipeline"]++
	d.Device.DestroyRenderPipeline(p)
}

func (d *recDevice) CreateBindGroupLayout(desc *hal.BindGroupLayoutDescriptor) (hal.BindGroupLayout, error) {
	d.layouts = append(d.layouts, desc)
	return d.Device.CreateBindGroupLayout(desc)
}

func (d *recDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	d.bindGroups = append(d.bindGroups, desc)
	return d.Device.CreateBindGroup(desc)
}

func (d *recDevice) DestroyBindGroup(g hal.BindGroup) {
	d.destroyed["bind group"]++
	d.Device.DestroyBindGroup(g)
}

func (d *recDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &recEncoder{CommandEncoder: enc, dev: d, rec: d.rec}, nil
}

// contents returns a copy of a HAL buffer's bytes.
func (d *recDevice) contents(t *testing.T, b hal.Buffer, size uint64) []byte {
	t.Helper()
	m, err := d.Device.MapBuffer(b, 0, size)
	if err != nil {
		t.Fatalf("MapBuffer() error = %v", err)
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(m.Ptr), size))
	return out
}

type recEncoder struct {
	hal.CommandEncoder
	dev *recDevice
	rec *recorder
}

func (e *recEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	e.rec.add("BeginRenderPass", len(desc.ColorAttachments), desc.DepthStencilAttachment != nil)
	return &recPass{RenderPassEncoder: e.CommandEncoder.BeginRenderPass(desc), rec: e.rec}
}

func (e *recEncoder) CopyTextureToBuffer(src hal.Texture, dst hal.Buffer, regions []hal.BufferTextureCopy) {
	r := regions[0]
	e.rec.add("CopyTextureToBuffer", r.BufferLayout.BytesPerRow, r.Size.Width, r.Size.Height, r.TextureBase.Origin.Z)
	e.CommandEncoder.CopyTextureToBuffer(src, dst, regions)
	if e.dev.copySource == nil {
		return
	}
	row := int(r.Size.Width) * 4
	pitch := int(r.BufferLayout.BytesPerRow)
	size := uint64(pitch * int(r.Size.Height))
	m, err := e.dev.Device.MapBuffer(dst, 0, size)
	if err != nil {
		return
	}
	out := unsafe.Slice((*byte)(m.Ptr), size)
	for y := range int(r.Size.Height) {
		copy(out[y*pitch:y*pitch+row], e.dev.copySource[y*row:(y+1)*row])
	}
}

func (e *recEncoder) DiscardEncoding() {
	e.rec.add("DiscardEncoding")
	e.CommandEncoder.DiscardEncoding()
}

type recPass struct {
	hal.RenderPassEncoder
	rec *recorder
}

func (p *recPass) End() { p.rec.add("End") }

func (p *recPass) SetPipeline(hal.RenderPipeline) { p.rec.add("SetPipeline") }

func (p *recPass) SetBindGroup(index uint32, _ hal.BindGroup, _ []uint32) {
	p.rec.add("SetBindGroup", index)
}

func (p *recPass) SetVertexBuffer(slot uint32, _ hal.Buffer, offset uint64) {
	p.rec.add("SetVertexBuffer", slot, offset)
}

func (p *recPass) SetIndexBuffer(_ hal.Buffer, format gputypes.IndexFormat, offset uint64) {
	p.rec.add("SetIndexBuffer", format, offset)
}

func (p *recPass) SetViewport(x, y, w, h, _, _ float32) {
	p.rec.add("SetViewport", x, y, w, h)
}

func (p *recPass) SetScissorRect(x, y, w, h uint32) {
	p.rec.add("SetScissorRect", x, y, w, h)
}

func (p *recPass) SetStencilReference(ref uint32) { p.rec.add("SetStencilReference", ref) }

func (p *recPass) Draw(vertices, instances, firstVertex, firstInstance uint32) {
	p.rec.add("Draw", vertices, instances, firstVertex, firstInstance)
}

func (p *recPass) DrawIndexed(indices, instances, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.rec.add("DrawIndexed", indices, instances, firstIndex, baseVertex, firstInstance)
}

func openNoop(t *testing.T) hal.OpenDevice {
	t.Helper()
	inst, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance() error = %v", err)
	}
	adapters := inst.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		t.Fatal("no noop adapter")
	}
	od, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return od
}

func newTestDevice(t *testing.T, opts ...gfx.Option) (*Device, *recDevice) {
	t.Helper()
	od := openNoop(t)
	rd := &recDevice{
		Device:    od.Device,
		rec:       &recorder{},
		buffers:   make(map[string]hal.Buffer),
		destroyed: make(map[string]int),
	}
	d, err := NewDevice(rd, od.Queue, opts...)
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	return d, rd
}

func trianglePipelineDesc() gfx.PipelineDesc {
	return gfx.PipelineDesc{
		Label: "triangle",
		InputLayout: []gfx.InputLayoutElement{
			{Semantic: gfx.SemanticPosition, Format: gfx.VertexFloat3, Stride: 12},
		},
		Shaders: []gfx.ShaderStageDesc{
			{Stage: gfx.StageVertex, Source: testShader},
			{Stage: gfx.StageFragment, Source: testShader},
		},
		Topology: gfx.TriangleList,
	}
}

func mustBuffer(t *testing.T, d *Device, desc gfx.BufferDesc) gfx.BufferHandle {
	t.Helper()
	h, err := d.CreateBuffer(desc)
	if err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	return h
}

func mustTexture(t *testing.T, d *Device, desc gfx.TextureDesc) gfx.TextureHandle {
	t.Helper()
	h, err := d.CreateTexture(desc)
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	return h
}

func mustPass(t *testing.T, d *Device, desc gfx.RenderPassDesc) gfx.RenderPassHandle {
	t.Helper()
	h, err := d.CreateRenderPass(desc)
	if err != nil {
		t.Fatalf("CreateRenderPass() error = %v", err)
	}
	return h
}

func mustPipeline(t *testing.T, d *Device, desc gfx.PipelineDesc) gfx.PipelineHandle {
	t.Helper()
	h, err := d.CreatePipeline(desc)
	if err != nil {
		t.Fatalf("CreatePipeline() error = %v", err)
	}
	return h
}

// renderTarget creates an 8x4 color target and a pass drawing into it.
func renderTarget(t *testing.T, d *Device, format gfx.TextureFormat) (gfx.TextureHandle, gfx.RenderPassHandle) {
	t.Helper()
	tex := mustTexture(t, d, gfx.TextureDesc{
		Label:        "target",
		Type:         gfx.Texture2D,
		Format:       format,
		Width:        8,
		Height:       4,
		RenderTarget: true,
	})
	pass := mustPass(t, d, gfx.RenderPassDesc{
		Label:  "offscreen",
		Colors: []gfx.ColorAttachment{{Texture: tex, Load: gfx.LoadActionClear}},
	})
	return tex, pass
}
