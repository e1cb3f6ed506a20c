package wgpu

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/fnv"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx"
)

// textureKind is how a bound texture is declared in a bind group layout.
type textureKind struct {
	dimension gputypes.TextureViewDimension
	depth     bool
}

// variantKey is everything a HAL render pipeline bakes in. Texture and
// sampler kinds are part of the key because the bind group layout declares
// them.
type variantKey struct {
	pipeline gfx.PipelineHandle

	raster gfx.RasterizerStateDesc
	depth  gfx.DepthStencilStateDesc
	blend  gfx.BlendStateDesc

	colors      [gfx.MaxColorAttachments]gputypes.TextureFormat
	colorCount  int
	depthFormat gputypes.TextureFormat

	strides  [maxVertexSlots]uint32
	textures [maxTextureSlots]textureKind
	compare  [maxSamplerSlots]bool
}

// hash is the FNV-1a hash of every field of k.
func (k *variantKey) hash() uint64 {
	h := fnv.New64a()
	hashWriteUint32(h, uint32(k.pipeline))

	r := &k.raster
	hashWriteBool(h, r.DisableRasterizer)
	hashWriteBool(h, r.FrontCounterClockwise)
	hashWriteBool(h, r.ScissorTest)
	hashWriteBool(h, r.DepthClamp)
	hashWriteUint32(h, uint32(r.Fill))
	hashWriteUint32(h, uint32(r.Cull))
	hashWriteUint32(h, uint32(r.DepthBias))
	hashWriteUint32(h, math.Float32bits(r.SlopeScaledDepthBias))
	hashWriteUint32(h, math.Float32bits(r.DepthBiasClamp))

	ds := &k.depth
	hashWriteBool(h, ds.DepthTest)
	hashWriteBool(h, ds.DepthWrite)
	hashWriteUint32(h, uint32(ds.DepthFunc))
	hashWriteBool(h, ds.StencilTest)
	for _, f := range []gfx.StencilFaceDesc{ds.Front, ds.Back} {
		hashWriteUint32(h, uint32(f.FailOp)|uint32(f.DepthFailOp)<<8|uint32(f.PassOp)<<16|uint32(f.Func)<<24)
	}
	hashWriteUint32(h, uint32(ds.StencilRef)|uint32(ds.StencilReadMask)<<8|uint32(ds.StencilWriteMask)<<16)

	b := &k.blend
	hashWriteBool(h, b.Enabled)
	hashWriteUint32(h, uint32(b.SrcColor)|uint32(b.DstColor)<<8|uint32(b.ColorOp)<<16|uint32(b.WriteMask)<<24)
	hashWriteUint32(h, uint32(b.SrcAlpha)|uint32(b.DstAlpha)<<8|uint32(b.AlphaOp)<<16)

	hashWriteUint32(h, uint32(k.colorCount)) //nolint:gosec // G115: at most MaxColorAttachments
	for _, f := range k.colors[:k.colorCount] {
		hashWriteUint32(h, uint32(f))
	}
	hashWriteUint32(h, uint32(k.depthFormat))
	for _, s := range k.strides {
		hashWriteUint32(h, s)
	}
	for _, t := range k.textures {
		hashWriteUint32(h, uint32(t.dimension))
		hashWriteBool(h, t.depth)
	}
	for _, c := range k.compare {
		hashWriteBool(h, c)
	}
	return h.Sum64()
}

func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}

// variant is a HAL render pipeline built for one variantKey.
type variant struct {
	key        variantKey
	pipeline   hal.RenderPipeline
	layout     hal.PipelineLayout
	bindLayout hal.BindGroupLayout
}

func (v *variant) release(device hal.Device) {
	device.DestroyRenderPipeline(v.pipeline)
	device.DestroyPipelineLayout(v.layout)
	if v.bindLayout != nil {
		device.DestroyBindGroupLayout(v.bindLayout)
	}
}

// variantCache maps key hashes to variants. Colliding keys share a bucket
// and are told apart by comparing the full key.
type variantCache struct {
	buckets      map[uint64][]*variant
	hits, misses int
}

func (c *variantCache) init() {
	c.buckets = make(map[uint64][]*variant)
}

func (c *variantCache) len() int {
	n := 0
	for _, b := range c.buckets {
		n += len(b)
	}
	return n
}

// get returns the variant for key, building it with create on a miss.
func (c *variantCache) get(key *variantKey, create func() (*variant, error)) (*variant, error) {
	sum := key.hash()
	for _, v := range c.buckets[sum] {
		if v.key == *key {
			c.hits++
			return v, nil
		}
	}
	v, err := create()
	if err != nil {
		return nil, err
	}
	c.misses++
	c.buckets[sum] = append(c.buckets[sum], v)
	return v, nil
}

// evict destroys every variant of pipeline h.
func (c *variantCache) evict(device hal.Device, h gfx.PipelineHandle) {
	for sum, bucket := range c.buckets {
		kept := bucket[:0]
		for _, v := range bucket {
			if v.key.pipeline == h {
				v.release(device)
				continue
			}
			kept = append(kept, v)
		}
		if len(kept) == 0 {
			delete(c.buckets, sum)
		} else {
			c.buckets[sum] = kept
		}
	}
}

func (c *variantCache) destroyAll(device hal.Device) {
	for _, bucket := range c.buckets {
		for _, v := range bucket {
			v.release(device)
		}
	}
	clear(c.buckets)
}

// createVariant builds the bind group layout, pipeline layout and render
// pipeline for key.
func (d *Device) createVariant(p *pipeline, key *variantKey) (*variant, error) {
	v := &variant{key: *key}
	var groups []hal.BindGroupLayout
	if len(p.bindings) > 0 {
		entries := make([]gputypes.BindGroupLayoutEntry, len(p.bindings))
		for i, b := range p.bindings {
			entries[i] = layoutEntry(b, key)
		}
		bgl, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{Label: p.label, Entries: entries})
		if err != nil {
			return nil, fmt.Errorf("create bind group layout: %w", err)
		}
		v.bindLayout = bgl
		groups = []hal.BindGroupLayout{bgl}
	}
	layout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{Label: p.label, BindGroupLayouts: groups})
	if err != nil {
		if v.bindLayout != nil {
			d.device.DestroyBindGroupLayout(v.bindLayout)
		}
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	v.layout = layout

	fail := func(err error) (*variant, error) {
		d.device.DestroyPipelineLayout(layout)
		if v.bindLayout != nil {
			d.device.DestroyBindGroupLayout(v.bindLayout)
		}
		return nil, err
	}
	desc, err := renderPipelineDescriptor(p, key, layout)
	if err != nil {
		return fail(err)
	}
	rp, err := d.device.CreateRenderPipeline(desc)
	if err != nil {
		return fail(fmt.Errorf("create render pipeline: %w", err))
	}
	v.pipeline = rp
	d.log.Debug("wgpu: pipeline variant created", "pipeline", key.pipeline, "label", p.label, "colors", key.colorCount)
	return v, nil
}

func layoutEntry(b binding, key *variantKey) gputypes.BindGroupLayoutEntry {
	e := gputypes.BindGroupLayoutEntry{Binding: b.binding, Visibility: b.visibility}
	switch b.kind {
	case gfx.BindingConstantBuffer, gfx.BindingPushConstants:
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
	case gfx.BindingTexture:
		t := key.textures[b.slot]
		sample := gputypes.TextureSampleTypeFloat
		if t.depth {
			sample = gputypes.TextureSampleTypeDepth
		}
		dim := t.dimension
		if dim == 0 {
			dim = gputypes.TextureViewDimension2D
		}
		e.Texture = &gputypes.TextureBindingLayout{SampleType: sample, ViewDimension: dim}
	case gfx.BindingSampler:
		typ := gputypes.SamplerBindingTypeFiltering
		if key.compare[b.slot] {
			typ = gputypes.SamplerBindingTypeComparison
		}
		e.Sampler = &gputypes.SamplerBindingLayout{Type: typ}
	}
	return e
}

func renderPipelineDescriptor(p *pipeline, key *variantKey, layout hal.PipelineLayout) (*hal.RenderPipelineDescriptor, error) {
	cull, err := lookup("cull mode", key.raster.Cull, cullModes)
	if err != nil {
		return nil, err
	}
	front := gputypes.FrontFaceCW
	if key.raster.FrontCounterClockwise {
		front = gputypes.FrontFaceCCW
	}
	desc := &hal.RenderPipelineDescriptor{
		Label:  p.label,
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     p.vertex,
			EntryPoint: p.vsEntry,
			Buffers:    make([]gputypes.VertexBufferLayout, len(p.slots)),
		},
		Primitive: gputypes.PrimitiveState{
			Topology:       p.topology,
			FrontFace:      front,
			CullMode:       cull,
			UnclippedDepth: key.raster.DepthClamp,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: math.MaxUint64},
	}
	for i, s := range p.slots {
		desc.Vertex.Buffers[i] = gputypes.VertexBufferLayout{
			ArrayStride: uint64(key.strides[i]),
			StepMode:    s.stepMode,
			Attributes:  s.attribs,
		}
	}
	if key.depthFormat != gputypes.TextureFormatUndefined {
		if desc.DepthStencil, err = depthStencilState(&key.depth, key.depthFormat, &key.raster); err != nil {
			return nil, err
		}
	}

	if p.fragment != nil {
		blend, err := blendState(&key.blend)
		if err != nil {
			return nil, err
		}
		targets := make([]gputypes.ColorTargetState, key.colorCount)
		for i := range targets {
			targets[i] = gputypes.ColorTargetState{
				Format:    key.colors[i],
				Blend:     blend,
				WriteMask: colorWriteMask(key.blend.WriteMask),
			}
		}
		desc.Fragment = &hal.FragmentState{Module: p.fragment, EntryPoint: p.fsEntry, Targets: targets}
	}
	return desc, nil
}

// depthStencilState translates a depth-stencil block for an attachment of
// format. Depth bias comes from the rasterizer state when raster is set.
func depthStencilState(d *gfx.DepthStencilStateDesc, format gputypes.TextureFormat, raster *gfx.RasterizerStateDesc) (*hal.DepthStencilState, error) {
	s := &hal.DepthStencilState{
		Format:       format,
		DepthCompare: gputypes.CompareFunctionAlways,
	}
	if d.DepthTest {
		compare, err := lookup("depth func", d.DepthFunc, compareFuncs)
		if err != nil {
			return nil, err
		}
		s.DepthCompare = compare
		s.DepthWriteEnabled = d.DepthWrite
	}
	keep := hal.StencilFaceState{Compare: gputypes.CompareFunctionAlways}
	s.StencilFront, s.StencilBack = keep, keep
	if d.StencilTest {
		var err error
		if s.StencilFront, err = stencilFace(d.Front); err != nil {
			return nil, err
		}
		if s.StencilBack, err = stencilFace(d.Back); err != nil {
			return nil, err
		}
		s.StencilReadMask = uint32(d.StencilReadMask)
		s.StencilWriteMask = uint32(d.StencilWriteMask)
	}
	if raster != nil {
		s.DepthBias = raster.DepthBias
		s.DepthBiasSlopeScale = raster.SlopeScaledDepthBias
		s.DepthBiasClamp = raster.DepthBiasClamp
	}
	return s, nil
}

func stencilFace(f gfx.StencilFaceDesc) (hal.StencilFaceState, error) {
	var s hal.StencilFaceState
	var err error
	if s.Compare, err = lookup("stencil func", f.Func, compareFuncs); err != nil {
		return s, err
	}
	if s.FailOp, err = lookup("stencil op", f.FailOp, stencilOps); err != nil {
		return s, err
	}
	if s.DepthFailOp, err = lookup("stencil op", f.DepthFailOp, stencilOps); err != nil {
		return s, err
	}
	if s.PassOp, err = lookup("stencil op", f.PassOp, stencilOps); err != nil {
		return s, err
	}
	return s, nil
}

// blendState returns nil when blending is disabled.
func blendState(b *gfx.BlendStateDesc) (*gputypes.BlendState, error) {
	if !b.Enabled {
		return nil, nil
	}
	var s gputypes.BlendState
	var err error
	if s.Color.SrcFactor, err = lookup("blend factor", b.SrcColor, blendFactors); err != nil {
		return nil, err
	}
	if s.Color.DstFactor, err = lookup("blend factor", b.DstColor, blendFactors); err != nil {
		return nil, err
	}
	if s.Color.Operation, err = lookup("blend op", b.ColorOp, blendOps); err != nil {
		return nil, err
	}
	if s.Alpha.SrcFactor, err = lookup("blend factor", b.SrcAlpha, blendFactors); err != nil {
		return nil, err
	}
	if s.Alpha.DstFactor, err = lookup("blend factor", b.DstAlpha, blendFactors); err != nil {
		return nil, err
	}
	if s.Alpha.Operation, err = lookup("blend op", b.AlphaOp, blendOps); err != nil {
		return nil, err
	}
	return &s, nil
}
