package wgpu

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx"
)

// Default WGSL entry points.
const (
	DefaultVertexEntry   = "vs_main"
	DefaultFragmentEntry = "fs_main"
)

// binding is one entry of a pipeline's bind group 0.
type binding struct {
	kind       gfx.BindingKind
	slot       uint32
	binding    uint32
	visibility gputypes.ShaderStages
}

// vertexSlot collects the attributes read from one vertex buffer slot.
type vertexSlot struct {
	used     bool
	stride   uint32
	stepMode gputypes.VertexStepMode
	attribs  []gputypes.VertexAttribute
}

type pipeline struct {
	label    string
	vertex   hal.ShaderModule
	fragment hal.ShaderModule
	vsEntry  string
	fsEntry  string

	topology gputypes.PrimitiveTopology
	slots    []vertexSlot
	bindings []binding
}

func (p *pipeline) release(device hal.Device) {
	if p.fragment != nil && p.fragment != p.vertex {
		device.DestroyShaderModule(p.fragment)
	}
	if p.vertex != nil {
		device.DestroyShaderModule(p.vertex)
	}
}

func (p *pipeline) hasPushConstants() bool {
	return slices.ContainsFunc(p.bindings, func(b binding) bool { return b.kind == gfx.BindingPushConstants })
}

// CreatePipeline implements gfx.Device. Shader stages are checked with naga
// and turned into HAL shader modules; the render pipeline itself is built
// on first use, when the state blocks and attachment formats are known.
func (d *Device) CreatePipeline(desc gfx.PipelineDesc) (gfx.PipelineHandle, error) {
	if err := d.alive(); err != nil {
		return 0, err
	}
	if err := desc.Validate(); err != nil {
		return 0, fmt.Errorf("wgpu: create pipeline: %w", err)
	}
	if len(desc.InputLayout) > d.caps.MaxVertexBuffers {
		return 0, fmt.Errorf("wgpu: create pipeline: %w: %d vertex attributes, max %d",
			gfx.ErrInvalidDescriptor, len(desc.InputLayout), d.caps.MaxVertexBuffers)
	}
	if _, ok := desc.Shader(gfx.StageGeometry); ok {
		return 0, fmt.Errorf("wgpu: create pipeline: %w: geometry stage is not supported by wgpu", gfx.ErrInvalidDescriptor)
	}

	p := pipeline{label: desc.Label}
	var err error
	if p.topology, err = lookup("topology", desc.Topology, primitiveTopologies); err != nil {
		return 0, fmt.Errorf("wgpu: create pipeline: %w", err)
	}
	if p.slots, err = vertexSlots(desc.InputLayout); err != nil {
		return 0, fmt.Errorf("wgpu: create pipeline: %w", err)
	}
	if p.bindings, err = d.bindings(desc.Bindings); err != nil {
		return 0, fmt.Errorf("wgpu: create pipeline: %w", err)
	}
	if err := d.createModules(&p, &desc); err != nil {
		p.release(d.device)
		return 0, fmt.Errorf("wgpu: create pipeline %q: %w", desc.Label, err)
	}

	h, err := d.pipelines.Insert(p)
	if err != nil {
		p.release(d.device)
		return 0, fmt.Errorf("wgpu: create pipeline: %w", err)
	}
	d.log.Debug("wgpu: pipeline created", "handle", h, "label", desc.Label, "stages", len(desc.Shaders))
	return h, nil
}

// vertexSlots groups input layout elements by buffer slot. Element i reads
// shader location i. Elements sharing a slot must share a classification.
func vertexSlots(layout []gfx.InputLayoutElement) ([]vertexSlot, error) {
	var slots []vertexSlot
	for i, e := range layout {
		if e.Slot >= maxVertexSlots {
			return nil, fmt.Errorf("%w: input element %d slot %d, max %d", gfx.ErrInvalidDescriptor, i, e.Slot, maxVertexSlots-1)
		}
		format, err := supported("vertex format", e.Format, vertexFormats)
		if err != nil {
			return nil, err
		}
		step := gputypes.VertexStepModeVertex
		if e.Classification == gfx.PerInstance {
			step = gputypes.VertexStepModeInstance
		}
		for int(e.Slot) >= len(slots) {
			slots = append(slots, vertexSlot{stepMode: gputypes.VertexStepModeVertexBufferNotUsed})
		}
		s := &slots[e.Slot]
		if s.used && s.stepMode != step {
			return nil, fmt.Errorf("%w: slot %d mixes per-vertex and per-instance elements", gfx.ErrInvalidDescriptor, e.Slot)
		}
		s.used, s.stepMode = true, step
		if s.stride == 0 {
			s.stride = e.Stride
		}
		s.attribs = append(s.attribs, gputypes.VertexAttribute{
			Format:         format,
			Offset:         uint64(e.Offset),
			ShaderLocation: uint32(i), //nolint:gosec // G115: bounded by MaxVertexBuffers
		})
	}
	// A zero stride means tightly packed attributes.
	for i := range slots {
		s := &slots[i]
		if !s.used || s.stride != 0 {
			continue
		}
		for _, a := range s.attribs {
			s.stride = max(s.stride, uint32(a.Offset+a.Format.Size())) //nolint:gosec // G115: small offsets
		}
	}
	return slots, nil
}

func (d *Device) bindings(decls []gfx.ResourceBinding) ([]binding, error) {
	out := make([]binding, 0, len(decls))
	seen := make(map[uint32]bool, len(decls))
	for _, b := range decls {
		vis, err := shaderStages(b.Stages)
		if err != nil {
			return nil, err
		}
		e := binding{kind: b.Kind, slot: b.Slot, visibility: vis}
		switch b.Kind {
		case gfx.BindingConstantBuffer:
			if b.Slot >= uint32(d.caps.MaxConstantBuffers) { //nolint:gosec // G115: caps are small and positive
				return nil, fmt.Errorf("%w: constant buffer slot %d, max %d", gfx.ErrInvalidDescriptor, b.Slot, d.caps.MaxConstantBuffers-1)
			}
			e.binding = b.Slot
		case gfx.BindingPushConstants:
			e.slot, e.binding = 0, PushConstantBinding
		case gfx.BindingTexture:
			if b.Slot >= uint32(d.caps.MaxTextureUnits) { //nolint:gosec // G115: caps are small and positive
				return nil, fmt.Errorf("%w: texture slot %d, max %d", gfx.ErrInvalidDescriptor, b.Slot, d.caps.MaxTextureUnits-1)
			}
			e.binding = textureBindingBase + b.Slot
		case gfx.BindingSampler:
			if b.Slot >= maxSamplerSlots {
				return nil, fmt.Errorf("%w: sampler slot %d, max %d", gfx.ErrInvalidDescriptor, b.Slot, maxSamplerSlots-1)
			}
			e.binding = samplerBindingBase + b.Slot
		default:
			return nil, fmt.Errorf("%w: binding kind %d", gfx.ErrInvalidDescriptor, b.Kind)
		}
		if seen[e.binding] {
			return nil, fmt.Errorf("%w: %v slot %d declared twice", gfx.ErrInvalidDescriptor, b.Kind, b.Slot)
		}
		seen[e.binding] = true
		out = append(out, e)
	}
	return out, nil
}

// createModules compiles the vertex and optional fragment stage. Stages
// with identical source share one module.
func (d *Device) createModules(p *pipeline, desc *gfx.PipelineDesc) error {
	vs, _ := desc.Shader(gfx.StageVertex)
	p.vsEntry = entryPoint(vs, DefaultVertexEntry)
	module, err := d.shaderModule(desc.Label, vs, p.vsEntry, ir.StageVertex)
	if err != nil {
		return err
	}
	p.vertex = module

	fs, ok := desc.Shader(gfx.StageFragment)
	if !ok {
		return nil
	}
	p.fsEntry = entryPoint(fs, DefaultFragmentEntry)
	if fs.Source == vs.Source {
		if err := d.checkShader(fs, p.fsEntry, ir.StageFragment); err != nil {
			return err
		}
		p.fragment = p.vertex
		return nil
	}
	p.fragment, err = d.shaderModule(desc.Label, fs, p.fsEntry, ir.StageFragment)
	return err
}

func entryPoint(s gfx.ShaderStageDesc, def string) string {
	if s.EntryPoint != "" {
		return s.EntryPoint
	}
	return def
}

func (d *Device) shaderModule(label string, s gfx.ShaderStageDesc, entry string, stage ir.ShaderStage) (hal.ShaderModule, error) {
	if err := d.checkShader(s, entry, stage); err != nil {
		return nil, err
	}
	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{WGSL: s.Source},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v stage: %w", gfx.ErrShaderCompile, s.Stage, err)
	}
	return module, nil
}

// checkShader runs the naga front end over the stage source and looks up
// its entry point. IR validation runs only in debug mode.
func (d *Device) checkShader(s gfx.ShaderStageDesc, entry string, stage ir.ShaderStage) error {
	ast, err := naga.Parse(s.Source)
	if err != nil {
		return fmt.Errorf("%w: %v stage: %w", gfx.ErrShaderCompile, s.Stage, err)
	}
	module, err := naga.LowerWithSource(ast, s.Source)
	if err != nil {
		return fmt.Errorf("%w: %v stage: %w", gfx.ErrShaderCompile, s.Stage, err)
	}
	if d.debug {
		verrs, err := naga.Validate(module)
		if err != nil {
			return fmt.Errorf("%w: %v stage: %w", gfx.ErrShaderCompile, s.Stage, err)
		}
		if len(verrs) > 0 {
			msgs := make([]string, len(verrs))
			for i, e := range verrs {
				msgs[i] = e.Error()
			}
			return fmt.Errorf("%w: %v stage: %s", gfx.ErrShaderCompile, s.Stage, strings.Join(msgs, "; "))
		}
	}

	var names []string
	for _, ep := range module.EntryPoints {
		if ep.Name == entry {
			if ep.Stage != stage {
				return fmt.Errorf("%w: entry point %q is not a %v shader", gfx.ErrShaderLink, entry, s.Stage)
			}
			return nil
		}
		names = append(names, ep.Name)
	}
	return fmt.Errorf("%w: %v stage has no entry point %q (have %s)",
		gfx.ErrShaderLink, s.Stage, entry, strings.Join(names, ", "))
}

// DeletePipeline implements gfx.Device. Cached HAL pipelines built from it
// are destroyed too.
func (d *Device) DeletePipeline(h gfx.PipelineHandle) error {
	return remove(d.log, d.pipelines, h, func(p pipeline) {
		d.variants.evict(d.device, h)
		p.release(d.device)
	})
}
