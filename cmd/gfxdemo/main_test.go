package main

import (
	"encoding/binary"
	"errors"
	"flag"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/internal/config"
)

func TestParseFlagsDefaults(t *testing.T) {
	opts, err := parseFlags(nil)
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if opts.cfg != config.Default() || opts.frames != 0 || opts.verbose {
		t.Errorf("parseFlags() = %+v, want defaults", opts)
	}
}

func TestParseFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.toml")
	content := "width = 320\nheight = 240\ntitle = \"from file\"\nvsync = false\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	opts, err := parseFlags([]string{
		"-config", path,
		"-height", "200",
		"-clear", "0, 0.5, 1, 1",
		"-capture", "first.png",
		"-frames", "3",
		"-v",
	})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	want := config.Default()
	want.Width = 320
	want.Height = 200
	want.Title = "from file"
	want.VSync = false
	want.ClearColor = [4]float32{0, 0.5, 1, 1}
	want.Capture = "first.png"
	if opts.cfg != want {
		t.Errorf("cfg = %+v, want %+v", opts.cfg, want)
	}
	if opts.frames != 3 || !opts.verbose {
		t.Errorf("frames = %d verbose = %v, want 3 true", opts.frames, opts.verbose)
	}
}

func TestParseFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad width", []string{"-width", "0"}},
		{"bad clear", []string{"-clear", "1,2"}},
		{"clear not a number", []string{"-clear", "a,b,c,d"}},
		{"clear out of range", []string{"-clear", "0,0,0,3"}},
		{"negative frames", []string{"-frames", "-1"}},
		{"bad capture format", []string{"-capture", "frame.gif"}},
		{"missing config", []string{"-config", filepath.Join(t.TempDir(), "none.toml")}},
		{"unknown flag", []string{"-fullscreen"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseFlags(tt.args); err == nil {
				t.Errorf("parseFlags(%v) error = nil", tt.args)
			}
		})
	}
	if _, err := parseFlags([]string{"-h"}); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("parseFlags(-h) error = %v, want flag.ErrHelp", err)
	}
}

func TestParseColor(t *testing.T) {
	got, err := parseColor("0.25,0.5,0.75,1")
	if err != nil {
		t.Fatalf("parseColor() error = %v", err)
	}
	if want := [4]float32{0.25, 0.5, 0.75, 1}; got != want {
		t.Errorf("parseColor() = %v, want %v", got, want)
	}
}

func TestVertexData(t *testing.T) {
	data := vertexData(triangle)
	if len(data) != len(triangle)*vertexStride {
		t.Fatalf("len(vertexData()) = %d, want %d", len(data), len(triangle)*vertexStride)
	}
	for i, v := range triangle {
		row := data[i*vertexStride:]
		for j := range 3 {
			if got := math.Float32frombits(binary.LittleEndian.Uint32(row[j*4:])); got != v.pos[j] {
				t.Errorf("vertex %d pos[%d] = %v, want %v", i, j, got, v.pos[j])
			}
		}
		if got := [4]uint8(row[12:16]); got != v.color {
			t.Errorf("vertex %d color = %v, want %v", i, got, v.color)
		}
	}
}

func TestMatrixBytes(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3)
	b := matrixBytes(m)
	if len(b) != 64 {
		t.Fatalf("len(matrixBytes()) = %d, want 64", len(b))
	}
	// Column-major: the translation is in elements 12..14.
	for i, want := range []float32{1, 2, 3} {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(b[(12+i)*4:])); got != want {
			t.Errorf("element %d = %v, want %v", 12+i, got, want)
		}
	}
}

func TestMVPCentersOrigin(t *testing.T) {
	clip := mvp(0.7, 4.0/3).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if math.Abs(float64(clip.X())) > 1e-5 || math.Abs(float64(clip.Y())) > 1e-5 {
		t.Errorf("origin in clip space = %v, want centered", clip)
	}
	if clip.W() <= 0 {
		t.Errorf("clip w = %v, want in front of the camera", clip.W())
	}
}

func TestSceneFrame(t *testing.T) {
	s := &scene{
		cb:         gfx.NewCmdBuffer(),
		vb:         1,
		pipe:       2,
		pass:       3,
		raster:     4,
		depthState: 5,
		blend:      6,
		width:      4,
		height:     2,
	}
	var types []gfx.CommandType
	for frame := range 2 {
		cb, err := s.frame(float32(frame))
		if err != nil {
			t.Fatalf("frame() error = %v", err)
		}
		streams, err := gfx.Streams([]*gfx.CmdBuffer{cb})
		if err != nil {
			t.Fatalf("Streams() error = %v", err)
		}
		types = types[:0]
		err = gfx.Walk(streams[0], func(c gfx.Command) error {
			types = append(types, c.Type())
			if pc, ok := c.(gfx.BindPushConstantsCommand); ok && len(pc.Data) != 64 {
				t.Errorf("push constants = %d bytes, want 64", len(pc.Data))
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
	}
	want := []gfx.CommandType{
		gfx.CmdBindRenderPass,
		gfx.CmdSetRasterizerState,
		gfx.CmdSetDepthStencilState,
		gfx.CmdSetBlendState,
		gfx.CmdBindPipeline,
		gfx.CmdBindPushConstants,
		gfx.CmdBindVertexBuffer,
		gfx.CmdDraw,
	}
	if !reflect.DeepEqual(types, want) {
		t.Errorf("commands = %v, want %v", types, want)
	}
}
