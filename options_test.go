package gfx

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

type stubProvider struct{}

func (stubProvider) Device() gpucontext.Device   { return nil }
func (stubProvider) Queue() gpucontext.Queue     { return nil }
func (stubProvider) Adapter() gpucontext.Adapter { return nil }
func (stubProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{}
}
func (stubProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}

func TestNewOptionsDefaults(t *testing.T) {
	o := NewOptions()
	if o.Logger == nil {
		t.Error("Logger is nil, want package logger")
	}
	if o.Debug {
		t.Error("Debug = true, want false")
	}
	if o.Profiling {
		t.Error("Profiling = true, want false")
	}
	if o.Provider != nil {
		t.Errorf("Provider = %v, want nil", o.Provider)
	}
}

func TestNewOptionsApply(t *testing.T) {
	p := stubProvider{}
	o := NewOptions(WithDebug(true), WithProfiling(true), WithDeviceProvider(p), nil)

	if !o.Debug {
		t.Error("Debug = false, want true")
	}
	if !o.Profiling {
		t.Error("Profiling = false, want true")
	}
	if o.Provider != p {
		t.Errorf("Provider = %v, want %v", o.Provider, p)
	}
}

func TestWithCapacity(t *testing.T) {
	tests := []struct {
		name  string
		words int
		want  int
	}{
		{"positive", 64, 64},
		{"zero keeps default", 0, DefaultCapacity},
		{"negative keeps default", -5, DefaultCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := NewCmdBuffer(WithCapacity(tt.words))
			if got := cb.Cap(); got != tt.want {
				t.Errorf("Cap() = %d, want %d", got, tt.want)
			}
		})
	}
}
