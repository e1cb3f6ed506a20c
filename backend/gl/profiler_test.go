package gl

import (
	"testing"

	"github.com/gogpu/gfx"
)

func TestProfilerRing(t *testing.T) {
	f := newFakeGL()
	p := NewProfiler(f)
	if got := f.liveCount("query"); got != profilerFrames {
		t.Fatalf("queries = %d, want %d", got, profilerFrames)
	}

	for frame := range profilerFrames + 2 {
		p.Begin()
		got := p.End()
		want := float32(0)
		if frame >= profilerFrames-1 {
			want = 2
		}
		if got != want {
			t.Errorf("frame %d: End() = %v, want %v", frame, got, want)
		}
	}

	// Each result is read from the query issued profilerFrames-1 frames
	// earlier.
	begins := f.named("BeginQuery")
	reads := f.named("GetQueryObjectui64")
	if len(reads) != 3 {
		t.Fatalf("GetQueryObjectui64 calls = %d, want 3", len(reads))
	}
	for i, r := range reads {
		if r.args[0] != begins[i].args[1] {
			t.Errorf("read %d of query %v, want %v", i, r.args[0], begins[i].args[1])
		}
	}

	p.Destroy()
	if got := f.count("DeleteQuery"); got != profilerFrames {
		t.Errorf("DeleteQuery calls = %d, want %d", got, profilerFrames)
	}
	if leaks := f.leaks(); len(leaks) != 0 {
		t.Errorf("queries left: %v", leaks)
	}
}

func TestDeviceLastGPUTime(t *testing.T) {
	d, f := newTestDevice(t, gfx.WithProfiling(true))
	for i := range profilerFrames {
		if got := d.LastGPUTime(); got != 0 {
			t.Fatalf("LastGPUTime() before frame %d = %v, want 0", i, got)
		}
		if err := d.ExecuteCmdBuffers(); err != nil {
			t.Fatal(err)
		}
	}
	if got := d.LastGPUTime(); got != 2 {
		t.Errorf("LastGPUTime() = %v, want 2", got)
	}
	if got := f.count("BeginQuery"); got != profilerFrames {
		t.Errorf("BeginQuery calls = %d, want %d", got, profilerFrames)
	}

	plain, pf := newTestDevice(t)
	if err := plain.ExecuteCmdBuffers(); err != nil {
		t.Fatal(err)
	}
	if pf.count("BeginQuery") != 0 || plain.LastGPUTime() != 0 {
		t.Error("device without profiling issued timer queries")
	}
}
