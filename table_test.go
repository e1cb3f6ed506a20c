package gfx

import (
	"errors"
	"sync"
	"testing"
)

func TestTableInsertGet(t *testing.T) {
	tbl := NewTable[BufferHandle, string]("buffer")

	a, err := tbl.Insert("a")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	b, err := tbl.Insert("b")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if !a.IsValid() || !b.IsValid() {
		t.Fatalf("Insert returned invalid handle: %v, %v", a, b)
	}
	if a == b {
		t.Fatalf("handles collide: %v", a)
	}

	got, err := tbl.Get(b)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "b" {
		t.Errorf("Get(b) = %q, want %q", got, "b")
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
}

func TestTableInvalidHandles(t *testing.T) {
	tbl := NewTable[TextureHandle, int]("texture")
	h, _ := tbl.Insert(7)

	tests := []struct {
		name string
		h    TextureHandle
		want error
	}{
		{"zero", 0, ErrInvalidHandle},
		{"never issued index", TextureHandle(makeHandle(42, 1)), ErrInvalidHandle},
		{"future generation", TextureHandle(makeHandle(Handle(h).Index(), 9)), ErrInvalidHandle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tbl.Get(tt.h); !errors.Is(err, tt.want) {
				t.Errorf("Get(%v) error = %v, want %v", tt.h, err, tt.want)
			}
		})
	}
}

func TestTableRemoveMakesHandleStale(t *testing.T) {
	tbl := NewTable[SamplerHandle, int]("sampler")
	h, _ := tbl.Insert(1)

	v, err := tbl.Remove(h)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if v != 1 {
		t.Errorf("Remove returned %d, want 1", v)
	}
	if _, err := tbl.Get(h); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("Get after Remove error = %v, want ErrStaleHandle", err)
	}
	if _, err := tbl.Remove(h); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("second Remove error = %v, want ErrStaleHandle", err)
	}
	if tbl.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tbl.Len())
	}
}

func TestTableReuseBumpsGeneration(t *testing.T) {
	tbl := NewTable[PipelineHandle, string]("pipeline")
	old, _ := tbl.Insert("old")
	_, _ = tbl.Remove(old)

	fresh, err := tbl.Insert("new")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if Handle(fresh).Index() != Handle(old).Index() {
		t.Fatalf("slot not reused: old %v, new %v", old, fresh)
	}
	if fresh == old {
		t.Fatalf("reused slot issued identical handle %v", fresh)
	}
	if _, err := tbl.Get(old); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("Get(old) error = %v, want ErrStaleHandle", err)
	}
	if got, _ := tbl.Get(fresh); got != "new" {
		t.Errorf("Get(fresh) = %q, want %q", got, "new")
	}
}

func TestTableRetiresWrappedSlot(t *testing.T) {
	tbl := NewTable[BufferHandle, int]("buffer")
	seen := make(map[BufferHandle]bool)

	for i := 0; i < maxGeneration; i++ {
		h, err := tbl.Insert(i)
		if err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
		if seen[h] {
			t.Fatalf("handle %v issued twice", h)
		}
		seen[h] = true
		if Handle(h).Index() != 0 {
			t.Fatalf("Insert %d used slot %d, want 0", i, Handle(h).Index())
		}
		if _, err := tbl.Remove(h); err != nil {
			t.Fatalf("Remove %d: %v", i, err)
		}
	}

	h, err := tbl.Insert(-1)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if Handle(h).Index() != 1 {
		t.Errorf("exhausted slot reused: got index %d, want 1", Handle(h).Index())
	}
	if seen[h] {
		t.Errorf("handle %v issued twice", h)
	}
}

func TestTableUpdate(t *testing.T) {
	tbl := NewTable[BufferHandle, []byte]("buffer")
	h, _ := tbl.Insert(make([]byte, 4))

	err := tbl.Update(h, func(b *[]byte) error {
		(*b)[0] = 0xAA
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := tbl.Get(h)
	if got[0] != 0xAA {
		t.Errorf("Update not visible: got %#x", got[0])
	}

	sentinel := errors.New("boom")
	if err := tbl.Update(h, func(*[]byte) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Errorf("Update error = %v, want %v", err, sentinel)
	}
	if err := tbl.Update(0, func(*[]byte) error { return nil }); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Update(0) error = %v, want ErrInvalidHandle", err)
	}
}

func TestTableDrainAndEach(t *testing.T) {
	tbl := NewTable[TextureHandle, int]("texture")
	var handles []TextureHandle
	for i := range 5 {
		h, _ := tbl.Insert(i)
		handles = append(handles, h)
	}
	_, _ = tbl.Remove(handles[2])

	sum := 0
	tbl.Each(func(_ TextureHandle, v int) { sum += v })
	if sum != 0+1+3+4 {
		t.Errorf("Each sum = %d, want 8", sum)
	}

	drained := tbl.Drain()
	if len(drained) != 4 {
		t.Fatalf("Drain returned %d values, want 4", len(drained))
	}
	if tbl.Len() != 0 {
		t.Errorf("Len after Drain = %d, want 0", tbl.Len())
	}
	for _, h := range handles {
		if _, err := tbl.Get(h); !errors.Is(err, ErrStaleHandle) {
			t.Errorf("Get(%v) after Drain error = %v, want ErrStaleHandle", h, err)
		}
	}
}

func TestTableConcurrentInsert(t *testing.T) {
	tbl := NewTable[BufferHandle, int]("buffer")
	const goroutines, perG = 8, 200

	var mu sync.Mutex
	seen := make(map[BufferHandle]bool)
	var wg sync.WaitGroup
	for g := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perG {
				h, err := tbl.Insert(g*perG + i)
				if err != nil {
					t.Errorf("Insert: %v", err)
					return
				}
				mu.Lock()
				if seen[h] {
					t.Errorf("handle %v issued twice", h)
				}
				seen[h] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if tbl.Len() != goroutines*perG {
		t.Errorf("Len() = %d, want %d", tbl.Len(), goroutines*perG)
	}
}

func TestHandleString(t *testing.T) {
	if got := InvalidHandle.String(); got != "invalid" {
		t.Errorf("InvalidHandle.String() = %q", got)
	}
	h := BufferHandle(makeHandle(3, 1))
	if got := h.String(); got != "buffer 3#1" {
		t.Errorf("String() = %q, want %q", got, "buffer 3#1")
	}
	if Handle(h).Index() != 3 || Handle(h).Generation() != 1 {
		t.Errorf("Index/Generation = %d/%d, want 3/1", Handle(h).Index(), Handle(h).Generation())
	}
}
