package gfx

import (
	"fmt"
	"sync"
)

// Table maps handles of one resource kind to backend resources.
//
// Slots freed by Remove are recycled with a bumped generation, so stale
// handles are reported as ErrStaleHandle rather than aliasing the new
// resource. A slot whose generation would wrap is retired, which keeps
// every handle issued by a table distinct for the table's lifetime.
//
// Table is safe for concurrent use.
type Table[H ~uint32, T any] struct {
	mu    sync.RWMutex
	kind  string
	slots []tableSlot[T]
	free  []uint32
	live  int
}

type tableSlot[T any] struct {
	generation uint32
	live       bool
	value      T
}

// NewTable creates an empty table. kind names the resource in errors.
func NewTable[H ~uint32, T any](kind string) *Table[H, T] {
	return &Table[H, T]{kind: kind}
}

// Insert stores v and returns its new handle.
func (t *Table[H, T]) Insert(v T) (H, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var index uint32
	if len(t.free) > 0 {
		index = t.free[0]
		t.free = t.free[1:]
	} else {
		if len(t.slots) > handleIndexMask {
			return 0, fmt.Errorf("%s table: %w", t.kind, ErrHandleSpaceExhausted)
		}
		//nolint:gosec // G115: bounded by handleIndexMask above
		index = uint32(len(t.slots))
		t.slots = append(t.slots, tableSlot[T]{generation: 1})
	}

	s := &t.slots[index]
	s.live = true
	s.value = v
	t.live++
	return H(makeHandle(index, s.generation)), nil
}

// lookup returns the live slot for h. Callers must hold t.mu.
func (t *Table[H, T]) lookup(h H) (*tableSlot[T], error) {
	hh := Handle(h)
	if !hh.IsValid() || int(hh.Index()) >= len(t.slots) {
		return nil, fmt.Errorf("%s %v: %w", t.kind, hh, ErrInvalidHandle)
	}
	s := &t.slots[hh.Index()]
	if s.generation != hh.Generation() {
		if hh.Generation() < s.generation {
			return nil, fmt.Errorf("%s %v: %w", t.kind, hh, ErrStaleHandle)
		}
		return nil, fmt.Errorf("%s %v: %w", t.kind, hh, ErrInvalidHandle)
	}
	if !s.live {
		return nil, fmt.Errorf("%s %v: %w", t.kind, hh, ErrStaleHandle)
	}
	return s, nil
}

// Get returns the resource stored under h.
func (t *Table[H, T]) Get(h H) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, err := t.lookup(h)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.value, nil
}

// Update calls fn with a pointer to the resource stored under h while the
// table is locked. Changes made through the pointer are kept even if fn
// returns an error.
func (t *Table[H, T]) Update(h H, fn func(*T) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.lookup(h)
	if err != nil {
		return err
	}
	return fn(&s.value)
}

// Remove deletes h and returns the resource it referred to. Removing the
// same handle twice returns ErrStaleHandle the second time.
func (t *Table[H, T]) Remove(h H) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	s, err := t.lookup(h)
	if err != nil {
		return zero, err
	}
	v := s.value
	s.value = zero
	s.live = false
	t.live--

	// Keep the old generation on retired slots so stale handles still
	// resolve to ErrStaleHandle.
	if s.generation < maxGeneration {
		s.generation++
		t.free = append(t.free, Handle(h).Index())
	}
	return v, nil
}

// Len returns the number of live resources.
func (t *Table[H, T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live
}

// Each calls fn for every live resource in slot order.
func (t *Table[H, T]) Each(fn func(H, T)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := range t.slots {
		s := &t.slots[i]
		if s.live {
			//nolint:gosec // G115: slot count is bounded by handleIndexMask
			fn(H(makeHandle(uint32(i), s.generation)), s.value)
		}
	}
}

// Drain removes every live resource and returns them in slot order.
// Handles issued before Drain become stale.
func (t *Table[H, T]) Drain() []T {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]T, 0, t.live)
	var zero T
	for i := range t.slots {
		s := &t.slots[i]
		if !s.live {
			continue
		}
		out = append(out, s.value)
		s.value = zero
		s.live = false
		if s.generation < maxGeneration {
			s.generation++
			//nolint:gosec // G115: slot count is bounded by handleIndexMask
			t.free = append(t.free, uint32(i))
		}
	}
	t.live = 0
	return out
}
