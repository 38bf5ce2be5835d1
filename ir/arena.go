package ir

import "fmt"

// Handle addresses an entity in its module's arena. A handle whose
// generation no longer matches the arena slot refers to a deleted entity.
type Handle struct {
	Index      uint32
	Generation uint32
}

func (h Handle) String() string {
	return fmt.Sprintf("#%d.%d", h.Index, h.Generation)
}

// arena hands out generation-tagged slots. Releasing a slot bumps its
// generation so stale handles are detected instead of aliasing new entities.
type arena struct {
	gens []uint32
	live []bool
	free []uint32
}

func newArena() *arena {
	return &arena{}
}

func (a *arena) alloc() Handle {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.live[idx] = true
		return Handle{Index: idx, Generation: a.gens[idx]}
	}
	a.gens = append(a.gens, 1)
	a.live = append(a.live, true)
	return Handle{Index: uint32(len(a.gens) - 1), Generation: 1}
}

func (a *arena) release(h Handle) {
	if !a.valid(h) {
		return
	}
	a.gens[h.Index]++
	a.live[h.Index] = false
	a.free = append(a.free, h.Index)
}

func (a *arena) valid(h Handle) bool {
	return int(h.Index) < len(a.gens) && a.live[h.Index] && a.gens[h.Index] == h.Generation
}

// liveCount returns the number of slots currently in use
func (a *arena) liveCount() int {
	return len(a.gens) - len(a.free)
}

// entity is embedded by every arena-allocated value
type entity struct {
	arena  *arena
	handle Handle
}

func (e *entity) attach(a *arena) {
	e.arena = a
	e.handle = a.alloc()
}

func (e *entity) detach() {
	if e.arena != nil {
		e.arena.release(e.handle)
	}
}

// Handle returns the arena handle of the entity
func (e *entity) Handle() Handle { return e.handle }

// IsLive reports whether the entity has been allocated and not deleted
func (e *entity) IsLive() bool {
	return e.arena != nil && e.arena.valid(e.handle)
}
