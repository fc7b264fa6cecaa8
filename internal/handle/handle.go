// Package handle provides generational resource handles.
//
// A Handle packs a 32-bit slot index in the low bits and a 32-bit
// generation in the high bits. Releasing a handle bumps its slot's
// generation, so a stale handle never matches a live one even after the
// slot is reused. Slot 0 is reserved: the zero Handle is always invalid.
package handle

import (
	"fmt"
	"math"
	"strconv"
)

// Handle identifies a slot in a Pool.
type Handle uint64

// Invalid is the zero handle.
const Invalid Handle = 0

// New packs an index and generation.
func New(index, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

// Index returns the slot index.
func (h Handle) Index() uint32 { return uint32(h) }

// Generation returns the slot generation the handle was issued with.
func (h Handle) Generation() uint32 { return uint32(h >> 32) }

// String renders h as 16 lowercase hex digits.
func (h Handle) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}

// Parse decodes the String form. Anything else is rejected.
func Parse(s string) (Handle, error) {
	if len(s) != 16 {
		return Invalid, fmt.Errorf("handle: malformed %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return Invalid, fmt.Errorf("handle: malformed %q: %w", s, err)
	}
	return Handle(v), nil
}

// Pool allocates handles from a free list of slots.
// Pool is not safe for concurrent use; the owner serializes access.
type Pool struct {
	generations []uint32
	alive       []bool
	freeList    []uint32
	live        int
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	// Slot 0 is never handed out.
	return &Pool{
		generations: make([]uint32, 1, 64),
		alive:       make([]bool, 1, 64),
		freeList:    make([]uint32, 0, 16),
	}
}

// Acquire returns a fresh handle.
func (p *Pool) Acquire() Handle {
	p.live++
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		p.alive[idx] = true
		return New(idx, p.generations[idx])
	}
	idx := uint32(len(p.generations))
	p.generations = append(p.generations, 0)
	p.alive = append(p.alive, true)
	return New(idx, 0)
}

func (p *Pool) known(h Handle) bool {
	idx := h.Index()
	return idx != 0 && int(idx) < len(p.generations)
}

// Alive reports whether h is the current handle of a live slot.
func (p *Pool) Alive(h Handle) bool {
	if !p.known(h) {
		return false
	}
	idx := h.Index()
	return p.alive[idx] && p.generations[idx] == h.Generation()
}

// Stale reports whether h was issued by this pool and has since been
// released.
func (p *Pool) Stale(h Handle) bool {
	if !p.known(h) || p.Alive(h) {
		return false
	}
	return h.Generation() <= p.generations[h.Index()]
}

// Release invalidates h. Releasing a stale or unknown handle is a no-op
// and reports false.
func (p *Pool) Release(h Handle) bool {
	if !p.Alive(h) {
		return false
	}
	idx := h.Index()
	p.alive[idx] = false
	p.live--
	if p.generations[idx] == math.MaxUint32 {
		// Retire the slot rather than wrap the generation.
		return true
	}
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
	return true
}

// Len returns the number of live handles.
func (p *Pool) Len() int { return p.live }
