package gpubridge

import (
	"fmt"

	"github.com/gogpu/gpubridge/internal/handle"
)

// ID is an opaque resource token scoped to one Registry. It renders a
// generational handle as 16 lowercase hex digits; the empty ID is never
// valid.
type ID string

func idOf(h handle.Handle) ID { return ID(h.String()) }

// lookup resolves id in one kind's map. kindErr is the kind's not-found
// error; released ids also match ErrStaleID. Callers hold r.mu.
func lookup[E any](r *Registry, m map[handle.Handle]E, id ID, kindErr error) (E, handle.Handle, error) {
	var zero E
	h, err := handle.Parse(string(id))
	if err != nil {
		return zero, handle.Invalid, fmt.Errorf("%w: %q", kindErr, id)
	}
	if e, ok := m[h]; ok && r.ids.Alive(h) {
		return e, h, nil
	}
	if r.ids.Stale(h) {
		return zero, h, fmt.Errorf("%w: %s: %w", kindErr, id, ErrStaleID)
	}
	return zero, h, fmt.Errorf("%w: %s", kindErr, id)
}

// peek resolves id for release paths, where a miss is silent.
func peek[E any](r *Registry, m map[handle.Handle]E, id ID) (E, handle.Handle, bool) {
	var zero E
	h, err := handle.Parse(string(id))
	if err != nil {
		return zero, handle.Invalid, false
	}
	e, ok := m[h]
	if !ok || !r.ids.Alive(h) {
		return zero, h, false
	}
	return e, h, true
}
