package subset

import (
	"fmt"

	"github.com/cognicore/twentyq/pkg/twentyq/internalerr"
)

// Map holds records of type V keyed by name, plus a shrinking active subset
// of those names. Refine only touches the active subset, so records of
// pruned keys stay readable. Keys enumerate in insertion order in both views.
type Map[V any] struct {
	records map[string]*V
	order   []string
	active  map[string]struct{}
}

// New creates an empty Map.
func New[V any]() *Map[V] {
	return &Map[V]{
		records: make(map[string]*V),
		active:  make(map[string]struct{}),
	}
}

// Put stores record under name and marks name active.
// Re-putting an existing name replaces its record in place without
// changing its position.
func (m *Map[V]) Put(name string, record V) {
	if existing, ok := m.records[name]; ok {
		*existing = record
	} else {
		v := record
		m.records[name] = &v
		m.order = append(m.order, name)
	}
	m.active[name] = struct{}{}
}

// Get returns a copy of the record for name.
func (m *Map[V]) Get(name string) (V, error) {
	rec, ok := m.records[name]
	if !ok {
		var zero V
		return zero, fmt.Errorf("subset: %q: %w", name, internalerr.ErrNotFound)
	}
	return *rec, nil
}

// Ref returns a pointer to the stored record for name so callers can
// mutate it in place.
func (m *Map[V]) Ref(name string) (*V, error) {
	rec, ok := m.records[name]
	if !ok {
		return nil, fmt.Errorf("subset: %q: %w", name, internalerr.ErrNotFound)
	}
	return rec, nil
}

// ContainsKey reports whether name is in the full map.
func (m *Map[V]) ContainsKey(name string) bool {
	_, ok := m.records[name]
	return ok
}

// IsActive reports whether name is still in the active subset.
func (m *Map[V]) IsActive(name string) bool {
	_, ok := m.active[name]
	return ok
}

// Refine drops name from the active subset. The record is kept.
func (m *Map[V]) Refine(name string) {
	delete(m.active, name)
}

// FullKeys returns every key in insertion order.
func (m *Map[V]) FullKeys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// ActiveKeys returns the active keys in insertion order.
func (m *Map[V]) ActiveKeys() []string {
	out := make([]string, 0, len(m.active))
	for _, name := range m.order {
		if _, ok := m.active[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// FullSize returns the number of stored records.
func (m *Map[V]) FullSize() int { return len(m.records) }

// ActiveSize returns the number of active keys.
func (m *Map[V]) ActiveSize() int { return len(m.active) }
