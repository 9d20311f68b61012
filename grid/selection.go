package grid

// Selection is an immutable set of selected row keys. Keys are stable
// identities, so a selection survives sorting and filtering: a key whose
// row is filtered out stays selected and shows up selected again when the
// filter is relaxed.
//
// The zero value is an empty selection. Every transition returns a new
// Selection and leaves the receiver untouched.
type Selection[K comparable] struct {
	keys map[K]struct{}
}

// NewSelection returns a selection holding keys.
func NewSelection[K comparable](keys ...K) Selection[K] {
	s := Selection[K]{keys: make(map[K]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

// Toggle flips the membership of key.
func (s Selection[K]) Toggle(key K) Selection[K] {
	next := s.clone(len(s.keys) + 1)
	if _, ok := next.keys[key]; ok {
		delete(next.keys, key)
	} else {
		next.keys[key] = struct{}{}
	}
	return next
}

// SelectAll returns a selection holding exactly keys. Callers pass the
// keys of the currently filtered rows, not the whole source.
func (s Selection[K]) SelectAll(keys []K) Selection[K] {
	return NewSelection(keys...)
}

// Clear returns an empty selection.
func (s Selection[K]) Clear() Selection[K] {
	return Selection[K]{}
}

// Has reports whether key is selected.
func (s Selection[K]) Has(key K) bool {
	_, ok := s.keys[key]
	return ok
}

// Len returns the number of selected keys.
func (s Selection[K]) Len() int {
	return len(s.keys)
}

// ContainsAll reports whether every key in keys is selected. It is false
// for an empty keys slice.
func (s Selection[K]) ContainsAll(keys []K) bool {
	if len(keys) == 0 {
		return false
	}
	for _, k := range keys {
		if !s.Has(k) {
			return false
		}
	}
	return true
}

// Keys returns the selected keys in no particular order.
func (s Selection[K]) Keys() []K {
	out := make([]K, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	return out
}

func (s Selection[K]) clone(capacity int) Selection[K] {
	next := Selection[K]{keys: make(map[K]struct{}, capacity)}
	for k := range s.keys {
		next.keys[k] = struct{}{}
	}
	return next
}
