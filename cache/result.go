package cache

import "unsafe"

// Result is what Get and Add hand back: the key and the value stored under it.
type Result[V any] struct {
	Key   string
	Value V
}

// Size approximates the shallow footprint of the result in bytes. It does
// not follow pointers and is meant for diagnostics only.
func (r *Result[V]) Size() int {
	if r == nil {
		return 0
	}
	return int(unsafe.Sizeof(r.Key)) + len(r.Key) + int(unsafe.Sizeof(r.Value))
}

// Map returns the result as a one-entry map.
func (r *Result[V]) Map() map[string]V {
	if r == nil {
		return nil
	}
	return map[string]V{r.Key: r.Value}
}
