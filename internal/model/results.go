package model

import "sort"

// Results is the aggregated outcome of one batch. It is a ResultMap when any
// descriptor in the batch carried an id, and a ResultList otherwise.
type Results interface {
	Destroyable

	// Len returns the number of entries.
	Len() int
}

// ResultMap holds batch results keyed by descriptor id.
type ResultMap map[string]any

// Len implements Results.
func (m ResultMap) Len() int { return len(m) }

// Keys returns the ids in sorted order.
func (m ResultMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Destroy destroys every value in the map.
func (m ResultMap) Destroy() {
	for _, v := range m {
		Destroy(v)
	}
}

// ResultList holds batch results in submission order.
type ResultList []any

// Len implements Results.
func (l ResultList) Len() int { return len(l) }

// Destroy destroys every element.
func (l ResultList) Destroy() {
	for _, v := range l {
		Destroy(v)
	}
}
