package snapshot

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Ordered is a JSON object keyed by string that remembers the order in which
// its keys appeared in the document. The zero value is an empty, usable map;
// lookups against a missing key return the zero value of V.
type Ordered[V any] struct {
	m *orderedmap.OrderedMap[string, V]
}

// Counts maps a ticker or subreddit to an integer count.
type Counts = Ordered[int]

// Entry is a single key/value pair of an Ordered map.
type Entry[V any] struct {
	Key   string
	Value V
}

// OrderedOf builds an Ordered map from entries, keeping their order. A
// repeated key keeps its first position and takes the last value.
func OrderedOf[V any](entries ...Entry[V]) Ordered[V] {
	var o Ordered[V]
	for _, e := range entries {
		o.Set(e.Key, e.Value)
	}
	return o
}

// Set stores value under key. New keys are appended at the end.
func (o *Ordered[V]) Set(key string, value V) {
	if o.m == nil {
		o.m = orderedmap.New[string, V]()
	}
	o.m.Set(key, value)
}

// Get returns the value stored under key and whether it was present.
func (o Ordered[V]) Get(key string) (V, bool) {
	if o.m == nil {
		var zero V
		return zero, false
	}
	return o.m.Get(key)
}

// Value returns the value stored under key, or the zero value.
func (o Ordered[V]) Value(key string) V {
	v, _ := o.Get(key)
	return v
}

// Len returns the number of keys.
func (o Ordered[V]) Len() int {
	if o.m == nil {
		return 0
	}
	return o.m.Len()
}

// Entries returns all pairs in insertion order.
func (o Ordered[V]) Entries() []Entry[V] {
	if o.m == nil {
		return nil
	}
	out := make([]Entry[V], 0, o.m.Len())
	for p := o.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, Entry[V]{Key: p.Key, Value: p.Value})
	}
	return out
}

// Keys returns all keys in insertion order.
func (o Ordered[V]) Keys() []string {
	if o.m == nil {
		return nil
	}
	out := make([]string, 0, o.m.Len())
	for p := o.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// UnmarshalJSON decodes a JSON object, keeping key order. null leaves the
// map empty.
func (o *Ordered[V]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		o.m = nil
		return nil
	}
	m := orderedmap.New[string, V]()
	if err := m.UnmarshalJSON(trimmed); err != nil {
		return err
	}
	o.m = m
	return nil
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (o Ordered[V]) MarshalJSON() ([]byte, error) {
	if o.m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(o.m)
}
