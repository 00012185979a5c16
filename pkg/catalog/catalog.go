// Package catalog implements the message catalog: an insertion-ordered
// tree of namespaces and message strings addressed by dotted
// fully-qualified keys, its merge semantics, and its JSON persistence.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Catalog is the system of record for translations: fully-qualified keys
// mapped to message values, stored nested. Keys are unique and insertion
// order is preserved on write to keep version-control diffs small.
type Catalog struct {
	root *orderedmap.OrderedMap[string, *Value]
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{root: orderedmap.New[string, *Value]()}
}

// Lookup returns the entry for a fully-qualified key. A literal top-level
// key (a flattened dotted key in the file) wins over the nested path.
func (c *Catalog) Lookup(fullKey string) (*Value, bool) {
	if v, ok := c.root.Get(fullKey); ok {
		return v, true
	}

	segments := strings.Split(fullKey, ".")
	current := c.root
	for i, seg := range segments {
		v, ok := current.Get(seg)
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			return v, true
		}
		if !v.IsObject() {
			return nil, false
		}
		current = v.children
	}
	return nil, false
}

// Set inserts or replaces the entry at a fully-qualified key, creating
// intermediate namespace objects as needed. Returns a *PathConflictError
// when the path crosses an existing non-object entry, or when the target
// itself is an existing namespace object and v is not one; the catalog is
// left unchanged in both cases.
func (c *Catalog) Set(fullKey string, v *Value) error {
	segments := strings.Split(fullKey, ".")
	leaf := segments[len(segments)-1]

	// Conflict check first so a failed insert leaves no half-built path.
	current := c.root
	for i, seg := range segments[:len(segments)-1] {
		child, ok := current.Get(seg)
		if !ok {
			current = nil
			break
		}
		if !child.IsObject() {
			return &PathConflictError{Key: fullKey, At: strings.Join(segments[:i+1], ".")}
		}
		current = child.children
	}
	if current != nil {
		if existing, ok := current.Get(leaf); ok && existing.IsObject() && !v.IsObject() {
			return &PathConflictError{Key: fullKey, At: fullKey}
		}
	}

	current = c.root
	for _, seg := range segments[:len(segments)-1] {
		child, ok := current.Get(seg)
		if !ok {
			child = Object()
			current.Set(seg, child)
		}
		current = child.children
	}
	current.Set(leaf, v)
	return nil
}

// Walk visits every leaf entry (strings and preserved invalid values) in
// catalog order, passing the fully-qualified key.
func (c *Catalog) Walk(fn func(fullKey string, v *Value)) {
	walkObject(c.root, "", fn)
}

func walkObject(om *orderedmap.OrderedMap[string, *Value], prefix string, fn func(string, *Value)) {
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		key := pair.Key
		if prefix != "" {
			key = prefix + "." + pair.Key
		}
		if pair.Value.IsObject() {
			walkObject(pair.Value.children, key, fn)
			continue
		}
		fn(key, pair.Value)
	}
}

// Keys returns the fully-qualified leaf keys in catalog order.
func (c *Catalog) Keys() []string {
	var keys []string
	c.Walk(func(fullKey string, _ *Value) {
		keys = append(keys, fullKey)
	})
	return keys
}

// Len returns the number of leaf entries.
func (c *Catalog) Len() int {
	n := 0
	c.Walk(func(string, *Value) { n++ })
	return n
}

// Clone deep-copies the catalog.
func (c *Catalog) Clone() *Catalog {
	out := New()
	for pair := c.root.Oldest(); pair != nil; pair = pair.Next() {
		out.root.Set(pair.Key, pair.Value.Clone())
	}
	return out
}

// Equal reports deep equality including entry order.
func (c *Catalog) Equal(o *Catalog) bool {
	if c.root.Len() != o.root.Len() {
		return false
	}
	cp, op := c.root.Oldest(), o.root.Oldest()
	for cp != nil && op != nil {
		if cp.Key != op.Key || !cp.Value.Equal(op.Value) {
			return false
		}
		cp, op = cp.Next(), op.Next()
	}
	return true
}

// Validate reports every entry whose value is invalid (neither string
// nor nested object). Such entries are preserved, never merged over.
func (c *Catalog) Validate() []error {
	var errs []error
	c.Walk(func(fullKey string, v *Value) {
		if v.IsInvalid() {
			errs = append(errs, &InvalidValueError{Key: fullKey, Raw: v.Raw()})
		}
	})
	return errs
}

// MarshalJSON writes the catalog as a JSON object in entry order.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.root)
}

// UnmarshalJSON reads a catalog from a JSON object. Any other top-level
// value is an error: merging against an unknown base state is unsafe.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("catalog must be a JSON object")
	}
	om := orderedmap.New[string, *Value]()
	if err := json.Unmarshal(trimmed, om); err != nil {
		return err
	}
	c.root = om
	return nil
}
