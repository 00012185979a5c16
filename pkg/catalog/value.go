package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Value is one message catalog entry. Permitted variants are a plain
// translated string or a nested mapping of the same shape. Any other JSON
// value (number, boolean, array, null) is invalid; it is preserved
// verbatim so a save never destroys data, reported via Catalog.Validate,
// and never merged over.
//
// Nested mappings keep insertion order so catalog writes stay diffable.
type Value struct {
	str      string
	children *orderedmap.OrderedMap[string, *Value]
	raw      json.RawMessage
}

// String returns a string-valued entry.
func String(s string) *Value {
	return &Value{str: s}
}

// Object returns an empty nested entry.
func Object() *Value {
	return &Value{children: orderedmap.New[string, *Value]()}
}

// IsString reports whether the entry is a plain string.
func (v *Value) IsString() bool { return v.children == nil && v.raw == nil }

// IsObject reports whether the entry is a nested mapping.
func (v *Value) IsObject() bool { return v.children != nil }

// IsInvalid reports whether the entry holds a preserved invalid value.
func (v *Value) IsInvalid() bool { return v.raw != nil }

// Text returns the string content. Empty for non-string entries.
func (v *Value) Text() string { return v.str }

// Raw returns the preserved bytes of an invalid entry, nil otherwise.
func (v *Value) Raw() json.RawMessage { return v.raw }

// Child returns the nested entry for key, or nil.
func (v *Value) Child(key string) *Value {
	if v.children == nil {
		return nil
	}
	child, _ := v.children.Get(key)
	return child
}

// SetChild sets the nested entry for key, appending it in order when new.
// Panics if v is not an object; callers check IsObject first.
func (v *Value) SetChild(key string, child *Value) {
	v.children.Set(key, child)
}

// Len returns the number of direct children of an object entry.
func (v *Value) Len() int {
	if v.children == nil {
		return 0
	}
	return v.children.Len()
}

// Clone deep-copies the entry.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	out := &Value{str: v.str}
	if v.raw != nil {
		out.raw = append(json.RawMessage(nil), v.raw...)
	}
	if v.children != nil {
		out.children = orderedmap.New[string, *Value]()
		for pair := v.children.Oldest(); pair != nil; pair = pair.Next() {
			out.children.Set(pair.Key, pair.Value.Clone())
		}
	}
	return out
}

// Equal reports deep equality including child order.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.IsInvalid() != o.IsInvalid() || v.IsObject() != o.IsObject() {
		return false
	}
	if v.IsInvalid() {
		return bytes.Equal(v.raw, o.raw)
	}
	if !v.IsObject() {
		return v.str == o.str
	}
	if v.children.Len() != o.children.Len() {
		return false
	}
	vp, op := v.children.Oldest(), o.children.Oldest()
	for vp != nil && op != nil {
		if vp.Key != op.Key || !vp.Value.Equal(op.Value) {
			return false
		}
		vp, op = vp.Next(), op.Next()
	}
	return true
}

// MarshalJSON writes the entry back in its original shape.
func (v *Value) MarshalJSON() ([]byte, error) {
	if v.raw != nil {
		return v.raw, nil
	}
	if v.children != nil {
		return json.Marshal(v.children)
	}
	return json.Marshal(v.str)
}

// UnmarshalJSON accepts a string or a nested object; anything else is
// kept as a preserved invalid value rather than failing the whole load.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty message value")
	}

	v.str, v.children, v.raw = "", nil, nil

	switch trimmed[0] {
	case '"':
		return json.Unmarshal(trimmed, &v.str)
	case '{':
		om := orderedmap.New[string, *Value]()
		if err := json.Unmarshal(trimmed, om); err != nil {
			return err
		}
		v.children = om
		return nil
	default:
		v.raw = append(json.RawMessage(nil), trimmed...)
		return nil
	}
}
