package catalog

import (
	"encoding/json"
	"fmt"
)

// InvalidValueError reports a catalog entry whose value is neither a
// string nor a nested mapping. Fatal for that entry only: the entry is
// preserved verbatim and excluded from merging.
type InvalidValueError struct {
	Key string
	Raw json.RawMessage
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("catalog entry %q: value must be a string or nested object, got %s", e.Key, e.Raw)
}

// PathConflictError reports a dotted key whose path crosses an existing
// entry that is not a nested object (e.g. inserting "A.x.y" when "A.x"
// is a string). The existing entry is left untouched.
type PathConflictError struct {
	Key string // the key being inserted
	At  string // the prefix occupied by a non-object entry
}

func (e *PathConflictError) Error() string {
	return fmt.Sprintf("key %q conflicts with existing non-object entry at %q", e.Key, e.At)
}
