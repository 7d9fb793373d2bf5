package policy

import (
	"encoding/json"
	"fmt"
)

// Value holds a policy field that the wire form writes as either a single
// string or a list of strings. The original shape is remembered so that
// re-serializing a parsed document does not rewrite untouched statements.
type Value struct {
	items  []string
	single bool
}

// NewValue builds a Value from one or more strings. A single item marshals
// as a bare string, matching how the provider writes its own documents.
func NewValue(items ...string) Value {
	return Value{items: items, single: len(items) == 1}
}

// ListValue builds a Value that always marshals as a list, even with one
// item.
func ListValue(items ...string) Value {
	return Value{items: items}
}

// Items returns the contained strings. Empty for a zero Value.
func (v Value) Items() []string {
	return v.items
}

// IsZero reports whether the value is absent, which drops the field from
// the serialized statement.
func (v Value) IsZero() bool {
	return len(v.items) == 0
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.single && len(v.items) == 1 {
		return json.Marshal(v.items[0])
	}
	return json.Marshal(v.items)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v.items = []string{s}
		v.single = true
		return nil
	}
	var items []string
	if err := json.Unmarshal(b, &items); err != nil {
		return fmt.Errorf("policy value must be a string or list of strings: %w", err)
	}
	v.items = items
	v.single = false
	return nil
}
