package domain

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// AttrKind discriminates the shapes a loosely-typed product attribute can take.
type AttrKind int

const (
	// AttrAbsent means the attribute was missing or null in the source record.
	AttrAbsent AttrKind = iota
	// AttrList is an ordered list of values.
	AttrList
	// AttrMap is a key-value mapping.
	AttrMap
)

// AttrPair is a single key-value entry of a mapping attribute.
type AttrPair struct {
	Key   string
	Value string
}

// Attr is a sum type over {absent, list-of-string, map-of-string-to-string}.
// Catalog records carry features/tags/specs in any of these shapes; Attr
// normalizes them at decode time so the rest of the code never inspects
// runtime shapes.
type Attr struct {
	kind  AttrKind
	items []string
	pairs []AttrPair
}

// AttrOf builds a list attribute.
func AttrOf(items ...string) Attr {
	if len(items) == 0 {
		return Attr{}
	}
	return Attr{kind: AttrList, items: items}
}

// AttrMapOf builds a mapping attribute preserving the given pair order.
func AttrMapOf(pairs ...AttrPair) Attr {
	if len(pairs) == 0 {
		return Attr{}
	}
	return Attr{kind: AttrMap, pairs: pairs}
}

// Kind returns the attribute shape.
func (a Attr) Kind() AttrKind { return a.kind }

// IsZero reports whether the attribute is absent.
func (a Attr) IsZero() bool { return a.kind == AttrAbsent }

// Render converts the attribute to text, total over all shapes:
// absent -> "", list -> comma-joined, map -> "key: value" comma-joined.
func (a Attr) Render() string {
	switch a.kind {
	case AttrList:
		return strings.Join(a.items, ", ")
	case AttrMap:
		parts := make([]string, 0, len(a.pairs))
		for _, p := range a.pairs {
			parts = append(parts, p.Key+": "+p.Value)
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// UnmarshalJSON accepts null, a scalar, an array of scalars, or an object.
// Scalar values are coerced to strings; object keys are sorted so rendering
// stays deterministic regardless of map iteration order.
func (a *Attr) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*a = Attr{}
		return nil
	}

	switch trimmed[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		items := make([]string, 0, len(raw))
		for _, r := range raw {
			if s, ok := scalarString(r); ok && s != "" {
				items = append(items, s)
			}
		}
		*a = AttrOf(items...)
		return nil

	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]AttrPair, 0, len(keys))
		for _, k := range keys {
			s, ok := scalarString(raw[k])
			if !ok || s == "" {
				continue
			}
			pairs = append(pairs, AttrPair{Key: k, Value: s})
		}
		*a = AttrMapOf(pairs...)
		return nil

	default:
		if s, ok := scalarString(data); ok && s != "" {
			*a = AttrOf(s)
			return nil
		}
		*a = Attr{}
		return nil
	}
}

// MarshalJSON emits the attribute in its source shape.
func (a Attr) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case AttrList:
		return json.Marshal(a.items)
	case AttrMap:
		m := make(map[string]string, len(a.pairs))
		for _, p := range a.pairs {
			m[p.Key] = p.Value
		}
		return json.Marshal(m)
	default:
		return []byte("null"), nil
	}
}

// scalarString coerces a JSON scalar to a string.
func scalarString(data []byte) (string, bool) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return strings.TrimSpace(s), true
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		return strconv.FormatBool(b), true
	}
	return "", false
}
