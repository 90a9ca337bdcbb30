// Package dynamic implements the language-neutral argument representation
// that flows from the wire codec through tool execution, cache-key
// hashing, and audit redaction without being re-parsed or re-serialized
// along the way.
package dynamic

import (
	"encoding/json"
	"sort"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	// KindRaw holds the verbatim JSON text of a value the normalizer did
	// not otherwise recognize (spec.md §4.A: "everything else -> the
	// verbatim JSON text").
	KindRaw
)

// Value is a tagged variant over the JSON value space normalized at the
// codec boundary: string -> string, number -> float64, boolean -> bool,
// null -> null, array -> []Value, object -> map[string]Value. Input that
// does not parse as JSON is kept as verbatim text (KindRaw).
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	Str    string
	Array  []Value
	Object map[string]Value
	Raw    string
}

// Map is the normalized form of a tool call's arguments object.
type Map map[string]Value

// FromJSON normalizes one raw JSON value into a Value.
func FromJSON(raw json.RawMessage) Value {
	if len(raw) == 0 {
		return Value{Kind: KindNull}
	}
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Value{Kind: KindRaw, Raw: string(raw)}
	}
	return fromAny(probe)
}

func fromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{Kind: KindNull}
	case bool:
		return Value{Kind: KindBool, Bool: t}
	case float64:
		return Value{Kind: KindNumber, Number: t}
	case string:
		return Value{Kind: KindString, Str: t}
	case []any:
		arr := make([]Value, len(t))
		for i, e := range t {
			arr[i] = fromAny(e)
		}
		return Value{Kind: KindArray, Array: arr}
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, e := range t {
			obj[k] = fromAny(e)
		}
		return Value{Kind: KindObject, Object: obj}
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return Value{Kind: KindNull}
		}
		return Value{Kind: KindRaw, Raw: string(raw)}
	}
}

// MapFromJSON normalizes a raw JSON object's members into a Map. A nil or
// empty raw value yields an empty, non-nil Map.
func MapFromJSON(raw json.RawMessage) Map {
	out := make(Map)
	if len(raw) == 0 {
		return out
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return out
	}
	for k, v := range fields {
		out[k] = FromJSON(v)
	}
	return out
}

// String returns the string form of a KindString value, or "" otherwise.
func (v Value) String() string {
	if v.Kind == KindString {
		return v.Str
	}
	return ""
}

// ToAny converts a Value back into a plain Go value for JSON marshaling.
func (v Value) ToAny() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Number
	case KindString:
		return v.Str
	case KindArray:
		out := make([]any, len(v.Array))
		for i, e := range v.Array {
			out[i] = e.ToAny()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.Object))
		for k, e := range v.Object {
			out[k] = e.ToAny()
		}
		return out
	case KindRaw:
		var raw any
		_ = json.Unmarshal([]byte(v.Raw), &raw)
		return raw
	default:
		return nil
	}
}

// Clone returns a shallow copy: the top-level map is new, but nested
// Array and Object values are shared with m, not copied.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Without returns a copy of m with the given keys removed — used to strip
// reserved keys ("action", "_meta") before cache-key hashing.
func (m Map) Without(keys ...string) Map {
	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}
	out := make(Map, len(m))
	for k, v := range m {
		if _, excluded := drop[k]; excluded {
			continue
		}
		out[k] = v
	}
	return out
}

// SortedKeys returns m's keys in lexicographic order.
func (m Map) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CanonicalJSON serializes m with keys sorted lexicographically and no
// insignificant whitespace, for deterministic cache-key hashing.
func (m Map) CanonicalJSON() []byte {
	keys := m.SortedKeys()
	buf := make([]byte, 0, 64)
	buf = append(buf, '{')
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, _ := json.Marshal(k)
		buf = append(buf, kb...)
		buf = append(buf, ':')
		vb := canonicalValueJSON(m[k])
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf
}

func canonicalValueJSON(v Value) []byte {
	switch v.Kind {
	case KindNull:
		return []byte("null")
	case KindBool:
		b, _ := json.Marshal(v.Bool)
		return b
	case KindNumber:
		b, _ := json.Marshal(v.Number)
		return b
	case KindString:
		b, _ := json.Marshal(v.Str)
		return b
	case KindRaw:
		return []byte(v.Raw)
	case KindArray:
		buf := []byte{'['}
		for i, e := range v.Array {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = append(buf, canonicalValueJSON(e)...)
		}
		buf = append(buf, ']')
		return buf
	case KindObject:
		inner := Map(v.Object)
		return inner.CanonicalJSON()
	default:
		return []byte("null")
	}
}
