package plugin

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"gopkg.in/yaml.v3"
)

// Kind identifies which variant a ConfigValue holds.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "none"
	}
}

// ConfigValue is an immutable node of the untyped plugin configuration tree.
// Numbers are limited to 0-255. The zero value is None.
//
// Accessors never fail: asking a value for a shape it does not have yields
// ok=false (or None from Get/Index), so collectors treat a mismatch as
// "option not set".
type ConfigValue struct {
	kind Kind
	b    bool
	n    uint8
	s    string
	list []ConfigValue
	m    map[string]ConfigValue
}

// None returns the empty value.
func None() ConfigValue { return ConfigValue{} }

// BoolValue wraps b.
func BoolValue(b bool) ConfigValue { return ConfigValue{kind: KindBool, b: b} }

// NumberValue wraps n.
func NumberValue(n uint8) ConfigValue { return ConfigValue{kind: KindNumber, n: n} }

// StringValue wraps s.
func StringValue(s string) ConfigValue { return ConfigValue{kind: KindString, s: s} }

// ListValue returns a list holding a copy of items.
func ListValue(items ...ConfigValue) ConfigValue {
	list := make([]ConfigValue, len(items))
	copy(list, items)
	return ConfigValue{kind: KindList, list: list}
}

// MapValue returns a map holding a copy of m.
func MapValue(m map[string]ConfigValue) ConfigValue {
	cp := make(map[string]ConfigValue, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return ConfigValue{kind: KindMap, m: cp}
}

// Kind returns the variant held by v.
func (v ConfigValue) Kind() Kind { return v.kind }

// IsNone reports whether v is None.
func (v ConfigValue) IsNone() bool { return v.kind == KindNone }

func (v ConfigValue) AsBool() (bool, bool)     { return v.b, v.kind == KindBool }
func (v ConfigValue) AsNumber() (uint8, bool)  { return v.n, v.kind == KindNumber }
func (v ConfigValue) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsList returns a copy of the list elements.
func (v ConfigValue) AsList() ([]ConfigValue, bool) {
	if v.kind != KindList {
		return nil, false
	}
	out := make([]ConfigValue, len(v.list))
	copy(out, v.list)
	return out, true
}

// AsMap returns a copy of the map entries.
func (v ConfigValue) AsMap() (map[string]ConfigValue, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	out := make(map[string]ConfigValue, len(v.m))
	for k, e := range v.m {
		out[k] = e
	}
	return out, true
}

// Get returns the entry stored under key, or None if v is not a map or has no such key.
func (v ConfigValue) Get(key string) ConfigValue {
	if v.kind != KindMap {
		return ConfigValue{}
	}
	return v.m[key]
}

// Index returns the i-th list element, or None.
func (v ConfigValue) Index(i int) ConfigValue {
	if v.kind != KindList || i < 0 || i >= len(v.list) {
		return ConfigValue{}
	}
	return v.list[i]
}

// Len returns the number of list elements or map entries.
func (v ConfigValue) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.m)
	default:
		return 0
	}
}

// Keys returns the map keys in sorted order.
func (v ConfigValue) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Expect returns an error wrapping ErrConfigShape unless v holds kind.
func (v ConfigValue) Expect(kind Kind) error {
	if v.kind != kind {
		return fmt.Errorf("%w: got %s, want %s", ErrConfigShape, v.kind, kind)
	}
	return nil
}

// FromAny converts a decoded configuration value (as produced by viper,
// encoding/json or yaml.v3) into a ConfigValue. Values that do not fit the
// tree's shape, including numbers outside 0-255, become None.
func FromAny(raw any) ConfigValue {
	switch x := raw.(type) {
	case nil:
		return ConfigValue{}
	case ConfigValue:
		return x
	case bool:
		return BoolValue(x)
	case string:
		return StringValue(x)
	case int:
		return numberFromInt(int64(x))
	case int8:
		return numberFromInt(int64(x))
	case int16:
		return numberFromInt(int64(x))
	case int32:
		return numberFromInt(int64(x))
	case int64:
		return numberFromInt(x)
	case uint:
		return numberFromUint(uint64(x))
	case uint8:
		return NumberValue(x)
	case uint16:
		return numberFromUint(uint64(x))
	case uint32:
		return numberFromUint(uint64(x))
	case uint64:
		return numberFromUint(x)
	case float32:
		return numberFromFloat(float64(x))
	case float64:
		return numberFromFloat(x)
	case []any:
		list := make([]ConfigValue, len(x))
		for i, e := range x {
			list[i] = FromAny(e)
		}
		return ConfigValue{kind: KindList, list: list}
	case map[string]any:
		m := make(map[string]ConfigValue, len(x))
		for k, e := range x {
			m[k] = FromAny(e)
		}
		return ConfigValue{kind: KindMap, m: m}
	case map[any]any:
		m := make(map[string]ConfigValue, len(x))
		for k, e := range x {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			m[ks] = FromAny(e)
		}
		return ConfigValue{kind: KindMap, m: m}
	default:
		return ConfigValue{}
	}
}

func numberFromInt(n int64) ConfigValue {
	if n < 0 || n > math.MaxUint8 {
		return ConfigValue{}
	}
	return NumberValue(uint8(n))
}

func numberFromUint(n uint64) ConfigValue {
	if n > math.MaxUint8 {
		return ConfigValue{}
	}
	return NumberValue(uint8(n))
}

func numberFromFloat(f float64) ConfigValue {
	if f != math.Trunc(f) {
		return ConfigValue{}
	}
	return numberFromInt(int64(f))
}

// ToAny converts v back into plain Go values (nil, bool, uint8, string,
// []any, map[string]any).
func (v ConfigValue) ToAny() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.ToAny()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, e := range v.m {
			out[k] = e.ToAny()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (v ConfigValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ToAny())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *ConfigValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v ConfigValue) MarshalYAML() (any, error) {
	return v.ToAny(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *ConfigValue) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("decode plugin config: %w", err)
	}
	*v = FromAny(raw)
	return nil
}
