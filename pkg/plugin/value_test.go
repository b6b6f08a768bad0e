package plugin

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestFromAnyScalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		kind Kind
	}{
		{name: "nil", in: nil, kind: KindNone},
		{name: "bool", in: true, kind: KindBool},
		{name: "string", in: "x", kind: KindString},
		{name: "small int", in: 42, kind: KindNumber},
		{name: "max byte", in: int64(255), kind: KindNumber},
		{name: "too large", in: 256, kind: KindNone},
		{name: "negative", in: -1, kind: KindNone},
		{name: "integral float", in: 7.0, kind: KindNumber},
		{name: "fractional float", in: 7.5, kind: KindNone},
		{name: "unknown type", in: struct{}{}, kind: KindNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromAny(tt.in).Kind(); got != tt.kind {
				t.Errorf("FromAny(%#v).Kind() = %v, want %v", tt.in, got, tt.kind)
			}
		})
	}
}

func TestFromAnyNested(t *testing.T) {
	v := FromAny(map[string]any{
		"sock_stats": map[string]any{"disabled": true},
		"cpu_load":   map[any]any{"interval_secs": 2, 3: "dropped"},
		"tags":       []any{"a", 1},
	})

	if v.Kind() != KindMap {
		t.Fatalf("Kind() = %v, want map", v.Kind())
	}
	if got, want := v.Keys(), []string{"cpu_load", "sock_stats", "tags"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	if disabled, ok := v.Get("sock_stats").Get("disabled").AsBool(); !ok || !disabled {
		t.Errorf("sock_stats.disabled = %v/%v, want true", disabled, ok)
	}
	if n, ok := v.Get("cpu_load").Get("interval_secs").AsNumber(); !ok || n != 2 {
		t.Errorf("cpu_load.interval_secs = %v/%v, want 2", n, ok)
	}
	if got := v.Get("cpu_load").Len(); got != 1 {
		t.Errorf("cpu_load has %d keys, want 1 (non-string keys are dropped)", got)
	}

	if s, ok := v.Get("tags").Index(0).AsString(); !ok || s != "a" {
		t.Errorf("tags[0] = %q/%v, want a", s, ok)
	}
	if !v.Get("tags").Index(5).IsNone() {
		t.Error("out-of-range index should be none")
	}
}

func TestGetOnMismatchedShapes(t *testing.T) {
	if !None().Get("x").IsNone() {
		t.Error("None().Get should be none")
	}
	if !BoolValue(true).Get("x").IsNone() {
		t.Error("Get on a bool should be none")
	}
	if !StringValue("s").Index(0).IsNone() {
		t.Error("Index on a string should be none")
	}
	if _, ok := NumberValue(1).AsBool(); ok {
		t.Error("AsBool on a number should fail")
	}
	if _, ok := BoolValue(true).AsMap(); ok {
		t.Error("AsMap on a bool should fail")
	}
}

func TestExpect(t *testing.T) {
	if err := NumberValue(5).Expect(KindNumber); err != nil {
		t.Errorf("Expect(number) error = %v", err)
	}

	err := StringValue("5").Expect(KindNumber)
	if err == nil {
		t.Fatal("Expect(number) on a string should fail")
	}
	if !errors.Is(err, ErrConfigShape) {
		t.Errorf("error = %v, want ErrConfigShape", err)
	}
}

func TestConstructorsCopyInput(t *testing.T) {
	m := map[string]ConfigValue{"a": BoolValue(true)}
	v := MapValue(m)
	m["a"] = BoolValue(false)
	m["b"] = None()

	if got, _ := v.Get("a").AsBool(); !got {
		t.Error("MapValue must not alias its input")
	}
	if v.Len() != 1 {
		t.Errorf("Len() = %d, want 1", v.Len())
	}

	items := []ConfigValue{NumberValue(1)}
	l := ListValue(items...)
	items[0] = NumberValue(2)
	if n, _ := l.Index(0).AsNumber(); n != 1 {
		t.Errorf("ListValue aliased its input: [0] = %d", n)
	}

	out, _ := v.AsMap()
	out["a"] = None()
	if got, _ := v.Get("a").AsBool(); !got {
		t.Error("AsMap must return a copy")
	}
}

func TestUnmarshalYAML(t *testing.T) {
	src := []byte(`
sock_stats:
  disabled: true
cpu_load:
  interval_secs: 2
fs_stats:
  types: [ext4, xfs]
Mixed_Case:
  Key: 1
big: 1000
`)
	var v ConfigValue
	if err := yaml.Unmarshal(src, &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if v.Get("sock_stats").Get("disabled").Kind() != KindBool {
		t.Error("sock_stats.disabled should be a bool")
	}
	if n, ok := v.Get("cpu_load").Get("interval_secs").AsNumber(); !ok || n != 2 {
		t.Errorf("cpu_load.interval_secs = %v/%v, want 2", n, ok)
	}
	if got := v.Get("fs_stats").Get("types").Len(); got != 2 {
		t.Errorf("fs_stats.types has %d entries, want 2", got)
	}
	if n, ok := v.Get("Mixed_Case").Get("Key").AsNumber(); !ok || n != 1 {
		t.Errorf("Mixed_Case.Key = %v/%v, want 1 with key case kept", n, ok)
	}
	if !v.Get("big").IsNone() {
		t.Error("numbers above 255 are not representable")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	v := MapValue(map[string]ConfigValue{
		"a": BoolValue(true),
		"b": NumberValue(3),
		"c": ListValue(StringValue("x"), None()),
	})

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `{"a":true,"b":3,"c":["x",null]}`; string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	var back ConfigValue
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got, want := back.Keys(), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if !back.Get("c").Index(1).IsNone() {
		t.Error("c[1] should round-trip as none")
	}
}
