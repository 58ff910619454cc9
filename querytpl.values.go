package querytpl

import (
	"math"
	"reflect"
	"sort"
	"time"

	"github.com/itsatony/go-querytpl/internal"
	"gopkg.in/yaml.v3"
)

// Value is a query parameter: a closed variant of null, int, float, string,
// bool, list, map or the skip signal. The zero Value is Null.
type Value = internal.Value

// Entry is one key/value pair of a map Value
type Entry = internal.Entry

// Kind identifies the variant held by a Value
type Kind = internal.Kind

// Value kinds
const (
	KindNull   = internal.KindNull
	KindInt    = internal.KindInt
	KindFloat  = internal.KindFloat
	KindString = internal.KindString
	KindBool   = internal.KindBool
	KindList   = internal.KindList
	KindMap    = internal.KindMap
	KindSkip   = internal.KindSkip
)

// Null returns the NULL value
func Null() Value { return internal.NewNull() }

// Int returns an integer value
func Int(i int64) Value { return internal.NewInt(i) }

// Float returns a float value
func Float(f float64) Value { return internal.NewFloat(f) }

// String returns a string value
func String(s string) Value { return internal.NewString(s) }

// Bool returns a boolean value
func Bool(b bool) Value { return internal.NewBool(b) }

// List returns an ordered list value, for ?a value lists and ?# identifier lists
func List(items ...Value) Value { return internal.NewList(items...) }

// Map returns a map value rendered by ?a as an assignment list, in entry order
func Map(entries ...Entry) Value { return internal.NewMap(entries...) }

// E is shorthand for a map Entry
func E(key string, value Value) Entry { return Entry{Key: key, Value: value} }

// Skip returns the skip signal. Placed at a marker's position it elides the
// enclosing block, or just the marker when it is outside any block.
func Skip() Value { return internal.NewSkip() }

// ValueOf converts a Go value to a Value.
//
// Supported: nil, Value, bool, all integer and float types, string, []byte,
// time.Time, pointers to supported types, slices and arrays (as lists),
// []Entry and maps with string keys (as maps, sorted by key).
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case string:
		return String(x), nil
	case []byte:
		return String(string(x)), nil
	case time.Time:
		return String(x.Format(TimeLayout)), nil
	case []Entry:
		return Map(x...), nil
	}

	return reflectValueOf(reflect.ValueOf(v), v)
}

// ValuesOf converts each argument with ValueOf
func ValuesOf(args ...any) ([]Value, error) {
	values := make([]Value, len(args))
	for i, arg := range args {
		v, err := ValueOf(arg)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func reflectValueOf(rv reflect.Value, orig any) (Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return ValueOf(rv.Elem().Interface())
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Value{}, NewUnsupportedValueError(orig)
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null(), nil
		}
		items := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := ValueOf(rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return List(items...), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, NewUnsupportedValueError(orig)
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		entries := make([]Entry, len(keys))
		for i, k := range keys {
			item, err := ValueOf(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return Value{}, err
			}
			entries[i] = E(k, item)
		}
		return Map(entries...), nil
	default:
		return Value{}, NewUnsupportedValueError(orig)
	}
}

// ParseParams decodes a YAML or JSON sequence into parameter values.
//
// Mapping key order is preserved, so a mapping rendered by ?a keeps the
// order it was written in. A skip parameter is written either as the tagged
// scalar "!skip" or as the mapping {"$skip": true}:
//
//	- 5
//	- bob
//	- !skip
//
// In flow style the tag needs a trailing space, since YAML lets a tag run
// into the following "]" or ",": [5, bob, !skip ].
func ParseParams(data []byte) ([]Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, NewInvalidParamsError(err.Error(), err)
	}
	if doc.Kind == 0 {
		return []Value{}, nil
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return []Value{}, nil
		}
		root = root.Content[0]
	}
	if root.Kind == yaml.AliasNode {
		root = root.Alias
	}
	if root.Kind != yaml.SequenceNode {
		return nil, NewInvalidParamsError(ReasonRootNotSequence, nil)
	}

	values := make([]Value, len(root.Content))
	for i, node := range root.Content {
		v, err := valueFromNode(node)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// Parameter document failure reasons
const (
	ReasonRootNotSequence = "document root must be a sequence"
	ReasonKeyNotScalar    = "mapping keys must be scalars"
	ReasonUnexpectedNode  = "unexpected node"
	ReasonUnsupportedTag  = "unsupported tag "
)

// Resolved YAML core schema tags
const (
	yamlTagNull      = "!!null"
	yamlTagBool      = "!!bool"
	yamlTagInt       = "!!int"
	yamlTagFloat     = "!!float"
	yamlTagStr       = "!!str"
	yamlTagTimestamp = "!!timestamp"
)

func valueFromNode(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return valueFromNode(node.Alias)
	case yaml.ScalarNode:
		return scalarFromNode(node)
	case yaml.SequenceNode:
		items := make([]Value, len(node.Content))
		for i, child := range node.Content {
			item, err := valueFromNode(child)
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return List(items...), nil
	case yaml.MappingNode:
		if isSkipMapping(node) {
			return Skip(), nil
		}
		entries := make([]Entry, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if key.Kind != yaml.ScalarNode {
				return Value{}, NewInvalidParamsError(ReasonKeyNotScalar, nil)
			}
			item, err := valueFromNode(node.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, E(key.Value, item))
		}
		return Map(entries...), nil
	default:
		return Value{}, NewInvalidParamsError(ReasonUnexpectedNode, nil)
	}
}

func scalarFromNode(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case ParamTagSkip:
		return Skip(), nil
	case yamlTagNull:
		return Null(), nil
	case yamlTagBool:
		var b bool
		if err := node.Decode(&b); err != nil {
			return Value{}, NewInvalidParamsError(node.Value, err)
		}
		return Bool(b), nil
	case yamlTagInt:
		var i int64
		if err := node.Decode(&i); err != nil {
			return Value{}, NewInvalidParamsError(node.Value, err)
		}
		return Int(i), nil
	case yamlTagFloat:
		var f float64
		if err := node.Decode(&f); err != nil {
			return Value{}, NewInvalidParamsError(node.Value, err)
		}
		return Float(f), nil
	case yamlTagStr, yamlTagTimestamp:
		return String(node.Value), nil
	default:
		return Value{}, NewInvalidParamsError(ReasonUnsupportedTag+node.Tag, nil)
	}
}

func isSkipMapping(node *yaml.Node) bool {
	if len(node.Content) != 2 {
		return false
	}
	key, val := node.Content[0], node.Content[1]
	if key.Value != ParamKeySkip || val.Kind != yaml.ScalarNode {
		return false
	}
	var b bool
	return val.Decode(&b) == nil && b
}
