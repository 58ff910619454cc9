package internal

import (
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value
type Kind int

// Value kinds
const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindList
	KindMap
	KindSkip
)

// Kind names for diagnostics
const (
	KindNameNull   = "null"
	KindNameInt    = "int"
	KindNameFloat  = "float"
	KindNameString = "string"
	KindNameBool   = "bool"
	KindNameList   = "list"
	KindNameMap    = "map"
	KindNameSkip   = "skip"
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case KindInt:
		return KindNameInt
	case KindFloat:
		return KindNameFloat
	case KindString:
		return KindNameString
	case KindBool:
		return KindNameBool
	case KindList:
		return KindNameList
	case KindMap:
		return KindNameMap
	case KindSkip:
		return KindNameSkip
	default:
		return KindNameNull
	}
}

// Entry is a single key/value pair of a map Value
type Entry struct {
	Key   string
	Value Value
}

// Value is a query parameter. It is a closed tagged variant: exactly one
// payload is meaningful, selected by Kind. The zero Value is Null.
// Values are immutable once constructed.
type Value struct {
	kind    Kind
	i       int64
	f       float64
	s       string
	b       bool
	items   []Value
	entries []Entry
}

// NewNull returns the NULL value
func NewNull() Value {
	return Value{kind: KindNull}
}

// NewInt returns an integer value
func NewInt(i int64) Value {
	return Value{kind: KindInt, i: i}
}

// NewFloat returns a float value
func NewFloat(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

// NewString returns a string value
func NewString(s string) Value {
	return Value{kind: KindString, s: s}
}

// NewBool returns a boolean value
func NewBool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// NewList returns an ordered list value. The items are copied.
func NewList(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindList, items: cp}
}

// NewMap returns a map value with entries in the given order. The entries are copied.
func NewMap(entries ...Entry) Value {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return Value{kind: KindMap, entries: cp}
}

// NewSkip returns the skip signal
func NewSkip() Value {
	return Value{kind: KindSkip}
}

// Kind returns the variant of the value
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is NULL
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsSkip reports whether v is the skip signal
func (v Value) IsSkip() bool {
	return v.kind == KindSkip
}

// AsInt returns the integer payload
func (v Value) AsInt() int64 {
	return v.i
}

// AsFloat returns the float payload
func (v Value) AsFloat() float64 {
	return v.f
}

// AsString returns the string payload
func (v Value) AsString() string {
	return v.s
}

// AsBool returns the boolean payload
func (v Value) AsBool() bool {
	return v.b
}

// Items returns a copy of the list items
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	cp := make([]Value, len(v.items))
	copy(cp, v.items)
	return cp
}

// Entries returns a copy of the map entries
func (v Value) Entries() []Entry {
	if v.kind != KindMap {
		return nil
	}
	cp := make([]Entry, len(v.entries))
	copy(cp, v.entries)
	return cp
}

// Len returns the number of items or entries, 0 for scalars
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.items)
	case KindMap:
		return len(v.entries)
	default:
		return 0
	}
}

// String renders the value for logs and error metadata. It is not SQL.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, IntBase)
	case KindFloat:
		return strconv.FormatFloat(v.f, FloatFormat, FloatPrecision, FloatBitSize)
	case KindString:
		return strconv.Quote(v.s)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ListSeparator) + "]"
	case KindMap:
		parts := make([]string, len(v.entries))
		for i, e := range v.entries {
			parts[i] = strconv.Quote(e.Key) + ": " + e.Value.String()
		}
		return "{" + strings.Join(parts, ListSeparator) + "}"
	case KindSkip:
		return "<" + KindNameSkip + ">"
	default:
		return LiteralNull
	}
}
