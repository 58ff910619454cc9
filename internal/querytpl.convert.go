package internal

import (
	"math"
	"strconv"
	"strings"
)

// Convert renders v as a SQL literal for the given marker kind.
// The skip signal is never converted; callers must handle it first.
func Convert(v Value, kind MarkerKind) (string, error) {
	if v.IsSkip() {
		return "", newConvertError(ErrMsgUnexpectedSkip, kind, v)
	}

	switch kind {
	case MarkerInt:
		i, err := coerceInt(v, kind)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(i, IntBase), nil
	case MarkerFloat:
		f, err := coerceFloat(v, kind)
		if err != nil {
			return "", err
		}
		return formatFloat(f, kind, v)
	case MarkerList:
		return convertList(v)
	case MarkerIdent:
		return convertIdent(v)
	case MarkerGeneric:
		return convertScalar(v, kind)
	default:
		return "", newConvertError(ErrMsgUnknownMarkerKind, kind, v)
	}
}

// QuoteString escapes s the way addslashes does and wraps it in single quotes
func QuoteString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte(CharSingleQuote)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case CharSingleQuote, CharDoubleQuote, CharBackslash:
			sb.WriteByte(CharBackslash)
			sb.WriteByte(ch)
		case CharNUL:
			sb.WriteString(EscapedNUL)
		default:
			sb.WriteByte(ch)
		}
	}
	sb.WriteByte(CharSingleQuote)
	return sb.String()
}

// QuoteIdentifier wraps name in backticks, doubling embedded backticks
func QuoteIdentifier(name string) string {
	return string(CharBacktick) +
		strings.ReplaceAll(name, string(CharBacktick), EscapedBacktick) +
		string(CharBacktick)
}

// convertScalar is the generic conversion, dispatched on the value kind
func convertScalar(v Value, kind MarkerKind) (string, error) {
	switch v.Kind() {
	case KindString:
		return QuoteString(v.AsString()), nil
	case KindNull:
		return LiteralNull, nil
	case KindBool:
		if v.AsBool() {
			return LiteralTrue, nil
		}
		return LiteralFalse, nil
	case KindInt:
		return strconv.FormatInt(v.AsInt(), IntBase), nil
	case KindFloat:
		return formatFloat(v.AsFloat(), kind, v)
	case KindSkip:
		return "", newConvertError(ErrMsgUnexpectedSkip, kind, v)
	default:
		return "", newConvertError(ErrMsgNotScalar, kind, v)
	}
}

func convertList(v Value) (string, error) {
	switch v.Kind() {
	case KindList:
		parts := make([]string, 0, v.Len())
		for _, item := range v.items {
			s, err := convertScalar(item, MarkerList)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ListSeparator), nil
	case KindMap:
		parts := make([]string, 0, v.Len())
		for _, e := range v.entries {
			s, err := convertScalar(e.Value, MarkerList)
			if err != nil {
				return "", err
			}
			parts = append(parts, QuoteIdentifier(e.Key)+AssignOperator+s)
		}
		return strings.Join(parts, ListSeparator), nil
	default:
		return "", newConvertError(ErrMsgNotListOrMap, MarkerList, v)
	}
}

func convertIdent(v Value) (string, error) {
	if v.Kind() != KindList {
		name, err := identName(v)
		if err != nil {
			return "", err
		}
		return QuoteIdentifier(name), nil
	}

	parts := make([]string, 0, v.Len())
	for _, item := range v.items {
		name, err := identName(item)
		if err != nil {
			return "", err
		}
		parts = append(parts, QuoteIdentifier(name))
	}
	return strings.Join(parts, ListSeparator), nil
}

func identName(v Value) (string, error) {
	switch v.Kind() {
	case KindString:
		return v.AsString(), nil
	case KindInt:
		return strconv.FormatInt(v.AsInt(), IntBase), nil
	case KindFloat:
		return formatFloat(v.AsFloat(), MarkerIdent, v)
	case KindNull:
		return "", nil
	case KindBool:
		// Interpolated like a string: true is "1", false is empty
		if v.AsBool() {
			return LiteralTrue, nil
		}
		return "", nil
	default:
		return "", newConvertError(ErrMsgInvalidIdentifier, MarkerIdent, v)
	}
}

// coerceInt applies loose integer coercion: numeric prefixes of strings are
// honoured, floats truncate toward zero, anything unparsable becomes 0.
func coerceInt(v Value, kind MarkerKind) (int64, error) {
	switch v.Kind() {
	case KindInt:
		return v.AsInt(), nil
	case KindFloat:
		return truncateFloat(v.AsFloat(), kind, v)
	case KindBool:
		if v.AsBool() {
			return 1, nil
		}
		return 0, nil
	case KindNull:
		return 0, nil
	case KindString:
		prefix := numericPrefix(v.AsString())
		if prefix == "" {
			return 0, nil
		}
		if !strings.ContainsAny(prefix, ".eE") {
			// ParseInt saturates on overflow, which is what we want
			i, _ := strconv.ParseInt(prefix, IntBase, IntBitSize)
			return i, nil
		}
		f, err := strconv.ParseFloat(prefix, FloatBitSize)
		if err != nil && math.IsInf(f, 0) {
			return 0, newConvertError(ErrMsgIntOutOfRange, kind, v)
		}
		return truncateFloat(f, kind, v)
	default:
		return 0, newConvertError(ErrMsgNotNumeric, kind, v)
	}
}

// coerceFloat applies loose float coercion with the same rules as coerceInt
func coerceFloat(v Value, kind MarkerKind) (float64, error) {
	switch v.Kind() {
	case KindFloat:
		return v.AsFloat(), nil
	case KindInt:
		return float64(v.AsInt()), nil
	case KindBool:
		if v.AsBool() {
			return 1, nil
		}
		return 0, nil
	case KindNull:
		return 0, nil
	case KindString:
		prefix := numericPrefix(v.AsString())
		if prefix == "" {
			return 0, nil
		}
		f, _ := strconv.ParseFloat(prefix, FloatBitSize)
		return f, nil
	default:
		return 0, newConvertError(ErrMsgNotNumeric, kind, v)
	}
}

func truncateFloat(f float64, kind MarkerKind, v Value) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, newConvertError(ErrMsgNonFiniteFloat, kind, v)
	}
	t := math.Trunc(f)
	if t >= math.MaxInt64 || t < math.MinInt64 {
		return 0, newConvertError(ErrMsgIntOutOfRange, kind, v)
	}
	return int64(t), nil
}

func formatFloat(f float64, kind MarkerKind, v Value) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", newConvertError(ErrMsgNonFiniteFloat, kind, v)
	}
	return strconv.FormatFloat(f, FloatFormat, FloatPrecision, FloatBitSize), nil
}

// numericPrefix returns the longest leading decimal number in s after
// leading whitespace, or "" if there is none.
func numericPrefix(s string) string {
	s = strings.TrimLeft(s, numericWhitespace)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
			digits++
		}
		if digits > 0 {
			i = j
		}
	}
	if digits == 0 {
		return ""
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return s[:i]
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func newConvertError(msg string, kind MarkerKind, v Value) *ConvertError {
	return &ConvertError{
		Message:   msg,
		Marker:    kind,
		ValueKind: v.Kind(),
	}
}
