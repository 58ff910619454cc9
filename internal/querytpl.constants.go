package internal

// Character constants
const (
	CharMarker      = '?'
	CharBlockOpen   = '{'
	CharBlockClose  = '}'
	CharNewline     = '\n'
	CharSingleQuote = '\''
	CharDoubleQuote = '"'
	CharBackslash   = '\\'
	CharBacktick    = '`'
	CharNUL         = 0
)

// Marker source strings. Two-character markers take precedence over the
// bare generic marker.
const (
	StrMarkerGeneric = "?"
	StrMarkerInt     = "?d"
	StrMarkerFloat   = "?f"
	StrMarkerList    = "?a"
	StrMarkerIdent   = "?#"
)

// Marker lengths
const (
	LenMarkerShort = 1
	LenMarkerLong  = 2
)

// SQL rendering constants
const (
	LiteralNull      = "NULL"
	LiteralTrue      = "1"
	LiteralFalse     = "0"
	ListSeparator    = ", "
	AssignOperator   = " = "
	EscapedNUL       = "\\0"
	EscapedBacktick  = "``"
	FloatFormat      = 'g'
	FloatPrecision   = -1
	FloatBitSize     = 64
	IntBase          = 10
	IntBitSize       = 64
)

// numericWhitespace is the leading whitespace skipped by numeric coercion
const numericWhitespace = " \t\n\r\v\f"

// Log message constants
const (
	LogMsgScannerCreated  = "scanner created"
	LogMsgScanStart       = "starting scan"
	LogMsgScanEnd         = "scan complete"
	LogMsgExecutorCreated = "executor created"
	LogMsgExecutorStart   = "starting execution"
	LogMsgExecutorEnd     = "execution complete"
	LogMsgMarkerResolved  = "marker resolved"
	LogMsgMarkerSkipped   = "marker skipped"
	LogMsgBlockSkipped    = "block skipped"
)

// Log field names
const (
	LogFieldSource     = "source_length"
	LogFieldNodes      = "node_count"
	LogFieldMarker     = "marker"
	LogFieldParamIndex = "param_index"
	LogFieldParams     = "param_count"
	LogFieldLine       = "line"
	LogFieldColumn     = "column"
	LogFieldOutput     = "output_length"
)

// Error message constants
const (
	ErrMsgUnsupportedMarker  = "unsupported marker"
	ErrMsgNestedBlock        = "nested blocks are not allowed"
	ErrMsgUnterminatedBlock  = "block is not terminated"
	ErrMsgStreamExhausted    = "parameter list exhausted"
	ErrMsgExcessParams       = "parameters left unconsumed"
	ErrMsgConversionFailed   = "parameter conversion failed"
	ErrMsgNotListOrMap       = "value is not a list or map"
	ErrMsgNotScalar          = "value is not a scalar"
	ErrMsgNotNumeric         = "value cannot be coerced to a number"
	ErrMsgNonFiniteFloat     = "value is not a finite number"
	ErrMsgIntOutOfRange      = "value is out of int64 range"
	ErrMsgInvalidIdentifier  = "value cannot be used as an identifier"
	ErrMsgUnexpectedSkip     = "skip value is only allowed as a direct parameter"
	ErrMsgUnknownMarkerKind  = "unknown marker kind"
	ErrMsgUnknownNode        = "unknown node type"
)
