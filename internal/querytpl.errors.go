package internal

import "strconv"

// ErrorKind classifies scan and execution failures
type ErrorKind int

// Error kinds
const (
	ErrKindUnsupportedMarker ErrorKind = iota
	ErrKindConversion
	ErrKindNestedBlock
	ErrKindUnterminatedBlock
	ErrKindStreamExhausted
	ErrKindExcessParams
	ErrKindUnknownNode
)

// ScanError is returned by the scanner for malformed templates
type ScanError struct {
	Kind     ErrorKind
	Message  string
	Marker   string
	Position Position
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	return e.Message + " at " + e.Position.String()
}

// ExecError is returned by the executor when a parameter cannot be applied
type ExecError struct {
	Kind       ErrorKind
	Message    string
	Marker     string
	Position   Position
	ParamIndex int
	ParamCount int
	Cause      error
}

// Error implements the error interface.
func (e *ExecError) Error() string {
	msg := e.Message
	if e.Marker != "" {
		msg += " for " + e.Marker + " at " + e.Position.String()
	}
	msg += " (param " + strconv.Itoa(e.ParamIndex) + ")"
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ExecError) Unwrap() error {
	return e.Cause
}

// ConvertError is returned by Convert when a value does not fit a marker kind
type ConvertError struct {
	Message   string
	Marker    MarkerKind
	ValueKind Kind
}

// Error implements the error interface.
func (e *ConvertError) Error() string {
	return e.Message + " (" + e.Marker.String() + " given " + e.ValueKind.String() + ")"
}

// StreamError is returned when the parameter stream is read past its end
type StreamError struct {
	Message string
	Index   int
	Len     int
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	return e.Message + ": index " + strconv.Itoa(e.Index) + ", length " + strconv.Itoa(e.Len)
}
