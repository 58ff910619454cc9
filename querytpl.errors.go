package querytpl

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-querytpl/internal"
)

// Error message constants - ALL error messages must be constants (NO MAGIC STRINGS)
const (
	ErrMsgUnsupportedMarker = "unsupported marker"
	ErrMsgConversion        = "parameter conversion failed"
	ErrMsgNestedBlock       = "nested blocks are not allowed"
	ErrMsgUnterminatedBlock = "block is not terminated"
	ErrMsgStreamExhausted   = "parameter list exhausted"
	ErrMsgExcessParams      = "parameters left unconsumed"
	ErrMsgUnsupportedValue  = "unsupported parameter value"
	ErrMsgInvalidParams     = "invalid parameter document"
	ErrMsgInvalidCacheSize  = "cache size must not be negative"
	ErrMsgNoStorage         = "no query storage configured"
	ErrMsgMetricsRegister   = "failed to register metrics"
	ErrMsgDecodeParams      = "decoding parameters"
)

// Context message formats. The category text comes from the wrapped
// sentinel, so these only say where and what.
const (
	ErrFmtMarkerAt        = "marker %s at %s"
	ErrFmtConversion      = "marker %s at %s, parameter %d (%s): %s"
	ErrFmtBlockAt         = "block opened at %s"
	ErrFmtStreamExhausted = "marker %s at %s needs parameter %d, got %d"
	ErrFmtExcessParams    = "%d of %d parameters consumed"
	ErrFmtGoType          = "go type %T"
	ErrFmtQueryName       = "query %q"
)

// Sentinel errors. Every error returned by a build wraps exactly one of
// these, so callers can classify failures with errors.Is.
var (
	ErrUnsupportedMarker = errors.New(ErrMsgUnsupportedMarker)
	ErrConversion        = errors.New(ErrMsgConversion)
	ErrNestedBlock       = errors.New(ErrMsgNestedBlock)
	ErrUnterminatedBlock = errors.New(ErrMsgUnterminatedBlock)
	ErrStreamExhausted   = errors.New(ErrMsgStreamExhausted)
	ErrExcessParams      = errors.New(ErrMsgExcessParams)
	ErrUnsupportedValue  = errors.New(ErrMsgUnsupportedValue)
	ErrInvalidParams     = errors.New(ErrMsgInvalidParams)
	ErrNoStorage         = errors.New(ErrMsgNoStorage)
)

// Position represents a location in the template source
type Position struct {
	Offset int // Byte offset from start
	Line   int // 1-indexed line number
	Column int // 1-indexed column number
}

// String returns a human-readable position string
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

func positionFromInternal(p internal.Position) Position {
	return Position{Offset: p.Offset, Line: p.Line, Column: p.Column}
}

func withPosition(err *cuserr.CustomError, pos Position) *cuserr.CustomError {
	return err.
		WithMetadata(MetaKeyLine, strconv.Itoa(pos.Line)).
		WithMetadata(MetaKeyColumn, strconv.Itoa(pos.Column)).
		WithMetadata(MetaKeyOffset, strconv.Itoa(pos.Offset))
}

// NewUnsupportedMarkerError creates an error for a marker prefix that matches no marker kind
func NewUnsupportedMarkerError(marker string, pos Position) error {
	msg := fmt.Sprintf(ErrFmtMarkerAt, marker, pos)
	return withPosition(cuserr.WrapStdError(ErrUnsupportedMarker, ErrCodeMarker, msg), pos).
		WithMetadata(MetaKeyMarker, marker)
}

// NewConversionError creates an error for a parameter that does not fit its marker
func NewConversionError(marker string, valueKind string, paramIndex int, pos Position, reason string) error {
	msg := fmt.Sprintf(ErrFmtConversion, marker, pos, paramIndex+1, valueKind, reason)
	return withPosition(cuserr.WrapStdError(ErrConversion, ErrCodeConversion, msg), pos).
		WithMetadata(MetaKeyMarker, marker).
		WithMetadata(MetaKeyKind, valueKind).
		WithMetadata(MetaKeyParamIndex, strconv.Itoa(paramIndex)).
		WithMetadata(MetaKeyReason, reason)
}

// NewNestedBlockError creates an error for a block opened inside another block
func NewNestedBlockError(pos Position) error {
	msg := fmt.Sprintf(ErrFmtBlockAt, pos)
	return withPosition(cuserr.WrapStdError(ErrNestedBlock, ErrCodeParse, msg), pos)
}

// NewUnterminatedBlockError creates an error for a block without a closing delimiter.
// pos is the position of the opening delimiter.
func NewUnterminatedBlockError(pos Position) error {
	msg := fmt.Sprintf(ErrFmtBlockAt, pos)
	return withPosition(cuserr.WrapStdError(ErrUnterminatedBlock, ErrCodeParse, msg), pos)
}

// NewStreamExhaustedError creates an error for a marker with no parameter left
func NewStreamExhaustedError(marker string, paramIndex, paramCount int, pos Position) error {
	msg := fmt.Sprintf(ErrFmtStreamExhausted, marker, pos, paramIndex+1, paramCount)
	return withPosition(cuserr.WrapStdError(ErrStreamExhausted, ErrCodeStream, msg), pos).
		WithMetadata(MetaKeyMarker, marker).
		WithMetadata(MetaKeyParamIndex, strconv.Itoa(paramIndex)).
		WithMetadata(MetaKeyParamCount, strconv.Itoa(paramCount))
}

// NewExcessParamsError creates an error for parameters no marker consumed
func NewExcessParamsError(consumed, paramCount int) error {
	msg := fmt.Sprintf(ErrFmtExcessParams, consumed, paramCount)
	return cuserr.WrapStdError(ErrExcessParams, ErrCodeStream, msg).
		WithMetadata(MetaKeyParamIndex, strconv.Itoa(consumed)).
		WithMetadata(MetaKeyParamCount, strconv.Itoa(paramCount))
}

// NewUnsupportedValueError creates an error for a Go value with no Value mapping
func NewUnsupportedValueError(value any) error {
	return cuserr.WrapStdError(ErrUnsupportedValue, ErrCodeValue, fmt.Sprintf(ErrFmtGoType, value)).
		WithMetadata(MetaKeyGoType, fmt.Sprintf("%T", value))
}

// NewInvalidParamsError creates an error for a malformed parameter document
func NewInvalidParamsError(reason string, cause error) error {
	if cause == nil {
		return cuserr.WrapStdError(ErrInvalidParams, ErrCodeValue, reason).
			WithMetadata(MetaKeyReason, reason)
	}
	wrapped := fmt.Errorf("%w: %w", ErrInvalidParams, cause)
	return cuserr.WrapStdError(wrapped, ErrCodeValue, ErrMsgDecodeParams).
		WithMetadata(MetaKeyReason, reason)
}

// NewConfigError creates an error for an invalid engine option
func NewConfigError(option, msg string, cause error) error {
	if cause == nil {
		return cuserr.NewValidationError(ErrCodeConfig, msg).
			WithMetadata(MetaKeyOption, option)
	}
	return cuserr.WrapStdError(cause, ErrCodeConfig, msg).
		WithMetadata(MetaKeyOption, option)
}

// NewNoStorageError creates an error for catalog operations on an engine without storage
func NewNoStorageError(name string) error {
	return cuserr.WrapStdError(ErrNoStorage, ErrCodeStorage, fmt.Sprintf(ErrFmtQueryName, name)).
		WithMetadata(MetaKeyQueryName, name)
}

// translateError maps internal scanner and executor errors onto the public taxonomy
func translateError(err error) error {
	var scanErr *internal.ScanError
	if errors.As(err, &scanErr) {
		pos := positionFromInternal(scanErr.Position)
		switch scanErr.Kind {
		case internal.ErrKindNestedBlock:
			return NewNestedBlockError(pos)
		case internal.ErrKindUnterminatedBlock:
			return NewUnterminatedBlockError(pos)
		default:
			return NewUnsupportedMarkerError(scanErr.Marker, pos)
		}
	}

	var execErr *internal.ExecError
	if errors.As(err, &execErr) {
		pos := positionFromInternal(execErr.Position)
		switch execErr.Kind {
		case internal.ErrKindStreamExhausted:
			return NewStreamExhaustedError(execErr.Marker, execErr.ParamIndex, execErr.ParamCount, pos)
		case internal.ErrKindExcessParams:
			return NewExcessParamsError(execErr.ParamIndex, execErr.ParamCount)
		case internal.ErrKindNestedBlock:
			return NewNestedBlockError(pos)
		case internal.ErrKindConversion:
			var convErr *internal.ConvertError
			valueKind, reason := "", ErrMsgConversion
			if errors.As(execErr, &convErr) {
				valueKind, reason = convErr.ValueKind.String(), convErr.Message
			}
			return NewConversionError(execErr.Marker, valueKind, execErr.ParamIndex, pos, reason)
		default:
			return NewUnsupportedMarkerError(execErr.Marker, pos)
		}
	}

	return err
}

// ErrorCode returns the category code (ErrCode*) of an error returned by the
// engine or its storage. Unrecognised errors map to ErrCodeUnknown.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedMarker):
		return ErrCodeMarker
	case errors.Is(err, ErrConversion):
		return ErrCodeConversion
	case errors.Is(err, ErrNestedBlock), errors.Is(err, ErrUnterminatedBlock):
		return ErrCodeParse
	case errors.Is(err, ErrStreamExhausted), errors.Is(err, ErrExcessParams):
		return ErrCodeStream
	case errors.Is(err, ErrUnsupportedValue), errors.Is(err, ErrInvalidParams):
		return ErrCodeValue
	case errors.Is(err, ErrNoStorage), errors.Is(err, ErrQueryNotFound):
		return ErrCodeStorage
	}
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return ErrCodeStorage
	}
	return ErrCodeUnknown
}
