package internal

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ExecutorConfig holds executor configuration
type ExecutorConfig struct {
	// AllowExcessParams disables the check for parameters left unconsumed
	AllowExcessParams bool
}

// Executor renders scanned nodes against a parameter list.
// It holds no per-call state and is safe for concurrent use.
type Executor struct {
	config ExecutorConfig
	logger *zap.Logger
}

// NewExecutor creates a new executor
func NewExecutor(config ExecutorConfig, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgExecutorCreated)
	return &Executor{
		config: config,
		logger: logger,
	}
}

// execState is the call-local state of one execution
type execState struct {
	stream *ParamStream
}

// Execute renders nodes, consuming exactly one parameter per marker
func (e *Executor) Execute(nodes []Node, params []Value) (string, error) {
	e.logger.Debug(LogMsgExecutorStart,
		zap.Int(LogFieldNodes, len(nodes)),
		zap.Int(LogFieldParams, len(params)))

	st := &execState{stream: NewParamStream(params)}
	var out strings.Builder

	for _, node := range nodes {
		if err := e.executeNode(st, node, &out); err != nil {
			return "", err
		}
	}

	if !e.config.AllowExcessParams && st.stream.Remaining() > 0 {
		return "", &ExecError{
			Kind:       ErrKindExcessParams,
			Message:    ErrMsgExcessParams,
			ParamIndex: st.stream.Consumed(),
			ParamCount: len(params),
		}
	}

	e.logger.Debug(LogMsgExecutorEnd, zap.Int(LogFieldOutput, out.Len()))
	return out.String(), nil
}

func (e *Executor) executeNode(st *execState, node Node, out *strings.Builder) error {
	switch n := node.(type) {
	case *TextNode:
		out.WriteString(n.Text)
		return nil
	case *MarkerNode:
		text, skipped, err := e.resolve(st, n)
		if err != nil {
			return err
		}
		if !skipped {
			out.WriteString(text)
		}
		return nil
	case *BlockNode:
		return e.executeBlock(st, n, out)
	default:
		return unknownNodeError(st, node)
	}
}

func unknownNodeError(st *execState, node Node) *ExecError {
	return &ExecError{
		Kind:       ErrKindUnknownNode,
		Message:    ErrMsgUnknownNode,
		Marker:     fmt.Sprintf("%T", node),
		Position:   node.Pos(),
		ParamIndex: st.stream.Consumed(),
	}
}

// executeBlock buffers the block output and drops it entirely when any of
// its markers receives the skip signal
func (e *Executor) executeBlock(st *execState, block *BlockNode, out *strings.Builder) error {
	var buf strings.Builder
	skipped := false

	for _, child := range block.Children {
		switch n := child.(type) {
		case *TextNode:
			buf.WriteString(n.Text)
		case *MarkerNode:
			if skipped {
				if err := e.consume(st, n); err != nil {
					return err
				}
				continue
			}
			text, skip, err := e.resolve(st, n)
			if err != nil {
				return err
			}
			if skip {
				skipped = true
				continue
			}
			buf.WriteString(text)
		case *BlockNode:
			return &ExecError{
				Kind:       ErrKindNestedBlock,
				Message:    ErrMsgNestedBlock,
				Position:   n.Position,
				ParamIndex: st.stream.Consumed(),
			}
		default:
			return unknownNodeError(st, child)
		}
	}

	if skipped {
		e.logger.Debug(LogMsgBlockSkipped,
			zap.Int(LogFieldLine, block.Position.Line),
			zap.Int(LogFieldColumn, block.Position.Column))
		return nil
	}
	out.WriteString(buf.String())
	return nil
}

// resolve reads the current parameter for marker, advances the stream and
// converts the value. skipped is true when the value was the skip signal.
func (e *Executor) resolve(st *execState, marker *MarkerNode) (text string, skipped bool, err error) {
	index := st.stream.Consumed()
	v, err := st.stream.Current()
	if err != nil {
		return "", false, e.streamError(marker, index, err)
	}
	st.stream.Advance()

	if v.IsSkip() {
		e.logger.Debug(LogMsgMarkerSkipped,
			zap.String(LogFieldMarker, marker.Source),
			zap.Int(LogFieldParamIndex, index))
		return "", true, nil
	}

	text, err = Convert(v, marker.Marker)
	if err != nil {
		return "", false, &ExecError{
			Kind:       ErrKindConversion,
			Message:    ErrMsgConversionFailed,
			Marker:     marker.Source,
			Position:   marker.Position,
			ParamIndex: index,
			Cause:      err,
		}
	}

	e.logger.Debug(LogMsgMarkerResolved,
		zap.String(LogFieldMarker, marker.Source),
		zap.Int(LogFieldParamIndex, index))
	return text, false, nil
}

// consume advances past the parameter of a marker whose output is discarded
func (e *Executor) consume(st *execState, marker *MarkerNode) error {
	index := st.stream.Consumed()
	if _, err := st.stream.Current(); err != nil {
		return e.streamError(marker, index, err)
	}
	st.stream.Advance()
	return nil
}

func (e *Executor) streamError(marker *MarkerNode, index int, cause error) error {
	execErr := &ExecError{
		Kind:       ErrKindStreamExhausted,
		Message:    ErrMsgStreamExhausted,
		Marker:     marker.Source,
		Position:   marker.Position,
		ParamIndex: index,
	}
	var streamErr *StreamError
	if errors.As(cause, &streamErr) {
		execErr.ParamCount = streamErr.Len
	}
	return execErr
}
