package internal

import (
	"strings"

	"go.uber.org/zap"
)

// Scanner turns template source into a node list in a single left-to-right pass
type Scanner struct {
	source string
	pos    int // Current byte position
	line   int // Current line (1-indexed)
	column int // Current column (1-indexed)
	logger *zap.Logger
}

// NewScanner creates a scanner over source
func NewScanner(source string, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgScannerCreated, zap.Int(LogFieldSource, len(source)))
	return &Scanner{
		source: source,
		pos:    0,
		line:   1,
		column: 1,
		logger: logger,
	}
}

// Scan processes the whole source and returns the top-level nodes
func (s *Scanner) Scan() ([]Node, error) {
	s.logger.Debug(LogMsgScanStart)

	nodes, _, err := s.scanNodes(false)
	if err != nil {
		return nil, err
	}

	s.logger.Debug(LogMsgScanEnd, zap.Int(LogFieldNodes, len(nodes)))
	return nodes, nil
}

// scanNodes scans until end of input or, inside a block, until the closing
// delimiter. The closing delimiter is left for the caller to consume.
func (s *Scanner) scanNodes(inBlock bool) ([]Node, bool, error) {
	var nodes []Node
	var text strings.Builder
	textPos := s.currentPosition()

	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, &TextNode{Text: text.String(), Position: textPos})
			text.Reset()
		}
	}

	for !s.isAtEnd() {
		ch := s.peek()
		switch {
		case ch == CharBlockOpen:
			if inBlock {
				return nil, false, s.newScanError(ErrKindNestedBlock, ErrMsgNestedBlock, s.currentPosition())
			}
			flush()
			block, err := s.scanBlock()
			if err != nil {
				return nil, false, err
			}
			nodes = append(nodes, block)
			textPos = s.currentPosition()

		case ch == CharBlockClose && inBlock:
			flush()
			return nodes, true, nil

		case ch == CharMarker:
			flush()
			marker, err := s.scanMarker()
			if err != nil {
				return nil, false, err
			}
			nodes = append(nodes, marker)
			textPos = s.currentPosition()

		default:
			text.WriteByte(s.advance())
		}
	}

	flush()
	return nodes, false, nil
}

// scanBlock scans a { ... } section starting at the opening delimiter
func (s *Scanner) scanBlock() (*BlockNode, error) {
	open := s.currentPosition()
	s.advance() // consume {

	children, closed, err := s.scanNodes(true)
	if err != nil {
		return nil, err
	}
	if !closed {
		return nil, s.newScanError(ErrKindUnterminatedBlock, ErrMsgUnterminatedBlock, open)
	}
	s.advance() // consume }

	return &BlockNode{Children: children, Position: open}, nil
}

// scanMarker consumes the longest marker at the cursor
func (s *Scanner) scanMarker() (*MarkerNode, error) {
	pos := s.currentPosition()
	kind, width, ok := ResolveMarker(s.source[s.pos:])
	if !ok {
		err := s.newScanError(ErrKindUnsupportedMarker, ErrMsgUnsupportedMarker, pos)
		err.Marker = string(s.peek())
		return nil, err
	}

	source := s.source[s.pos : s.pos+width]
	s.advanceN(width)
	return &MarkerNode{Marker: kind, Source: source, Position: pos}, nil
}

// Helper methods

// currentPosition returns the current position
func (s *Scanner) currentPosition() Position {
	return Position{
		Offset: s.pos,
		Line:   s.line,
		Column: s.column,
	}
}

// isAtEnd returns true if we've reached the end of source
func (s *Scanner) isAtEnd() bool {
	return s.pos >= len(s.source)
}

// peek returns the current character without advancing
func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.pos]
}

// advance consumes and returns the current character
func (s *Scanner) advance() byte {
	if s.isAtEnd() {
		return 0
	}
	ch := s.source[s.pos]
	s.pos++
	if ch == CharNewline {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	return ch
}

// advanceN advances by n characters
func (s *Scanner) advanceN(n int) {
	for i := 0; i < n && !s.isAtEnd(); i++ {
		s.advance()
	}
}

func (s *Scanner) newScanError(kind ErrorKind, msg string, pos Position) *ScanError {
	return &ScanError{
		Kind:     kind,
		Message:  msg,
		Position: pos,
	}
}
