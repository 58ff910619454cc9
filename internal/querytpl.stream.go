package internal

// ParamStream is a forward-only cursor over the parameter list.
// It never rewinds and is owned by a single execution.
type ParamStream struct {
	params []Value
	pos    int
}

// NewParamStream creates a stream positioned at the first parameter
func NewParamStream(params []Value) *ParamStream {
	return &ParamStream{params: params}
}

// Current returns the value under the cursor without moving it
func (s *ParamStream) Current() (Value, error) {
	if s.pos >= len(s.params) {
		return Value{}, &StreamError{
			Message: ErrMsgStreamExhausted,
			Index:   s.pos,
			Len:     len(s.params),
		}
	}
	return s.params[s.pos], nil
}

// Advance moves the cursor forward by one
func (s *ParamStream) Advance() {
	if s.pos < len(s.params) {
		s.pos++
	}
}

// Consumed returns how many parameters the cursor has passed
func (s *ParamStream) Consumed() int {
	return s.pos
}

// Remaining returns how many parameters are left
func (s *ParamStream) Remaining() int {
	return len(s.params) - s.pos
}
