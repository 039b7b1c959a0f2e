package engine

// A Stack is the operand stack threaded through operator evaluation.
// It is an immutable snapshot from the caller's perspective:
// Push/Pop/WithFrame return a new Stack and leave the original as it
// was. Push and Pop copy the value slice; WithFrame and Fork share it,
// which is safe because no method writes into an existing slice. That
// lets ALT/CLOSE_STAR branches hold the same stack with no aliasing
// between them.
type Stack struct {
	values []Value
	frame  *Frame
}

// NewStack returns the empty stack with no frame.
func NewStack() *Stack {
	return &Stack{}
}

// Push returns a new stack with v on top.
func (s *Stack) Push(v Value) *Stack {
	values := make([]Value, len(s.values)+1)
	copy(values, s.values)
	values[len(values)-1] = v
	return &Stack{values: values, frame: s.frame}
}

// Pop returns a new stack with the top value removed, and that value.
// Pop on an empty stack panics:
func (s *Stack) Pop() (*Stack, Value) {
	n := len(s.values)
	top := s.values[n-1]
	values := make([]Value, n-1)
	copy(values, s.values[:n-1])
	return &Stack{values: values, frame: s.frame}, top
}

// Top returns the top value without popping it.
func (s *Stack) Top() Value {
	return s.values[len(s.values)-1]
}

// Nth returns the value n from the top (0 = Top()), without popping.
func (s *Stack) Nth(n int) Value {
	return s.values[len(s.values)-1-n]
}

// Depth reports how many values are on the stack.
func (s *Stack) Depth() int { return len(s.values) }

// Frame returns the current lexical frame.
func (s *Stack) Frame() *Frame { return s.frame }

// WithFrame returns a new stack with the same values but a different
// frame, used when SCOPE pushes a fresh frame or BLOCK restores a
// captured one.
func (s *Stack) WithFrame(f *Frame) *Stack {
	return &Stack{values: s.values, frame: f}
}

// Fork returns the stack with a private copy of its innermost frame
// and shared value slots. Producers that fan one input stack out into
// several emitted stacks (yielding overloads, SUBX_EVAL, FORMAT) fork
// each emission so a later BIND in one flow cannot trip the rebind
// fault or leak into a sibling flow.
func (s *Stack) Fork() *Stack {
	return &Stack{values: s.values, frame: s.frame.Clone()}
}

// Clone deep-copies the value slice (but not the values themselves,
// which are treated as immutable once produced) and clones the frame
// chain's writable head, so that two branches forked from the same
// Stack never observe each other's BIND writes.
func (s *Stack) Clone() *Stack {
	values := make([]Value, len(s.values))
	copy(values, s.values)
	return &Stack{values: values, frame: s.frame.Clone()}
}

// Cmp orders two stacks by depth first, then slot by slot from the top
// of the stack down, each slot by type tag before value. This is the
// total order the transitive-closure seen set is keyed by: a same-kind
// pair whose values still refuse to compare (e.g. enumeration constants
// of different domains, or two closures that are not the same) is what
// remains as a source of CmpIncomparable.
func (s *Stack) Cmp(o *Stack) CmpResult {
	switch {
	case len(s.values) < len(o.values):
		return CmpLess
	case len(s.values) > len(o.values):
		return CmpGreater
	}
	for i := len(s.values) - 1; i >= 0; i-- {
		a, b := s.values[i], o.values[i]
		ka, kb := a.ValueKind(), b.ValueKind()
		switch {
		case ka < kb:
			return CmpLess
		case ka > kb:
			return CmpGreater
		}
		switch a.Cmp(b) {
		case CmpLess:
			return CmpLess
		case CmpGreater:
			return CmpGreater
		case CmpIncomparable:
			return CmpIncomparable
		}
	}
	return CmpEqual
}
