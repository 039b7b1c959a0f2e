package engine

import "fmt"

// UnderflowError reports a builtin applied to a stack shallower than
// its arity. It is recoverable: the offending stack is dropped and
// iteration continues.
type UnderflowError struct {
	Builtin string
	Need    int
	Have    int
}

func (e *UnderflowError) Error() string {
	return fmt.Sprintf("%q needs %d values on the stack, have %d", e.Builtin, e.Need, e.Have)
}
