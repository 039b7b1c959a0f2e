package engine

// Selector is an ordered list of value kinds a builtin overload
// requires on top of the stack: the first kind names the deepest
// consumed slot and the last names the top of the stack, the same order
// overload argument lists use.
type Selector []ValueKind

// Matches reports whether the stack's top len(s) values have exactly
// the kinds s names.
func (s Selector) Matches(stk *Stack) bool {
	if stk.Depth() < len(s) {
		return false
	}
	for i, k := range s {
		if stk.Nth(len(s)-1-i).ValueKind() != k {
			return false
		}
	}
	return true
}
