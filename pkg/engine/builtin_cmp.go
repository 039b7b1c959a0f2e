package engine

// Comparison predicates relating the second-from-top value to the top
// one: "A B lt" holds iff A < B. Incomparable operands yield PredFail,
// which an enclosing assert escalates to a fatal error.
func cmpBuiltin(name string, op CmpOp) *Builtin {
	return &Builtin{
		Name: name,
		Kind: BuiltinPred,
		MkPred: func() Pred {
			return NewLiteralPred(name, func(s *Stack) PredResult {
				if s.Depth() < 2 {
					return PredFail
				}
				r := s.Nth(1).Cmp(s.Nth(0))
				if r == CmpIncomparable {
					return PredFail
				}
				if cmpOpHolds(op, r) {
					return PredYes
				}
				return PredNo
			})
		},
	}
}
