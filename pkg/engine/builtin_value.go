package engine

import "github.com/go-zwerg/zwerg/pkg/domain"

// Value-introspection and domain-conversion builtins: pos, type, value,
// hex, oct, bin, dec, apply.

func posBuiltin(onError func(error)) *Builtin {
	return shuffleBuiltin("pos", 1, func(s *Stack) *Stack {
		s, v := s.Pop()
		return s.Push(NewConstant(int64(v.Pos()), domain.Plain, 0))
	}, onError)
}

func typeBuiltin(onError func(error)) *Builtin {
	return shuffleBuiltin("type", 1, func(s *Stack) *Stack {
		s, v := s.Pop()
		return s.Push(NewString(v.ValueKind().String(), 0))
	}, onError)
}

func domainConvBuiltin(name string, dom domain.Domain, onError func(error)) *Builtin {
	t := NewOverloadTable(name)
	t.AddOp(Selector{KindConstant}, OnceOverload(1, func(args []Value) (Value, error) {
		return NewConstant(args[0].(*Constant).Bits, dom, 0), nil
	}, onError))
	return &Builtin{Name: name, Kind: BuiltinOp, Table: t}
}

// valueBuiltin strips a constant back to the anonymous decimal domain;
// pkg/dwarfx registers the attribute-valued overload into the same
// table.
func valueBuiltin(onError func(error)) *Builtin {
	return domainConvBuiltin("value", domain.Plain, onError)
}

func applyBuiltin() *Builtin {
	t := NewOverloadTable("apply")
	t.AddOp(Selector{KindClosure}, func(upstream Producer) Producer {
		return NewApplyProducer(upstream)
	})
	return &Builtin{Name: "apply", Kind: BuiltinOp, Table: t}
}
