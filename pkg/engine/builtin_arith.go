package engine

import (
	"errors"
	"fmt"
)

// Arithmetic builtins over constants, plus the concatenation overloads
// "add" grows for strings and sequences.

// ErrDivisionByZero is reported per offending stack; the stack is
// dropped and iteration continues.
var ErrDivisionByZero = errors.New("division by zero")

func arithOverload(name string, fn func(a, b int64) (int64, error)) func(args []Value) (Value, error) {
	return func(args []Value) (Value, error) {
		a := args[0].(*Constant)
		b := args[1].(*Constant)
		if !a.Dom.ComparableWith(b.Dom) {
			return nil, fmt.Errorf("%s: constants of domains %s and %s are not comparable",
				name, a.Dom.Name(), b.Dom.Name())
		}
		bits, err := fn(a.Bits, b.Bits)
		if err != nil {
			return nil, err
		}
		// The result keeps the non-plain domain when the operands disagree.
		return NewConstant(bits, a.Dom.MostEnclosing(b.Dom), 0), nil
	}
}

func addBuiltin(onError func(error)) *Builtin {
	t := NewOverloadTable("add")
	t.AddOp(Selector{KindConstant, KindConstant},
		OnceOverload(2, arithOverload("add", func(a, b int64) (int64, error) { return a + b, nil }), onError))
	t.AddOp(Selector{KindString, KindString},
		OnceOverload(2, func(args []Value) (Value, error) {
			return NewString(args[0].(*String).Text+args[1].(*String).Text, 0), nil
		}, onError))
	t.AddOp(Selector{KindSequence, KindSequence},
		OnceOverload(2, func(args []Value) (Value, error) {
			a, b := args[0].(*Sequence), args[1].(*Sequence)
			elems := make([]Value, 0, len(a.Elems)+len(b.Elems))
			elems = append(elems, a.Elems...)
			for _, v := range b.Elems {
				elems = append(elems, Repositioned(v, len(elems)))
			}
			return NewSequence(elems, 0), nil
		}, onError))
	return &Builtin{Name: "add", Kind: BuiltinOp, Table: t}
}

func binaryArithBuiltin(name string, onError func(error), fn func(a, b int64) (int64, error)) *Builtin {
	t := NewOverloadTable(name)
	t.AddOp(Selector{KindConstant, KindConstant}, OnceOverload(2, arithOverload(name, fn), onError))
	return &Builtin{Name: name, Kind: BuiltinOp, Table: t}
}

func subBuiltin(onError func(error)) *Builtin {
	return binaryArithBuiltin("sub", onError, func(a, b int64) (int64, error) { return a - b, nil })
}

func mulBuiltin(onError func(error)) *Builtin {
	return binaryArithBuiltin("mul", onError, func(a, b int64) (int64, error) { return a * b, nil })
}

func divBuiltin(onError func(error)) *Builtin {
	return binaryArithBuiltin("div", onError, func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	})
}

func modBuiltin(onError func(error)) *Builtin {
	return binaryArithBuiltin("mod", onError, func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a % b, nil
	})
}
