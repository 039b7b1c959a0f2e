package engine

import (
	"strings"
	"unicode/utf8"

	"github.com/go-zwerg/zwerg/pkg/domain"
	"github.com/go-zwerg/zwerg/pkg/utils"
)

// Sequence and string builtins: length, elem, relem, empty, find.
// pkg/dwarfx registers further overloads (address sets, attribute
// lists) into the same tables.

func lengthBuiltin(onError func(error)) *Builtin {
	t := NewOverloadTable("length")
	t.AddOp(Selector{KindSequence}, OnceOverload(1, func(args []Value) (Value, error) {
		return NewConstant(int64(len(args[0].(*Sequence).Elems)), domain.Plain, 0), nil
	}, onError))
	t.AddOp(Selector{KindString}, OnceOverload(1, func(args []Value) (Value, error) {
		return NewConstant(int64(utf8.RuneCountInString(args[0].(*String).Text)), domain.Plain, 0), nil
	}, onError))
	return &Builtin{Name: "length", Kind: BuiltinOp, Table: t}
}

func elemIter(vs []Value, reverse bool) ValueIter {
	i := 0
	return func() (Value, bool) {
		if i >= len(vs) {
			return nil, false
		}
		idx := i
		if reverse {
			idx = len(vs) - 1 - i
		}
		i++
		return vs[idx].Clone(), true
	}
}

func stringElems(text string) []Value {
	runes := []rune(text)
	return utils.Iota(len(runes), func(i int) Value {
		return NewString(string(runes[i]), i)
	})
}

func elemBuiltin(name string, reverse bool, onError func(error)) *Builtin {
	t := NewOverloadTable(name)
	t.AddOp(Selector{KindSequence}, YieldOverload(1, func(args []Value) (ValueIter, error) {
		return elemIter(args[0].(*Sequence).Elems, reverse), nil
	}, onError))
	t.AddOp(Selector{KindString}, YieldOverload(1, func(args []Value) (ValueIter, error) {
		return elemIter(stringElems(args[0].(*String).Text), reverse), nil
	}, onError))
	return &Builtin{Name: name, Kind: BuiltinOp, Table: t}
}

func emptyBuiltin() *Builtin {
	t := NewOverloadTable("empty")
	t.AddPred(Selector{KindSequence}, PredOverload("empty", 1, func(args []Value) PredResult {
		if len(args[0].(*Sequence).Elems) == 0 {
			return PredYes
		}
		return PredNo
	}))
	t.AddPred(Selector{KindString}, PredOverload("empty", 1, func(args []Value) PredResult {
		if args[0].(*String).Text == "" {
			return PredYes
		}
		return PredNo
	}))
	return &Builtin{Name: "empty", Kind: BuiltinPred, Table: t}
}

// seqContains reports whether needle occurs in haystack as a contiguous
// subsequence, by pairwise value equality.
func seqContains(haystack, needle []Value) bool {
	if len(needle) == 0 {
		return true
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, n := range needle {
			if haystack[i+j].Cmp(n) != CmpEqual {
				continue outer
			}
		}
		return true
	}
	return false
}

func findBuiltin() *Builtin {
	t := NewOverloadTable("find")
	t.AddPred(Selector{KindString, KindString}, PredOverload("find", 2, func(args []Value) PredResult {
		if strings.Contains(args[0].(*String).Text, args[1].(*String).Text) {
			return PredYes
		}
		return PredNo
	}))
	t.AddPred(Selector{KindSequence, KindSequence}, PredOverload("find", 2, func(args []Value) PredResult {
		if seqContains(args[0].(*Sequence).Elems, args[1].(*Sequence).Elems) {
			return PredYes
		}
		return PredNo
	}))
	return &Builtin{Name: "find", Kind: BuiltinPred, Table: t}
}
