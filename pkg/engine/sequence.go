package engine

import (
	"github.com/go-zwerg/zwerg/pkg/domain"
	"github.com/go-zwerg/zwerg/pkg/utils"
)

// Sequence is an ordered, heterogeneous list of values, the result of
// bracket-expression evaluation.
type Sequence struct {
	Elems []Value
	pos   int
}

// NewSequence builds a Sequence at stack position pos.
func NewSequence(elems []Value, pos int) *Sequence { return &Sequence{Elems: elems, pos: pos} }

func (s *Sequence) ValueKind() ValueKind { return KindSequence }

func (s *Sequence) Show(domain.Brevity) string {
	parts := utils.Map(s.Elems, func(e Value) string { return e.Show(domain.Full) })
	return "[" + utils.FormatSlice(parts, ", ") + "]"
}

func (s *Sequence) Clone() Value {
	elems := make([]Value, len(s.Elems))
	for i, e := range s.Elems {
		elems[i] = e.Clone()
	}
	return &Sequence{Elems: elems, pos: s.pos}
}

func (s *Sequence) Cmp(other Value) CmpResult {
	o, ok := other.(*Sequence)
	if !ok {
		return CmpIncomparable
	}
	n := len(s.Elems)
	if len(o.Elems) < n {
		n = len(o.Elems)
	}
	for i := 0; i < n; i++ {
		switch s.Elems[i].Cmp(o.Elems[i]) {
		case CmpLess:
			return CmpLess
		case CmpGreater:
			return CmpGreater
		case CmpIncomparable:
			return CmpIncomparable
		}
	}
	switch {
	case len(s.Elems) < len(o.Elems):
		return CmpLess
	case len(s.Elems) > len(o.Elems):
		return CmpGreater
	default:
		return CmpEqual
	}
}

func (s *Sequence) Pos() int { return s.pos }

// WithPos returns a copy of the sequence at a new stack position; the
// element values are shared, matching Clone's shallow-on-need policy.
func (s *Sequence) WithPos(pos int) Value {
	cl := *s
	cl.pos = pos
	return &cl
}
