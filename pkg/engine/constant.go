package engine

import "github.com/go-zwerg/zwerg/pkg/domain"

// Constant is a scalar integer value tagged with a domain controlling
// how it prints and whether it may participate in arithmetic.
type Constant struct {
	Bits int64
	Dom  domain.Domain
	pos  int
}

// NewConstant builds a Constant at stack position pos.
func NewConstant(bits int64, dom domain.Domain, pos int) *Constant {
	return &Constant{Bits: bits, Dom: dom, pos: pos}
}

func (c *Constant) ValueKind() ValueKind { return KindConstant }

func (c *Constant) Show(brv domain.Brevity) string { return c.Dom.Print(c.Bits, brv) }

func (c *Constant) Clone() Value {
	cl := *c
	return &cl
}

func (c *Constant) Cmp(other Value) CmpResult {
	o, ok := other.(*Constant)
	if !ok || !c.Dom.ComparableWith(o.Dom) {
		return CmpIncomparable
	}
	switch {
	case c.Bits < o.Bits:
		return CmpLess
	case c.Bits > o.Bits:
		return CmpGreater
	default:
		return CmpEqual
	}
}

func (c *Constant) Pos() int { return c.pos }

// SafeArith reports whether this constant's domain allows it to
// participate in arithmetic builtins.
func (c *Constant) SafeArith() bool { return c.Dom.SafeArith() }

// WithPos returns a copy of the constant at a new stack position.
func (c *Constant) WithPos(pos int) Value {
	cl := *c
	cl.pos = pos
	return &cl
}
