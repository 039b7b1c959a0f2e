package engine

import (
	"fmt"

	"github.com/go-zwerg/zwerg/pkg/domain"
)

// ValueKind identifies a value's dynamic type for overload dispatch and
// selector matching.
type ValueKind int

const (
	KindConstant ValueKind = iota
	KindString
	KindSequence
	KindClosure
	// KindDwarfBase is the first DWARF/ELF-specific kind; pkg/dwarfx
	// defines its own kinds starting here so the two packages never
	// collide over numeric values.
	KindDwarfBase
)

// kindNames lets a downstream package (pkg/dwarfx) name the kinds it
// allocates past KindDwarfBase, so overload diagnostics stay readable.
var kindNames = map[ValueKind]string{}

// RegisterKindName names an extension kind for diagnostics. Must be
// called before any query runs; vocabulary construction is the natural
// place.
func RegisterKindName(k ValueKind, name string) { kindNames[k] = name }

func (k ValueKind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindClosure:
		return "closure"
	default:
		if n, ok := kindNames[k]; ok {
			return n
		}
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// CmpResult is the tri-state (really four-state) result of comparing
// two values: they may be ordered, equal, or simply incomparable (e.g.
// a string against a sequence).
type CmpResult int

const (
	CmpLess CmpResult = iota
	CmpEqual
	CmpGreater
	CmpIncomparable
)

// Value is the dynamic-typed datum that flows through the stack: every
// producer and builtin operates on and produces Values.
type Value interface {
	// ValueKind reports this value's dynamic type for overload dispatch.
	ValueKind() ValueKind
	Show(brv domain.Brevity) string
	// Clone returns an independent copy; values are logically immutable
	// once produced; Clone exists because some operators thread a value
	// into more than one branch (ALT) and distinct branches must not
	// alias mutable state.
	Clone() Value
	// Cmp orders this value against another of possibly different kind.
	// Values of different kinds (other than both being arithmetic
	// constants) are CmpIncomparable.
	Cmp(other Value) CmpResult
	// Pos is the value's position within its originating sequence (the
	// zero-based index it held when produced from a SEQ/aggregate, or 0
	// for an initial value), used by the "pos" builtin.
	Pos() int
}

// Positioned is implemented by values whose position can be recomputed
// when a downstream producer re-emits them in a new order.
type Positioned interface {
	WithPos(pos int) Value
}

// Repositioned returns a copy of v carrying pos as its position, or v
// itself when its kind does not track positions.
func Repositioned(v Value, pos int) Value {
	if p, ok := v.(Positioned); ok {
		return p.WithPos(pos)
	}
	return v
}
