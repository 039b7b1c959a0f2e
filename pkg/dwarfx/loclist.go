package dwarfx

import (
	"bytes"
	"fmt"

	"github.com/go-delve/delve/pkg/dwarf/op"

	"github.com/go-zwerg/zwerg/pkg/domain"
	"github.com/go-zwerg/zwerg/pkg/engine"
	"github.com/go-zwerg/zwerg/pkg/utils"
)

// LoclistElem is one entry of a location list: an address range paired
// with the DWARF expression describing the location over that range. A
// location expression attribute (DW_FORM_exprloc) becomes a single
// element with an unbounded range.
type LoclistElem struct {
	Lo, Hi uint64
	Expr   []byte
	Owner  *Attr
	pos    int
}

func (v *LoclistElem) ValueKind() engine.ValueKind { return KindLoclistElem }

func (v *LoclistElem) Show(domain.Brevity) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%#x..%#x:", v.Lo, v.Hi)
	op.PrettyPrint(&b, v.Expr, nil)
	return b.String()
}

func (v *LoclistElem) Clone() engine.Value {
	cl := *v
	cl.Expr = append([]byte(nil), v.Expr...)
	return &cl
}

func (v *LoclistElem) Cmp(other engine.Value) engine.CmpResult {
	o, ok := other.(*LoclistElem)
	if !ok {
		return engine.CmpIncomparable
	}
	switch {
	case v.Lo < o.Lo:
		return engine.CmpLess
	case v.Lo > o.Lo:
		return engine.CmpGreater
	case v.Hi < o.Hi:
		return engine.CmpLess
	case v.Hi > o.Hi:
		return engine.CmpGreater
	}
	switch c := bytes.Compare(v.Expr, o.Expr); {
	case c < 0:
		return engine.CmpLess
	case c > 0:
		return engine.CmpGreater
	default:
		return engine.CmpEqual
	}
}

func (v *LoclistElem) Pos() int { return v.pos }

func (v *LoclistElem) WithPos(pos int) engine.Value {
	cl := *v
	cl.pos = pos
	return &cl
}

// LoclistOp is a single opcode of a location expression, addressed by
// its byte offset within the element's expression.
type LoclistOp struct {
	Off   int
	Code  byte
	Bytes []byte
	Owner *Attr
	pos   int
}

func (v *LoclistOp) ValueKind() engine.ValueKind { return KindLoclistOp }

func (v *LoclistOp) Show(domain.Brevity) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%d:", v.Off)
	op.PrettyPrint(&b, v.Bytes, nil)
	return b.String()
}

func (v *LoclistOp) Clone() engine.Value {
	cl := *v
	cl.Bytes = append([]byte(nil), v.Bytes...)
	return &cl
}

func (v *LoclistOp) Cmp(other engine.Value) engine.CmpResult {
	o, ok := other.(*LoclistOp)
	if !ok {
		return engine.CmpIncomparable
	}
	switch {
	case v.Off < o.Off:
		return engine.CmpLess
	case v.Off > o.Off:
		return engine.CmpGreater
	}
	switch c := bytes.Compare(v.Bytes, o.Bytes); {
	case c < 0:
		return engine.CmpLess
	case c > 0:
		return engine.CmpGreater
	default:
		return engine.CmpEqual
	}
}

func (v *LoclistOp) Pos() int { return v.pos }

func (v *LoclistOp) WithPos(pos int) engine.Value {
	cl := *v
	cl.pos = pos
	return &cl
}

// readLoclist decodes the DWARF 2-4 .debug_loc entries starting at
// sectOff: (lo, hi) address pairs relative to base, a 2-byte
// expression length and the expression bytes, terminated by a (0, 0)
// pair; an all-ones lo is a base-address selector. base is the owning
// compile unit's low pc.
func readLoclist(c *Context, sectOff int64, base uint64, owner *Attr) ([]*LoclistElem, error) {
	data, err := c.DebugLoc()
	if err != nil {
		return nil, err
	}
	if sectOff < 0 || sectOff >= int64(len(data)) {
		return nil, fmt.Errorf("location list offset %#x out of range in %q", sectOff, c.Path)
	}

	ptr := c.PtrSize()
	bo := c.File.ByteOrder
	buf := data[sectOff:]
	pos := 0

	readAddr := func() (uint64, error) {
		if pos+ptr > len(buf) {
			return 0, fmt.Errorf("truncated location list at %#x in %q", sectOff, c.Path)
		}
		var v uint64
		if ptr == 4 {
			v = uint64(bo.Uint32(buf[pos:]))
		} else {
			v = bo.Uint64(buf[pos:])
		}
		pos += ptr
		return v, nil
	}

	baseSelector := ^uint64(0)
	if ptr == 4 {
		baseSelector = 0xffffffff
	}

	var elems []*LoclistElem
	for {
		lo, err := readAddr()
		if err != nil {
			return nil, err
		}
		hi, err := readAddr()
		if err != nil {
			return nil, err
		}
		if lo == 0 && hi == 0 {
			return elems, nil
		}
		if lo == baseSelector {
			base = hi
			continue
		}
		if pos+2 > len(buf) {
			return nil, fmt.Errorf("truncated location list at %#x in %q", sectOff, c.Path)
		}
		exprLen := int(bo.Uint16(buf[pos:]))
		pos += 2
		if pos+exprLen > len(buf) {
			return nil, fmt.Errorf("truncated location expression at %#x in %q", sectOff, c.Path)
		}
		expr := append([]byte(nil), buf[pos:pos+exprLen]...)
		pos += exprLen
		elems = append(elems, &LoclistElem{Lo: base + lo, Hi: base + hi, Expr: expr, Owner: owner})
	}
}

// exprOps splits a location expression into its individual opcodes.
// Operand sizes follow the DWARF 4 encoding; an opcode with an
// operand size this decoder does not know ends the split with what was
// decoded so far and an error describing the unknown opcode.
func exprOps(expr []byte, owner *Attr) ([]*LoclistOp, error) {
	var ops []*LoclistOp
	pos := 0
	for pos < len(expr) {
		start := pos
		code := expr[pos]
		pos++
		size, ok := opOperandSize(code, expr[pos:])
		if !ok {
			return ops, utils.MakeError(
				fmt.Errorf("unknown DWARF expression opcode %#x", code),
				"splitting location expression at byte %d", start)
		}
		pos += size
		if pos > len(expr) {
			pos = len(expr)
		}
		ops = append(ops, &LoclistOp{
			Off:   start,
			Code:  code,
			Bytes: append([]byte(nil), expr[start:pos]...),
			Owner: owner,
		})
	}
	return ops, nil
}

// opOperandSize gives the operand byte count following opcode. tail is
// the remaining expression, consulted for LEB128 and sized operands.
func opOperandSize(code byte, tail []byte) (int, bool) {
	const (
		opAddr       = 0x03
		opConst1u    = 0x08
		opConst1s    = 0x09
		opConst2u    = 0x0a
		opConst2s    = 0x0b
		opConst4u    = 0x0c
		opConst4s    = 0x0d
		opConst8u    = 0x0e
		opConst8s    = 0x0f
		opConstu     = 0x10
		opConsts     = 0x11
		opPick       = 0x15
		opPlusUconst = 0x23
		opSkip       = 0x2f
		opBra        = 0x28
		opBreg0      = 0x70
		opBreg31     = 0x8f
		opRegx       = 0x90
		opFbreg      = 0x91
		opBregx      = 0x92
		opPiece      = 0x93
		opDerefSize  = 0x94
		opXderefSize = 0x95
		opCallFrame  = 0x9c
		opBitPiece   = 0x9d
		opImplicit   = 0x9e
		opStackValue = 0x9f
	)

	lebLen := func(off int) int {
		n := 0
		for off+n < len(tail) {
			b := tail[off+n]
			n++
			if b&0x80 == 0 {
				break
			}
		}
		return n
	}

	switch {
	case code == opAddr:
		return 8, true
	case code == opConst1u || code == opConst1s || code == opPick || code == opDerefSize || code == opXderefSize:
		return 1, true
	case code == opConst2u || code == opConst2s || code == opSkip || code == opBra:
		return 2, true
	case code == opConst4u || code == opConst4s:
		return 4, true
	case code == opConst8u || code == opConst8s:
		return 8, true
	case code == opConstu || code == opConsts || code == opPlusUconst ||
		code == opRegx || code == opFbreg || code == opPiece:
		return lebLen(0), true
	case code == opBregx || code == opBitPiece:
		n := lebLen(0)
		return n + lebLen(n), true
	case code == opImplicit:
		n := lebLen(0)
		sz := 0
		for i := 0; i < n; i++ {
			sz |= int(tail[i]&0x7f) << (7 * i)
		}
		return n + sz, true
	case code >= opBreg0 && code <= opBreg31:
		return lebLen(0), true
	case code >= 0x30 && code <= 0x4f: // lit0..lit31
		return 0, true
	case code >= 0x50 && code <= 0x6f: // reg0..reg31
		return 0, true
	case code <= 0x2e || code == opCallFrame || code == opStackValue:
		// Stack-machine opcodes without operands.
		return 0, true
	default:
		return 0, false
	}
}
