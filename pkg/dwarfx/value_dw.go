package dwarfx

import (
	"debug/dwarf"
	"fmt"
	"strings"

	"github.com/go-zwerg/zwerg/pkg/domain"
	"github.com/go-zwerg/zwerg/pkg/engine"
)

// Dwarf is the whole-file value the driver seeds the stack with: the
// starting point for "unit", "entry" and "symbol".
type Dwarf struct {
	Ctx  *Context
	Done Doneness
	pos  int
}

// NewDwarf wraps an opened context as a stack value.
func NewDwarf(ctx *Context, d Doneness) *Dwarf { return &Dwarf{Ctx: ctx, Done: d} }

func (v *Dwarf) ValueKind() engine.ValueKind { return KindDwarf }

func (v *Dwarf) Show(domain.Brevity) string {
	return fmt.Sprintf("<Dwarf %q>", v.Ctx.Path)
}

func (v *Dwarf) Clone() engine.Value {
	cl := *v
	return &cl
}

func (v *Dwarf) Cmp(other engine.Value) engine.CmpResult {
	o, ok := other.(*Dwarf)
	if !ok {
		return engine.CmpIncomparable
	}
	return cmpCtx(v.Ctx, o.Ctx)
}

func (v *Dwarf) Pos() int { return v.pos }

func (v *Dwarf) WithPos(pos int) engine.Value {
	cl := *v
	cl.pos = pos
	return &cl
}

// cmpCtx orders two contexts: identity means equal; distinct contexts
// order by path so stack comparison stays total across files.
func cmpCtx(a, b *Context) engine.CmpResult {
	if a == b {
		return engine.CmpEqual
	}
	if a.Path < b.Path {
		return engine.CmpLess
	}
	if a.Path > b.Path {
		return engine.CmpGreater
	}
	return engine.CmpEqual
}

func cmpOffsets(a, b dwarf.Offset) engine.CmpResult {
	switch {
	case a < b:
		return engine.CmpLess
	case a > b:
		return engine.CmpGreater
	default:
		return engine.CmpEqual
	}
}

// CU is a compile unit value: its root entry plus the owning context.
type CU struct {
	Ctx  *Context
	Root *dwarf.Entry
	Done Doneness
	pos  int
}

// NewCU wraps a compile unit root entry.
func NewCU(ctx *Context, root *dwarf.Entry, d Doneness) *CU {
	return &CU{Ctx: ctx, Root: root, Done: d}
}

func (v *CU) ValueKind() engine.ValueKind { return KindCU }

func (v *CU) Show(domain.Brevity) string {
	return fmt.Sprintf("CU %#x", uint64(v.Root.Offset))
}

func (v *CU) Clone() engine.Value {
	cl := *v
	return &cl
}

func (v *CU) Cmp(other engine.Value) engine.CmpResult {
	o, ok := other.(*CU)
	if !ok {
		return engine.CmpIncomparable
	}
	if r := cmpCtx(v.Ctx, o.Ctx); r != engine.CmpEqual {
		return r
	}
	return cmpOffsets(v.Root.Offset, o.Root.Offset)
}

func (v *CU) Pos() int { return v.pos }

func (v *CU) WithPos(pos int) engine.Value {
	cl := *v
	cl.pos = pos
	return &cl
}

// DIE is a debugging information entry value. Importer carries the
// offset of the DW_TAG_imported_unit DIE a cooked traversal crossed to
// reach this node, zero when none was crossed.
type DIE struct {
	Ctx      *Context
	Entry    *dwarf.Entry
	CUOff    dwarf.Offset
	Done     Doneness
	Importer dwarf.Offset
	pos      int
}

// NewDIE wraps an entry within the compile unit rooted at cuOff.
func NewDIE(ctx *Context, e *dwarf.Entry, cuOff dwarf.Offset, d Doneness) *DIE {
	return &DIE{Ctx: ctx, Entry: e, CUOff: cuOff, Done: d}
}

func (v *DIE) ValueKind() engine.ValueKind { return KindDIE }

func (v *DIE) Show(brv domain.Brevity) string {
	head := fmt.Sprintf("[%x]\t%s", uint64(v.Entry.Offset), TagDomain.Print(int64(v.Entry.Tag), domain.Brief))
	if brv == domain.Brief {
		return head
	}
	var b strings.Builder
	b.WriteString(head)
	for _, f := range v.Entry.Field {
		b.WriteString(fmt.Sprintf("\n\t%s\t%s",
			AttrDomain.Print(int64(f.Attr), domain.Brief), showFieldVal(f)))
	}
	return b.String()
}

func showFieldVal(f dwarf.Field) string {
	switch val := f.Val.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case dwarf.Offset:
		return fmt.Sprintf("[%x]", uint64(val))
	case []byte:
		return fmt.Sprintf("<%d byte block>", len(val))
	case uint64:
		if f.Class == dwarf.ClassAddress {
			return fmt.Sprintf("%#x", val)
		}
		return fmt.Sprintf("%d", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func (v *DIE) Clone() engine.Value {
	cl := *v
	return &cl
}

func (v *DIE) Cmp(other engine.Value) engine.CmpResult {
	o, ok := other.(*DIE)
	if !ok {
		return engine.CmpIncomparable
	}
	if r := cmpCtx(v.Ctx, o.Ctx); r != engine.CmpEqual {
		return r
	}
	return cmpOffsets(v.Entry.Offset, o.Entry.Offset)
}

func (v *DIE) Pos() int { return v.pos }

func (v *DIE) WithPos(pos int) engine.Value {
	cl := *v
	cl.pos = pos
	return &cl
}

// Attr is one attribute of a DIE, kept with its owner so "value" can
// decode context-dependent forms (references, location lists).
type Attr struct {
	Field dwarf.Field
	Owner *DIE
	pos   int
}

// NewAttr wraps one of owner's attribute fields.
func NewAttr(f dwarf.Field, owner *DIE) *Attr { return &Attr{Field: f, Owner: owner} }

func (v *Attr) ValueKind() engine.ValueKind { return KindAttr }

func (v *Attr) Show(brv domain.Brevity) string {
	name := AttrDomain.Print(int64(v.Field.Attr), domain.Brief)
	if brv == domain.Brief {
		return name
	}
	return fmt.Sprintf("%s\t%s", name, showFieldVal(v.Field))
}

func (v *Attr) Clone() engine.Value {
	cl := *v
	return &cl
}

func (v *Attr) Cmp(other engine.Value) engine.CmpResult {
	o, ok := other.(*Attr)
	if !ok {
		return engine.CmpIncomparable
	}
	if r := v.Owner.Cmp(o.Owner); r != engine.CmpEqual {
		return r
	}
	switch {
	case v.Field.Attr < o.Field.Attr:
		return engine.CmpLess
	case v.Field.Attr > o.Field.Attr:
		return engine.CmpGreater
	default:
		return engine.CmpEqual
	}
}

func (v *Attr) Pos() int { return v.pos }

func (v *Attr) WithPos(pos int) engine.Value {
	cl := *v
	cl.pos = pos
	return &cl
}
