package dwarfx

import (
	"debug/elf"
	"fmt"

	"github.com/go-zwerg/zwerg/pkg/domain"
	"github.com/go-zwerg/zwerg/pkg/engine"
)

// Symbol is one ELF symbol table record.
type Symbol struct {
	Sym   elf.Symbol
	Index int
	Ctx   *Context
	Done  Doneness
	pos   int
}

func (v *Symbol) ValueKind() engine.ValueKind { return KindSymbol }

func (v *Symbol) Show(brv domain.Brevity) string {
	if brv == domain.Brief {
		return v.Sym.Name
	}
	return fmt.Sprintf("%#x\t%d\t%s\t%s",
		v.Sym.Value, v.Sym.Size,
		symTypeName(elf.ST_TYPE(v.Sym.Info)), v.Sym.Name)
}

func symTypeName(t elf.SymType) string {
	switch t {
	case elf.STT_NOTYPE:
		return "NOTYPE"
	case elf.STT_OBJECT:
		return "OBJECT"
	case elf.STT_FUNC:
		return "FUNC"
	case elf.STT_SECTION:
		return "SECTION"
	case elf.STT_FILE:
		return "FILE"
	case elf.STT_COMMON:
		return "COMMON"
	case elf.STT_TLS:
		return "TLS"
	default:
		return t.String()
	}
}

func (v *Symbol) Clone() engine.Value {
	cl := *v
	return &cl
}

func (v *Symbol) Cmp(other engine.Value) engine.CmpResult {
	o, ok := other.(*Symbol)
	if !ok {
		return engine.CmpIncomparable
	}
	if r := cmpCtx(v.Ctx, o.Ctx); r != engine.CmpEqual {
		return r
	}
	switch {
	case v.Index < o.Index:
		return engine.CmpLess
	case v.Index > o.Index:
		return engine.CmpGreater
	default:
		return engine.CmpEqual
	}
}

func (v *Symbol) Pos() int { return v.pos }

func (v *Symbol) WithPos(pos int) engine.Value {
	cl := *v
	cl.pos = pos
	return &cl
}

// Section is one ELF section header as a value.
type Section struct {
	Sec   *elf.Section
	Index int
	Ctx   *Context
	pos   int
}

func (v *Section) ValueKind() engine.ValueKind { return KindSection }

func (v *Section) Show(brv domain.Brevity) string {
	if brv == domain.Brief {
		return v.Sec.Name
	}
	return fmt.Sprintf("%s\t%#x\t%#x", v.Sec.Name, v.Sec.Addr, v.Sec.Size)
}

func (v *Section) Clone() engine.Value {
	cl := *v
	return &cl
}

func (v *Section) Cmp(other engine.Value) engine.CmpResult {
	o, ok := other.(*Section)
	if !ok {
		return engine.CmpIncomparable
	}
	if r := cmpCtx(v.Ctx, o.Ctx); r != engine.CmpEqual {
		return r
	}
	switch {
	case v.Index < o.Index:
		return engine.CmpLess
	case v.Index > o.Index:
		return engine.CmpGreater
	default:
		return engine.CmpEqual
	}
}

func (v *Section) Pos() int { return v.pos }

func (v *Section) WithPos(pos int) engine.Value {
	cl := *v
	cl.pos = pos
	return &cl
}
