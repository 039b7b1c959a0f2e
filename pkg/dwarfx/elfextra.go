package dwarfx

import (
	"debug/elf"
	"fmt"

	"github.com/go-zwerg/zwerg/pkg/domain"
	"github.com/go-zwerg/zwerg/pkg/engine"
)

// StrtabEntry is one string of a string-table section.
type StrtabEntry struct {
	Str string
	Off int64 // offset of the string within its section
	Sec *elf.Section
	Ctx *Context
	pos int
}

func (v *StrtabEntry) ValueKind() engine.ValueKind { return KindStrtabEntry }

func (v *StrtabEntry) Show(brv domain.Brevity) string {
	if brv == domain.Brief {
		return v.Str
	}
	return fmt.Sprintf("%#x\t%q", v.Off, v.Str)
}

func (v *StrtabEntry) Clone() engine.Value {
	cl := *v
	return &cl
}

func (v *StrtabEntry) Cmp(other engine.Value) engine.CmpResult {
	o, ok := other.(*StrtabEntry)
	if !ok {
		return engine.CmpIncomparable
	}
	if r := cmpCtx(v.Ctx, o.Ctx); r != engine.CmpEqual {
		return r
	}
	if v.Sec.Name != o.Sec.Name {
		if v.Sec.Name < o.Sec.Name {
			return engine.CmpLess
		}
		return engine.CmpGreater
	}
	return cmpInt64(v.Off, o.Off)
}

func (v *StrtabEntry) Pos() int { return v.pos }

func (v *StrtabEntry) WithPos(pos int) engine.Value {
	cl := *v
	cl.pos = pos
	return &cl
}

// Reloc is one relocation record of a REL/RELA section.
type Reloc struct {
	Off    uint64
	Info   uint64
	Addend int64
	HasAdd bool
	Sec    *elf.Section
	Ctx    *Context
	pos    int
}

func (v *Reloc) ValueKind() engine.ValueKind { return KindReloc }

func (v *Reloc) Show(domain.Brevity) string {
	if v.HasAdd {
		return fmt.Sprintf("%#x\ttype=%d sym=%d addend=%d",
			v.Off, uint32(v.Info), uint32(v.Info>>32), v.Addend)
	}
	return fmt.Sprintf("%#x\ttype=%d sym=%d", v.Off, uint32(v.Info), uint32(v.Info>>32))
}

func (v *Reloc) Clone() engine.Value {
	cl := *v
	return &cl
}

func (v *Reloc) Cmp(other engine.Value) engine.CmpResult {
	o, ok := other.(*Reloc)
	if !ok {
		return engine.CmpIncomparable
	}
	if r := cmpCtx(v.Ctx, o.Ctx); r != engine.CmpEqual {
		return r
	}
	switch {
	case v.Off < o.Off:
		return engine.CmpLess
	case v.Off > o.Off:
		return engine.CmpGreater
	default:
		return engine.CmpEqual
	}
}

func (v *Reloc) Pos() int { return v.pos }

func (v *Reloc) WithPos(pos int) engine.Value {
	cl := *v
	cl.pos = pos
	return &cl
}

// strtabEntries splits a SHT_STRTAB section's data into its
// NUL-terminated strings.
func strtabEntries(ctx *Context, sec *elf.Section) ([]engine.Value, error) {
	if sec.Type != elf.SHT_STRTAB {
		return nil, fmt.Errorf("section %q is not a string table", sec.Name)
	}
	data, err := sec.Data()
	if err != nil {
		return nil, err
	}
	var out []engine.Value
	start := 0
	for i, b := range data {
		if b == 0 {
			if i > start {
				out = append(out, &StrtabEntry{
					Str: string(data[start:i]),
					Off: int64(start),
					Sec: sec,
					Ctx: ctx,
				})
			}
			start = i + 1
		}
	}
	return out, nil
}

// relocEntries decodes a 64-bit REL or RELA section.
func relocEntries(ctx *Context, sec *elf.Section) ([]engine.Value, error) {
	if sec.Type != elf.SHT_RELA && sec.Type != elf.SHT_REL {
		return nil, fmt.Errorf("section %q is not a relocation table", sec.Name)
	}
	if ctx.File.Class != elf.ELFCLASS64 {
		return nil, fmt.Errorf("relocation decoding supports 64-bit objects only")
	}
	data, err := sec.Data()
	if err != nil {
		return nil, err
	}
	bo := ctx.File.ByteOrder
	rela := sec.Type == elf.SHT_RELA
	size := 16
	if rela {
		size = 24
	}
	var out []engine.Value
	for pos := 0; pos+size <= len(data); pos += size {
		r := &Reloc{
			Off:    bo.Uint64(data[pos:]),
			Info:   bo.Uint64(data[pos+8:]),
			HasAdd: rela,
			Sec:    sec,
			Ctx:    ctx,
		}
		if rela {
			r.Addend = int64(bo.Uint64(data[pos+16:]))
		}
		out = append(out, r)
	}
	return out, nil
}

func strtabBuiltin(onError func(error)) *engine.Builtin {
	t := engine.NewOverloadTable("strtab")
	yieldOn("strtab", engine.Selector{KindSection}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		sec := args[0].(*Section)
		return strtabEntries(sec.Ctx, sec.Sec)
	})
	return &engine.Builtin{Name: "strtab", Kind: engine.BuiltinOp, Table: t}
}

func relocationBuiltin(onError func(error)) *engine.Builtin {
	t := engine.NewOverloadTable("relocation")
	yieldOn("relocation", engine.Selector{KindSection}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		sec := args[0].(*Section)
		return relocEntries(sec.Ctx, sec.Sec)
	})
	return &engine.Builtin{Name: "relocation", Kind: engine.BuiltinOp, Table: t}
}
