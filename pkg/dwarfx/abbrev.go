package dwarfx

import (
	"fmt"

	"github.com/go-zwerg/zwerg/pkg/domain"
	"github.com/go-zwerg/zwerg/pkg/engine"
	"github.com/go-zwerg/zwerg/pkg/utils"
)

// The .debug_abbrev section is a sequence of abbreviation units, each
// a run of declarations terminated by a zero code. debug/dwarf keeps
// its abbreviation handling private, so the "abbrev" family of
// builtins decodes the section here: a declaration is (code ULEB,
// tag ULEB, has-children byte, then (attr, form) ULEB pairs until a
// (0, 0) pair).

// AbbrevAttrSpec is one (attribute, form) pair of a declaration.
type AbbrevAttrSpec struct {
	Attr int64
	Form int64
}

// AbbrevDecl is one abbreviation declaration.
type AbbrevDecl struct {
	Off         int64 // section offset of the declaration
	Code        int64
	Tag         int64
	HasChildren bool
	Attrs       []AbbrevAttrSpec
}

// abbrevUnits decodes the whole section, cached on the context.
func (c *Context) abbrevUnits() ([]abbrevUnitData, error) {
	if c.abbrevOK {
		return c.abbrev, c.abbrevErr
	}
	c.abbrevOK = true

	sec := c.File.Section(".debug_abbrev")
	if sec == nil {
		c.abbrevErr = fmt.Errorf("%q has no .debug_abbrev section", c.Path)
		return nil, c.abbrevErr
	}
	data, err := sec.Data()
	if err != nil {
		c.abbrevErr = err
		return nil, err
	}

	pos := 0
	uleb := func() (int64, error) {
		var v int64
		shift := 0
		for {
			if pos >= len(data) {
				return 0, fmt.Errorf("truncated .debug_abbrev in %q", c.Path)
			}
			b := data[pos]
			pos++
			v |= int64(b&0x7f) << shift
			if b&0x80 == 0 {
				return v, nil
			}
			shift += 7
		}
	}

	var units []abbrevUnitData
	for pos < len(data) {
		unit := abbrevUnitData{off: int64(pos)}
		for {
			declOff := int64(pos)
			code, err := uleb()
			if err != nil {
				c.abbrevErr = err
				return nil, err
			}
			if code == 0 {
				break
			}
			tag, err := uleb()
			if err != nil {
				c.abbrevErr = err
				return nil, err
			}
			if pos >= len(data) {
				c.abbrevErr = fmt.Errorf("truncated .debug_abbrev in %q", c.Path)
				return nil, c.abbrevErr
			}
			hasChildren := data[pos] != 0
			pos++

			decl := AbbrevDecl{Off: declOff, Code: code, Tag: tag, HasChildren: hasChildren}
			for {
				attr, err := uleb()
				if err != nil {
					c.abbrevErr = err
					return nil, err
				}
				form, err := uleb()
				if err != nil {
					c.abbrevErr = err
					return nil, err
				}
				if attr == 0 && form == 0 {
					break
				}
				decl.Attrs = append(decl.Attrs, AbbrevAttrSpec{Attr: attr, Form: form})
			}
			unit.decls = append(unit.decls, decl)
		}
		units = append(units, unit)
	}
	c.abbrev = units
	return units, nil
}

type abbrevUnitData struct {
	off   int64
	decls []AbbrevDecl
}

// AbbrevUnit is one abbreviation unit as a stack value.
type AbbrevUnit struct {
	Ctx   *Context
	Off   int64
	Decls []AbbrevDecl
	pos   int
}

func (v *AbbrevUnit) ValueKind() engine.ValueKind { return KindAbbrevUnit }

func (v *AbbrevUnit) Show(domain.Brevity) string {
	return fmt.Sprintf("abbrev unit %#x (%d abbreviations)", v.Off, len(v.Decls))
}

func (v *AbbrevUnit) Clone() engine.Value {
	cl := *v
	return &cl
}

func (v *AbbrevUnit) Cmp(other engine.Value) engine.CmpResult {
	o, ok := other.(*AbbrevUnit)
	if !ok {
		return engine.CmpIncomparable
	}
	if r := cmpCtx(v.Ctx, o.Ctx); r != engine.CmpEqual {
		return r
	}
	return cmpInt64(v.Off, o.Off)
}

func (v *AbbrevUnit) Pos() int { return v.pos }

func (v *AbbrevUnit) WithPos(pos int) engine.Value {
	cl := *v
	cl.pos = pos
	return &cl
}

// Abbrev is one abbreviation declaration as a stack value.
type Abbrev struct {
	Ctx  *Context
	Decl AbbrevDecl
	pos  int
}

func (v *Abbrev) ValueKind() engine.ValueKind { return KindAbbrev }

func (v *Abbrev) Show(brv domain.Brevity) string {
	head := fmt.Sprintf("[%d] %s", v.Decl.Code, TagDomain.Print(v.Decl.Tag, domain.Brief))
	if brv == domain.Brief {
		return head
	}
	if v.Decl.HasChildren {
		return head + " children"
	}
	return head
}

func (v *Abbrev) Clone() engine.Value {
	cl := *v
	return &cl
}

func (v *Abbrev) Cmp(other engine.Value) engine.CmpResult {
	o, ok := other.(*Abbrev)
	if !ok {
		return engine.CmpIncomparable
	}
	if r := cmpCtx(v.Ctx, o.Ctx); r != engine.CmpEqual {
		return r
	}
	return cmpInt64(v.Decl.Off, o.Decl.Off)
}

func (v *Abbrev) Pos() int { return v.pos }

func (v *Abbrev) WithPos(pos int) engine.Value {
	cl := *v
	cl.pos = pos
	return &cl
}

// AbbrevAttr is one (attribute, form) pair as a stack value.
type AbbrevAttr struct {
	Ctx   *Context
	Owner AbbrevDecl
	Spec  AbbrevAttrSpec
	pos   int
}

func (v *AbbrevAttr) ValueKind() engine.ValueKind { return KindAbbrevAttr }

func (v *AbbrevAttr) Show(domain.Brevity) string {
	return fmt.Sprintf("%s %s",
		AttrDomain.Print(v.Spec.Attr, domain.Brief),
		FormDomain.Print(v.Spec.Form, domain.Brief))
}

func (v *AbbrevAttr) Clone() engine.Value {
	cl := *v
	return &cl
}

func (v *AbbrevAttr) Cmp(other engine.Value) engine.CmpResult {
	o, ok := other.(*AbbrevAttr)
	if !ok {
		return engine.CmpIncomparable
	}
	if r := cmpCtx(v.Ctx, o.Ctx); r != engine.CmpEqual {
		return r
	}
	if r := cmpInt64(v.Owner.Off, o.Owner.Off); r != engine.CmpEqual {
		return r
	}
	return cmpInt64(v.Spec.Attr, o.Spec.Attr)
}

func (v *AbbrevAttr) Pos() int { return v.pos }

func (v *AbbrevAttr) WithPos(pos int) engine.Value {
	cl := *v
	cl.pos = pos
	return &cl
}

func cmpInt64(a, b int64) engine.CmpResult {
	switch {
	case a < b:
		return engine.CmpLess
	case a > b:
		return engine.CmpGreater
	default:
		return engine.CmpEqual
	}
}

func abbrevBuiltin(onError func(error)) *engine.Builtin {
	t := engine.NewOverloadTable("abbrev")
	yieldOn("abbrev", engine.Selector{KindDwarf}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		dw := args[0].(*Dwarf)
		units, err := dw.Ctx.abbrevUnits()
		if err != nil {
			return nil, err
		}
		out := make([]engine.Value, len(units))
		for i, u := range units {
			out[i] = &AbbrevUnit{Ctx: dw.Ctx, Off: u.off, Decls: u.decls}
		}
		return out, nil
	})
	return &engine.Builtin{Name: "abbrev", Kind: engine.BuiltinOp, Table: t}
}

// registerAbbrevOverloads extends the shared traversal tables to the
// abbreviation values: entry walks a unit's declarations, attribute
// walks a declaration's pairs, and tag/offset/name/form project the
// obvious constants.
func registerAbbrevOverloads(v *engine.Vocabulary, onError func(error)) {
	if entry, ok := v.Lookup("entry"); ok {
		yieldOn("entry", engine.Selector{KindAbbrevUnit}, entry.Table, onError,
			func(args []engine.Value) ([]engine.Value, error) {
				u := args[0].(*AbbrevUnit)
				return utils.Map(u.Decls, func(d AbbrevDecl) engine.Value {
					return &Abbrev{Ctx: u.Ctx, Decl: d}
				}), nil
			})
	}
	if attribute, ok := v.Lookup("attribute"); ok {
		yieldOn("attribute", engine.Selector{KindAbbrev}, attribute.Table, onError,
			func(args []engine.Value) ([]engine.Value, error) {
				a := args[0].(*Abbrev)
				return utils.Map(a.Decl.Attrs, func(sp AbbrevAttrSpec) engine.Value {
					return &AbbrevAttr{Ctx: a.Ctx, Owner: a.Decl, Spec: sp}
				}), nil
			})
	}
	if tag, ok := v.Lookup("tag"); ok {
		yieldOn("tag", engine.Selector{KindAbbrev}, tag.Table, onError,
			func(args []engine.Value) ([]engine.Value, error) {
				a := args[0].(*Abbrev)
				return []engine.Value{engine.NewConstant(a.Decl.Tag, TagDomain, 0)}, nil
			})
	}
	if offset, ok := v.Lookup("offset"); ok {
		yieldOn("offset", engine.Selector{KindAbbrevUnit}, offset.Table, onError,
			func(args []engine.Value) ([]engine.Value, error) {
				u := args[0].(*AbbrevUnit)
				return []engine.Value{engine.NewConstant(u.Off, domain.Hex, 0)}, nil
			})
		yieldOn("offset", engine.Selector{KindAbbrev}, offset.Table, onError,
			func(args []engine.Value) ([]engine.Value, error) {
				a := args[0].(*Abbrev)
				return []engine.Value{engine.NewConstant(a.Decl.Off, domain.Hex, 0)}, nil
			})
	}
	if name, ok := v.Lookup("name"); ok {
		yieldOn("name", engine.Selector{KindAbbrevAttr}, name.Table, onError,
			func(args []engine.Value) ([]engine.Value, error) {
				a := args[0].(*AbbrevAttr)
				return []engine.Value{engine.NewConstant(a.Spec.Attr, AttrDomain, 0)}, nil
			})
	}
	if form, ok := v.Lookup("form"); ok {
		yieldOn("form", engine.Selector{KindAbbrevAttr}, form.Table, onError,
			func(args []engine.Value) ([]engine.Value, error) {
				a := args[0].(*AbbrevAttr)
				return []engine.Value{engine.NewConstant(a.Spec.Form, FormDomain, 0)}, nil
			})
	}
}

func codeBuiltin(onError func(error)) *engine.Builtin {
	t := engine.NewOverloadTable("code")
	yieldOn("code", engine.Selector{KindAbbrev}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		a := args[0].(*Abbrev)
		return []engine.Value{engine.NewConstant(a.Decl.Code, domain.Plain, 0)}, nil
	})
	return &engine.Builtin{Name: "code", Kind: engine.BuiltinOp, Table: t}
}
