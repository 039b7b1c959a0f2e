package dwarfx

import (
	"debug/dwarf"

	"github.com/go-zwerg/zwerg/pkg/domain"
	"github.com/go-zwerg/zwerg/pkg/engine"
	"github.com/go-zwerg/zwerg/pkg/utils"
)

// Vocabulary layers the DWARF/ELF builtins over engine's generic
// vocabulary: the traversal words (unit, entry, child, parent,
// attribute, ...), the doneness converters, address-set operations
// registered into the tables engine already owns (add, length, elem,
// value), the @name attribute shorthands, and one constant word per
// known DW_TAG_/DW_AT_/DW_LANG_/DW_FORM_ name. onError receives recoverable
// per-stack diagnostics.
func Vocabulary(onError func(error)) *engine.Vocabulary {
	registerKindNames()

	dw := engine.NewVocabulary()
	dw.Register(unitBuiltin(onError))
	dw.Register(entryBuiltin(onError))
	dw.Register(rootBuiltin(onError))
	dw.Register(childBuiltin(onError))
	dw.Register(parentBuiltin(onError))
	dw.Register(attributeBuiltin(onError))
	dw.Register(offsetBuiltin(onError))
	dw.Register(tagBuiltin(onError))
	dw.Register(nameBuiltin(onError))
	dw.Register(formBuiltin(onError))
	dw.Register(donenessBuiltin("raw", Raw, onError))
	dw.Register(donenessBuiltin("cooked", Cooked, onError))
	dw.Register(addressBuiltin(onError))
	dw.Register(rangeBuiltin(onError))
	dw.Register(symbolBuiltin(onError))
	dw.Register(sectionBuiltin(onError))
	dw.Register(containsBuiltin())
	dw.Register(overlapsBuiltin())
	dw.Register(abbrevBuiltin(onError))
	dw.Register(codeBuiltin(onError))
	dw.Register(strtabBuiltin(onError))
	dw.Register(relocationBuiltin(onError))
	registerAttrShorthands(dw, onError)
	registerConstantWords(dw)

	v := engine.NewBaseVocabulary(onError).Merge(dw)
	registerAsetOverloads(v, onError)
	registerValueOverloads(v, onError)
	registerAbbrevOverloads(v, onError)
	return v
}

func yieldOn(name string, sel engine.Selector, t *engine.OverloadTable, onError func(error),
	fn func(args []engine.Value) ([]engine.Value, error)) {
	t.AddOp(sel, engine.YieldOverload(len(sel), func(args []engine.Value) (engine.ValueIter, error) {
		vs, err := fn(args)
		if err != nil {
			return nil, err
		}
		return engine.ValuesIter(vs...), nil
	}, onError))
}

// units lists the compile units visible at doneness d: cooked
// traversal hides partial units and type units, which are reachable
// only through their importers.
func units(ctx *Context, d Doneness) ([]engine.Value, error) {
	roots, err := ctx.CompileUnits()
	if err != nil {
		return nil, err
	}
	var out []engine.Value
	for _, root := range roots {
		if d == Cooked && root.Tag != dwarf.TagCompileUnit {
			continue
		}
		out = append(out, NewCU(ctx, root, d))
	}
	return out, nil
}

// UnitDIEs lists every DIE of the unit rooted at cu, in tree order.
func (c *Context) UnitDIEs(cu *dwarf.Entry) ([]*dwarf.Entry, error) {
	r := c.Data.Reader()
	r.Seek(cu.Offset)
	depth := 0
	first := true
	var out []*dwarf.Entry
	for {
		e, err := r.Next()
		if err != nil {
			return nil, err
		}
		if e == nil {
			return out, nil
		}
		if e.Tag == 0 {
			depth--
			if depth <= 0 {
				return out, nil
			}
			continue
		}
		if !first && depth == 0 {
			// Reached the next unit's root.
			return out, nil
		}
		out = append(out, e)
		if e.Children {
			depth++
		}
		first = false
	}
}

func unitDIEValues(ctx *Context, cu *dwarf.Entry, d Doneness) ([]engine.Value, error) {
	entries, err := ctx.UnitDIEs(cu)
	if err != nil {
		return nil, err
	}
	return utils.Map(entries, func(e *dwarf.Entry) engine.Value {
		return NewDIE(ctx, e, cu.Offset, d)
	}), nil
}

func unitBuiltin(onError func(error)) *engine.Builtin {
	t := engine.NewOverloadTable("unit")
	yieldOn("unit", engine.Selector{KindDwarf}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		dw := args[0].(*Dwarf)
		return units(dw.Ctx, dw.Done)
	})
	yieldOn("unit", engine.Selector{KindDIE}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		die := args[0].(*DIE)
		root, err := die.Ctx.entryAt(die.CUOff)
		if err != nil {
			return nil, err
		}
		return []engine.Value{NewCU(die.Ctx, root, die.Done)}, nil
	})
	return &engine.Builtin{Name: "unit", Kind: engine.BuiltinOp, Table: t}
}

func entryBuiltin(onError func(error)) *engine.Builtin {
	t := engine.NewOverloadTable("entry")
	yieldOn("entry", engine.Selector{KindDwarf}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		dw := args[0].(*Dwarf)
		cus, err := units(dw.Ctx, dw.Done)
		if err != nil {
			return nil, err
		}
		var out []engine.Value
		for _, cuv := range cus {
			cu := cuv.(*CU)
			dies, err := unitDIEValues(dw.Ctx, cu.Root, dw.Done)
			if err != nil {
				return nil, err
			}
			out = append(out, dies...)
		}
		return out, nil
	})
	yieldOn("entry", engine.Selector{KindCU}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		cu := args[0].(*CU)
		return unitDIEValues(cu.Ctx, cu.Root, cu.Done)
	})
	return &engine.Builtin{Name: "entry", Kind: engine.BuiltinOp, Table: t}
}

func rootBuiltin(onError func(error)) *engine.Builtin {
	t := engine.NewOverloadTable("root")
	yieldOn("root", engine.Selector{KindCU}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		cu := args[0].(*CU)
		return []engine.Value{NewDIE(cu.Ctx, cu.Root, cu.Root.Offset, cu.Done)}, nil
	})
	yieldOn("root", engine.Selector{KindDIE}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		die := args[0].(*DIE)
		root, err := die.Ctx.entryAt(die.CUOff)
		if err != nil {
			return nil, err
		}
		return []engine.Value{NewDIE(die.Ctx, root, die.CUOff, die.Done)}, nil
	})
	return &engine.Builtin{Name: "root", Kind: engine.BuiltinOp, Table: t}
}

func childBuiltin(onError func(error)) *engine.Builtin {
	t := engine.NewOverloadTable("child")
	yieldOn("child", engine.Selector{KindDIE}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		die := args[0].(*DIE)
		children, err := die.Ctx.Children(die.Entry.Offset, die.Done)
		if err != nil {
			return nil, err
		}
		out := make([]engine.Value, len(children))
		for i, ch := range children {
			d := NewDIE(die.Ctx, ch.entry, die.CUOff, die.Done)
			d.Importer = ch.importer
			out[i] = d
		}
		return out, nil
	})
	return &engine.Builtin{Name: "child", Kind: engine.BuiltinOp, Table: t}
}

func parentBuiltin(onError func(error)) *engine.Builtin {
	t := engine.NewOverloadTable("parent")
	yieldOn("parent", engine.Selector{KindDIE}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		die := args[0].(*DIE)
		off := die.Entry.Offset
		cuOff := die.CUOff
		// A DIE reached through an import point parents to the
		// importing DIE's parent in cooked mode.
		if die.Done == Cooked && die.Importer != 0 {
			cu, err := die.Ctx.CUFor(die.Importer)
			if err != nil {
				return nil, err
			}
			off, cuOff = die.Importer, cu.Offset
		}
		p, ok, err := die.Ctx.Parent(cuOff, off)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		e, err := die.Ctx.entryAt(p)
		if err != nil {
			return nil, err
		}
		return []engine.Value{NewDIE(die.Ctx, e, cuOff, die.Done)}, nil
	})
	return &engine.Builtin{Name: "parent", Kind: engine.BuiltinOp, Table: t}
}

func attributeBuiltin(onError func(error)) *engine.Builtin {
	t := engine.NewOverloadTable("attribute")
	yieldOn("attribute", engine.Selector{KindDIE}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		die := args[0].(*DIE)
		return utils.Map(die.Entry.Field, func(f dwarf.Field) engine.Value {
			return NewAttr(f, die)
		}), nil
	})
	return &engine.Builtin{Name: "attribute", Kind: engine.BuiltinOp, Table: t}
}

func offsetBuiltin(onError func(error)) *engine.Builtin {
	t := engine.NewOverloadTable("offset")
	yieldOn("offset", engine.Selector{KindDIE}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		die := args[0].(*DIE)
		return []engine.Value{engine.NewConstant(int64(die.Entry.Offset), domain.Hex, 0)}, nil
	})
	yieldOn("offset", engine.Selector{KindCU}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		cu := args[0].(*CU)
		return []engine.Value{engine.NewConstant(int64(cu.Root.Offset), domain.Hex, 0)}, nil
	})
	return &engine.Builtin{Name: "offset", Kind: engine.BuiltinOp, Table: t}
}

func tagBuiltin(onError func(error)) *engine.Builtin {
	t := engine.NewOverloadTable("tag")
	yieldOn("tag", engine.Selector{KindDIE}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		die := args[0].(*DIE)
		return []engine.Value{engine.NewConstant(int64(die.Entry.Tag), TagDomain, 0)}, nil
	})
	return &engine.Builtin{Name: "tag", Kind: engine.BuiltinOp, Table: t}
}

func nameBuiltin(onError func(error)) *engine.Builtin {
	t := engine.NewOverloadTable("name")
	yieldOn("name", engine.Selector{KindDIE}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		die := args[0].(*DIE)
		if n, ok := die.Entry.Val(dwarf.AttrName).(string); ok {
			return []engine.Value{engine.NewString(n, 0)}, nil
		}
		return nil, nil
	})
	yieldOn("name", engine.Selector{KindAttr}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		a := args[0].(*Attr)
		return []engine.Value{engine.NewConstant(int64(a.Field.Attr), AttrDomain, 0)}, nil
	})
	yieldOn("name", engine.Selector{KindSymbol}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		sym := args[0].(*Symbol)
		return []engine.Value{engine.NewString(sym.Sym.Name, 0)}, nil
	})
	yieldOn("name", engine.Selector{KindSection}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		sec := args[0].(*Section)
		return []engine.Value{engine.NewString(sec.Sec.Name, 0)}, nil
	})
	yieldOn("name", engine.Selector{KindDwarf}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		dw := args[0].(*Dwarf)
		return []engine.Value{engine.NewString(dw.Ctx.Path, 0)}, nil
	})
	return &engine.Builtin{Name: "name", Kind: engine.BuiltinOp, Table: t}
}

// formBuiltin reports an attribute's value class. debug/dwarf exposes
// the class it decoded an attribute under rather than the raw
// DW_FORM_ code, so that is what "form" yields here.
func formBuiltin(onError func(error)) *engine.Builtin {
	t := engine.NewOverloadTable("form")
	yieldOn("form", engine.Selector{KindAttr}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		a := args[0].(*Attr)
		return []engine.Value{engine.NewString(a.Field.Class.String(), 0)}, nil
	})
	return &engine.Builtin{Name: "form", Kind: engine.BuiltinOp, Table: t}
}

func donenessBuiltin(name string, d Doneness, onError func(error)) *engine.Builtin {
	t := engine.NewOverloadTable(name)
	yieldOn(name, engine.Selector{KindDwarf}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		dw := *args[0].(*Dwarf)
		dw.Done = d
		return []engine.Value{&dw}, nil
	})
	yieldOn(name, engine.Selector{KindCU}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		cu := *args[0].(*CU)
		cu.Done = d
		return []engine.Value{&cu}, nil
	})
	yieldOn(name, engine.Selector{KindDIE}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		die := *args[0].(*DIE)
		die.Done = d
		return []engine.Value{&die}, nil
	})
	yieldOn(name, engine.Selector{KindSymbol}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		sym := *args[0].(*Symbol)
		sym.Done = d
		return []engine.Value{&sym}, nil
	})
	return &engine.Builtin{Name: name, Kind: engine.BuiltinOp, Table: t}
}

func addressBuiltin(onError func(error)) *engine.Builtin {
	t := engine.NewOverloadTable("address")
	yieldOn("address", engine.Selector{KindDIE}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		die := args[0].(*DIE)
		ranges, err := die.Ctx.Data.Ranges(die.Entry)
		if err != nil {
			return nil, err
		}
		cov := Coverage{}
		for _, r := range ranges {
			cov = cov.Add(r[0], r[1])
		}
		return []engine.Value{NewAddrSet(cov)}, nil
	})
	yieldOn("address", engine.Selector{KindLoclistElem}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		le := args[0].(*LoclistElem)
		return []engine.Value{NewAddrSet(NewCoverage(Interval{le.Lo, le.Hi}))}, nil
	})
	yieldOn("address", engine.Selector{KindSymbol}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		sym := args[0].(*Symbol)
		return []engine.Value{NewAddrSet(NewCoverage(Interval{sym.Sym.Value, sym.Sym.Value + sym.Sym.Size}))}, nil
	})
	return &engine.Builtin{Name: "address", Kind: engine.BuiltinOp, Table: t}
}

func rangeBuiltin(onError func(error)) *engine.Builtin {
	t := engine.NewOverloadTable("range")
	yieldOn("range", engine.Selector{KindAddrSet}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		as := args[0].(*AddrSet)
		ivals := as.Cov.Intervals()
		out := make([]engine.Value, len(ivals))
		for i, iv := range ivals {
			out[i] = NewAddrSet(NewCoverage(iv))
		}
		return out, nil
	})
	return &engine.Builtin{Name: "range", Kind: engine.BuiltinOp, Table: t}
}

func symbolBuiltin(onError func(error)) *engine.Builtin {
	t := engine.NewOverloadTable("symbol")
	yieldOn("symbol", engine.Selector{KindDwarf}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		dw := args[0].(*Dwarf)
		syms, err := dw.Ctx.File.Symbols()
		if err != nil {
			return nil, err
		}
		out := make([]engine.Value, len(syms))
		for i, s := range syms {
			out[i] = &Symbol{Sym: s, Index: i, Ctx: dw.Ctx, Done: dw.Done}
		}
		return out, nil
	})
	return &engine.Builtin{Name: "symbol", Kind: engine.BuiltinOp, Table: t}
}

func sectionBuiltin(onError func(error)) *engine.Builtin {
	t := engine.NewOverloadTable("section")
	yieldOn("section", engine.Selector{KindDwarf}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
		dw := args[0].(*Dwarf)
		out := make([]engine.Value, len(dw.Ctx.File.Sections))
		for i, sec := range dw.Ctx.File.Sections {
			out[i] = &Section{Sec: sec, Index: i, Ctx: dw.Ctx}
		}
		return out, nil
	})
	return &engine.Builtin{Name: "section", Kind: engine.BuiltinOp, Table: t}
}

func containsBuiltin() *engine.Builtin {
	t := engine.NewOverloadTable("contains")
	t.AddPred(engine.Selector{KindAddrSet, KindAddrSet},
		engine.PredOverload("contains", 2, func(args []engine.Value) engine.PredResult {
			if args[0].(*AddrSet).Cov.ContainsAll(args[1].(*AddrSet).Cov) {
				return engine.PredYes
			}
			return engine.PredNo
		}))
	t.AddPred(engine.Selector{KindAddrSet, engine.KindConstant},
		engine.PredOverload("contains", 2, func(args []engine.Value) engine.PredResult {
			if args[0].(*AddrSet).Cov.ContainsAddr(uint64(args[1].(*engine.Constant).Bits)) {
				return engine.PredYes
			}
			return engine.PredNo
		}))
	return &engine.Builtin{Name: "contains", Kind: engine.BuiltinPred, Table: t}
}

func overlapsBuiltin() *engine.Builtin {
	t := engine.NewOverloadTable("overlaps")
	t.AddPred(engine.Selector{KindAddrSet, KindAddrSet},
		engine.PredOverload("overlaps", 2, func(args []engine.Value) engine.PredResult {
			if args[0].(*AddrSet).Cov.Overlaps(args[1].(*AddrSet).Cov) {
				return engine.PredYes
			}
			return engine.PredNo
		}))
	return &engine.Builtin{Name: "overlaps", Kind: engine.BuiltinPred, Table: t}
}

// registerAsetOverloads teaches engine's generic tables about address
// sets: union and point insertion via "add", covered-byte count via
// "length", lazy member iteration via "elem".
func registerAsetOverloads(v *engine.Vocabulary, onError func(error)) {
	if add, ok := v.Lookup("add"); ok {
		add.Table.AddOp(engine.Selector{KindAddrSet, KindAddrSet},
			engine.OnceOverload(2, func(args []engine.Value) (engine.Value, error) {
				return NewAddrSet(args[0].(*AddrSet).Cov.Union(args[1].(*AddrSet).Cov)), nil
			}, onError))
		add.Table.AddOp(engine.Selector{KindAddrSet, engine.KindConstant},
			engine.OnceOverload(2, func(args []engine.Value) (engine.Value, error) {
				addr := uint64(args[1].(*engine.Constant).Bits)
				return NewAddrSet(args[0].(*AddrSet).Cov.Add(addr, addr+1)), nil
			}, onError))
	}

	if length, ok := v.Lookup("length"); ok {
		length.Table.AddOp(engine.Selector{KindAddrSet},
			engine.OnceOverload(1, func(args []engine.Value) (engine.Value, error) {
				return engine.NewConstant(int64(args[0].(*AddrSet).Cov.Length()), domain.Plain, 0), nil
			}, onError))
	}

	if elem, ok := v.Lookup("elem"); ok {
		elem.Table.AddOp(engine.Selector{KindAddrSet},
			engine.YieldOverload(1, func(args []engine.Value) (engine.ValueIter, error) {
				ivals := args[0].(*AddrSet).Cov.Intervals()
				i, cur := 0, uint64(0)
				started := false
				return func() (engine.Value, bool) {
					for i < len(ivals) {
						if !started {
							cur = ivals[i].Lo
							started = true
						}
						if cur < ivals[i].Hi {
							v := engine.NewConstant(int64(cur), domain.Hex, 0)
							cur++
							return v, true
						}
						i++
						started = false
					}
					return nil, false
				}, nil
			}, onError))
		elem.Table.AddOp(engine.Selector{KindLoclistElem},
			engine.YieldOverload(1, func(args []engine.Value) (engine.ValueIter, error) {
				le := args[0].(*LoclistElem)
				ops, err := exprOps(le.Expr, le.Owner)
				if err != nil {
					return nil, err
				}
				vs := make([]engine.Value, len(ops))
				for i, o := range ops {
					vs[i] = o
				}
				return engine.ValuesIter(vs...), nil
			}, onError))
	}
}

// registerValueOverloads extends the "value" builtin to attributes and
// symbols.
func registerValueOverloads(v *engine.Vocabulary, onError func(error)) {
	val, ok := v.Lookup("value")
	if !ok {
		return
	}
	val.Table.AddOp(engine.Selector{KindAttr},
		engine.YieldOverload(1, func(args []engine.Value) (engine.ValueIter, error) {
			vs, err := attrValues(args[0].(*Attr), onError)
			if err != nil {
				return nil, err
			}
			return engine.ValuesIter(vs...), nil
		}, onError))
	val.Table.AddOp(engine.Selector{KindSymbol},
		engine.OnceOverload(1, func(args []engine.Value) (engine.Value, error) {
			return engine.NewConstant(int64(args[0].(*Symbol).Sym.Value), domain.Hex, 0), nil
		}, onError))
}

// registerAttrShorthands registers one @name word per known DW_AT_
// constant: "@name" on a DIE yields the interpreted values of that
// attribute, nothing when the DIE lacks it.
func registerAttrShorthands(v *engine.Vocabulary, onError func(error)) {
	for name, code := range attrCodes {
		code := code
		attr := dwarf.Attr(code)
		t := engine.NewOverloadTable("@" + name)
		yieldOn("@"+name, engine.Selector{KindDIE}, t, onError, func(args []engine.Value) ([]engine.Value, error) {
			die := args[0].(*DIE)
			for _, f := range die.Entry.Field {
				if f.Attr == attr {
					return attrValues(NewAttr(f, die), onError)
				}
			}
			return nil, nil
		})
		v.Register(&engine.Builtin{Name: "@" + name, Kind: engine.BuiltinOp, Table: t})
	}
}

// registerConstantWords makes every known DW_TAG_/DW_AT_/DW_LANG_/DW_FORM_ name
// usable as a literal pushing its domain constant.
func registerConstantWords(v *engine.Vocabulary) {
	register := func(names map[int64]string, dom domain.Domain) {
		for code, name := range names {
			code := code
			dom := dom
			v.Register(&engine.Builtin{
				Name: name,
				Kind: engine.BuiltinOp,
				MkOp: func(upstream engine.Producer) engine.Producer {
					return engine.NewConstProducer(upstream, func(pos int) engine.Value {
						return engine.NewConstant(code, dom, pos)
					})
				},
			})
		}
	}
	register(tagNames, TagDomain)
	register(attrNames, AttrDomain)
	register(langNames, LangDomain)
	register(formNames, FormDomain)
}
