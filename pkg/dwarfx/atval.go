package dwarfx

import (
	"debug/dwarf"
	"fmt"

	"github.com/go-zwerg/zwerg/pkg/domain"
	"github.com/go-zwerg/zwerg/pkg/engine"
)

// attrValues interprets one attribute into the engine values the
// "value" builtin yields: most attribute forms produce exactly one
// value, location lists produce one value per list element. warn
// receives non-fatal interpretation notes (the DW_AT_const_value
// signedness fallback).
func attrValues(a *Attr, warn func(error)) ([]engine.Value, error) {
	f := a.Field
	ctx := a.Owner.Ctx

	switch f.Class {
	case dwarf.ClassString:
		return []engine.Value{engine.NewString(f.Val.(string), 0)}, nil

	case dwarf.ClassAddress:
		return []engine.Value{engine.NewConstant(int64(f.Val.(uint64)), domain.Hex, 0)}, nil

	case dwarf.ClassFlag:
		bits := int64(0)
		if f.Val.(bool) {
			bits = 1
		}
		return []engine.Value{engine.NewConstant(bits, domain.Plain, 0)}, nil

	case dwarf.ClassConstant:
		bits := f.Val.(int64)
		dom := domain.Plain
		switch f.Attr {
		case dwarf.AttrLanguage:
			dom = LangDomain
		case dwarf.AttrConstValue:
			// Signedness of DW_AT_const_value is decided by the
			// holder's type; when no type is referenced the value is
			// taken as signed, with a warning (the recorded
			// open-question decision).
			if a.Owner.Entry.Val(dwarf.AttrType) == nil && warn != nil {
				warn(fmt.Errorf("cannot determine signedness of DW_AT_const_value at [%x]; assuming signed",
					uint64(a.Owner.Entry.Offset)))
			}
		}
		return []engine.Value{engine.NewConstant(bits, dom, 0)}, nil

	case dwarf.ClassReference:
		off := f.Val.(dwarf.Offset)
		e, err := ctx.entryAt(off)
		if err != nil {
			return nil, err
		}
		cu, err := ctx.CUFor(off)
		if err != nil {
			return nil, err
		}
		return []engine.Value{NewDIE(ctx, e, cu.Offset, a.Owner.Done)}, nil

	case dwarf.ClassExprLoc:
		expr := append([]byte(nil), f.Val.([]byte)...)
		return []engine.Value{&LoclistElem{Lo: 0, Hi: ^uint64(0), Expr: expr, Owner: a}}, nil

	case dwarf.ClassLocListPtr:
		base, err := cuBase(a.Owner)
		if err != nil {
			return nil, err
		}
		elems, err := readLoclist(ctx, f.Val.(int64), base, a)
		if err != nil {
			return nil, err
		}
		out := make([]engine.Value, len(elems))
		for i, e := range elems {
			out[i] = e
		}
		return out, nil

	case dwarf.ClassRangeListPtr:
		ranges, err := ctx.Data.Ranges(a.Owner.Entry)
		if err != nil {
			return nil, err
		}
		cov := Coverage{}
		for _, r := range ranges {
			cov = cov.Add(r[0], r[1])
		}
		return []engine.Value{NewAddrSet(cov)}, nil

	case dwarf.ClassBlock:
		block := f.Val.([]byte)
		elems := make([]engine.Value, len(block))
		for i, b := range block {
			elems[i] = engine.NewConstant(int64(b), domain.Hex, i)
		}
		return []engine.Value{engine.NewSequence(elems, 0)}, nil

	default:
		return []engine.Value{engine.NewString(fmt.Sprintf("%v", f.Val), 0)}, nil
	}
}

// cuBase resolves the low pc of the compile unit owning die, the base
// address location lists are relative to.
func cuBase(die *DIE) (uint64, error) {
	root, err := die.Ctx.entryAt(die.CUOff)
	if err != nil {
		return 0, err
	}
	if lo, ok := root.Val(dwarf.AttrLowpc).(uint64); ok {
		return lo, nil
	}
	return 0, nil
}
