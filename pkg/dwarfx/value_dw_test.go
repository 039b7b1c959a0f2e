package dwarfx

import (
	"debug/dwarf"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-zwerg/zwerg/pkg/domain"
	"github.com/go-zwerg/zwerg/pkg/engine"
)

func subprogramEntry() *dwarf.Entry {
	return &dwarf.Entry{
		Offset: 0x2d,
		Tag:    dwarf.TagSubprogram,
		Field: []dwarf.Field{
			{Attr: dwarf.AttrName, Val: "main", Class: dwarf.ClassString},
			{Attr: dwarf.AttrLowpc, Val: uint64(0x401000), Class: dwarf.ClassAddress},
			{Attr: dwarf.AttrExternal, Val: true, Class: dwarf.ClassFlag},
		},
	}
}

func TestDIEShowBrief(t *testing.T) {
	die := NewDIE(&Context{Path: "a.out"}, subprogramEntry(), 0x0b, Cooked)
	assert.Equal(t, "[2d]\tDW_TAG_subprogram", die.Show(domain.Brief))
}

func TestDIEShowFullListsAttributes(t *testing.T) {
	die := NewDIE(&Context{Path: "a.out"}, subprogramEntry(), 0x0b, Cooked)
	want := "[2d]\tDW_TAG_subprogram" +
		"\n\tDW_AT_name\t\"main\"" +
		"\n\tDW_AT_low_pc\t0x401000" +
		"\n\tDW_AT_external\ttrue"
	assert.Equal(t, want, die.Show(domain.Full))
}

func TestDIECmpComparesContextBeforeOffset(t *testing.T) {
	ctxA := &Context{Path: "a.out"}
	ctxB := &Context{Path: "b.out"}
	low := NewDIE(ctxA, &dwarf.Entry{Offset: 0x10}, 0, Raw)
	high := NewDIE(ctxA, &dwarf.Entry{Offset: 0x20}, 0, Raw)
	other := NewDIE(ctxB, &dwarf.Entry{Offset: 0x10}, 0, Raw)

	assert.Equal(t, engine.CmpLess, low.Cmp(high))
	assert.Equal(t, engine.CmpEqual, low.Cmp(low.Clone()))
	// Distinct contexts order by path, never by offset.
	assert.Equal(t, engine.CmpLess, low.Cmp(other))
	assert.Equal(t, engine.CmpIncomparable, low.Cmp(engine.NewString("x", 0)))
}

func TestAttrShow(t *testing.T) {
	die := NewDIE(&Context{Path: "a.out"}, subprogramEntry(), 0x0b, Cooked)
	attr := NewAttr(die.Entry.Field[0], die)

	assert.Equal(t, "DW_AT_name", attr.Show(domain.Brief))
	assert.Equal(t, "DW_AT_name\t\"main\"", attr.Show(domain.Full))
}

func TestDonenessString(t *testing.T) {
	assert.Equal(t, "raw", Raw.String())
	assert.Equal(t, "cooked", Cooked.String())
}

func TestDwarfValueRoundTrip(t *testing.T) {
	dw := NewDwarf(&Context{Path: "a.out"}, Cooked)
	assert.Equal(t, KindDwarf, dw.ValueKind())
	assert.Equal(t, engine.CmpEqual, dw.Cmp(dw.Clone()))
	assert.Equal(t, 3, dw.WithPos(3).Pos())
}
