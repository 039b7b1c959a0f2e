package dwarfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-zwerg/zwerg/pkg/domain"
	"github.com/go-zwerg/zwerg/pkg/engine"
)

func TestAbbrevShow(t *testing.T) {
	a := &Abbrev{Decl: AbbrevDecl{
		Code:        2,
		Tag:         0x2e,
		HasChildren: true,
		Attrs:       []AbbrevAttrSpec{{Attr: 0x03, Form: 0x08}},
	}}

	assert.Equal(t, "[2] DW_TAG_subprogram", a.Show(domain.Brief))
	assert.Equal(t, "[2] DW_TAG_subprogram children", a.Show(domain.Full))
}

func TestAbbrevAttrShow(t *testing.T) {
	aa := &AbbrevAttr{Spec: AbbrevAttrSpec{Attr: 0x03, Form: 0x0e}}
	assert.Equal(t, "DW_AT_name DW_FORM_strp", aa.Show(domain.Brief))
}

func TestAbbrevCmpOrdersByOffset(t *testing.T) {
	ctx := &Context{Path: "a.so"}
	a := &Abbrev{Ctx: ctx, Decl: AbbrevDecl{Off: 0x10}}
	b := &Abbrev{Ctx: ctx, Decl: AbbrevDecl{Off: 0x20}}

	assert.Equal(t, engine.CmpLess, a.Cmp(b))
	assert.Equal(t, engine.CmpEqual, a.Cmp(a.Clone()))
	assert.Equal(t, engine.CmpIncomparable, a.Cmp(engine.NewString("x", 0)))
}

func TestFormDomainPrinting(t *testing.T) {
	assert.Equal(t, "DW_FORM_exprloc", FormDomain.Print(0x18, domain.Brief))
	assert.Equal(t, "DW_FORM(0x7f)", FormDomain.Print(0x7f, domain.Brief))
}

func TestAbbrevWordsRegistered(t *testing.T) {
	voc := Vocabulary(nil)
	for _, word := range []string{"abbrev", "code", "strtab", "relocation", "DW_FORM_strp"} {
		_, ok := voc.Lookup(word)
		require.True(t, ok, word)
	}
}
