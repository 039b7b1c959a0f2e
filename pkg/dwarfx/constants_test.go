package dwarfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-zwerg/zwerg/pkg/domain"
	"github.com/go-zwerg/zwerg/pkg/engine"
)

func TestTagDomainPrinting(t *testing.T) {
	assert.Equal(t, "DW_TAG_compile_unit", TagDomain.Print(0x11, domain.Brief))
	assert.Equal(t, "DW_TAG_subprogram", TagDomain.Print(0x2e, domain.Brief))
	assert.Equal(t, "DW_TAG(0xff)", TagDomain.Print(0xff, domain.Brief))
}

func TestAttrDomainPrinting(t *testing.T) {
	assert.Equal(t, "DW_AT_name", AttrDomain.Print(0x03, domain.Brief))
	assert.Equal(t, "DW_AT_low_pc", AttrDomain.Print(0x11, domain.Brief))
}

func TestEnumDomainsAreDisjoint(t *testing.T) {
	// 0x11 is both DW_TAG_compile_unit and DW_AT_low_pc; the domains
	// must keep them apart.
	tag := engine.NewConstant(0x11, TagDomain, 0)
	attr := engine.NewConstant(0x11, AttrDomain, 0)

	assert.Equal(t, engine.CmpIncomparable, tag.Cmp(attr))
	assert.Equal(t, engine.CmpEqual, tag.Cmp(engine.NewConstant(0x11, TagDomain, 0)))
	assert.False(t, TagDomain.SafeArith())
}

func TestTagConstantComparesWithPlain(t *testing.T) {
	tag := engine.NewConstant(0x11, TagDomain, 0)
	plain := engine.NewConstant(0x11, domain.Plain, 0)
	assert.Equal(t, engine.CmpEqual, tag.Cmp(plain))
}

func TestAttrCodesDropPrefix(t *testing.T) {
	code, ok := attrCodes["name"]
	require.True(t, ok)
	assert.EqualValues(t, 0x03, code)

	_, ok = attrCodes["no_such_attribute"]
	assert.False(t, ok)
}

func TestConstantWordsRegistered(t *testing.T) {
	voc := Vocabulary(nil)

	for _, word := range []string{"DW_TAG_compile_unit", "DW_AT_name", "DW_LANG_C99"} {
		b, ok := voc.Lookup(word)
		require.True(t, ok, word)
		assert.Equal(t, engine.BuiltinOp, b.Kind)
	}

	b, _ := voc.Lookup("DW_TAG_subprogram")
	origin := engine.NewOrigin()
	op := b.MkOp(origin)
	origin.SetNext(engine.NewStack())

	s, ok := op.Next()
	require.True(t, ok)
	assert.Equal(t, "DW_TAG_subprogram", s.Top().Show(domain.Brief))
}

func TestAttrShorthandsRegistered(t *testing.T) {
	voc := Vocabulary(nil)

	for _, word := range []string{"@name", "@low_pc", "@type"} {
		_, ok := voc.Lookup(word)
		assert.True(t, ok, word)
	}
}
