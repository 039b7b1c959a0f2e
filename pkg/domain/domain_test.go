package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithPrint(t *testing.T) {
	tests := []struct {
		name string
		dom  Domain
		v    int64
		want string
	}{
		{"plain decimal", Plain, 42, "42"},
		{"plain negative", Plain, -3, "-3"},
		{"hex", Hex, 255, "0xff"},
		{"oct", Oct, 8, "010"},
		{"bin", Bin, 5, "0b101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dom.Print(tt.v, Full))
		})
	}
}

func TestArithComparableWithEachOther(t *testing.T) {
	require.True(t, Hex.ComparableWith(Oct))
	require.True(t, Oct.ComparableWith(Plain))
	require.True(t, Plain.ComparableWith(Hex))
}

func TestEnumComparableOnlyWithinItself(t *testing.T) {
	tags := NewEnum("dwarf-tag", "DW_TAG_unknown", map[int64]string{
		0x11: "DW_TAG_compile_unit",
		0x2e: "DW_TAG_subprogram",
	})
	forms := NewEnum("dwarf-form", "DW_FORM_unknown", map[int64]string{
		0x01: "DW_FORM_addr",
	})

	assert.False(t, tags.ComparableWith(forms))
	assert.False(t, forms.ComparableWith(tags))
	assert.True(t, tags.ComparableWith(tags))
	assert.True(t, tags.ComparableWith(Plain))
	assert.True(t, Plain.ComparableWith(tags))
}

func TestEnumPrint(t *testing.T) {
	tags := NewEnum("dwarf-tag", "DW_TAG_unknown", map[int64]string{
		0x11: "DW_TAG_compile_unit",
	})

	assert.Equal(t, "DW_TAG_compile_unit", tags.Print(0x11, Brief))
	assert.Equal(t, "DW_TAG_compile_unit (0x11)", tags.Print(0x11, Full))
	assert.Equal(t, "DW_TAG_unknown(0x99)", tags.Print(0x99, Brief))
}

func TestMostEnclosing(t *testing.T) {
	tags := NewEnum("dwarf-tag", "DW_TAG_unknown", nil)
	assert.Same(t, tags, Plain.MostEnclosing(tags))
	assert.Same(t, tags, tags.MostEnclosing(Plain))
	assert.Same(t, Hex, Plain.MostEnclosing(Hex))
}
