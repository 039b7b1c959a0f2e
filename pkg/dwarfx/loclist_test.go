package dwarfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-zwerg/zwerg/pkg/engine"
)

func TestExprOpsSplitsOpcodes(t *testing.T) {
	// DW_OP_fbreg -16; DW_OP_lit3; DW_OP_plus; DW_OP_stack_value
	expr := []byte{0x91, 0x70, 0x33, 0x22, 0x9f}

	ops, err := exprOps(expr, nil)
	require.NoError(t, err)
	require.Len(t, ops, 4)

	assert.Equal(t, 0, ops[0].Off)
	assert.Equal(t, byte(0x91), ops[0].Code)
	assert.Equal(t, []byte{0x91, 0x70}, ops[0].Bytes)

	assert.Equal(t, 2, ops[1].Off)
	assert.Equal(t, []byte{0x33}, ops[1].Bytes)

	assert.Equal(t, 3, ops[2].Off)
	assert.Equal(t, 4, ops[3].Off)
}

func TestExprOpsMultiByteLEB(t *testing.T) {
	// DW_OP_plus_uconst 0x1234 encodes the operand in two LEB bytes.
	expr := []byte{0x23, 0xb4, 0x24}

	ops, err := exprOps(expr, nil)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, expr, ops[0].Bytes)
}

func TestExprOpsBregx(t *testing.T) {
	// DW_OP_bregx reg=6 offset=-8: two LEB operands.
	expr := []byte{0x92, 0x06, 0x78}

	ops, err := exprOps(expr, nil)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, 3, len(ops[0].Bytes))
}

func TestExprOpsRegistersAndLiterals(t *testing.T) {
	// DW_OP_reg5; DW_OP_breg5 4; DW_OP_lit0
	expr := []byte{0x55, 0x75, 0x04, 0x30}

	ops, err := exprOps(expr, nil)
	require.NoError(t, err)
	require.Len(t, ops, 3)
	assert.Equal(t, []byte{0x55}, ops[0].Bytes)
	assert.Equal(t, []byte{0x75, 0x04}, ops[1].Bytes)
	assert.Equal(t, []byte{0x30}, ops[2].Bytes)
}

func TestLoclistElemCmp(t *testing.T) {
	a := &LoclistElem{Lo: 0x10, Hi: 0x20, Expr: []byte{0x9c}}
	b := &LoclistElem{Lo: 0x10, Hi: 0x30, Expr: []byte{0x9c}}

	assert.Equal(t, engine.CmpLess, a.Cmp(b))
	assert.Equal(t, engine.CmpEqual, a.Cmp(a.Clone()))
}
