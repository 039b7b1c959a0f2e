package qparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-zwerg/zwerg/pkg/domain"
	"github.com/go-zwerg/zwerg/pkg/engine"
)

func parseOne(t *testing.T, src string) *engine.Node {
	t.Helper()
	root, _, err := Parse(src, engine.NewBaseVocabulary(nil))
	require.NoError(t, err)
	require.Equal(t, engine.KindScope, root.Kind)
	return root.Children[0]
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		name string
		src  string
		bits int64
		dom  domain.Domain
	}{
		{"decimal", "42", 42, domain.Plain},
		{"hex", "0x2a", 42, domain.Hex},
		{"octal", "052", 42, domain.Oct},
		{"binary", "0b101010", 42, domain.Bin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := parseOne(t, tt.src)
			require.Equal(t, engine.KindConst, n.Kind)
			assert.Equal(t, tt.bits, n.Const.Bits)
			assert.Same(t, tt.dom, n.Const.Dom)
		})
	}
}

func TestParseTreeShapes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind engine.Kind
	}{
		{"catenation", "1 2 add", engine.KindCat},
		{"alternation", "1,2", engine.KindAlt},
		{"capture", "[1,2]", engine.KindCapture},
		{"empty list", "[]", engine.KindEmptyList},
		{"block", "{1}", engine.KindBlock},
		{"string", `"s"`, engine.KindStr},
		{"format", `"a%(1%)b"`, engine.KindFormat},
		{"closure star", "1*", engine.KindCloseStar},
		{"ifelse", "if 1 then 2 else 3", engine.KindIfElse},
		{"any assert", "?(1)", engine.KindAssert},
		{"debug", "debug", engine.KindDebug},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, parseOne(t, tt.src).Kind)
		})
	}
}

func TestParseBuiltinVsRead(t *testing.T) {
	n := parseOne(t, "length")
	assert.Equal(t, engine.KindBuiltin, n.Kind)

	n = parseOne(t, "somevar")
	assert.Equal(t, engine.KindRead, n.Kind)
	assert.Equal(t, "somevar", n.Str)
}

func TestParsePostfixExpansions(t *testing.T) {
	// e+ becomes e . e*
	n := parseOne(t, "1+")
	require.Equal(t, engine.KindCat, n.Kind)
	require.Len(t, n.Children, 2)
	assert.Equal(t, engine.KindConst, n.Children[0].Kind)
	assert.Equal(t, engine.KindCloseStar, n.Children[1].Kind)

	// e? becomes (e, nop)
	n = parseOne(t, "1?")
	require.Equal(t, engine.KindAlt, n.Kind)
	require.Len(t, n.Children, 2)
	assert.Equal(t, engine.KindNop, n.Children[1].Kind)
}

func TestParseBindingsDeclareNames(t *testing.T) {
	root, sc, err := Parse("1 2 |A B| A B add", engine.NewBaseVocabulary(nil))
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, 2, sc.NumNames())

	_, _, ok := sc.Resolve("A")
	assert.True(t, ok)
	_, _, ok = sc.Resolve("B")
	assert.True(t, ok)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unbalanced paren", "(1,2"},
		{"unterminated string", `"abc`},
		{"unterminated format", `"a%(1"`},
		{"stray closer", "1)"},
		{"empty bindings", "1 ||"},
		{"let without assign", "let A 5;"},
		{"let without semi", "let A := 5"},
		{"if without then", "if 1 2"},
		{"bad escape", `"\z"`},
		{"stray character", "1 $ 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.src, engine.NewBaseVocabulary(nil))
			require.Error(t, err)
			var serr *SyntaxError
			assert.ErrorAs(t, err, &serr)
		})
	}
}

func TestLexNumbers(t *testing.T) {
	lx := &lexer{src: "10 0x1f 017 0b11"}
	var nums []int64
	var bases []int
	for {
		tok, err := lx.next()
		require.NoError(t, err)
		if tok.kind == tokEOF {
			break
		}
		require.Equal(t, tokNum, tok.kind)
		nums = append(nums, tok.num)
		bases = append(bases, tok.base)
	}
	assert.Equal(t, []int64{10, 31, 15, 3}, nums)
	assert.Equal(t, []int{10, 16, 8, 2}, bases)
}

func TestLexStringEscapes(t *testing.T) {
	lx := &lexer{src: `"a\n\t\"\\b"`}
	tok, err := lx.next()
	require.NoError(t, err)
	require.Equal(t, tokStr, tok.kind)
	require.Len(t, tok.parts, 1)
	assert.Equal(t, "a\n\t\"\\b", tok.parts[0].lit)
}

func TestLexComments(t *testing.T) {
	lx := &lexer{src: "1 # the rest is ignored\n2"}
	first, err := lx.next()
	require.NoError(t, err)
	second, err := lx.next()
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.num)
	assert.EqualValues(t, 2, second.num)
}
