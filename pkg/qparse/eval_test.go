package qparse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-zwerg/zwerg/pkg/domain"
	"github.com/go-zwerg/zwerg/pkg/engine"
	"github.com/go-zwerg/zwerg/pkg/qparse"
)

// evalQuery compiles src against the generic vocabulary, runs it on an
// empty seed stack, and returns the top of every result stack.
func evalQuery(t *testing.T, src string) []string {
	t.Helper()

	voc := engine.NewBaseVocabulary(nil)
	root, sc, err := qparse.Parse(src, voc)
	require.NoError(t, err)

	q, err := engine.NewQuery(root, sc, voc, nil)
	require.NoError(t, err)

	q.Run(engine.NewStack())
	var out []string
	for {
		s, ok := q.Next()
		if !ok {
			return out
		}
		out = append(out, s.Top().Show(domain.Brief))
	}
}

func TestQueryScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"sequence length", "[1,2,3] length", []string{"3"}},
		{"addition", "1 2 add", []string{"3"}},
		{"alternation", "(1,2,3)", []string{"1", "2", "3"}},
		{"alternation with longer branch", "(1, [1,2,3] elem)", []string{"1", "1", "2", "3"}},
		{"alternation with longer branch first", "([1,2,3] elem, 9)", []string{"1", "9", "2", "3"}},
		{"dup add", "1 dup add", []string{"2"}},
		{"elem", "[1,2,3] elem", []string{"1", "2", "3"}},
		{"let binding", "let A := 5; A A add", []string{"10"}},
		{"elem positions", "[7,8,9] elem pos", []string{"0", "1", "2"}},
		{"bind after multi-yield", "[1,2] elem |X| X", []string{"1", "2"}},
		{"string length", `"foo" length`, []string{"3"}},
		{"string concat", `"foo" "bar" add`, []string{"foobar"}},
		{"empty list", "[] length", []string{"0"}},
		{"swap", "1 2 swap", []string{"1"}},
		{"drop", "1 2 drop", []string{"1"}},
		{"over", "1 2 over", []string{"1"}},
		{"maybe", "1 2?", []string{"2", "1"}},
		{"subtraction", "7 2 sub", []string{"5"}},
		{"modulo", "17 5 mod", []string{"2"}},
		{"hex literal", "0x10 2 add", []string{"0x12"}},
		{"domain conversion", "255 hex", []string{"0xff"}},
		{"filter keeps matches", "(1,2,3) dup 2 eq", []string{"2"}},
		{"filter negation", "(1,2,3) ?(dup 2 ne)", []string{"1", "3"}},
		{"if then", "if 1 1 eq then 5 else 6", []string{"5"}},
		{"if else", "if 1 2 eq then 5 else 6", []string{"6"}},
		{"if without else", "7 if 1 2 eq then 5", []string{"7"}},
		{"closure via read", "let F := {1}; F", []string{"1"}},
		{"closure apply", "{2 3 add} apply", []string{"5"}},
		{"format string", `"x%(1 2 add%)y"`, []string{"x3y"}},
		{"format multi", `"v=%(1,2%)"`, []string{"v=1", "v=2"}},
		{"nested capture", "[[1,2],[3]] length", []string{"2"}},
		{"capture of alternation", "[(1,2,3)]", []string{"[1, 2, 3]"}},
		{"transitive closure", "1 (2 mul 17 mod)*", []string{"1", "2", "4", "8", "16", "15", "13", "9"}},
		{"plus is one-or-more", "1 (4 add 10 mod)+ 3 eq", []string{"3"}},
		{"find substring", `"haystack" "st" find`, []string{"st"}},
		{"empty predicate", `("", "x") ?(dup empty)`, []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evalQuery(t, tt.src))
		})
	}
}

func TestVariablesScopeThroughBlocks(t *testing.T) {
	// The block reads A from the enclosing scope at application time.
	assert.Equal(t, []string{"8"},
		evalQuery(t, "let A := 3; let F := {A 5 add}; F"))
}

func TestBindingsPopInDeclarationOrder(t *testing.T) {
	// |A B| binds the deeper value to A and the top to B.
	assert.Equal(t, []string{"1"}, evalQuery(t, "1 2 |A B| A"))
	assert.Equal(t, []string{"2"}, evalQuery(t, "1 2 |A B| B"))
}

func TestUnknownIdentifierIsFatal(t *testing.T) {
	voc := engine.NewBaseVocabulary(nil)
	root, sc, err := qparse.Parse("nosuchword", voc)
	require.NoError(t, err)

	_, err = engine.NewQuery(root, sc, voc, nil)
	require.Error(t, err)
	assert.Equal(t, "Unknown identifier `nosuchword'.", err.Error())
}

func TestReplayAfterReset(t *testing.T) {
	voc := engine.NewBaseVocabulary(nil)
	root, sc, err := qparse.Parse("(1,2) (10,20) add", voc)
	require.NoError(t, err)
	q, err := engine.NewQuery(root, sc, voc, nil)
	require.NoError(t, err)

	collect := func() []string {
		q.Run(engine.NewStack())
		var out []string
		for {
			s, ok := q.Next()
			if !ok {
				return out
			}
			out = append(out, s.Top().Show(domain.Brief))
		}
	}

	first := collect()
	second := collect()
	assert.Len(t, first, 4)
	assert.Equal(t, first, second)
}
