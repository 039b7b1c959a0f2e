package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-zwerg/zwerg/pkg/domain"
)

func constOf(n int64) *Constant { return NewConstant(n, domain.Plain, 0) }

func pushOp(n int64) func(Producer) Producer {
	return func(up Producer) Producer {
		return NewConstProducer(up, func(pos int) Value { return NewConstant(n, domain.Plain, pos) })
	}
}

// drainTops pulls p to exhaustion and returns the top value of every
// yielded stack, rendered briefly.
func drainTops(p Producer) []string {
	var out []string
	for {
		s, ok := p.Next()
		if !ok {
			return out
		}
		out = append(out, s.Top().Show(domain.Brief))
	}
}

func TestOriginYieldsOnce(t *testing.T) {
	o := NewOrigin()
	o.SetNext(NewStack())

	_, ok := o.Next()
	require.True(t, ok)
	_, ok = o.Next()
	require.False(t, ok)
}

func TestOriginRefusesSetNextWithoutReset(t *testing.T) {
	o := NewOrigin()
	o.SetNext(NewStack())
	assert.Panics(t, func() { o.SetNext(NewStack()) })

	o.Reset()
	assert.NotPanics(t, func() { o.SetNext(NewStack()) })
}

func TestStackCloneEqual(t *testing.T) {
	s := NewStack().Push(constOf(1)).Push(NewString("x", 0))
	assert.Equal(t, CmpEqual, s.Cmp(s.Clone()))
}

func TestStackCmpOrdersByDepthThenValue(t *testing.T) {
	shallow := NewStack().Push(constOf(1))
	deep := shallow.Push(constOf(2))
	assert.Equal(t, CmpLess, shallow.Cmp(deep))
	assert.Equal(t, CmpGreater, deep.Cmp(shallow))

	a := NewStack().Push(constOf(1))
	b := NewStack().Push(constOf(2))
	assert.Equal(t, CmpLess, a.Cmp(b))

	// Depth dominates the values: a shallower stack orders first even
	// when its values are larger.
	big := NewStack().Push(constOf(9))
	small2 := NewStack().Push(constOf(1)).Push(constOf(2))
	assert.Equal(t, CmpLess, big.Cmp(small2))

	// Equal depth, different kinds: the type tag decides.
	c := NewStack().Push(constOf(1))
	str := NewStack().Push(NewString("a", 0))
	assert.Equal(t, CmpLess, c.Cmp(str))
	assert.Equal(t, CmpGreater, str.Cmp(c))
}

func TestValueCloneComparesEqual(t *testing.T) {
	values := []Value{
		constOf(7),
		NewString("hello", 0),
		NewSequence([]Value{constOf(1), NewString("a", 1)}, 0),
	}
	for _, v := range values {
		assert.Equal(t, CmpEqual, v.Cmp(v.Clone()), "clone of %s", v.Show(domain.Full))
	}
}

func TestFrameBindAndReadFaults(t *testing.T) {
	f := NewFrame(nil, 2)
	f.Bind(0, constOf(1))

	assert.Panics(t, func() { f.Bind(0, constOf(2)) }, "re-binding a bound slot")
	assert.Panics(t, func() { f.At(0, 1) }, "reading an unbound slot")
	assert.Equal(t, CmpEqual, f.At(0, 0).Cmp(constOf(1)))
}

func TestAltInterleavesBranchesFairly(t *testing.T) {
	origin := NewOrigin()
	alt := NewAltProducer(origin, []func(Producer) Producer{
		pushOp(1), pushOp(2), pushOp(3),
	})
	origin.SetNext(NewStack())

	assert.Equal(t, []string{"1", "2", "3"}, drainTops(alt))
}

// elemBranch pushes a fixed sequence and fans it out through the
// "elem" overload, so one upstream stack yields len(ns) results.
func elemBranch(ns ...int64) func(Producer) Producer {
	return func(up Producer) Producer {
		up = NewConstProducer(up, func(pos int) Value {
			elems := make([]Value, len(ns))
			for i, n := range ns {
				elems[i] = NewConstant(n, domain.Plain, i)
			}
			return NewSequence(elems, pos)
		})
		elem, _ := NewBaseVocabulary(nil).Lookup("elem")
		return NewOverloadProducer(up, elem.Table, nil)
	}
}

func TestAltEmitsEveryResultOfUnequalBranches(t *testing.T) {
	tests := []struct {
		name     string
		branches []func(Producer) Producer
		want     []string
	}{
		{
			"short branch first",
			[]func(Producer) Producer{pushOp(1), elemBranch(1, 2, 3)},
			[]string{"1", "1", "2", "3"},
		},
		{
			"multi-yield branch first",
			[]func(Producer) Producer{elemBranch(1, 2, 3), pushOp(9)},
			[]string{"1", "2", "3", "9"},
		},
		{
			"multi-yield between two short ones",
			[]func(Producer) Producer{pushOp(7), elemBranch(1, 2), pushOp(8)},
			[]string{"7", "1", "2", "8"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origin := NewOrigin()
			alt := NewAltProducer(origin, tt.branches)
			origin.SetNext(NewStack())

			assert.ElementsMatch(t, tt.want, drainTops(alt))
		})
	}
}

func TestAltReplaysAfterReset(t *testing.T) {
	origin := NewOrigin()
	alt := NewAltProducer(origin, []func(Producer) Producer{pushOp(1), pushOp(2)})

	origin.SetNext(NewStack())
	first := drainTops(alt)

	alt.Reset()
	origin.SetNext(NewStack())
	second := drainTops(alt)

	assert.Equal(t, first, second)
}

func TestOrPicksFirstBranchWithResults(t *testing.T) {
	// First branch yields nothing (an assert that always fails),
	// second and third yield; only the second must run.
	never := func(up Producer) Producer {
		return NewAssertProducer(up, NewLiteralPred("never", func(*Stack) PredResult { return PredNo }))
	}
	origin := NewOrigin()
	or := NewOrProducer(origin, []func(Producer) Producer{never, pushOp(2), pushOp(3)})
	origin.SetNext(NewStack())

	assert.Equal(t, []string{"2"}, drainTops(or))
}

func TestCaptureCollectsInOrderWithPositions(t *testing.T) {
	origin := NewOrigin()
	inner := NewOrigin()
	alt := NewAltProducer(inner, []func(Producer) Producer{pushOp(5), pushOp(6)})
	cap := NewCaptureProducer(origin, inner, alt)
	origin.SetNext(NewStack())

	s, ok := cap.Next()
	require.True(t, ok)
	seq := s.Top().(*Sequence)
	require.Len(t, seq.Elems, 2)
	assert.Equal(t, "5", seq.Elems[0].Show(domain.Brief))
	assert.Equal(t, "6", seq.Elems[1].Show(domain.Brief))
	assert.Equal(t, 0, seq.Elems[0].Pos())
	assert.Equal(t, 1, seq.Elems[1].Pos())
}

// doubler maps the stack's top constant to its double, exhausting
// after 16 to keep closures finite.
type doubler struct{ upstream Producer }

func (d *doubler) Next() (*Stack, bool) {
	for {
		s, ok := d.upstream.Next()
		if !ok {
			return nil, false
		}
		s2, v := s.Pop()
		c := v.(*Constant)
		if c.Bits >= 16 {
			continue
		}
		return s2.Push(NewConstant(c.Bits*2, c.Dom, 0)), true
	}
}

func (d *doubler) Reset()       { d.upstream.Reset() }
func (d *doubler) Name() string { return "double" }

func TestCloseStarEmitsReachableSet(t *testing.T) {
	origin := NewOrigin()
	inner := NewOrigin()
	star := NewCloseStarProducer(origin, inner, &doubler{upstream: inner})
	origin.SetNext(NewStack().Push(constOf(1)))

	assert.ElementsMatch(t, []string{"1", "2", "4", "8", "16"}, drainTops(star))
}

func TestCloseStarTerminatesOnFixpoint(t *testing.T) {
	origin := NewOrigin()
	inner := NewOrigin()
	star := NewCloseStarProducer(origin, inner, &doubler{upstream: inner})
	origin.SetNext(NewStack().Push(constOf(0)))

	// 0 doubles to 0: the reachable set is just the seed.
	assert.Equal(t, []string{"0"}, drainTops(star))
}

func TestPredResultAlgebra(t *testing.T) {
	assert.Equal(t, PredNo, PredYes.Not())
	assert.Equal(t, PredYes, PredNo.Not())
	assert.Equal(t, PredFail, PredFail.Not())

	assert.Equal(t, PredYes, PredYes.And(PredYes))
	assert.Equal(t, PredNo, PredYes.And(PredNo))
	assert.Equal(t, PredFail, PredYes.And(PredFail))
	assert.Equal(t, PredYes, PredNo.Or(PredYes))
	assert.Equal(t, PredFail, PredNo.Or(PredFail))
}

func TestDoubleNegationPreservesVerdict(t *testing.T) {
	for _, verdict := range []PredResult{PredYes, PredNo} {
		verdict := verdict
		p := NewNotPred(NewNotPred(NewLiteralPred("v", func(*Stack) PredResult { return verdict })))
		assert.Equal(t, verdict, p.Result(NewStack()))
	}
}

func TestOverloadDispatchesByTopKinds(t *testing.T) {
	voc := NewBaseVocabulary(nil)
	add, ok := voc.Lookup("add")
	require.True(t, ok)

	origin := NewOrigin()
	op := NewOverloadProducer(origin, add.Table, nil)
	origin.SetNext(NewStack().Push(NewString("foo", 0)).Push(NewString("bar", 0)))

	s, ok := op.Next()
	require.True(t, ok)
	assert.Equal(t, "foobar", s.Top().(*String).Text)
}

func TestOverloadReportsAndSkipsOnNoMatch(t *testing.T) {
	voc := NewBaseVocabulary(nil)
	add, _ := voc.Lookup("add")

	var errs []error
	origin := NewOrigin()
	op := NewOverloadProducer(origin, add.Table, func(err error) { errs = append(errs, err) })
	origin.SetNext(NewStack().Push(constOf(1)).Push(NewString("x", 0)))

	_, ok := op.Next()
	assert.False(t, ok)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "on TOS")
}

func TestArithmeticKeepsNonPlainDomain(t *testing.T) {
	voc := NewBaseVocabulary(nil)
	add, _ := voc.Lookup("add")

	origin := NewOrigin()
	op := NewOverloadProducer(origin, add.Table, nil)
	origin.SetNext(NewStack().
		Push(NewConstant(0x10, domain.Hex, 0)).
		Push(NewConstant(1, domain.Plain, 0)))

	s, ok := op.Next()
	require.True(t, ok)
	c := s.Top().(*Constant)
	assert.EqualValues(t, 0x11, c.Bits)
	assert.Equal(t, "0x11", c.Show(domain.Brief))
}

func TestDivisionByZeroDropsStack(t *testing.T) {
	var errs []error
	collect := func(err error) { errs = append(errs, err) }
	voc := NewBaseVocabulary(collect)
	div, _ := voc.Lookup("div")

	origin := NewOrigin()
	op := NewOverloadProducer(origin, div.Table, collect)
	origin.SetNext(NewStack().Push(constOf(1)).Push(constOf(0)))

	_, ok := op.Next()
	assert.False(t, ok)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrDivisionByZero)
}

func TestScopeRestoresCallerFrame(t *testing.T) {
	callerFrame := NewFrame(nil, 0)
	origin := NewOrigin()
	inner := NewOrigin()
	scope := NewScopeProducer(origin, inner, NewNopProducer(inner), 1)
	origin.SetNext(NewStack().WithFrame(callerFrame))

	s, ok := scope.Next()
	require.True(t, ok)
	assert.Same(t, callerFrame, s.Frame())
}

func TestSubXComparePredicate(t *testing.T) {
	voc := NewBaseVocabulary(nil)
	sc := NewScope(nil)

	alt := func(ns ...int64) *Node {
		children := make([]*Node, len(ns))
		for i, n := range ns {
			children[i] = NewConst(n, domain.Plain)
		}
		return NewAlt(children...)
	}

	tests := []struct {
		name string
		a, b *Node
		op   CmpOp
		want bool
	}{
		{"some pair equal", alt(1, 2, 3), alt(3, 4), CmpEq, true},
		{"no pair equal", alt(1, 2), alt(3, 4), CmpEq, false},
		{"less than holds", alt(5), alt(6), CmpLt, true},
		{"greater fails", alt(5), alt(6), CmpGt, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo := NewLowerer(voc, nil)
			origin := NewOrigin()
			op := lo.Build(NewAssert(NewPredSubXCompare(tt.a, tt.b, tt.op)), origin, sc)
			require.NoError(t, lo.Err)

			origin.SetNext(NewStack())
			_, ok := op.Next()
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestSubXEvalLiftsTopValues(t *testing.T) {
	voc := NewBaseVocabulary(nil)
	lo := NewLowerer(voc, nil)

	// The sub-expression pushes two values; both land on the outer
	// stack in their original order.
	inner := NewCat(NewConst(1, domain.Plain), NewConst(2, domain.Plain))
	origin := NewOrigin()
	op := lo.Build(NewSubXEval(inner, 2), origin, NewScope(nil))
	require.NoError(t, lo.Err)

	origin.SetNext(NewStack())
	s, ok := op.Next()
	require.True(t, ok)
	require.Equal(t, 2, s.Depth())
	assert.Equal(t, "2", s.Top().Show(domain.Brief))
	assert.Equal(t, "1", s.Nth(1).Show(domain.Brief))
}

func TestAssertEscalatesFailVerdict(t *testing.T) {
	origin := NewOrigin()
	op := NewAssertProducer(origin, NewLiteralPred("broken", func(*Stack) PredResult { return PredFail }))
	origin.SetNext(NewStack())

	assert.Panics(t, func() { op.Next() })
}
