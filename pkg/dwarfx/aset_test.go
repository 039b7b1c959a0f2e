package dwarfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-zwerg/zwerg/pkg/domain"
	"github.com/go-zwerg/zwerg/pkg/engine"
)

func TestCoverageAddMergesRuns(t *testing.T) {
	tests := []struct {
		name string
		add  []Interval
		want []Interval
	}{
		{
			"disjoint stay apart",
			[]Interval{{0x10, 0x20}, {0x30, 0x40}},
			[]Interval{{0x10, 0x20}, {0x30, 0x40}},
		},
		{
			"overlap merges",
			[]Interval{{0x10, 0x25}, {0x20, 0x40}},
			[]Interval{{0x10, 0x40}},
		},
		{
			"adjacent merges",
			[]Interval{{0x10, 0x20}, {0x20, 0x30}},
			[]Interval{{0x10, 0x30}},
		},
		{
			"contained disappears",
			[]Interval{{0x10, 0x40}, {0x18, 0x20}},
			[]Interval{{0x10, 0x40}},
		},
		{
			"unsorted input sorts",
			[]Interval{{0x30, 0x40}, {0x10, 0x20}},
			[]Interval{{0x10, 0x20}, {0x30, 0x40}},
		},
		{
			"empty range ignored",
			[]Interval{{0x10, 0x10}},
			nil,
		},
		{
			"bridging range merges three",
			[]Interval{{0x10, 0x20}, {0x30, 0x40}, {0x18, 0x38}},
			[]Interval{{0x10, 0x40}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cov := NewCoverage(tt.add...)
			assert.Equal(t, tt.want, covIntervals(cov))
		})
	}
}

func covIntervals(c Coverage) []Interval {
	if len(c.ivals) == 0 {
		return nil
	}
	return c.Intervals()
}

func TestCoverageLength(t *testing.T) {
	cov := NewCoverage(Interval{0x10, 0x20}, Interval{0x40, 0x44})
	assert.EqualValues(t, 0x14, cov.Length())
	assert.EqualValues(t, 0, Coverage{}.Length())
}

func TestCoverageContains(t *testing.T) {
	cov := NewCoverage(Interval{0x10, 0x20}, Interval{0x40, 0x50})

	assert.True(t, cov.ContainsAddr(0x10))
	assert.True(t, cov.ContainsAddr(0x1f))
	assert.False(t, cov.ContainsAddr(0x20), "hi end is exclusive")
	assert.False(t, cov.ContainsAddr(0x30))

	assert.True(t, cov.ContainsAll(NewCoverage(Interval{0x12, 0x18})))
	assert.True(t, cov.ContainsAll(NewCoverage(Interval{0x12, 0x18}, Interval{0x40, 0x41})))
	assert.False(t, cov.ContainsAll(NewCoverage(Interval{0x18, 0x28})))
}

func TestCoverageOverlapsAndUnion(t *testing.T) {
	a := NewCoverage(Interval{0x10, 0x20})
	b := NewCoverage(Interval{0x18, 0x28})
	c := NewCoverage(Interval{0x30, 0x40})

	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c))

	u := a.Union(b).Union(c)
	assert.Equal(t, []Interval{{0x10, 0x28}, {0x30, 0x40}}, u.Intervals())
}

func TestAddrSetValueContract(t *testing.T) {
	v := NewAddrSet(NewCoverage(Interval{0x10, 0x20}, Interval{0x40, 0x50}))

	assert.Equal(t, KindAddrSet, v.ValueKind())
	assert.Equal(t, "[0x10..0x20, 0x40..0x50)", v.Show(domain.Full))
	assert.Equal(t, engine.CmpEqual, v.Cmp(v.Clone()))

	smaller := NewAddrSet(NewCoverage(Interval{0x08, 0x20}))
	assert.Equal(t, engine.CmpGreater, v.Cmp(smaller))
	assert.Equal(t, engine.CmpLess, smaller.Cmp(v))

	str := engine.NewString("x", 0)
	assert.Equal(t, engine.CmpIncomparable, v.Cmp(str))
}

func TestAsetOverloadsInVocabulary(t *testing.T) {
	voc := Vocabulary(nil)

	length, ok := voc.Lookup("length")
	require.True(t, ok)

	origin := engine.NewOrigin()
	op := engine.NewOverloadProducer(origin, length.Table, nil)
	origin.SetNext(engine.NewStack().Push(NewAddrSet(NewCoverage(Interval{0, 4}))))

	s, yielded := op.Next()
	require.True(t, yielded)
	assert.Equal(t, "4", s.Top().Show(domain.Brief))
}
