package dwarfx

import (
	"fmt"
	"sort"

	"github.com/go-zwerg/zwerg/pkg/domain"
	"github.com/go-zwerg/zwerg/pkg/engine"
	"github.com/go-zwerg/zwerg/pkg/utils"
)

// Interval is one half-open [Lo, Hi) address range.
type Interval struct {
	Lo, Hi uint64
}

// Coverage is a sorted list of non-overlapping, non-adjacent intervals.
// The zero value is the empty coverage.
type Coverage struct {
	ivals []Interval
}

// NewCoverage builds a coverage from arbitrary (possibly overlapping,
// unsorted) intervals.
func NewCoverage(ivals ...Interval) Coverage {
	var c Coverage
	for _, iv := range ivals {
		c = c.Add(iv.Lo, iv.Hi)
	}
	return c
}

// Add returns the coverage with [lo, hi) included, merging
// overlapping and adjacent runs. Empty ranges are ignored.
func (c Coverage) Add(lo, hi uint64) Coverage {
	if lo >= hi {
		return c
	}
	out := make([]Interval, 0, len(c.ivals)+1)
	placed := false
	for _, iv := range c.ivals {
		switch {
		case iv.Hi < lo:
			out = append(out, iv)
		case hi < iv.Lo:
			if !placed {
				out = append(out, Interval{lo, hi})
				placed = true
			}
			out = append(out, iv)
		default:
			if iv.Lo < lo {
				lo = iv.Lo
			}
			if iv.Hi > hi {
				hi = iv.Hi
			}
		}
	}
	if !placed {
		out = append(out, Interval{lo, hi})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lo < out[j].Lo })
	return Coverage{ivals: out}
}

// Union merges two coverages.
func (c Coverage) Union(o Coverage) Coverage {
	out := c
	for _, iv := range o.ivals {
		out = out.Add(iv.Lo, iv.Hi)
	}
	return out
}

// Length is the total number of covered addresses.
func (c Coverage) Length() uint64 {
	return utils.Accumulate(c.ivals, func(iv Interval) uint64 { return iv.Hi - iv.Lo })
}

// ContainsAddr reports whether addr is covered.
func (c Coverage) ContainsAddr(addr uint64) bool {
	for _, iv := range c.ivals {
		if addr >= iv.Lo && addr < iv.Hi {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every address of o is covered by c.
func (c Coverage) ContainsAll(o Coverage) bool {
	for _, iv := range o.ivals {
		covered := false
		for _, jv := range c.ivals {
			if iv.Lo >= jv.Lo && iv.Hi <= jv.Hi {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}

// Overlaps reports whether the two coverages share any address.
func (c Coverage) Overlaps(o Coverage) bool {
	for _, iv := range c.ivals {
		for _, jv := range o.ivals {
			if iv.Lo < jv.Hi && jv.Lo < iv.Hi {
				return true
			}
		}
	}
	return false
}

// Intervals returns the underlying runs, lo-to-hi.
func (c Coverage) Intervals() []Interval {
	out := make([]Interval, len(c.ivals))
	copy(out, c.ivals)
	return out
}

// Cmp orders coverages lexicographically by their interval lists.
func (c Coverage) Cmp(o Coverage) engine.CmpResult {
	n := len(c.ivals)
	if len(o.ivals) < n {
		n = len(o.ivals)
	}
	for i := 0; i < n; i++ {
		a, b := c.ivals[i], o.ivals[i]
		switch {
		case a.Lo < b.Lo || (a.Lo == b.Lo && a.Hi < b.Hi):
			return engine.CmpLess
		case a.Lo > b.Lo || (a.Lo == b.Lo && a.Hi > b.Hi):
			return engine.CmpGreater
		}
	}
	switch {
	case len(c.ivals) < len(o.ivals):
		return engine.CmpLess
	case len(c.ivals) > len(o.ivals):
		return engine.CmpGreater
	default:
		return engine.CmpEqual
	}
}

// AddrSet is the coverage structure as a stack value.
type AddrSet struct {
	Cov Coverage
	pos int
}

// NewAddrSet wraps a coverage as a value.
func NewAddrSet(cov Coverage) *AddrSet { return &AddrSet{Cov: cov} }

func (v *AddrSet) ValueKind() engine.ValueKind { return KindAddrSet }

func (v *AddrSet) Show(domain.Brevity) string {
	parts := utils.Map(v.Cov.ivals, func(iv Interval) string {
		return fmt.Sprintf("%#x..%#x", iv.Lo, iv.Hi)
	})
	return "[" + utils.FormatSlice(parts, ", ") + ")"
}

func (v *AddrSet) Clone() engine.Value {
	cl := *v
	return &cl
}

func (v *AddrSet) Cmp(other engine.Value) engine.CmpResult {
	o, ok := other.(*AddrSet)
	if !ok {
		return engine.CmpIncomparable
	}
	return v.Cov.Cmp(o.Cov)
}

func (v *AddrSet) Pos() int { return v.pos }

func (v *AddrSet) WithPos(pos int) engine.Value {
	cl := *v
	cl.pos = pos
	return &cl
}
