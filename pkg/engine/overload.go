package engine

import (
	"fmt"
	"strings"
)

// OverloadTable collects, for one builtin name (e.g. "add", "length",
// "elem"), the type-specific implementations registered against it —
// one per operand-kind Selector. pkg/dwarfx registers its own selectors
// into the same table a generic builtin created, so e.g. "length" works
// on both Sequence and, once pkg/dwarfx registers it, an address set,
// without engine knowing dwarfx's concrete types.
type OverloadTable struct {
	name  string
	ops   []overloadOpEntry
	preds []overloadPredEntry
}

type overloadOpEntry struct {
	sel Selector
	mk  func(upstream Producer) Producer
}

type overloadPredEntry struct {
	sel Selector
	mk  func() Pred
}

// NewOverloadTable creates an empty table for a builtin of the given
// name, used in diagnostics when no overload matches.
func NewOverloadTable(name string) *OverloadTable {
	return &OverloadTable{name: name}
}

// AddOp registers a producer-valued overload for the given operand
// selector.
func (t *OverloadTable) AddOp(sel Selector, mk func(upstream Producer) Producer) {
	t.ops = append(t.ops, overloadOpEntry{sel: sel, mk: mk})
}

// AddPred registers a predicate-valued overload for the given operand
// selector.
func (t *OverloadTable) AddPred(sel Selector, mk func() Pred) {
	t.preds = append(t.preds, overloadPredEntry{sel: sel, mk: mk})
}

func (t *OverloadTable) findOp(stk *Stack) (func(Producer) Producer, bool) {
	for _, e := range t.ops {
		if e.sel.Matches(stk) {
			return e.mk, true
		}
	}
	return nil, false
}

func (t *OverloadTable) findPred(stk *Stack) (func() Pred, bool) {
	for _, e := range t.preds {
		if e.sel.Matches(stk) {
			return e.mk, true
		}
	}
	return nil, false
}

// the builtin names what it expects on TOS, the stack is skipped and
// iteration continues.
func (t *OverloadTable) errNoOverload(stk *Stack) error {
	var expects []string
	seen := map[string]bool{}
	for _, e := range t.ops {
		if len(e.sel) == 0 {
			continue
		}
		n := e.sel[len(e.sel)-1].String()
		if !seen[n] {
			seen[n] = true
			expects = append(expects, n)
		}
	}
	for _, e := range t.preds {
		if len(e.sel) == 0 {
			continue
		}
		n := e.sel[len(e.sel)-1].String()
		if !seen[n] {
			seen[n] = true
			expects = append(expects, n)
		}
	}
	have := "an empty stack"
	if stk.Depth() > 0 {
		have = stk.Top().ValueKind().String()
	}
	return fmt.Errorf("%q expects %s on TOS, found %s", t.name, strings.Join(expects, " or "), have)
}

// overloadProducer dispatches each upstream stack to the matching
// registered op-overload, driving that overload's own sub-chain to
// exhaustion before pulling the next upstream stack.
type overloadProducer struct {
	upstream Producer
	table    *OverloadTable
	origin   *Origin
	current  Producer
	onError  func(error)
}

// NewOverloadProducer builds the dispatcher op for a builtin name.
// onError (may be nil) receives a diagnostic when operands of an
// unregistered kind reach the operator; the offending stack is then
// dropped rather than propagated, matching build-time "no such
// overload" rejections becoming run-time skips when selectors are data
// driven.
func NewOverloadProducer(upstream Producer, table *OverloadTable, onError func(error)) Producer {
	return &overloadProducer{upstream: upstream, table: table, onError: onError}
}

func (p *overloadProducer) Next() (*Stack, bool) {
	for {
		if p.current == nil {
			s, ok := p.upstream.Next()
			if !ok {
				return nil, false
			}
			mk, found := p.table.findOp(s)
			if !found {
				if p.onError != nil {
					p.onError(p.table.errNoOverload(s))
				}
				continue
			}
			p.origin = NewOrigin()
			p.origin.SetNext(s)
			p.current = mk(p.origin)
			continue
		}
		if s, ok := p.current.Next(); ok {
			return s, true
		}
		p.current = nil
	}
}

func (p *overloadProducer) Reset() {
	p.current = nil
	p.upstream.Reset()
}

func (p *overloadProducer) Name() string { return "overload<" + p.table.name + ">" }

// overloadPred dispatches to the matching registered predicate
// overload.
type overloadPred struct {
	table *OverloadTable
}

// NewOverloadPred builds a predicate that dispatches by operand kind.
func NewOverloadPred(table *OverloadTable) Pred {
	return &overloadPred{table: table}
}

func (p *overloadPred) Result(s *Stack) PredResult {
	mk, ok := p.table.findPred(s)
	if !ok {
		return PredFail
	}
	return mk().Result(s)
}

func (p *overloadPred) Reset() {}

func (p *overloadPred) Name() string { return "overload_pred<" + p.table.name + ">" }
