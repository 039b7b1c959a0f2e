package engine

import "fmt"

// nopProducer passes every upstream stack through unchanged.
type nopProducer struct {
	upstream Producer
}

func NewNopProducer(upstream Producer) Producer { return &nopProducer{upstream: upstream} }

func (p *nopProducer) Next() (*Stack, bool) { return p.upstream.Next() }
func (p *nopProducer) Reset()               { p.upstream.Reset() }
func (p *nopProducer) Name() string         { return "nop" }

// assertProducer drops stacks the predicate rejects, passing the rest
// through unmodified. A PredFail verdict (type-mismatched predicate
// inputs, incomparable operands) is fatal: it aborts the query with a
// runtime fault the driver converts into an error.
type assertProducer struct {
	upstream Producer
	pred     Pred
}

func NewAssertProducer(upstream Producer, pred Pred) Producer {
	return &assertProducer{upstream: upstream, pred: pred}
}

func (p *assertProducer) Next() (*Stack, bool) {
	for {
		s, ok := p.upstream.Next()
		if !ok {
			return nil, false
		}
		switch p.pred.Result(s) {
		case PredYes:
			return s, true
		case PredFail:
			panic(fmt.Sprintf("predicate %q failed to produce a verdict", p.pred.Name()))
		}
	}
}

func (p *assertProducer) Reset() {
	p.upstream.Reset()
	p.pred.Reset()
}

func (p *assertProducer) Name() string { return "assert" }

// constProducer pushes a fixed value onto every upstream stack.
type constProducer struct {
	upstream Producer
	mk       func(pos int) Value
}

// NewConstProducer builds a producer pushing a value constructed by mk
// (given the stack's current depth as the value's pos) onto each
// upstream stack.
func NewConstProducer(upstream Producer, mk func(pos int) Value) Producer {
	return &constProducer{upstream: upstream, mk: mk}
}

func (p *constProducer) Next() (*Stack, bool) {
	s, ok := p.upstream.Next()
	if !ok {
		return nil, false
	}
	return s.Push(p.mk(s.Depth())), true
}

func (p *constProducer) Reset() { p.upstream.Reset() }
func (p *constProducer) Name() string { return "const" }
