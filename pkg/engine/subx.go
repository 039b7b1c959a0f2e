package engine

// NewSubXEvalProducer builds a SUBX_EVAL node: the inner sub-expression
// is run once to exhaustion per upstream stack (starting from a clone),
// and for every result the top `keep` values are lifted back onto the
// original upstream stack, in their original order, one result of the
// outer node per result of the inner one.
func NewSubXEvalProducer(upstream Producer, origin *Origin, inner Producer, keep int) Producer {
	return &subxProducer{upstream: upstream, origin: origin, inner: inner, keep: keep}
}

type subxProducer struct {
	upstream Producer
	origin   *Origin
	inner    Producer
	keep     int

	stk *Stack
}

func (p *subxProducer) Next() (*Stack, bool) {
	for {
		if p.stk == nil {
			s, ok := p.upstream.Next()
			if !ok {
				return nil, false
			}
			p.stk = s
			p.inner.Reset()
			p.origin.SetNext(s.Clone())
		}

		s2, ok := p.inner.Next()
		if !ok {
			p.stk = nil
			continue
		}

		kept := make([]Value, p.keep)
		for i := p.keep - 1; i >= 0; i-- {
			var v Value
			s2, v = s2.Pop()
			kept[i] = v
		}
		ret := p.stk.Fork()
		for _, v := range kept {
			ret = ret.Push(v)
		}
		return ret, true
	}
}

func (p *subxProducer) Reset() {
	p.stk = nil
	p.upstream.Reset()
}

func (p *subxProducer) Name() string { return "subx" }
