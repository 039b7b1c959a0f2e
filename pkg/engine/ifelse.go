package engine

// ifElseProducer evaluates the condition sub-graph on a clone of each
// upstream stack; if the condition yields at least one result, the
// "then" sub-graph runs on the original stack, otherwise the "else"
// sub-graph does. Exactly one branch executes per upstream stack.
type ifElseProducer struct {
	upstream Producer

	condOrigin *Origin
	cond       Producer
	thenOrigin *Origin
	thenOp     Producer
	elseOrigin *Origin
	elseOp     Producer

	picked Producer
}

func newIfElseProducer(upstream Producer,
	condOrigin *Origin, cond Producer,
	thenOrigin *Origin, thenOp Producer,
	elseOrigin *Origin, elseOp Producer) Producer {
	return &ifElseProducer{
		upstream:   upstream,
		condOrigin: condOrigin, cond: cond,
		thenOrigin: thenOrigin, thenOp: thenOp,
		elseOrigin: elseOrigin, elseOp: elseOp,
	}
}

func (p *ifElseProducer) Next() (*Stack, bool) {
	for {
		if p.picked == nil {
			s, ok := p.upstream.Next()
			if !ok {
				return nil, false
			}

			p.cond.Reset()
			p.condOrigin.SetNext(s.Clone())
			if _, holds := p.cond.Next(); holds {
				p.thenOp.Reset()
				p.thenOrigin.SetNext(s)
				p.picked = p.thenOp
			} else {
				p.elseOp.Reset()
				p.elseOrigin.SetNext(s)
				p.picked = p.elseOp
			}
			continue
		}

		if s, ok := p.picked.Next(); ok {
			return s, true
		}
		p.picked = nil
	}
}

func (p *ifElseProducer) Reset() {
	p.picked = nil
	p.cond.Reset()
	p.thenOp.Reset()
	p.elseOp.Reset()
	p.upstream.Reset()
}

func (p *ifElseProducer) Name() string { return "ifelse" }
