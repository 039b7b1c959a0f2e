package engine

// NewScopeProducer builds a SCOPE node: for each upstream stack, a
// fresh frame (chained to the stack's current innermost frame) is
// pushed before handing the stack to the wrapped sub-expression, so
// BIND/READ coordinates resolved one level deeper land in a frame
// private to this scope's activation.
func NewScopeProducer(upstream Producer, origin *Origin, op Producer, numVars int) Producer {
	return &scopeProducer{upstream: upstream, origin: origin, op: op, numVars: numVars}
}

type scopeProducer struct {
	upstream Producer
	origin   *Origin
	op       Producer
	numVars  int
	primed   bool
	caller   *Frame
}

func (p *scopeProducer) Next() (*Stack, bool) {
	for {
		if !p.primed {
			s, ok := p.upstream.Next()
			if !ok {
				return nil, false
			}
			p.caller = s.Frame()
			s = s.WithFrame(NewFrame(p.caller, p.numVars))
			p.op.Reset()
			p.origin.SetNext(s)
			p.primed = true
		}

		// The scope's frame is popped back to the caller's before the result
		// leaves the scope.
		if s, ok := p.op.Next(); ok {
			return s.WithFrame(p.caller), true
		}
		p.primed = false
	}
}

func (p *scopeProducer) Reset() {
	p.primed = false
	p.upstream.Reset()
}

func (p *scopeProducer) Name() string { return "scope" }
