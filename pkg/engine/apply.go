package engine

// applyProducer pops a Closure off the top of each upstream stack and
// runs its body: the stack's frame is swapped for the closure's
// captured frame for the duration of the body, and swapped back on
// every result the body yields, so the caller's lexical environment is
// undisturbed by the call.
type applyProducer struct {
	upstream Producer
	inner    Producer
	caller   *Frame
}

// NewApplyProducer builds the closure-application operator. Each
// upstream stack must carry a Closure on top; READ arranges this when
// it implicitly applies a bound closure, and the "apply" builtin's
// selector guarantees it for explicit application.
func NewApplyProducer(upstream Producer) Producer {
	return &applyProducer{upstream: upstream}
}

func (p *applyProducer) Next() (*Stack, bool) {
	for {
		if p.inner == nil {
			s, ok := p.upstream.Next()
			if !ok {
				return nil, false
			}
			s2, v := s.Pop()
			cl, isClosure := v.(*Closure)
			if !isClosure {
				// Selector dispatch should make this unreachable; pass
				// the stack through untouched rather than losing it.
				return s, true
			}

			p.caller = s2.Frame()
			origin := NewOrigin()
			lo := NewLowerer(cl.Voc, nil)
			p.inner = lo.Build(cl.Body, origin, cl.Scope)
			origin.SetNext(s2.WithFrame(cl.Frame))
			continue
		}

		if s, ok := p.inner.Next(); ok {
			return s.WithFrame(p.caller), true
		}
		p.inner = nil
	}
}

func (p *applyProducer) Reset() {
	p.inner = nil
	p.upstream.Reset()
}

func (p *applyProducer) Name() string { return "apply" }
