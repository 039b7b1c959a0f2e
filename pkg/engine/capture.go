package engine

// NewCaptureProducer builds a CAPTURE node: for each upstream stack,
// the inner sub-expression is driven to exhaustion starting from a
// clone of that stack, and every value popped off the inner chain's
// resulting stacks is collected, in production order, into a Sequence
// pushed back onto the original (unconsumed) upstream stack.
func NewCaptureProducer(upstream Producer, origin *Origin, inner Producer) Producer {
	return &captureProducer{upstream: upstream, origin: origin, inner: inner}
}

type captureProducer struct {
	upstream Producer
	origin   *Origin
	inner    Producer
}

func (p *captureProducer) Next() (*Stack, bool) {
	s, ok := p.upstream.Next()
	if !ok {
		return nil, false
	}
	p.inner.Reset()
	p.origin.SetNext(s.Clone())

	var elems []Value
	for {
		s2, ok := p.inner.Next()
		if !ok {
			break
		}
		_, v := s2.Pop()
		// Capture reorders values into a fresh sequence, so positions are
		// recomputed to the element index.
		elems = append(elems, Repositioned(v, len(elems)))
	}
	return s.Push(NewSequence(elems, s.Depth())), true
}

func (p *captureProducer) Reset() { p.upstream.Reset() }

func (p *captureProducer) Name() string { return "capture" }
