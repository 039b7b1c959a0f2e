package engine

// readProducer pushes a clone of the value bound at (depth, index). If
// that value is a closure, READ additionally applies it and yields
// every result of the application instead of the closure itself — this
// is how a bound name doubles as a zero-argument function call.
type readProducer struct {
	upstream Producer
	depth    int
	index    int

	apply Producer
}

// NewReadProducer builds a READ operator for the lowered coordinates.
func NewReadProducer(upstream Producer, depth, index int) Producer {
	return &readProducer{upstream: upstream, depth: depth, index: index}
}

func (p *readProducer) Next() (*Stack, bool) {
	for {
		if p.apply == nil {
			s, ok := p.upstream.Next()
			if !ok {
				return nil, false
			}
			fr := s.Frame()
			for d := 0; d < p.depth; d++ {
				fr = fr.Parent()
			}
			val := fr.At(0, p.index)
			s2 := s.Push(val.Clone())

			if _, isClosure := val.(*Closure); !isClosure {
				return s2, true
			}

			origin := NewOrigin()
			origin.SetNext(s2)
			p.apply = NewApplyProducer(origin)
			continue
		}

		if s, ok := p.apply.Next(); ok {
			return s, true
		}
		p.apply = nil
	}
}

func (p *readProducer) Reset() {
	p.apply = nil
	p.upstream.Reset()
}

func (p *readProducer) Name() string { return "read" }
