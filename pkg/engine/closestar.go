package engine

// NewCloseStarProducer builds a CLOSE_STAR node: the transitive closure
// of the inner sub-expression over each upstream stack, using a
// worklist plus a seen-set keyed by Stack.Cmp to avoid revisiting a
// stack already produced. Every visited stack (including the starting
// one) is yielded exactly once.
func NewCloseStarProducer(upstream Producer, origin *Origin, inner Producer) Producer {
	return &closeStarProducer{upstream: upstream, origin: origin, inner: inner}
}

type closeStarProducer struct {
	upstream Producer
	origin   *Origin
	inner    Producer

	worklist []*Stack
	seen     []*Stack
}

func (p *closeStarProducer) seenContains(s *Stack) bool {
	for _, o := range p.seen {
		if s.Cmp(o) == CmpEqual {
			return true
		}
	}
	return false
}

func (p *closeStarProducer) Next() (*Stack, bool) {
	if len(p.worklist) == 0 {
		p.seen = nil
		s, ok := p.upstream.Next()
		if !ok {
			return nil, false
		}
		p.worklist = append(p.worklist, s)
		p.seen = append(p.seen, s)
	}

	n := len(p.worklist)
	s := p.worklist[n-1]
	p.worklist = p.worklist[:n-1]

	p.inner.Reset()
	p.origin.SetNext(s.Clone())
	for {
		s2, ok := p.inner.Next()
		if !ok {
			break
		}
		if !p.seenContains(s2) {
			p.worklist = append(p.worklist, s2)
			p.seen = append(p.seen, s2)
		}
	}

	return s.Clone(), true
}

func (p *closeStarProducer) Reset() {
	p.worklist = nil
	p.seen = nil
	p.upstream.Reset()
}

func (p *closeStarProducer) Name() string { return "close*" }
