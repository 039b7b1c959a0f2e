package engine

// orProducer implements OR's first-match-wins choice: for each upstream
// stack, branches are tried in declaration order and the first branch
// producing at least one result is drained to exhaustion; branches
// after it are not attempted for that input.
type orProducer struct {
	upstream Producer
	branches []orBranch
	current  int // index into branches, or -1 when none picked for the current input
}

type orBranch struct {
	origin *Origin
	op     Producer
}

// NewOrProducer builds an OR node from already-lowered branch chains,
// each rooted at its own Origin so it can be fed the same upstream
// stack independently of the others.
func NewOrProducer(upstream Producer, branches []func(origin Producer) Producer) Producer {
	bs := make([]orBranch, len(branches))
	for i, mk := range branches {
		origin := NewOrigin()
		bs[i] = orBranch{origin: origin, op: mk(origin)}
	}
	return &orProducer{upstream: upstream, branches: bs, current: -1}
}

func (p *orProducer) Next() (*Stack, bool) {
	for {
		if p.current == -1 {
			s, ok := p.upstream.Next()
			if !ok {
				return nil, false
			}
			for i := range p.branches {
				p.branches[i].op.Reset()
				p.branches[i].origin.SetNext(s.Clone())
				if s2, ok := p.branches[i].op.Next(); ok {
					p.current = i
					return s2, true
				}
			}
			continue
		}

		if s2, ok := p.branches[p.current].op.Next(); ok {
			return s2, true
		}
		p.current = -1
	}
}

func (p *orProducer) Reset() {
	p.current = -1
	for _, b := range p.branches {
		b.op.Reset()
	}
	p.upstream.Reset()
}

func (p *orProducer) Name() string { return "or" }
