package engine

// bindProducer pops the top-of-stack value and stores it into the frame
// depth levels up, at the given slot.
type bindProducer struct {
	upstream Producer
	depth    int
	index    int
}

// NewBindProducer builds a BIND operator for the lowered (depth, index)
// coordinates a Scope.Resolve produced for this name.
func NewBindProducer(upstream Producer, depth, index int) Producer {
	return &bindProducer{upstream: upstream, depth: depth, index: index}
}

func (p *bindProducer) Next() (*Stack, bool) {
	s, ok := p.upstream.Next()
	if !ok {
		return nil, false
	}
	s2, v := s.Pop()
	fr := s2.Frame()
	for d := 0; d < p.depth; d++ {
		fr = fr.Parent()
	}
	fr.Bind(p.index, v)
	return s2, true
}

func (p *bindProducer) Reset()     { p.upstream.Reset() }
func (p *bindProducer) Name() string { return "bind" }
