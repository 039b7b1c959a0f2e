package engine

// NewBlockProducer builds a BLOCK node: it pushes a Closure capturing
// body/scope/the current frame/vocabulary onto every upstream stack,
// without evaluating body.
func NewBlockProducer(upstream Producer, body *Node, scope *Scope, voc *Vocabulary) Producer {
	return &blockProducer{upstream: upstream, body: body, scope: scope, voc: voc}
}

type blockProducer struct {
	upstream Producer
	body     *Node
	scope    *Scope
	voc      *Vocabulary
}

func (p *blockProducer) Next() (*Stack, bool) {
	s, ok := p.upstream.Next()
	if !ok {
		return nil, false
	}
	cl := NewClosure(p.body, p.scope, s.Frame(), p.voc, s.Depth())
	return s.Push(cl), true
}

func (p *blockProducer) Reset() { p.upstream.Reset() }

func (p *blockProducer) Name() string { return "block" }
