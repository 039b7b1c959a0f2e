package engine

import "github.com/go-zwerg/zwerg/pkg/domain"

// The stringer chain parallels the operator chain for FORMAT nodes:
// each stage consumes a (stack, partial-string) pair and either appends
// a literal fragment or runs an embedded sub-expression and appends its
// result's rendering. The format operator at the end of the chain
// pushes each completed string.
type stringer interface {
	next() (*Stack, string, bool)
	reset()
}

// stringerOrigin seeds the chain with one (stack, "") pair per
// upstream stack the format operator feeds it.
type stringerOrigin struct {
	stk  *Stack
	done bool
}

func (o *stringerOrigin) setNext(s *Stack) {
	o.stk = s
	o.done = false
}

func (o *stringerOrigin) next() (*Stack, string, bool) {
	if o.done || o.stk == nil {
		return nil, "", false
	}
	o.done = true
	return o.stk, "", true
}

func (o *stringerOrigin) reset() {
	o.stk = nil
	o.done = false
}

// stringerLit appends a literal fragment to every partial string.
type stringerLit struct {
	upstream stringer
	lit      string
}

func (s *stringerLit) next() (*Stack, string, bool) {
	stk, str, ok := s.upstream.next()
	if !ok {
		return nil, "", false
	}
	return stk, str + s.lit, true
}

func (s *stringerLit) reset() { s.upstream.reset() }

// stringerOp runs an embedded %( expr %) sub-expression on a clone of
// the stack and appends the rendering of each result's top value — one
// completed string per result, so a multi-valued sub-expression makes
// the whole format string multi-valued too.
type stringerOp struct {
	upstream stringer
	origin   *Origin
	body     Producer

	stk    *Stack
	prefix string
	active bool
}

func (s *stringerOp) next() (*Stack, string, bool) {
	for {
		if !s.active {
			stk, str, ok := s.upstream.next()
			if !ok {
				return nil, "", false
			}
			s.stk, s.prefix = stk, str
			s.body.Reset()
			s.origin.SetNext(stk.Clone())
			s.active = true
		}

		if stk2, ok := s.body.Next(); ok {
			_, v := stk2.Pop()
			return s.stk, s.prefix + v.Show(domain.Brief), true
		}
		s.active = false
	}
}

func (s *stringerOp) reset() {
	s.active = false
	s.upstream.reset()
}

// formatProducer drives the stringer chain once per upstream stack and
// pushes each completed string.
type formatProducer struct {
	upstream Producer
	origin   *stringerOrigin
	chain    stringer
	active   bool
}

func (p *formatProducer) Next() (*Stack, bool) {
	for {
		if !p.active {
			s, ok := p.upstream.Next()
			if !ok {
				return nil, false
			}
			p.chain.reset()
			p.origin.setNext(s)
			p.active = true
		}

		if s, str, ok := p.chain.next(); ok {
			return s.Fork().Push(NewString(str, s.Depth())), true
		}
		p.active = false
	}
}

func (p *formatProducer) Reset() {
	p.active = false
	p.chain.reset()
	p.upstream.Reset()
}

func (p *formatProducer) Name() string { return "format" }

func (lo *Lowerer) buildFormat(n *Node, upstream Producer, scope *Scope) Producer {
	origin := &stringerOrigin{}
	var chain stringer = origin
	for _, part := range n.FormatParts {
		if part.Expr == nil {
			chain = &stringerLit{upstream: chain, lit: part.Literal}
		} else {
			o := NewOrigin()
			chain = &stringerOp{upstream: chain, origin: o, body: lo.Build(part.Expr, o, scope)}
		}
	}
	return &formatProducer{upstream: upstream, origin: origin, chain: chain}
}
