package engine

// Pure stack shuffles: dup, swap, drop, over, rot.

type shuffleProducer struct {
	upstream Producer
	name     string
	minDepth int
	fn       func(s *Stack) *Stack
	onError  func(error)
}

func shuffleBuiltin(name string, minDepth int, fn func(s *Stack) *Stack, onError func(error)) *Builtin {
	return &Builtin{
		Name: name,
		Kind: BuiltinOp,
		MkOp: func(upstream Producer) Producer {
			return &shuffleProducer{upstream: upstream, name: name, minDepth: minDepth, fn: fn, onError: onError}
		},
	}
}

func (p *shuffleProducer) Next() (*Stack, bool) {
	for {
		s, ok := p.upstream.Next()
		if !ok {
			return nil, false
		}
		if s.Depth() < p.minDepth {
			if p.onError != nil {
				p.onError(&UnderflowError{Builtin: p.name, Need: p.minDepth, Have: s.Depth()})
			}
			continue
		}
		return p.fn(s), true
	}
}

func (p *shuffleProducer) Reset()       { p.upstream.Reset() }
func (p *shuffleProducer) Name() string { return p.name }

func dupBuiltin(onError func(error)) *Builtin {
	return shuffleBuiltin("dup", 1, func(s *Stack) *Stack {
		return s.Push(s.Top().Clone())
	}, onError)
}

func swapBuiltin(onError func(error)) *Builtin {
	return shuffleBuiltin("swap", 2, func(s *Stack) *Stack {
		s, b := s.Pop()
		s, a := s.Pop()
		return s.Push(b).Push(a)
	}, onError)
}

func dropBuiltin(onError func(error)) *Builtin {
	return shuffleBuiltin("drop", 1, func(s *Stack) *Stack {
		s, _ = s.Pop()
		return s
	}, onError)
}

func overBuiltin(onError func(error)) *Builtin {
	return shuffleBuiltin("over", 2, func(s *Stack) *Stack {
		return s.Push(s.Nth(1).Clone())
	}, onError)
}

func rotBuiltin(onError func(error)) *Builtin {
	return shuffleBuiltin("rot", 3, func(s *Stack) *Stack {
		s, c := s.Pop()
		s, b := s.Pop()
		s, a := s.Pop()
		return s.Push(b).Push(c).Push(a)
	}, onError)
}
