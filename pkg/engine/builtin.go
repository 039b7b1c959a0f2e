package engine


// ValueIter lazily yields successive values; ok=false means exhausted.
type ValueIter func() (Value, bool)

// ValuesIter adapts a fixed slice of values into a ValueIter.
func ValuesIter(vs ...Value) ValueIter {
	i := 0
	return func() (Value, bool) {
		if i >= len(vs) {
			return nil, false
		}
		v := vs[i]
		i++
		return v, true
	}
}

// OnceOverload wraps a builtin that consumes the top arity values
// (args[0] = deepest consumed, args[arity-1] = TOS) and produces
// exactly one value, pushed back onto the remaining stack. A non-nil
// error from fn is reported through onError and the offending stack is
// dropped.
func OnceOverload(arity int, fn func(args []Value) (Value, error), onError func(error)) func(Producer) Producer {
	return func(upstream Producer) Producer {
		return &onceProducer{upstream: upstream, arity: arity, fn: fn, onError: onError}
	}
}

type onceProducer struct {
	upstream Producer
	arity    int
	fn       func(args []Value) (Value, error)
	onError  func(error)
}

func (p *onceProducer) Next() (*Stack, bool) {
	for {
		s, ok := p.upstream.Next()
		if !ok {
			return nil, false
		}
		args := make([]Value, p.arity)
		for i := p.arity - 1; i >= 0; i-- {
			s, args[i] = s.Pop()
		}
		v, err := p.fn(args)
		if err != nil {
			if p.onError != nil {
				p.onError(err)
			}
			continue
		}
		return s.Push(v), true
	}
}

func (p *onceProducer) Reset()       { p.upstream.Reset() }
func (p *onceProducer) Name() string { return "once_overload" }

// YieldOverload wraps a builtin that consumes the top arity values and
// produces a lazy iterator of values; the input stack (minus the
// consumed operands) is re-emitted once per produced value, each value
// repositioned to its emission index.
func YieldOverload(arity int, fn func(args []Value) (ValueIter, error), onError func(error)) func(Producer) Producer {
	return func(upstream Producer) Producer {
		return &yieldProducer{upstream: upstream, arity: arity, fn: fn, onError: onError}
	}
}

type yieldProducer struct {
	upstream Producer
	arity    int
	fn       func(args []Value) (ValueIter, error)
	onError  func(error)

	rest *Stack
	it   ValueIter
	n    int
}

func (p *yieldProducer) Next() (*Stack, bool) {
	for {
		if p.it == nil {
			s, ok := p.upstream.Next()
			if !ok {
				return nil, false
			}
			args := make([]Value, p.arity)
			for i := p.arity - 1; i >= 0; i-- {
				s, args[i] = s.Pop()
			}
			it, err := p.fn(args)
			if err != nil {
				if p.onError != nil {
					p.onError(err)
				}
				continue
			}
			p.rest, p.it, p.n = s, it, 0
		}

		if v, ok := p.it(); ok {
			out := p.rest.Fork().Push(Repositioned(v, p.n))
			p.n++
			return out, true
		}
		p.it = nil
	}
}

func (p *yieldProducer) Reset() {
	p.it = nil
	p.upstream.Reset()
}

func (p *yieldProducer) Name() string { return "yield_overload" }

// PredOverload wraps a builtin predicate over the top arity values
// (consumed by reference only; the stack is not altered).
func PredOverload(name string, arity int, fn func(args []Value) PredResult) func() Pred {
	return func() Pred {
		return NewLiteralPred(name, func(s *Stack) PredResult {
			args := make([]Value, arity)
			for i := 0; i < arity; i++ {
				args[arity-1-i] = s.Nth(i)
			}
			return fn(args)
		})
	}
}
