package engine

import "fmt"

// Lowerer turns a parsed Node tree into an operator graph, resolving
// BIND/READ names against the Scope chain built during parsing and
// builtin names against a Vocabulary.
type Lowerer struct {
	Voc     *Vocabulary
	OnError func(error)

	// Err records the first fatal lowering failure. The graph returned
	// alongside a non-nil Err must not be run.
	Err error
}

// NewLowerer builds a lowerer using voc for F_BUILTIN resolution.
// onError (nil is fine) receives recoverable diagnostics raised during
// evaluation, e.g. an overload with no matching operand kinds.
func NewLowerer(voc *Vocabulary, onError func(error)) *Lowerer {
	return &Lowerer{Voc: voc, OnError: onError}
}

func (lo *Lowerer) reportf(format string, args ...any) {
	if lo.OnError != nil {
		lo.OnError(fmt.Errorf(format, args...))
	}
}

func (lo *Lowerer) fatalf(format string, args ...any) {
	if lo.Err == nil {
		lo.Err = fmt.Errorf(format, args...)
	}
}

// Build lowers an exec-position node into a Producer chain feeding from
// upstream, within the lexical scope currently in effect.
func (lo *Lowerer) Build(n *Node, upstream Producer, scope *Scope) Producer {
	switch n.Kind {
	case KindCat:
		cur := upstream
		for _, c := range n.Children {
			cur = lo.Build(c, cur, scope)
		}
		return cur

	case KindNop:
		return NewNopProducer(upstream)

	case KindAssert:
		pred := lo.BuildPred(n.Children[0], scope)
		return NewAssertProducer(upstream, pred)

	case KindConst:
		bits, dom := n.Const.Bits, n.Const.Dom
		return NewConstProducer(upstream, func(pos int) Value {
			return NewConstant(bits, dom, pos)
		})

	case KindStr:
		text := n.Str
		return NewConstProducer(upstream, func(pos int) Value {
			return NewString(text, pos)
		})

	case KindEmptyList:
		return NewConstProducer(upstream, func(pos int) Value {
			return NewSequence(nil, pos)
		})

	case KindBind:
		depth, index, ok := scope.Resolve(n.Str)
		if !ok {
			lo.fatalf("Unknown identifier `%s'.", n.Str)
			return NewNopProducer(upstream)
		}
		return NewBindProducer(upstream, depth, index)

	case KindRead:
		depth, index, ok := scope.Resolve(n.Str)
		if !ok {
			lo.fatalf("Unknown identifier `%s'.", n.Str)
			return NewNopProducer(upstream)
		}
		return NewReadProducer(upstream, depth, index)

	case KindScope:
		origin := NewOrigin()
		inner := lo.Build(n.Children[0], origin, n.Scope)
		return NewScopeProducer(upstream, origin, inner, n.Scope.NumNames())

	case KindBlock:
		// The body is lowered again at application time (against the
		// closure's captured scope); lower it once now, discarding the
		// graph, so unbound names inside a never-applied block still
		// fail the whole query up front.
		lo.Build(n.Children[0], NewOrigin(), scope)
		return NewBlockProducer(upstream, n.Children[0], scope, lo.Voc)

	case KindCapture:
		origin := NewOrigin()
		inner := lo.Build(n.Children[0], origin, scope)
		return NewCaptureProducer(upstream, origin, inner)

	case KindSubXEval:
		origin := NewOrigin()
		inner := lo.Build(n.Children[0], origin, scope)
		return NewSubXEvalProducer(upstream, origin, inner, n.SubXCount)

	case KindCloseStar:
		origin := NewOrigin()
		inner := lo.Build(n.Children[0], origin, scope)
		return NewCloseStarProducer(upstream, origin, inner)

	case KindAlt:
		branches := make([]func(Producer) Producer, len(n.Children))
		for i, c := range n.Children {
			c := c
			branches[i] = func(tine Producer) Producer { return lo.Build(c, tine, scope) }
		}
		return NewAltProducer(upstream, branches)

	case KindOr:
		branches := make([]func(Producer) Producer, len(n.Children))
		for i, c := range n.Children {
			c := c
			branches[i] = func(origin Producer) Producer { return lo.Build(c, origin, scope) }
		}
		return NewOrProducer(upstream, branches)

	case KindIfElse:
		var elseNode *Node
		if len(n.Children) == 3 {
			elseNode = n.Children[2]
		}
		return lo.buildIfElse(n.Children[0], n.Children[1], elseNode, upstream, scope)

	case KindFormat:
		return lo.buildFormat(n, upstream, scope)

	case KindBuiltin:
		b, ok := lo.Voc.Lookup(n.Str)
		if !ok {
			lo.fatalf("Unknown identifier `%s'.", n.Str)
			return NewNopProducer(upstream)
		}
		// A predicate builtin used in exec position becomes an assert over
		// it.
		if b.Kind == BuiltinPred {
			if b.Table != nil {
				return NewAssertProducer(upstream, NewOverloadPred(b.Table))
			}
			return NewAssertProducer(upstream, b.MkPred())
		}
		if b.Table != nil {
			return NewOverloadProducer(upstream, b.Table, lo.OnError)
		}
		return b.MkOp(upstream)

	case KindDebug:
		return NewDebugProducer(upstream)

	default:
		lo.reportf("cannot lower node of kind %s in exec position", n.Kind)
		return NewNopProducer(upstream)
	}
}

// BuildPred lowers a predicate-position node into a Pred, consulting
// the same Scope/Vocabulary.
func (lo *Lowerer) BuildPred(n *Node, scope *Scope) Pred {
	switch n.Kind {
	case KindPredNot:
		return NewNotPred(lo.BuildPred(n.Children[0], scope))

	case KindPredAnd:
		return NewAndPred(lo.BuildPred(n.Children[0], scope), lo.BuildPred(n.Children[1], scope))

	case KindPredOr:
		return NewOrPred(lo.BuildPred(n.Children[0], scope), lo.BuildPred(n.Children[1], scope))

	case KindPredSubXAny:
		origin := NewOrigin()
		inner := lo.Build(n.Children[0], origin, scope)
		return newSubXAnyPred(origin, inner)

	case KindPredSubXCompare:
		originA, originB := NewOrigin(), NewOrigin()
		innerA := lo.Build(n.Children[0], originA, scope)
		innerB := lo.Build(n.Children[1], originB, scope)
		return newSubXComparePred(originA, innerA, originB, innerB, n.CmpOp)

	case KindBuiltin:
		b, ok := lo.Voc.Lookup(n.Str)
		if !ok {
			lo.fatalf("Unknown identifier `%s'.", n.Str)
			return NewLiteralPred(n.Str, func(*Stack) PredResult { return PredFail })
		}
		if b.Kind == BuiltinPred {
			if b.Table != nil {
				return NewOverloadPred(b.Table)
			}
			return b.MkPred()
		}
		// An op builtin in predicate position holds iff it yields at
		// least one stack, the same implicit-?() rule as any other
		// exec-position node below.
		origin := NewOrigin()
		inner := lo.Build(n, origin, scope)
		return newSubXAnyPred(origin, inner)

	default:
		// Any exec-position node used as a predicate (e.g. a bare
		// sub-expression used as an implicit PRED_SUBX_ANY) succeeds
		// iff it yields at least one result.
		origin := NewOrigin()
		inner := lo.Build(n, origin, scope)
		return newSubXAnyPred(origin, inner)
	}
}

func (lo *Lowerer) buildIfElse(cond, then, els *Node, upstream Producer, scope *Scope) Producer {
	condOrigin := NewOrigin()
	condOp := lo.Build(cond, condOrigin, scope)

	thenOrigin := NewOrigin()
	thenOp := lo.Build(then, thenOrigin, scope)

	elseOrigin := NewOrigin()
	var elseOp Producer
	if els != nil {
		elseOp = lo.Build(els, elseOrigin, scope)
	} else {
		elseOp = NewNopProducer(elseOrigin)
	}

	return newIfElseProducer(upstream, condOrigin, condOp, thenOrigin, thenOp, elseOrigin, elseOp)
}
