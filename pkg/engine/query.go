package engine

// Query is a lowered, runnable operator graph: the top-level driver
// primes its origin with a seed stack and pulls result stacks until
// exhaustion.
type Query struct {
	origin *Origin
	root   Producer
}

// NewQuery lowers root (a parsed tree whose outermost scope is sc)
// against voc. onError receives recoverable per-stack diagnostics
// during evaluation. A fatal lowering failure (unbound name, unknown
// builtin) is returned instead of a query.
func NewQuery(root *Node, sc *Scope, voc *Vocabulary, onError func(error)) (*Query, error) {
	lo := NewLowerer(voc, onError)
	origin := NewOrigin()
	graph := lo.Build(root, origin, sc)
	if lo.Err != nil {
		return nil, lo.Err
	}
	return &Query{origin: origin, root: graph}, nil
}

// Run primes the query with a seed stack, restarting it from scratch
// if it ran before.
func (q *Query) Run(seed *Stack) {
	q.root.Reset()
	q.origin.SetNext(seed)
}

// Next pulls the next result stack, or ok=false once the query is
// exhausted for the current seed.
func (q *Query) Next() (*Stack, bool) {
	return q.root.Next()
}
