package engine

import "github.com/go-zwerg/zwerg/pkg/domain"

// Closure is a BLOCK value: an unevaluated sub-expression paired with
// the lexical scope and frame in effect where it was captured, so that
// applying it later (the "apply" builtin, or a READ of a name bound to
// the closure) resolves READs the same way they would have resolved at
// the capture site.
type Closure struct {
	Body  *Node
	Scope *Scope
	Frame *Frame
	Voc   *Vocabulary
	pos   int
}

// NewClosure captures body under scope/frame at stack position pos,
// together with the vocabulary in effect at capture time so the apply
// producer can re-lower the body later against the same builtin
// bindings.
func NewClosure(body *Node, scope *Scope, frame *Frame, voc *Vocabulary, pos int) *Closure {
	return &Closure{Body: body, Scope: scope, Frame: frame, Voc: voc, pos: pos}
}

func (c *Closure) ValueKind() ValueKind { return KindClosure }

func (c *Closure) Show(domain.Brevity) string { return "closure(" + c.Body.String() + ")" }

func (c *Closure) Clone() Value {
	cl := *c
	return &cl
}

// Cmp: closures are compared by body text and captured frame identity.
// Equality holds only for the same captured frame and syntactically
// identical body, everything else is incomparable.
func (c *Closure) Cmp(other Value) CmpResult {
	o, ok := other.(*Closure)
	if !ok {
		return CmpIncomparable
	}
	if c.Frame == o.Frame && c.Body.String() == o.Body.String() {
		return CmpEqual
	}
	return CmpIncomparable
}

func (c *Closure) Pos() int { return c.pos }

// WithPos returns a copy of the closure at a new stack position.
func (c *Closure) WithPos(pos int) Value {
	cl := *c
	cl.pos = pos
	return &cl
}
