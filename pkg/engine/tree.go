// Package engine implements the zwerg query language's core: the value
// model, the expression tree, the operator graph and its execution
// model, and overload resolution.
package engine

import (
	"fmt"
	"strings"

	"github.com/go-zwerg/zwerg/pkg/domain"
)

// Kind tags a tree node's syntactic role.
type Kind int

const (
	KindCat Kind = iota
	KindAlt
	KindOr
	KindNop
	KindAssert
	KindPredNot
	KindPredOr
	KindPredAnd
	KindPredSubXAny
	KindPredSubXCompare
	KindCapture
	KindSubXEval
	KindEmptyList
	KindCloseStar
	KindConst
	KindStr
	KindFormat
	KindBind
	KindRead
	KindScope
	KindBlock
	KindIfElse
	KindBuiltin
	KindDebug
)

func (k Kind) String() string {
	names := [...]string{
		"CAT", "ALT", "OR", "NOP", "ASSERT",
		"PRED_NOT", "PRED_OR", "PRED_AND", "PRED_SUBX_ANY", "PRED_SUBX_CMP",
		"CAPTURE", "SUBX_EVAL", "EMPTY_LIST", "CLOSE_STAR",
		"CONST", "STR", "FORMAT", "BIND", "READ", "SCOPE", "BLOCK", "IFELSE",
		"F_BUILTIN", "F_DEBUG",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "UNKNOWN"
}

// CmpOp is the comparison relation a PRED_SUBX_CMP node applies between
// its two sub-expressions.
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

// ConstLit is a tree node's constant payload: the literal value of a
// CONST node, before it is wrapped into a Value at lowering time.
type ConstLit struct {
	Bits int64
	Dom  domain.Domain
}

// FormatPart is one fragment of a FORMAT node: either a literal string
// or an embedded sub-expression.
type FormatPart struct {
	Literal string
	Expr    *Node // nil for a literal fragment
}

// Node is the intermediate representation of a parsed query: a tagged
// tree with per-node children, optional string payload, optional
// constant payload, and an optional lexical-scope pointer.
type Node struct {
	Kind     Kind
	Children []*Node

	// Str carries STR literal text, BIND/READ/variable names prior to
	// lowering, and F_BUILTIN's builtin name.
	Str string

	// Const carries CONST's literal payload.
	Const ConstLit

	// FormatParts carries FORMAT's literal/sub-expression fragments.
	FormatParts []FormatPart

	// SubXCount is SUBX_EVAL's compile-time K (how many top values to
	// lift into the outer stack).
	SubXCount int

	// CmpOp is PRED_SUBX_CMP's comparison relation, and IFELSE reuses
	// Children[0..2] for cond/then/else (else may be nil, i.e. Children
	// has length 2, meaning "no else").
	CmpOp CmpOp

	// Scope is non-nil on nodes that introduce a new lexical scope
	// (SCOPE) and carries the declared slot count for op_scope.
	Scope *Scope
}

// NewCat builds a CAT node chaining children left to right.
func NewCat(children ...*Node) *Node { return &Node{Kind: KindCat, Children: children} }

// NewAlt builds an ALT node over the given branches.
func NewAlt(children ...*Node) *Node { return &Node{Kind: KindAlt, Children: children} }

// NewOr builds an OR node trying branches in declaration order.
func NewOr(children ...*Node) *Node { return &Node{Kind: KindOr, Children: children} }

// NewNop builds a pass-through node.
func NewNop() *Node { return &Node{Kind: KindNop} }

// NewConst builds a CONST literal node.
func NewConst(bits int64, d domain.Domain) *Node {
	return &Node{Kind: KindConst, Const: ConstLit{Bits: bits, Dom: d}}
}

// NewStr builds a STR literal node.
func NewStr(s string) *Node { return &Node{Kind: KindStr, Str: s} }

// NewEmptyList builds an EMPTY_LIST node.
func NewEmptyList() *Node { return &Node{Kind: KindEmptyList} }

// NewCapture wraps a sub-expression as CAPTURE.
func NewCapture(inner *Node) *Node { return &Node{Kind: KindCapture, Children: []*Node{inner}} }

// NewSubXEval wraps a sub-expression as SUBX_EVAL lifting the top k values.
func NewSubXEval(inner *Node, k int) *Node {
	return &Node{Kind: KindSubXEval, Children: []*Node{inner}, SubXCount: k}
}

// NewCloseStar wraps a sub-expression as CLOSE_STAR (transitive closure).
func NewCloseStar(inner *Node) *Node { return &Node{Kind: KindCloseStar, Children: []*Node{inner}} }

// NewFormat builds a FORMAT node from literal/expr fragments.
func NewFormat(parts ...FormatPart) *Node { return &Node{Kind: KindFormat, FormatParts: parts} }

// NewBind builds a BIND(name) node, pre-lowering.
func NewBind(name string) *Node { return &Node{Kind: KindBind, Str: name} }

// NewRead builds a READ(name) node, pre-lowering.
func NewRead(name string) *Node { return &Node{Kind: KindRead, Str: name} }

// NewScopeNode wraps a sub-expression in a new lexical scope.
func NewScopeNode(inner *Node, sc *Scope) *Node {
	return &Node{Kind: KindScope, Children: []*Node{inner}, Scope: sc}
}

// NewBlock builds a BLOCK node constructing a closure from inner.
func NewBlock(inner *Node) *Node { return &Node{Kind: KindBlock, Children: []*Node{inner}} }

// NewIfElse builds an IFELSE node. elseBranch may be nil.
func NewIfElse(cond, then, elseBranch *Node) *Node {
	children := []*Node{cond, then}
	if elseBranch != nil {
		children = append(children, elseBranch)
	}
	return &Node{Kind: KindIfElse, Children: children}
}

// NewAssert wraps a predicate tree as ASSERT.
func NewAssert(pred *Node) *Node { return &Node{Kind: KindAssert, Children: []*Node{pred}} }

// NewBuiltin builds an F_BUILTIN node referencing a builtin by name.
func NewBuiltin(name string) *Node { return &Node{Kind: KindBuiltin, Str: name} }

// NewDebug builds an F_DEBUG node.
func NewDebug() *Node { return &Node{Kind: KindDebug} }

// NewPredNot/And/Or/SubXAny/SubXCompare build predicate tree nodes,
// consumed by build_pred rather than build_exec.
func NewPredNot(inner *Node) *Node { return &Node{Kind: KindPredNot, Children: []*Node{inner}} }
func NewPredAnd(a, b *Node) *Node  { return &Node{Kind: KindPredAnd, Children: []*Node{a, b}} }
func NewPredOr(a, b *Node) *Node   { return &Node{Kind: KindPredOr, Children: []*Node{a, b}} }
func NewPredSubXAny(inner *Node) *Node {
	return &Node{Kind: KindPredSubXAny, Children: []*Node{inner}}
}
func NewPredSubXCompare(a, b *Node, op CmpOp) *Node {
	return &Node{Kind: KindPredSubXCompare, Children: []*Node{a, b}, CmpOp: op}
}

// String renders the node tree in a debug-friendly s-expression shape,
// used by F_DEBUG and by tests.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if n == nil {
		b.WriteString("<nil>")
		return
	}
	switch n.Kind {
	case KindConst:
		fmt.Fprintf(b, "%d", n.Const.Bits)
		return
	case KindStr:
		fmt.Fprintf(b, "%q", n.Str)
		return
	case KindBind:
		fmt.Fprintf(b, "|%s|", n.Str)
		return
	case KindRead:
		b.WriteString(n.Str)
		return
	case KindBuiltin:
		b.WriteString(n.Str)
		return
	}
	b.WriteString(n.Kind.String())
	if len(n.Children) > 0 {
		b.WriteString("(")
		for i, c := range n.Children {
			if i > 0 {
				b.WriteString(" ")
			}
			c.write(b)
		}
		b.WriteString(")")
	}
}
