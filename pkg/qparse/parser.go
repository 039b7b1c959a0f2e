package qparse

import (
	"fmt"

	"github.com/go-zwerg/zwerg/pkg/domain"
	"github.com/go-zwerg/zwerg/pkg/engine"
)

// Parser compiles query text into an engine.Node tree, building the
// lexical scope chain as it goes so that lowering can resolve BIND and
// READ names to (depth, index) coordinates. Identifiers that name a
// vocabulary entry become F_BUILTIN nodes; everything else becomes a
// READ, whose resolution (or fatal failure) happens at lowering time.
type Parser struct {
	toks []token
	pos  int
	voc  *engine.Vocabulary
}

// Parse compiles src against voc. It returns the query's root node and
// the outermost lexical scope (already attached to the root's SCOPE
// wrapper).
func Parse(src string, voc *engine.Vocabulary) (*engine.Node, *engine.Scope, error) {
	lx := &lexer{src: src}
	var toks []token
	for {
		t, err := lx.next()
		if err != nil {
			return nil, nil, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			break
		}
	}

	p := &Parser{toks: toks, voc: voc}
	sc := engine.NewScope(nil)
	node, err := p.parseAltList(sc)
	if err != nil {
		return nil, nil, err
	}
	if p.cur().kind != tokEOF {
		return nil, nil, p.errf("unexpected %s after end of expression", p.describe(p.cur()))
	}
	// The whole query runs inside one outermost scope so top-level let
	// and |var| bindings have a frame to land in.
	return engine.NewScopeNode(node, sc), sc, nil
}

func (p *Parser) cur() token  { return p.toks[p.pos] }
func (p *Parser) advance()    { p.pos++ }
func (p *Parser) at(k tokenKind) bool { return p.cur().kind == k }

func (p *Parser) eat(k tokenKind, what string) (token, error) {
	t := p.cur()
	if t.kind != k {
		return t, p.errf("expected %s, found %s", what, p.describe(t))
	}
	p.advance()
	return t, nil
}

func (p *Parser) errf(format string, args ...any) error {
	off := p.cur().off
	return &SyntaxError{Off: off, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) describe(t token) string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "`" + t.text + "'"
	case tokNum:
		return "number " + t.text
	case tokStr:
		return "string literal"
	default:
		return "`" + tokenSpelling(t.kind) + "'"
	}
}

func tokenSpelling(k tokenKind) string {
	switch k {
	case tokLParen:
		return "("
	case tokRParen:
		return ")"
	case tokLBracket:
		return "["
	case tokRBracket:
		return "]"
	case tokLBrace:
		return "{"
	case tokRBrace:
		return "}"
	case tokComma:
		return ","
	case tokStar:
		return "*"
	case tokPlus:
		return "+"
	case tokQMark:
		return "?"
	case tokPipe:
		return "|"
	case tokSemi:
		return ";"
	case tokAssign:
		return ":="
	case tokAnyParen:
		return "?("
	case tokNoneParen:
		return "!("
	default:
		return "?"
	}
}

// parseAltList handles comma alternation: Seq ("," Seq)*.
func (p *Parser) parseAltList(sc *engine.Scope) (*engine.Node, error) {
	first, err := p.parseSeq(sc)
	if err != nil {
		return nil, err
	}
	if !p.at(tokComma) {
		return first, nil
	}
	branches := []*engine.Node{first}
	for p.at(tokComma) {
		p.advance()
		b, err := p.parseSeq(sc)
		if err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return engine.NewAlt(branches...), nil
}

func (p *Parser) atSeqEnd() bool {
	switch p.cur().kind {
	case tokEOF, tokComma, tokRParen, tokRBracket, tokRBrace, tokSemi:
		return true
	case tokIdent:
		t := p.cur().text
		return t == "then" || t == "else"
	default:
		return false
	}
}

// parseSeq handles juxtaposition: a catenation of postfixed atoms and
// let statements. An empty sequence is a NOP.
func (p *Parser) parseSeq(sc *engine.Scope) (*engine.Node, error) {
	var items []*engine.Node
	for !p.atSeqEnd() {
		if p.at(tokIdent) && p.cur().text == "let" {
			n, err := p.parseLet(sc)
			if err != nil {
				return nil, err
			}
			items = append(items, n)
			continue
		}
		n, err := p.parsePostfix(sc)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	switch len(items) {
	case 0:
		return engine.NewNop(), nil
	case 1:
		return items[0], nil
	default:
		return engine.NewCat(items...), nil
	}
}

// parseLet handles `let A, B := expr ;`. The expression evaluates in
// the scope without the new names; binds pop values top-first, so the
// last declared name takes the top of the stack.
func (p *Parser) parseLet(sc *engine.Scope) (*engine.Node, error) {
	p.advance() // let
	var names []string
	for {
		t, err := p.eat(tokIdent, "identifier")
		if err != nil {
			return nil, err
		}
		names = append(names, t.text)
		if !p.at(tokComma) {
			break
		}
		p.advance()
	}
	if _, err := p.eat(tokAssign, "`:='"); err != nil {
		return nil, err
	}
	expr, err := p.parseSeq(sc)
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(tokSemi, "`;'"); err != nil {
		return nil, err
	}

	items := []*engine.Node{expr}
	for i := len(names) - 1; i >= 0; i-- {
		sc.AddName(names[i])
		items = append(items, engine.NewBind(names[i]))
	}
	return engine.NewCat(items...), nil
}

// parsePostfix handles the * + ? suffixes.
func (p *Parser) parsePostfix(sc *engine.Scope) (*engine.Node, error) {
	n, err := p.parseAtom(sc)
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().kind {
		case tokStar:
			p.advance()
			n = engine.NewCloseStar(n)
		case tokPlus:
			// e+ is e followed by e's closure.
			p.advance()
			n = engine.NewCat(n, engine.NewCloseStar(n))
		case tokQMark:
			p.advance()
			n = engine.NewAlt(n, engine.NewNop())
		default:
			return n, nil
		}
	}
}

func (p *Parser) parseAtom(sc *engine.Scope) (*engine.Node, error) {
	t := p.cur()
	switch t.kind {
	case tokNum:
		p.advance()
		return engine.NewConst(t.num, literalDomain(t.base)), nil

	case tokStr:
		p.advance()
		return p.stringNode(t, sc)

	case tokLParen:
		p.advance()
		n, err := p.parseAltList(sc)
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(tokRParen, "`)'"); err != nil {
			return nil, err
		}
		return n, nil

	case tokLBracket:
		p.advance()
		if p.at(tokRBracket) {
			p.advance()
			return engine.NewEmptyList(), nil
		}
		n, err := p.parseAltList(sc)
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(tokRBracket, "`]'"); err != nil {
			return nil, err
		}
		return engine.NewCapture(n), nil

	case tokLBrace:
		// A block body gets its own scope, pushed when the resulting
		// closure is applied.
		p.advance()
		inner := engine.NewScope(sc)
		n, err := p.parseAltList(inner)
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(tokRBrace, "`}'"); err != nil {
			return nil, err
		}
		return engine.NewBlock(engine.NewScopeNode(n, inner)), nil

	case tokAnyParen, tokNoneParen:
		p.advance()
		n, err := p.parseAltList(sc)
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(tokRParen, "`)'"); err != nil {
			return nil, err
		}
		pred := engine.NewPredSubXAny(n)
		if t.kind == tokNoneParen {
			pred = engine.NewPredNot(pred)
		}
		return engine.NewAssert(pred), nil

	case tokPipe:
		return p.parseBindings(sc)

	case tokIdent:
		switch t.text {
		case "if":
			return p.parseIfElse(sc)
		case "debug":
			p.advance()
			return engine.NewDebug(), nil
		case "then", "else":
			return nil, p.errf("unexpected `%s'", t.text)
		}
		p.advance()
		if _, ok := p.voc.Lookup(t.text); ok {
			return engine.NewBuiltin(t.text), nil
		}
		return engine.NewRead(t.text), nil

	default:
		return nil, p.errf("unexpected %s", p.describe(t))
	}
}

// parseBindings handles |A B ...|: each name is declared in the current
// scope and bound by popping, top of stack first into the last name.
func (p *Parser) parseBindings(sc *engine.Scope) (*engine.Node, error) {
	p.advance() // opening |
	var names []string
	for p.at(tokIdent) {
		names = append(names, p.cur().text)
		p.advance()
	}
	if len(names) == 0 {
		return nil, p.errf("expected at least one name between `|'")
	}
	if _, err := p.eat(tokPipe, "closing `|'"); err != nil {
		return nil, err
	}
	items := make([]*engine.Node, 0, len(names))
	for i := len(names) - 1; i >= 0; i-- {
		sc.AddName(names[i])
		items = append(items, engine.NewBind(names[i]))
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return engine.NewCat(items...), nil
}

func (p *Parser) parseIfElse(sc *engine.Scope) (*engine.Node, error) {
	p.advance() // if
	cond, err := p.parseSeq(sc)
	if err != nil {
		return nil, err
	}
	if t := p.cur(); t.kind != tokIdent || t.text != "then" {
		return nil, p.errf("expected `then', found %s", p.describe(t))
	}
	p.advance()
	then, err := p.parseSeq(sc)
	if err != nil {
		return nil, err
	}
	var elseNode *engine.Node
	if t := p.cur(); t.kind == tokIdent && t.text == "else" {
		p.advance()
		elseNode, err = p.parseSeq(sc)
		if err != nil {
			return nil, err
		}
	}
	return engine.NewIfElse(cond, then, elseNode), nil
}

// stringNode turns a string token into a STR node (pure literal) or a
// FORMAT node whose embedded sub-expressions are compiled against the
// same scope as the enclosing expression.
func (p *Parser) stringNode(t token, sc *engine.Scope) (*engine.Node, error) {
	if len(t.parts) == 1 && !t.parts[0].isExpr {
		return engine.NewStr(t.parts[0].lit), nil
	}
	parts := make([]engine.FormatPart, 0, len(t.parts))
	for _, part := range t.parts {
		if !part.isExpr {
			parts = append(parts, engine.FormatPart{Literal: part.lit})
			continue
		}
		sub := &Parser{voc: p.voc}
		lx := &lexer{src: part.expr}
		for {
			tk, err := lx.next()
			if err != nil {
				return nil, err
			}
			sub.toks = append(sub.toks, tk)
			if tk.kind == tokEOF {
				break
			}
		}
		n, err := sub.parseAltList(sc)
		if err != nil {
			return nil, err
		}
		if sub.cur().kind != tokEOF {
			return nil, sub.errf("unexpected %s in %%( %%) sub-expression", sub.describe(sub.cur()))
		}
		parts = append(parts, engine.FormatPart{Expr: n})
	}
	return engine.NewFormat(parts...), nil
}

func literalDomain(base int) domain.Domain {
	switch base {
	case 16:
		return domain.Hex
	case 8:
		return domain.Oct
	case 2:
		return domain.Bin
	default:
		return domain.Plain
	}
}
