package engine

import (
	"fmt"
	"strings"

	"github.com/go-zwerg/zwerg/pkg/domain"
)

// String is a text value. Show prints the text bare in Brief brevity
// and quoted with escapes in Full brevity, splitting top-level
// rendering from embedded-in-a-sequence rendering.
type String struct {
	Text string
	pos  int
}

// NewString builds a String at stack position pos.
func NewString(text string, pos int) *String { return &String{Text: text, pos: pos} }

func (s *String) ValueKind() ValueKind { return KindString }

func (s *String) Show(brv domain.Brevity) string {
	if brv == domain.Brief {
		return s.Text
	}
	return quoteString(s.Text)
}

func (s *String) Clone() Value {
	cl := *s
	return &cl
}

func (s *String) Cmp(other Value) CmpResult {
	o, ok := other.(*String)
	if !ok {
		return CmpIncomparable
	}
	switch {
	case s.Text < o.Text:
		return CmpLess
	case s.Text > o.Text:
		return CmpGreater
	default:
		return CmpEqual
	}
}

func (s *String) Pos() int { return s.pos }

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			fmt.Fprintf(&b, "%c", r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// WithPos returns a copy of the string at a new stack position.
func (s *String) WithPos(pos int) Value {
	cl := *s
	cl.pos = pos
	return &cl
}
