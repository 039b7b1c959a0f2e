package engine

import (
	"fmt"
	"os"

	"github.com/go-zwerg/zwerg/pkg/domain"
)

// debugProducer passes every stack through unchanged after dumping it
// (values top-down, then the frame chain) to standard error.
type debugProducer struct {
	upstream Producer
}

// NewDebugProducer builds the F_DEBUG pass-through.
func NewDebugProducer(upstream Producer) Producer {
	return &debugProducer{upstream: upstream}
}

func (p *debugProducer) Next() (*Stack, bool) {
	s, ok := p.upstream.Next()
	if !ok {
		return nil, false
	}
	dumpStack(s)
	return s, true
}

func dumpStack(s *Stack) {
	fmt.Fprintf(os.Stderr, "stack (%d):\n", s.Depth())
	for i := 0; i < s.Depth(); i++ {
		fmt.Fprintf(os.Stderr, "  [%d] %s\n", i, s.Nth(i).Show(domain.Full))
	}
	depth := 0
	for fr := s.Frame(); fr != nil; fr = fr.Parent() {
		fmt.Fprintf(os.Stderr, "  frame %d:\n", depth)
		for i := 0; i < fr.NumSlots(); i++ {
			if v := fr.Slot(i); v != nil {
				fmt.Fprintf(os.Stderr, "    %d: %s\n", i, v.Show(domain.Full))
			} else {
				fmt.Fprintf(os.Stderr, "    %d: <unbound>\n", i)
			}
		}
		depth++
	}
}

func (p *debugProducer) Reset() { p.upstream.Reset() }

func (p *debugProducer) Name() string { return "debug" }
