package engine

// NewAltProducer builds an ALT node's fan-out: each upstream stack is
// cloned once per branch into a shared "file" slot, every branch (a
// "tine") drains its own slot and then blocks until the others have
// drained theirs too (at which point the file refills from a fresh
// upstream stack), and a merge stage round-robins across branches so
// results interleave fairly rather than exhausting one branch before
// starting the next.
func NewAltProducer(upstream Producer, branches []func(tine Producer) Producer) Producer {
	file := make([]*Stack, len(branches))
	done := new(bool)

	tines := make([]Producer, len(branches))
	for i := range branches {
		tines[i] = &tineProducer{
			upstream: upstream,
			file:     file,
			done:     done,
			branch:   i,
		}
	}

	ops := make([]Producer, len(branches))
	for i, mk := range branches {
		ops[i] = mk(tines[i])
	}

	return &mergeProducer{ops: ops, done: done, upstream: upstream}
}

// tineProducer is one branch's view onto the shared file of cloned
// stacks.
type tineProducer struct {
	upstream Producer
	file     []*Stack
	done     *bool
	branch   int
}

func (t *tineProducer) Next() (*Stack, bool) {
	if *t.done {
		return nil, false
	}
	allEmpty := true
	for _, s := range t.file {
		if s != nil {
			allEmpty = false
			break
		}
	}
	if allEmpty {
		s, ok := t.upstream.Next()
		if !ok {
			*t.done = true
			return nil, false
		}
		for i := range t.file {
			t.file[i] = s.Clone()
		}
	}
	s := t.file[t.branch]
	t.file[t.branch] = nil
	if s == nil {
		return nil, false
	}
	return s, true
}

func (t *tineProducer) Reset() {
	for i := range t.file {
		t.file[i] = nil
	}
}

func (t *tineProducer) Name() string { return "tine" }

// mergeProducer round-robins Next across the branch op chains. A
// branch reporting exhaustion is not terminal: another branch may
// still be mid-yield on its copy of the current upstream stack (an
// elem-style branch fanning one input into many results next to a
// branch that yielded once), and polling it again may even refill the
// file from the next upstream stack. The merge stops only after a full
// round-robin pass in which every branch yields nothing, which can
// happen only once the shared upstream is exhausted and every branch
// has drained its own buffered state.
type mergeProducer struct {
	ops      []Producer
	done     *bool
	upstream Producer
	idx      int
}

func (m *mergeProducer) Next() (*Stack, bool) {
	misses := 0
	for misses < len(m.ops) {
		if s, ok := m.ops[m.idx].Next(); ok {
			m.idx = (m.idx + 1) % len(m.ops)
			return s, true
		}
		m.idx = (m.idx + 1) % len(m.ops)
		misses++
	}
	return nil, false
}

func (m *mergeProducer) Reset() {
	*m.done = false
	m.idx = 0
	for _, op := range m.ops {
		op.Reset()
	}
	m.upstream.Reset()
}

func (m *mergeProducer) Name() string { return "merge" }
