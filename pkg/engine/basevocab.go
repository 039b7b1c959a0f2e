package engine

import "github.com/go-zwerg/zwerg/pkg/domain"

// NewBaseVocabulary assembles the generic (non-DWARF) builtin
// vocabulary. The vocabulary is an explicit value handed to the parser
// and lowerer rather than a global registry, so there are no order-of-
// initialization dependencies between builtin files. onError receives
// the recoverable per-stack diagnostics the builtins raise themselves
// (division by zero, incomparable constants, stack underflow); nil
// discards them. No-matching-overload diagnostics go to the callback
// given to NewOverloadProducer instead.
func NewBaseVocabulary(onError func(error)) *Vocabulary {
	v := NewVocabulary()

	v.Register(addBuiltin(onError))
	v.Register(subBuiltin(onError))
	v.Register(mulBuiltin(onError))
	v.Register(divBuiltin(onError))
	v.Register(modBuiltin(onError))

	v.Register(cmpBuiltin("eq", CmpEq))
	v.Register(cmpBuiltin("ne", CmpNe))
	v.Register(cmpBuiltin("lt", CmpLt))
	v.Register(cmpBuiltin("le", CmpLe))
	v.Register(cmpBuiltin("gt", CmpGt))
	v.Register(cmpBuiltin("ge", CmpGe))

	v.Register(lengthBuiltin(onError))
	v.Register(elemBuiltin("elem", false, onError))
	v.Register(elemBuiltin("relem", true, onError))
	v.Register(emptyBuiltin())
	v.Register(findBuiltin())

	v.Register(dupBuiltin(onError))
	v.Register(swapBuiltin(onError))
	v.Register(dropBuiltin(onError))
	v.Register(overBuiltin(onError))
	v.Register(rotBuiltin(onError))

	v.Register(posBuiltin(onError))
	v.Register(typeBuiltin(onError))
	v.Register(valueBuiltin(onError))
	v.Register(domainConvBuiltin("hex", domain.Hex, onError))
	v.Register(domainConvBuiltin("oct", domain.Oct, onError))
	v.Register(domainConvBuiltin("bin", domain.Bin, onError))
	v.Register(domainConvBuiltin("dec", domain.Plain, onError))

	v.Register(applyBuiltin())

	return v
}
