package dwarfx

import "github.com/go-zwerg/zwerg/pkg/engine"

// DWARF/ELF value kinds, allocated after engine's generic ones so both
// packages share one selector space (see engine.KindDwarfBase).
const (
	KindDwarf engine.ValueKind = engine.KindDwarfBase + iota
	KindCU
	KindDIE
	KindAttr
	KindLoclistElem
	KindLoclistOp
	KindAddrSet
	KindSymbol
	KindSection
	KindAbbrevUnit
	KindAbbrev
	KindAbbrevAttr
	KindStrtabEntry
	KindReloc
)

// registerKindNames teaches engine's diagnostics the dwarfx kind
// names; engine.ValueKind.String only knows the generic ones.
func registerKindNames() {
	for k, n := range map[engine.ValueKind]string{
		KindDwarf:       "dwarf",
		KindCU:          "unit",
		KindDIE:         "die",
		KindAttr:        "attribute",
		KindLoclistElem: "loclist element",
		KindLoclistOp:   "loclist op",
		KindAddrSet:     "address set",
		KindSymbol:      "symbol",
		KindSection:     "section",
		KindAbbrevUnit:  "abbrev unit",
		KindAbbrev:      "abbrev",
		KindAbbrevAttr:  "abbrev attribute",
		KindStrtabEntry: "strtab entry",
		KindReloc:       "relocation",
	} {
		engine.RegisterKindName(k, n)
	}
}
