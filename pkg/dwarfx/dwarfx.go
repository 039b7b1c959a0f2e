// Package dwarfx is the DWARF/ELF access layer behind the query
// engine's abstract "DWARF access" capability: it opens object files,
// walks compile units, DIE trees and attributes, decodes location
// lists, and contributes the DWARF-specific value kinds and builtin
// vocabulary that pkg/engine's generic core is oblivious to.
//
// The reader itself is the standard library's debug/elf and
// debug/dwarf; location expressions are pretty-printed through
// github.com/go-delve/delve/pkg/dwarf/op.
package dwarfx

import (
	"debug/dwarf"
	"debug/elf"
	"fmt"
	"sort"

	"github.com/go-zwerg/zwerg/pkg/utils"
)

// Context owns one opened object file: the ELF handle, its DWARF data,
// and the lazily-built structural indexes the tree-walking builtins
// need. Contexts are shared read-only by every value loaded from them.
type Context struct {
	Path string
	File *elf.File
	Data *dwarf.Data

	// parent maps a DIE's offset to its parent's offset, built per
	// compile unit the first time "parent" is asked about a DIE in it.
	parent map[dwarf.Offset]dwarf.Offset
	// indexed records which CUs already contributed to parent.
	indexed map[dwarf.Offset]bool

	// debugLoc is the raw .debug_loc section for location-list
	// attributes, fetched on first use.
	debugLoc    []byte
	debugLocErr error
	debugLocOK  bool

	// abbrev caches the decoded .debug_abbrev units.
	abbrev    []abbrevUnitData
	abbrevErr error
	abbrevOK  bool
}

// Open opens path as an ELF object with DWARF debugging information.
func Open(path string) (*Context, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, utils.MakeError(err, "cannot open %q as an ELF file", path)
	}
	d, err := f.DWARF()
	if err != nil {
		f.Close()
		return nil, utils.MakeError(err, "cannot read DWARF data from %q", path)
	}
	return &Context{
		Path:    path,
		File:    f,
		Data:    d,
		parent:  make(map[dwarf.Offset]dwarf.Offset),
		indexed: make(map[dwarf.Offset]bool),
	}, nil
}

// Close releases the underlying file handle.
func (c *Context) Close() error { return c.File.Close() }

// PtrSize reports the file's address size in bytes.
func (c *Context) PtrSize() int {
	if c.File.Class == elf.ELFCLASS32 {
		return 4
	}
	return 8
}

// CompileUnits returns the entries of every compile unit root, in file
// order.
func (c *Context) CompileUnits() ([]*dwarf.Entry, error) {
	r := c.Data.Reader()
	var units []*dwarf.Entry
	for {
		e, err := r.Next()
		if err != nil {
			return nil, utils.MakeError(err, "walking compile units of %q", c.Path)
		}
		if e == nil {
			return units, nil
		}
		if e.Tag == dwarf.TagCompileUnit || e.Tag == dwarf.TagPartialUnit || e.Tag == dwarf.TagTypeUnit {
			units = append(units, e)
		}
		r.SkipChildren()
	}
}

// entryAt re-reads the entry at off.
func (c *Context) entryAt(off dwarf.Offset) (*dwarf.Entry, error) {
	r := c.Data.Reader()
	r.Seek(off)
	e, err := r.Next()
	if err != nil {
		return nil, utils.MakeError(err, "reading DIE at 0x%x in %q", off, c.Path)
	}
	if e == nil {
		return nil, fmt.Errorf("no DIE at offset 0x%x in %q", off, c.Path)
	}
	return e, nil
}

// Children returns the immediate children of the DIE at off. In cooked
// mode, a DW_TAG_imported_unit child is replaced by the children of
// the unit it imports, with importer recorded so values can link back
// across the splice point.
func (c *Context) Children(off dwarf.Offset, d Doneness) ([]childEntry, error) {
	e, err := c.entryAt(off)
	if err != nil {
		return nil, err
	}
	if !e.Children {
		return nil, nil
	}

	r := c.Data.Reader()
	r.Seek(off)
	if _, err := r.Next(); err != nil {
		return nil, utils.MakeError(err, "reading DIE at 0x%x in %q", off, c.Path)
	}

	var out []childEntry
	for {
		ch, err := r.Next()
		if err != nil {
			return nil, utils.MakeError(err, "walking children of DIE at 0x%x in %q", off, c.Path)
		}
		if ch == nil || ch.Tag == 0 {
			return out, nil
		}
		if d == Cooked && ch.Tag == dwarf.TagImportedUnit {
			if imp, ok := ch.Val(dwarf.AttrImport).(dwarf.Offset); ok {
				spliced, err := c.Children(imp, d)
				if err != nil {
					return nil, err
				}
				for _, s := range spliced {
					if s.importer == 0 {
						s.importer = ch.Offset
					}
					out = append(out, s)
				}
				if ch.Children {
					r.SkipChildren()
				}
				continue
			}
		}
		out = append(out, childEntry{entry: ch})
		if ch.Children {
			r.SkipChildren()
		}
	}
}

type childEntry struct {
	entry    *dwarf.Entry
	importer dwarf.Offset
}

// indexCU fills the parent index for the compile unit rooted at cu.
func (c *Context) indexCU(cu dwarf.Offset) error {
	if c.indexed[cu] {
		return nil
	}
	c.indexed[cu] = true

	r := c.Data.Reader()
	r.Seek(cu)
	var stack []dwarf.Offset
	first := true
	for {
		e, err := r.Next()
		if err != nil {
			return utils.MakeError(err, "indexing compile unit at 0x%x in %q", cu, c.Path)
		}
		if e == nil {
			return nil
		}
		if e.Tag == 0 {
			if len(stack) == 0 {
				return nil
			}
			stack = stack[:len(stack)-1]
			continue
		}
		if !first && len(stack) == 0 {
			// Next compile unit reached.
			return nil
		}
		if len(stack) > 0 {
			c.parent[e.Offset] = stack[len(stack)-1]
		}
		if e.Children {
			stack = append(stack, e.Offset)
		}
		first = false
	}
}

// Parent resolves the parent DIE offset of the DIE at off within the
// compile unit rooted at cu. ok=false for the root itself.
func (c *Context) Parent(cu, off dwarf.Offset) (dwarf.Offset, bool, error) {
	if err := c.indexCU(cu); err != nil {
		return 0, false, err
	}
	p, ok := c.parent[off]
	return p, ok, nil
}

// CUFor finds the compile unit root that contains off.
func (c *Context) CUFor(off dwarf.Offset) (*dwarf.Entry, error) {
	units, err := c.CompileUnits()
	if err != nil {
		return nil, err
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Offset < units[j].Offset })
	var best *dwarf.Entry
	for _, u := range units {
		if u.Offset <= off {
			best = u
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no compile unit contains offset 0x%x in %q", off, c.Path)
	}
	return best, nil
}

// DebugLoc fetches the raw .debug_loc section, once.
func (c *Context) DebugLoc() ([]byte, error) {
	if !c.debugLocOK {
		c.debugLocOK = true
		sec := c.File.Section(".debug_loc")
		if sec == nil {
			c.debugLocErr = fmt.Errorf("%q has no .debug_loc section", c.Path)
		} else {
			c.debugLoc, c.debugLocErr = sec.Data()
		}
	}
	return c.debugLoc, c.debugLocErr
}
