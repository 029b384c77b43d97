package linker

import (
	"debug/elf"
)

// A Symbol is the link-wide definition chosen for a global name.
type Symbol struct {
	File  *ObjectFile
	Name  string
	Shndx uint32
	Value uint64
	Bind  elf.SymBind
}

func NewSymbol(name string) *Symbol {
	return &Symbol{Name: name}
}

func GetSymbolByName(ctx *Context, name string) *Symbol {
	if sym, ok := ctx.SymbolMap[name]; ok {
		return sym
	}
	ctx.SymbolMap[name] = NewSymbol(name)
	return ctx.SymbolMap[name]
}

func (s *Symbol) IsDefined() bool {
	return s.File != nil
}

func (s *Symbol) Define(file *ObjectFile, def Definition) {
	s.File = file
	s.Shndx = def.Shndx
	s.Value = def.Value
	s.Bind = def.Bind
}

func (s *Symbol) IsAbs() bool {
	return s.Shndx == uint32(elf.SHN_ABS)
}

// IsLoaded reports whether the symbol has a run-time address: it is
// absolute or its section has been placed in a segment.
func (s *Symbol) IsLoaded() bool {
	if !s.IsDefined() {
		return false
	}
	return s.IsAbs() || s.File.Sections[s.Shndx].GetChunk().Placed
}

// GetAddr returns the final address of the symbol. The defining section
// must have been laid out.
func (s *Symbol) GetAddr() (uint64, error) {
	if !s.IsDefined() {
		return 0, &UnresolvedSymbolError{Name: s.Name}
	}
	if s.IsAbs() {
		return s.Value, nil
	}
	section := s.File.Sections[s.Shndx].GetChunk()
	if !section.Placed {
		return 0, &LayoutPreconditionError{What: "section " + section.Name}
	}
	return section.VirtAddr + s.Value, nil
}
