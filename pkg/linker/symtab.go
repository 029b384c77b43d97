package linker

import (
	"debug/elf"

	"github.com/zerd/Bold/pkg/utils"
)

// A SymbolEntry is a symbol table record together with its resolved name.
type SymbolEntry struct {
	Sym64
	Name string
}

// SymtabSection is a SYMTAB or DYNSYM section.
type SymtabSection struct {
	BaseSection
	Symbols []SymbolEntry
	// Strtab is the index of the string table named by sh_link.
	Strtab uint32
}

func newSymtabSection(base BaseSection) (*SymtabSection, error) {
	if len(base.Data)%int(SymbolSize) != 0 {
		return nil, formatErrorf("symbol table size %d is not a multiple of %d",
			len(base.Data), SymbolSize)
	}
	syms, err := utils.ReadSlice[Sym64](base.Data, int(SymbolSize))
	if err != nil {
		return nil, &FormatError{Msg: err.Error()}
	}
	s := &SymtabSection{BaseSection: base}
	s.Symbols = make([]SymbolEntry, len(syms))
	for i, sym := range syms {
		s.Symbols[i].Sym64 = sym
	}
	return s, nil
}

func (s *SymtabSection) Encode() []byte {
	buf := make([]byte, 0, len(s.Symbols)*int(SymbolSize))
	for i := range s.Symbols {
		buf = utils.Append(buf, s.Symbols[i].Sym64)
	}
	return buf
}

func (s *SymtabSection) PhysicalSize() uint64 {
	return uint64(len(s.Symbols)) * uint64(SymbolSize)
}

func (s *SymtabSection) LogicalSize() uint64 {
	return s.PhysicalSize()
}

// IsDynamic reports whether this is a DYNSYM section.
func (s *SymtabSection) IsDynamic() bool {
	return s.typ == elf.SHT_DYNSYM
}

func (s *SymtabSection) resolveNames(f *InputFile) error {
	link := f.Shdrs[s.shndx].Link
	strtab, err := f.strtabAt(link)
	if err != nil {
		return err
	}
	s.Strtab = link
	for i := range s.Symbols {
		name, err := strtab.Get(s.Symbols[i].Sym64.Name)
		if err != nil {
			return wrapErrorf(err, "symbol %d", i)
		}
		s.Symbols[i].Name = name
	}
	return nil
}
