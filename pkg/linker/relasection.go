package linker

import (
	"debug/elf"

	"github.com/zerd/Bold/pkg/utils"
)

// RelocationSection is a REL or RELA section. REL entries are held as
// Rela64 with a zero addend.
type RelocationSection struct {
	BaseSection
	Relocs []Rela64

	// Symtab (sh_link) and Target (sh_info) are section indices, set by
	// name resolution.
	Symtab   uint32
	Target   uint32
	resolved bool
}

func newRelocationSection(base BaseSection) (*RelocationSection, error) {
	s := &RelocationSection{BaseSection: base}
	entsize := s.EntrySize()
	if len(base.Data)%entsize != 0 {
		return nil, formatErrorf("relocation section size %d is not a multiple of %d",
			len(base.Data), entsize)
	}
	if s.HasAddend() {
		relocs, err := utils.ReadSlice[Rela64](base.Data, entsize)
		if err != nil {
			return nil, &FormatError{Msg: err.Error()}
		}
		s.Relocs = relocs
		return s, nil
	}
	rels, err := utils.ReadSlice[Rel64](base.Data, entsize)
	if err != nil {
		return nil, &FormatError{Msg: err.Error()}
	}
	s.Relocs = make([]Rela64, len(rels))
	for i, rel := range rels {
		s.Relocs[i] = Rela64{Offset: rel.Offset, Info: rel.Info}
	}
	return s, nil
}

func (s *RelocationSection) HasAddend() bool {
	return s.typ == elf.SHT_RELA
}

func (s *RelocationSection) EntrySize() int {
	if s.HasAddend() {
		return int(RelaSize)
	}
	return int(RelSize)
}

func (s *RelocationSection) Encode() []byte {
	buf := make([]byte, 0, len(s.Relocs)*s.EntrySize())
	for _, r := range s.Relocs {
		if s.HasAddend() {
			buf = utils.Append(buf, r)
		} else {
			buf = utils.Append(buf, Rel64{Offset: r.Offset, Info: r.Info})
		}
	}
	return buf
}

func (s *RelocationSection) PhysicalSize() uint64 {
	return uint64(len(s.Relocs) * s.EntrySize())
}

func (s *RelocationSection) LogicalSize() uint64 {
	return s.PhysicalSize()
}

func (s *RelocationSection) resolveNames(f *InputFile) error {
	shdr := &f.Shdrs[s.shndx]
	symtab, err := f.symtabAt(shdr.Link)
	if err != nil {
		return err
	}
	if int(shdr.Info) >= len(f.Sections) {
		return formatErrorf("relocation target section %d out of range", shdr.Info)
	}
	for i := range s.Relocs {
		if int(s.Relocs[i].Sym()) >= len(symtab.Symbols) {
			return formatErrorf("relocation %d: symbol index %d out of range",
				i, s.Relocs[i].Sym())
		}
	}
	s.Symtab = shdr.Link
	s.Target = shdr.Info
	s.resolved = true
	return nil
}

// Symbol returns the symbol entry referenced by relocation i.
func (s *RelocationSection) Symbol(f *InputFile, i int) *SymbolEntry {
	utils.Assert(s.resolved)
	symtab := f.Sections[s.Symtab].(*SymtabSection)
	return &symtab.Symbols[s.Relocs[i].Sym()]
}
