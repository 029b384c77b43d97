package linker

import (
	"debug/elf"

	"github.com/zerd/Bold/pkg/utils"
)

// An InputFile is a loaded ELF document: its header, section header table
// and one materialized body per section header.
type InputFile struct {
	File           *File
	Ehdr           Header64
	Shdrs          []SectionHeader
	Sections       []Section
	SectionsByName map[string]uint32
}

func NewInputFile(file *File) (*InputFile, error) {
	f := &InputFile{File: file, SectionsByName: make(map[string]uint32)}
	contents := file.Contents

	if len(contents) < int(ELFHeaderSize) {
		return nil, formatErrorf("file too small (%d bytes)", len(contents))
	}
	if !CheckMagic(contents) {
		return nil, formatErrorf("not an ELF file")
	}

	ehdr, err := utils.Read[Header64](contents)
	if err != nil {
		return nil, &FormatError{Msg: err.Error()}
	}
	if !ehdr.CheckIdent() {
		return nil, formatErrorf("not a little-endian ELF64 file")
	}
	if elf.Machine(ehdr.Machine) != elf.EM_X86_64 {
		return nil, formatErrorf("unsupported machine %s", elf.Machine(ehdr.Machine))
	}
	if uint64(ehdr.Ehsize) < uint64(ELFHeaderSize) || uint64(ehdr.Ehsize) > uint64(len(contents)) {
		return nil, formatErrorf("bad header size %d", ehdr.Ehsize)
	}
	f.Ehdr = ehdr

	if err := f.readSectionHeaders(contents); err != nil {
		return nil, err
	}

	f.Sections = make([]Section, 0, len(f.Shdrs))
	for i := range f.Shdrs {
		shdr := &f.Shdrs[i]
		var data []byte
		if elf.SectionType(shdr.Type) != elf.SHT_NOBITS {
			end := shdr.Offset + shdr.Size
			if end < shdr.Offset || end > uint64(len(contents)) {
				return nil, formatErrorf("section %d is out of range: offset %d size %d",
					i, shdr.Offset, shdr.Size)
			}
			data = make([]byte, shdr.Size)
			copy(data, contents[shdr.Offset:end])
		}
		s, err := NewSection(uint32(i), shdr, data)
		if err != nil {
			return nil, wrapErrorf(err, "section %d", i)
		}
		f.Sections = append(f.Sections, s)
	}

	return f, nil
}

func (f *InputFile) readSectionHeaders(contents []byte) error {
	if f.Ehdr.Shoff == 0 {
		return nil
	}
	if f.Ehdr.Shentsize != uint16(SectionHeaderSize) {
		return formatErrorf("section header entry size %d, expected %d",
			f.Ehdr.Shentsize, SectionHeaderSize)
	}
	if f.Ehdr.Shoff+uint64(SectionHeaderSize) > uint64(len(contents)) {
		return formatErrorf("section header table is out of range: %d", f.Ehdr.Shoff)
	}

	first, err := utils.Read[SectionHeader](contents[f.Ehdr.Shoff:])
	if err != nil {
		return &FormatError{Msg: err.Error()}
	}
	numSections := uint64(f.Ehdr.Shnum)
	if numSections == 0 {
		numSections = first.Size
	}

	end := f.Ehdr.Shoff + numSections*uint64(SectionHeaderSize)
	if end < f.Ehdr.Shoff || end > uint64(len(contents)) {
		return formatErrorf("section header table is truncated: %d entries at %d",
			numSections, f.Ehdr.Shoff)
	}
	shdrs, err := utils.ReadSlice[SectionHeader](contents[f.Ehdr.Shoff:end], int(SectionHeaderSize))
	if err != nil {
		return &FormatError{Msg: err.Error()}
	}
	f.Shdrs = shdrs
	return nil
}

func (f *InputFile) shstrndx() uint32 {
	if f.Ehdr.Shstrndx == uint16(elf.SHN_XINDEX) {
		return f.Shdrs[0].Link
	}
	return uint32(f.Ehdr.Shstrndx)
}

func (f *InputFile) strtabAt(idx uint32) (*StrtabSection, error) {
	if int(idx) >= len(f.Sections) {
		return nil, formatErrorf("string table index %d out of range", idx)
	}
	strtab, ok := f.Sections[idx].(*StrtabSection)
	if !ok {
		return nil, formatErrorf("section %d is %s, expected SHT_STRTAB", idx, f.Sections[idx].Type())
	}
	return strtab, nil
}

func (f *InputFile) symtabAt(idx uint32) (*SymtabSection, error) {
	if int(idx) >= len(f.Sections) {
		return nil, formatErrorf("symbol table index %d out of range", idx)
	}
	symtab, ok := f.Sections[idx].(*SymtabSection)
	if !ok {
		return nil, formatErrorf("section %d is %s, expected a symbol table", idx, f.Sections[idx].Type())
	}
	return symtab, nil
}

// ResolveNames names every section from the section name string table, then
// lets each section resolve its own references. Section names must be
// known first: symbols of type SECTION are keyed by them.
func (f *InputFile) ResolveNames() error {
	if len(f.Sections) == 0 {
		return nil
	}
	shstrtab, err := f.strtabAt(f.shstrndx())
	if err != nil {
		return wrapError(err, "section names")
	}
	for i, s := range f.Sections {
		name, err := shstrtab.Get(f.Shdrs[i].Name)
		if err != nil {
			return wrapErrorf(err, "section %d name", i)
		}
		s.GetChunk().Name = name
		f.SectionsByName[name] = uint32(i)
	}
	for i, s := range f.Sections {
		if err := s.resolveNames(f); err != nil {
			return wrapErrorSection(err, i, s)
		}
	}
	return nil
}

func (f *InputFile) FindSection(typ elf.SectionType) Section {
	for _, s := range f.Sections {
		if s.Type() == typ {
			return s
		}
	}
	return nil
}

func (f *InputFile) SectionByName(name string) Section {
	if idx, ok := f.SectionsByName[name]; ok {
		return f.Sections[idx]
	}
	return nil
}

// Encode writes the document back out: header, section bodies in header
// order, then the section header table. File offsets and sizes are
// recomputed; everything else is kept.
func (f *InputFile) Encode() []byte {
	buf := make([]byte, ELFHeaderSize)
	table := NewOutputShdr()

	for i, s := range f.Sections {
		shdr := f.Shdrs[i]
		if s.Type() == elf.SHT_NULL {
			shdr.Offset = 0
			shdr.Size = 0
			table.Shdrs = append(table.Shdrs, shdr)
			continue
		}
		offset := utils.AlignTo(uint64(len(buf)), shdr.Addralign)
		buf = append(buf, make([]byte, offset-uint64(len(buf)))...)
		shdr.Offset = offset
		shdr.Size = s.LogicalSize()
		buf = append(buf, s.Encode()...)
		table.Shdrs = append(table.Shdrs, shdr)
	}

	offset := utils.AlignTo(uint64(len(buf)), 8)
	buf = append(buf, make([]byte, offset-uint64(len(buf)))...)
	table.place(0, offset)
	buf = append(buf, table.Encode()...)

	ehdr := f.Ehdr
	ehdr.Ehsize = uint16(ELFHeaderSize)
	ehdr.Shentsize = uint16(SectionHeaderSize)
	ehdr.Shnum = uint16(len(table.Shdrs))
	ehdr.Shoff = table.FileOffset
	if len(table.Shdrs) == 0 {
		ehdr.Shoff = 0
	}
	utils.Write(buf, ehdr)
	return buf
}
