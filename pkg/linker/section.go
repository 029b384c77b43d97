package linker

import (
	"debug/elf"
)

// A Section is the materialized body of one section header. The set of
// implementations is closed; NewSection picks one by type tag.
type Section interface {
	Chunker
	// Index is the position of the section in its file's header table.
	Index() uint32
	Type() elf.SectionType
	// Contents is the raw byte payload, mutated in place by relocation.
	Contents() []byte
	resolveNames(f *InputFile) error
}

// NewSection decodes data as the body of shdr. Unknown section types
// become a RawSection.
func NewSection(shndx uint32, shdr *SectionHeader, data []byte) (Section, error) {
	base := BaseSection{shndx: shndx, typ: elf.SectionType(shdr.Type), Data: data}
	switch base.typ {
	case elf.SHT_NULL:
		base.Data = nil
		return &NullSection{base}, nil
	case elf.SHT_PROGBITS:
		return &ProgBitsSection{base}, nil
	case elf.SHT_SYMTAB, elf.SHT_DYNSYM:
		return newSymtabSection(base)
	case elf.SHT_STRTAB:
		return newStrtabSection(base), nil
	case elf.SHT_REL, elf.SHT_RELA:
		return newRelocationSection(base)
	case elf.SHT_NOBITS:
		base.Data = nil
		return &NobitsSection{BaseSection: base, Size: shdr.Size}, nil
	case elf.SHT_HASH, elf.SHT_DYNAMIC, elf.SHT_NOTE, elf.SHT_SHLIB:
		return &OpaqueSection{base}, nil
	default:
		return &RawSection{base}, nil
	}
}

type BaseSection struct {
	Chunk
	shndx uint32
	typ   elf.SectionType
	Data  []byte
}

func (s *BaseSection) Index() uint32 {
	return s.shndx
}

func (s *BaseSection) Type() elf.SectionType {
	return s.typ
}

func (s *BaseSection) Contents() []byte {
	return s.Data
}

func (s *BaseSection) PhysicalSize() uint64 {
	return uint64(len(s.Data))
}

func (s *BaseSection) LogicalSize() uint64 {
	return uint64(len(s.Data))
}

func (s *BaseSection) Encode() []byte {
	return s.Data
}

func (s *BaseSection) resolveNames(f *InputFile) error {
	return nil
}

type NullSection struct {
	BaseSection
}

type ProgBitsSection struct {
	BaseSection
}

// OpaqueSection holds HASH, DYNAMIC, NOTE and SHLIB payloads verbatim.
type OpaqueSection struct {
	BaseSection
}

// RawSection holds a section of a type this package does not know.
type RawSection struct {
	BaseSection
}

// NobitsSection occupies memory but no file bytes.
type NobitsSection struct {
	BaseSection
	Size uint64
}

func (s *NobitsSection) PhysicalSize() uint64 {
	return 0
}

func (s *NobitsSection) LogicalSize() uint64 {
	return s.Size
}

func (s *NobitsSection) Encode() []byte {
	return nil
}
