package linker

import (
	"bytes"
	"debug/elf"
	"unsafe"
)

const PageSize = 0x1000
const ImageBase uint64 = 0x400000

type Header64 struct {
	Ident     [16]byte /* File identification. */
	Type      uint16   /* File type. */
	Machine   uint16   /* Machine architecture. */
	Version   uint32   /* ELF format version. */
	Entry     uint64   /* Entry point. */
	Phoff     uint64   /* Program header file offset. */
	Shoff     uint64   /* Section header file offset. */
	Flags     uint32   /* Architecture-specific flags. */
	Ehsize    uint16   /* Size of ELF header in bytes. */
	Phentsize uint16   /* Size of program header entry. */
	Phnum     uint16   /* Number of program header entries. */
	Shentsize uint16   /* Size of section header entry. */
	Shnum     uint16   /* Number of section header entries. */
	Shstrndx  uint16   /* Section name strings section. */
}

type SectionHeader struct {
	Name      uint32
	Type      uint32
	Flags     uint64
	Addr      uint64
	Offset    uint64
	Size      uint64
	Link      uint32
	Info      uint32
	Addralign uint64
	Entsize   uint64
}

type ProgramHeader struct {
	Type     uint32
	Flags    uint32
	Offset   uint64
	VAddr    uint64
	PAddr    uint64
	FileSize uint64
	MemSize  uint64
	Align    uint64
}

type Sym64 struct {
	Name  uint32 /* String table index of name. */
	Info  uint8  /* Type and binding information. */
	Other uint8  /* Visibility in the low 2 bits. */
	Shndx uint16 /* Section index of symbol. */
	Value uint64 /* Symbol value. */
	Size  uint64 /* Size of associated object. */
}

type Rel64 struct {
	Offset uint64
	Info   uint64
}

type Rela64 struct {
	Offset uint64
	Info   uint64
	Addend int64
}

type Dyn64 struct {
	Tag uint64
	Val uint64
}

const ELFHeaderSize = unsafe.Sizeof(Header64{})
const SectionHeaderSize = unsafe.Sizeof(SectionHeader{})
const ProgramHeaderSize = unsafe.Sizeof(ProgramHeader{})
const SymbolSize = unsafe.Sizeof(Sym64{})
const RelSize = unsafe.Sizeof(Rel64{})
const RelaSize = unsafe.Sizeof(Rela64{})
const DynSize = unsafe.Sizeof(Dyn64{})

var elfMagic = []byte("\177ELF")

func CheckMagic(contents []byte) bool {
	return bytes.HasPrefix(contents, elfMagic)
}

func WriteMagic(contents []byte) {
	copy(contents, elfMagic)
}

// NewIdent returns the identification bytes of a little-endian ELF64 file.
func NewIdent() [16]byte {
	var ident [16]byte
	WriteMagic(ident[:])
	ident[elf.EI_CLASS] = uint8(elf.ELFCLASS64)
	ident[elf.EI_DATA] = uint8(elf.ELFDATA2LSB)
	ident[elf.EI_VERSION] = uint8(elf.EV_CURRENT)
	ident[elf.EI_OSABI] = uint8(elf.ELFOSABI_NONE)
	ident[elf.EI_ABIVERSION] = 0
	return ident
}

func (h *Header64) CheckIdent() bool {
	return CheckMagic(h.Ident[:]) &&
		elf.Class(h.Ident[elf.EI_CLASS]) == elf.ELFCLASS64 &&
		elf.Data(h.Ident[elf.EI_DATA]) == elf.ELFDATA2LSB &&
		elf.Version(h.Ident[elf.EI_VERSION]) == elf.EV_CURRENT
}

func (s *Sym64) Bind() elf.SymBind {
	return elf.SymBind(s.Info >> 4)
}

func (s *Sym64) SetBind(bind elf.SymBind) {
	s.Info = uint8(bind&0xf)<<4 | s.Info&0xf
}

func (s *Sym64) Type() elf.SymType {
	return elf.SymType(s.Info & 0xf)
}

func (s *Sym64) SetType(typ elf.SymType) {
	s.Info = s.Info&0xf0 | uint8(typ&0xf)
}

func (s *Sym64) Visibility() elf.SymVis {
	return elf.SymVis(s.Other & 0b11)
}

func (s *Sym64) SetVisibility(v elf.SymVis) {
	s.Other = s.Other&0b11111100 | uint8(v&0b11)
}

func (s *Sym64) IsUndef() bool {
	return s.Shndx == uint16(elf.SHN_UNDEF)
}

func (s *Sym64) IsAbs() bool {
	return s.Shndx == uint16(elf.SHN_ABS)
}

func (s *Sym64) IsReserved() bool {
	return s.Shndx >= uint16(elf.SHN_LORESERVE)
}

func (r *Rela64) Sym() uint32 {
	return uint32(r.Info >> 32)
}

func (r *Rela64) SetSym(sym uint32) {
	r.Info = uint64(sym)<<32 | r.Info&0xffffffff
}

func (r *Rela64) Type() elf.R_X86_64 {
	return elf.R_X86_64(r.Info & 0xffffffff)
}

func (r *Rela64) SetType(typ elf.R_X86_64) {
	r.Info = r.Info&0xffffffff00000000 | uint64(typ)&0xffffffff
}

func getName(strTab []byte, offset uint32) string {
	length := bytes.IndexByte(strTab[offset:], 0)
	if length < 0 {
		return string(strTab[offset:])
	}
	return string(strTab[offset : offset+uint32(length)])
}
