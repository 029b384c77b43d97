package linker

import (
	"debug/elf"
	"testing"

	"github.com/zerd/Bold/pkg/utils"
)

type fixtureSection struct {
	name  string
	typ   elf.SectionType
	flags elf.SectionFlag
	data  []byte
	size  uint64
	align uint64
}

type fixtureSymbol struct {
	name  string
	bind  elf.SymBind
	typ   elf.SymType
	shndx uint16
	value uint64
	size  uint64
}

type fixtureReloc struct {
	offset uint64
	typ    elf.R_X86_64
	sym    uint32
	addend int64
}

// A fixture describes a relocatable object. Section indices start at 1 in
// the order given; symbol indices start at 1 in the order given. Relocation
// sections, .symtab, .strtab and .shstrtab follow the given sections.
type fixture struct {
	sections []fixtureSection
	symbols  []fixtureSymbol
	relocs   map[string][]fixtureReloc
}

func (fx *fixture) inputFile(t *testing.T) *InputFile {
	t.Helper()

	shstrtab := NewStringPool(".shstrtab")
	shstrtab.Append("")
	strtab := NewStringPool(".strtab")
	strtab.Append("")

	shdrs := []SectionHeader{{}}
	bodies := [][]byte{nil}
	addSection := func(shdr SectionHeader, name string, data []byte) {
		shdr.Name = shstrtab.Append(name)
		if shdr.Addralign == 0 {
			shdr.Addralign = 1
		}
		shdrs = append(shdrs, shdr)
		bodies = append(bodies, data)
	}

	for _, s := range fx.sections {
		addSection(SectionHeader{
			Type:      uint32(s.typ),
			Flags:     uint64(s.flags),
			Size:      s.size,
			Addralign: s.align,
		}, s.name, s.data)
	}

	var targets []int
	for i, s := range fx.sections {
		if len(fx.relocs[s.name]) > 0 {
			targets = append(targets, i)
		}
	}
	symtabIdx := uint32(len(fx.sections) + len(targets) + 1)

	for _, i := range targets {
		var data []byte
		for _, r := range fx.relocs[fx.sections[i].name] {
			rela := Rela64{Offset: r.offset, Addend: r.addend}
			rela.SetSym(r.sym)
			rela.SetType(r.typ)
			data = utils.Append(data, rela)
		}
		addSection(SectionHeader{
			Type:      uint32(elf.SHT_RELA),
			Flags:     uint64(elf.SHF_INFO_LINK),
			Link:      symtabIdx,
			Info:      uint32(i + 1),
			Addralign: 8,
			Entsize:   uint64(RelaSize),
		}, ".rela"+fx.sections[i].name, data)
	}

	syms := utils.Append(nil, Sym64{})
	firstGlobal := uint32(1)
	for i, s := range fx.symbols {
		sym := Sym64{Shndx: s.shndx, Value: s.value, Size: s.size}
		if s.name != "" {
			sym.Name = strtab.Append(s.name)
		}
		sym.SetBind(s.bind)
		sym.SetType(s.typ)
		if s.bind == elf.STB_LOCAL {
			firstGlobal = uint32(i + 2)
		}
		syms = utils.Append(syms, sym)
	}
	addSection(SectionHeader{
		Type:      uint32(elf.SHT_SYMTAB),
		Link:      symtabIdx + 1,
		Info:      firstGlobal,
		Addralign: 8,
		Entsize:   uint64(SymbolSize),
	}, ".symtab", syms)
	addSection(SectionHeader{Type: uint32(elf.SHT_STRTAB)}, ".strtab", strtab.Data)
	addSection(SectionHeader{Type: uint32(elf.SHT_STRTAB)}, ".shstrtab", nil)
	bodies[len(bodies)-1] = shstrtab.Data

	f := &InputFile{
		Ehdr: Header64{
			Ident:     NewIdent(),
			Type:      uint16(elf.ET_REL),
			Machine:   uint16(elf.EM_X86_64),
			Version:   uint32(elf.EV_CURRENT),
			Ehsize:    uint16(ELFHeaderSize),
			Shentsize: uint16(SectionHeaderSize),
			Shstrndx:  uint16(symtabIdx + 2),
		},
		Shdrs:          shdrs,
		SectionsByName: make(map[string]uint32),
	}
	for i := range f.Shdrs {
		s, err := NewSection(uint32(i), &f.Shdrs[i], bodies[i])
		if err != nil {
			t.Fatalf("NewSection %d: %v", i, err)
		}
		f.Sections = append(f.Sections, s)
	}
	return f
}

func (fx *fixture) bytes(t *testing.T) []byte {
	t.Helper()
	return fx.inputFile(t).Encode()
}

func (fx *fixture) object(t *testing.T, name string) *ObjectFile {
	t.Helper()
	obj, err := NewObjectFile(&File{Name: name, Contents: fx.bytes(t)}, true)
	if err != nil {
		t.Fatalf("NewObjectFile %s: %v", name, err)
	}
	return obj
}

func textSection(data []byte) fixtureSection {
	return fixtureSection{
		name:  ".text",
		typ:   elf.SHT_PROGBITS,
		flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR,
		data:  data,
		align: 16,
	}
}

func dataSection(data []byte) fixtureSection {
	return fixtureSection{
		name:  ".data",
		typ:   elf.SHT_PROGBITS,
		flags: elf.SHF_ALLOC | elf.SHF_WRITE,
		data:  data,
		align: 8,
	}
}

func bssSection(size uint64) fixtureSection {
	return fixtureSection{
		name:  ".bss",
		typ:   elf.SHT_NOBITS,
		flags: elf.SHF_ALLOC | elf.SHF_WRITE,
		size:  size,
		align: 8,
	}
}
