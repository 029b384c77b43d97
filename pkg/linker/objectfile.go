package linker

import (
	"debug/elf"
)

// A Definition is a symbol bound to an offset within a section of one
// object file.
type Definition struct {
	Name  string
	Shndx uint32
	Value uint64
	Size  uint64
	Bind  elf.SymBind
	Type  elf.SymType
}

type ObjectFile struct {
	*InputFile

	IsAlive bool

	// LocalSymbols and GlobalSymbols keep the last definition of each
	// name. Earlier definitions with the same key are moved to Shadowed;
	// deciding whether that is legal is up to the caller.
	LocalSymbols      map[string]Definition
	GlobalSymbols     map[string]Definition
	GlobalDefinitions []Definition
	UndefinedSymbols  []string
	Shadowed          []Definition
}

func NewObjectFile(file *File, isAlive bool) (*ObjectFile, error) {
	f, err := NewInputFile(file)
	if err != nil {
		return nil, err
	}
	if elf.Type(f.Ehdr.Type) != elf.ET_REL {
		return nil, formatErrorf("file type %s, expected ET_REL", elf.Type(f.Ehdr.Type))
	}
	o := &ObjectFile{InputFile: f, IsAlive: isAlive}
	if err := o.Parse(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *ObjectFile) Parse() error {
	if err := o.ResolveNames(); err != nil {
		return err
	}
	return o.FindSymbols()
}

// FindSymbols sorts the entries of every SYMTAB section into local, global
// and undefined symbols. FILE symbols and absolute symbols stay out of the
// maps; absolute globals are still listed in GlobalDefinitions.
func (o *ObjectFile) FindSymbols() error {
	o.LocalSymbols = make(map[string]Definition)
	o.GlobalSymbols = make(map[string]Definition)
	o.GlobalDefinitions = nil
	o.UndefinedSymbols = nil
	o.Shadowed = nil

	for _, s := range o.Sections {
		symtab, ok := s.(*SymtabSection)
		if !ok || symtab.IsDynamic() {
			continue
		}

		for i := range symtab.Symbols {
			sym := &symtab.Symbols[i]
			if sym.Type() == elf.STT_FILE {
				continue
			}
			if sym.IsAbs() {
				if sym.Bind() != elf.STB_LOCAL && sym.Name != "" {
					o.GlobalDefinitions = append(o.GlobalDefinitions, Definition{
						Name:  sym.Name,
						Shndx: uint32(elf.SHN_ABS),
						Value: sym.Value,
						Size:  sym.Size,
						Bind:  sym.Bind(),
						Type:  sym.Type(),
					})
				}
				continue
			}
			if sym.IsUndef() {
				if sym.Name != "" {
					o.UndefinedSymbols = append(o.UndefinedSymbols, sym.Name)
				}
				continue
			}
			if sym.IsReserved() || int(sym.Shndx) >= len(o.Sections) {
				return wrapErrorf(
					formatErrorf("unsupported section index 0x%x", sym.Shndx),
					"symbol %d %q", i, sym.Name)
			}

			def := Definition{
				Name:  sym.Name,
				Shndx: uint32(sym.Shndx),
				Value: sym.Value,
				Size:  sym.Size,
				Bind:  sym.Bind(),
				Type:  sym.Type(),
			}

			if def.Bind == elf.STB_LOCAL {
				if def.Type == elf.STT_SECTION {
					def.Name = o.Sections[def.Shndx].GetChunk().Name
				}
				o.define(o.LocalSymbols, def)
			} else {
				o.GlobalDefinitions = append(o.GlobalDefinitions, def)
				o.define(o.GlobalSymbols, def)
			}
		}
	}
	return nil
}

func (o *ObjectFile) define(m map[string]Definition, def Definition) {
	if prev, ok := m[def.Name]; ok {
		o.Shadowed = append(o.Shadowed, prev)
	}
	m[def.Name] = def
}

// Defines reports whether the object has a global definition of name.
func (o *ObjectFile) Defines(name string) bool {
	for _, def := range o.GlobalDefinitions {
		if def.Name == name {
			return true
		}
	}
	return false
}

func (o *ObjectFile) Name() string {
	return o.File.DisplayName()
}
