package linker

import (
	"debug/elf"
	"encoding/binary"
	"math"
)

// SymbolAddresses maps global symbol names to their final addresses. It is
// filled by the link driver after layout and only read during relocation.
type SymbolAddresses map[string]uint64

// A Patch replaces Value bytes at Offset of a section's contents.
type Patch struct {
	Data   []byte
	Offset uint64
	Value  []byte
}

func (p Patch) Apply() {
	copy(p.Data[p.Offset:p.Offset+uint64(len(p.Value))], p.Value)
}

// Relocate computes the field for relocation typ, where s is the symbol
// address, a the addend and p the address of the field itself.
func Relocate(typ elf.R_X86_64, s uint64, a int64, p uint64) ([]byte, error) {
	abs := int64(s) + a
	pcrel := abs - int64(p)
	le := binary.LittleEndian

	overflow := func(v int64) error {
		return &RelocationOverflowError{Type: typ, Value: v}
	}

	switch typ {
	case elf.R_X86_64_64:
		return le.AppendUint64(nil, uint64(abs)), nil
	case elf.R_X86_64_32:
		if abs < 0 || abs > math.MaxUint32 {
			return nil, overflow(abs)
		}
		return le.AppendUint32(nil, uint32(abs)), nil
	case elf.R_X86_64_16:
		if abs < 0 || abs > math.MaxUint16 {
			return nil, overflow(abs)
		}
		return le.AppendUint16(nil, uint16(abs)), nil
	case elf.R_X86_64_8:
		if abs < math.MinInt8 || abs > math.MaxInt8 {
			return nil, overflow(abs)
		}
		return []byte{byte(int8(abs))}, nil
	case elf.R_X86_64_PC32:
		if pcrel < math.MinInt32 || pcrel > math.MaxInt32 {
			return nil, overflow(pcrel)
		}
		return le.AppendUint32(nil, uint32(int32(pcrel))), nil
	case elf.R_X86_64_PC16:
		if pcrel < math.MinInt16 || pcrel > math.MaxInt16 {
			return nil, overflow(pcrel)
		}
		return le.AppendUint16(nil, uint16(int16(pcrel))), nil
	case elf.R_X86_64_PC8:
		if pcrel < math.MinInt8 || pcrel > math.MaxInt8 {
			return nil, overflow(pcrel)
		}
		return []byte{byte(int8(pcrel))}, nil
	default:
		return nil, &UnsupportedRelocationError{Type: typ}
	}
}

// PlanRelocations computes every relocation of the object without touching
// any section bytes. Sections must have been laid out. Relocations against
// non-allocated sections (debug info) are skipped.
func (o *ObjectFile) PlanRelocations(addrs SymbolAddresses) ([]Patch, error) {
	var patches []Patch

	for i, s := range o.Sections {
		rs, ok := s.(*RelocationSection)
		if !ok {
			continue
		}
		if elf.SectionFlag(o.Shdrs[rs.Target].Flags)&elf.SHF_ALLOC == 0 {
			continue
		}

		target := o.Sections[rs.Target]
		if !target.GetChunk().Placed {
			return nil, wrapErrorSection(
				&LayoutPreconditionError{What: "section " + target.GetChunk().Name}, i, s)
		}
		data := target.Contents()
		base := target.GetChunk().VirtAddr

		for j := range rs.Relocs {
			r := &rs.Relocs[j]
			symAddr, err := o.symbolAddr(rs.Symbol(o.InputFile, j), addrs)
			if err != nil {
				return nil, wrapErrorSection(wrapErrorf(err, "relocation %d", j), i, s)
			}

			value, err := Relocate(r.Type(), symAddr, r.Addend, base+r.Offset)
			if err != nil {
				return nil, wrapErrorSection(wrapErrorf(err, "relocation %d", j), i, s)
			}
			end := r.Offset + uint64(len(value))
			if end < r.Offset || end > uint64(len(data)) {
				return nil, wrapErrorSection(
					formatErrorf("relocation %d at 0x%x is outside %q (size %d)",
						j, r.Offset, target.GetChunk().Name, len(data)), i, s)
			}

			patches = append(patches, Patch{Data: data, Offset: r.Offset, Value: value})
		}
	}

	return patches, nil
}

func (o *ObjectFile) symbolAddr(sym *SymbolEntry, addrs SymbolAddresses) (uint64, error) {
	switch {
	case sym.IsUndef():
		addr, ok := addrs[sym.Name]
		if !ok {
			return 0, &UnresolvedSymbolError{Name: sym.Name}
		}
		return addr, nil
	case sym.IsAbs():
		return sym.Value, nil
	case sym.IsReserved() || int(sym.Shndx) >= len(o.Sections):
		return 0, formatErrorf("symbol %q has unsupported section index 0x%x", sym.Name, sym.Shndx)
	}

	source := o.Sections[sym.Shndx]
	if !source.GetChunk().Placed {
		return 0, &LayoutPreconditionError{What: "section " + source.GetChunk().Name}
	}
	return source.GetChunk().VirtAddr + sym.Value, nil
}

// ApplyRelocations patches the object's sections in place. Either every
// relocation is applied or, on error, none is.
func (o *ObjectFile) ApplyRelocations(addrs SymbolAddresses) error {
	patches, err := o.PlanRelocations(addrs)
	if err != nil {
		return wrapError(err, o.Name())
	}
	for _, p := range patches {
		p.Apply()
	}
	return nil
}
