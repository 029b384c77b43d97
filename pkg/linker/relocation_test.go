package linker

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"errors"
	"testing"
)

func TestRelocate(t *testing.T) {
	tests := []struct {
		typ  elf.R_X86_64
		s    uint64
		a    int64
		p    uint64
		want []byte
	}{
		{elf.R_X86_64_64, 0x401000, 8, 0, []byte{0x08, 0x10, 0x40, 0, 0, 0, 0, 0}},
		{elf.R_X86_64_64, 0x10, -0x20, 0, []byte{0xf0, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{elf.R_X86_64_32, 0x401000, 4, 0, []byte{0x04, 0x10, 0x40, 0}},
		{elf.R_X86_64_16, 0x1234, 1, 0, []byte{0x35, 0x12}},
		{elf.R_X86_64_8, 0x70, -0x80, 0, []byte{0xf0}},
		{elf.R_X86_64_PC32, 0x2000, 0, 0x1010, []byte{0xf0, 0x0f, 0, 0}},
		{elf.R_X86_64_PC32, 0x1000, -4, 0x1010, []byte{0xec, 0xff, 0xff, 0xff}},
		{elf.R_X86_64_PC16, 0x1000, 0, 0x1100, []byte{0x00, 0xff}},
		{elf.R_X86_64_PC8, 0x1010, 0, 0x1000, []byte{0x10}},
	}
	for _, tt := range tests {
		got, err := Relocate(tt.typ, tt.s, tt.a, tt.p)
		if err != nil {
			t.Errorf("%s S=0x%x A=%d P=0x%x: %v", tt.typ, tt.s, tt.a, tt.p, err)
			continue
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("%s S=0x%x A=%d P=0x%x: got %x, expected %x", tt.typ, tt.s, tt.a, tt.p, got, tt.want)
		}
	}
}

func TestRelocateOverflow(t *testing.T) {
	tests := []struct {
		typ elf.R_X86_64
		s   uint64
		p   uint64
	}{
		{elf.R_X86_64_32, 0x100000000, 0},
		{elf.R_X86_64_16, 0x10000, 0},
		{elf.R_X86_64_8, 0x80, 0},
		{elf.R_X86_64_PC32, 0x100001000, 0x1000},
		{elf.R_X86_64_PC16, 0x9000, 0x1000},
		{elf.R_X86_64_PC8, 0x1000, 0x1081},
	}
	for _, tt := range tests {
		_, err := Relocate(tt.typ, tt.s, 0, tt.p)
		var oe *RelocationOverflowError
		if !errors.As(err, &oe) {
			t.Errorf("%s S=0x%x P=0x%x: got %v, expected an overflow", tt.typ, tt.s, tt.p, err)
		}
	}
}

func TestRelocateUnsupported(t *testing.T) {
	_, err := Relocate(elf.R_X86_64_GOTPCREL, 0x1000, 0, 0)
	var ue *UnsupportedRelocationError
	if !errors.As(err, &ue) || ue.Type != elf.R_X86_64_GOTPCREL {
		t.Errorf("got %v, expected an UnsupportedRelocationError", err)
	}
}

func relocFixture(relocs ...fixtureReloc) *fixture {
	return &fixture{
		sections: []fixtureSection{
			textSection(make([]byte, 0x40)),
			dataSection(make([]byte, 0x10)),
		},
		symbols: []fixtureSymbol{
			{name: "", bind: elf.STB_LOCAL, typ: elf.STT_SECTION, shndx: 2},
			{name: "target", bind: elf.STB_GLOBAL, typ: elf.STT_NOTYPE},
			{name: "limit", bind: elf.STB_GLOBAL, typ: elf.STT_NOTYPE, shndx: uint16(elf.SHN_ABS), value: 0x77},
		},
		relocs: map[string][]fixtureReloc{".text": relocs},
	}
}

const (
	symData   = 1
	symTarget = 2
	symLimit  = 3
)

func TestApplyAbsolute64(t *testing.T) {
	obj := relocFixture(fixtureReloc{offset: 0x20, typ: elf.R_X86_64_64, sym: symTarget, addend: 8}).object(t, "a.o")
	obj.Sections[1].GetChunk().place(0x400000, 0)

	if err := obj.ApplyRelocations(SymbolAddresses{"target": 0x401000}); err != nil {
		t.Fatal(err)
	}
	text := obj.Sections[1].Contents()
	if got := binary.LittleEndian.Uint64(text[0x20:]); got != 0x401008 {
		t.Errorf("got 0x%x, expected 0x401008", got)
	}
	if !bytes.Equal(text[:0x20], make([]byte, 0x20)) || !bytes.Equal(text[0x28:], make([]byte, 0x18)) {
		t.Error("bytes outside the field changed")
	}
}

func TestApplyPCRelative32(t *testing.T) {
	obj := relocFixture(fixtureReloc{offset: 0x10, typ: elf.R_X86_64_PC32, sym: symTarget}).object(t, "a.o")
	obj.Sections[1].GetChunk().place(0x1000, 0)

	if err := obj.ApplyRelocations(SymbolAddresses{"target": 0x2000}); err != nil {
		t.Fatal(err)
	}
	if got := int32(binary.LittleEndian.Uint32(obj.Sections[1].Contents()[0x10:])); got != 0xff0 {
		t.Errorf("got 0x%x, expected 0xff0", got)
	}
}

func TestApplyLocalAndAbsolute(t *testing.T) {
	obj := relocFixture(
		fixtureReloc{offset: 0, typ: elf.R_X86_64_32, sym: symData, addend: 4},
		fixtureReloc{offset: 8, typ: elf.R_X86_64_8, sym: symLimit, addend: 1},
	).object(t, "a.o")
	obj.Sections[1].GetChunk().place(0x401000, 0)
	obj.Sections[2].GetChunk().place(0x402040, 0x1040)

	if err := obj.ApplyRelocations(SymbolAddresses{}); err != nil {
		t.Fatal(err)
	}
	text := obj.Sections[1].Contents()
	if got := binary.LittleEndian.Uint32(text); got != 0x402044 {
		t.Errorf("section-relative: got 0x%x, expected 0x402044", got)
	}
	if text[8] != 0x78 {
		t.Errorf("absolute: got 0x%x, expected 0x78", text[8])
	}
}

func TestApplyIsAtomic(t *testing.T) {
	tests := []struct {
		name   string
		relocs []fixtureReloc
		addrs  SymbolAddresses
		check  func(err error) bool
	}{
		{
			"unsupported type",
			[]fixtureReloc{
				{offset: 0, typ: elf.R_X86_64_64, sym: symTarget},
				{offset: 8, typ: elf.R_X86_64_GOTPCREL, sym: symTarget},
			},
			SymbolAddresses{"target": 0x401000},
			func(err error) bool { var e *UnsupportedRelocationError; return errors.As(err, &e) },
		},
		{
			"unresolved symbol",
			[]fixtureReloc{
				{offset: 0, typ: elf.R_X86_64_64, sym: symData},
				{offset: 8, typ: elf.R_X86_64_64, sym: symTarget},
			},
			SymbolAddresses{},
			func(err error) bool {
				var e *UnresolvedSymbolError
				return errors.As(err, &e) && e.Name == "target"
			},
		},
		{
			"overflow",
			[]fixtureReloc{
				{offset: 0, typ: elf.R_X86_64_64, sym: symTarget},
				{offset: 8, typ: elf.R_X86_64_32, sym: symTarget},
			},
			SymbolAddresses{"target": 0x1_0000_0000},
			func(err error) bool { var e *RelocationOverflowError; return errors.As(err, &e) },
		},
		{
			"field outside section",
			[]fixtureReloc{
				{offset: 0, typ: elf.R_X86_64_64, sym: symTarget},
				{offset: 0x3c, typ: elf.R_X86_64_64, sym: symTarget},
			},
			SymbolAddresses{"target": 0x401000},
			func(err error) bool { var e *FormatError; return errors.As(err, &e) },
		},
	}
	for _, tt := range tests {
		obj := relocFixture(tt.relocs...).object(t, "a.o")
		obj.Sections[1].GetChunk().place(0x401000, 0)
		obj.Sections[2].GetChunk().place(0x402000, 0x1000)

		err := obj.ApplyRelocations(tt.addrs)
		if !tt.check(err) {
			t.Errorf("%s: got error %v", tt.name, err)
		}
		if !bytes.Equal(obj.Sections[1].Contents(), make([]byte, 0x40)) {
			t.Errorf("%s: section bytes changed", tt.name)
		}
	}
}

func TestApplyBeforeLayout(t *testing.T) {
	obj := relocFixture(fixtureReloc{offset: 0, typ: elf.R_X86_64_32, sym: symData}).object(t, "a.o")
	obj.Sections[1].GetChunk().place(0x401000, 0)

	err := obj.ApplyRelocations(SymbolAddresses{})
	var le *LayoutPreconditionError
	if !errors.As(err, &le) {
		t.Errorf("got %v, expected a LayoutPreconditionError", err)
	}
}

func TestApplySkipsNonAllocTargets(t *testing.T) {
	fx := &fixture{
		sections: []fixtureSection{
			{name: ".debug_info", typ: elf.SHT_PROGBITS, data: make([]byte, 8)},
		},
		symbols: []fixtureSymbol{{name: "target", bind: elf.STB_GLOBAL}},
		relocs: map[string][]fixtureReloc{
			".debug_info": {{offset: 0, typ: elf.R_X86_64_DTPOFF32, sym: 1}},
		},
	}
	obj := fx.object(t, "a.o")
	if err := obj.ApplyRelocations(SymbolAddresses{}); err != nil {
		t.Errorf("got %v, expected no error", err)
	}
}
