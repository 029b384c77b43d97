package linker

import (
	"debug/elf"
	"errors"
	"testing"
)

func newTestStrtab(t *testing.T, data string) *StrtabSection {
	t.Helper()
	shdr := SectionHeader{Type: uint32(elf.SHT_STRTAB), Size: uint64(len(data))}
	s, err := NewSection(1, &shdr, []byte(data))
	if err != nil {
		t.Fatal(err)
	}
	return s.(*StrtabSection)
}

func TestStrtabGet(t *testing.T) {
	s := newTestStrtab(t, "\x00main\x00printf\x00.rela.text\x00")
	tests := []struct {
		offset uint32
		want   string
	}{
		{0, ""},
		{1, "main"},
		{3, "in"},
		{6, "printf"},
		{9, "ntf"},
		{12, ""},
		{13, ".rela.text"},
		{18, ".text"},
	}
	for _, tt := range tests {
		got, err := s.Get(tt.offset)
		if err != nil {
			t.Errorf("Get(%d): %v", tt.offset, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Get(%d): got %q, expected %q", tt.offset, got, tt.want)
		}
	}
}

func TestStrtabUnterminated(t *testing.T) {
	s := newTestStrtab(t, "\x00abc")
	got, err := s.Get(2)
	if err != nil {
		t.Fatal(err)
	}
	if got != "bc" {
		t.Errorf("got %q, expected \"bc\"", got)
	}
}

func TestStrtabOutOfRange(t *testing.T) {
	s := newTestStrtab(t, "\x00a\x00")
	_, err := s.Get(3)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Errorf("got %v, expected a FormatError", err)
	}

	empty := newTestStrtab(t, "")
	if got, err := empty.Get(0); err != nil || got != "" {
		t.Errorf("empty table Get(0): got %q, %v", got, err)
	}
}
