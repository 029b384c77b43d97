package linker

import (
	"bytes"
)

// StrtabSection is a pool of null-terminated strings addressed by byte
// offset. Names may start anywhere, including inside another name.
type StrtabSection struct {
	BaseSection
	strs map[uint32]string
}

func newStrtabSection(base BaseSection) *StrtabSection {
	s := &StrtabSection{BaseSection: base, strs: make(map[uint32]string)}
	offset := 0
	for offset < len(s.Data) {
		end := bytes.IndexByte(s.Data[offset:], 0)
		if end < 0 {
			end = len(s.Data) - offset
		}
		s.strs[uint32(offset)] = string(s.Data[offset : offset+end])
		offset += end + 1
	}
	return s
}

// Get returns the string starting at offset, up to the first null byte.
func (s *StrtabSection) Get(offset uint32) (string, error) {
	if str, ok := s.strs[offset]; ok {
		return str, nil
	}
	if int(offset) >= len(s.Data) {
		if offset == 0 {
			return "", nil
		}
		return "", formatErrorf("string offset %d out of range (size %d)", offset, len(s.Data))
	}
	str := getName(s.Data, offset)
	s.strs[offset] = str
	return str, nil
}
