package linker

import (
	"debug/elf"
)

type SegmentKind uint8

const (
	TextSegment SegmentKind = iota
	DataSegment
)

func (k SegmentKind) String() string {
	switch k {
	case TextSegment:
		return "text"
	case DataSegment:
		return "data"
	}
	return "unknown"
}

// A Segment groups chunks that are loaded with one mapping. Data segments
// may end with zero-fill members, which take memory but no file bytes.
type Segment struct {
	Chunk
	Kind    SegmentKind
	Align   uint64
	Members []Chunker
	Nobits  []Chunker
}

func NewSegment(kind SegmentKind, align uint64) *Segment {
	return &Segment{Chunk: Chunk{Name: kind.String()}, Kind: kind, Align: align}
}

func (s *Segment) Add(c Chunker) {
	s.Members = append(s.Members, c)
}

func (s *Segment) AddNobits(c Chunker) {
	if s.Kind != DataSegment {
		panic("zero-fill member added to a " + s.Kind.String() + " segment")
	}
	s.Nobits = append(s.Nobits, c)
}

func (s *Segment) PhysicalSize() uint64 {
	var size uint64
	for _, c := range s.Members {
		size += c.PhysicalSize()
	}
	return size
}

func (s *Segment) LogicalSize() uint64 {
	var size uint64
	for _, c := range s.Members {
		size += c.LogicalSize()
	}
	for _, c := range s.Nobits {
		size += c.LogicalSize()
	}
	return size
}

// Layout assigns consecutive addresses and offsets to the members,
// starting at the segment's own. Zero-fill members get file offset 0.
func (s *Segment) Layout() error {
	virtAddr := s.VirtAddr
	fileOffset := s.FileOffset
	for _, c := range s.Members {
		c.GetChunk().place(virtAddr, fileOffset)
		if err := c.Layout(); err != nil {
			return err
		}
		virtAddr += c.LogicalSize()
		fileOffset += c.PhysicalSize()
	}
	for _, c := range s.Nobits {
		c.GetChunk().place(virtAddr, 0)
		if err := c.Layout(); err != nil {
			return err
		}
		virtAddr += c.LogicalSize()
	}
	return nil
}

func (s *Segment) Encode() []byte {
	buf := make([]byte, 0, s.PhysicalSize())
	for _, c := range s.Members {
		buf = append(buf, c.Encode()...)
	}
	return buf
}

func (s *Segment) Flags() elf.ProgFlag {
	if s.Kind == TextSegment {
		return elf.PF_R | elf.PF_X
	}
	return elf.PF_R | elf.PF_W
}

// LayoutSegments places segments one after another from base. Each segment
// starts Align bytes past the end of the previous one in memory and right
// after it in the file.
func LayoutSegments(segments []*Segment, base uint64) error {
	virtAddr := base
	fileOffset := uint64(0)
	for _, s := range segments {
		virtAddr += s.Align
		s.place(virtAddr, fileOffset)
		if err := s.Layout(); err != nil {
			return wrapErrorf(err, "%s segment", s.Kind)
		}
		virtAddr += s.LogicalSize()
		fileOffset += s.PhysicalSize()
	}
	return nil
}
