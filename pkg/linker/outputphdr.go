package linker

import (
	"debug/elf"

	"github.com/zerd/Bold/pkg/utils"
)

// OutputPhdr is the program header table of an Executable. Its size is
// known up front; the entries are filled in by Update once every segment
// has been placed.
type OutputPhdr struct {
	Chunk
	Exec  *Executable
	Phdrs []ProgramHeader
}

func NewOutputPhdr(exec *Executable) *OutputPhdr {
	return &OutputPhdr{Chunk: Chunk{Name: "phdr"}, Exec: exec}
}

func (o *OutputPhdr) count() int {
	n := len(o.Exec.Segments)
	if o.Exec.Interp != nil {
		n++
	}
	if o.Exec.Dynamic != nil {
		n++
	}
	return n
}

func (o *OutputPhdr) PhysicalSize() uint64 {
	return uint64(o.count()) * uint64(ProgramHeaderSize)
}

func (o *OutputPhdr) LogicalSize() uint64 {
	return o.PhysicalSize()
}

func ToPhdrFlags(flags elf.SectionFlag) elf.ProgFlag {
	ret := elf.PF_R
	if flags&elf.SHF_WRITE != 0 {
		ret |= elf.PF_W
	}
	if flags&elf.SHF_EXECINSTR != 0 {
		ret |= elf.PF_X
	}
	return ret
}

func chunkPhdr(typ elf.ProgType, flags elf.ProgFlag, align uint64, c Chunker) ProgramHeader {
	chunk := c.GetChunk()
	return ProgramHeader{
		Type:     uint32(typ),
		Flags:    uint32(flags),
		Offset:   chunk.FileOffset,
		VAddr:    chunk.VirtAddr,
		PAddr:    chunk.VirtAddr,
		FileSize: c.PhysicalSize(),
		MemSize:  c.LogicalSize(),
		Align:    align,
	}
}

// Update derives the entries: PT_INTERP, one PT_LOAD per segment, then
// PT_DYNAMIC.
func (o *OutputPhdr) Update() error {
	phdrs := make([]ProgramHeader, 0, o.count())

	if interp := o.Exec.Interp; interp != nil {
		if !interp.Placed {
			return &LayoutPreconditionError{What: interp.Name}
		}
		phdrs = append(phdrs, chunkPhdr(elf.PT_INTERP, elf.PF_R, 1, interp))
	}

	for _, s := range o.Exec.Segments {
		if !s.Placed {
			return &LayoutPreconditionError{What: s.Name + " segment"}
		}
		phdrs = append(phdrs, chunkPhdr(elf.PT_LOAD, s.Flags(), s.Align, s))
	}

	if dynamic := o.Exec.Dynamic; dynamic != nil {
		if !dynamic.Placed {
			return &LayoutPreconditionError{What: dynamic.Name}
		}
		phdrs = append(phdrs, chunkPhdr(elf.PT_DYNAMIC, elf.PF_R|elf.PF_W, 8, dynamic))
	}

	o.Phdrs = phdrs
	return nil
}

func (o *OutputPhdr) Encode() []byte {
	utils.Assert(len(o.Phdrs) == o.count())
	buf := make([]byte, 0, o.PhysicalSize())
	for _, phdr := range o.Phdrs {
		buf = utils.Append(buf, phdr)
	}
	return buf
}
