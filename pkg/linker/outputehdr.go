package linker

import (
	"debug/elf"

	"github.com/zerd/Bold/pkg/utils"
)

// OutputEhdr is the file header of the output executable. Entry is set by
// the caller; the program header fields are derived from Phdr on encode.
type OutputEhdr struct {
	Chunk
	Entry uint64
	Phdr  *OutputPhdr
}

func NewOutputEhdr(phdr *OutputPhdr) *OutputEhdr {
	return &OutputEhdr{Chunk: Chunk{Name: "ehdr"}, Phdr: phdr}
}

func (o *OutputEhdr) PhysicalSize() uint64 {
	return uint64(ELFHeaderSize)
}

func (o *OutputEhdr) LogicalSize() uint64 {
	return uint64(ELFHeaderSize)
}

func (o *OutputEhdr) Header() Header64 {
	ehdr := Header64{
		Ident:     NewIdent(),
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_X86_64),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     o.Entry,
		Ehsize:    uint16(ELFHeaderSize),
		Shentsize: uint16(SectionHeaderSize),
	}
	if o.Phdr != nil && len(o.Phdr.Phdrs) > 0 {
		ehdr.Phoff = o.Phdr.FileOffset
		ehdr.Phentsize = uint16(ProgramHeaderSize)
		ehdr.Phnum = uint16(len(o.Phdr.Phdrs))
	}
	return ehdr
}

func (o *OutputEhdr) Encode() []byte {
	return utils.Append(nil, o.Header())
}
