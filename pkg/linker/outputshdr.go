package linker

import "github.com/zerd/Bold/pkg/utils"

// OutputShdr is a section header table.
type OutputShdr struct {
	Chunk
	Shdrs []SectionHeader
}

func NewOutputShdr() *OutputShdr {
	return &OutputShdr{Chunk: Chunk{Name: "shdr"}}
}

func (o *OutputShdr) PhysicalSize() uint64 {
	return uint64(len(o.Shdrs)) * uint64(SectionHeaderSize)
}

func (o *OutputShdr) LogicalSize() uint64 {
	return o.PhysicalSize()
}

func (o *OutputShdr) Encode() []byte {
	buf := make([]byte, 0, o.PhysicalSize())
	for _, shdr := range o.Shdrs {
		buf = utils.Append(buf, shdr)
	}
	return buf
}
