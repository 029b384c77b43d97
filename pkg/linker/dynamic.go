package linker

import (
	"debug/elf"

	"github.com/zerd/Bold/pkg/utils"
)

const DefaultInterpreter = "/lib64/ld-linux-x86-64.so.2"

// StringPool is a string table built for the output.
type StringPool struct {
	Chunk
	Data []byte
}

func NewStringPool(name string) *StringPool {
	return &StringPool{Chunk: Chunk{Name: name}}
}

// Append adds str and returns its offset in the pool.
func (p *StringPool) Append(str string) uint32 {
	offset := uint32(len(p.Data))
	p.Data = append(p.Data, str...)
	p.Data = append(p.Data, 0)
	return offset
}

func (p *StringPool) PhysicalSize() uint64 {
	return uint64(len(p.Data))
}

func (p *StringPool) LogicalSize() uint64 {
	return uint64(len(p.Data))
}

func (p *StringPool) Encode() []byte {
	return p.Data
}

// Dynamic is the DYNAMIC table of the output. DT_STRTAB and DT_STRSZ are
// filled in from Strtab once it has been placed; the table always ends with
// a DT_NULL entry.
type Dynamic struct {
	Chunk
	Entries []Dyn64
	Strtab  *StringPool
}

func NewDynamic() *Dynamic {
	return &Dynamic{
		Chunk:  Chunk{Name: ".dynamic"},
		Strtab: NewStringPool(".dynstr"),
	}
}

func (d *Dynamic) add(tag elf.DynTag, val uint64) {
	d.Entries = append(d.Entries, Dyn64{Tag: uint64(tag), Val: val})
}

func (d *Dynamic) AddShlib(name string) {
	d.add(elf.DT_NEEDED, uint64(d.Strtab.Append(name)))
}

func (d *Dynamic) AddSymtab(virtAddr uint64) {
	d.add(elf.DT_SYMTAB, virtAddr)
}

func (d *Dynamic) AddDebug() {
	d.add(elf.DT_DEBUG, 0)
}

func (d *Dynamic) PhysicalSize() uint64 {
	return uint64(len(d.Entries)+3) * uint64(DynSize)
}

func (d *Dynamic) LogicalSize() uint64 {
	return d.PhysicalSize()
}

func (d *Dynamic) Layout() error {
	if !d.Strtab.Placed {
		return &LayoutPreconditionError{What: d.Strtab.Name}
	}
	return nil
}

func (d *Dynamic) Encode() []byte {
	utils.Assert(d.Strtab.Placed)
	buf := make([]byte, 0, d.PhysicalSize())
	for _, e := range d.Entries {
		buf = utils.Append(buf, e)
	}
	buf = utils.Append(buf, Dyn64{Tag: uint64(elf.DT_STRTAB), Val: d.Strtab.VirtAddr})
	buf = utils.Append(buf, Dyn64{Tag: uint64(elf.DT_STRSZ), Val: d.Strtab.LogicalSize()})
	buf = utils.Append(buf, Dyn64{Tag: uint64(elf.DT_NULL)})
	return buf
}

// DebugAddress returns the address of the DT_DEBUG value, which the dynamic
// loader overwrites at run time.
func (d *Dynamic) DebugAddress() (uint64, bool) {
	if !d.Placed {
		return 0, false
	}
	for i, e := range d.Entries {
		if elf.DynTag(e.Tag) == elf.DT_DEBUG {
			return d.VirtAddr + uint64(i)*uint64(DynSize) + 8, true
		}
	}
	return 0, false
}

// Interpreter is the null-terminated path of the program interpreter.
type Interpreter struct {
	Chunk
	Path string
}

func NewInterpreter(path string) *Interpreter {
	if path == "" {
		path = DefaultInterpreter
	}
	return &Interpreter{Chunk: Chunk{Name: ".interp"}, Path: path}
}

func (i *Interpreter) PhysicalSize() uint64 {
	return uint64(len(i.Path)) + 1
}

func (i *Interpreter) LogicalSize() uint64 {
	return i.PhysicalSize()
}

func (i *Interpreter) Encode() []byte {
	return append([]byte(i.Path), 0)
}
