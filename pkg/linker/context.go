package linker

import (
	"github.com/pattyshack/gt/parseutil"
)

type ContextArgs struct {
	Output          string      `yaml:"output"`
	Emulation       MachineType `yaml:"-"`
	LibraryPaths    []string    `yaml:"library_paths"`
	Entry           string      `yaml:"entry"`
	BaseAddress     uint64      `yaml:"base_address"`
	SegmentAlign    uint64      `yaml:"segment_align"`
	Interpreter     string      `yaml:"interpreter"`
	SharedLibraries []string    `yaml:"shared_libraries"`
	Verbose         bool        `yaml:"-"`
}

type Context struct {
	Args      ContextArgs
	Objs      []*ObjectFile
	SymbolMap map[string]*Symbol

	// Emitter collects link diagnostics so that all of them are reported,
	// not just the first.
	Emitter *parseutil.Emitter

	Exec  *Executable
	Addrs SymbolAddresses
}

func NewContext() *Context {
	return &Context{
		Args: ContextArgs{
			Output:       "a.out",
			Emulation:    MachineTypeX86_64,
			Entry:        "_start",
			BaseAddress:  ImageBase,
			SegmentAlign: PageSize,
		},
		SymbolMap: make(map[string]*Symbol),
		Emitter:   &parseutil.Emitter{},
	}
}
