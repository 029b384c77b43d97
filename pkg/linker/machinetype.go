package linker

import (
	"debug/elf"
)

type MachineType uint8

const (
	MachineTypeNone MachineType = iota
	MachineTypeX86_64
)

func GetMachineTypeFromContents(contents []byte) MachineType {
	if GetFileType(contents) != FileTypeObject || len(contents) < 20 {
		return MachineTypeNone
	}

	machine := elf.Machine(uint16(contents[18]) | uint16(contents[19])<<8)
	if machine == elf.EM_X86_64 && elf.Class(contents[elf.EI_CLASS]) == elf.ELFCLASS64 {
		return MachineTypeX86_64
	}
	return MachineTypeNone
}

func (m MachineType) String() string {
	switch m {
	case MachineTypeX86_64:
		return "x86_64"
	}
	return "none"
}
