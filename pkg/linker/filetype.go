package linker

import (
	"bytes"
	"debug/elf"
)

type FileType uint8

const (
	FileTypeUnknown FileType = iota
	FileTypeEmpty
	FileTypeObject
	FileTypeArchive
)

var archiveMagic = []byte("!<arch>\n")

func GetFileType(contents []byte) FileType {
	if len(contents) == 0 {
		return FileTypeEmpty
	}

	if CheckMagic(contents) && len(contents) >= 18 {
		if elf.Type(uint16(contents[16])|uint16(contents[17])<<8) == elf.ET_REL {
			return FileTypeObject
		}
		return FileTypeUnknown
	}

	if bytes.HasPrefix(contents, archiveMagic) {
		return FileTypeArchive
	}

	return FileTypeUnknown
}

func (t FileType) String() string {
	switch t {
	case FileTypeEmpty:
		return "empty"
	case FileTypeObject:
		return "object"
	case FileTypeArchive:
		return "archive"
	}
	return "unknown"
}
