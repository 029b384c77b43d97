package linker

import (
	"bytes"
	"strconv"
	"strings"
	"unsafe"

	"github.com/zerd/Bold/pkg/utils"
)

// ArHdr is the fixed 60-byte header preceding every archive member.
type ArHdr struct {
	Name [16]byte
	Date [12]byte
	Uid  [6]byte
	Gid  [6]byte
	Mode [8]byte
	Size [10]byte
	Fmag [2]byte
}

const ArHdrSize = unsafe.Sizeof(ArHdr{})

func (a *ArHdr) HasPrefix(s string) bool {
	return strings.HasPrefix(string(a.Name[:]), s)
}

func (a *ArHdr) IsStrtab() bool {
	return a.HasPrefix("// ")
}

func (a *ArHdr) IsSymtab() bool {
	return a.HasPrefix("/ ") || a.HasPrefix("/SYM64/ ")
}

func (a *ArHdr) GetSize() (int, error) {
	size, err := strconv.Atoi(strings.TrimSpace(string(a.Size[:])))
	if err != nil || size < 0 {
		return 0, formatErrorf("bad archive member size %q", a.Size[:])
	}
	return size, nil
}

// ReadName returns the member name. Long names ("/123") live in the
// archive string table and end with "/\n".
func (a *ArHdr) ReadName(strTab []byte) (string, error) {
	if a.HasPrefix("/") {
		start, err := strconv.Atoi(strings.TrimSpace(string(a.Name[1:])))
		if err != nil || start < 0 || start >= len(strTab) {
			return "", formatErrorf("bad long member name %q", a.Name[:])
		}
		end := bytes.Index(strTab[start:], []byte("/\n"))
		if end < 0 {
			return "", formatErrorf("unterminated long member name at %d", start)
		}
		return string(strTab[start : start+end]), nil
	}

	end := bytes.IndexByte(a.Name[:], '/')
	if end < 0 {
		return strings.TrimRight(string(a.Name[:]), " "), nil
	}
	return string(a.Name[:end]), nil
}

// ReadArchiveMembers splits an ar archive into its member files. The
// symbol index and the long name table are consumed, not returned.
func ReadArchiveMembers(file *File) ([]*File, error) {
	utils.Assert(GetFileType(file.Contents) == FileTypeArchive)

	pos := len(archiveMagic)
	var strTab []byte
	var files []*File

	for len(file.Contents)-pos > 1 {
		// Members are 2-byte aligned.
		if pos%2 == 1 {
			pos++
		}
		if pos+int(ArHdrSize) > len(file.Contents) {
			return nil, wrapError(formatErrorf("truncated member header at %d", pos), file.Name)
		}

		hdr, err := utils.Read[ArHdr](file.Contents[pos:])
		if err != nil {
			return nil, wrapError(&FormatError{Msg: err.Error()}, file.Name)
		}
		size, err := hdr.GetSize()
		if err != nil {
			return nil, wrapError(err, file.Name)
		}
		dataStart := pos + int(ArHdrSize)
		dataEnd := dataStart + size
		if dataEnd > len(file.Contents) {
			return nil, wrapError(
				formatErrorf("member at %d overruns the archive (size %d)", pos, size), file.Name)
		}
		pos = dataEnd
		contents := file.Contents[dataStart:dataEnd]

		if hdr.IsSymtab() {
			continue
		} else if hdr.IsStrtab() {
			strTab = contents
			continue
		}

		name, err := hdr.ReadName(strTab)
		if err != nil {
			return nil, wrapError(err, file.Name)
		}
		files = append(files, &File{
			Name:     name,
			Contents: contents,
			Parent:   file,
		})
	}

	return files, nil
}
