package linker

import (
	"errors"
	"io/fs"
	"os"
)

type File struct {
	Name     string
	Contents []byte
	Parent   *File
}

func NewFile(filename string) (*File, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return &File{Name: filename, Contents: contents}, nil
}

// OpenLibrary returns nil without an error when filepath does not exist.
func OpenLibrary(filepath string) (*File, error) {
	f, err := NewFile(filepath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// DisplayName names the file including the archive it was extracted from.
func (f *File) DisplayName() string {
	if f.Parent != nil {
		return f.Parent.Name + "(" + f.Name + ")"
	}
	return f.Name
}

// WriteFile writes an executable image.
func WriteFile(filename string, contents []byte) error {
	return os.WriteFile(filename, contents, 0755)
}
