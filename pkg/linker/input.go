package linker

import (
	"fmt"
	"path/filepath"

	"github.com/zerd/Bold/pkg/utils"
)

// ReadInputFiles loads every command line input in order. "-lNAME" is
// looked up as libNAME.a in the library paths.
func ReadInputFiles(ctx *Context, remaining []string) error {
	for _, arg := range remaining {
		var file *File
		var err error

		if name, ok := utils.RemovePrefix(arg, "-l"); ok {
			file, err = FindLibrary(ctx, name)
		} else {
			file, err = NewFile(arg)
		}
		if err != nil {
			return err
		}

		if err := ReadFile(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

func FindLibrary(ctx *Context, name string) (*File, error) {
	for _, dir := range ctx.Args.LibraryPaths {
		stem := filepath.Join(dir, "lib"+name+".a")
		f, err := OpenLibrary(stem)
		if err != nil {
			return nil, err
		}
		if f != nil {
			return f, nil
		}
	}
	return nil, fmt.Errorf("library not found: -l%s", name)
}

// ReadFile adds file to the link. Objects named directly are live;
// archive members become live only when they are needed.
func ReadFile(ctx *Context, file *File) error {
	ft := GetFileType(file.Contents)

	switch ft {
	case FileTypeObject:
		obj, err := CreateObjectFile(ctx, file, false)
		if err != nil {
			return err
		}
		ctx.Objs = append(ctx.Objs, obj)
	case FileTypeArchive:
		members, err := ReadArchiveMembers(file)
		if err != nil {
			return err
		}
		for _, child := range members {
			if GetFileType(child.Contents) != FileTypeObject {
				return fmt.Errorf("%s: archive member is not an object file", child.DisplayName())
			}
			obj, err := CreateObjectFile(ctx, child, true)
			if err != nil {
				return err
			}
			ctx.Objs = append(ctx.Objs, obj)
		}
	default:
		return fmt.Errorf("%s: unknown file type", file.DisplayName())
	}
	return nil
}

func CreateObjectFile(ctx *Context, file *File, inLib bool) (*ObjectFile, error) {
	mt := GetMachineTypeFromContents(file.Contents)
	if mt != ctx.Args.Emulation {
		return nil, fmt.Errorf("%s: incompatible machine type %s, expected %s",
			file.DisplayName(), mt, ctx.Args.Emulation)
	}

	obj, err := NewObjectFile(file, !inLib)
	if err != nil {
		return nil, wrapError(err, file.DisplayName())
	}
	return obj, nil
}
