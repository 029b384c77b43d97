package linker

import (
	"debug/elf"
	"fmt"
)

// A FormatError reports truncated or malformed input.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string {
	return "malformed ELF: " + e.Msg
}

func formatErrorf(f string, a ...interface{}) error {
	return &FormatError{Msg: fmt.Sprintf(f, a...)}
}

// An UnsupportedRelocationError reports a relocation type this linker cannot
// apply.
type UnsupportedRelocationError struct {
	Type elf.R_X86_64
}

func (e *UnsupportedRelocationError) Error() string {
	return fmt.Sprintf("unsupported relocation type %s", e.Type)
}

// An UnresolvedSymbolError reports an undefined reference that no input
// defines.
type UnresolvedSymbolError struct {
	Name string
}

func (e *UnresolvedSymbolError) Error() string {
	return fmt.Sprintf("undefined symbol %q", e.Name)
}

// A LayoutPreconditionError reports an address requested before the chunk
// holding it was laid out.
type LayoutPreconditionError struct {
	What string
}

func (e *LayoutPreconditionError) Error() string {
	return fmt.Sprintf("address of %s requested before layout", e.What)
}

// A RelocationOverflowError reports a relocated value that does not fit its
// field.
type RelocationOverflowError struct {
	Type  elf.R_X86_64
	Value int64
}

func (e *RelocationOverflowError) Error() string {
	return fmt.Sprintf("relocation %s: value 0x%x does not fit", e.Type, e.Value)
}

// A DuplicateSymbolError reports two strong definitions of one global symbol.
type DuplicateSymbolError struct {
	Name   string
	First  string
	Second string
}

func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("duplicate symbol %q: defined in %s and %s", e.Name, e.First, e.Second)
}

// A wrappedError is an error wrapped with a location for context.
type wrappedError struct {
	location string
	inner    error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %v", e.location, e.inner)
}

func (e *wrappedError) Unwrap() error {
	return e.inner
}

// wrapError returns an error wrapped with a location for context.
func wrapError(e error, loc string) error {
	if we, ok := e.(*wrappedError); ok {
		return &wrappedError{
			location: loc + ": " + we.location,
			inner:    we.inner,
		}
	}
	return &wrappedError{
		location: loc,
		inner:    e,
	}
}

func wrapErrorf(e error, f string, a ...interface{}) error {
	return wrapError(e, fmt.Sprintf(f, a...))
}

func wrapErrorSection(e error, i int, s Section) error {
	return wrapErrorf(e, "section %d %q", i, s.GetChunk().Name)
}
