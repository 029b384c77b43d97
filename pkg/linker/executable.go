package linker

// An Executable is the output document: an ordered list of segments laid
// out from a base address. It carries no section header table.
type Executable struct {
	Ehdr     *OutputEhdr
	Phdr     *OutputPhdr
	Segments []*Segment

	// Interp and Dynamic are set when the image needs the dynamic loader.
	Interp  *Interpreter
	Dynamic *Dynamic

	Base    uint64
	laidOut bool
}

func NewExecutable() *Executable {
	e := &Executable{}
	e.Phdr = NewOutputPhdr(e)
	e.Ehdr = NewOutputEhdr(e.Phdr)
	return e
}

func (e *Executable) AddSegment(s *Segment) {
	e.Segments = append(e.Segments, s)
}

// Layout assigns addresses to every segment and member, then derives the
// program headers.
func (e *Executable) Layout(base uint64) error {
	e.Base = base
	if err := LayoutSegments(e.Segments, base); err != nil {
		return err
	}
	if err := e.Phdr.Update(); err != nil {
		return wrapError(err, "program headers")
	}
	e.laidOut = true
	return nil
}

func (e *Executable) SetEntry(addr uint64) {
	e.Ehdr.Entry = addr
}

func (e *Executable) PhysicalSize() uint64 {
	var size uint64
	for _, s := range e.Segments {
		size += s.PhysicalSize()
	}
	return size
}

// Encode concatenates the segments' bytes in order.
func (e *Executable) Encode() ([]byte, error) {
	if !e.laidOut {
		return nil, &LayoutPreconditionError{What: "executable image"}
	}
	buf := make([]byte, 0, e.PhysicalSize())
	for _, s := range e.Segments {
		buf = append(buf, s.Encode()...)
	}
	return buf, nil
}
