package linker

import (
	"debug/elf"
	"errors"
	"sort"

	"github.com/pattyshack/gt/parseutil"

	"github.com/zerd/Bold/pkg/utils"
)

// MarkLiveObjects makes archive members live when they define a symbol
// that a live object leaves undefined, until nothing changes.
func MarkLiveObjects(ctx *Context) {
	defined := make(map[string]bool)
	var roots []*ObjectFile
	for _, obj := range ctx.Objs {
		if obj.IsAlive {
			roots = append(roots, obj)
			for _, def := range obj.GlobalDefinitions {
				defined[def.Name] = true
			}
		}
	}

	for len(roots) > 0 {
		obj := roots[0]
		roots = roots[1:]

		for _, name := range obj.UndefinedSymbols {
			if defined[name] {
				continue
			}
			for _, member := range ctx.Objs {
				if member.IsAlive {
					continue
				}
				if !member.Defines(name) {
					continue
				}
				member.IsAlive = true
				roots = append(roots, member)
				for _, def := range member.GlobalDefinitions {
					defined[def.Name] = true
				}
				break
			}
		}
	}
}

// ResolveSymbols merges the global definitions of all live objects into
// the symbol map. A strong definition replaces a weak one, the first weak
// definition wins over later weak ones and two strong definitions are an
// error. Every problem is reported, not just the first, and is also kept
// in ctx.Emitter.
func ResolveSymbols(ctx *Context) error {
	emitter := &parseutil.Emitter{}
	ctx.SymbolMap = make(map[string]*Symbol)

	for _, obj := range ctx.Objs {
		if !obj.IsAlive {
			continue
		}
		for _, def := range obj.GlobalDefinitions {
			sym := GetSymbolByName(ctx, def.Name)
			switch {
			case !sym.IsDefined():
				sym.Define(obj, def)
			case def.Bind == elf.STB_WEAK:
			case sym.Bind == elf.STB_WEAK:
				sym.Define(obj, def)
			default:
				emitter.EmitErrors(&DuplicateSymbolError{
					Name:   def.Name,
					First:  sym.File.Name(),
					Second: obj.Name(),
				})
			}
		}
	}

	reported := make(map[string]bool)
	for _, obj := range ctx.Objs {
		if !obj.IsAlive {
			continue
		}
		for _, name := range obj.UndefinedSymbols {
			if sym, ok := ctx.SymbolMap[name]; ok && sym.IsDefined() {
				continue
			}
			if reported[name] {
				continue
			}
			reported[name] = true
			emitter.EmitErrors(wrapError(&UnresolvedSymbolError{Name: name}, obj.Name()))
		}
	}

	ctx.Emitter.EmitErrors(emitter.Errors()...)
	return errors.Join(emitter.Errors()...)
}

// BuildExecutable distributes the allocated sections of the live objects
// over a text and a data segment.
func BuildExecutable(ctx *Context) *Executable {
	exec := NewExecutable()
	text := NewSegment(TextSegment, ctx.Args.SegmentAlign)
	data := NewSegment(DataSegment, ctx.Args.SegmentAlign)

	text.Add(exec.Ehdr)
	text.Add(exec.Phdr)

	if len(ctx.Args.SharedLibraries) > 0 {
		exec.Interp = NewInterpreter(ctx.Args.Interpreter)
		exec.Dynamic = NewDynamic()
		for _, lib := range ctx.Args.SharedLibraries {
			exec.Dynamic.AddShlib(lib)
		}
		exec.Dynamic.AddDebug()
		text.Add(exec.Interp)
		text.Add(exec.Dynamic.Strtab)
	}

	for _, obj := range ctx.Objs {
		if !obj.IsAlive {
			continue
		}
		for i, s := range obj.Sections {
			flags := elf.SectionFlag(obj.Shdrs[i].Flags)
			if flags&elf.SHF_ALLOC == 0 {
				continue
			}
			switch {
			case s.Type() == elf.SHT_NOBITS:
				data.AddNobits(s)
			case ToPhdrFlags(flags)&elf.PF_W != 0:
				data.Add(s)
			default:
				text.Add(s)
			}
		}
	}

	if exec.Dynamic != nil {
		data.Add(exec.Dynamic)
	}

	exec.AddSegment(text)
	if len(data.Members) > 0 || len(data.Nobits) > 0 {
		exec.AddSegment(data)
	}
	return exec
}

// GlobalAddresses computes the final address of every merged symbol that
// is loaded. Symbols in sections outside the image are left out, so a
// reference to one is unresolved.
func GlobalAddresses(ctx *Context) (SymbolAddresses, error) {
	addrs := make(SymbolAddresses, len(ctx.SymbolMap))
	for name, sym := range ctx.SymbolMap {
		if !sym.IsLoaded() {
			continue
		}
		addr, err := sym.GetAddr()
		if err != nil {
			return nil, wrapErrorf(err, "symbol %q", name)
		}
		addrs[name] = addr
	}
	return addrs, nil
}

// Link runs every phase and returns the executable image. No section byte
// is patched unless every relocation of every object could be computed.
func Link(ctx *Context) ([]byte, error) {
	MarkLiveObjects(ctx)
	if err := ResolveSymbols(ctx); err != nil {
		return nil, err
	}

	exec := BuildExecutable(ctx)
	ctx.Exec = exec
	if err := exec.Layout(ctx.Args.BaseAddress); err != nil {
		return nil, wrapError(err, "layout")
	}

	addrs, err := GlobalAddresses(ctx)
	if err != nil {
		return nil, err
	}
	ctx.Addrs = addrs

	entry, ok := addrs[ctx.Args.Entry]
	if !ok {
		return nil, wrapError(&UnresolvedSymbolError{Name: ctx.Args.Entry}, "entry point")
	}

	var patches []Patch
	for _, obj := range ctx.Objs {
		if !obj.IsAlive {
			continue
		}
		p, err := obj.PlanRelocations(addrs)
		if err != nil {
			return nil, wrapError(err, obj.Name())
		}
		patches = append(patches, p...)
	}
	for _, p := range patches {
		p.Apply()
	}

	exec.SetEntry(entry)
	return exec.Encode()
}

// SortedSymbols returns the loaded symbols ordered by address.
func SortedSymbols(ctx *Context) []*Symbol {
	syms := make([]*Symbol, 0, len(ctx.SymbolMap))
	for _, sym := range ctx.SymbolMap {
		syms = append(syms, sym)
	}
	syms = utils.RemoveIf(syms, func(sym *Symbol) bool {
		return !sym.IsLoaded()
	})
	sort.Slice(syms, func(i, j int) bool {
		ai, bi := ctx.Addrs[syms[i].Name], ctx.Addrs[syms[j].Name]
		if ai != bi {
			return ai < bi
		}
		return syms[i].Name < syms[j].Name
	})
	return syms
}
