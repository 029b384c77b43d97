package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/zerd/Bold/pkg/linker"
	"github.com/zerd/Bold/pkg/utils"
)

type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// libraryArgs rewrites -lNAME as -l=NAME so the flag package accepts it.
func libraryArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		if len(arg) > 2 && strings.HasPrefix(arg, "-l") && arg[2] != '=' {
			arg = "-l=" + arg[2:]
		}
		out[i] = arg
	}
	return out
}

// parseArgs applies the options to ctx and returns the inputs in command
// line order. Options may appear between inputs; -lNAME is kept as an input.
func parseArgs(ctx *linker.Context, args []string) ([]string, error) {
	var output, config, entry, interp string
	var libraryPaths, needed stringList
	var inputs []string

	fs := flag.NewFlagSet("bold", flag.ContinueOnError)
	fs.StringVar(&output, "o", "", "Output file")
	fs.StringVar(&config, "config", "", "YAML link configuration")
	fs.StringVar(&entry, "e", "", "Entry point symbol")
	fs.StringVar(&interp, "dynamic-linker", "", "Program interpreter")
	fs.Var(&libraryPaths, "L", "Add a library search directory")
	fs.Var(&needed, "needed", "Record a shared library dependency")
	fs.BoolVar(&ctx.Args.Verbose, "v", false, "Print a link summary")
	fs.Func("l", "Link against libNAME.a", func(name string) error {
		inputs = append(inputs, "-l"+name)
		return nil
	})

	args = libraryArgs(args)
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		inputs = append(inputs, args[0])
		args = args[1:]
	}

	if config != "" {
		if err := linker.LoadConfig(config, &ctx.Args); err != nil {
			return nil, fmt.Errorf("%s: %w", config, err)
		}
	}
	if output != "" {
		ctx.Args.Output = output
	}
	if entry != "" {
		ctx.Args.Entry = entry
	}
	if interp != "" {
		ctx.Args.Interpreter = interp
	}
	ctx.Args.LibraryPaths = append(ctx.Args.LibraryPaths, libraryPaths...)
	ctx.Args.SharedLibraries = append(ctx.Args.SharedLibraries, needed...)

	if len(inputs) == 0 {
		return nil, errors.New("no input files")
	}
	return inputs, nil
}

func printSummary(ctx *linker.Context) {
	for _, s := range ctx.Exec.Segments {
		fmt.Fprintf(os.Stderr, "%-5s vaddr 0x%08x offset 0x%06x filesz 0x%06x memsz 0x%06x\n",
			s.Kind, s.VirtAddr, s.FileOffset, s.PhysicalSize(), s.LogicalSize())
	}
	for _, sym := range linker.SortedSymbols(ctx) {
		fmt.Fprintf(os.Stderr, "0x%08x %s (%s)\n", ctx.Addrs[sym.Name], sym.Name, sym.File.Name())
	}
	fmt.Fprintf(os.Stderr, "entry 0x%x\n", ctx.Exec.Ehdr.Entry)
}

func mainE() error {
	ctx := linker.NewContext()
	remaining, err := parseArgs(ctx, os.Args[1:])
	if err != nil {
		return err
	}

	if err := linker.ReadInputFiles(ctx, remaining); err != nil {
		return err
	}

	image, err := linker.Link(ctx)
	if err != nil {
		return err
	}
	if ctx.Args.Verbose {
		printSummary(ctx)
	}
	return linker.WriteFile(ctx.Args.Output, image)
}

func main() {
	if err := mainE(); err != nil {
		utils.Fatal(err)
	}
}
