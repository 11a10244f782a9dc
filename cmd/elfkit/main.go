// Command elfkit inspects and edits ELF64 little-endian object files.
package main

import (
	"fmt"
	"os"

	"github.com/afaal/elf-kit/elf"
)

func main() {
	if len(os.Args) < 3 {
		usage()
		os.Exit(1)
	}

	op := os.Args[1]
	path := os.Args[2]

	e, err := elf.FromFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	switch op {
	case "dump":
		yamlMode := len(os.Args) > 3 && os.Args[3] == "--yaml"
		if yamlMode {
			if err := dumpYAML(os.Stdout, e); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
		} else {
			dumpTables(os.Stdout, e)
		}
	case "strip-shdrs":
		e.RemoveSectionHeaders()
		if err := writeResult(e, os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "strip-phdr":
		if len(os.Args) < 4 {
			fmt.Fprintf(os.Stderr, "usage: %s strip-phdr <file> <type>...\n", os.Args[0])
			os.Exit(1)
		}
		drop := map[elf.ProgramType]bool{}
		for _, name := range os.Args[3:] {
			if name == "--out" {
				break
			}
			t, ok := parseProgramType(name)
			if !ok {
				fmt.Fprintf(os.Stderr, "error: unknown program header type %q\n", name)
				os.Exit(1)
			}
			drop[t] = true
		}
		e.RemovePhdrsByType(func(t elf.ProgramType) bool { return !drop[t] })
		if err := writeResult(e, os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "shell":
		if err := runShell(e, path); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <dump|strip-shdrs|strip-phdr|shell> <file> [args...]\n", os.Args[0])
}

// writeResult writes the mutated Elf back out. A trailing "--out <path>"
// pair overrides the input path; otherwise the edit is written in place.
func writeResult(e *elf.Elf, args []string) error {
	out := args[2]
	for i, a := range args {
		if a == "--out" && i+1 < len(args) {
			out = args[i+1]
		}
	}
	return e.WriteFile(out)
}

func parseProgramType(name string) (elf.ProgramType, bool) {
	switch name {
	case "null":
		return elf.ProgramNull, true
	case "load":
		return elf.ProgramLoad, true
	case "dynamic":
		return elf.ProgramDynamic, true
	case "interp":
		return elf.ProgramInterp, true
	case "note":
		return elf.ProgramNote, true
	case "shlib":
		return elf.ProgramShlib, true
	case "phdr":
		return elf.ProgramPhdr, true
	case "tls":
		return elf.ProgramTLS, true
	default:
		return 0, false
	}
}
