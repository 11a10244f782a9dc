package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/afaal/elf-kit/elf"
)

// errExitShell signals the shell's exit/quit command.
var errExitShell = errors.New("exit shell")

// runShell drives an interactive read-eval-print loop over an already
// parsed Elf, in the style of bad's own readline-backed debugger
// console (bin/bad/main.go): a prompt, a flat command table, and a loop
// that exits cleanly on EOF or interrupt.
func runShell(e *elf.Elf, path string) error {
	rl, err := readline.New("elfkit > ")
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Printf("loaded %s\n", path)

	lastLine := ""
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			line = lastLine
		}
		lastLine = line
		if line == "" {
			continue
		}

		if err := runShellCommand(e, path, line); err != nil {
			if errors.Is(err, errExitShell) {
				return nil
			}
			fmt.Println("error:", err)
		}
	}
}

func runShellCommand(e *elf.Elf, path, line string) error {
	name, rest := splitShellArg(line)

	switch name {
	case "help":
		printShellHelp()
	case "ls":
		dumpTables(os.Stdout, e)
	case "yaml":
		return dumpYAML(os.Stdout, e)
	case "rm-shdrs":
		e.RemoveSectionHeaders()
		fmt.Println("section headers removed")
	case "rm-phdr":
		t, ok := parseProgramType(strings.TrimSpace(rest))
		if !ok {
			return fmt.Errorf("unknown program header type %q", rest)
		}
		e.RemovePhdrsByType(func(pt elf.ProgramType) bool { return pt != t })
		fmt.Println("removed phdrs of type", t)
	case "save":
		out := strings.TrimSpace(rest)
		if out == "" {
			out = path
		}
		if err := e.WriteFile(out); err != nil {
			return err
		}
		fmt.Println("wrote", out)
	case "exit", "quit":
		return errExitShell
	default:
		fmt.Println("unrecognized command:", name, "(try 'help')")
	}
	return nil
}

func printShellHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  ls              - dump header, phdrs, shdrs and block tree as tables")
	fmt.Println("  yaml            - dump the block tree as yaml")
	fmt.Println("  rm-shdrs        - remove the section-header table")
	fmt.Println("  rm-phdr <type>  - remove program headers of the given type")
	fmt.Println("  save [path]     - write the current state out (defaults to the input path)")
	fmt.Println("  exit            - leave the shell")
}

func splitShellArg(args string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(args), " ", 2)
	first := parts[0]
	remaining := ""
	if len(parts) > 1 {
		remaining = parts[1]
	}
	return first, remaining
}
