package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/docker/go-units"

	"github.com/Machillka/brainfuck-compiler/internal/core"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: bfjit <command> [options] <file>

commands:
  run [-O level] [-tape size] [-cap size] [-dump file] [-v] <file>
                           JIT-compile and run the program (default -O 1)
  repl [-O level] [-tape size] [-cap size]
                           interactive prompt over a persistent tape
  watch [-O level] [-tape size] [-cap size] <file>
                           rerun the program whenever the file changes
  build [-O level] [-o output] <file>
                           produce a native ELF64 Linux executable
  asm [-O level] [-o output] <file>
                           emit GAS assembly
  tokens <file>            dump lexer output
  ir [-O level] <file>     dump IR (default -O 0)

'bfjit <file.bf>' is shorthand for 'bfjit run <file.bf>'.`)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "run":
		cmdRun(args)
	case "repl":
		cmdRepl(args)
	case "watch":
		cmdWatch(args)
	case "build":
		cmdBuild(args)
	case "asm":
		cmdAsm(args)
	case "tokens":
		cmdTokens(args)
	case "ir":
		cmdIR(args)
	default:
		if len(os.Args) == 2 && !strings.HasPrefix(cmd, "-") {
			cmdRun(os.Args[1:])
			return
		}
		usage()
	}
}

func parseOptLevel(level int) core.OptLevel {
	switch level {
	case 0:
		return core.O0
	case 1:
		return core.O1
	default:
		fmt.Fprintf(os.Stderr, "invalid optimization level: %d (must be 0 or 1)\n", level)
		os.Exit(1)
	}
	return core.O0
}

func readSource(file string) []byte {
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return src
}

// parseSize accepts plain byte counts and human-readable sizes ("64KiB").
func parseSize(name, val string) int {
	n, err := units.RAMInBytes(val)
	if err != nil || n <= 0 {
		fmt.Fprintf(os.Stderr, "invalid -%s size %q\n", name, val)
		os.Exit(1)
	}
	return int(n)
}

// compile runs the front and middle end: parse, lower, optimise.
func compile(src []byte, level core.OptLevel) ([]core.Inst, error) {
	root, err := core.Parse(src)
	if err != nil {
		return nil, err
	}
	return core.OptimiseWithLevel(core.Generate(root), level), nil
}
