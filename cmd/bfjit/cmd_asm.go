package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Machillka/brainfuck-compiler/internal/codegen/gas"
	"github.com/Machillka/brainfuck-compiler/internal/core"
)

func cmdAsm(args []string) {
	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	optLevel := fs.Int("O", 1, "optimization level (0 or 1)")
	output := fs.String("o", "", "output file (default: input file with .s extension)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: bfjit asm [-O level] [-o output] <file>")
		fs.PrintDefaults()
		os.Exit(1)
	}
	fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
	}

	level := parseOptLevel(*optLevel)
	file := filepath.Clean(fs.Arg(0))
	src := readSource(file)

	outFile := *output
	if outFile == "" {
		outFile = strings.TrimSuffix(file, ".bf") + ".s"
	}

	insts, err := compile(src, level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	gen := gas.NewGenerator(insts, core.TapeSize)
	asm := gen.Generate()

	if err := os.WriteFile(outFile, []byte(asm), 0644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("generated %s -> %s\n", file, outFile)
}
