package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Machillka/brainfuck-compiler/internal/codegen/linux"
	"github.com/Machillka/brainfuck-compiler/internal/core"
)

func cmdBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	optLevel := fs.Int("O", 1, "optimization level (0 or 1)")
	output := fs.String("o", "", "output file (default: input file without extension)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: bfjit build [-O level] [-o output] <file>")
		fmt.Fprintln(os.Stderr, "\nProduces a native ELF64 Linux executable directly.")
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
		outFile = strings.TrimSuffix(file, filepath.Ext(file))
	}

	insts, err := compile(src, level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	gen := linux.NewGenerator(insts, core.TapeSize)
	binary, err := gen.GenerateELF()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := os.WriteFile(outFile, binary, 0755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("built %s -> %s\n", file, outFile)
}
