package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Machillka/brainfuck-compiler/internal/core"
)

func cmdIR(args []string) {
	fs := flag.NewFlagSet("ir", flag.ExitOnError)
	optLevel := fs.Int("O", 0, "optimization level (0 or 1)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: bfjit ir [-O level] <file>")
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

	insts, err := compile(src, level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Print(core.Dump(insts))
}
