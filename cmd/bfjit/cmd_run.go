package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	optLevel := fs.Int("O", 1, "optimization level (0 or 1)")
	tapeFlag := fs.String("tape", "30000", "tape size (plain bytes or human-readable, eg. 64KiB)")
	capFlag := fs.String("cap", "64KiB", "code buffer capacity")
	dump := fs.String("dump", "", "write the emitted machine code to this file")
	verbose := fs.Bool("v", false, "enable debug diagnostics")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: bfjit run [-O level] [-tape size] [-cap size] [-dump file] [-v] <file>")
		fs.PrintDefaults()
		os.Exit(1)
	}
	fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	level := parseOptLevel(*optLevel)
	file := filepath.Clean(fs.Arg(0))
	src := readSource(file)

	insts, err := compile(src, level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	tapeSize := parseSize("tape", *tapeFlag)
	capSize := parseSize("cap", *capFlag)

	if err := execute(insts, tapeSize, capSize, *dump); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
