package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// cmdWatch reruns the program every time the source file changes. Each
// run gets a fresh zero tape.
func cmdWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	optLevel := fs.Int("O", 1, "optimization level (0 or 1)")
	tapeFlag := fs.String("tape", "30000", "tape size (plain bytes or human-readable, eg. 64KiB)")
	capFlag := fs.String("cap", "64KiB", "code buffer capacity")
	verbose := fs.Bool("v", false, "enable debug diagnostics")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: bfjit watch [-O level] [-tape size] [-cap size] <file>")
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
	tapeSize := parseSize("tape", *tapeFlag)
	capSize := parseSize("cap", *capFlag)
	file := filepath.Clean(fs.Arg(0))

	runOnce := func() {
		src, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		insts, err := compile(src, level)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		if err := execute(insts, tapeSize, capSize, ""); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer w.Close()

	// Watch the directory: editors often replace the file rather than
	// write it in place.
	if err := w.Add(filepath.Dir(file)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	runOnce()

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) == file && ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				fmt.Fprintf(os.Stderr, "bfjit: %s changed, rerunning\n", file)
				runOnce()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			fmt.Fprintln(os.Stderr, err)
		}
	}
}
