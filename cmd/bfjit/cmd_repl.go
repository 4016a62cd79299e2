package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	log "github.com/sirupsen/logrus"

	"github.com/Machillka/brainfuck-compiler/internal/core"
)

const (
	newPrompt  = "bf> "
	contPrompt = "..> "
)

// cmdRepl runs an interactive prompt. Each line is JIT-compiled and run
// against a tape that persists for the whole session; the data pointer
// restarts at cell 0 every line. A line that ends inside an open '['
// keeps accumulating input under the continuation prompt.
func cmdRepl(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	optLevel := fs.Int("O", 1, "optimization level (0 or 1)")
	tapeFlag := fs.String("tape", "30000", "tape size (plain bytes or human-readable, eg. 64KiB)")
	capFlag := fs.String("cap", "64KiB", "code buffer capacity")
	verbose := fs.Bool("v", false, "enable debug diagnostics")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: bfjit repl [-O level] [-tape size] [-cap size]")
		fs.PrintDefaults()
		os.Exit(1)
	}
	fs.Parse(args)

	if fs.NArg() != 0 {
		fs.Usage()
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	level := parseOptLevel(*optLevel)
	tapeSize := parseSize("tape", *tapeFlag)
	capSize := parseSize("cap", *capFlag)

	l, err := readline.NewEx(&readline.Config{
		Prompt:          newPrompt,
		HistoryFile:     filepath.Join(os.TempDir(), ".bfjit-history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer l.Close()
	l.CaptureExitSignal()

	tape := make([]byte, tapeSize)
	pending := ""

	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 && pending == "" {
				break
			}
			pending = ""
			l.SetPrompt(newPrompt)
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			fmt.Fprintln(os.Stderr, err)
			break
		}

		line = pending + line
		if strings.TrimSpace(line) == "" {
			continue
		}

		insts, err := compile([]byte(line), level)
		if err != nil {
			if core.IsIncomplete(err) {
				pending = line + "\n"
				l.SetPrompt(contPrompt)
				continue
			}
			fmt.Fprintln(os.Stderr, err)
			pending = ""
			l.SetPrompt(newPrompt)
			continue
		}

		pending = ""
		l.SetPrompt(newPrompt)

		if err := executeOn(insts, tape, capSize, ""); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}
