package main

import (
	"os"
	"sync"

	"github.com/docker/go-units"
	log "github.com/sirupsen/logrus"

	"github.com/Machillka/brainfuck-compiler/internal/codegen/jit"
	"github.com/Machillka/brainfuck-compiler/internal/core"
	"github.com/Machillka/brainfuck-compiler/internal/mem"
	rt "github.com/Machillka/brainfuck-compiler/internal/runtime"
)

// The I/O stubs are installed once and shared by every compilation in
// the process.
var (
	installOnce sync.Once
	installed   rt.Symbols
	installErr  error
)

func bridgeSymbols() (rt.Symbols, error) {
	installOnce.Do(func() {
		installed, _, installErr = rt.Install()
	})
	return installed, installErr
}

// execute JIT-compiles the IR and runs it over a fresh zero tape.
func execute(insts []core.Inst, tapeSize, capacity int, dumpFile string) error {
	tape := make([]byte, tapeSize)
	return executeOn(insts, tape, capacity, dumpFile)
}

// executeOn JIT-compiles the IR and runs it over the caller's tape. The
// code buffer is released after the call returns, when no pointer into
// it remains live.
func executeOn(insts []core.Inst, tape []byte, capacity int, dumpFile string) error {
	syms, err := bridgeSymbols()
	if err != nil {
		return err
	}

	buf, err := mem.Alloc(capacity)
	if err != nil {
		return err
	}
	defer buf.Close()

	em := jit.New(jit.Host(), buf.Base(), buf.Cap(), jit.Symbols{Put: syms.Put, Get: syms.Get})
	code, err := em.Emit(insts)
	if err != nil {
		return err
	}

	if dumpFile != "" {
		if err := os.WriteFile(dumpFile, code, 0644); err != nil {
			return err
		}
		log.Debugf("wrote %s of code to %s", units.HumanSize(float64(len(code))), dumpFile)
	}

	if err := buf.Copy(code); err != nil {
		return err
	}
	if err := buf.Seal(); err != nil {
		return err
	}

	fn, closeThunk, err := mem.Entry(buf.Base())
	if err != nil {
		return err
	}
	defer closeThunk()

	fn(tape)
	return nil
}
