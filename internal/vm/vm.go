// Package vm provides a reference evaluator for the Brainfuck IR.
//
// The compiled driver never falls back to it; it exists so tests can
// check the optimiser and the end-to-end scenarios against a simple
// executable semantics.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/Machillka/brainfuck-compiler/internal/core"
)

// EOFBehavior specifies how the VM handles EOF on input.
type EOFBehavior int

const (
	EOFZero     EOFBehavior = iota // Set cell to 0 (default, matches the JIT runtime)
	EOFMinusOne                    // Set cell to 255
	EOFNoChange                    // Leave cell unchanged
)

// VM executes Brainfuck IR instructions.
type VM struct {
	memSize     int
	input       io.Reader
	output      io.Writer
	eofBehavior EOFBehavior
	maxSteps    int // 0 means unlimited
	memory      []byte
	dp          int     // data pointer
	pc          int     // program counter
	ioBuf       [1]byte // reusable I/O buffer to avoid allocations
}

// Option is a functional option for configuring a VM.
type Option func(*VM)

// WithMemorySize sets the tape size (default 30000).
func WithMemorySize(size int) Option {
	return func(v *VM) {
		v.memSize = size
	}
}

// WithInput sets the input reader (default os.Stdin).
func WithInput(r io.Reader) Option {
	return func(v *VM) {
		v.input = r
	}
}

// WithOutput sets the output writer (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(v *VM) {
		v.output = w
	}
}

// WithEOFBehavior sets the EOF handling behavior (default EOFZero).
func WithEOFBehavior(b EOFBehavior) Option {
	return func(v *VM) {
		v.eofBehavior = b
	}
}

// WithMaxSteps bounds the number of executed instructions (0 means
// unlimited). Property tests use this to cut off non-terminating
// programs.
func WithMaxSteps(n int) Option {
	return func(v *VM) {
		v.maxSteps = n
	}
}

// New creates a new VM with the given options.
func New(opts ...Option) *VM {
	vm := &VM{
		memSize:     core.TapeSize,
		input:       os.Stdin,
		output:      os.Stdout,
		eofBehavior: EOFZero,
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Run executes the given IR instructions.
func (v *VM) Run(insts []core.Inst) error {
	// Resolve label ids to instruction indices up front.
	labels := make(map[int]int, 8)
	for i, in := range insts {
		if in.Kind == core.OpLabel {
			labels[in.Label] = i
		}
	}

	v.memory = make([]byte, v.memSize)
	v.dp = 0
	v.pc = 0

	memory := v.memory
	memSize := v.memSize
	numInsts := len(insts)

	steps := 0
	for v.pc < numInsts {
		if v.maxSteps > 0 {
			steps++
			if steps > v.maxSteps {
				return ErrStepLimit
			}
		}
		in := insts[v.pc]

		switch in.Kind {
		case core.OpAddPtr:
			v.dp += in.Arg
			if v.dp < 0 || v.dp >= memSize {
				return &RuntimeError{
					Msg: fmt.Sprintf("data pointer out of bounds: %d (valid range 0-%d)", v.dp, memSize-1),
					PC:  v.pc,
				}
			}

		case core.OpAddVal:
			memory[v.dp] += byte(in.Arg)

		case core.OpIn:
			n, err := v.input.Read(v.ioBuf[:])
			if err == io.EOF || n == 0 {
				switch v.eofBehavior {
				case EOFZero:
					memory[v.dp] = 0
				case EOFMinusOne:
					memory[v.dp] = 255
				case EOFNoChange:
					// leave unchanged
				}
			} else if err != nil {
				return &RuntimeError{
					Msg: fmt.Sprintf("input error: %v", err),
					PC:  v.pc,
				}
			} else {
				memory[v.dp] = v.ioBuf[0]
			}

		case core.OpOut:
			v.ioBuf[0] = memory[v.dp]
			if _, err := v.output.Write(v.ioBuf[:]); err != nil {
				return &RuntimeError{
					Msg: fmt.Sprintf("output error: %v", err),
					PC:  v.pc,
				}
			}

		case core.OpLabel:
			// no effect

		case core.OpJz:
			if memory[v.dp] == 0 {
				target, ok := labels[in.Arg]
				if !ok {
					return &RuntimeError{Msg: fmt.Sprintf("undefined label L%d", in.Arg), PC: v.pc}
				}
				v.pc = target
				continue
			}

		case core.OpJnz:
			if memory[v.dp] != 0 {
				target, ok := labels[in.Arg]
				if !ok {
					return &RuntimeError{Msg: fmt.Sprintf("undefined label L%d", in.Arg), PC: v.pc}
				}
				v.pc = target
				continue
			}
		}

		v.pc++
	}

	return nil
}
