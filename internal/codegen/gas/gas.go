// Package gas provides GAS (GNU Assembler) assembly output for x86_64
// Linux, mirroring the ELF back end's register convention.
package gas

import (
	"fmt"
	"strings"

	"github.com/Machillka/brainfuck-compiler/internal/core"
)

// Linux syscall numbers
const (
	sysWrite = 1
	sysExit  = 60
)

// Generator produces GAS (AT&T syntax) assembly from IR instructions.
type Generator struct {
	insts    []core.Inst
	tapeSize int
	out      strings.Builder
}

// NewGenerator creates a new GAS assembly generator.
func NewGenerator(insts []core.Inst, tapeSize int) *Generator {
	return &Generator{insts: insts, tapeSize: tapeSize}
}

// Generate produces the complete assembly output.
func (g *Generator) Generate() string {
	g.emitHeader()
	g.emitPrologue()

	for _, in := range g.insts {
		g.emitInst(in)
	}

	g.emitEpilogue()
	g.emitHelpers()

	return g.out.String()
}

// emitHeader outputs the BSS tape and the text section preamble.
func (g *Generator) emitHeader() {
	fmt.Fprintf(&g.out, ".section .bss\n")
	fmt.Fprintf(&g.out, "    .lcomm tape, %d\n", g.tapeSize)
	fmt.Fprintf(&g.out, "\n")
	fmt.Fprintf(&g.out, ".section .text\n")
	fmt.Fprintf(&g.out, ".globl _start\n")
}

// emitPrologue loads the tape base into RBX, the pinned data pointer.
func (g *Generator) emitPrologue() {
	fmt.Fprintf(&g.out, "_start:\n")
	fmt.Fprintf(&g.out, "    movq $tape, %%rbx\n")
}

// emitEpilogue outputs the exit(0) syscall.
func (g *Generator) emitEpilogue() {
	fmt.Fprintf(&g.out, "    movq $%d, %%rax\n", sysExit)
	fmt.Fprintf(&g.out, "    xorq %%rdi, %%rdi\n")
	fmt.Fprintf(&g.out, "    syscall\n")
}

// emitHelpers outputs the I/O helper functions. The read helper zeroes
// the cell first so EOF leaves 0 behind.
func (g *Generator) emitHelpers() {
	fmt.Fprintf(&g.out, "\n_bf_read:\n")
	fmt.Fprintf(&g.out, "    movb $0, (%%rbx)\n")
	fmt.Fprintf(&g.out, "    xorq %%rax, %%rax\n")
	fmt.Fprintf(&g.out, "    xorq %%rdi, %%rdi\n")
	fmt.Fprintf(&g.out, "    movq %%rbx, %%rsi\n")
	fmt.Fprintf(&g.out, "    movq $1, %%rdx\n")
	fmt.Fprintf(&g.out, "    syscall\n")
	fmt.Fprintf(&g.out, "    ret\n")

	fmt.Fprintf(&g.out, "\n_bf_write:\n")
	fmt.Fprintf(&g.out, "    movq %%rbx, %%rsi\n")
	fmt.Fprintf(&g.out, "    movq $%d, %%rax\n", sysWrite)
	fmt.Fprintf(&g.out, "    movq $1, %%rdi\n")
	fmt.Fprintf(&g.out, "    movq $1, %%rdx\n")
	fmt.Fprintf(&g.out, "    syscall\n")
	fmt.Fprintf(&g.out, "    ret\n")
}

// emitInst outputs assembly for a single IR instruction.
func (g *Generator) emitInst(in core.Inst) {
	switch in.Kind {
	case core.OpAddPtr:
		g.emitAddPtr(in.Arg)
	case core.OpAddVal:
		g.emitAddVal(in.Arg)
	case core.OpOut:
		fmt.Fprintf(&g.out, "    call _bf_write\n")
	case core.OpIn:
		fmt.Fprintf(&g.out, "    call _bf_read\n")
	case core.OpLabel:
		fmt.Fprintf(&g.out, ".L%d:\n", in.Label)
	case core.OpJz:
		fmt.Fprintf(&g.out, "    cmpb $0, (%%rbx)\n")
		fmt.Fprintf(&g.out, "    jz .L%d\n", in.Arg)
	case core.OpJnz:
		fmt.Fprintf(&g.out, "    cmpb $0, (%%rbx)\n")
		fmt.Fprintf(&g.out, "    jnz .L%d\n", in.Arg)
	}
}

// emitAddPtr outputs: addq $k, %rbx (or subq for negative values)
func (g *Generator) emitAddPtr(k int) {
	if k == 0 {
		return
	}
	if k > 0 {
		fmt.Fprintf(&g.out, "    addq $%d, %%rbx\n", k)
	} else {
		fmt.Fprintf(&g.out, "    subq $%d, %%rbx\n", -k)
	}
}

// emitAddVal outputs: addb $k, (%rbx) (or subb for negative values),
// with the delta normalized mod 256.
func (g *Generator) emitAddVal(k int) {
	k %= 256
	if k == 0 {
		return
	}
	if k > 0 {
		fmt.Fprintf(&g.out, "    addb $%d, (%%rbx)\n", k)
	} else {
		fmt.Fprintf(&g.out, "    subb $%d, (%%rbx)\n", -k)
	}
}
