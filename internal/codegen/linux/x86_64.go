// Package linux produces standalone ELF64 x86_64 Linux executables from
// IR instructions.
//
// The emitted program keeps the JIT back end's register convention (RBX
// as the tape pointer) but is freestanding: the tape lives in a BSS
// segment at a fixed virtual address and the put/get I/O stubs are
// embedded at the start of the code segment, so every call site can use
// the near form.
package linux

import (
	"github.com/pkg/errors"

	"github.com/Machillka/brainfuck-compiler/internal/core"
	rt "github.com/Machillka/brainfuck-compiler/internal/runtime"
	"github.com/Machillka/brainfuck-compiler/pkg/amd64"
	"github.com/Machillka/brainfuck-compiler/pkg/elf"
)

// Memory layout constants
const (
	CodeBase = 0x400000 // image base; the code segment is mapped one page above
	BSSBase  = 0x600000 // virtual address of the tape
)

const sysExit = 60

// fixup records a rel32 slot to patch once label offsets are known.
type fixup struct {
	slot  int
	label int
}

// Generator produces x86_64 machine code and wraps it into an ELF image.
type Generator struct {
	insts    []core.Inst
	tapeSize int
	code     []byte
	labels   map[int]int
	fixups   []fixup
	putOff   int
	getOff   int
	entryOff int
}

// NewGenerator creates a generator for the given IR and tape size.
func NewGenerator(insts []core.Inst, tapeSize int) *Generator {
	return &Generator{
		insts:    insts,
		tapeSize: tapeSize,
		code:     make([]byte, 0, 4096),
		labels:   make(map[int]int),
	}
}

// Generate produces the raw code segment: I/O stubs, then the program
// entry. The entry offset is recorded for the ELF header.
func (g *Generator) Generate() ([]byte, error) {
	// Stubs first, so call displacements are known while the body is
	// emitted.
	put := rt.PutStub(rt.LinuxSyscalls)
	get := rt.GetStub(rt.LinuxSyscalls)
	g.putOff = 0
	g.code = append(g.code, put...)
	g.getOff = len(g.code)
	g.code = append(g.code, get...)

	// _start: load the tape base, run the program, exit(0).
	g.entryOff = len(g.code)
	g.emit(amd64.MovRBXImm64(BSSBase))

	for _, in := range g.insts {
		g.emitInst(in)
	}

	g.emit(amd64.MovlImm32EAX(sysExit))
	g.emit(amd64.XorlEDIEDI())
	g.emit(amd64.Syscall())

	if err := g.resolve(); err != nil {
		return nil, err
	}
	return g.code, nil
}

// GenerateELF produces a complete ELF64 executable.
func (g *Generator) GenerateELF() ([]byte, error) {
	code, err := g.Generate()
	if err != nil {
		return nil, err
	}

	codeVaddr := uint64(CodeBase + elf.PageSize)
	b := elf.NewBuilder()
	b.SetEntry(codeVaddr + uint64(g.entryOff))
	b.AddSegment(code, codeVaddr, elf.PF_R|elf.PF_X)
	b.AddBSS(BSSBase, uint64(g.tapeSize), elf.PF_R|elf.PF_W)
	return b.Build(), nil
}

func (g *Generator) emit(b []byte) {
	g.code = append(g.code, b...)
}

func (g *Generator) emitInst(in core.Inst) {
	switch in.Kind {
	case core.OpAddPtr:
		switch {
		case in.Arg == 1:
			g.emit(amd64.IncRBX())
		case in.Arg == -1:
			g.emit(amd64.DecRBX())
		default:
			g.emit(amd64.AddqImm32RBX(int32(in.Arg)))
		}
	case core.OpAddVal:
		switch in.Arg {
		case 1:
			g.emit(amd64.IncbMem())
		case -1:
			g.emit(amd64.DecbMem())
		default:
			g.emit(amd64.AddbImm8Mem(uint8(in.Arg % 256)))
		}
	case core.OpOut:
		g.emit(amd64.MovzxEDIMem())
		g.emitCall(g.putOff)
	case core.OpIn:
		g.emitCall(g.getOff)
		g.emit(amd64.MovMemAL())
	case core.OpLabel:
		g.labels[in.Label] = len(g.code)
	case core.OpJz:
		g.emitJcc(amd64.JzRel32(0), in.Arg)
	case core.OpJnz:
		g.emitJcc(amd64.JnzRel32(0), in.Arg)
	}
}

// emitCall emits a near call to a known offset in the same buffer.
func (g *Generator) emitCall(target int) {
	rel := int32(target - (len(g.code) + 5))
	g.emit(amd64.CallRel32(rel))
}

func (g *Generator) emitJcc(jcc []byte, label int) {
	g.emit(amd64.CmpbMemZero())
	g.fixups = append(g.fixups, fixup{slot: len(g.code) + 2, label: label})
	g.emit(jcc)
}

func (g *Generator) resolve() error {
	for _, f := range g.fixups {
		off, ok := g.labels[f.label]
		if !ok {
			return errors.Errorf("elf: undefined label L%d", f.label)
		}
		rel := int32(off - (f.slot + 4))
		g.code[f.slot] = byte(rel)
		g.code[f.slot+1] = byte(rel >> 8)
		g.code[f.slot+2] = byte(rel >> 16)
		g.code[f.slot+3] = byte(rel >> 24)
	}
	return nil
}
