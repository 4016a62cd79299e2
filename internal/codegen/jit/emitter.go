// Package jit emits x86_64 machine code for the Brainfuck IR.
//
// The emitter pins RBX as the tape pointer for the whole compiled
// function. RBX is callee-saved on both supported ABIs, so the prologue
// saves it and the epilogue restores it; beyond that only RAX and the
// first-argument register are touched, so no other callee-saved registers
// need spilling.
//
// Code generation is two-pass: the first pass appends instruction bytes,
// records each label's offset and each conditional jump's rel32 slot; the
// second pass patches the slots. External calls are encoded per site as a
// direct near call when the displacement fits in 32 bits, or through
// RAX otherwise, so emission works wherever the OS placed the code buffer
// relative to the runtime symbols.
//
// The emitter itself only produces bytes for a known load address; the
// caller owns the executable mapping (see internal/mem).
package jit

import (
	"math"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Machillka/brainfuck-compiler/internal/core"
	"github.com/Machillka/brainfuck-compiler/pkg/amd64"
)

// shadowSpace is the conservative Windows x64 shadow allocation in bytes.
const shadowSpace = 0x20

// Symbols holds the addresses of the runtime bridge functions.
// put takes one byte in the first argument register; get returns one byte
// in AL with EOF folded to zero. Both follow the C calling convention and
// preserve only the ABI-mandated callee-saved registers.
type Symbols struct {
	Put uintptr
	Get uintptr
}

// fixup records a rel32 slot that needs patching once labels are known.
type fixup struct {
	slot  int // offset of the 4-byte slot in code
	label int // target label id
}

// Emitter turns an IR stream into machine code for a fixed load address.
type Emitter struct {
	abi    *ABI
	base   uintptr
	cap    int
	syms   Symbols
	code   []byte
	labels map[int]int
	fixups []fixup
	err    error
}

// New creates an emitter producing code that will execute at base and may
// occupy at most capacity bytes.
func New(abi *ABI, base uintptr, capacity int, syms Symbols) *Emitter {
	return &Emitter{
		abi:    abi,
		base:   base,
		cap:    capacity,
		syms:   syms,
		code:   make([]byte, 0, 4096),
		labels: make(map[int]int),
	}
}

// Emit compiles the IR stream and returns the code bytes. The returned
// slice is only valid for execution once copied to the emitter's base
// address.
func (e *Emitter) Emit(insts []core.Inst) ([]byte, error) {
	// Prologue: push rbx; mov rbx, <arg-reg>
	e.emit(amd64.PushRBX())
	e.emit(e.abi.movTapeArg)

	for _, in := range insts {
		e.emitInst(in)
	}

	// Epilogue: pop rbx; ret
	e.emit(amd64.PopRBX())
	e.emit(amd64.Ret())

	if e.err != nil {
		return nil, e.err
	}
	if err := e.resolve(); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"abi":    e.abi.Name,
		"size":   len(e.code),
		"labels": len(e.labels),
		"jumps":  len(e.fixups),
	}).Debug("jit: emitted code")

	return e.code, nil
}

// emit appends instruction bytes, enforcing the buffer capacity.
func (e *Emitter) emit(b []byte) {
	if e.err != nil {
		return
	}
	if len(e.code)+len(b) > e.cap {
		e.err = errors.Errorf("jit: code buffer capacity exceeded (%d bytes)", e.cap)
		return
	}
	e.code = append(e.code, b...)
}

func (e *Emitter) emitInst(in core.Inst) {
	switch in.Kind {
	case core.OpAddPtr:
		e.emitAddPtr(in.Arg)
	case core.OpAddVal:
		e.emitAddVal(in.Arg)
	case core.OpOut:
		e.emitOut()
	case core.OpIn:
		e.emitIn()
	case core.OpLabel:
		e.labels[in.Label] = len(e.code)
	case core.OpJz:
		e.emitJcc(amd64.JzRel32(0), in.Arg)
	case core.OpJnz:
		e.emitJcc(amd64.JnzRel32(0), in.Arg)
	}
}

// emitAddPtr outputs: incq/decq %rbx, or addq $k, %rbx.
func (e *Emitter) emitAddPtr(k int) {
	switch {
	case k == 1:
		e.emit(amd64.IncRBX())
	case k == -1:
		e.emit(amd64.DecRBX())
	case k < math.MinInt32 || k > math.MaxInt32:
		if e.err == nil {
			e.err = errors.Errorf("jit: pointer delta %d exceeds imm32", k)
		}
	default:
		e.emit(amd64.AddqImm32RBX(int32(k)))
	}
}

// emitAddVal outputs: incb/decb (%rbx), or addb $k, (%rbx) with the delta
// normalized mod 256 to match cell wrap semantics.
func (e *Emitter) emitAddVal(k int) {
	switch k {
	case 1:
		e.emit(amd64.IncbMem())
	case -1:
		e.emit(amd64.DecbMem())
	default:
		e.emit(amd64.AddbImm8Mem(uint8(k % 256)))
	}
}

// emitOut zero-extends the cell into the first-arg register and calls put.
func (e *Emitter) emitOut() {
	e.emit(e.abi.movzxOutArg)
	if e.abi.shadowSpace {
		e.emit(amd64.SubqImm8RSP(shadowSpace))
	}
	e.emitCall(e.syms.Put)
	if e.abi.shadowSpace {
		e.emit(amd64.AddqImm8RSP(shadowSpace))
	}
}

// emitIn calls get and stores AL into the cell.
func (e *Emitter) emitIn() {
	if e.abi.shadowSpace {
		e.emit(amd64.SubqImm8RSP(shadowSpace))
	}
	e.emitCall(e.syms.Get)
	if e.abi.shadowSpace {
		e.emit(amd64.AddqImm8RSP(shadowSpace))
	}
	e.emit(amd64.MovMemAL())
}

// emitCall encodes a call to an absolute target. The displacement is
// measured from the end of a hypothetical 5-byte near call at the current
// position; if it fits in 32 bits the near form is used, otherwise the
// target goes through RAX.
func (e *Emitter) emitCall(target uintptr) {
	next := int64(e.base) + int64(len(e.code)) + 5
	diff := int64(target) - next

	if diff >= math.MinInt32 && diff <= math.MaxInt32 {
		log.Debugf("jit: call site %#x -> %#x rel32 %d", len(e.code), target, diff)
		e.emit(amd64.CallRel32(int32(diff)))
		return
	}
	log.Debugf("jit: call site %#x -> %#x via rax", len(e.code), target)
	e.emit(amd64.MovRAXImm64(uint64(target)))
	e.emit(amd64.CallRAX())
}

// emitJcc outputs the loop guard: cmpb $0, (%rbx) followed by the
// conditional jump with a placeholder rel32 recorded for patching.
func (e *Emitter) emitJcc(jcc []byte, label int) {
	e.emit(amd64.CmpbMemZero())
	e.fixups = append(e.fixups, fixup{slot: len(e.code) + 2, label: label})
	e.emit(jcc)
}

// resolve patches every recorded jump slot with the signed displacement
// from the end of the rel32 field to the label offset.
func (e *Emitter) resolve() error {
	for _, f := range e.fixups {
		off, ok := e.labels[f.label]
		if !ok {
			return errors.Errorf("jit: undefined label L%d", f.label)
		}
		rel := int32(off - (f.slot + 4))
		e.code[f.slot] = byte(rel)
		e.code[f.slot+1] = byte(rel >> 8)
		e.code[f.slot+2] = byte(rel >> 16)
		e.code[f.slot+3] = byte(rel >> 24)
	}
	return nil
}
