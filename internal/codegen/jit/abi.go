package jit

import (
	"runtime"

	"github.com/Machillka/brainfuck-compiler/pkg/amd64"
)

// ABI describes the host calling convention as far as the emitter cares:
// which register carries the tape base into the compiled function, how the
// current cell is moved into the first argument register for the output
// call, and whether external calls need Windows shadow space.
type ABI struct {
	Name        string
	movTapeArg  []byte // mov %<arg-reg>, %rbx
	movzxOutArg []byte // movzbl (%rbx), %e<arg-reg>
	shadowSpace bool   // reserve 32 bytes around external calls
}

// SysV is the System V AMD64 ABI (Linux, macOS): first argument in RDI.
var SysV = &ABI{
	Name:        "sysv",
	movTapeArg:  amd64.MovRBXFromRDI(),
	movzxOutArg: amd64.MovzxEDIMem(),
}

// Win64 is the Windows x64 ABI: first argument in RCX, 32 bytes of shadow
// space reserved conservatively around each external call.
var Win64 = &ABI{
	Name:        "win64",
	movTapeArg:  amd64.MovRBXFromRCX(),
	movzxOutArg: amd64.MovzxECXMem(),
	shadowSpace: true,
}

// Host returns the ABI of the running platform.
func Host() *ABI {
	if runtime.GOOS == "windows" {
		return Win64
	}
	return SysV
}
