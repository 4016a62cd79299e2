// Package runtime provides the byte-I/O bridge called by compiled code.
//
// The bridge consists of two functions with the System V C calling
// convention:
//
//	put(byte): write the byte to standard output
//	get() int: read one byte from standard input, EOF becomes 0
//
// Both are tiny machine-code stubs performing the read/write syscalls
// directly, so compiled programs never re-enter Go. The stub generators
// here are pure; the amd64 Unix installer lives in install.go, and the
// ELF back end embeds the same stub bytes into standalone executables.
package runtime

import "github.com/Machillka/brainfuck-compiler/pkg/amd64"

// SyscallNos holds a kernel's read and write syscall numbers.
type SyscallNos struct {
	Read  uint32
	Write uint32
}

var (
	// LinuxSyscalls are the x86-64 Linux syscall numbers.
	LinuxSyscalls = SyscallNos{Read: 0, Write: 1}
	// DarwinSyscalls are the macOS (BSD class) syscall numbers.
	DarwinSyscalls = SyscallNos{Read: 0x2000003, Write: 0x2000004}
)

// PutStub returns the machine code for put: the argument byte is spilled
// to the stack and written to fd 1. A write syscall is unbuffered, so the
// byte is visible immediately even without a trailing newline.
func PutStub(nos SyscallNos) []byte {
	var code []byte
	emit := func(b []byte) { code = append(code, b...) }

	emit(amd64.SubqImm8RSP(8))
	emit(amd64.MovbDILToRSPMem())       // spill the argument byte
	emit(amd64.MovlImm32EAX(nos.Write)) // write syscall
	emit(amd64.MovlImm32EDI(1))         // fd 1
	emit(amd64.MovRSIFromRSP())
	emit(amd64.MovlImm32EDX(1)) // one byte
	emit(amd64.Syscall())
	emit(amd64.AddqImm8RSP(8))
	emit(amd64.Ret())
	return code
}

// GetStub returns the machine code for get: one byte is read from fd 0
// into a stack slot that is zeroed beforehand, so EOF and read errors
// both yield 0 without inspecting the syscall result. The byte is
// returned zero-extended in EAX.
func GetStub(nos SyscallNos) []byte {
	var code []byte
	emit := func(b []byte) { code = append(code, b...) }

	emit(amd64.SubqImm8RSP(8))
	emit(amd64.MovbZeroRSPMem())
	if nos.Read == 0 {
		emit(amd64.XorlEAXEAX())
	} else {
		emit(amd64.MovlImm32EAX(nos.Read))
	}
	emit(amd64.XorlEDIEDI()) // fd 0
	emit(amd64.MovRSIFromRSP())
	emit(amd64.MovlImm32EDX(1)) // one byte
	emit(amd64.Syscall())
	emit(amd64.MovzxEAXRSPMem())
	emit(amd64.AddqImm8RSP(8))
	emit(amd64.Ret())
	return code
}
