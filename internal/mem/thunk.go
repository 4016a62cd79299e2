//go:build unix && amd64

package mem

import (
	"runtime"
	"unsafe"

	"github.com/Machillka/brainfuck-compiler/pkg/amd64"
)

// Entry wraps the System V function at target as a Go-callable closure
// taking the tape.
//
// Go's register ABI delivers the first argument in RAX, while the
// generated code expects its argument in RDI, so the call goes through a
// small sealed thunk: mov %rax, %rdi; movabs $target, %rax; jmp *%rax.
// The target returns straight to the Go caller. The generated code leaves
// R14 (goroutine pointer) and X15 untouched, so no further bridging is
// needed.
//
// The returned closer frees the thunk; it must not be called while the
// wrapper may still run.
func Entry(target uintptr) (func(tape []byte), func() error, error) {
	var thunk []byte
	thunk = append(thunk, amd64.MovRDIFromRAX()...)
	thunk = append(thunk, amd64.MovRAXImm64(uint64(target))...)
	thunk = append(thunk, amd64.JmpRAX()...)

	buf, err := Alloc(len(thunk))
	if err != nil {
		return nil, nil, err
	}
	if err := buf.Copy(thunk); err != nil {
		buf.Close()
		return nil, nil, err
	}
	if err := buf.Seal(); err != nil {
		buf.Close()
		return nil, nil, err
	}

	// A Go func value is a pointer to a closure whose first word is the
	// code address, so a pointer to a word holding the thunk address can
	// be reinterpreted as func(uintptr).
	entry := buf.Base()
	fp := unsafe.Pointer(&entry)
	raw := *(*func(uintptr))(unsafe.Pointer(&fp))

	call := func(tape []byte) {
		raw(uintptr(unsafe.Pointer(&tape[0])))
		runtime.KeepAlive(tape)
	}
	return call, buf.Close, nil
}
