//go:build unix

// Package mem manages the executable memory regions that hold generated
// machine code. A region is mapped read+write, filled, then sealed to
// read+execute before first use, which keeps strict W^X policies happy.
package mem

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Buf is a page-aligned anonymous mapping with a write-then-seal
// lifecycle.
type Buf struct {
	b      []byte
	sealed bool
}

// Alloc maps a writable region of at least capacity bytes, rounded up to
// the page size.
func Alloc(capacity int) (*Buf, error) {
	page := unix.Getpagesize()
	n := (capacity + page - 1) &^ (page - 1)

	b, err := unix.Mmap(-1, 0, n,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, errors.Wrap(err, "mem: mmap")
	}
	return &Buf{b: b}, nil
}

// Base returns the address the region is mapped at.
func (b *Buf) Base() uintptr {
	return uintptr(unsafe.Pointer(&b.b[0]))
}

// Cap returns the usable size of the region.
func (b *Buf) Cap() int {
	return len(b.b)
}

// Copy writes code to the start of the region.
func (b *Buf) Copy(code []byte) error {
	if b.sealed {
		return errors.New("mem: region already sealed")
	}
	if len(code) > len(b.b) {
		return errors.Errorf("mem: %d bytes of code exceed region of %d", len(code), len(b.b))
	}
	copy(b.b, code)
	return nil
}

// Seal re-protects the region to read+execute. x86-64 needs no explicit
// instruction-cache maintenance for same-thread execution.
func (b *Buf) Seal() error {
	if err := unix.Mprotect(b.b, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return errors.Wrap(err, "mem: mprotect")
	}
	b.sealed = true
	return nil
}

// Close unmaps the region. The caller must ensure no function pointer
// into it is still live.
func (b *Buf) Close() error {
	return unix.Munmap(b.b)
}
