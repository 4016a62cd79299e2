// Package elf builds minimal ELF64 executables: an ELF header, one
// program header per segment, no section headers. This package has no
// dependencies on the compiler internals.
package elf

import (
	"bytes"
	"encoding/binary"
)

// Public constants used by callers when laying out segments.
const (
	HeaderSize = 64
	PhdrSize   = 56
	PageSize   = 0x1000

	// Program header flags
	PF_X = 0x1 // Execute
	PF_W = 0x2 // Write
	PF_R = 0x4 // Read
)

const (
	etExec      = 2  // executable file
	emX86_64    = 62 // machine type
	ptLoad      = 1  // loadable segment
	elfClass64  = 2
	elfData2LSB = 1 // little endian
	evCurrent   = 1
)

// header64 mirrors the on-disk ELF64 file header.
type header64 struct {
	Ident     [16]byte
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

// phdr64 mirrors an on-disk ELF64 program header.
type phdr64 struct {
	Type   uint32
	Flags  uint32
	Off    uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

type segment struct {
	vaddr uint64
	data  []byte
	memsz uint64
	flags uint32
	bss   bool
}

// Builder constructs an ELF64 executable image.
//
// Layout of the produced file:
//
//	0x0000  ELF header            64 bytes
//	0x0040  program headers       56 bytes each
//	0x1000  first data segment    page-aligned
//
// BSS segments occupy no file space; the kernel zero-fills them.
type Builder struct {
	entry uint64
	segs  []segment
}

// NewBuilder creates an empty ELF64 builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// SetEntry sets the entry point virtual address.
func (b *Builder) SetEntry(vaddr uint64) {
	b.entry = vaddr
}

// AddSegment adds a loadable segment backed by file data. The virtual
// address must be congruent to the segment's file offset modulo the page
// size; the first data segment lands at file offset PageSize.
func (b *Builder) AddSegment(data []byte, vaddr uint64, flags uint32) {
	b.segs = append(b.segs, segment{
		vaddr: vaddr,
		data:  data,
		memsz: uint64(len(data)),
		flags: flags,
	})
}

// AddBSS adds a zero-initialized segment with no file data.
func (b *Builder) AddBSS(vaddr, size uint64, flags uint32) {
	b.segs = append(b.segs, segment{
		vaddr: vaddr,
		memsz: size,
		flags: flags,
		bss:   true,
	})
}

// Build produces the final ELF binary.
func (b *Builder) Build() []byte {
	var out bytes.Buffer
	put := func(v any) {
		// writing fixed-size values into a bytes.Buffer cannot fail
		binary.Write(&out, binary.LittleEndian, v)
	}

	headerSize := uint64(HeaderSize + len(b.segs)*PhdrSize)
	dataOffset := alignUp(headerSize, PageSize)

	hdr := header64{
		Type:      etExec,
		Machine:   emX86_64,
		Version:   evCurrent,
		Entry:     b.entry,
		Phoff:     HeaderSize,
		Ehsize:    HeaderSize,
		Phentsize: PhdrSize,
		Phnum:     uint16(len(b.segs)),
	}
	copy(hdr.Ident[:], []byte{0x7f, 'E', 'L', 'F', elfClass64, elfData2LSB, evCurrent})
	put(hdr)

	off := dataOffset
	for _, seg := range b.segs {
		p := phdr64{
			Type:  ptLoad,
			Flags: seg.flags,
			Vaddr: seg.vaddr,
			Paddr: seg.vaddr,
			Memsz: seg.memsz,
			Align: PageSize,
		}
		if !seg.bss {
			p.Off = off
			p.Filesz = uint64(len(seg.data))
			off += p.Filesz
		}
		put(p)
	}

	for out.Len() < int(dataOffset) {
		out.WriteByte(0)
	}
	for _, seg := range b.segs {
		if !seg.bss {
			out.Write(seg.data)
		}
	}

	return out.Bytes()
}

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}
