// Package amd64 provides x86_64 (AMD64) machine code encoding utilities.
// This package has no dependencies on compiler internals and can be used
// standalone for generating x86_64 machine code.
package amd64

import "encoding/binary"

// Each function returns the machine code bytes for one instruction.
//
// For details on x86-64 instruction encoding (REX prefixes, ModRM, SIB
// bytes), see: https://wiki.osdev.org/X86-64_Instruction_Encoding

// writeLE32 writes a 32-bit value in little-endian order.
func writeLE32(buf []byte, v uint32) {
	binary.LittleEndian.PutUint32(buf, v)
}

// writeLE64 writes a 64-bit value in little-endian order.
func writeLE64(buf []byte, v uint64) {
	binary.LittleEndian.PutUint64(buf, v)
}

// PushRBX encodes: push %rbx (53)
func PushRBX() []byte {
	return []byte{0x53}
}

// PopRBX encodes: pop %rbx (5B)
func PopRBX() []byte {
	return []byte{0x5B}
}

// Ret encodes: ret (C3)
func Ret() []byte {
	return []byte{0xC3}
}

// Syscall encodes: syscall (0F 05)
func Syscall() []byte {
	return []byte{0x0F, 0x05}
}

// MovRBXFromRDI encodes: movq %rdi, %rbx (48 89 FB)
// System V prologue: the tape base arrives in RDI.
func MovRBXFromRDI() []byte {
	// 89 /r = mov r/m64, r64
	// ModRM: 11 (reg-reg) 111 (rdi) 011 (rbx) = FB
	return []byte{0x48, 0x89, 0xFB}
}

// MovRBXFromRCX encodes: movq %rcx, %rbx (48 89 CB)
// Windows x64 prologue: the tape base arrives in RCX.
func MovRBXFromRCX() []byte {
	// ModRM: 11 001 (rcx) 011 (rbx) = CB
	return []byte{0x48, 0x89, 0xCB}
}

// MovRDIFromRAX encodes: movq %rax, %rdi (48 89 C7)
func MovRDIFromRAX() []byte {
	// ModRM: 11 000 (rax) 111 (rdi) = C7
	return []byte{0x48, 0x89, 0xC7}
}

// IncRBX encodes: incq %rbx (48 FF C3)
func IncRBX() []byte {
	// FF /0 = inc r/m64; ModRM: 11 000 (/0) 011 (rbx) = C3
	return []byte{0x48, 0xFF, 0xC3}
}

// DecRBX encodes: decq %rbx (48 FF CB)
func DecRBX() []byte {
	// FF /1 = dec r/m64; ModRM: 11 001 (/1) 011 (rbx) = CB
	return []byte{0x48, 0xFF, 0xCB}
}

// AddqImm32RBX encodes: addq $imm32, %rbx (48 81 C3 <imm32>)
// The immediate is sign-extended, so negative pointer moves need no
// separate sub form.
func AddqImm32RBX(imm32 int32) []byte {
	// 81 /0 id = add r/m64, imm32; ModRM: 11 000 (/0) 011 (rbx) = C3
	buf := make([]byte, 7)
	buf[0] = 0x48
	buf[1] = 0x81
	buf[2] = 0xC3
	writeLE32(buf[3:], uint32(imm32))
	return buf
}

// IncbMem encodes: incb (%rbx) (FE 03)
func IncbMem() []byte {
	// FE /0 = inc r/m8; ModRM: 00 000 (/0) 011 (rbx) = 03
	return []byte{0xFE, 0x03}
}

// DecbMem encodes: decb (%rbx) (FE 0B)
func DecbMem() []byte {
	// FE /1 = dec r/m8; ModRM: 00 001 (/1) 011 (rbx) = 0B
	return []byte{0xFE, 0x0B}
}

// AddbImm8Mem encodes: addb $imm8, (%rbx) (80 03 <imm8>)
// Cell arithmetic wraps mod 256, so any delta reduces to one imm8 add.
func AddbImm8Mem(imm8 uint8) []byte {
	// 80 /0 ib = add r/m8, imm8; ModRM: 00 000 (/0) 011 (rbx) = 03
	return []byte{0x80, 0x03, imm8}
}

// CmpbMemZero encodes: cmpb $0, (%rbx) (80 3B 00)
// Sets ZF from the current cell for the loop guards.
func CmpbMemZero() []byte {
	// 80 /7 ib = cmp r/m8, imm8; ModRM: 00 111 (/7) 011 (rbx) = 3B
	return []byte{0x80, 0x3B, 0x00}
}

// MovzxEDIMem encodes: movzbl (%rbx), %edi (0F B6 3B)
// Zero-extends the current cell into the System V first-arg register.
func MovzxEDIMem() []byte {
	// 0F B6 /r = movzx r32, r/m8; ModRM: 00 111 (edi) 011 (rbx) = 3B
	return []byte{0x0F, 0xB6, 0x3B}
}

// MovzxECXMem encodes: movzbl (%rbx), %ecx (0F B6 0B)
// Zero-extends the current cell into the Windows x64 first-arg register.
func MovzxECXMem() []byte {
	// ModRM: 00 001 (ecx) 011 (rbx) = 0B
	return []byte{0x0F, 0xB6, 0x0B}
}

// MovMemAL encodes: movb %al, (%rbx) (88 03)
// Stores the low byte of a call's return value into the current cell.
func MovMemAL() []byte {
	// 88 /r = mov r/m8, r8; ModRM: 00 000 (al) 011 (rbx) = 03
	return []byte{0x88, 0x03}
}

// JzRel32 encodes: jz rel32 (0F 84 <rel32>)
// rel32 is relative to the end of the instruction.
func JzRel32(rel32 int32) []byte {
	buf := make([]byte, 6)
	buf[0] = 0x0F
	buf[1] = 0x84
	writeLE32(buf[2:], uint32(rel32))
	return buf
}

// JnzRel32 encodes: jnz rel32 (0F 85 <rel32>)
// rel32 is relative to the end of the instruction.
func JnzRel32(rel32 int32) []byte {
	buf := make([]byte, 6)
	buf[0] = 0x0F
	buf[1] = 0x85
	writeLE32(buf[2:], uint32(rel32))
	return buf
}

// CallRel32 encodes: call rel32 (E8 <rel32>)
// rel32 is relative to the end of the instruction.
func CallRel32(rel32 int32) []byte {
	buf := make([]byte, 5)
	buf[0] = 0xE8
	writeLE32(buf[1:], uint32(rel32))
	return buf
}

// MovRAXImm64 encodes: movabs $imm64, %rax (48 B8 <imm64>)
func MovRAXImm64(imm64 uint64) []byte {
	buf := make([]byte, 10)
	buf[0] = 0x48 // REX.W
	buf[1] = 0xB8 // B8+r with rax
	writeLE64(buf[2:], imm64)
	return buf
}

// MovRBXImm64 encodes: movabs $imm64, %rbx (48 BB <imm64>)
func MovRBXImm64(imm64 uint64) []byte {
	buf := make([]byte, 10)
	buf[0] = 0x48 // REX.W
	buf[1] = 0xBB // B8+r with rbx
	writeLE64(buf[2:], imm64)
	return buf
}

// CallRAX encodes: call *%rax (FF D0)
func CallRAX() []byte {
	// FF /2 = call r/m64; ModRM: 11 010 (/2) 000 (rax) = D0
	return []byte{0xFF, 0xD0}
}

// JmpRAX encodes: jmp *%rax (FF E0)
func JmpRAX() []byte {
	// FF /4 = jmp r/m64; ModRM: 11 100 (/4) 000 (rax) = E0
	return []byte{0xFF, 0xE0}
}

// SubqImm8RSP encodes: subq $imm8, %rsp (48 83 EC <imm8>)
func SubqImm8RSP(imm8 uint8) []byte {
	// 83 /5 ib = sub r/m64, imm8; ModRM: 11 101 (/5) 100 (rsp) = EC
	return []byte{0x48, 0x83, 0xEC, imm8}
}

// AddqImm8RSP encodes: addq $imm8, %rsp (48 83 C4 <imm8>)
func AddqImm8RSP(imm8 uint8) []byte {
	// 83 /0 ib = add r/m64, imm8; ModRM: 11 000 (/0) 100 (rsp) = C4
	return []byte{0x48, 0x83, 0xC4, imm8}
}

// MovbDILToRSPMem encodes: movb %dil, (%rsp) (40 88 3C 24)
// The bare REX prefix selects DIL rather than BH.
func MovbDILToRSPMem() []byte {
	// 88 /r = mov r/m8, r8; ModRM: 00 111 (dil) 100 (SIB) = 3C
	// SIB: 00 (scale) 100 (no index) 100 (rsp base) = 24
	return []byte{0x40, 0x88, 0x3C, 0x24}
}

// MovbZeroRSPMem encodes: movb $0, (%rsp) (C6 04 24 00)
func MovbZeroRSPMem() []byte {
	// C6 /0 ib = mov r/m8, imm8; ModRM: 00 000 (/0) 100 (SIB) = 04
	// SIB: 00 100 100 = 24
	return []byte{0xC6, 0x04, 0x24, 0x00}
}

// MovzxEAXRSPMem encodes: movzbl (%rsp), %eax (0F B6 04 24)
func MovzxEAXRSPMem() []byte {
	// 0F B6 /r; ModRM: 00 000 (eax) 100 (SIB) = 04; SIB: 24
	return []byte{0x0F, 0xB6, 0x04, 0x24}
}

// MovRSIFromRSP encodes: movq %rsp, %rsi (48 89 E6)
func MovRSIFromRSP() []byte {
	// ModRM: 11 100 (rsp) 110 (rsi) = E6
	return []byte{0x48, 0x89, 0xE6}
}

// MovlImm32EAX encodes: movl $imm32, %eax (B8 <imm32>)
func MovlImm32EAX(imm32 uint32) []byte {
	buf := make([]byte, 5)
	buf[0] = 0xB8
	writeLE32(buf[1:], imm32)
	return buf
}

// MovlImm32EDI encodes: movl $imm32, %edi (BF <imm32>)
func MovlImm32EDI(imm32 uint32) []byte {
	buf := make([]byte, 5)
	buf[0] = 0xBF
	writeLE32(buf[1:], imm32)
	return buf
}

// MovlImm32EDX encodes: movl $imm32, %edx (BA <imm32>)
func MovlImm32EDX(imm32 uint32) []byte {
	buf := make([]byte, 5)
	buf[0] = 0xBA
	writeLE32(buf[1:], imm32)
	return buf
}

// XorlEAXEAX encodes: xorl %eax, %eax (31 C0)
func XorlEAXEAX() []byte {
	return []byte{0x31, 0xC0}
}

// XorlEDIEDI encodes: xorl %edi, %edi (31 FF)
func XorlEDIEDI() []byte {
	return []byte{0x31, 0xFF}
}
