package linux

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/Machillka/brainfuck-compiler/internal/core"
	rt "github.com/Machillka/brainfuck-compiler/internal/runtime"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

func lower(t *testing.T, src string) []core.Inst {
	t.Helper()
	root, err := core.Parse([]byte(src))
	assert(t, err == nil, "parse failed: %v", err)
	return core.Optimise(core.Generate(root))
}

func TestGenerateEmbedsStubs(t *testing.T) {
	g := NewGenerator(lower(t, "+."), core.TapeSize)
	code, err := g.Generate()
	assert(t, err == nil, "generate failed: %v", err)

	put := rt.PutStub(rt.LinuxSyscalls)
	get := rt.GetStub(rt.LinuxSyscalls)
	assert(t, bytes.HasPrefix(code, put), "put stub not at code start")
	assert(t, bytes.HasPrefix(code[len(put):], get), "get stub not after put stub")

	// The entry loads the tape base into RBX right after the stubs.
	entry := len(put) + len(get)
	assert(t, code[entry] == 0x48 && code[entry+1] == 0xBB,
		"entry prologue: got % X", code[entry:entry+2])
	base := binary.LittleEndian.Uint64(code[entry+2 : entry+10])
	assert(t, base == BSSBase, "tape base: got %#x, want %#x", base, uint64(BSSBase))
}

func TestGenerateUndefinedLabel(t *testing.T) {
	g := NewGenerator([]core.Inst{core.Jz(3)}, core.TapeSize)
	_, err := g.Generate()
	assert(t, err != nil, "expected undefined label error")
}

func TestGenerateELFImage(t *testing.T) {
	g := NewGenerator(lower(t, "++[>+<-]>."), core.TapeSize)
	img, err := g.GenerateELF()
	assert(t, err == nil, "generate failed: %v", err)

	assert(t, bytes.HasPrefix(img, []byte{0x7f, 'E', 'L', 'F', 2, 1, 1}),
		"bad ELF ident: % X", img[:7])

	machine := binary.LittleEndian.Uint16(img[18:20])
	assert(t, machine == 62, "e_machine: got %d, want 62 (x86-64)", machine)

	phnum := binary.LittleEndian.Uint16(img[56:58])
	assert(t, phnum == 2, "e_phnum: got %d, want 2", phnum)

	stubs := len(rt.PutStub(rt.LinuxSyscalls)) + len(rt.GetStub(rt.LinuxSyscalls))
	entry := binary.LittleEndian.Uint64(img[24:32])
	assert(t, entry == uint64(CodeBase+0x1000+stubs),
		"e_entry: got %#x, want %#x", entry, uint64(CodeBase+0x1000+stubs))

	// The code segment starts at the first page boundary.
	assert(t, len(img) > 0x1000, "image too small: %d bytes", len(img))
	put := rt.PutStub(rt.LinuxSyscalls)
	assert(t, bytes.HasPrefix(img[0x1000:], put), "code segment not at offset 0x1000")
}
