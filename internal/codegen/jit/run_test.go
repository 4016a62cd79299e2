//go:build (linux || darwin) && amd64

package jit_test

import (
	"io"
	"os"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/Machillka/brainfuck-compiler/internal/codegen/jit"
	"github.com/Machillka/brainfuck-compiler/internal/core"
	"github.com/Machillka/brainfuck-compiler/internal/mem"
	rt "github.com/Machillka/brainfuck-compiler/internal/runtime"
)

func assertRun(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

// runJIT compiles src through the whole pipeline and executes the
// generated code with stdin/stdout redirected at the fd level, since the
// runtime stubs bypass Go's streams entirely.
func runJIT(t *testing.T, src, input string, level core.OptLevel) string {
	t.Helper()

	root, err := core.Parse([]byte(src))
	assertRun(t, err == nil, "parse failed: %v", err)
	insts := core.OptimiseWithLevel(core.Generate(root), level)

	syms, closeSyms, err := rt.Install()
	assertRun(t, err == nil, "stub install failed: %v", err)
	defer closeSyms()

	buf, err := mem.Alloc(1 << 16)
	assertRun(t, err == nil, "alloc failed: %v", err)
	defer buf.Close()

	em := jit.New(jit.Host(), buf.Base(), buf.Cap(), jit.Symbols{Put: syms.Put, Get: syms.Get})
	code, err := em.Emit(insts)
	assertRun(t, err == nil, "emit failed: %v", err)
	assertRun(t, buf.Copy(code) == nil, "copy failed")
	assertRun(t, buf.Seal() == nil, "seal failed")

	fn, closeThunk, err := mem.Entry(buf.Base())
	assertRun(t, err == nil, "thunk failed: %v", err)
	defer closeThunk()

	outR, outW, err := os.Pipe()
	assertRun(t, err == nil, "pipe failed: %v", err)
	inR, inW, err := os.Pipe()
	assertRun(t, err == nil, "pipe failed: %v", err)
	_, err = inW.WriteString(input)
	assertRun(t, err == nil, "input write failed: %v", err)
	inW.Close() // EOF after the provided input

	savedOut, err := unix.Dup(1)
	assertRun(t, err == nil, "dup stdout failed: %v", err)
	savedIn, err := unix.Dup(0)
	assertRun(t, err == nil, "dup stdin failed: %v", err)
	assertRun(t, unix.Dup2(int(outW.Fd()), 1) == nil, "redirect stdout failed")
	assertRun(t, unix.Dup2(int(inR.Fd()), 0) == nil, "redirect stdin failed")

	tape := make([]byte, core.TapeSize)
	fn(tape)

	unix.Dup2(savedOut, 1)
	unix.Dup2(savedIn, 0)
	unix.Close(savedOut)
	unix.Close(savedIn)
	outW.Close()
	inR.Close()

	out, err := io.ReadAll(outR)
	assertRun(t, err == nil, "read output failed: %v", err)
	outR.Close()
	return string(out)
}

const helloWorld = "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]" +
	">>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."

func TestJITPrograms(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		input string
		want  string
	}{
		{"cell to 65", "++++++++[>++++++++<-]>+.", "", "A"},
		{"echo one byte", ",.", "X", "X"},
		{"echo at eof", ",.", "", "\x00"},
		{"move between cells", "+++>++<[->+<]>.", "", "\x05"},
		{"hello world", helloWorld, "", "Hello World!\n"},
		{"skipped loop", "[->+<]", "", ""},
	}

	for _, tt := range tests {
		for _, level := range []core.OptLevel{core.O0, core.O1} {
			got := runJIT(t, tt.src, tt.input, level)
			assertRun(t, got == tt.want,
				"%s (O%d): got %q, want %q", tt.name, level, got, tt.want)
		}
	}
}

func TestJITCellWrap(t *testing.T) {
	// 255 increments, one more wraps to zero, then output.
	src := ""
	for i := 0; i < 256; i++ {
		src += "+"
	}
	src += "."
	got := runJIT(t, src, "", core.O1)
	assertRun(t, got == "\x00", "got %q, want NUL", got)
}
