package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Machillka/brainfuck-compiler/internal/core"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

func compileSource(t *testing.T, src string, level core.OptLevel) []core.Inst {
	t.Helper()
	root, err := core.Parse([]byte(src))
	assert(t, err == nil, "parse failed: %v", err)
	return core.OptimiseWithLevel(core.Generate(root), level)
}

const helloWorld = "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]" +
	">>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."

func TestPrograms(t *testing.T) {
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
			insts := compileSource(t, tt.src, level)

			var out bytes.Buffer
			v := New(WithInput(strings.NewReader(tt.input)), WithOutput(&out))
			err := v.Run(insts)
			assert(t, err == nil, "%s (O%d): run failed: %v", tt.name, level, err)
			assert(t, out.String() == tt.want,
				"%s (O%d): got %q, want %q", tt.name, level, out.String(), tt.want)
		}
	}
}

func TestCellWrap(t *testing.T) {
	// 256 increments wrap back to zero, one more lands on 1.
	src := strings.Repeat("+", 257) + "."

	var out bytes.Buffer
	v := New(WithOutput(&out))
	err := v.Run(compileSource(t, src, core.O1))
	assert(t, err == nil, "run failed: %v", err)
	assert(t, out.String() == "\x01", "got %q, want \\x01", out.String())
}

func TestPointerOutOfBounds(t *testing.T) {
	v := New(WithMemorySize(16), WithOutput(&bytes.Buffer{}))
	err := v.Run(compileSource(t, "<", core.O0))
	assert(t, err != nil, "expected out of bounds error")
	_, ok := err.(*RuntimeError)
	assert(t, ok, "got %T, want *RuntimeError", err)
}

func TestEOFBehaviors(t *testing.T) {
	// Cell starts at 7; reading at EOF then writing shows the policy.
	src := "+++++++,."

	tests := []struct {
		behavior EOFBehavior
		want     string
	}{
		{EOFZero, "\x00"},
		{EOFMinusOne, "\xff"},
		{EOFNoChange, "\x07"},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		v := New(
			WithInput(strings.NewReader("")),
			WithOutput(&out),
			WithEOFBehavior(tt.behavior),
		)
		err := v.Run(compileSource(t, src, core.O0))
		assert(t, err == nil, "behavior %d: run failed: %v", tt.behavior, err)
		assert(t, out.String() == tt.want,
			"behavior %d: got %q, want %q", tt.behavior, out.String(), tt.want)
	}
}

func TestStepLimit(t *testing.T) {
	v := New(WithMaxSteps(1000), WithOutput(&bytes.Buffer{}))
	err := v.Run(compileSource(t, "+[]", core.O0))
	assert(t, err == ErrStepLimit, "got %v, want ErrStepLimit", err)
}
