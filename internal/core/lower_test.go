package core

import "testing"

func lower(t *testing.T, src string) []Inst {
	t.Helper()
	root, err := Parse([]byte(src))
	assert(t, err == nil, "parse failed: %v", err)
	return Generate(root)
}

func TestGenerateLeaves(t *testing.T) {
	insts := lower(t, "+->.<,")

	want := []Inst{
		AddVal(1), AddVal(-1), AddPtr(1), Out(), AddPtr(-1), In(),
	}
	assert(t, len(insts) == len(want), "got %d insts, want %d", len(insts), len(want))
	for i := range want {
		assert(t, insts[i] == want[i], "inst %d: got %+v, want %+v", i, insts[i], want[i])
	}
}

func TestGenerateLoop(t *testing.T) {
	insts := lower(t, "[+]")

	want := []Inst{
		Label(0), Jz(1), AddVal(1), Jnz(0), Label(1),
	}
	assert(t, len(insts) == len(want), "got %d insts, want %d", len(insts), len(want))
	for i := range want {
		assert(t, insts[i] == want[i], "inst %d: got %+v, want %+v", i, insts[i], want[i])
	}
}

func TestGenerateNestedLoopLabels(t *testing.T) {
	insts := lower(t, "[[]]")

	// Outer loop takes labels 0/1, inner 2/3.
	want := []Inst{
		Label(0), Jz(1), Label(2), Jz(3), Jnz(2), Label(3), Jnz(0), Label(1),
	}
	assert(t, len(insts) == len(want), "got %d insts, want %d", len(insts), len(want))
	for i := range want {
		assert(t, insts[i] == want[i], "inst %d: got %+v, want %+v", i, insts[i], want[i])
	}
}

// checkLabelInvariants verifies that every jump target is defined by
// exactly one label.
func checkLabelInvariants(t *testing.T, insts []Inst) {
	t.Helper()
	defined := make(map[int]int)
	for _, in := range insts {
		if in.Kind == OpLabel {
			defined[in.Label]++
		}
	}
	for id, n := range defined {
		assert(t, n == 1, "label L%d defined %d times", id, n)
	}
	for i, in := range insts {
		if in.Kind == OpJz || in.Kind == OpJnz {
			assert(t, defined[in.Arg] == 1, "inst %d: jump to undefined label L%d", i, in.Arg)
		}
	}
}

func TestGenerateLabelInvariants(t *testing.T) {
	for _, src := range []string{
		"",
		"[+]",
		"[[]]",
		"+[>++[-]<-]>[.]",
		"++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.",
	} {
		checkLabelInvariants(t, lower(t, src))
	}
}

func TestGenerateLoopBracketsBody(t *testing.T) {
	insts := lower(t, "+[>.<]-")

	assert(t, insts[0] == AddVal(1), "inst 0: got %+v", insts[0])
	assert(t, insts[1] == Label(0), "inst 1: got %+v", insts[1])
	assert(t, insts[2] == Jz(1), "inst 2: got %+v", insts[2])
	assert(t, insts[6] == Jnz(0), "inst 6: got %+v", insts[6])
	assert(t, insts[7] == Label(1), "inst 7: got %+v", insts[7])
	assert(t, insts[8] == AddVal(-1), "inst 8: got %+v", insts[8])
}
