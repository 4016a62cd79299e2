package core_test

import (
	"bytes"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/Machillka/brainfuck-compiler/internal/core"
	"github.com/Machillka/brainfuck-compiler/internal/vm"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

// balanced reports whether brackets nest properly.
func balanced(src string) bool {
	depth := 0
	for _, c := range src {
		switch c {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// genOps produces a random string over the eight command characters,
// with no balance guarantee.
func genOps(r *rand.Rand, n int) string {
	const cmds = "><+-.,[]"
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(cmds[r.Intn(len(cmds))])
	}
	return b.String()
}

// genBalanced produces a random well-formed program of bounded depth.
func genBalanced(r *rand.Rand, depth, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		switch r.Intn(8) {
		case 0:
			b.WriteByte('>')
		case 1:
			b.WriteByte('<')
		case 2, 3:
			b.WriteByte('+')
		case 4:
			b.WriteByte('-')
		case 5:
			b.WriteByte('.')
		case 6:
			b.WriteByte(',')
		case 7:
			if depth < 3 {
				b.WriteByte('[')
				b.WriteString(genBalanced(r, depth+1, r.Intn(6)))
				b.WriteByte(']')
			}
		}
	}
	return b.String()
}

func TestParseIffBalanced(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 500; i++ {
		src := genOps(r, r.Intn(40))
		_, err := core.Parse([]byte(src))
		if balanced(src) {
			assert(t, err == nil, "%q: balanced but parse failed: %v", src, err)
		} else {
			assert(t, err != nil, "%q: unbalanced but parse succeeded", src)
		}
	}
}

func TestOptimiseDeterministic(t *testing.T) {
	r := rand.New(rand.NewSource(2))

	for i := 0; i < 200; i++ {
		src := genBalanced(r, 0, r.Intn(60))
		root, err := core.Parse([]byte(src))
		assert(t, err == nil, "%q: parse failed: %v", src, err)

		insts := core.Generate(root)
		a := core.Optimise(insts)
		b := core.Optimise(insts)
		assert(t, reflect.DeepEqual(a, b), "%q: optimiser not deterministic", src)
	}
}

// run evaluates the IR on the oracle, bounded so non-terminating random
// programs get skipped rather than hanging the test.
func run(insts []core.Inst, input string) (string, error) {
	var out bytes.Buffer
	v := vm.New(
		vm.WithInput(strings.NewReader(input)),
		vm.WithOutput(&out),
		vm.WithMaxSteps(200000),
	)
	err := v.Run(insts)
	return out.String(), err
}

func TestOptimisePreservesOutput(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	checked := 0

	for i := 0; i < 600; i++ {
		src := genBalanced(r, 0, r.Intn(60))
		input := genOps(r, r.Intn(8)) // any bytes will do as input

		root, err := core.Parse([]byte(src))
		assert(t, err == nil, "%q: parse failed: %v", src, err)
		insts := core.Generate(root)

		plain, err := run(insts, input)
		if err != nil {
			// Non-terminating or pointer-escaping sample: behaviour is
			// undefined, nothing to compare.
			continue
		}

		fused, err := run(core.Optimise(insts), input)
		assert(t, err == nil, "%q: optimised program failed: %v", src, err)
		assert(t, plain == fused,
			"%q with input %q: output changed by optimiser: %q vs %q", src, input, plain, fused)
		checked++
	}

	assert(t, checked > 50, "too few comparable samples: %d", checked)
}
