package core

import (
	"fmt"
	"strings"
)

// OpKind identifies the kind of IR operation.
type OpKind int

const (
	OpAddPtr OpKind = iota // ADDPTR k
	OpAddVal               // ADDVAL k
	OpOut                  // OUT
	OpIn                   // IN
	OpLabel                // LABEL id
	OpJz                   // JZ id
	OpJnz                  // JNZ id
)

// opNames maps each OpKind to its string representation for debugging.
var opNames = [...]string{
	OpAddPtr: "ADDPTR",
	OpAddVal: "ADDVAL",
	OpOut:    "OUT",
	OpIn:     "IN",
	OpLabel:  "LABEL",
	OpJz:     "JZ",
	OpJnz:    "JNZ",
}

// String returns the string representation of the OpKind.
func (k OpKind) String() string {
	return opNames[k]
}

// Inst represents one intermediate instruction. Arg holds the delta for
// ADDPTR/ADDVAL and the target label id for JZ/JNZ; Label holds the id of
// a LABEL instruction.
type Inst struct {
	Kind  OpKind
	Arg   int
	Label int
}

func AddPtr(k int) Inst { return Inst{Kind: OpAddPtr, Arg: k} }
func AddVal(k int) Inst { return Inst{Kind: OpAddVal, Arg: k} }
func Out() Inst         { return Inst{Kind: OpOut} }
func In() Inst          { return Inst{Kind: OpIn} }
func Label(id int) Inst { return Inst{Kind: OpLabel, Label: id} }
func Jz(id int) Inst    { return Inst{Kind: OpJz, Arg: id} }
func Jnz(id int) Inst   { return Inst{Kind: OpJnz, Arg: id} }

// Dump returns a formatted string representation of the IR stream.
func Dump(insts []Inst) string {
	var out strings.Builder

	for i, in := range insts {
		switch in.Kind {
		case OpAddPtr:
			fmt.Fprintf(&out, "%03d: ADDPTR %+d\n", i, in.Arg)
		case OpAddVal:
			fmt.Fprintf(&out, "%03d: ADDVAL %+d\n", i, in.Arg)
		case OpOut:
			fmt.Fprintf(&out, "%03d: OUT\n", i)
		case OpIn:
			fmt.Fprintf(&out, "%03d: IN\n", i)
		case OpLabel:
			fmt.Fprintf(&out, "%03d: LABEL  L%d\n", i, in.Label)
		case OpJz:
			fmt.Fprintf(&out, "%03d: JZ     L%d\n", i, in.Arg)
		case OpJnz:
			fmt.Fprintf(&out, "%03d: JNZ    L%d\n", i, in.Arg)
		}
	}
	return out.String()
}
