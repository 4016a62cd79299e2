package core

// NodeKind identifies the kind of AST node.
type NodeKind int

const (
	NodeMovePtr NodeKind = iota // > or <
	NodeAddVal                  // + or -
	NodeOutput                  // .
	NodeInput                   // ,
	NodeLoop                    // [ ... ]
)

// nodeNames maps each NodeKind to its string representation for debugging.
var nodeNames = [...]string{
	NodeMovePtr: "MovePtr",
	NodeAddVal:  "AddVal",
	NodeOutput:  "Output",
	NodeInput:   "Input",
	NodeLoop:    "Loop",
}

// String returns the string representation of the NodeKind.
func (k NodeKind) String() string {
	return nodeNames[k]
}

// Node is one AST node. Arg holds the step for MovePtr/AddVal (+1 or -1
// straight out of the parser); Body is used by NodeLoop only.
//
// The parser wraps the whole program in a synthetic NodeLoop root whose
// Body is the top-level statement sequence. The root is not a loop
// semantically: the IR generator unfolds its children directly.
type Node struct {
	Kind NodeKind
	Arg  int
	Body []*Node
	Pos  Position
}
