package core

// irgen lowers the AST to linear IR, handing out fresh label ids from a
// monotonically increasing counter.
type irgen struct {
	insts  []Inst
	labels int
}

func (g *irgen) newLabel() int {
	id := g.labels
	g.labels++
	return id
}

// Generate lowers the AST rooted at the synthetic program node into a
// linear IR stream. The root itself produces no labels or jumps; its
// children are lowered in order.
//
// Each loop consumes two fresh label ids and lowers to exactly:
//
//	LABEL start
//	JZ    end
//	<body>
//	JNZ   start
//	LABEL end
func Generate(root *Node) []Inst {
	g := &irgen{insts: make([]Inst, 0, 64)}
	for _, c := range root.Body {
		g.gen(c)
	}
	return g.insts
}

func (g *irgen) gen(n *Node) {
	switch n.Kind {
	case NodeMovePtr:
		g.insts = append(g.insts, AddPtr(n.Arg))
	case NodeAddVal:
		g.insts = append(g.insts, AddVal(n.Arg))
	case NodeOutput:
		g.insts = append(g.insts, Out())
	case NodeInput:
		g.insts = append(g.insts, In())
	case NodeLoop:
		start := g.newLabel()
		end := g.newLabel()
		g.insts = append(g.insts, Label(start), Jz(end))
		for _, c := range n.Body {
			g.gen(c)
		}
		g.insts = append(g.insts, Jnz(start), Label(end))
	}
}
