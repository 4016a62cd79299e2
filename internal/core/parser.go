package core

// Parser builds an AST from the token stream with one token of lookahead.
//
// Grammar:
//
//	program := stmt*                          (synthetic root)
//	stmt    := '>' | '<' | '+' | '-' | '.' | ',' | loop
//	loop    := '[' stmt* ']'
type Parser struct {
	lex *Lexer
	cur Token
}

// NewParser creates a parser over the given source bytes.
func NewParser(src []byte) *Parser {
	p := &Parser{lex: NewLexer(src)}
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.lex.Next()
}

// Parse is a convenience wrapper that parses src in one call.
func Parse(src []byte) (*Node, error) {
	return NewParser(src).ParseProgram()
}

// ParseProgram parses the whole input and returns the synthetic root node.
func (p *Parser) ParseProgram() (*Node, error) {
	root := &Node{Kind: NodeLoop}

	for p.cur.Kind != TokEOF {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		root.Body = append(root.Body, stmt)
	}
	return root, nil
}

// leafKinds maps simple tokens to their AST node kind and step.
var leafKinds = [...]struct {
	kind NodeKind
	arg  int
}{
	TokShiftRight: {NodeMovePtr, +1},
	TokShiftLeft:  {NodeMovePtr, -1},
	TokAdd:        {NodeAddVal, +1},
	TokSub:        {NodeAddVal, -1},
	TokOut:        {NodeOutput, 0},
	TokIn:         {NodeInput, 0},
}

func (p *Parser) parseStmt() (*Node, error) {
	tok := p.cur

	switch tok.Kind {
	case TokShiftRight, TokShiftLeft, TokAdd, TokSub, TokOut, TokIn:
		leaf := leafKinds[tok.Kind]
		p.advance()
		return &Node{Kind: leaf.kind, Arg: leaf.arg, Pos: tok.Pos}, nil

	case TokLBracket:
		return p.parseLoop()

	case TokRBracket:
		// A ']' can only reach parseStmt at top level; inside a loop
		// parseLoop consumes it as the terminator.
		return nil, &SyntaxError{Msg: "unmatched ']'", Pos: tok.Pos}

	default:
		return nil, &SyntaxError{Msg: "unexpected token", Pos: tok.Pos}
	}
}

func (p *Parser) parseLoop() (*Node, error) {
	open := p.cur
	p.advance() // eat '['

	loop := &Node{Kind: NodeLoop, Pos: open.Pos}
	for p.cur.Kind != TokRBracket && p.cur.Kind != TokEOF {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		loop.Body = append(loop.Body, stmt)
	}

	if p.cur.Kind != TokRBracket {
		return nil, &SyntaxError{Msg: "unmatched '['", Pos: open.Pos}
	}
	p.advance() // eat ']'
	return loop, nil
}
