package expr

import (
	"fmt"
	"strconv"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind  tokenKind
	text  string
	value float64
	pos   int
}

type node struct {
	op          byte
	value       float64
	left, right *node
}

// Evaluate parses and evaluates an arithmetic expression with the usual
// precedence and left associativity. There are no unary operators.
func Evaluate(expression string) (float64, error) {
	tokens, err := tokenize(expression)
	if err != nil {
		return 0, err
	}
	if len(tokens) == 0 {
		return 0, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	p := &parser{tokens: tokens}
	root, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if tok, ok := p.peek(); ok {
		return 0, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, tok.text, tok.pos)
	}
	return root.eval()
}

func tokenize(expression string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(expression); {
		ch := expression[i]
		switch {
		case ch == ' ':
			i++
		case isDigit(ch):
			start := i
			for i < len(expression) && isDigit(expression[i]) {
				i++
			}
			text := expression[start:i]
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q", ErrSyntax, text)
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, value: v, pos: start + 1})
		case ch == '+' || ch == '-' || ch == '*' || ch == '/':
			tokens = append(tokens, token{kind: tokOp, text: string(ch), pos: i + 1})
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i + 1})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i + 1})
			i++
		default:
			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, ch, i+1)
		}
	}
	return tokens, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) next() (token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

// expr := term (('+' | '-') term)*
func (p *parser) parseExpr() (*node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokOp || (tok.text != "+" && tok.text != "-") {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &node{op: tok.text[0], left: left, right: right}
	}
}

// term := factor (('*' | '/') factor)*
func (p *parser) parseTerm() (*node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokOp || (tok.text != "*" && tok.text != "/") {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &node{op: tok.text[0], left: left, right: right}
	}
}

// factor := number | '(' expr ')'
func (p *parser) parseFactor() (*node, error) {
	tok, ok := p.next()
	if !ok {
		return nil, fmt.Errorf("%w: missing operand at end", ErrSyntax)
	}
	switch tok.kind {
	case tokNumber:
		return &node{value: tok.value}, nil
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.next()
		if !ok {
			return nil, fmt.Errorf("%w: unclosed parenthesis at %d", ErrSyntax, tok.pos)
		}
		if closing.kind != tokRParen {
			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, closing.text, closing.pos)
		}
		return inner, nil
	default:
		return nil, fmt.Errorf("%w: missing operand before %q at %d", ErrSyntax, tok.text, tok.pos)
	}
}

func (n *node) eval() (float64, error) {
	if n.left == nil {
		return n.value, nil
	}
	l, err := n.left.eval()
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval()
	if err != nil {
		return 0, err
	}
	switch n.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	default:
		if r == 0 {
			return 0, ErrArithmetic
		}
		return l / r, nil
	}
}
