package link

import (
	"fmt"
	"strings"

	"github.com/riscv-tools/riscv-as/numlit"
)

// exprLexer and exprParser implement the symbol-expression grammar pass3
// resolves (spec section 4.4): `+ - * / ( )` over symbol names and
// integer literals, adapted from the debugger's precedence-climbing
// expression evaluator to this package's symbol-lookup needs.
type exprToken struct {
	text string
	kind exprKind
}

type exprKind int

const (
	exprEOF exprKind = iota
	exprIdent
	exprNumber
	exprOp
	exprLParen
	exprRParen
)

func lexExpr(s string) []exprToken {
	var tokens []exprToken
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			tokens = append(tokens, exprToken{"(", exprLParen})
			i++
		case c == ')':
			tokens = append(tokens, exprToken{")", exprRParen})
			i++
		case c == '+' || c == '*' || c == '/':
			tokens = append(tokens, exprToken{string(c), exprOp})
			i++
		case c == '-':
			// A '-' is a unary sign when it directly precedes a digit and
			// isn't itself preceded by an operand (ident/number/rparen).
			if len(tokens) == 0 || tokens[len(tokens)-1].kind == exprOp || tokens[len(tokens)-1].kind == exprLParen {
				j := i + 1
				for j < len(s) && isIdentByte(s[j]) {
					j++
				}
				tokens = append(tokens, exprToken{s[i:j], exprNumber})
				i = j
			} else {
				tokens = append(tokens, exprToken{"-", exprOp})
				i++
			}
		default:
			j := i
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			if j == i {
				i++
				continue
			}
			text := s[i:j]
			kind := exprIdent
			if numlit.LooksNumeric(text) {
				kind = exprNumber
			}
			tokens = append(tokens, exprToken{text, kind})
			i = j
		}
	}
	return tokens
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '.' || c == 'x' || c == 'X' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// exprParser is a precedence-climbing parser over +,-,*,/ with parentheses.
type exprParser struct {
	tokens []exprToken
	pos    int
	lookup func(name string) (int64, bool)
}

func evalExpr(source string, lookup func(name string) (int64, bool)) (int64, error) {
	p := &exprParser{tokens: lexExpr(source), lookup: lookup}
	val, err := p.parseExpr(0)
	if err != nil {
		return 0, err
	}
	if p.current().kind != exprEOF {
		return 0, fmt.Errorf("unexpected token %q in expression %q", p.current().text, source)
	}
	return val, nil
}

func (p *exprParser) current() exprToken {
	if p.pos >= len(p.tokens) {
		return exprToken{kind: exprEOF}
	}
	return p.tokens[p.pos]
}

func precedence(op string) int {
	switch op {
	case "+", "-":
		return 1
	case "*", "/":
		return 2
	}
	return 0
}

func (p *exprParser) parseExpr(minPrec int) (int64, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	for {
		tok := p.current()
		if tok.kind != exprOp {
			break
		}
		prec := precedence(tok.text)
		if prec < minPrec || prec == 0 {
			break
		}
		p.pos++
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return 0, err
		}
		switch tok.text {
		case "+":
			left += right
		case "-":
			left -= right
		case "*":
			left *= right
		case "/":
			if right == 0 {
				return 0, fmt.Errorf("division by zero in relocation expression")
			}
			left /= right
		}
	}
	return left, nil
}

func (p *exprParser) parsePrimary() (int64, error) {
	tok := p.current()
	switch tok.kind {
	case exprNumber:
		p.pos++
		v, err := numlit.Parse(tok.text)
		if err != nil {
			return 0, fmt.Errorf("invalid literal %q: %w", tok.text, err)
		}
		return v, nil
	case exprIdent:
		p.pos++
		v, ok := p.lookup(tok.text)
		if !ok {
			return 0, fmt.Errorf("undefined symbol %q", tok.text)
		}
		return v, nil
	case exprLParen:
		p.pos++
		v, err := p.parseExpr(0)
		if err != nil {
			return 0, err
		}
		if p.current().kind != exprRParen {
			return 0, fmt.Errorf("expected ')' in expression")
		}
		p.pos++
		return v, nil
	}
	return 0, fmt.Errorf("unexpected token %q", strings.TrimSpace(tok.text))
}
