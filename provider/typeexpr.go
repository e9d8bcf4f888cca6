package provider

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// typeExpr is a parsed type expression, before names are resolved.
//
// Grammar:
//
//	type := name [ "<" arg { "," arg } ">" ] [ "?" ]
//	arg  := "*" | [ "in" | "out" ] type
//	name := qualified package path and simple name, split at the last "."
type typeExpr struct {
	name     string
	args     []argExpr
	nullable bool
}

type argExpr struct {
	star     bool
	variance string
	typ      *typeExpr
}

func (e *typeExpr) String() string {
	var b strings.Builder
	b.WriteString(e.name)
	if len(e.args) > 0 {
		b.WriteByte('<')
		for i, a := range e.args {
			if i > 0 {
				b.WriteString(", ")
			}
			switch {
			case a.star:
				b.WriteByte('*')
			case a.variance != "":
				b.WriteString(a.variance + " " + a.typ.String())
			default:
				b.WriteString(a.typ.String())
			}
		}
		b.WriteByte('>')
	}
	if e.nullable {
		b.WriteByte('?')
	}
	return b.String()
}

// parseTypeExpr parses s as a single type expression.
func parseTypeExpr(s string) (*typeExpr, error) {
	p := &exprParser{src: s}
	t, err := p.parseType()
	if err != nil {
		return nil, fmt.Errorf("invalid type %q: %w", s, err)
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, fmt.Errorf("invalid type %q: unexpected %q at offset %d", s, p.src[p.pos:], p.pos)
	}
	return t, nil
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func isNameRune(r rune) bool {
	return r == '_' || r == '.' || r == '/' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (p *exprParser) name() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !isNameRune(r) {
			break
		}
		p.pos += size
	}
	if p.pos == start {
		if p.pos >= len(p.src) {
			return "", fmt.Errorf("expected a type name at end of input")
		}
		return "", fmt.Errorf("expected a type name at offset %d", p.pos)
	}
	name := p.src[start:p.pos]
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return "", fmt.Errorf("malformed name %q", name)
	}
	return name, nil
}

func (p *exprParser) parseType() (*typeExpr, error) {
	name, err := p.name()
	if err != nil {
		return nil, err
	}
	t := &typeExpr{name: name}

	p.skipSpace()
	if p.peek() == '<' {
		p.pos++
		for {
			arg, err := p.parseArg()
			if err != nil {
				return nil, err
			}
			t.args = append(t.args, arg)
			p.skipSpace()
			switch p.peek() {
			case ',':
				p.pos++
				continue
			case '>':
				p.pos++
			default:
				return nil, fmt.Errorf("expected ',' or '>' at offset %d", p.pos)
			}
			break
		}
	}

	p.skipSpace()
	if p.peek() == '?' {
		p.pos++
		t.nullable = true
	}
	return t, nil
}

func (p *exprParser) parseArg() (argExpr, error) {
	p.skipSpace()
	if p.peek() == '*' {
		p.pos++
		return argExpr{star: true}, nil
	}

	// "in T" and "out T" are variance keywords; a bare "in" or "out" is a
	// type name.
	save := p.pos
	word, err := p.name()
	if err != nil {
		return argExpr{}, err
	}
	if word == "in" || word == "out" {
		p.skipSpace()
		r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
		if p.pos < len(p.src) && isNameRune(r) {
			t, err := p.parseType()
			if err != nil {
				return argExpr{}, err
			}
			return argExpr{variance: word, typ: t}, nil
		}
	}
	p.pos = save

	t, err := p.parseType()
	if err != nil {
		return argExpr{}, err
	}
	return argExpr{typ: t}, nil
}
