package program

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// typeExpr is a parsed type spelling such as `Dictionary<string, List<int>>`.
type typeExpr struct {
	name string
	args []typeExpr
}

func parseTypeExpr(s string) (typeExpr, error) {
	p := typeParser{src: s}
	te, err := p.parse()
	if err != nil {
		return typeExpr{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return typeExpr{}, errors.Newf("type %q: unexpected %q at offset %d", s, p.src[p.pos:], p.pos)
	}
	return te, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) parse() (typeExpr, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune("<>, ", rune(p.src[p.pos])) {
		p.pos++
	}
	te := typeExpr{name: p.src[start:p.pos]}
	if te.name == "" {
		return typeExpr{}, errors.Newf("type %q: missing name at offset %d", p.src, start)
	}
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '<' {
		return te, nil
	}
	p.pos++
	for {
		arg, err := p.parse()
		if err != nil {
			return typeExpr{}, err
		}
		te.args = append(te.args, arg)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return typeExpr{}, errors.Newf("type %q: unterminated argument list", p.src)
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return te, nil
		default:
			return typeExpr{}, errors.Newf("type %q: unexpected %q at offset %d", p.src, p.src[p.pos], p.pos)
		}
	}
}
