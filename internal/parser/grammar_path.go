package parser

import (
	"github.com/ymirscript/ymir/internal/ast"
	"github.com/ymirscript/ymir/internal/diag"
	"github.com/ymirscript/ymir/internal/lexer"
)

// parsePath parses a path literal token followed by an optional
// "?query=type&…" suffix and an optional "as IDENT" alias (spec.md §4.2's
// path production). The lexer already recognizes the "/segment/:var"
// portion as a single Path token; the query-string and alias suffixes are
// ordinary punctuation/identifier tokens handled here.
func (p *parser) parsePath() *ast.Path {
	pathTok, _ := p.match(lexer.Path, false, "expected a path literal starting with '/'")
	path := &ast.Path{Raw: pathTok.Text, Position: pathTok.Position}

	if p.peek().Kind == lexer.Question {
		p.next()
		for {
			path.QueryParams = append(path.QueryParams, p.parseQueryParameter())
			if p.peek().Kind == lexer.Amp {
				p.next()
				continue
			}
			break
		}
	}
	if p.peek().Kind == lexer.KwAs {
		p.next()
		if aliasTok, ok := p.match(lexer.Ident, false, "expected an identifier after 'as'"); ok {
			path.Alias = ast.SanitizeIdentifier(aliasTok.Text)
		}
	}

	seen := map[string]bool{}
	for _, qp := range path.QueryParams {
		if seen[qp.Name] {
			p.sink.Errorf(diag.KindSemantic, qp.Position, "duplicate query parameter %q", qp.Name)
		}
		seen[qp.Name] = true
	}
	return path
}

func (p *parser) parseQueryParameter() *ast.QueryParameter {
	nameTok, _ := p.match(lexer.Ident, false, "expected a query parameter name")
	p.match(lexer.Equals, false, "expected '=' after query parameter name")
	typeTok := p.peek()
	qtype, ok := queryType(typeTok.Kind)
	if ok {
		p.next()
	} else {
		p.sink.Errorf(diag.KindSemantic, typeTok.Position, "unknown query parameter type %q", typeTok.Text)
		if typeTok.Kind != lexer.EOF {
			p.next()
		}
	}
	return &ast.QueryParameter{Name: nameTok.Text, Type: qtype, Position: nameTok.Position}
}

func queryType(k lexer.Kind) (ast.QueryType, bool) {
	switch k {
	case lexer.KwAny:
		return ast.QueryAny, true
	case lexer.KwString:
		return ast.QueryString, true
	case lexer.KwInt:
		return ast.QueryInt, true
	case lexer.KwFloat:
		return ast.QueryFloat, true
	case lexer.KwBoolean:
		return ast.QueryBool, true
	case lexer.KwDate:
		return ast.QueryDate, true
	case lexer.KwDatetime:
		return ast.QueryDatetime, true
	case lexer.KwTime:
		return ast.QueryTime, true
	default:
		return ast.QueryAny, false
	}
}
