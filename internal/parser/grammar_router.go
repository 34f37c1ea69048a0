package parser

import (
	"github.com/ymirscript/ymir/internal/ast"
	"github.com/ymirscript/ymir/internal/diag"
	"github.com/ymirscript/ymir/internal/lexer"
)

// parseRouter parses "router path { header|body|authenticate } { child* }"
// (spec.md §4.2).
func (p *parser) parseRouter(project *ast.Project, ancestors []*ast.Router) *ast.Router {
	kw, _ := p.match(lexer.KwRouter, false, "")
	r := &ast.Router{Path: p.parsePath(), Position: kw.Position}

	for {
		switch p.peek().Kind {
		case lexer.KwHeader:
			r.Header = ast.Merge(r.Header, p.parseOptionClause(lexer.KwHeader))
		case lexer.KwBody:
			r.Body = ast.Merge(r.Body, p.parseOptionClause(lexer.KwBody))
		case lexer.KwAuthenticate:
			r.Authenticate = p.parseAuthenticateClause()
		default:
			goto body
		}
	}
body:
	p.match(lexer.LBrace, false, "expected '{' to open router body")
	for p.peek().Kind != lexer.RBrace && !p.atEOF() {
		p.parseChildItem(r, project, ancestors)
	}
	p.match(lexer.RBrace, false, "unclosed router block")
	return r
}

// parseRoute parses "METHOD path { header|body|authenticate|response|
// render } ;" (spec.md §4.2).
func (p *parser) parseRoute(project *ast.Project, ancestors []*ast.Router) *ast.Route {
	methodTok := p.next()
	route := &ast.Route{Method: methodKind(methodTok.Kind), Path: p.parsePath(), Position: methodTok.Position}

	for {
		switch p.peek().Kind {
		case lexer.KwHeader:
			route.Header = ast.Merge(route.Header, p.parseOptionClause(lexer.KwHeader))
		case lexer.KwBody:
			route.Body = ast.Merge(route.Body, p.parseOptionClause(lexer.KwBody))
		case lexer.KwAuthenticate:
			route.Authenticate = p.parseAuthenticateClause()
		case lexer.KwResponse, lexer.KwResponses:
			route.IsResponsePlural = p.peek().Kind == lexer.KwResponses
			route.Response = p.parseOptionClause(p.peek().Kind)
		case lexer.KwRender:
			route.Render = p.parseRenderBlock()
		default:
			goto done
		}
	}
done:
	p.acceptSemicolon()
	if c, ok := p.commentBeforeLine(route.Position.LineStart); ok {
		route.Description = cleanComment(c)
	}
	return route
}

func methodKind(k lexer.Kind) ast.Method {
	switch k {
	case lexer.KwPost:
		return ast.POST
	case lexer.KwPut:
		return ast.PUT
	case lexer.KwDelete:
		return ast.DELETE
	case lexer.KwPatch:
		return ast.PATCH
	case lexer.KwHead:
		return ast.HEAD
	case lexer.KwOptions:
		return ast.OPTIONS
	default:
		return ast.GET
	}
}

// parseOptionClause parses "KW ( option_args )", used for header/body/
// response/responses clauses which all share this shape.
func (p *parser) parseOptionClause(kw lexer.Kind) *ast.OptionMap {
	p.match(kw, false, "")
	p.match(lexer.LParen, false, "expected '(' after "+kw.String())
	m := p.parseOptionArgs()
	p.match(lexer.RParen, false, "expected ')' to close option list")
	return m
}

// parseAuthenticateClause parses "authenticate [IDENT] [with (STRING |
// [STRING,...])]" (spec.md §4.2). A referenced identity is recorded on
// the parser's pending-auth-use list rather than resolved immediately,
// since the referenced block may not be registered yet.
func (p *parser) parseAuthenticateClause() *ast.AuthenticateClause {
	kw, _ := p.match(lexer.KwAuthenticate, false, "")
	clause := &ast.AuthenticateClause{Position: kw.Position}
	if p.peek().Kind == lexer.Ident {
		clause.BlockIdentity = p.next().Text
	}
	if p.peek().Kind == lexer.KwWith {
		p.next()
		if p.peek().Kind == lexer.LBracket {
			p.next()
			for p.peek().Kind != lexer.RBracket && !p.atEOF() {
				if roleTok, ok := p.match(lexer.String, false, "expected a quoted role name"); ok {
					clause.Roles = append(clause.Roles, roleTok.StringValue)
				}
				if p.peek().Kind == lexer.Comma {
					p.next()
					continue
				}
				break
			}
			p.match(lexer.RBracket, false, "expected ']' to close role list")
		} else if roleTok, ok := p.match(lexer.String, false, "expected a quoted role name after 'with'"); ok {
			clause.Roles = append(clause.Roles, roleTok.StringValue)
		}
		if clause.BlockIdentity != "" {
			p.pendingAuthUse = append(p.pendingAuthUse, authUseRef{identity: clause.BlockIdentity, pos: clause.Position})
		}
	}
	return clause
}

// parseRenderBlock parses "render (list|table|detail|form) [(option_args)]".
func (p *parser) parseRenderBlock() *ast.RenderBlock {
	kw, _ := p.match(lexer.KwRender, false, "")
	kindTok := p.peek()
	block := &ast.RenderBlock{Options: ast.NewOptionMap(), Position: kw.Position}
	switch kindTok.Kind {
	case lexer.KwList:
		block.Kind = ast.RenderList
		p.next()
	case lexer.KwTable:
		block.Kind = ast.RenderTable
		p.next()
	case lexer.KwDetail:
		block.Kind = ast.RenderDetail
		p.next()
	case lexer.KwForm:
		block.Kind = ast.RenderForm
		p.next()
	default:
		p.sink.Errorf(diag.KindParse, kindTok.Position, "expected one of list, table, detail, form after 'render'")
	}
	if p.peek().Kind == lexer.LParen {
		p.next()
		block.Options = p.parseOptionArgs()
		p.match(lexer.RParen, false, "expected ')' to close render options")
	}
	return block
}
