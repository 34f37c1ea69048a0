package parser

import (
	"strings"

	"github.com/ymirscript/ymir/internal/ast"
	"github.com/ymirscript/ymir/internal/diag"
	"github.com/ymirscript/ymir/internal/lexer"
)

// parseProject parses "target IDENT ;" followed by a sequence of project
// items (spec.md §4.2 grammar sketch).
func (p *parser) parseProject() *ast.Project {
	project := &ast.Project{AuthBlocks: ast.NewAuthBlockSet()}

	targetTok, _ := p.match(lexer.KwTarget, false, "a ymir script must begin with 'target <Name>;'")
	project.Position = targetTok.Position
	if nameTok, ok := p.match(lexer.Ident, false, "expected a target name after 'target'"); ok {
		project.Target = nameTok.Text
	}
	p.acceptSemicolon()

	for !p.atEOF() {
		p.parseTopLevelItem(project)
	}

	p.resolvePendingAuthUse(project)
	p.checkAuthenticateClauses(&project.Router, project, nil)
	return project
}

func (p *parser) parseTopLevelItem(project *ast.Project) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.KwUse:
		project.Middlewares = append(project.Middlewares, p.parseMiddleware())
	case lexer.KwAuth:
		p.parseAuthBlock(project)
	case lexer.KwInclude:
		p.parseInclude(&project.Router, project, nil)
	case lexer.KwRouter:
		project.Router.Routers = append(project.Router.Routers, p.parseRouter(project, []*ast.Router{&project.Router}))
	case lexer.KwGet, lexer.KwPost, lexer.KwPut, lexer.KwDelete, lexer.KwPatch, lexer.KwHead, lexer.KwOptions:
		project.Router.Routes = append(project.Router.Routes, p.parseRoute(project, []*ast.Router{&project.Router}))
	case lexer.EOF:
		return
	default:
		p.sink.Errorf(diag.KindParse, tok.Position, "unexpected %s at project scope", tok.Kind)
		p.next()
	}
}

// parseChildItem parses one item legal inside a router body: include,
// router, or route. "use"/"auth" are only legal at project scope
// (spec.md §4.2); encountering one here is a SemanticError, but the
// directive is still parsed and discarded so the parser makes progress.
func (p *parser) parseChildItem(parent *ast.Router, project *ast.Project, ancestors []*ast.Router) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.KwUse:
		p.sink.Errorf(diag.KindSemantic, tok.Position, "'use' is only legal at project scope")
		p.parseMiddleware()
	case lexer.KwAuth:
		p.sink.Errorf(diag.KindSemantic, tok.Position, "'auth' is only legal at project scope")
		p.parseAuthBlock(project)
	case lexer.KwInclude:
		p.parseInclude(parent, project, ancestors)
	case lexer.KwRouter:
		parent.Routers = append(parent.Routers, p.parseRouter(project, append(append([]*ast.Router{}, ancestors...), parent)))
	case lexer.KwGet, lexer.KwPost, lexer.KwPut, lexer.KwDelete, lexer.KwPatch, lexer.KwHead, lexer.KwOptions:
		parent.Routes = append(parent.Routes, p.parseRoute(project, append(append([]*ast.Router{}, ancestors...), parent)))
	default:
		p.sink.Errorf(diag.KindParse, tok.Position, "unexpected %s inside router block", tok.Kind)
		p.next()
	}
}

// parseMiddleware parses "use IDENT [(option_args)] ;".
func (p *parser) parseMiddleware() *ast.Middleware {
	kw, _ := p.match(lexer.KwUse, false, "")
	m := &ast.Middleware{Options: ast.NewOptionMap(), Position: kw.Position}
	if nameTok, ok := p.match(lexer.Ident, false, "expected a middleware name after 'use'"); ok {
		m.Name = nameTok.Text
	}
	if p.peek().Kind == lexer.LParen {
		p.next()
		m.Options = p.parseOptionArgs()
		p.match(lexer.RParen, false, "expected ')' to close middleware options")
	}
	p.acceptSemicolon()
	return m
}

// parseAuthBlock parses an "auth" declaration and registers it on
// project.AuthBlocks, emitting SemanticErrors for the invariants spec.md
// §3/§4.2 describe (missing source/field, duplicate default-access,
// duplicate identity).
func (p *parser) parseAuthBlock(project *ast.Project) {
	kw, _ := p.match(lexer.KwAuth, false, "")
	typeTok, _ := p.match(lexer.Ident, false, "expected an auth type (API-Key or Bearer) after 'auth'")

	block := &ast.AuthBlock{Options: ast.NewOptionMap(), Position: kw.Position}
	switch typeTok.Text {
	case "API-Key":
		block.Type = ast.AuthAPIKey
	case "Bearer":
		block.Type = ast.AuthBearer
	default:
		p.sink.Errorf(diag.KindSemantic, typeTok.Position, "unknown auth type %q, expected API-Key or Bearer", typeTok.Text)
	}

	var alias string
	for p.peek().Kind == lexer.LParen || p.peek().Kind == lexer.KwAs {
		if p.peek().Kind == lexer.LParen {
			p.next()
			block.Options = p.parseOptionArgs()
			p.match(lexer.RParen, false, "expected ')' to close auth options")
			continue
		}
		p.next() // "as"
		if aliasTok, ok := p.match(lexer.Ident, false, "expected an identifier after 'as'"); ok {
			alias = aliasTok.Text
		}
	}
	p.acceptSemicolon()
	block.Alias = ast.SanitizeIdentifier(alias)

	if src, ok := block.Options.GetString("source"); ok {
		block.Source = parseAuthSource(src)
	} else {
		p.sink.Errorf(diag.KindSemantic, kw.Position, "auth block %q is missing required option 'source'", block.Identity())
	}
	if field, ok := block.Options.GetString("field"); ok {
		block.Field = field
	} else {
		p.sink.Errorf(diag.KindSemantic, kw.Position, "auth block %q is missing required option 'field'", block.Identity())
	}
	if da, ok := block.Options.GetString("defaultAccess"); ok {
		switch da {
		case "public":
			block.DefaultAccess = false
		case "authenticated":
			block.DefaultAccess = true
		default:
			p.sink.Errorf(diag.KindSemantic, kw.Position, "invalid 'defaultAccess' value %q, expected public or authenticated", da)
		}
	}
	if block.Type == ast.AuthBearer {
		if mode, ok := block.Options.GetString("mode"); ok {
			switch strings.ToUpper(mode) {
			case "BASIC":
				block.BearerMode = ast.BearerBasic
			case "FULL":
				block.BearerMode = ast.BearerFull
			default:
				block.BearerMode = ast.BearerNone
			}
		}
	}
	if block.Type == ast.AuthAPIKey && block.Source == ast.SourceBody {
		// Open Question 3 (SPEC_FULL.md §D): body is permitted for
		// API-Key, unlike Bearer, so no error here.
	}
	if block.Type == ast.AuthBearer && block.Source == ast.SourceBody {
		p.sink.Errorf(diag.KindEmission, kw.Position, "Bearer auth cannot source its token from 'body'")
	}

	if block.DefaultAccess {
		if _, exists := project.AuthBlocks.Default(); exists {
			p.sink.Errorf(diag.KindSemantic, kw.Position, "Only one default authentication block can be defined")
			block.DefaultAccess = false
		}
	}
	if !project.AuthBlocks.Add(block) {
		p.sink.Errorf(diag.KindSemantic, kw.Position, "auth block identity %q is already declared", block.Identity())
	}
}

func parseAuthSource(s string) ast.AuthSource {
	switch s {
	case "body":
		return ast.SourceBody
	case "query":
		return ast.SourceQuery
	default:
		return ast.SourceHeader
	}
}

// resolvePendingAuthUse sets AuthorizationInUse on every auth block
// referenced by a "with […]" clause encountered anywhere in the project
// (including files reached only via include), reporting a SemanticError
// for a reference to an unknown block.
func (p *parser) resolvePendingAuthUse(project *ast.Project) {
	for _, ref := range p.pendingAuthUse {
		block, ok := project.AuthBlocks.Get(ref.identity)
		if !ok {
			p.sink.Errorf(diag.KindSemantic, ref.pos, "unknown auth block %q referenced by 'authenticate … with'", ref.identity)
			continue
		}
		block.AuthorizationInUse = true
	}
}

// checkAuthenticateClauses walks the tree validating the rule that
// "authenticate" without an identifier is only legal when the project has
// exactly one auth block (spec.md §4.2).
func (p *parser) checkAuthenticateClauses(router *ast.Router, project *ast.Project, ancestors []*ast.Router) {
	check := func(c *ast.AuthenticateClause) {
		if c == nil || c.BlockIdentity != "" {
			return
		}
		if project.AuthBlocks.Len() != 1 {
			p.sink.Errorf(diag.KindSemantic, c.Position, "'authenticate' with no identifier requires exactly one auth block in the project, found %d", project.AuthBlocks.Len())
		}
	}
	check(router.Authenticate)
	for _, route := range router.Routes {
		check(route.Authenticate)
	}
	for _, child := range router.Routers {
		p.checkAuthenticateClauses(child, project, append(ancestors, router))
	}
}
