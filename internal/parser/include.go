package parser

import (
	"github.com/ymirscript/ymir/internal/ast"
	"github.com/ymirscript/ymir/internal/diag"
	"github.com/ymirscript/ymir/internal/lexer"
)

// parseInclude parses "include STRING ;" and splices the referenced
// file's routers/routes/nested-includes directly into parent, in source
// position, as spec.md §4.2 describes. Middlewares and auth blocks inside
// an included file are still only legal at project scope — parseChildItem
// reports the same SemanticError for them regardless of which file they
// came from.
func (p *parser) parseInclude(parent *ast.Router, project *ast.Project, ancestors []*ast.Router) {
	kw, _ := p.match(lexer.KwInclude, false, "")
	pathTok, ok := p.match(lexer.String, false, "expected a quoted include path")
	p.acceptSemicolon()
	if !ok {
		return
	}
	if p.provider == nil {
		p.sink.Errorf(diag.KindInclude, kw.Position, "include %q: no file provider configured", pathTok.StringValue)
		return
	}

	resolved, err := p.provider.Resolve(p.currentFile(), pathTok.StringValue)
	if err != nil {
		p.sink.Errorf(diag.KindInclude, kw.Position, "cannot resolve include %q: %v", pathTok.StringValue, err)
		return
	}
	if p.inActiveChain(resolved) {
		p.sink.Errorf(diag.KindInclude, kw.Position, "include cycle detected: %q is already being parsed", resolved)
		return
	}
	content, err := p.provider.ReadFile(resolved)
	if err != nil {
		p.sink.Errorf(diag.KindInclude, kw.Position, "cannot read include %q: %v", resolved, err)
		return
	}

	depth := len(p.stack) + 1
	p.pushFile(resolved, content)
	for {
		p.peek() // lazily pops the included frame (and anything it further included) once exhausted
		if len(p.stack) < depth {
			break
		}
		p.parseChildItem(parent, project, ancestors)
	}
}
