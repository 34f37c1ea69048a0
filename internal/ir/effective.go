// Package ir holds the small set of derived views the emitters share
// instead of a separate lowering pass (spec.md §4.4): effective
// header/body schemas, effective authenticate clauses, alias lookup, and
// the middleware/DTO option-hash fingerprint.
package ir

import "github.com/ymirscript/ymir/internal/ast"

// EffectiveHeader merges an ancestor chain's header schemas with node's
// own, descendant keys winning, per spec.md §4.4/§8.
func EffectiveHeader(ancestors []*ast.Router, node *ast.OptionMap) *ast.OptionMap {
	return effectiveMap(headerMaps(ancestors), node)
}

// EffectiveBody merges an ancestor chain's body schemas with node's own,
// descendant keys winning.
func EffectiveBody(ancestors []*ast.Router, node *ast.OptionMap) *ast.OptionMap {
	return effectiveMap(bodyMaps(ancestors), node)
}

func headerMaps(ancestors []*ast.Router) []*ast.OptionMap {
	out := make([]*ast.OptionMap, len(ancestors))
	for i, r := range ancestors {
		out[i] = r.Header
	}
	return out
}

func bodyMaps(ancestors []*ast.Router) []*ast.OptionMap {
	out := make([]*ast.OptionMap, len(ancestors))
	for i, r := range ancestors {
		out[i] = r.Body
	}
	return out
}

// effectiveMap folds ancestors (outermost first) then node into a single
// OptionMap via repeated ast.Merge, each step's keys winning over the
// previous.
func effectiveMap(ancestors []*ast.OptionMap, node *ast.OptionMap) *ast.OptionMap {
	acc := ast.NewOptionMap()
	for _, m := range ancestors {
		acc = ast.Merge(acc, m)
	}
	return ast.Merge(acc, node)
}

// EffectiveAuthenticate resolves a route/router's effective authenticate
// clause: its own explicit clause, else the nearest ancestor router's
// clause, else the project's default auth block (if any) synthesized as
// an implicit clause (spec.md §4.4).
func EffectiveAuthenticate(ancestors []*ast.Router, own *ast.AuthenticateClause, project *ast.Project) *ast.AuthenticateClause {
	if own != nil {
		return own
	}
	for i := len(ancestors) - 1; i >= 0; i-- {
		if ancestors[i].Authenticate != nil {
			return ancestors[i].Authenticate
		}
	}
	if project != nil && project.AuthBlocks != nil {
		if def, ok := project.AuthBlocks.Default(); ok {
			return &ast.AuthenticateClause{BlockIdentity: def.Identity()}
		}
	}
	return nil
}

// ResolveAuthBlock looks up the AuthBlock a clause refers to. An empty
// BlockIdentity is only valid when the project has exactly one auth
// block — the parser enforces this at parse time (spec.md §4.2), but
// emitters call through this helper too so they never need to re-derive
// the rule.
func ResolveAuthBlock(clause *ast.AuthenticateClause, project *ast.Project) (*ast.AuthBlock, bool) {
	if clause == nil || project == nil || project.AuthBlocks == nil {
		return nil, false
	}
	if clause.BlockIdentity != "" {
		return project.AuthBlocks.Get(clause.BlockIdentity)
	}
	if project.AuthBlocks.Len() == 1 {
		all := project.AuthBlocks.All()
		return all[0], true
	}
	return nil, false
}
