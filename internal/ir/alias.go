package ir

import (
	"strings"

	"github.com/ymirscript/ymir/internal/ast"
)

// AliasMatch is the result of looking up a route by its path alias: the
// route itself and its fully-qualified parent path (ancestor path
// segments concatenated with "/", collapsed), per spec.md §4.4.
type AliasMatch struct {
	Route      *ast.Route
	ParentPath string
}

// FindByAlias recursively searches router for a route whose Path.Alias
// equals alias, returning its fully-qualified parent path.
func FindByAlias(router *ast.Router, alias string) (AliasMatch, bool) {
	return findByAlias(router, "", alias)
}

func findByAlias(router *ast.Router, prefix, alias string) (AliasMatch, bool) {
	full := JoinPath(prefix, routerPath(router))
	for _, route := range router.Routes {
		if route.Path.Alias == alias {
			return AliasMatch{Route: route, ParentPath: full}, true
		}
	}
	for _, child := range router.Routers {
		if m, ok := findByAlias(child, full, alias); ok {
			return m, true
		}
	}
	return AliasMatch{}, false
}

// JoinPath concatenates two path segments with "/", collapsing any
// resulting "//" down to a single "/" (spec.md §8 round-trip property).
func JoinPath(a, b string) string {
	if a == "" {
		return normalizeSlashes(b)
	}
	if b == "" {
		return normalizeSlashes(a)
	}
	return normalizeSlashes(strings.TrimRight(a, "/") + "/" + strings.TrimLeft(b, "/"))
}

// routerPath returns router's raw path, or "" for the project's root
// router, which carries no Path of its own (spec.md §3's Project
// "extends router" without ever giving that root router a path segment).
func routerPath(router *ast.Router) string {
	if router == nil || router.Path == nil {
		return ""
	}
	return router.Path.Raw
}

func normalizeSlashes(p string) string {
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

// FullPath returns the fully-qualified path of a route given its
// ancestor router chain (outermost first).
func FullPath(ancestors []*ast.Router, route *ast.Route) string {
	full := ""
	for _, r := range ancestors {
		full = JoinPath(full, routerPath(r))
	}
	return JoinPath(full, route.Path.Raw)
}

// RouterFullPath returns the fully-qualified path of a router given its
// ancestor chain (outermost first, not including router itself).
func RouterFullPath(ancestors []*ast.Router, router *ast.Router) string {
	full := ""
	for _, r := range ancestors {
		full = JoinPath(full, routerPath(r))
	}
	return JoinPath(full, routerPath(router))
}
