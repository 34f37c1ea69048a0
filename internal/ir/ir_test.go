package ir_test

import (
	"testing"

	"github.com/ymirscript/ymir/internal/ast"
	"github.com/ymirscript/ymir/internal/ir"
	"github.com/ymirscript/ymir/internal/source"
)

var zeroPos = source.Position{}

func mapWith(entries ...[2]string) *ast.OptionMap {
	m := ast.NewOptionMap()
	for _, e := range entries {
		m.Set(e[0], ast.StringValue(e[1], zeroPos))
	}
	return m
}

func TestEffectiveHeader_MergesAncestorChainDescendantWins(t *testing.T) {
	grandparent := &ast.Router{Header: mapWith([2]string{"version", "v1"}, [2]string{"shared", "gp"})}
	parent := &ast.Router{Header: mapWith([2]string{"shared", "parent"})}
	own := mapWith([2]string{"tenant", "acme"})

	effective := ir.EffectiveHeader([]*ast.Router{grandparent, parent}, own)

	if v, _ := effective.GetString("version"); v != "v1" {
		t.Errorf("want ancestor-only key to survive, got %q", v)
	}
	if v, _ := effective.GetString("shared"); v != "parent" {
		t.Errorf("want nearer ancestor to win over farther ancestor, got %q", v)
	}
	if v, _ := effective.GetString("tenant"); v != "acme" {
		t.Errorf("want node's own key present, got %q", v)
	}
}

func TestEffectiveBody_NilNodeMapIsSafe(t *testing.T) {
	parent := &ast.Router{Body: mapWith([2]string{"name", "string"})}
	effective := ir.EffectiveBody([]*ast.Router{parent}, nil)
	if v, _ := effective.GetString("name"); v != "string" {
		t.Fatalf("want ancestor body key preserved when node has no body of its own, got %q", v)
	}
}

func TestEffectiveAuthenticate_FallsBackToNearestAncestorThenDefault(t *testing.T) {
	blocks := ast.NewAuthBlockSet()
	def := &ast.AuthBlock{Type: ast.AuthAPIKey, Alias: "apiKey", DefaultAccess: true}
	blocks.Add(def)
	project := &ast.Project{AuthBlocks: blocks}

	// No explicit clause anywhere: falls back to the project default.
	if got := ir.EffectiveAuthenticate(nil, nil, project); got == nil || got.BlockIdentity != "apiKey" {
		t.Fatalf("want fallback to project default auth block, got %+v", got)
	}

	// An ancestor router's clause wins over the project default.
	ancestor := &ast.Router{Authenticate: &ast.AuthenticateClause{BlockIdentity: "bearer"}}
	if got := ir.EffectiveAuthenticate([]*ast.Router{ancestor}, nil, project); got == nil || got.BlockIdentity != "bearer" {
		t.Fatalf("want ancestor clause to win, got %+v", got)
	}

	// The route's own clause wins over everything.
	own := &ast.AuthenticateClause{BlockIdentity: "own"}
	if got := ir.EffectiveAuthenticate([]*ast.Router{ancestor}, own, project); got != own {
		t.Fatalf("want the route's own clause to win outright, got %+v", got)
	}
}

func TestResolveAuthBlock_EmptyIdentityRequiresExactlyOneBlock(t *testing.T) {
	blocks := ast.NewAuthBlockSet()
	only := &ast.AuthBlock{Type: ast.AuthBearer, Alias: "bearer"}
	blocks.Add(only)
	project := &ast.Project{AuthBlocks: blocks}

	blk, ok := ir.ResolveAuthBlock(&ast.AuthenticateClause{}, project)
	if !ok || blk != only {
		t.Fatalf("want the sole auth block resolved for an empty identity, got %+v, %v", blk, ok)
	}

	blocks.Add(&ast.AuthBlock{Type: ast.AuthAPIKey, Alias: "apiKey"})
	_, ok = ir.ResolveAuthBlock(&ast.AuthenticateClause{}, project)
	if ok {
		t.Fatalf("want no resolution for an empty identity when multiple blocks exist")
	}
}

func TestJoinPath_CollapsesDoubleSlashes(t *testing.T) {
	cases := []struct{ a, b, want string }{
		{"/api", "/users", "/api/users"},
		{"/api/", "/users", "/api/users"},
		{"", "/users", "/users"},
		{"/api", "", "/api"},
		{"", "", "/"},
	}
	for _, c := range cases {
		if got := ir.JoinPath(c.a, c.b); got != c.want {
			t.Errorf("JoinPath(%q, %q): want %q, got %q", c.a, c.b, c.want, got)
		}
	}
}

func TestFindByAlias_ReturnsFullyQualifiedParentPath(t *testing.T) {
	target := &ast.Route{Path: &ast.Path{Raw: "/:id", Alias: "deleteProduct"}}
	products := &ast.Router{Path: &ast.Path{Raw: "/products"}, Routes: []*ast.Route{target}}
	api := &ast.Router{Path: &ast.Path{Raw: "/api"}, Routers: []*ast.Router{products}}
	root := &ast.Router{Routers: []*ast.Router{api}}

	match, ok := ir.FindByAlias(root, "deleteProduct")
	if !ok {
		t.Fatalf("expected to find the aliased route")
	}
	if match.Route != target {
		t.Errorf("want the matched route to be the same pointer")
	}
	if match.ParentPath != "/api/products" {
		t.Errorf("want parent path %q, got %q", "/api/products", match.ParentPath)
	}
}

func TestFindByAlias_MissingAliasReturnsFalse(t *testing.T) {
	root := &ast.Router{}
	if _, ok := ir.FindByAlias(root, "nope"); ok {
		t.Fatalf("expected no match for an alias that does not exist")
	}
}

func TestOptionHash_StableUnderKeyReordering(t *testing.T) {
	a := mapWith([2]string{"name", "string"}, [2]string{"age", "int"})
	b := mapWith([2]string{"age", "int"}, [2]string{"name", "string"})

	if ir.OptionHash(a) != ir.OptionHash(b) {
		t.Fatalf("want hash to be independent of key insertion order")
	}
}

func TestOptionHash_DiffersOnValueChange(t *testing.T) {
	a := mapWith([2]string{"name", "string"})
	b := mapWith([2]string{"name", "int"})

	if ir.OptionHash(a) == ir.OptionHash(b) {
		t.Fatalf("want different option values to produce different hashes")
	}
}
