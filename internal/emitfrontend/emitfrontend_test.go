package emitfrontend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ymirscript/ymir/internal/diag"
	"github.com/ymirscript/ymir/internal/emitfrontend"
	"github.com/ymirscript/ymir/internal/parser"
)

func findFile(t *testing.T, files []emitfrontend.File, path string) emitfrontend.File {
	t.Helper()
	for _, f := range files {
		if f.Path == path {
			return f
		}
	}
	t.Fatalf("no file %q among %d files", path, len(files))
	return emitfrontend.File{}
}

func TestEmit_FormPageForPostRoute(t *testing.T) {
	src := `target Shop;

router /products {
	POST / body(name: "string", price: "float");
}
`
	sink := diag.NewSink()
	project, ok := parser.Parse("main.ymir", src, nil, sink, parser.CancelOnFirstError)
	require.True(t, ok, "unexpected diagnostics: %s", diag.Summary(sink))

	files := emitfrontend.Emit(project)

	page := findFile(t, files, "postProducts.html")
	assert.Contains(t, page.Text, "<form id=\"postProductsForm\">")
	assert.Contains(t, page.Text, `name="name"`)
	assert.Contains(t, page.Text, `type="number"`)

	client := findFile(t, files, "client.js")
	assert.Contains(t, client.Text, "function postProducts(params, body)")
	assert.Contains(t, client.Text, "getToken")
	assert.Contains(t, client.Text, "setToken")

	assert.NotEmpty(t, findFile(t, files, "style.css").Text)
}

func TestEmit_TablePageIntegratesAliasedRoute(t *testing.T) {
	src := `target Shop;

router /products {
	GET /:id as deleteProduct response(ok: "bool");
	GET / response(name: "string", price: "float") render table(integrate: ["deleteProduct"]);
}
`
	sink := diag.NewSink()
	project, ok := parser.Parse("main.ymir", src, nil, sink, parser.CancelOnFirstError)
	require.True(t, ok, "unexpected diagnostics: %s", diag.Summary(sink))

	files := emitfrontend.Emit(project)

	page := findFile(t, files, "getProducts.html")
	assert.Contains(t, page.Text, "<table id=\"getProductsTable\">")
	assert.Contains(t, page.Text, "alias: \"deleteProduct\"")
}

func TestEmit_DetailPageUsesResponseColumns(t *testing.T) {
	src := `target Shop;

router /products {
	GET /:id response(name: "string", price: "float") render detail;
}
`
	sink := diag.NewSink()
	project, ok := parser.Parse("main.ymir", src, nil, sink, parser.CancelOnFirstError)
	require.True(t, ok, "unexpected diagnostics: %s", diag.Summary(sink))

	files := emitfrontend.Emit(project)

	page := findFile(t, files, "getProductsId.html")
	assert.Contains(t, page.Text, "<dl id=\"getProductsIdDetail\">")
	assert.Contains(t, page.Text, `["name", "price"]`)
}

func TestEmit_BearerFullGeneratesLoginAndLogoutPages(t *testing.T) {
	src := `target Shop;

auth Bearer(source: "header", field: "Authorization", mode: "FULL", secret: "dev-secret") as bearer;

GET /secret authenticate bearer response(ok: "bool");
`
	sink := diag.NewSink()
	project, ok := parser.Parse("main.ymir", src, nil, sink, parser.CancelOnFirstError)
	require.True(t, ok, "unexpected diagnostics: %s", diag.Summary(sink))

	files := emitfrontend.Emit(project)

	login := findFile(t, files, "login.html")
	assert.Contains(t, login.Text, "/auth/bearer/login")

	logout := findFile(t, files, "logout.html")
	assert.Contains(t, logout.Text, "setToken(null)")
}
