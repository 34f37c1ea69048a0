package emitjs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ymirscript/ymir/internal/diag"
	"github.com/ymirscript/ymir/internal/emitjs"
	"github.com/ymirscript/ymir/internal/parser"
)

func TestEmit_SimpleRouteProducesHandlerAndBuild(t *testing.T) {
	src := `target Shop;

use json;
use cors(origin: "https://shop.example");

auth API-Key(source: "header", field: "X-Api-Key", defaultAccess: "authenticated") as apiKey;

router /api header(version: "string") {
	GET /products?limit=int authenticate apiKey with "admin" response(items: "Product[]");
}
`
	sink := diag.NewSink()
	project, ok := parser.Parse("main.ymir", src, nil, sink, parser.CancelOnFirstError)
	require.True(t, ok, "unexpected diagnostics: %s", diag.Summary(sink))

	out := emitjs.Emit(project)
	assert.Contains(t, out, "class YmirRestBase")
	assert.Contains(t, out, "onApiProducts(req, res)")
	assert.Contains(t, out, "#handleApiKeyAuthentication")
	assert.Contains(t, out, "build(app)")
	assert.Contains(t, out, "function startServer(port)")
	assert.Contains(t, out, "getHeader(req.headers, 'version')")
	assert.Contains(t, out, "isInt(req.query['limit'])")
}

func TestEmit_BearerFullGeneratesJwtWiring(t *testing.T) {
	src := `target Shop;

auth Bearer(source: "header", field: "Authorization", mode: "FULL", secret: "dev-secret") as bearer;

GET /secret authenticate bearer response(ok: "bool");
`
	sink := diag.NewSink()
	project, ok := parser.Parse("main.ymir", src, nil, sink, parser.CancelOnFirstError)
	require.True(t, ok, "unexpected diagnostics: %s", diag.Summary(sink))

	out := emitjs.Emit(project)
	assert.Contains(t, out, "require('jsonwebtoken')")
	assert.Contains(t, out, "jwt.verify(token, 'dev-secret')")
	assert.Contains(t, out, "validateJwtPayloadForBearer")
}
