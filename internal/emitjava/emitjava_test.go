package emitjava_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ymirscript/ymir/internal/config"
	"github.com/ymirscript/ymir/internal/diag"
	"github.com/ymirscript/ymir/internal/emitjava"
	"github.com/ymirscript/ymir/internal/parser"
)

func findFile(t *testing.T, files []emitjava.File, suffix string) emitjava.File {
	t.Helper()
	for _, f := range files {
		if len(f.Path) >= len(suffix) && f.Path[len(f.Path)-len(suffix):] == suffix {
			return f
		}
	}
	t.Fatalf("no file with suffix %q among %d files", suffix, len(files))
	return emitjava.File{}
}

func TestEmit_RouterProducesControllerAndHandler(t *testing.T) {
	src := `target Shop;

router /api {
	router /users {
		GET /:id response(name: "string");
		POST / body(name: "string", age: "int");
	}
}
`
	sink := diag.NewSink()
	project, ok := parser.Parse("main.ymir", src, nil, sink, parser.CancelOnFirstError)
	require.True(t, ok, "unexpected diagnostics: %s", diag.Summary(sink))

	files := emitjava.Emit(project, config.Default().Target.Packages, false)

	ctrl := findFile(t, files, "UsersController.java")
	assert.Contains(t, ctrl.Text, "@RestController")
	assert.Contains(t, ctrl.Text, `@RequestMapping("/api/users")`)
	assert.Contains(t, ctrl.Text, `@PathVariable("id")`)

	iface := findFile(t, files, "UsersControllerHandler.java")
	assert.Contains(t, iface.Text, "public interface UsersControllerHandler")

	var dtoFound bool
	for _, f := range files {
		if contains(f.Text, "long age;") {
			dtoFound = true
		}
	}
	assert.True(t, dtoFound, "expected a DTO with a 'long age;' field")
}

func TestEmit_AuthBlockProducesAuthenticatorAndController(t *testing.T) {
	src := `target Shop;

auth Bearer(source: "header", field: "Authorization", mode: "FULL", secret: "dev-secret") as bearer;

GET /secret authenticate bearer response(ok: "bool");
`
	sink := diag.NewSink()
	project, ok := parser.Parse("main.ymir", src, nil, sink, parser.CancelOnFirstError)
	require.True(t, ok, "unexpected diagnostics: %s", diag.Summary(sink))

	files := emitjava.Emit(project, config.Default().Target.Packages, false)

	authenticator := findFile(t, files, "BearerAuthenticator.java")
	assert.Contains(t, authenticator.Text, "public interface BearerAuthenticator")
	assert.Contains(t, authenticator.Text, "validateJwtPayloadForBearer")

	util := findFile(t, files, "BearerAuthUtil.java")
	assert.Contains(t, util.Text, `"dev-secret"`)

	authCtrl := findFile(t, files, "BearerAuthController.java")
	assert.Contains(t, authCtrl.Text, "@RestController")
}

func TestEmit_CorsMiddlewareProducesConfig(t *testing.T) {
	src := `target Shop;

use cors(origin: "https://shop.example");

GET /ping response(ok: "bool");
`
	sink := diag.NewSink()
	project, ok := parser.Parse("main.ymir", src, nil, sink, parser.CancelOnFirstError)
	require.True(t, ok, "unexpected diagnostics: %s", diag.Summary(sink))

	files := emitjava.Emit(project, config.Default().Target.Packages, true)

	cors := findFile(t, files, "CorsConfigurationMVC.java")
	assert.Contains(t, cors.Text, "https://shop.example")

	sec := findFile(t, files, "CorsConfiguration.java")
	assert.Contains(t, sec.Text, "SecurityFilterChain")
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
