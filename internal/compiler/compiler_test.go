package compiler_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ymirscript/ymir/internal/compiler"
	"github.com/ymirscript/ymir/internal/config"
	"github.com/ymirscript/ymir/internal/diag"
	"github.com/ymirscript/ymir/internal/parser"
)

func writeEntry(t *testing.T, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, "main.ymr")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestCompile_RunsBothCoreEmitters(t *testing.T) {
	dir := t.TempDir()
	entry := writeEntry(t, dir, `target Shop;

GET /products response(items: "Product[]");
`)

	sink := diag.NewSink()
	artifacts, ok := compiler.Compile(entry, config.Default(), sink, parser.CancelOnFirstError)
	require.True(t, ok, "unexpected diagnostics: %s", diag.Summary(sink))

	assert.Contains(t, artifacts.Server.Text, "class YmirRestBase")
	assert.NotEmpty(t, artifacts.Java)
	assert.Empty(t, artifacts.Frontend, "no render block was declared")
}

func TestCompile_EmitsFrontendWhenRenderBlockPresent(t *testing.T) {
	dir := t.TempDir()
	entry := writeEntry(t, dir, `target Shop;

GET /products response(items: "Product[]") render table;
`)

	sink := diag.NewSink()
	artifacts, ok := compiler.Compile(entry, config.Default(), sink, parser.CancelOnFirstError)
	require.True(t, ok, "unexpected diagnostics: %s", diag.Summary(sink))

	assert.NotEmpty(t, artifacts.Frontend)
}

func TestCompile_AppliesGenerateBearerAuthDefault(t *testing.T) {
	dir := t.TempDir()
	entry := writeEntry(t, dir, `target Shop;

auth Bearer(source: "header", field: "Authorization", secret: "dev-secret") as bearer;

GET /secret authenticate bearer response(ok: "bool");
`)

	cfg := config.Default()
	cfg.GenerateBearerAuth = config.BearerModeFull

	sink := diag.NewSink()
	artifacts, ok := compiler.Compile(entry, cfg, sink, parser.CancelOnFirstError)
	require.True(t, ok, "unexpected diagnostics: %s", diag.Summary(sink))

	assert.Contains(t, artifacts.Server.Text, "jwt.verify(token, 'dev-secret')")
}

func TestCompile_UnreadableEntryFileIsConfigError(t *testing.T) {
	sink := diag.NewSink()
	_, ok := compiler.Compile(filepath.Join(t.TempDir(), "missing.ymr"), config.Default(), sink, parser.CancelOnFirstError)
	require.False(t, ok)

	found := false
	for _, d := range sink.All() {
		if d.Kind == diag.KindConfig {
			found = true
		}
	}
	assert.True(t, found, "expected a ConfigError for the unreadable entry file")
}

func TestWrite_RecreatesOutputDirectory(t *testing.T) {
	dir := t.TempDir()
	entry := writeEntry(t, dir, `target Shop;

GET /products response(items: "Product[]") render table;
`)

	sink := diag.NewSink()
	artifacts, ok := compiler.Compile(entry, config.Default(), sink, parser.CancelOnFirstError)
	require.True(t, ok)

	out := filepath.Join(dir, "build")
	stale := filepath.Join(out, "stale.txt")
	require.NoError(t, os.MkdirAll(out, 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("leftover"), 0o644))

	require.NoError(t, compiler.Write(out, artifacts, ""))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "expected a fresh build directory with no leftover files")

	_, err = os.Stat(filepath.Join(out, "server.js"))
	assert.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(out, "frontend"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}
