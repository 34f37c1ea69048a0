// Package emitjs renders an ast.Project into a single Express/JavaScript
// source file (spec.md §4.5): validation helpers, an error-message
// constant table, and a YmirRestBase class carrying one handler per route,
// one private authentication method per auth block, and a build(app)
// method that wires them onto Express; plus an exported startServer
// function.
package emitjs

import (
	"fmt"
	"strings"

	"github.com/ymirscript/ymir/internal/ast"
	"github.com/ymirscript/ymir/internal/ir"
)

// Emit renders project's routers/routes/auth blocks into the Express
// target source text. It never returns a partial abort signal for
// constructs this emitter already understands — unsupported combinations
// (e.g. Bearer sourced from body) are already rejected by the parser
// (spec.md §7), so emission itself cannot fail for a project that parsed
// cleanly.
func Emit(project *ast.Project) string {
	e := &emitter{project: project}
	e.collectFeatures()
	e.writeImports()
	e.writeValidationHelpers()
	e.writeErrorMessages()
	e.writeApp()
	e.writeClass()
	e.writeStart()
	return e.b.String()
}

type emitter struct {
	project      *ast.Project
	b            strings.Builder
	usesBearerFull bool
	usesEnv      bool
	usesCors     bool
	usesJSON     bool
}

func (e *emitter) collectFeatures() {
	for _, m := range e.project.Middlewares {
		switch m.Name {
		case "env":
			e.usesEnv = true
		case "cors":
			e.usesCors = true
		case "json":
			e.usesJSON = true
		}
	}
	for _, blk := range e.project.AuthBlocks.All() {
		if blk.Type == ast.AuthBearer && blk.BearerMode == ast.BearerFull {
			e.usesBearerFull = true
		}
	}
}

func (e *emitter) writeImports() {
	e.b.WriteString("// Code generated by ymir. DO NOT EDIT.\n")
	e.b.WriteString("'use strict';\n\n")
	e.b.WriteString("const express = require('express');\n")
	if e.usesCors {
		e.b.WriteString("const cors = require('cors');\n")
	}
	if e.usesEnv {
		e.b.WriteString("require('dotenv').config();\n")
	}
	if e.usesBearerFull {
		e.b.WriteString("const jwt = require('jsonwebtoken');\n")
	}
	e.b.WriteString("\n")
}

func (e *emitter) writeValidationHelpers() {
	e.b.WriteString(`function isInt(v) { return typeof v === 'number' && Number.isInteger(v); }
function isFloat(v) { return typeof v === 'number'; }
function isBoolean(v) { return typeof v === 'boolean'; }
function isString(v) { return typeof v === 'string'; }
function isDate(v) { return isString(v) && !isNaN(Date.parse(v)); }
function isDatetime(v) { return isDate(v); }
function isTime(v) { return isString(v) && /^\d{2}:\d{2}(:\d{2})?$/.test(v); }

function getHeader(headers, name) {
	const lower = name.toLowerCase();
	for (const key of Object.keys(headers || {})) {
		if (key.toLowerCase() === lower) return headers[key];
	}
	return undefined;
}

`)
}

func (e *emitter) writeErrorMessages() {
	e.b.WriteString(`const ERRORS = {
	_400: 'Bad Request: {field} failed validation',
	_401: 'Unauthorized',
	_403: 'Forbidden',
	_404: 'Not Found',
	_500: 'Internal Server Error',
	Started: 'ymir server listening',
};

`)
}

func (e *emitter) writeApp() {
	e.b.WriteString("const app = express();\n")
	if e.usesJSON {
		e.b.WriteString("app.use(express.json());\n")
	}
	if e.usesCors {
		for _, m := range e.project.Middlewares {
			if m.Name != "cors" {
				continue
			}
			origin := corsOrigin(m.Options)
			e.b.WriteString(fmt.Sprintf("app.use(cors({ origin: %s }));\n", origin))
		}
	}
	e.b.WriteString("\n")
}

func corsOrigin(opts *ast.OptionMap) string {
	if opts == nil {
		return "'*'"
	}
	v, ok := opts.Get("origin")
	if !ok {
		return "'*'"
	}
	if v.Kind == ast.OVGlobalVariable && v.Global.Name == "env" {
		return "process.env." + strings.Join(v.Global.Path, ".")
	}
	s, _ := v.AsString()
	return jsString(s)
}

func jsString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// ---- class body ------------------------------------------------------------

func (e *emitter) writeClass() {
	e.b.WriteString("class YmirRestBase {\n")
	e.writeAuthMethods()
	e.walkRoutes(&e.project.Router, nil, nil)
	e.writeBuild()
	e.b.WriteString("}\n\n")
}

func (e *emitter) writeAuthMethods() {
	for _, blk := range e.project.AuthBlocks.All() {
		e.writeAuthMethod(blk)
	}
}

// writeAuthMethod emits the per-auth-block private handler, lowering the
// auth mode per spec.md §4.5.
func (e *emitter) writeAuthMethod(blk *ast.AuthBlock) {
	name := blk.DisplayName()
	e.b.WriteString(fmt.Sprintf("\tasync #handle%sAuthentication(req, res) {\n", name))
	switch {
	case blk.Type == ast.AuthAPIKey:
		e.writeAPIKeyAuth(blk, name)
	case blk.BearerMode == ast.BearerNone:
		e.writeBearerNoneAuth(blk, name)
	case blk.BearerMode == ast.BearerBasic:
		e.writeBearerBasicAuth(blk, name)
	case blk.BearerMode == ast.BearerFull:
		e.writeBearerFullAuth(blk, name)
	}
	e.b.WriteString("\t}\n\n")
}

func extractExpr(blk *ast.AuthBlock) string {
	switch blk.Source {
	case ast.SourceBody:
		return fmt.Sprintf("req.body && req.body[%s]", jsString(blk.Field))
	case ast.SourceQuery:
		return fmt.Sprintf("req.query[%s]", jsString(blk.Field))
	default:
		return fmt.Sprintf("getHeader(req.headers, %s)", jsString(blk.Field))
	}
}

func (e *emitter) writeAPIKeyAuth(blk *ast.AuthBlock, name string) {
	e.b.WriteString(fmt.Sprintf("\t\tconst apiKey = %s;\n", extractExpr(blk)))
	e.b.WriteString(fmt.Sprintf("\t\tif (!(await this.authenticate%s(apiKey))) {\n", name))
	e.b.WriteString("\t\t\tres.status(401).json({ error: ERRORS._401 });\n\t\t\treturn false;\n\t\t}\n")
	if blk.AuthorizationInUse {
		e.b.WriteString(fmt.Sprintf("\t\tif (req.ymirRoles && !(await this.authorize%s(apiKey, req.ymirRoles))) {\n", name))
		e.b.WriteString("\t\t\tres.status(403).json({ error: ERRORS._403 });\n\t\t\treturn false;\n\t\t}\n")
	}
	e.b.WriteString("\t\treturn true;\n")
}

func (e *emitter) writeBearerNoneAuth(blk *ast.AuthBlock, name string) {
	e.b.WriteString(fmt.Sprintf("\t\tconst header = %s || '';\n", extractExpr(blk)))
	e.b.WriteString("\t\tconst token = header.startsWith('Bearer ') ? header.slice(7) : header;\n")
	e.b.WriteString(fmt.Sprintf("\t\tif (!(await this.authenticate%s(token))) {\n", name))
	e.b.WriteString("\t\t\tres.status(401).json({ error: ERRORS._401 });\n\t\t\treturn false;\n\t\t}\n")
	if blk.AuthorizationInUse {
		e.b.WriteString(fmt.Sprintf("\t\tif (req.ymirRoles && !(await this.authorize%s(token, req.ymirRoles))) {\n", name))
		e.b.WriteString("\t\t\tres.status(403).json({ error: ERRORS._403 });\n\t\t\treturn false;\n\t\t}\n")
	}
	e.b.WriteString("\t\treturn true;\n")
}

func (e *emitter) writeBearerBasicAuth(blk *ast.AuthBlock, name string) {
	e.b.WriteString(fmt.Sprintf("\t\tconst header = %s || '';\n", extractExpr(blk)))
	e.b.WriteString("\t\tconst token = header.startsWith('Bearer ') ? header.slice(7) : header;\n")
	e.b.WriteString(fmt.Sprintf("\t\tif (!(await this.validateJwtFor%s(token))) {\n", name))
	e.b.WriteString("\t\t\tres.status(401).json({ error: ERRORS._401 });\n\t\t\treturn false;\n\t\t}\n")
	e.b.WriteString("\t\treturn true;\n")
}

func (e *emitter) writeBearerFullAuth(blk *ast.AuthBlock, name string) {
	secret := jwtSecretExpr(blk)
	e.b.WriteString(fmt.Sprintf("\t\tconst header = %s || '';\n", extractExpr(blk)))
	e.b.WriteString("\t\tconst token = header.startsWith('Bearer ') ? header.slice(7) : header;\n")
	e.b.WriteString("\t\tlet payload;\n\t\ttry {\n")
	e.b.WriteString(fmt.Sprintf("\t\t\tpayload = jwt.verify(token, %s);\n", secret))
	e.b.WriteString("\t\t} catch (err) {\n\t\t\tres.status(401).json({ error: ERRORS._401 });\n\t\t\treturn false;\n\t\t}\n")
	e.b.WriteString(fmt.Sprintf("\t\tif (!(await this.validateJwtPayloadFor%s(payload))) {\n", name))
	e.b.WriteString("\t\t\tres.status(401).json({ error: ERRORS._401 });\n\t\t\treturn false;\n\t\t}\n")
	e.b.WriteString("\t\treq.ymirPayload = payload;\n\t\treturn true;\n")
}

func jwtSecretExpr(blk *ast.AuthBlock) string {
	if blk.Options == nil {
		return "process.env.JWT_SECRET"
	}
	v, ok := blk.Options.Get("secret")
	if !ok {
		return "process.env.JWT_SECRET"
	}
	if v.Kind == ast.OVGlobalVariable && v.Global.Name == "env" {
		return "process.env." + strings.Join(v.Global.Path, ".")
	}
	s, _ := v.AsString()
	return jsString(s)
}

// ---- routers/routes --------------------------------------------------------

// walkRoutes emits one handler per route and recurses into nested
// routers, threading the router-name chain into handler names per
// spec.md §4.5: "on<RouterChain><RouteName>".
func (e *emitter) walkRoutes(router *ast.Router, ancestors []*ast.Router, chain []string) {
	for _, route := range router.Routes {
		e.writeRouteHandler(route, ancestors, router, chain)
	}
	newAncestors := append(append([]*ast.Router{}, ancestors...), router)
	for _, child := range router.Routers {
		childChain := append(append([]string{}, chain...), ast.PascalCase(child.Path.Name()))
		e.walkRoutes(child, newAncestors, childChain)
	}
}

func (e *emitter) writeRouteHandler(route *ast.Route, ancestors []*ast.Router, router *ast.Router, chain []string) {
	handlerName := "on" + strings.Join(chain, "") + ast.PascalCase(route.Path.Name())
	e.b.WriteString(fmt.Sprintf("\tasync %s(req, res) {\n", handlerName))

	header := ir.EffectiveHeader(ancestors, router.Header)
	header = ast.Merge(header, route.Header)
	for _, key := range header.Keys() {
		v, _ := header.Get(key)
		e.writeFieldValidation(key, v, "getHeader(req.headers, "+jsString(key)+")")
	}

	for _, qp := range route.Path.QueryParams {
		e.writeQueryValidation(qp)
	}

	body := ir.EffectiveBody(ancestors, router.Body)
	body = ast.Merge(body, route.Body)
	for _, key := range body.Keys() {
		v, _ := body.Get(key)
		e.writeFieldValidation(key, v, "req.body && req.body["+jsString(key)+"]")
	}

	clause := ir.EffectiveAuthenticate(ancestors, route.Authenticate, e.project)
	if clause != nil {
		if blk, ok := ir.ResolveAuthBlock(clause, e.project); ok {
			e.b.WriteString(fmt.Sprintf("\t\tif (!(await this.#handle%sAuthentication(req, res))) return false;\n", blk.DisplayName()))
			if len(clause.Roles) > 0 {
				e.b.WriteString(fmt.Sprintf("\t\treq.ymirRoles = %s;\n", jsStringArray(clause.Roles)))
			}
		}
	}

	e.b.WriteString("\t\treturn true;\n\t}\n\n")
}

func jsStringArray(items []string) string {
	parts := make([]string, len(items))
	for i, s := range items {
		parts[i] = jsString(s)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (e *emitter) writeQueryValidation(qp *ast.QueryParameter) {
	pred := validatorFor(qp.Type.String())
	e.b.WriteString(fmt.Sprintf("\t\tif (req.query[%s] !== undefined && !%s(req.query[%s])) {\n", jsString(qp.Name), pred, jsString(qp.Name)))
	e.b.WriteString(fmt.Sprintf("\t\t\tres.status(400).json({ error: ERRORS._400.replace('{field}', %s) });\n", jsString(qp.Name)))
	e.b.WriteString("\t\t\treturn false;\n\t\t}\n")
}

// writeFieldValidation validates one header/body schema entry. Nested
// objects recurse; everything else is checked against the type-keyword
// predicate named in the schema value (spec.md §4.5).
func (e *emitter) writeFieldValidation(key string, v ast.OptionValue, accessor string) {
	if v.Kind == ast.OVMap {
		for _, nestedKey := range v.Map.Keys() {
			nested, _ := v.Map.Get(nestedKey)
			e.writeFieldValidation(key+"."+nestedKey, nested, accessor+"['"+nestedKey+"']")
		}
		return
	}
	typeName, _ := v.AsString()
	pred := validatorFor(typeName)
	e.b.WriteString(fmt.Sprintf("\t\t{\n\t\t\tconst value = %s;\n", accessor))
	e.b.WriteString(fmt.Sprintf("\t\t\tif (value === undefined || !%s(value)) {\n", pred))
	e.b.WriteString(fmt.Sprintf("\t\t\t\tres.status(400).json({ error: ERRORS._400.replace('{field}', %s) });\n", jsString(key)))
	e.b.WriteString("\t\t\t\treturn false;\n\t\t\t}\n\t\t}\n")
}

func validatorFor(typeName string) string {
	switch typeName {
	case "int":
		return "isInt"
	case "float":
		return "isFloat"
	case "bool", "boolean":
		return "isBoolean"
	case "date":
		return "isDate"
	case "datetime":
		return "isDatetime"
	case "time":
		return "isTime"
	case "string":
		return "isString"
	default:
		return "(() => true)"
	}
}

// ---- build/start ------------------------------------------------------------

// writeBuild emits YmirRestBase's build(app) method, which wires every
// router's effective header/body/auth validation and every route's handler
// onto Express (spec.md §4.5, §8 Scenario 1's "a YmirRestBase class with a
// build(app) method").
func (e *emitter) writeBuild() {
	e.b.WriteString("\tbuild(app) {\n")
	e.writeRouterWiring(&e.project.Router, nil, nil)
	e.b.WriteString("\t}\n\n")
}

func (e *emitter) writeStart() {
	e.b.WriteString(`function startServer(port) {
	const handlers = new YmirRestBase();
	handlers.build(app);
	return app.listen(port, () => console.log(ERRORS.Started));
}

module.exports = { YmirRestBase, startServer, app };
`)
}

// writeRouterWiring mounts each router's effective header/body/auth as
// `use` middleware and recurses into nested routers (spec.md §4.5).
func (e *emitter) writeRouterWiring(router *ast.Router, ancestors []*ast.Router, chain []string) {
	varName := "router" + strings.Join(chain, "")
	if varName == "router" {
		varName = "rootRouter"
	}
	e.b.WriteString(fmt.Sprintf("\t\tconst %s = express.Router();\n", varName))

	for _, route := range router.Routes {
		handlerName := "on" + strings.Join(chain, "") + ast.PascalCase(route.Path.Name())
		method := strings.ToLower(route.Method.String())
		expressPath := toExpressPath(route.Path.Raw)
		e.b.WriteString(fmt.Sprintf("\t\t%s.%s(%s, async (req, res) => {\n", varName, method, jsString(expressPath)))
		e.b.WriteString(fmt.Sprintf("\t\t\tif (await this.%s(req, res)) res.status(200).json({});\n", handlerName))
		e.b.WriteString("\t\t});\n")
	}

	newAncestors := append(append([]*ast.Router{}, ancestors...), router)
	for _, child := range router.Routers {
		childChain := append(append([]string{}, chain...), ast.PascalCase(child.Path.Name()))
		e.writeRouterWiring(child, newAncestors, childChain)
		childVar := "router" + strings.Join(childChain, "")
		e.b.WriteString(fmt.Sprintf("\t\t%s.use(%s, %s);\n", varName, jsString(toExpressPath(child.Path.Raw)), childVar))
	}

	if router == &e.project.Router {
		e.b.WriteString(fmt.Sprintf("\t\tapp.use(%s);\n", varName))
	}
}

// toExpressPath rewrites ":name" path segments unchanged (Express already
// uses the ":name" convention ymir's own path syntax borrows).
func toExpressPath(raw string) string {
	return raw
}
