// Package emitfrontend renders an ast.Project into a small static-HTML
// frontend (spec.md §4.7): a shared stylesheet, a REST client stub that
// attaches the stored bearer token, a form page per POST/PATCH route, a
// list/table/detail page per GET route carrying a render block, and
// login/logout pages when the project defines a Bearer/Full auth block.
package emitfrontend

import (
	"fmt"
	"strings"

	"github.com/ymirscript/ymir/internal/ast"
	"github.com/ymirscript/ymir/internal/ir"
)

// File is one rendered frontend asset: its relative output path and text.
type File struct {
	Path string
	Text string
}

// Emit renders project's routers/routes/render blocks into the frontend's
// file set.
func Emit(project *ast.Project) []File {
	e := &emitter{project: project}
	e.writeStylesheet()
	e.writeClient()
	e.walkRouters(&project.Router, nil, nil)
	if blk, ok := e.bearerFullBlock(); ok {
		e.writeLoginPage(blk)
		e.writeLogoutPage(blk)
	}
	return e.files
}

type emitter struct {
	project *ast.Project
	files   []File
}

func (e *emitter) bearerFullBlock() (*ast.AuthBlock, bool) {
	for _, blk := range e.project.AuthBlocks.All() {
		if blk.Type == ast.AuthBearer && blk.BearerMode == ast.BearerFull {
			return blk, true
		}
	}
	return nil, false
}

// ---- stylesheet --------------------------------------------------------------

func (e *emitter) writeStylesheet() {
	e.files = append(e.files, File{Path: "style.css", Text: `/* Code generated by ymir. DO NOT EDIT. */
body {
	font-family: system-ui, sans-serif;
	margin: 2rem auto;
	max-width: 960px;
	color: #1a1a1a;
}

h1 {
	font-size: 1.4rem;
	margin-bottom: 1rem;
}

form fieldset {
	border: 1px solid #ccc;
	border-radius: 4px;
	margin-bottom: 1rem;
}

form label {
	display: block;
	font-size: 0.85rem;
	margin-top: 0.5rem;
}

form input {
	width: 100%;
	padding: 0.4rem;
	box-sizing: border-box;
}

table {
	border-collapse: collapse;
	width: 100%;
}

table th, table td {
	border: 1px solid #ddd;
	padding: 0.4rem 0.6rem;
	text-align: left;
}

dl {
	display: grid;
	grid-template-columns: max-content 1fr;
	gap: 0.3rem 1rem;
}

dt {
	font-weight: 600;
}

button {
	cursor: pointer;
}
`})
}

// ---- REST client --------------------------------------------------------------

const clientRuntime = `	function getToken() {
		return window.localStorage.getItem('ymir_token');
	}

	function setToken(token) {
		if (token) {
			window.localStorage.setItem('ymir_token', token);
		} else {
			window.localStorage.removeItem('ymir_token');
		}
	}

	async function request(method, path, opts) {
		opts = opts || {};
		const headers = Object.assign({ 'Content-Type': 'application/json' }, opts.headers || {});
		const token = getToken();
		if (token) {
			headers['Authorization'] = 'Bearer ' + token;
		}
		const res = await fetch(path, {
			method: method,
			headers: headers,
			body: opts.body !== undefined ? JSON.stringify(opts.body) : undefined,
		});
		if (!res.ok) {
			throw new Error('request to ' + path + ' failed with status ' + res.status);
		}
		const text = await res.text();
		return text ? JSON.parse(text) : null;
	}

`

type routeInfo struct {
	Route    *ast.Route
	FullPath string
}

func (e *emitter) collectRoutes(router *ast.Router, ancestors []*ast.Router) []routeInfo {
	var out []routeInfo
	full := ir.RouterFullPath(ancestors, router)
	for _, route := range router.Routes {
		out = append(out, routeInfo{Route: route, FullPath: ir.JoinPath(full, route.Path.Raw)})
	}
	newAncestors := append(append([]*ast.Router{}, ancestors...), router)
	for _, child := range router.Routers {
		out = append(out, e.collectRoutes(child, newAncestors)...)
	}
	return out
}

func (e *emitter) writeClient() {
	var b strings.Builder
	b.WriteString("// Code generated by ymir. DO NOT EDIT.\n")
	b.WriteString("(function (global) {\n\t'use strict';\n\n")
	b.WriteString(clientRuntime)

	routes := e.collectRoutes(&e.project.Router, nil)
	exported := []string{"request", "getToken", "setToken"}
	for _, ri := range routes {
		fn := clientFnName(ri.Route.Method, ri.FullPath)
		exported = append(exported, fn)
		b.WriteString(fmt.Sprintf("\tfunction %s(params, body) {\n\t\treturn request(%q, %s, { body: body });\n\t}\n\n",
			fn, ri.Route.Method.String(), clientPathExpr(ri.FullPath)))
	}

	b.WriteString("\tglobal.ymirClient = { " + strings.Join(exported, ", ") + " };\n")
	b.WriteString("})(window);\n")
	e.files = append(e.files, File{Path: "client.js", Text: b.String()})
}

// clientFnName derives a stable function name from a route's method and
// fully-qualified path, independent of the router chain it was reached
// through — needed because "integrate" (spec.md §4.7) resolves sibling
// routes by alias, not by chain.
func clientFnName(method ast.Method, fullPath string) string {
	return strings.ToLower(method.String()) + ast.PascalCase(ast.AlphanumericOnly(fullPath))
}

// clientPathExpr renders fullPath as a JS string literal, or a template
// literal substituting "${params.name}" for each ":name" segment.
func clientPathExpr(fullPath string) string {
	if !strings.Contains(fullPath, ":") {
		return fmt.Sprintf("%q", fullPath)
	}
	var b strings.Builder
	b.WriteString("`")
	for _, seg := range strings.Split(fullPath, "/") {
		if seg == "" {
			continue
		}
		b.WriteString("/")
		if strings.HasPrefix(seg, ":") {
			b.WriteString("${params." + seg[1:] + "}")
		} else {
			b.WriteString(seg)
		}
	}
	b.WriteString("`")
	return b.String()
}

func pathVariables(raw string) []string {
	var out []string
	for _, seg := range strings.Split(raw, "/") {
		if strings.HasPrefix(seg, ":") {
			out = append(out, seg[1:])
		}
	}
	return out
}

// ---- page walk ----------------------------------------------------------------

func (e *emitter) walkRouters(router *ast.Router, ancestors []*ast.Router, chain []string) {
	full := ir.RouterFullPath(ancestors, router)
	for _, route := range router.Routes {
		e.writeRoutePage(route, ancestors, router, chain, ir.JoinPath(full, route.Path.Raw))
	}
	newAncestors := append(append([]*ast.Router{}, ancestors...), router)
	for _, child := range router.Routers {
		childChain := append(append([]string{}, chain...), ast.PascalCase(child.Path.Name()))
		e.walkRouters(child, newAncestors, childChain)
	}
}

func (e *emitter) writeRoutePage(route *ast.Route, ancestors []*ast.Router, router *ast.Router, chain []string, fullPath string) {
	switch {
	case route.Method == ast.POST || route.Method == ast.PATCH:
		e.writeFormPage(route, ancestors, router, chain, fullPath)
	case route.Method == ast.GET && route.Render != nil:
		switch route.Render.Kind {
		case ast.RenderDetail:
			e.writeDetailPage(route, chain, fullPath)
		default:
			e.writeCollectionPage(route, chain, fullPath)
		}
	}
}

func pageTitle(route *ast.Route, fullPath string) string {
	if route.Description != "" {
		return route.Description
	}
	return route.Method.String() + " " + fullPath
}

func htmlHead(title string) string {
	return fmt.Sprintf(`<!-- Code generated by ymir. DO NOT EDIT. -->
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8">
	<title>%s</title>
	<link rel="stylesheet" href="style.css">
	<script src="client.js" defer></script>
</head>
<body>
	<h1>%s</h1>
`, title, title)
}

const htmlFoot = "</body>\n</html>\n"

// ---- form pages (POST/PATCH) --------------------------------------------------

type formField struct {
	Path  string // dotted field path, e.g. "address.city"
	Type  string // type keyword, e.g. "int", "string"
	Group string // dotted prefix of the enclosing nested object, "" at top level
}

func flattenFields(prefix string, m *ast.OptionMap) []formField {
	var out []formField
	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if v.Kind == ast.OVMap {
			out = append(out, flattenFields(full, v.Map)...)
			continue
		}
		typeName, _ := v.AsString()
		out = append(out, formField{Path: full, Type: typeName, Group: prefix})
	}
	return out
}

func htmlInputType(typeName string) string {
	switch typeName {
	case "int", "float":
		return "number"
	case "bool", "boolean":
		return "checkbox"
	case "date":
		return "date"
	case "datetime":
		return "datetime-local"
	case "time":
		return "time"
	default:
		return "text"
	}
}

func (e *emitter) writeFormPage(route *ast.Route, ancestors []*ast.Router, router *ast.Router, chain []string, fullPath string) {
	base := strings.ToLower(route.Method.String()) + strings.Join(chain, "") + ast.PascalCase(route.Path.Name())
	title := pageTitle(route, fullPath)

	body := ir.EffectiveBody(ancestors, router.Body)
	body = ast.Merge(body, route.Body)
	fields := flattenFields("", body)
	vars := pathVariables(route.Path.Raw)

	var b strings.Builder
	b.WriteString(htmlHead(title))
	b.WriteString(fmt.Sprintf("\t<form id=\"%sForm\">\n", base))

	for _, v := range vars {
		b.WriteString(fmt.Sprintf("\t\t<label for=\"__path_%s\">%s</label>\n", v, v))
		b.WriteString(fmt.Sprintf("\t\t<input type=\"text\" id=\"__path_%s\" name=\"__path_%s\" required>\n", v, v))
	}

	currentGroup := ""
	groupOpen := false
	for _, f := range fields {
		if f.Group != currentGroup {
			if groupOpen {
				b.WriteString("\t\t</fieldset>\n")
			}
			groupOpen = f.Group != ""
			if groupOpen {
				b.WriteString(fmt.Sprintf("\t\t<fieldset>\n\t\t\t<legend>%s</legend>\n", f.Group))
			}
			currentGroup = f.Group
		}
		indent := "\t\t"
		if groupOpen {
			indent = "\t\t\t"
		}
		b.WriteString(fmt.Sprintf("%s<label for=\"%s\">%s</label>\n", indent, f.Path, f.Path))
		b.WriteString(fmt.Sprintf("%s<input type=\"%s\" id=\"%s\" name=\"%s\">\n", indent, htmlInputType(f.Type), f.Path, f.Path))
	}
	if groupOpen {
		b.WriteString("\t\t</fieldset>\n")
	}
	b.WriteString("\t\t<button type=\"submit\">Submit</button>\n\t</form>\n")
	b.WriteString(fmt.Sprintf("\t<pre id=\"%sResult\"></pre>\n", base))

	b.WriteString("\t<script>\n")
	b.WriteString(fmt.Sprintf("\t\tconst %sPathVars = %s;\n", base, jsStringArray(vars)))
	b.WriteString(fmt.Sprintf("\t\tdocument.getElementById(%q).addEventListener('submit', async function (ev) {\n", base+"Form"))
	b.WriteString("\t\t\tev.preventDefault();\n")
	b.WriteString("\t\t\tconst data = new FormData(ev.target);\n")
	b.WriteString("\t\t\tconst body = {};\n")
	b.WriteString("\t\t\tconst params = {};\n")
	b.WriteString("\t\t\tfor (const [key, value] of data.entries()) {\n")
	b.WriteString(fmt.Sprintf("\t\t\t\tif (%sPathVars.includes(key.replace('__path_', ''))) {\n", base))
	b.WriteString("\t\t\t\t\tparams[key.replace('__path_', '')] = value;\n")
	b.WriteString("\t\t\t\t} else {\n\t\t\t\t\tbody[key] = value;\n\t\t\t\t}\n\t\t\t}\n")
	fn := clientFnName(route.Method, fullPath)
	b.WriteString("\t\t\ttry {\n")
	b.WriteString(fmt.Sprintf("\t\t\t\tconst result = await ymirClient.%s(params, body);\n", fn))
	b.WriteString(fmt.Sprintf("\t\t\t\tdocument.getElementById(%q).textContent = JSON.stringify(result, null, 2);\n", base+"Result"))
	b.WriteString("\t\t\t} catch (err) {\n\t\t\t\tconsole.error(err);\n\t\t\t\tdocument.getElementById(" +
		fmt.Sprintf("%q", base+"Result") + ").textContent = String(err);\n\t\t\t}\n")
	b.WriteString("\t\t});\n\t</script>\n")
	b.WriteString(htmlFoot)

	e.files = append(e.files, File{Path: base + ".html", Text: b.String()})
}

func jsStringArray(items []string) string {
	parts := make([]string, len(items))
	for i, s := range items {
		parts[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ---- collection pages (render list / render table) -----------------------------

type collectionShape struct {
	ItemsExpr string   // JS expression that extracts the array from the parsed response
	Columns   []string // known field names; empty means render rows dynamically via Object.keys
}

// firstArrayResponseKey returns the first response key whose declared type
// ends in "[]" (e.g. "items: \"Product[]\"").
func firstArrayResponseKey(m *ast.OptionMap) string {
	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		if s, ok := v.AsString(); ok && strings.HasSuffix(s, "[]") {
			return key
		}
	}
	return ""
}

// collectionShapeFor decides how a list/table page extracts and (if
// possible) labels its rows. A plural response (spec.md §9 "isResponsePlural")
// describes the item shape directly in route.Response; otherwise only an
// opaque array-typed field is known and rows render dynamically at
// runtime (SPEC_FULL.md §D.2).
func collectionShapeFor(route *ast.Route) collectionShape {
	if route.IsResponsePlural {
		return collectionShape{ItemsExpr: "result", Columns: route.Response.Keys()}
	}
	if key := firstArrayResponseKey(route.Response); key != "" {
		return collectionShape{ItemsExpr: fmt.Sprintf("result[%q]", key)}
	}
	return collectionShape{ItemsExpr: "result"}
}

type integratedAction struct {
	Alias    string
	FullPath string
	Method   ast.Method
}

// integrateActions resolves the "integrate" render option (a list of
// sibling-route aliases) into per-row actions, e.g. a table integrating a
// delete/patch/get alias into per-row buttons (spec.md §4.7).
func (e *emitter) integrateActions(opts *ast.OptionMap) []integratedAction {
	if opts == nil {
		return nil
	}
	v, ok := opts.Get("integrate")
	if !ok || v.Kind != ast.OVList {
		return nil
	}
	var out []integratedAction
	for _, item := range v.List {
		alias, ok := item.AsString()
		if !ok {
			continue
		}
		match, found := ir.FindByAlias(&e.project.Router, alias)
		if !found {
			continue
		}
		out = append(out, integratedAction{
			Alias:    alias,
			FullPath: ir.JoinPath(match.ParentPath, match.Route.Path.Raw),
			Method:   match.Route.Method,
		})
	}
	return out
}

func (e *emitter) writeCollectionPage(route *ast.Route, chain []string, fullPath string) {
	base := strings.ToLower(route.Method.String()) + strings.Join(chain, "") + ast.PascalCase(route.Path.Name())
	title := pageTitle(route, fullPath)
	shape := collectionShapeFor(route)
	actions := e.integrateActions(route.Render.Options)
	asTable := route.Render.Kind == ast.RenderTable

	var b strings.Builder
	b.WriteString(htmlHead(title))
	if asTable {
		b.WriteString(fmt.Sprintf("\t<table id=\"%sTable\">\n\t\t<thead><tr></tr></thead>\n\t\t<tbody></tbody>\n\t</table>\n", base))
	} else {
		b.WriteString(fmt.Sprintf("\t<ul id=\"%sList\"></ul>\n", base))
	}

	b.WriteString("\t<script>\n")
	b.WriteString(fmt.Sprintf("\t\tconst %sColumns = %s;\n", base, jsStringArray(shape.Columns)))
	b.WriteString(fmt.Sprintf("\t\tconst %sActions = %s;\n", base, integrateActionsLiteral(actions)))
	b.WriteString("\t\tfunction columnsFor(item, known) {\n")
	b.WriteString("\t\t\treturn known.length ? known : Object.keys(item);\n\t\t}\n")
	b.WriteString(fmt.Sprintf("\t\tasync function load%s() {\n", base))
	fn := clientFnName(route.Method, fullPath)
	b.WriteString(fmt.Sprintf("\t\t\tconst result = await ymirClient.%s({});\n", fn))
	b.WriteString(fmt.Sprintf("\t\t\tconst items = %s || [];\n", shape.ItemsExpr))
	if asTable {
		b.WriteString(fmt.Sprintf("\t\t\tconst table = document.getElementById(%q);\n", base+"Table"))
		b.WriteString("\t\t\tconst head = table.querySelector('thead tr');\n\t\t\tconst body = table.querySelector('tbody');\n")
		b.WriteString("\t\t\thead.innerHTML = '';\n\t\t\tbody.innerHTML = '';\n")
		b.WriteString(fmt.Sprintf("\t\t\tconst cols = items.length ? columnsFor(items[0], %sColumns) : %sColumns;\n", base, base))
		b.WriteString("\t\t\tcols.forEach(c => { const th = document.createElement('th'); th.textContent = c; head.appendChild(th); });\n")
		b.WriteString(fmt.Sprintf("\t\t\tif (%sActions.length) { const th = document.createElement('th'); th.textContent = 'Actions'; head.appendChild(th); }\n", base))
		b.WriteString("\t\t\titems.forEach(item => {\n\t\t\t\tconst row = document.createElement('tr');\n")
		b.WriteString("\t\t\t\tcols.forEach(c => { const td = document.createElement('td'); td.textContent = item[c]; row.appendChild(td); });\n")
		b.WriteString(fmt.Sprintf("\t\t\t\t%sActions.forEach(a => {\n", base))
		b.WriteString("\t\t\t\t\tconst td = document.createElement('td');\n\t\t\t\t\tconst btn = document.createElement('button');\n")
		b.WriteString("\t\t\t\t\tbtn.textContent = a.alias;\n")
		b.WriteString("\t\t\t\t\tbtn.addEventListener('click', () => ymirClient[a.fn](item).then(load" + base + "));\n")
		b.WriteString("\t\t\t\t\ttd.appendChild(btn); row.appendChild(td);\n\t\t\t\t});\n")
		b.WriteString("\t\t\t\tbody.appendChild(row);\n\t\t\t});\n")
	} else {
		b.WriteString(fmt.Sprintf("\t\t\tconst list = document.getElementById(%q);\n", base+"List"))
		b.WriteString("\t\t\tlist.innerHTML = '';\n")
		b.WriteString("\t\t\titems.forEach(item => {\n\t\t\t\tconst li = document.createElement('li');\n")
		b.WriteString("\t\t\t\tli.textContent = JSON.stringify(item);\n\t\t\t\tlist.appendChild(li);\n\t\t\t});\n")
	}
	b.WriteString("\t\t}\n")
	b.WriteString(fmt.Sprintf("\t\tload%s();\n", base))
	b.WriteString("\t</script>\n")
	b.WriteString(htmlFoot)

	e.files = append(e.files, File{Path: base + ".html", Text: b.String()})
}

// integrateActionsLiteral renders a JS array of { alias, fn } objects, fn
// naming the client function the row button should invoke.
func integrateActionsLiteral(actions []integratedAction) string {
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = fmt.Sprintf("{ alias: %q, fn: %q }", a.Alias, clientFnName(a.Method, a.FullPath))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ---- detail pages (render detail) -----------------------------------------------

func (e *emitter) writeDetailPage(route *ast.Route, chain []string, fullPath string) {
	base := strings.ToLower(route.Method.String()) + strings.Join(chain, "") + ast.PascalCase(route.Path.Name())
	title := pageTitle(route, fullPath)
	vars := pathVariables(route.Path.Raw)
	columns := route.Response.Keys()

	var b strings.Builder
	b.WriteString(htmlHead(title))
	b.WriteString(fmt.Sprintf("\t<dl id=\"%sDetail\"></dl>\n", base))

	b.WriteString("\t<script>\n")
	b.WriteString(fmt.Sprintf("\t\tconst %sColumns = %s;\n", base, jsStringArray(columns)))
	b.WriteString(fmt.Sprintf("\t\tasync function load%s() {\n", base))
	b.WriteString("\t\t\tconst params = {};\n")
	b.WriteString(fmt.Sprintf("\t\t\t%s.forEach(v => { params[v] = new URLSearchParams(window.location.search).get(v); });\n", jsStringArray(vars)))
	fn := clientFnName(route.Method, fullPath)
	b.WriteString(fmt.Sprintf("\t\t\tconst item = await ymirClient.%s(params);\n", fn))
	b.WriteString(fmt.Sprintf("\t\t\tconst dl = document.getElementById(%q);\n", base+"Detail"))
	b.WriteString("\t\t\tdl.innerHTML = '';\n")
	b.WriteString(fmt.Sprintf("\t\t\tconst cols = %sColumns.length ? %sColumns : Object.keys(item);\n", base, base))
	b.WriteString("\t\t\tcols.forEach(c => {\n\t\t\t\tconst dt = document.createElement('dt'); dt.textContent = c;\n")
	b.WriteString("\t\t\t\tconst dd = document.createElement('dd'); dd.textContent = item[c];\n\t\t\t\tdl.appendChild(dt); dl.appendChild(dd);\n\t\t\t});\n")
	b.WriteString("\t\t}\n")
	b.WriteString(fmt.Sprintf("\t\tload%s();\n", base))
	b.WriteString("\t</script>\n")
	b.WriteString(htmlFoot)

	e.files = append(e.files, File{Path: base + ".html", Text: b.String()})
}

// ---- login / logout (Bearer/Full) -----------------------------------------------

func (e *emitter) writeLoginPage(blk *ast.AuthBlock) {
	name := blk.DisplayName()
	loginPath := "/auth/" + strings.ToLower(name) + "/login"

	var b strings.Builder
	b.WriteString(htmlHead("Log in"))
	b.WriteString("\t<form id=\"loginForm\">\n")
	b.WriteString("\t\t<label for=\"username\">Username</label>\n\t\t<input type=\"text\" id=\"username\" name=\"username\">\n")
	b.WriteString("\t\t<label for=\"password\">Password</label>\n\t\t<input type=\"password\" id=\"password\" name=\"password\">\n")
	b.WriteString("\t\t<button type=\"submit\">Log in</button>\n\t</form>\n")
	b.WriteString("\t<pre id=\"loginResult\"></pre>\n")
	b.WriteString("\t<script>\n")
	b.WriteString("\t\tdocument.getElementById('loginForm').addEventListener('submit', async function (ev) {\n")
	b.WriteString("\t\t\tev.preventDefault();\n\t\t\tconst data = new FormData(ev.target);\n")
	b.WriteString(fmt.Sprintf("\t\t\tconst token = await ymirClient.request('POST', %q, { body: {\n", loginPath))
	b.WriteString("\t\t\t\tusername: data.get('username'),\n\t\t\t\tpassword: data.get('password'),\n\t\t\t} });\n")
	b.WriteString("\t\t\tymirClient.setToken(typeof token === 'string' ? token : token.token);\n")
	b.WriteString("\t\t\twindow.location.href = 'index.html';\n\t\t});\n\t</script>\n")
	b.WriteString(htmlFoot)

	e.files = append(e.files, File{Path: "login.html", Text: b.String()})
}

func (e *emitter) writeLogoutPage(blk *ast.AuthBlock) {
	var b strings.Builder
	b.WriteString(htmlHead("Log out"))
	b.WriteString("\t<p>You have been logged out.</p>\n\t<a href=\"login.html\">Log in again</a>\n")
	b.WriteString("\t<script>\n\t\tymirClient.setToken(null);\n\t</script>\n")
	b.WriteString(htmlFoot)

	e.files = append(e.files, File{Path: "logout.html", Text: b.String()})
}
