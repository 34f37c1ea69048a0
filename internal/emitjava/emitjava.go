// Package emitjava renders an ast.Project into a Java/Spring Boot
// scaffold (spec.md §4.6): one controller + handler interface per
// router, DTOs for body schemas (deduplicated by option-hash), auth
// interfaces/utilities, and CORS configuration — all rendered through
// internal/javabuilder.
package emitjava

import (
	"fmt"
	"strings"

	"github.com/ymirscript/ymir/internal/ast"
	"github.com/ymirscript/ymir/internal/config"
	"github.com/ymirscript/ymir/internal/ir"
	"github.com/ymirscript/ymir/internal/javabuilder"
)

// File is one rendered Java source file: its relative output path (under
// the configured output directory) and its text.
type File struct {
	Path string
	Text string
}

// Emit renders project into the Java/Spring target's file set, using pkg
// for package names and security for whether a Spring Security filter
// chain is additionally scaffolded (spec.md §4.6, §6).
func Emit(project *ast.Project, pkg config.JavaPackages, useSpringSecurity bool) []File {
	e := &emitter{project: project, pkg: pkg, useSpringSecurity: useSpringSecurity, dtoHashes: map[string]string{}}
	e.walkRouters(&project.Router, nil, nil, "")
	e.writeAuthArtifacts()
	e.writeCORSConfig()
	return e.files
}

type emitter struct {
	project           *ast.Project
	pkg               config.JavaPackages
	useSpringSecurity bool
	files             []File
	dtoHashes         map[string]string // option-hash -> already-emitted DTO class name
}

func javaQueryType(t ast.QueryType) string {
	switch t {
	case ast.QueryInt:
		return "long"
	case ast.QueryFloat:
		return "double"
	case ast.QueryBool:
		return "boolean"
	case ast.QueryDate:
		return "java.time.LocalDate"
	case ast.QueryDatetime:
		return "java.time.LocalDateTime"
	case ast.QueryTime:
		return "java.time.LocalTime"
	case ast.QueryString:
		return "String"
	default:
		return "Object"
	}
}

func javaBodyType(typeName string) string {
	switch typeName {
	case "int":
		return "long"
	case "float":
		return "double"
	case "bool", "boolean":
		return "boolean"
	case "date":
		return "java.time.LocalDate"
	case "datetime":
		return "java.time.LocalDateTime"
	case "time":
		return "java.time.LocalTime"
	case "string":
		return "String"
	default:
		return "Object"
	}
}

func expressPathToSpring(raw string) string {
	var b strings.Builder
	for _, seg := range strings.Split(raw, "/") {
		if seg == "" {
			continue
		}
		b.WriteString("/")
		if strings.HasPrefix(seg, ":") {
			b.WriteString("{" + seg[1:] + "}")
		} else {
			b.WriteString(seg)
		}
	}
	if b.Len() == 0 {
		return "/"
	}
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

// walkRouters emits one controller+interface for each router (including
// the project's own root), recursing into nested routers, composing base
// paths and method-name chains per spec.md §4.6.
func (e *emitter) walkRouters(router *ast.Router, ancestors []*ast.Router, chain []string, basePath string) {
	fullPath := ir.RouterFullPath(ancestors, router)
	if len(router.Routes) > 0 || len(ancestors) == 0 {
		e.writeController(router, ancestors, chain, fullPath)
	}
	newAncestors := append(append([]*ast.Router{}, ancestors...), router)
	for _, child := range router.Routers {
		childChain := append(append([]string{}, chain...), ast.PascalCase(child.Path.Name()))
		e.walkRouters(child, newAncestors, childChain, fullPath)
	}
}

func controllerName(chain []string) string {
	if len(chain) == 0 {
		return "Root"
	}
	return strings.Join(chain, "")
}

func (e *emitter) writeController(router *ast.Router, ancestors []*ast.Router, chain []string, fullPath string) {
	name := controllerName(chain)
	iface := javabuilder.NewInterface(e.pkg.Controller, name+"ControllerHandler")
	ctrl := javabuilder.NewClass(e.pkg.Controller, name+"Controller").
		WithAnnotation("@RestController").
		WithAnnotation(fmt.Sprintf(`@RequestMapping("%s")`, expressPathToSpring(fullPath)))
	ctrl.AddImport("org.springframework.web.bind.annotation.RestController")
	ctrl.AddImport("org.springframework.web.bind.annotation.RequestMapping")
	ctrl.AddImport("org.springframework.beans.factory.annotation.Autowired")

	handlerField := javabuilder.NewField(name+"ControllerHandler", "handler").WithAnnotation("@Autowired")
	ctrl.AddField(handlerField)

	for _, route := range router.Routes {
		e.writeRouteMethod(ctrl, iface, route, ancestors, router, chain)
	}

	e.files = append(e.files, File{
		Path: javaPath(e.pkg.Controller, name+"Controller"),
		Text: ctrl.Render(),
	})
	e.files = append(e.files, File{
		Path: javaPath(e.pkg.Controller, name+"ControllerHandler"),
		Text: iface.Render(),
	})
}

func (e *emitter) writeRouteMethod(ctrl, iface *javabuilder.ClassBuilder, route *ast.Route, ancestors []*ast.Router, router *ast.Router, chain []string) {
	methodName := strings.ToLower(route.Method.String()) + controllerName(chain) + ast.PascalCase(route.Path.Name())
	springPath := expressPathToSpring(route.Path.Raw)
	mappingAnnotation := springMappingAnnotation(route.Method)

	ifaceMethod := javabuilder.NewMethod("Object", methodName)
	ctrlMethod := javabuilder.NewMethod("Object", methodName).
		WithAnnotation(fmt.Sprintf(`%s(path = "%s")`, mappingAnnotation, springPath))
	ctrl.AddImport("org.springframework.web.bind.annotation." + strings.TrimPrefix(mappingAnnotation, "@"))

	for _, v := range pathVariables(route.Path.Raw) {
		ifaceMethod.WithParam("@PathVariable", "String", v)
		ctrlMethod.WithParam(fmt.Sprintf(`@PathVariable("%s")`, v), "String", v)
		ctrl.AddImport("org.springframework.web.bind.annotation.PathVariable")
	}
	for _, qp := range route.Path.QueryParams {
		jt := javaQueryType(qp.Type)
		ifaceMethod.WithParam("@RequestParam", jt, qp.Name)
		ctrlMethod.WithParam(fmt.Sprintf(`@RequestParam("%s")`, qp.Name), jt, qp.Name)
		ctrl.AddImport("org.springframework.web.bind.annotation.RequestParam")
	}

	header := ir.EffectiveHeader(ancestors, router.Header)
	header = ast.Merge(header, route.Header)
	for _, key := range header.Keys() {
		v, _ := header.Get(key)
		typeName, _ := v.AsString()
		jt := javaBodyType(typeName)
		paramName := ast.CamelCase(key)
		ifaceMethod.WithParam("@RequestHeader", jt, paramName)
		ctrlMethod.WithParam(fmt.Sprintf(`@RequestHeader("%s")`, key), jt, paramName)
		ctrl.AddImport("org.springframework.web.bind.annotation.RequestHeader")
	}

	body := ir.EffectiveBody(ancestors, router.Body)
	body = ast.Merge(body, route.Body)
	if body.Len() > 0 {
		dtoName := e.dtoFor(controllerName(chain)+ast.PascalCase(route.Path.Name())+"Request", body)
		ifaceMethod.WithParam("@RequestBody", dtoName, "body")
		ctrlMethod.WithParam("@RequestBody", dtoName, "body")
		ctrl.AddImport("org.springframework.web.bind.annotation.RequestBody")
		ctrl.AddImport(e.pkg.DTO + "." + dtoName)
		iface.AddImport(e.pkg.DTO + "." + dtoName)
	}

	clause := ir.EffectiveAuthenticate(ancestors, route.Authenticate, e.project)
	if clause != nil {
		if blk, ok := ir.ResolveAuthBlock(clause, e.project); ok {
			e.writeAuthGuard(ctrl, ctrlMethod, blk, clause)
		}
	}
	ctrlMethod.WithBodyLine(fmt.Sprintf("return handler.%s(%s);", methodName, paramList(ifaceMethod)))

	iface.AddMethod(ifaceMethod)
	ctrl.AddMethod(ctrlMethod)
}

// writeAuthGuard wires an @Autowired <Name>Authenticator bean into ctrl
// and inserts the credential-extraction/authenticate(/authorize) check at
// the top of ctrlMethod's body, throwing on failure (spec.md §4.6).
func (e *emitter) writeAuthGuard(ctrl *javabuilder.ClassBuilder, ctrlMethod *javabuilder.MethodBuilder, blk *ast.AuthBlock, clause *ast.AuthenticateClause) {
	name := blk.DisplayName()
	fieldName := ast.CamelCase(name) + "Authenticator"
	ctrl.AddField(javabuilder.NewField(name+"Authenticator", fieldName).WithAnnotation("@Autowired"))
	ctrl.AddImport(e.pkg.Auth + "." + name + "Authenticator")

	paramAnnotation, paramType := credentialAccessor(blk)
	ctrlMethod.WithParam(paramAnnotation, paramType, "credential")

	switch {
	case blk.Type == ast.AuthAPIKey:
		ctrlMethod.WithBodyLine(fmt.Sprintf(
			"if (!%s.authenticate%s(credential)) { throw new org.springframework.web.server.ResponseStatusException(org.springframework.http.HttpStatus.UNAUTHORIZED); }",
			fieldName, name))
		if blk.AuthorizationInUse && len(clause.Roles) > 0 {
			ctrlMethod.WithBodyLine(fmt.Sprintf(
				"if (!%s.authorize%s(credential, java.util.List.of(%s))) { throw new org.springframework.web.server.ResponseStatusException(org.springframework.http.HttpStatus.FORBIDDEN); }",
				fieldName, name, javaStringList(clause.Roles)))
		}
	case blk.BearerMode == ast.BearerNone:
		ctrlMethod.WithBodyLine("String token = credential != null && credential.startsWith(\"Bearer \") ? credential.substring(7) : credential;")
		ctrlMethod.WithBodyLine(fmt.Sprintf(
			"if (!%s.authenticate%s(token)) { throw new org.springframework.web.server.ResponseStatusException(org.springframework.http.HttpStatus.UNAUTHORIZED); }",
			fieldName, name))
	case blk.BearerMode == ast.BearerBasic || blk.BearerMode == ast.BearerFull:
		ctrlMethod.WithBodyLine("String token = credential != null && credential.startsWith(\"Bearer \") ? credential.substring(7) : credential;")
		ctrlMethod.WithBodyLine(fmt.Sprintf(
			"if (!%s.validateJwtFor%s(token)) { throw new org.springframework.web.server.ResponseStatusException(org.springframework.http.HttpStatus.UNAUTHORIZED); }",
			fieldName, name))
	}
	ctrl.AddImport("org.springframework.web.server.ResponseStatusException")
}

func javaStringList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}

// credentialAccessor returns the Spring parameter annotation and Java
// type used to bind the auth block's credential out of the incoming
// request.
func credentialAccessor(blk *ast.AuthBlock) (annotation, javaType string) {
	switch blk.Source {
	case ast.SourceQuery:
		return fmt.Sprintf(`@RequestParam("%s")`, blk.Field), "String"
	case ast.SourceBody:
		return "@RequestBody", "String"
	default:
		return fmt.Sprintf(`@RequestHeader("%s")`, blk.Field), "String"
	}
}

func paramList(m *javabuilder.MethodBuilder) string {
	names := make([]string, len(m.Params))
	for i, p := range m.Params {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

func springMappingAnnotation(method ast.Method) string {
	switch method {
	case ast.POST:
		return "@PostMapping"
	case ast.PUT:
		return "@PutMapping"
	case ast.DELETE:
		return "@DeleteMapping"
	case ast.PATCH:
		return "@PatchMapping"
	case ast.HEAD:
		return "@RequestMapping" // no dedicated HeadMapping annotation
	case ast.OPTIONS:
		return "@RequestMapping"
	default:
		return "@GetMapping"
	}
}

// dtoFor emits (or reuses, per option-hash) a DTO class for a body
// schema, recursing into nested objects as inner DTOs (spec.md §4.6).
func (e *emitter) dtoFor(suggestedName string, body *ast.OptionMap) string {
	hash := ir.OptionHash(body)
	if existing, ok := e.dtoHashes[hash]; ok {
		return existing
	}
	name := ast.PascalCase(suggestedName)
	class := javabuilder.NewClass(e.pkg.DTO, name)
	for _, key := range body.Keys() {
		v, _ := body.Get(key)
		fieldName := ast.CamelCase(key)
		if v.Kind == ast.OVMap {
			nestedName := e.dtoFor(name+ast.PascalCase(key), v.Map)
			class.AddField(javabuilder.NewField(nestedName, fieldName))
			continue
		}
		typeName, _ := v.AsString()
		class.AddField(javabuilder.NewField(javaBodyType(typeName), fieldName))
	}
	e.dtoHashes[hash] = name
	e.files = append(e.files, File{Path: javaPath(e.pkg.DTO, name), Text: class.Render()})
	return name
}

// ---- auth ------------------------------------------------------------------

func (e *emitter) writeAuthArtifacts() {
	for _, blk := range e.project.AuthBlocks.All() {
		e.writeAuthenticator(blk)
		if blk.Type == ast.AuthBearer && blk.BearerMode == ast.BearerFull {
			e.writeAuthUtil(blk)
			e.writeAuthController(blk, "POST /login")
		} else if blk.Type == ast.AuthBearer && blk.BearerMode == ast.BearerBasic {
			e.writeAuthController(blk, "POST /login")
		}
	}
}

func (e *emitter) writeAuthenticator(blk *ast.AuthBlock) {
	name := blk.DisplayName()
	iface := javabuilder.NewInterface(e.pkg.Auth, name+"Authenticator")
	switch {
	case blk.Type == ast.AuthAPIKey:
		iface.AddMethod(javabuilder.NewMethod("boolean", "authenticate"+name).WithParam("", "String", "apiKey"))
		if blk.AuthorizationInUse {
			iface.AddMethod(javabuilder.NewMethod("boolean", "authorize"+name).
				WithParam("", "String", "apiKey").
				WithParam("", "java.util.List<String>", "roles"))
		}
	case blk.BearerMode == ast.BearerNone:
		iface.AddMethod(javabuilder.NewMethod("boolean", "authenticate"+name).WithParam("", "String", "jwt"))
	case blk.BearerMode == ast.BearerBasic:
		iface.AddMethod(javabuilder.NewMethod("boolean", "validateJwtFor"+name).WithParam("", "String", "jwt"))
		iface.AddMethod(javabuilder.NewMethod("String", "generateJwtFor"+name).
			WithParam("", "String", "user").WithParam("", "String", "pass"))
	case blk.BearerMode == ast.BearerFull:
		iface.AddMethod(javabuilder.NewMethod("java.util.Map<String,Object>", "getJwtPayloadFor"+name).
			WithParam("", "String", "user").WithParam("", "String", "pass"))
		iface.AddMethod(javabuilder.NewMethod("boolean", "validateJwtPayloadFor"+name).
			WithParam("", "java.util.Map<String,Object>", "payload"))
	}
	e.files = append(e.files, File{Path: javaPath(e.pkg.Auth, name+"Authenticator"), Text: iface.Render()})
}

func (e *emitter) writeAuthUtil(blk *ast.AuthBlock) {
	name := blk.DisplayName()
	class := javabuilder.NewClass(e.pkg.Auth, name+"AuthUtil")
	secret := "System.getenv(\"JWT_SECRET\")"
	if blk.Options != nil {
		if v, ok := blk.Options.Get("secret"); ok {
			if v.Kind == ast.OVGlobalVariable && v.Global.Name == "env" {
				secret = fmt.Sprintf("System.getenv(%q)", strings.Join(v.Global.Path, "."))
			} else if s, ok := v.AsString(); ok {
				secret = fmt.Sprintf("%q", s)
			}
		}
	}
	class.AddField(javabuilder.NewField("String", "SECRET").WithAccess("private static final").WithInitializer(secret))
	class.AddMethod(javabuilder.NewMethod("String", "sign").
		WithParam("", "java.util.Map<String,Object>", "payload").
		WithBodyLine("return io.jsonwebtoken.Jwts.builder().setClaims(payload).signWith(io.jsonwebtoken.security.Keys.hmacShaKeyFor(SECRET.getBytes())).compact();"))
	class.AddMethod(javabuilder.NewMethod("java.util.Map<String,Object>", "verify").
		WithParam("", "String", "token").
		WithBodyLine("return io.jsonwebtoken.Jwts.parserBuilder().setSigningKey(io.jsonwebtoken.security.Keys.hmacShaKeyFor(SECRET.getBytes())).build().parseClaimsJws(token).getBody();"))
	e.files = append(e.files, File{Path: javaPath(e.pkg.Auth, name+"AuthUtil"), Text: class.Render()})
}

func (e *emitter) writeAuthController(blk *ast.AuthBlock, route string) {
	name := blk.DisplayName()
	parts := strings.SplitN(route, " ", 2)
	loginPath := "/auth/" + strings.ToLower(name) + "/login"
	if len(parts) == 2 {
		loginPath = "/auth/" + strings.ToLower(name) + parts[1]
	}
	ctrl := javabuilder.NewClass(e.pkg.Auth, name+"AuthController").
		WithAnnotation("@RestController").
		WithAnnotation(fmt.Sprintf(`@RequestMapping("%s")`, loginPath))
	ctrl.AddImport("org.springframework.web.bind.annotation.RestController")
	ctrl.AddImport("org.springframework.web.bind.annotation.RequestMapping")
	ctrl.AddImport("org.springframework.beans.factory.annotation.Autowired")
	ctrl.AddField(javabuilder.NewField(name+"Authenticator", "authenticator").WithAnnotation("@Autowired"))
	login := javabuilder.NewMethod("String", "login").
		WithAnnotation("@PostMapping").
		WithParam("@RequestParam", "String", "username").
		WithParam("@RequestParam", "String", "password")
	if blk.BearerMode == ast.BearerFull {
		login.WithBodyLine("var payload = authenticator.getJwtPayloadFor" + name + "(username, password);")
		login.WithBodyLine("return new " + name + "AuthUtil().sign(payload);")
	} else {
		login.WithBodyLine("return authenticator.generateJwtFor" + name + "(username, password);")
	}
	ctrl.AddImport("org.springframework.web.bind.annotation.PostMapping")
	ctrl.AddImport("org.springframework.web.bind.annotation.RequestParam")
	ctrl.AddMethod(login)
	e.files = append(e.files, File{Path: javaPath(e.pkg.Auth, name+"AuthController"), Text: ctrl.Render()})
}

// ---- CORS -------------------------------------------------------------------

func (e *emitter) writeCORSConfig() {
	var corsMiddleware *ast.Middleware
	for _, m := range e.project.Middlewares {
		if m.Name == "cors" {
			corsMiddleware = m
		}
	}
	if corsMiddleware == nil {
		return
	}
	origin := "*"
	if v, ok := corsMiddleware.Options.Get("origin"); ok {
		if v.Kind == ast.OVGlobalVariable && v.Global.Name == "env" {
			origin = "${" + strings.Join(v.Global.Path, ".") + "}"
		} else if s, ok := v.AsString(); ok {
			origin = s
		}
	}

	class := javabuilder.NewClass(e.pkg.Config, "CorsConfigurationMVC")
	class.AddImport("org.springframework.context.annotation.Configuration")
	class.AddImport("org.springframework.web.servlet.config.annotation.CorsRegistry")
	class.AddImport("org.springframework.web.servlet.config.annotation.WebMvcConfigurer")
	class.WithAnnotation("@Configuration")
	class.WithImplements("WebMvcConfigurer")
	class.AddMethod(javabuilder.NewMethod("void", "addCorsMappings").
		WithParam("", "CorsRegistry", "registry").
		WithBodyLine(fmt.Sprintf(`registry.addMapping("/**").allowedOrigins("%s");`, origin)))
	e.files = append(e.files, File{Path: javaPath(e.pkg.Config, "CorsConfigurationMVC"), Text: class.Render()})

	if e.useSpringSecurity {
		sec := javabuilder.NewClass(e.pkg.Config, "CorsConfiguration")
		sec.AddImport("org.springframework.context.annotation.Bean")
		sec.AddImport("org.springframework.context.annotation.Configuration")
		sec.AddImport("org.springframework.security.config.annotation.web.builders.HttpSecurity")
		sec.AddImport("org.springframework.security.web.SecurityFilterChain")
		sec.WithAnnotation("@Configuration")
		sec.AddMethod(javabuilder.NewMethod("SecurityFilterChain", "filterChain").
			WithAnnotation("@Bean").
			WithParam("", "HttpSecurity", "http").
			WithThrows("Exception").
			WithBodyLine("return http.cors(java.util.function.Function.identity()).build();"))
		e.files = append(e.files, File{Path: javaPath(e.pkg.Config, "CorsConfiguration"), Text: sec.Render()})
	}
}

func javaPath(pkg, className string) string {
	return strings.ReplaceAll(pkg, ".", "/") + "/" + className + ".java"
}
