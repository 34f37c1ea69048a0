// Package javabuilder is the small class/method/field builder IR the
// Java/Spring emitter renders through (spec.md §4.6). It owns only
// textual rendering of a Java source file — no semantics about Spring,
// DTOs, or auth live here.
package javabuilder

import (
	"fmt"
	"strings"
)

// FieldBuilder renders one field declaration (spec.md §4.6).
type FieldBuilder struct {
	Access      string // "private", "public", "protected" — empty means package-private
	Type        string
	Name        string
	Annotations []string
	Initializer string // rendered verbatim after "=", empty means no initializer
	private     bool
}

func NewField(typ, name string) *FieldBuilder {
	return &FieldBuilder{Type: typ, Name: name}
}

func (f *FieldBuilder) WithAccess(access string) *FieldBuilder {
	f.Access = access
	return f
}

func (f *FieldBuilder) WithAnnotation(a string) *FieldBuilder {
	f.Annotations = append(f.Annotations, a)
	return f
}

func (f *FieldBuilder) WithInitializer(expr string) *FieldBuilder {
	f.Initializer = expr
	return f
}

func (f *FieldBuilder) render(indent string) string {
	var b strings.Builder
	for _, a := range f.Annotations {
		b.WriteString(indent + a + "\n")
	}
	access := f.Access
	if access == "" {
		access = "private"
	}
	b.WriteString(indent + access + " " + f.Type + " " + f.Name)
	if f.Initializer != "" {
		b.WriteString(" = " + f.Initializer)
	}
	b.WriteString(";\n")
	return b.String()
}

// Parameter is one method parameter, optionally annotated
// (`@PathVariable`, `@RequestParam`, …).
type Parameter struct {
	Annotation string
	Type       string
	Name       string
}

func (p Parameter) render() string {
	if p.Annotation == "" {
		return p.Type + " " + p.Name
	}
	return p.Annotation + " " + p.Type + " " + p.Name
}

// MethodBuilder renders one method declaration, or a stub signature when
// its owning ClassBuilder is an interface (spec.md §4.6).
type MethodBuilder struct {
	Access      string
	ReturnType  string
	Name        string
	Params      []Parameter
	Annotations []string
	Throws      []string
	Comment     []string
	Body        []string
}

func NewMethod(returnType, name string) *MethodBuilder {
	return &MethodBuilder{ReturnType: returnType, Name: name, Access: "public"}
}

func (m *MethodBuilder) WithAnnotation(a string) *MethodBuilder {
	m.Annotations = append(m.Annotations, a)
	return m
}

func (m *MethodBuilder) WithParam(annotation, typ, name string) *MethodBuilder {
	m.Params = append(m.Params, Parameter{Annotation: annotation, Type: typ, Name: name})
	return m
}

func (m *MethodBuilder) WithThrows(t string) *MethodBuilder {
	m.Throws = append(m.Throws, t)
	return m
}

func (m *MethodBuilder) WithComment(line string) *MethodBuilder {
	m.Comment = append(m.Comment, line)
	return m
}

func (m *MethodBuilder) WithBodyLine(line string) *MethodBuilder {
	m.Body = append(m.Body, line)
	return m
}

func (m *MethodBuilder) signature() string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.render()
	}
	sig := fmt.Sprintf("%s %s(%s)", m.ReturnType, m.Name, strings.Join(params, ", "))
	if len(m.Throws) > 0 {
		sig += " throws " + strings.Join(m.Throws, ", ")
	}
	return sig
}

func (m *MethodBuilder) render(indent string, asInterfaceStub bool) string {
	var b strings.Builder
	if len(m.Comment) > 0 {
		b.WriteString(indent + "/**\n")
		for _, c := range m.Comment {
			b.WriteString(indent + " * " + c + "\n")
		}
		b.WriteString(indent + " */\n")
	}
	for _, a := range m.Annotations {
		b.WriteString(indent + a + "\n")
	}
	if asInterfaceStub {
		b.WriteString(indent + m.signature() + ";\n")
		return b.String()
	}
	access := m.Access
	if access == "" {
		access = "public"
	}
	b.WriteString(indent + access + " " + m.signature() + " {\n")
	for _, line := range m.Body {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString(indent + "    " + line + "\n")
	}
	b.WriteString(indent + "}\n")
	return b.String()
}

// ClassBuilder renders one Java source file: package, imports,
// annotations, fields, methods, and inner classes (spec.md §4.6).
type ClassBuilder struct {
	Package     string
	Name        string
	IsInterface bool
	Implements  []string
	Extends     string
	Annotations []string

	imports     []string
	importSeen  map[string]bool
	fields      []*FieldBuilder
	fieldSeen   map[string]bool
	methods     []*MethodBuilder
	innerClasses []*ClassBuilder
}

func NewClass(pkg, name string) *ClassBuilder {
	return &ClassBuilder{
		Package:    pkg,
		Name:       name,
		importSeen: map[string]bool{},
		fieldSeen:  map[string]bool{},
	}
}

func NewInterface(pkg, name string) *ClassBuilder {
	c := NewClass(pkg, name)
	c.IsInterface = true
	return c
}

// AddImport records an import, deduplicated, order preserved by first
// occurrence (spec.md §4.6).
func (c *ClassBuilder) AddImport(path string) *ClassBuilder {
	if path == "" || c.importSeen[path] {
		return c
	}
	c.importSeen[path] = true
	c.imports = append(c.imports, path)
	return c
}

func (c *ClassBuilder) WithAnnotation(a string) *ClassBuilder {
	c.Annotations = append(c.Annotations, a)
	return c
}

func (c *ClassBuilder) WithImplements(iface string) *ClassBuilder {
	c.Implements = append(c.Implements, iface)
	return c
}

// AddField appends a field, deduplicated by name (spec.md §4.6). Adding
// it to a non-interface class marks it private unless an access level
// was already set.
func (c *ClassBuilder) AddField(f *FieldBuilder) *ClassBuilder {
	if c.fieldSeen[f.Name] {
		return c
	}
	c.fieldSeen[f.Name] = true
	if !c.IsInterface {
		f.private = true
		if f.Access == "" {
			f.Access = "private"
		}
	}
	c.fields = append(c.fields, f)
	return c
}

func (c *ClassBuilder) AddMethod(m *MethodBuilder) *ClassBuilder {
	c.methods = append(c.methods, m)
	return c
}

// AddInnerClass appends a nested class. Rejected (ignored) for
// interfaces, per spec.md §4.6.
func (c *ClassBuilder) AddInnerClass(inner *ClassBuilder) *ClassBuilder {
	if c.IsInterface {
		return c
	}
	c.innerClasses = append(c.innerClasses, inner)
	return c
}

// Render produces the full Java source text, with a leading
// auto-generated-file comment (spec.md §4.6).
func (c *ClassBuilder) Render() string {
	var b strings.Builder
	b.WriteString("// Code generated by ymir. DO NOT EDIT.\n")
	b.WriteString("package " + c.Package + ";\n\n")
	for _, imp := range c.imports {
		b.WriteString("import " + imp + ";\n")
	}
	if len(c.imports) > 0 {
		b.WriteString("\n")
	}
	for _, a := range c.Annotations {
		b.WriteString(a + "\n")
	}
	kind := "class"
	if c.IsInterface {
		kind = "interface"
	}
	header := "public " + kind + " " + c.Name
	if c.Extends != "" {
		header += " extends " + c.Extends
	}
	if len(c.Implements) > 0 {
		verb := "implements"
		if c.IsInterface {
			verb = "extends"
		}
		header += " " + verb + " " + strings.Join(c.Implements, ", ")
	}
	b.WriteString(header + " {\n")
	c.renderBody(&b, "    ")
	b.WriteString("}\n")
	return b.String()
}

func (c *ClassBuilder) renderBody(b *strings.Builder, indent string) {
	for _, f := range c.fields {
		b.WriteString(f.render(indent))
	}
	if len(c.fields) > 0 {
		b.WriteString("\n")
	}
	for i, m := range c.methods {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.render(indent, c.IsInterface))
	}
	for _, inner := range c.innerClasses {
		b.WriteString("\n")
		b.WriteString(indent + "public static class " + inner.Name)
		if len(inner.Implements) > 0 {
			b.WriteString(" implements " + strings.Join(inner.Implements, ", "))
		}
		b.WriteString(" {\n")
		inner.renderBody(b, indent+"    ")
		b.WriteString(indent + "}\n")
	}
}
