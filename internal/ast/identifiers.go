package ast

import (
	"regexp"
	"strings"

	"github.com/iancoleman/strcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	nonIdentChar = regexp.MustCompile(`[^A-Za-z0-9_]`)
	leadingDigit = regexp.MustCompile(`^[0-9]`)
	titleCaser   = cases.Title(language.English)
)

// SanitizeIdentifier turns an arbitrary string (a path alias, a DTO field
// name lifted from a body schema, …) into a valid cross-language
// identifier: non-alphanumeric runs are stripped, and a leading digit is
// prefixed with "_" (spec.md §3, Path.alias).
func SanitizeIdentifier(raw string) string {
	s := nonIdentChar.ReplaceAllString(raw, "")
	if s == "" {
		return "_"
	}
	if leadingDigit.MatchString(s) {
		s = "_" + s
	}
	return s
}

// AlphanumericOnly strips every character that is not a letter or digit,
// used to derive Path.Name from the raw path when no alias is present
// (spec.md §3: "alphanumerics-only form of the raw path").
func AlphanumericOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PascalCase renders s in PascalCase via strcase, the casing library
// already present (indirectly) in the teacher's dependency graph.
func PascalCase(s string) string {
	return strcase.ToCamel(SanitizeIdentifier(s))
}

// CamelCase renders s in camelCase via strcase.
func CamelCase(s string) string {
	return strcase.ToLowerCamel(SanitizeIdentifier(s))
}

// DisplayName renders identity as a sanitized identifier with its first
// letter capitalized (spec.md §3: AuthBlock "Display name"), using
// golang.org/x/text/cases for the titlecasing the way
// other_examples/encoredev-encore's JavaScript client generator titlecases
// identifiers.
func DisplayName(identity string) string {
	s := SanitizeIdentifier(identity)
	if s == "" {
		return s
	}
	first := titleCaser.String(s[:1])
	return first + s[1:]
}
