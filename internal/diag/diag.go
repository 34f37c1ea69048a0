// Package diag is the diagnostic sink shared by the lexer, parser, and
// emitters. It mirrors the teacher's *ParseError value-with-position shape
// (internal/parser.ParseError in the teacher repo) generalized to carry a
// severity, an error kind, and an optional hint.
package diag

import (
	"fmt"

	"github.com/ymirscript/ymir/internal/source"
)

// Severity distinguishes errors (which can abort a compile under
// CancelOnFirstError) from warnings (which never do).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Kind names the category of diagnostic, per spec.md §7.
type Kind string

const (
	KindLex      Kind = "LexError"
	KindParse    Kind = "ParseError"
	KindSemantic Kind = "SemanticError"
	KindInclude  Kind = "IncludeError"
	KindEmission Kind = "EmissionError"
	KindConfig   Kind = "ConfigError"
)

// Diagnostic is one recorded error or warning.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Position source.Position
	Message  string
	Hint     string
}

func (d Diagnostic) Error() string {
	if d.Hint != "" {
		return fmt.Sprintf("%s: %s (%s): %s [%s]", d.Position, d.Severity, d.Kind, d.Message, d.Hint)
	}
	return fmt.Sprintf("%s: %s (%s): %s", d.Position, d.Severity, d.Kind, d.Message)
}

// Sink accumulates diagnostics in insertion order. It is the only mutable
// state threaded through the lexer, parser, and emitters for error
// reporting; nothing about it is safe to share across concurrent compiles,
// which matches the single-threaded synchronous model spec.md §5 mandates.
type Sink struct {
	diagnostics []Diagnostic
}

// NewSink returns an empty sink.
func NewSink() *Sink { return &Sink{} }

// Errorf records an error-severity diagnostic.
func (s *Sink) Errorf(kind Kind, pos source.Position, format string, args ...any) {
	s.add(SeverityError, kind, pos, "", format, args...)
}

// ErrorHintf records an error-severity diagnostic with a hint.
func (s *Sink) ErrorHintf(kind Kind, pos source.Position, hint, format string, args ...any) {
	s.add(SeverityError, kind, pos, hint, format, args...)
}

// Warnf records a warning-severity diagnostic.
func (s *Sink) Warnf(kind Kind, pos source.Position, format string, args ...any) {
	s.add(SeverityWarning, kind, pos, "", format, args...)
}

func (s *Sink) add(sev Severity, kind Kind, pos source.Position, hint, format string, args ...any) {
	s.diagnostics = append(s.diagnostics, Diagnostic{
		Severity: sev,
		Kind:     kind,
		Position: pos,
		Message:  fmt.Sprintf(format, args...),
		Hint:     hint,
	})
}

// All returns every recorded diagnostic in insertion order.
func (s *Sink) All() []Diagnostic { return s.diagnostics }

// ErrorCount returns the number of error-severity diagnostics.
func (s *Sink) ErrorCount() int {
	n := 0
	for _, d := range s.diagnostics {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-severity diagnostics.
func (s *Sink) WarningCount() int {
	n := 0
	for _, d := range s.diagnostics {
		if d.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (s *Sink) HasErrors() bool { return s.ErrorCount() > 0 }
