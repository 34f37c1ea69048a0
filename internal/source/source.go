// Package source models where a token, diagnostic, or AST node came from:
// which file, and what byte offsets and line/column span within it.
package source

import "fmt"

// Span is a half-open byte range within a single file's source text.
// End is derived from Start+Length, never stored independently, so the
// two can never drift out of sync.
type Span struct {
	Start  int
	Length int
}

// End returns the exclusive end offset of the span.
func (s Span) End() int { return s.Start + s.Length }

// Position pins a Span to a file and a line/column range, the shape every
// token, diagnostic, and AST node carries so errors can always be traced
// back to a concrete place in a concrete file.
type Position struct {
	File string // empty for synthetic/recovery positions

	LineStart, LineEnd     int // 1-based
	ColumnStart, ColumnEnd int // 1-based, end exclusive

	Span Span
}

// String renders "file:line:col", the form diagnostics print.
func (p Position) String() string {
	file := p.File
	if file == "" {
		file = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", file, p.LineStart, p.ColumnStart)
}

// Single builds a Position whose start and end line/column coincide,
// used for single-token positions (the common case).
func Single(file string, line, col int, span Span) Position {
	return Position{
		File:        file,
		LineStart:   line,
		LineEnd:     line,
		ColumnStart: col,
		ColumnEnd:   col + span.Length,
		Span:        span,
	}
}

// Cover returns the smallest Position spanning both a and b, used to build
// a Position for a multi-token AST node from its first and last token.
func Cover(a, b Position) Position {
	if a.File == "" {
		a.File = b.File
	}
	out := Position{File: a.File}
	if a.LineStart <= b.LineStart {
		out.LineStart, out.ColumnStart = a.LineStart, a.ColumnStart
	} else {
		out.LineStart, out.ColumnStart = b.LineStart, b.ColumnStart
	}
	if a.LineEnd >= b.LineEnd {
		out.LineEnd, out.ColumnEnd = a.LineEnd, a.ColumnEnd
	} else {
		out.LineEnd, out.ColumnEnd = b.LineEnd, b.ColumnEnd
	}
	out.Span = Span{Start: a.Span.Start, Length: b.Span.End() - a.Span.Start}
	return out
}
