package diag

import (
	"fmt"
	"strings"

	"github.com/ymirscript/ymir/internal/source"
)

// SourceLoader reloads a file's full text so a Diagnostic can be rendered
// with a source snippet. The core only ever needs this one method, kept
// separate from the compiler's broader FileProvider so the renderer can be
// handed a narrower capability.
type SourceLoader interface {
	Load(file string) (string, error)
}

// RenderOptions configures the human-readable renderer. Detailed defaults
// to false; ymir.json's "detailedErrors" flag (spec.md §6) flips it on.
type RenderOptions struct {
	Detailed     bool
	LinesBefore  int
	LinesAfter   int
}

// DefaultRenderOptions matches spec.md §4.3: "a configurable window of ~5
// lines before and 1 line after".
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{LinesBefore: 5, LinesAfter: 1}
}

// Render formats a single diagnostic as "file:line:col: severity (kind):
// message", optionally followed by a source snippet with a caret line
// underlining the offending span.
func Render(d Diagnostic, loader SourceLoader, opts RenderOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s (%s): %s", d.Position, d.Severity, d.Kind, d.Message)
	if d.Hint != "" {
		fmt.Fprintf(&b, "\n  hint: %s", d.Hint)
	}
	if !opts.Detailed || loader == nil || d.Position.File == "" {
		return b.String()
	}
	text, err := loader.Load(d.Position.File)
	if err != nil {
		return b.String()
	}
	snippet := renderSnippet(text, d.Position, opts)
	if snippet != "" {
		b.WriteString("\n")
		b.WriteString(snippet)
	}
	return b.String()
}

func renderSnippet(text string, pos source.Position, opts RenderOptions) string {
	lines := strings.Split(text, "\n")
	target := pos.LineStart - 1 // 0-based index into lines
	if target < 0 || target >= len(lines) {
		return ""
	}
	before := opts.LinesBefore
	after := opts.LinesAfter
	if before < 0 {
		before = 0
	}
	if after < 0 {
		after = 0
	}
	start := target - before
	if start < 0 {
		start = 0
	}
	end := target + after
	if end >= len(lines) {
		end = len(lines) - 1
	}

	var b strings.Builder
	width := len(fmt.Sprintf("%d", end+1))
	for i := start; i <= end; i++ {
		fmt.Fprintf(&b, "%*d | %s\n", width, i+1, lines[i])
		if i == target {
			caretCol := pos.ColumnStart - 1
			if caretCol < 0 {
				caretCol = 0
			}
			caretLen := pos.ColumnEnd - pos.ColumnStart
			if caretLen < 1 {
				caretLen = 1
			}
			fmt.Fprintf(&b, "%s | %s%s\n", strings.Repeat(" ", width), strings.Repeat(" ", caretCol), strings.Repeat("^", caretLen))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Summary formats "N error(s), M warning(s)", the counts spec.md §2 says
// the sink exposes.
func Summary(s *Sink) string {
	return fmt.Sprintf("%d error(s), %d warning(s)", s.ErrorCount(), s.WarningCount())
}
