package lexer

import (
	"strconv"
	"unicode"

	"github.com/ymirscript/ymir/internal/diag"
	"github.com/ymirscript/ymir/internal/source"
)

// Result is the output of a Lex call: the token stream (always terminated
// by an EOF token, per spec.md §4.1) and the comment side-channel keyed by
// 1-based line number, used later to associate a route with the
// single-line comment immediately preceding it.
type Result struct {
	Tokens   []Token
	Comments map[int]string
}

// Lex tokenizes src, attributing every token's position to file. Lexer
// failures (bad characters, unterminated strings) are recorded on sink as
// LexError diagnostics but never stop tokenization — the rule catalogue's
// error-recovery rule advances one character and continues, mirroring the
// teacher's lexer which always finishes producing a token stream.
func Lex(file, src string, sink *diag.Sink) Result {
	c := newCursor(file, src)
	rules := ruleCatalogue()
	res := Result{Comments: map[int]string{}}

	for c.currentChar() != nul {
		startLine, startCol, startOff := c.line, c.col, c.pos
		matched := false
		for _, r := range rules {
			if !r.matches(c) {
				continue
			}
			kind, text := r.consume(c)
			pos := source.Single(file, startLine, startCol, source.Span{Start: startOff, Length: c.pos - startOff})
			tok := Token{Kind: kind, Text: text, Position: pos}

			switch kind {
			case Bad:
				sink.Errorf(diag.KindLex, pos, "unterminated string literal")
			case Number:
				if v, err := strconv.ParseFloat(text, 64); err == nil {
					tok.NumberValue = v
				}
			case String:
				tok.StringValue = text
			case Bool:
				tok.BoolValue = text == "true"
			case Comment:
				res.Comments[startLine] = text
			}

			if kind != Comment {
				res.Tokens = append(res.Tokens, tok)
			}
			matched = true
			break
		}
		if matched {
			continue
		}

		ch := c.currentChar()
		if unicode.IsSpace(ch) {
			c.advance(1, false)
			continue
		}

		// Error recovery: no rule matched and it isn't whitespace — emit a
		// bad-token for the single offending character and keep going.
		pos := source.Single(file, startLine, startCol, source.Span{Start: startOff, Length: 1})
		sink.Errorf(diag.KindLex, pos, "unexpected character %q", string(ch))
		res.Tokens = append(res.Tokens, Token{Kind: Bad, Text: string(ch), Position: pos})
		c.advance(1, false)
	}

	eofPos := source.Single(file, c.line, c.col, source.Span{Start: c.pos, Length: 0})
	res.Tokens = append(res.Tokens, Token{Kind: EOF, Position: eofPos})
	return res
}
