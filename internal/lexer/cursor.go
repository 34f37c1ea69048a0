package lexer

import (
	"regexp"
	"unicode"
)

// nul is the sentinel "end of input" rune the teacher's cursor-based
// design expects callers to compare against instead of checking bounds
// everywhere.
const nul = rune(0)

// cursor walks the source text one rune at a time, tracking absolute
// offset, 1-based line, and 1-based column (reset on newline) the way the
// teacher's Lexer struct does, generalized with regex-based lookahead for
// the DSL's richer token set (numbers, path literals, keyword
// disambiguation).
type cursor struct {
	file string
	src  []rune
	pos  int
	line int
	col  int
}

func newCursor(file, src string) *cursor {
	return &cursor{file: file, src: []rune(src), pos: 0, line: 1, col: 1}
}

// currentChar returns the rune at the cursor, or nul at end of input.
func (c *cursor) currentChar() rune {
	if c.pos >= len(c.src) {
		return nul
	}
	return c.src[c.pos]
}

// peek looks ahead offset runes from the cursor. When skipWhitespace is
// true, whitespace runes are not counted toward offset, letting rules like
// the numeric literal's "- .5" check look past insignificant spaces.
func (c *cursor) peek(offset int, skipWhitespace bool) rune {
	r, _ := c.peekWithIndex(offset, skipWhitespace)
	return r
}

// peekWithIndex is peek, additionally returning the absolute source index
// of the rune returned (or len(src) if out of bounds).
func (c *cursor) peekWithIndex(offset int, skipWhitespace bool) (rune, int) {
	i := c.pos
	remaining := offset
	for {
		if skipWhitespace {
			for i < len(c.src) && unicode.IsSpace(c.src[i]) {
				i++
			}
		}
		if remaining == 0 {
			break
		}
		if i >= len(c.src) {
			return nul, i
		}
		i++
		remaining--
		if skipWhitespace {
			for i < len(c.src) && unicode.IsSpace(c.src[i]) {
				i++
			}
		}
	}
	if i >= len(c.src) {
		return nul, i
	}
	return c.src[i], i
}

// advance moves the cursor forward n positions, optionally skipping
// whitespace runes first, updating line/column bookkeeping as it goes.
func (c *cursor) advance(n int, skipWhitespace bool) {
	for n > 0 {
		if skipWhitespace {
			for c.pos < len(c.src) && unicode.IsSpace(c.src[c.pos]) {
				c.step()
			}
		}
		if c.pos >= len(c.src) {
			return
		}
		c.step()
		n--
	}
}

func (c *cursor) step() {
	if c.src[c.pos] == '\n' {
		c.line++
		c.col = 1
	} else {
		c.col++
	}
	c.pos++
}

// read returns the current rune, then advances the cursor by one.
func (c *cursor) read() rune {
	ch := c.currentChar()
	if ch != nul {
		c.step()
	}
	return ch
}

// readRegex returns the longest match of re anchored at the current
// position, advancing the cursor past it. re must not itself be anchored
// with "^"; readRegex anchors it internally.
func (c *cursor) readRegex(re *regexp.Regexp) string {
	m := c.peekRegex(re)
	for range m {
		c.step()
	}
	return m
}

// peekRegex returns the longest match of re anchored at the current
// position without moving the cursor.
func (c *cursor) peekRegex(re *regexp.Regexp) string {
	rest := string(c.src[c.pos:])
	loc := re.FindStringIndex(rest)
	if loc == nil || loc[0] != 0 {
		return ""
	}
	return rest[loc[0]:loc[1]]
}

func anchored(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`\A(?:` + pattern + `)`)
}
