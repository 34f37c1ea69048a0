package lexer

import (
	"testing"

	"github.com/ymirscript/ymir/internal/diag"
)

func lexAll(t *testing.T, src string) ([]Token, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink()
	res := Lex("main.ymir", src, sink)
	return res.Tokens, sink
}

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestLex_AlwaysTerminatesWithEOF(t *testing.T) {
	tokens, _ := lexAll(t, `target Shop;`)
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != EOF {
		t.Fatalf("expected the last token to be EOF, got %+v", tokens)
	}
}

func TestLex_KeywordsAndIdentifiers(t *testing.T) {
	tokens, sink := lexAll(t, `target Shop router /api GET`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %s", diag.Summary(sink))
	}
	want := []Kind{KwTarget, Ident, KwRouter, Path, KwGet, EOF}
	got := kinds(tokens)
	if len(got) != len(want) {
		t.Fatalf("want %d tokens, got %d: %+v", len(want), len(got), got)
	}
	for i, k := range want {
		if got[i] != k {
			t.Errorf("token %d: want %s, got %s", i, k, got[i])
		}
	}
}

func TestLex_DashedIdentifierIsNotSplitOnMinus(t *testing.T) {
	tokens, _ := lexAll(t, `API-Key`)
	if len(tokens) < 1 || tokens[0].Kind != Ident || tokens[0].Text != "API-Key" {
		t.Fatalf("want a single 'API-Key' identifier, got %+v", tokens[:len(tokens)-1])
	}
}

func TestLex_NumberForms(t *testing.T) {
	tokens, sink := lexAll(t, `42 3.14 .5 -7 1e10`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %s", diag.Summary(sink))
	}
	var nums []Token
	for _, tok := range tokens {
		if tok.Kind == Number {
			nums = append(nums, tok)
		}
	}
	if len(nums) != 5 {
		t.Fatalf("want 5 numbers, got %d: %+v", len(nums), nums)
	}
	if nums[2].NumberValue != 0.5 {
		t.Errorf("want .5 to parse as 0.5, got %v", nums[2].NumberValue)
	}
	if nums[3].NumberValue != -7 {
		t.Errorf("want -7 to parse as -7, got %v", nums[3].NumberValue)
	}
}

func TestLex_InterSpaceSignDotIsTwoTokens(t *testing.T) {
	// SPEC_FULL.md Open Question 1: "- .5" is punctuation '-' then a
	// separate numeric token ".5", unlike the single-token "-.5".
	tokens, _ := lexAll(t, `- .5`)
	if len(tokens) < 2 || tokens[0].Kind != Minus || tokens[1].Kind != Number {
		t.Fatalf("want [Minus, Number], got %+v", kinds(tokens))
	}
}

func TestLex_StringEscapes(t *testing.T) {
	tokens, sink := lexAll(t, `"line\nbreak" 'quote\'s'`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %s", diag.Summary(sink))
	}
	if tokens[0].Kind != String || tokens[0].StringValue != "line\nbreak" {
		t.Errorf("unexpected first string token: %+v", tokens[0])
	}
	if tokens[1].Kind != String || tokens[1].StringValue != "quote's" {
		t.Errorf("unexpected second string token: %+v", tokens[1])
	}
}

func TestLex_UnterminatedStringIsBadTokenWithLexError(t *testing.T) {
	tokens, sink := lexAll(t, `"never closed`)
	if tokens[0].Kind != Bad {
		t.Fatalf("want a Bad token for the unterminated string, got %s", tokens[0].Kind)
	}
	found := false
	for _, d := range sink.All() {
		if d.Kind == diag.KindLex {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a LexError diagnostic, got %s", diag.Summary(sink))
	}
}

func TestLex_BoolLiterals(t *testing.T) {
	tokens, _ := lexAll(t, `true false`)
	if tokens[0].Kind != Bool || !tokens[0].BoolValue {
		t.Errorf("want true bool token, got %+v", tokens[0])
	}
	if tokens[1].Kind != Bool || tokens[1].BoolValue {
		t.Errorf("want false bool token, got %+v", tokens[1])
	}
}

func TestLex_PathWithVariableAndQuery(t *testing.T) {
	tokens, sink := lexAll(t, `/users/:id`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %s", diag.Summary(sink))
	}
	if tokens[0].Kind != Path || tokens[0].Text != "/users/:id" {
		t.Fatalf("unexpected path token: %+v", tokens[0])
	}
}

func TestLex_CommentsAreSideChannelNotTokens(t *testing.T) {
	res := Lex("main.ymir", "// a note\nGET", diag.NewSink())
	for _, tok := range res.Tokens {
		if tok.Kind == Comment {
			t.Fatalf("comments must never appear in the token stream")
		}
	}
	if res.Comments[1] != "// a note" {
		t.Fatalf("want comment on line 1, got %+v", res.Comments)
	}
}

func TestLex_BadCharacterRecoversAndContinues(t *testing.T) {
	tokens, sink := lexAll(t, "GET ` POST")
	if !sink.HasErrors() {
		t.Fatalf("expected a LexError for the stray backtick")
	}
	want := []Kind{KwGet, Bad, KwPost, EOF}
	got := kinds(tokens)
	if len(got) != len(want) {
		t.Fatalf("want %d tokens, got %d: %+v", len(want), len(got), got)
	}
	for i, k := range want {
		if got[i] != k {
			t.Errorf("token %d: want %s, got %s", i, k, got[i])
		}
	}
}

func TestLex_TokenTextMatchesSourceSubstring(t *testing.T) {
	// spec.md §8 universal invariant, modulo decoded escapes for strings.
	src := `router /api GET 42`
	tokens, sink := lexAll(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %s", diag.Summary(sink))
	}
	for _, tok := range tokens {
		if tok.Kind == EOF {
			continue
		}
		start := tok.Position.Span.Start
		end := tok.Position.Span.End()
		if start < 0 || end > len(src) {
			t.Fatalf("token %+v has out-of-range span", tok)
		}
		substr := src[start:end]
		if substr != tok.Text {
			t.Errorf("token %+v: substring %q does not match Text", tok, substr)
		}
	}
}
