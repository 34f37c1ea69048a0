// Package lexer turns ymir DSL source text into a token stream, following
// the teacher's rule-driven cursor design (internal/parser/lexer.go in
// teemuteemu-caddy-language-server) generalized from Caddyfile's four
// token kinds to the DSL's full literal/keyword/punctuation set.
package lexer

import "github.com/ymirscript/ymir/internal/source"

// Kind enumerates every token kind the lexer can produce.
type Kind int

const (
	EOF Kind = iota
	Bad

	Ident
	Number
	String
	Bool
	Comment
	Path

	// keywords
	KwTarget
	KwUse
	KwRouter
	KwInclude
	KwWith
	KwBody
	KwHeader
	KwQuery
	KwGet
	KwPost
	KwPut
	KwDelete
	KwPatch
	KwHead
	KwOptions
	KwAs
	KwAny
	KwString
	KwFloat
	KwInt
	KwBoolean
	KwDatetime
	KwDate
	KwTime
	KwPublic
	KwAuthenticated
	KwAuthenticate
	KwAuth
	KwResponse
	KwResponses
	KwRender
	KwTable
	KwList
	KwDetail
	KwForm

	// punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Dot
	Comma
	Colon
	Semicolon
	Question
	Equals
	Bang
	Less
	Greater
	Plus
	Minus
	Star
	Slash
	Percent
	Amp
	Pipe
	Caret
	Tilde
	At
	Hash
)

var kindNames = map[Kind]string{
	EOF: "EOF", Bad: "bad-token", Ident: "identifier", Number: "number",
	String: "string", Bool: "boolean", Comment: "comment", Path: "path",
	KwTarget: "target", KwUse: "use", KwRouter: "router", KwInclude: "include",
	KwWith: "with", KwBody: "body", KwHeader: "header", KwQuery: "query",
	KwGet: "GET", KwPost: "POST", KwPut: "PUT", KwDelete: "DELETE",
	KwPatch: "PATCH", KwHead: "HEAD", KwOptions: "OPTIONS", KwAs: "as",
	KwAny: "any", KwString: "string-type", KwFloat: "float", KwInt: "int",
	KwBoolean: "boolean-type", KwDatetime: "datetime", KwDate: "date", KwTime: "time",
	KwPublic: "public", KwAuthenticated: "authenticated", KwAuthenticate: "authenticate",
	KwAuth: "auth", KwResponse: "response", KwResponses: "responses", KwRender: "render",
	KwTable: "table", KwList: "list", KwDetail: "detail", KwForm: "form",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	Dot: ".", Comma: ",", Colon: ":", Semicolon: ";", Question: "?", Equals: "=",
	Bang: "!", Less: "<", Greater: ">", Plus: "+", Minus: "-", Star: "*", Slash: "/",
	Percent: "%", Amp: "&", Pipe: "|", Caret: "^", Tilde: "~", At: "@", Hash: "#",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// keywords maps the literal keyword spelling to its Kind. Order does not
// matter here; priority ordering happens in the rule catalogue (rules.go).
var keywords = map[string]Kind{
	"target": KwTarget, "use": KwUse, "router": KwRouter, "include": KwInclude,
	"with": KwWith, "body": KwBody, "header": KwHeader, "query": KwQuery,
	"GET": KwGet, "POST": KwPost, "PUT": KwPut, "DELETE": KwDelete,
	"PATCH": KwPatch, "HEAD": KwHead, "OPTIONS": KwOptions, "as": KwAs,
	"any": KwAny, "string": KwString, "float": KwFloat, "int": KwInt,
	"boolean": KwBoolean, "datetime": KwDatetime, "date": KwDate, "time": KwTime,
	"public": KwPublic, "authenticated": KwAuthenticated, "authenticate": KwAuthenticate,
	"auth": KwAuth, "response": KwResponse, "responses": KwResponses, "render": KwRender,
	"table": KwTable, "list": KwList, "detail": KwDetail, "form": KwForm,
}

var punctuation = map[rune]Kind{
	'(': LParen, ')': RParen, '{': LBrace, '}': RBrace, '[': LBracket, ']': RBracket,
	'.': Dot, ',': Comma, ':': Colon, ';': Semicolon, '?': Question, '=': Equals,
	'!': Bang, '<': Less, '>': Greater, '+': Plus, '-': Minus, '*': Star, '/': Slash,
	'%': Percent, '&': Amp, '|': Pipe, '^': Caret, '~': Tilde, '@': At, '#': Hash,
}

// Token is the smallest unit the lexer produces. Text is always the raw
// source substring the token was matched from (escapes included); the
// typed payload fields hold the decoded value for literal kinds.
type Token struct {
	Kind     Kind
	Text     string
	Position source.Position

	NumberValue float64
	StringValue string // escapes resolved, for String kind
	BoolValue   bool
}

// IsKeyword reports whether k is one of the reserved DSL keywords.
func (k Kind) IsKeyword() bool {
	return k >= KwTarget && k <= KwForm
}
