package parser

import (
	"github.com/ymirscript/ymir/internal/ast"
	"github.com/ymirscript/ymir/internal/diag"
	"github.com/ymirscript/ymir/internal/lexer"
)

// parseOptionArgs parses a comma-separated "name: value" list (spec.md
// §4.2's option_args), stopping at ")" without consuming it.
func (p *parser) parseOptionArgs() *ast.OptionMap {
	m := ast.NewOptionMap()
	if p.peek().Kind == lexer.RParen {
		return m
	}
	for {
		nameTok, ok := p.match(lexer.Ident, false, "expected an option name")
		if !ok && p.peek().Kind == lexer.RParen {
			break
		}
		p.match(lexer.Colon, false, "expected ':' after option name")
		value := p.parseOptionValue()
		m.Set(nameTok.Text, value)
		if p.peek().Kind == lexer.Comma {
			p.next()
			continue
		}
		break
	}
	return m
}

// parseOptionValue parses one option_value alternative (spec.md §4.2).
func (p *parser) parseOptionValue() ast.OptionValue {
	tok := p.peek()
	switch tok.Kind {
	case lexer.String:
		p.next()
		return ast.StringValue(tok.StringValue, tok.Position)
	case lexer.Number:
		p.next()
		return ast.NumberValue(tok.NumberValue, tok.Position)
	case lexer.Bool:
		p.next()
		return ast.BoolValue(tok.BoolValue, tok.Position)
	case lexer.KwAny, lexer.KwString, lexer.KwFloat, lexer.KwInt, lexer.KwBoolean,
		lexer.KwDatetime, lexer.KwDate, lexer.KwTime:
		p.next()
		return ast.StringValue(tok.Text, tok.Position)
	case lexer.At:
		return p.parseGlobalVariable()
	case lexer.LBrace:
		p.next()
		m := p.parseOptionArgs()
		p.match(lexer.RBrace, false, "expected '}' to close option object")
		return ast.MapValue(m, tok.Position)
	case lexer.LBracket:
		p.next()
		var items []ast.OptionValue
		if p.peek().Kind != lexer.RBracket {
			for {
				items = append(items, p.parseOptionValue())
				if p.peek().Kind == lexer.Comma {
					p.next()
					continue
				}
				break
			}
		}
		p.match(lexer.RBracket, false, "expected ']' to close option list")
		return ast.ListValue(items, tok.Position)
	default:
		p.sink.Errorf(diag.KindParse, tok.Position, "expected a string, number, boolean, type keyword, '@' reference, '{' object, or '[' list")
		p.next()
		return ast.StringValue("", tok.Position)
	}
}

// parseGlobalVariable parses "@IDENT { . IDENT }" (spec.md §3: a deferred
// lookup such as "@env.PORT").
func (p *parser) parseGlobalVariable() ast.OptionValue {
	at, _ := p.match(lexer.At, false, "")
	nameTok, _ := p.match(lexer.Ident, false, "expected an identifier after '@'")
	var path []string
	for p.peek().Kind == lexer.Dot {
		p.next()
		if seg, ok := p.match(lexer.Ident, false, "expected an identifier after '.'"); ok {
			path = append(path, seg.Text)
		}
	}
	return ast.GlobalValue(nameTok.Text, path, at.Position)
}
