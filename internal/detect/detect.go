// Package detect finds the literal module specifiers a compiled JavaScript
// file passes to require, without running it.
package detect

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// Detector extracts module specifiers from JavaScript source.
type Detector interface {
	Detect(src string) ([]string, error)
}

// Detective walks the parsed source for calls to Word (default "require")
// whose first argument is a string literal.
type Detective struct {
	Word string
}

// New returns a Detective for require calls.
func New() *Detective {
	return &Detective{Word: "require"}
}

// Detect returns specifiers in source order. Duplicates are kept. A parse
// failure is returned as is.
func (d *Detective) Detect(src string) ([]string, error) {
	ast, err := js.Parse(parse.NewInputString(src), js.Options{})
	if err != nil {
		return nil, err
	}

	word := d.Word
	if word == "" {
		word = "require"
	}

	v := &visitor{word: word, deps: []string{}}
	js.Walk(v, &ast.BlockStmt)
	if v.err != nil {
		return nil, v.err
	}
	return v.deps, nil
}

type visitor struct {
	word string
	deps []string
	err  error
}

func (v *visitor) Enter(n js.INode) js.IVisitor {
	call, ok := n.(*js.CallExpr)
	if !ok {
		return v
	}
	callee, ok := call.X.(*js.Var)
	if !ok || string(callee.Data) != v.word || len(call.Args.List) == 0 {
		return v
	}
	lit, ok := call.Args.List[0].Value.(*js.LiteralExpr)
	if !ok || lit.TokenType != js.StringToken {
		return v
	}

	specifier, err := Unquote(string(lit.Data))
	if err != nil {
		if v.err == nil {
			v.err = err
		}
		return v
	}
	v.deps = append(v.deps, specifier)
	return v
}

func (v *visitor) Exit(js.INode) {}

// Unquote decodes a JavaScript string literal including its quotes.
func Unquote(lit string) (string, error) {
	if len(lit) < 2 || (lit[0] != '"' && lit[0] != '\'') || lit[len(lit)-1] != lit[0] {
		return "", fmt.Errorf("not a string literal: %s", lit)
	}
	body := lit[1 : len(lit)-1]
	if !strings.Contains(body, `\`) {
		return body, nil
	}

	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("unterminated escape in %s", lit)
		}
		switch e := body[i]; e {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '0':
			sb.WriteByte(0)
		case '\n':
			// line continuation
		case '\r':
			if i+1 < len(body) && body[i+1] == '\n' {
				i++
			}
		case 'x':
			if i+2 >= len(body) {
				return "", fmt.Errorf("bad hex escape in %s", lit)
			}
			r, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("bad hex escape in %s", lit)
			}
			sb.WriteRune(rune(r))
			i += 2
		case 'u':
			r, n, err := unicodeEscape(body[i+1:])
			if err != nil {
				return "", fmt.Errorf("%v in %s", err, lit)
			}
			i += n
			if utf16.IsSurrogate(r) && strings.HasPrefix(body[i+1:], `\u`) {
				if r2, n2, err := unicodeEscape(body[i+3:]); err == nil {
					if pair := utf16.DecodeRune(r, r2); pair != utf8.RuneError {
						r = pair
						i += 2 + n2
					}
				}
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte(e)
		}
	}
	return sb.String(), nil
}

// unicodeEscape decodes the part after \u: either XXXX or {X...}.
// It returns the rune and the number of bytes consumed.
func unicodeEscape(s string) (rune, int, error) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, fmt.Errorf("bad unicode escape")
		}
		r, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil {
			return 0, 0, fmt.Errorf("bad unicode escape")
		}
		return rune(r), end + 1, nil
	}
	if len(s) < 4 {
		return 0, 0, fmt.Errorf("bad unicode escape")
	}
	r, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("bad unicode escape")
	}
	return rune(r), 4, nil
}
