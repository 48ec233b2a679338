package extract

import (
	"fmt"
	"strconv"
	"strings"
)

// parseLenient parses a near-JSON text into generic values
// (map[string]interface{}, []interface{}, string, float64, bool, nil).
//
// It accepts the malformations models produce most often on top of strict
// JSON: trailing commas in objects and arrays, single-quoted strings, and
// unquoted or single-quoted object keys. Anything beyond that is an error;
// this is deliberately a bounded grammar, not a guess-anything parser.
func parseLenient(s string) (interface{}, error) {
	p := &lenientParser{s: s}
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.i < len(p.s) {
		return nil, p.errorf("trailing content after value")
	}
	return v, nil
}

type lenientParser struct {
	s string
	i int
}

func (p *lenientParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%s at offset %d", fmt.Sprintf(format, args...), p.i)
}

func (p *lenientParser) skipSpace() {
	for p.i < len(p.s) {
		switch p.s[p.i] {
		case ' ', '\t', '\n', '\r':
			p.i++
		default:
			return
		}
	}
}

func (p *lenientParser) parseValue() (interface{}, error) {
	if p.i >= len(p.s) {
		return nil, p.errorf("unexpected end of input")
	}
	switch c := p.s[p.i]; {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"' || c == '\'':
		return p.parseString(c)
	case c == 't', c == 'f', c == 'n':
		return p.parseLiteral()
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return nil, p.errorf("unexpected character %q", c)
	}
}

func (p *lenientParser) parseObject() (map[string]interface{}, error) {
	p.i++ // consume '{'
	obj := make(map[string]interface{})
	for {
		p.skipSpace()
		if p.i >= len(p.s) {
			return nil, p.errorf("unterminated object")
		}
		if p.s[p.i] == '}' {
			p.i++
			return obj, nil
		}

		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.i >= len(p.s) || p.s[p.i] != ':' {
			return nil, p.errorf("expected ':' after object key %q", key)
		}
		p.i++
		p.skipSpace()
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj[key] = val

		p.skipSpace()
		if p.i >= len(p.s) {
			return nil, p.errorf("unterminated object")
		}
		switch p.s[p.i] {
		case ',':
			p.i++ // trailing comma before '}' handled by loop head
		case '}':
			p.i++
			return obj, nil
		default:
			return nil, p.errorf("expected ',' or '}' in object, got %q", p.s[p.i])
		}
	}
}

// parseKey accepts double-quoted, single-quoted and bare identifier keys.
func (p *lenientParser) parseKey() (string, error) {
	c := p.s[p.i]
	if c == '"' || c == '\'' {
		return p.parseString(c)
	}
	start := p.i
	for p.i < len(p.s) && isBareKeyChar(p.s[p.i]) {
		p.i++
	}
	if p.i == start {
		return "", p.errorf("expected object key, got %q", c)
	}
	return p.s[start:p.i], nil
}

func isBareKeyChar(c byte) bool {
	return c == '_' || c == '$' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *lenientParser) parseArray() ([]interface{}, error) {
	p.i++ // consume '['
	arr := []interface{}{}
	for {
		p.skipSpace()
		if p.i >= len(p.s) {
			return nil, p.errorf("unterminated array")
		}
		if p.s[p.i] == ']' {
			p.i++
			return arr, nil
		}

		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)

		p.skipSpace()
		if p.i >= len(p.s) {
			return nil, p.errorf("unterminated array")
		}
		switch p.s[p.i] {
		case ',':
			p.i++ // trailing comma before ']' handled by loop head
		case ']':
			p.i++
			return arr, nil
		default:
			return nil, p.errorf("expected ',' or ']' in array, got %q", p.s[p.i])
		}
	}
}

func (p *lenientParser) parseString(quote byte) (string, error) {
	p.i++ // consume opening quote
	var b strings.Builder
	for p.i < len(p.s) {
		c := p.s[p.i]
		switch {
		case c == quote:
			p.i++
			return b.String(), nil
		case c == '\\':
			p.i++
			if p.i >= len(p.s) {
				return "", p.errorf("unterminated escape")
			}
			esc := p.s[p.i]
			switch esc {
			case '"', '\'', '\\', '/':
				b.WriteByte(esc)
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'u':
				if p.i+4 >= len(p.s) {
					return "", p.errorf("unterminated unicode escape")
				}
				code, err := strconv.ParseUint(p.s[p.i+1:p.i+5], 16, 32)
				if err != nil {
					return "", p.errorf("invalid unicode escape %q", p.s[p.i+1:p.i+5])
				}
				b.WriteRune(rune(code))
				p.i += 4
			default:
				// Unknown escape: keep the backslash and the character.
				// Models emit things like \latex inside strings and losing
				// the backslash corrupts the content worse than keeping it.
				b.WriteByte('\\')
				b.WriteByte(esc)
			}
			p.i++
		default:
			b.WriteByte(c)
			p.i++
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *lenientParser) parseLiteral() (interface{}, error) {
	for _, lit := range []struct {
		text  string
		value interface{}
	}{
		{"true", true},
		{"false", false},
		{"null", nil},
	} {
		if strings.HasPrefix(p.s[p.i:], lit.text) {
			p.i += len(lit.text)
			return lit.value, nil
		}
	}
	return nil, p.errorf("unexpected literal")
}

func (p *lenientParser) parseNumber() (float64, error) {
	start := p.i
	for p.i < len(p.s) && isNumberChar(p.s[p.i]) {
		p.i++
	}
	n, err := strconv.ParseFloat(p.s[start:p.i], 64)
	if err != nil {
		return 0, p.errorf("invalid number %q", p.s[start:p.i])
	}
	return n, nil
}

func isNumberChar(c byte) bool {
	return c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' || (c >= '0' && c <= '9')
}
