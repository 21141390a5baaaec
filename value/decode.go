package value

import (
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/craftkit/web-runtime/errors"
	"github.com/craftkit/web-runtime/mem"
)

// Nesting limit to keep malicious documents from exhausting the stack.
const maxDepth = 512

// Parse decodes a UTF-8 JSON document into a Value. It accepts any
// syntactically valid document; on malformed input the returned error is a
// *errors.Error carrying the byte offset of the failure. Duplicate object
// keys are legal, with the last occurrence winning.
func Parse(data []byte) (Value, error) {
	return parse(data, nil)
}

// ParseIn decodes like Parse but allocates string payloads from the
// innermost open scope of arena, so an entire parse is released in O(1) when
// the scope closes. The returned Value must not be retained past that scope
// unless Cloned.
func ParseIn(arena *mem.Arena, data []byte) (Value, error) {
	return parse(data, arena)
}

func parse(data []byte, arena *mem.Arena) (Value, error) {
	p := parser{data: data, arena: arena}
	p.skipSpace()
	v, err := p.parseValue(0)
	if err != nil {
		return Value{}, err
	}
	p.skipSpace()
	if p.pos != len(p.data) {
		return Value{}, errors.Syntax(p.pos, "unexpected data after top-level value")
	}
	return v, nil
}

type parser struct {
	arena *mem.Arena
	data  []byte
	pos   int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) parseValue(depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, errors.Syntax(p.pos, "nesting too deep")
	}
	if p.pos >= len(p.data) {
		return Value{}, errors.Syntax(p.pos, "unexpected end of input")
	}

	switch c := p.data[p.pos]; {
	case c == 'n':
		return p.parseLiteral("null", Null())
	case c == 't':
		return p.parseLiteral("true", Bool(true))
	case c == 'f':
		return p.parseLiteral("false", Bool(false))
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindString, s: s}, nil
	case c == '[':
		return p.parseArray(depth)
	case c == '{':
		return p.parseObject(depth)
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return Value{}, errors.Syntax(p.pos, "unexpected character "+strconv.QuoteRune(rune(c)))
	}
}

func (p *parser) parseLiteral(lit string, v Value) (Value, error) {
	if len(p.data)-p.pos < len(lit) || string(p.data[p.pos:p.pos+len(lit)]) != lit {
		return Value{}, errors.Syntax(p.pos, "invalid literal")
	}
	p.pos += len(lit)
	return v, nil
}

func (p *parser) parseArray(depth int) (Value, error) {
	p.pos++ // '['
	arr := NewArray()
	p.skipSpace()
	if p.pos < len(p.data) && p.data[p.pos] == ']' {
		p.pos++
		return arr, nil
	}
	for {
		p.skipSpace()
		elem, err := p.parseValue(depth + 1)
		if err != nil {
			return Value{}, err
		}
		arr.Append(elem)
		p.skipSpace()
		if p.pos >= len(p.data) {
			return Value{}, errors.Syntax(p.pos, "unterminated array")
		}
		switch p.data[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return arr, nil
		default:
			return Value{}, errors.Syntax(p.pos, "expected ',' or ']' in array")
		}
	}
}

func (p *parser) parseObject(depth int) (Value, error) {
	p.pos++ // '{'
	obj := NewObject()
	p.skipSpace()
	if p.pos < len(p.data) && p.data[p.pos] == '}' {
		p.pos++
		return obj, nil
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.data) || p.data[p.pos] != '"' {
			return Value{}, errors.Syntax(p.pos, "expected object key")
		}
		key, err := p.parseString()
		if err != nil {
			return Value{}, err
		}
		p.skipSpace()
		if p.pos >= len(p.data) || p.data[p.pos] != ':' {
			return Value{}, errors.Syntax(p.pos, "expected ':' after object key")
		}
		p.pos++
		p.skipSpace()
		val, err := p.parseValue(depth + 1)
		if err != nil {
			return Value{}, err
		}
		// Last duplicate wins, keeping the first occurrence's position.
		obj.ObjectSet(key, val)
		p.skipSpace()
		if p.pos >= len(p.data) {
			return Value{}, errors.Syntax(p.pos, "unterminated object")
		}
		switch p.data[p.pos] {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return obj, nil
		default:
			return Value{}, errors.Syntax(p.pos, "expected ',' or '}' in object")
		}
	}
}

// parseString decodes a JSON string starting at the opening quote.
func (p *parser) parseString() (string, error) {
	start := p.pos
	p.pos++ // '"'

	// Fast path: no escapes, no control characters.
	i := p.pos
	for i < len(p.data) {
		c := p.data[i]
		if c == '"' {
			raw := p.data[p.pos:i]
			if !utf8.Valid(raw) {
				return "", errors.InvalidUTF8(errors.PhaseParse, p.pos, raw)
			}
			p.pos = i + 1
			return p.intern(raw)
		}
		if c == '\\' || c < 0x20 {
			break
		}
		i++
	}

	var buf []byte
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case c == '"':
			p.pos++
			if !utf8.Valid(buf) {
				return "", errors.InvalidUTF8(errors.PhaseParse, start, buf)
			}
			return p.intern(buf)
		case c == '\\':
			p.pos++
			if p.pos >= len(p.data) {
				return "", errors.Syntax(p.pos, "unterminated escape sequence")
			}
			esc := p.data[p.pos]
			p.pos++
			switch esc {
			case '"', '\\', '/':
				buf = append(buf, esc)
			case 'b':
				buf = append(buf, '\b')
			case 'f':
				buf = append(buf, '\f')
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'u':
				r, err := p.parseUnicodeEscape()
				if err != nil {
					return "", err
				}
				buf = utf8.AppendRune(buf, r)
			default:
				return "", errors.Syntax(p.pos-1, "invalid escape character")
			}
		case c < 0x20:
			return "", errors.Syntax(p.pos, "unescaped control character in string")
		default:
			buf = append(buf, c)
			p.pos++
		}
	}
	return "", errors.Syntax(start, "unterminated string")
}

// parseUnicodeEscape decodes the 4 hex digits after \u, combining UTF-16
// surrogate pairs into a single rune.
func (p *parser) parseUnicodeEscape() (rune, error) {
	hi, err := p.hex4()
	if err != nil {
		return 0, err
	}
	if !utf16.IsSurrogate(rune(hi)) {
		return rune(hi), nil
	}
	// Expect a low surrogate to follow.
	if p.pos+1 < len(p.data) && p.data[p.pos] == '\\' && p.data[p.pos+1] == 'u' {
		save := p.pos
		p.pos += 2
		lo, err := p.hex4()
		if err != nil {
			return 0, err
		}
		if r := utf16.DecodeRune(rune(hi), rune(lo)); r != utf8.RuneError {
			return r, nil
		}
		p.pos = save
	}
	return utf8.RuneError, nil
}

func (p *parser) hex4() (uint16, error) {
	if p.pos+4 > len(p.data) {
		return 0, errors.Syntax(p.pos, "truncated unicode escape")
	}
	var v uint16
	for i := 0; i < 4; i++ {
		c := p.data[p.pos+i]
		switch {
		case c >= '0' && c <= '9':
			v = v<<4 | uint16(c-'0')
		case c >= 'a' && c <= 'f':
			v = v<<4 | uint16(c-'a'+10)
		case c >= 'A' && c <= 'F':
			v = v<<4 | uint16(c-'A'+10)
		default:
			return 0, errors.Syntax(p.pos+i, "invalid hex digit in unicode escape")
		}
	}
	p.pos += 4
	return v, nil
}

// intern materializes string bytes, in the arena when one is attached.
func (p *parser) intern(b []byte) (string, error) {
	if p.arena != nil {
		return p.arena.AllocString(string(b))
	}
	return string(b), nil
}

// parseNumber decodes a JSON number. Integers that fit int64 without
// fractional or exponent notation become KindInt; everything else, including
// out-of-range integers, becomes KindFloat.
func (p *parser) parseNumber() (Value, error) {
	start := p.pos
	if p.pos < len(p.data) && p.data[p.pos] == '-' {
		p.pos++
	}

	// Integer part: 0 alone, or a nonzero digit followed by more digits.
	switch {
	case p.pos < len(p.data) && p.data[p.pos] == '0':
		p.pos++
	case p.pos < len(p.data) && p.data[p.pos] >= '1' && p.data[p.pos] <= '9':
		for p.pos < len(p.data) && isDigit(p.data[p.pos]) {
			p.pos++
		}
	default:
		return Value{}, errors.Syntax(p.pos, "invalid number")
	}

	isFloat := false
	if p.pos < len(p.data) && p.data[p.pos] == '.' {
		isFloat = true
		p.pos++
		if p.pos >= len(p.data) || !isDigit(p.data[p.pos]) {
			return Value{}, errors.Syntax(p.pos, "digit required after decimal point")
		}
		for p.pos < len(p.data) && isDigit(p.data[p.pos]) {
			p.pos++
		}
	}
	if p.pos < len(p.data) && (p.data[p.pos] == 'e' || p.data[p.pos] == 'E') {
		isFloat = true
		p.pos++
		if p.pos < len(p.data) && (p.data[p.pos] == '+' || p.data[p.pos] == '-') {
			p.pos++
		}
		if p.pos >= len(p.data) || !isDigit(p.data[p.pos]) {
			return Value{}, errors.Syntax(p.pos, "digit required in exponent")
		}
		for p.pos < len(p.data) && isDigit(p.data[p.pos]) {
			p.pos++
		}
	}

	text := string(p.data[start:p.pos])
	if !isFloat {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return Int(i), nil
		}
		// Out of i64 range: fall back to float.
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Value{}, errors.Syntax(start, "invalid number")
	}
	return Float(f), nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
