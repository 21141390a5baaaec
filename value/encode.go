package value

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/craftkit/web-runtime/errors"
)

const (
	encBufInitCap = 256
	// Oversized buffers are not returned to the pool.
	encBufMaxCap = 64 * 1024
)

var encBufPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, encBufInitCap)
		return &buf
	},
}

func getEncBuf() *[]byte {
	return encBufPool.Get().(*[]byte)
}

func putEncBuf(buf *[]byte) {
	if buf == nil || cap(*buf) > encBufMaxCap {
		return // reject oversized
	}
	*buf = (*buf)[:0]
	encBufPool.Put(buf)
}

// Encode serializes v to JSON text. Object keys appear in insertion order,
// so Parse(Encode(v)).Equal(v) holds for every encodable v. NaN and infinite
// floats have no JSON representation and fail with an encode error.
func Encode(v Value) ([]byte, error) {
	buf := getEncBuf()
	defer putEncBuf(buf)

	out, err := appendValue(*buf, v)
	if err != nil {
		return nil, err
	}
	result := make([]byte, len(out))
	copy(result, out)
	*buf = out[:0]
	return result, nil
}

func appendValue(b []byte, v Value) ([]byte, error) {
	switch v.kind {
	case KindNull:
		return append(b, "null"...), nil
	case KindBool:
		if v.b {
			return append(b, "true"...), nil
		}
		return append(b, "false"...), nil
	case KindInt:
		return strconv.AppendInt(b, v.i, 10), nil
	case KindFloat:
		return appendFloat(b, v.f)
	case KindString:
		return appendString(b, v.s), nil
	case KindArray:
		b = append(b, '[')
		for i, e := range v.a.elems {
			if i > 0 {
				b = append(b, ',')
			}
			var err error
			b, err = appendValue(b, e)
			if err != nil {
				return nil, err
			}
		}
		return append(b, ']'), nil
	case KindObject:
		b = append(b, '{')
		for i, m := range v.o.members {
			if i > 0 {
				b = append(b, ',')
			}
			b = appendString(b, m.Key)
			b = append(b, ':')
			var err error
			b, err = appendValue(b, m.Value)
			if err != nil {
				return nil, err
			}
		}
		return append(b, '}'), nil
	default:
		return nil, errors.Encode(nil, "invalid value kind")
	}
}

// appendFloat writes f with the shortest round-trip representation. Integral
// floats keep a trailing ".0" so they re-parse as KindFloat, preserving the
// Int/Float distinction across a round trip.
func appendFloat(b []byte, f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errors.NonFinite(nil, f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return append(b, s...), nil
}

const hexDigits = "0123456789abcdef"

func appendString(b []byte, s string) []byte {
	b = append(b, '"')
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			if c < utf8.RuneSelf {
				i++
				continue
			}
			_, size := utf8.DecodeRuneInString(s[i:])
			i += size
			continue
		}
		b = append(b, s[start:i]...)
		switch c {
		case '"':
			b = append(b, '\\', '"')
		case '\\':
			b = append(b, '\\', '\\')
		case '\n':
			b = append(b, '\\', 'n')
		case '\r':
			b = append(b, '\\', 'r')
		case '\t':
			b = append(b, '\\', 't')
		case '\b':
			b = append(b, '\\', 'b')
		case '\f':
			b = append(b, '\\', 'f')
		default:
			b = append(b, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
		}
		i++
		start = i
	}
	b = append(b, s[start:]...)
	return append(b, '"')
}
