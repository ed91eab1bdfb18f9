package payload

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// SerializationError reports a payload that has no canonical form.
type SerializationError struct {
	Reason string
}

func (e *SerializationError) Error() string {
	return "cannot serialize payload: " + e.Reason
}

// MarshalCanonical produces the canonical JSON serialization of a value:
// object keys sorted by UTF-16 code units, NFC-normalized strings, no
// HTML escaping, no whitespace, shortest float form. This is the ONLY
// serialization used for fingerprinting and for the persisted payload
// column, so the two can never diverge.
//
// NaN and infinities have no JSON form and fail with *SerializationError.
func MarshalCanonical(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalCanonical(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil:
		return &SerializationError{Reason: "untyped nil value"}
	case Null:
		buf.WriteString("null")
		return nil
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case Float:
		return marshalCanonicalFloat(buf, float64(val))
	case String:
		marshalCanonicalString(buf, string(val))
		return nil
	case Array:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	case Object:
		buf.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			marshalCanonicalString(buf, k)
			buf.WriteByte(':')
			if err := marshalCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		return &SerializationError{Reason: fmt.Sprintf("unsupported type %T", v)}
	}
}

// marshalCanonicalFloat writes the shortest round-trip representation.
// Whole-valued floats serialize without a fractional part, matching the
// Int form of the same number.
func marshalCanonicalFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return &SerializationError{Reason: fmt.Sprintf("non-finite number %v", f)}
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		buf.WriteString(strconv.FormatInt(int64(f), 10))
		return nil
	}
	b := strconv.AppendFloat(nil, f, 'g', -1, 64)
	buf.Write(b)
	return nil
}

const hexDigits = "0123456789abcdef"

// marshalCanonicalString writes a JSON string with minimal escaping:
// only the quote, the backslash, and control characters below U+0020
// are escaped. HTML-significant characters and U+2028/U+2029 are
// emitted literally, and the text is NFC normalized first.
func marshalCanonicalString(buf *bytes.Buffer, s string) {
	s = norm.NFC.String(s)

	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hexDigits[r>>4])
				buf.WriteByte(hexDigits[r&0xf])
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}
