// Package bitvec represents fixed-width binary values read back from the
// solver: net values, memory words, and free symbolic constants. Widths are
// arbitrary (hardware nets are rarely byte-aligned), so values are kept as
// plain bit strings rather than fixed-size integer types.
package bitvec

import (
	"fmt"
	"strings"
)

// Value is a binary vector, most-significant bit first, exactly as the
// solver reports it (e.g. "0110").
type Value string

// Width reports the number of bits.
func (v Value) Width() int { return len(v) }

// IsZero reports whether every bit is 0.
func (v Value) IsZero() bool {
	for _, b := range v {
		if b != '0' {
			return false
		}
	}
	return true
}

// FromBool renders a 1-bit vector.
func FromBool(b bool) Value {
	if b {
		return "1"
	}
	return "0"
}

// Parse validates that s is a binary string and returns it as a Value.
func Parse(s string) (Value, error) {
	if s == "" {
		return "", fmt.Errorf("empty bit vector")
	}
	if strings.IndexFunc(s, func(r rune) bool { return r != '0' && r != '1' }) != -1 {
		return "", fmt.Errorf("not a binary string: %q", s)
	}
	return Value(s), nil
}

// PadTo left-pads v with zero bits to the given width.
func (v Value) PadTo(width int) Value {
	if len(v) >= width {
		return v
	}
	return Value(strings.Repeat("0", width-len(v)) + string(v))
}

var hexNibble = map[byte]string{
	'0': "0000", '1': "0001", '2': "0010", '3': "0011",
	'4': "0100", '5': "0101", '6': "0110", '7': "0111",
	'8': "1000", '9': "1001", 'a': "1010", 'b': "1011",
	'c': "1100", 'd': "1101", 'e': "1110", 'f': "1111",
	'A': "1010", 'B': "1011", 'C': "1100", 'D': "1101",
	'E': "1110", 'F': "1111",
}

// NormalizeLiteral strips the `#b`/`#x` bit-vector literal syntax a
// get-value response comes back in and returns a bare binary string,
// mirroring the get_net_binary_list/bv2bin convenience layer: `#b0011`
// becomes `"0011"` and `#xb` becomes `"1011"`. `true`/`false` pass through unchanged
// (Bool-sorted terms), and a bare binary string is returned as-is.
func NormalizeLiteral(s string) (string, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "true", s == "false":
		return s, nil
	case strings.HasPrefix(s, "#b"):
		bits := s[2:]
		if bits == "" {
			return "", fmt.Errorf("empty #b literal")
		}
		return bits, nil
	case strings.HasPrefix(s, "#x"):
		hex := s[2:]
		if hex == "" {
			return "", fmt.Errorf("empty #x literal")
		}
		var b strings.Builder
		for i := 0; i < len(hex); i++ {
			nib, ok := hexNibble[hex[i]]
			if !ok {
				return "", fmt.Errorf("not a hex bit-vector literal: %q", s)
			}
			b.WriteString(nib)
		}
		return b.String(), nil
	default:
		return s, nil
	}
}

// ParseSMTLiteral normalizes a raw get-value response (stripping `#b`/`#x`
// syntax) and parses the result as a binary Value.
func ParseSMTLiteral(s string) (Value, error) {
	norm, err := NormalizeLiteral(s)
	if err != nil {
		return "", err
	}
	return Parse(norm)
}
