// Package alphabet defines the symbol sets that the FPE primitive in
// subtle operates over, and the codecs between domain strings and the
// []uint32 symbol arrays that primitive consumes.
package alphabet

import "fmt"

// Alphabet maps domain values (decimal digit strings, Unicode text) to and
// from the fixed-radix symbol arrays the FF1 primitive permutes.
type Alphabet interface {
	// Radix is the number of distinct symbols in the alphabet.
	Radix() int
	// Encode converts s into a symbol array. len(result) equals the number
	// of alphabet symbols s is made of (code points for UTF, bytes for
	// Digits10), which is the length the FPE primitive must preserve.
	Encode(s string) ([]uint32, error)
	// Decode is the inverse of Encode.
	Decode(symbols []uint32) (string, error)
}

// Digits10 is the ten ASCII decimal digits, radix 10. Used for the integral
// and fractional halves of numeric literals.
var Digits10 Alphabet = digits10{}

type digits10 struct{}

func (digits10) Radix() int { return 10 }

func (digits10) Encode(s string) ([]uint32, error) {
	out := make([]uint32, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("alphabet: byte %q at offset %d is not a decimal digit", c, i)
		}
		out[i] = uint32(c - '0')
	}
	return out, nil
}

func (digits10) Decode(symbols []uint32) (string, error) {
	out := make([]byte, len(symbols))
	for i, v := range symbols {
		if v > 9 {
			return "", fmt.Errorf("alphabet: symbol %d at offset %d is out of range for DIGITS10", v, i)
		}
		out[i] = byte('0' + v)
	}
	return string(out), nil
}

// surrogateLo and surrogateHi bound the UTF-16 surrogate range, which is
// not assigned to any Unicode scalar value and is therefore excluded from
// the alphabet.
const (
	surrogateLo = 0xD800
	surrogateHi = 0xDFFF
	maxScalar   = 0x10FFFF
	// UTFRadix is the number of Unicode scalar values: every code point in
	// [0, 0x10FFFF] except the 2048 surrogates.
	UTFRadix = maxScalar + 1 - (surrogateHi - surrogateLo + 1)
)

// UTF is the full Unicode scalar value alphabet (every code point except
// the UTF-16 surrogate range), radix UTFRadix. Used for string leaves and
// for the depth-collapse escape.
var UTF Alphabet = utfAlphabet{}

type utfAlphabet struct{}

func (utfAlphabet) Radix() int { return UTFRadix }

func (utfAlphabet) Encode(s string) ([]uint32, error) {
	runes := []rune(s)
	out := make([]uint32, len(runes))
	for i, r := range runes {
		idx, err := scalarIndex(r)
		if err != nil {
			return nil, fmt.Errorf("alphabet: offset %d: %w", i, err)
		}
		out[i] = idx
	}
	return out, nil
}

func (utfAlphabet) Decode(symbols []uint32) (string, error) {
	runes := make([]rune, len(symbols))
	for i, v := range symbols {
		r, err := scalarRune(v)
		if err != nil {
			return "", fmt.Errorf("alphabet: offset %d: %w", i, err)
		}
		runes[i] = r
	}
	return string(runes), nil
}

// scalarIndex maps a Unicode scalar value to its dense index in [0, UTFRadix).
func scalarIndex(r rune) (uint32, error) {
	v := uint32(r)
	if v > maxScalar {
		return 0, fmt.Errorf("code point %U exceeds Unicode range", r)
	}
	if v >= surrogateLo && v <= surrogateHi {
		return 0, fmt.Errorf("code point %U is a surrogate, not a scalar value", r)
	}
	if v < surrogateLo {
		return v, nil
	}
	return v - (surrogateHi - surrogateLo + 1), nil
}

// scalarRune is the inverse of scalarIndex.
func scalarRune(idx uint32) (rune, error) {
	if idx >= UTFRadix {
		return 0, fmt.Errorf("symbol %d out of range for UTF alphabet (radix %d)", idx, UTFRadix)
	}
	if idx < surrogateLo {
		return rune(idx), nil
	}
	return rune(idx + (surrogateHi - surrogateLo + 1)), nil
}
