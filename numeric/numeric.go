// Package numeric implements the format-preserving codec for decimal
// numeral halves (the integral part and the fractional part of a JSON
// number), keeping the exact textual representation round-trip safe rather
// than routing values through a machine float.
package numeric

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	fpe "github.com/vdparikh/treefpe"
	"github.com/vdparikh/treefpe/alphabet"
)

// W is the width, in decimal digits, of the random padding drawn for every
// numeral half.
const W = 8

var ten8 = new(big.Int).Exp(big.NewInt(10), big.NewInt(W), nil) // 10^W

// EncryptIntegral encrypts the integral half of a numeral (e.g. "42", "-7",
// "0"). s must not start with '0' unless s == "0", and may carry a leading
// '-'. Output never starts with a leading zero digit, so re-parsing it as a
// number literal never fails.
func EncryptIntegral(key, tweak []byte, s string) (string, error) {
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	r, err := randRange(ten8)
	if err != nil {
		return "", fmt.Errorf("numeric: %w", err)
	}

	padded := zpadLeft(r.String(), W) + zpadLeft(s, W)

	cipher, err := fpe.New(key, tweak)
	if err != nil {
		return "", fmt.Errorf("numeric: %w", err)
	}
	ciphertext, err := cipher.Encrypt(alphabet.Digits10, padded)
	if err != nil {
		return "", fmt.Errorf("numeric: encrypt integral: %w", err)
	}

	d, err := randDigit()
	if err != nil {
		return "", fmt.Errorf("numeric: %w", err)
	}

	rEven := r.Bit(0) == 0
	sign := ""
	if negative != rEven {
		sign = "-"
	}

	return fmt.Sprintf("%s%d%s", sign, d, ciphertext), nil
}

// DecryptIntegral is the inverse of EncryptIntegral.
func DecryptIntegral(key, tweak []byte, s string) (string, error) {
	negativeCT := strings.HasPrefix(s, "-")
	if negativeCT {
		s = s[1:]
	}
	if len(s) < 1 {
		return "", fmt.Errorf("numeric: ciphertext too short to contain the discarded leading digit")
	}
	rest := s[1:] // drop the discarded guard digit d

	cipher, err := fpe.New(key, tweak)
	if err != nil {
		return "", fmt.Errorf("numeric: %w", err)
	}
	plaintext, err := cipher.Decrypt(alphabet.Digits10, rest)
	if err != nil {
		return "", fmt.Errorf("numeric: decrypt integral: %w", err)
	}
	if len(plaintext) < W {
		return "", fmt.Errorf("numeric: decrypted integral shorter than the random prefix")
	}

	rParityDigit := plaintext[W-1]
	rEven := (rParityDigit-'0')%2 == 0
	sign := ""
	if negativeCT != rEven {
		sign = "-"
	}

	trimmed := strings.TrimLeft(plaintext[W:], "0")
	if trimmed == "" {
		trimmed = "0"
	}
	return sign + trimmed, nil
}

// EncryptFractional encrypts the fractional half of a numeral (the part
// after '.'). s must have no trailing zero (a well-formed fractional
// literal never does). Output never ends in '0', so re-parsing never
// collapses it.
func EncryptFractional(key, tweak []byte, s string) (string, error) {
	r, err := randRange(ten8)
	if err != nil {
		return "", fmt.Errorf("numeric: %w", err)
	}

	padded := zpadRight(s, W) + zpadRight(r.String(), W)

	cipher, err := fpe.New(key, tweak)
	if err != nil {
		return "", fmt.Errorf("numeric: %w", err)
	}
	ciphertext, err := cipher.Encrypt(alphabet.Digits10, padded)
	if err != nil {
		return "", fmt.Errorf("numeric: encrypt fractional: %w", err)
	}

	d, err := randDigit()
	if err != nil {
		return "", fmt.Errorf("numeric: %w", err)
	}

	return fmt.Sprintf("%s%d", ciphertext, d), nil
}

// DecryptFractional is the inverse of EncryptFractional.
func DecryptFractional(key, tweak []byte, s string) (string, error) {
	if len(s) < 1 {
		return "", fmt.Errorf("numeric: ciphertext too short to contain the discarded trailing digit")
	}
	rest := s[:len(s)-1] // drop the discarded guard digit d

	cipher, err := fpe.New(key, tweak)
	if err != nil {
		return "", fmt.Errorf("numeric: %w", err)
	}
	plaintext, err := cipher.Decrypt(alphabet.Digits10, rest)
	if err != nil {
		return "", fmt.Errorf("numeric: decrypt fractional: %w", err)
	}
	if len(plaintext) < W {
		return "", fmt.Errorf("numeric: decrypted fractional shorter than the random suffix")
	}

	sPart := plaintext[:len(plaintext)-W]
	trimmed := strings.TrimRight(sPart, "0")
	if trimmed == "" {
		return "0", nil
	}
	return trimmed, nil
}

// zpadLeft left-pads s with '0' to width w. If s is already at least w
// characters, it is returned unchanged (the random prefix is a strict
// minimum width, not a cap on the numeral's own length).
func zpadLeft(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return strings.Repeat("0", w-len(s)) + s
}

// zpadRight is the mirror of zpadLeft for the right-anchored fractional
// half.
func zpadRight(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat("0", w-len(s))
}

// randRange draws a uniform random integer in [1, max).
func randRange(max *big.Int) (*big.Int, error) {
	upper := new(big.Int).Sub(max, big.NewInt(1)) // rand.Int draws from [0, upper)
	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return nil, fmt.Errorf("draw random integer: %w", err)
	}
	return n.Add(n, big.NewInt(1)), nil
}

// randDigit draws a uniform random digit in [1, 9].
func randDigit() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9))
	if err != nil {
		return 0, fmt.Errorf("draw guard digit: %w", err)
	}
	return n.Int64() + 1, nil
}
