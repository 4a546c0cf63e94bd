package tree

import "regexp"

// validNumberLiteral matches the exact grammar the engine promises to
// reproduce on decryption: an optional single leading '-', an integral part
// that is either "0" or has no leading zero, and an optional fractional
// part introduced by '.' that has no trailing zero.
var validNumberLiteralRE = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]*[1-9])?$`)

func validNumberLiteral(s string) bool {
	return validNumberLiteralRE.MatchString(s)
}
