package intake

import "strings"

const (
	minPhoneDigits = 10
	cpfDigits      = 11
)

// StripNonDigits keeps only ASCII digits, so "+55 (11) 98765-4321"
// and "11987654321" normalize to the same key.
func StripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePhone returns the digits-only phone and whether it meets the
// minimum length for a dialable number with area code.
func NormalizePhone(raw string) (string, bool) {
	digits := StripNonDigits(raw)
	return digits, len(digits) >= minPhoneDigits
}

// NormalizeCPF returns the digits-only national ID and whether it has the
// exact required length. An empty input is valid (CPF is optional).
func NormalizeCPF(raw string) (string, bool) {
	digits := StripNonDigits(raw)
	if digits == "" {
		return "", true
	}
	return digits, len(digits) == cpfDigits
}
