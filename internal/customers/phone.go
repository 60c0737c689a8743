package customers

import "strings"

// NormalizePhone strips everything but digits so `090-1234-5678` and
// `09012345678` resolve to the same customer.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
