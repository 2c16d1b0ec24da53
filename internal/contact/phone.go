// AngelaMos | 2026
// phone.go

package contact

import (
	"strings"
)

// NormalizePhone reduces a raw phone string to E.164-ish form. US
// numbers get a +1 prefix; longer international numbers keep their
// digits behind a plus. Inputs too short to be dialable come back
// empty rather than poisoning the column.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits
	case len(digits) == 10:
		return "+1" + digits
	case len(digits) > 10:
		return "+" + digits
	default:
		return ""
	}
}
