package phone

import "strings"

// Digits strips everything but ASCII digits. Donor inboxes and consumer
// request lists are keyed by the digit form so "+91 98765-43210" and
// "919876543210" address the same person.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
