package domain

import "strings"

// Slugify derives the stable cross-system key for a brand name: lowercase,
// every run of characters outside [a-z0-9] collapsed to a single hyphen,
// leading and trailing hyphens stripped. Deterministic and pure; produces an
// empty string for input with no alphanumeric characters, which callers must
// treat as invalid. Uniqueness is the caller's responsibility.
func Slugify(name string) string {
	lower := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(lower))
	pendingHyphen := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		} else {
			pendingHyphen = true
		}
	}

	return b.String()
}
