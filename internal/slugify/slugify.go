// Package slugify derives URL-safe identifiers from display names and
// allocates them uniquely against a persistent store.
//
// Allocation is read-then-insert: the caller's existence check reflects the
// store at the time of the probe, so two concurrent creations with the same
// name can still observe the same free candidate. The slug columns carry
// storage-level unique indexes and the create paths retry once with the
// next suffix when the insert reports a uniqueness violation.
package slugify

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ExistsFunc reports whether a candidate slug is already taken.
type ExistsFunc func(candidate string) (bool, error)

// Make normalizes a display name into a base slug: lowercase, diacritics
// stripped, any run of non-alphanumerics collapsed to a single '-', no
// leading or trailing separator.
//
//	Make("Senior Node.js Developer") == "senior-node-js-developer"
func Make(s string) string {
	// Decompose so that combining marks can be dropped (é -> e + ́).
	decomposed := norm.NFD.String(s)

	var b strings.Builder
	b.Grow(len(s))
	prevSep := true // suppress a leading separator
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark, skip
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevSep = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
			prevSep = false
		default:
			if !prevSep {
				b.WriteByte('-')
				prevSep = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Allocate returns the first free slug derived from source: the base slug
// itself, then base-1, base-2, ... until exists reports a free candidate.
// The returned slug is unique with respect to the persisted set at the time
// of the check only; see the package comment for the concurrent case.
func Allocate(source string, exists ExistsFunc) (string, error) {
	base := Make(source)
	if base == "" {
		return "", fmt.Errorf("slugify: source %q yields an empty slug", source)
	}

	candidate := base
	for counter := 1; ; counter++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", fmt.Errorf("slugify: checking %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}

// Next returns the follow-up candidate for a slug that just lost an insert
// race: "base" becomes "base-1", "base-7" becomes "base-8".
func Next(slug string) string {
	if i := strings.LastIndex(slug, "-"); i > 0 {
		var n int
		if _, err := fmt.Sscanf(slug[i+1:], "%d", &n); err == nil && fmt.Sprintf("%d", n) == slug[i+1:] {
			return fmt.Sprintf("%s-%d", slug[:i], n+1)
		}
	}
	return slug + "-1"
}
