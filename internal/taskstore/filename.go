package taskstore

import (
	"fmt"
	"strings"
)

const maxSlugLen = 50

// RecordFilename builds the canonical file name for a record: the issue
// number followed by a slug of the title.
func RecordFilename(identifier int, title string) string {
	slug := normalizeTitle(title)
	if slug == "" {
		return fmt.Sprintf("%d%s", identifier, recordExtension)
	}
	return fmt.Sprintf("%d-%s%s", identifier, slug, recordExtension)
}

func normalizeTitle(title string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}
