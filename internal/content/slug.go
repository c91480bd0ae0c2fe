package content

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-slug"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9\x{4e00}-\x{9fa5}]+`)
	slugASCII   = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify lowercases s and collapses every run of characters outside a-z,
// 0-9 and CJK ideographs into a single dash, trimming dashes at both ends.
// Letters outside that set are dropped. When nothing survives, the slug
// normaliser gets a chance to produce an ASCII slug.
func Slugify(s string) string {
	out := strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if out != "" || strings.TrimSpace(s) == "" {
		return out
	}
	if normalized, err := slug.Normalize(s); err == nil && slugASCII.MatchString(normalized) {
		return normalized
	}
	return ""
}
