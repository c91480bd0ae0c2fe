package changelog

import (
	"path/filepath"
	"regexp"
	"strings"
)

var filenameVersion = regexp.MustCompile(`(?i)v?(\d+\.\d+(?:\.\d+)?(?:-[\w.]+)?)`)

// ParseVersionFromFilename extracts a version such as v1.2.0 from names like
// "v1.2.0.md", "1.2.0.md" or "2024-01-01-v1.2.0.md". A bare version gets a
// "v" prefix. It returns "" when the name holds no version.
func ParseVersionFromFilename(name string) string {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	match := filenameVersion.FindStringSubmatch(stem)
	if match == nil {
		return ""
	}
	if strings.HasPrefix(match[0], "v") {
		return match[0]
	}
	return "v" + match[1]
}

// CompareVersions orders versions newest first: it returns -1 when a is
// newer than b, 1 when older and 0 when equal. Parts are split on "." and
// "-"; each part contributes its leading digits, or 0 when it has none.
func CompareVersions(a, b string) int {
	pa, pb := versionParts(a), versionParts(b)
	n := max(len(pa), len(pb))
	for i := 0; i < n; i++ {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		switch {
		case x > y:
			return -1
		case x < y:
			return 1
		}
	}
	return 0
}

func versionParts(version string) []int {
	clean := strings.TrimPrefix(version, "v")
	fields := strings.FieldsFunc(clean, func(r rune) bool { return r == '.' || r == '-' })
	parts := make([]int, len(fields))
	for i, field := range fields {
		parts[i] = leadingInt(field)
	}
	return parts
}

func leadingInt(s string) int {
	n := 0
	for _, r := range strings.TrimSpace(s) {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// Slug turns a version into a URL segment: "v1.2.0" becomes "1-2-0".
func Slug(version string) string {
	return strings.ReplaceAll(strings.TrimPrefix(version, "v"), ".", "-")
}

func normalizeVersion(version string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(version)), "v")
}
