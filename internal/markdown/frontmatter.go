package markdown

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the decoded metadata block of a document. Nested maps are
// normalised to map[string]any regardless of the source format.
type FrontMatter map[string]any

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
}

// ParseFrontMatter splits source into its metadata and Markdown body. YAML
// (---), TOML (+++) and JSON (;;;) blocks are recognised. Sources without a
// block return an empty FrontMatter and the full input as body.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	raw := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(source), &raw)
	if err != nil {
		return nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	meta := make(FrontMatter, len(raw))
	for key, value := range raw {
		meta[key] = normalizeValue(value)
	}
	return meta, body, nil
}

// String returns the value for key rendered as a string, or "".
func (f FrontMatter) String(key string) string {
	value, ok := f[key]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case time.Time:
		return typed.Format(time.RFC3339)
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}

// Bool reports the boolean value for key. ok is false when the key is
// missing or cannot be read as a boolean.
func (f FrontMatter) Bool(key string) (value bool, ok bool) {
	switch typed := f[key].(type) {
	case bool:
		return typed, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

// Strings returns a list value. A scalar is returned as a single element
// list; empty entries are dropped.
func (f FrontMatter) Strings(key string) []string {
	var items []any
	switch typed := f[key].(type) {
	case nil:
		return nil
	case []any:
		items = typed
	case []string:
		for _, item := range typed {
			items = append(items, item)
		}
	default:
		items = []any{typed}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		text := strings.TrimSpace(fmt.Sprint(item))
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}

// Time returns the timestamp for key. YAML timestamps and date strings in the
// common layouts are accepted.
func (f FrontMatter) Time(key string) (time.Time, bool) {
	switch typed := f[key].(type) {
	case time.Time:
		return typed, !typed.IsZero()
	case string:
		return ParseDate(typed)
	default:
		return time.Time{}, false
	}
}

// ParseDate parses s using the layouts accepted in frontmatter.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func normalizeValue(value any) any {
	switch typed := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = normalizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return value
	}
}
