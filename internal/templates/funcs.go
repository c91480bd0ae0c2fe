package templates

import (
	"errors"
	"fmt"
	"html/template"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"
)

const defaultDateLayout = "2006-01-02"

// Funcs returns the helper functions available to every template. urls may
// be nil, in which case url fails and absURL returns its input.
func Funcs(urls URLResolver) template.FuncMap {
	return template.FuncMap{
		"safeHTML":   safeHTML,
		"safeURL":    safeURL,
		"safeCSS":    safeCSS,
		"formatDate": formatDate,
		"isoDate":    isoDate,
		"year":       year,
		"join":       join,
		"lower":      strings.ToLower,
		"url": func(name string, pairs ...any) (string, error) {
			if urls == nil {
				return "", errors.New("templates: url resolver not configured")
			}
			params, err := dict(pairs...)
			if err != nil {
				return "", err
			}
			return urls.Href(name, params)
		},
		"relURL": func(p string) string {
			if urls == nil {
				return p
			}
			return urls.Rel(p)
		},
		"absURL": func(p string) string {
			if urls == nil {
				return p
			}
			return urls.Absolute(p)
		},
		"add":      func(a, b int) int { return a + b },
		"sub":      func(a, b int) int { return a - b },
		"seq":      seq,
		"dict":     dict,
		"default":  defaultValue,
		"truncate": truncate,
	}
}

func safeHTML(value any) template.HTML {
	switch v := value.(type) {
	case template.HTML:
		return v
	case string:
		return template.HTML(v)
	case []byte:
		return template.HTML(v)
	case nil:
		return ""
	default:
		return template.HTML(fmt.Sprint(v))
	}
}

func safeURL(value string) template.URL {
	return template.URL(value)
}

func safeCSS(value any) template.CSS {
	switch v := value.(type) {
	case string:
		return template.CSS(v)
	case []byte:
		return template.CSS(v)
	default:
		return template.CSS(fmt.Sprint(v))
	}
}

func toTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	default:
		return time.Time{}, false
	}
}

// formatDate formats t with the optional layout, "2006-01-02" by default.
// Strings are returned unchanged so preformatted dates pass through.
func formatDate(value any, layout ...string) string {
	if s, ok := value.(string); ok {
		return s
	}
	t, ok := toTime(value)
	if !ok {
		return ""
	}
	format := defaultDateLayout
	if len(layout) > 0 && strings.TrimSpace(layout[0]) != "" {
		format = layout[0]
	}
	return t.Format(format)
}

func isoDate(value any) string {
	t, ok := toTime(value)
	if !ok {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// year returns the year of the given time, or the current year.
func year(values ...any) int {
	if len(values) > 0 {
		if t, ok := toTime(values[0]); ok {
			return t.Year()
		}
	}
	return time.Now().Year()
}

// join is pipeline friendly: {{ .Names | join ", " }}.
func join(sep string, items any) string {
	switch v := items.(type) {
	case []string:
		return strings.Join(v, sep)
	case nil:
		return ""
	}
	rv := reflect.ValueOf(items)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Sprint(items)
	}
	parts := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		parts = append(parts, fmt.Sprint(rv.Index(i).Interface()))
	}
	return strings.Join(parts, sep)
}

// seq returns 1..n.
func seq(n int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("templates: dict expects key/value pairs")
	}
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("templates: dict key %v is not a string", pairs[i])
		}
		out[key] = pairs[i+1]
	}
	return out, nil
}

// defaultValue is pipeline friendly: {{ .Title | default "Untitled" }}.
func defaultValue(fallback any, value any) any {
	if isEmpty(value) {
		return fallback
	}
	return value
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	}
	return false
}

// truncate is pipeline friendly: {{ .Body | truncate 140 }}. It counts runes
// and appends "…" when text was cut.
func truncate(n int, s string) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
