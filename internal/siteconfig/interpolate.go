package siteconfig

import (
	"regexp"
	"strings"
)

var variablePattern = regexp.MustCompile(`\$\{zoe\.([^}]+)\}`)

// Interpolate replaces ${zoe.<path>} references in every string reachable
// from value. Paths are dot separated and resolved against root. Missing
// paths and non-string targets resolve to the empty string.
func Interpolate(value any, root map[string]any) any {
	switch typed := value.(type) {
	case string:
		return interpolateString(typed, root)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = Interpolate(item, root)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = Interpolate(item, root)
		}
		return out
	default:
		return value
	}
}

func interpolateString(s string, root map[string]any) string {
	if !strings.Contains(s, "${zoe.") {
		return s
	}
	return variablePattern.ReplaceAllStringFunc(s, func(match string) string {
		path := variablePattern.FindStringSubmatch(match)[1]
		value, _ := lookupString(root, path)
		return value
	})
}

func lookupString(root map[string]any, path string) (string, bool) {
	var current any = root
	for _, part := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return "", false
		}
		if current, ok = node[part]; !ok {
			return "", false
		}
	}
	value, ok := current.(string)
	return value, ok
}
