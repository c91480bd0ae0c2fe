package helpqa

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-zoe/internal/remote"
)

// State filters.
const (
	StateOpen   = "open"
	StateClosed = "closed"
	StateAll    = "all"
)

// ParseMetaDescription reads a label description. Plain text becomes
// {"description": s}; "key:value, key2:value2" becomes a map. A part without
// a value maps to "".
func ParseMetaDescription(s string) map[string]string {
	out := make(map[string]string)
	if s == "" {
		return out
	}
	if !strings.Contains(s, ":") && !strings.Contains(s, ",") {
		out["description"] = s
		return out
	}
	for _, part := range strings.Split(s, ",") {
		key, value, _ := strings.Cut(part, ":")
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out
}

// ParseCategory turns a label into a category. With a prefix, only labels
// named "<prefix>:<name>" qualify and the category is named after the rest.
func ParseCategory(label remote.GitHubLabel, prefix string) (*Category, bool) {
	name := label.Name
	if prefix != "" {
		head, rest, _ := strings.Cut(label.Name, ":")
		if head != prefix {
			return nil, false
		}
		name = strings.TrimSpace(rest)
	}

	meta := ParseMetaDescription(remote.StringValue(label.Description))
	return &Category{
		ID:          strconv.FormatInt(label.ID, 10),
		Name:        name,
		Color:       "#" + label.Color,
		Description: meta["description"],
		Icon:        meta["icon"],
	}, true
}

// ParseItem turns an issue into a help item. It returns false for pull
// requests, issues filtered out by state, and issues without a matching
// category label. An empty or "all" state keeps every issue.
func ParseItem(issue remote.GitHubIssue, prefix, state string) (*Item, bool) {
	if issue.IsPullRequest() {
		return nil, false
	}
	if state != "" && state != StateAll && state != issue.State {
		return nil, false
	}

	var categories []*Category
	for _, label := range issue.Labels {
		if category, ok := ParseCategory(label, prefix); ok {
			categories = append(categories, category)
		}
	}
	if len(categories) == 0 {
		return nil, false
	}

	return &Item{
		ID:         strconv.FormatInt(issue.ID, 10),
		Number:     issue.Number,
		Title:      issue.Title,
		Body:       remote.StringValue(issue.Body),
		State:      issue.State,
		IsPinned:   issue.Assignee != nil,
		CreatedAt:  issue.CreatedAt,
		URL:        issue.HTMLURL,
		Categories: categories,
	}, true
}
