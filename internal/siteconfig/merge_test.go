package siteconfig

import (
	"reflect"
	"testing"
)

func TestDeepMergeNestedMaps(t *testing.T) {
	base := map[string]any{
		"title": "Base",
		"blog": map[string]any{
			"title":        "Blog",
			"postsPerPage": 10,
		},
		"contentDirs": []any{"content", "notes"},
	}
	overlay := map[string]any{
		"blog": map[string]any{
			"postsPerPage": 5,
		},
		"contentDirs": []any{"drafts"},
		"theme":       "cyber",
	}

	merged := DeepMerge(base, overlay)

	want := map[string]any{
		"title": "Base",
		"blog": map[string]any{
			"title":        "Blog",
			"postsPerPage": 5,
		},
		"contentDirs": []any{"drafts"},
		"theme":       "cyber",
	}
	if !reflect.DeepEqual(merged, want) {
		t.Fatalf("unexpected merge result:\nwant %#v\n got %#v", want, merged)
	}
}

func TestDeepMergeDoesNotMutateInputs(t *testing.T) {
	base := map[string]any{"blog": map[string]any{"title": "Blog"}}
	overlay := map[string]any{"blog": map[string]any{"title": "Notes"}}

	merged := DeepMerge(base, overlay)
	merged["blog"].(map[string]any)["title"] = "Changed"

	if base["blog"].(map[string]any)["title"] != "Blog" {
		t.Fatalf("base mutated: %#v", base)
	}
	if overlay["blog"].(map[string]any)["title"] != "Notes" {
		t.Fatalf("overlay mutated: %#v", overlay)
	}
}

func TestDeepMergeScalarReplacesMap(t *testing.T) {
	merged := DeepMerge(
		map[string]any{"comments": map[string]any{"provider": "giscus"}},
		map[string]any{"comments": nil},
	)
	if value, ok := merged["comments"]; !ok || value != nil {
		t.Fatalf("expected overlay nil to replace map, got %#v", merged["comments"])
	}
}
