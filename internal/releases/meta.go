package releases

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var metaPattern = regexp.MustCompile("```yaml version([\\s\\S]*?)```")

// Meta is the optional YAML block embedded in release notes:
//
//	```yaml version
//	version: 1.4.0
//	assets:
//	  mac: https://example.com/app.dmg
//	urls:
//	  docs: https://example.com/docs
//	```
type Meta struct {
	Version string            `yaml:"version,omitempty" json:"version,omitempty"`
	Assets  map[string]string `yaml:"assets,omitempty" json:"assets,omitempty"`
	URLs    map[string]string `yaml:"urls,omitempty" json:"urls,omitempty"`
}

// ParseMeta decodes the first meta block in note. It returns nil when the
// note has no block or the block is not valid YAML.
func ParseMeta(note string) *Meta {
	match := metaPattern.FindStringSubmatch(note)
	if match == nil || strings.TrimSpace(match[1]) == "" {
		return nil
	}
	var meta Meta
	if err := yaml.Unmarshal([]byte(match[1]), &meta); err != nil {
		return nil
	}
	return &meta
}

// StripMeta removes the first meta block and trims the remaining note.
func StripMeta(note string) string {
	loc := metaPattern.FindStringIndex(note)
	if loc == nil {
		return strings.TrimSpace(note)
	}
	return strings.TrimSpace(note[:loc[0]] + note[loc[1]:])
}
