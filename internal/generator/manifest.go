package generator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ManifestFile records the outputs of the last build in the output root.
const ManifestFile = ".zoe-manifest.json"

const (
	manifestFileName    = ManifestFile
	manifestFileVersion = 1
)

// buildManifest stores the checksum of every output of the last build to
// support incremental runs and stale output removal.
type buildManifest struct {
	Version     int                       `json:"version"`
	BuildID     string                    `json:"build_id,omitempty"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Outputs     map[string]manifestOutput `json:"outputs"`
}

type manifestOutput struct {
	Path      string    `json:"path"`
	Category  string    `json:"category"`
	Route     string    `json:"route,omitempty"`
	Template  string    `json:"template,omitempty"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	WrittenAt time.Time `json:"written_at"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version: manifestFileVersion,
		Outputs: map[string]manifestOutput{},
	}
}

func parseManifest(data []byte) (*buildManifest, error) {
	if len(data) == 0 {
		return newBuildManifest(), nil
	}
	var stored struct {
		Version     int              `json:"version"`
		BuildID     string           `json:"build_id"`
		GeneratedAt time.Time        `json:"generated_at"`
		Outputs     []manifestOutput `json:"outputs"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	manifest := newBuildManifest()
	manifest.BuildID = stored.BuildID
	manifest.GeneratedAt = stored.GeneratedAt
	if stored.Version != 0 {
		manifest.Version = stored.Version
	}
	for _, entry := range stored.Outputs {
		if key := strings.TrimSpace(entry.Path); key != "" {
			manifest.Outputs[key] = entry
		}
	}
	return manifest, nil
}

// marshal writes outputs as a list sorted by path for deterministic output.
func (m *buildManifest) marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	ordered := struct {
		Version     int              `json:"version"`
		BuildID     string           `json:"build_id,omitempty"`
		GeneratedAt time.Time        `json:"generated_at"`
		Outputs     []manifestOutput `json:"outputs"`
	}{
		Version:     m.Version,
		BuildID:     m.BuildID,
		GeneratedAt: m.GeneratedAt,
		Outputs:     make([]manifestOutput, 0, len(m.Outputs)),
	}
	if ordered.Version == 0 {
		ordered.Version = manifestFileVersion
	}
	for _, entry := range m.Outputs {
		ordered.Outputs = append(ordered.Outputs, entry)
	}
	sort.Slice(ordered.Outputs, func(i, j int) bool {
		return ordered.Outputs[i].Path < ordered.Outputs[j].Path
	})
	return json.MarshalIndent(ordered, "", "  ")
}

func (m *buildManifest) lookup(output string) (manifestOutput, bool) {
	if m == nil || len(m.Outputs) == 0 {
		return manifestOutput{}, false
	}
	entry, ok := m.Outputs[strings.TrimSpace(output)]
	return entry, ok
}

func (m *buildManifest) set(entry manifestOutput) {
	if m.Outputs == nil {
		m.Outputs = map[string]manifestOutput{}
	}
	m.Outputs[strings.TrimSpace(entry.Path)] = entry
}

// unchanged reports whether output was last written with checksum.
func (m *buildManifest) unchanged(output, checksum string) bool {
	entry, ok := m.lookup(output)
	return ok && entry.Checksum == checksum
}

// stale lists outputs recorded in m that current does not produce.
func (m *buildManifest) stale(current map[string]struct{}) []string {
	if m == nil {
		return nil
	}
	var out []string
	for key := range m.Outputs {
		if _, ok := current[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}
