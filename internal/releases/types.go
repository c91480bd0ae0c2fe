package releases

import "time"

// Providers.
const (
	ProviderGitHub = "github"
	ProviderGitee  = "gitee"
)

// Release is a provider-neutral release shown on the releases page.
type Release struct {
	Provider    string
	ID          string
	Repo        string
	Title       string
	Version     string
	CreatedAt   time.Time
	PublishedAt time.Time
	Prerelease  bool
	// Note is the release body with the meta block removed.
	Note     string
	NoteHTML string
	Assets   map[string]string
	URLs     map[string]string
	Meta     *Meta
}

// VersionGroup collects releases sharing a major.minor version.
type VersionGroup struct {
	Key      string
	Releases []*Release
}
