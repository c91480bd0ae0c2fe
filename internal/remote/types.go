package remote

import "time"

// GitHubUser is the subset of a GitHub account embedded in other payloads.
type GitHubUser struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

type GitHubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size,omitempty"`
}

type GitHubRelease struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	TagName     string        `json:"tag_name"`
	URL         string        `json:"url"`
	HTMLURL     string        `json:"html_url"`
	Draft       bool          `json:"draft"`
	Prerelease  bool          `json:"prerelease"`
	CreatedAt   time.Time     `json:"created_at"`
	PublishedAt *time.Time    `json:"published_at"`
	Body        string        `json:"body"`
	Assets      []GitHubAsset `json:"assets"`
}

type GitHubLabel struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       string  `json:"color"`
}

// GitHubIssue is an issue from the issues endpoint. Pull requests are
// returned by the same endpoint with PullRequest set.
type GitHubIssue struct {
	ID          int64         `json:"id"`
	Number      int           `json:"number"`
	Title       string        `json:"title"`
	Body        *string       `json:"body"`
	State       string        `json:"state"`
	HTMLURL     string        `json:"html_url"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Assignee    *GitHubUser   `json:"assignee"`
	Labels      []GitHubLabel `json:"labels"`
	PullRequest *struct {
		URL string `json:"url"`
	} `json:"pull_request,omitempty"`
}

// IsPullRequest reports whether the issue is a pull request.
func (i GitHubIssue) IsPullRequest() bool {
	return i.PullRequest != nil
}

type GitHubRepo struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	FullName        string     `json:"full_name"`
	Description     *string    `json:"description"`
	HTMLURL         string     `json:"html_url"`
	Homepage        *string    `json:"homepage"`
	Language        *string    `json:"language"`
	StargazersCount int        `json:"stargazers_count"`
	ForksCount      int        `json:"forks_count"`
	Topics          []string   `json:"topics"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	PushedAt        time.Time  `json:"pushed_at"`
	Archived        bool       `json:"archived"`
	Fork            bool       `json:"fork"`
	Private         bool       `json:"private"`
	Owner           GitHubUser `json:"owner"`
}

type GitHubSearchResult struct {
	TotalCount int          `json:"total_count"`
	Items      []GitHubRepo `json:"items"`
}

// GiteeRelease has no published_at; created_at is the release time.
type GiteeRelease struct {
	ID         int64         `json:"id"`
	Name       string        `json:"name"`
	TagName    string        `json:"tag_name"`
	URL        string        `json:"url"`
	Draft      bool          `json:"draft"`
	Prerelease bool          `json:"prerelease"`
	CreatedAt  time.Time     `json:"created_at"`
	Body       string        `json:"body"`
	Assets     []GitHubAsset `json:"assets"`
}

// StringValue dereferences optional API strings.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
