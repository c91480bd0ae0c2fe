package releases

import (
	"regexp"

	"github.com/goliatone/go-zoe/internal/remote"
)

// MatchAssets maps each pattern key to the download URL of the first asset
// whose name matches. Patterns that do not compile are skipped.
func MatchAssets(assets []remote.GitHubAsset, patterns map[string]string) map[string]string {
	result := make(map[string]string)
	for key, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		for _, asset := range assets {
			if re.MatchString(asset.Name) {
				result[key] = asset.BrowserDownloadURL
				break
			}
		}
	}
	return result
}
