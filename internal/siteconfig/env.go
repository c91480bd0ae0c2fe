package siteconfig

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables read at runtime.
const (
	EnvGitHubToken       = "GITHUB_TOKEN"
	EnvGiteeToken        = "GITEE_TOKEN"
	EnvUseExampleContent = "USE_EXAMPLE_CONTENT"
)

// LoadEnv loads .env.local and .env from root into the process environment.
// Variables that are already set keep their values and missing files are
// ignored.
func LoadEnv(root string) error {
	for _, name := range []string{".env.local", ".env"} {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return err
		}
	}
	return nil
}
