package siteconfig

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks semantic rules the schema cannot express.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.URL, validation.By(absoluteURL)),
		validation.Field(&c.Blog),
		validation.Field(&c.ContentTypes),
		validation.Field(&c.GitContent, validation.By(uniqueGitNames)),
		validation.Field(&c.Comments),
		validation.Field(&c.ReleaseRepo),
		validation.Field(&c.HelpQA),
		validation.Field(&c.Changelog),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	return nil
}

func (b BlogConfig) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.BasePath, validation.By(func(value any) error {
			path, _ := value.(string)
			if path != "" && !strings.HasPrefix(path, "/") {
				return validation.NewError("siteconfig.blog.base_path", "must start with /")
			}
			return nil
		})),
		validation.Field(&b.PostsPerPage, validation.Min(1)),
	)
}

func (t ContentType) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Required, validation.Match(regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`))),
		validation.Field(&t.Path, validation.Required),
	)
}

func (s GitContentSource) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Remote, validation.Required),
	)
}

func (c CommentsConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Provider, validation.Required, validation.In("giscus", "disqus", "utterances")),
		validation.Field(&c.Repo, validation.When(c.Provider == "giscus" || c.Provider == "utterances", validation.Required)),
		validation.Field(&c.Shortname, validation.When(c.Provider == "disqus", validation.Required)),
	)
}

func (s ReleaseSource) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Provider, validation.In("github", "gitee")),
		validation.Field(&s.Repo, validation.Required, validation.By(repoSlug)),
		validation.Field(&s.AssetRegexPatterns, validation.By(compilablePatterns)),
	)
}

func (h HelpQAConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Provider, validation.In("github", "gitee")),
		validation.Field(&h.Repo, validation.Required, validation.By(repoSlug)),
		validation.Field(&h.State, validation.In("open", "closed", "all")),
	)
}

func (c ChangelogConfig) Validate() error {
	if c.GitHub == nil {
		return nil
	}
	return validation.Validate(c.GitHub.Repo, validation.Required, validation.By(repoSlug))
}

func absoluteURL(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return validation.NewError("siteconfig.url.invalid", "must be an absolute URL")
	}
	return nil
}

func repoSlug(value any) error {
	repo, _ := value.(string)
	if repo == "" {
		return nil
	}
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return validation.NewError("siteconfig.repo.invalid", "must be in owner/repo form")
	}
	return nil
}

func compilablePatterns(value any) error {
	patterns, _ := value.(map[string]string)
	var errs []error
	for key, pattern := range patterns {
		if _, err := regexp.Compile(pattern); err != nil {
			errs = append(errs, fmt.Errorf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return validation.NewError("siteconfig.release.pattern_invalid", errors.Join(errs...).Error())
	}
	return nil
}

func uniqueGitNames(value any) error {
	sources, _ := value.([]GitContentSource)
	seen := make(map[string]struct{}, len(sources))
	for _, source := range sources {
		name := strings.TrimSpace(source.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			return validation.NewError("siteconfig.git.duplicate", fmt.Sprintf("duplicate source name %q", name))
		}
		seen[name] = struct{}{}
	}
	return nil
}
