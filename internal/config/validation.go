package config

import (
	"fmt"
	"net/url"
	"regexp"
)

var repoSegmentPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Validate checks every configuration value and returns the first
// offending key as a *ConfigError.
func Validate(cfg *Config) error {
	if cfg == nil {
		return newKeyError("", "configuration cannot be nil")
	}

	if !repoSegmentPattern.MatchString(cfg.Repo.Owner) {
		return newKeyError("repo.owner", fmt.Sprintf("invalid repository owner: %q", cfg.Repo.Owner))
	}
	if !repoSegmentPattern.MatchString(cfg.Repo.Name) {
		return newKeyError("repo.name", fmt.Sprintf("invalid repository name: %q", cfg.Repo.Name))
	}
	if cfg.Repo.Branch == "" {
		return newKeyError("repo.branch", "branch cannot be empty")
	}

	for _, u := range []struct {
		key   string
		value string
	}{
		{"github.base_url", cfg.GitHub.BaseURL},
		{"github.api_url", cfg.GitHub.APIURL},
		{"github.codeload_url", cfg.GitHub.CodeloadURL},
	} {
		if err := validateURL(u.value); err != nil {
			return newKeyError(u.key, err.Error())
		}
	}
	if cfg.GitHub.Timeout < 0 {
		return newKeyError("github.timeout", "timeout cannot be negative")
	}

	switch cfg.Fetch.Method {
	case FetchArchive, FetchGit:
	default:
		return newKeyError("fetch.method", fmt.Sprintf("unknown fetch method %q (expected %q or %q)",
			cfg.Fetch.Method, FetchArchive, FetchGit))
	}

	if cfg.Cache.Directory == "" {
		return newKeyError("cache.directory", "cache directory cannot be empty")
	}

	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must use http or https: %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host: %q", raw)
	}
	return nil
}
