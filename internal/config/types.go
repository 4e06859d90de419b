package config

import "time"

// Config is the mkapp configuration.
type Config struct {
	// Repo identifies the repository scaffold templates are fetched from.
	Repo RepoConfig `mapstructure:"repo"`
	// GitHub configures access to the hosting service.
	GitHub GitHubConfig `mapstructure:"github"`
	// Fetch selects how template trees are downloaded.
	Fetch FetchConfig `mapstructure:"fetch"`
	// Cache configures the local template cache.
	Cache CacheConfig `mapstructure:"cache"`
	// Scaffolds configures where scaffold definitions are read from.
	Scaffolds ScaffoldsConfig `mapstructure:"scaffolds"`
}

// RepoConfig identifies the template repository.
type RepoConfig struct {
	// Owner is the repository owner.
	Owner string `mapstructure:"owner"`
	// Name is the repository name.
	Name string `mapstructure:"name"`
	// Branch is the branch templates are sourced from when none is given.
	Branch string `mapstructure:"branch"`
}

// GitHubConfig holds endpoints and credentials.
type GitHubConfig struct {
	// BaseURL is the web base URL used for clone URLs and display.
	BaseURL string `mapstructure:"base_url"`
	// APIURL is the REST API base URL (for enterprise installations).
	APIURL string `mapstructure:"api_url"`
	// CodeloadURL is the archive download host.
	CodeloadURL string `mapstructure:"codeload_url"`
	// Token is the personal access token for private repositories.
	Token string `mapstructure:"token"`
	// Timeout is the request timeout in seconds.
	Timeout int `mapstructure:"timeout"`
}

// RequestTimeout returns Timeout as a duration.
func (g GitHubConfig) RequestTimeout() time.Duration {
	return time.Duration(g.Timeout) * time.Second
}

// FetchMethod names a template download strategy.
type FetchMethod string

const (
	// FetchArchive uses the contents API and codeload tarballs.
	FetchArchive FetchMethod = "archive"
	// FetchGit uses a shallow in-memory git clone.
	FetchGit FetchMethod = "git"
)

// FetchConfig selects the download strategy.
type FetchConfig struct {
	// Method is "archive" or "git".
	Method FetchMethod `mapstructure:"method"`
}

// CacheConfig configures the template cache.
type CacheConfig struct {
	// Directory holds one subdirectory per fetched template.
	Directory string `mapstructure:"directory"`
}

// ScaffoldsConfig configures the scaffold registry root.
type ScaffoldsConfig struct {
	// Directory is an on-disk scaffold root. Empty means the built-in scaffolds.
	Directory string `mapstructure:"directory"`
}
