package config

import (
	"os"
	"path/filepath"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Repo: RepoConfig{
			Owner:  "tacogips",
			Name:   "mkapp",
			Branch: "master",
		},
		GitHub: GitHubConfig{
			BaseURL:     "https://github.com",
			APIURL:      "https://api.github.com",
			CodeloadURL: "https://codeload.github.com",
			Timeout:     30,
		},
		Fetch: FetchConfig{
			Method: FetchArchive,
		},
		Cache: CacheConfig{
			Directory: DefaultCacheDir(),
		},
	}
}

// DefaultCacheDir returns the default template cache directory.
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "mkapp", "templates")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "mkapp", "templates")
	}
	return filepath.Join(os.TempDir(), "mkapp", "templates")
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "mkapp", "config.yaml")
}
