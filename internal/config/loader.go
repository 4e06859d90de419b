package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/tacogips/mkapp/internal/debug"
)

// EnvPrefix is the prefix of configuration environment variables,
// e.g. MKAPP_GITHUB_TOKEN for github.token.
const EnvPrefix = "MKAPP"

// Load reads configuration from defaults, the config file and the
// environment, in increasing precedence. An empty path reads the default
// config file if it exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := newViper()

	file := path
	if file == "" {
		file = DefaultConfigPath()
	}

	if file != "" {
		if _, err := os.Stat(file); err == nil {
			v.SetConfigFile(file)
			if err := v.ReadInConfig(); err != nil {
				return nil, newFileError(ConfigInvalid, file, "failed to read configuration file", err)
			}
			debug.Debug("[config] Loaded %s", file)
		} else if path != "" {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, newFileError(ConfigNotFound, path, "configuration file not found", err)
			}
			return nil, newFileError(ConfigInvalid, path, "cannot access configuration file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, newFileError(ConfigInvalid, v.ConfigFileUsed(), "failed to decode configuration", err)
	}

	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = tokenFromEnv()
	}

	var err error
	if cfg.Cache.Directory, err = ExpandPath(cfg.Cache.Directory); err != nil {
		return nil, newFileError(ConfigInvalid, v.ConfigFileUsed(), "invalid cache.directory", err)
	}
	if cfg.Scaffolds.Directory, err = ExpandPath(cfg.Scaffolds.Directory); err != nil {
		return nil, newFileError(ConfigInvalid, v.ConfigFileUsed(), "invalid scaffolds.directory", err)
	}

	if err := Validate(&cfg); err != nil {
		if cfgErr, ok := err.(*ConfigError); ok {
			cfgErr.File = v.ConfigFileUsed()
		}
		return nil, err
	}

	debug.DebugSection("[config] Effective configuration")
	debug.DebugValue("[config] repo", fmt.Sprintf("%s/%s@%s", cfg.Repo.Owner, cfg.Repo.Name, cfg.Repo.Branch))
	debug.DebugValue("[config] fetch.method", string(cfg.Fetch.Method))
	debug.DebugValue("[config] cache.directory", cfg.Cache.Directory)
	debug.DebugValue("[config] scaffolds.directory", cfg.Scaffolds.Directory)
	debug.DebugValue("[config] github.token set", cfg.GitHub.Token != "")

	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("repo.owner", d.Repo.Owner)
	v.SetDefault("repo.name", d.Repo.Name)
	v.SetDefault("repo.branch", d.Repo.Branch)
	v.SetDefault("github.base_url", d.GitHub.BaseURL)
	v.SetDefault("github.api_url", d.GitHub.APIURL)
	v.SetDefault("github.codeload_url", d.GitHub.CodeloadURL)
	v.SetDefault("github.token", d.GitHub.Token)
	v.SetDefault("github.timeout", d.GitHub.Timeout)
	v.SetDefault("fetch.method", string(d.Fetch.Method))
	v.SetDefault("cache.directory", d.Cache.Directory)
	v.SetDefault("scaffolds.directory", d.Scaffolds.Directory)
	return v
}

func tokenFromEnv() string {
	for _, key := range []string{"GITHUB_TOKEN", "GH_TOKEN"} {
		if token := os.Getenv(key); token != "" {
			return token
		}
	}
	return ""
}

// ExpandPath expands ~ to the home directory and makes path absolute.
// An empty path stays empty.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		if path[1] == '/' || path[1] == filepath.Separator {
			path = filepath.Join(homeDir, path[2:])
		}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	return absPath, nil
}
