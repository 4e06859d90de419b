package fetch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tacogips/mkapp/internal/debug"
)

// Cache materializes template subtrees under a private root, one directory
// per template name. A present directory is a cache hit and never touches
// the network.
//
// There is no locking; a concurrent fetch of the same template that wins the
// final rename is treated as success.
type Cache struct {
	// Root is the cache directory.
	Root string
	// Repo is the repository templates are fetched from.
	Repo Repository
	// Source resolves and downloads template subtrees.
	Source Source
}

// NewCache creates a cache rooted at root.
func NewCache(root string, repo Repository, source Source) *Cache {
	return &Cache{Root: root, Repo: repo, Source: source}
}

// Path returns the local path for a template name.
func (c *Cache) Path(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", NewFetchError(FetchInvalidTemplate, c.sourceName(), name, err.Error(), nil)
	}
	return filepath.Join(c.Root, name), nil
}

// Ensure returns the local directory holding template name, fetching
// remotePath at branch on a cache miss. When the subtree cannot be resolved
// the result is a FetchNotFound error.
func (c *Cache) Ensure(ctx context.Context, name, branch, remotePath string) (string, error) {
	localPath, err := c.Path(name)
	if err != nil {
		return "", err
	}

	if info, err := os.Stat(localPath); err == nil && info.IsDir() {
		debug.Debug("[fetch] Cache hit: %s", localPath)
		return localPath, nil
	}
	debug.Debug("[fetch] Cache miss: %s (branch=%s, path=%s)", localPath, branch, remotePath)

	if c.Source == nil {
		return "", NewFetchError(FetchFailed, "", name, "no fetch source configured", nil)
	}

	info, err := c.Source.Resolve(ctx, c.Repo, branch, remotePath)
	if err != nil {
		return "", err
	}
	if info == nil {
		return "", NewFetchError(FetchNotFound, c.Source.Name(),
			fmt.Sprintf("%s@%s:%s", c.Repo, branch, remotePath),
			fmt.Sprintf("template '%s' does not exist on branch '%s'", name, branch), nil)
	}

	if err := os.MkdirAll(c.Root, 0755); err != nil {
		return "", NewFetchError(FetchFailed, c.Source.Name(), info.String(), "failed to create cache directory", err)
	}

	staging, err := os.MkdirTemp(c.Root, "."+name+".partial-")
	if err != nil {
		return "", NewFetchError(FetchFailed, c.Source.Name(), info.String(), "failed to create staging directory", err)
	}

	if err := c.Source.Download(ctx, *info, staging); err != nil {
		os.RemoveAll(staging)
		return "", err
	}

	if err := os.Rename(staging, localPath); err != nil {
		os.RemoveAll(staging)
		if fi, statErr := os.Stat(localPath); statErr == nil && fi.IsDir() {
			debug.Debug("[fetch] Concurrent fetch already populated %s", localPath)
			return localPath, nil
		}
		return "", NewFetchError(FetchFailed, c.Source.Name(), info.String(), "failed to move template into cache", err)
	}

	debug.Debug("[fetch] Cached %s at %s", info, localPath)
	return localPath, nil
}

// List returns the cached template names, sorted.
func (c *Cache) List() ([]string, error) {
	entries, err := os.ReadDir(c.Root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes one cached template. Removing an absent entry is not an error.
func (c *Cache) Remove(name string) error {
	localPath, err := c.Path(name)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(localPath); err != nil {
		return fmt.Errorf("failed to remove %s: %w", localPath, err)
	}
	return nil
}

// Clean deletes every cached template, including leftover staging directories.
func (c *Cache) Clean() error {
	entries, err := os.ReadDir(c.Root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.Root, e.Name())); err != nil {
			return fmt.Errorf("failed to remove %s: %w", e.Name(), err)
		}
	}
	return nil
}

func (c *Cache) sourceName() string {
	if c.Source == nil {
		return ""
	}
	return c.Source.Name()
}

func validateName(name string) error {
	switch {
	case name == "":
		return errors.New("template name cannot be empty")
	case name == "." || name == "..":
		return fmt.Errorf("invalid template name: %s", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("template name must not contain path separators: %s", name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("template name must not start with '.': %s", name)
	}
	return nil
}
