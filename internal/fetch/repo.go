package fetch

import (
	"context"
	"fmt"
	"strings"
)

// Repository identifies the remote repository templates are sourced from.
type Repository struct {
	// BaseURL is the web base URL, e.g. "https://github.com".
	BaseURL string
	// Owner is the repository owner.
	Owner string
	// Name is the repository name.
	Name string
}

// String formats the repository as owner/name.
func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// CloneURL returns the git clone URL.
func (r Repository) CloneURL() string {
	return fmt.Sprintf("%s/%s/%s.git", strings.TrimSuffix(r.BaseURL, "/"), r.Owner, r.Name)
}

// RepoInfo is a resolved pointer to a template subtree: remote, branch and path.
type RepoInfo struct {
	Repository
	// Branch is the branch the subtree was resolved at.
	Branch string
	// Path is the subdirectory within the repository.
	Path string
}

// String formats the pointer the way the web UI addresses it.
func (i RepoInfo) String() string {
	return fmt.Sprintf("%s/%s/%s/tree/%s/%s",
		strings.TrimSuffix(i.BaseURL, "/"), i.Owner, i.Name, i.Branch, i.Path)
}

// Resolver turns (repository, branch, path) into a RepoInfo.
// A nil RepoInfo with a nil error means the subtree does not exist.
type Resolver interface {
	Resolve(ctx context.Context, repo Repository, branch, path string) (*RepoInfo, error)
}

// Downloader extracts the subtree a RepoInfo points at into dest.
type Downloader interface {
	Download(ctx context.Context, info RepoInfo, dest string) error
}

// Source is a fetch method that both resolves and downloads.
type Source interface {
	Resolver
	Downloader
	// Name returns the method name (e.g., "archive", "git").
	Name() string
}

// ParseRepository parses a repository reference.
// Supported formats:
//   - https://github.com/owner/repo
//   - https://github.com/owner/repo.git
//   - git@github.com:owner/repo.git
//   - github.com/owner/repo
//   - owner/repo
func ParseRepository(ref, defaultBaseURL string) (Repository, error) {
	s := strings.TrimSpace(ref)
	if s == "" {
		return Repository{}, fmt.Errorf("repository cannot be empty")
	}

	baseURL := defaultBaseURL
	switch {
	case strings.HasPrefix(s, "git@"):
		// git@host:owner/repo.git
		rest := strings.TrimPrefix(s, "git@")
		host, path, ok := strings.Cut(rest, ":")
		if !ok {
			return Repository{}, fmt.Errorf("invalid SSH repository format: %s", ref)
		}
		baseURL = "https://" + host
		s = path
	case strings.HasPrefix(s, "https://"), strings.HasPrefix(s, "http://"):
		scheme, rest, _ := strings.Cut(s, "://")
		host, path, ok := strings.Cut(rest, "/")
		if !ok {
			return Repository{}, fmt.Errorf("repository URL has no path: %s", ref)
		}
		baseURL = scheme + "://" + host
		s = path
	case strings.HasPrefix(s, "github.com/"):
		baseURL = "https://github.com"
		s = strings.TrimPrefix(s, "github.com/")
	}

	s = strings.TrimSuffix(strings.TrimSuffix(s, "/"), ".git")
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, fmt.Errorf("invalid repository format, expected owner/repo: %s", ref)
	}

	return Repository{BaseURL: baseURL, Owner: parts[0], Name: parts[1]}, nil
}
