package fetch

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/tacogips/mkapp/internal/debug"
)

// GitHub fetches template subtrees through the GitHub contents API and
// codeload tarballs.
type GitHub struct {
	// HTTPClient is the HTTP client for API and archive requests.
	HTTPClient *http.Client
	// Token is the optional GitHub personal access token for private repos.
	Token string
	// APIURL is the REST API base, e.g. "https://api.github.com".
	APIURL string
	// CodeloadURL is the archive host, e.g. "https://codeload.github.com".
	CodeloadURL string
}

// NewGitHub creates a GitHub source with public endpoints.
func NewGitHub(token string, timeout time.Duration) *GitHub {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GitHub{
		HTTPClient:  &http.Client{Timeout: timeout},
		Token:       token,
		APIURL:      "https://api.github.com",
		CodeloadURL: "https://codeload.github.com",
	}
}

// Name returns the fetch method name.
func (g *GitHub) Name() string {
	return "archive"
}

// Resolve checks that path exists in the repository at branch.
func (g *GitHub) Resolve(ctx context.Context, repo Repository, branch, subdir string) (*RepoInfo, error) {
	info := &RepoInfo{Repository: repo, Branch: branch, Path: strings.Trim(subdir, "/")}

	apiURL := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		strings.TrimSuffix(g.APIURL, "/"), repo.Owner, repo.Name,
		escapePath(info.Path), url.QueryEscape(branch))
	debug.Debug("[fetch] Resolving %s", apiURL)

	resp, err := g.get(ctx, apiURL, "application/vnd.github.v3+json")
	if err != nil {
		return nil, newFailedError(g.Name(), info.String(), err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return info, nil
	case http.StatusNotFound:
		debug.Debug("[fetch] Not found: %s", info)
		return nil, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, newAuthError(g.Name(), info.String())
	default:
		return nil, newFailedError(g.Name(), info.String(),
			fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}
}

// Download streams the branch tarball and extracts only the entries under
// info.Path into dest.
func (g *GitHub) Download(ctx context.Context, info RepoInfo, dest string) error {
	archiveURL := fmt.Sprintf("%s/%s/%s/tar.gz/%s",
		strings.TrimSuffix(g.CodeloadURL, "/"), info.Owner, info.Name, escapePath(info.Branch))
	debug.Debug("[fetch] Downloading %s", archiveURL)

	resp, err := g.get(ctx, archiveURL, "")
	if err != nil {
		return newFailedError(g.Name(), info.String(), err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return newNotFoundError(g.Name(), info.String())
	case http.StatusUnauthorized, http.StatusForbidden:
		return newAuthError(g.Name(), info.String())
	default:
		return newFailedError(g.Name(), info.String(),
			fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	n, err := extractSubtree(resp.Body, info.Path, dest)
	if err != nil {
		return newFailedError(g.Name(), info.String(), fmt.Errorf("failed to extract archive: %w", err))
	}
	if n == 0 {
		return newNotFoundError(g.Name(), info.String())
	}
	debug.Debug("[fetch] Extracted %d entries into %s", n, dest)
	return nil
}

func (g *GitHub) get(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if g.Token != "" {
		req.Header.Set("Authorization", "token "+g.Token)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	client := g.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return client.Do(req)
}

// extractSubtree reads a .tar.gz stream whose entries share one root
// directory ("repo-branch/") and writes the entries under subdir into dest.
// It returns the number of entries written.
func extractSubtree(r io.Reader, subdir, dest string) (int, error) {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzr.Close()

	prefix := strings.Trim(subdir, "/")
	if prefix != "" {
		prefix += "/"
	}

	tr := tar.NewReader(gzr)
	written := 0
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return written, fmt.Errorf("failed to read tar entry: %w", err)
		}

		// Strip the archive root directory.
		_, rel, ok := strings.Cut(path.Clean(header.Name), "/")
		if !ok {
			continue
		}
		if header.Typeflag == tar.TypeDir && rel+"/" == prefix {
			continue
		}
		if !strings.HasPrefix(rel, prefix) {
			continue
		}
		rel = strings.TrimPrefix(rel, prefix)

		target, err := safeJoin(dest, rel)
		if err != nil {
			return written, err
		}
		if _, err := realParent(dest, target); err != nil {
			return written, err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return written, fmt.Errorf("failed to create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, os.FileMode(header.Mode).Perm()); err != nil {
				return written, err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return written, fmt.Errorf("failed to create parent directory: %w", err)
			}
			if err := checkSymlink(dest, target, header.Linkname); err != nil {
				return written, err
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return written, fmt.Errorf("failed to create symlink %s: %w", target, err)
			}
		default:
			continue
		}
		written++
	}

	return written, nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	if mode == 0 {
		mode = 0644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("failed to write file %s: %w", target, err)
	}
	return out.Close()
}

// safeJoin joins rel onto root and rejects results that escape root.
func safeJoin(root, rel string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(rel))
	if !within(root, target) {
		return "", fmt.Errorf("archive entry escapes destination: %s", rel)
	}
	return target, nil
}

// realParent resolves the parent directory of target through any symlinks
// already on disk and rejects it when it lies outside root. Components that
// do not exist yet are appended unresolved.
func realParent(root, target string) (string, error) {
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	dir, rest := filepath.Dir(target), ""
	for {
		resolvedDir, err := filepath.EvalSymlinks(dir)
		if err == nil {
			resolved := filepath.Join(resolvedDir, rest)
			if !within(realRoot, resolved) {
				return "", fmt.Errorf("archive entry escapes destination through a symlink: %s", target)
			}
			return resolved, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("failed to resolve %s: %w", target, err)
		}
		rest = filepath.Join(filepath.Base(dir), rest)
		dir = parent
	}
}

// checkSymlink rejects a link at target whose destination resolves outside root.
func checkSymlink(root, target, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("symlink %s points to absolute path %s", target, linkname)
	}
	parent, err := realParent(root, target)
	if err != nil {
		return err
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	if !within(realRoot, filepath.Join(parent, filepath.FromSlash(linkname))) {
		return fmt.Errorf("symlink %s points outside destination: %s", target, linkname)
	}
	return nil
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
