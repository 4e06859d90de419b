package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/tacogips/mkapp/internal/debug"
)

// Git fetches template subtrees with a shallow single-branch clone into memory.
// A clone made by Resolve is reused by Download.
type Git struct {
	// Token is the optional access token used as HTTP basic auth.
	Token string

	mu     sync.Mutex
	clones map[string]billy.Filesystem
}

// NewGit creates a git clone source.
func NewGit(token string) *Git {
	return &Git{
		Token:  token,
		clones: make(map[string]billy.Filesystem),
	}
}

// Name returns the fetch method name.
func (g *Git) Name() string {
	return "git"
}

// Resolve clones repo at branch and checks that subdir is a directory in it.
func (g *Git) Resolve(ctx context.Context, repo Repository, branch, subdir string) (*RepoInfo, error) {
	info := &RepoInfo{Repository: repo, Branch: branch, Path: strings.Trim(subdir, "/")}

	worktree, err := g.clone(ctx, repo, branch)
	if err != nil {
		if isMissingRef(err) {
			debug.Debug("[fetch] Branch %s not found in %s", branch, repo)
			return nil, nil
		}
		if errors.Is(err, transport.ErrAuthenticationRequired) || errors.Is(err, transport.ErrAuthorizationFailed) {
			return nil, newAuthError(g.Name(), info.String())
		}
		return nil, newFailedError(g.Name(), info.String(), err)
	}

	fi, err := worktree.Stat(cleanSubdir(info.Path))
	if err != nil || !fi.IsDir() {
		debug.Debug("[fetch] Not found: %s", info)
		return nil, nil
	}
	return info, nil
}

// Download copies the subtree info points at from the clone into dest.
func (g *Git) Download(ctx context.Context, info RepoInfo, dest string) error {
	worktree, err := g.clone(ctx, info.Repository, info.Branch)
	if err != nil {
		return newFailedError(g.Name(), info.String(), err)
	}

	n, err := copyTree(ctx, worktree, cleanSubdir(info.Path), dest, dest)
	if err != nil {
		return newFailedError(g.Name(), info.String(), err)
	}
	if n == 0 {
		return newNotFoundError(g.Name(), info.String())
	}
	debug.Debug("[fetch] Copied %d entries into %s", n, dest)
	return nil
}

func (g *Git) clone(ctx context.Context, repo Repository, branch string) (billy.Filesystem, error) {
	key := repo.CloneURL() + "@" + branch

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.clones == nil {
		g.clones = make(map[string]billy.Filesystem)
	}
	if fs, ok := g.clones[key]; ok {
		return fs, nil
	}

	opts := &git.CloneOptions{
		URL:           repo.CloneURL(),
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
		Depth:         1,
	}
	if g.Token != "" {
		opts.Auth = &githttp.BasicAuth{Username: "x-access-token", Password: g.Token}
	}

	debug.Debug("[fetch] Cloning %s", key)
	fs := memfs.New()
	if _, err := git.CloneContext(ctx, memory.NewStorage(), fs, opts); err != nil {
		return nil, err
	}
	g.clones[key] = fs
	return fs, nil
}

func isMissingRef(err error) bool {
	return errors.Is(err, plumbing.ErrReferenceNotFound) ||
		errors.Is(err, git.NoMatchingRefSpecError{})
}

func cleanSubdir(p string) string {
	p = path.Clean("/" + p)
	if p == "/" {
		return "/"
	}
	return strings.TrimPrefix(p, "/")
}

// copyTree copies every file, directory and symlink below root in fs into
// dest. Symlinks must resolve inside base.
func copyTree(ctx context.Context, fs billy.Filesystem, root, dest, base string) (int, error) {
	entries, err := fs.ReadDir(root)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", root, err)
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory %s: %w", dest, err)
	}

	written := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		src := fs.Join(root, entry.Name())
		target := filepath.Join(dest, entry.Name())

		switch {
		case entry.Mode()&os.ModeSymlink != 0:
			link, err := fs.Readlink(src)
			if err != nil {
				return written, fmt.Errorf("failed to read symlink %s: %w", src, err)
			}
			if err := checkSymlink(base, target, link); err != nil {
				return written, err
			}
			if err := os.Symlink(link, target); err != nil {
				return written, fmt.Errorf("failed to create symlink %s: %w", target, err)
			}
			written++
		case entry.IsDir():
			n, err := copyTree(ctx, fs, src, target, base)
			written += n + 1
			if err != nil {
				return written, err
			}
		default:
			if err := copyBillyFile(fs, src, target, entry.Mode().Perm()); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}

func copyBillyFile(fs billy.Filesystem, src, target string, mode os.FileMode) error {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()
	return writeFile(target, in, mode)
}
