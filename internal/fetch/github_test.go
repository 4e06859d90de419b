package fetch

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

type tarEntry struct {
	name     string
	typeflag byte
	content  string
	linkname string
}

func buildArchive(t *testing.T, entries []tarEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gzw)

	for _, e := range entries {
		h := &tar.Header{Name: e.name, Typeflag: e.typeflag, Mode: 0644}
		switch e.typeflag {
		case tar.TypeDir:
			h.Mode = 0755
		case tar.TypeSymlink:
			h.Mode = 0777
			h.Linkname = e.linkname
		case tar.TypeReg:
			h.Size = int64(len(e.content))
		}
		if err := tw.WriteHeader(h); err != nil {
			t.Fatalf("WriteHeader(%s) error = %v", e.name, err)
		}
		if e.content != "" {
			if _, err := tw.Write([]byte(e.content)); err != nil {
				t.Fatalf("Write(%s) error = %v", e.name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gzw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func templateArchive(t *testing.T) []byte {
	return buildArchive(t, []tarEntry{
		{name: "templates-master/", typeflag: tar.TypeDir},
		{name: "templates-master/README.md", typeflag: tar.TypeReg, content: "root readme\n"},
		{name: "templates-master/scaffolds/", typeflag: tar.TypeDir},
		{name: "templates-master/scaffolds/hello-world-react/", typeflag: tar.TypeDir},
		{name: "templates-master/scaffolds/hello-world-react/template/", typeflag: tar.TypeDir},
		{name: "templates-master/scaffolds/hello-world-react/template/package.json", typeflag: tar.TypeReg, content: `{"name":"<%.projectName%>"}`},
		{name: "templates-master/scaffolds/hello-world-react/template/src/", typeflag: tar.TypeDir},
		{name: "templates-master/scaffolds/hello-world-react/template/src/App.jsx", typeflag: tar.TypeReg, content: "export default () => <div>{{}}</div>\n"},
		{name: "templates-master/scaffolds/hello-world-react/template/AGENTS.md", typeflag: tar.TypeReg, content: "agent instructions\n"},
		{name: "templates-master/scaffolds/hello-world-react/template/CLAUDE.md", typeflag: tar.TypeSymlink, linkname: "AGENTS.md"},
		{name: "templates-master/scaffolds/express-api/template/index.js", typeflag: tar.TypeReg, content: "// express\n"},
	})
}

func TestExtractSubtree(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	n, err := extractSubtree(bytes.NewReader(templateArchive(t)), "scaffolds/hello-world-react/template", dest)
	if err != nil {
		t.Fatalf("extractSubtree() error = %v", err)
	}
	if n == 0 {
		t.Fatal("extractSubtree() wrote no entries")
	}

	got, err := os.ReadFile(filepath.Join(dest, "package.json"))
	if err != nil {
		t.Fatalf("ReadFile(package.json) error = %v", err)
	}
	if string(got) != `{"name":"<%.projectName%>"}` {
		t.Errorf("package.json = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dest, "src", "App.jsx")); err != nil {
		t.Errorf("src/App.jsx missing: %v", err)
	}

	// Entries outside the subtree are skipped.
	for _, p := range []string{"README.md", "index.js", "scaffolds"} {
		if _, err := os.Stat(filepath.Join(dest, p)); !os.IsNotExist(err) {
			t.Errorf("%s should not be extracted (err = %v)", p, err)
		}
	}
}

func TestExtractSubtree_PreservesSymlink(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	if _, err := extractSubtree(bytes.NewReader(templateArchive(t)), "scaffolds/hello-world-react/template", dest); err != nil {
		t.Fatalf("extractSubtree() error = %v", err)
	}

	linkPath := filepath.Join(dest, "CLAUDE.md")
	info, err := os.Lstat(linkPath)
	if err != nil {
		t.Fatalf("Lstat(%s) error = %v", linkPath, err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Fatalf("%s is not a symlink", linkPath)
	}
	target, err := os.Readlink(linkPath)
	if err != nil {
		t.Fatalf("Readlink(%s) error = %v", linkPath, err)
	}
	if target != "AGENTS.md" {
		t.Fatalf("symlink target = %q, want %q", target, "AGENTS.md")
	}

	content, err := os.ReadFile(linkPath)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", linkPath, err)
	}
	if string(content) != "agent instructions\n" {
		t.Errorf("CLAUDE.md content = %q, want %q", content, "agent instructions\n")
	}
}

func TestExtractSubtree_MissingSubdir(t *testing.T) {
	t.Parallel()

	n, err := extractSubtree(bytes.NewReader(templateArchive(t)), "scaffolds/does-not-exist/template", t.TempDir())
	if err != nil {
		t.Fatalf("extractSubtree() error = %v", err)
	}
	if n != 0 {
		t.Errorf("extractSubtree() = %d entries, want 0", n)
	}
}

func TestExtractSubtree_RejectsEscapingEntries(t *testing.T) {
	t.Parallel()

	archive := buildArchive(t, []tarEntry{
		{name: "repo-master/tpl/../../../evil.txt", typeflag: tar.TypeReg, content: "x"},
	})
	dest := t.TempDir()
	// The cleaned name climbs above the archive root and must stay inside dest.
	_, _ = extractSubtree(bytes.NewReader(archive), "", dest)
	if _, err := os.Stat(filepath.Join(filepath.Dir(dest), "evil.txt")); !os.IsNotExist(err) {
		t.Errorf("entry escaped destination (err = %v)", err)
	}
}

func TestExtractSubtree_RejectsSymlinkEscapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entries []tarEntry
	}{
		{
			name: "write through absolute symlink",
			entries: []tarEntry{
				{name: "repo-master/tpl/evil", typeflag: tar.TypeSymlink, linkname: "OUTSIDE"},
				{name: "repo-master/tpl/evil/pwned.txt", typeflag: tar.TypeReg, content: "x"},
			},
		},
		{
			name: "relative symlink climbing out",
			entries: []tarEntry{
				{name: "repo-master/tpl/evil", typeflag: tar.TypeSymlink, linkname: "../outside"},
				{name: "repo-master/tpl/evil/pwned.txt", typeflag: tar.TypeReg, content: "x"},
			},
		},
		{
			name: "symlink chained through a link to the root",
			entries: []tarEntry{
				{name: "repo-master/tpl/self", typeflag: tar.TypeSymlink, linkname: "."},
				{name: "repo-master/tpl/self/evil", typeflag: tar.TypeSymlink, linkname: "../outside"},
				{name: "repo-master/tpl/self/evil/pwned.txt", typeflag: tar.TypeReg, content: "x"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parent := t.TempDir()
			dest := filepath.Join(parent, "dest")
			outside := filepath.Join(parent, "outside")
			for _, dir := range []string{dest, outside} {
				if err := os.Mkdir(dir, 0755); err != nil {
					t.Fatal(err)
				}
			}

			entries := make([]tarEntry, len(tt.entries))
			copy(entries, tt.entries)
			for i := range entries {
				if entries[i].linkname == "OUTSIDE" {
					entries[i].linkname = outside
				}
			}

			_, err := extractSubtree(bytes.NewReader(buildArchive(t, entries)), "tpl", dest)
			if err == nil {
				t.Error("extractSubtree() error = nil, want symlink escape error")
			}
			if _, err := os.Stat(filepath.Join(outside, "pwned.txt")); !os.IsNotExist(err) {
				t.Errorf("file written outside destination (err = %v)", err)
			}
		})
	}
}

func TestCheckSymlink(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "a", "b"), 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		target   string
		linkname string
		wantErr  bool
	}{
		{name: "sibling", target: "a/link", linkname: "b"},
		{name: "up to root", target: "a/b/link", linkname: "../../x"},
		{name: "above root", target: "a/link", linkname: "../../x", wantErr: true},
		{name: "absolute", target: "link", linkname: "/etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkSymlink(root, filepath.Join(root, filepath.FromSlash(tt.target)), tt.linkname)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkSymlink(%q, %q) error = %v, wantErr %v", tt.target, tt.linkname, err, tt.wantErr)
			}
		})
	}
}

func TestSafeJoin(t *testing.T) {
	tests := []struct {
		name    string
		rel     string
		wantErr bool
	}{
		{name: "plain", rel: "a/b.txt"},
		{name: "dot", rel: "./a.txt"},
		{name: "parent", rel: "../a.txt", wantErr: true},
		{name: "nested parent", rel: "a/../../b", wantErr: true},
		{name: "internal parent", rel: "a/../b"},
	}

	root := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := safeJoin(root, tt.rel)
			if (err != nil) != tt.wantErr {
				t.Errorf("safeJoin(%q) error = %v, wantErr %v", tt.rel, err, tt.wantErr)
			}
		})
	}
}

// fakeGitHub serves the contents API and codeload endpoints for one archive.
type fakeGitHub struct {
	archive   []byte
	present   map[string]bool
	status    int
	apiHits   atomic.Int32
	tarHits   atomic.Int32
	lastToken atomic.Value
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.lastToken.Store(r.Header.Get("Authorization"))
	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}

	switch {
	case strings.HasPrefix(r.URL.Path, "/api/repos/acme/templates/contents/"):
		f.apiHits.Add(1)
		p := strings.TrimPrefix(r.URL.Path, "/api/repos/acme/templates/contents/")
		if r.URL.Query().Get("ref") != "master" || !f.present[p] {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	case r.URL.Path == "/codeload/acme/templates/tar.gz/master":
		f.tarHits.Add(1)
		_, _ = w.Write(f.archive)
	default:
		http.NotFound(w, r)
	}
}

func newFakeSource(t *testing.T, f *fakeGitHub) *GitHub {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	g := NewGitHub("", 0)
	g.HTTPClient = srv.Client()
	g.APIURL = srv.URL + "/api"
	g.CodeloadURL = srv.URL + "/codeload"
	return g
}

var testRepo = Repository{BaseURL: "https://github.com", Owner: "acme", Name: "templates"}

func TestGitHub_Resolve(t *testing.T) {
	f := &fakeGitHub{present: map[string]bool{"scaffolds/hello-world-react/template": true}}
	g := newFakeSource(t, f)
	ctx := context.Background()

	info, err := g.Resolve(ctx, testRepo, "master", "scaffolds/hello-world-react/template")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if info == nil || info.Path != "scaffolds/hello-world-react/template" || info.Branch != "master" {
		t.Fatalf("Resolve() = %+v", info)
	}
	want := "https://github.com/acme/templates/tree/master/scaffolds/hello-world-react/template"
	if info.String() != want {
		t.Errorf("String() = %q, want %q", info.String(), want)
	}

	info, err = g.Resolve(ctx, testRepo, "master", "scaffolds/missing/template")
	if err != nil || info != nil {
		t.Errorf("Resolve(missing) = %+v, %v; want nil, nil", info, err)
	}

	info, err = g.Resolve(ctx, testRepo, "develop", "scaffolds/hello-world-react/template")
	if err != nil || info != nil {
		t.Errorf("Resolve(other branch) = %+v, %v; want nil, nil", info, err)
	}
}

func TestGitHub_ResolveStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   FetchErrorType
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: FetchAuthFailed},
		{name: "forbidden", status: http.StatusForbidden, want: FetchAuthFailed},
		{name: "server error", status: http.StatusBadGateway, want: FetchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newFakeSource(t, &fakeGitHub{status: tt.status})
			_, err := g.Resolve(context.Background(), testRepo, "master", "x")
			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("Resolve() error = %v, want *FetchError", err)
			}
			if fe.Type != tt.want {
				t.Errorf("Type = %v, want %v", fe.Type, tt.want)
			}
		})
	}
}

func TestGitHub_TokenHeader(t *testing.T) {
	f := &fakeGitHub{present: map[string]bool{"p": true}}
	g := newFakeSource(t, f)
	g.Token = "secret"

	if _, err := g.Resolve(context.Background(), testRepo, "master", "p"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := f.lastToken.Load(); got != "token secret" {
		t.Errorf("Authorization = %v, want %q", got, "token secret")
	}
}

func TestGitHub_Download(t *testing.T) {
	f := &fakeGitHub{archive: templateArchive(t)}
	g := newFakeSource(t, f)
	dest := t.TempDir()

	info := RepoInfo{Repository: testRepo, Branch: "master", Path: "scaffolds/express-api/template"}
	if err := g.Download(context.Background(), info, dest); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "index.js")); err != nil {
		t.Errorf("index.js missing: %v", err)
	}

	info.Path = "scaffolds/nothing/template"
	err := g.Download(context.Background(), info, t.TempDir())
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Type != FetchNotFound {
		t.Errorf("Download(empty subtree) error = %v, want NotFound", err)
	}
}

func TestEscapePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "scaffolds/a/template", want: "scaffolds/a/template"},
		{in: "with space/x", want: "with%20space/x"},
		{in: "q?/x", want: "q%3F/x"},
	}
	for _, tt := range tests {
		if got := escapePath(tt.in); got != tt.want {
			t.Errorf("escapePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
