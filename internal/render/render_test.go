package render

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/tacogips/mkapp/internal/scaffold"
)

func writeTemplate(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestEngine_Render(t *testing.T) {
	tmpl := writeTemplate(t, map[string]string{
		"package.json": `{"name": "<% .projectName | kebab %>"}`,
		"src/App.jsx":  "export const App = () => <h1>{{ '<% title .projectName %>' }}</h1>;\n",
	})
	dest := t.TempDir()

	root, err := NewEngine().Render(context.Background(), Options{
		TemplateDir:     tmpl,
		DestinationRoot: dest,
		ProjectName:     "Demo App",
		Data:            scaffold.Data{"projectName": "demo app"},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if want := filepath.Join(dest, "Demo App"); root != want {
		t.Errorf("Render() = %q, want %q", root, want)
	}

	tests := []struct {
		file string
		want string
	}{
		{file: "package.json", want: `{"name": "demo-app"}`},
		{file: "src/App.jsx", want: "export const App = () => <h1>{{ 'Demo App' }}</h1>;\n"},
	}
	for _, tt := range tests {
		got, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(tt.file)))
		if err != nil {
			t.Errorf("ReadFile(%s) error = %v", tt.file, err)
			continue
		}
		if string(got) != tt.want {
			t.Errorf("%s = %q, want %q", tt.file, got, tt.want)
		}
	}
}

func TestEngine_RenderCustomDelimiters(t *testing.T) {
	tmpl := writeTemplate(t, map[string]string{"README.md": "# [[ .projectName | upper ]]\n"})
	dest := t.TempDir()

	root, err := NewEngine().Render(context.Background(), Options{
		TemplateDir:     tmpl,
		DestinationRoot: dest,
		ProjectName:     "demo",
		Data:            scaffold.Data{"projectName": "demo"},
		LeftDelim:       "[[",
		RightDelim:      "]]",
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	got, _ := os.ReadFile(filepath.Join(root, "README.md"))
	if string(got) != "# DEMO\n" {
		t.Errorf("README.md = %q, want %q", got, "# DEMO\n")
	}
}

func TestEngine_RenderErrors(t *testing.T) {
	tmpl := writeTemplate(t, map[string]string{"a.txt": "<% .missing.field %>"})
	dest := t.TempDir()
	if err := os.Mkdir(filepath.Join(dest, "exists"), 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{
			name:    "existing project directory",
			opts:    Options{TemplateDir: tmpl, DestinationRoot: dest, ProjectName: "exists"},
			wantErr: fs.ErrExist,
		},
		{
			name: "empty project name",
			opts: Options{TemplateDir: tmpl, DestinationRoot: dest},
		},
		{
			name: "escaping project name",
			opts: Options{TemplateDir: tmpl, DestinationRoot: dest, ProjectName: "../outside"},
		},
		{
			name:    "missing template",
			opts:    Options{TemplateDir: filepath.Join(dest, "nope"), DestinationRoot: dest, ProjectName: "p"},
			wantErr: fs.ErrNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine().Render(context.Background(), tt.opts)
			var re *RenderError
			if !errors.As(err, &re) {
				t.Fatalf("Render() error = %v, want *RenderError", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Render() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEngine_RenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine().Render(ctx, Options{
		TemplateDir:     writeTemplate(t, map[string]string{"a": "a"}),
		DestinationRoot: t.TempDir(),
		ProjectName:     "p",
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}

func TestKebab(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "my-app", want: "my-app"},
		{in: "My App", want: "my-app"},
		{in: "myApp", want: "my-app"},
		{in: "hello_world react", want: "hello-world-react"},
		{in: "  spaced  out ", want: "spaced-out"},
		{in: "v2Api", want: "v2-api"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := Kebab(tt.in); got != tt.want {
			t.Errorf("Kebab(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "demo app", want: "Demo App"},
		{in: "MIXED case", want: "Mixed Case"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := Title(tt.in); got != tt.want {
			t.Errorf("Title(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProjectRoot(t *testing.T) {
	got, err := ProjectRoot("/work", "demo")
	if err != nil || got != filepath.Join("/work", "demo") {
		t.Errorf("ProjectRoot() = %q, %v", got, err)
	}
	if _, err := ProjectRoot("/work", "/abs"); err == nil {
		t.Error("ProjectRoot() with absolute name error = nil, want error")
	}
}
