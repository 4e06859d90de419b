// Package render writes a project directory from a cached template tree.
package render

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	choria "github.com/choria-io/scaffold"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tacogips/mkapp/internal/debug"
	"github.com/tacogips/mkapp/internal/scaffold"
)

// Options describes one render.
type Options struct {
	// TemplateDir is the local template tree.
	TemplateDir string
	// DestinationRoot is the directory the project directory is created in.
	DestinationRoot string
	// ProjectName names the project directory.
	ProjectName string
	// Data is the merged data the templates are executed against.
	Data scaffold.Data
	// LeftDelim and RightDelim are the template action delimiters.
	LeftDelim  string
	RightDelim string
}

// Engine renders template trees with choria-io/scaffold.
type Engine struct {
	// Funcs are the template helper functions.
	Funcs template.FuncMap
}

// NewEngine creates an Engine with the default helper functions.
func NewEngine() *Engine {
	return &Engine{Funcs: FuncMap()}
}

// ProjectRoot returns the directory a render with opts writes to.
func ProjectRoot(destinationRoot, projectName string) (string, error) {
	if projectName == "" {
		return "", errors.New("project name cannot be empty")
	}
	if !filepath.IsLocal(projectName) {
		return "", fmt.Errorf("project name must be a relative path inside the destination: %s", projectName)
	}
	return filepath.Join(destinationRoot, projectName), nil
}

// Render writes the project and returns its root directory. The project
// directory must not exist yet. Partially written output is not removed
// on failure.
func (e *Engine) Render(ctx context.Context, opts Options) (string, error) {
	target, err := ProjectRoot(opts.DestinationRoot, opts.ProjectName)
	if err != nil {
		return "", newRenderError(opts, "", "invalid project name", err)
	}

	if err := ctx.Err(); err != nil {
		return "", newRenderError(opts, target, "render cancelled", err)
	}

	info, err := os.Stat(opts.TemplateDir)
	if err != nil {
		return "", newRenderError(opts, target, "template directory is not available", err)
	}
	if !info.IsDir() {
		return "", newRenderError(opts, target, "template path is not a directory", nil)
	}

	if _, err := os.Stat(target); err == nil {
		return "", newRenderError(opts, target, "project directory already exists", fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", newRenderError(opts, target, "cannot inspect project directory", err)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", newRenderError(opts, target, "failed to create destination", err)
	}

	left, right := opts.LeftDelim, opts.RightDelim
	if left == "" || right == "" {
		left, right = scaffold.DefaultLeftDelimiter, scaffold.DefaultRightDelimiter
	}

	debug.DebugSection("[render] Render")
	debug.DebugValue("[render] Template", opts.TemplateDir)
	debug.DebugValue("[render] Target", target)
	debug.DebugValue("[render] Delimiters", left+" "+right)

	s, err := choria.New(choria.Config{
		TargetDirectory:      target,
		SourceDirectory:      opts.TemplateDir,
		CustomLeftDelimiter:  left,
		CustomRightDelimiter: right,
	}, e.funcs())
	if err != nil {
		return "", newRenderError(opts, target, "failed to prepare template", err)
	}

	if err := s.Render(map[string]any(opts.Data)); err != nil {
		return "", newRenderError(opts, target, "failed to render template", err)
	}

	debug.Debug("[render] Rendered %s into %s", opts.TemplateDir, target)
	return target, nil
}

func (e *Engine) funcs() template.FuncMap {
	if e.Funcs == nil {
		return FuncMap()
	}
	return e.Funcs
}

// FuncMap returns the helper functions available to templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"title": Title,
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"kebab": Kebab,
	}
}

// Title converts s to title case.
func Title(s string) string {
	return cases.Title(language.Und).String(s)
}

// Kebab converts s to lower-case words joined by hyphens: "My App" -> "my-app".
func Kebab(s string) string {
	var b strings.Builder
	pendingDash := false
	prevLower := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if unicode.IsUpper(r) && prevLower {
				pendingDash = true
			}
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingDash = true
			prevLower = false
		}
	}
	return b.String()
}

// RenderError reports a failed render. It is fatal for the run.
type RenderError struct {
	// TemplateDir is the template tree being rendered.
	TemplateDir string
	// Target is the project directory, empty if it could not be computed.
	Target string
	// Message is the human-readable error message.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	where := e.Target
	if where == "" {
		where = e.TemplateDir
	}
	if e.Cause != nil {
		return fmt.Sprintf("render '%s': %s: %v", where, e.Message, e.Cause)
	}
	return fmt.Sprintf("render '%s': %s", where, e.Message)
}

// Unwrap returns the underlying cause for error wrapping.
func (e *RenderError) Unwrap() error {
	return e.Cause
}

func newRenderError(opts Options, target, message string, cause error) *RenderError {
	return &RenderError{TemplateDir: opts.TemplateDir, Target: target, Message: message, Cause: cause}
}
