package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tacogips/mkapp/internal/action"
	"github.com/tacogips/mkapp/internal/debug"
	"github.com/tacogips/mkapp/internal/render"
	"github.com/tacogips/mkapp/internal/scaffold"
)

// CreateAppConfig is the caller's intent. Every field is optional; an
// absent project name or template is asked for interactively.
type CreateAppConfig struct {
	// Branch is the template repository branch. Empty means master.
	Branch string
	// ProjectName names the directory created under the destination root.
	ProjectName string
	// Template is the scaffold name.
	Template string
	// Data is passed through to the scaffold. A non-empty payload selects
	// programmatic mode: flags are parsed from it instead of prompted, only
	// the install step runs and no shutdown output is produced.
	Data scaffold.Data
}

// Programmatic reports whether the run is in programmatic mode.
func (c CreateAppConfig) Programmatic() bool {
	return len(c.Data) > 0
}

// TemplateCache makes a template tree local.
type TemplateCache interface {
	Ensure(ctx context.Context, name, branch, remotePath string) (string, error)
}

// Renderer writes a project directory.
type Renderer interface {
	Render(ctx context.Context, opts render.Options) (string, error)
}

// ActionRunner starts lifecycle commands.
type ActionRunner interface {
	Run(ctx context.Context, dir string, def *scaffold.Definition, data scaffold.Data, step action.Step) (*action.Action, error)
}

// Deps are the collaborators of CreateApp.
type Deps struct {
	Registry *scaffold.Registry
	Cache    TemplateCache
	Renderer Renderer
	Runner   ActionRunner
	// Prompter may be nil when every answer is supplied up front.
	Prompter Prompter
	Console  Console
	// DestinationRoot is where the project directory is created.
	// Empty means the current working directory.
	DestinationRoot string
}

// CreateAppResult describes a finished run.
type CreateAppResult struct {
	ProjectName string
	Template    string
	ProjectRoot string
	// Data is the merged data the project was rendered with.
	Data scaffold.Data
	// InstallCommand and StartCommand are the commands that ran, if any.
	InstallCommand string
	StartCommand   string
}

// CreateApp resolves inputs, fetches the template, renders the project and
// runs its lifecycle commands.
func CreateApp(ctx context.Context, cfg CreateAppConfig, deps Deps) (*CreateAppResult, error) {
	programmatic := cfg.Programmatic()

	debug.DebugSection("[app] CreateApp workflow start")
	debug.DebugValue("[app] Programmatic", programmatic)
	debug.DebugValue("[app] Requested template", cfg.Template)
	debug.DebugValue("[app] Requested project", cfg.ProjectName)

	destinationRoot := deps.DestinationRoot
	if destinationRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, NewAppError(ResolutionFailed, "failed to determine working directory", err)
		}
		destinationRoot = wd
	}

	// Discovery
	listing, err := deps.Registry.List()
	if err != nil {
		return nil, NewAppError(DiscoveryFailed, "failed to list scaffolds", err)
	}

	templateValid := isTemplateValid(listing, cfg.Template)
	if cfg.Template != "" && !templateValid {
		deps.Console.invalidTemplateWarning(cfg.Template)
	}

	// Resolution
	requested := ""
	if templateValid {
		requested = cfg.Template
	}
	core, err := resolveCore(ctx, deps.Prompter, listing, cfg.ProjectName, requested)
	if err != nil {
		return nil, err
	}
	template := core.String("template")

	def, err := deps.Registry.Load(template)
	if err != nil {
		return nil, NewAppError(DiscoveryFailed, fmt.Sprintf("failed to load scaffold '%s'", template), err)
	}

	layers := Layers{
		FlagDefaults: scaffold.FlagDefaults(def.Flags),
		Core:         core,
		Config:       explicitFields(cfg, templateValid),
	}
	if programmatic {
		parsed, err := scaffold.ParseFlags(def.Flags, cfg.Data)
		if err != nil {
			return nil, NewAppError(ValidationFailed, fmt.Sprintf("invalid data for scaffold '%s'", template), err)
		}
		layers.Payload = Merge(cfg.Data, parsed)
	} else {
		answers, err := promptFlags(ctx, deps.Prompter, def.Flags)
		if err != nil {
			return nil, err
		}
		layers.Payload = cfg.Data
		layers.Answers = answers
	}

	data := BuildMergedData(layers)
	debug.DebugJSON("[app] Merged data", data)

	// Fetch
	branch := data.String("branch")
	templateDir, err := deps.Cache.Ensure(ctx, template, branch, def.RemoteTemplatePath())
	if err != nil {
		return nil, NewAppError(TemplateFetchFailed, fmt.Sprintf("failed to fetch template '%s' (branch %s)", template, branch), err)
	}

	// Render
	left, right := def.RenderDelimiters()
	projectName := data.String("projectName")
	projectRoot, err := deps.Renderer.Render(ctx, render.Options{
		TemplateDir:     templateDir,
		DestinationRoot: destinationRoot,
		ProjectName:     projectName,
		Data:            data,
		LeftDelim:       left,
		RightDelim:      right,
	})
	if err != nil {
		return nil, NewAppError(RenderFailed, fmt.Sprintf("failed to render '%s'", projectName), err)
	}

	result := &CreateAppResult{
		ProjectName: projectName,
		Template:    template,
		ProjectRoot: projectRoot,
		Data:        data,
	}

	// Post-render actions
	scope, err := enterProject(projectRoot, deps.Runner)
	if err != nil {
		return result, NewAppError(ActionFailed, "cannot enter project directory", err)
	}
	defer scope.leave()

	if programmatic {
		installCmd, err := scope.runAndWait(ctx, def, data, action.Install)
		result.InstallCommand = installCmd
		return result, err
	}

	// Tasks are gated on the install step: a failed install prints nothing.
	var shutdown action.ShutdownQueue
	installed := false
	defer func() {
		if installed {
			shutdown.Run(deps.Console.writer())
		}
	}()

	shutdown.Add(func(w io.Writer) {
		deps.Console.SuccessBanner(w, template, projectName, projectRoot)
	})

	installCmd, err := scope.runAndWait(ctx, def, data, action.Install)
	result.InstallCommand = installCmd
	if err != nil {
		return result, err
	}
	installed = true

	start, err := scope.run(ctx, def, data, action.Start)
	if err != nil {
		return result, err
	}
	startCmd := ""
	if start != nil {
		startCmd = start.Command()
	}
	result.StartCommand = startCmd

	shutdown.Add(func(w io.Writer) {
		deps.Console.UsageBanner(w, projectName, installCmd, startCmd)
	})

	if start != nil {
		if _, err := start.Wait(); err != nil {
			// An interrupt ends the dev server; that is a normal exit.
			if ctx.Err() == nil {
				return result, NewAppError(ActionFailed, "start command failed", err)
			}
			debug.Debug("[app] Start command ended by cancellation: %v", err)
		}
	}

	shutdown.Run(deps.Console.writer())
	debug.Debug("[app] CreateApp workflow done: %s", projectRoot)
	return result, nil
}

// projectScope carries the project root to the lifecycle steps in place of
// changing the process working directory.
type projectScope struct {
	root   string
	runner ActionRunner
	active bool
}

func enterProject(root string, runner ActionRunner) (*projectScope, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}
	if runner == nil {
		return nil, errors.New("no action runner configured")
	}
	debug.Debug("[app] Entering project %s", root)
	return &projectScope{root: root, runner: runner, active: true}, nil
}

func (s *projectScope) leave() {
	if !s.active {
		return
	}
	s.active = false
	debug.Debug("[app] Leaving project %s", s.root)
}

func (s *projectScope) run(ctx context.Context, def *scaffold.Definition, data scaffold.Data, step action.Step) (*action.Action, error) {
	if !s.active {
		return nil, NewAppError(ActionFailed, "project scope already left", nil)
	}
	a, err := s.runner.Run(ctx, s.root, def, data, step)
	if err != nil {
		return nil, NewAppError(ActionFailed, fmt.Sprintf("failed to run %s command", step), err)
	}
	return a, nil
}

// runAndWait runs step and waits for it. A missing step returns "".
func (s *projectScope) runAndWait(ctx context.Context, def *scaffold.Definition, data scaffold.Data, step action.Step) (string, error) {
	a, err := s.run(ctx, def, data, step)
	if err != nil || a == nil {
		return "", err
	}
	cmd, err := a.Wait()
	if err != nil {
		return cmd, NewAppError(ActionFailed, fmt.Sprintf("%s command failed", step), err)
	}
	return cmd, nil
}
