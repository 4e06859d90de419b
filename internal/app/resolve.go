package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/tacogips/mkapp/internal/debug"
	"github.com/tacogips/mkapp/internal/scaffold"
)

// DefaultProjectName is offered by the project name prompt.
const DefaultProjectName = "my-app"

// ErrNoPrompter is returned when an answer is needed but no Prompter is set.
var ErrNoPrompter = errors.New("input required but prompting is unavailable")

// Prompter collects answers interactively.
type Prompter interface {
	// ProjectName asks for the project directory name.
	ProjectName(ctx context.Context, initial string) (string, error)
	// Template asks the user to choose a scaffold. Featured entries are
	// offered first, separated from the rest.
	Template(ctx context.Context, listing *scaffold.Listing) (string, error)
	// Flag asks for one scaffold flag value.
	Flag(ctx context.Context, flag scaffold.Flag) (any, error)
}

// isTemplateValid reports whether name exactly matches a listed scaffold.
func isTemplateValid(listing *scaffold.Listing, name string) bool {
	if name == "" {
		return false
	}
	for _, n := range listing.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// resolveCore returns the project name and template, prompting for what the
// caller did not supply. template must already be known valid or empty.
func resolveCore(ctx context.Context, p Prompter, listing *scaffold.Listing, projectName, template string) (scaffold.Data, error) {
	var err error
	if projectName == "" {
		if p == nil {
			return nil, NewAppError(ResolutionFailed, "project name is required", ErrNoPrompter)
		}
		if projectName, err = p.ProjectName(ctx, DefaultProjectName); err != nil {
			return nil, NewAppError(ResolutionFailed, "failed to read project name", err)
		}
		if projectName == "" {
			return nil, NewAppError(ResolutionFailed, "project name cannot be empty", nil)
		}
	}

	if template == "" {
		if p == nil {
			return nil, NewAppError(ResolutionFailed, "template is required", ErrNoPrompter)
		}
		if template, err = p.Template(ctx, listing); err != nil {
			return nil, NewAppError(ResolutionFailed, "failed to read template choice", err)
		}
		if !isTemplateValid(listing, template) {
			return nil, NewAppError(ResolutionFailed, fmt.Sprintf("unknown template: %s", template), nil)
		}
	}

	debug.DebugValue("[app] projectName", projectName)
	debug.DebugValue("[app] template", template)
	return scaffold.Data{"projectName": projectName, "template": template}, nil
}

// promptFlags asks for every declared flag in declaration order and parses
// each answer with the flag's rule.
func promptFlags(ctx context.Context, p Prompter, flags []scaffold.Flag) (scaffold.Data, error) {
	answers := scaffold.Data{}
	if len(flags) == 0 {
		return answers, nil
	}
	if p == nil {
		return nil, NewAppError(ResolutionFailed, "scaffold flags require input", ErrNoPrompter)
	}

	for _, f := range flags {
		raw, err := p.Flag(ctx, f)
		if err != nil {
			return nil, NewAppError(ResolutionFailed, fmt.Sprintf("failed to read flag '%s'", f.Name), err)
		}
		if raw == nil {
			continue
		}
		v, err := f.Parse(raw)
		if err != nil {
			return nil, NewAppError(ValidationFailed, "invalid answer",
				&scaffold.FlagValidationError{Flag: f.Name, Reason: "invalid value", Cause: err})
		}
		answers[f.Name] = v
	}
	return answers, nil
}
