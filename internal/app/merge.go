package app

import "github.com/tacogips/mkapp/internal/scaffold"

// DefaultBranch is the template branch used when none is given.
const DefaultBranch = "master"

// Merge combines layers into a new bag. Later layers win; a nil value never
// overwrites a value from an earlier layer. Nil layers are skipped.
func Merge(layers ...scaffold.Data) scaffold.Data {
	out := make(scaffold.Data)
	for _, layer := range layers {
		for k, v := range layer {
			if v == nil {
				continue
			}
			out[k] = v
		}
	}
	return out
}

// Layers are the independently sourced inputs of one run.
type Layers struct {
	// FlagDefaults are the scaffold's declared flag defaults.
	FlagDefaults scaffold.Data
	// Payload is the caller's data payload with parsed flag values applied.
	Payload scaffold.Data
	// Core holds the resolved projectName and template answers.
	Core scaffold.Data
	// Config holds the fields the caller set explicitly on CreateAppConfig.
	Config scaffold.Data
	// Answers are the interactively collected scaffold flag values.
	Answers scaffold.Data
}

// BuildMergedData applies the layers in increasing precedence:
// flag defaults, the branch default, payload, core answers, explicit config
// fields, scaffold answers.
func BuildMergedData(l Layers) scaffold.Data {
	return Merge(
		l.FlagDefaults,
		scaffold.Data{"branch": DefaultBranch},
		l.Payload,
		l.Core,
		l.Config,
		l.Answers,
	)
}

// explicitFields returns the non-empty fields of cfg as a layer. The
// template is included only when it names a registered scaffold.
func explicitFields(cfg CreateAppConfig, templateValid bool) scaffold.Data {
	out := scaffold.Data{}
	if cfg.Branch != "" {
		out["branch"] = cfg.Branch
	}
	if cfg.ProjectName != "" {
		out["projectName"] = cfg.ProjectName
	}
	if cfg.Template != "" && templateValid {
		out["template"] = cfg.Template
	}
	return out
}
