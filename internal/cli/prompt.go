package cli

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/core"
	"github.com/Masterminds/semver/v3"

	"github.com/tacogips/mkapp/internal/app"
	"github.com/tacogips/mkapp/internal/scaffold"
)

// surveyPrompter asks questions on the terminal. Without a terminal every
// question fails with app.ErrNoPrompter, so runs that need no answers still
// succeed.
type surveyPrompter struct {
	opts []survey.AskOpt
	// interactive reports whether stdin is a terminal.
	interactive func() bool
}

var _ app.Prompter = (*surveyPrompter)(nil)

func newSurveyPrompter(opts ...survey.AskOpt) *surveyPrompter {
	return &surveyPrompter{opts: opts, interactive: stdinIsTerminal}
}

// stdinIsTerminal checks if stdin is a character device.
func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func (p *surveyPrompter) ask(ctx context.Context, prompt survey.Prompt, response any, validators ...survey.Validator) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.interactive != nil && !p.interactive() {
		return fmt.Errorf("stdin is not a terminal: %w", app.ErrNoPrompter)
	}
	opts := append([]survey.AskOpt{}, p.opts...)
	if len(validators) > 0 {
		opts = append(opts, survey.WithValidator(survey.ComposeValidators(validators...)))
	}
	return survey.AskOne(prompt, response, opts...)
}

// ProjectName asks for the project directory name.
func (p *surveyPrompter) ProjectName(ctx context.Context, initial string) (string, error) {
	var result string
	prompt := &survey.Input{
		Message: "What is your project named?",
		Default: initial,
	}
	if err := p.ask(ctx, prompt, &result, survey.Required, validateProjectNameAnswer); err != nil {
		return "", err
	}
	return result, nil
}

// Template asks for a scaffold. Featured scaffolds come first, then a
// separator, then the rest.
func (p *surveyPrompter) Template(ctx context.Context, listing *scaffold.Listing) (string, error) {
	options, descriptions := templateOptions(listing)
	if len(descriptions) == 0 {
		return "", fmt.Errorf("no templates available")
	}

	var result string
	prompt := &survey.Select{
		Message:  "Pick a template",
		Options:  options,
		PageSize: 15,
		Description: func(value string, index int) string {
			return descriptions[value]
		},
	}
	if err := p.ask(ctx, prompt, &result, rejectSeparator); err != nil {
		return "", err
	}
	return result, nil
}

// templateOptions builds the select options and their descriptions. The
// separator is only present when both groups are non-empty.
func templateOptions(listing *scaffold.Listing) ([]string, map[string]string) {
	var options []string
	descriptions := make(map[string]string)

	for _, e := range listing.Featured {
		options = append(options, e.Name)
		descriptions[e.Name] = e.ShortDescription
	}
	if len(listing.Featured) > 0 && len(listing.Others) > 0 {
		options = append(options, separatorLine)
	}
	for _, e := range listing.Others {
		options = append(options, e.Name)
		descriptions[e.Name] = e.ShortDescription
	}
	return options, descriptions
}

// Flag asks for one scaffold flag based on its type.
func (p *surveyPrompter) Flag(ctx context.Context, flag scaffold.Flag) (any, error) {
	message := flagMessage(flag)

	switch flag.EffectiveType() {
	case scaffold.FlagBool:
		var result bool
		def, _ := flag.Default.(bool)
		prompt := &survey.Confirm{Message: message, Default: def, Help: flag.Description}
		if err := p.ask(ctx, prompt, &result); err != nil {
			return nil, err
		}
		return result, nil

	case scaffold.FlagEnum:
		var result string
		prompt := &survey.Select{Message: message, Options: flag.Choices, Help: flag.Description}
		if def, ok := flag.Default.(string); ok {
			prompt.Default = def
		}
		if err := p.ask(ctx, prompt, &result); err != nil {
			return nil, err
		}
		return result, nil

	default:
		var result string
		prompt := &survey.Input{Message: message, Default: defaultString(flag.Default), Help: flag.Description}
		if err := p.ask(ctx, prompt, &result, flagValidators(flag)...); err != nil {
			return nil, err
		}
		if result == "" {
			// Absent; the flag default applies during merge.
			return nil, nil
		}
		return result, nil
	}
}

// flagMessage is the prompt text for a flag.
func flagMessage(flag scaffold.Flag) string {
	message := flag.Message
	if message == "" {
		message = flag.Name
	}
	if !flag.HasDefault() && flag.EffectiveType() != scaffold.FlagBool && flag.EffectiveType() != scaffold.FlagEnum {
		message += " (required)"
	}
	return message
}

// flagValidators returns the input validators for text-entered flags.
func flagValidators(flag scaffold.Flag) []survey.Validator {
	var validators []survey.Validator
	if !flag.HasDefault() {
		validators = append(validators, survey.Required)
	}

	switch flag.EffectiveType() {
	case scaffold.FlagInt:
		validators = append(validators, validateInt)
	case scaffold.FlagNumber:
		validators = append(validators, validateNumber)
	case scaffold.FlagSemver:
		validators = append(validators, validateSemver)
	case scaffold.FlagString:
		if flag.Pattern != "" {
			validators = append(validators, matchPattern(flag.Pattern, "value must match pattern: "+flag.Pattern))
		}
	}
	return validators
}

func defaultString(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return d
	case int:
		return strconv.Itoa(d)
	case float64:
		return strconv.FormatFloat(d, 'f', -1, 64)
	default:
		return fmt.Sprint(d)
	}
}

func answerString(val any) (string, error) {
	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", val)
	}
	return str, nil
}

func validateInt(val any) error {
	str, err := answerString(val)
	if err != nil || str == "" {
		return err
	}
	if _, err := strconv.Atoi(str); err != nil {
		return fmt.Errorf("must be an integer")
	}
	return nil
}

func validateNumber(val any) error {
	str, err := answerString(val)
	if err != nil || str == "" {
		return err
	}
	if _, err := strconv.ParseFloat(str, 64); err != nil {
		return fmt.Errorf("must be a number")
	}
	return nil
}

func validateSemver(val any) error {
	str, err := answerString(val)
	if err != nil || str == "" {
		return err
	}
	if _, err := semver.NewVersion(str); err != nil {
		return fmt.Errorf("must be a semantic version, e.g. 1.2.3")
	}
	return nil
}

func validateProjectNameAnswer(val any) error {
	str, err := answerString(val)
	if err != nil {
		return err
	}
	return ValidateProjectName(str)
}

func rejectSeparator(val any) error {
	if opt, ok := val.(core.OptionAnswer); ok && opt.Value == separatorLine {
		return fmt.Errorf("please pick a template")
	}
	return nil
}

// matchPattern creates a survey validator for regex pattern matching.
func matchPattern(pattern string, message string) survey.Validator {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return func(val any) error {
			return fmt.Errorf("invalid pattern: %s", pattern)
		}
	}
	return func(val any) error {
		str, err := answerString(val)
		if err != nil {
			return err
		}
		if str != "" && !re.MatchString(str) {
			return fmt.Errorf("%s", message)
		}
		return nil
	}
}
