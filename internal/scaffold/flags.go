package scaffold

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// FlagType is the parse rule applied to a flag value.
type FlagType string

const (
	// FlagString accepts any string.
	FlagString FlagType = "string"
	// FlagBool accepts booleans or strconv.ParseBool strings.
	FlagBool FlagType = "bool"
	// FlagInt accepts integers or integral strings.
	FlagInt FlagType = "int"
	// FlagNumber accepts numbers, parsed as float64.
	FlagNumber FlagType = "number"
	// FlagEnum accepts one of Choices.
	FlagEnum FlagType = "enum"
	// FlagSemver accepts a semantic version, stored normalized.
	FlagSemver FlagType = "semver"
)

// Flag is a named, typed input a scaffold declares.
type Flag struct {
	// Name is the key the parsed value is stored under.
	Name string `yaml:"name"`
	// Type is the parse rule (defaults to string).
	Type FlagType `yaml:"type,omitempty"`
	// Message is the interactive prompt text.
	Message string `yaml:"message,omitempty"`
	// Description documents the flag for --help style listings.
	Description string `yaml:"description,omitempty"`
	// Choices lists the allowed values for enum flags.
	Choices []string `yaml:"choices,omitempty"`
	// Default is used when the value is absent. Nil means no default.
	Default any `yaml:"default,omitempty"`
	// Pattern is a regular expression string values must match.
	Pattern string `yaml:"pattern,omitempty"`
}

// EffectiveType returns Type, defaulting to string.
func (f Flag) EffectiveType() FlagType {
	if f.Type == "" {
		return FlagString
	}
	return f.Type
}

// HasDefault reports whether the flag declares an explicit default.
func (f Flag) HasDefault() bool {
	return f.Default != nil
}

// Parse applies the flag's parse rule to raw and returns the typed value.
func (f Flag) Parse(raw any) (any, error) {
	if raw == nil {
		return nil, errors.New("value is absent")
	}

	switch f.EffectiveType() {
	case FlagString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string, got %T", raw)
		}
		if f.Pattern != "" {
			re, err := regexp.Compile(f.Pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", f.Pattern, err)
			}
			if !re.MatchString(s) {
				return nil, fmt.Errorf("value must match pattern: %s", f.Pattern)
			}
		}
		return s, nil

	case FlagBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("must be a boolean")
			}
			return b, nil
		}
		return nil, fmt.Errorf("expected a boolean, got %T", raw)

	case FlagInt:
		switch v := raw.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("must be an integer")
			}
			return int(v), nil
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("must be an integer")
			}
			return n, nil
		}
		return nil, fmt.Errorf("expected an integer, got %T", raw)

	case FlagNumber:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("must be a number")
			}
			return n, nil
		}
		return nil, fmt.Errorf("expected a number, got %T", raw)

	case FlagEnum:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string, got %T", raw)
		}
		for _, c := range f.Choices {
			if c == s {
				return s, nil
			}
		}
		return nil, fmt.Errorf("must be one of: %s", strings.Join(f.Choices, ", "))

	case FlagSemver:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected a version string, got %T", raw)
		}
		v, err := semver.NewVersion(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("must be a semantic version: %w", err)
		}
		return v.String(), nil

	default:
		return nil, fmt.Errorf("unknown flag type %q", f.Type)
	}
}

// ParseFlags validates every declared flag against payload. Absent values
// fall back to the flag's default; a flag that is absent without a default,
// or whose value fails its rule, yields a *FlagValidationError. All failures
// are reported together.
func ParseFlags(flags []Flag, payload Data) (Data, error) {
	out := make(Data, len(flags))
	var errs []error

	for _, f := range flags {
		raw, present := payload[f.Name]
		if !present || raw == nil {
			if f.HasDefault() {
				out[f.Name] = f.Default
				continue
			}
			errs = append(errs, &FlagValidationError{Flag: f.Name, Reason: "value is required"})
			continue
		}

		v, err := f.Parse(raw)
		if err != nil {
			errs = append(errs, &FlagValidationError{Flag: f.Name, Reason: "invalid value", Cause: err})
			continue
		}
		out[f.Name] = v
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// FlagDefaults returns the declared defaults, skipping flags without one.
func FlagDefaults(flags []Flag) Data {
	out := make(Data)
	for _, f := range flags {
		if f.HasDefault() {
			out[f.Name] = f.Default
		}
	}
	return out
}
