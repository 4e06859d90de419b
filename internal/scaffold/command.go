package scaffold

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/kballard/go-shellquote"
	"go.yaml.in/yaml/v3"
)

// CommandKind tags the variant held by a Command.
type CommandKind int

const (
	// CommandNone means the scaffold declares no such lifecycle step.
	CommandNone CommandKind = iota
	// CommandLiteral is a fixed argument vector.
	CommandLiteral
	// CommandDerived computes the argument vector from the merged data.
	CommandDerived
)

// String returns the string representation of the kind.
func (k CommandKind) String() string {
	switch k {
	case CommandNone:
		return "None"
	case CommandLiteral:
		return "Literal"
	case CommandDerived:
		return "Derived"
	default:
		return "Unknown"
	}
}

// Command is a lifecycle command declaration: Literal(argv), Derived(fn) or None.
// The zero value is None.
type Command struct {
	kind   CommandKind
	argv   []string
	derive func(Data) ([]string, error)
	source string
}

// Literal returns a command with a fixed argument vector.
func Literal(argv ...string) Command {
	return Command{kind: CommandLiteral, argv: append([]string(nil), argv...)}
}

// Derived returns a command computed from the merged data at run time.
func Derived(fn func(Data) ([]string, error)) Command {
	return Command{kind: CommandDerived, derive: fn}
}

// Kind reports which variant c holds.
func (c Command) Kind() CommandKind {
	return c.kind
}

// Resolve returns the argument vector for data. None resolves to nil.
func (c Command) Resolve(data Data) ([]string, error) {
	switch c.kind {
	case CommandLiteral:
		return append([]string(nil), c.argv...), nil
	case CommandDerived:
		if c.derive == nil {
			return nil, nil
		}
		return c.derive(data)
	default:
		return nil, nil
	}
}

// String returns the declaration as written, for display and debugging.
func (c Command) String() string {
	switch c.kind {
	case CommandLiteral:
		return strings.Join(c.argv, " ")
	case CommandDerived:
		if c.source != "" {
			return c.source
		}
		return "<derived>"
	default:
		return ""
	}
}

// UnmarshalYAML accepts a string (split with shell quoting rules) or a list
// of arguments. Arguments containing "{{" make the command Derived; they are
// expanded with text/template against the merged data.
func (c *Command) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" || strings.TrimSpace(node.Value) == "" {
			*c = Command{}
			return nil
		}
		cmd, err := parseCommandString(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*c = cmd
		return nil
	case yaml.SequenceNode:
		var argv []string
		if err := node.Decode(&argv); err != nil {
			return fmt.Errorf("line %d: command arguments must be strings: %w", node.Line, err)
		}
		cmd, err := parseCommandArgs(argv)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*c = cmd
		return nil
	default:
		return fmt.Errorf("line %d: command must be a string or a list of strings", node.Line)
	}
}

func parseCommandString(s string) (Command, error) {
	if !strings.Contains(s, "{{") {
		argv, err := shellquote.Split(s)
		if err != nil {
			return Command{}, fmt.Errorf("invalid command %q: %w", s, err)
		}
		return Literal(argv...), nil
	}

	tmpl, err := newCommandTemplate(s)
	if err != nil {
		return Command{}, err
	}
	cmd := Derived(func(data Data) ([]string, error) {
		expanded, err := execCommandTemplate(tmpl, data)
		if err != nil {
			return nil, err
		}
		return shellquote.Split(expanded)
	})
	cmd.source = s
	return cmd, nil
}

func parseCommandArgs(argv []string) (Command, error) {
	derived := false
	tmpls := make([]*template.Template, len(argv))
	for i, arg := range argv {
		if !strings.Contains(arg, "{{") {
			continue
		}
		tmpl, err := newCommandTemplate(arg)
		if err != nil {
			return Command{}, err
		}
		tmpls[i] = tmpl
		derived = true
	}
	if !derived {
		return Literal(argv...), nil
	}

	cmd := Derived(func(data Data) ([]string, error) {
		out := make([]string, 0, len(argv))
		for i, arg := range argv {
			if tmpls[i] == nil {
				out = append(out, arg)
				continue
			}
			expanded, err := execCommandTemplate(tmpls[i], data)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded)
		}
		return out, nil
	})
	cmd.source = strings.Join(argv, " ")
	return cmd, nil
}

func newCommandTemplate(text string) (*template.Template, error) {
	tmpl, err := template.New("command").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid command template %q: %w", text, err)
	}
	return tmpl, nil
}

func execCommandTemplate(tmpl *template.Template, data Data) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any(data)); err != nil {
		return "", fmt.Errorf("failed to expand command: %w", err)
	}
	return buf.String(), nil
}
