package scaffold

import (
	"fmt"
	"math"
	"path"

	"go.yaml.in/yaml/v3"
)

// DefinitionFile is the file every scaffold directory must contain.
const DefinitionFile = "scaffold.yaml"

// Default render delimiters. Templates are mostly JS/JSX where "{{" is common.
const (
	DefaultLeftDelimiter  = "<%"
	DefaultRightDelimiter = "%>"
)

// Featured promotes a scaffold to the top of the selection list.
// In YAML it is either a boolean or a mapping {order: N}.
type Featured struct {
	// Enabled reports whether the scaffold is featured at all.
	Enabled bool
	// Order is the explicit sort key; nil sorts after every explicit order.
	Order *int
}

// SortKey returns the featured ordering key; unordered entries sort as +Inf.
func (f Featured) SortKey() float64 {
	if f.Order == nil {
		return math.Inf(1)
	}
	return float64(*f.Order)
}

// UnmarshalYAML decodes either `featured: true` or `featured: {order: 1}`.
func (f *Featured) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var b bool
		if err := node.Decode(&b); err != nil {
			return fmt.Errorf("line %d: featured must be a boolean or {order: N}", node.Line)
		}
		*f = Featured{Enabled: b}
		return nil
	case yaml.MappingNode:
		var v struct {
			Order int `yaml:"order"`
		}
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("line %d: invalid featured order: %w", node.Line, err)
		}
		order := v.Order
		*f = Featured{Enabled: true, Order: &order}
		return nil
	default:
		return fmt.Errorf("line %d: featured must be a boolean or {order: N}", node.Line)
	}
}

// MarshalJSON renders the featured value the way it is declared.
func (f Featured) MarshalJSON() ([]byte, error) {
	switch {
	case !f.Enabled:
		return []byte("false"), nil
	case f.Order == nil:
		return []byte("true"), nil
	default:
		return []byte(fmt.Sprintf(`{"order":%d}`, *f.Order)), nil
	}
}

// Definition is one scaffold: its metadata, flags and lifecycle commands.
// It is read-only once loaded.
type Definition struct {
	// Name is the scaffold identity, equal to its directory name.
	Name string `yaml:"-"`
	// ShortDescription is shown in the template choice list.
	ShortDescription string `yaml:"shortDescription"`
	// Featured promotes the scaffold in listings.
	Featured Featured `yaml:"featured,omitempty"`
	// TemplatePath is the template tree's path inside the remote repository.
	TemplatePath string `yaml:"templatePath,omitempty"`
	// Delimiters overrides the render delimiters as [left, right].
	Delimiters []string `yaml:"delimiters,omitempty"`
	// Install is the dependency install command.
	Install Command `yaml:"installDependenciesCommand,omitempty"`
	// Start is the dev-server start command.
	Start Command `yaml:"startCommand,omitempty"`
	// Flags are the scaffold's declared inputs, in prompt order.
	Flags []Flag `yaml:"flags,omitempty"`
}

// RemoteTemplatePath returns the repository-relative template directory.
func (d *Definition) RemoteTemplatePath() string {
	if d.TemplatePath != "" {
		return d.TemplatePath
	}
	return path.Join("scaffolds", d.Name, "template")
}

// RenderDelimiters returns the left and right render delimiters.
func (d *Definition) RenderDelimiters() (string, string) {
	if len(d.Delimiters) == 2 {
		return d.Delimiters[0], d.Delimiters[1]
	}
	return DefaultLeftDelimiter, DefaultRightDelimiter
}

// Flag returns the declared flag with name.
func (d *Definition) Flag(name string) (Flag, bool) {
	for _, f := range d.Flags {
		if f.Name == name {
			return f, true
		}
	}
	return Flag{}, false
}

// ParseDefinition decodes a scaffold.yaml document after schema validation.
func ParseDefinition(name string, data []byte) (*Definition, error) {
	issues, err := ValidateDefinition(data)
	if err != nil {
		return nil, newDiscoveryError(name, "failed to validate "+DefinitionFile, err)
	}
	if len(issues) > 0 {
		return nil, newDiscoveryError(name, "invalid "+DefinitionFile, issuesError(issues))
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, newDiscoveryError(name, "failed to parse "+DefinitionFile, err)
	}
	def.Name = name

	seen := make(map[string]bool, len(def.Flags))
	for _, f := range def.Flags {
		if seen[f.Name] {
			return nil, newDiscoveryError(name, fmt.Sprintf("duplicate flag '%s'", f.Name), nil)
		}
		seen[f.Name] = true
		if f.EffectiveType() == FlagEnum && len(f.Choices) == 0 {
			return nil, newDiscoveryError(name, fmt.Sprintf("enum flag '%s' has no choices", f.Name), nil)
		}
	}

	return &def, nil
}
