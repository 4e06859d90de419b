package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/tacogips/mkapp/internal/scaffold"
)

// Common flag names and descriptions
const (
	// Flag names
	FlagTemplate     = "template"
	FlagBranch       = "branch"
	FlagData         = "data"
	FlagDataFile     = "data-file"
	FlagScaffoldsDir = "scaffolds-dir"
	FlagConfig       = "config"
	FlagJSON         = "json"
	FlagNoColor      = "no-color"
	FlagQuiet        = "quiet"
	FlagDebug        = "debug"

	// Flag descriptions
	DescTemplate     = "Scaffold to create the project from"
	DescBranch       = "Template repository branch (default: repo.branch from config)"
	DescData         = "Scaffold data as a JSON object; enables non-interactive mode"
	DescDataFile     = "Read scaffold data from a JSON or YAML file; enables non-interactive mode"
	DescScaffoldsDir = "Read scaffold definitions from this directory instead of the built-in set"
	DescConfig       = "Path to config file"
	DescJSON         = "Output as JSON"
	DescNoColor      = "Disable colored output"
	DescQuiet        = "Suppress non-error output"
	DescDebug        = "Enable debug logging"
)

var refBranchPattern = regexp.MustCompile(`^[a-zA-Z0-9_\-/\.]+$`)

// ValidateBranch validates a template repository branch name.
func ValidateBranch(ref string) error {
	if ref == "" {
		return fmt.Errorf("branch cannot be empty")
	}
	if !refBranchPattern.MatchString(ref) || strings.Contains(ref, "..") ||
		strings.HasPrefix(ref, "/") || strings.HasSuffix(ref, "/") {
		return fmt.Errorf("invalid branch name: %s", ref)
	}
	return nil
}

// ValidateProjectName validates a project directory name given on the
// command line. An empty name is allowed and means "ask".
func ValidateProjectName(name string) error {
	if name == "" {
		return nil
	}
	if filepath.IsAbs(name) || containsPathTraversal(name) {
		return fmt.Errorf("project name must be a relative path without '..': %s", name)
	}
	return nil
}

// containsPathTraversal checks if path contains a ".." segment
func containsPathTraversal(path string) bool {
	for _, seg := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}

// parseData decodes the --data and --data-file payloads. Both are optional;
// keys from --data override keys from the file.
func parseData(inline, file string) (scaffold.Data, error) {
	var out scaffold.Data

	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read data file: %w", err)
		}
		fromFile, err := decodeData(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid data file %s: %w", file, err)
		}
		out = fromFile
	}

	if inline != "" {
		fromFlag, err := decodeData([]byte(inline))
		if err != nil {
			return nil, fmt.Errorf("invalid --%s: %w", FlagData, err)
		}
		if out == nil {
			out = scaffold.Data{}
		}
		for k, v := range fromFlag {
			out[k] = v
		}
	}

	return out, nil
}

// decodeData parses a JSON or YAML mapping. JSON is accepted as YAML.
func decodeData(raw []byte) (scaffold.Data, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return scaffold.Data{}, nil
	}
	if node.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("data must be an object")
	}
	var out scaffold.Data
	if err := node.Content[0].Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// ghAuthToken asks the gh CLI for a token, returning "" when unavailable.
func ghAuthToken() string {
	if _, err := exec.LookPath("gh"); err != nil {
		return ""
	}
	output, err := exec.Command("gh", "auth", "token").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}
