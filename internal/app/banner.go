package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF"))
	boldAccent   = accentStyle.Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

// Console writes user-facing messages.
type Console struct {
	Out io.Writer
	// Plain disables styling.
	Plain bool
}

func (c Console) style(s lipgloss.Style, text string) string {
	if c.Plain {
		return text
	}
	return s.Render(text)
}

func (c Console) writer() io.Writer {
	if c.Out == nil {
		return io.Discard
	}
	return c.Out
}

// Warning prints a non-fatal warning followed by a blank line.
func (c Console) Warning(msg string) {
	fmt.Fprintf(c.writer(), "%s %s\n\n", c.style(warningStyle, "⚠ Warning:"), msg)
}

// invalidTemplateWarning is the message for a template name that matches
// no registered scaffold.
func (c Console) invalidTemplateWarning(name string) {
	c.Warning(fmt.Sprintf("'%s' does not match any templates.", c.style(boldStyle, name)))
}

// SuccessBanner prints the bootstrap summary.
func (c Console) SuccessBanner(w io.Writer, template, projectName, projectRoot string) {
	lines := []string{
		"",
		"✨",
		c.style(successStyle, "Success!") + " " +
			c.style(boldStyle, fmt.Sprintf("You've bootstrapped a new app with %s!", c.style(accentStyle, template))),
		fmt.Sprintf("Created %s at %s", c.style(boldAccent, projectName), c.style(boldAccent, projectRoot)),
	}
	fmt.Fprintln(w, strings.Join(lines, "\n"))
}

// UsageBanner prints the commands available inside the project. Nothing
// beyond a blank line is printed when neither command exists.
func (c Console) UsageBanner(w io.Writer, projectName, installCmd, startCmd string) {
	lines := []string{""}

	if installCmd != "" || startCmd != "" {
		lines = append(lines, "Inside your app directory, you can run several commands:\n")
	}
	if installCmd != "" {
		lines = append(lines,
			"  "+c.style(accentStyle, installCmd),
			"    Install dependencies.\n")
	}
	if startCmd != "" {
		lines = append(lines,
			"  "+c.style(accentStyle, startCmd),
			"    Starts the app with a local development server.\n",
			"Type the following to restart your newly-created app:\n",
			"  "+c.style(accentStyle, "cd")+" "+projectName,
			"  "+c.style(accentStyle, startCmd))
	}

	fmt.Fprintln(w, strings.Join(lines, "\n"))
}
