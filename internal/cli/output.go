package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	successMark = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningMark = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// stdout is where user-facing output goes; tests replace it.
var stdout io.Writer = os.Stdout

func styled(s lipgloss.Style, text string) string {
	if globalNoColor {
		return text
	}
	return s.Render(text)
}

// Output formatting helpers

// printInfo prints an informational message
func printInfo(msg string) {
	if globalQuiet {
		return
	}
	fmt.Fprintln(stdout, msg)
}

// printSuccess prints a success message
func printSuccess(msg string) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(stdout, "%s %s\n", styled(successMark, "✓"), msg)
}

// printWarning prints a warning message
func printWarning(msg string) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(stdout, "%s %s\n", styled(warningMark, "⚠"), msg)
}

// printHeader prints a section header
func printHeader(title string) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(stdout, "\n%s\n", styled(headerStyle, title))
}

// printSeparator prints a dim horizontal rule
func printSeparator() {
	if globalQuiet {
		return
	}
	fmt.Fprintln(stdout, styled(dimStyle, separatorLine))
}

// separatorLine divides featured scaffolds from the rest.
const separatorLine = "──────────────"
