// Package debug writes timestamped diagnostic lines to stderr when --debug is set.
package debug

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	mu      sync.RWMutex
	enabled bool
	noColor bool
	out     io.Writer = os.Stderr
)

var (
	tagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	timeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
)

// SetDebug enables or disables debug mode
func SetDebug(enable bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = enable
}

// IsEnabled returns whether debug mode is enabled
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetNoColor enables or disables colored output
func SetNoColor(disable bool) {
	mu.Lock()
	defer mu.Unlock()
	noColor = disable
}

// SetOutput redirects debug output. A nil writer restores stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	out = w
}

// emit writes one line, styling the pieces unless colors are off.
func emit(body func(style func(lipgloss.Style, string) string) string) {
	mu.RLock()
	w, plain := out, noColor
	mu.RUnlock()

	style := func(s lipgloss.Style, text string) string {
		if plain {
			return text
		}
		return s.Render(text)
	}

	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(w, "%s %s %s\n", style(tagStyle, "[DEBUG]"), style(timeStyle, timestamp), body(style))
}

// Debug prints a debug message with timestamp
func Debug(format string, args ...interface{}) {
	if !IsEnabled() {
		return
	}
	msg := fmt.Sprintf(format, args...)
	emit(func(func(lipgloss.Style, string) string) string { return msg })
}

// DebugSection prints a section header for debug output
func DebugSection(section string) {
	if !IsEnabled() {
		return
	}
	emit(func(style func(lipgloss.Style, string) string) string {
		return style(tagStyle, "=== "+section+" ===")
	})
}

// DebugValue prints key=value style debug info
func DebugValue(key string, value interface{}) {
	if !IsEnabled() {
		return
	}
	emit(func(style func(lipgloss.Style, string) string) string {
		return fmt.Sprintf("%s = %v", style(keyStyle, key), value)
	})
}

// DebugJSON prints structured data as JSON for debugging
func DebugJSON(key string, v interface{}) {
	if !IsEnabled() {
		return
	}

	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		Debug("Failed to marshal %s to JSON: %v", key, err)
		return
	}

	emit(func(style func(lipgloss.Style, string) string) string {
		return fmt.Sprintf("%s:\n%s", style(keyStyle, key), jsonBytes)
	})
}
