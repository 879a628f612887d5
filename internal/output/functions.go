package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("37"))            // dark green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))             // red
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))            // yellow
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))            // cyan
	debugStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))           // light grey
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")) // purple
)

var StyleSymbols = map[string]string{
	"pass":    "✓",
	"fail":    "✗",
	"warning": "!",
	"info":    "ℹ",
	"arrow":   "→",
	"bullet":  "•",
}

// Stdout and Stderr are swapped out in tests.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

func PrintSuccess(text string) {
	fmt.Fprintln(Stdout, successStyle.Render(text))
}

// PrintError writes to stderr so diagnostics stay off the data stream.
func PrintError(text string) {
	fmt.Fprintln(Stderr, errorStyle.Render(text))
}

func PrintWarning(text string) {
	fmt.Fprintln(Stdout, warningStyle.Render(text))
}

func PrintInfo(text string) {
	fmt.Fprintln(Stdout, infoStyle.Render(text))
}

func PrintDebug(text string) {
	fmt.Fprintln(Stdout, debugStyle.Render(text))
}

func PrintHeader(text string) {
	fmt.Fprintln(Stdout, headerStyle.Render(text))
}
