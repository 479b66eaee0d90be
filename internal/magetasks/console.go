package magetasks

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Out receives everything the tasks print.
var Out io.Writer = os.Stdout

var (
	h1Style      = lipgloss.NewStyle().Bold(true)
	h2Style      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	infoStyle    = lipgloss.NewStyle().Faint(true)
)

const headerWidth = 80

// PrintH1Header prints a centered top-level header between rules.
func PrintH1Header(title string) {
	rule := strings.Repeat("=", headerWidth)
	padding := max((headerWidth-lipgloss.Width(title))/2, 0)
	fmt.Fprintln(Out)
	fmt.Fprintln(Out, rule)
	fmt.Fprintln(Out, strings.Repeat(" ", padding)+h1Style.Render(title))
	fmt.Fprintln(Out, rule)
	fmt.Fprintln(Out)
}

// PrintH2Header prints a section header.
func PrintH2Header(title string) {
	fmt.Fprintln(Out)
	fmt.Fprintln(Out, h2Style.Render("=== "+title+" ==="))
	fmt.Fprintln(Out)
}

// PrintSuccess prints a success message.
func PrintSuccess(msg string) {
	fmt.Fprintln(Out, successStyle.Render("✅ "+msg))
}

// PrintWarning prints a warning message.
func PrintWarning(msg string) {
	fmt.Fprintln(Out, warningStyle.Render("⚠️  "+msg))
}

// PrintError prints an error message.
func PrintError(msg string) {
	fmt.Fprintln(Out, errorStyle.Render("❌ "+msg))
}

// PrintInfo prints an info message.
func PrintInfo(msg string) {
	fmt.Fprintln(Out, infoStyle.Render("ℹ️  "+msg))
}
