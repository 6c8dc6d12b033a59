package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// ConsoleNotifier prints the short success and error messages of pledge actions
type ConsoleNotifier struct {
	Out io.Writer
	Err io.Writer
}

func (n *ConsoleNotifier) Success(msg string) {
	fmt.Fprintln(n.Out, successStyle.Render("✓ "+msg))
}

func (n *ConsoleNotifier) Error(msg string) {
	fmt.Fprintln(n.Err, errorStyle.Render("✗ "+msg))
}
