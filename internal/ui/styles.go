// Package ui renders read structures and parse errors for the terminal.
package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color modes accepted by IsColorEnabled.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Styles holds the renderers used for CLI output.
type Styles struct {
	Error  lipgloss.Style
	Span   lipgloss.Style
	Caret  lipgloss.Style
	Header lipgloss.Style
	Kind   lipgloss.Style
	Dim    lipgloss.Style
}

// NewStyles returns colored styles, or plain ones when color is disabled.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &Styles{
			Error:  plain,
			Span:   plain,
			Caret:  plain,
			Header: plain,
			Kind:   plain,
			Dim:    plain,
		}
	}

	return &Styles{
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Span:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Underline(true),
		Caret:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Header: lipgloss.NewStyle().Bold(true),
		Kind:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// IsColorEnabled reports whether output to w should be colored. In auto
// mode color is used only for terminals, and never when NO_COLOR is set.
func IsColorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := w.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}
