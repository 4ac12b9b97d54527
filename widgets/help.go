package widgets

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// HelpSection is a titled group on the full help page
type HelpSection struct {
	Title    string
	Bindings []key.Binding
}

// RenderHelp lays out every section as an aligned two-column list. Keys are
// padded to the widest key on the page. Bindings without keys are listed too,
// so mouse gestures can share the page.
func RenderHelp(sections []HelpSection, keyStyle, descStyle lipgloss.Style) string {
	width := 0
	for _, sec := range sections {
		for _, b := range sec.Bindings {
			width = max(width, lipgloss.Width(b.Help().Key))
		}
	}

	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, b := range sec.Bindings {
			h := b.Help()
			pad := strings.Repeat(" ", width-lipgloss.Width(h.Key))
			lines = append(lines, "  "+keyStyle.Render(h.Key)+pad+"  "+descStyle.Render(h.Desc))
		}
	}
	return strings.Join(lines, "\n")
}
