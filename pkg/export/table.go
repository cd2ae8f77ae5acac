package export

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7F849C"))
)

// RenderTable renders the dataset as a bordered terminal table headed by its name.
func RenderTable(data Dataset) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(data.Headers...).
		Rows(data.Records()...)
	if data.Name == "" {
		return t.String()
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(data.Name), t.String())
}
