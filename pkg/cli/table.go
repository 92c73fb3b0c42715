package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for table output.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Header lipgloss.Style
	Border lipgloss.Style
	Footer lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Header: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Border: lipgloss.NewStyle().Foreground(t.Primary),
		Footer: lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// Table is a titled grid of cells.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
	Footer string
}

// Tabular is implemented by results that can be printed with FormatTable.
type Tabular interface {
	Table() Table
}

// MaxCellWidth truncates longer cells.
const MaxCellWidth = 48

// Render renders the table inside a rounded border.
func (t Table) Render(s Styles) string {
	cols := len(t.Header)
	for _, row := range t.Rows {
		cols = max(cols, len(row))
	}

	widths := make([]int, cols)
	measure := func(row []string) {
		for i, cell := range row {
			widths[i] = max(widths[i], min(lipgloss.Width(cell), MaxCellWidth))
		}
	}
	measure(t.Header)
	for _, row := range t.Rows {
		measure(row)
	}

	line := func(row []string, style *lipgloss.Style) string {
		cells := make([]string, cols)
		for i := range cols {
			text := ""
			if i < len(row) {
				text = row[i]
			}
			if lipgloss.Width(text) > MaxCellWidth {
				text = truncateString(text, MaxCellWidth-1) + "…"
			}
			text += strings.Repeat(" ", widths[i]-lipgloss.Width(text))
			if style != nil {
				text = style.Render(text)
			}
			cells[i] = text
		}
		return strings.Join(cells, "  ")
	}

	var lines []string
	if t.Title != "" {
		lines = append(lines, s.Title.Render(t.Title))
	}
	if len(t.Header) > 0 {
		lines = append(lines, line(t.Header, &s.Header))
	}
	for _, row := range t.Rows {
		lines = append(lines, line(row, nil))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Border.GetForeground()).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
	if t.Footer == "" {
		return box
	}
	return box + "\n" + s.Footer.Render(t.Footer)
}

func outputTable(w io.Writer, result any) error {
	tab, ok := result.(Tabular)
	if !ok {
		return outputYAML(w, result)
	}
	_, err := io.WriteString(w, tab.Table().Render(NewStyles(DefaultTheme))+"\n")
	return err
}

// truncateString safely truncates a string to the given width,
// handling multi-byte characters correctly.
func truncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	currentWidth := 0
	for i, r := range runes {
		w := lipgloss.Width(string(r))
		if currentWidth+w > width {
			return string(runes[:i])
		}
		currentWidth += w
	}
	return s
}
