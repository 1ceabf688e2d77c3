package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mq-dashboard/internal/dashboard"
	"mq-dashboard/internal/domain"
)

// renderTiles lays the tiles out in one row when they fit, two rows otherwise.
func renderTiles(tiles []dashboard.Tile, width int) string {
	if len(tiles) == 0 {
		return ""
	}

	perRow := len(tiles)
	if width > 0 && width < 100 {
		perRow = 2
	}
	tileWidth := 24
	if width > 0 {
		tileWidth = width/perRow - 2
	}

	var rows []string
	for start := 0; start < len(tiles); start += perRow {
		end := min(start+perRow, len(tiles))
		cells := make([]string, 0, end-start)
		for _, t := range tiles[start:end] {
			cells = append(cells, renderTile(t, tileWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderTile(t dashboard.Tile, width int) string {
	lines := []string{tileTitleStyle.Render(t.Title)}
	for _, src := range domain.Sources {
		lines = append(lines, sourceStyle(src).Render(src.DisplayName()+": "+t.Display(src)))
	}
	style := tileStyle
	if width > 4 {
		style = style.Width(width)
	}
	return style.Render(strings.Join(lines, "\n"))
}
