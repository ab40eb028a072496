package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	selectedStyle = cellStyle.Reverse(true)
	tabStyle      = lipgloss.NewStyle().Padding(0, 1)
	activeTab     = tabStyle.Bold(true).Underline(true).Foreground(lipgloss.Color("12"))
)

// TableProps are the inputs of Table.
type TableProps struct {
	HeadRows    []string
	Rows        [][]string
	Page        int
	TotalDoc    int
	RowsPerPage int
	// Selected highlights one row; -1 for none.
	Selected int
	Width    int
}

// Table renders one page of rows with a pagination footer.
func Table(p TableProps) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(p.HeadRows...).
		Rows(p.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == p.Selected:
				return selectedStyle
			default:
				return cellStyle
			}
		})
	if p.Width > 0 {
		t = t.Width(p.Width)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		t.Render(),
		Pagination(p.Page, p.TotalDoc, p.RowsPerPage),
	)
}

// Pagination renders "11-20 of 45 · rows per page 10".
func Pagination(page, totalDoc, rowsPerPage int) string {
	if rowsPerPage <= 0 {
		return ""
	}
	from := page*rowsPerPage + 1
	to := from + rowsPerPage - 1
	if to > totalDoc {
		to = totalDoc
	}
	if totalDoc == 0 {
		from = 0
	}
	return mutedStyle.Render(fmt.Sprintf("%d-%d of %d · rows per page %d", from, to, totalDoc, rowsPerPage))
}

// PageCount is the number of pages needed for totalDoc rows.
func PageCount(totalDoc, rowsPerPage int) int {
	if rowsPerPage <= 0 || totalDoc <= 0 {
		return 1
	}
	return (totalDoc + rowsPerPage - 1) / rowsPerPage
}

// StatusTabs renders filter tabs with the active value highlighted.
func StatusTabs(labels []string, active int) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		if i == active {
			parts[i] = activeTab.Render(l)
		} else {
			parts[i] = tabStyle.Render(l)
		}
	}
	return strings.Join(parts, "│")
}

// Snackbar renders a one-line notification.
func Snackbar(severity, text string) string {
	color := lipgloss.Color("10")
	switch severity {
	case "error":
		color = lipgloss.Color("9")
	case "info":
		color = lipgloss.Color("12")
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(text)
}

func itoa(i int) string { return strconv.Itoa(i) }
