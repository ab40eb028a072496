package tui

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"idservices-admin/internal/appstate"
	"idservices-admin/internal/registry"
	"idservices-admin/internal/search"
	"idservices-admin/internal/ui"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle  = lipgloss.NewStyle().Bold(true).Width(24)
	modalStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).BorderForeground(lipgloss.Color("12"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func (m *Model) View() string {
	if m.screen == ScreenMaintenance {
		return m.maintenanceView()
	}

	sections := []string{m.headerView()}
	switch m.screen {
	case ScreenDetail:
		sections = append(sections, m.detailView())
	default:
		sections = append(sections, m.listView())
		if m.modal != nil && m.modal.IsOpen() {
			sections = append(sections, m.modalView())
		}
	}

	if m.mode == ModeConfirmDelete {
		sections = append(sections, promptStyle.Render(fmt.Sprintf("Delete record %s? (y/N)", m.confirmID)))
	}
	if snack := m.deps.State.State().Snackbar; snack != nil {
		sections = append(sections, ui.Snackbar(string(snack.Severity), snack.Text))
	}
	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) headerView() string {
	registryName := "ISBN registry"
	if m.deps.State.State().TypeOfService == appstate.ServiceISSN {
		registryName = "ISSN registry"
	}
	title := titleStyle.Render("Identifier Services · " + registryName)

	user := mutedStyle.Render("not signed in")
	if m.session != nil {
		if _, ok := m.session.Token(); ok {
			user = mutedStyle.Render("signed in")
			if p, err := m.session.Profile(); err == nil && p.Name != "" {
				user = mutedStyle.Render("signed in as " + p.Name)
			}
		}
	}

	env := ""
	if m.boot != nil && m.boot.Environment != "" {
		env = mutedStyle.Render("[" + m.boot.Environment + "]")
	}

	titles := make([]string, len(m.resources))
	for i, r := range m.resources {
		titles[i] = r.Title
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		strings.Join(nonEmpty(title, env, user), "  "),
		ui.StatusTabs(titles, m.resIdx),
		"",
	)
}

func (m *Model) listView() string {
	if m.list == nil {
		return mutedStyle.Render(ui.EmptyMessage)
	}

	res := m.list.Resource()
	lines := make([]string, 0, 4)
	if len(res.StatusTabs) > 0 {
		labels := make([]string, len(res.StatusTabs))
		for i, tab := range res.StatusTabs {
			labels[i] = tab.Label
		}
		lines = append(lines, ui.StatusTabs(labels, m.list.ActiveTab()))
	}
	lines = append(lines, m.search.View())
	if filters := filterLine(res, m.list.Body()); filters != "" {
		lines = append(lines, mutedStyle.Render(filters))
	}

	st := m.list.State()
	kind := m.list.Branch()
	if kind == ui.KindError {
		lines = append(lines, ui.ErrorPage(st.Err.Status, st.Err.Message))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	body := m.list.Body()
	lines = append(lines, ui.Branch(kind, m.spinner.View(), func() string {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.table.View(),
			ui.Pagination(body.Page(), st.Data.TotalDoc, body.Limit),
		)
	}))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// filterLine shows the category and year filters the resource offers.
func filterLine(res registry.Resource, body search.Body) string {
	var parts []string
	if len(res.Categories) > 0 {
		parts = append(parts, "category: "+filterValue(body.Category))
	}
	if res.YearFilter {
		parts = append(parts, "year: "+filterValue(body.Year))
	}
	return strings.Join(parts, "  ")
}

func filterValue(v *int) string {
	if v == nil {
		return "all"
	}
	return strconv.Itoa(*v)
}

func (m *Model) modalView() string {
	content := ui.Branch(m.modal.Branch(), m.spinner.View(), func() string {
		return fieldsView(m.modalRes, m.modal.State().Data)
	})
	return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.modalRes.Title),
		content,
		mutedStyle.Render("esc close · o open"),
	))
}

func (m *Model) detailView() string {
	if m.detail == nil {
		return ""
	}
	res := m.detail.Resource()
	st := m.detail.State()
	kind := m.detail.Branch()
	if kind == ui.KindError {
		return ui.ErrorPage(st.Err.Status, st.Err.Message)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("%s · %s", res.Title, m.detail.ID())),
		"",
		ui.Branch(kind, m.spinner.View(), func() string {
			return fieldsView(res, st.Data)
		}),
		"",
		mutedStyle.Render("esc back · r refresh"),
	)
}

func (m *Model) maintenanceView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Identifier Services"),
		"",
		"The service is under maintenance. Please try again later.",
		"",
		mutedStyle.Render("q quit"),
	)
}

// fieldsView lists a record as "label  value" lines in column order.
func fieldsView(res registry.Resource, raw json.RawMessage) string {
	row := res.Row(raw)
	lines := make([]string, len(res.Columns))
	for i, col := range res.Columns {
		lines[i] = labelStyle.Render(col.Label) + row.Cells[i]
	}
	return strings.Join(lines, "\n")
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
