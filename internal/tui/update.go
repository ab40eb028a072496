package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"idservices-admin/internal/appstate"
	"idservices-admin/internal/search"
	"idservices-admin/internal/views"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case jobDoneMsg:
		if msg.target == targetList {
			m.syncRows()
		}
		return m, nil

	case mutationDoneMsg:
		cmds := []tea.Cmd{m.snackbarCmd()}
		if msg.err == nil && m.list != nil {
			cmds = append(cmds, waitJob(m.list.Refresh(m.ctx), targetList))
		}
		return m, tea.Batch(cmds...)

	case snackbarExpiredMsg:
		m.deps.State.DismissSnackbar(msg.id)
		return m, nil

	case tokenReloadedMsg:
		if msg.err != nil {
			log.Warn().Err(msg.err).Msg("token reload failed")
			return m, m.notify(appstate.SeverityError, "Could not read token file")
		}
		return m, m.notify(appstate.SeverityInfo, "Token reloaded")

	case tokenChangedMsg:
		if msg.available {
			return m, tea.Batch(m.resync(), m.listen())
		}
		return m, m.listen()

	case stateChangedMsg:
		return m, tea.Batch(m.snackbarCmd(), m.listen())

	case listChangedMsg:
		m.syncRows()
		return m, m.listen()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// resync re-evaluates every mounted view, e.g. after a new token arrived.
func (m *Model) resync() tea.Cmd {
	var cmds []tea.Cmd
	if m.list != nil {
		cmds = append(cmds, waitJob(m.list.Refresh(m.ctx), targetList))
	}
	if m.detail != nil {
		cmds = append(cmds, waitJob(m.detail.Refresh(m.ctx), targetDetail))
	}
	if m.modal != nil {
		cmds = append(cmds, waitJob(m.modal.Refresh(m.ctx), targetModal))
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.closeAll()
		return m, tea.Quit
	}

	switch m.mode {
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeConfirmDelete:
		return m.handleConfirmKey(msg)
	}

	switch m.screen {
	case ScreenMaintenance:
		if key.Matches(msg, m.keys.Quit) {
			m.closeAll()
			return m, tea.Quit
		}
		return m, nil
	case ScreenDetail:
		return m.handleDetailKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.closeAll()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.modal != nil && m.modal.IsOpen() {
			return m, waitJob(m.modal.Close(m.ctx), targetModal)
		}
		return m, nil

	case key.Matches(msg, m.keys.NextResource), key.Matches(msg, m.keys.PrevResource):
		if len(m.resources) == 0 {
			return m, nil
		}
		step := 1
		if key.Matches(msg, m.keys.PrevResource) {
			step = len(m.resources) - 1
		}
		m.resIdx = (m.resIdx + step) % len(m.resources)
		m.modal.Close(m.ctx)
		return m, m.openList(nil)

	case key.Matches(msg, m.keys.ToggleService):
		return m, m.toggleService()
	}

	if m.list == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.NextPage):
		return m, waitJob(m.list.NextPage(m.ctx), targetList)

	case key.Matches(msg, m.keys.PrevPage):
		return m, waitJob(m.list.PrevPage(m.ctx), targetList)

	case key.Matches(msg, m.keys.Refresh):
		return m, waitJob(m.list.Refresh(m.ctx), targetList)

	case key.Matches(msg, m.keys.ReloadToken):
		if m.tokenFile == "" {
			return m, m.notify(appstate.SeverityInfo, "No token file configured")
		}
		return m, m.reloadTokenCmd()

	case key.Matches(msg, m.keys.Search):
		m.mode = ModeSearch
		m.table.Blur()
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Filter):
		tabs := m.list.Resource().StatusTabs
		if len(tabs) == 0 {
			return m, nil
		}
		next := tabs[(m.list.ActiveTab()+1)%len(tabs)]
		return m, waitJob(m.list.SetStatus(m.ctx, next.Value), targetList)

	case key.Matches(msg, m.keys.Category):
		return m, waitJob(m.list.NextCategory(m.ctx), targetList)

	case key.Matches(msg, m.keys.Year):
		return m, waitJob(m.list.NextYear(m.ctx, m.now()), targetList)

	case key.Matches(msg, m.keys.RowsPerPage):
		return m, waitJob(m.list.SetRowsPerPage(m.ctx, nextRowsPerPage(m.list.Body().Limit)), targetList)

	case key.Matches(msg, m.keys.Preview):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		m.modalRes = m.list.Resource()
		return m, waitJob(m.modal.Show(m.ctx, m.modalRes.ItemURL(row.ID)), targetModal)

	case key.Matches(msg, m.keys.Open):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		return m, m.openDetail(row.ID)

	case key.Matches(msg, m.keys.Delete):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		if m.list.Resource().ReadOnly {
			return m, m.notify(appstate.SeverityInfo, m.list.Resource().Title+" are read-only")
		}
		m.mode = ModeConfirmDelete
		m.confirmID = row.ID
		return m, nil
	}

	before := m.table.Cursor()
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if m.table.Cursor() == before || !m.modal.IsOpen() {
		return m, cmd
	}
	// an open preview follows the selection
	row, ok := m.selectedRow()
	if !ok {
		return m, cmd
	}
	return m, tea.Batch(cmd, waitJob(m.modal.SetURL(m.ctx, m.modalRes.ItemURL(row.ID)), targetModal))
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = ModeNav
		m.search.Blur()
		m.table.Focus()
		return m, waitJob(m.list.SetSearchText(m.ctx, m.search.Value()), targetList)
	case tea.KeyEsc:
		m.mode = ModeNav
		m.search.Blur()
		m.table.Focus()
		m.search.SetValue(m.list.Body().SearchText)
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.confirmID
	m.mode = ModeNav
	m.confirmID = ""
	if msg.String() != "y" || m.list == nil {
		return m, nil
	}
	return m, m.deleteCmd(m.list.Resource().ItemURL(id))
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.closeAll()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		return m, m.closeDetail()
	case key.Matches(msg, m.keys.Refresh):
		return m, waitJob(m.detail.Refresh(m.ctx), targetDetail)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// openDetail leaves the list for a record; the list's search body is
// carried so that going back restores it.
func (m *Model) openDetail(id string) tea.Cmd {
	res := m.list.Resource()
	m.detail = views.NewDetailView(m.deps, res, id, m.list.Body())
	m.closeList()
	m.modal.Close(m.ctx)
	m.screen = ScreenDetail
	return waitJob(m.detail.Refresh(m.ctx), targetDetail)
}

func (m *Model) closeDetail() tea.Cmd {
	carried := m.detail.Carried()
	m.detail.Close()
	m.detail = nil
	m.screen = ScreenList
	return m.openList(&carried)
}

func (m *Model) toggleService() tea.Cmd {
	next := appstate.ServiceISSN
	if m.deps.State.State().TypeOfService == appstate.ServiceISSN {
		next = appstate.ServiceISBN
	}

	var cmds []tea.Cmd
	if err := m.deps.State.SetTypeOfService(m.ctx, next); err != nil {
		log.Warn().Err(err).Msg("type of service not persisted")
		cmds = append(cmds, m.notify(appstate.SeverityError, "Could not save registry selection"))
	}

	m.modal.Close(m.ctx)
	m.selectResources("")
	cmds = append(cmds, m.openList(nil))
	return tea.Batch(cmds...)
}

func nextRowsPerPage(current int) int {
	for i, n := range search.RowsPerPageOptions {
		if n == current {
			return search.RowsPerPageOptions[(i+1)%len(search.RowsPerPageOptions)]
		}
	}
	return search.DefaultLimit
}
