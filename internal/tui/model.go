// Package tui is the interactive console: resource lists with search,
// status filters and pagination, a record preview modal, record detail
// screens and the ISBN/ISSN registry toggle.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"idservices-admin/internal/appstate"
	"idservices-admin/internal/auth"
	"idservices-admin/internal/domains/bootconfig"
	"idservices-admin/internal/fetch"
	"idservices-admin/internal/registry"
	"idservices-admin/internal/search"
	"idservices-admin/internal/views"
)

// Options configure a Model.
type Options struct {
	Deps      views.Deps
	Catalogue *registry.Catalogue
	Session   *auth.Session
	// Boot may be nil when no configuration endpoint is configured.
	Boot *bootconfig.BootConfig
	// StartPath selects the first view, e.g. "/issn-registry/requests".
	StartPath string
	// TokenFile is re-read on ctrl+t.
	TokenFile string
}

// Model is the Bubble Tea model of the console.
type Model struct {
	ctx       context.Context
	cancel    context.CancelFunc
	deps      views.Deps
	catalogue *registry.Catalogue
	session   *auth.Session
	mutations *views.Mutations
	boot      *bootconfig.BootConfig
	tokenFile string

	screen    Screen
	mode      Mode
	resources []registry.Resource
	resIdx    int
	list      *views.ListView
	detail    *views.DetailView
	modal     *views.ModalView
	modalRes  registry.Resource
	confirmID string

	table   table.Model
	search  textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	// events carries changes pushed by subscriptions outside the update loop.
	events    chan tea.Msg
	unsubs    []func()
	unsubList func()
	now       func() time.Time

	// lastSnackbar is the newest snackbar a dismissal timer was started for.
	lastSnackbar uint64
	width        int
	height       int
}

func New(ctx context.Context, opts Options) *Model {
	ctx, cancel := context.WithCancel(ctx)

	input := textinput.New()
	input.Placeholder = "search"
	input.Prompt = "/ "
	input.CharLimit = 200

	m := &Model{
		ctx:       ctx,
		cancel:    cancel,
		deps:      opts.Deps,
		catalogue: opts.Catalogue,
		session:   opts.Session,
		mutations: views.NewMutations(opts.Deps),
		boot:      opts.Boot,
		tokenFile: opts.TokenFile,
		table:     table.New(table.WithFocused(true), table.WithHeight(10)),
		search:    input,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:      help.New(),
		keys:      defaultKeyMap(),
		events:    make(chan tea.Msg, 16),
		now:       time.Now,
	}

	if opts.Boot != nil && opts.Boot.Maintenance {
		m.screen = ScreenMaintenance
		return m
	}

	if opts.Session != nil {
		m.unsubs = append(m.unsubs, opts.Session.Subscribe(func(available bool) {
			m.post(tokenChangedMsg{available: available})
		}))
	}
	m.unsubs = append(m.unsubs, opts.Deps.State.Subscribe(func(appstate.State) {
		m.post(stateChangedMsg{})
	}))

	m.modal = views.NewModalView(ctx, opts.Deps, "")
	m.selectResources(opts.StartPath)
	return m
}

func (m *Model) Init() tea.Cmd {
	if m.screen == ScreenMaintenance {
		return nil
	}
	return tea.Batch(m.spinner.Tick, m.openList(nil), m.listen())
}

// Screen reports the visible screen.
func (m *Model) Screen() Screen { return m.screen }

// Mode reports the interaction mode.
func (m *Model) Mode() Mode { return m.mode }

// Resource is the resource of the active list.
func (m *Model) Resource() (registry.Resource, bool) {
	if len(m.resources) == 0 {
		return registry.Resource{}, false
	}
	return m.resources[m.resIdx], true
}

// List returns the active list view.
func (m *Model) List() *views.ListView { return m.list }

// Detail returns the open detail view, if any.
func (m *Model) Detail() *views.DetailView { return m.detail }

// Modal returns the preview modal.
func (m *Model) Modal() *views.ModalView { return m.modal }

// selectResources loads the resources of the active registry and picks the
// one matching path, if any.
func (m *Model) selectResources(path string) {
	m.resources = m.catalogue.ForService(m.deps.State.State().TypeOfService)
	m.resIdx = 0
	if path == "" {
		return
	}
	if r, ok := m.catalogue.ForRoute(path); ok {
		for i, candidate := range m.resources {
			if candidate.Name == r.Name {
				m.resIdx = i
				return
			}
		}
	}
}

// openList replaces the active list, restoring carried when coming back
// from a detail screen.
func (m *Model) openList(carried *search.Body) tea.Cmd {
	m.closeList()
	res, ok := m.Resource()
	if !ok {
		return nil
	}

	m.list = views.NewListView(m.deps, res, carried)
	m.unsubList = m.list.Subscribe(func(st fetch.State[views.Records]) {
		if !st.Loading {
			m.post(listChangedMsg{})
		}
	})
	m.search.SetValue(m.list.Body().SearchText)
	m.applyColumns()
	m.table.SetCursor(0)
	return waitJob(m.list.Refresh(m.ctx), targetList)
}

func (m *Model) closeList() {
	if m.unsubList != nil {
		m.unsubList()
		m.unsubList = nil
	}
	if m.list != nil {
		m.list.Close()
		m.list = nil
	}
}

func (m *Model) closeAll() {
	m.cancel()
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
	m.closeList()
	if m.detail != nil {
		m.detail.Close()
	}
	if m.modal != nil {
		m.modal.Unmount()
	}
}

// ============================================
// COMMANDS
// ============================================

// post queues a message from a subscriber. Subscribers run on fetch
// goroutines, so a full queue drops the message instead of blocking them.
func (m *Model) post(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
		log.Debug().Msgf("console event dropped: %T", msg)
	}
}

// listen delivers the next subscription message. Handlers of those messages
// re-arm it.
func (m *Model) listen() tea.Cmd {
	events, done := m.events, m.ctx.Done()
	return func() tea.Msg {
		select {
		case msg := <-events:
			return msg
		case <-done:
			return nil
		}
	}
}

// waitJob turns a started fetch into a message delivered when it settles.
func waitJob(job *fetch.Job, t target) tea.Cmd {
	if job == nil {
		return nil
	}
	return func() tea.Msg {
		<-job.Done()
		return jobDoneMsg{target: t}
	}
}

func (m *Model) deleteCmd(url string) tea.Cmd {
	ctx, mutations := m.ctx, m.mutations
	return func() tea.Msg {
		return mutationDoneMsg{err: mutations.Delete(ctx, url, "Record deleted")}
	}
}

func (m *Model) reloadTokenCmd() tea.Cmd {
	path, session := m.tokenFile, m.session
	return func() tea.Msg {
		token, err := auth.LoadTokenFile(path)
		if err != nil {
			return tokenReloadedMsg{err: err}
		}
		session.SetToken(token)
		return tokenReloadedMsg{}
	}
}

// snackbarCmd starts the dismissal timer of a newly shown snackbar.
func (m *Model) snackbarCmd() tea.Cmd {
	snack := m.deps.State.State().Snackbar
	if snack == nil || snack.ID == m.lastSnackbar {
		return nil
	}
	m.lastSnackbar = snack.ID
	id := snack.ID
	return tea.Tick(appstate.SnackbarTimeout, func(time.Time) tea.Msg {
		return snackbarExpiredMsg{id: id}
	})
}

func (m *Model) notify(sev appstate.Severity, text string) tea.Cmd {
	m.deps.State.ShowSnackbar(sev, text)
	return m.snackbarCmd()
}

// ============================================
// TABLE
// ============================================

func (m *Model) applyColumns() {
	if m.list == nil {
		return
	}
	heads := m.list.Resource().HeadRows()
	width := m.width
	if width <= 0 {
		width = 100
	}
	colWidth := 8
	if len(heads) > 0 {
		colWidth = max((width-2*len(heads))/len(heads), 8)
	}

	cols := make([]table.Column, len(heads))
	for i, h := range heads {
		cols[i] = table.Column{Title: h, Width: colWidth}
	}
	// rows must fit the new columns before they are set
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.syncRows()
}

func (m *Model) syncRows() {
	if m.list == nil {
		return
	}
	rows := m.list.Rows()
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		out[i] = table.Row(r.Cells)
	}
	m.table.SetRows(out)
	// SetCursor on an empty table leaves the cursor at -1
	if c := m.table.Cursor(); len(out) > 0 && (c < 0 || c >= len(out)) {
		m.table.SetCursor(min(max(c, 0), len(out)-1))
	}
}

func (m *Model) selectedRow() (registry.Row, bool) {
	if m.list == nil {
		return registry.Row{}, false
	}
	rows := m.list.Rows()
	c := m.table.Cursor()
	if c < 0 || c >= len(rows) {
		return registry.Row{}, false
	}
	return rows[c], true
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	m.table.SetHeight(max(height-16, 3))
	m.applyColumns()
	log.Debug().Int("width", width).Int("height", height).Msg("terminal resized")
}
