package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idservices-admin/internal/appstate"
	"idservices-admin/internal/auth"
	"idservices-admin/internal/domains/bootconfig"
	"idservices-admin/internal/infrastructure/apiclient"
	"idservices-admin/internal/registry"
	"idservices-admin/internal/search"
	"idservices-admin/internal/views"
)

type fakeAPI struct {
	mu     sync.Mutex
	calls  []string
	bodies []search.Body
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/isbn-registry/publishers/query", func(w http.ResponseWriter, r *http.Request) {
		var body search.Body
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.record(r, &body)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"id": 1, "officialName": "Kustannus Oy", "activeIdentifierIsbn": "978-952-1"},
				{"id": 2, "officialName": "Toinen Oy", "activeIdentifierIsbn": "978-952-2"},
			},
			"totalDoc": 25,
		})
	})
	mux.HandleFunc("/api/isbn-registry/publishers/1", func(w http.ResponseWriter, r *http.Request) {
		f.record(r, nil)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(`{"id":1,"officialName":"Kustannus Oy","otherNames":["KOY"]}`))
	})
	mux.HandleFunc("/api/isbn-registry/publishers/2", func(w http.ResponseWriter, r *http.Request) {
		f.record(r, nil)
		_, _ = w.Write([]byte(`{"id":2,"officialName":"Toinen Oy","otherNames":["TOY"]}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		f.record(r, nil)
		_, _ = w.Write([]byte(`{"results":[],"totalDoc":0}`))
	})
	return mux
}

func (f *fakeAPI) record(r *http.Request, body *search.Body) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	if body != nil {
		f.bodies = append(f.bodies, *body)
	}
}

func (f *fakeAPI) snapshot() ([]string, []search.Body) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...), append([]search.Body(nil), f.bodies...)
}

func newModel(t *testing.T, token string, boot *bootconfig.BootConfig) (*Model, *fakeAPI, *appstate.MemoryStore) {
	t.Helper()
	m, api, prefs := buildModel(t, token, boot)
	run(m, m.Init())
	return m, api, prefs
}

// buildModel mounts a model without starting it.
func buildModel(t *testing.T, token string, boot *bootconfig.BootConfig) (*Model, *fakeAPI, *appstate.MemoryStore) {
	t.Helper()
	api := &fakeAPI{}
	ts := httptest.NewServer(api.handler())
	t.Cleanup(ts.Close)

	prefs := appstate.NewMemoryStore()
	session := auth.NewSession(token)
	m := New(context.Background(), Options{
		Deps: views.Deps{
			Caller: apiclient.New(apiclient.Config{BaseURL: ts.URL}),
			Tokens: session,
			State:  appstate.NewStore(appstate.State{}, prefs),
		},
		Catalogue: registry.Default(),
		Session:   session,
		Boot:      boot,
	})
	t.Cleanup(m.closeAll)
	return m, api, prefs
}

// openResource switches the model to the named resource of its registry.
func openResource(t *testing.T, m *Model, name string) {
	t.Helper()
	for i, r := range m.resources {
		if r.Name == name {
			m.resIdx = i
			run(m, m.openList(nil))
			return
		}
	}
	t.Fatalf("resource %s not in the active registry", name)
}

// nextEvent waits for a subscription message of type T.
func nextEvent[T tea.Msg](t *testing.T, m *Model) T {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case msg := <-m.events:
			if want, ok := msg.(T); ok {
				return want
			}
		case <-deadline:
			var zero T
			t.Fatalf("no %T event", zero)
			return zero
		}
	}
}

// run executes cmd and feeds resulting messages back into the model until
// nothing is left. Timers longer than the deadline are dropped.
func run(m *Model, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}

		ch := make(chan tea.Msg, 1)
		go func() { ch <- c() }()

		var msg tea.Msg
		select {
		case msg = <-ch:
		case <-time.After(500 * time.Millisecond):
			continue
		}

		switch msg := msg.(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		_, cmd := m.Update(keyMsg(k))
		run(m, cmd)
	}
}

func TestListLoadsFirstPage(t *testing.T) {
	m, api, _ := newModel(t, "token", nil)

	res, ok := m.Resource()
	require.True(t, ok)
	assert.Equal(t, "isbn-publishers", res.Name)

	calls, bodies := api.snapshot()
	assert.Equal(t, []string{"POST /api/isbn-registry/publishers/query"}, calls)
	assert.Equal(t, search.DefaultBody(), bodies[0])

	view := m.View()
	assert.Contains(t, view, "Kustannus Oy")
	assert.Contains(t, view, "1-10 of 25")
}

func TestSelectionAfterLoad(t *testing.T) {
	m, _, _ := newModel(t, "token", nil)

	assert.Equal(t, 0, m.table.Cursor())
	row, ok := m.selectedRow()
	require.True(t, ok)
	assert.Equal(t, "1", row.ID)

	// an empty list in between must not leave the selection behind
	press(m, "t", "t")
	row, ok = m.selectedRow()
	require.True(t, ok)
	assert.Equal(t, "1", row.ID)

	press(m, "enter")
	assert.True(t, m.Modal().IsOpen())
}

func TestPaginationAndRowsPerPage(t *testing.T) {
	m, api, _ := newModel(t, "token", nil)

	press(m, "right")
	_, bodies := api.snapshot()
	assert.Equal(t, 10, bodies[len(bodies)-1].Offset)

	press(m, "n")
	_, bodies = api.snapshot()
	last := bodies[len(bodies)-1]
	assert.Equal(t, 25, last.Limit)
	assert.Equal(t, 0, last.Offset, "page size change goes back to the first page")
}

func TestSearch(t *testing.T) {
	m, api, _ := newModel(t, "token", nil)

	press(m, "/")
	assert.Equal(t, ModeSearch, m.Mode())
	press(m, "q", "enter")

	assert.Equal(t, ModeNav, m.Mode())
	_, bodies := api.snapshot()
	assert.Equal(t, "q", bodies[len(bodies)-1].SearchText)
}

func TestPreviewModal(t *testing.T) {
	m, api, _ := newModel(t, "token", nil)

	press(m, "enter")
	require.True(t, m.Modal().IsOpen())
	assert.Contains(t, m.View(), "KOY")

	press(m, "esc")
	assert.False(t, m.Modal().IsOpen())

	calls, _ := api.snapshot()
	assert.Equal(t, 1, count(calls, "GET /api/isbn-registry/publishers/1"))
}

func TestPreviewFollowsSelection(t *testing.T) {
	m, api, _ := newModel(t, "token", nil)

	press(m, "enter")
	require.Contains(t, m.View(), "KOY")

	press(m, "down")
	require.True(t, m.Modal().IsOpen())
	assert.Contains(t, m.View(), "TOY")

	calls, _ := api.snapshot()
	assert.Equal(t, 1, count(calls, "GET /api/isbn-registry/publishers/2"))
}

func TestMovingWithoutPreviewFetchesNothing(t *testing.T) {
	m, api, _ := newModel(t, "token", nil)

	press(m, "down")
	row, ok := m.selectedRow()
	require.True(t, ok)
	assert.Equal(t, "2", row.ID)

	calls, _ := api.snapshot()
	assert.Zero(t, count(calls, "GET /api/isbn-registry/publishers/2"))
}

func TestCategoryFilter(t *testing.T) {
	m, _, _ := newModel(t, "token", nil)
	openResource(t, m, "isbn-ranges")
	assert.Contains(t, m.View(), "category: all")

	press(m, "c")
	require.NotNil(t, m.List().Body().Category)
	assert.Equal(t, 1, *m.List().Body().Category)
	assert.Contains(t, m.View(), "category: 1")

	press(m, "y")
	assert.Nil(t, m.List().Body().Year, "ranges have no year filter")
}

func TestYearFilter(t *testing.T) {
	m, _, _ := newModel(t, "token", nil)
	m.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	openResource(t, m, "isbn-publisher-requests")

	press(m, "y", "y")
	require.NotNil(t, m.List().Body().Year)
	assert.Equal(t, 2023, *m.List().Body().Year)
	assert.Contains(t, m.View(), "year: 2023")
	assert.NotContains(t, m.View(), "category:")
}

func TestSignInRefetches(t *testing.T) {
	m, api, _ := buildModel(t, "", nil)
	run(m, m.openList(nil))
	calls, _ := api.snapshot()
	require.Empty(t, calls)

	m.session.SetToken("token")
	msg := nextEvent[tokenChangedMsg](t, m)
	assert.True(t, msg.available)

	_, cmd := m.Update(msg)
	run(m, cmd)
	calls, _ = api.snapshot()
	assert.Equal(t, []string{"POST /api/isbn-registry/publishers/query"}, calls)
	assert.Contains(t, m.View(), "Kustannus Oy")
}

func TestSnackbarTimerStartsOnStateChange(t *testing.T) {
	m, _, _ := buildModel(t, "token", nil)

	id := m.deps.State.ShowSnackbar(appstate.SeverityInfo, "saved")
	msg := nextEvent[stateChangedMsg](t, m)
	m.Update(msg)
	assert.Equal(t, id, m.lastSnackbar)
}

func TestDetailKeepsSearchBody(t *testing.T) {
	m, _, _ := newModel(t, "token", nil)

	press(m, "/", "o", "y", "enter")
	press(m, "o")
	require.Equal(t, ScreenDetail, m.Screen())
	assert.Contains(t, m.View(), "Publishers · 1")

	press(m, "esc")
	require.Equal(t, ScreenList, m.Screen())
	assert.Equal(t, "oy", m.List().Body().SearchText)
}

func TestDeleteWithConfirmation(t *testing.T) {
	m, api, _ := newModel(t, "token", nil)

	press(m, "D")
	require.Equal(t, ModeConfirmDelete, m.Mode())
	assert.Contains(t, m.View(), "Delete record 1?")

	press(m, "y")
	calls, _ := api.snapshot()
	assert.Equal(t, 1, count(calls, "DELETE /api/isbn-registry/publishers/1"))
	assert.Contains(t, m.View(), "Record deleted")
	assert.Equal(t, 2, count(calls, "POST /api/isbn-registry/publishers/query"), "list refreshed after delete")
}

func TestDeleteCancelled(t *testing.T) {
	m, api, _ := newModel(t, "token", nil)

	press(m, "D", "x")
	assert.Equal(t, ModeNav, m.Mode())
	calls, _ := api.snapshot()
	assert.Zero(t, count(calls, "DELETE /api/isbn-registry/publishers/1"))
}

func TestToggleService(t *testing.T) {
	m, _, prefs := newModel(t, "token", nil)

	press(m, "t")
	res, ok := m.Resource()
	require.True(t, ok)
	assert.Equal(t, appstate.ServiceISSN, res.Service)
	assert.Contains(t, m.View(), "ISSN registry")

	v, ok, err := prefs.Get(context.Background(), appstate.TypeOfServiceKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "issn", v)
}

func TestNoTokenKeepsLoading(t *testing.T) {
	m, api, _ := newModel(t, "", nil)

	calls, _ := api.snapshot()
	assert.Empty(t, calls)
	assert.True(t, m.List().State().Loading)
	assert.Contains(t, m.View(), "Loading")
	assert.Contains(t, m.View(), "not signed in")
}

func TestMaintenanceScreen(t *testing.T) {
	m, api, _ := newModel(t, "token", &bootconfig.BootConfig{Maintenance: true})

	assert.Equal(t, ScreenMaintenance, m.Screen())
	assert.Contains(t, m.View(), "under maintenance")
	calls, _ := api.snapshot()
	assert.Empty(t, calls)
}

func TestSnackbarExpires(t *testing.T) {
	m, _, _ := newModel(t, "token", nil)

	id := m.deps.State.ShowSnackbar(appstate.SeverityInfo, "hello")
	m.Update(snackbarExpiredMsg{id: id + 1})
	assert.NotNil(t, m.deps.State.State().Snackbar, "timer of another message does not dismiss")

	m.Update(snackbarExpiredMsg{id: id})
	assert.Nil(t, m.deps.State.State().Snackbar)
}

func count(calls []string, want string) int {
	n := 0
	for _, c := range calls {
		if c == want {
			n++
		}
	}
	return n
}
