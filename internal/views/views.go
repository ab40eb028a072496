// Package views binds fetch controllers, search reducers and the resource
// catalogue into the view models the console renders: lists, record
// details and modal content. Every operation that changes a view's query
// re-syncs its controller and returns the started job, if any.
package views

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"idservices-admin/internal/appstate"
	"idservices-admin/internal/fetch"
	"idservices-admin/internal/registry"
	"idservices-admin/internal/search"
	"idservices-admin/internal/ui"
)

// Deps are the collaborators shared by all views.
type Deps struct {
	Caller fetch.Caller
	Tokens fetch.TokenSource
	State  *appstate.Store
}

// Records is the envelope of a query endpoint with opaque records.
type Records = fetch.SearchResult[json.RawMessage]

// ====================================
// LIST
// ====================================

// ListView is a paginated, searchable list of one resource.
type ListView struct {
	resource registry.Resource
	reducer  *search.Reducer
	ctrl     *fetch.Controller[Records]
}

// NewListView seeds the search body from carried (e.g. when returning from a
// detail view) or the resource default.
func NewListView(deps Deps, r registry.Resource, carried *search.Body) *ListView {
	return &ListView{
		resource: r,
		reducer:  search.NewReducer(carried, r.DefaultBody),
		ctrl:     fetch.NewSearch[json.RawMessage](deps.Caller, deps.Tokens, fetch.DefaultOptions()),
	}
}

func (v *ListView) Resource() registry.Resource { return v.resource }

func (v *ListView) Body() search.Body { return v.reducer.Body() }

// Refresh re-evaluates the current query, e.g. on mount or after sign-in.
func (v *ListView) Refresh(ctx context.Context) *fetch.Job {
	return v.ctrl.Sync(ctx, fetch.Query{
		URL:    v.resource.QueryPath,
		Method: "POST",
		Body:   v.reducer.Body(),
	})
}

func (v *ListView) SetSearchText(ctx context.Context, text string) *fetch.Job {
	v.reducer.UpdateSearchText(text)
	return v.Refresh(ctx)
}

func (v *ListView) SetPage(ctx context.Context, page int) *fetch.Job {
	v.reducer.UpdatePageNumber(page)
	return v.Refresh(ctx)
}

func (v *ListView) SetRowsPerPage(ctx context.Context, n int) *fetch.Job {
	v.reducer.UpdateRowsPerPage(n)
	return v.Refresh(ctx)
}

// SetStatus applies a status tab; search.FilterAll clears the filter.
func (v *ListView) SetStatus(ctx context.Context, status string) *fetch.Job {
	v.reducer.UpdateStatusFilter(status)
	return v.Refresh(ctx)
}

// SetCategory applies a category filter; nil clears it.
func (v *ListView) SetCategory(ctx context.Context, category *int) *fetch.Job {
	v.reducer.UpdateCategoryFilter(category)
	return v.Refresh(ctx)
}

// SetYear applies a year filter; nil clears it.
func (v *ListView) SetYear(ctx context.Context, year *int) *fetch.Job {
	v.reducer.UpdateYearFilter(year)
	return v.Refresh(ctx)
}

// NextCategory cycles the category filter through the resource's
// categories and back to none.
func (v *ListView) NextCategory(ctx context.Context) *fetch.Job {
	cats := v.resource.Categories
	if len(cats) == 0 {
		return nil
	}
	return v.SetCategory(ctx, nextFilter(v.reducer.Body().Category, cats))
}

// NextYear cycles the year filter from the current year back
// registry.YearFilterSpan years and then to none.
func (v *ListView) NextYear(ctx context.Context, now time.Time) *fetch.Job {
	if !v.resource.YearFilter {
		return nil
	}
	years := make([]int, registry.YearFilterSpan)
	for i := range years {
		years[i] = now.Year() - i
	}
	return v.SetYear(ctx, nextFilter(v.reducer.Body().Year, years))
}

func nextFilter(current *int, values []int) *int {
	if current == nil {
		return &values[0]
	}
	for i, v := range values {
		if v == *current && i+1 < len(values) {
			return &values[i+1]
		}
	}
	return nil
}

// ActiveTab is the index of the status tab matching the current filter.
func (v *ListView) ActiveTab() int {
	body := v.reducer.Body()
	for i, tab := range v.resource.StatusTabs {
		if body.Status == nil && tab.Value == search.FilterAll {
			return i
		}
		if body.Status != nil && *body.Status == tab.Value {
			return i
		}
	}
	return -1
}

// NextPage moves forward unless already on the last page.
func (v *ListView) NextPage(ctx context.Context) *fetch.Job {
	body := v.reducer.Body()
	if body.Page()+1 >= ui.PageCount(v.State().Data.TotalDoc, body.Limit) {
		return nil
	}
	return v.SetPage(ctx, body.Page()+1)
}

// PrevPage moves back unless already on the first page.
func (v *ListView) PrevPage(ctx context.Context) *fetch.Job {
	page := v.reducer.Body().Page()
	if page == 0 {
		return nil
	}
	return v.SetPage(ctx, page-1)
}

func (v *ListView) State() fetch.State[Records] { return v.ctrl.State() }

func (v *ListView) Subscribe(fn func(fetch.State[Records])) func() {
	return v.ctrl.Subscribe(fn)
}

// Rows projects the current page through the resource's columns.
func (v *ListView) Rows() []registry.Row {
	return v.resource.Rows(v.ctrl.State().Data.Results)
}

// Branch picks what the list renders.
func (v *ListView) Branch() ui.Kind {
	s := v.ctrl.State()
	return ui.Choose(s.HasError(), s.Loading, len(s.Data.Results) > 0)
}

func (v *ListView) Close() { v.ctrl.Close() }

// ====================================
// DETAIL
// ====================================

// DetailView shows one record of a resource.
type DetailView struct {
	resource registry.Resource
	id       string
	ctrl     *fetch.Controller[json.RawMessage]
	// carried is the list body to restore when navigating back.
	carried search.Body
}

func NewDetailView(deps Deps, r registry.Resource, id string, carried search.Body) *DetailView {
	return &DetailView{
		resource: r,
		id:       id,
		carried:  carried.Clone(),
		ctrl:     fetch.NewItem[json.RawMessage](deps.Caller, deps.Tokens, fetch.DefaultOptions()),
	}
}

func (v *DetailView) Resource() registry.Resource { return v.resource }

func (v *DetailView) ID() string { return v.id }

// Carried is the list search body this detail was opened from.
func (v *DetailView) Carried() search.Body { return v.carried.Clone() }

func (v *DetailView) Refresh(ctx context.Context) *fetch.Job {
	return v.ctrl.Sync(ctx, fetch.Query{URL: v.resource.ItemURL(v.id), Method: "GET"})
}

func (v *DetailView) State() fetch.State[json.RawMessage] { return v.ctrl.State() }

func (v *DetailView) Field(path string) string {
	return registry.Field(v.ctrl.State().Data, path)
}

func (v *DetailView) Branch() ui.Kind {
	s := v.ctrl.State()
	return ui.Choose(s.HasError(), s.Loading, hasRecord(s.Data))
}

func (v *DetailView) Close() { v.ctrl.Close() }

// ====================================
// MODAL
// ====================================

// ModalView backs content shown in a modal. Nothing is fetched before the
// first open; closing keeps the fetched record; reopening fetches again.
type ModalView struct {
	ctrl *fetch.Controller[json.RawMessage]

	mu   sync.Mutex
	url  string
	open bool
}

// NewModalView mounts the modal closed.
func NewModalView(ctx context.Context, deps Deps, url string) *ModalView {
	m := &ModalView{
		url:  url,
		ctrl: fetch.NewItem[json.RawMessage](deps.Caller, deps.Tokens, fetch.ModalOptions()),
	}
	m.Refresh(ctx)
	return m
}

func (m *ModalView) query() fetch.Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fetch.Query{URL: m.url, Method: "GET", ModalOpen: m.open}
}

// Refresh re-evaluates the modal's query with its current open state.
func (m *ModalView) Refresh(ctx context.Context) *fetch.Job {
	return m.ctrl.Sync(ctx, m.query())
}

func (m *ModalView) Open(ctx context.Context) *fetch.Job {
	m.mu.Lock()
	m.open = true
	m.mu.Unlock()
	return m.Refresh(ctx)
}

func (m *ModalView) Close(ctx context.Context) *fetch.Job {
	m.mu.Lock()
	m.open = false
	m.mu.Unlock()
	return m.Refresh(ctx)
}

// Show points the modal at url and opens it with a single evaluation.
func (m *ModalView) Show(ctx context.Context, url string) *fetch.Job {
	m.mu.Lock()
	m.url = url
	m.open = true
	m.mu.Unlock()
	return m.Refresh(ctx)
}

// SetURL points the modal at another record.
func (m *ModalView) SetURL(ctx context.Context, url string) *fetch.Job {
	m.mu.Lock()
	m.url = url
	m.mu.Unlock()
	return m.Refresh(ctx)
}

func (m *ModalView) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

func (m *ModalView) State() fetch.State[json.RawMessage] { return m.ctrl.State() }

func (m *ModalView) Field(path string) string {
	return registry.Field(m.ctrl.State().Data, path)
}

func (m *ModalView) Branch() ui.Kind {
	s := m.ctrl.State()
	return ui.Choose(s.HasError(), s.Loading, hasRecord(s.Data))
}

func (m *ModalView) Unmount() { m.ctrl.Close() }

func hasRecord(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) && !bytes.Equal(trimmed, []byte("{}"))
}
