package search

import "sync"

// Reducer owns the search body of one list view. Every operation replaces
// whole fields and returns the new body.
type Reducer struct {
	mu   sync.Mutex
	body Body
}

// NewReducer seeds a reducer from navigation-carried state when present,
// falling back to the view's defaults. A carried body with a broken
// pagination invariant is normalized to the start of its page.
func NewReducer(carried *Body, defaults Body) *Reducer {
	body := defaults.Clone()
	if carried != nil {
		body = carried.Clone()
	}
	if body.Limit <= 0 {
		body.Limit = defaults.Limit
	}
	if body.Limit <= 0 {
		body.Limit = DefaultLimit
	}
	if body.Offset < 0 {
		body.Offset = 0
	}
	body.Offset -= body.Offset % body.Limit

	return &Reducer{body: body}
}

// Body returns a copy of the current body.
func (r *Reducer) Body() Body {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Clone()
}

// Page returns the current zero-based page index.
func (r *Reducer) Page() int {
	return r.Body().Page()
}

// Dispatch merges u into the body.
func (r *Reducer) Dispatch(u Update) Body {
	return r.dispatch(func(Body) Update { return u })
}

// dispatch builds the update from the current body under the lock.
func (r *Reducer) dispatch(build func(Body) Update) Body {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.body = Apply(r.body, build(r.body))
	return r.body.Clone()
}

// UpdateSearchText sets the search text and returns to the first page.
func (r *Reducer) UpdateSearchText(text string) Body {
	return r.Dispatch(Update{SearchText: &text, Offset: intPtr(0)})
}

// UpdatePageNumber moves to the zero-based page.
func (r *Reducer) UpdatePageNumber(page int) Body {
	if page < 0 {
		page = 0
	}
	return r.dispatch(func(cur Body) Update {
		return Update{Offset: intPtr(page * cur.Limit)}
	})
}

// UpdateRowsPerPage changes the page size and returns to the first page, so
// the offset can never point past the new page grid.
func (r *Reducer) UpdateRowsPerPage(n int) Body {
	if n <= 0 {
		n = DefaultLimit
	}
	return r.Dispatch(Update{Limit: intPtr(n), Offset: intPtr(0)})
}

// UpdateStatusFilter sets the status filter; "all" or "" removes it from the
// body. The page is reset.
func (r *Reducer) UpdateStatusFilter(value string) Body {
	u := Update{Offset: intPtr(0)}
	if value == "" || value == FilterAll {
		u.Status = Clear[string]()
	} else {
		u.Status = Set(value)
	}
	return r.Dispatch(u)
}

// UpdateCategoryFilter sets or (nil) clears the category filter.
func (r *Reducer) UpdateCategoryFilter(category *int) Body {
	u := Update{Offset: intPtr(0), Category: Clear[int]()}
	if category != nil {
		u.Category = Set(*category)
	}
	return r.Dispatch(u)
}

// UpdateYearFilter sets or (nil) clears the year filter.
func (r *Reducer) UpdateYearFilter(year *int) Body {
	u := Update{Offset: intPtr(0), Year: Clear[int]()}
	if year != nil {
		u.Year = Set(*year)
	}
	return r.Dispatch(u)
}
