package fetch

// SearchResult is the paginated envelope returned by query endpoints.
type SearchResult[R any] struct {
	Results  []R `json:"results"`
	TotalDoc int `json:"totalDoc"`
}

// NewItem creates a controller for a single object. Its default data is the
// zero value of T.
func NewItem[T any](caller Caller, tokens TokenSource, opts Options) *Controller[T] {
	return newController(caller, tokens, opts, func() T {
		var zero T
		return zero
	})
}

// NewList creates a controller for a JSON array, defaulting to an empty list.
func NewList[R any](caller Caller, tokens TokenSource, opts Options) *Controller[[]R] {
	return newController(caller, tokens, opts, func() []R {
		return []R{}
	})
}

// NewSearch creates a controller for a paginated query, defaulting to an
// empty envelope.
func NewSearch[R any](caller Caller, tokens TokenSource, opts Options) *Controller[SearchResult[R]] {
	return newController(caller, tokens, opts, func() SearchResult[R] {
		return SearchResult[R]{Results: []R{}}
	})
}
