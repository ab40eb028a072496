// Package search holds the search/pagination state every list view owns:
// a typed search body, typed partial updates and the reducer operations the
// views expose (search text, page, rows per page, filters).
package search

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultLimit is the page size a list view starts with.
const DefaultLimit = 10

// FilterAll is the tab value meaning "no filter".
const FilterAll = "all"

// RowsPerPageOptions are the page sizes offered by table footers.
var RowsPerPageOptions = []int{5, 10, 25, 50}

// Body is the payload sent to query endpoints. Optional filters are omitted
// from the JSON when unset.
type Body struct {
	SearchText string  `json:"searchText"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
	Status     *string `json:"status,omitempty"`
	Category   *int    `json:"category,omitempty"`
	Year       *int    `json:"year,omitempty"`
}

// DefaultBody returns the body a list view starts from.
func DefaultBody() Body {
	return Body{Limit: DefaultLimit}
}

// Validate checks the pagination invariant: offset is a non-negative
// multiple of a positive limit.
func (b Body) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Limit, validation.Required, validation.Min(1)),
		validation.Field(&b.Offset,
			validation.Min(0),
			validation.By(func(interface{}) error {
				if b.Limit > 0 && b.Offset%b.Limit != 0 {
					return validation.NewError("validation_offset_page", "offset must be a multiple of limit")
				}
				return nil
			}),
		),
	)
}

// Page returns the zero-based page index.
func (b Body) Page() int {
	if b.Limit <= 0 {
		return 0
	}
	return b.Offset / b.Limit
}

// Clone returns a deep copy; filter pointers are not shared.
func (b Body) Clone() Body {
	out := b
	if b.Status != nil {
		v := *b.Status
		out.Status = &v
	}
	if b.Category != nil {
		v := *b.Category
		out.Category = &v
	}
	if b.Year != nil {
		v := *b.Year
		out.Year = &v
	}
	return out
}
