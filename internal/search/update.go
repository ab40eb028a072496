package search

// Optional is a filter field in a partial update: left alone, set to a
// value, or cleared.
type Optional[T any] struct {
	set   bool
	clear bool
	value T
}

// Set returns an Optional that assigns v.
func Set[T any](v T) Optional[T] {
	return Optional[T]{set: true, value: v}
}

// Clear returns an Optional that removes the field.
func Clear[T any]() Optional[T] {
	return Optional[T]{clear: true}
}

func (o Optional[T]) apply(dst **T) {
	switch {
	case o.clear:
		*dst = nil
	case o.set:
		v := o.value
		*dst = &v
	}
}

// Update is a partial update of a Body. Nil scalar pointers and zero
// Optionals leave the field untouched.
type Update struct {
	SearchText *string
	Limit      *int
	Offset     *int
	Status     Optional[string]
	Category   Optional[int]
	Year       Optional[int]
}

// Apply merges u into b and returns the result; b is not modified.
func Apply(b Body, u Update) Body {
	out := b.Clone()
	if u.SearchText != nil {
		out.SearchText = *u.SearchText
	}
	if u.Limit != nil {
		out.Limit = *u.Limit
	}
	if u.Offset != nil {
		out.Offset = *u.Offset
	}
	u.Status.apply(&out.Status)
	u.Category.apply(&out.Category)
	u.Year.apply(&out.Year)
	return out
}

func intPtr(v int) *int {
	return &v
}
