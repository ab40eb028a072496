// Package registry describes the registry resources the console can browse:
// where they are queried, how a record is fetched and which fields are shown.
// Records stay opaque JSON; cells are extracted with gjson paths.
package registry

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"idservices-admin/internal/appstate"
	"idservices-admin/internal/search"
)

// Column projects one field of a record into a table cell.
type Column struct {
	ID    string
	Label string
	// Path is a gjson path, e.g. "name" or "publisher.officialName".
	Path string
	// Format overrides the default string rendering.
	Format func(gjson.Result) string
}

// StatusTab is one status filter shown above a list.
type StatusTab struct {
	Label string
	// Value is sent as the status filter; search.FilterAll clears it.
	Value string
}

// Row is a record projected through a resource's columns.
type Row struct {
	ID    string
	Cells []string
	Raw   json.RawMessage
}

// Resource is one browsable collection of the registry API.
type Resource struct {
	Name        string
	Title       string
	Service     appstate.ServiceType
	Route       string
	QueryPath   string
	ItemPath    string
	Columns     []Column
	StatusTabs  []StatusTab
	// Categories are the category filter values offered, in cycling order.
	Categories  []int
	// YearFilter offers a year filter over the last YearFilterSpan years.
	YearFilter  bool
	DefaultBody search.Body
	// ReadOnly resources have no delete action.
	ReadOnly bool
}

// YearFilterSpan is how many years back the year filter reaches.
const YearFilterSpan = 5

// ItemURL is the detail endpoint of a record.
func (r Resource) ItemURL(id string) string {
	return strings.TrimSuffix(r.ItemPath, "/") + "/" + url.PathEscape(id)
}

// HeadRows returns the column labels.
func (r Resource) HeadRows() []string {
	out := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		out[i] = c.Label
	}
	return out
}

// Row projects one record.
func (r Resource) Row(rec json.RawMessage) Row {
	parsed := gjson.ParseBytes(rec)
	row := Row{ID: RecordID(rec), Cells: make([]string, len(r.Columns)), Raw: rec}
	for i, c := range r.Columns {
		v := parsed.Get(c.Path)
		if c.Format != nil {
			row.Cells[i] = c.Format(v)
			continue
		}
		row.Cells[i] = formatDefault(v)
	}
	return row
}

// Rows projects a page of records.
func (r Resource) Rows(recs []json.RawMessage) []Row {
	out := make([]Row, 0, len(recs))
	for _, rec := range recs {
		out = append(out, r.Row(rec))
	}
	return out
}

// RecordID returns the "id" field of a record as a string.
func RecordID(rec json.RawMessage) string {
	return gjson.GetBytes(rec, "id").String()
}

// Field reads a single gjson path from a record.
func Field(rec json.RawMessage, path string) string {
	return formatDefault(gjson.GetBytes(rec, path))
}

func formatDefault(v gjson.Result) string {
	switch {
	case !v.Exists() || v.Type == gjson.Null:
		return ""
	case v.IsArray():
		parts := make([]string, 0)
		v.ForEach(func(_, item gjson.Result) bool {
			parts = append(parts, formatDefault(item))
			return true
		})
		return strings.Join(parts, ", ")
	case v.Type == gjson.True:
		return "yes"
	case v.Type == gjson.False:
		return "no"
	default:
		return v.String()
	}
}

// FormatDate renders an ISO timestamp as its date part.
func FormatDate(v gjson.Result) string {
	s := v.String()
	if i := strings.IndexByte(s, 'T'); i > 0 {
		return s[:i]
	}
	return s
}
