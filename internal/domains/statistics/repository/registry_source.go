package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"idservices-admin/internal/domains/statistics/model"
	"idservices-admin/internal/infrastructure/apiclient"
)

// StatisticsSource loads report tables.
type StatisticsSource interface {
	Fetch(ctx context.Context, q model.ReportQuery) (*model.Report, error)
}

// Caller performs one classified call to the registry API.
type Caller interface {
	Call(ctx context.Context, r apiclient.Request, dst any) error
}

// RegistrySource reads statistics from the registry API with a service token.
type RegistrySource struct {
	caller Caller
	token  string
}

func NewRegistrySource(caller Caller, token string) *RegistrySource {
	return &RegistrySource{caller: caller, token: token}
}

type statisticsRequest struct {
	Type  model.ReportType `json:"type"`
	Begin string           `json:"begin"`
	End   string           `json:"end"`
}

// Fetch posts the query to /api/<registry>/statistics. The answer is an array
// of flat objects (optionally inside {"results": [...]}); column order
// follows the first record.
func (s *RegistrySource) Fetch(ctx context.Context, q model.ReportQuery) (*model.Report, error) {
	var raw json.RawMessage
	err := s.caller.Call(ctx, apiclient.Request{
		URL:    fmt.Sprintf("/api/%s/statistics", q.Type.Registry()),
		Method: http.MethodPost,
		Body:   statisticsRequest{Type: q.Type, Begin: q.Begin, End: q.End},
		Token:  s.token,
	}, &raw)
	if err != nil {
		return nil, err
	}

	report, err := ParseReport(raw)
	if err != nil {
		return nil, err
	}
	report.Title = fmt.Sprintf("%s %s - %s", q.Type, q.Begin, q.End)
	return report, nil
}

// ParseReport turns a JSON array of flat records into a table.
func ParseReport(raw []byte) (*model.Report, error) {
	doc := gjson.ParseBytes(raw)
	if doc.IsObject() && doc.Get("results").IsArray() {
		doc = doc.Get("results")
	}
	if !doc.IsArray() {
		return nil, fmt.Errorf("statistics response is not a list")
	}

	report := &model.Report{Headers: []string{}, Rows: [][]interface{}{}}
	index := map[string]int{}

	doc.ForEach(func(_, record gjson.Result) bool {
		row := make([]interface{}, len(report.Headers))
		record.ForEach(func(key, value gjson.Result) bool {
			col, ok := index[key.String()]
			if !ok {
				col = len(report.Headers)
				index[key.String()] = col
				report.Headers = append(report.Headers, key.String())
				row = append(row, nil)
			}
			row[col] = cellValue(value)
			return true
		})
		report.Rows = append(report.Rows, row)
		return true
	})

	// Records seen before a late column was discovered are padded.
	for i, row := range report.Rows {
		for len(row) < len(report.Headers) {
			row = append(row, nil)
		}
		report.Rows[i] = row
	}
	return report, nil
}

func cellValue(v gjson.Result) interface{} {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.Number:
		if v.Num == float64(v.Int()) {
			return v.Int()
		}
		return v.Num
	case gjson.True, gjson.False:
		return v.Bool()
	case gjson.JSON:
		return v.Raw
	default:
		return v.String()
	}
}
