package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DateLayout is the date format of export ranges.
const DateLayout = "2006-01-02"

// ReportType is a statistics report offered by the registry API.
type ReportType string

const (
	ReportMonthly          ReportType = "MONTHLY"
	ReportProgressISBN     ReportType = "PROGRESS_ISBN"
	ReportProgressISMN     ReportType = "PROGRESS_ISMN"
	ReportPublishersISBN   ReportType = "PUBLISHERS_ISBN"
	ReportPublishersISMN   ReportType = "PUBLISHERS_ISMN"
	ReportISSNPublications ReportType = "ISSN_PUBLICATIONS"
	ReportISSNPublishers   ReportType = "ISSN_PUBLISHERS"
	ReportISSNForms        ReportType = "ISSN_FORMS"
)

var reportRegistry = map[ReportType]string{
	ReportMonthly:          "isbn-registry",
	ReportProgressISBN:     "isbn-registry",
	ReportProgressISMN:     "isbn-registry",
	ReportPublishersISBN:   "isbn-registry",
	ReportPublishersISMN:   "isbn-registry",
	ReportISSNPublications: "issn-registry",
	ReportISSNPublishers:   "issn-registry",
	ReportISSNForms:        "issn-registry",
}

// Registry is the registry API namespace serving the report.
func (t ReportType) Registry() string {
	return reportRegistry[t]
}

func (t ReportType) Valid() bool {
	_, ok := reportRegistry[t]
	return ok
}

// ReportTypes lists all report types.
func ReportTypes() []ReportType {
	return []ReportType{
		ReportMonthly, ReportProgressISBN, ReportProgressISMN, ReportPublishersISBN,
		ReportPublishersISMN, ReportISSNPublications, ReportISSNPublishers, ReportISSNForms,
	}
}

// Format of the exported file.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Status of an export.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Terminal reports whether the export will not change any more.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Export is the status record of one export.
type Export struct {
	ID          string     `json:"id"`
	Type        ReportType `json:"type"`
	BeginDate   string     `json:"beginDate"`
	EndDate     string     `json:"endDate"`
	Format      Format     `json:"format"`
	Status      Status     `json:"status"`
	Rows        int        `json:"rows"`
	ObjectKey   string     `json:"objectKey,omitempty"`
	URL         string     `json:"url,omitempty"`
	Error       string     `json:"error,omitempty"`
	RequestedBy string     `json:"requestedBy,omitempty"`
	Scheduled   bool       `json:"scheduled,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ReportQuery is what the registry API is asked for.
type ReportQuery struct {
	Type  ReportType
	Begin string
	End   string
}

// Report is a fetched statistics table.
type Report struct {
	Title   string
	Headers []string
	Rows    [][]interface{}
}

// ExportPayload is the asynq task payload of TypeStatisticsExport.
type ExportPayload struct {
	ExportID string `json:"exportId"`
}

// ScheduledExportPayload is the payload of the monthly export task.
type ScheduledExportPayload struct {
	Type   ReportType `json:"type"`
	Format Format     `json:"format"`
}

// CleanupExportsPayload is the payload of the daily retention task.
type CleanupExportsPayload struct {
	RetentionHours int `json:"retentionHours"`
}

// ============================================
// DTO
// ============================================

// CreateExportRequest is the body of POST /api/v1/exports/statistics.
type CreateExportRequest struct {
	Type      ReportType `json:"type"`
	BeginDate string     `json:"beginDate"`
	EndDate   string     `json:"endDate"`
	Format    Format     `json:"format"`
}

// Normalize fills defaults.
func (r *CreateExportRequest) Normalize() {
	if r.Format == "" {
		r.Format = FormatXLSX
	}
}

func (r CreateExportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type,
			validation.Required,
			validation.By(func(value interface{}) error {
				if !value.(ReportType).Valid() {
					return errors.New("unknown report type")
				}
				return nil
			}),
		),
		validation.Field(&r.BeginDate, validation.Required, validation.Date(DateLayout)),
		validation.Field(&r.EndDate,
			validation.Required,
			validation.Date(DateLayout),
			validation.By(func(value interface{}) error {
				begin, err1 := time.Parse(DateLayout, r.BeginDate)
				end, err2 := time.Parse(DateLayout, value.(string))
				if err1 == nil && err2 == nil && end.Before(begin) {
					return errors.New("must not be before beginDate")
				}
				return nil
			}),
		),
		validation.Field(&r.Format, validation.In(FormatXLSX, FormatCSV)),
	)
}

// CreateExportResponse is returned with 202 Accepted.
type CreateExportResponse struct {
	ExportID string `json:"exportId"`
	Status   Status `json:"status"`
}

// PreviousMonth returns the first and last day of the month before now.
func PreviousMonth(now time.Time) (string, string) {
	firstOfThis := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	begin := firstOfThis.AddDate(0, -1, 0)
	end := firstOfThis.AddDate(0, 0, -1)
	return begin.Format(DateLayout), end.Format(DateLayout)
}
