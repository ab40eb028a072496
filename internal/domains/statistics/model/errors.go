package model

import (
	"errors"
	"fmt"
	"net/http"
)

// ExportError is the base error of the statistics export domain.
type ExportError struct {
	Code    string // unique error code, e.g. "EXPORT_NOT_FOUND"
	Message string // human-readable message
	Err     error  // underlying error
}

func (e *ExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

const (
	CodeExportNotFound     = "EXPORT_NOT_FOUND"
	CodeInvalidExportID    = "INVALID_EXPORT_ID"
	CodeInvalidRequest     = "INVALID_EXPORT_REQUEST"
	CodeEnqueueFailed      = "EXPORT_ENQUEUE_FAILED"
	CodeStatusStore        = "EXPORT_STATUS_ERROR"
	CodeFetchStatistics    = "FETCH_STATISTICS_ERROR"
	CodeBuildFile          = "BUILD_EXPORT_FILE_ERROR"
	CodeUploadFile         = "UPLOAD_EXPORT_FILE_ERROR"
	CodeStorageUnavailable = "EXPORT_STORAGE_UNAVAILABLE"
)

// ============================================
// ERROR FACTORY FUNCTIONS
// ============================================

func NewExportNotFound(id string) *ExportError {
	return &ExportError{
		Code:    CodeExportNotFound,
		Message: fmt.Sprintf("Export %s not found", id),
	}
}

func NewInvalidExportID(id string) *ExportError {
	return &ExportError{
		Code:    CodeInvalidExportID,
		Message: fmt.Sprintf("Invalid export ID: %s", id),
	}
}

func NewInvalidRequest(err error) *ExportError {
	return &ExportError{
		Code:    CodeInvalidRequest,
		Message: "Invalid export request",
		Err:     err,
	}
}

func NewEnqueueError(err error) *ExportError {
	return &ExportError{
		Code:    CodeEnqueueFailed,
		Message: "Failed to queue export",
		Err:     err,
	}
}

func NewStatusStoreError(err error) *ExportError {
	return &ExportError{
		Code:    CodeStatusStore,
		Message: "Failed to access export status",
		Err:     err,
	}
}

func NewFetchStatisticsError(err error) *ExportError {
	return &ExportError{
		Code:    CodeFetchStatistics,
		Message: "Failed to fetch statistics from the registry",
		Err:     err,
	}
}

func NewBuildFileError(err error) *ExportError {
	return &ExportError{
		Code:    CodeBuildFile,
		Message: "Failed to build export file",
		Err:     err,
	}
}

func NewUploadFileError(err error) *ExportError {
	return &ExportError{
		Code:    CodeUploadFile,
		Message: "Failed to store export file",
		Err:     err,
	}
}

func NewStorageUnavailable(err error) *ExportError {
	return &ExportError{
		Code:    CodeStorageUnavailable,
		Message: "Export storage is unavailable",
		Err:     err,
	}
}

// ============================================
// ERROR CHECKING FUNCTIONS
// ============================================

func hasCode(err error, code string) bool {
	var expErr *ExportError
	return errors.As(err, &expErr) && expErr.Code == code
}

func IsExportNotFound(err error) bool { return hasCode(err, CodeExportNotFound) }

func IsInvalidRequest(err error) bool {
	return hasCode(err, CodeInvalidRequest) || hasCode(err, CodeInvalidExportID)
}

func IsDomainError(err error) bool {
	var expErr *ExportError
	return errors.As(err, &expErr)
}

// GetErrorCode returns the domain code of err.
func GetErrorCode(err error) string {
	var expErr *ExportError
	if errors.As(err, &expErr) {
		return expErr.Code
	}
	return "UNKNOWN_ERROR"
}

// GetErrorMessage returns the user-facing message of err.
func GetErrorMessage(err error) string {
	var expErr *ExportError
	if errors.As(err, &expErr) {
		return expErr.Message
	}
	return err.Error()
}

// MapErrorToHTTP maps a domain error to status, message and code.
func MapErrorToHTTP(err error) (int, string, string) {
	if err == nil {
		return http.StatusOK, "Success", ""
	}

	switch {
	case IsExportNotFound(err):
		return http.StatusNotFound, GetErrorMessage(err), GetErrorCode(err)

	case IsInvalidRequest(err):
		return http.StatusBadRequest, GetErrorMessage(err), GetErrorCode(err)

	case hasCode(err, CodeEnqueueFailed), hasCode(err, CodeStorageUnavailable):
		return http.StatusServiceUnavailable, GetErrorMessage(err), GetErrorCode(err)

	case IsDomainError(err):
		return http.StatusInternalServerError, GetErrorMessage(err), GetErrorCode(err)

	default:
		return http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR"
	}
}
