package handler

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	"idservices-admin/internal/domains/statistics/model"
	"idservices-admin/internal/domains/statistics/service"
	"idservices-admin/internal/shared/middleware"
	"idservices-admin/internal/shared/response"
)

// ExportHandler serves statistics export requests.
type ExportHandler struct {
	service service.ExportService
}

func NewExportHandler(s service.ExportService) *ExportHandler {
	return &ExportHandler{service: s}
}

// RegisterRoutes mounts the export endpoints on an authenticated group.
func (h *ExportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	exports := rg.Group("/exports")
	{
		exports.POST("/statistics", h.CreateStatisticsExport)
		exports.GET("/:id", h.GetExport)
	}
}

// CreateStatisticsExport handles POST /exports/statistics
func (h *ExportHandler) CreateStatisticsExport(c *gin.Context) {
	var req model.CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	requestedBy := "unknown"
	if claims, ok := middleware.Claims(c); ok {
		requestedBy = claims.DisplayName()
	}

	export, err := h.service.RequestExport(c.Request.Context(), req, requestedBy)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, model.CreateExportResponse{
		ExportID: export.ID,
		Status:   export.Status,
	})
}

// GetExport handles GET /exports/:id
func (h *ExportHandler) GetExport(c *gin.Context) {
	export, err := h.service.GetExport(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, export)
}

func (h *ExportHandler) handleError(c *gin.Context, err error) {
	var fields validation.Errors
	if model.IsInvalidRequest(err) && errors.As(err, &fields) {
		response.ValidationFailed(c, fields)
		return
	}
	statusCode, message, code := model.MapErrorToHTTP(err)
	response.ErrorResponse(c, statusCode, code, message)
}
