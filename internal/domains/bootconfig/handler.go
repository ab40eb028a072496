package bootconfig

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	boot BootConfig
}

func NewHandler(boot BootConfig) *Handler {
	return &Handler{boot: boot}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/config", h.GetConfig)
}

// GetConfig handles GET /config. The body is plain JSON, not the /api/v1
// envelope.
func (h *Handler) GetConfig(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, h.boot)
}
