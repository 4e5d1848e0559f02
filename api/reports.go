package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/Domenick1991/goaero/internal/service/reports"
)

type ReportsHandler struct {
	service reports.ReportsUseCase
}

func NewReportsHandler(service reports.ReportsUseCase) *ReportsHandler {
	return &ReportsHandler{service: service}
}

func (h *ReportsHandler) Register(router *gin.RouterGroup) {
	router.GET("/reports/owner", RequireRole(domain.RoleOwner), h.owner)
	router.GET("/reports/summary", RequireRole(domain.RoleAdmin), h.summary)
}

func (h *ReportsHandler) owner(c *gin.Context) {
	report, err := h.service.OwnerStats(c.Request.Context(), sessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportsHandler) summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), sessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
