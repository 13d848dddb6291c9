package handler

import (
	"net/http"

	"freightdesk/internal/middleware"
	"freightdesk/internal/model"
	"freightdesk/internal/service"
	"freightdesk/pkg/pagination"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuditHandler struct {
	auditService service.AuditService
	log          *zap.Logger
}

func NewAuditHandler(auditService service.AuditService, log *zap.Logger) *AuditHandler {
	return &AuditHandler{auditService: auditService, log: log}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/audit-logs")
	group.Use(middleware.RequireRole(model.RoleAdmin)) // Protect history logs
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs lists recorded domain events, newest first
// @Summary      Get audit logs
// @Description  Uploads, deletions and order changes with the acting user
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 10)"
// @Success      200    {object}  pagination.Page[service.AuditLogResponse]
// @Failure      403    {object}  response.Response
// @Router       /audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	page, err := h.auditService.GetAuditLogs(c.Request.Context(), pagination.Parse(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
