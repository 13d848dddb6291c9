package handler

import (
	"net/http"

	"freightdesk/internal/service"
	"freightdesk/pkg/pagination"
	"freightdesk/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ForwarderHandler struct {
	forwarderService service.ForwarderService
	log             *zap.Logger
}

func NewForwarderHandler(forwarderService service.ForwarderService, log *zap.Logger) *ForwarderHandler {
	return &ForwarderHandler{forwarderService: forwarderService, log: log}
}

func (h *ForwarderHandler) RegisterRoutes(router *gin.RouterGroup) {
	forwarders := router.Group("/forwarders")
	{
		forwarders.GET("", h.ListForwarders)
		forwarders.POST("", h.CreateForwarder)
		forwarders.GET("/:id", h.GetForwarder)
		forwarders.PATCH("/:id", h.UpdateForwarder)
		forwarders.DELETE("/:id", h.DeleteForwarder)
	}
}

// ListForwarders returns forwarders newest first
// @Summary      List forwarders
// @Tags         forwarders
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default: 1)"
// @Param        limit  query     int  false  "Items per page (default: 10, max: 100)"
// @Success      200    {object}  pagination.Page[model.Forwarder]
// @Router       /forwarders [get]
func (h *ForwarderHandler) ListForwarders(c *gin.Context) {
	page, err := h.forwarderService.List(c.Request.Context(), pagination.Parse(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetForwarder
// @Summary      Get forwarder
// @Tags         forwarders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Forwarder ID"
// @Success      200  {object}  model.Forwarder
// @Failure      404  {object}  response.Response
// @Router       /forwarders/{id} [get]
func (h *ForwarderHandler) GetForwarder(c *gin.Context) {
	forwarder, err := h.forwarderService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, forwarder)
}

// CreateForwarder
// @Summary      Create forwarder
// @Tags         forwarders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePartyRequest  true  "Forwarder payload"
// @Success      201      {object}  model.Forwarder
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /forwarders [post]
func (h *ForwarderHandler) CreateForwarder(c *gin.Context) {
	var req service.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	forwarder, err := h.forwarderService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, forwarder)
}

// UpdateForwarder
// @Summary      Update forwarder
// @Tags         forwarders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Forwarder ID"
// @Param        payload  body      service.UpdatePartyRequest  true  "Fields to change"
// @Success      200      {object}  model.Forwarder
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /forwarders/{id} [patch]
func (h *ForwarderHandler) UpdateForwarder(c *gin.Context) {
	var req service.UpdatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	forwarder, err := h.forwarderService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, forwarder)
}

// DeleteForwarder
// @Summary      Delete forwarder
// @Tags         forwarders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Forwarder ID"
// @Success      200  {object}  response.Message
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /forwarders/{id} [delete]
func (h *ForwarderHandler) DeleteForwarder(c *gin.Context) {
	if err := h.forwarderService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Ack("Forwarder deleted"))
}
