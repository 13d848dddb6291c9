package handler

import (
	"net/http"

	"freightdesk/internal/service"
	"freightdesk/pkg/pagination"
	"freightdesk/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SupplierHandler struct {
	supplierService service.SupplierService
	log             *zap.Logger
}

func NewSupplierHandler(supplierService service.SupplierService, log *zap.Logger) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService, log: log}
}

func (h *SupplierHandler) RegisterRoutes(router *gin.RouterGroup) {
	suppliers := router.Group("/suppliers")
	{
		suppliers.GET("", h.ListSuppliers)
		suppliers.POST("", h.CreateSupplier)
		suppliers.GET("/:id", h.GetSupplier)
		suppliers.PATCH("/:id", h.UpdateSupplier)
		suppliers.DELETE("/:id", h.DeleteSupplier)
	}
}

// ListSuppliers returns suppliers newest first
// @Summary      List suppliers
// @Tags         suppliers
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default: 1)"
// @Param        limit  query     int  false  "Items per page (default: 10, max: 100)"
// @Success      200    {object}  pagination.Page[model.Supplier]
// @Router       /suppliers [get]
func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	page, err := h.supplierService.List(c.Request.Context(), pagination.Parse(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetSupplier
// @Summary      Get supplier
// @Tags         suppliers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Supplier ID"
// @Success      200  {object}  model.Supplier
// @Failure      404  {object}  response.Response
// @Router       /suppliers/{id} [get]
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	supplier, err := h.supplierService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

// CreateSupplier
// @Summary      Create supplier
// @Tags         suppliers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePartyRequest  true  "Supplier payload"
// @Success      201      {object}  model.Supplier
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /suppliers [post]
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req service.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	supplier, err := h.supplierService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

// UpdateSupplier
// @Summary      Update supplier
// @Tags         suppliers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Supplier ID"
// @Param        payload  body      service.UpdatePartyRequest  true  "Fields to change"
// @Success      200      {object}  model.Supplier
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /suppliers/{id} [patch]
func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	var req service.UpdatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	supplier, err := h.supplierService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

// DeleteSupplier
// @Summary      Delete supplier
// @Tags         suppliers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Supplier ID"
// @Success      200  {object}  response.Message
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /suppliers/{id} [delete]
func (h *SupplierHandler) DeleteSupplier(c *gin.Context) {
	if err := h.supplierService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Ack("Supplier deleted"))
}
