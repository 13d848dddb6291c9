package handler

import (
	"net/http"

	"freightdesk/internal/service"
	"freightdesk/pkg/pagination"
	"freightdesk/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	log            *zap.Logger
}

func NewInvoiceHandler(invoiceService service.InvoiceService, log *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, log: log}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/invoices")
	{
		invoices.GET("", h.ListInvoices)
		invoices.POST("", h.CreateInvoice)
		invoices.GET("/:invoiceId", h.GetInvoice)
		invoices.PATCH("/:invoiceId", h.UpdateInvoice)
		invoices.DELETE("/:invoiceId", h.DeleteInvoice)
	}
}

// ListInvoices
// @Summary      List invoices
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        page     query     int     false  "Page number (default: 1)"
// @Param        limit    query     int     false  "Items per page (default: 10, max: 100)"
// @Param        orderId  query     string  false  "Only invoices of this order"
// @Success      200      {object}  pagination.Page[model.Invoice]
// @Router       /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	page, err := h.invoiceService.List(c.Request.Context(), c.Query("orderId"), pagination.Parse(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetInvoice returns the invoice with its attachments
// @Summary      Get invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        invoiceId  path      string  true  "Invoice ID"
// @Success      200        {object}  model.Invoice
// @Failure      404        {object}  response.Response
// @Router       /invoices/{invoiceId} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.Get(c.Request.Context(), c.Param("invoiceId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// CreateInvoice
// @Summary      Create invoice
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInvoiceRequest  true  "Invoice payload"
// @Success      201      {object}  model.Invoice
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// UpdateInvoice
// @Summary      Update invoice
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        invoiceId  path      string                        true  "Invoice ID"
// @Param        payload    body      service.UpdateInvoiceRequest  true  "Fields to change"
// @Success      200        {object}  model.Invoice
// @Failure      404        {object}  response.Response
// @Failure      409        {object}  response.Response
// @Router       /invoices/{invoiceId} [patch]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	var req service.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), c.Param("invoiceId"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice removes the invoice together with its attachments
// @Summary      Delete invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        invoiceId  path      string  true  "Invoice ID"
// @Success      200        {object}  response.Message
// @Failure      404        {object}  response.Response
// @Router       /invoices/{invoiceId} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	if err := h.invoiceService.Delete(c.Request.Context(), c.Param("invoiceId")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Ack("Invoice deleted"))
}
