package handler

import (
	"bytes"
	"net/http"
	"time"

	"freightdesk/internal/report"
	"freightdesk/internal/service"
	"freightdesk/pkg/pagination"
	"freightdesk/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orderService service.OrderService
	log          *zap.Logger
}

func NewOrderHandler(orderService service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, log: log}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.POST("", h.CreateOrder)
		orders.GET("/summary", h.GetSummary)
		orders.GET("/export", h.ExportOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PATCH("/:id", h.UpdateOrder)
		orders.DELETE("/:id", h.DeleteOrder)
	}
}

// ListOrders returns orders newest first with optional filters
// @Summary      List orders
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        page         query     int     false  "Page number (default: 1)"
// @Param        limit        query     int     false  "Items per page (default: 10, max: 100)"
// @Param        status       query     string  false  "DRAFT, PLACED, DISPATCHED, IN_TRANSIT, DELIVERED, CANCELED"
// @Param        supplierId   query     string  false  "Supplier ID"
// @Param        forwarderId  query     string  false  "Forwarder ID"
// @Success      200          {object}  pagination.Page[service.OrderResponse]
// @Failure      400          {object}  response.Response
// @Router       /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var q service.OrderQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := h.orderService.List(c.Request.Context(), q, pagination.Parse(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetSummary returns order counts per status for the dashboard
// @Summary      Order summary
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  model.OrderSummary
// @Router       /orders/summary [get]
func (h *OrderHandler) GetSummary(c *gin.Context) {
	summary, err := h.orderService.Summary(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ExportOrders streams the filtered order list as an XLSX workbook
// @Summary      Export orders
// @Tags         orders
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        status       query  string  false  "Status filter"
// @Param        supplierId   query  string  false  "Supplier ID"
// @Param        forwarderId  query  string  false  "Forwarder ID"
// @Success      200  {file}  file
// @Router       /orders/export [get]
func (h *OrderHandler) ExportOrders(c *gin.Context) {
	var q service.OrderQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	// render fully before writing headers so a failure still yields a JSON error
	var buf bytes.Buffer
	if err := h.orderService.Export(c.Request.Context(), q, &buf); err != nil {
		respondError(c, h.log, err)
		return
	}

	fileName := "orders_" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, report.XLSXContentType, buf.Bytes())
}

// GetOrder
// @Summary      Get order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  service.OrderResponse
// @Failure      404  {object}  response.Response
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CreateOrder
// @Summary      Create order
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateOrderRequest  true  "Order payload"
// @Success      201      {object}  service.OrderResponse
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// UpdateOrder changes fields and optionally replaces the item list
// @Summary      Update order
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Order ID"
// @Param        payload  body      service.UpdateOrderRequest  true  "Fields to change"
// @Success      200      {object}  service.OrderResponse
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /orders/{id} [patch]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// DeleteOrder
// @Summary      Delete order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Message
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.orderService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Ack("Order deleted"))
}
