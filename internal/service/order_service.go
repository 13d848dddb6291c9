package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"freightdesk/internal/model"
	"freightdesk/internal/report"
	"freightdesk/internal/repository"
	"freightdesk/internal/websocket"
	"freightdesk/pkg/apperror"
	"freightdesk/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type OrderItemPayload struct {
	Description string          `json:"description" binding:"required,max=255"`
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

type CreateOrderRequest struct {
	RefNumber             string             `json:"refNumber" binding:"required,max=100"`
	SupplierID            string             `json:"supplierId" binding:"required,uuid"`
	ForwarderID           string             `json:"forwarderId" binding:"required,uuid"`
	Status                string             `json:"status" binding:"omitempty,order_status"`
	OrderDate             *time.Time         `json:"orderDate"`
	EstimatedDeliveryDate *time.Time         `json:"estimatedDeliveryDate"`
	Notes                 string             `json:"notes"`
	Items                 []OrderItemPayload `json:"items" binding:"dive"`
}

type UpdateOrderRequest struct {
	RefNumber             *string             `json:"refNumber" binding:"omitempty,max=100"`
	SupplierID            *string             `json:"supplierId" binding:"omitempty,uuid"`
	ForwarderID           *string             `json:"forwarderId" binding:"omitempty,uuid"`
	Status                *string             `json:"status" binding:"omitempty,order_status"`
	OrderDate             *time.Time          `json:"orderDate"`
	EstimatedDeliveryDate *time.Time          `json:"estimatedDeliveryDate"`
	Notes                 *string             `json:"notes"`
	Items                 *[]OrderItemPayload `json:"items" binding:"omitempty,dive"` // nil = keep, [] = clear
}

// OrderQuery holds the optional list filters as received from the query string
type OrderQuery struct {
	Status      string `form:"status"`
	SupplierID  string `form:"supplierId"`
	ForwarderID string `form:"forwarderId"`
}

type OrderResponse struct {
	model.Order
	Total decimal.Decimal `json:"total"`
}

func toOrderResponse(o model.Order) OrderResponse {
	if o.Items == nil {
		o.Items = []model.OrderItem{}
	}
	return OrderResponse{Order: o, Total: o.Total()}
}

// --- Interface ---

type OrderService interface {
	List(ctx context.Context, q OrderQuery, p pagination.Params) (pagination.Page[OrderResponse], error)
	Get(ctx context.Context, id string) (*OrderResponse, error)
	Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error)
	Update(ctx context.Context, id string, req UpdateOrderRequest) (*OrderResponse, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (model.OrderSummary, error)
	Export(ctx context.Context, q OrderQuery, w io.Writer) error
}

var orderMessages = repoMessages{
	notFound:   "Order not found",
	duplicate:  "An order with this reference number already exists",
	referenced: "Order still has invoices",
}

// --- Implementation ---

type orderService struct {
	orders     repository.OrderRepository
	suppliers  repository.SupplierRepository
	forwarders repository.ForwarderRepository
	txManager  repository.TransactionManager
	notifier   Notifier
}

func NewOrderService(
	orders repository.OrderRepository,
	suppliers repository.SupplierRepository,
	forwarders repository.ForwarderRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) OrderService {
	return &orderService{
		orders:     orders,
		suppliers:  suppliers,
		forwarders: forwarders,
		txManager:  txManager,
		notifier:   notifierOrNoop(notifier),
	}
}

func toItemModels(payloads []OrderItemPayload) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0, len(payloads))
	for i, p := range payloads {
		if strings.TrimSpace(p.Description) == "" {
			return nil, apperror.Validation("items[%d]: description is required", i)
		}
		if p.Quantity <= 0 {
			return nil, apperror.Validation("items[%d]: quantity must be positive", i)
		}
		if p.UnitPrice.IsNegative() {
			return nil, apperror.Validation("items[%d]: unitPrice cannot be negative", i)
		}
		items = append(items, model.OrderItem{
			Description: strings.TrimSpace(p.Description),
			Quantity:    p.Quantity,
			UnitPrice:   p.UnitPrice,
			Total:       p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity))),
		})
	}
	return items, nil
}

func (q OrderQuery) filter() (repository.OrderFilter, error) {
	var f repository.OrderFilter
	if q.Status != "" {
		if !model.IsOrderStatus(q.Status) {
			return f, apperror.Validation("status must be one of: %s", strings.Join(model.OrderStatuses, ", "))
		}
		f.Status = q.Status
	}
	if q.SupplierID != "" {
		id, err := parseID(q.SupplierID, "supplier")
		if err != nil {
			return f, err
		}
		f.SupplierID = &id
	}
	if q.ForwarderID != "" {
		id, err := parseID(q.ForwarderID, "forwarder")
		if err != nil {
			return f, err
		}
		f.ForwarderID = &id
	}
	return f, nil
}

// checkParties makes sure the referenced supplier and forwarder exist.
func (s *orderService) checkParties(ctx context.Context, supplierID, forwarderID uuid.UUID) error {
	if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Validation("Supplier does not exist")
		}
		return apperror.Internal("Failed to load supplier", err)
	}
	if _, err := s.forwarders.FindByID(ctx, forwarderID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Validation("Forwarder does not exist")
		}
		return apperror.Internal("Failed to load forwarder", err)
	}
	return nil
}

func (s *orderService) List(ctx context.Context, q OrderQuery, p pagination.Params) (pagination.Page[OrderResponse], error) {
	f, err := q.filter()
	if err != nil {
		return pagination.Page[OrderResponse]{}, err
	}
	orders, total, err := s.orders.List(ctx, f, p.Offset, p.Limit)
	if err != nil {
		return pagination.Page[OrderResponse]{}, orderMessages.wrap("list orders", err)
	}
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return pagination.NewPage(out, p, total), nil
}

func (s *orderService) load(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, orderMessages.wrap("get order", err)
	}
	resp := toOrderResponse(*order)
	return &resp, nil
}

func (s *orderService) Get(ctx context.Context, id string) (*OrderResponse, error) {
	uid, err := parseID(id, "order")
	if err != nil {
		return nil, err
	}
	return s.load(ctx, uid)
}

func (s *orderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	ref := strings.TrimSpace(req.RefNumber)
	if ref == "" {
		return nil, apperror.Validation("refNumber is required")
	}
	supplierID, err := parseID(req.SupplierID, "supplier")
	if err != nil {
		return nil, err
	}
	forwarderID, err := parseID(req.ForwarderID, "forwarder")
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = model.OrderStatusDraft
	}
	if !model.IsOrderStatus(status) {
		return nil, apperror.Validation("status must be one of: %s", strings.Join(model.OrderStatuses, ", "))
	}
	items, err := toItemModels(req.Items)
	if err != nil {
		return nil, err
	}
	if err := s.checkParties(ctx, supplierID, forwarderID); err != nil {
		return nil, err
	}

	orderDate := time.Now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	order := &model.Order{
		RefNumber:             ref,
		SupplierID:            supplierID,
		ForwarderID:           forwarderID,
		Status:                status,
		OrderDate:             orderDate,
		EstimatedDeliveryDate: req.EstimatedDeliveryDate,
		Notes:                 req.Notes,
		Items:                 items,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, orderMessages.wrap("create order", err)
	}

	resp, err := s.load(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(ctx, websocket.EventOrderCreated, resp)
	return resp, nil
}

func (s *orderService) Update(ctx context.Context, id string, req UpdateOrderRequest) (*OrderResponse, error) {
	uid, err := parseID(id, "order")
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orders.FindByID(txCtx, uid)
		if err != nil {
			return orderMessages.wrap("get order", err)
		}

		if req.RefNumber != nil {
			if order.RefNumber = strings.TrimSpace(*req.RefNumber); order.RefNumber == "" {
				return apperror.Validation("refNumber cannot be empty")
			}
		}
		if req.SupplierID != nil {
			if order.SupplierID, err = parseID(*req.SupplierID, "supplier"); err != nil {
				return err
			}
		}
		if req.ForwarderID != nil {
			if order.ForwarderID, err = parseID(*req.ForwarderID, "forwarder"); err != nil {
				return err
			}
		}
		if req.SupplierID != nil || req.ForwarderID != nil {
			if err := s.checkParties(txCtx, order.SupplierID, order.ForwarderID); err != nil {
				return err
			}
		}
		if req.Status != nil {
			if !model.IsOrderStatus(*req.Status) {
				return apperror.Validation("status must be one of: %s", strings.Join(model.OrderStatuses, ", "))
			}
			order.Status = *req.Status
		}
		if req.OrderDate != nil {
			order.OrderDate = *req.OrderDate
		}
		if req.EstimatedDeliveryDate != nil {
			order.EstimatedDeliveryDate = req.EstimatedDeliveryDate
		}
		if req.Notes != nil {
			order.Notes = *req.Notes
		}

		// drop preloaded associations so Save only touches the orders row
		order.Supplier, order.Forwarder = nil, nil
		if err := s.orders.Update(txCtx, order); err != nil {
			return orderMessages.wrap("update order", err)
		}

		if req.Items != nil {
			items, err := toItemModels(*req.Items)
			if err != nil {
				return err
			}
			if err := s.orders.ReplaceItems(txCtx, uid, items); err != nil {
				return orderMessages.wrap("update order items", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(ctx, websocket.EventOrderUpdated, resp)
	return resp, nil
}

func (s *orderService) Delete(ctx context.Context, id string) error {
	uid, err := parseID(id, "order")
	if err != nil {
		return err
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.orders.Delete(txCtx, uid)
	})
	if err != nil {
		return orderMessages.wrap("delete order", err)
	}
	s.notifier.Publish(ctx, websocket.EventOrderDeleted, map[string]string{"id": uid.String()})
	return nil
}

func (s *orderService) Summary(ctx context.Context) (model.OrderSummary, error) {
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return model.OrderSummary{}, apperror.Internal("Failed to load order summary", err)
	}
	return model.NewOrderSummary(counts), nil
}

func (s *orderService) Export(ctx context.Context, q OrderQuery, w io.Writer) error {
	f, err := q.filter()
	if err != nil {
		return err
	}
	orders, err := s.orders.ListAll(ctx, f)
	if err != nil {
		return apperror.Internal("Failed to load orders", err)
	}
	if err := report.WriteOrders(w, orders); err != nil {
		return apperror.Internal("Failed to render export", err)
	}
	return nil
}
