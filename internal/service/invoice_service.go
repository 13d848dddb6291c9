package service

import (
	"context"
	"strings"
	"time"

	"freightdesk/internal/model"
	"freightdesk/internal/repository"
	"freightdesk/internal/storage"
	"freightdesk/internal/websocket"
	"freightdesk/pkg/apperror"
	"freightdesk/pkg/pagination"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateInvoiceRequest struct {
	OrderID       string     `json:"orderId" binding:"required,uuid"`
	InvoiceNumber string     `json:"invoiceNumber" binding:"required,max=100"`
	InvoiceDate   *time.Time `json:"invoiceDate"`
}

type UpdateInvoiceRequest struct {
	OrderID       *string    `json:"orderId" binding:"omitempty,uuid"`
	InvoiceNumber *string    `json:"invoiceNumber" binding:"omitempty,max=100"`
	InvoiceDate   *time.Time `json:"invoiceDate"`
}

type InvoiceService interface {
	List(ctx context.Context, orderID string, p pagination.Params) (pagination.Page[model.Invoice], error)
	Get(ctx context.Context, id string) (*model.Invoice, error)
	Create(ctx context.Context, req CreateInvoiceRequest) (*model.Invoice, error)
	Update(ctx context.Context, id string, req UpdateInvoiceRequest) (*model.Invoice, error)
	Delete(ctx context.Context, id string) error
}

var invoiceMessages = repoMessages{
	notFound:   "Invoice not found",
	duplicate:  "An invoice with this number already exists",
	referenced: "Invoice still has documents",
}

type invoiceService struct {
	invoices  repository.InvoiceRepository
	orders    repository.OrderRepository
	documents repository.DocumentRepository
	files     storage.FileStorage
	notifier  Notifier
	log       *zap.Logger
}

func NewInvoiceService(
	invoices repository.InvoiceRepository,
	orders repository.OrderRepository,
	documents repository.DocumentRepository,
	files storage.FileStorage,
	notifier Notifier,
	log *zap.Logger,
) InvoiceService {
	return &invoiceService{
		invoices:  invoices,
		orders:    orders,
		documents: documents,
		files:     files,
		notifier:  notifierOrNoop(notifier),
		log:       log,
	}
}

func (s *invoiceService) requireOrder(ctx context.Context, raw string) (model.Invoice, error) {
	orderID, err := parseID(raw, "order")
	if err != nil {
		return model.Invoice{}, err
	}
	exists, err := s.orders.Exists(ctx, orderID)
	if err != nil {
		return model.Invoice{}, apperror.Internal("Failed to load order", err)
	}
	if !exists {
		return model.Invoice{}, apperror.Validation("Order does not exist")
	}
	return model.Invoice{OrderID: orderID}, nil
}

func (s *invoiceService) List(ctx context.Context, orderID string, p pagination.Params) (pagination.Page[model.Invoice], error) {
	var orderFilter *uuid.UUID
	if orderID != "" {
		id, err := parseID(orderID, "order")
		if err != nil {
			return pagination.Page[model.Invoice]{}, err
		}
		orderFilter = &id
	}

	invoices, total, err := s.invoices.List(ctx, orderFilter, p.Offset, p.Limit)
	if err != nil {
		return pagination.Page[model.Invoice]{}, invoiceMessages.wrap("list invoices", err)
	}
	return pagination.NewPage(invoices, p, total), nil
}

func (s *invoiceService) Get(ctx context.Context, id string) (*model.Invoice, error) {
	uid, err := parseID(id, "invoice")
	if err != nil {
		return nil, err
	}
	invoice, err := s.invoices.FindByID(ctx, uid)
	if err != nil {
		return nil, invoiceMessages.wrap("get invoice", err)
	}
	if invoice.Documents == nil {
		invoice.Documents = []model.InvoiceDocument{}
	}
	return invoice, nil
}

func (s *invoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*model.Invoice, error) {
	number := strings.TrimSpace(req.InvoiceNumber)
	if number == "" {
		return nil, apperror.Validation("invoiceNumber is required")
	}
	invoice, err := s.requireOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	invoice.InvoiceNumber = number
	invoice.InvoiceDate = time.Now()
	if req.InvoiceDate != nil {
		invoice.InvoiceDate = *req.InvoiceDate
	}

	if err := s.invoices.Create(ctx, &invoice); err != nil {
		return nil, invoiceMessages.wrap("create invoice", err)
	}
	return s.Get(ctx, invoice.ID.String())
}

func (s *invoiceService) Update(ctx context.Context, id string, req UpdateInvoiceRequest) (*model.Invoice, error) {
	invoice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.OrderID != nil {
		ref, err := s.requireOrder(ctx, *req.OrderID)
		if err != nil {
			return nil, err
		}
		invoice.OrderID = ref.OrderID
	}
	if req.InvoiceNumber != nil {
		if invoice.InvoiceNumber = strings.TrimSpace(*req.InvoiceNumber); invoice.InvoiceNumber == "" {
			return nil, apperror.Validation("invoiceNumber cannot be empty")
		}
	}
	if req.InvoiceDate != nil {
		invoice.InvoiceDate = *req.InvoiceDate
	}

	invoice.Order = nil
	if err := s.invoices.Update(ctx, invoice); err != nil {
		return nil, invoiceMessages.wrap("update invoice", err)
	}
	return s.Get(ctx, id)
}

// Delete removes every attachment (file, then row) before the invoice itself. Each removed
// attachment is published as document.deleted, the same as a single delete.
func (s *invoiceService) Delete(ctx context.Context, id string) error {
	uid, err := parseID(id, "invoice")
	if err != nil {
		return err
	}
	exists, err := s.invoices.Exists(ctx, uid)
	if err != nil {
		return apperror.Internal("Failed to load invoice", err)
	}
	if !exists {
		return apperror.NotFound("Invoice not found")
	}
	docs, err := s.documents.ListByInvoice(ctx, uid)
	if err != nil {
		return apperror.Internal("Failed to load invoice documents", err)
	}

	for _, doc := range docs {
		if err := s.files.Remove(doc.Filepath); err != nil {
			return apperror.Internal("Failed to remove document file", err)
		}
		if err := s.documents.Delete(ctx, doc.ID); err != nil {
			s.log.Error("document file removed but row delete failed",
				zap.String("documentId", doc.ID.String()), zap.Error(err))
			return apperror.Internal("Failed to delete document", err)
		}
		s.notifier.Publish(ctx, websocket.EventDocumentDeleted, map[string]string{
			"id":        doc.ID.String(),
			"invoiceId": doc.InvoiceID.String(),
		})
	}

	return invoiceMessages.wrap("delete invoice", s.invoices.Delete(ctx, uid))
}
