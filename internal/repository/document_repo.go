package repository

import (
	"context"

	"freightdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *model.InvoiceDocument) error
	FindForInvoice(ctx context.Context, invoiceID, documentID uuid.UUID) (*model.InvoiceDocument, error)
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]model.InvoiceDocument, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.InvoiceDocument) error {
	return translate(GetDB(ctx, r.db).Create(doc).Error)
}

// FindForInvoice only matches a document that belongs to the given invoice.
func (r *documentRepository) FindForInvoice(ctx context.Context, invoiceID, documentID uuid.UUID) (*model.InvoiceDocument, error) {
	var doc model.InvoiceDocument
	if err := GetDB(ctx, r.db).
		Where("id = ? AND invoice_id = ?", documentID, invoiceID).
		First(&doc).Error; err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

func (r *documentRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]model.InvoiceDocument, error) {
	docs := []model.InvoiceDocument{}
	if err := GetDB(ctx, r.db).
		Where("invoice_id = ?", invoiceID).
		Order("created_at DESC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.InvoiceDocument{}))
}
