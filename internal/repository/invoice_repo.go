package repository

import (
	"context"

	"freightdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	Update(ctx context.Context, invoice *model.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, orderID *uuid.UUID, offset, limit int) ([]model.Invoice, int64, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return translate(GetDB(ctx, r.db).Omit("Order", "Documents").Create(invoice).Error)
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	return translate(GetDB(ctx, r.db).Omit("Order", "Documents").Save(invoice).Error)
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Invoice{}))
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).
		Preload("Order").
		Preload("Documents", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		First(&invoice, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &invoice, nil
}

func (r *invoiceRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Invoice{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *invoiceRepository) List(ctx context.Context, orderID *uuid.UUID, offset, limit int) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Invoice{})
	if orderID != nil {
		query = query.Where("order_id = ?", *orderID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetchQuery := db.Preload("Order")
	if orderID != nil {
		fetchQuery = fetchQuery.Where("order_id = ?", *orderID)
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}
