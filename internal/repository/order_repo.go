package repository

import (
	"context"

	"freightdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderFilter narrows List; zero values mean "any"
type OrderFilter struct {
	Status      string
	SupplierID  *uuid.UUID
	ForwarderID *uuid.UUID
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	Update(ctx context.Context, order *model.Order) error
	ReplaceItems(ctx context.Context, orderID uuid.UUID, items []model.OrderItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, filter OrderFilter, offset, limit int) ([]model.Order, int64, error)
	ListAll(ctx context.Context, filter OrderFilter) ([]model.Order, error)
	CountByStatus(ctx context.Context) ([]model.StatusCount, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return translate(GetDB(ctx, r.db).Create(order).Error)
}

// Update saves the order row only; items go through ReplaceItems.
func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	return translate(GetDB(ctx, r.db).Omit("Items", "Supplier", "Forwarder").Save(order).Error)
}

func (r *orderRepository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []model.OrderItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	return translate(db.Create(&items).Error)
}

func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	return affected(db.Where("id = ?", id).Delete(&model.Order{}))
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Supplier").
		Preload("Forwarder").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *orderRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func applyOrderFilter(query *gorm.DB, filter OrderFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.ForwarderID != nil {
		query = query.Where("forwarder_id = ?", *filter.ForwarderID)
	}
	return query
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter, offset, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := GetDB(ctx, r.db)
	if err := applyOrderFilter(db.Model(&model.Order{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := applyOrderFilter(db, filter).
		Preload("Items").
		Preload("Supplier").
		Preload("Forwarder").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepository) ListAll(ctx context.Context, filter OrderFilter) ([]model.Order, error) {
	var orders []model.Order
	if err := applyOrderFilter(GetDB(ctx, r.db), filter).
		Preload("Items").
		Preload("Supplier").
		Preload("Forwarder").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) CountByStatus(ctx context.Context) ([]model.StatusCount, error) {
	var counts []model.StatusCount
	if err := GetDB(ctx, r.db).Model(&model.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}
