package repository

import (
	"context"

	"freightdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// namedRepository is the single-table CRUD shared by suppliers and forwarders.
type namedRepository[T any] struct {
	db *gorm.DB
}

func (r *namedRepository[T]) Create(ctx context.Context, entity *T) error {
	return translate(GetDB(ctx, r.db).Create(entity).Error)
}

func (r *namedRepository[T]) Update(ctx context.Context, entity *T) error {
	return translate(GetDB(ctx, r.db).Save(entity).Error)
}

func (r *namedRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(GetDB(ctx, r.db).Where("id = ?", id).Delete(new(T)))
}

func (r *namedRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	if err := GetDB(ctx, r.db).First(&entity, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &entity, nil
}

func (r *namedRepository[T]) List(ctx context.Context, offset, limit int) ([]T, int64, error) {
	var items []T
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

type SupplierRepository interface {
	Create(ctx context.Context, supplier *model.Supplier) error
	Update(ctx context.Context, supplier *model.Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	List(ctx context.Context, offset, limit int) ([]model.Supplier, int64, error)
}

func NewSupplierRepository(db *gorm.DB) SupplierRepository {
	return &namedRepository[model.Supplier]{db: db}
}

type ForwarderRepository interface {
	Create(ctx context.Context, forwarder *model.Forwarder) error
	Update(ctx context.Context, forwarder *model.Forwarder) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Forwarder, error)
	List(ctx context.Context, offset, limit int) ([]model.Forwarder, int64, error)
}

func NewForwarderRepository(db *gorm.DB) ForwarderRepository {
	return &namedRepository[model.Forwarder]{db: db}
}
