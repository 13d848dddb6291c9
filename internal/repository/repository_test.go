package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"freightdesk/internal/database/dbtest"
	"freightdesk/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedOrder(t *testing.T, db *gorm.DB, ref, status string) *model.Order {
	t.Helper()
	ctx := context.Background()

	supplier := &model.Supplier{Name: "Supplier " + ref}
	forwarder := &model.Forwarder{Name: "Forwarder " + ref}
	require.NoError(t, NewSupplierRepository(db).Create(ctx, supplier))
	require.NoError(t, NewForwarderRepository(db).Create(ctx, forwarder))

	order := &model.Order{
		RefNumber:   ref,
		SupplierID:  supplier.ID,
		ForwarderID: forwarder.ID,
		Status:      status,
		OrderDate:   time.Now(),
		Items: []model.OrderItem{
			{Description: "Pallet", Quantity: 2, UnitPrice: decimal.NewFromInt(50), Total: decimal.NewFromInt(100)},
		},
	}
	require.NoError(t, NewOrderRepository(db).Create(ctx, order))
	return order
}

func TestSupplierDuplicateName(t *testing.T) {
	db := dbtest.New(t)
	repo := NewSupplierRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Supplier{Name: "Acme"}))
	err := repo.Create(ctx, &model.Supplier{Name: "Acme"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestSupplierListNewestFirst(t *testing.T) {
	db := dbtest.New(t)
	repo := NewSupplierRepository(db)
	ctx := context.Background()

	for _, name := range []string{"First", "Second", "Third"} {
		require.NoError(t, repo.Create(ctx, &model.Supplier{Name: name}))
		time.Sleep(5 * time.Millisecond)
	}

	items, total, err := repo.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 2)
	assert.Equal(t, "Third", items[0].Name)
	assert.Equal(t, "Second", items[1].Name)
}

func TestSupplierDeleteMissing(t *testing.T) {
	db := dbtest.New(t)
	err := NewSupplierRepository(db).Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSupplierDeleteReferenced(t *testing.T) {
	db := dbtest.New(t)
	order := seedOrder(t, db, "PO-1", model.OrderStatusDraft)

	err := NewSupplierRepository(db).Delete(context.Background(), order.SupplierID)
	assert.ErrorIs(t, err, ErrReferenced)
}

func TestOrderFindPreloads(t *testing.T) {
	db := dbtest.New(t)
	order := seedOrder(t, db, "PO-2", model.OrderStatusPlaced)

	found, err := NewOrderRepository(db).FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Supplier)
	require.NotNil(t, found.Forwarder)
	require.Len(t, found.Items, 1)
	assert.True(t, decimal.NewFromInt(100).Equal(found.Total()))
}

func TestOrderReplaceItemsInTx(t *testing.T) {
	db := dbtest.New(t)
	repo := NewOrderRepository(db)
	order := seedOrder(t, db, "PO-3", model.OrderStatusDraft)
	ctx := context.Background()

	err := NewTransactionManager(db).RunInTx(ctx, func(txCtx context.Context) error {
		order.Status = model.OrderStatusInTransit
		if err := repo.Update(txCtx, order); err != nil {
			return err
		}
		return repo.ReplaceItems(txCtx, order.ID, []model.OrderItem{
			{Description: "Crate", Quantity: 1, UnitPrice: decimal.NewFromInt(7), Total: decimal.NewFromInt(7)},
			{Description: "Box", Quantity: 3, UnitPrice: decimal.NewFromInt(1), Total: decimal.NewFromInt(3)},
		})
	})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusInTransit, found.Status)
	assert.Len(t, found.Items, 2)
	assert.True(t, decimal.NewFromInt(10).Equal(found.Total()))
}

func TestOrderTxRollback(t *testing.T) {
	db := dbtest.New(t)
	repo := NewOrderRepository(db)
	order := seedOrder(t, db, "PO-4", model.OrderStatusDraft)
	ctx := context.Background()
	boom := errors.New("boom")

	err := NewTransactionManager(db).RunInTx(ctx, func(txCtx context.Context) error {
		if err := repo.ReplaceItems(txCtx, order.ID, nil); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, found.Items, 1)
}

func TestNestedTxJoinsOuter(t *testing.T) {
	db := dbtest.New(t)
	repo := NewOrderRepository(db)
	order := seedOrder(t, db, "PO-5", model.OrderStatusDraft)
	ctx := context.Background()
	tm := NewTransactionManager(db)
	boom := errors.New("boom")

	err := tm.RunInTx(ctx, func(txCtx context.Context) error {
		err := tm.RunInTx(txCtx, func(innerCtx context.Context) error {
			assert.Equal(t, txCtx, innerCtx)
			order.Status = model.OrderStatusPlaced
			return repo.Update(innerCtx, order)
		})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDraft, found.Status)
}

func TestOrderListFiltersAndCounts(t *testing.T) {
	db := dbtest.New(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	a := seedOrder(t, db, "PO-A", model.OrderStatusInTransit)
	seedOrder(t, db, "PO-B", model.OrderStatusInTransit)
	seedOrder(t, db, "PO-C", model.OrderStatusDelivered)

	orders, total, err := repo.List(ctx, OrderFilter{Status: model.OrderStatusInTransit}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, orders, 2)

	orders, total, err = repo.List(ctx, OrderFilter{SupplierID: &a.SupplierID}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "PO-A", orders[0].RefNumber)

	summary, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	got := model.NewOrderSummary(summary)
	assert.Equal(t, int64(3), got.Total)
	assert.Equal(t, int64(2), got.InTransit)
	assert.Equal(t, int64(1), got.Delivered)
}

func TestDocumentsScopedToInvoice(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	order := seedOrder(t, db, "PO-5", model.OrderStatusDraft)

	invoices := NewInvoiceRepository(db)
	first := &model.Invoice{OrderID: order.ID, InvoiceNumber: "INV-1", InvoiceDate: time.Now()}
	second := &model.Invoice{OrderID: order.ID, InvoiceNumber: "INV-2", InvoiceDate: time.Now()}
	require.NoError(t, invoices.Create(ctx, first))
	require.NoError(t, invoices.Create(ctx, second))

	docs := NewDocumentRepository(db)
	doc := &model.InvoiceDocument{
		InvoiceID:    first.ID,
		Filename:     "a.pdf",
		OriginalName: "scan.pdf",
		Filepath:     "/tmp/a.pdf",
		Mimetype:     "application/pdf",
		Size:         4,
	}
	require.NoError(t, docs.Create(ctx, doc))

	_, err := docs.FindForInvoice(ctx, second.ID, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := docs.FindForInvoice(ctx, first.ID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "scan.pdf", found.OriginalName)

	list, err := docs.ListByInvoice(ctx, second.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	require.NoError(t, docs.Delete(ctx, doc.ID))
	assert.ErrorIs(t, docs.Delete(ctx, doc.ID), ErrNotFound)
}

func TestUserByEmail(t *testing.T) {
	db := dbtest.New(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{Email: "ops@example.com", Name: "Ops", Password: "x", Role: model.RoleStaff}))

	user, err := repo.GetByEmail(ctx, "ops@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ops", user.Name)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
