package service

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"freightdesk/internal/auth"
	"freightdesk/internal/database/dbtest"
	"freightdesk/internal/model"
	"freightdesk/internal/repository"
	"freightdesk/internal/storage"
	"freightdesk/pkg/apperror"
	"freightdesk/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Publish(eventType string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
}

type fixture struct {
	db        *gorm.DB
	dir       string
	notifier  *recordingNotifier
	audit     AuditService
	suppliers SupplierService
	forwarder ForwarderService
	orders    OrderService
	invoices  InvoiceService
	documents DocumentService
	auth      AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	dir := t.TempDir()
	files, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	supplierRepo := repository.NewSupplierRepository(db)
	forwarderRepo := repository.NewForwarderRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	notifier := &recordingNotifier{}
	log := zap.NewNop()
	audit := NewAuditService(repository.NewAuditRepository(db), notifier, log)

	return &fixture{
		db:        db,
		dir:       dir,
		notifier:  notifier,
		audit:     audit,
		suppliers: NewSupplierService(supplierRepo),
		forwarder: NewForwarderService(forwarderRepo),
		orders:    NewOrderService(orderRepo, supplierRepo, forwarderRepo, repository.NewTransactionManager(db), audit),
		invoices:  NewInvoiceService(invoiceRepo, orderRepo, documentRepo, files, audit, log),
		documents: NewDocumentService(documentRepo, invoiceRepo, files, audit, log),
		auth:      NewAuthService(repository.NewUserRepository(db), auth.NewIssuer([]byte("secret"), time.Hour)),
	}
}

func (f *fixture) order(t *testing.T, ref string) *OrderResponse {
	t.Helper()
	ctx := context.Background()
	s, err := f.suppliers.Create(ctx, CreatePartyRequest{Name: "S-" + ref})
	require.NoError(t, err)
	fw, err := f.forwarder.Create(ctx, CreatePartyRequest{Name: "F-" + ref})
	require.NoError(t, err)
	o, err := f.orders.Create(ctx, CreateOrderRequest{
		RefNumber:   ref,
		SupplierID:  s.ID.String(),
		ForwarderID: fw.ID.String(),
		Items: []OrderItemPayload{
			{Description: "Steel coil", Quantity: 3, UnitPrice: decimal.RequireFromString("19.99")},
		},
	})
	require.NoError(t, err)
	return o
}

func (f *fixture) invoice(t *testing.T, number string) *model.Invoice {
	t.Helper()
	o := f.order(t, "PO-"+number)
	inv, err := f.invoices.Create(context.Background(), CreateInvoiceRequest{OrderID: o.ID.String(), InvoiceNumber: number})
	require.NoError(t, err)
	return inv
}

func (f *fixture) storedFiles(t *testing.T) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	return entries
}

func (f *fixture) documentCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.InvoiceDocument{}).Count(&n).Error)
	return n
}

func pdfUpload(name string, body []byte) Upload {
	return Upload{OriginalName: name, Mimetype: "application/pdf", Content: bytes.NewReader(body)}
}

// --- suppliers ---

func TestSupplierCreateConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.suppliers.Create(ctx, CreatePartyRequest{Name: "Acme"})
	require.NoError(t, err)

	_, err = f.suppliers.Create(ctx, CreatePartyRequest{Name: "Acme"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Equal(t, "A supplier with this name already exists", apperror.Message(err))

	_, err = f.suppliers.Create(ctx, CreatePartyRequest{Name: "   "})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestSupplierPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		_, err := f.suppliers.Create(ctx, CreatePartyRequest{Name: "Supplier " + string(rune('A'+i))})
		require.NoError(t, err)
	}

	page, err := f.suppliers.List(ctx, pagination.New(2, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(15), page.Meta.Total)
	assert.Equal(t, 2, page.Meta.TotalPages)
	assert.Len(t, page.Data, 5)
}

func TestSupplierUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, err := f.suppliers.Create(ctx, CreatePartyRequest{Name: "Old"})
	require.NoError(t, err)

	name := "New"
	updated, err := f.suppliers.Update(ctx, s.ID.String(), UpdatePartyRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)

	require.NoError(t, f.suppliers.Delete(ctx, s.ID.String()))
	err = f.suppliers.Delete(ctx, s.ID.String())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.suppliers.Get(ctx, "not-a-uuid")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestPartyUpdateConflictAndNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.suppliers.Create(ctx, CreatePartyRequest{Name: "Acme"})
	require.NoError(t, err)
	beta, err := f.suppliers.Create(ctx, CreatePartyRequest{Name: "Beta"})
	require.NoError(t, err)

	name := "Acme"
	_, err = f.suppliers.Update(ctx, beta.ID.String(), UpdatePartyRequest{Name: &name})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Equal(t, "A supplier with this name already exists", apperror.Message(err))

	_, err = f.suppliers.Update(ctx, uuid.NewString(), UpdatePartyRequest{Name: &name})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.forwarder.Create(ctx, CreatePartyRequest{Name: "Acme"})
	require.NoError(t, err)
	fw, err := f.forwarder.Create(ctx, CreatePartyRequest{Name: "Swift"})
	require.NoError(t, err)

	_, err = f.forwarder.Update(ctx, fw.ID.String(), UpdatePartyRequest{Name: &name})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	_, err = f.forwarder.Update(ctx, uuid.NewString(), UpdatePartyRequest{Name: &name})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	got, err := f.suppliers.Get(ctx, beta.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Beta", got.Name)
}

func TestSupplierDeleteInUse(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, "PO-USED")

	err := f.suppliers.Delete(context.Background(), o.SupplierID.String())
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

// --- orders ---

func TestOrderCreateComputesTotals(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, "PO-1")

	assert.Equal(t, model.OrderStatusDraft, o.Status)
	require.Len(t, o.Items, 1)
	assert.True(t, decimal.RequireFromString("59.97").Equal(o.Items[0].Total))
	assert.True(t, decimal.RequireFromString("59.97").Equal(o.Total))
	require.NotNil(t, o.Supplier)
	assert.Equal(t, "S-PO-1", o.Supplier.Name)
	assert.Contains(t, f.notifier.events, "order.created")
}

func TestOrderCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, err := f.suppliers.Create(ctx, CreatePartyRequest{Name: "S"})
	require.NoError(t, err)

	_, err = f.orders.Create(ctx, CreateOrderRequest{
		RefNumber: "PO-X", SupplierID: s.ID.String(), ForwarderID: uuid.NewString(),
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Equal(t, "Forwarder does not exist", apperror.Message(err))

	_, err = f.orders.Create(ctx, CreateOrderRequest{
		RefNumber: "PO-X", SupplierID: s.ID.String(), ForwarderID: uuid.NewString(), Status: "LOST",
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestOrderDuplicateRef(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, "PO-DUP")

	_, err := f.orders.Create(context.Background(), CreateOrderRequest{
		RefNumber: "PO-DUP", SupplierID: o.SupplierID.String(), ForwarderID: o.ForwarderID.String(),
	})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestOrderUpdateReplacesItems(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, "PO-2")
	ctx := context.Background()

	status := model.OrderStatusInTransit
	items := []OrderItemPayload{
		{Description: "Crate", Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
		{Description: "Pallet", Quantity: 1, UnitPrice: decimal.NewFromInt(5)},
	}
	updated, err := f.orders.Update(ctx, o.ID.String(), UpdateOrderRequest{Status: &status, Items: &items})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusInTransit, updated.Status)
	assert.Len(t, updated.Items, 2)
	assert.True(t, decimal.NewFromInt(25).Equal(updated.Total))

	bad := "LOST"
	_, err = f.orders.Update(ctx, o.ID.String(), UpdateOrderRequest{Status: &bad})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	again, err := f.orders.Get(ctx, o.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusInTransit, again.Status)
}

func TestOrderSummaryAndFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.order(t, "PO-A")
	f.order(t, "PO-B")

	status := model.OrderStatusDelivered
	_, err := f.orders.Update(ctx, a.ID.String(), UpdateOrderRequest{Status: &status})
	require.NoError(t, err)

	summary, err := f.orders.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Total)
	assert.Equal(t, int64(1), summary.Delivered)
	assert.Equal(t, int64(1), summary.ByStatus[model.OrderStatusDraft])

	page, err := f.orders.List(ctx, OrderQuery{Status: model.OrderStatusDelivered}, pagination.New(1, 10))
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "PO-A", page.Data[0].RefNumber)

	_, err = f.orders.List(ctx, OrderQuery{Status: "nope"}, pagination.New(1, 10))
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	var buf bytes.Buffer
	require.NoError(t, f.orders.Export(ctx, OrderQuery{}, &buf))
	assert.Equal(t, "PK", string(buf.Bytes()[:2]))
}

func TestOrderDeleteWithInvoiceConflicts(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, "INV-1")

	err := f.orders.Delete(context.Background(), inv.OrderID.String())
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

// --- documents ---

func TestStoreRejectsDisallowedType(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, "INV-1")

	_, err := f.documents.Store(context.Background(), inv.ID.String(), Upload{
		OriginalName: "notes.txt", Mimetype: "text/plain", Content: bytes.NewReader([]byte("hello")),
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Empty(t, f.storedFiles(t))
	assert.Zero(t, f.documentCount(t))
}

func TestStoreRejectsOversize(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, "INV-1")

	big := bytes.Repeat([]byte{'a'}, int(MaxUploadSize)+1)
	_, err := f.documents.Store(context.Background(), inv.ID.String(), pdfUpload("big.pdf", big))
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Empty(t, f.storedFiles(t))
	assert.Zero(t, f.documentCount(t))
}

func TestStoreMissingInvoiceRemovesFile(t *testing.T) {
	f := newFixture(t)

	_, err := f.documents.Store(context.Background(), uuid.NewString(), pdfUpload("a.pdf", []byte("%PDF-1.4")))
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Empty(t, f.storedFiles(t))
	assert.Zero(t, f.documentCount(t))
}

func TestStoreSniffsMissingContentType(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, "INV-1")
	body := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")

	doc, err := f.documents.Store(context.Background(), inv.ID.String(), Upload{
		OriginalName: "scan.pdf", Mimetype: "application/octet-stream", Content: bytes.NewReader(body),
	})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.Mimetype)
	assert.Equal(t, int64(len(body)), doc.Size)

	_, err = f.documents.Store(context.Background(), inv.ID.String(), Upload{
		OriginalName: "plain", Content: bytes.NewReader([]byte("just text")),
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestStoreRetrieveRoundTrip(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, "INV-1")
	ctx := context.Background()
	body := []byte("%PDF-1.4 round trip")

	doc, err := f.documents.Store(ctx, inv.ID.String(), pdfUpload("../../Invoice 42.pdf", body))
	require.NoError(t, err)
	assert.Equal(t, "Invoice 42.pdf", doc.OriginalName)
	assert.NotEqual(t, doc.OriginalName, doc.Filename)
	assert.Contains(t, f.notifier.events, "document.uploaded")

	dl, err := f.documents.Retrieve(ctx, inv.ID.String(), doc.ID.String())
	require.NoError(t, err)
	got, err := io.ReadAll(dl.Content)
	require.NoError(t, err)
	require.NoError(t, dl.Content.Close())
	assert.Equal(t, body, got)
	assert.Equal(t, "application/pdf", dl.Mimetype)
	assert.Equal(t, "Invoice 42.pdf", dl.OriginalName)

	other := f.invoice(t, "INV-2")
	_, err = f.documents.Retrieve(ctx, other.ID.String(), doc.ID.String())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestRetrieveMissingFile(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, "INV-1")
	ctx := context.Background()

	doc, err := f.documents.Store(ctx, inv.ID.String(), pdfUpload("a.pdf", []byte("%PDF")))
	require.NoError(t, err)
	require.NoError(t, os.Remove(doc.Filepath))

	_, err = f.documents.Retrieve(ctx, inv.ID.String(), doc.ID.String())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestRetrieveSizeComesFromDisk(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, "INV-1")
	ctx := context.Background()

	doc, err := f.documents.Store(ctx, inv.ID.String(), pdfUpload("a.pdf", []byte("%PDF-1.4 original")))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(doc.Filepath, []byte("%PDF"), 0o644))

	dl, err := f.documents.Retrieve(ctx, inv.ID.String(), doc.ID.String())
	require.NoError(t, err)
	defer dl.Content.Close()
	assert.Equal(t, int64(4), dl.Size)
	got, err := io.ReadAll(dl.Content)
	require.NoError(t, err)
	assert.Len(t, got, int(dl.Size))
}

func TestDeleteTwice(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, "INV-1")
	ctx := context.Background()

	doc, err := f.documents.Store(ctx, inv.ID.String(), pdfUpload("a.pdf", []byte("%PDF")))
	require.NoError(t, err)

	require.NoError(t, f.documents.Delete(ctx, inv.ID.String(), doc.ID.String()))
	assert.Empty(t, f.storedFiles(t))
	assert.Contains(t, f.notifier.events, "document.deleted")

	err = f.documents.Delete(ctx, inv.ID.String(), doc.ID.String())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestDeleteWithFileAlreadyGone(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, "INV-1")
	ctx := context.Background()

	doc, err := f.documents.Store(ctx, inv.ID.String(), pdfUpload("a.pdf", []byte("%PDF")))
	require.NoError(t, err)
	require.NoError(t, os.Remove(doc.Filepath))

	require.NoError(t, f.documents.Delete(ctx, inv.ID.String(), doc.ID.String()))
	assert.Zero(t, f.documentCount(t))
}

func TestListNewestFirst(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, "INV-1")
	ctx := context.Background()

	var ids []uuid.UUID
	for _, name := range []string{"1.pdf", "2.pdf", "3.pdf"} {
		doc, err := f.documents.Store(ctx, inv.ID.String(), pdfUpload(name, []byte("%PDF")))
		require.NoError(t, err)
		ids = append(ids, doc.ID)
		time.Sleep(5 * time.Millisecond)
	}

	docs, err := f.documents.List(ctx, inv.ID.String())
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, ids[2], docs[0].ID)
	assert.Equal(t, ids[0], docs[2].ID)
}

// --- invoices ---

func TestInvoiceRequiresOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.invoices.Create(context.Background(), CreateInvoiceRequest{OrderID: uuid.NewString(), InvoiceNumber: "INV-9"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestInvoiceDuplicateNumber(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, "INV-1")

	_, err := f.invoices.Create(context.Background(), CreateInvoiceRequest{OrderID: inv.OrderID.String(), InvoiceNumber: "INV-1"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestInvoiceDeleteRemovesAttachments(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, "INV-1")
	ctx := context.Background()

	for _, name := range []string{"a.pdf", "b.pdf"} {
		_, err := f.documents.Store(ctx, inv.ID.String(), pdfUpload(name, []byte("%PDF")))
		require.NoError(t, err)
	}
	require.Len(t, f.storedFiles(t), 2)

	require.NoError(t, f.invoices.Delete(ctx, inv.ID.String()))
	assert.Empty(t, f.storedFiles(t))
	assert.Zero(t, f.documentCount(t))

	_, err := f.invoices.Get(ctx, inv.ID.String())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	err = f.invoices.Delete(ctx, inv.ID.String())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestInvoiceDeletePublishesDocumentDeletes(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, "INV-1")
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"a.pdf", "b.pdf"} {
		doc, err := f.documents.Store(ctx, inv.ID.String(), pdfUpload(name, []byte("%PDF")))
		require.NoError(t, err)
		ids = append(ids, doc.ID.String())
	}

	require.NoError(t, f.invoices.Delete(ctx, inv.ID.String()))
	assert.Equal(t, []string{"order.created", "document.uploaded", "document.uploaded", "document.deleted", "document.deleted"}, f.notifier.events)

	var entities []string
	require.NoError(t, f.db.Model(&model.AuditLog{}).Where("action = ?", "document.deleted").Pluck("entity_id", &entities).Error)
	assert.ElementsMatch(t, ids, entities)
}

// --- auth ---

func TestLoginAndMe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.auth.CreateUser(ctx, CreateUserRequest{Email: "Ops@Example.com", Name: "Ops", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, user.Role)
	assert.NotEqual(t, "correct-horse", user.Password)

	_, err = f.auth.CreateUser(ctx, CreateUserRequest{Email: "ops@example.com", Name: "Ops", Password: "correct-horse"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	_, err = f.auth.Login(ctx, LoginRequest{Email: "ops@example.com", Password: "wrong"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	resp, err := f.auth.Login(ctx, LoginRequest{Email: "ops@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	me, err := f.auth.Me(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", me.Email)
}

// --- audit ---

func TestAuditRecordsEventsWithActor(t *testing.T) {
	f := newFixture(t)
	user, err := f.auth.CreateUser(context.Background(), CreateUserRequest{Email: "ops@example.com", Name: "Ops", Password: "longenough"})
	require.NoError(t, err)
	ctx := auth.WithUserID(context.Background(), user.ID)

	inv := f.invoice(t, "INV-A1")
	doc, err := f.documents.Store(ctx, inv.ID.String(), pdfUpload("a.pdf", []byte("%PDF-1.4 a")))
	require.NoError(t, err)
	require.NoError(t, f.documents.Delete(ctx, inv.ID.String(), doc.ID.String()))

	page, err := f.audit.GetAuditLogs(context.Background(), pagination.New(1, 10))
	require.NoError(t, err)
	require.EqualValues(t, 3, page.Meta.Total)

	actions := map[string]AuditLogResponse{}
	for _, entry := range page.Data {
		actions[entry.Action] = entry
	}
	assert.Equal(t, "System", actions["order.created"].Username)
	assert.Empty(t, actions["order.created"].UserID)

	uploaded := actions["document.uploaded"]
	assert.Equal(t, "Ops", uploaded.Username)
	assert.Equal(t, user.ID.String(), uploaded.UserID)
	assert.Equal(t, doc.ID.String(), uploaded.EntityID)
	assert.Contains(t, uploaded.Details, `"originalName":"a.pdf"`)
	assert.Equal(t, doc.ID.String(), actions["document.deleted"].EntityID)

	// the broadcaster still sees every event
	assert.Equal(t, []string{"order.created", "document.uploaded", "document.deleted"}, f.notifier.events)
}

func TestAuditFailureDoesNotBlockBroadcast(t *testing.T) {
	f := newFixture(t)
	// unknown actor violates the users foreign key
	ctx := auth.WithUserID(context.Background(), uuid.New())

	f.audit.Publish(ctx, "order.deleted", map[string]string{"id": "x"})

	assert.Equal(t, []string{"order.deleted"}, f.notifier.events)
	var n int64
	require.NoError(t, f.db.Model(&model.AuditLog{}).Count(&n).Error)
	assert.Zero(t, n)
}

// --- users ---

func TestUserListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := NewUserService(repository.NewUserRepository(f.db))

	admin, err := f.auth.CreateUser(ctx, CreateUserRequest{Email: "admin@example.com", Name: "Admin", Password: "longenough", Role: model.RoleAdmin})
	require.NoError(t, err)
	clerk, err := f.auth.CreateUser(ctx, CreateUserRequest{Email: "clerk@example.com", Name: "Clerk", Password: "longenough"})
	require.NoError(t, err)

	page, err := users.ListUsers(ctx, pagination.New(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Meta.Total)

	err = users.DeleteUser(ctx, admin.ID.String(), admin.ID.String())
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	require.NoError(t, users.DeleteUser(ctx, admin.ID.String(), clerk.ID.String()))
	err = users.DeleteUser(ctx, admin.ID.String(), clerk.ID.String())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
