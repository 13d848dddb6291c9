package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"regexp"
	"strings"
	"testing"
	"time"

	_ "freightdesk/api/swagger"
	"freightdesk/internal/config"
	"freightdesk/internal/database/dbtest"
	"freightdesk/internal/model"
	"freightdesk/internal/repository"
	"freightdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

type testAPI struct {
	t     *testing.T
	db    *gorm.DB
	api   *API
	token string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.New(t)
	cfg := config.Config{
		Env:         config.EnvDevelopment,
		UploadDir:   t.TempDir(),
		CORSOrigins: []string{"http://localhost:3000"},
		Auth:        config.AuthConfig{JWTSecret: []byte("test-secret"), TokenTTL: time.Hour},
	}
	api, err := NewAPI(cfg, db, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go api.Hub.Run(ctx)

	user := &model.User{Email: "ops@example.com", Name: "Ops", Password: "x", Role: model.RoleStaff}
	require.NoError(t, repository.NewUserRepository(db).Create(ctx, user))
	token, err := api.Issuer.Issue(user.ID, user.Role)
	require.NoError(t, err)

	return &testAPI{t: t, db: db, api: api, token: token}
}

func (a *testAPI) do(req *http.Request) *httptest.ResponseRecorder {
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.api.Router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) json(method, path string, body interface{}) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return a.do(req)
}

func (a *testAPI) create(path string, body interface{}) map[string]interface{} {
	w := a.json(http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var out map[string]interface{}
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (a *testAPI) invoice() string {
	s := a.create("/suppliers", gin.H{"name": "Acme " + uuid.NewString()})
	f := a.create("/forwarders", gin.H{"name": "Fwd " + uuid.NewString()})
	o := a.create("/orders", gin.H{
		"refNumber":   "PO-" + uuid.NewString(),
		"supplierId":  s["id"],
		"forwarderId": f["id"],
		"items":       []gin.H{{"description": "Pallet", "quantity": 2, "unitPrice": "10.50"}},
	})
	assert.Equal(a.t, "21", o["total"])
	inv := a.create("/invoices", gin.H{"orderId": o["id"], "invoiceNumber": "INV-" + uuid.NewString()})
	return inv["id"].(string)
}

func (a *testAPI) uploadFile(invoiceID, name, contentType string, body []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(a.t, err)
	_, err = part.Write(body)
	require.NoError(a.t, err)
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/invoices/"+invoiceID+"/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.do(req)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	a := newTestAPI(t)
	a.token = ""

	w := a.json(http.MethodGet, "/suppliers", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.json(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"service":"api"`)
}

func TestSupplierConflictOverHTTP(t *testing.T) {
	a := newTestAPI(t)

	w := a.json(http.MethodPost, "/suppliers", gin.H{"name": "Acme"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = a.json(http.MethodPost, "/suppliers", gin.H{"name": "Acme"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"status":"error","statusCode":409,"message":"A supplier with this name already exists"}`, w.Body.String())

	w = a.json(http.MethodPost, "/suppliers", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSupplierUpdateOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	a.create("/suppliers", gin.H{"name": "Acme"})
	beta := a.create("/suppliers", gin.H{"name": "Beta"})
	path := "/suppliers/" + beta["id"].(string)

	w := a.json(http.MethodPatch, path, gin.H{"name": "Acme"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "A supplier with this name already exists")

	w = a.json(http.MethodPatch, "/suppliers/"+uuid.NewString(), gin.H{"name": "Gamma"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.json(http.MethodPatch, path, gin.H{"name": "Gamma"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"name":"Gamma"`)
}

func TestSupplierPaginationOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	for i := 0; i < 15; i++ {
		a.create("/suppliers", gin.H{"name": fmt.Sprintf("Supplier %02d", i)})
	}

	w := a.json(http.MethodGet, "/suppliers?page=2&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Data []model.Supplier `json:"data"`
		Meta struct {
			Total      int64 `json:"total"`
			Page       int   `json:"page"`
			Limit      int   `json:"limit"`
			TotalPages int   `json:"totalPages"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Data, 5)
	assert.Equal(t, 2, page.Meta.TotalPages)
	assert.Equal(t, int64(15), page.Meta.Total)
	assert.Equal(t, 2, page.Meta.Page)
}

func TestOrderStatusValidatorOnBinding(t *testing.T) {
	a := newTestAPI(t)
	s := a.create("/suppliers", gin.H{"name": "S"})
	f := a.create("/forwarders", gin.H{"name": "F"})

	w := a.json(http.MethodPost, "/orders", gin.H{
		"refNumber": "PO-1", "supplierId": s["id"], "forwarderId": f["id"], "status": "LOST",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "order_status")

	w = a.json(http.MethodGet, "/orders/summary", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"IN_TRANSIT":0`)
}

func TestDocumentRoundTripOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	invoiceID := a.invoice()
	body := []byte("%PDF-1.4 freight invoice")

	w := a.uploadFile(invoiceID, `Invoice "March".pdf`, "application/pdf", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var doc model.InvoiceDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, `Invoice "March".pdf`, doc.OriginalName)
	assert.Equal(t, int64(len(body)), doc.Size)

	w = a.json(http.MethodGet, "/invoices/"+invoiceID+"/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []model.InvoiceDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	path := "/invoices/" + invoiceID + "/documents/" + doc.ID.String()
	w = a.json(http.MethodGet, path+"/download", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, w.Body.Bytes())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Invoice \"March\".pdf"`, w.Header().Get("Content-Disposition"))

	w = a.json(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Document deleted successfully"}`, w.Body.String())

	w = a.json(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.json(http.MethodGet, path+"/download", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadRejections(t *testing.T) {
	a := newTestAPI(t)
	invoiceID := a.invoice()

	w := a.uploadFile(invoiceID, "notes.txt", "text/plain", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not allowed")

	w = a.uploadFile(uuid.NewString(), "a.pdf", "application/pdf", []byte("%PDF"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invoice not found")

	big := bytes.Repeat([]byte{'a'}, int(service.MaxUploadSize)+1)
	w = a.uploadFile(invoiceID, "big.pdf", "application/pdf", big)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/invoices/"+invoiceID+"/documents", nil)
	w = a.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "File is required")
}

func TestLoginSetsCookie(t *testing.T) {
	a := newTestAPI(t)
	authService := service.NewAuthService(repository.NewUserRepository(a.db), a.api.Issuer)
	_, err := authService.CreateUser(context.Background(), service.CreateUserRequest{
		Email: "clerk@example.com", Name: "Clerk", Password: "correct-horse",
	})
	require.NoError(t, err)
	a.token = ""

	w := a.json(http.MethodPost, "/auth/login", gin.H{"email": "clerk@example.com", "password": "wrong-horse"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.json(http.MethodPost, "/auth/login", gin.H{"email": "clerk@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.json(http.MethodPost, "/auth/login", gin.H{"email": "clerk@example.com", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.NotEmpty(t, res.AccessToken)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "access_token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, res.AccessToken, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(cookie)
	w = a.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "clerk@example.com")
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAuditLogsAdminOnly(t *testing.T) {
	a := newTestAPI(t)
	invoiceID := a.invoice()
	w := a.uploadFile(invoiceID, "bill.pdf", "application/pdf", []byte("%PDF-1.4 bill"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.json(http.MethodGet, "/audit-logs", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := &model.User{Email: "admin@example.com", Name: "Admin", Password: "x", Role: model.RoleAdmin}
	require.NoError(t, repository.NewUserRepository(a.db).Create(context.Background(), admin))
	a.token, _ = a.api.Issuer.Issue(admin.ID, admin.Role)

	w = a.json(http.MethodGet, "/audit-logs", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page struct {
		Data []struct {
			Action   string `json:"action"`
			Username string `json:"username"`
		} `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Meta.Total)
	for _, entry := range page.Data {
		assert.Equal(t, "Ops", entry.Username, entry.Action)
	}
}

func TestUserAdminRoutes(t *testing.T) {
	a := newTestAPI(t)

	w := a.json(http.MethodPost, "/users", gin.H{"email": "new@example.com", "name": "New", "password": "longenough"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := &model.User{Email: "root@example.com", Name: "Root", Password: "x", Role: model.RoleAdmin}
	require.NoError(t, repository.NewUserRepository(a.db).Create(context.Background(), admin))
	a.token, _ = a.api.Issuer.Issue(admin.ID, admin.Role)

	created := a.create("/users", gin.H{"email": "New@Example.com", "name": "New", "password": "longenough"})
	assert.Equal(t, "new@example.com", created["email"])
	assert.Equal(t, model.RoleStaff, created["role"])
	assert.NotContains(t, created, "password")

	w = a.json(http.MethodPost, "/users", gin.H{"email": "new@example.com", "name": "New", "password": "longenough"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.json(http.MethodPost, "/users", gin.H{"email": "x@example.com", "name": "X", "password": "longenough", "role": "owner"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.json(http.MethodDelete, "/users/"+admin.ID.String(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.json(http.MethodDelete, "/users/"+created["id"].(string), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"User deleted successfully"}`, w.Body.String())
}

func TestSwaggerDocumentsEveryRoute(t *testing.T) {
	a := newTestAPI(t)
	a.token = ""

	w := a.json(http.MethodGet, "/swagger/doc.json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))

	param := regexp.MustCompile(`:(\w+)`)
	for _, route := range a.api.Router.Routes() {
		if strings.HasPrefix(route.Path, "/swagger") || route.Path == "/ws" {
			continue
		}
		path := param.ReplaceAllString(route.Path, "{$1}")
		_, ok := doc.Paths[path][strings.ToLower(route.Method)]
		assert.True(t, ok, "%s %s is not documented", route.Method, path)
	}
}
