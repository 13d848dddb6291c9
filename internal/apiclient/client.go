package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"freightdesk/internal/model"
	"freightdesk/internal/service"
	"freightdesk/pkg/pagination"
)

// Error is a non-2xx answer from the API.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// StatusOf returns the API status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client calls the API. Every authenticated method takes the bearer credential explicitly;
// the client itself holds no session.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var env struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&env)
		if env.Message == "" {
			env.Message = http.StatusText(resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Message: env.Message}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) getJSON(ctx context.Context, path, token string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, token, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, path, token string, in, out interface{}) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, token, bytes.NewReader(raw), "application/json", out)
}

func pageQuery(page int) string {
	return "?page=" + strconv.Itoa(page) + "&limit=" + strconv.Itoa(pagination.DefaultLimit)
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var res struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/login", "", service.LoginRequest{Email: email, Password: password}, &res); err != nil {
		return "", err
	}
	return res.AccessToken, nil
}

func (c *Client) Me(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	if err := c.getJSON(ctx, "/auth/me", token, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) OrderSummary(ctx context.Context, token string) (model.OrderSummary, error) {
	var summary model.OrderSummary
	err := c.getJSON(ctx, "/orders/summary", token, &summary)
	return summary, err
}

func (c *Client) ListOrders(ctx context.Context, token string, page int, status string) (pagination.Page[service.OrderResponse], error) {
	var out pagination.Page[service.OrderResponse]
	path := "/orders" + pageQuery(page)
	if status != "" {
		path += "&status=" + url.QueryEscape(status)
	}
	err := c.getJSON(ctx, path, token, &out)
	return out, err
}

// OrderChoices returns the newest orders, as many as one page allows, for pickers.
func (c *Client) OrderChoices(ctx context.Context, token string) ([]service.OrderResponse, error) {
	var out pagination.Page[service.OrderResponse]
	path := "/orders?page=1&limit=" + strconv.Itoa(pagination.MaxLimit)
	if err := c.getJSON(ctx, path, token, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) ListSuppliers(ctx context.Context, token string, page int) (pagination.Page[model.Supplier], error) {
	var out pagination.Page[model.Supplier]
	err := c.getJSON(ctx, "/suppliers"+pageQuery(page), token, &out)
	return out, err
}

func (c *Client) CreateSupplier(ctx context.Context, token, name string) error {
	return c.sendJSON(ctx, http.MethodPost, "/suppliers", token, service.CreatePartyRequest{Name: name}, nil)
}

func (c *Client) UpdateSupplier(ctx context.Context, token, id, name string) error {
	return c.sendJSON(ctx, http.MethodPatch, "/suppliers/"+url.PathEscape(id), token, service.UpdatePartyRequest{Name: &name}, nil)
}

func (c *Client) DeleteSupplier(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/suppliers/"+url.PathEscape(id), token, nil, "", nil)
}

func (c *Client) ListForwarders(ctx context.Context, token string, page int) (pagination.Page[model.Forwarder], error) {
	var out pagination.Page[model.Forwarder]
	err := c.getJSON(ctx, "/forwarders"+pageQuery(page), token, &out)
	return out, err
}

func (c *Client) CreateForwarder(ctx context.Context, token, name string) error {
	return c.sendJSON(ctx, http.MethodPost, "/forwarders", token, service.CreatePartyRequest{Name: name}, nil)
}

func (c *Client) UpdateForwarder(ctx context.Context, token, id, name string) error {
	return c.sendJSON(ctx, http.MethodPatch, "/forwarders/"+url.PathEscape(id), token, service.UpdatePartyRequest{Name: &name}, nil)
}

func (c *Client) DeleteForwarder(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/forwarders/"+url.PathEscape(id), token, nil, "", nil)
}

func (c *Client) ListInvoices(ctx context.Context, token string, page int) (pagination.Page[model.Invoice], error) {
	var out pagination.Page[model.Invoice]
	err := c.getJSON(ctx, "/invoices"+pageQuery(page), token, &out)
	return out, err
}

func (c *Client) GetInvoice(ctx context.Context, token, id string) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := c.getJSON(ctx, "/invoices/"+url.PathEscape(id), token, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (c *Client) CreateInvoice(ctx context.Context, token string, req service.CreateInvoiceRequest) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := c.sendJSON(ctx, http.MethodPost, "/invoices", token, req, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UpdateInvoice sends only the fields set on req.
func (c *Client) UpdateInvoice(ctx context.Context, token, id string, req service.UpdateInvoiceRequest) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := c.sendJSON(ctx, http.MethodPatch, "/invoices/"+url.PathEscape(id), token, req, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UploadDocument posts content as the multipart "file" field.
func (c *Client) UploadDocument(ctx context.Context, token, invoiceID, filename, contentType string, content io.Reader) (*model.InvoiceDocument, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", multipartFileDisposition(filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var doc model.InvoiceDocument
	path := "/invoices/" + url.PathEscape(invoiceID) + "/documents"
	if err := c.do(ctx, http.MethodPost, path, token, &buf, mw.FormDataContentType(), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) DeleteDocument(ctx context.Context, token, invoiceID, documentID string) error {
	path := "/invoices/" + url.PathEscape(invoiceID) + "/documents/" + url.PathEscape(documentID)
	return c.do(ctx, http.MethodDelete, path, token, nil, "", nil)
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func multipartFileDisposition(filename string) string {
	return `form-data; name="file"; filename="` + quoteEscaper.Replace(filename) + `"`
}
