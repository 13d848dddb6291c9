package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"freightdesk/internal/service"
	"freightdesk/pkg/pagination"

	"github.com/gin-gonic/gin"
)

// uploadLimit leaves room for the multipart envelope around a maximum-size file.
const uploadLimit = service.MaxUploadSize + 1<<20

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return pagination.DefaultPage
	}
	return page
}

func (s *Server) overview(c *gin.Context) {
	summary, err := s.client.OrderSummary(c.Request.Context(), token(c))
	if err != nil {
		s.apiFailure(c, err)
		return
	}
	recent, err := s.client.ListOrders(c.Request.Context(), token(c), 1, "")
	if err != nil {
		s.apiFailure(c, err)
		return
	}
	s.render(c, http.StatusOK, "overview.html", gin.H{
		"Title":   "Overview",
		"Active":  "overview",
		"Summary": summary,
		"Recent":  recent.Data,
	})
}

func (s *Server) orders(c *gin.Context) {
	status := c.Query("status")
	page, err := s.client.ListOrders(c.Request.Context(), token(c), pageParam(c), status)
	if err != nil {
		s.apiFailure(c, err)
		return
	}
	s.render(c, http.StatusOK, "orders.html", gin.H{
		"Title":  "Orders",
		"Active": "orders",
		"Page":   page,
		"Status": status,
	})
}

func (s *Server) suppliers(c *gin.Context) {
	page, err := s.client.ListSuppliers(c.Request.Context(), token(c), pageParam(c))
	if err != nil {
		s.apiFailure(c, err)
		return
	}
	s.render(c, http.StatusOK, "parties.html", gin.H{
		"Title":  "Suppliers",
		"Active": "suppliers",
		"Base":   "/dashboard/suppliers",
		"Data":   page.Data,
		"Meta":   page.Meta,
		"Error":  c.Query("error"),
	})
}

func (s *Server) createSupplier(c *gin.Context) {
	if err := s.client.CreateSupplier(c.Request.Context(), token(c), strings.TrimSpace(c.PostForm("name"))); err != nil {
		s.actionFailure(c, "/dashboard/suppliers", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard/suppliers")
}

func (s *Server) updateSupplier(c *gin.Context) {
	if err := s.client.UpdateSupplier(c.Request.Context(), token(c), c.Param("id"), strings.TrimSpace(c.PostForm("name"))); err != nil {
		s.actionFailure(c, "/dashboard/suppliers", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard/suppliers")
}

func (s *Server) deleteSupplier(c *gin.Context) {
	if err := s.client.DeleteSupplier(c.Request.Context(), token(c), c.Param("id")); err != nil {
		s.actionFailure(c, "/dashboard/suppliers", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard/suppliers")
}

func (s *Server) forwarders(c *gin.Context) {
	page, err := s.client.ListForwarders(c.Request.Context(), token(c), pageParam(c))
	if err != nil {
		s.apiFailure(c, err)
		return
	}
	s.render(c, http.StatusOK, "parties.html", gin.H{
		"Title":  "Forwarders",
		"Active": "forwarders",
		"Base":   "/dashboard/forwarders",
		"Data":   page.Data,
		"Meta":   page.Meta,
		"Error":  c.Query("error"),
	})
}

func (s *Server) createForwarder(c *gin.Context) {
	if err := s.client.CreateForwarder(c.Request.Context(), token(c), strings.TrimSpace(c.PostForm("name"))); err != nil {
		s.actionFailure(c, "/dashboard/forwarders", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard/forwarders")
}

func (s *Server) updateForwarder(c *gin.Context) {
	if err := s.client.UpdateForwarder(c.Request.Context(), token(c), c.Param("id"), strings.TrimSpace(c.PostForm("name"))); err != nil {
		s.actionFailure(c, "/dashboard/forwarders", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard/forwarders")
}

func (s *Server) deleteForwarder(c *gin.Context) {
	if err := s.client.DeleteForwarder(c.Request.Context(), token(c), c.Param("id")); err != nil {
		s.actionFailure(c, "/dashboard/forwarders", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard/forwarders")
}

func (s *Server) invoices(c *gin.Context) {
	page, err := s.client.ListInvoices(c.Request.Context(), token(c), pageParam(c))
	if err != nil {
		s.apiFailure(c, err)
		return
	}
	orders, err := s.client.OrderChoices(c.Request.Context(), token(c))
	if err != nil {
		s.apiFailure(c, err)
		return
	}
	s.render(c, http.StatusOK, "invoices.html", gin.H{
		"Title":  "Invoices",
		"Active": "invoices",
		"Page":   page,
		"Orders": orders,
		"Today":  time.Now().Format(dateLayout),
		"Error":  c.Query("error"),
	})
}

const dateLayout = "2006-01-02"

const badDate = "Invoice date must be YYYY-MM-DD"

// formDate reads an optional yyyy-mm-dd field as UTC midnight. ok is false only for a
// value that does not parse.
func formDate(c *gin.Context, field string) (date *time.Time, ok bool) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// createInvoice saves the invoice and opens its page so attachments can be added.
func (s *Server) createInvoice(c *gin.Context) {
	const back = "/dashboard/invoices"
	date, ok := formDate(c, "invoiceDate")
	if !ok {
		c.Redirect(http.StatusSeeOther, back+"?error="+url.QueryEscape(badDate))
		return
	}
	invoice, err := s.client.CreateInvoice(c.Request.Context(), token(c), service.CreateInvoiceRequest{
		OrderID:       c.PostForm("orderId"),
		InvoiceNumber: strings.TrimSpace(c.PostForm("invoiceNumber")),
		InvoiceDate:   date,
	})
	if err != nil {
		s.actionFailure(c, back, err)
		return
	}
	c.Redirect(http.StatusSeeOther, back+"/"+invoice.ID.String())
}

func (s *Server) invoiceDetail(c *gin.Context) {
	invoice, err := s.client.GetInvoice(c.Request.Context(), token(c), c.Param("id"))
	if err != nil {
		s.apiFailure(c, err)
		return
	}
	orders, err := s.client.OrderChoices(c.Request.Context(), token(c))
	if err != nil {
		s.apiFailure(c, err)
		return
	}
	s.render(c, http.StatusOK, "invoice.html", gin.H{
		"Title":   "Invoice " + invoice.InvoiceNumber,
		"Active":  "invoices",
		"Invoice": invoice,
		"Orders":  orders,
		"Error":   c.Query("error"),
	})
}

// updateInvoice sends only the fields the form filled in.
func (s *Server) updateInvoice(c *gin.Context) {
	back := "/dashboard/invoices/" + c.Param("id")
	var req service.UpdateInvoiceRequest
	if v := c.PostForm("orderId"); v != "" {
		req.OrderID = &v
	}
	if v := strings.TrimSpace(c.PostForm("invoiceNumber")); v != "" {
		req.InvoiceNumber = &v
	}
	date, ok := formDate(c, "invoiceDate")
	if !ok {
		c.Redirect(http.StatusSeeOther, back+"?error="+url.QueryEscape(badDate))
		return
	}
	req.InvoiceDate = date

	if _, err := s.client.UpdateInvoice(c.Request.Context(), token(c), c.Param("id"), req); err != nil {
		s.actionFailure(c, back, err)
		return
	}
	c.Redirect(http.StatusSeeOther, back)
}

func (s *Server) uploadDocument(c *gin.Context) {
	back := "/dashboard/invoices/" + c.Param("id")
	tooLarge := back + "?error=" + url.QueryEscape("File exceeds the maximum size of 10 MB")

	if c.Request.ContentLength > uploadLimit {
		c.Redirect(http.StatusSeeOther, tooLarge)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, uploadLimit)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Redirect(http.StatusSeeOther, tooLarge)
			return
		}
		c.Redirect(http.StatusSeeOther, back+"?error=File+is+required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.Redirect(http.StatusSeeOther, back+"?error=Could+not+read+file")
		return
	}
	defer file.Close()

	_, err = s.client.UploadDocument(c.Request.Context(), token(c), c.Param("id"),
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		s.actionFailure(c, back, err)
		return
	}
	c.Redirect(http.StatusSeeOther, back)
}

func (s *Server) deleteDocument(c *gin.Context) {
	back := "/dashboard/invoices/" + c.Param("id")
	if err := s.client.DeleteDocument(c.Request.Context(), token(c), c.Param("id"), c.Param("documentId")); err != nil {
		s.actionFailure(c, back, err)
		return
	}
	c.Redirect(http.StatusSeeOther, back)
}
