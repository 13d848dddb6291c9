package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"freightdesk/internal/service"
	"freightdesk/pkg/apperror"
	"freightdesk/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipart framing allowance on top of the file limit
const multipartOverhead = 1 << 20

type DocumentHandler struct {
	documentService service.DocumentService
	log             *zap.Logger
}

func NewDocumentHandler(documentService service.DocumentService, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, log: log}
}

func (h *DocumentHandler) RegisterRoutes(router *gin.RouterGroup) {
	docs := router.Group("/invoices/:invoiceId/documents")
	{
		docs.POST("", h.UploadDocument)
		docs.GET("", h.ListDocuments)
		docs.GET("/:documentId/download", h.DownloadDocument)
		docs.DELETE("/:documentId", h.DeleteDocument)
	}
}

// UploadDocument attaches a file to an invoice
// @Summary      Upload invoice document
// @Description  Accepts PDF, JPEG, PNG, WEBP, Word and Excel files up to 10 MB.
// @Tags         documents
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        invoiceId  path      string  true  "Invoice ID"
// @Param        file       formData  file    true  "Document"
// @Success      201        {object}  model.InvoiceDocument
// @Failure      400        {object}  response.Response
// @Router       /invoices/{invoiceId}/documents [post]
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxUploadSize+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "File exceeds the maximum size of 10 MB"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "File is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.log, apperror.Internal("Failed to read uploaded file", err))
		return
	}
	defer file.Close()

	doc, err := h.documentService.Store(c.Request.Context(), c.Param("invoiceId"), service.Upload{
		OriginalName: fileHeader.Filename,
		Mimetype:     fileHeader.Header.Get("Content-Type"),
		Content:      file,
	})
	if err != nil {
		// an unknown invoice is a bad upload target, not a missing resource
		if apperror.Is(err, apperror.KindNotFound) {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, apperror.Message(err)))
			return
		}
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// ListDocuments returns every attachment of the invoice, newest first
// @Summary      List invoice documents
// @Tags         documents
// @Security     BearerAuth
// @Produce      json
// @Param        invoiceId  path      string  true  "Invoice ID"
// @Success      200        {array}   model.InvoiceDocument
// @Router       /invoices/{invoiceId}/documents [get]
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	docs, err := h.documentService.List(c.Request.Context(), c.Param("invoiceId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// DownloadDocument streams the stored file
// @Summary      Download invoice document
// @Tags         documents
// @Security     BearerAuth
// @Produce      octet-stream
// @Param        invoiceId   path  string  true  "Invoice ID"
// @Param        documentId  path  string  true  "Document ID"
// @Success      200  {file}    file
// @Failure      404  {object}  response.Response
// @Router       /invoices/{invoiceId}/documents/{documentId}/download [get]
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	dl, err := h.documentService.Retrieve(c.Request.Context(), c.Param("invoiceId"), c.Param("documentId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer dl.Content.Close()

	c.DataFromReader(http.StatusOK, dl.Size, dl.Mimetype, dl.Content, map[string]string{
		"Content-Disposition": ContentDisposition(dl.OriginalName),
	})
}

// DeleteDocument removes the file and then its record
// @Summary      Delete invoice document
// @Tags         documents
// @Security     BearerAuth
// @Produce      json
// @Param        invoiceId   path  string  true  "Invoice ID"
// @Param        documentId  path  string  true  "Document ID"
// @Success      200  {object}  response.Message
// @Failure      404  {object}  response.Response
// @Router       /invoices/{invoiceId}/documents/{documentId} [delete]
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	if err := h.documentService.Delete(c.Request.Context(), c.Param("invoiceId"), c.Param("documentId")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Ack("Document deleted successfully"))
}

var dispositionEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r", "", "\n", "")

// ContentDisposition builds an attachment header for name. Non-ASCII names also get an
// RFC 5987 filename* parameter.
func ContentDisposition(name string) string {
	value := `attachment; filename="` + dispositionEscaper.Replace(name) + `"`
	for _, r := range name {
		if r > 0x7e || r < 0x20 {
			value += "; filename*=UTF-8''" + url.PathEscape(name)
			break
		}
	}
	return value
}
