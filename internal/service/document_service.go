package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"freightdesk/internal/model"
	"freightdesk/internal/repository"
	"freightdesk/internal/storage"
	"freightdesk/internal/websocket"
	"freightdesk/pkg/apperror"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// MaxUploadSize is the largest accepted attachment (10 MiB).
const MaxUploadSize int64 = 10 << 20

// sniffLen matches mimetype's default read limit.
const sniffLen = 3072

// AllowedMimeTypes lists the attachment types accepted by Store.
var AllowedMimeTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/webp",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Upload is one incoming file as seen by the transport.
type Upload struct {
	OriginalName string
	Mimetype     string // as declared by the client; may be empty
	Content      io.Reader
}

// Download is an open attachment. Size is taken from the file on disk. The caller must close Content.
type Download struct {
	Content      io.ReadCloser
	Mimetype     string
	OriginalName string
	Size         int64
}

type DocumentService interface {
	Store(ctx context.Context, invoiceID string, upload Upload) (*model.InvoiceDocument, error)
	List(ctx context.Context, invoiceID string) ([]model.InvoiceDocument, error)
	Retrieve(ctx context.Context, invoiceID, documentID string) (*Download, error)
	Delete(ctx context.Context, invoiceID, documentID string) error
}

var documentMessages = repoMessages{
	notFound: "Document not found",
}

type documentService struct {
	documents repository.DocumentRepository
	invoices  repository.InvoiceRepository
	files     storage.FileStorage
	notifier  Notifier
	log       *zap.Logger
}

func NewDocumentService(
	documents repository.DocumentRepository,
	invoices repository.InvoiceRepository,
	files storage.FileStorage,
	notifier Notifier,
	log *zap.Logger,
) DocumentService {
	return &documentService{
		documents: documents,
		invoices:  invoices,
		files:     files,
		notifier:  notifierOrNoop(notifier),
		log:       log,
	}
}

// normalizeMimetype lower-cases and strips parameters such as "; charset=utf-8".
func normalizeMimetype(v string) string {
	v, _, _ = strings.Cut(v, ";")
	return strings.ToLower(strings.TrimSpace(v))
}

// resolveMimetype returns the declared type, or the sniffed one when the client sent none
// (or the generic octet-stream). The returned reader still yields the full content.
func resolveMimetype(declared string, content io.Reader) (string, io.Reader, error) {
	declared = normalizeMimetype(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared, content, nil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(content, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, err
	}
	head = head[:n]
	detected := normalizeMimetype(mimetype.Detect(head).String())
	return detected, io.MultiReader(bytes.NewReader(head), content), nil
}

// cleanOriginalName keeps only the base name; it is metadata and never used as a path.
func cleanOriginalName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}

func (s *documentService) Store(ctx context.Context, invoiceID string, upload Upload) (*model.InvoiceDocument, error) {
	uid, err := parseID(invoiceID, "invoice")
	if err != nil {
		return nil, err
	}

	mimeType, content, err := resolveMimetype(upload.Mimetype, upload.Content)
	if err != nil {
		return nil, apperror.Validation("Could not read uploaded file")
	}
	// type filter runs before anything touches the disk
	if !slices.Contains(AllowedMimeTypes, mimeType) {
		return nil, apperror.Validation("File type %s is not allowed", mimeType)
	}

	originalName := cleanOriginalName(upload.OriginalName)
	stored, err := s.files.Save(content, originalName, MaxUploadSize)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, apperror.Validation("File exceeds the maximum size of 10 MB")
		}
		return nil, apperror.Internal("Failed to store document", err)
	}

	exists, err := s.invoices.Exists(ctx, uid)
	if err != nil || !exists {
		s.discard(stored.Path)
		if err != nil {
			return nil, apperror.Internal("Failed to load invoice", err)
		}
		return nil, apperror.NotFound("Invoice not found")
	}

	doc := &model.InvoiceDocument{
		InvoiceID:    uid,
		Filename:     stored.Filename,
		OriginalName: originalName,
		Filepath:     stored.Path,
		Mimetype:     mimeType,
		Size:         stored.Size,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		s.discard(stored.Path)
		return nil, apperror.Internal("Failed to save document record", err)
	}

	s.log.Info("document stored",
		zap.String("invoiceId", uid.String()),
		zap.String("documentId", doc.ID.String()),
		zap.String("mimetype", mimeType),
		zap.Int64("size", stored.Size))
	s.notifier.Publish(ctx, websocket.EventDocumentUploaded, doc)
	return doc, nil
}

func (s *documentService) discard(path string) {
	if err := s.files.Remove(path); err != nil {
		s.log.Warn("failed to remove orphaned upload", zap.String("path", path), zap.Error(err))
	}
}

func (s *documentService) List(ctx context.Context, invoiceID string) ([]model.InvoiceDocument, error) {
	uid, err := parseID(invoiceID, "invoice")
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.ListByInvoice(ctx, uid)
	if err != nil {
		return nil, apperror.Internal("Failed to list documents", err)
	}
	return docs, nil
}

func (s *documentService) find(ctx context.Context, invoiceID, documentID string) (*model.InvoiceDocument, error) {
	invID, err := parseID(invoiceID, "invoice")
	if err != nil {
		return nil, err
	}
	docID, err := parseID(documentID, "document")
	if err != nil {
		return nil, err
	}
	doc, err := s.documents.FindForInvoice(ctx, invID, docID)
	if err != nil {
		return nil, documentMessages.wrap("load document", err)
	}
	return doc, nil
}

func (s *documentService) Retrieve(ctx context.Context, invoiceID, documentID string) (*Download, error) {
	doc, err := s.find(ctx, invoiceID, documentID)
	if err != nil {
		return nil, err
	}

	rc, size, err := s.files.Open(doc.Filepath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, apperror.NotFound("File not found on disk")
		}
		return nil, apperror.Internal("Failed to open document", err)
	}

	return &Download{
		Content:      rc,
		Mimetype:     doc.Mimetype,
		OriginalName: doc.OriginalName,
		Size:         size,
	}, nil
}

// Delete removes the file first, then the row. A missing file is fine. If the row delete
// fails after the file is gone there is no compensation; the failure is logged.
func (s *documentService) Delete(ctx context.Context, invoiceID, documentID string) error {
	doc, err := s.find(ctx, invoiceID, documentID)
	if err != nil {
		return err
	}

	if err := s.files.Remove(doc.Filepath); err != nil {
		return apperror.Internal("Failed to remove document file", err)
	}
	if err := s.documents.Delete(ctx, doc.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("Document not found")
		}
		s.log.Error("document file removed but row delete failed",
			zap.String("documentId", doc.ID.String()), zap.Error(err))
		return apperror.Internal("Failed to delete document", err)
	}

	s.notifier.Publish(ctx, websocket.EventDocumentDeleted, map[string]string{
		"id":        doc.ID.String(),
		"invoiceId": doc.InvoiceID.String(),
	})
	return nil
}
