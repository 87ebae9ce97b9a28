package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mietwerk/billing-core/internal/domain/archive"
	ierr "github.com/mietwerk/billing-core/internal/errors"
	"github.com/mietwerk/billing-core/internal/httpclient"
	"github.com/samber/lo"
)

// pdfCacheableStatuses are the invoice statuses stable enough to mirror
// the PDF for; a draft invoice's PDF is still changing
var pdfCacheableStatuses = []string{"open", "paid", "uncollectible", "void"}

const defaultCurrency = "eur"

// InvoiceSnapshot is the normalized invoice payload handed to the
// archiver. Amounts are in Stripe minor units, timestamps epoch seconds.
type InvoiceSnapshot struct {
	InvoiceID        string
	CustomerID       string
	Number           string
	Status           string
	Currency         string
	Total            int64
	Tax              int64
	Subtotal         int64
	Created          int64
	PeriodStart      int64
	PeriodEnd        int64
	CustomerEmail    string
	CustomerName     string
	HostedInvoiceURL string
	PDFURL           string
	LineCount        int
}

// ArchiveService mirrors Stripe invoices into the local archive table
// and opportunistically caches their PDFs in object storage. Archival is
// best-effort bookkeeping: every failure is logged and swallowed so it
// can never block event processing.
type ArchiveService interface {
	ArchiveInvoice(ctx context.Context, inv *InvoiceSnapshot) error
}

type archiveService struct {
	ServiceParams
}

// NewArchiveService creates a new invoice archive service
func NewArchiveService(params ServiceParams) ArchiveService {
	return &archiveService{
		ServiceParams: params,
	}
}

func (s *archiveService) ArchiveInvoice(ctx context.Context, inv *InvoiceSnapshot) error {
	if inv.InvoiceID == "" {
		return nil
	}

	// The pre-upsert row decides whether the PDF cache is still fresh
	existing, err := s.ArchiveRepo.GetByInvoiceID(ctx, inv.InvoiceID)
	if err != nil && !ierr.IsNotFound(err) {
		s.Logger.Errorw("failed to load existing invoice archive row",
			"error", err,
			"invoice_id", inv.InvoiceID,
		)
		existing = nil
	}

	row := s.buildRow(inv)
	if err := s.ArchiveRepo.Upsert(ctx, row); err != nil {
		s.Logger.Errorw("failed to upsert invoice archive row",
			"error", err,
			"invoice_id", inv.InvoiceID,
		)
		return nil
	}

	s.cachePDF(ctx, inv, row, existing)
	return nil
}

func (s *archiveService) buildRow(inv *InvoiceSnapshot) *archive.InvoiceArchive {
	row := &archive.InvoiceArchive{
		InvoiceID:        inv.InvoiceID,
		Number:           inv.Number,
		Status:           inv.Status,
		Currency:         inv.Currency,
		Total:            inv.Total,
		Tax:              inv.Tax,
		Subtotal:         inv.Subtotal,
		CustomerEmail:    inv.CustomerEmail,
		CustomerName:     inv.CustomerName,
		HostedInvoiceURL: inv.HostedInvoiceURL,
		PDFURL:           inv.PDFURL,
		UpdatedAt:        time.Now().UTC(),
	}

	if inv.CustomerID != "" {
		customerID := inv.CustomerID
		row.CustomerID = &customerID
	}
	if row.Status == "" {
		row.Status = "draft"
	}
	if row.Currency == "" {
		row.Currency = defaultCurrency
	}
	if inv.Created > 0 {
		created := time.Unix(inv.Created, 0).UTC()
		row.CreatedAt = &created
	}
	if inv.PeriodStart > 0 {
		start := time.Unix(inv.PeriodStart, 0).UTC()
		row.PeriodStart = &start
	}
	if inv.PeriodEnd > 0 {
		end := time.Unix(inv.PeriodEnd, 0).UTC()
		row.PeriodEnd = &end
	}

	// A compact extract instead of the full payload keeps archive rows
	// bounded in size
	summary, err := json.Marshal(map[string]any{
		"id":         inv.InvoiceID,
		"number":     inv.Number,
		"status":     row.Status,
		"total":      inv.Total,
		"tax":        inv.Tax,
		"subtotal":   inv.Subtotal,
		"currency":   row.Currency,
		"line_count": inv.LineCount,
	})
	if err == nil {
		row.RawSummary = string(summary)
	}

	return row
}

// cachePDF mirrors the provider-hosted PDF into object storage unless the
// cached copy is at least as fresh as the row was before this pass
func (s *archiveService) cachePDF(ctx context.Context, inv *InvoiceSnapshot, row *archive.InvoiceArchive, existing *archive.InvoiceArchive) {
	if s.S3 == nil || inv.PDFURL == "" || !lo.Contains(pdfCacheableStatuses, row.Status) {
		return
	}

	if existing != nil && existing.PDFCachedAt != nil && !existing.PDFCachedAt.Before(existing.UpdatedAt) {
		s.Logger.Debugw("invoice PDF cache is fresh, skipping download",
			"invoice_id", inv.InvoiceID,
			"cached_at", existing.PDFCachedAt,
		)
		return
	}

	storagePath := s.storagePath(inv, row)

	resp, err := s.Client.Send(ctx, &httpclient.Request{
		Method: http.MethodGet,
		URL:    inv.PDFURL,
	})
	if err != nil {
		s.Logger.Errorw("failed to download invoice PDF",
			"error", err,
			"invoice_id", inv.InvoiceID,
			"pdf_url", inv.PDFURL,
		)
		return
	}
	if resp.StatusCode != http.StatusOK {
		s.Logger.Errorw("invoice PDF download returned non-200",
			"status_code", resp.StatusCode,
			"invoice_id", inv.InvoiceID,
		)
		return
	}

	if err := s.S3.Upload(ctx, storagePath, resp.Body, "application/pdf"); err != nil {
		s.Logger.Errorw("failed to upload invoice PDF",
			"error", err,
			"invoice_id", inv.InvoiceID,
			"storage_path", storagePath,
		)
		return
	}

	if err := s.ArchiveRepo.MarkPDFCached(ctx, inv.InvoiceID, storagePath, time.Now().UTC()); err != nil {
		s.Logger.Errorw("failed to stamp PDF cache timestamp",
			"error", err,
			"invoice_id", inv.InvoiceID,
		)
		return
	}

	s.Logger.Infow("invoice PDF cached",
		"invoice_id", inv.InvoiceID,
		"storage_path", storagePath,
	)
}

// storagePath builds the deterministic object key for an invoice PDF,
// bucketed by the invoice's creation year and month
func (s *archiveService) storagePath(inv *InvoiceSnapshot, row *archive.InvoiceArchive) string {
	created := time.Now().UTC()
	if row.CreatedAt != nil {
		created = *row.CreatedAt
	}

	name := inv.Number
	if name == "" {
		name = inv.InvoiceID
	}

	return fmt.Sprintf("invoices/%04d/%02d/%s.pdf",
		created.Year(), int(created.Month()), sanitizeFileName(name))
}

// sanitizeFileName keeps object keys to a safe character set
func sanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, name)
}
