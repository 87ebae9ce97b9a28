package archive

import (
	"time"
)

// InvoiceArchive is the local mirror of a Stripe invoice. One row per
// invoice id, overwritten on every lifecycle event so it always reflects
// the latest provider state. The PDF columns track the copy mirrored into
// our own object storage.
type InvoiceArchive struct {
	// InvoiceID is the Stripe invoice id, the primary key
	InvoiceID string `json:"invoice_id" gorm:"primaryKey;column:invoice_id"`
	// CustomerID is nil when the event payload did not carry a plain
	// string customer id
	CustomerID *string `json:"customer_id" gorm:"column:customer_id;index"`

	Number   string `json:"number" gorm:"column:number"`
	Status   string `json:"status" gorm:"column:status"`
	Currency string `json:"currency" gorm:"column:currency"`

	// Amounts stay in Stripe minor units; the archive is bookkeeping,
	// not money math
	Total    int64 `json:"total" gorm:"column:total"`
	Tax      int64 `json:"tax" gorm:"column:tax"`
	Subtotal int64 `json:"subtotal" gorm:"column:subtotal"`

	CreatedAt   *time.Time `json:"created_at" gorm:"column:created_at"`
	PeriodStart *time.Time `json:"period_start" gorm:"column:period_start"`
	PeriodEnd   *time.Time `json:"period_end" gorm:"column:period_end"`

	CustomerEmail string `json:"customer_email" gorm:"column:customer_email"`
	CustomerName  string `json:"customer_name" gorm:"column:customer_name"`

	HostedInvoiceURL string `json:"hosted_invoice_url" gorm:"column:hosted_invoice_url"`
	PDFURL           string `json:"pdf_url" gorm:"column:pdf_url"`

	// RawSummary is a compact extract of the payload, bounded on purpose
	// so archive rows stay small
	RawSummary string `json:"raw_summary" gorm:"column:raw_summary;type:text"`

	// PDFStoragePath and PDFCachedAt track the mirrored copy in object
	// storage; the PDF is only re-fetched when the cache predates the
	// row's last update
	PDFStoragePath *string    `json:"pdf_storage_path" gorm:"column:pdf_storage_path"`
	PDFCachedAt    *time.Time `json:"pdf_cached_at" gorm:"column:pdf_cached_at"`

	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (InvoiceArchive) TableName() string {
	return "invoice_archives"
}
