package service

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/mietwerk/billing-core/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type ArchiveServiceSuite struct {
	testutil.BaseServiceTestSuite
	service     ArchiveService
	archiveRepo *testutil.InMemoryArchiveStore
	httpClient  *testutil.MockHTTPClient
	objectStore *testutil.InMemoryObjectStore
}

func TestArchiveService(t *testing.T) {
	suite.Run(t, new(ArchiveServiceSuite))
}

func (s *ArchiveServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.archiveRepo = s.GetStores().ArchiveRepo.(*testutil.InMemoryArchiveStore)
	s.httpClient = testutil.NewMockHTTPClient()
	s.objectStore = testutil.NewInMemoryObjectStore()

	s.service = NewArchiveService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		ArchiveRepo: s.GetStores().ArchiveRepo,
		Client:      s.httpClient,
		S3:          s.objectStore,
	})
}

func (s *ArchiveServiceSuite) invoice() *InvoiceSnapshot {
	created := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	return &InvoiceSnapshot{
		InvoiceID:        "in_1",
		CustomerID:       "cus_123",
		Number:           "MW-2024-0042",
		Status:           "paid",
		Currency:         "eur",
		Total:            11900,
		Tax:              1900,
		Subtotal:         10000,
		Created:          created.Unix(),
		PeriodStart:      created.Add(-30 * 24 * time.Hour).Unix(),
		PeriodEnd:        created.Unix(),
		CustomerEmail:    "tenant@example.com",
		CustomerName:     "Example Tenant",
		HostedInvoiceURL: "https://invoice.stripe.com/i/in_1",
		PDFURL:           "https://files.stripe.com/invoices/in_1.pdf",
		LineCount:        2,
	}
}

func (s *ArchiveServiceSuite) registerPDF() {
	s.httpClient.RegisterResponse("/invoices/in_1.pdf", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte("%PDF-1.4 fake"),
	})
}

func (s *ArchiveServiceSuite) TestUpsertKeepsLatestValues() {
	inv := s.invoice()
	inv.PDFURL = ""
	s.NoError(s.service.ArchiveInvoice(s.GetContext(), inv))

	updated := s.invoice()
	updated.PDFURL = ""
	updated.Total = 14900
	s.NoError(s.service.ArchiveInvoice(s.GetContext(), updated))

	row, err := s.archiveRepo.GetByInvoiceID(s.GetContext(), "in_1")
	s.NoError(err)
	s.Equal(int64(14900), row.Total)
	s.Require().NotNil(row.CustomerID)
	s.Equal("cus_123", *row.CustomerID)
	s.Contains(row.RawSummary, `"line_count":2`)
}

func (s *ArchiveServiceSuite) TestDefaultsForMissingFields() {
	inv := s.invoice()
	inv.Status = ""
	inv.Currency = ""
	inv.CustomerID = ""
	inv.PDFURL = ""
	s.NoError(s.service.ArchiveInvoice(s.GetContext(), inv))

	row, err := s.archiveRepo.GetByInvoiceID(s.GetContext(), "in_1")
	s.NoError(err)
	s.Equal("draft", row.Status)
	s.Equal("eur", row.Currency)
	s.Nil(row.CustomerID)
}

func (s *ArchiveServiceSuite) TestPDFMirroredToDeterministicPath() {
	s.registerPDF()
	s.NoError(s.service.ArchiveInvoice(s.GetContext(), s.invoice()))

	wantPath := "invoices/2024/03/MW-2024-0042.pdf"
	body, ok := s.objectStore.Object(wantPath)
	s.True(ok, "expected object at %s, got %v", wantPath, s.objectStore.Uploads())
	s.Equal([]byte("%PDF-1.4 fake"), body)

	row, err := s.archiveRepo.GetByInvoiceID(s.GetContext(), "in_1")
	s.NoError(err)
	s.Require().NotNil(row.PDFStoragePath)
	s.Equal(wantPath, *row.PDFStoragePath)
	s.NotNil(row.PDFCachedAt)
}

func (s *ArchiveServiceSuite) TestFreshCacheSkipsDownload() {
	s.registerPDF()
	s.NoError(s.service.ArchiveInvoice(s.GetContext(), s.invoice()))
	s.Equal(1, s.httpClient.RequestCount())
	s.Equal(1, s.objectStore.UploadCount())

	// The cache stamp is newer than the row update, so the second pass
	// must not download or upload anything
	s.NoError(s.service.ArchiveInvoice(s.GetContext(), s.invoice()))
	s.Equal(1, s.httpClient.RequestCount())
	s.Equal(1, s.objectStore.UploadCount())
}

func (s *ArchiveServiceSuite) TestStaleCacheIsRefreshed() {
	s.registerPDF()
	s.NoError(s.service.ArchiveInvoice(s.GetContext(), s.invoice()))

	// Backdate the cache stamp so it predates the row update
	row, err := s.archiveRepo.GetByInvoiceID(s.GetContext(), "in_1")
	s.NoError(err)
	stale := row.UpdatedAt.Add(-time.Hour)
	s.NoError(s.archiveRepo.MarkPDFCached(s.GetContext(), "in_1", *row.PDFStoragePath, stale))

	s.NoError(s.service.ArchiveInvoice(s.GetContext(), s.invoice()))
	s.Equal(2, s.httpClient.RequestCount())
	s.Equal(2, s.objectStore.UploadCount())
}

func (s *ArchiveServiceSuite) TestDraftInvoiceIsNotCached() {
	s.registerPDF()
	inv := s.invoice()
	inv.Status = "draft"
	s.NoError(s.service.ArchiveInvoice(s.GetContext(), inv))

	s.Equal(0, s.httpClient.RequestCount())
	s.Equal(0, s.objectStore.UploadCount())
}

func (s *ArchiveServiceSuite) TestCachingDisabledWithoutObjectStore() {
	s.service = NewArchiveService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		ArchiveRepo: s.GetStores().ArchiveRepo,
		Client:      s.httpClient,
	})

	s.registerPDF()
	s.NoError(s.service.ArchiveInvoice(s.GetContext(), s.invoice()))

	s.Equal(0, s.httpClient.RequestCount())

	// The archive row itself is still written
	_, err := s.archiveRepo.GetByInvoiceID(s.GetContext(), "in_1")
	s.NoError(err)
}

func (s *ArchiveServiceSuite) TestDownloadFailureIsSwallowed() {
	s.httpClient.RegisterResponse("/invoices/in_1.pdf", testutil.MockResponse{
		StatusCode: http.StatusBadGateway,
		Body:       []byte("upstream error"),
	})

	s.NoError(s.service.ArchiveInvoice(s.GetContext(), s.invoice()))

	s.Equal(0, s.objectStore.UploadCount())
	row, err := s.archiveRepo.GetByInvoiceID(s.GetContext(), "in_1")
	s.NoError(err)
	s.Nil(row.PDFCachedAt)
}

func (s *ArchiveServiceSuite) TestStoragePathSanitized() {
	s.registerPDF()
	inv := s.invoice()
	inv.Number = "MW/2024 #42"
	s.NoError(s.service.ArchiveInvoice(s.GetContext(), inv))

	wantPath := fmt.Sprintf("invoices/2024/03/%s.pdf", "MW-2024--42")
	_, ok := s.objectStore.Object(wantPath)
	s.True(ok, "uploads: %v", s.objectStore.Uploads())
}
