package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/services"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/dto"
)

type MockInvoiceService struct {
	mock.Mock
}

var _ portssvc.InvoiceSvcFacade = (*MockInvoiceService)(nil)

func (m *MockInvoiceService) IngestFiles(ctx context.Context, files []dto.IngestFileInput, source domain.SourceType, actorID *int64, origin *string) []dto.IngestOutcome {
	args := m.Called(ctx, files, source, actorID, origin)
	return args.Get(0).([]dto.IngestOutcome)
}

func (m *MockInvoiceService) GetInvoice(ctx context.Context, invoiceID int64) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceService) UpdateInvoice(ctx context.Context, invoiceID int64, req dto.UpdateInvoiceRequest, actorID *int64, origin *string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, req, actorID, origin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) ApproveInvoice(ctx context.Context, invoiceID int64, approverID int64, origin *string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, approverID, origin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) RejectInvoice(ctx context.Context, invoiceID int64, actorID *int64, origin *string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, actorID, origin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) SoftDeleteInvoice(ctx context.Context, invoiceID int64, actorID *int64, origin *string) error {
	args := m.Called(ctx, invoiceID, actorID, origin)
	return args.Error(0)
}

func (m *MockInvoiceService) ExecuteTransfer(ctx context.Context, invoiceID int64, actorID *int64, origin *string) (*domain.Invoice, *domain.PayableConfirmation, error) {
	args := m.Called(ctx, invoiceID, actorID, origin)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Invoice), args.Get(1).(*domain.PayableConfirmation), args.Error(2)
}

func (m *MockInvoiceService) VerifyFileHash(ctx context.Context, invoiceID int64) (*dto.HashVerificationResponse, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.HashVerificationResponse), args.Error(1)
}

func TestFetchAndIngest_FeedsAttachmentsThroughThePipeline(t *testing.T) {
	ctx := context.Background()
	mockFetcher := new(MockMailFetcher)
	mockInvoiceSvc := new(MockInvoiceService)
	svc := services.NewMailboxService(mockFetcher, mockInvoiceSvc)

	docs := []portssvc.MailDocument{
		{
			MessageID: "msg-1",
			Subject:   "3月分請求書",
			Sender:    "billing@sample.co.jp",
			Attachments: []portssvc.MailAttachment{
				{Filename: "seikyusho.pdf", Data: []byte("pdf bytes")},
			},
		},
	}
	mockFetcher.On("FetchInvoiceMail", ctx).Return(docs, nil).Once()

	var received []dto.IngestFileInput
	mockInvoiceSvc.On("IngestFiles", ctx, mock.AnythingOfType("[]dto.IngestFileInput"), domain.SourceMail, (*int64)(nil), (*string)(nil)).
		Run(func(args mock.Arguments) { received = args.Get(1).([]dto.IngestFileInput) }).
		Return([]dto.IngestOutcome{{Invoice: &domain.Invoice{ID: 5}}}).Once()

	resp, err := svc.FetchAndIngest(ctx, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.CreatedCount)
	assert.Equal(t, []int64{5}, resp.InvoiceIDs)
	assert.Empty(t, resp.Errors)

	require.Len(t, received, 1)
	assert.Equal(t, "seikyusho.pdf", received[0].Filename)
	assert.Equal(t, "application/pdf", received[0].MimeType)
	require.NotNil(t, received[0].Description)
	assert.Equal(t, "From: billing@sample.co.jp Subject: 3月分請求書", *received[0].Description)
}

func TestFetchAndIngest_PerDocumentErrorsAreCollected(t *testing.T) {
	ctx := context.Background()
	mockFetcher := new(MockMailFetcher)
	mockInvoiceSvc := new(MockInvoiceService)
	svc := services.NewMailboxService(mockFetcher, mockInvoiceSvc)

	docs := []portssvc.MailDocument{
		{MessageID: "msg-1", Attachments: []portssvc.MailAttachment{{Filename: "a.pdf", Data: []byte("x")}}},
		{MessageID: "msg-2", Attachments: []portssvc.MailAttachment{{Filename: "b.pdf", Data: []byte("y")}}},
	}
	mockFetcher.On("FetchInvoiceMail", ctx).Return(docs, nil).Once()

	mockInvoiceSvc.On("IngestFiles", ctx, mock.AnythingOfType("[]dto.IngestFileInput"), domain.SourceMail, (*int64)(nil), (*string)(nil)).
		Return([]dto.IngestOutcome{{Err: errors.New("storage full")}}).Once()
	mockInvoiceSvc.On("IngestFiles", ctx, mock.AnythingOfType("[]dto.IngestFileInput"), domain.SourceMail, (*int64)(nil), (*string)(nil)).
		Return([]dto.IngestOutcome{{Invoice: &domain.Invoice{ID: 6}}}).Once()

	resp, err := svc.FetchAndIngest(ctx, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.CreatedCount)
	assert.Equal(t, []int64{6}, resp.InvoiceIDs)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "msg-1")
}

func TestFetchAndIngest_FetchFailurePropagates(t *testing.T) {
	ctx := context.Background()
	mockFetcher := new(MockMailFetcher)
	mockInvoiceSvc := new(MockInvoiceService)
	svc := services.NewMailboxService(mockFetcher, mockInvoiceSvc)

	mockFetcher.On("FetchInvoiceMail", ctx).Return(nil, errors.New("oauth token expired")).Once()

	_, err := svc.FetchAndIngest(ctx, nil, nil)

	assert.Error(t, err)
	mockInvoiceSvc.AssertNotCalled(t, "IngestFiles",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
