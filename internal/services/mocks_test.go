package services

import (
	"context"
	"sync"
	"time"

	"github.com/shgbook/shgbook-api/internal/models"
	"github.com/shgbook/shgbook-api/internal/repository"
	"github.com/shgbook/shgbook-api/internal/settings"
)

// Mock PaymentRepository
type mockPaymentRepository struct {
	repository.PaymentRepository
	mockFindByID         func(ctx context.Context, id uint) (*models.Payment, error)
	mockFindUnpaid       func(ctx context.Context) ([]models.Payment, error)
	mockFindByLoan       func(ctx context.Context, loanID uint) ([]models.Payment, error)
	mockCreateBatch      func(ctx context.Context, payments []models.Payment) error
	mockUpdate           func(ctx context.Context, payment *models.Payment) error
	mockMarkReminderSent func(ctx context.Context, ids []uint) error
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, nil
}
func (m *mockPaymentRepository) FindUnpaid(ctx context.Context) ([]models.Payment, error) {
	if m.mockFindUnpaid != nil {
		return m.mockFindUnpaid(ctx)
	}
	return nil, nil
}
func (m *mockPaymentRepository) FindByLoan(ctx context.Context, loanID uint) ([]models.Payment, error) {
	if m.mockFindByLoan != nil {
		return m.mockFindByLoan(ctx, loanID)
	}
	return nil, nil
}
func (m *mockPaymentRepository) CreateBatch(ctx context.Context, payments []models.Payment) error {
	if m.mockCreateBatch != nil {
		return m.mockCreateBatch(ctx, payments)
	}
	return nil
}
func (m *mockPaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, payment)
	}
	return nil
}
func (m *mockPaymentRepository) MarkReminderSent(ctx context.Context, ids []uint) error {
	if m.mockMarkReminderSent != nil {
		return m.mockMarkReminderSent(ctx, ids)
	}
	return nil
}

// Mock LoanRepository
type mockLoanRepository struct {
	repository.LoanRepository
	mockFindByID       func(ctx context.Context, id uint) (*models.Loan, error)
	mockFindAll        func(ctx context.Context) ([]models.Loan, error)
	mockCreate         func(ctx context.Context, loan *models.Loan) error
	mockUpdateStatus   func(ctx context.Context, id uint, status string) error
	mockNextLoanNumber func(ctx context.Context) (string, error)
}

func (m *mockLoanRepository) FindByID(ctx context.Context, id uint) (*models.Loan, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, nil
}
func (m *mockLoanRepository) FindAll(ctx context.Context) ([]models.Loan, error) {
	if m.mockFindAll != nil {
		return m.mockFindAll(ctx)
	}
	return nil, nil
}
func (m *mockLoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, loan)
	}
	return nil
}
func (m *mockLoanRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	if m.mockUpdateStatus != nil {
		return m.mockUpdateStatus(ctx, id, status)
	}
	return nil
}
func (m *mockLoanRepository) ReplaceBorrowers(ctx context.Context, loanID uint, borrowers []models.LoanBorrower) error {
	return nil
}
func (m *mockLoanRepository) NextLoanNumber(ctx context.Context) (string, error) {
	if m.mockNextLoanNumber != nil {
		return m.mockNextLoanNumber(ctx)
	}
	return "SHG001", nil
}

// Mock BorrowerRepository
type mockBorrowerRepository struct {
	repository.BorrowerRepository
	mockFindByID func(ctx context.Context, id uint) (*models.Borrower, error)
}

func (m *mockBorrowerRepository) FindByID(ctx context.Context, id uint) (*models.Borrower, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return &models.Borrower{ID: id, Name: "Test Borrower", Phone: "9876543210"}, nil
}

// Mock NotificationLogRepository that records every entry. Dispatch writes
// from multiple goroutines, so access is guarded.
type mockLogRepository struct {
	repository.NotificationLogRepository
	mu      sync.Mutex
	entries []models.NotificationLog

	mockFindRecent func(ctx context.Context, since time.Time) ([]models.NotificationLog, error)
}

func (m *mockLogRepository) Create(ctx context.Context, log *models.NotificationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *log)
	return nil
}

func (m *mockLogRepository) FindRecent(ctx context.Context, since time.Time) ([]models.NotificationLog, error) {
	if m.mockFindRecent != nil {
		return m.mockFindRecent(ctx, since)
	}
	return nil, nil
}

func (m *mockLogRepository) all() []models.NotificationLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.NotificationLog, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *mockLogRepository) byChannel(channel string) []models.NotificationLog {
	var out []models.NotificationLog
	for _, e := range m.all() {
		if e.Channel == channel {
			out = append(out, e)
		}
	}
	return out
}

// Fake notification gateways
type fakeSMS struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeSMS) SendSMS(ctx context.Context, to, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

type fakeEmail struct {
	mu       sync.Mutex
	err      error
	calls    int
	subjects []string
}

func (f *fakeEmail) SendEmail(ctx context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.subjects = append(f.subjects, subject)
	return f.err
}

type fakeWhatsApp struct {
	mu      sync.Mutex
	err     error
	calls   int
	apiKeys []string
}

func (f *fakeWhatsApp) SendWhatsApp(ctx context.Context, to, message, apiKey, fromNumber string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.apiKeys = append(f.apiKeys, apiKey)
	return f.err
}

type fakePush struct {
	mu     sync.Mutex
	err    error
	calls  int
	titles []string
}

func (f *fakePush) SendPush(ctx context.Context, borrowerID uint, title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.titles = append(f.titles, title)
	return f.err
}

// In-memory settings store
type memStore struct {
	mu     sync.Mutex
	blob   []byte
	putErr error
}

func (s *memStore) Get(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blob == nil {
		return nil, settings.ErrNotFound
	}
	return s.blob, nil
}

func (s *memStore) Put(ctx context.Context, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.blob = blob
	return nil
}
