package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shgbook/shgbook-api/internal/models"
	"github.com/shgbook/shgbook-api/internal/repository"
	"github.com/shgbook/shgbook-api/pkg/logger"
)

// PaymentService handles EMI schedules: generation, settlement and statistics
type PaymentService struct {
	repo     repository.PaymentRepository
	loanRepo repository.LoanRepository
	now      func() time.Time
}

func NewPaymentService(repo repository.PaymentRepository, loanRepo repository.LoanRepository) *PaymentService {
	return &PaymentService{
		repo:     repo,
		loanRepo: loanRepo,
		now:      time.Now,
	}
}

func (s *PaymentService) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *PaymentService) List(ctx context.Context, query *repository.ListQuery) ([]models.Payment, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *PaymentService) Create(ctx context.Context, payment *models.Payment) error {
	if _, err := s.loanRepo.FindByID(ctx, payment.LoanID); err != nil {
		return err
	}
	payment.Month = int(payment.DueDate.Month())
	payment.Year = payment.DueDate.Year()
	return s.repo.Create(ctx, payment)
}

func (s *PaymentService) Update(ctx context.Context, id uint, update *models.Payment) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payment.Amount = update.Amount
	payment.DueDate = update.DueDate
	payment.Month = int(update.DueDate.Month())
	payment.Year = update.DueDate.Year()
	payment.PaymentMethod = update.PaymentMethod
	payment.Notes = update.Notes
	payment.PaidBy = update.PaidBy
	payment.LateFee = update.LateFee

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// MarkPaid settles a payment. The payment date defaults to today when the
// caller does not supply one.
func (s *PaymentService) MarkPaid(ctx context.Context, id uint, paymentDate *time.Time, method, paidBy, notes *string) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.IsPaid {
		return nil, ErrAlreadyPaid
	}

	when := s.now()
	if paymentDate != nil {
		when = *paymentDate
	}
	payment.IsPaid = true
	payment.PaymentDate = &when
	if method != nil {
		payment.PaymentMethod = method
	}
	if paidBy != nil {
		payment.PaidBy = paidBy
	}
	if notes != nil {
		payment.Notes = notes
	}

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// MarkUnpaid reverts a settled payment back to pending
func (s *PaymentService) MarkUnpaid(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !payment.IsPaid {
		return nil, ErrNotPaid
	}

	payment.IsPaid = false
	payment.PaymentDate = nil
	payment.PaymentMethod = nil
	payment.PaidBy = nil

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) GetStats(ctx context.Context) (*repository.PaymentStats, error) {
	return s.repo.GetStats(ctx)
}

// GeneratePayments materializes the EMI schedule for the current and the next
// calendar month only. EMI n falls due n-1 months after the loan start date;
// months that already carry a payment for a borrower are skipped, so repeated
// calls are safe.
func (s *PaymentService) GeneratePayments(ctx context.Context, loanID uint) ([]models.Payment, error) {
	loan, err := s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusActive {
		return nil, ErrLoanNotActive
	}
	if len(loan.Borrowers) == 0 {
		return nil, ErrNoBorrowers
	}

	existing, err := s.repo.FindByLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[fmt.Sprintf("%d:%d:%d", p.BorrowerID, p.Year, p.Month)] = true
	}

	now := s.now()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := thisMonth.AddDate(0, 1, 0)

	var created []models.Payment
	for n := 1; n <= loan.TotalEMIs; n++ {
		dueDate := loan.StartDate.AddDate(0, n-1, 0)
		dueMonth := time.Date(dueDate.Year(), dueDate.Month(), 1, 0, 0, 0, 0, time.UTC)
		if !dueMonth.Equal(thisMonth) && !dueMonth.Equal(nextMonth) {
			continue
		}

		for _, lb := range loan.Borrowers {
			key := fmt.Sprintf("%d:%d:%d", lb.BorrowerID, dueDate.Year(), int(dueDate.Month()))
			if seen[key] {
				continue
			}
			seen[key] = true

			created = append(created, models.Payment{
				LoanID:     loan.ID,
				BorrowerID: lb.BorrowerID,
				Amount:     loan.EMIAmountFor(lb.BorrowerID),
				DueDate:    dueDate,
				Month:      int(dueDate.Month()),
				Year:       dueDate.Year(),
				EMINumber:  n,
			})
		}
	}

	if len(created) == 0 {
		return []models.Payment{}, nil
	}
	if err := s.repo.CreateBatch(ctx, created); err != nil {
		return nil, err
	}

	logger.Info(fmt.Sprintf("Generated %d payments for loan %s", len(created), loan.LoanNumber))
	return created, nil
}
