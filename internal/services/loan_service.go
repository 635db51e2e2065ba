package services

import (
	"context"
	"fmt"

	"github.com/shgbook/shgbook-api/internal/models"
	"github.com/shgbook/shgbook-api/internal/repository"
	"github.com/shgbook/shgbook-api/internal/statemachine"
	"github.com/shgbook/shgbook-api/pkg/logger"
)

// LoanService handles loan lifecycle: numbering, membership, status transitions
// and cascade deletion.
type LoanService struct {
	repo         repository.LoanRepository
	borrowerRepo repository.BorrowerRepository
	paymentRepo  repository.PaymentRepository
}

func NewLoanService(
	repo repository.LoanRepository,
	borrowerRepo repository.BorrowerRepository,
	paymentRepo repository.PaymentRepository,
) *LoanService {
	return &LoanService{
		repo:         repo,
		borrowerRepo: borrowerRepo,
		paymentRepo:  paymentRepo,
	}
}

func (s *LoanService) FindByID(ctx context.Context, id uint) (*models.Loan, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *LoanService) List(ctx context.Context, query *repository.ListQuery) ([]models.Loan, int64, error) {
	return s.repo.List(ctx, query)
}

// FindLoansByBorrower returns every loan the borrower participates in
func (s *LoanService) FindLoansByBorrower(ctx context.Context, borrowerID uint) ([]models.Loan, error) {
	return s.repo.FindLoansByBorrower(ctx, borrowerID)
}

// Create assigns the next sequential loan number, persists the loan and
// attaches its borrowers. Every referenced borrower must exist.
func (s *LoanService) Create(ctx context.Context, loan *models.Loan, members []models.LoanBorrower) (*models.Loan, error) {
	if len(members) == 0 {
		return nil, ErrNoBorrowers
	}
	for _, m := range members {
		if _, err := s.borrowerRepo.FindByID(ctx, m.BorrowerID); err != nil {
			return nil, fmt.Errorf("borrower %d: %w", m.BorrowerID, err)
		}
	}

	number, err := s.repo.NextLoanNumber(ctx)
	if err != nil {
		return nil, err
	}
	loan.LoanNumber = number
	loan.Status = models.LoanStatusActive

	if err := s.repo.Create(ctx, loan); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceBorrowers(ctx, loan.ID, members); err != nil {
		return nil, err
	}

	logger.Info(fmt.Sprintf("Loan %s created with %d borrowers", number, len(members)))
	return s.repo.FindByID(ctx, loan.ID)
}

// Update modifies loan fields and, when members is non-nil, replaces the
// borrower set. The loan number and status are never touched here.
func (s *LoanService) Update(ctx context.Context, id uint, update *models.Loan, members []models.LoanBorrower) (*models.Loan, error) {
	loan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	loan.LoanName = update.LoanName
	loan.StartDate = update.StartDate
	loan.EndDate = update.EndDate
	loan.TotalAmount = update.TotalAmount
	loan.EMIAmount = update.EMIAmount
	loan.InterestRate = update.InterestRate
	loan.Purpose = update.Purpose
	loan.TotalEMIs = update.TotalEMIs
	loan.GuarantorName = update.GuarantorName
	loan.GuarantorPhone = update.GuarantorPhone
	loan.CollateralDetails = update.CollateralDetails
	loan.DisbursementDate = update.DisbursementDate
	loan.LoanBank = update.LoanBank
	loan.LoanAccountNumber = update.LoanAccountNumber

	if err := s.repo.Update(ctx, loan); err != nil {
		return nil, err
	}

	if members != nil {
		if len(members) == 0 {
			return nil, ErrNoBorrowers
		}
		for _, m := range members {
			if _, err := s.borrowerRepo.FindByID(ctx, m.BorrowerID); err != nil {
				return nil, fmt.Errorf("borrower %d: %w", m.BorrowerID, err)
			}
		}
		if err := s.repo.ReplaceBorrowers(ctx, id, members); err != nil {
			return nil, err
		}
	}

	return s.repo.FindByID(ctx, id)
}

// Delete removes a loan and everything hanging off it: payments, notification
// history and borrower memberships.
func (s *LoanService) Delete(ctx context.Context, id uint) error {
	loan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("Loan %s deleted with all payments and notification logs", loan.LoanNumber))
	return nil
}

// Complete transitions an active loan to completed
func (s *LoanService) Complete(ctx context.Context, id uint) (*models.Loan, error) {
	return s.transition(ctx, id, func(fsm *statemachine.LoanFSM) error {
		return fsm.Complete(ctx)
	})
}

// Default transitions an active loan to defaulted
func (s *LoanService) Default(ctx context.Context, id uint) (*models.Loan, error) {
	return s.transition(ctx, id, func(fsm *statemachine.LoanFSM) error {
		return fsm.Default(ctx)
	})
}

// Reactivate puts a completed or defaulted loan back to active
func (s *LoanService) Reactivate(ctx context.Context, id uint) (*models.Loan, error) {
	return s.transition(ctx, id, func(fsm *statemachine.LoanFSM) error {
		return fsm.Reactivate(ctx)
	})
}

func (s *LoanService) transition(ctx context.Context, id uint, event func(*statemachine.LoanFSM) error) (*models.Loan, error) {
	loan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fsm := statemachine.NewLoanFSM(loan)
	if err := event(fsm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if err := s.repo.UpdateStatus(ctx, id, loan.Status); err != nil {
		return nil, err
	}
	logger.Info(fmt.Sprintf("Loan %s is now %s", loan.LoanNumber, loan.Status))
	return loan, nil
}

// ReconcileStatuses marks active loans completed once every borrower has paid
// their full EMI schedule. Runs as a background job.
func (s *LoanService) ReconcileStatuses(ctx context.Context) error {
	loans, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}

	completed := 0
	for i := range loans {
		loan := &loans[i]
		if loan.Status != models.LoanStatusActive || len(loan.Borrowers) == 0 {
			continue
		}

		payments, err := s.paymentRepo.FindByLoan(ctx, loan.ID)
		if err != nil {
			return err
		}

		paidByBorrower := make(map[uint]int)
		for _, p := range payments {
			if p.IsPaid {
				paidByBorrower[p.BorrowerID]++
			}
		}

		allPaid := true
		for _, lb := range loan.Borrowers {
			if paidByBorrower[lb.BorrowerID] < loan.TotalEMIs {
				allPaid = false
				break
			}
		}
		if !allPaid {
			continue
		}

		if _, err := s.Complete(ctx, loan.ID); err != nil {
			logger.Error(fmt.Sprintf("Failed to complete loan %s: %v", loan.LoanNumber, err))
			continue
		}
		completed++
	}

	if completed > 0 {
		logger.Info(fmt.Sprintf("Status reconciliation completed %d loans", completed))
	}
	return nil
}
