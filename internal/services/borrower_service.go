package services

import (
	"context"
	"fmt"

	"github.com/shgbook/shgbook-api/internal/models"
	"github.com/shgbook/shgbook-api/internal/repository"
	"github.com/shgbook/shgbook-api/pkg/logger"
)

// BorrowerService handles borrower lifecycle and the cleanup that follows a removal
type BorrowerService struct {
	repo        repository.BorrowerRepository
	loanRepo    repository.LoanRepository
	paymentRepo repository.PaymentRepository
	logRepo     repository.NotificationLogRepository
}

func NewBorrowerService(
	repo repository.BorrowerRepository,
	loanRepo repository.LoanRepository,
	paymentRepo repository.PaymentRepository,
	logRepo repository.NotificationLogRepository,
) *BorrowerService {
	return &BorrowerService{
		repo:        repo,
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		logRepo:     logRepo,
	}
}

func (s *BorrowerService) FindByID(ctx context.Context, id uint) (*models.Borrower, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *BorrowerService) List(ctx context.Context, query *repository.ListQuery) ([]models.Borrower, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *BorrowerService) Create(ctx context.Context, borrower *models.Borrower) error {
	return s.repo.Create(ctx, borrower)
}

func (s *BorrowerService) Update(ctx context.Context, id uint, update *models.Borrower) (*models.Borrower, error) {
	borrower, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	borrower.Name = update.Name
	borrower.Phone = update.Phone
	borrower.Email = update.Email
	borrower.Address = update.Address
	borrower.EmergencyContact = update.EmergencyContact
	borrower.Occupation = update.Occupation
	borrower.MonthlyIncome = update.MonthlyIncome
	borrower.BankAccount = update.BankAccount
	borrower.IFSCCode = update.IFSCCode
	borrower.AadhaarNumber = update.AadhaarNumber
	borrower.PANNumber = update.PANNumber

	if err := s.repo.Update(ctx, borrower); err != nil {
		return nil, err
	}
	return borrower, nil
}

// Delete removes a borrower together with their loan memberships, payments
// and notification history. Loans themselves are kept, even when the borrower
// was their only member.
func (s *BorrowerService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	loans, err := s.loanRepo.FindLoansByBorrower(ctx, id)
	if err != nil {
		return err
	}
	for _, loan := range loans {
		if err := s.loanRepo.RemoveBorrower(ctx, loan.ID, id); err != nil {
			return fmt.Errorf("detaching borrower from loan %s: %w", loan.LoanNumber, err)
		}
	}

	if err := s.paymentRepo.DeleteByBorrower(ctx, id); err != nil {
		return err
	}
	if err := s.logRepo.DeleteByBorrower(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info(fmt.Sprintf("Borrower %d deleted (detached from %d loans)", id, len(loans)))
	return nil
}
