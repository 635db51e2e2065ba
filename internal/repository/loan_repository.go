package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shgbook/shgbook-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const loanNumberCounter = "loan_number"

// LoanRepository defines the interface for loan data access
type LoanRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Loan, error)
	FindAll(ctx context.Context) ([]models.Loan, error)
	List(ctx context.Context, query *ListQuery) ([]models.Loan, int64, error)
	Create(ctx context.Context, loan *models.Loan) error
	Update(ctx context.Context, loan *models.Loan) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, id uint) error
	ReplaceBorrowers(ctx context.Context, loanID uint, borrowers []models.LoanBorrower) error
	RemoveBorrower(ctx context.Context, loanID, borrowerID uint) error
	FindLoansByBorrower(ctx context.Context, borrowerID uint) ([]models.Loan, error)
	NextLoanNumber(ctx context.Context) (string, error)
}

type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) FindByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Borrowers").
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) FindAll(ctx context.Context) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Preload("Borrowers").
		Order("created_at DESC").
		Find(&loans).Error
	return loans, err
}

func (r *loanRepository) List(ctx context.Context, query *ListQuery) ([]models.Loan, int64, error) {
	var loans []models.Loan
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Loan{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("loan_number ILIKE ? OR loan_name ILIKE ?", search, search)
	}

	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}

	db.Count(&total)

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("created_at DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Borrowers").Find(&loans).Error
	return loans, total, err
}

func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).
		Omit("Borrowers").
		Save(loan).Error
}

func (r *loanRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete removes the loan and everything hanging off it: payments,
// notification logs, and borrower links
func (r *loanRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("loan_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("loan_id = ?", id).Delete(&models.NotificationLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("loan_id = ?", id).Delete(&models.LoanBorrower{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Loan{}, id).Error
	})
}

func (r *loanRepository) ReplaceBorrowers(ctx context.Context, loanID uint, borrowers []models.LoanBorrower) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("loan_id = ?", loanID).Delete(&models.LoanBorrower{}).Error; err != nil {
			return err
		}
		if len(borrowers) == 0 {
			return nil
		}
		for i := range borrowers {
			borrowers[i].ID = 0
			borrowers[i].LoanID = loanID
		}
		return tx.Create(&borrowers).Error
	})
}

// RemoveBorrower detaches a borrower from a loan, dropping the per-borrower
// EMI override with the row
func (r *loanRepository) RemoveBorrower(ctx context.Context, loanID, borrowerID uint) error {
	return r.db.WithContext(ctx).
		Where("loan_id = ? AND borrower_id = ?", loanID, borrowerID).
		Delete(&models.LoanBorrower{}).Error
}

func (r *loanRepository) FindLoansByBorrower(ctx context.Context, borrowerID uint) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Preload("Borrowers").
		Joins("JOIN loan_borrowers lb ON lb.loan_id = loans.id").
		Where("lb.borrower_id = ?", borrowerID).
		Find(&loans).Error
	return loans, err
}

// NextLoanNumber increments the loan counter inside a row-locked transaction
// and returns the next number in SHG001 format
func (r *loanRepository) NextLoanNumber(ctx context.Context) (string, error) {
	var next int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counter models.Counter
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", loanNumberCounter).
			First(&counter).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			counter = models.Counter{Name: loanNumberCounter, CurrentNumber: 0}
			if err := tx.Create(&counter).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		next = counter.CurrentNumber + 1
		return tx.Model(&models.Counter{}).
			Where("name = ?", loanNumberCounter).
			Update("current_number", next).Error
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SHG%03d", next), nil
}
