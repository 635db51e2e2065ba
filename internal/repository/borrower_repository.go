package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shgbook/shgbook-api/internal/models"
	"gorm.io/gorm"
)

// BorrowerRepository defines the interface for borrower data access
type BorrowerRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Borrower, error)
	FindAll(ctx context.Context) ([]models.Borrower, error)
	List(ctx context.Context, query *ListQuery) ([]models.Borrower, int64, error)
	Create(ctx context.Context, borrower *models.Borrower) error
	Update(ctx context.Context, borrower *models.Borrower) error
	Delete(ctx context.Context, id uint) error
}

type borrowerRepository struct {
	db *gorm.DB
}

// NewBorrowerRepository creates a new borrower repository
func NewBorrowerRepository(db *gorm.DB) BorrowerRepository {
	return &borrowerRepository{db: db}
}

func (r *borrowerRepository) FindByID(ctx context.Context, id uint) (*models.Borrower, error) {
	var borrower models.Borrower
	if err := r.db.WithContext(ctx).First(&borrower, id).Error; err != nil {
		return nil, err
	}
	return &borrower, nil
}

func (r *borrowerRepository) FindAll(ctx context.Context) ([]models.Borrower, error) {
	var borrowers []models.Borrower
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&borrowers).Error
	return borrowers, err
}

func (r *borrowerRepository) List(ctx context.Context, query *ListQuery) ([]models.Borrower, int64, error) {
	var borrowers []models.Borrower
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Borrower{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR phone ILIKE ? OR email ILIKE ?", search, search, search)
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

	err := db.Find(&borrowers).Error
	return borrowers, total, err
}

func (r *borrowerRepository) Create(ctx context.Context, borrower *models.Borrower) error {
	if err := r.db.WithContext(ctx).Create(borrower).Error; err != nil {
		return mapBorrowerDuplicate(err)
	}
	return nil
}

func (r *borrowerRepository) Update(ctx context.Context, borrower *models.Borrower) error {
	if err := r.db.WithContext(ctx).Save(borrower).Error; err != nil {
		return mapBorrowerDuplicate(err)
	}
	return nil
}

func (r *borrowerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Borrower{}, id).Error
}

// mapBorrowerDuplicate translates postgres unique violations on identity
// fields into user-facing errors
func mapBorrowerDuplicate(err error) error {
	if isDuplicateKeyError(err, "borrowers_aadhaar_number_key") {
		return errors.New("Aadhaar number already exists for another borrower")
	}
	if isDuplicateKeyError(err, "borrowers_bank_account_key") {
		return errors.New("bank account already exists for another borrower")
	}
	if isDuplicateKeyError(err, "borrowers_pan_number_key") {
		return errors.New("PAN already exists for another borrower")
	}
	return err
}

func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraintName
	}
	return false
}
