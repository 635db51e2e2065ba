package repository

import (
	"context"

	"github.com/shgbook/shgbook-api/internal/models"
	"gorm.io/gorm"
)

// PaymentStats summarizes the payment book for dashboards
type PaymentStats struct {
	TotalPayments int64   `json:"total_payments"`
	PaidCount     int64   `json:"paid_count"`
	UnpaidCount   int64   `json:"unpaid_count"`
	PaidAmount    float64 `json:"paid_amount"`
	PendingAmount float64 `json:"pending_amount"`
}

// PaymentRepository defines the interface for payment data access
type PaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Payment, error)
	FindAll(ctx context.Context) ([]models.Payment, error)
	FindUnpaid(ctx context.Context) ([]models.Payment, error)
	FindByLoan(ctx context.Context, loanID uint) ([]models.Payment, error)
	List(ctx context.Context, query *ListQuery) ([]models.Payment, int64, error)
	Create(ctx context.Context, payment *models.Payment) error
	CreateBatch(ctx context.Context, payments []models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id uint) error
	DeleteByLoan(ctx context.Context, loanID uint) error
	DeleteByBorrower(ctx context.Context, borrowerID uint) error
	MarkReminderSent(ctx context.Context, ids []uint) error
	GetStats(ctx context.Context) (*PaymentStats, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Loan").
		Preload("Borrower").
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindAll(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Order("due_date DESC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) FindUnpaid(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Preload("Borrower").
		Where("is_paid = ?", false).
		Order("due_date ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) FindByLoan(ctx context.Context, loanID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Preload("Borrower").
		Where("loan_id = ?", loanID).
		Order("emi_number ASC, borrower_id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) List(ctx context.Context, query *ListQuery) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Payment{})

	if query.Filters["loan_id"] != "" {
		db = db.Where("loan_id = ?", query.Filters["loan_id"])
	}
	if query.Filters["borrower_id"] != "" {
		db = db.Where("borrower_id = ?", query.Filters["borrower_id"])
	}
	if query.Filters["is_paid"] != "" {
		db = db.Where("is_paid = ?", query.Filters["is_paid"] == "true")
	}
	if query.Filters["month"] != "" {
		db = db.Where("month = ?", query.Filters["month"])
	}
	if query.Filters["year"] != "" {
		db = db.Where("year = ?", query.Filters["year"])
	}

	db.Count(&total)

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("due_date DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Loan").Preload("Borrower").Find(&payments).Error
	return payments, total, err
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) CreateBatch(ctx context.Context, payments []models.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&payments).Error
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).
		Omit("Loan", "Borrower").
		Save(payment).Error
}

func (r *paymentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Payment{}, id).Error
}

func (r *paymentRepository) DeleteByLoan(ctx context.Context, loanID uint) error {
	return r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Delete(&models.Payment{}).Error
}

func (r *paymentRepository) DeleteByBorrower(ctx context.Context, borrowerID uint) error {
	return r.db.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Delete(&models.Payment{}).Error
}

func (r *paymentRepository) MarkReminderSent(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id IN ?", ids).
		Update("reminder_sent", true).Error
}

func (r *paymentRepository) GetStats(ctx context.Context) (*PaymentStats, error) {
	stats := &PaymentStats{}

	db := r.db.WithContext(ctx).Model(&models.Payment{})
	if err := db.Count(&stats.TotalPayments).Error; err != nil {
		return nil, err
	}

	row := r.db.WithContext(ctx).Model(&models.Payment{}).
		Select("COUNT(*) FILTER (WHERE is_paid), COUNT(*) FILTER (WHERE NOT is_paid), COALESCE(SUM(amount) FILTER (WHERE is_paid), 0), COALESCE(SUM(amount) FILTER (WHERE NOT is_paid), 0)").
		Row()
	if err := row.Scan(&stats.PaidCount, &stats.UnpaidCount, &stats.PaidAmount, &stats.PendingAmount); err != nil {
		return nil, err
	}

	return stats, nil
}
