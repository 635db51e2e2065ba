package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Borrower        BorrowerRepository
	Loan            LoanRepository
	Payment         PaymentRepository
	NotificationLog NotificationLogRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Borrower:        NewBorrowerRepository(db),
		Loan:            NewLoanRepository(db),
		Payment:         NewPaymentRepository(db),
		NotificationLog: NewNotificationLogRepository(db),
	}
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}
