package models

import (
	"time"
)

// Loan represents a group loan shared by one or more borrowers
type Loan struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	LoanNumber        string     `gorm:"uniqueIndex:loans_loan_number_key;not null" json:"loan_number"`
	LoanName          *string    `json:"loan_name"`
	StartDate         time.Time  `gorm:"type:date;not null" json:"start_date"`
	EndDate           time.Time  `gorm:"type:date;not null" json:"end_date"`
	TotalAmount       float64    `gorm:"type:decimal(14,2);not null" json:"total_amount"`
	EMIAmount         float64    `gorm:"column:emi_amount;type:decimal(12,2);not null" json:"emi_amount"`
	InterestRate      float64    `gorm:"type:decimal(5,2)" json:"interest_rate"`
	Purpose           *string    `json:"purpose"`
	Status            string     `gorm:"default:active;not null;index" json:"status"`
	TotalEMIs         int        `gorm:"column:total_emis;not null" json:"total_emis"`
	GuarantorName     *string    `json:"guarantor_name"`
	GuarantorPhone    *string    `json:"guarantor_phone"`
	CollateralDetails *string    `json:"collateral_details"`
	DisbursementDate  *time.Time `gorm:"type:date" json:"disbursement_date"`
	LoanBank          *string    `json:"loan_bank"`
	LoanAccountNumber *string    `json:"loan_account_number"`
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// Associations
	Borrowers []LoanBorrower `gorm:"foreignKey:LoanID" json:"borrowers,omitempty"`
}

// TableName specifies the table name for Loan
func (Loan) TableName() string {
	return "loans"
}

// Loan status constants
const (
	LoanStatusActive    = "active"
	LoanStatusCompleted = "completed"
	LoanStatusDefaulted = "defaulted"
)

// MayComplete returns true if the loan can transition to completed
func (l *Loan) MayComplete() bool {
	return l.Status == LoanStatusActive
}

// MayDefault returns true if the loan can transition to defaulted
func (l *Loan) MayDefault() bool {
	return l.Status == LoanStatusActive
}

// MayReactivate returns true if the loan can go back to active
func (l *Loan) MayReactivate() bool {
	return l.Status == LoanStatusCompleted || l.Status == LoanStatusDefaulted
}

// BorrowerIDs returns the ids of all borrowers attached to this loan
func (l *Loan) BorrowerIDs() []uint {
	ids := make([]uint, 0, len(l.Borrowers))
	for _, lb := range l.Borrowers {
		ids = append(ids, lb.BorrowerID)
	}
	return ids
}

// EMIAmountFor returns the EMI amount owed by a specific borrower,
// falling back to the loan-level amount when no override exists
func (l *Loan) EMIAmountFor(borrowerID uint) float64 {
	for _, lb := range l.Borrowers {
		if lb.BorrowerID == borrowerID && lb.EMIAmount != nil {
			return *lb.EMIAmount
		}
	}
	return l.EMIAmount
}

// LoanBorrower links a borrower to a loan with an optional per-borrower EMI override
type LoanBorrower struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	LoanID     uint     `gorm:"not null;index;uniqueIndex:loan_borrowers_loan_borrower_key" json:"loan_id"`
	BorrowerID uint     `gorm:"not null;index;uniqueIndex:loan_borrowers_loan_borrower_key" json:"borrower_id"`
	EMIAmount  *float64 `gorm:"column:emi_amount;type:decimal(12,2)" json:"emi_amount"`

	Borrower Borrower `gorm:"foreignKey:BorrowerID" json:"-"`
}

// TableName specifies the table name for LoanBorrower
func (LoanBorrower) TableName() string {
	return "loan_borrowers"
}

// Counter backs sequential number generation (loan numbers)
type Counter struct {
	Name          string `gorm:"primaryKey" json:"name"`
	CurrentNumber int    `gorm:"not null;default:0" json:"current_number"`
}

// TableName specifies the table name for Counter
func (Counter) TableName() string {
	return "counters"
}

// LoanResponse is the JSON response format for loans
type LoanResponse struct {
	ID                uint             `json:"id"`
	LoanNumber        string           `json:"loan_number"`
	LoanName          *string          `json:"loan_name,omitempty"`
	StartDate         time.Time        `json:"start_date"`
	EndDate           time.Time        `json:"end_date"`
	TotalAmount       float64          `json:"total_amount"`
	EMIAmount         float64          `json:"emi_amount"`
	InterestRate      float64          `json:"interest_rate"`
	Purpose           *string          `json:"purpose,omitempty"`
	Status            string           `json:"status"`
	TotalEMIs         int              `json:"total_emis"`
	BorrowerIDs       []uint           `json:"borrower_ids"`
	EMIAmounts        map[uint]float64 `json:"emi_amounts,omitempty"`
	GuarantorName     *string          `json:"guarantor_name,omitempty"`
	GuarantorPhone    *string          `json:"guarantor_phone,omitempty"`
	CollateralDetails *string          `json:"collateral_details,omitempty"`
	DisbursementDate  *time.Time       `json:"disbursement_date,omitempty"`
	LoanBank          *string          `json:"loan_bank,omitempty"`
	LoanAccountNumber *string          `json:"loan_account_number,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// ToResponse converts Loan to LoanResponse
func (l *Loan) ToResponse() LoanResponse {
	overrides := make(map[uint]float64)
	for _, lb := range l.Borrowers {
		if lb.EMIAmount != nil {
			overrides[lb.BorrowerID] = *lb.EMIAmount
		}
	}
	if len(overrides) == 0 {
		overrides = nil
	}

	return LoanResponse{
		ID:                l.ID,
		LoanNumber:        l.LoanNumber,
		LoanName:          l.LoanName,
		StartDate:         l.StartDate,
		EndDate:           l.EndDate,
		TotalAmount:       l.TotalAmount,
		EMIAmount:         l.EMIAmount,
		InterestRate:      l.InterestRate,
		Purpose:           l.Purpose,
		Status:            l.Status,
		TotalEMIs:         l.TotalEMIs,
		BorrowerIDs:       l.BorrowerIDs(),
		EMIAmounts:        overrides,
		GuarantorName:     l.GuarantorName,
		GuarantorPhone:    l.GuarantorPhone,
		CollateralDetails: l.CollateralDetails,
		DisbursementDate:  l.DisbursementDate,
		LoanBank:          l.LoanBank,
		LoanAccountNumber: l.LoanAccountNumber,
		CreatedAt:         l.CreatedAt,
	}
}
