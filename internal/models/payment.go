package models

import (
	"time"
)

// Payment represents one EMI obligation for a specific borrower under a loan
type Payment struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	LoanID        uint       `gorm:"not null;index" json:"loan_id"`
	BorrowerID    uint       `gorm:"not null;index" json:"borrower_id"`
	Amount        float64    `gorm:"type:decimal(12,2);not null" json:"amount"`
	DueDate       time.Time  `gorm:"type:date;not null;index" json:"due_date"`
	PaymentDate   *time.Time `gorm:"type:date" json:"payment_date"`
	IsPaid        bool       `gorm:"default:false;not null;index" json:"is_paid"`
	Month         int        `gorm:"not null" json:"month"`
	Year          int        `gorm:"not null" json:"year"`
	EMINumber     int        `gorm:"column:emi_number;not null" json:"emi_number"`
	PaymentMethod *string    `json:"payment_method"`
	TransactionID *string    `json:"transaction_id"`
	ReceiptNumber *string    `json:"receipt_number"`
	LateFee       *float64   `gorm:"type:decimal(10,2)" json:"late_fee"`
	Notes         *string    `gorm:"type:text" json:"notes"`
	PaidBy        *string    `json:"paid_by"`
	ReminderSent  bool       `gorm:"default:false;not null" json:"reminder_sent"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Associations
	Loan     Loan     `gorm:"foreignKey:LoanID" json:"-"`
	Borrower Borrower `gorm:"foreignKey:BorrowerID" json:"-"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Payment method constants
const (
	PaymentMethodCash            = "cash"
	PaymentMethodBankTransfer    = "bank_transfer"
	PaymentMethodCheque          = "cheque"
	PaymentMethodUPI             = "upi"
	PaymentMethodBankDeposit     = "bank_deposit"
	PaymentMethodCollectionAgent = "collection_agent"
	PaymentMethodOnlineTransfer  = "online_transfer"
	PaymentMethodATMDeposit      = "atm_deposit"
)

// IsOverdue returns true if the payment is unpaid and past its due date
func (p *Payment) IsOverdue(now time.Time) bool {
	return !p.IsPaid && now.After(p.DueDate)
}

// PaymentResponse is the JSON response format for payments
type PaymentResponse struct {
	ID            uint       `json:"id"`
	LoanID        uint       `json:"loan_id"`
	BorrowerID    uint       `json:"borrower_id"`
	Amount        float64    `json:"amount"`
	DueDate       time.Time  `json:"due_date"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
	IsPaid        bool       `json:"is_paid"`
	Month         int        `json:"month"`
	Year          int        `json:"year"`
	EMINumber     int        `json:"emi_number"`
	PaymentMethod *string    `json:"payment_method,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	PaidBy        *string    `json:"paid_by,omitempty"`
	BorrowerName  string     `json:"borrower_name,omitempty"`
	LoanNumber    string     `json:"loan_number,omitempty"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	resp := PaymentResponse{
		ID:            p.ID,
		LoanID:        p.LoanID,
		BorrowerID:    p.BorrowerID,
		Amount:        p.Amount,
		DueDate:       p.DueDate,
		PaymentDate:   p.PaymentDate,
		IsPaid:        p.IsPaid,
		Month:         p.Month,
		Year:          p.Year,
		EMINumber:     p.EMINumber,
		PaymentMethod: p.PaymentMethod,
		Notes:         p.Notes,
		PaidBy:        p.PaidBy,
	}
	if p.Borrower.ID != 0 {
		resp.BorrowerName = p.Borrower.Name
	}
	if p.Loan.ID != 0 {
		resp.LoanNumber = p.Loan.LoanNumber
	}
	return resp
}
