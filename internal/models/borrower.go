package models

import (
	"time"
)

// Borrower represents a member of the self-help group who holds one or more loans
type Borrower struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"not null" json:"name"`
	Phone            string    `gorm:"not null;index" json:"phone"`
	Email            string    `json:"email"`
	Address          *string   `json:"address"`
	EmergencyContact *string   `json:"emergency_contact"`
	Occupation       *string   `json:"occupation"`
	MonthlyIncome    *float64  `gorm:"type:decimal(12,2)" json:"monthly_income"`
	BankAccount      *string   `gorm:"uniqueIndex:borrowers_bank_account_key" json:"bank_account"`
	IFSCCode         *string   `gorm:"column:ifsc_code" json:"ifsc_code"`
	AadhaarNumber    *string   `gorm:"uniqueIndex:borrowers_aadhaar_number_key" json:"aadhaar_number"`
	PANNumber        *string   `gorm:"column:pan_number;uniqueIndex:borrowers_pan_number_key" json:"pan_number"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name for Borrower
func (Borrower) TableName() string {
	return "borrowers"
}

// HasPhone reports whether the borrower can receive SMS/WhatsApp reminders
func (b *Borrower) HasPhone() bool {
	return b.Phone != ""
}

// HasEmail reports whether the borrower can receive email reminders
func (b *Borrower) HasEmail() bool {
	return b.Email != ""
}

// BorrowerResponse is the JSON response format for borrowers
type BorrowerResponse struct {
	ID               uint     `json:"id"`
	Name             string   `json:"name"`
	Phone            string   `json:"phone"`
	Email            string   `json:"email"`
	Address          *string  `json:"address,omitempty"`
	EmergencyContact *string  `json:"emergency_contact,omitempty"`
	Occupation       *string  `json:"occupation,omitempty"`
	MonthlyIncome    *float64 `json:"monthly_income,omitempty"`
	BankAccount      *string  `json:"bank_account,omitempty"`
	IFSCCode         *string  `json:"ifsc_code,omitempty"`
	AadhaarNumber    *string  `json:"aadhaar_number,omitempty"`
	PANNumber        *string  `json:"pan_number,omitempty"`
	CreatedAt        string   `json:"created_at"`
}

// ToResponse converts Borrower to BorrowerResponse
func (b *Borrower) ToResponse() BorrowerResponse {
	return BorrowerResponse{
		ID:               b.ID,
		Name:             b.Name,
		Phone:            b.Phone,
		Email:            b.Email,
		Address:          b.Address,
		EmergencyContact: b.EmergencyContact,
		Occupation:       b.Occupation,
		MonthlyIncome:    b.MonthlyIncome,
		BankAccount:      b.BankAccount,
		IFSCCode:         b.IFSCCode,
		AadhaarNumber:    b.AadhaarNumber,
		PANNumber:        b.PANNumber,
		CreatedAt:        b.CreatedAt.Format(time.RFC3339),
	}
}
