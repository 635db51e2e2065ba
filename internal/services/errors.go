package services

import "errors"

// Common service errors
var (
	ErrNotFound       = errors.New("record not found")
	ErrInvalidState   = errors.New("invalid state transition")
	ErrDuplicate      = errors.New("duplicate record")
	ErrAlreadyPaid    = errors.New("payment is already marked paid")
	ErrNotPaid        = errors.New("payment is not marked paid")
	ErrNoBorrowers    = errors.New("loan must have at least one borrower")
	ErrLoanNotActive  = errors.New("loan is not active")
	ErrInvalidPayload = errors.New("invalid request payload")
)
