package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shgbook/shgbook-api/internal/models"
	"github.com/shgbook/shgbook-api/internal/repository"
	"github.com/shgbook/shgbook-api/internal/services"
	"gorm.io/gorm"
)

type LoanHandler struct {
	loanService    *services.LoanService
	paymentService *services.PaymentService
}

func NewLoanHandler(loanService *services.LoanService, paymentService *services.PaymentService) *LoanHandler {
	return &LoanHandler{loanService: loanService, paymentService: paymentService}
}

// LoanRequest is the payload for creating or updating a loan. Dates arrive as
// strings so both plain dates and timestamps are accepted.
type LoanRequest struct {
	LoanName          *string          `json:"loan_name"`
	StartDate         string           `json:"start_date" binding:"required"`
	EndDate           string           `json:"end_date" binding:"required"`
	TotalAmount       float64          `json:"total_amount" binding:"required"`
	EMIAmount         float64          `json:"emi_amount" binding:"required"`
	InterestRate      float64          `json:"interest_rate"`
	Purpose           *string          `json:"purpose"`
	TotalEMIs         int              `json:"total_emis" binding:"required"`
	BorrowerIDs       []uint           `json:"borrower_ids"`
	EMIAmounts        map[uint]float64 `json:"emi_amounts"`
	GuarantorName     *string          `json:"guarantor_name"`
	GuarantorPhone    *string          `json:"guarantor_phone"`
	CollateralDetails *string          `json:"collateral_details"`
	DisbursementDate  *string          `json:"disbursement_date"`
	LoanBank          *string          `json:"loan_bank"`
	LoanAccountNumber *string          `json:"loan_account_number"`
}

func (r *LoanRequest) toModel() (*models.Loan, error) {
	startDate, err := parseDate(r.StartDate)
	if err != nil {
		return nil, errors.New("invalid start_date")
	}
	endDate, err := parseDate(r.EndDate)
	if err != nil {
		return nil, errors.New("invalid end_date")
	}

	loan := &models.Loan{
		LoanName:          r.LoanName,
		StartDate:         startDate,
		EndDate:           endDate,
		TotalAmount:       r.TotalAmount,
		EMIAmount:         r.EMIAmount,
		InterestRate:      r.InterestRate,
		Purpose:           r.Purpose,
		TotalEMIs:         r.TotalEMIs,
		GuarantorName:     r.GuarantorName,
		GuarantorPhone:    r.GuarantorPhone,
		CollateralDetails: r.CollateralDetails,
		LoanBank:          r.LoanBank,
		LoanAccountNumber: r.LoanAccountNumber,
	}
	if r.DisbursementDate != nil && *r.DisbursementDate != "" {
		d, err := parseDate(*r.DisbursementDate)
		if err != nil {
			return nil, errors.New("invalid disbursement_date")
		}
		loan.DisbursementDate = &d
	}
	return loan, nil
}

func (r *LoanRequest) members() []models.LoanBorrower {
	if r.BorrowerIDs == nil {
		return nil
	}
	members := make([]models.LoanBorrower, 0, len(r.BorrowerIDs))
	for _, id := range r.BorrowerIDs {
		m := models.LoanBorrower{BorrowerID: id}
		if amount, ok := r.EMIAmounts[id]; ok {
			m.EMIAmount = &amount
		}
		members = append(members, m)
	}
	return members
}

func (h *LoanHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Filters["status"] = c.Query("status")

	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	loans, total, err := h.loanService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, l := range loans {
		responses = append(responses, l.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"loans": responses,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

func (h *LoanHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	loan, err := h.loanService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"loan": loan.ToResponse()})
}

func (h *LoanHandler) Create(c *gin.Context) {
	var req LoanRequest
	if err := BindNestedOrFlat(c, "loan", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loan, err := req.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.loanService.Create(c.Request.Context(), loan, req.members())
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"loan": created.ToResponse()})
}

func (h *LoanHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("loan_id"), 10, 32)

	var req LoanRequest
	if err := BindNestedOrFlat(c, "loan", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update, err := req.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loan, err := h.loanService.Update(c.Request.Context(), uint(id), update, req.members())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan": loan.ToResponse()})
}

func (h *LoanHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	if err := h.loanService.Delete(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Loan deleted"})
}

// Complete marks an active loan as fully repaid
func (h *LoanHandler) Complete(c *gin.Context) {
	h.transition(c, h.loanService.Complete)
}

// Default marks an active loan as defaulted
func (h *LoanHandler) Default(c *gin.Context) {
	h.transition(c, h.loanService.Default)
}

// Reactivate puts a closed loan back to active
func (h *LoanHandler) Reactivate(c *gin.Context) {
	h.transition(c, h.loanService.Reactivate)
}

func (h *LoanHandler) transition(c *gin.Context, fn func(ctx context.Context, id uint) (*models.Loan, error)) {
	id, _ := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	loan, err := fn(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
			return
		}
		if errors.Is(err, services.ErrInvalidState) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"loan": loan.ToResponse()})
}

// Payments lists all payments under a loan
func (h *LoanHandler) Payments(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	if _, err := h.loanService.FindByID(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
		return
	}

	query := repository.NewListQuery()
	query.PerPage = 1000
	query.Filters["loan_id"] = strconv.FormatUint(id, 10)

	payments, _, err := h.paymentService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, p := range payments {
		responses = append(responses, p.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"payments": responses})
}

// GeneratePayments materializes the EMI schedule for the current and next month
func (h *LoanHandler) GeneratePayments(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	created, err := h.paymentService.GeneratePayments(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, p := range created {
		responses = append(responses, p.ToResponse())
	}
	c.JSON(http.StatusCreated, gin.H{
		"payments": responses,
		"count":    len(created),
	})
}
