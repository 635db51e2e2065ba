package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shgbook/shgbook-api/internal/models"
	"github.com/shgbook/shgbook-api/internal/repository"
	"github.com/shgbook/shgbook-api/internal/services"
	"gorm.io/gorm"
)

type PaymentHandler struct {
	paymentService  *services.PaymentService
	reminderService *services.ReminderService
}

func NewPaymentHandler(paymentService *services.PaymentService, reminderService *services.ReminderService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, reminderService: reminderService}
}

// PaymentRequest is the payload for creating or updating a payment
type PaymentRequest struct {
	LoanID        uint     `json:"loan_id"`
	BorrowerID    uint     `json:"borrower_id"`
	Amount        float64  `json:"amount" binding:"required"`
	DueDate       string   `json:"due_date" binding:"required"`
	EMINumber     int      `json:"emi_number"`
	PaymentMethod *string  `json:"payment_method"`
	Notes         *string  `json:"notes"`
	PaidBy        *string  `json:"paid_by"`
	LateFee       *float64 `json:"late_fee"`
}

// MarkPaidRequest carries optional settlement details
type MarkPaidRequest struct {
	PaymentDate   *string `json:"payment_date"`
	PaymentMethod *string `json:"payment_method"`
	PaidBy        *string `json:"paid_by"`
	Notes         *string `json:"notes"`
}

func (h *PaymentHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["loan_id"] = c.Query("loan_id")
	query.Filters["borrower_id"] = c.Query("borrower_id")
	query.Filters["is_paid"] = c.Query("is_paid")
	query.Filters["month"] = c.Query("month")
	query.Filters["year"] = c.Query("year")

	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, p := range payments {
		responses = append(responses, p.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": responses,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

func (h *PaymentHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	payment, err := h.paymentService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

func (h *PaymentHandler) Stats(c *gin.Context) {
	stats, err := h.paymentService.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *PaymentHandler) Create(c *gin.Context) {
	var req PaymentRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.LoanID == 0 || req.BorrowerID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "loan_id and borrower_id are required"})
		return
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date"})
		return
	}

	payment := &models.Payment{
		LoanID:        req.LoanID,
		BorrowerID:    req.BorrowerID,
		Amount:        req.Amount,
		DueDate:       dueDate,
		EMINumber:     req.EMINumber,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		PaidBy:        req.PaidBy,
		LateFee:       req.LateFee,
	}

	if err := h.paymentService.Create(c.Request.Context(), payment); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payment": payment.ToResponse()})
}

func (h *PaymentHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)

	var req PaymentRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date"})
		return
	}

	update := &models.Payment{
		Amount:        req.Amount,
		DueDate:       dueDate,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		PaidBy:        req.PaidBy,
		LateFee:       req.LateFee,
	}

	payment, err := h.paymentService.Update(c.Request.Context(), uint(id), update)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

func (h *PaymentHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	if err := h.paymentService.Delete(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment deleted"})
}

// MarkPaid settles a payment
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)

	var req MarkPaidRequest
	// Body is optional
	_ = BindNestedOrFlat(c, "payment", &req)

	var paymentDate *time.Time
	if req.PaymentDate != nil && *req.PaymentDate != "" {
		d, err := parseDate(*req.PaymentDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment_date"})
			return
		}
		paymentDate = &d
	}

	payment, err := h.paymentService.MarkPaid(c.Request.Context(), uint(id), paymentDate, req.PaymentMethod, req.PaidBy, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		case errors.Is(err, services.ErrAlreadyPaid):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

// MarkUnpaid reverts a settled payment
func (h *PaymentHandler) MarkUnpaid(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)

	payment, err := h.paymentService.MarkUnpaid(c.Request.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		case errors.Is(err, services.ErrNotPaid):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

// Remind dispatches an immediate reminder for this payment
func (h *PaymentHandler) Remind(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)

	success, err := h.reminderService.SendPaymentReminder(c.Request.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		case errors.Is(err, services.ErrAlreadyPaid):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": success})
}
