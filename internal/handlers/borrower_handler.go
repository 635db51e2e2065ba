package handlers

import (
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

type BorrowerHandler struct {
	borrowerService *services.BorrowerService
	loanService     *services.LoanService
}

func NewBorrowerHandler(borrowerService *services.BorrowerService, loanService *services.LoanService) *BorrowerHandler {
	return &BorrowerHandler{borrowerService: borrowerService, loanService: loanService}
}

func (h *BorrowerHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")

	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	borrowers, total, err := h.borrowerService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, b := range borrowers {
		responses = append(responses, b.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"borrowers": responses,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

func (h *BorrowerHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("borrower_id"), 10, 32)
	borrower, err := h.borrowerService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Borrower not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"borrower": borrower.ToResponse()})
}

func (h *BorrowerHandler) Create(c *gin.Context) {
	var borrower models.Borrower
	if err := BindNestedOrFlat(c, "borrower", &borrower); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if borrower.Name == "" || borrower.Phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and phone are required"})
		return
	}

	if err := h.borrowerService.Create(c.Request.Context(), &borrower); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"borrower": borrower.ToResponse()})
}

func (h *BorrowerHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("borrower_id"), 10, 32)

	var update models.Borrower
	if err := BindNestedOrFlat(c, "borrower", &update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	borrower, err := h.borrowerService.Update(c.Request.Context(), uint(id), &update)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Borrower not found"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"borrower": borrower.ToResponse()})
}

func (h *BorrowerHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("borrower_id"), 10, 32)
	if err := h.borrowerService.Delete(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Borrower not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Borrower deleted"})
}

// Loans lists all loans the borrower participates in
func (h *BorrowerHandler) Loans(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("borrower_id"), 10, 32)
	if _, err := h.borrowerService.FindByID(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Borrower not found"})
		return
	}

	loans, err := h.loanService.FindLoansByBorrower(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, l := range loans {
		responses = append(responses, l.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"loans": responses})
}
