package statemachine

import (
	"context"
	"testing"

	"github.com/shgbook/shgbook-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestLoanCompleteFromActive(t *testing.T) {
	loan := &models.Loan{Status: models.LoanStatusActive}
	lfsm := NewLoanFSM(loan)

	assert.True(t, lfsm.Can("complete"))
	assert.NoError(t, lfsm.Complete(context.Background()))
	assert.Equal(t, models.LoanStatusCompleted, loan.Status)
	assert.Equal(t, models.LoanStatusCompleted, lfsm.Current())
}

func TestLoanDefaultFromActive(t *testing.T) {
	loan := &models.Loan{Status: models.LoanStatusActive}
	lfsm := NewLoanFSM(loan)

	assert.NoError(t, lfsm.Default(context.Background()))
	assert.Equal(t, models.LoanStatusDefaulted, loan.Status)
}

func TestLoanReactivate(t *testing.T) {
	for _, status := range []string{models.LoanStatusCompleted, models.LoanStatusDefaulted} {
		loan := &models.Loan{Status: status}
		lfsm := NewLoanFSM(loan)

		assert.NoError(t, lfsm.Reactivate(context.Background()))
		assert.Equal(t, models.LoanStatusActive, loan.Status)
	}
}

func TestLoanInvalidTransitions(t *testing.T) {
	completed := &models.Loan{Status: models.LoanStatusCompleted}
	assert.Error(t, NewLoanFSM(completed).Complete(context.Background()))
	assert.Error(t, NewLoanFSM(completed).Default(context.Background()))

	active := &models.Loan{Status: models.LoanStatusActive}
	assert.Error(t, NewLoanFSM(active).Reactivate(context.Background()))
}
