package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/shgbook/shgbook-api/internal/models"
)

// LoanFSM wraps a loan with its state machine
type LoanFSM struct {
	loan *models.Loan
	fsm  *fsm.FSM
}

// NewLoanFSM creates a new loan state machine
func NewLoanFSM(loan *models.Loan) *LoanFSM {
	lfsm := &LoanFSM{
		loan: loan,
	}

	lfsm.fsm = fsm.NewFSM(
		loan.Status,
		fsm.Events{
			// active → completed (all EMIs settled)
			{Name: "complete", Src: []string{models.LoanStatusActive}, Dst: models.LoanStatusCompleted},

			// active → defaulted
			{Name: "default", Src: []string{models.LoanStatusActive}, Dst: models.LoanStatusDefaulted},

			// completed/defaulted → active (reopen after correction)
			{Name: "reactivate", Src: []string{models.LoanStatusCompleted, models.LoanStatusDefaulted}, Dst: models.LoanStatusActive},
		},
		fsm.Callbacks{},
	)

	return lfsm
}

// Complete transitions the loan to completed
func (l *LoanFSM) Complete(ctx context.Context) error {
	if !l.loan.MayComplete() {
		return fmt.Errorf("loan cannot be completed in current state: %s", l.loan.Status)
	}

	if err := l.fsm.Event(ctx, "complete"); err != nil {
		return fmt.Errorf("failed to complete loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// Default transitions the loan to defaulted
func (l *LoanFSM) Default(ctx context.Context) error {
	if !l.loan.MayDefault() {
		return fmt.Errorf("loan cannot be defaulted in current state: %s", l.loan.Status)
	}

	if err := l.fsm.Event(ctx, "default"); err != nil {
		return fmt.Errorf("failed to default loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// Reactivate transitions the loan back to active
func (l *LoanFSM) Reactivate(ctx context.Context) error {
	if !l.loan.MayReactivate() {
		return fmt.Errorf("loan cannot be reactivated in current state: %s", l.loan.Status)
	}

	if err := l.fsm.Event(ctx, "reactivate"); err != nil {
		return fmt.Errorf("failed to reactivate loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// Current returns the current state
func (l *LoanFSM) Current() string {
	return l.fsm.Current()
}

// Can checks if a transition is possible
func (l *LoanFSM) Can(event string) bool {
	return l.fsm.Can(event)
}
