package domain

import "fmt"

// LockState is the derived mutability state of a budget. It is never stored;
// it is recomputed from the finalized flag and the current period status.
type LockState string

const (
	LockStateEditable     LockState = "editable"
	LockStatePeriodLocked LockState = "period_locked"
	LockStateFinalized    LockState = "finalized"
)

// LockReason identifies which gate rejected a mutation, so callers can render
// the correct message: finalized is permanent, a closed period can reopen.
type LockReason string

const (
	LockReasonFinalized    LockReason = "finalized"
	LockReasonPeriodClosed LockReason = "period_closed"
)

// LockedError is returned when a mutation hits a locked budget.
type LockedError struct {
	BudgetID int32
	Reason   LockReason
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("budget %d is locked: %s", e.BudgetID, e.Reason)
}

// DeriveLockState computes the lock state for a budget given the current
// status of its accounting period. Finalized takes precedence over a closed
// period: reopening the period does not unlock a finalized budget.
func DeriveLockState(budget *Budget, periodOpen bool) LockState {
	if budget.Finalized {
		return LockStateFinalized
	}
	if !periodOpen {
		return LockStatePeriodLocked
	}
	return LockStateEditable
}

// CanMutate is the single guard used by every direct mutation on a budget or
// its lines. Revised budgets are never directly mutable regardless of lock
// state; their content is defined by the originating change order.
func CanMutate(budget *Budget, periodOpen bool) error {
	if budget.Type == BudgetTypeRevised {
		return ErrRevisedBudgetImmutable
	}
	switch DeriveLockState(budget, periodOpen) {
	case LockStateFinalized:
		return &LockedError{BudgetID: budget.ID, Reason: LockReasonFinalized}
	case LockStatePeriodLocked:
		return &LockedError{BudgetID: budget.ID, Reason: LockReasonPeriodClosed}
	}
	return nil
}
