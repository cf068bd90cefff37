package domain

import "errors"

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInternalError       = errors.New("internal error")
	ErrUserNotFound        = errors.New("user not found")
	ErrProjectNotFound     = errors.New("project not found")
	ErrPeriodNotFound      = errors.New("accounting period not found")
	ErrBudgetNotFound      = errors.New("budget not found")
	ErrLineNotFound        = errors.New("budget line not found")
	ErrChangeOrderNotFound = errors.New("change order not found")
	ErrECOLineNotFound     = errors.New("external change order line not found")
	ErrDocumentNotFound    = errors.New("document not found")

	// ErrDuplicatePeriod indicates a period for the same month and year already exists.
	ErrDuplicatePeriod = errors.New("accounting period already exists for month and year")
	// ErrLastOpenPeriod indicates the close would leave no open period in the system.
	ErrLastOpenPeriod = errors.New("cannot close the only open accounting period")
	// ErrPeriodClosed indicates the referenced period is closed.
	ErrPeriodClosed = errors.New("accounting period is closed")
	// ErrRevisedBudgetImmutable indicates a direct edit on a revised budget;
	// revised budget content is defined entirely by its originating change order.
	ErrRevisedBudgetImmutable = errors.New("revised budget cannot be edited directly")
	// ErrNotOriginalType indicates finalize was attempted on a non-original budget.
	ErrNotOriginalType = errors.New("only original budgets can be finalized")
	// ErrBudgetNotActive indicates an amendment against an inactive budget;
	// inactive budgets are excluded from project totals, so their change
	// orders would never surface anywhere.
	ErrBudgetNotActive = errors.New("budget is not active")
	// ErrAlreadyFinalized indicates the budget was finalized before this call.
	// Callers may treat it as success since the end state is identical.
	ErrAlreadyFinalized = errors.New("budget already finalized")
	// ErrNegativeAmount indicates a budget line amount below zero.
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrDimensionRequired indicates a change order line without a full cost dimension.
	ErrDimensionRequired = errors.New("cost code and cost type are required")
	// ErrNoChangeOrderLines indicates a change order submitted without lines.
	ErrNoChangeOrderLines = errors.New("change order requires at least one line")
)
