package domain

import "time"

// PeriodStatus represents the lifecycle status of an accounting period
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "open"
	PeriodStatusClosed PeriodStatus = "closed"
)

// AccountingPeriod is a month/year bucket gating mutability of financial
// records dated into it. At least one period is open at all times.
type AccountingPeriod struct {
	ID          int32        `json:"id"`
	Month       int          `json:"month"`
	Year        int          `json:"year"`
	Status      PeriodStatus `json:"status"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// IsOpen reports whether the period accepts new or edited records.
func (p *AccountingPeriod) IsOpen() bool {
	return p.Status == PeriodStatusOpen
}

// PeriodRepository defines the interface for accounting period persistence
type PeriodRepository interface {
	Create(month, year int, description string) (*AccountingPeriod, error)
	GetByID(id int32) (*AccountingPeriod, error)
	GetByMonthYear(month, year int) (*AccountingPeriod, error)
	GetAll() ([]*AccountingPeriod, error)
	// Close sets the period status to closed. The open-period count check and
	// the status update run in one transaction; closing the only open period
	// fails with ErrLastOpenPeriod.
	Close(id int32) error
	Reopen(id int32) error
}
