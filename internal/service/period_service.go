package service

import (
	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/crewcost/crewcost-backend/internal/util"
	"github.com/crewcost/crewcost-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// PeriodService owns the accounting period calendar and the invariant that
// at least one period is open at all times.
type PeriodService struct {
	periodRepo domain.PeriodRepository
	publisher  websocket.EventPublisher
}

// NewPeriodService creates a new PeriodService
func NewPeriodService(periodRepo domain.PeriodRepository, publisher websocket.EventPublisher) *PeriodService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &PeriodService{
		periodRepo: periodRepo,
		publisher:  publisher,
	}
}

// OpenPeriod creates a new open accounting period
func (s *PeriodService) OpenPeriod(month, year int, description string) (*domain.AccountingPeriod, error) {
	if month < 1 || month > 12 {
		return nil, domain.ErrInvalidInput
	}
	if year < 2000 || year > 2100 {
		return nil, domain.ErrInvalidInput
	}

	period, err := s.periodRepo.Create(month, year, description)
	if err != nil {
		return nil, err
	}

	if util.IsHistoricalPeriod(year, month) {
		log.Warn().Int("year", year).Int("month", month).Msg("Opened a period for a past month")
	}
	log.Info().Int("year", year).Int("month", month).Int32("period_id", period.ID).Msg("Opened accounting period")
	return period, nil
}

// ClosePeriod closes a period. Fails with ErrLastOpenPeriod when this is the
// only open period; the caller is expected to open a replacement period
// first — the ledger never guesses a new period's identity. Closing has no
// effect on budgets already finalized; it adds a period gate for budgets
// still referencing it.
func (s *PeriodService) ClosePeriod(id int32) (*domain.AccountingPeriod, error) {
	if err := s.periodRepo.Close(id); err != nil {
		return nil, err
	}

	period, err := s.periodRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	prevYear, prevMonth := util.PreviousPeriod(period.Year, period.Month)
	if prev, err := s.periodRepo.GetByMonthYear(prevMonth, prevYear); err == nil && prev.IsOpen() {
		log.Warn().
			Int32("period_id", id).
			Int32("previous_period_id", prev.ID).
			Msg("Closed a period while the preceding period is still open")
	}

	s.publisher.PublishAll(websocket.PeriodClosed(period))
	log.Info().Int32("period_id", id).Msg("Closed accounting period")
	return period, nil
}

// ReopenPeriod reopens a closed period, re-enabling edits on budgets in that
// period unless they were separately finalized.
func (s *PeriodService) ReopenPeriod(id int32) (*domain.AccountingPeriod, error) {
	if err := s.periodRepo.Reopen(id); err != nil {
		return nil, err
	}

	period, err := s.periodRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishAll(websocket.PeriodReopened(period))
	log.Info().Int32("period_id", id).Msg("Reopened accounting period")
	return period, nil
}

// IsOpen reports whether the given period is open
func (s *PeriodService) IsOpen(id int32) (bool, error) {
	period, err := s.periodRepo.GetByID(id)
	if err != nil {
		return false, err
	}
	return period.IsOpen(), nil
}

// GetPeriod retrieves a period by its identifier
func (s *PeriodService) GetPeriod(id int32) (*domain.AccountingPeriod, error) {
	return s.periodRepo.GetByID(id)
}

// ListPeriods retrieves all periods
func (s *PeriodService) ListPeriods() ([]*domain.AccountingPeriod, error) {
	return s.periodRepo.GetAll()
}
