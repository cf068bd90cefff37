package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_CombinedType(t *testing.T) {
	e := NewEvent(EventTypeFinalized, EntityTypeBudget, nil)
	assert.Equal(t, "budget.finalized", e.Type)
	assert.Equal(t, EntityTypeBudget, e.Entity)
	assert.False(t, e.Timestamp.IsZero())
}

func TestEventToJSON(t *testing.T) {
	payload := map[string]interface{}{"id": float64(7), "status": "closed"}
	e := PeriodClosed(payload)

	data, err := e.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "period.closed", decoded["type"])
	assert.Equal(t, "period", decoded["entity"])
	assert.Equal(t, payload, decoded["payload"])
}

func TestEventConstructors(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{BudgetCreated(nil), "budget.created"},
		{BudgetUpdated(nil), "budget.updated"},
		{BudgetDeleted(nil), "budget.deleted"},
		{BudgetFinalized(nil), "budget.finalized"},
		{BudgetLineChanged(EventTypeCreated, nil), "budget_line.created"},
		{BudgetLineChanged(EventTypeDeleted, nil), "budget_line.deleted"},
		{PeriodClosed(nil), "period.closed"},
		{PeriodReopened(nil), "period.reopened"},
		{ChangeOrderCreated(nil), "change_order.created"},
		{ECOLineRecorded(nil), "eco_line.created"},
		{ECOLineDeactivated(nil), "eco_line.deactivated"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.event.Type)
	}
}
