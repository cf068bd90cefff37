package service

import (
	"errors"
	"testing"
	"time"

	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/crewcost/crewcost-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

type changeOrderFixture struct {
	svc      *ChangeOrderService
	icos     *testutil.MockChangeOrderRepository
	ecoLines *testutil.MockECOLineRepository
	budgets  *testutil.MockBudgetRepository
	projects *testutil.MockProjectRepository
	events   *testutil.MockPublisher
	project  *domain.Project
	original *domain.Budget
}

func newChangeOrderFixture(t *testing.T) *changeOrderFixture {
	t.Helper()
	f := &changeOrderFixture{
		ecoLines: testutil.NewMockECOLineRepository(),
		budgets:  testutil.NewMockBudgetRepository(),
		projects: testutil.NewMockProjectRepository(),
		events:   testutil.NewMockPublisher(),
	}
	f.icos = testutil.NewMockChangeOrderRepository(f.budgets)
	f.svc = NewChangeOrderService(f.icos, f.ecoLines, f.budgets, f.projects, f.events)
	f.project, _ = f.projects.Create("Riverside Tower")
	f.original = f.budgets.AddBudget(&domain.Budget{
		ProjectID:          f.project.ID,
		Type:               domain.BudgetTypeOriginal,
		AccountingPeriodID: 1,
		Status:             domain.BudgetStatusActive,
		Date:               time.Now(),
	})
	return f
}

func TestCreateInternalChangeOrder(t *testing.T) {
	f := newChangeOrderFixture(t)

	ico, revised, err := f.svc.CreateInternalChangeOrder(f.original.ID, "Steel price increase", []ChangeOrderLineInput{
		{CostCodeID: 100, CostTypeID: 1, ChangeAmount: decimal.NewFromInt(5000)},
		{CostCodeID: 200, CostTypeID: 2, ChangeAmount: decimal.NewFromInt(-1500)},
	})
	if err != nil {
		t.Fatalf("CreateInternalChangeOrder() error = %v", err)
	}

	if !ico.TotalChangeAmount.Equal(decimal.NewFromInt(3500)) {
		t.Errorf("total change = %s, want 3500", ico.TotalChangeAmount)
	}
	if len(ico.Lines) != 2 {
		t.Fatalf("change order has %d lines, want 2", len(ico.Lines))
	}
	if ico.OriginalBudgetID != f.original.ID {
		t.Errorf("original budget = %d, want %d", ico.OriginalBudgetID, f.original.ID)
	}
	if ico.RevisedBudgetID != revised.ID {
		t.Errorf("revised budget link = %d, want %d", ico.RevisedBudgetID, revised.ID)
	}

	if revised.Type != domain.BudgetTypeRevised {
		t.Errorf("revised type = %s, want revised", revised.Type)
	}
	if revised.ProjectID != f.original.ProjectID {
		t.Errorf("revised project = %d, want %d", revised.ProjectID, f.original.ProjectID)
	}
	if revised.AccountingPeriodID != f.original.AccountingPeriodID {
		t.Errorf("revised period = %d, want %d", revised.AccountingPeriodID, f.original.AccountingPeriodID)
	}
	if revised.Status != domain.BudgetStatusActive {
		t.Errorf("revised status = %s, want active", revised.Status)
	}

	// The revised budget is visible through the budget repository
	if _, err := f.budgets.GetByID(revised.ID); err != nil {
		t.Errorf("revised budget lookup error = %v", err)
	}

	types := f.events.EventTypes()
	if len(types) != 1 || types[0] != "change_order.created" {
		t.Errorf("event types = %v, want [change_order.created]", types)
	}
}

func TestCreateInternalChangeOrder_NoLines(t *testing.T) {
	f := newChangeOrderFixture(t)
	_, _, err := f.svc.CreateInternalChangeOrder(f.original.ID, "", nil)
	if !errors.Is(err, domain.ErrNoChangeOrderLines) {
		t.Errorf("CreateInternalChangeOrder() error = %v, want ErrNoChangeOrderLines", err)
	}
}

func TestCreateInternalChangeOrder_RevisedTargetRejected(t *testing.T) {
	f := newChangeOrderFixture(t)
	revised := f.budgets.AddBudget(&domain.Budget{
		ProjectID:          f.project.ID,
		Type:               domain.BudgetTypeRevised,
		AccountingPeriodID: 1,
		Status:             domain.BudgetStatusActive,
	})

	_, _, err := f.svc.CreateInternalChangeOrder(revised.ID, "", []ChangeOrderLineInput{
		{CostCodeID: 100, CostTypeID: 1, ChangeAmount: decimal.NewFromInt(1)},
	})
	if !errors.Is(err, domain.ErrNotOriginalType) {
		t.Errorf("CreateInternalChangeOrder() error = %v, want ErrNotOriginalType", err)
	}
}

func TestCreateInternalChangeOrder_InactiveBudgetRejected(t *testing.T) {
	f := newChangeOrderFixture(t)
	f.original.Status = domain.BudgetStatusInactive

	_, _, err := f.svc.CreateInternalChangeOrder(f.original.ID, "", []ChangeOrderLineInput{
		{CostCodeID: 100, CostTypeID: 1, ChangeAmount: decimal.NewFromInt(5000)},
	})
	if !errors.Is(err, domain.ErrBudgetNotActive) {
		t.Errorf("CreateInternalChangeOrder() error = %v, want ErrBudgetNotActive", err)
	}

	// Nothing was persisted: no change order, no revised budget
	if orders, _ := f.icos.GetByOriginalBudget(f.original.ID); len(orders) != 0 {
		t.Errorf("persisted %d change orders, want 0", len(orders))
	}
	if all, _ := f.budgets.GetAllByProject(f.project.ID); len(all) != 1 {
		t.Errorf("project has %d budgets, want 1 (no revised budget created)", len(all))
	}
}

func TestCreateInternalChangeOrder_DimensionRequired(t *testing.T) {
	f := newChangeOrderFixture(t)
	_, _, err := f.svc.CreateInternalChangeOrder(f.original.ID, "", []ChangeOrderLineInput{
		{CostCodeID: 0, CostTypeID: 1, ChangeAmount: decimal.NewFromInt(1)},
	})
	if !errors.Is(err, domain.ErrDimensionRequired) {
		t.Errorf("CreateInternalChangeOrder() error = %v, want ErrDimensionRequired", err)
	}
}

func TestCreateInternalChangeOrder_FinalizedBudgetAllowed(t *testing.T) {
	f := newChangeOrderFixture(t)
	f.original.Finalized = true

	// Amendments are the only way a finalized budget changes
	_, _, err := f.svc.CreateInternalChangeOrder(f.original.ID, "Post-finalize amendment", []ChangeOrderLineInput{
		{CostCodeID: 100, CostTypeID: 1, ChangeAmount: decimal.NewFromInt(2500)},
	})
	if err != nil {
		t.Fatalf("CreateInternalChangeOrder() on finalized budget error = %v", err)
	}
}

func TestListByOriginalBudget(t *testing.T) {
	f := newChangeOrderFixture(t)
	for i := 0; i < 3; i++ {
		_, _, err := f.svc.CreateInternalChangeOrder(f.original.ID, "", []ChangeOrderLineInput{
			{CostCodeID: 100, CostTypeID: 1, ChangeAmount: decimal.NewFromInt(100)},
		})
		if err != nil {
			t.Fatalf("CreateInternalChangeOrder() error = %v", err)
		}
	}

	orders, err := f.svc.ListByOriginalBudget(f.original.ID)
	if err != nil {
		t.Fatalf("ListByOriginalBudget() error = %v", err)
	}
	if len(orders) != 3 {
		t.Errorf("listed %d orders, want 3", len(orders))
	}
}

func TestRecordECOLine(t *testing.T) {
	f := newChangeOrderFixture(t)

	line, err := f.svc.RecordECOLine(7, f.project.ID, 100, 1, decimal.NewFromInt(12000))
	if err != nil {
		t.Fatalf("RecordECOLine() error = %v", err)
	}
	if line.Status != domain.ECOLineStatusActive {
		t.Errorf("status = %s, want active", line.Status)
	}
	if line.ECOID != 7 {
		t.Errorf("eco id = %d, want 7", line.ECOID)
	}

	types := f.events.EventTypes()
	if len(types) != 1 || types[0] != "eco_line.created" {
		t.Errorf("event types = %v, want [eco_line.created]", types)
	}
}

func TestRecordECOLine_DimensionRequired(t *testing.T) {
	f := newChangeOrderFixture(t)
	_, err := f.svc.RecordECOLine(7, f.project.ID, 100, 0, decimal.NewFromInt(1))
	if !errors.Is(err, domain.ErrDimensionRequired) {
		t.Errorf("RecordECOLine() error = %v, want ErrDimensionRequired", err)
	}
}

func TestRecordECOLine_ProjectNotFound(t *testing.T) {
	f := newChangeOrderFixture(t)
	_, err := f.svc.RecordECOLine(7, 99, 100, 1, decimal.NewFromInt(1))
	if !errors.Is(err, domain.ErrProjectNotFound) {
		t.Errorf("RecordECOLine() error = %v, want ErrProjectNotFound", err)
	}
}

func TestDeactivateECOLine(t *testing.T) {
	f := newChangeOrderFixture(t)
	line, _ := f.svc.RecordECOLine(7, f.project.ID, 100, 1, decimal.NewFromInt(12000))

	if err := f.svc.DeactivateECOLine(line.ID); err != nil {
		t.Fatalf("DeactivateECOLine() error = %v", err)
	}

	active, _ := f.ecoLines.GetActiveByProject(f.project.ID)
	if len(active) != 0 {
		t.Errorf("active lines = %d, want 0", len(active))
	}
	all, _ := f.svc.ListECOLines(f.project.ID)
	if len(all) != 1 {
		t.Errorf("all lines = %d, want 1 (deactivated lines are kept)", len(all))
	}

	types := f.events.EventTypes()
	if types[len(types)-1] != "eco_line.deactivated" {
		t.Errorf("last event = %s, want eco_line.deactivated", types[len(types)-1])
	}
}
