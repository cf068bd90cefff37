package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/crewcost/crewcost-backend/internal/service"
	"github.com/crewcost/crewcost-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type budgetHandlerFixture struct {
	handler  *BudgetHandler
	budgets  *testutil.MockBudgetRepository
	lines    *testutil.MockBudgetLineRepository
	periods  *testutil.MockPeriodRepository
	projects *testutil.MockProjectRepository
	svc      *service.BudgetService
}

func newBudgetHandlerFixture() *budgetHandlerFixture {
	f := &budgetHandlerFixture{
		budgets:  testutil.NewMockBudgetRepository(),
		lines:    testutil.NewMockBudgetLineRepository(),
		periods:  testutil.NewMockPeriodRepository(),
		projects: testutil.NewMockProjectRepository(),
	}
	f.svc = service.NewBudgetService(f.budgets, f.lines, f.periods, f.projects, nil)
	periodService := service.NewPeriodService(f.periods, nil)
	f.handler = NewBudgetHandler(f.svc, periodService)

	f.projects.Create("Riverside Tower")
	f.periods.Create(3, 2026, "")
	return f
}

func TestCreateBudgetEndpoint_Success(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture()

	req := jsonRequest(http.MethodPost, "/api/v1/budgets", `{"projectId":1,"accountingPeriodId":1,"description":"Baseline","date":"2026-03-01"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := f.handler.Create(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response BudgetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Type != "original" {
		t.Errorf("Expected type original, got %s", response.Type)
	}
	if response.LockState != "editable" {
		t.Errorf("Expected lock state editable, got %s", response.LockState)
	}
}

func TestCreateBudgetEndpoint_ClosedPeriod(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture()
	f.periods.Create(4, 2026, "")
	f.periods.Close(1)

	req := jsonRequest(http.MethodPost, "/api/v1/budgets", `{"projectId":1,"accountingPeriodId":1,"description":"","date":"2026-03-01"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := f.handler.Create(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func TestAddLineEndpoint_LockedBudget(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture()
	budget, _ := f.svc.CreateBudget(1, 1, "Baseline", time.Now())
	f.svc.FinalizeBudget(budget.ID)

	req := jsonRequest(http.MethodPost, "/api/v1/budgets/1/lines", `{"costCodeId":100,"costTypeId":1,"amount":"500.00"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.AddLine(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusLocked {
		t.Fatalf("Expected status 423, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if problem.Reason != "finalized" {
		t.Errorf("Expected reason finalized, got %s", problem.Reason)
	}
}

func TestAddLineEndpoint_NegativeAmount(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture()
	f.svc.CreateBudget(1, 1, "Baseline", time.Now())

	req := jsonRequest(http.MethodPost, "/api/v1/budgets/1/lines", `{"amount":"-5.00"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.AddLine(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestUpdateBudgetEndpoint_RevisedForbidden(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture()
	f.budgets.AddBudget(&domain.Budget{
		ProjectID:          1,
		Type:               domain.BudgetTypeRevised,
		AccountingPeriodID: 1,
		Status:             domain.BudgetStatusActive,
	})

	req := jsonRequest(http.MethodPut, "/api/v1/budgets/1", `{"description":"edit","date":"2026-03-01"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.Update(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
}

func TestFinalizeEndpoint_Success(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture()
	f.svc.CreateBudget(1, 1, "Baseline", time.Now())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/budgets/1/finalize", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.Finalize(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response BudgetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !response.Finalized {
		t.Error("Expected finalized budget")
	}
	if response.LockState != "finalized" {
		t.Errorf("Expected lock state finalized, got %s", response.LockState)
	}
}

func TestGetBudgetsByProjectEndpoint(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture()
	f.svc.CreateBudget(1, 1, "Baseline", time.Now())
	f.budgets.AddBudget(&domain.Budget{
		ProjectID:          1,
		Type:               domain.BudgetTypeRevised,
		AccountingPeriodID: 1,
		Status:             domain.BudgetStatusActive,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/1/budgets", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.GetByProject(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []BudgetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 2 {
		t.Fatalf("Expected 2 budgets, got %d", len(response))
	}
	if response[0].Type != "original" || response[1].Type != "revised" {
		t.Errorf("Expected original then revised, got %s then %s", response[0].Type, response[1].Type)
	}
}

func TestGetLinesEndpoint(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture()
	budget, _ := f.svc.CreateBudget(1, 1, "Baseline", time.Now())
	code, typ := int32(100), int32(1)
	f.lines.AddLine(&domain.BudgetLine{
		BudgetID:   budget.ID,
		CostCodeID: &code,
		CostTypeID: &typ,
		Amount:     decimal.NewFromInt(500),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/budgets/1/lines", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.GetLines(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []BudgetLineResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(response))
	}
	if response[0].Amount != "500.00" {
		t.Errorf("Expected amount 500.00, got %s", response[0].Amount)
	}
}
