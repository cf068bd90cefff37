package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/crewcost/crewcost-backend/internal/service"
	"github.com/crewcost/crewcost-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type reportHandlerFixture struct {
	handler  *ReportHandler
	budgets  *testutil.MockBudgetRepository
	lines    *testutil.MockBudgetLineRepository
	orders   *testutil.MockChangeOrderRepository
	ecoLines *testutil.MockECOLineRepository
}

func newReportHandlerFixture() *reportHandlerFixture {
	budgets := testutil.NewMockBudgetRepository()
	f := &reportHandlerFixture{
		budgets:  budgets,
		lines:    testutil.NewMockBudgetLineRepository(),
		orders:   testutil.NewMockChangeOrderRepository(budgets),
		ecoLines: testutil.NewMockECOLineRepository(),
	}
	calcService := service.NewCalculationService(f.budgets, f.lines, f.orders, f.ecoLines)
	budgetService := service.NewBudgetService(f.budgets, f.lines, testutil.NewMockPeriodRepository(), testutil.NewMockProjectRepository(), nil)
	f.handler = NewReportHandler(calcService, budgetService)
	return f
}

func (f *reportHandlerFixture) addOriginalBudget() *domain.Budget {
	return f.budgets.AddBudget(&domain.Budget{
		ProjectID:          1,
		Type:               domain.BudgetTypeOriginal,
		AccountingPeriodID: 1,
		Status:             domain.BudgetStatusActive,
	})
}

func (f *reportHandlerFixture) addLine(budgetID, costCode, costType int32, amount int64) {
	f.lines.AddLine(&domain.BudgetLine{
		BudgetID:   budgetID,
		CostCodeID: &costCode,
		CostTypeID: &costType,
		Amount:     decimal.NewFromInt(amount),
	})
}

func TestProjectBudgetReport(t *testing.T) {
	e := echo.New()
	f := newReportHandlerFixture()
	budget := f.addOriginalBudget()
	f.addLine(budget.ID, 100, 1, 50000)
	f.addLine(budget.ID, 200, 2, 30000)
	f.ecoLines.AddLine(&domain.ExternalChangeOrderLine{
		ECOID:              7,
		ProjectID:          1,
		CostCodeID:         100,
		CostTypeID:         1,
		BudgetAmountChange: decimal.NewFromInt(12000),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/1/budget-report", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.GetProjectBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var report ProjectBudgetReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if report.CurrentAmount != "92000.00" {
		t.Errorf("Expected current amount 92000.00, got %s", report.CurrentAmount)
	}
}

func TestProjectBudgetReport_NoBudget(t *testing.T) {
	e := echo.New()
	f := newReportHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/1/budget-report", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.GetProjectBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var report ProjectBudgetReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if report.CurrentAmount != "0.00" {
		t.Errorf("Expected current amount 0.00, got %s", report.CurrentAmount)
	}
}

func TestBudgetAmountsReport_Original(t *testing.T) {
	e := echo.New()
	f := newReportHandlerFixture()
	budget := f.addOriginalBudget()
	f.addLine(budget.ID, 100, 1, 50000)
	f.orders.AddOrder(&domain.InternalChangeOrder{
		OriginalBudgetID:  budget.ID,
		RevisedBudgetID:   99,
		TotalChangeAmount: decimal.NewFromInt(3500),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/budgets/1/amounts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.GetBudgetAmounts(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var report BudgetAmountsReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if report.Type != "original" {
		t.Errorf("Expected type original, got %s", report.Type)
	}
	if report.OriginalAmount != "50000.00" {
		t.Errorf("Expected original amount 50000.00, got %s", report.OriginalAmount)
	}
	if report.RevisedAmount != "53500.00" {
		t.Errorf("Expected revised amount 53500.00, got %s", report.RevisedAmount)
	}
	if report.ChangeAmount != "" {
		t.Errorf("Expected no change amount, got %s", report.ChangeAmount)
	}
}

func TestBudgetAmountsReport_Revised(t *testing.T) {
	e := echo.New()
	f := newReportHandlerFixture()
	original := f.addOriginalBudget()
	revised := f.budgets.AddBudget(&domain.Budget{
		ProjectID:          1,
		Type:               domain.BudgetTypeRevised,
		AccountingPeriodID: 1,
		Status:             domain.BudgetStatusActive,
	})
	f.orders.AddOrder(&domain.InternalChangeOrder{
		OriginalBudgetID:  original.ID,
		RevisedBudgetID:   revised.ID,
		TotalChangeAmount: decimal.NewFromInt(3500),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/budgets/2/amounts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("2")

	if err := f.handler.GetBudgetAmounts(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var report BudgetAmountsReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if report.Type != "revised" {
		t.Errorf("Expected type revised, got %s", report.Type)
	}
	if report.ChangeAmount != "3500.00" {
		t.Errorf("Expected change amount 3500.00, got %s", report.ChangeAmount)
	}
	if report.OriginalAmount != "" {
		t.Errorf("Expected no original amount, got %s", report.OriginalAmount)
	}
}

func TestBudgetAmountsReport_NotFound(t *testing.T) {
	e := echo.New()
	f := newReportHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/budgets/99/amounts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")

	if err := f.handler.GetBudgetAmounts(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}
