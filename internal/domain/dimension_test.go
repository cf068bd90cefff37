package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func int32Ptr(v int32) *int32 {
	return &v
}

func TestIndexByDimension_GroupsByKey(t *testing.T) {
	lines := []*BudgetLine{
		{ID: 1, CostCodeID: int32Ptr(10), CostTypeID: int32Ptr(1), Amount: decimal.NewFromInt(100)},
		{ID: 2, CostCodeID: int32Ptr(10), CostTypeID: int32Ptr(1), Amount: decimal.NewFromInt(200)},
		{ID: 3, CostCodeID: int32Ptr(20), CostTypeID: int32Ptr(1), Amount: decimal.NewFromInt(300)},
	}

	index := IndexByDimension(lines)

	if len(index) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(index))
	}

	shared := index[Dimension{CostCodeID: 10, CostTypeID: 1}]
	if len(shared) != 2 {
		t.Fatalf("expected 2 lines in shared bucket, got %d", len(shared))
	}
	// Insertion order preserved within a bucket
	if shared[0].ID != 1 || shared[1].ID != 2 {
		t.Errorf("expected lines [1 2], got [%d %d]", shared[0].ID, shared[1].ID)
	}
}

func TestIndexByDimension_SkipsLinesWithoutDimension(t *testing.T) {
	lines := []*BudgetLine{
		{ID: 1, CostCodeID: int32Ptr(10), CostTypeID: nil},
		{ID: 2, CostCodeID: nil, CostTypeID: int32Ptr(1)},
		{ID: 3, CostCodeID: nil, CostTypeID: nil},
	}

	index := IndexByDimension(lines)
	if len(index) != 0 {
		t.Errorf("expected empty index, got %d buckets", len(index))
	}
}

func TestIndexByDimension_Empty(t *testing.T) {
	index := IndexByDimension([]*BudgetLine{})
	if len(index) != 0 {
		t.Errorf("expected empty index, got %d buckets", len(index))
	}
}

func TestBudgetLineDimension(t *testing.T) {
	line := &BudgetLine{CostCodeID: int32Ptr(5), CostTypeID: int32Ptr(7)}
	dim, ok := line.Dimension()
	if !ok {
		t.Fatal("expected dimension to be present")
	}
	if dim.CostCodeID != 5 || dim.CostTypeID != 7 {
		t.Errorf("expected (5, 7), got (%d, %d)", dim.CostCodeID, dim.CostTypeID)
	}

	partial := &BudgetLine{CostCodeID: int32Ptr(5)}
	if _, ok := partial.Dimension(); ok {
		t.Error("expected no dimension for line missing cost type")
	}
}
