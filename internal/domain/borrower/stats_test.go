package borrower

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func TestIncomeBucketEdges(t *testing.T) {
	cases := map[string]string{
		"0":        Bucket0To2000,
		"2000":     Bucket0To2000,
		"2000.01":  Bucket2001To5000,
		"5000":     Bucket2001To5000,
		"5001":     Bucket5001To10000,
		"10000":    Bucket5001To10000,
		"10000.50": Bucket10000Plus,
	}
	for raw, want := range cases {
		if got := IncomeBucket(decimal.RequireFromString(raw)); got != want {
			t.Fatalf("income %s: expected %s, got %s", raw, want, got)
		}
	}
}

func TestComputeStats(t *testing.T) {
	score := func(v int32) *int32 { return &v }
	items := []Entity{
		{State: "SP", Income: decimal.NewFromInt(1000), CreditScore: score(600), IsActive: true},
		{State: "SP", Income: decimal.NewFromInt(3000), CreditScore: score(700), IsActive: true},
		{State: "RJ", Income: decimal.NewFromInt(20000), IsActive: true},
		{State: "MG", Income: decimal.NewFromInt(9000), CreditScore: score(100), IsActive: false},
	}

	stats := ComputeStats(items)
	if stats.Total != 4 || stats.Active != 3 || stats.Inactive != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if !stats.AvgIncome.Equal(decimal.NewFromInt(8000)) {
		t.Fatalf("expected avg income 8000, got %s", stats.AvgIncome)
	}
	if stats.AvgCreditScore != 650 {
		t.Fatalf("expected avg score over scored active borrowers, got %v", stats.AvgCreditScore)
	}
	if stats.IncomeRanges.Sum() != stats.Active {
		t.Fatalf("income ranges must sum to active count, got %+v", stats.IncomeRanges)
	}
	if stats.IncomeRanges.UpTo2000 != 1 || stats.IncomeRanges.UpTo5000 != 1 || stats.IncomeRanges.Above10000 != 1 {
		t.Fatalf("unexpected income ranges: %+v", stats.IncomeRanges)
	}
	if len(stats.ByState) != 3 || stats.ByState[0].State != "SP" || stats.ByState[0].Count != 2 {
		t.Fatalf("unexpected by-state ordering: %+v", stats.ByState)
	}
}

func TestComputeStatsCapsStates(t *testing.T) {
	items := make([]Entity, 0, 15)
	for i := 0; i < 15; i++ {
		items = append(items, Entity{State: fmt.Sprintf("S%02d", i), IsActive: true})
	}
	stats := ComputeStats(items)
	if len(stats.ByState) != 10 {
		t.Fatalf("expected top 10 states, got %d", len(stats.ByState))
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	if stats.Total != 0 || !stats.AvgIncome.IsZero() || stats.AvgCreditScore != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
	if stats.ByState == nil {
		t.Fatalf("expected empty, non-nil by-state slice")
	}
}
