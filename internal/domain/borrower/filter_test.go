package borrower

import (
	"errors"
	"net/url"
	"testing"

	"github.com/risick/microcredito-api/internal/query"
	"github.com/shopspring/decimal"
)

func TestParseQueryCoercesValues(t *testing.T) {
	values := url.Values{
		"search":         {" maria "},
		"state":          {"SP"},
		"minIncome":      {"1500.50"},
		"maxCreditScore": {"800"},
		"minCreditScore": {""},
		"isActive":       {"true"},
	}
	q, err := ParseQuery(values)
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	if q.Search != "maria" || q.State != "SP" {
		t.Fatalf("unexpected strings: %+v", q)
	}
	if q.MinIncome == nil || !q.MinIncome.Equal(decimal.RequireFromString("1500.50")) {
		t.Fatalf("unexpected min income: %v", q.MinIncome)
	}
	if q.MinCreditScore != nil {
		t.Fatalf("empty minCreditScore must be absent")
	}
	if q.MaxCreditScore == nil || *q.MaxCreditScore != 800 {
		t.Fatalf("unexpected max credit score: %v", q.MaxCreditScore)
	}
	if q.IsActive == nil || !*q.IsActive {
		t.Fatalf("expected isActive=true")
	}
}

func TestParseQueryIsActiveNonTrueMeansFalse(t *testing.T) {
	q, err := ParseQuery(url.Values{"isActive": {"yes"}})
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	if q.IsActive == nil || *q.IsActive {
		t.Fatalf("expected isActive=false for non-true value")
	}
}

func TestParseQueryRejectsMalformedNumbers(t *testing.T) {
	for _, values := range []url.Values{
		{"minIncome": {"lots"}},
		{"maxIncome": {"1,000"}},
		{"minCreditScore": {"7.5"}},
	} {
		_, err := ParseQuery(values)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError for %v, got %v", values, err)
		}
	}
}

func TestBuildFilterMatchesEntities(t *testing.T) {
	score := int32(720)
	maria := Entity{
		NationalID:  "123456789LA042",
		City:        "Luanda",
		State:       "SP",
		Income:      decimal.NewFromInt(4000),
		CreditScore: &score,
		IsActive:    true,
		User:        &UserSummary{Name: "Maria Silva", Email: "maria@example.com"},
	}
	unscored := maria
	unscored.CreditScore = nil

	minScore, maxIncome := 700, decimal.NewFromInt(5000)
	active := true
	cases := []struct {
		name string
		q    Query
		e    Entity
		want bool
	}{
		{"empty query matches", Query{}, maria, true},
		{"search by owner name", Query{Search: "SILVA"}, maria, true},
		{"search by city", Query{Search: "luan"}, maria, true},
		{"search miss", Query{Search: "porto"}, maria, false},
		{"state exact", Query{State: "RJ"}, maria, false},
		{"income ceiling", Query{MaxIncome: &maxIncome}, maria, true},
		{"score floor", Query{MinCreditScore: &minScore}, maria, true},
		{"null score never matches range", Query{MinCreditScore: &minScore}, unscored, false},
		{"active flag", Query{IsActive: &active}, maria, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := query.Match(BuildFilter(tc.q), tc.e); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestBuildFilterShape(t *testing.T) {
	tree, ok := BuildFilter(Query{Search: "x", State: "SP"}).(query.And)
	if !ok || len(tree) != 2 {
		t.Fatalf("expected AND of search group and state clause, got %#v", tree)
	}
	search, ok := tree[0].(query.Or)
	if !ok || len(search) != 4 {
		t.Fatalf("expected 4-way search OR, got %#v", tree[0])
	}
	want := []query.Field{FieldNationalID, FieldUserName, FieldUserEmail, FieldCity}
	for i, node := range search {
		clause, ok := node.(query.Clause)
		if !ok || clause.Field != want[i] || clause.Op != query.OpIContains {
			t.Fatalf("search branch %d: unexpected %#v", i, node)
		}
	}
	if state, ok := tree[1].(query.Clause); !ok || state.Field != FieldState || state.Op != query.OpEq {
		t.Fatalf("unexpected state clause %#v", tree[1])
	}
	if empty, ok := BuildFilter(Query{}).(query.And); !ok || len(empty) != 0 {
		t.Fatalf("expected empty AND for empty query")
	}
}

func TestBuildFilterSearchAndInclusiveIncomeBounds(t *testing.T) {
	maputo := Entity{City: "Maputo", Income: decimal.NewFromInt(2000), IsActive: true}
	if !query.Match(BuildFilter(Query{Search: "maputo"}), maputo) {
		t.Fatalf("search must match city case-insensitively")
	}

	low, high := decimal.NewFromInt(2000), decimal.NewFromInt(5000)
	q := Query{MinIncome: &low, MaxIncome: &high}
	for _, income := range []int64{2000, 3500, 5000} {
		e := maputo
		e.Income = decimal.NewFromInt(income)
		if !query.Match(BuildFilter(q), e) {
			t.Fatalf("income %d must be inside inclusive bounds", income)
		}
	}
	e := maputo
	e.Income = decimal.RequireFromString("5000.01")
	if query.Match(BuildFilter(q), e) {
		t.Fatalf("income above max must be excluded")
	}
}
