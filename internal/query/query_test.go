package query

import (
	"testing"

	"github.com/shopspring/decimal"
)

type record map[Field]any

func (r record) Value(f Field) (any, bool) {
	v, ok := r[f]
	return v, ok
}

func TestMatchClauses(t *testing.T) {
	r := record{
		"name":   "Maria Silva",
		"income": decimal.NewFromInt(3000),
		"score":  int32(700),
		"active": true,
		"empty":  nil,
	}
	cases := []struct {
		name string
		node Node
		want bool
	}{
		{"nil node", nil, true},
		{"icontains case-insensitive", IContains("name", "SILVA"), true},
		{"icontains miss", IContains("name", "souza"), false},
		{"eq string", Eq("name", "Maria Silva"), true},
		{"eq bool", Eq("active", true), true},
		{"eq bool mismatch", Eq("active", false), false},
		{"gte decimal vs int", Gte("income", 3000), true},
		{"lte decimal", Lte("income", decimal.NewFromInt(2999)), false},
		{"gte int32 vs int", Gte("score", 650), true},
		{"missing field", Eq("city", "Luanda"), false},
		{"nil value", Gte("empty", 0), false},
		{"type mismatch", Gte("name", 10), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Match(tc.node, r); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestMatchGroups(t *testing.T) {
	r := record{"city": "Luanda", "state": "LU"}

	if !Match(And{}, r) {
		t.Fatalf("empty And must match")
	}
	if Match(Or{}, r) {
		t.Fatalf("empty Or must not match")
	}
	tree := And{
		Or{IContains("city", "porto"), IContains("city", "luan")},
		Eq("state", "LU"),
	}
	if !Match(tree, r) {
		t.Fatalf("expected nested tree to match")
	}
	tree = append(tree, Eq("state", "BG"))
	if Match(tree, r) {
		t.Fatalf("expected failing clause to reject")
	}
}

func TestMatchNestedOrShortCircuits(t *testing.T) {
	tree := And{Or{Eq("a", 1), Eq("b", 2)}, Gte("c", 3)}
	if !Match(tree, record{"b": 2, "c": 5}) {
		t.Fatalf("expected second Or branch to satisfy the tree")
	}
	if Match(tree, record{"a": 1, "c": 2}) {
		t.Fatalf("expected failing range clause to reject")
	}
}
