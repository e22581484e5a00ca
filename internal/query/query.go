// Package query holds a small, store-agnostic filter tree: typed clauses
// combined by explicit AND/OR nodes. Domain packages build trees, the
// postgres repository compiles them to SQL and the in-memory store evaluates
// them with Match.
package query

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Field string

type Op string

const (
	OpEq        Op = "eq"
	OpIContains Op = "icontains"
	OpGte       Op = "gte"
	OpLte       Op = "lte"
)

type Node interface {
	node()
}

type Clause struct {
	Field Field
	Op    Op
	Value any
}

// And matches when every child matches. An empty And matches everything.
type And []Node

// Or matches when at least one child matches. An empty Or matches nothing.
type Or []Node

func (Clause) node() {}
func (And) node()    {}
func (Or) node()     {}

func Eq(f Field, v any) Clause           { return Clause{Field: f, Op: OpEq, Value: v} }
func IContains(f Field, v string) Clause { return Clause{Field: f, Op: OpIContains, Value: v} }
func Gte(f Field, v any) Clause          { return Clause{Field: f, Op: OpGte, Value: v} }
func Lte(f Field, v any) Clause          { return Clause{Field: f, Op: OpLte, Value: v} }

// Record exposes field values to Match. A missing or nil value never
// satisfies a clause, mirroring SQL NULL comparison.
type Record interface {
	Value(f Field) (any, bool)
}

func Match(n Node, r Record) bool {
	switch v := n.(type) {
	case nil:
		return true
	case Clause:
		return matchClause(v, r)
	case And:
		for _, child := range v {
			if !Match(child, r) {
				return false
			}
		}
		return true
	case Or:
		for _, child := range v {
			if Match(child, r) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func matchClause(c Clause, r Record) bool {
	got, ok := r.Value(c.Field)
	if !ok || got == nil {
		return false
	}
	switch c.Op {
	case OpEq:
		if cmp, ok := compare(got, c.Value); ok {
			return cmp == 0
		}
		return got == c.Value
	case OpIContains:
		s, ok1 := got.(string)
		needle, ok2 := c.Value.(string)
		if !ok1 || !ok2 {
			return false
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(needle))
	case OpGte:
		cmp, ok := compare(got, c.Value)
		return ok && cmp >= 0
	case OpLte:
		cmp, ok := compare(got, c.Value)
		return ok && cmp <= 0
	default:
		return false
	}
}

func compare(a, b any) (int, bool) {
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(sa, sb), true
	}
	da, ok := toDecimal(a)
	if !ok {
		return 0, false
	}
	db, ok := toDecimal(b)
	if !ok {
		return 0, false
	}
	return da.Cmp(db), true
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Decimal{}, false
		}
		return *n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case *int32:
		if n == nil {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromInt32(*n), true
	case int64:
		return decimal.NewFromInt(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	default:
		return decimal.Decimal{}, false
	}
}
