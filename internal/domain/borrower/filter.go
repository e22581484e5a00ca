package borrower

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/risick/microcredito-api/internal/query"
	"github.com/shopspring/decimal"
)

const (
	FieldNationalID  query.Field = "national_id"
	FieldUserName    query.Field = "user.name"
	FieldUserEmail   query.Field = "user.email"
	FieldCity        query.Field = "city"
	FieldState       query.Field = "state"
	FieldIncome      query.Field = "income"
	FieldCreditScore query.Field = "credit_score"
	FieldIsActive    query.Field = "is_active"
)

type Query struct {
	Search         string
	City           string
	State          string
	MinIncome      *decimal.Decimal
	MaxIncome      *decimal.Decimal
	MinCreditScore *int
	MaxCreditScore *int
	IsActive       *bool
}

// ParseQuery coerces raw query-string values. Empty strings count as absent
// except for isActive, where any present value other than "true" means false.
func ParseQuery(values url.Values) (Query, error) {
	q := Query{
		Search: strings.TrimSpace(values.Get("search")),
		City:   strings.TrimSpace(values.Get("city")),
		State:  strings.TrimSpace(values.Get("state")),
	}

	var err error
	if q.MinIncome, err = parseDecimal(values, "minIncome"); err != nil {
		return Query{}, err
	}
	if q.MaxIncome, err = parseDecimal(values, "maxIncome"); err != nil {
		return Query{}, err
	}
	if q.MinCreditScore, err = parseInt(values, "minCreditScore"); err != nil {
		return Query{}, err
	}
	if q.MaxCreditScore, err = parseInt(values, "maxCreditScore"); err != nil {
		return Query{}, err
	}
	if _, ok := values["isActive"]; ok {
		active := values.Get("isActive") == "true"
		q.IsActive = &active
	}
	return q, nil
}

// BuildFilter turns a Query into an AND of clauses. Search is the only OR
// group and spans national id, owner name, owner email and city.
func BuildFilter(q Query) query.Node {
	and := query.And{}
	if q.Search != "" {
		and = append(and, query.Or{
			query.IContains(FieldNationalID, q.Search),
			query.IContains(FieldUserName, q.Search),
			query.IContains(FieldUserEmail, q.Search),
			query.IContains(FieldCity, q.Search),
		})
	}
	if q.City != "" {
		and = append(and, query.IContains(FieldCity, q.City))
	}
	if q.State != "" {
		and = append(and, query.Eq(FieldState, q.State))
	}
	if q.MinIncome != nil {
		and = append(and, query.Gte(FieldIncome, *q.MinIncome))
	}
	if q.MaxIncome != nil {
		and = append(and, query.Lte(FieldIncome, *q.MaxIncome))
	}
	if q.MinCreditScore != nil {
		and = append(and, query.Gte(FieldCreditScore, *q.MinCreditScore))
	}
	if q.MaxCreditScore != nil {
		and = append(and, query.Lte(FieldCreditScore, *q.MaxCreditScore))
	}
	if q.IsActive != nil {
		and = append(and, query.Eq(FieldIsActive, *q.IsActive))
	}
	return and
}

// Value lets the in-memory store evaluate filters against an Entity.
func (e Entity) Value(f query.Field) (any, bool) {
	switch f {
	case FieldNationalID:
		return e.NationalID, true
	case FieldUserName:
		if e.User == nil {
			return nil, false
		}
		return e.User.Name, true
	case FieldUserEmail:
		if e.User == nil {
			return nil, false
		}
		return e.User.Email, true
	case FieldCity:
		return e.City, true
	case FieldState:
		return e.State, true
	case FieldIncome:
		return e.Income, true
	case FieldCreditScore:
		if e.CreditScore == nil {
			return nil, false
		}
		return *e.CreditScore, true
	case FieldIsActive:
		return e.IsActive, true
	default:
		return nil, false
	}
}

func parseDecimal(values url.Values, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, &ValidationError{Field: key, Message: "must be a number"}
	}
	return &d, nil
}

func parseInt(values url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &ValidationError{Field: key, Message: "must be an integer"}
	}
	return &n, nil
}
