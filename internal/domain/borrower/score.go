package borrower

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	BaseScore = 500
	MinScore  = 0
	MaxScore  = 1000
)

var highTrustStates = map[string]struct{}{
	"SP": {}, "RJ": {}, "MG": {}, "RS": {}, "PR": {}, "SC": {},
}

var (
	income10000 = decimal.NewFromInt(10000)
	income5000  = decimal.NewFromInt(5000)
	income2000  = decimal.NewFromInt(2000)
	income1000  = decimal.NewFromInt(1000)
)

// ComputeCreditScore is a pure additive heuristic over income, age and state.
// Age is asOf's calendar year minus the birth year with no month or day
// adjustment, so a borrower gains a year on January 1st.
func ComputeCreditScore(income decimal.Decimal, birthDate time.Time, state string, asOf time.Time) int {
	score := BaseScore

	switch {
	case income.GreaterThanOrEqual(income10000):
		score += 300
	case income.GreaterThanOrEqual(income5000):
		score += 200
	case income.GreaterThanOrEqual(income2000):
		score += 100
	case income.GreaterThanOrEqual(income1000):
		score += 50
	}

	age := asOf.UTC().Year() - birthDate.UTC().Year()
	switch {
	case age >= 30 && age <= 50:
		score += 100
	case (age >= 25 && age < 30) || (age > 50 && age <= 60):
		score += 50
	}

	if _, ok := highTrustStates[state]; ok {
		score += 50
	}

	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// ParseBirthDate accepts YYYY-MM-DD or a full RFC3339 timestamp.
func ParseBirthDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, ErrInvalidScoreInput
	}
	return t.UTC(), nil
}

func scoreInputValid(income decimal.Decimal, birthDate time.Time) bool {
	return !income.IsNegative() && !birthDate.IsZero()
}
