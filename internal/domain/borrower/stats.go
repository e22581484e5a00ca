package borrower

import (
	"sort"

	"github.com/shopspring/decimal"
)

const (
	Bucket0To2000     = "0-2000"
	Bucket2001To5000  = "2001-5000"
	Bucket5001To10000 = "5001-10000"
	Bucket10000Plus   = "10000+"

	topStates = 10
)

// IncomeBucket places income into one of four ranges. The first range is
// closed at 2000, the others are half-open on the left.
func IncomeBucket(income decimal.Decimal) string {
	switch {
	case income.LessThanOrEqual(income2000):
		return Bucket0To2000
	case income.LessThanOrEqual(income5000):
		return Bucket2001To5000
	case income.LessThanOrEqual(income10000):
		return Bucket5001To10000
	default:
		return Bucket10000Plus
	}
}

func (r *IncomeRanges) add(bucket string) {
	switch bucket {
	case Bucket0To2000:
		r.UpTo2000++
	case Bucket2001To5000:
		r.UpTo5000++
	case Bucket5001To10000:
		r.UpTo10000++
	default:
		r.Above10000++
	}
}

// ComputeStats aggregates a full borrower set. State counts cover every
// borrower, averages and income ranges only active ones.
func ComputeStats(items []Entity) Stats {
	var out Stats
	states := map[string]int64{}
	incomeSum := decimal.Zero
	var scoreSum, scored int64

	for _, b := range items {
		out.Total++
		states[b.State]++
		if !b.IsActive {
			continue
		}
		out.Active++
		incomeSum = incomeSum.Add(b.Income)
		out.IncomeRanges.add(IncomeBucket(b.Income))
		if b.CreditScore != nil {
			scoreSum += int64(*b.CreditScore)
			scored++
		}
	}
	out.Inactive = out.Total - out.Active

	out.ByState = make([]StateCount, 0, len(states))
	for state, count := range states {
		out.ByState = append(out.ByState, StateCount{State: state, Count: count})
	}
	sort.Slice(out.ByState, func(i, j int) bool {
		if out.ByState[i].Count != out.ByState[j].Count {
			return out.ByState[i].Count > out.ByState[j].Count
		}
		return out.ByState[i].State < out.ByState[j].State
	})
	if len(out.ByState) > topStates {
		out.ByState = out.ByState[:topStates]
	}

	if out.Active > 0 {
		out.AvgIncome = incomeSum.Div(decimal.NewFromInt(out.Active)).Round(2)
	}
	if scored > 0 {
		out.AvgCreditScore = float64(scoreSum) / float64(scored)
	}
	return out
}
