package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/risick/microcredito-api/internal/domain/loan"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

const loanColumns = `id, borrower_id, loan_officer_id, amount, interest_rate, term_months, monthly_payment,
       total_amount, status, approved_at, disbursed_at, due_date, created_at, updated_at`

type LoanRepository struct {
	pool *pgxpool.Pool
}

func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

func (r *LoanRepository) GetByID(ctx context.Context, id string) (*loan.Entity, error) {
	if !isUUID(id) {
		return nil, loan.ErrNotFound
	}
	out, err := scanLoan(r.pool.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, loan.ErrNotFound)
	}
	return out, nil
}

func (r *LoanRepository) List(ctx context.Context, f loan.ListFilter) ([]loan.Entity, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	where := strings.Builder{}
	where.WriteString(" WHERE 1=1")
	args := []any{}
	if f.BorrowerID != "" {
		if !isUUID(f.BorrowerID) {
			return []loan.Entity{}, 0, nil
		}
		args = append(args, f.BorrowerID)
		where.WriteString(" AND borrower_id = $" + strconv.Itoa(len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where.WriteString(" AND status = $" + strconv.Itoa(len(args)))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM loans`+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + loanColumns + ` FROM loans` + where.String() + ` ORDER BY created_at DESC`
	args = append(args, f.Limit)
	q += " LIMIT $" + strconv.Itoa(len(args))
	args = append(args, f.Offset)
	q += " OFFSET $" + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]loan.Entity, 0)
	for rows.Next() {
		item, err := scanLoan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *LoanRepository) GetPortfolioAnalytics(ctx context.Context) (*loan.PortfolioAnalytics, error) {
	q := `
SELECT
  COUNT(*)::bigint,
  COUNT(*) FILTER (WHERE status = ANY($1))::bigint,
  COUNT(*) FILTER (WHERE status = 'PAID')::bigint,
  COUNT(*) FILTER (WHERE status = 'DEFAULTED')::bigint,
  COALESCE(SUM(amount), 0),
  COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.status = 'PAID'), 0)
FROM loans
`
	out := &loan.PortfolioAnalytics{}
	err := r.pool.QueryRow(ctx, q, loan.OpenStatuses).Scan(
		&out.TotalLoans,
		&out.OpenLoans,
		&out.PaidLoans,
		&out.DefaultedLoans,
		&out.TotalAmount,
		&out.TotalRepaid,
	)
	if err != nil {
		return nil, err
	}
	if out.TotalAmount.IsPositive() {
		out.RepaymentRatePercent = out.TotalRepaid.Div(out.TotalAmount).Mul(hundred).Round(2).InexactFloat64()
	}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) AS n FROM loans GROUP BY status ORDER BY n DESC, status ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out.ByStatus = make([]loan.StatusCount, 0)
	for rows.Next() {
		var sc loan.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		out.ByStatus = append(out.ByStatus, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanLoan(row pgx.Row) (*loan.Entity, error) {
	out := &loan.Entity{}
	err := row.Scan(
		&out.ID, &out.BorrowerID, &out.LoanOfficerID, &out.Amount, &out.InterestRate, &out.TermMonths, &out.MonthlyPayment,
		&out.TotalAmount, &out.Status, &out.ApprovedAt, &out.DisbursedAt, &out.DueDate, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}
