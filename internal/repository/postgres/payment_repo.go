package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/risick/microcredito-api/internal/domain/payment"
)

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// List orders by due date so a loan's schedule reads top to bottom.
func (r *PaymentRepository) List(ctx context.Context, f payment.ListFilter) ([]payment.Entity, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	where := strings.Builder{}
	where.WriteString(" WHERE 1=1")
	args := []any{}
	if f.LoanID != "" {
		if !isUUID(f.LoanID) {
			return []payment.Entity{}, 0, nil
		}
		args = append(args, f.LoanID)
		where.WriteString(" AND loan_id = $" + strconv.Itoa(len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where.WriteString(" AND status = $" + strconv.Itoa(len(args)))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payments`+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `
SELECT id, loan_id, amount, principal_paid, interest_paid, status, due_date, paid_at, created_at
FROM payments` + where.String() + ` ORDER BY due_date ASC, id ASC`
	args = append(args, f.Limit)
	q += " LIMIT $" + strconv.Itoa(len(args))
	args = append(args, f.Offset)
	q += " OFFSET $" + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]payment.Entity, 0)
	for rows.Next() {
		var p payment.Entity
		if err := rows.Scan(&p.ID, &p.LoanID, &p.Amount, &p.PrincipalPaid, &p.InterestPaid, &p.Status, &p.DueDate, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
