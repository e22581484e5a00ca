package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/risick/microcredito-api/internal/domain/borrower"
	"github.com/risick/microcredito-api/internal/domain/loan"
	"github.com/risick/microcredito-api/internal/query"
)

var borrowerColumns = map[query.Field]string{
	borrower.FieldNationalID:  "b.national_id",
	borrower.FieldUserName:    "u.name",
	borrower.FieldUserEmail:   "u.email",
	borrower.FieldCity:        "b.city",
	borrower.FieldState:       "b.state",
	borrower.FieldIncome:      "b.income",
	borrower.FieldCreditScore: "b.credit_score",
	borrower.FieldIsActive:    "b.is_active",
}

const borrowerSelect = `
SELECT b.id, b.user_id, b.national_id, b.phone, b.address, b.city, b.state, b.zip_code,
       b.birth_date, b.income, b.credit_score, b.is_active, b.created_at, b.updated_at,
       u.id, u.email, u.name, u.role, u.is_active,
       (SELECT COUNT(*) FROM loans l WHERE l.borrower_id = b.id)
FROM borrowers b
JOIN users u ON u.id = b.user_id
`

type BorrowerRepository struct {
	pool *pgxpool.Pool
}

func NewBorrowerRepository(pool *pgxpool.Pool) *BorrowerRepository {
	return &BorrowerRepository{pool: pool}
}

func (r *BorrowerRepository) Create(ctx context.Context, in borrower.CreateInput) (*borrower.Entity, error) {
	q := `
INSERT INTO borrowers (
  user_id, national_id, phone, address, city, state, zip_code, birth_date, income, credit_score
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING id
`
	var id string
	err := r.pool.QueryRow(ctx, q,
		in.UserID, in.NationalID, in.Phone, in.Address, in.City, in.State, in.ZipCode,
		in.BirthDate, in.Income, in.CreditScore,
	).Scan(&id)
	if err != nil {
		return nil, mapBorrowerErr(err)
	}
	return r.GetByID(ctx, id)
}

func (r *BorrowerRepository) GetByID(ctx context.Context, id string) (*borrower.Entity, error) {
	if !isUUID(id) {
		return nil, borrower.ErrBorrowerNotFound
	}
	out, err := r.getOne(ctx, "b.id = $1", id)
	if err != nil {
		return nil, err
	}
	if out.Loans, err = r.loanSummaries(ctx, out.ID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BorrowerRepository) GetByUserID(ctx context.Context, userID string) (*borrower.Entity, error) {
	if !isUUID(userID) {
		return nil, borrower.ErrBorrowerNotFound
	}
	out, err := r.getOne(ctx, "b.user_id = $1", userID)
	if err != nil {
		return nil, err
	}
	if out.Loans, err = r.loanSummaries(ctx, out.ID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BorrowerRepository) GetByNationalID(ctx context.Context, nationalID string) (*borrower.Entity, error) {
	return r.getOne(ctx, "b.national_id = $1", nationalID)
}

func (r *BorrowerRepository) getOne(ctx context.Context, where string, arg any) (*borrower.Entity, error) {
	row := r.pool.QueryRow(ctx, borrowerSelect+"WHERE "+where, arg)
	out, err := scanBorrower(row)
	if err != nil {
		return nil, notFound(err, borrower.ErrBorrowerNotFound)
	}
	return out, nil
}

func (r *BorrowerRepository) List(ctx context.Context, filter query.Node, limit, offset int) ([]borrower.Entity, error) {
	where, args, err := compileFilter(filter, borrowerColumns)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	builder := strings.Builder{}
	builder.WriteString(borrowerSelect)
	builder.WriteString("WHERE ")
	builder.WriteString(where)
	builder.WriteString(" ORDER BY b.created_at DESC, b.id DESC")
	args = append(args, limit)
	builder.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	args = append(args, offset)
	builder.WriteString(" OFFSET $" + strconv.Itoa(len(args)))

	rows, err := r.pool.Query(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]borrower.Entity, 0)
	for rows.Next() {
		item, err := scanBorrower(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BorrowerRepository) Count(ctx context.Context, filter query.Node) (int64, error) {
	where, args, err := compileFilter(filter, borrowerColumns)
	if err != nil {
		return 0, err
	}
	q := `SELECT COUNT(*) FROM borrowers b JOIN users u ON u.id = b.user_id WHERE ` + where
	var total int64
	if err := r.pool.QueryRow(ctx, q, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *BorrowerRepository) Update(ctx context.Context, id string, in borrower.UpdateInput) (*borrower.Entity, error) {
	if !isUUID(id) {
		return nil, borrower.ErrBorrowerNotFound
	}
	sets := []string{}
	args := []any{}
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if in.NationalID != nil {
		set("national_id", *in.NationalID)
	}
	if in.Phone != nil {
		set("phone", *in.Phone)
	}
	if in.Address != nil {
		set("address", *in.Address)
	}
	if in.City != nil {
		set("city", *in.City)
	}
	if in.State != nil {
		set("state", *in.State)
	}
	if in.ZipCode != nil {
		set("zip_code", *in.ZipCode)
	}
	if in.BirthDate != nil {
		set("birth_date", *in.BirthDate)
	}
	if in.Income != nil {
		set("income", *in.Income)
	}
	if in.CreditScore != nil {
		set("credit_score", *in.CreditScore)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	q := `UPDATE borrowers SET ` + strings.Join(sets, ", ") + ` WHERE id = $` + strconv.Itoa(len(args))

	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return nil, mapBorrowerErr(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, borrower.ErrBorrowerNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *BorrowerRepository) SetActive(ctx context.Context, id string, active bool) error {
	if !isUUID(id) {
		return borrower.ErrBorrowerNotFound
	}
	tag, err := r.pool.Exec(ctx, `UPDATE borrowers SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return borrower.ErrBorrowerNotFound
	}
	return nil
}

func (r *BorrowerRepository) CountOpenLoans(ctx context.Context, borrowerID string) (int64, error) {
	q := `SELECT COUNT(*) FROM loans WHERE borrower_id = $1 AND status = ANY($2)`
	var n int64
	if err := r.pool.QueryRow(ctx, q, borrowerID, loan.OpenStatuses).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *BorrowerRepository) Stats(ctx context.Context) (*borrower.Stats, error) {
	q := `
SELECT
  COUNT(*),
  COUNT(*) FILTER (WHERE is_active),
  ROUND(COALESCE(AVG(income) FILTER (WHERE is_active), 0), 2),
  COALESCE(AVG(credit_score) FILTER (WHERE is_active AND credit_score IS NOT NULL), 0)::float8,
  COUNT(*) FILTER (WHERE is_active AND income <= 2000),
  COUNT(*) FILTER (WHERE is_active AND income > 2000 AND income <= 5000),
  COUNT(*) FILTER (WHERE is_active AND income > 5000 AND income <= 10000),
  COUNT(*) FILTER (WHERE is_active AND income > 10000)
FROM borrowers
`
	out := &borrower.Stats{}
	err := r.pool.QueryRow(ctx, q).Scan(
		&out.Total, &out.Active, &out.AvgIncome, &out.AvgCreditScore,
		&out.IncomeRanges.UpTo2000, &out.IncomeRanges.UpTo5000,
		&out.IncomeRanges.UpTo10000, &out.IncomeRanges.Above10000,
	)
	if err != nil {
		return nil, err
	}
	out.Inactive = out.Total - out.Active

	rows, err := r.pool.Query(ctx, `
SELECT state, COUNT(*) AS n
FROM borrowers
GROUP BY state
ORDER BY n DESC, state ASC
LIMIT 10
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out.ByState = make([]borrower.StateCount, 0)
	for rows.Next() {
		var sc borrower.StateCount
		if err := rows.Scan(&sc.State, &sc.Count); err != nil {
			return nil, err
		}
		out.ByState = append(out.ByState, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BorrowerRepository) loanSummaries(ctx context.Context, borrowerID string) ([]borrower.LoanSummary, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, amount, status, created_at, due_date
FROM loans
WHERE borrower_id = $1
ORDER BY created_at DESC
`, borrowerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]borrower.LoanSummary, 0)
	for rows.Next() {
		var ls borrower.LoanSummary
		if err := rows.Scan(&ls.ID, &ls.Amount, &ls.Status, &ls.CreatedAt, &ls.DueDate); err != nil {
			return nil, err
		}
		out = append(out, ls)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanBorrower(row pgx.Row) (*borrower.Entity, error) {
	out := &borrower.Entity{User: &borrower.UserSummary{}}
	err := row.Scan(
		&out.ID, &out.UserID, &out.NationalID, &out.Phone, &out.Address, &out.City, &out.State, &out.ZipCode,
		&out.BirthDate, &out.Income, &out.CreditScore, &out.IsActive, &out.CreatedAt, &out.UpdatedAt,
		&out.User.ID, &out.User.Email, &out.User.Name, &out.User.Role, &out.User.IsActive,
		&out.LoanCount,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func mapBorrowerErr(err error) error {
	constraint, ok := uniqueConstraint(err)
	if !ok {
		return err
	}
	switch constraint {
	case "borrowers_user_id_key":
		return borrower.ErrBorrowerExists
	case "borrowers_national_id_key":
		return borrower.ErrDuplicateNationalID
	default:
		return err
	}
}
