package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/risick/microcredito-api/internal/domain/user"
)

const userColumns = `id, email, password_hash, name, role, is_active, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, in user.CreateInput) (*user.Entity, error) {
	q := `
INSERT INTO users (email, password_hash, name, role)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns
	out, err := scanUser(r.pool.QueryRow(ctx, q, in.Email, in.PasswordHash, in.Name, in.Role))
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return nil, user.ErrEmailTaken
		}
		return nil, err
	}
	return out, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.Entity, error) {
	if !isUUID(id) {
		return nil, user.ErrNotFound
	}
	out, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, user.ErrNotFound)
	}
	return out, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.Entity, error) {
	out, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, notFound(err, user.ErrNotFound)
	}
	return out, nil
}

func (r *UserRepository) List(ctx context.Context, f user.ListFilter) ([]user.Entity, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	where := strings.Builder{}
	where.WriteString(" WHERE 1=1")
	args := []any{}
	if f.Search != "" {
		args = append(args, escapeLike(f.Search))
		pos := strconv.Itoa(len(args))
		where.WriteString(" AND (name ILIKE '%' || $" + pos + "::text || '%' OR email ILIKE '%' || $" + pos + "::text || '%')")
	}
	if f.Role != "" {
		args = append(args, f.Role)
		where.WriteString(" AND role = $" + strconv.Itoa(len(args)))
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		where.WriteString(" AND is_active = $" + strconv.Itoa(len(args)))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + userColumns + ` FROM users` + where.String() + ` ORDER BY created_at DESC`
	args = append(args, f.Limit)
	q += " LIMIT $" + strconv.Itoa(len(args))
	args = append(args, f.Offset)
	q += " OFFSET $" + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]user.Entity, 0)
	for rows.Next() {
		item, err := scanUser(rows)
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

func (r *UserRepository) Update(ctx context.Context, id string, in user.UpdateInput) (*user.Entity, error) {
	if !isUUID(id) {
		return nil, user.ErrNotFound
	}
	sets := []string{}
	args := []any{}
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if in.Email != nil {
		set("email", *in.Email)
	}
	if in.Name != nil {
		set("name", *in.Name)
	}
	if in.Role != nil {
		set("role", *in.Role)
	}
	if in.IsActive != nil {
		set("is_active", *in.IsActive)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	q := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $` + strconv.Itoa(len(args)) + ` RETURNING ` + userColumns

	out, err := scanUser(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return nil, user.ErrEmailTaken
		}
		return nil, notFound(err, user.ErrNotFound)
	}
	return out, nil
}

func (r *UserRepository) Stats(ctx context.Context) (*user.Stats, error) {
	out := &user.Stats{}
	q := `SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active) FROM users`
	if err := r.pool.QueryRow(ctx, q).Scan(&out.Total, &out.Active); err != nil {
		return nil, err
	}
	out.Inactive = out.Total - out.Active

	rows, err := r.pool.Query(ctx, `SELECT role, COUNT(*) AS n FROM users GROUP BY role ORDER BY n DESC, role ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out.ByRole = make([]user.RoleCount, 0)
	for rows.Next() {
		var rc user.RoleCount
		if err := rows.Scan(&rc.Role, &rc.Count); err != nil {
			return nil, err
		}
		out.ByRole = append(out.ByRole, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanUser(row pgx.Row) (*user.Entity, error) {
	u := &user.Entity{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}
