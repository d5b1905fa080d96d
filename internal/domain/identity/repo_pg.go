package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rxledger/rxledger/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const userCols = `id, phone, name, role, status, email,
	caregiver_name, caregiver_phone, caregiver_relationship,
	verified_at, created_at`

func (r *repoPG) Create(ctx context.Context, u *User) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO users (
			id, phone, name, role, status, email,
			caregiver_name, caregiver_phone, caregiver_relationship,
			verified_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		u.ID, u.Phone, u.Name, u.Role, u.Status, u.Email,
		u.CaregiverName, u.CaregiverPhone, u.CaregiverRelationship,
		u.VerifiedAt, u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicatePhone
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id string) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *repoPG) GetByPhone(ctx context.Context, phone string) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE phone = $1`, phone))
}

func (r *repoPG) GetPatientByAnyPhone(ctx context.Context, phone string) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users
		 WHERE role = 'patient' AND (phone = $1 OR caregiver_phone = $1)
		 ORDER BY created_at ASC
		 LIMIT 1`, phone))
}

func (r *repoPG) Update(ctx context.Context, u *User) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE users SET
			phone=$2, name=$3, role=$4, status=$5, email=$6,
			caregiver_name=$7, caregiver_phone=$8, caregiver_relationship=$9,
			verified_at=$10
		WHERE id=$1`,
		u.ID, u.Phone, u.Name, u.Role, u.Status, u.Email,
		u.CaregiverName, u.CaregiverPhone, u.CaregiverRelationship,
		u.VerifiedAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *repoPG) ListByRole(ctx context.Context, role Role, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+userCols+` FROM users
		 WHERE role = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, role, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}
	return users, total, nil
}

func scanUser(row pgx.Row) (*User, error) {
	u, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func scanUserRow(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Phone, &u.Name, &u.Role, &u.Status, &u.Email,
		&u.CaregiverName, &u.CaregiverPhone, &u.CaregiverRelationship,
		&u.VerifiedAt, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}
