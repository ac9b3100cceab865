package storage

import (
	"context"

	"github.com/antonminaichev/gophershop/internal/storage"
	"github.com/antonminaichev/gophershop/internal/types/user"
	"github.com/google/uuid"
)

func (s *PostgresStorage) CreateUser(ctx context.Context, u *user.User) error {
	q := `
        INSERT INTO users (id, name, email, password_hash, roles, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$6)`
	_, err := s.db.ExecContext(ctx, q,
		u.ID, u.Name, u.Email, u.PasswordHash, user.JoinRoles(u.Roles), u.CreatedAt,
	)
	if isUniqueViolation(err) {
		return storage.ErrAlreadyExists
	}
	return err
}

func (s *PostgresStorage) FindUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	const q = `
        SELECT id, name, email, password_hash, roles, created_at
        FROM users WHERE id=$1 AND deleted_at IS NULL`
	return s.scanUser(s.db.QueryRowContext(ctx, q, id))
}

func (s *PostgresStorage) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	const q = `
        SELECT id, name, email, password_hash, roles, created_at
        FROM users WHERE email=$1 AND deleted_at IS NULL`
	return s.scanUser(s.db.QueryRowContext(ctx, q, email))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStorage) scanUser(row rowScanner) (*user.User, error) {
	u := &user.User{}
	var roles string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &roles, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Roles = user.SplitRoles(roles)
	return u, nil
}

func (s *PostgresStorage) ListUsers(ctx context.Context) ([]user.User, error) {
	const q = `
        SELECT id, name, email, password_hash, roles, created_at
        FROM users WHERE deleted_at IS NULL ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		var u user.User
		var roles string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &roles, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Roles = user.SplitRoles(roles)
		out = append(out, u)
	}
	return out, rows.Err()
}
