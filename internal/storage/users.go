package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/auth"
)

type userTable struct {
	db      *sql.DB
	dialect dialect
}

func (u *userTable) CreateUser(ctx context.Context, user auth.User) error {
	q := u.dialect.rebind("INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)")
	_, err := u.db.ExecContext(ctx, q, user.ID, user.Email, user.PasswordHash, u.dialect.timeArg(user.CreatedAt))
	if err != nil {
		if u.dialect.isUniqueViolation(err) {
			return auth.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (u *userTable) UserByEmail(ctx context.Context, email string) (auth.User, error) {
	q := u.dialect.rebind("SELECT id, email, password_hash, created_at FROM users WHERE email = ?")
	var (
		user    auth.User
		created dbTime
	)
	err := u.db.QueryRowContext(ctx, q, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("select user: %w", err)
	}
	user.CreatedAt = created.Time
	return user, nil
}
