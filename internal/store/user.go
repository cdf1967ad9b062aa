package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// UpsertUser inserts or updates a user. Empty fields keep their stored value.
func (db *DB) UpsertUser(ctx context.Context, u *User) error {
	now := time.Now().UnixMilli()
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, phone, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = CASE WHEN excluded.email != '' THEN excluded.email ELSE users.email END,
			first_name = CASE WHEN excluded.first_name != '' THEN excluded.first_name ELSE users.first_name END,
			last_name = CASE WHEN excluded.last_name != '' THEN excluded.last_name ELSE users.last_name END,
			phone = CASE WHEN excluded.phone != '' THEN excluded.phone ELSE users.phone END`,
		u.ID, strings.ToLower(u.Email), u.FirstName, u.LastName, u.Phone, now)
	return err
}

// GetUser returns a user by id, or nil if it does not exist.
func (db *DB) GetUser(ctx context.Context, id string) (*User, error) {
	return db.scanUser(db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, phone FROM users WHERE id = ?`, id))
}

// UserByEmail returns a user by case-insensitive email, or nil if none matches.
func (db *DB) UserByEmail(ctx context.Context, email string) (*User, error) {
	return db.scanUser(db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, phone FROM users WHERE email = ?`, strings.ToLower(email)))
}

func (db *DB) scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserCount returns the total number of users.
func (db *DB) UserCount(ctx context.Context) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
