package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/matheus3301/fleetchat/internal/model"
)

// UpsertGroup creates or renames a group and replaces its member list.
func (db *DB) UpsertGroup(ctx context.Context, id, name string, memberIDs []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_groups (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`, id, name, now); err != nil {
		return fmt.Errorf("upsert group %q: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM group_members WHERE group_id = ?`, id); err != nil {
		return fmt.Errorf("clear members of %q: %w", id, err)
	}
	for _, uid := range memberIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO group_members (group_id, user_id) VALUES (?, ?)`, id, uid); err != nil {
			return fmt.Errorf("add member %q to %q: %w", uid, id, err)
		}
	}
	return tx.Commit()
}

// GetGroup returns a group with its members, or nil if it does not exist.
func (db *DB) GetGroup(ctx context.Context, id string) (*model.Group, error) {
	g := model.Group{ID: id, Members: []model.Member{}}
	err := db.QueryRowContext(ctx, `SELECT name FROM user_groups WHERE id = ?`, id).Scan(&g.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT m.user_id, COALESCE(u.first_name, ''), COALESCE(u.last_name, ''), COALESCE(u.email, '')
		FROM group_members m
		LEFT JOIN users u ON u.id = m.user_id
		WHERE m.group_id = ?
		ORDER BY m.user_id`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.UserID, &m.FirstName, &m.LastName, &m.Email); err != nil {
			return nil, err
		}
		g.Members = append(g.Members, m)
	}
	return &g, rows.Err()
}

// IsMember reports whether userID belongs to the group.
func (db *DB) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM group_members WHERE group_id = ? AND user_id = ?`, groupID, userID).Scan(&n)
	return n > 0, err
}

func memberIDs(ctx context.Context, tx *sql.Tx, groupID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT user_id FROM group_members WHERE group_id = ?`, groupID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
