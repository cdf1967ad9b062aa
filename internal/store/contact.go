package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/fleetchat/internal/model"
)

// UpsertContact inserts or updates an entry of owner's contact directory.
// A missing local id is generated.
func (db *DB) UpsertContact(ctx context.Context, ownerID string, c model.Contact) error {
	if c.ContactID == "" {
		return fmt.Errorf("contact of %q has no contact id", ownerID)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UnixMilli()
	_, err := db.ExecContext(ctx, `
		INSERT INTO contacts (owner_id, contact_id, id, name, email, phone, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, contact_id) DO UPDATE SET
			name = CASE WHEN excluded.name != '' THEN excluded.name ELSE contacts.name END,
			email = CASE WHEN excluded.email != '' THEN excluded.email ELSE contacts.email END,
			phone = CASE WHEN excluded.phone != '' THEN excluded.phone ELSE contacts.phone END,
			updated_at = excluded.updated_at`,
		ownerID, c.ContactID, c.ID, c.Name, c.Email, c.Phone, now)
	return err
}

// BulkUpsertContacts inserts or updates multiple contacts in a single transaction.
func (db *DB) BulkUpsertContacts(ctx context.Context, ownerID string, contacts []model.Contact) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for _, c := range contacts {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO contacts (owner_id, contact_id, id, name, email, phone, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(owner_id, contact_id) DO UPDATE SET
				name = CASE WHEN excluded.name != '' THEN excluded.name ELSE contacts.name END,
				email = CASE WHEN excluded.email != '' THEN excluded.email ELSE contacts.email END,
				phone = CASE WHEN excluded.phone != '' THEN excluded.phone ELSE contacts.phone END,
				updated_at = excluded.updated_at`,
			ownerID, c.ContactID, c.ID, c.Name, c.Email, c.Phone, now); err != nil {
			return fmt.Errorf("upsert contact %q: %w", c.ContactID, err)
		}
	}
	return tx.Commit()
}

// ListContacts returns owner's directory. Names fall back to the contact's
// registered user name.
func (db *DB) ListContacts(ctx context.Context, ownerID string) ([]model.Contact, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT c.id, c.contact_id,
			COALESCE(NULLIF(c.name,''), NULLIF(TRIM(u.first_name || ' ' || u.last_name),''), '') AS display_name,
			COALESCE(NULLIF(c.email,''), u.email, ''),
			COALESCE(NULLIF(c.phone,''), u.phone, '')
		FROM contacts c
		LEFT JOIN users u ON u.id = c.contact_id
		WHERE c.owner_id = ?
		ORDER BY display_name, c.contact_id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.ContactID, &c.Name, &c.Email, &c.Phone); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
