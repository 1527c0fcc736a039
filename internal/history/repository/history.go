package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vaxstock/vaxstock-backend/pkg/account"
	"github.com/vaxstock/vaxstock-backend/pkg/database"
)

// Entry types
const (
	TypeCatalog   = "CATALOG"
	TypeOrder     = "ORDER"
	TypeInventory = "INVENTORY"
)

// Entry is one audit trail record.
type Entry struct {
	ID        string          `db:"id" json:"id"`
	EntryType string          `db:"entry_type" json:"entry_type"`
	Action    string          `db:"action" json:"action"`
	Details   json.RawMessage `db:"details" json:"details"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// HistoryRepository handles audit trail persistence
type HistoryRepository struct {
	db *database.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *database.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Record inserts an audit entry. The account ID is passed explicitly
// because the event consumer has no request context.
func (r *HistoryRepository) Record(ctx context.Context, accountID, entryType, action string, details json.RawMessage) error {
	if len(details) == 0 {
		details = json.RawMessage("{}")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO history_entries (account_id, entry_type, action, details)
		VALUES ($1, $2, $3, $4)
	`, accountID, entryType, action, details)
	return err
}

// List returns the account's audit entries, newest first
func (r *HistoryRepository) List(ctx context.Context, limit int) ([]*Entry, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 500 {
		limit = 100
	}

	entries := []*Entry{}
	query := `
		SELECT id, entry_type, action, details, created_at
		FROM history_entries
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &entries, query, accountID, limit); err != nil {
		return nil, err
	}

	return entries, nil
}
